// Package commands parses the ':' command palette.
package commands

import (
	"fmt"
	"strings"

	"github.com/katyella/kconsole/internal/k8s/resources"
)

// CommandType represents the type of command
type CommandType int

const (
	CommandTypeUnknown CommandType = iota
	CommandTypeQuit
	CommandTypeHelp
	CommandTypeNamespace
	CommandTypeCluster
	CommandTypeRefresh
	CommandTypeTheme
	CommandTypeGo
	CommandTypeResource
	CommandTypeAggregate
	CommandTypeSearch
	CommandTypeClusters
	CommandTypeUsers
	CommandTypeGroups
	CommandTypeAudit
	CommandTypeLogs
	CommandTypeExec
)

// Command represents a parsed command
type Command struct {
	Type     CommandType
	Resource resources.ResourceType
	Name     string
	Args     []string
	RawInput string
}

// ParseCommand parses a palette line. A bare resource name ("po",
// "deployments") lists that resource; a leading '/' is a route path.
func ParseCommand(input string) (*Command, error) {
	input = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(input), ":"))
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return nil, fmt.Errorf("empty command")
	}

	cmd := &Command{RawInput: input}
	arg := func(i int) string {
		if i < len(parts) {
			return parts[i]
		}
		return ""
	}

	if strings.HasPrefix(parts[0], "/") {
		cmd.Type = CommandTypeGo
		cmd.Name = parts[0]
		return cmd, nil
	}

	switch strings.ToLower(parts[0]) {
	case "q", "quit", "exit":
		cmd.Type = CommandTypeQuit
	case "h", "help", "?":
		cmd.Type = CommandTypeHelp
	case "ns", "namespace":
		cmd.Type = CommandTypeNamespace
		cmd.Name = arg(1)
		if cmd.Name == "all" || cmd.Name == "-A" {
			cmd.Name = ""
		}
	case "ctx", "context", "cluster":
		cmd.Type = CommandTypeCluster
		if cmd.Name = arg(1); cmd.Name == "" {
			return nil, fmt.Errorf("%s requires a cluster name", parts[0])
		}
	case "r", "refresh", "reload":
		cmd.Type = CommandTypeRefresh
	case "theme":
		cmd.Type = CommandTypeTheme
		cmd.Name = arg(1)
	case "go":
		cmd.Type = CommandTypeGo
		if cmd.Name = arg(1); cmd.Name == "" {
			return nil, fmt.Errorf("go requires a path")
		}
	case "all":
		cmd.Type = CommandTypeAggregate
		rt, err := lookup(arg(1))
		if err != nil {
			return nil, err
		}
		cmd.Resource = rt
	case "search", "find":
		cmd.Type = CommandTypeSearch
		cmd.Name = strings.Join(parts[1:], " ")
	case "clusters", "home":
		cmd.Type = CommandTypeClusters
	case "users":
		cmd.Type = CommandTypeUsers
	case "groups":
		cmd.Type = CommandTypeGroups
	case "audit":
		cmd.Type = CommandTypeAudit
	case "logs", "log":
		cmd.Type = CommandTypeLogs
		if cmd.Name = arg(1); cmd.Name == "" {
			return nil, fmt.Errorf("logs requires a pod name")
		}
	case "exec", "sh":
		cmd.Type = CommandTypeExec
		if cmd.Name = arg(1); cmd.Name == "" {
			return nil, fmt.Errorf("exec requires a pod name")
		}
		cmd.Args = parts[2:]
	default:
		rt, err := lookup(parts[0])
		if err != nil {
			return nil, fmt.Errorf("unknown command: %s", parts[0])
		}
		cmd.Type = CommandTypeResource
		cmd.Resource = rt
		cmd.Name = arg(1)
	}
	return cmd, nil
}

func lookup(name string) (resources.ResourceType, error) {
	if name == "" {
		return resources.ResourceType{}, fmt.Errorf("resource type required")
	}
	rt, ok := resources.Lookup(name)
	if !ok {
		return resources.ResourceType{}, fmt.Errorf("unknown resource type %q", name)
	}
	return rt, nil
}

// GetCommandHelp returns help text for a specific command
func GetCommandHelp(cmdType CommandType) string {
	switch cmdType {
	case CommandTypeQuit:
		return "quit/q - Exit kconsole"
	case CommandTypeHelp:
		return "help/h/? - Show key bindings"
	case CommandTypeNamespace:
		return "ns [name|all] - Switch namespace"
	case CommandTypeCluster:
		return "ctx <cluster> - Switch cluster"
	case CommandTypeRefresh:
		return "refresh/r - Refetch the current view"
	case CommandTypeTheme:
		return "theme [dark|light] - Change or toggle the theme"
	case CommandTypeGo:
		return "go <path> or /<path> - Open a console route"
	case CommandTypeResource:
		return "<resource> [name] - List a resource or open one object"
	case CommandTypeAggregate:
		return "all <resource> - List a resource across every cluster"
	case CommandTypeSearch:
		return "search <text> - Search objects by name"
	case CommandTypeClusters:
		return "clusters - Show the cluster list"
	case CommandTypeUsers:
		return "users - Manage console users"
	case CommandTypeGroups:
		return "groups - Show console groups"
	case CommandTypeAudit:
		return "audit - Show audit settings"
	case CommandTypeLogs:
		return "logs <pod> - Stream pod logs"
	case CommandTypeExec:
		return "exec <pod> [command...] - Open a shell in a pod"
	default:
		return "Unknown command"
	}
}

// GetAllCommands returns help text for all commands
func GetAllCommands() string {
	var help strings.Builder
	help.WriteString("Commands:\n\n")
	for t := CommandTypeQuit; t <= CommandTypeExec; t++ {
		help.WriteString("  " + GetCommandHelp(t) + "\n")
	}
	return help.String()
}
