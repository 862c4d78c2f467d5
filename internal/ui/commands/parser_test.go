package commands

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		input    string
		typ      CommandType
		name     string
		resource string
		args     []string
	}{
		{input: ":q", typ: CommandTypeQuit},
		{input: "ns shop", typ: CommandTypeNamespace, name: "shop"},
		{input: "ns all", typ: CommandTypeNamespace},
		{input: "ctx prod", typ: CommandTypeCluster, name: "prod"},
		{input: "theme light", typ: CommandTypeTheme, name: "light"},
		{input: "/clusters/prod/nodes", typ: CommandTypeGo, name: "/clusters/prod/nodes"},
		{input: "all deploy", typ: CommandTypeAggregate, resource: "deployments"},
		{input: "search web api", typ: CommandTypeSearch, name: "web api"},
		{input: "po", typ: CommandTypeResource, resource: "pods"},
		{input: "  svc frontend ", typ: CommandTypeResource, resource: "services", name: "frontend"},
		{input: "exec web-1 ls -la", typ: CommandTypeExec, name: "web-1", args: []string{"ls", "-la"}},
		{input: "logs web-1", typ: CommandTypeLogs, name: "web-1"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			cmd, err := ParseCommand(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.typ, cmd.Type)
			assert.Equal(t, tt.name, cmd.Name)
			if tt.resource != "" {
				assert.Equal(t, tt.resource, cmd.Resource.Name)
			}
			if tt.args != nil {
				assert.Equal(t, tt.args, cmd.Args)
			}
		})
	}
}

func TestParseCommandErrors(t *testing.T) {
	for _, input := range []string{"", ":", "ctx", "all", "all bogus", "logs", "frobnicate"} {
		_, err := ParseCommand(input)
		assert.Error(t, err, input)
	}
}

func TestGetAllCommands(t *testing.T) {
	help := GetAllCommands()
	for _, want := range []string{"quit/q", "ns [name|all]", "exec <pod>"} {
		assert.True(t, strings.Contains(help, want), want)
	}
}
