package table

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/google/cel-go/cel"
	"k8s.io/apimachinery/pkg/labels"
)

// FilterType is how a filter query is interpreted
type FilterType int

const (
	FilterContains FilterType = iota
	FilterExact
	FilterRegex
	FilterCEL
	FilterLabel
)

func (t FilterType) String() string {
	switch t {
	case FilterExact:
		return "exact"
	case FilterRegex:
		return "regex"
	case FilterCEL:
		return "cel"
	case FilterLabel:
		return "label"
	default:
		return "text"
	}
}

var (
	celEnvOnce sync.Once
	celEnv     *cel.Env
	celEnvErr  error
)

func filterEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = cel.NewEnv(
			cel.Variable("object", cel.DynType),
			cel.Variable("name", cel.StringType),
			cel.Variable("ns", cel.StringType),
			cel.Variable("cluster", cel.StringType),
			cel.DefaultUTCTimeZone(true),
		)
	})
	return celEnv, celEnvErr
}

// Filter matches rows against a query:
//
//	text        case-insensitive substring of any cell
//	=name       exact name
//	/re/        regular expression over the name
//	?expr       CEL expression over object, name, ns (namespace) and cluster
//	l:selector  label selector
type Filter struct {
	raw      string
	query    string
	typ      FilterType
	regex    *regexp.Regexp
	program  cel.Program
	selector labels.Selector
}

// ParseFilter compiles query. An empty query matches everything.
func ParseFilter(query string) (*Filter, error) {
	f := &Filter{raw: query}
	query = strings.TrimSpace(query)

	switch {
	case query == "":
	case strings.HasPrefix(query, "/") && strings.HasSuffix(query, "/") && len(query) > 2:
		regex, err := regexp.Compile(query[1 : len(query)-1])
		if err != nil {
			return nil, fmt.Errorf("invalid regular expression: %w", err)
		}
		f.regex = regex
		f.typ = FilterRegex
	case strings.HasPrefix(query, "="):
		f.query = strings.ToLower(query[1:])
		f.typ = FilterExact
	case strings.HasPrefix(query, "?"):
		program, err := compileCEL(query[1:])
		if err != nil {
			return nil, err
		}
		f.program = program
		f.typ = FilterCEL
	case strings.HasPrefix(query, "l:"):
		selector, err := labels.Parse(query[2:])
		if err != nil {
			return nil, fmt.Errorf("invalid label selector: %w", err)
		}
		f.selector = selector
		f.typ = FilterLabel
	default:
		f.query = strings.ToLower(query)
	}
	return f, nil
}

func compileCEL(expr string) (cel.Program, error) {
	env, err := filterEnv()
	if err != nil {
		return nil, err
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("invalid expression: %w", issues.Err())
	}
	if ast.OutputType() != cel.BoolType && ast.OutputType() != cel.DynType {
		return nil, fmt.Errorf("expression must evaluate to bool, got %s", ast.OutputType())
	}
	return env.Program(ast)
}

// Raw returns the query as typed
func (f *Filter) Raw() string { return f.raw }

// Type returns how the query is interpreted
func (f *Filter) Type() FilterType { return f.typ }

// Active reports whether the filter excludes anything
func (f *Filter) Active() bool {
	return f != nil && strings.TrimSpace(f.raw) != ""
}

// Match reports whether row passes the filter
func (f *Filter) Match(row Row) (bool, error) {
	if !f.Active() {
		return true, nil
	}
	switch f.typ {
	case FilterExact:
		return strings.ToLower(row.Name()) == f.query, nil
	case FilterRegex:
		return f.regex.MatchString(row.Name()), nil
	case FilterLabel:
		if row.Object == nil {
			return false, nil
		}
		return f.selector.Matches(labels.Set(row.Object.GetLabels())), nil
	case FilterCEL:
		return f.eval(row)
	default:
		if strings.Contains(strings.ToLower(row.Name()), f.query) {
			return true, nil
		}
		for _, cell := range row.Cells {
			if strings.Contains(strings.ToLower(cell.Text), f.query) {
				return true, nil
			}
		}
		return false, nil
	}
}

func (f *Filter) eval(row Row) (bool, error) {
	object := map[string]any{}
	if row.Object != nil {
		object = row.Object.Object
	}
	out, _, err := f.program.Eval(map[string]any{
		"object":  object,
		"name":    row.Name(),
		"ns":      row.Namespace(),
		"cluster": row.Cluster,
	})
	if err != nil {
		return false, err
	}
	b, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression returned %T, not bool", out.Value())
	}
	return b, nil
}

// Apply returns the rows passing the filter and the first evaluation error
func (f *Filter) Apply(rows []Row) ([]Row, error) {
	if !f.Active() {
		return rows, nil
	}
	var (
		out      []Row
		firstErr error
	)
	for _, row := range rows {
		ok, err := f.Match(row)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if ok {
			out = append(out, row)
		}
	}
	return out, firstErr
}
