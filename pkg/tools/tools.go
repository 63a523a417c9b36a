// Package tools defines the calling convention for agent capabilities
// and a registry that dispatches invocations to them.
package tools

import (
	"context"
	"fmt"
	"strings"
)

// ParamType describes the wire type of a tool parameter.
type ParamType string

const (
	TypeString ParamType = "string"
	TypeNumber ParamType = "number"
)

// Param declares one tool parameter. Order matters: the direct textual
// invocation path maps positional arguments onto params in declaration
// order.
type Param struct {
	Name        string
	Type        ParamType
	Description string
	// Enum restricts a string parameter to a fixed set of values.
	Enum []string
}

// Tool is a named, schema-typed callable capability.
type Tool interface {
	// Name returns the unique tool name, also the trigger token for
	// prefix matching.
	Name() string
	// Description is surfaced to the remote completion service.
	Description() string
	// Params returns the ordered argument schema.
	Params() []Param
	// Invoke runs the tool with named arguments. An error here is
	// caught by the caller and rendered as an error string, never
	// propagated as a process failure.
	Invoke(ctx context.Context, args map[string]any) (string, error)
}

// Func adapts a plain function into a Tool.
type Func struct {
	ToolName string
	Doc      string
	Schema   []Param
	Fn       func(ctx context.Context, args map[string]any) (string, error)
}

func (f *Func) Name() string        { return f.ToolName }
func (f *Func) Description() string { return f.Doc }
func (f *Func) Params() []Param     { return f.Schema }
func (f *Func) Invoke(ctx context.Context, args map[string]any) (string, error) {
	return f.Fn(ctx, args)
}

// Registry holds an immutable, ordered set of tools unique by name. The
// dispatch table is keyed by normalized (lowercase) name and built once;
// when several tools could prefix-match a message, registration order is
// the tie-break.
type Registry struct {
	ordered []Tool
	byName  map[string]Tool
}

// NewRegistry builds a registry from the given tools. Later registrations
// of a duplicate name are ignored.
func NewRegistry(ts ...Tool) *Registry {
	r := &Registry{byName: make(map[string]Tool, len(ts))}
	for _, t := range ts {
		key := strings.ToLower(t.Name())
		if _, exists := r.byName[key]; exists {
			continue
		}
		r.byName[key] = t
		r.ordered = append(r.ordered, t)
	}
	return r
}

// All returns the tools in registration order.
func (r *Registry) All() []Tool { return r.ordered }

// Len returns the number of registered tools.
func (r *Registry) Len() int { return len(r.ordered) }

// Lookup finds a tool by normalized name.
func (r *Registry) Lookup(name string) (Tool, bool) {
	t, ok := r.byName[strings.ToLower(name)]
	return t, ok
}

// MatchPrefix returns the first registered tool whose name is a prefix
// of the lowercased message.
func (r *Registry) MatchPrefix(lowered string) (Tool, bool) {
	for _, t := range r.ordered {
		if strings.HasPrefix(lowered, strings.ToLower(t.Name())) {
			return t, true
		}
	}
	return nil, false
}

// Invoke runs a tool by name with named arguments, converting any
// failure into an error string result. Unknown names are a no-op with
// an empty result.
func (r *Registry) Invoke(ctx context.Context, name string, args map[string]any) string {
	t, ok := r.Lookup(name)
	if !ok {
		return ""
	}
	out, err := t.Invoke(ctx, args)
	if err != nil {
		return ErrorString(t.Name(), err.Error())
	}
	return out
}

// InvokePositional runs a tool with whitespace-split positional
// arguments from the direct textual invocation path. An argument count
// that does not match the declared arity is rejected with an error
// string, not a crash.
func (r *Registry) InvokePositional(ctx context.Context, t Tool, parts []string) string {
	params := t.Params()
	if len(parts) != len(params) {
		return ErrorString(t.Name(), "incorrect arguments")
	}
	args := make(map[string]any, len(parts))
	for i, p := range params {
		args[p.Name] = parts[i]
	}
	out, err := t.Invoke(ctx, args)
	if err != nil {
		return ErrorString(t.Name(), err.Error())
	}
	return out
}

// ErrorString renders a tool failure in the fixed user-visible form.
func ErrorString(name, msg string) string {
	return fmt.Sprintf("Error running tool %s: %s", name, msg)
}

// StringArg extracts a string argument by name.
func StringArg(args map[string]any, name string) string {
	v, _ := args[name].(string)
	return v
}
