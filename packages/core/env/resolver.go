package env

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"
)

var variablePattern = regexp.MustCompile(`\{\{([^}]+)\}\}`)

// WarnFunc is a function type for handling warnings
type WarnFunc func(format string, args ...any)

// Resolver substitutes placeholders. It is safe for concurrent use, so cases
// running in parallel can share one.
type Resolver struct {
	mu        sync.RWMutex
	variables map[string]any
	extracted map[string]any
	funcs     *Funcs
	sources   []Source
	warnFunc  WarnFunc
}

// Source supplies variables that are computed on demand. Sources are
// consulted after variables and before the OS environment.
type Source func(name string) (any, bool)

func NewResolver() *Resolver {
	return &Resolver{
		variables: make(map[string]any),
		extracted: make(map[string]any),
		funcs:     NewFuncs(),
	}
}

// SetWarnFunc sets a function to be called for placeholders that stay unresolved
func (r *Resolver) SetWarnFunc(fn WarnFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warnFunc = fn
}

func (r *Resolver) warn(format string, args ...any) {
	r.mu.RLock()
	fn := r.warnFunc
	r.mu.RUnlock()
	if fn != nil {
		fn(format, args...)
	}
}

func (r *Resolver) SetVariables(vars map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, v := range vars {
		r.variables[k] = v
	}
}

func (r *Resolver) SetVariable(name string, value any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.variables[name] = value
}

// SetExtracted stores a value pulled from a response. It is visible both as
// {{name}} and {{caseName.name}}.
func (r *Resolver) SetExtracted(caseName, name string, value any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if caseName != "" {
		r.extracted[caseName+"."+name] = value
	}
	r.extracted[name] = value
}

func (r *Resolver) AddSource(src Source) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources = append(r.sources, src)
}

// Funcs returns the template function table so callers can register more.
func (r *Resolver) Funcs() *Funcs {
	return r.funcs
}

// Lookup finds a variable by name using the resolver's lookup order.
func (r *Resolver) Lookup(name string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if v, ok := r.extracted[name]; ok {
		return v, true
	}
	if v, ok := r.variables[name]; ok {
		return v, true
	}
	for _, src := range r.sources {
		if v, ok := src(name); ok {
			return v, true
		}
	}
	if v, ok := os.LookupEnv(name); ok {
		return v, true
	}
	return nil, false
}

// Resolve replaces every placeholder in input. Unresolved placeholders are
// left as they are and reported through the warn func.
func (r *Resolver) Resolve(input string) string {
	return variablePattern.ReplaceAllStringFunc(input, func(match string) string {
		v, ok := r.evaluate(strings.TrimSpace(match[2 : len(match)-2]))
		if !ok {
			return match
		}
		return fmt.Sprintf("%v", v)
	})
}

func (r *Resolver) evaluate(expr string) (any, bool) {
	if strings.HasPrefix(expr, "$") {
		envVar := expr[1:]
		if val, ok := os.LookupEnv(envVar); ok {
			return val, true
		}
		r.warn("unresolved environment variable: $%s", envVar)
		return nil, false
	}

	if strings.Contains(expr, "(") {
		if result, ok := r.funcs.Call(expr); ok {
			return result, true
		}
		r.warn("unresolved function call: %s", expr)
		return nil, false
	}

	if v, ok := r.Lookup(expr); ok {
		return v, true
	}
	r.warn("unresolved variable: %s", expr)
	return nil, false
}

// ResolveValue resolves placeholders inside strings, maps and slices. A
// string made of a single placeholder takes the variable's own type, so
// "{{userId}}" can become a number.
func (r *Resolver) ResolveValue(v any) any {
	switch x := v.(type) {
	case string:
		if m := variablePattern.FindStringSubmatchIndex(x); m != nil && m[0] == 0 && m[1] == len(x) {
			if val, ok := r.evaluate(strings.TrimSpace(x[m[2]:m[3]])); ok {
				return val
			}
			return x
		}
		return r.Resolve(x)
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[k] = r.ResolveValue(val)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, val := range x {
			out[i] = r.ResolveValue(val)
		}
		return out
	}
	return v
}

func (r *Resolver) ResolveAll(values map[string]string) map[string]string {
	result := make(map[string]string, len(values))
	for k, v := range values {
		result[k] = r.Resolve(v)
	}
	return result
}

// HasUnresolved reports whether input still contains a placeholder after
// resolution.
func (r *Resolver) HasUnresolved(input string) bool {
	return variablePattern.MatchString(r.Resolve(input))
}

func (r *Resolver) Clone() *Resolver {
	r.mu.RLock()
	defer r.mu.RUnlock()
	clone := NewResolver()
	for k, v := range r.variables {
		clone.variables[k] = v
	}
	for k, v := range r.extracted {
		clone.extracted[k] = v
	}
	clone.sources = append(clone.sources, r.sources...)
	clone.warnFunc = r.warnFunc
	return clone
}
