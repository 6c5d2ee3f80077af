package pongo

import (
	"fmt"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/flosch/pongo2/v6"
)

var builtinFilters = map[string]pongo2.FilterFunction{
	"trim": func(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		if in.IsNil() {
			return pongo2.AsValue(""), nil
		}
		return pongo2.AsValue(strings.TrimSpace(in.String())), nil
	},
	"lowerfirst": func(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		return pongo2.AsValue(changeFirst(in.String(), unicode.ToLower)), nil
	},
	"ucfirst": func(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		return pongo2.AsValue(changeFirst(in.String(), unicode.ToUpper)), nil
	},
}

var builtinOnce sync.Once

// registerBuiltinFilters installs builtinFilters once per process, leaving
// any filter already registered under the same name alone.
func registerBuiltinFilters() {
	builtinOnce.Do(func() {
		for name, fn := range builtinFilters {
			if !pongo2.FilterExists(name) {
				_ = pongo2.RegisterFilter(name, fn)
			}
		}
	})
}

// RegisterFilter adapts fn to a pongo2 filter. pongo2 filters are process
// wide, so registering a name twice fails.
func (e *Engine) RegisterFilter(name string, fn func(input any, param any) (any, error)) error {
	name = strings.TrimSpace(name)
	if name == "" || fn == nil {
		return fmt.Errorf("pongo: filter name and function required")
	}
	if pongo2.FilterExists(name) {
		return fmt.Errorf("pongo: filter %q already exists", name)
	}
	return pongo2.RegisterFilter(name, func(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		var arg any
		if param != nil {
			arg = param.Interface()
		}
		out, err := fn(in.Interface(), arg)
		if err != nil {
			return nil, &pongo2.Error{Sender: "filter:" + name, OrigError: err}
		}
		return pongo2.AsValue(out), nil
	})
}

// changeFirst applies fn to the first rune that is not whitespace.
func changeFirst(s string, fn func(rune) rune) string {
	for i, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		_, size := utf8.DecodeRuneInString(s[i:])
		return s[:i] + string(fn(r)) + s[i+size:]
	}
	return s
}
