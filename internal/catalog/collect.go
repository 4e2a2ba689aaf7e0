// Package catalog turns a parsed interface into the immutable modifier
// catalog: it collects candidate functions, validates and deduplicates their
// signatures, resolves builder ambiguities and extracts required enums.
package catalog

import (
	"fmt"

	"github.com/phobologic/modgen/internal/config"
	"github.com/phobologic/modgen/internal/iface"
	"github.com/phobologic/modgen/internal/model"
)

// Collection is the raw output of the tree walk, before validation.
type Collection struct {
	// Names lists modifier names in first-seen order.
	Names []string
	// Overloads holds every collected signature by name, in declaration order.
	Overloads map[string][]model.Signature
	// Deprecations maps names of retired functions to a message.
	Deprecations map[string]string
}

// Collect walks f and groups the instance functions of every extension of a
// target type by name. Retired functions feed Deprecations instead.
func Collect(f *iface.File, cfg *config.Config) *Collection {
	c := &Collection{
		Overloads:    make(map[string][]model.Signature),
		Deprecations: make(map[string]string),
	}
	for _, ext := range f.Decls {
		if ext.Kind != iface.ExtensionDecl || !cfg.IsTarget(ext.Name) {
			continue
		}
		outer := ext.Availability()
		for _, fn := range ext.Members {
			if fn.Kind != iface.FuncDecl || fn.HasModifier("static") || fn.HasModifier("class") {
				continue
			}
			av := fn.Availability().Merge(outer)
			if av.Retired() {
				if _, seen := c.Deprecations[fn.Name]; !seen {
					c.Deprecations[fn.Name] = deprecationMessage(fn.Name, av)
				}
				continue
			}
			if _, seen := c.Overloads[fn.Name]; !seen {
				c.Names = append(c.Names, fn.Name)
			}
			c.Overloads[fn.Name] = append(c.Overloads[fn.Name], signatureOf(fn))
		}
	}
	return c
}

func deprecationMessage(name string, av iface.Availability) string {
	switch {
	case av.Message != "":
		return av.Message
	case av.Renamed != "":
		return fmt.Sprintf("use `%s` instead", av.Renamed)
	}
	return fmt.Sprintf("`%s` is deprecated", name)
}

func signatureOf(fn *iface.Decl) model.Signature {
	sig := model.Signature{Parameters: make([]model.Parameter, len(fn.Params))}
	for i, p := range fn.Params {
		var attrs []string
		for _, a := range p.Attributes {
			attrs = append(attrs, a.BaseName())
		}
		var conformances []string
		if t := p.Type.Unwrapped(); t != nil && t.Kind == iface.NamedType {
			conformances = fn.Conformances(t.Name)
		}
		sig.Parameters[i] = model.Parameter{
			FirstName:    p.FirstName,
			SecondName:   p.SecondName,
			Type:         p.Type,
			Attributes:   attrs,
			HasDefault:   p.HasDefault,
			Conformances: conformances,
		}
	}
	return sig
}
