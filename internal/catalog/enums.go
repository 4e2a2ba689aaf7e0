package catalog

import (
	"slices"
	"sort"
	"strings"

	"github.com/phobologic/modgen/internal/config"
	"github.com/phobologic/modgen/internal/iface"
	"github.com/phobologic/modgen/internal/model"
)

// enumBuilder accumulates one required type across its declaration and
// extensions.
type enumBuilder struct {
	typ    model.EnumType
	seen   map[string]bool
	simple string
}

func (b *enumBuilder) add(name string, av iface.Availability) {
	if b.seen[name] {
		return
	}
	b.seen[name] = true
	b.typ.Cases = append(b.typ.Cases, model.EnumCase{Name: name, Availability: model.FromInterface(av)})
}

// Enums extracts the enumerated types named in cfg.RequiredTypes. Enums
// contribute their cases; structs (option sets and other static-member
// types) contribute static properties of their own type, including those
// declared in extensions. Each case keeps its own availability merged with
// its extension's; the type keeps its declared availability merged with its
// enclosing declarations'.
func Enums(f *iface.File, cfg *config.Config) []model.EnumType {
	builders := make(map[string]*enumBuilder)
	var order []string

	iface.Walk(f.Decls, func(d *iface.Decl, parents []*iface.Decl) {
		if d.Kind != iface.EnumDecl && d.Kind != iface.StructDecl {
			return
		}
		name := qualifiedName(parents, d.Name)
		if !cfg.IsRequired(name) {
			return
		}
		if _, dup := builders[name]; dup {
			return
		}
		av := d.Availability()
		for i := len(parents) - 1; i >= 0; i-- {
			av = av.Merge(parents[i].Availability())
		}
		b := &enumBuilder{
			typ:    model.EnumType{Name: name, Availability: model.FromInterface(av)},
			seen:   make(map[string]bool),
			simple: d.Name,
		}
		builders[name] = b
		order = append(order, name)
		b.collect(d, d.Kind == iface.EnumDecl, iface.Availability{})
	})

	// Extensions may be declared before or after the type itself.
	iface.Walk(f.Decls, func(d *iface.Decl, parents []*iface.Decl) {
		if d.Kind != iface.ExtensionDecl {
			return
		}
		b, ok := builders[stripModule(d.Name)]
		if !ok {
			return
		}
		b.collect(d, false, d.Availability())
	})

	sort.Strings(order)
	out := make([]model.EnumType, 0, len(order))
	for _, name := range order {
		out = append(out, builders[name].typ)
	}
	return out
}

func (b *enumBuilder) collect(d *iface.Decl, cases bool, outer iface.Availability) {
	for _, m := range d.Members {
		switch {
		case cases && m.Kind == iface.CaseDecl:
			av := m.Availability().Merge(outer)
			for _, c := range m.Cases {
				b.add(c.Name, av)
			}
		case m.Kind == iface.VarDecl && m.HasModifier("static") && b.ownType(m.VarType):
			b.add(m.Name, m.Availability().Merge(outer))
		}
	}
}

// ownType reports whether a static property of type t yields a value of the
// type being built.
func (b *enumBuilder) ownType(t *iface.Type) bool {
	if t == nil {
		return true
	}
	if t.Kind != iface.NamedType && t.Kind != iface.MemberType {
		return false
	}
	return t.Name == "Self" || t.Name == b.simple
}

// qualifiedName joins the enclosing type names. Extended types in interfaces
// are module qualified, so an extension contributes its path without the
// module.
func qualifiedName(parents []*iface.Decl, name string) string {
	parts := make([]string, 0, len(parents)+1)
	for _, p := range parents {
		if p.Kind == iface.ExtensionDecl {
			parts = append(parts, stripModule(p.Name))
			continue
		}
		parts = append(parts, p.Name)
	}
	return strings.Join(append(parts, name), ".")
}

func stripModule(path string) string {
	if i := strings.IndexByte(path, '.'); i >= 0 {
		return path[i+1:]
	}
	return path
}

// EnumNamed finds the catalog enum a parameter type path refers to, ignoring
// module qualification.
func EnumNamed(enums []model.EnumType, typ string) (model.EnumType, bool) {
	i := slices.IndexFunc(enums, func(e model.EnumType) bool {
		return e.Name == typ || e.Name == stripModule(typ)
	})
	if i < 0 {
		return model.EnumType{}, false
	}
	return enums[i], true
}
