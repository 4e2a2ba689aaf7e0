// Package iface parses Swift module interface text (.swiftinterface) into a
// declaration tree. Function bodies, initializer expressions and default
// argument values are skipped; everything the catalog needs about a
// declaration's surface is kept.
package iface

import "strings"

// DeclKind identifies a declaration.
type DeclKind int

const (
	ImportDecl DeclKind = iota
	ExtensionDecl
	StructDecl
	EnumDecl
	ClassDecl
	ProtocolDecl
	ActorDecl
	FuncDecl
	InitDecl
	SubscriptDecl
	VarDecl
	CaseDecl
	TypealiasDecl
	AssociatedTypeDecl
	OperatorDecl
	PrecedenceGroupDecl
	MacroDecl
	DeinitDecl
)

var declKeywords = map[string]DeclKind{
	"import":          ImportDecl,
	"extension":       ExtensionDecl,
	"struct":          StructDecl,
	"enum":            EnumDecl,
	"class":           ClassDecl,
	"protocol":        ProtocolDecl,
	"actor":           ActorDecl,
	"func":            FuncDecl,
	"init":            InitDecl,
	"subscript":       SubscriptDecl,
	"var":             VarDecl,
	"let":             VarDecl,
	"case":            CaseDecl,
	"typealias":       TypealiasDecl,
	"associatedtype":  AssociatedTypeDecl,
	"operator":        OperatorDecl,
	"precedencegroup": PrecedenceGroupDecl,
	"macro":           MacroDecl,
	"deinit":          DeinitDecl,
}

// File is a parsed interface.
type File struct {
	Decls []*Decl
}

// Decl is one declaration. Which fields are set depends on Kind.
type Decl struct {
	Kind       DeclKind
	Name       string
	Line       int
	Attributes []Attribute
	Modifiers  []string

	// ExtensionDecl: the extended type.
	Extended *Type
	// Type declarations and extensions.
	Inherits []*Type
	Members  []*Decl

	// FuncDecl, InitDecl, SubscriptDecl, MacroDecl.
	Params []Param
	Result *Type

	// VarDecl: declared type, nil when inferred.
	VarType *Type

	// CaseDecl: one entry per case name.
	Cases []EnumCase

	// Generic where clause of types, extensions, functions and aliases.
	Where []Requirement
}

// Requirement is one where-clause entry, `Subject : Constraint` or
// `Subject == Constraint`.
type Requirement struct {
	Subject    *Type
	Constraint *Type
	SameType   bool
}

// Conformances returns the base names of the protocols the generic parameter
// called name is constrained to by d's where clause.
func (d *Decl) Conformances(name string) []string {
	var out []string
	for _, r := range d.Where {
		if r.SameType || r.Subject.Kind != NamedType || r.Subject.Name != name {
			continue
		}
		for _, c := range flatten(r.Constraint) {
			out = append(out, c.Name)
		}
	}
	return out
}

// flatten splits a protocol composition into its named members.
func flatten(t *Type) []*Type {
	switch t.Kind {
	case CompositionType:
		var out []*Type
		for _, a := range t.Args {
			out = append(out, flatten(a)...)
		}
		return out
	case NamedType, MemberType:
		return []*Type{t}
	}
	return nil
}

// EnumCase is one name declared by a case declaration.
type EnumCase struct {
	Name   string
	Params []Param
}

// Param is one function parameter.
type Param struct {
	FirstName  string
	SecondName string
	Type       *Type
	Attributes []Attribute
	HasDefault bool
}

// Attribute is `@name` or `@name(args)`. Args holds the raw argument tokens.
type Attribute struct {
	Name string
	Args []Token
}

// BaseName returns the attribute name without module qualification.
func (a Attribute) BaseName() string {
	if i := strings.LastIndexByte(a.Name, '.'); i >= 0 {
		return a.Name[i+1:]
	}
	return a.Name
}

// HasModifier reports whether d carries modifier m (e.g. "static").
func (d *Decl) HasModifier(m string) bool {
	for _, mod := range d.Modifiers {
		if mod == m {
			return true
		}
	}
	return false
}

// HasAttribute reports whether d carries an attribute whose base name is name.
func (d *Decl) HasAttribute(name string) bool {
	return hasAttribute(d.Attributes, name)
}

// HasAttribute reports whether p carries an attribute whose base name is name.
func (p Param) HasAttribute(name string) bool {
	return hasAttribute(p.Attributes, name)
}

func hasAttribute(attrs []Attribute, name string) bool {
	for _, a := range attrs {
		if a.BaseName() == name {
			return true
		}
	}
	return false
}

// Availability merges every @available attribute on d.
func (d *Decl) Availability() Availability {
	return availabilityOf(d.Attributes)
}

// Walk calls fn for every declaration in decls and their members, depth
// first. parents lists the enclosing declarations, outermost first.
func Walk(decls []*Decl, fn func(d *Decl, parents []*Decl)) {
	var walk func(ds []*Decl, parents []*Decl)
	walk = func(ds []*Decl, parents []*Decl) {
		for _, d := range ds {
			fn(d, parents)
			if len(d.Members) > 0 {
				walk(d.Members, append(parents[:len(parents):len(parents)], d))
			}
		}
	}
	walk(decls, nil)
}
