// Package model defines the catalog data structures shared by the builder and
// the emitters. A Catalog is built once per run and never mutated afterwards.
package model

import (
	"slices"
	"sort"

	"github.com/Masterminds/semver/v3"
	"github.com/cockroachdb/errors"

	"github.com/phobologic/modgen/internal/iface"
)

// Parameter is one parameter of a modifier signature. FirstName is the call
// site label and may be "_".
type Parameter struct {
	FirstName  string
	SecondName string
	Type       *iface.Type
	// Attributes holds base attribute names, e.g. ViewBuilder.
	Attributes []string
	HasDefault bool
	// Conformances lists the protocols a generic parameter type is
	// constrained to, e.g. StringProtocol.
	Conformances []string
}

// Label returns the call-site label, or "_" for unlabelled parameters.
func (p Parameter) Label() string {
	return p.FirstName
}

// LocalName returns the name the parameter is bound to in the body.
func (p Parameter) LocalName() string {
	if p.SecondName != "" {
		return p.SecondName
	}
	return p.FirstName
}

// HasAttribute reports whether the parameter or its type carries name.
func (p Parameter) HasAttribute(name string) bool {
	if slices.Contains(p.Attributes, name) {
		return true
	}
	for t := p.Type; t != nil && t.Kind == iface.AttributedType; t = t.Base {
		for _, a := range t.Attributes {
			if a.BaseName() == name {
				return true
			}
		}
	}
	return false
}

// Builder attributes recognized on closure parameters.
const (
	ViewBuilder           = "ViewBuilder"
	ToolbarContentBuilder = "ToolbarContentBuilder"
)

// Builder returns the builder attribute on p, or "".
func (p Parameter) Builder() string {
	switch {
	case p.HasAttribute(ViewBuilder):
		return ViewBuilder
	case p.HasAttribute(ToolbarContentBuilder):
		return ToolbarContentBuilder
	}
	return ""
}

// SimpleType is the type name used for duplicate detection. Builder closures
// collapse to the reference kind they are parsed as.
func (p Parameter) SimpleType() string {
	switch p.Builder() {
	case ViewBuilder:
		return "ViewReference"
	case ToolbarContentBuilder:
		return "ToolbarContentReference"
	}
	return p.Type.SimpleName()
}

// Signature is one overload's ordered parameter list.
type Signature struct {
	Parameters []Parameter
}

// Duplicates reports whether s and o have the same arity and, position by
// position, the same first name and simple type.
func (s Signature) Duplicates(o Signature) bool {
	if len(s.Parameters) != len(o.Parameters) {
		return false
	}
	for i, a := range s.Parameters {
		b := o.Parameters[i]
		if a.FirstName != b.FirstName || a.SimpleType() != b.SimpleType() {
			return false
		}
	}
	return true
}

// Modifier is a named transformation with its retained overloads.
type Modifier struct {
	Name       string
	Signatures []Signature
}

// Requirement is a minimum platform version.
type Requirement struct {
	Platform string
	Version  string
}

// Availability is a set of platform requirements plus platforms on which the
// declaration is unavailable. The zero value means always available.
type Availability struct {
	Introduced  []Requirement
	Unavailable []string
}

// FromInterface converts parsed @available data.
func FromInterface(a iface.Availability) Availability {
	var out Availability
	for _, pv := range a.Introduced {
		out.Introduced = append(out.Introduced, Requirement{Platform: pv.Platform, Version: pv.Version})
	}
	out.Unavailable = append(out.Unavailable, a.Unavailable...)
	return out
}

// IsEmpty reports whether a imposes no constraint.
func (a Availability) IsEmpty() bool {
	return len(a.Introduced) == 0 && len(a.Unavailable) == 0
}

// Normalized returns the requirements sorted by platform with versions
// expanded to major.minor.patch, so 16 and 16.0 compare equal.
func (a Availability) Normalized() []Requirement {
	out := make([]Requirement, 0, len(a.Introduced))
	for _, r := range a.Introduced {
		out = append(out, Requirement{Platform: r.Platform, Version: NormalizeVersion(r.Version)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Platform != out[j].Platform {
			return out[i].Platform < out[j].Platform
		}
		return out[i].Version < out[j].Version
	})
	return out
}

// Equal compares normalized requirements and unavailable platforms.
func (a Availability) Equal(b Availability) bool {
	if !slices.Equal(a.Normalized(), b.Normalized()) {
		return false
	}
	ua, ub := slices.Clone(a.Unavailable), slices.Clone(b.Unavailable)
	slices.Sort(ua)
	slices.Sort(ub)
	return slices.Equal(ua, ub)
}

// EqualIntroduced compares only the normalized introduced requirements. A
// case that repeats its type's versions needs no guard of its own even when
// the type is also unavailable somewhere.
func (a Availability) EqualIntroduced(b Availability) bool {
	return slices.Equal(a.Normalized(), b.Normalized())
}

// Platforms returns the platforms with an introduced requirement that are not
// also marked unavailable, sorted.
func (a Availability) Platforms() []string {
	var out []string
	for _, r := range a.Introduced {
		if !slices.Contains(a.Unavailable, r.Platform) && !slices.Contains(out, r.Platform) {
			out = append(out, r.Platform)
		}
	}
	slices.Sort(out)
	return out
}

// NormalizeVersion expands a version to major.minor.patch. Versions semver
// cannot read are returned unchanged.
func NormalizeVersion(v string) string {
	sv, err := semver.NewVersion(v)
	if err != nil {
		return v
	}
	return sv.String()
}

// EnumCase is one case of an enumerated type.
type EnumCase struct {
	Name         string
	Availability Availability
}

// EnumType is an enumerated value type referenced by modifier parameters.
type EnumType struct {
	Name         string
	Cases        []EnumCase
	Availability Availability
}

// Catalog is the complete, immutable result of a catalog build.
type Catalog struct {
	// Modifiers is sorted by name.
	Modifiers []Modifier
	// Enums is sorted by name.
	Enums []EnumType
	// Deprecations maps retired modifier names to a human readable message.
	Deprecations map[string]string
	// Extras lists hand-written modifier types dispatched verbatim.
	Extras []string
	// ExtraSignatures holds hand-written schema signatures by modifier name.
	ExtraSignatures map[string][]Signature
}

// Names returns the retained modifier names in catalog order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.Modifiers))
	for i, m := range c.Modifiers {
		names[i] = m.Name
	}
	return names
}

// Chunks partitions names, in order, into groups of at most size. Only the
// last group may be shorter.
func Chunks(names []string, size int) ([][]string, error) {
	if size < 1 {
		return nil, errors.Newf("chunk size must be at least 1, got %d", size)
	}
	var chunks [][]string
	for start := 0; start < len(names); start += size {
		end := min(start+size, len(names))
		chunks = append(chunks, names[start:end:end])
	}
	return chunks, nil
}

// DeclKind is the kind of a scanned source type declaration.
type DeclKind string

const (
	EnumKind      DeclKind = "enum"
	StructKind    DeclKind = "struct"
	ClassKind     DeclKind = "class"
	ActorKind     DeclKind = "actor"
	ProtocolKind  DeclKind = "protocol"
	ExtensionKind DeclKind = "extension"
)

// TypeDecl is a type declaration found in a secondary source file.
type TypeDecl struct {
	Name string
	Kind DeclKind
	File string
	Line int
	// Parseable is set when the declaration carries a marker attribute or
	// conformance.
	Parseable bool
	// Cases holds enum case names in declaration order.
	Cases []string
	// References lists the type identifiers mentioned by the declaration,
	// sorted and without duplicates.
	References []string
}

// SchemaParameter is one parameter in the schema document.
type SchemaParameter struct {
	FirstName  string `json:"firstName" yaml:"firstName"`
	SecondName string `json:"secondName,omitempty" yaml:"secondName,omitempty"`
	Type       string `json:"type" yaml:"type"`
}

// SchemaSignature is one overload in the schema document.
type SchemaSignature struct {
	Parameters []SchemaParameter `json:"parameters" yaml:"parameters"`
}

// Schema is the data-only description of the catalog consumed by external
// tooling.
type Schema struct {
	Modifiers map[string][]SchemaSignature `json:"modifiers" yaml:"modifiers"`
	Enums     map[string][]string          `json:"enums" yaml:"enums"`
	Types     []string                     `json:"types" yaml:"types"`
}
