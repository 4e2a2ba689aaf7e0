package iface

import "strings"

// TypeKind identifies the shape of a Type.
type TypeKind int

const (
	NamedType TypeKind = iota
	MemberType
	OptionalType
	ImplicitOptionalType
	ArrayType
	DictionaryType
	TupleType
	FunctionType
	AttributedType
	OpaqueType
	ExistentialType
	InOutType
	MetatypeType
	CompositionType
	VariadicType
	SuppressedType
)

// Type is a parsed type annotation.
//
//   - NamedType: Name, generic Args.
//   - MemberType: Base.Name, generic Args.
//   - OptionalType, ImplicitOptionalType, ArrayType, OpaqueType,
//     ExistentialType, InOutType, VariadicType, SuppressedType: Base.
//   - MetatypeType: Base, Name is "Type" or "Protocol".
//   - DictionaryType: Args[0] key, Args[1] value.
//   - TupleType: Args with element Labels.
//   - FunctionType: Args with Labels, Result, Async, Throws.
//   - AttributedType: Attributes applied to Base.
//   - CompositionType: Args.
type Type struct {
	Kind       TypeKind
	Name       string
	Base       *Type
	Args       []*Type
	Labels     []string
	Result     *Type
	Attributes []Attribute
	Async      bool
	Throws     bool
}

// String returns the canonical single-line spelling of t.
func (t *Type) String() string {
	if t == nil {
		return ""
	}
	var b strings.Builder
	t.write(&b)
	return b.String()
}

func (t *Type) write(b *strings.Builder) {
	switch t.Kind {
	case NamedType:
		b.WriteString(t.Name)
		writeGenerics(b, t.Args)
	case MemberType:
		t.Base.write(b)
		b.WriteByte('.')
		b.WriteString(t.Name)
		writeGenerics(b, t.Args)
	case OptionalType:
		t.Base.write(b)
		b.WriteByte('?')
	case ImplicitOptionalType:
		t.Base.write(b)
		b.WriteByte('!')
	case ArrayType:
		b.WriteByte('[')
		t.Base.write(b)
		b.WriteByte(']')
	case DictionaryType:
		b.WriteByte('[')
		t.Args[0].write(b)
		b.WriteString(": ")
		t.Args[1].write(b)
		b.WriteByte(']')
	case TupleType:
		writeElements(b, t.Args, t.Labels)
	case FunctionType:
		writeElements(b, t.Args, t.Labels)
		if t.Async {
			b.WriteString(" async")
		}
		if t.Throws {
			b.WriteString(" throws")
		}
		b.WriteString(" -> ")
		t.Result.write(b)
	case AttributedType:
		for _, a := range t.Attributes {
			b.WriteByte('@')
			b.WriteString(a.Name)
			b.WriteByte(' ')
		}
		t.Base.write(b)
	case OpaqueType:
		b.WriteString("some ")
		t.Base.write(b)
	case ExistentialType:
		b.WriteString("any ")
		t.Base.write(b)
	case InOutType:
		b.WriteString("inout ")
		t.Base.write(b)
	case MetatypeType:
		t.Base.write(b)
		b.WriteByte('.')
		b.WriteString(t.Name)
	case CompositionType:
		for i, arg := range t.Args {
			if i > 0 {
				b.WriteString(" & ")
			}
			arg.write(b)
		}
	case VariadicType:
		t.Base.write(b)
		b.WriteString("...")
	case SuppressedType:
		b.WriteByte('~')
		t.Base.write(b)
	}
}

func writeGenerics(b *strings.Builder, args []*Type) {
	if len(args) == 0 {
		return
	}
	b.WriteByte('<')
	for i, arg := range args {
		if i > 0 {
			b.WriteString(", ")
		}
		arg.write(b)
	}
	b.WriteByte('>')
}

func writeElements(b *strings.Builder, args []*Type, labels []string) {
	b.WriteByte('(')
	for i, arg := range args {
		if i > 0 {
			b.WriteString(", ")
		}
		if i < len(labels) && labels[i] != "" {
			b.WriteString(labels[i])
			b.WriteString(": ")
		}
		arg.write(b)
	}
	b.WriteByte(')')
}

// SimpleName strips module and member qualification and generic arguments:
// SwiftUI.Image.ResizingMode becomes ResizingMode and Binding<Bool> becomes
// Binding. Optionality is kept.
func (t *Type) SimpleName() string {
	if t == nil {
		return ""
	}
	switch t.Kind {
	case NamedType, MemberType:
		return t.Name
	case OptionalType, ImplicitOptionalType:
		return t.Base.SimpleName() + "?"
	case AttributedType, InOutType:
		return t.Base.SimpleName()
	}
	return t.String()
}

// Function returns the function type under any attributes, or nil.
func (t *Type) Function() *Type {
	for t != nil {
		switch t.Kind {
		case FunctionType:
			return t
		case AttributedType:
			t = t.Base
		default:
			return nil
		}
	}
	return nil
}

// IsVoid reports whether t is Void, Swift.Void or the empty tuple.
func (t *Type) IsVoid() bool {
	if t == nil {
		return false
	}
	switch t.Kind {
	case TupleType:
		return len(t.Args) == 0
	case NamedType, MemberType:
		return t.Name == "Void" && len(t.Args) == 0
	}
	return false
}

// Unwrapped strips attributes and optionality.
func (t *Type) Unwrapped() *Type {
	for t != nil {
		switch t.Kind {
		case AttributedType, OptionalType, ImplicitOptionalType:
			t = t.Base
		default:
			return t
		}
	}
	return nil
}

// Path returns the dotted name of a named or member type without generic
// arguments, e.g. SwiftUI.Image.DynamicRange.
func (t *Type) Path() string {
	switch {
	case t == nil:
		return ""
	case t.Kind == NamedType:
		return t.Name
	case t.Kind == MemberType:
		return t.Base.Path() + "." + t.Name
	}
	return t.String()
}

// Mentions reports whether any named component of t equals name.
func (t *Type) Mentions(name string) bool {
	if t == nil {
		return false
	}
	if (t.Kind == NamedType || t.Kind == MemberType) && t.Name == name {
		return true
	}
	if t.Base.Mentions(name) || t.Result.Mentions(name) {
		return true
	}
	for _, arg := range t.Args {
		if arg.Mentions(name) {
			return true
		}
	}
	return false
}
