package emit

import (
	"slices"

	"github.com/phobologic/modgen/internal/catalog"
	"github.com/phobologic/modgen/internal/iface"
	"github.com/phobologic/modgen/internal/model"
)

// goType is the Go rendering of a parameter: its field type and the
// dispatch.Converter that produces it.
type goType struct {
	Expr string
	Conv string
}

var scalarTypes = map[string]goType{
	"Bool": {"bool", "dispatch.Bool"},

	// Fixed-width integers keep the bounds of their width.
	"Int":    {"int", "dispatch.Int"},
	"Int8":   {"int", "dispatch.IntRange(-128, 127)"},
	"Int16":  {"int", "dispatch.IntRange(-32768, 32767)"},
	"Int32":  {"int", "dispatch.IntRange(-2147483648, 2147483647)"},
	"Int64":  {"int", "dispatch.Int"},
	"UInt":   {"int", "dispatch.UInt"},
	"UInt8":  {"int", "dispatch.IntRange(0, 255)"},
	"UInt16": {"int", "dispatch.IntRange(0, 65535)"},
	"UInt32": {"int", "dispatch.IntRange(0, 4294967295)"},
	"UInt64": {"int", "dispatch.UInt"},

	"Double":  {"float64", "dispatch.Float"},
	"Float":   {"float64", "dispatch.Float"},
	"Float32": {"float64", "dispatch.Float"},
	"Float64": {"float64", "dispatch.Float"},
	"CGFloat": {"float64", "dispatch.Float"},

	"String":                  {"string", "dispatch.String"},
	"Substring":               {"string", "dispatch.String"},
	"LocalizedStringKey":      {"string", "dispatch.String"},
	"LocalizedStringResource": {"string", "dispatch.String"},
	"Text":                    {"string", "dispatch.String"},
}

var (
	stringType         = scalarTypes["String"]
	rawType            = goType{"dispatch.Value", "dispatch.Raw"}
	eventType          = goType{"dispatch.Event", "dispatch.EventValue"}
	viewRefType        = goType{"dispatch.ViewReference", "dispatch.ViewReferenceValue"}
	toolbarContentType = goType{"dispatch.ToolbarContentReference", "dispatch.ToolbarContentReferenceValue"}
)

// typeOf maps a parameter to its Go type. Optional and defaulted parameters
// become pointers so an omitted argument is distinguishable.
func typeOf(p model.Parameter, enums []model.EnumType) goType {
	base := baseType(p, enums)
	if p.HasDefault || isOptional(p.Type) {
		return goType{Expr: "*" + base.Expr, Conv: "dispatch.Optional(" + base.Conv + ")"}
	}
	return base
}

func baseType(p model.Parameter, enums []model.EnumType) goType {
	switch p.Builder() {
	case model.ViewBuilder:
		return viewRefType
	case model.ToolbarContentBuilder:
		return toolbarContentType
	}
	if slices.Contains(p.Conformances, "StringProtocol") {
		return stringType
	}
	return mapType(p.Type.Unwrapped(), enums)
}

// mapType maps an unwrapped Swift type. Arrays decode element by element.
func mapType(t *iface.Type, enums []model.EnumType) goType {
	if t == nil {
		return rawType
	}
	if t.Function() != nil {
		return eventType
	}
	if t.Kind == iface.ArrayType {
		elem := mapType(t.Base.Unwrapped(), enums)
		if isOptional(t.Base) {
			elem = goType{Expr: "*" + elem.Expr, Conv: "dispatch.Optional(" + elem.Conv + ")"}
		}
		return goType{Expr: "[]" + elem.Expr, Conv: "dispatch.List(" + elem.Conv + ")"}
	}
	if t.Kind != iface.NamedType && t.Kind != iface.MemberType {
		return rawType
	}
	if len(t.Args) == 0 {
		if g, ok := scalarTypes[t.Name]; ok {
			return g
		}
	}
	if e, ok := catalog.EnumNamed(enums, t.Path()); ok {
		name := typeName(e.Name)
		return goType{Expr: name, Conv: "Parse" + name}
	}
	return rawType
}

func isOptional(t *iface.Type) bool {
	for t != nil {
		switch t.Kind {
		case iface.OptionalType, iface.ImplicitOptionalType:
			return true
		case iface.AttributedType:
			t = t.Base
		default:
			return false
		}
	}
	return false
}
