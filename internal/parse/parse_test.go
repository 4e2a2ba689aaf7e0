package parse

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/phobologic/modgen/internal/lang"
	"github.com/phobologic/modgen/internal/model"
)

var markers = []string{"ParseableExpression", "ParseableEnum", "ParseableModifierValue"}

func setup(t *testing.T) func(source string) []model.TypeDecl {
	t.Helper()
	l := lang.Languages["swift"]
	if l == nil {
		t.Fatal("swift language not registered")
	}
	return func(source string) []model.TypeDecl {
		p := l.NewParser()
		return Declarations(l, p, []byte(source), "test.swift", markers)
	}
}

func find(decls []model.TypeDecl, name string) *model.TypeDecl {
	for i := range decls {
		if decls[i].Name == name {
			return &decls[i]
		}
	}
	return nil
}

func TestSwiftEnumCases(t *testing.T) {
	t.Parallel()
	extract := setup(t)

	decls := extract(`@ParseableEnum
enum SymbolScale: String {
    case small
    case medium, large
    case custom(size: Double)
}
`)
	d := find(decls, "SymbolScale")
	if d == nil {
		t.Fatalf("SymbolScale not found in %+v", decls)
	}
	if d.Kind != model.EnumKind {
		t.Errorf("kind = %q, want enum", d.Kind)
	}
	if !d.Parseable {
		t.Error("expected parseable")
	}
	if d.Line != 1 {
		t.Errorf("line = %d, want 1", d.Line)
	}
	if diff := cmp.Diff([]string{"small", "medium", "large", "custom"}, d.Cases); diff != "" {
		t.Errorf("cases (-want +got):\n%s", diff)
	}
}

func TestSwiftConformanceMarker(t *testing.T) {
	t.Parallel()
	extract := setup(t)

	decls := extract(`struct Plain {
    let x: Int
}

extension Plain: ParseableModifierValue {}
`)
	if len(decls) != 2 {
		t.Fatalf("expected 2 decls, got %+v", decls)
	}
	if decls[0].Kind != model.StructKind || decls[0].Parseable {
		t.Errorf("struct decl = %+v", decls[0])
	}
	if decls[1].Kind != model.ExtensionKind || decls[1].Name != "Plain" || !decls[1].Parseable {
		t.Errorf("extension decl = %+v", decls[1])
	}
}

func TestSwiftReferences(t *testing.T) {
	t.Parallel()
	extract := setup(t)

	decls := extract(`@ParseableExpression
struct Shadow {
    let color: ShadowColor
    let radius: Double
}

enum ShadowColor {
    case black
}
`)
	d := find(decls, "Shadow")
	if d == nil {
		t.Fatalf("Shadow not found in %+v", decls)
	}
	if diff := cmp.Diff([]string{"Double", "ShadowColor"}, d.References); diff != "" {
		t.Errorf("references (-want +got):\n%s", diff)
	}
	if c := find(decls, "ShadowColor"); c == nil || c.Parseable {
		t.Errorf("ShadowColor = %+v", c)
	}
}

func TestSwiftNestedDeclaration(t *testing.T) {
	t.Parallel()
	extract := setup(t)

	decls := extract(`struct Outer {
    enum Inner {
        case one
    }
}
`)
	d := find(decls, "Outer.Inner")
	if d == nil {
		t.Fatalf("Outer.Inner not found in %+v", decls)
	}
	if diff := cmp.Diff([]string{"one"}, d.Cases); diff != "" {
		t.Errorf("cases (-want +got):\n%s", diff)
	}
}

func TestSwiftEmpty(t *testing.T) {
	t.Parallel()
	extract := setup(t)

	if decls := extract(""); len(decls) != 0 {
		t.Errorf("expected no decls, got %+v", decls)
	}
}
