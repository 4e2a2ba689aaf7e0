package model

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/phobologic/modgen/internal/iface"
)

func param(t *testing.T, first, typ string) Parameter {
	t.Helper()
	ty, err := iface.ParseType(typ)
	if err != nil {
		t.Fatalf("ParseType(%q): %v", typ, err)
	}
	return Parameter{FirstName: first, Type: ty}
}

func TestSignatureDuplicates(t *testing.T) {
	t.Parallel()

	sig := func(ps ...Parameter) Signature { return Signature{Parameters: ps} }

	tests := []struct {
		name string
		a, b Signature
		want bool
	}{
		{"member qualifier stripped", sig(param(t, "x", "Swift.Double")), sig(param(t, "x", "Double")), true},
		{"generic arguments stripped", sig(param(t, "_", "Binding<Swift.Bool>")), sig(param(t, "_", "SwiftUI.Binding<Swift.Int>")), true},
		{"optional kept", sig(param(t, "x", "Double?")), sig(param(t, "x", "Double")), false},
		{"label differs", sig(param(t, "x", "Double")), sig(param(t, "y", "Double")), false},
		{"arity differs", sig(param(t, "x", "Double")), sig(), false},
		{"empty", sig(), sig(), true},
		{
			"builder kinds differ",
			sig(param(t, "content", "@SwiftUI.ViewBuilder () -> C")),
			sig(param(t, "content", "@SwiftUI.ToolbarContentBuilder () -> C")),
			false,
		},
		{
			"same builder kind",
			sig(param(t, "content", "@ViewBuilder () -> C")),
			sig(param(t, "content", "@SwiftUI.ViewBuilder () -> D")),
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.a.Duplicates(tt.b); got != tt.want {
				t.Errorf("Duplicates = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParameterHasAttribute(t *testing.T) {
	t.Parallel()

	p := param(t, "content", "@escaping @SwiftUI.ViewBuilder () -> Content")
	if !p.HasAttribute("ViewBuilder") {
		t.Error("expected type attribute to be found")
	}
	p = Parameter{FirstName: "content", Attributes: []string{"ToolbarContentBuilder"}}
	if !p.HasAttribute("ToolbarContentBuilder") || p.HasAttribute("ViewBuilder") {
		t.Error("declaration attributes mismatch")
	}
	if got := (Parameter{FirstName: "_", SecondName: "value"}).LocalName(); got != "value" {
		t.Errorf("LocalName = %q", got)
	}
}

func TestAvailabilityNormalized(t *testing.T) {
	t.Parallel()

	a := Availability{Introduced: []Requirement{{"macOS", "14"}, {"iOS", "17.0"}}}
	want := []Requirement{{"iOS", "17.0.0"}, {"macOS", "14.0.0"}}
	if diff := cmp.Diff(want, a.Normalized()); diff != "" {
		t.Errorf("Normalized (-want +got):\n%s", diff)
	}

	b := Availability{Introduced: []Requirement{{"iOS", "17"}, {"macOS", "14.0.0"}}}
	if !a.Equal(b) {
		t.Error("expected 17/17.0 and 14/14.0.0 to compare equal")
	}
	c := Availability{Introduced: []Requirement{{"iOS", "17.1"}, {"macOS", "14"}}}
	if a.Equal(c) {
		t.Error("expected narrower iOS requirement to differ")
	}
	d := Availability{Introduced: b.Introduced, Unavailable: []string{"watchOS"}}
	if a.Equal(d) {
		t.Error("expected unavailable platforms to be compared")
	}
	if !a.EqualIntroduced(d) {
		t.Error("EqualIntroduced should ignore unavailable platforms")
	}
	if a.EqualIntroduced(c) {
		t.Error("EqualIntroduced should still compare versions")
	}
}

func TestAvailabilityPlatforms(t *testing.T) {
	t.Parallel()

	a := Availability{
		Introduced:  []Requirement{{"tvOS", "17"}, {"iOS", "17"}, {"watchOS", "10"}},
		Unavailable: []string{"watchOS"},
	}
	if diff := cmp.Diff([]string{"iOS", "tvOS"}, a.Platforms()); diff != "" {
		t.Errorf("Platforms (-want +got):\n%s", diff)
	}
	if !(Availability{}).IsEmpty() || a.IsEmpty() {
		t.Error("IsEmpty mismatch")
	}
	if got := NormalizeVersion("not.a.version"); got != "not.a.version" {
		t.Errorf("NormalizeVersion = %q", got)
	}
}

func TestChunks(t *testing.T) {
	t.Parallel()

	names := []string{"a", "b", "c", "d", "e", "f", "g"}
	for size := 1; size <= len(names)+1; size++ {
		chunks, err := Chunks(names, size)
		if err != nil {
			t.Fatalf("Chunks(%d): %v", size, err)
		}
		var flat []string
		for i, c := range chunks {
			if len(c) > size {
				t.Errorf("size %d: chunk %d has %d names", size, i, len(c))
			}
			if i < len(chunks)-1 && len(c) != size {
				t.Errorf("size %d: non-final chunk %d is short", size, i)
			}
			flat = append(flat, c...)
		}
		if diff := cmp.Diff(names, flat); diff != "" {
			t.Errorf("size %d: union (-want +got):\n%s", size, diff)
		}
	}

	if _, err := Chunks(names, 0); err == nil {
		t.Error("expected error for size 0")
	}
	if chunks, _ := Chunks(nil, 3); len(chunks) != 0 {
		t.Errorf("expected no chunks, got %v", chunks)
	}
}

func TestCatalogNames(t *testing.T) {
	t.Parallel()

	c := &Catalog{
		Modifiers: []Modifier{{Name: "blur"}, {Name: "fade"}},
	}
	if diff := cmp.Diff([]string{"blur", "fade"}, c.Names()); diff != "" {
		t.Errorf("Names (-want +got):\n%s", diff)
	}
}
