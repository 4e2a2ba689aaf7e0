package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "modgen.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	t.Parallel()

	c, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if c.Package != "modifiers" {
		t.Errorf("package = %q", c.Package)
	}
	if !c.IsTarget("SwiftUI.View") || !c.IsTarget("View") || c.IsTarget("Text") {
		t.Errorf("targets = %v", c.Targets)
	}
	for _, name := range []string{"environment", "font", "searchScopes", "userActivity"} {
		if !c.IsDenied(name) {
			t.Errorf("%s should be denied", name)
		}
	}
	if !c.IsRequired("Image.DynamicRange") || !c.IsRequired("BlendMode") {
		t.Error("required types missing")
	}
	if !c.Disambiguates("toolbar") || !c.IsMarker("ParseableExpression") {
		t.Error("disambiguate/markers missing")
	}
	if len(c.ExtraModifierTypes) != 20 {
		t.Errorf("extra modifier types = %d, want 20", len(c.ExtraModifierTypes))
	}
	scale := c.ExtraModifiers["scale"]
	if len(scale) != 2 || scale[1].Parameters[0].SecondName != "Scale" {
		t.Errorf("scale signatures = %+v", scale)
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
package = "gen"
denylist = ["blur"]

[[extra_modifiers.glow]]
parameters = [{ first_name = "radius", type = "CGFloat" }]
`)
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Package != "gen" {
		t.Errorf("package = %q", c.Package)
	}
	if diff := cmp.Diff([]string{"blur"}, c.Denylist); diff != "" {
		t.Errorf("denylist (-want +got):\n%s", diff)
	}
	if !c.IsRequired("BlendMode") {
		t.Error("required_types should keep defaults")
	}
	if _, ok := c.ExtraModifiers["fill"]; ok {
		t.Error("extra_modifiers should be replaced as a whole")
	}
	if len(c.ExtraModifiers["glow"]) != 1 {
		t.Errorf("glow = %+v", c.ExtraModifiers["glow"])
	}
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"unknown key", "pakage = \"x\"\n", "unknown keys pakage"},
		{"bad package", "package = \"not-go\"\n", "not a valid Go identifier"},
		{"no targets", "targets = []\n", "targets"},
		{"bad extra type", "extra_modifier_types = [\"Fill\"]\n", "_NameModifier"},
		{"syntax", "package = \n", "reading config"},
		{"incomplete extra", "[[extra_modifiers.x]]\nparameters = [{ type = \"Int\" }]\n", "first_name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Load(writeConfig(t, tt.content))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want containing %q", err, tt.want)
			}
		})
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestExtraModifierName(t *testing.T) {
	t.Parallel()

	tests := []struct{ typ, want string }{
		{"_FillModifier", "fill"},
		{"_ScaleModifier<R>", "scale"},
		{"_Rotation3DEffectModifier<R>", "rotation3DEffect"},
		{"_SymmetricDifferenceModifier", "symmetricDifference"},
		{"_MatchedGeometryEffectModifier<R>", "matchedGeometryEffect"},
	}
	for _, tt := range tests {
		if got := ExtraModifierName(tt.typ); got != tt.want {
			t.Errorf("ExtraModifierName(%q) = %q, want %q", tt.typ, got, tt.want)
		}
	}
	if got := ExtraBaseName("_ScaleModifier<R>"); got != "_ScaleModifier" {
		t.Errorf("ExtraBaseName = %q", got)
	}
}
