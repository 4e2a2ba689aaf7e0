package catalog

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/phobologic/modgen/internal/config"
	"github.com/phobologic/modgen/internal/iface"
	"github.com/phobologic/modgen/internal/model"
)

const fixture = `import Swift

@available(iOS 13.0, *)
extension SwiftUI.View {
  public func fade(amount: Swift.Double) -> some SwiftUI.View
  public func fade(amount: Double) -> some SwiftUI.View
  public func fade(_ amount: Swift.Double, animated: Swift.Bool = false) -> some SwiftUI.View
  public func overlay<V>(@SwiftUI.ViewBuilder content: (Swift.Int) -> V) -> some SwiftUI.View where V : SwiftUI.View
  public func overlay<V>(alignment: SwiftUI.Alignment = .center, @SwiftUI.ViewBuilder content: () -> V) -> some SwiftUI.View where V : SwiftUI.View
  public func onHover(perform action: @escaping (Swift.Bool) -> Swift.Void) -> some SwiftUI.View
  public func transform(_ body: @escaping (Swift.Int) -> Swift.Int) -> some SwiftUI.View
  public func focusBinding(_ b: SwiftUI.FocusState<Swift.Bool>.Binding) -> some SwiftUI.View
  public func toolbar<C>(@SwiftUI.ViewBuilder content: () -> C) -> some SwiftUI.View where C : SwiftUI.View
  public func toolbar<C>(@SwiftUI.ToolbarContentBuilder content: () -> C) -> some SwiftUI.View where C : SwiftUI.ToolbarContent
  public func toolbar(_ visibility: SwiftUI.Visibility) -> some SwiftUI.View
  public func _internal() -> some SwiftUI.View
  public func environment<V>(_ key: V) -> some SwiftUI.View
  public static func staticThing() -> Swift.Int
  @available(*, deprecated, message: "use fade instead")
  public func blink() -> some SwiftUI.View
  @available(iOS, introduced: 13.0, deprecated: 15.0, renamed: "tint(_:)")
  public func accentColor(_ color: SwiftUI.Color?) -> some SwiftUI.View
  @available(*, deprecated)
  public func _hidden() -> some SwiftUI.View
}

extension SwiftUI.Text {
  public func kerning(_ k: CoreGraphics.CGFloat) -> SwiftUI.Text
}

@available(iOS 13.0, macOS 10.15, *)
public enum BlendMode {
  case normal
  @available(iOS 13.0, macOS 10.15, *)
  case multiply
  @available(iOS 17.0, macOS 14.0, *)
  case plusDarker
}

extension SwiftUI.Image {
  @available(iOS 17.0, *)
  public struct DynamicRange : Swift.Hashable {
    public static let standard: SwiftUI.Image.DynamicRange
    public static let high: SwiftUI.Image.DynamicRange
    public static func custom() -> Self
    public var other: Swift.Int { get }
  }
}

@available(iOS 17.0, *)
extension SwiftUI.Image.DynamicRange {
  public static let constrainedHigh: SwiftUI.Image.DynamicRange
  public static let high: SwiftUI.Image.DynamicRange
}

public struct GraphicsContext {
  public enum BlendMode { case other }
}
`

func setup(t *testing.T) (*iface.File, *config.Config) {
	t.Helper()
	f, err := iface.Parse(fixture)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	cfg, err := config.Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	return f, cfg
}

func sigOf(t *testing.T, params ...[2]string) model.Signature {
	t.Helper()
	var sig model.Signature
	for _, p := range params {
		typ, err := iface.ParseType(p[1])
		if err != nil {
			t.Fatalf("ParseType(%q): %v", p[1], err)
		}
		sig.Parameters = append(sig.Parameters, model.Parameter{FirstName: p[0], Type: typ})
	}
	return sig
}

func describe(sigs []model.Signature) []string {
	var out []string
	for _, s := range sigs {
		line := ""
		for i, p := range s.Parameters {
			if i > 0 {
				line += ", "
			}
			line += p.FirstName + ": " + p.SimpleType()
		}
		out = append(out, "("+line+")")
	}
	return out
}

func TestCollect(t *testing.T) {
	t.Parallel()
	f, cfg := setup(t)

	c := Collect(f, cfg)
	want := []string{"fade", "overlay", "onHover", "transform", "focusBinding", "toolbar", "_internal", "environment"}
	if diff := cmp.Diff(want, c.Names); diff != "" {
		t.Errorf("names (-want +got):\n%s", diff)
	}
	if n := len(c.Overloads["fade"]); n != 3 {
		t.Errorf("fade overloads = %d, want 3", n)
	}
	wantDep := map[string]string{
		"blink":       "use fade instead",
		"accentColor": "use `tint(_:)` instead",
		"_hidden":     "`_hidden` is deprecated",
	}
	if diff := cmp.Diff(wantDep, c.Deprecations); diff != "" {
		t.Errorf("deprecations (-want +got):\n%s", diff)
	}
}

func TestBuild(t *testing.T) {
	t.Parallel()
	f, cfg := setup(t)

	var diag bytes.Buffer
	cat, err := Build(f, cfg, &diag)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	wantDiag := "`_internal` will be skipped\n" +
		"`environment` will be skipped\n" +
		"`focusBinding` will be skipped\n" +
		"`transform` will be skipped\n"
	if diff := cmp.Diff(wantDiag, diag.String()); diff != "" {
		t.Errorf("diagnostics (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff([]string{"fade", "onHover", "overlay", "toolbar"}, cat.Names()); diff != "" {
		t.Errorf("modifiers (-want +got):\n%s", diff)
	}

	got := map[string][]string{}
	for _, m := range cat.Modifiers {
		got[m.Name] = describe(m.Signatures)
	}
	want := map[string][]string{
		"fade":    {"(amount: Double)", "(_: Double, animated: Bool)"},
		"onHover": {"(perform: (Swift.Bool) -> Swift.Void)"},
		"overlay": {"(alignment: Alignment, content: ViewReference)"},
		"toolbar": {"(content: ToolbarContentReference)", "(_: Visibility)"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("signatures (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff(map[string]string{"blink": "use fade instead", "accentColor": "use `tint(_:)` instead"}, cat.Deprecations); diff != "" {
		t.Errorf("deprecations (-want +got):\n%s", diff)
	}
	if len(cat.Extras) != len(cfg.ExtraModifierTypes) || cat.Extras[0] != "_FillModifier" {
		t.Errorf("extras = %v", cat.Extras)
	}
	if len(cat.ExtraSignatures["scale"]) != 2 {
		t.Errorf("extra scale signatures = %d", len(cat.ExtraSignatures["scale"]))
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	t.Parallel()
	f, cfg := setup(t)

	var d1, d2 bytes.Buffer
	a, err := Build(f, cfg, &d1)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Build(f, cfg, &d2)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(a.Names(), b.Names()); diff != "" {
		t.Errorf("names differ:\n%s", diff)
	}
	if d1.String() != d2.String() {
		t.Error("diagnostics differ between runs")
	}
}

func TestEnums(t *testing.T) {
	t.Parallel()
	f, cfg := setup(t)

	enums := Enums(f, cfg)
	if len(enums) != 2 {
		t.Fatalf("expected 2 enums, got %+v", enums)
	}

	blend := enums[0]
	if blend.Name != "BlendMode" {
		t.Fatalf("first enum = %q", blend.Name)
	}
	var cases []string
	for _, c := range blend.Cases {
		cases = append(cases, c.Name)
	}
	if diff := cmp.Diff([]string{"normal", "multiply", "plusDarker"}, cases); diff != "" {
		t.Errorf("BlendMode cases (-want +got):\n%s", diff)
	}
	if !blend.Cases[0].Availability.IsEmpty() {
		t.Errorf("normal availability = %+v", blend.Cases[0].Availability)
	}
	if !blend.Cases[1].Availability.Equal(blend.Availability) {
		t.Errorf("multiply should match type availability")
	}
	if blend.Cases[2].Availability.Equal(blend.Availability) {
		t.Errorf("plusDarker should be narrower than type availability")
	}

	dr := enums[1]
	if dr.Name != "Image.DynamicRange" {
		t.Fatalf("second enum = %q", dr.Name)
	}
	cases = nil
	for _, c := range dr.Cases {
		cases = append(cases, c.Name)
	}
	if diff := cmp.Diff([]string{"standard", "high", "constrainedHigh"}, cases); diff != "" {
		t.Errorf("DynamicRange cases (-want +got):\n%s", diff)
	}
	wantAv := model.Availability{Introduced: []model.Requirement{{Platform: "iOS", Version: "17.0"}}}
	if diff := cmp.Diff(wantAv, dr.Availability); diff != "" {
		t.Errorf("DynamicRange availability (-want +got):\n%s", diff)
	}
	if !dr.Cases[2].Availability.Equal(dr.Availability) {
		t.Errorf("constrainedHigh should inherit its extension's availability")
	}
	if e, ok := EnumNamed(enums, "SwiftUI.Image.DynamicRange"); !ok || e.Name != "Image.DynamicRange" {
		t.Errorf("EnumNamed(SwiftUI.Image.DynamicRange) = %q, %v", e.Name, ok)
	}
	if _, ok := EnumNamed(enums, "SwiftUI.Visibility"); ok {
		t.Error("EnumNamed matched a type outside the catalog")
	}
}

func TestValid(t *testing.T) {
	t.Parallel()

	builder := func(attr, fn string) model.Signature {
		s := sigOf(t, [2]string{"content", fn})
		s.Parameters[0].Attributes = []string{attr}
		return s
	}

	tests := []struct {
		name string
		sig  model.Signature
		want bool
	}{
		{"plain", sigOf(t, [2]string{"amount", "Swift.Double"}), true},
		{"no parameters", model.Signature{}, true},
		{"void closure", sigOf(t, [2]string{"action", "@escaping () -> Swift.Void"}), true},
		{"empty tuple closure", sigOf(t, [2]string{"action", "(Swift.Int) -> ()"}), true},
		{"bare Void closure", sigOf(t, [2]string{"action", "() -> Void"}), true},
		{"returning closure", sigOf(t, [2]string{"action", "() -> Swift.Bool"}), false},
		{"optional closure", sigOf(t, [2]string{"action", "(() -> Swift.Bool)?"}), true},
		{"view builder", builder("ViewBuilder", "() -> C"), true},
		{"view builder with argument", builder("ViewBuilder", "(Swift.Int) -> C"), false},
		{"toolbar builder with argument", builder("ToolbarContentBuilder", "(Swift.Int) -> C"), false},
		{"builder on non-closure", builder("ViewBuilder", "C"), false},
		{"focus state", sigOf(t, [2]string{"_", "SwiftUI.FocusState<Swift.Bool>.Binding"}), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Valid(tt.sig); got != tt.want {
				t.Errorf("Valid = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidatorExhaustiveness(t *testing.T) {
	t.Parallel()
	_, cfg := setup(t)

	good := sigOf(t, [2]string{"a", "Swift.Int"})
	good2 := sigOf(t, [2]string{"b", "Swift.Int"})
	good3 := sigOf(t, [2]string{"c", "Swift.Int"})
	bad := sigOf(t, [2]string{"f", "() -> Swift.Int"})

	tests := []struct {
		name string
		sigs []model.Signature
		want int
	}{
		{"none invalid", []model.Signature{good, good2, good3}, 3},
		{"one invalid", []model.Signature{good, bad, good2}, 2},
		{"two invalid", []model.Signature{bad, good3, bad}, 1},
		{"all invalid", []model.Signature{bad, bad}, 0},
	}
	for _, tt := range tests {
		if got := len(retained("m", tt.sigs, cfg)); got != tt.want {
			t.Errorf("%s: retained %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestDedupe(t *testing.T) {
	t.Parallel()

	a := sigOf(t, [2]string{"x", "Swift.Double"})
	b := sigOf(t, [2]string{"x", "CoreGraphics.Double"})
	c := sigOf(t, [2]string{"x", "Swift.Double?"})
	d := sigOf(t, [2]string{"_", "Swift.Double"})

	once := Dedupe([]model.Signature{a, b, c, d, c, a})
	if diff := cmp.Diff([]string{"(x: Double)", "(x: Double?)", "(_: Double)"}, describe(once)); diff != "" {
		t.Errorf("Dedupe (-want +got):\n%s", diff)
	}
	if once[0].Parameters[0].Type.String() != "Swift.Double" {
		t.Error("first-seen signature should win")
	}
	twice := Dedupe(once)
	if diff := cmp.Diff(describe(once), describe(twice)); diff != "" {
		t.Errorf("Dedupe is not idempotent:\n%s", diff)
	}
}

func TestDisambiguate(t *testing.T) {
	t.Parallel()
	_, cfg := setup(t)

	withBuilder := func(attr string, lead ...[2]string) model.Signature {
		s := sigOf(t, append(lead, [2]string{"content", "() -> C"})...)
		s.Parameters[len(s.Parameters)-1].Attributes = []string{attr}
		return s
	}
	child := withBuilder(model.ViewBuilder, [2]string{"id", "Swift.String"})
	ref := withBuilder(model.ToolbarContentBuilder, [2]string{"id", "Swift.String"})
	lone := withBuilder(model.ViewBuilder)

	got := Disambiguate("toolbar", []model.Signature{child, ref, lone}, cfg)
	if diff := cmp.Diff([]string{"(id: String, content: ToolbarContentReference)", "(content: ViewReference)"}, describe(got)); diff != "" {
		t.Errorf("toolbar (-want +got):\n%s", diff)
	}

	got = Disambiguate("overlay", []model.Signature{child, ref}, cfg)
	if len(got) != 2 {
		t.Errorf("modifiers outside the disambiguate list must be untouched, got %d", len(got))
	}

	other := withBuilder(model.ToolbarContentBuilder, [2]string{"title", "Swift.String"})
	got = Disambiguate("toolbar", []model.Signature{child, other}, cfg)
	if len(got) != 2 {
		t.Errorf("signatures differing elsewhere must both survive, got %d", len(got))
	}
}
