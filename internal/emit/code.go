// Package emit renders a catalog either as Go source built on the dispatch
// runtime or as a schema document for external tooling.
package emit

import (
	"bytes"
	"fmt"
	"io"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/tools/imports"

	"github.com/phobologic/modgen/internal/config"
	"github.com/phobologic/modgen/internal/model"
)

// Header is the first line of every generated file.
const Header = "// Code generated by modgen. DO NOT EDIT."

// DispatchImport is the import path of the runtime the generated code uses.
const DispatchImport = "github.com/phobologic/modgen/dispatch"

// Options controls code generation.
type Options struct {
	// Package is the package clause of the generated file.
	Package string
	// ChunkSize bounds the number of modifiers per chunk parser.
	ChunkSize int
}

// operation is one method of the generated Operations interface.
type operation struct {
	method string
	value  string
}

type generator struct {
	buf bytes.Buffer
	cat *model.Catalog
	ops []operation
}

func (g *generator) p(format string, args ...any) {
	fmt.Fprintf(&g.buf, format, args...)
	g.buf.WriteByte('\n')
}

// Code writes the Go source for cat to w. The output is gofmt formatted and
// depends only on cat and opts.
func Code(w io.Writer, cat *model.Catalog, opts Options) error {
	chunks, err := model.Chunks(cat.Names(), opts.ChunkSize)
	if err != nil {
		return err
	}

	g := &generator{cat: cat}
	g.header(opts.Package)
	for _, m := range cat.Modifiers {
		g.modifier(m)
	}
	g.operations()
	g.chunks(chunks)
	g.extras()
	g.deprecations()
	g.dispatcher()
	for _, e := range cat.Enums {
		g.enum(e)
	}

	src, err := imports.Process("modifiers.go", g.buf.Bytes(), &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		return errors.Wrap(err, "formatting generated code")
	}
	if _, err := w.Write(src); err != nil {
		return errors.Wrap(err, "writing generated code")
	}
	return nil
}

func (g *generator) header(pkg string) {
	g.p("%s", Header)
	g.p("")
	g.p("// Package %s holds the modifier parsers generated from the framework", pkg)
	g.p("// interface. The host package supplies an Operations implementation and a")
	g.p("// Parse function for every hand-written modifier type listed in")
	g.p("// builtinExtras.")
	g.p("package %s", pkg)
	g.p("")
	g.p("import %q", DispatchImport)
	g.p("")
}

func (g *generator) modifier(m model.Modifier) {
	goName := exported(m.Name)
	value := goName + "Value"
	never := unexported(goName) + "Never"

	g.p("// %sModifier is the `%s` modifier.", goName, m.Name)
	g.p("type %sModifier struct {", goName)
	g.p("Value %s", value)
	g.p("}")
	g.p("")
	g.p("// %s is implemented by the %sSignature types.", value, goName)
	g.p("type %s interface {", value)
	g.p("is%s()", value)
	g.p("}")
	g.p("")
	g.p("// %s is never produced by the parser.", never)
	g.p("type %s struct{}", never)
	g.p("")
	g.p("func (%s) is%s() {}", never, value)
	g.p("")

	var parsers []string
	for i, sig := range m.Signatures {
		sigName := fmt.Sprintf("%sSignature%d", goName, i)
		parsers = append(parsers, "parse"+sigName)
		g.ops = append(g.ops, operation{method: sigName, value: sigName})
		g.signature(m.Name, sigName, value, sig)
	}

	g.p("func parse%sModifier(in *dispatch.Input, ctx *dispatch.Context) (dispatch.Modifier, error) {", goName)
	g.p("call, err := dispatch.ReadCall(in)")
	g.p("if err != nil {")
	g.p("return nil, err")
	g.p("}")
	g.p("v, err := dispatch.Overload(call, ctx, %s)", strings.Join(parsers, ", "))
	g.p("if err != nil {")
	g.p("return nil, err")
	g.p("}")
	g.p("return &%sModifier{Value: v}, nil", goName)
	g.p("}")
	g.p("")
	g.p("// Name returns %q.", m.Name)
	g.p("func (*%sModifier) Name() string { return %q }", goName, m.Name)
	g.p("")
	g.p("// Apply invokes the operation matching the parsed signature.")
	g.p("func (m *%sModifier) Apply(ops Operations, content dispatch.Content) dispatch.Content {", goName)
	g.p("switch v := m.Value.(type) {")
	for i := range m.Signatures {
		sigName := fmt.Sprintf("%sSignature%d", goName, i)
		g.p("case %s:", sigName)
		g.p("return ops.%s(content, v)", sigName)
	}
	g.p("case %s:", never)
	g.p("panic(\"unreachable\")")
	g.p("}")
	g.p("panic(%q)", "modifiers: "+m.Name+" has no value")
	g.p("}")
	g.p("")
}

func (g *generator) signature(name, sigName, value string, sig model.Signature) {
	fields := fieldNames(sig)
	types := make([]goType, len(sig.Parameters))
	for i, p := range sig.Parameters {
		types[i] = typeOf(p, g.cat.Enums)
	}

	g.p("// %s holds the arguments of %s.", sigName, selector(name, sig))
	if len(fields) == 0 {
		g.p("type %s struct{}", sigName)
	} else {
		g.p("type %s struct {", sigName)
		for i, f := range fields {
			g.p("%s %s", f, types[i].Expr)
		}
		g.p("}")
	}
	g.p("")
	g.p("func (%s) is%s() {}", sigName, value)
	g.p("")

	g.p("func parse%s(call *dispatch.Call, ctx *dispatch.Context) (%s, error) {", sigName, value)
	g.p("b := dispatch.NewBinder(call)")
	for i, p := range sig.Parameters {
		g.p("p%d, err := dispatch.Bind(b, %q, %t, %s, ctx)", i, p.Label(), p.HasDefault, types[i].Conv)
		g.p("if err != nil {")
		g.p("return nil, err")
		g.p("}")
	}
	g.p("if err := b.Done(); err != nil {")
	g.p("return nil, err")
	g.p("}")
	inits := make([]string, len(fields))
	for i, f := range fields {
		inits[i] = fmt.Sprintf("%s: p%d", f, i)
	}
	g.p("return %s{%s}, nil", sigName, strings.Join(inits, ", "))
	g.p("}")
	g.p("")
}

func (g *generator) operations() {
	g.p("// Operations is implemented by the host. Each method applies one")
	g.p("// modifier overload to content.")
	g.p("type Operations interface {")
	for _, op := range g.ops {
		g.p("%s(content dispatch.Content, v %s) dispatch.Content", op.method, op.value)
	}
	g.p("}")
	g.p("")
}

func (g *generator) chunks(chunks [][]string) {
	for i, chunk := range chunks {
		g.p("func parseBuiltinChunk%d(name string, in *dispatch.Input, ctx *dispatch.Context) (dispatch.Modifier, error) {", i)
		g.p("switch name {")
		for _, name := range chunk {
			g.p("case %q:", name)
			g.p("return parse%sModifier(in, ctx)", exported(name))
		}
		g.p("}")
		g.p("return nil, dispatch.NewUnknownModifier(name, dispatch.Metadata{})")
		g.p("}")
		g.p("")
	}

	g.p("var builtinChunks = map[string]dispatch.ChunkFunc{")
	for i, chunk := range chunks {
		for _, name := range chunk {
			g.p("%q: parseBuiltinChunk%d,", name, i)
		}
	}
	g.p("}")
	g.p("")
}

func (g *generator) extras() {
	byName := make(map[string]string, len(g.cat.Extras))
	for _, typ := range g.cat.Extras {
		byName[config.ExtraModifierName(typ)] = extraParser(typ)
	}
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	g.p("var builtinExtras = map[string]dispatch.ParseFunc{")
	for _, name := range names {
		g.p("%q: %s,", name, byName[name])
	}
	g.p("}")
	g.p("")
}

func (g *generator) deprecations() {
	names := make([]string, 0, len(g.cat.Deprecations))
	for name := range g.cat.Deprecations {
		names = append(names, name)
	}
	sort.Strings(names)

	g.p("var builtinDeprecations = map[string]string{")
	for _, name := range names {
		g.p("%q: %s,", name, strconv.Quote(g.cat.Deprecations[name]))
	}
	g.p("}")
	g.p("")
}

func (g *generator) dispatcher() {
	g.p("// NewDispatcher returns a dispatcher over the generated tables.")
	g.p("func NewDispatcher(ext dispatch.Extensions) *dispatch.Dispatcher {")
	g.p("return dispatch.NewDispatcher(builtinChunks, builtinExtras, builtinDeprecations, ext)")
	g.p("}")
	g.p("")
}

func (g *generator) enum(e model.EnumType) {
	goName := typeName(e.Name)

	g.p("// %s is a case of %s.", goName, e.Name)
	g.p("type %s string", goName)
	g.p("")
	if len(e.Cases) > 0 {
		g.p("const (")
		for _, c := range e.Cases {
			g.p("%s%s %s = %q", goName, exported(c.Name), goName, c.Name)
		}
		g.p(")")
		g.p("")
	}

	g.p("// Parse%s reads a %s case name.", goName, e.Name)
	g.p("func Parse%s(v dispatch.Value, ctx *dispatch.Context) (%s, error) {", goName, goName)
	if !e.Availability.IsEmpty() {
		g.require(e.Name, e.Availability)
	}
	g.p("name, err := dispatch.CaseName(v, ctx)")
	g.p("if err != nil {")
	g.p("return \"\", err")
	g.p("}")
	g.p("switch name {")
	for _, c := range e.Cases {
		g.p("case %q:", c.Name)
		if !c.Availability.IsEmpty() && !c.Availability.EqualIntroduced(e.Availability) {
			g.require(e.Name+"."+c.Name, c.Availability)
		}
		g.p("return %s%s, nil", goName, exported(c.Name))
	}
	g.p("}")
	g.p("return \"\", dispatch.UnknownCase(%q, name)", e.Name)
	g.p("}")
	g.p("")
}

func (g *generator) require(name string, a model.Availability) {
	g.p("if err := ctx.Require(%q, %s); err != nil {", name, availabilityLiteral(a))
	g.p("return \"\", err")
	g.p("}")
}

// availabilityLiteral renders a as a dispatch.Availability composite literal
// with requirements sorted by platform. Requirements for a platform that is
// also unavailable are dropped.
func availabilityLiteral(a model.Availability) string {
	platforms := a.Platforms()
	var reqs []model.Requirement
	for _, r := range a.Introduced {
		if slices.Contains(platforms, r.Platform) {
			reqs = append(reqs, r)
		}
	}
	sort.SliceStable(reqs, func(i, j int) bool { return reqs[i].Platform < reqs[j].Platform })
	unavailable := append([]string(nil), a.Unavailable...)
	sort.Strings(unavailable)

	var parts []string
	if len(reqs) > 0 {
		items := make([]string, len(reqs))
		for i, r := range reqs {
			items[i] = fmt.Sprintf("{Platform: %s, Version: %q}", platformConstant(r.Platform), r.Version)
		}
		parts = append(parts, "Introduced: []dispatch.Requirement{"+strings.Join(items, ", ")+"}")
	}
	if len(unavailable) > 0 {
		items := make([]string, len(unavailable))
		for i, p := range unavailable {
			items[i] = platformConstant(p)
		}
		parts = append(parts, "Unavailable: []dispatch.Platform{"+strings.Join(items, ", ")+"}")
	}
	return "dispatch.Availability{" + strings.Join(parts, ", ") + "}"
}
