// Package parse extracts type declarations from secondary source files using
// tree-sitter.
package parse

import (
	"context"
	"slices"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/modgen/internal/lang"
	"github.com/phobologic/modgen/internal/model"
)

var nameTypes = map[string]struct{}{
	"type_identifier":   {},
	"user_type":         {},
	"simple_identifier": {},
}

// Declarations parses a source file and returns its type declarations in
// source order. Nested declarations are qualified by their enclosing type.
// A declaration is parseable when one of markers appears among its
// attributes or conformances. filePath is used only for TypeDecl.File.
func Declarations(l *lang.Language, parser *sitter.Parser, source []byte, filePath string, markers []string) []model.TypeDecl {
	if len(source) == 0 {
		return nil
	}

	tree, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil
	}
	defer tree.Close()

	w := &walker{lang: l, source: source, file: filePath, markers: markers}
	w.visit(tree.RootNode(), "")
	return w.decls
}

type walker struct {
	lang    *lang.Language
	source  []byte
	file    string
	markers []string
	decls   []model.TypeDecl
}

func (w *walker) visit(node *sitter.Node, scope string) {
	if w.lang.IsDeclaration(node) {
		decl, body := w.declaration(node, scope)
		if decl.Name == "" {
			return
		}
		w.decls = append(w.decls, decl)
		if body != nil {
			for i := 0; i < int(body.NamedChildCount()); i++ {
				w.visit(body.NamedChild(i), decl.Name)
			}
		}
		return
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		w.visit(node.NamedChild(i), scope)
	}
}

func (w *walker) declaration(node *sitter.Node, scope string) (model.TypeDecl, *sitter.Node) {
	decl := model.TypeDecl{
		Kind: model.DeclKind(w.lang.DeclarationKind(node)),
		File: w.file,
		Line: int(node.StartPoint().Row) + 1,
	}

	var nameNode, body *sitter.Node
	var header []string
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch {
		case body != nil:
		case strings.HasSuffix(child.Type(), "_body"):
			body = child
		case nameNode == nil && isName(child):
			nameNode = child
		default:
			header = append(header, identifiers(child, w.source)...)
		}
	}
	if nameNode == nil {
		return decl, nil
	}

	name := lang.NodeText(nameNode, w.source)
	if i := strings.IndexByte(name, '<'); i >= 0 {
		name = name[:i]
	}
	name = strings.TrimSpace(name)
	if scope != "" && decl.Kind != model.ExtensionKind {
		name = scope + "." + name
	}
	decl.Name = name

	for _, m := range w.markers {
		if slices.Contains(header, m) {
			decl.Parseable = true
			break
		}
	}

	if body != nil && decl.Kind == model.EnumKind {
		decl.Cases = cases(body, w.source)
	}

	own := lang.NodeText(nameNode, w.source)
	refs := make(map[string]struct{})
	for _, id := range identifiers(node, w.source) {
		if id != own && !slices.Contains(w.markers, id) {
			refs[id] = struct{}{}
		}
	}
	for id := range refs {
		decl.References = append(decl.References, id)
	}
	sort.Strings(decl.References)
	return decl, body
}

func isName(node *sitter.Node) bool {
	_, ok := nameTypes[node.Type()]
	return ok
}

// identifiers returns the text of every type_identifier under node.
func identifiers(node *sitter.Node, source []byte) []string {
	if node.Type() == "type_identifier" {
		return []string{lang.NodeText(node, source)}
	}
	var out []string
	for i := 0; i < int(node.NamedChildCount()); i++ {
		out = append(out, identifiers(node.NamedChild(i), source)...)
	}
	return out
}

// cases collects enum_entry names directly inside an enum body. Associated
// value labels live deeper in the entry and are not picked up.
func cases(body *sitter.Node, source []byte) []string {
	var out []string
	for i := 0; i < int(body.NamedChildCount()); i++ {
		entry := body.NamedChild(i)
		if entry.Type() != "enum_entry" {
			continue
		}
		for j := 0; j < int(entry.NamedChildCount()); j++ {
			if c := entry.NamedChild(j); c.Type() == "simple_identifier" {
				out = append(out, lang.NodeText(c, source))
			}
		}
	}
	return out
}
