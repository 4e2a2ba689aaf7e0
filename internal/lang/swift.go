package lang

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/swift"
)

func init() {
	Languages["swift"] = &Language{
		Name:             "swift",
		Extensions:       []string{".swift"},
		lang:             swift.GetLanguage(),
		DeclarationTypes: []string{"class_declaration", "protocol_declaration"},
		DeclarationKind:  swiftDeclarationKind,
	}
}

var swiftKinds = map[string]struct{}{
	"enum":      {},
	"struct":    {},
	"class":     {},
	"actor":     {},
	"protocol":  {},
	"extension": {},
}

// swiftDeclarationKind finds the keyword token of a declaration. The grammar
// folds enum, struct, class, actor and extension into class_declaration.
func swiftDeclarationKind(node *sitter.Node) string {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.IsNamed() {
			continue
		}
		if _, ok := swiftKinds[child.Type()]; ok {
			return child.Type()
		}
	}
	return ""
}
