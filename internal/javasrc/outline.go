package javasrc

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"
)

// ClassOutline names the visitor class declared in a Java source.
type ClassOutline struct {
	Name       string
	SuperClass string
}

// Outline parses src and returns the first top-level class declaration.
// A source without a class yields an empty outline and no error.
func Outline(ctx context.Context, src []byte) (ClassOutline, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(java.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return ClassOutline{}, fmt.Errorf("failed to parse source: %w", err)
	}

	root := tree.RootNode()
	for j := 0; j < int(root.NamedChildCount()); j++ {
		node := root.NamedChild(j)
		if node.Type() != "class_declaration" {
			continue
		}
		return classOutline(node, src), nil
	}
	return ClassOutline{}, nil
}

func classOutline(node *sitter.Node, src []byte) ClassOutline {
	var outline ClassOutline
	if name := node.ChildByFieldName("name"); name != nil {
		outline.Name = name.Content(src)
	}
	if super := node.ChildByFieldName("superclass"); super != nil && super.NamedChildCount() > 0 {
		outline.SuperClass = rawTypeName(super.NamedChild(0).Content(src))
	}
	return outline
}

// rawTypeName drops type arguments, "Foo<Bar>" becomes "Foo".
func rawTypeName(s string) string {
	if i := strings.IndexByte(s, '<'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
