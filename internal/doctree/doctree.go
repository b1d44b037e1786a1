// Package doctree nests a flat outline into a heading hierarchy.
package doctree

import "github.com/dgallion1/docoutline/internal/outline"

// DocTree is the root of a nested outline.
type DocTree struct {
	Title    string     `json:"title"`    // Document title as extracted
	Children []*DocNode `json:"children"` // Top-level headings
}

// DocNode is a heading with the headings nested under it.
type DocNode struct {
	Level    outline.HeadingLevel `json:"level"`
	Title    string               `json:"title"` // Heading text
	Page     int                  `json:"page"`
	Children []*DocNode           `json:"children,omitempty"`
}

// Build nests res.Outline: each entry becomes a child of the closest
// preceding entry that is more significant. Skipped levels are allowed, so
// an H3 directly under an H1 stays there.
func Build(res outline.Result) *DocTree {
	type stackEntry struct {
		node  *DocNode
		level outline.HeadingLevel
	}

	tree := &DocTree{Title: res.Title, Children: []*DocNode{}}
	// Root is level 0, so every heading nests under it.
	root := &DocNode{}
	stack := []stackEntry{{node: root, level: 0}}

	for _, e := range res.Outline {
		node := &DocNode{Level: e.Level, Title: e.Text, Page: e.Page}

		// Pop stack until we find a parent with lower level.
		for len(stack) > 1 && !stack[len(stack)-1].level.MoreSignificantThan(e.Level) {
			stack = stack[:len(stack)-1]
		}
		parent := stack[len(stack)-1].node
		parent.Children = append(parent.Children, node)
		stack = append(stack, stackEntry{node: node, level: e.Level})
	}

	if root.Children != nil {
		tree.Children = root.Children
	}
	return tree
}

// Walk visits every node depth-first in document order with its depth,
// starting at 0 for top-level headings.
func (t *DocTree) Walk(fn func(n *DocNode, depth int)) {
	var walk func(nodes []*DocNode, depth int)
	walk = func(nodes []*DocNode, depth int) {
		for _, n := range nodes {
			fn(n, depth)
			walk(n.Children, depth+1)
		}
	}
	walk(t.Children, 0)
}
