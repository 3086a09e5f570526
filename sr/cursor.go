package sr

import (
	"github.com/caio-sobreiro/dicomsr/tree"
	"github.com/caio-sobreiro/dicomsr/types"
)

// DocumentTreeNodeCursor is a tree cursor over SR content items with
// filter based search.
type DocumentTreeNodeCursor struct {
	tree.Cursor[*Node]
}

// NewDocumentTreeNodeCursor returns a cursor positioned on node.
func NewDocumentTreeNodeCursor(node *Node) *DocumentTreeNodeCursor {
	return &DocumentTreeNodeCursor{Cursor: tree.NewCursor(node)}
}

// Clone returns an independent copy of the cursor.
func (c *DocumentTreeNodeCursor) Clone() *DocumentTreeNodeCursor {
	return &DocumentTreeNodeCursor{Cursor: c.Cursor.Clone()}
}

// GotoMatchingNode searches forward from the current node, which itself
// is eligible, for a node accepted by filter.
func (c *DocumentTreeNodeCursor) GotoMatchingNode(filter NodeFilter, deep bool) tree.NodeID {
	if filter == nil {
		return 0
	}
	return c.GotoMatch(filter.Matches, deep)
}

// GotoNextMatchingNode is GotoMatchingNode starting after the current node.
func (c *DocumentTreeNodeCursor) GotoNextMatchingNode(filter NodeFilter, deep bool) tree.NodeID {
	if filter == nil || c.Iterate(deep) == 0 {
		return 0
	}
	return c.GotoMatchingNode(filter, deep)
}

// GotoNodeEqual searches forward for a node with the same relationship
// type, value type and concept name as node.
func (c *DocumentTreeNodeCursor) GotoNodeEqual(node *Node) tree.NodeID {
	if node == nil {
		return 0
	}
	return c.GotoMatch(node.Equal, true)
}

// IncludedTemplateNodeCursor descends from included template nodes into
// the root of the referenced template, splicing its content into the
// traversal.
type IncludedTemplateNodeCursor struct {
	DocumentTreeNodeCursor
}

// NewIncludedTemplateNodeCursor returns a cursor positioned on node. With
// PositionDontCountIncludedTemplateNodes the template nodes do not occupy
// a position, so positions match the expanded document.
func NewIncludedTemplateNodeCursor(node *Node, flags tree.PositionFlags) *IncludedTemplateNodeCursor {
	traversal := tree.Traversal[*Node]{Child: includedChild}
	if flags&PositionDontCountIncludedTemplateNodes != 0 {
		traversal.Counted = func(n *Node) bool {
			return n.valueType != types.ValueTypeIncludedTemplate
		}
	}
	return &IncludedTemplateNodeCursor{
		DocumentTreeNodeCursor{Cursor: tree.NewCursorWithTraversal(node, flags, traversal)},
	}
}

func includedChild(n *Node) *Node {
	if n.valueType != types.ValueTypeIncludedTemplate {
		return n.Down()
	}
	if tc, ok := n.content.(*IncludedTemplateContent); ok && tc.Template != nil {
		return tc.Template.Root()
	}
	return nil
}
