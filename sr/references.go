package sr

import (
	"strings"

	"github.com/caio-sobreiro/dicomsr/tree"
	"github.com/caio-sobreiro/dicomsr/types"
)

type referenceMode int

const (
	// recompute positions from the target identities
	updateReferencePositions referenceMode = iota
	// resolve target identities from the stored positions
	updateReferenceNodeIDs
)

// isAncestorPosition reports whether ancestor is position itself or one of
// its ancestors, e.g. "1.2" for "1.2.3".
func isAncestorPosition(ancestor, position string) bool {
	if ancestor == "" || position == "" {
		return false
	}
	return position == ancestor || strings.HasPrefix(position, ancestor+".")
}

type referenceSource struct {
	node     *Node
	position string
	owner    *Node
}

// checkByReferenceRelationships walks the expanded tree, resolves every
// by-reference item in the given mode, flags the targets and reports
// references that are unresolvable, circular or not allowed by the
// constraint checker. It returns the number of invalid references.
func (t *DocumentTree) checkByReferenceRelationships(mode referenceMode, r *reporter) int {
	byPosition := make(map[string]*Node)
	positionOf := make(map[tree.NodeID]string)
	var references []referenceSource

	cursor := t.CreateIncludedTemplateCursor(PositionDontCountIncludedTemplateNodes)
	for cursor.IsValid() {
		node := cursor.Node()
		node.referenceTarget = false
		if node.valueType != types.ValueTypeIncludedTemplate {
			position := cursor.Position()
			if _, seen := byPosition[position]; !seen {
				byPosition[position] = node
			}
			if _, seen := positionOf[node.NodeID()]; !seen {
				positionOf[node.NodeID()] = position
			}
			if node.valueType == types.ValueTypeByReference {
				references = append(references, referenceSource{
					node:     node,
					position: position,
					owner:    ownerOf(&cursor.Cursor),
				})
			}
		}
		if cursor.Iterate(true) == 0 {
			break
		}
	}

	invalid := 0
	for _, ref := range references {
		content, ok := ref.node.content.(*ByReferenceContent)
		if !ok {
			continue
		}
		var target *Node
		switch mode {
		case updateReferenceNodeIDs:
			target = byPosition[content.ReferencedPosition]
			if target != nil {
				content.TargetID = target.NodeID()
			}
		default:
			if position, found := positionOf[content.TargetID]; found {
				target = byPosition[position]
				content.ReferencedPosition = position
			}
		}
		if target == nil {
			invalid++
			r.warn(ref.position, "referenced content item %q not found", content.ReferencedPosition)
			continue
		}
		target.referenceTarget = true
		ownerPosition := ""
		if ref.owner != nil {
			ownerPosition = positionOf[ref.owner.NodeID()]
		}
		if isAncestorPosition(content.ReferencedPosition, ownerPosition) {
			invalid++
			r.warn(ref.position, "by-reference relationship to %s creates a loop", content.ReferencedPosition)
			continue
		}
		if t.checker != nil && ref.owner != nil {
			if !t.checker.IsByReferenceAllowed() ||
				!t.checker.CheckContentRelationship(ref.owner.valueType, ref.node.relationshipType, target.valueType, true) {
				invalid++
				r.warn(ref.position, "invalid by-reference relationship %s %s %s",
					ref.owner.valueType, ref.node.relationshipType, target.valueType)
			}
		}
	}
	return invalid
}

// ownerOf returns the nearest ancestor of the cursor's node that is not an
// included template placeholder.
func ownerOf(c *tree.Cursor[*Node]) *Node {
	for i := 0; i < c.Depth(); i++ {
		if a := c.Ancestor(i); a.valueType != types.ValueTypeIncludedTemplate {
			return a
		}
	}
	return nil
}

// UpdateByReferencePositions recomputes the referenced positions of all
// by-reference items from their target identities. Call it after the tree
// structure changed.
func (t *DocumentTree) UpdateByReferencePositions() Diagnostics {
	r := newReporter(t.logger)
	t.checkByReferenceRelationships(updateReferencePositions, r)
	return r.diags
}

// ResolveReferences binds every by-reference item to the node at its
// referenced position.
func (t *DocumentTree) ResolveReferences() Diagnostics {
	r := newReporter(t.logger)
	t.checkByReferenceRelationships(updateReferenceNodeIDs, r)
	return r.diags
}
