// Package sr implements the content tree of DICOM Structured Reporting
// documents: content items with value type specific payloads, their
// dataset and XML encodings, text and HTML rendering, cursors and filters.
package sr

import (
	"fmt"
	"log/slog"

	srerrors "github.com/caio-sobreiro/dicomsr/errors"
	"github.com/caio-sobreiro/dicomsr/interfaces"
	"github.com/caio-sobreiro/dicomsr/services"
	"github.com/caio-sobreiro/dicomsr/tree"
	"github.com/caio-sobreiro/dicomsr/types"
)

// DocumentTree is the content tree of an SR document. The embedded tree
// cursor is the tree's current position used by all mutations.
//
// A tree without document type (see NewSubTree) holds a template or an
// extracted sub-tree: it may have several top-level items and is not
// checked against an IOD.
type DocumentTree struct {
	tree.Tree[*Node]

	documentType types.DocumentType
	checker      interfaces.ConstraintChecker
	logger       *slog.Logger
}

// Option configures a DocumentTree.
type Option func(*DocumentTree)

// WithLogger sets the logger diagnostics are forwarded to.
func WithLogger(logger *slog.Logger) Option {
	return func(t *DocumentTree) {
		t.logger = logger
	}
}

// WithConstraintChecker overrides the checker chosen for the document type.
// A nil checker disables relationship checks.
func WithConstraintChecker(checker interfaces.ConstraintChecker) Option {
	return func(t *DocumentTree) {
		t.checker = checker
	}
}

// WithRegistry looks the constraint checker up in registry.
func WithRegistry(registry *services.Registry) Option {
	return func(t *DocumentTree) {
		if registry == nil {
			return
		}
		t.checker = nil
		if checker, ok := registry.Lookup(t.documentType); ok {
			t.checker = checker
		}
	}
}

// NewDocumentTree creates an empty tree for docType. The constraint
// checker defaults to the one of services.DefaultRegistry; document types
// without checker are not constrained.
func NewDocumentTree(docType types.DocumentType, opts ...Option) *DocumentTree {
	t := &DocumentTree{documentType: docType}
	if checker, ok := services.DefaultRegistry().Lookup(docType); ok {
		t.checker = checker
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.logger == nil {
		t.logger = slog.Default()
	}
	return t
}

// NewSubTree creates an unconstrained tree for templates and extracted
// sub-trees.
func NewSubTree(opts ...Option) *DocumentTree {
	return NewDocumentTree(types.DocumentTypeInvalid, opts...)
}

// DocumentType returns the document type the tree was created for.
func (t *DocumentTree) DocumentType() types.DocumentType { return t.documentType }

// ConstraintChecker returns the checker in use, or nil.
func (t *DocumentTree) ConstraintChecker() interfaces.ConstraintChecker { return t.checker }

// Logger returns the tree's logger.
func (t *DocumentTree) Logger() *slog.Logger { return t.logger }

func (t *DocumentTree) isDocument() bool {
	return t.documentType != types.DocumentTypeInvalid
}

// IsValid reports whether the tree is a well-formed document: a single
// CONTAINER root. Sub-trees only need to be non-empty. Use Tree.IsValid
// for the validity of the cursor.
func (t *DocumentTree) IsValid() bool {
	root := t.Root()
	if root == nil {
		return false
	}
	if !t.isDocument() {
		return true
	}
	return root.relationshipType == types.RelationshipIsRoot &&
		root.valueType == types.ValueTypeContainer &&
		root.Next() == nil
}

// CurrentContentItem returns the node at the cursor, or nil.
func (t *DocumentTree) CurrentContentItem() *Node {
	return t.Node()
}

// CreateCursor returns a cursor positioned on the root.
func (t *DocumentTree) CreateCursor() *DocumentTreeNodeCursor {
	return NewDocumentTreeNodeCursor(t.Root())
}

// CreateIncludedTemplateCursor returns a cursor positioned on the root that
// expands included templates.
func (t *DocumentTree) CreateIncludedTemplateCursor(flags tree.PositionFlags) *IncludedTemplateNodeCursor {
	return NewIncludedTemplateNodeCursor(t.Root(), flags)
}

func (t *DocumentTree) documentCursor() *DocumentTreeNodeCursor {
	return &DocumentTreeNodeCursor{Cursor: t.Cursor.Clone()}
}

// GotoMatchingNode moves the tree's cursor to the first node accepted by
// filter, starting with the current node.
func (t *DocumentTree) GotoMatchingNode(filter NodeFilter, deep bool) tree.NodeID {
	c := t.documentCursor()
	id := c.GotoMatchingNode(filter, deep)
	if id != 0 {
		t.Cursor = c.Cursor
	}
	return id
}

// GotoNextMatchingNode moves the tree's cursor to the next node accepted
// by filter after the current node.
func (t *DocumentTree) GotoNextMatchingNode(filter NodeFilter, deep bool) tree.NodeID {
	c := t.documentCursor()
	id := c.GotoNextMatchingNode(filter, deep)
	if id != 0 {
		t.Cursor = c.Cursor
	}
	return id
}

// GotoNamedNode moves to the first node with the given concept name,
// optionally restarting at the root.
func (t *DocumentTree) GotoNamedNode(conceptName CodedEntry, startFromRoot, deep bool) tree.NodeID {
	if startFromRoot {
		t.GotoRoot()
	}
	return t.GotoMatchingNode(ConceptNameFilter{Value: conceptName}, deep)
}

// GotoNextNamedNode moves to the next node with the given concept name.
func (t *DocumentTree) GotoNextNamedNode(conceptName CodedEntry, deep bool) tree.NodeID {
	return t.GotoNextMatchingNode(ConceptNameFilter{Value: conceptName}, deep)
}

// parentForMode returns the node that becomes the parent of an item added
// with mode and whether the item becomes a top-level node.
func (t *DocumentTree) parentForMode(mode tree.AddMode) (*Node, bool) {
	switch mode {
	case tree.AddBelowCurrent, tree.AddBelowCurrentBeforeFirstChild:
		return t.Node(), false
	}
	parent := t.Parent()
	return parent, parent == nil
}

// CanAddContentItem reports whether an item of type (rel, vt) may be added
// with mode at the cursor.
func (t *DocumentTree) CanAddContentItem(rel types.RelationshipType, vt types.ValueType, mode tree.AddMode) bool {
	if !vt.IsConcrete() {
		return false
	}
	if t.IsEmpty() {
		if t.isDocument() {
			return rel == types.RelationshipIsRoot && vt == types.ValueTypeContainer
		}
		return rel != types.RelationshipInvalid
	}
	if !t.Tree.IsValid() || rel == types.RelationshipInvalid || rel == types.RelationshipIsRoot {
		return false
	}
	parent, topLevel := t.parentForMode(mode)
	if topLevel {
		return !t.isDocument()
	}
	if t.checker == nil {
		return true
	}
	return t.checker.CheckContentRelationship(parent.valueType, rel, vt, false)
}

// CanAddByReferenceRelationship reports whether a by-reference
// relationship from the current node to an item of type target is allowed.
func (t *DocumentTree) CanAddByReferenceRelationship(rel types.RelationshipType, target types.ValueType) bool {
	current := t.Node()
	if current == nil || !rel.IsConcrete() {
		return false
	}
	if t.checker == nil {
		return true
	}
	return t.checker.IsByReferenceAllowed() &&
		t.checker.CheckContentRelationship(current.valueType, rel, target, true)
}

// AddContentItem creates an item and adds it at the cursor, which moves to
// the new item.
func (t *DocumentTree) AddContentItem(rel types.RelationshipType, vt types.ValueType, mode tree.AddMode) (tree.NodeID, error) {
	if !t.CanAddContentItem(rel, vt, mode) {
		return 0, fmt.Errorf("%s %s %s: %w", mode, rel, vt, srerrors.ErrCannotAddContentItem)
	}
	node, err := NewNode(rel, vt)
	if err != nil {
		return 0, err
	}
	id := t.AddNode(node, mode)
	if id == 0 {
		return 0, fmt.Errorf("%s %s %s: %w", mode, rel, vt, srerrors.ErrCannotAddContentItem)
	}
	return id, nil
}

// AddChildContentItem adds an item with concept name as last child of the
// current node.
func (t *DocumentTree) AddChildContentItem(rel types.RelationshipType, vt types.ValueType, conceptName CodedEntry) (tree.NodeID, error) {
	id, err := t.AddContentItem(rel, vt, tree.AddBelowCurrent)
	if err != nil {
		return 0, err
	}
	if err := t.Node().SetConceptName(conceptName, true); err != nil {
		return id, err
	}
	return id, nil
}

// AddByReferenceRelationship adds a by-reference item pointing to target
// as last child of the current node. The cursor stays on the current node.
func (t *DocumentTree) AddByReferenceRelationship(rel types.RelationshipType, target tree.NodeID) (tree.NodeID, error) {
	current := t.Node()
	if current == nil {
		return 0, fmt.Errorf("no current content item: %w", srerrors.ErrIllegalCall)
	}
	if !rel.IsConcrete() {
		return 0, fmt.Errorf("relationship type %s: %w", rel, srerrors.ErrInvalidValue)
	}
	if t.checker != nil && !t.checker.IsByReferenceAllowed() {
		return 0, fmt.Errorf("%s does not allow by-reference relationships: %w", t.documentType, srerrors.ErrInvalidByReferenceRelationship)
	}
	cursor := t.CreateIncludedTemplateCursor(PositionDontCountIncludedTemplateNodes)
	if cursor.GotoNode(target) == 0 {
		return 0, fmt.Errorf("node %d: %w", target, srerrors.ErrReferencedContentItemNotFound)
	}
	targetNode, targetPosition := cursor.Node(), cursor.Position()
	source := t.CreateIncludedTemplateCursor(PositionDontCountIncludedTemplateNodes)
	if source.GotoNode(current.NodeID()) == 0 {
		return 0, fmt.Errorf("current content item not reachable from root: %w", srerrors.ErrIllegalCall)
	}
	if isAncestorPosition(targetPosition, source.Position()) {
		return 0, fmt.Errorf("reference from %s to %s would create a loop: %w", source.Position(), targetPosition, srerrors.ErrInvalidByReferenceRelationship)
	}
	if !t.CanAddByReferenceRelationship(rel, targetNode.valueType) {
		return 0, fmt.Errorf("%s %s %s by reference: %w", current.valueType, rel, targetNode.valueType, srerrors.ErrInvalidByReferenceRelationship)
	}
	node, err := NewNode(rel, types.ValueTypeByReference)
	if err != nil {
		return 0, err
	}
	node.content = &ByReferenceContent{ReferencedPosition: targetPosition, TargetID: target}
	id := t.AddNode(node, tree.AddBelowCurrent)
	t.GoUp()
	targetNode.referenceTarget = true
	return id, nil
}

// IncludeTemplate adds a placeholder for template at the cursor. The
// template stays owned by the caller and must outlive this tree's use of it.
func (t *DocumentTree) IncludeTemplate(template *DocumentTree, rel types.RelationshipType, mode tree.AddMode) (tree.NodeID, error) {
	if template == nil || template.IsEmpty() {
		return 0, fmt.Errorf("empty template: %w", srerrors.ErrIllegalParameter)
	}
	if t.IsEmpty() || !t.Tree.IsValid() {
		return 0, fmt.Errorf("no current content item: %w", srerrors.ErrIllegalCall)
	}
	parent, topLevel := t.parentForMode(mode)
	if topLevel && t.isDocument() {
		return 0, fmt.Errorf("template at top level: %w", srerrors.ErrCannotAddContentItem)
	}
	if t.checker != nil && !topLevel {
		for top := template.Root(); top != nil; top = top.Next() {
			if !t.checker.CheckContentRelationship(parent.valueType, rel, top.valueType, false) {
				return 0, fmt.Errorf("%s %s %s from template: %w", parent.valueType, rel, top.valueType, srerrors.ErrCannotAddContentItem)
			}
		}
	}
	node, err := NewNode(rel, types.ValueTypeIncludedTemplate)
	if err != nil {
		return 0, err
	}
	node.content = &IncludedTemplateContent{Template: template}
	if root := template.Root(); root.HasTemplateIdentification() {
		node.templateIdentifier = root.templateIdentifier
		node.mappingResource = root.mappingResource
		node.mappingResourceUID = root.mappingResourceUID
	}
	id := t.AddNode(node, mode)
	if id == 0 {
		return 0, fmt.Errorf("including template: %w", srerrors.ErrCannotAddContentItem)
	}
	return id, nil
}

// RemoveCurrentContentItem removes the current item and its sub-tree and
// returns the identity of the new current item.
func (t *DocumentTree) RemoveCurrentContentItem() tree.NodeID {
	return t.RemoveNode()
}

// ExtractSubTree detaches the current item with its sub-tree and returns
// it as a sub-tree, or nil.
func (t *DocumentTree) ExtractSubTree() *DocumentTree {
	node := t.Tree.ExtractSubTree()
	if node == nil {
		return nil
	}
	sub := NewSubTree(WithLogger(t.logger))
	sub.AddNode(node, tree.AddBelowCurrent)
	return sub
}

// CloneSubTree returns a deep copy of the current item and its sub-tree.
func (t *DocumentTree) CloneSubTree() *DocumentTree {
	current := t.Node()
	if current == nil {
		return nil
	}
	sub := NewSubTree(WithLogger(t.logger))
	sub.AddNode(cloneDeep(current), tree.AddBelowCurrent)
	return sub
}

func cloneDeep(n *Node) *Node {
	clone := n.Clone()
	for child := n.Down(); child != nil; child = child.Next() {
		tree.AppendChild(clone, cloneDeep(child))
	}
	return clone
}

// InsertSubTree moves the top-level items of sub into this tree at the
// cursor. On success sub is left empty.
func (t *DocumentTree) InsertSubTree(sub *DocumentTree, mode tree.AddMode) (tree.NodeID, error) {
	if sub == nil || sub.IsEmpty() {
		return 0, fmt.Errorf("empty sub-tree: %w", srerrors.ErrIllegalParameter)
	}
	if !t.IsEmpty() {
		for top := sub.Root(); top != nil; top = top.Next() {
			if !t.CanAddContentItem(top.relationshipType, top.valueType, mode) {
				return 0, fmt.Errorf("%s %s: %w", top.relationshipType, top.valueType, srerrors.ErrCannotInsertSubTree)
			}
		}
	}
	root := sub.Root()
	id := t.Tree.InsertSubTree(root, mode)
	if id == 0 {
		return 0, fmt.Errorf("inserting sub-tree: %w", srerrors.ErrCannotInsertSubTree)
	}
	sub.Tree.Clear()
	return id, nil
}

// UnmarkAllContentItems clears the mark flag of every item.
func (t *DocumentTree) UnmarkAllContentItems() {
	t.walk(func(n *Node) { n.marked = false })
}

// walk visits every node of the tree, including included templates.
func (t *DocumentTree) walk(visit func(*Node)) {
	cursor := t.CreateIncludedTemplateCursor(0)
	for cursor.IsValid() {
		visit(cursor.Node())
		if cursor.Iterate(true) == 0 {
			break
		}
	}
}
