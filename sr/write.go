package sr

import (
	"fmt"

	"github.com/caio-sobreiro/dicomsr/dicom"
	srerrors "github.com/caio-sobreiro/dicomsr/errors"
	"github.com/caio-sobreiro/dicomsr/types"
)

// MarkedItem pairs a marked content item with the dataset item it was
// written to.
type MarkedItem struct {
	Node *Node
	Item *dicom.Dataset
}

// WriteResult is the outcome of Write.
type WriteResult struct {
	// Marked lists the marked content items in document order.
	Marked      []MarkedItem
	Diagnostics Diagnostics
}

// Write stores the tree in ds, the root content item being ds itself.
// Included templates are written in place of their placeholder items.
func (t *DocumentTree) Write(ds *dicom.Dataset) (*WriteResult, error) {
	if ds == nil {
		return nil, fmt.Errorf("nil dataset: %w", srerrors.ErrIllegalParameter)
	}
	if t.IsEmpty() {
		return nil, srerrors.ErrEmptyDocumentTree
	}
	if !t.IsValid() {
		return nil, srerrors.ErrInvalidDocumentTree
	}
	result := &WriteResult{Diagnostics: t.UpdateByReferencePositions()}
	// ds may hold a previously written tree; sequences are appended to.
	for _, tag := range rootItemTags {
		ds.RemoveElement(tag)
	}
	writeContentItem(t.Root(), ds, result)
	return result, nil
}

var rootItemTags = []dicom.Tag{
	dicom.ObservationDateTime,
	dicom.ObservationUID,
	dicom.ContentTemplateSequence,
	dicom.MACParametersSequence,
	dicom.DigitalSignaturesSequence,
	dicom.ConceptNameCodeSequence,
	dicom.ContentSequence,
}

func writeContentItem(node *Node, ds *dicom.Dataset, result *WriteResult) {
	if node.marked {
		result.Marked = append(result.Marked, MarkedItem{Node: node, Item: ds})
	}
	if node.valueType == types.ValueTypeByReference {
		node.content.writeItem(ds)
		return
	}

	if node.observationDateTime != "" {
		ds.PutString(dicom.ObservationDateTime, node.observationDateTime)
	}
	if node.observationUID != "" {
		ds.PutString(dicom.ObservationUID, node.observationUID)
	}
	if node.HasTemplateIdentification() {
		item := ds.AppendSequenceItem(dicom.ContentTemplateSequence)
		item.PutString(dicom.MappingResource, node.mappingResource)
		if node.mappingResourceUID != "" {
			item.PutString(dicom.MappingResourceUID, node.mappingResourceUID)
		}
		item.PutString(dicom.TemplateIdentifier, node.templateIdentifier)
	}
	if len(node.macParameters) > 0 {
		ds.AddSequence(dicom.MACParametersSequence, cloneItems(node.macParameters))
	}
	if len(node.digitalSignatures) > 0 {
		ds.AddSequence(dicom.DigitalSignaturesSequence, cloneItems(node.digitalSignatures))
	}

	ds.PutString(dicom.ValueType, node.valueType.DefinedTerm())
	if !node.conceptName.IsEmpty() {
		writeCodeSequence(ds, dicom.ConceptNameCodeSequence, node.conceptName)
	}
	node.content.writeItem(ds)

	var items []*dicom.Dataset
	for child := node.Down(); child != nil; child = child.Next() {
		items = appendContentSequenceItems(items, child, child.relationshipType, result)
	}
	if len(items) > 0 {
		ds.AddSequence(dicom.ContentSequence, items)
	}
}

// appendContentSequenceItems writes node as content sequence item with
// relationship rel. Included templates contribute their top-level items,
// which keep their own relationship unless it is not a concrete one.
func appendContentSequenceItems(items []*dicom.Dataset, node *Node, rel types.RelationshipType, result *WriteResult) []*dicom.Dataset {
	if node.valueType == types.ValueTypeIncludedTemplate {
		tc, ok := node.content.(*IncludedTemplateContent)
		if !ok || tc.Template == nil {
			return items
		}
		for top := tc.Template.Root(); top != nil; top = top.Next() {
			items = appendContentSequenceItems(items, top, templateRelationship(top, rel), result)
		}
		return items
	}
	item := dicom.NewDataset()
	item.PutString(dicom.RelationshipType, rel.DefinedTerm())
	writeContentItem(node, item, result)
	return append(items, item)
}

func templateRelationship(top *Node, included types.RelationshipType) types.RelationshipType {
	if top.relationshipType.IsConcrete() {
		return top.relationshipType
	}
	return included
}

func cloneItems(items []*dicom.Dataset) []*dicom.Dataset {
	clones := make([]*dicom.Dataset, len(items))
	for i, item := range items {
		clones[i] = item.Clone()
	}
	return clones
}
