package sr

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/beevik/etree"

	srerrors "github.com/caio-sobreiro/dicomsr/errors"
	"github.com/caio-sobreiro/dicomsr/tree"
	"github.com/caio-sobreiro/dicomsr/types"
)

// Namespace is declared on the <content> element with XMLUseNamespace.
const Namespace = "http://dicom.offis.de/dcmsr"

// WriteXML writes the tree as a <content> element holding the top-level
// content items. Included templates are written in place.
func (t *DocumentTree) WriteXML(w io.Writer, flags XMLFlags) error {
	if t.IsEmpty() {
		return srerrors.ErrEmptyDocumentTree
	}
	// flags the reference targets, which always get an id
	t.UpdateByReferencePositions()

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	content := doc.CreateElement("content")
	if flags&XMLUseNamespace != 0 {
		content.CreateAttr("xmlns", Namespace)
	}
	for top := t.Root(); top != nil; top = top.Next() {
		writeXMLItem(content, top, top.relationshipType, flags)
	}
	doc.Indent(2)
	if _, err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("writing XML: %w", err)
	}
	return nil
}

func writeXMLItem(parent *etree.Element, node *Node, rel types.RelationshipType, flags XMLFlags) {
	if node.valueType == types.ValueTypeIncludedTemplate {
		if tc, ok := node.content.(*IncludedTemplateContent); ok && tc.Template != nil {
			for top := tc.Template.Root(); top != nil; top = top.Next() {
				writeXMLItem(parent, top, templateRelationship(top, rel), flags)
			}
		}
		return
	}

	withTemplate := flags&XMLWriteTemplateIdentification != 0 && node.HasTemplateIdentification()
	if withTemplate && flags&XMLTemplateElementEnclosesItems != 0 {
		parent = writeXMLTemplateElement(parent, node)
		withTemplate = false
	}

	var el *etree.Element
	if flags&XMLValueTypeAsAttribute != 0 {
		el = parent.CreateElement("item")
		if node.valueType != types.ValueTypeByReference {
			el.CreateAttr("valType", node.valueType.DefinedTerm())
		}
	} else {
		el = parent.CreateElement(node.valueType.XMLTagName())
	}
	if flags&XMLAlwaysWriteItemIdentifier != 0 || node.referenceTarget {
		el.CreateAttr("id", strconv.FormatUint(uint64(node.NodeID()), 10))
	}
	if term := rel.DefinedTerm(); term != "" {
		if flags&XMLRelationshipTypeAsAttribute != 0 {
			el.CreateAttr("relType", term)
		} else {
			el.CreateElement("relationship").SetText(term)
		}
	}
	if node.valueType == types.ValueTypeByReference {
		node.content.writeXML(el, flags)
		return
	}
	if withTemplate {
		if flags&XMLTemplateIdentifierAsAttribute != 0 {
			el.CreateAttr("templateId", node.templateIdentifier)
			el.CreateAttr("mappingResource", node.mappingResource)
			if node.mappingResourceUID != "" {
				el.CreateAttr("mappingResourceUID", node.mappingResourceUID)
			}
		} else {
			writeXMLTemplateElement(el, node)
		}
	}
	if !node.conceptName.IsEmpty() {
		node.conceptName.writeXML(el.CreateElement("concept"), flags)
	} else if flags&XMLWriteEmptyTags != 0 {
		el.CreateElement("concept")
	}
	if node.observationDateTime != "" || node.observationUID != "" || flags&XMLWriteEmptyTags != 0 {
		obs := el.CreateElement("observation")
		if node.observationUID != "" || flags&XMLWriteEmptyTags != 0 {
			obs.CreateAttr("uid", node.observationUID)
		}
		if node.observationDateTime != "" || flags&XMLWriteEmptyTags != 0 {
			obs.CreateElement("datetime").SetText(dicomDateTimeToXML(node.observationDateTime))
		}
	}
	node.content.writeXML(el, flags)

	for child := node.Down(); child != nil; child = child.Next() {
		writeXMLItem(el, child, child.relationshipType, flags)
	}
}

func writeXMLTemplateElement(parent *etree.Element, node *Node) *etree.Element {
	el := parent.CreateElement("template")
	el.CreateAttr("tid", node.templateIdentifier)
	el.CreateAttr("resource", node.mappingResource)
	if node.mappingResourceUID != "" {
		el.CreateAttr("uid", node.mappingResourceUID)
	}
	return el
}

type templateIdentification struct {
	id, resource, resourceUID string
}

type xmlReader struct {
	*reporter
	t     *DocumentTree
	doc   *XMLDocument
	flags XMLFlags
	// XML item identifiers mapped to the identities of the nodes read
	ids map[uint64]tree.NodeID
}

// ReadXMLFrom parses r and reads the tree from its <content> element.
func (t *DocumentTree) ReadXMLFrom(r io.Reader, flags XMLFlags) (Diagnostics, error) {
	doc, err := ParseXML(r)
	if err != nil {
		return nil, err
	}
	return t.ReadXML(doc, doc.Root(), flags)
}

// ReadXML replaces the tree with the content items below cursor, which
// points to a <content> element or to the first content item element.
// Elements that do not describe a content item are skipped.
func (t *DocumentTree) ReadXML(doc *XMLDocument, cursor XMLCursor, flags XMLFlags) (Diagnostics, error) {
	t.Clear()
	rx := &xmlReader{
		reporter: newReporter(t.logger),
		t:        t,
		doc:      doc,
		flags:    flags,
		ids:      make(map[uint64]tree.NodeID),
	}
	if doc == nil || !cursor.Valid() {
		return rx.diags, fmt.Errorf("no XML content: %w", srerrors.ErrIllegalParameter)
	}
	first := cursor
	if doc.MatchesTagName(cursor, "content") {
		first = cursor.Child()
	}
	index := 0
	if err := rx.readItems(nil, first, "", &index, nil); err != nil {
		return rx.diags, err
	}
	if t.IsEmpty() {
		return rx.diags, srerrors.NewXMLError(doc.FullPath(cursor), "no content items", srerrors.ErrEmptyDocumentTree)
	}
	if t.isDocument() && !t.IsValid() {
		return rx.diags, srerrors.NewXMLError(doc.FullPath(cursor), "root is not a single CONTAINER", srerrors.ErrInvalidDocumentTree)
	}

	rx.remapReferences()
	t.GotoRoot()
	t.checkByReferenceRelationships(updateReferencePositions, rx.reporter)
	return rx.diags, nil
}

// readItems reads the content item elements starting at c as children of
// parent, or as top-level items if parent is nil.
func (rx *xmlReader) readItems(parent *Node, c XMLCursor, position string, index *int, enclosing *templateIdentification) error {
	for ; c.Valid(); c = c.Next() {
		if rx.doc.MatchesTagName(c, "template") {
			ident := &templateIdentification{
				id:          rx.doc.GetAttribute(c, "tid"),
				resource:    rx.doc.GetAttribute(c, "resource"),
				resourceUID: rx.doc.GetAttribute(c, "uid"),
			}
			if err := rx.readItems(parent, c.Child(), position, index, ident); err != nil {
				return err
			}
			continue
		}
		vt := rx.doc.GetValueTypeFromNode(c)
		if vt == types.ValueTypeInvalid || vt == types.ValueTypeIncludedTemplate {
			continue
		}
		*index++
		itemPosition := strconv.Itoa(*index)
		if position != "" {
			itemPosition = position + "." + itemPosition
		}
		if err := rx.readChild(parent, c, vt, itemPosition, enclosing); err != nil {
			return err
		}
	}
	return nil
}

func (rx *xmlReader) readChild(parent *Node, c XMLCursor, vt types.ValueType, position string, enclosing *templateIdentification) error {
	node, err := rx.createNode(parent, c, vt)
	if err == nil {
		if parent == nil {
			rx.t.AddNode(node, tree.AddAfterCurrent)
		} else {
			tree.AppendChild(parent, node)
		}
		if err = rx.readItem(node, c, position, enclosing); err != nil {
			if parent == nil {
				rx.t.RemoveNode()
			} else {
				tree.Unlink(parent, node)
			}
		}
	}
	if err == nil {
		return nil
	}
	if rx.flags&XMLSkipInvalidContentItems != 0 {
		rx.warn(position, "skipping invalid content item: %v", err)
		return nil
	}
	var itemErr *srerrors.ContentItemError
	if errors.As(err, &itemErr) {
		return err
	}
	rx.error(position, "%v", err)
	return srerrors.NewContentItemError("reading XML", position, "", vt.DefinedTerm(), err)
}

func (rx *xmlReader) createNode(parent *Node, c XMLCursor, vt types.ValueType) (*Node, error) {
	path := rx.doc.FullPath(c)
	if parent == nil {
		if rx.t.isDocument() {
			if !rx.t.IsEmpty() {
				return nil, srerrors.NewXMLError(path, "more than one root content item", srerrors.ErrInvalidDocumentTree)
			}
			if vt != types.ValueTypeContainer {
				return nil, srerrors.NewXMLError(path, "root content item is not a container", srerrors.ErrInvalidDocumentTree)
			}
			return NewNode(types.RelationshipIsRoot, vt)
		}
		rel := rx.doc.GetRelationshipTypeFromNode(c)
		if rel == types.RelationshipInvalid {
			rel = types.RelationshipUnknown
		}
		return NewNode(rel, vt)
	}

	rel := rx.doc.GetRelationshipTypeFromNode(c)
	if !rel.IsConcrete() {
		return nil, srerrors.NewXMLError(path, "missing or unknown relationship type", srerrors.ErrUnknownRelationshipType)
	}
	if checker := rx.t.checker; checker != nil && vt != types.ValueTypeByReference &&
		!checker.CheckContentRelationship(parent.valueType, rel, vt, false) {
		return nil, srerrors.NewXMLError(path,
			fmt.Sprintf("%s %s %s", parent.valueType.DefinedTerm(), rel.DefinedTerm(), vt.DefinedTerm()),
			srerrors.ErrInvalidByValueRelationship)
	}
	return NewNode(rel, vt)
}

func (rx *xmlReader) readItem(node *Node, c XMLCursor, position string, enclosing *templateIdentification) error {
	doc := rx.doc
	if value := doc.GetAttribute(c, "id"); value != "" {
		id, err := strconv.ParseUint(value, 10, 64)
		if err != nil || id == 0 {
			rx.warn(position, "invalid item identifier %q", value)
		} else {
			if _, dup := rx.ids[id]; dup {
				rx.warn(position, "duplicate item identifier %d", id)
			}
			rx.ids[id] = node.NodeID()
			if tree.NodeID(id) != node.NodeID() {
				rx.warn(position, "item identifier %d read as %d", id, node.NodeID())
			}
		}
	}

	if node.valueType == types.ValueTypeByReference {
		return rx.contentError(position, node.content.readXML(doc, c))
	}

	ident := enclosing
	switch {
	case doc.HasAttribute(c, "templateId"):
		ident = &templateIdentification{
			id:          doc.GetAttribute(c, "templateId"),
			resource:    doc.GetAttribute(c, "mappingResource"),
			resourceUID: doc.GetAttribute(c, "mappingResourceUID"),
		}
	default:
		if tc, _ := doc.GetNamedChild(c, "template", false); tc.Valid() && !tc.Child().Valid() {
			ident = &templateIdentification{
				id:          doc.GetAttribute(tc, "tid"),
				resource:    doc.GetAttribute(tc, "resource"),
				resourceUID: doc.GetAttribute(tc, "uid"),
			}
		}
	}
	if ident != nil {
		if err := node.SetTemplateIdentification(ident.id, ident.resource, ident.resourceUID, false); err != nil {
			rx.warn(position, "%v", err)
		}
	}

	if cc, _ := doc.GetNamedChild(c, "concept", false); cc.Child().Valid() || doc.HasAttribute(cc, "codValue") {
		concept, err := readCodedEntryXML(doc, cc)
		node.conceptName = concept
		if err := rx.contentError(position, err); err != nil {
			return err
		}
	}
	if obs, _ := doc.GetNamedChild(c, "observation", false); obs.Valid() {
		node.observationUID = doc.GetAttribute(obs, "uid")
		node.observationDateTime = xmlDateTimeToDICOM(doc.GetNamedChildText(obs, "datetime"))
	}
	if err := rx.contentError(position, node.content.readXML(doc, c)); err != nil {
		return err
	}

	index := 0
	if err := rx.readItems(node, c.Child(), position, &index, nil); err != nil {
		return err
	}
	if !node.IsValid() {
		return rx.contentError(position,
			srerrors.NewXMLError(doc.FullPath(c), "invalid content item", srerrors.ErrInvalidContentItem))
	}
	return nil
}

func (rx *xmlReader) contentError(position string, err error) error {
	if err != nil && rx.flags&XMLIgnoreContentItemErrors != 0 {
		rx.warn(position, "%v", err)
		return nil
	}
	return err
}

// remapReferences replaces the XML identifiers stored by by-reference
// items with the identities of the nodes read.
func (rx *xmlReader) remapReferences() {
	cursor := rx.t.CreateCursor()
	for cursor.IsValid() {
		node := cursor.Node()
		if bc, ok := node.content.(*ByReferenceContent); ok {
			if id, found := rx.ids[uint64(bc.TargetID)]; found {
				bc.TargetID = id
			} else {
				rx.warn(cursor.Position(), "referenced item identifier %d not found", bc.TargetID)
				bc.TargetID = 0
			}
		}
		if cursor.Iterate(true) == 0 {
			break
		}
	}
}
