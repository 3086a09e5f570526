package sr

import (
	"bytes"
	"io"
	"strings"

	"github.com/beevik/etree"

	srerrors "github.com/caio-sobreiro/dicomsr/errors"
	"github.com/caio-sobreiro/dicomsr/types"
)

// XMLDocument wraps a parsed XML document.
type XMLDocument struct {
	doc *etree.Document
}

// XMLCursor points to an element of an XMLDocument. The zero value is
// invalid.
type XMLCursor struct {
	el *etree.Element
}

// ParseXML reads an XML document from r.
func ParseXML(r io.Reader) (*XMLDocument, error) {
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, srerrors.NewXMLError("", "parsing document", err)
	}
	if doc.Root() == nil {
		return nil, srerrors.NewXMLError("", "document has no root element", srerrors.ErrCorruptedXMLStructure)
	}
	return &XMLDocument{doc: doc}, nil
}

// ParseXMLBytes is ParseXML over a byte slice.
func ParseXMLBytes(data []byte) (*XMLDocument, error) {
	return ParseXML(bytes.NewReader(data))
}

// Root returns a cursor to the root element.
func (d *XMLDocument) Root() XMLCursor {
	return XMLCursor{el: d.doc.Root()}
}

// Find returns a cursor to the first element matching an etree path such
// as "//content".
func (d *XMLDocument) Find(path string) XMLCursor {
	return XMLCursor{el: d.doc.FindElement(path)}
}

// Valid reports whether the cursor points to an element.
func (c XMLCursor) Valid() bool {
	return c.el != nil
}

// Element returns the underlying element.
func (c XMLCursor) Element() *etree.Element {
	return c.el
}

// Child returns a cursor to the first child element.
func (c XMLCursor) Child() XMLCursor {
	if c.el == nil {
		return XMLCursor{}
	}
	for _, t := range c.el.Child {
		if el, ok := t.(*etree.Element); ok {
			return XMLCursor{el: el}
		}
	}
	return XMLCursor{}
}

// Next returns a cursor to the next sibling element.
func (c XMLCursor) Next() XMLCursor {
	if c.el == nil || c.el.Parent() == nil {
		return XMLCursor{}
	}
	siblings := c.el.Parent().Child
	for i := c.el.Index() + 1; i < len(siblings); i++ {
		if el, ok := siblings[i].(*etree.Element); ok {
			return XMLCursor{el: el}
		}
	}
	return XMLCursor{}
}

// GotoChild moves the cursor to its first child element.
func (c *XMLCursor) GotoChild() bool {
	child := c.Child()
	if !child.Valid() {
		return false
	}
	*c = child
	return true
}

// GotoNext moves the cursor to the next sibling element.
func (c *XMLCursor) GotoNext() bool {
	next := c.Next()
	if !next.Valid() {
		return false
	}
	*c = next
	return true
}

// HasAttribute reports whether the element carries the attribute.
func (d *XMLDocument) HasAttribute(c XMLCursor, name string) bool {
	return c.el != nil && c.el.SelectAttr(name) != nil
}

// GetAttribute returns the attribute value, or "".
func (d *XMLDocument) GetAttribute(c XMLCursor, name string) string {
	if c.el == nil {
		return ""
	}
	return c.el.SelectAttrValue(name, "")
}

// GetNamedChild returns the first child element called name. A missing
// required element is reported as ErrCorruptedXMLStructure.
func (d *XMLDocument) GetNamedChild(c XMLCursor, name string, required bool) (XMLCursor, error) {
	for child := c.Child(); child.Valid(); child = child.Next() {
		if d.MatchesTagName(child, name) {
			return child, nil
		}
	}
	if required {
		return XMLCursor{}, srerrors.NewXMLError(d.FullPath(c), "missing element <"+name+">", srerrors.ErrCorruptedXMLStructure)
	}
	return XMLCursor{}, nil
}

// GetNodeText returns the trimmed character data of the element.
func (d *XMLDocument) GetNodeText(c XMLCursor) string {
	if c.el == nil {
		return ""
	}
	return strings.TrimSpace(c.el.Text())
}

// GetNamedChildText returns the text of the named child, or "".
func (d *XMLDocument) GetNamedChildText(c XMLCursor, name string) string {
	child, _ := d.GetNamedChild(c, name, false)
	return d.GetNodeText(child)
}

// GetValueTypeFromNode determines the value type of a content item
// element: <item valType=".."> or an element named after the value type.
// Elements that do not describe a content item yield ValueTypeInvalid.
func (d *XMLDocument) GetValueTypeFromNode(c XMLCursor) types.ValueType {
	if c.el == nil {
		return types.ValueTypeInvalid
	}
	if c.el.Tag == "item" {
		if d.HasAttribute(c, "ref") {
			return types.ValueTypeByReference
		}
		return types.ValueTypeFromDefinedTerm(d.GetAttribute(c, "valType"))
	}
	return types.ValueTypeFromXMLTagName(c.el.Tag)
}

// GetRelationshipTypeFromNode reads the relType attribute or the
// <relationship> child element.
func (d *XMLDocument) GetRelationshipTypeFromNode(c XMLCursor) types.RelationshipType {
	if c.el == nil {
		return types.RelationshipInvalid
	}
	term := d.GetAttribute(c, "relType")
	if term == "" {
		term = d.GetNamedChildText(c, "relationship")
	}
	return types.RelationshipTypeFromDefinedTerm(term)
}

// MatchesTagName compares the local name of the element.
func (d *XMLDocument) MatchesTagName(c XMLCursor, name string) bool {
	return c.el != nil && c.el.Tag == name
}

// FullPath returns the element path from the document root, e.g.
// "/content/container/text".
func (d *XMLDocument) FullPath(c XMLCursor) string {
	if c.el == nil {
		return ""
	}
	return c.el.GetPath()
}
