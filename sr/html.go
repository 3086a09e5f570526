package sr

import (
	"fmt"
	"io"
	"strconv"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	srerrors "github.com/caio-sobreiro/dicomsr/errors"
	"github.com/caio-sobreiro/dicomsr/types"
)

func appendElement(parent *html.Node, tag string, attrs ...html.Attribute) *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
		Attr:     attrs,
	}
	parent.AppendChild(n)
	return n
}

func appendText(parent *html.Node, text string) {
	parent.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

func attr(key, value string) html.Attribute {
	return html.Attribute{Key: key, Val: value}
}

func renderCode(parent *html.Node, c CodedEntry, flags HTMLFlags) {
	if c.IsEmpty() {
		return
	}
	span := appendElement(parent, "span", attr("title", c.String()))
	appendText(span, c.CodeMeaning)
	if flags&HTMLRenderConceptNameCodes != 0 {
		code := appendElement(parent, "span", attr("class", "code"))
		appendText(code, " "+c.String())
	}
}

func relationshipText(rel types.RelationshipType) string {
	switch rel {
	case types.RelationshipHasObsContext:
		return "Observation Context"
	case types.RelationshipHasAcqContext:
		return "Acquisition Context"
	case types.RelationshipHasConceptMod:
		return "Concept Modifier"
	case types.RelationshipHasProperties:
		return "Properties"
	case types.RelationshipInferredFrom:
		return "Inferred from"
	case types.RelationshipSelectedFrom:
		return "Selected from"
	}
	return rel.ReadableName()
}

// expandedItem is a content item together with the relationship it is rendered
// with. Items of included templates take the relationship of the
// placeholder unless they carry a concrete one.
type expandedItem struct {
	node *Node
	rel  types.RelationshipType
}

func expandedChildren(node *Node) []expandedItem {
	var children []expandedItem
	for c := node.Down(); c != nil; c = c.Next() {
		children = appendExpanded(children, c, c.relationshipType)
	}
	return children
}

func appendExpanded(children []expandedItem, node *Node, rel types.RelationshipType) []expandedItem {
	if node.valueType != types.ValueTypeIncludedTemplate {
		return append(children, expandedItem{node: node, rel: rel})
	}
	if tc, ok := node.content.(*IncludedTemplateContent); ok && tc.Template != nil {
		for top := tc.Template.Root(); top != nil; top = top.Next() {
			children = appendExpanded(children, top, templateRelationship(top, rel))
		}
	}
	return children
}

type htmlRenderer struct {
	flags  HTMLFlags
	annex  []*Node
	titled map[*Node]int
}

// RenderHTML writes the tree as an HTML document. Content items that are
// not rendered inline are moved to an annex and linked from their parent.
func (t *DocumentTree) RenderHTML(w io.Writer, flags HTMLFlags) error {
	if t.IsEmpty() {
		return srerrors.ErrEmptyDocumentTree
	}
	t.UpdateByReferencePositions()

	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
	root := appendElement(doc, "html")
	head := appendElement(root, "head")
	appendElement(head, "meta", attr("charset", "utf-8"))
	title := appendElement(head, "title")
	appendText(title, types.GetDocumentTypeInfo(t.documentType).Name)
	body := appendElement(root, "body")

	r := &htmlRenderer{flags: flags, titled: make(map[*Node]int)}
	for top := t.Root(); top != nil; top = top.Next() {
		for _, c := range appendExpanded(nil, top, top.relationshipType) {
			r.renderItem(body, c.node, 1)
		}
	}

	if len(r.annex) > 0 {
		appendElement(body, "hr")
		h := appendElement(body, "h1")
		appendText(h, "Annex")
		// annex entries may add further entries
		for i := 0; i < len(r.annex); i++ {
			div := appendElement(body, "div", attr("id", annexID(i+1)))
			h := appendElement(div, "h2")
			appendText(h, fmt.Sprintf("Annex %d", i+1))
			r.renderItem(div, r.annex[i], 2)
		}
	}

	if err := html.Render(w, doc); err != nil {
		return fmt.Errorf("rendering HTML: %w", err)
	}
	return nil
}

func annexID(n int) string {
	return "annex_" + strconv.Itoa(n)
}

func headingTag(level int) string {
	if level > 6 {
		level = 6
	}
	return "h" + strconv.Itoa(level)
}

func (r *htmlRenderer) renderItem(parent *html.Node, node *Node, level int) {
	div := appendElement(parent, "div", attr("class", "item"))
	if node.referenceTarget {
		div.Attr = append(div.Attr, attr("id", fmt.Sprintf("content_item_%d", node.NodeID())))
	}

	if node.valueType == types.ValueTypeContainer {
		h := appendElement(div, headingTag(level))
		if node.conceptName.IsEmpty() {
			appendText(h, "Container")
		} else {
			renderCode(h, node.conceptName, r.flags)
		}
	} else {
		p := appendElement(div, "p")
		r.renderValue(p, node)
	}

	var modifiers []expandedItem
	for _, c := range expandedChildren(node) {
		if c.rel == types.RelationshipContains {
			r.renderItem(div, c.node, level+1)
			continue
		}
		modifiers = append(modifiers, c)
	}
	if len(modifiers) == 0 {
		return
	}
	ul := appendElement(div, "ul", attr("class", "relationships"))
	for _, c := range modifiers {
		li := appendElement(ul, "li")
		label := appendElement(li, "i")
		appendText(label, "("+relationshipText(c.rel)+") ")
		if r.inline(c.node) {
			r.renderValue(li, c.node)
			continue
		}
		n := r.addAnnex(c.node)
		if !c.node.conceptName.IsEmpty() {
			appendText(li, c.node.conceptName.CodeMeaning+" ")
		}
		a := appendElement(li, "a", attr("href", "#"+annexID(n)))
		appendText(a, fmt.Sprintf("[Annex %d]", n))
	}
}

func (r *htmlRenderer) inline(node *Node) bool {
	return r.flags&HTMLNeverExpandChildrenInline == 0 &&
		!node.HasChildNodes() &&
		node.IsShort(r.flags)
}

func (r *htmlRenderer) addAnnex(node *Node) int {
	if n, ok := r.titled[node]; ok {
		return n
	}
	r.annex = append(r.annex, node)
	r.titled[node] = len(r.annex)
	return len(r.annex)
}

func (r *htmlRenderer) renderValue(parent *html.Node, node *Node) {
	if !node.conceptName.IsEmpty() {
		b := appendElement(parent, "b")
		renderCode(b, node.conceptName, r.flags)
		appendText(b, ": ")
	}
	if node.content != nil {
		node.content.renderHTML(parent, r.flags)
	}
}
