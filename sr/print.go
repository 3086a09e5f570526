package sr

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"

	srerrors "github.com/caio-sobreiro/dicomsr/errors"
	"github.com/caio-sobreiro/dicomsr/types"
)

// longValueLength is the length at which PrintShortenLongItemValues cuts
// values.
const longValueLength = 40

type palette struct {
	position, relationship, valueType, concept, value, extra *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		position:     color.New(color.FgYellow),
		relationship: color.New(color.FgCyan),
		valueType:    color.New(color.FgMagenta, color.Bold),
		concept:      color.New(color.FgGreen),
		value:        color.New(color.FgHiWhite),
		extra:        color.New(color.FgHiBlack),
	}
	for _, c := range []*color.Color{p.position, p.relationship, p.valueType, p.concept, p.value, p.extra} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

type printer struct {
	w      io.Writer
	flags  PrintFlags
	colors palette
	err    error
}

func (p *printer) print(s string) {
	if p.err == nil {
		_, p.err = io.WriteString(p.w, s)
	}
}

// Print writes one line per content item.
func (t *DocumentTree) Print(w io.Writer, flags PrintFlags) error {
	if t.IsEmpty() {
		return srerrors.ErrEmptyDocumentTree
	}
	t.UpdateByReferencePositions()
	p := &printer{w: w, flags: flags, colors: newPalette(flags&PrintUseANSIEscapeCodes != 0)}

	if flags&PrintExpandIncludedTemplates != 0 {
		cursor := t.CreateIncludedTemplateCursor(PositionDontCountIncludedTemplateNodes)
		for cursor.IsValid() {
			if node := cursor.Node(); node.valueType != types.ValueTypeIncludedTemplate {
				p.printLine(node, cursor.Position(), cursor.Level())
			}
			if cursor.Iterate(true) == 0 {
				break
			}
		}
		return p.err
	}

	cursor := t.CreateCursor()
	for cursor.IsValid() {
		p.printLine(cursor.Node(), cursor.Position(), cursor.Level())
		if cursor.Iterate(true) == 0 {
			break
		}
	}
	return p.err
}

func (p *printer) printLine(node *Node, position string, level int) {
	c := p.colors
	if p.flags&PrintItemPosition != 0 {
		p.print(c.position.Sprint(position) + "  ")
	} else if level > 1 {
		p.print(strings.Repeat("  ", level-1))
	}
	p.print("<")
	if term := node.relationshipType.DefinedTerm(); term != "" {
		p.print(c.relationship.Sprint(strings.ToLower(term)) + " ")
	}
	p.print(c.valueType.Sprint(node.valueType.String()) + ":")
	if !node.conceptName.IsEmpty() {
		if p.flags&PrintConceptNameCodes != 0 {
			p.print(c.concept.Sprint(node.conceptName.String()))
		} else {
			p.print(c.concept.Sprintf("(,,%q)", node.conceptName.CodeMeaning))
		}
	}
	if value := p.value(node); value != "" {
		p.print("=" + c.value.Sprint(value))
	}
	p.print(">")

	if node.observationDateTime != "" {
		p.print(c.extra.Sprint(" {" + readableDateTime(node.observationDateTime) + "}"))
	}
	if p.flags&PrintAnnotation != 0 && !node.Annotation().IsEmpty() {
		p.print(c.extra.Sprintf("  %q", node.Annotation().Text()))
	}
	if p.flags&PrintTemplateIdentification != 0 && node.HasTemplateIdentification() {
		tid := "TID " + node.templateIdentifier + " (" + node.mappingResource
		if node.mappingResourceUID != "" {
			tid += ", " + node.mappingResourceUID
		}
		p.print(c.extra.Sprint("  # " + tid + ")"))
	}
	if p.flags&PrintNodeID != 0 {
		p.print(c.extra.Sprintf("  @%d", node.NodeID()))
	}
	p.print("\n")
}

func (p *printer) value(node *Node) string {
	if node.content == nil {
		return ""
	}
	value := node.content.String()
	if p.flags&PrintShortenLongItemValues != 0 && utf8.RuneCountInString(value) > longValueLength {
		runes := []rune(value)
		value = string(runes[:longValueLength-3]) + "..."
	}
	return value
}

// String returns the printed form of the tree without colours.
func (t *DocumentTree) String() string {
	var b strings.Builder
	if err := t.Print(&b, PrintItemPosition); err != nil {
		return fmt.Sprintf("<%v>", err)
	}
	return b.String()
}
