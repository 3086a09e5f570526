package sr

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/beevik/etree"
	"golang.org/x/net/html"

	"github.com/caio-sobreiro/dicomsr/dicom"
	srerrors "github.com/caio-sobreiro/dicomsr/errors"
	"github.com/caio-sobreiro/dicomsr/types"
)

// Content is the value type specific payload of a content item. The set
// of implementations is closed; NewContent returns the empty payload for
// a value type.
type Content interface {
	ValueType() types.ValueType
	// IsValid reports whether the payload holds a complete value.
	IsValid() bool
	// IsShort reports whether the value fits on a single line of the
	// rendered HTML.
	IsShort(flags HTMLFlags) bool
	String() string

	clone() Content
	readItem(ds *dicom.Dataset) error
	writeItem(ds *dicom.Dataset)
	readXML(doc *XMLDocument, cursor XMLCursor) error
	writeXML(el *etree.Element, flags XMLFlags)
	renderHTML(parent *html.Node, flags HTMLFlags)
}

// shortTextLength is the longest text rendered inline.
const shortTextLength = 40

// NewContent returns the empty payload for vt.
func NewContent(vt types.ValueType) (Content, error) {
	switch vt {
	case types.ValueTypeText:
		return &TextContent{}, nil
	case types.ValueTypeCode:
		return &CodeContent{}, nil
	case types.ValueTypeNum:
		return &NumContent{}, nil
	case types.ValueTypeDateTime:
		return &DateTimeContent{}, nil
	case types.ValueTypeDate:
		return &DateContent{}, nil
	case types.ValueTypeTime:
		return &TimeContent{}, nil
	case types.ValueTypeUIDRef:
		return &UIDRefContent{}, nil
	case types.ValueTypePName:
		return &PNameContent{}, nil
	case types.ValueTypeSCoord:
		return &SCoordContent{}, nil
	case types.ValueTypeSCoord3D:
		return &SCoord3DContent{}, nil
	case types.ValueTypeTCoord:
		return &TCoordContent{}, nil
	case types.ValueTypeComposite:
		return &CompositeContent{}, nil
	case types.ValueTypeImage:
		return &ImageContent{}, nil
	case types.ValueTypeWaveform:
		return &WaveformContent{}, nil
	case types.ValueTypeContainer:
		return &ContainerContent{Continuity: types.ContinuitySeparate}, nil
	case types.ValueTypeByReference:
		return &ByReferenceContent{}, nil
	case types.ValueTypeIncludedTemplate:
		return &IncludedTemplateContent{}, nil
	}
	return nil, fmt.Errorf("value type %d: %w", int(vt), srerrors.ErrUnknownValueType)
}

// errKeeper remembers the first error of a sequence of checked reads.
type errKeeper struct {
	err error
}

func (k *errKeeper) keep(v string, err error) string {
	if err != nil && k.err == nil {
		k.err = err
	}
	return v
}

func (k *errKeeper) add(err error) {
	if err != nil && k.err == nil {
		k.err = err
	}
}

func isShortString(s string) bool {
	return utf8.RuneCountInString(s) <= shortTextLength
}

// TextContent is the payload of TEXT items.
type TextContent struct {
	Value string
}

func (c *TextContent) ValueType() types.ValueType { return types.ValueTypeText }
func (c *TextContent) IsValid() bool              { return c.Value != "" }
func (c *TextContent) IsShort(HTMLFlags) bool     { return isShortString(c.Value) }
func (c *TextContent) String() string             { return fmt.Sprintf("%q", c.Value) }
func (c *TextContent) clone() Content             { clone := *c; return &clone }

func (c *TextContent) readItem(ds *dicom.Dataset) error {
	var err error
	c.Value, err = ds.GetAndCheckString(dicom.TextValue, "1", dicom.Type1)
	return err
}

func (c *TextContent) writeItem(ds *dicom.Dataset) {
	ds.PutString(dicom.TextValue, c.Value)
}

func (c *TextContent) readXML(doc *XMLDocument, cursor XMLCursor) error {
	c.Value = doc.GetNamedChildText(cursor, "value")
	return nil
}

func (c *TextContent) writeXML(el *etree.Element, _ XMLFlags) {
	el.CreateElement("value").SetText(c.Value)
}

func (c *TextContent) renderHTML(parent *html.Node, _ HTMLFlags) {
	appendText(parent, c.Value)
}

// CodeContent is the payload of CODE items.
type CodeContent struct {
	Code CodedEntry
}

func (c *CodeContent) ValueType() types.ValueType { return types.ValueTypeCode }
func (c *CodeContent) IsValid() bool              { return c.Code.IsValid() }
func (c *CodeContent) IsShort(HTMLFlags) bool     { return true }
func (c *CodeContent) String() string             { return c.Code.String() }
func (c *CodeContent) clone() Content             { clone := *c; return &clone }

func (c *CodeContent) readItem(ds *dicom.Dataset) error {
	var err error
	c.Code, err = readCodeSequence(ds, dicom.ConceptCodeSequence, dicom.Type1)
	return err
}

func (c *CodeContent) writeItem(ds *dicom.Dataset) {
	writeCodeSequence(ds, dicom.ConceptCodeSequence, c.Code)
}

func (c *CodeContent) readXML(doc *XMLDocument, cursor XMLCursor) error {
	var err error
	c.Code, err = readCodedEntryXML(doc, cursor)
	return err
}

func (c *CodeContent) writeXML(el *etree.Element, flags XMLFlags) {
	c.Code.writeXML(el, flags)
}

func (c *CodeContent) renderHTML(parent *html.Node, flags HTMLFlags) {
	renderCode(parent, c.Code, flags)
}

// NumContent is the payload of NUM items. An empty measurement (no value
// and no unit) is valid and may carry a qualifier explaining the absence.
type NumContent struct {
	Value         string
	Unit          CodedEntry
	FloatingPoint *float64
	Qualifier     CodedEntry
}

func (c *NumContent) ValueType() types.ValueType { return types.ValueTypeNum }

func (c *NumContent) IsValid() bool {
	if !c.Qualifier.IsEmpty() && !c.Qualifier.IsValid() {
		return false
	}
	if c.Value == "" && c.Unit.IsEmpty() {
		return true
	}
	return dicom.IsValidDecimalString(c.Value) && c.Unit.IsValid()
}

func (c *NumContent) IsShort(HTMLFlags) bool { return true }

func (c *NumContent) String() string {
	if c.Value == "" {
		if !c.Qualifier.IsEmpty() {
			return c.Qualifier.String()
		}
		return "empty"
	}
	return fmt.Sprintf("%q %s", c.Value, c.Unit)
}

func (c *NumContent) clone() Content {
	clone := *c
	if c.FloatingPoint != nil {
		f := *c.FloatingPoint
		clone.FloatingPoint = &f
	}
	return &clone
}

func (c *NumContent) readItem(ds *dicom.Dataset) error {
	var k errKeeper
	if !ds.HasElement(dicom.MeasuredValueSequence) {
		k.add(srerrors.NewAttributeError(dicom.MeasuredValueSequence.String(), dicom.TagName(dicom.MeasuredValueSequence), "", srerrors.ErrMandatoryAttributeMissing))
	}
	if items := ds.GetSequence(dicom.MeasuredValueSequence); len(items) > 0 {
		if len(items) > 1 {
			k.add(srerrors.NewAttributeError(dicom.MeasuredValueSequence.String(), dicom.TagName(dicom.MeasuredValueSequence), "", srerrors.ErrVMViolation))
		}
		item := items[0]
		c.Value = k.keep(item.GetAndCheckString(dicom.NumericValue, "1", dicom.Type1))
		unit, err := readCodeSequence(item, dicom.MeasurementUnitsCodeSequence, dicom.Type1)
		c.Unit = unit
		k.add(err)
		if values := item.GetFloat64s(dicom.FloatingPointValue); len(values) > 0 {
			f := values[0]
			c.FloatingPoint = &f
		}
	}
	qualifier, err := readCodeSequence(ds, dicom.NumericValueQualifierCodeSequence, dicom.Type3)
	c.Qualifier = qualifier
	k.add(err)
	return k.err
}

func (c *NumContent) writeItem(ds *dicom.Dataset) {
	if c.Value == "" {
		ds.AddSequence(dicom.MeasuredValueSequence, nil)
	} else {
		item := ds.AppendSequenceItem(dicom.MeasuredValueSequence)
		item.PutString(dicom.NumericValue, c.Value)
		if c.FloatingPoint != nil {
			item.AddElement(dicom.FloatingPointValue, dicom.VR_FD, []float64{*c.FloatingPoint})
		}
		writeCodeSequence(item, dicom.MeasurementUnitsCodeSequence, c.Unit)
	}
	if !c.Qualifier.IsEmpty() {
		writeCodeSequence(ds, dicom.NumericValueQualifierCodeSequence, c.Qualifier)
	}
}

func (c *NumContent) readXML(doc *XMLDocument, cursor XMLCursor) error {
	var k errKeeper
	c.Value = doc.GetNamedChildText(cursor, "value")
	if f := doc.GetNamedChildText(cursor, "float"); f != "" {
		var v float64
		if _, err := fmt.Sscan(f, &v); err != nil {
			k.add(srerrors.NewXMLError(doc.FullPath(cursor), "reading floating point value", srerrors.ErrInvalidValue))
		} else {
			c.FloatingPoint = &v
		}
	}
	if unit, _ := doc.GetNamedChild(cursor, "unit", false); unit.Valid() {
		c.Unit = k.keepCode(readCodedEntryXML(doc, unit))
	}
	if qualifier, _ := doc.GetNamedChild(cursor, "qualifier", false); qualifier.Valid() {
		c.Qualifier = k.keepCode(readCodedEntryXML(doc, qualifier))
	}
	return k.err
}

func (k *errKeeper) keepCode(c CodedEntry, err error) CodedEntry {
	k.add(err)
	return c
}

func (c *NumContent) writeXML(el *etree.Element, flags XMLFlags) {
	if c.Value != "" || flags&XMLWriteEmptyTags != 0 {
		el.CreateElement("value").SetText(c.Value)
	}
	if c.FloatingPoint != nil {
		el.CreateElement("float").SetText(fmt.Sprint(*c.FloatingPoint))
	}
	if !c.Unit.IsEmpty() {
		c.Unit.writeXML(el.CreateElement("unit"), flags)
	}
	if !c.Qualifier.IsEmpty() {
		c.Qualifier.writeXML(el.CreateElement("qualifier"), flags)
	}
}

func (c *NumContent) renderHTML(parent *html.Node, flags HTMLFlags) {
	if c.Value == "" {
		if !c.Qualifier.IsEmpty() {
			renderCode(parent, c.Qualifier, flags)
		} else {
			appendText(parent, "empty")
		}
		return
	}
	appendText(parent, c.Value+" ")
	unit := c.Unit.CodeValue
	if unit == "" {
		unit = c.Unit.CodeMeaning
	}
	span := appendElement(parent, "span", attr("title", c.Unit.CodeMeaning))
	appendText(span, unit)
	if flags&HTMLRenderFullData != 0 && c.FloatingPoint != nil {
		appendText(parent, fmt.Sprintf(" (%v)", *c.FloatingPoint))
	}
}

// DateTimeContent is the payload of DATETIME items.
type DateTimeContent struct {
	Value string
}

func (c *DateTimeContent) ValueType() types.ValueType { return types.ValueTypeDateTime }
func (c *DateTimeContent) IsValid() bool {
	return c.Value != "" && dicom.IsValidDateTime(c.Value)
}
func (c *DateTimeContent) IsShort(HTMLFlags) bool { return true }
func (c *DateTimeContent) String() string         { return c.Value }
func (c *DateTimeContent) clone() Content         { clone := *c; return &clone }

func (c *DateTimeContent) readItem(ds *dicom.Dataset) error {
	var err error
	c.Value, err = ds.GetAndCheckString(dicom.DateTime, "1", dicom.Type1)
	return err
}

func (c *DateTimeContent) writeItem(ds *dicom.Dataset) { ds.PutString(dicom.DateTime, c.Value) }

func (c *DateTimeContent) readXML(doc *XMLDocument, cursor XMLCursor) error {
	c.Value = xmlDateTimeToDICOM(doc.GetNamedChildText(cursor, "value"))
	return nil
}

func (c *DateTimeContent) writeXML(el *etree.Element, _ XMLFlags) {
	el.CreateElement("value").SetText(dicomDateTimeToXML(c.Value))
}

func (c *DateTimeContent) renderHTML(parent *html.Node, _ HTMLFlags) {
	appendText(parent, readableDateTime(c.Value))
}

// DateContent is the payload of DATE items.
type DateContent struct {
	Value string
}

func (c *DateContent) ValueType() types.ValueType { return types.ValueTypeDate }
func (c *DateContent) IsValid() bool              { return c.Value != "" && dicom.IsValidDate(c.Value) }
func (c *DateContent) IsShort(HTMLFlags) bool     { return true }
func (c *DateContent) String() string             { return c.Value }
func (c *DateContent) clone() Content             { clone := *c; return &clone }

func (c *DateContent) readItem(ds *dicom.Dataset) error {
	var err error
	c.Value, err = ds.GetAndCheckString(dicom.Date, "1", dicom.Type1)
	return err
}

func (c *DateContent) writeItem(ds *dicom.Dataset) { ds.PutString(dicom.Date, c.Value) }

func (c *DateContent) readXML(doc *XMLDocument, cursor XMLCursor) error {
	c.Value = xmlDateToDICOM(doc.GetNamedChildText(cursor, "value"))
	return nil
}

func (c *DateContent) writeXML(el *etree.Element, _ XMLFlags) {
	el.CreateElement("value").SetText(dicomDateToXML(c.Value))
}

func (c *DateContent) renderHTML(parent *html.Node, _ HTMLFlags) {
	appendText(parent, readableDate(c.Value))
}

// TimeContent is the payload of TIME items.
type TimeContent struct {
	Value string
}

func (c *TimeContent) ValueType() types.ValueType { return types.ValueTypeTime }
func (c *TimeContent) IsValid() bool              { return c.Value != "" && dicom.IsValidTime(c.Value) }
func (c *TimeContent) IsShort(HTMLFlags) bool     { return true }
func (c *TimeContent) String() string             { return c.Value }
func (c *TimeContent) clone() Content             { clone := *c; return &clone }

func (c *TimeContent) readItem(ds *dicom.Dataset) error {
	var err error
	c.Value, err = ds.GetAndCheckString(dicom.Time, "1", dicom.Type1)
	return err
}

func (c *TimeContent) writeItem(ds *dicom.Dataset) { ds.PutString(dicom.Time, c.Value) }

func (c *TimeContent) readXML(doc *XMLDocument, cursor XMLCursor) error {
	c.Value = xmlTimeToDICOM(doc.GetNamedChildText(cursor, "value"))
	return nil
}

func (c *TimeContent) writeXML(el *etree.Element, _ XMLFlags) {
	el.CreateElement("value").SetText(dicomTimeToXML(c.Value))
}

func (c *TimeContent) renderHTML(parent *html.Node, _ HTMLFlags) {
	appendText(parent, readableTime(c.Value))
}

// UIDRefContent is the payload of UIDREF items.
type UIDRefContent struct {
	Value string
}

func (c *UIDRefContent) ValueType() types.ValueType { return types.ValueTypeUIDRef }
func (c *UIDRefContent) IsValid() bool              { return c.Value != "" && dicom.IsValidUID(c.Value) }
func (c *UIDRefContent) IsShort(HTMLFlags) bool     { return true }
func (c *UIDRefContent) String() string             { return c.Value }
func (c *UIDRefContent) clone() Content             { clone := *c; return &clone }

func (c *UIDRefContent) readItem(ds *dicom.Dataset) error {
	var err error
	c.Value, err = ds.GetAndCheckString(dicom.UID, "1", dicom.Type1)
	return err
}

func (c *UIDRefContent) writeItem(ds *dicom.Dataset) { ds.PutString(dicom.UID, c.Value) }

func (c *UIDRefContent) readXML(doc *XMLDocument, cursor XMLCursor) error {
	c.Value = doc.GetNamedChildText(cursor, "value")
	return nil
}

func (c *UIDRefContent) writeXML(el *etree.Element, _ XMLFlags) {
	el.CreateElement("value").SetText(c.Value)
}

func (c *UIDRefContent) renderHTML(parent *html.Node, _ HTMLFlags) {
	appendText(parent, c.Value)
}

// PNameContent is the payload of PNAME items.
type PNameContent struct {
	Value string
}

func (c *PNameContent) ValueType() types.ValueType { return types.ValueTypePName }
func (c *PNameContent) IsValid() bool              { return c.Value != "" }
func (c *PNameContent) IsShort(HTMLFlags) bool     { return true }
func (c *PNameContent) String() string             { return c.Value }
func (c *PNameContent) clone() Content             { clone := *c; return &clone }

func (c *PNameContent) readItem(ds *dicom.Dataset) error {
	var err error
	c.Value, err = ds.GetAndCheckString(dicom.PersonName, "1", dicom.Type1)
	return err
}

func (c *PNameContent) writeItem(ds *dicom.Dataset) { ds.PutString(dicom.PersonName, c.Value) }

func (c *PNameContent) readXML(doc *XMLDocument, cursor XMLCursor) error {
	c.Value = doc.GetNamedChildText(cursor, "value")
	return nil
}

func (c *PNameContent) writeXML(el *etree.Element, _ XMLFlags) {
	el.CreateElement("value").SetText(c.Value)
}

// renderHTML prints the name components in reading order, e.g.
// "Doe^John^^Dr." becomes "Dr. John Doe".
func (c *PNameContent) renderHTML(parent *html.Node, _ HTMLFlags) {
	appendText(parent, readablePersonName(c.Value))
}

func readablePersonName(value string) string {
	parts := strings.Split(value, "^")
	for len(parts) < 5 {
		parts = append(parts, "")
	}
	var out []string
	for _, p := range []string{parts[3], parts[1], parts[2], parts[0], parts[4]} {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}
