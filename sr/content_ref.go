package sr

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/net/html"

	"github.com/caio-sobreiro/dicomsr/dicom"
	srerrors "github.com/caio-sobreiro/dicomsr/errors"
	"github.com/caio-sobreiro/dicomsr/tree"
	"github.com/caio-sobreiro/dicomsr/types"
)

// SOPReference identifies a composite object.
type SOPReference struct {
	SOPClassUID    string
	SOPInstanceUID string
}

// IsValid reports whether both UIDs are well formed.
func (r SOPReference) IsValid() bool {
	return dicom.IsValidUID(r.SOPClassUID) && dicom.IsValidUID(r.SOPInstanceUID)
}

func (r SOPReference) String() string {
	return fmt.Sprintf("(%s,%s)", r.SOPClassUID, r.SOPInstanceUID)
}

// readReferencedSOP returns the single item of the Referenced SOP Sequence
// after reading the UIDs.
func (r *SOPReference) read(ds *dicom.Dataset, k *errKeeper) *dicom.Dataset {
	items := ds.GetSequence(dicom.ReferencedSOPSequence)
	if len(items) != 1 {
		k.add(srerrors.NewAttributeError(dicom.ReferencedSOPSequence.String(), dicom.TagName(dicom.ReferencedSOPSequence), "", srerrors.ErrVMViolation))
		return nil
	}
	item := items[0]
	r.SOPClassUID = k.keep(item.GetAndCheckString(dicom.ReferencedSOPClassUID, "1", dicom.Type1))
	r.SOPInstanceUID = k.keep(item.GetAndCheckString(dicom.ReferencedSOPInstanceUID, "1", dicom.Type1))
	return item
}

func (r SOPReference) write(ds *dicom.Dataset) *dicom.Dataset {
	item := ds.AppendSequenceItem(dicom.ReferencedSOPSequence)
	item.PutString(dicom.ReferencedSOPClassUID, r.SOPClassUID)
	item.PutString(dicom.ReferencedSOPInstanceUID, r.SOPInstanceUID)
	return item
}

func (r *SOPReference) readXML(doc *XMLDocument, cursor XMLCursor) (XMLCursor, error) {
	value, err := doc.GetNamedChild(cursor, "value", true)
	if err != nil {
		return value, err
	}
	sopClass, err := doc.GetNamedChild(value, "sopclass", true)
	if err != nil {
		return value, err
	}
	instance, err := doc.GetNamedChild(value, "instance", true)
	if err != nil {
		return value, err
	}
	r.SOPClassUID = doc.GetAttribute(sopClass, "uid")
	r.SOPInstanceUID = doc.GetAttribute(instance, "uid")
	return value, nil
}

func (r SOPReference) writeXML(el *etree.Element) *etree.Element {
	value := el.CreateElement("value")
	sopClass := value.CreateElement("sopclass")
	sopClass.CreateAttr("uid", r.SOPClassUID)
	if info := types.GetDocumentTypeInfo(types.DocumentTypeFromSOPClassUID(r.SOPClassUID)); info != nil {
		sopClass.SetText(info.Name)
	}
	value.CreateElement("instance").CreateAttr("uid", r.SOPInstanceUID)
	return value
}

func (r SOPReference) renderHTML(parent *html.Node, label string) {
	a := appendElement(parent, "a", attr("href", "urn:dicom:uid:"+r.SOPInstanceUID))
	appendText(a, label)
}

func joinInts[T ~int | ~int32 | ~uint16 | ~uint32](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatInt(int64(v), 10)
	}
	return strings.Join(parts, ",")
}

func splitInts(text string, bits int) ([]int64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	var out []int64
	for _, s := range strings.Split(text, ",") {
		v, err := strconv.ParseInt(strings.TrimSpace(s), 10, bits)
		if err != nil {
			return nil, fmt.Errorf("number %q: %w", s, srerrors.ErrInvalidValue)
		}
		out = append(out, v)
	}
	return out, nil
}

// CompositeContent is the payload of COMPOSITE items.
type CompositeContent struct {
	Reference SOPReference
}

func (c *CompositeContent) ValueType() types.ValueType { return types.ValueTypeComposite }
func (c *CompositeContent) IsValid() bool              { return c.Reference.IsValid() }
func (c *CompositeContent) IsShort(HTMLFlags) bool     { return true }
func (c *CompositeContent) String() string             { return c.Reference.String() }
func (c *CompositeContent) clone() Content             { clone := *c; return &clone }

func (c *CompositeContent) readItem(ds *dicom.Dataset) error {
	var k errKeeper
	c.Reference.read(ds, &k)
	return k.err
}

func (c *CompositeContent) writeItem(ds *dicom.Dataset) { c.Reference.write(ds) }

func (c *CompositeContent) readXML(doc *XMLDocument, cursor XMLCursor) error {
	_, err := c.Reference.readXML(doc, cursor)
	return err
}

func (c *CompositeContent) writeXML(el *etree.Element, _ XMLFlags) { c.Reference.writeXML(el) }

func (c *CompositeContent) renderHTML(parent *html.Node, _ HTMLFlags) {
	c.Reference.renderHTML(parent, "Composite Object")
}

// ImageContent is the payload of IMAGE items.
type ImageContent struct {
	Reference SOPReference
	Frames    []int32
	Segments  []uint16
}

func (c *ImageContent) ValueType() types.ValueType { return types.ValueTypeImage }
func (c *ImageContent) IsValid() bool              { return c.Reference.IsValid() }

func (c *ImageContent) IsShort(flags HTMLFlags) bool {
	return flags&HTMLRenderFullData == 0 || len(c.Frames)+len(c.Segments) == 0
}

func (c *ImageContent) String() string {
	s := c.Reference.String()
	if len(c.Frames) > 0 {
		s += " frames " + joinInts(c.Frames)
	}
	if len(c.Segments) > 0 {
		s += " segments " + joinInts(c.Segments)
	}
	return s
}

func (c *ImageContent) clone() Content {
	clone := *c
	clone.Frames = append([]int32(nil), c.Frames...)
	clone.Segments = append([]uint16(nil), c.Segments...)
	return &clone
}

func (c *ImageContent) readItem(ds *dicom.Dataset) error {
	var k errKeeper
	item := c.Reference.read(ds, &k)
	if item == nil {
		return k.err
	}
	c.Frames = nil
	for _, s := range item.GetStrings(dicom.ReferencedFrameNumber) {
		v, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			k.add(srerrors.NewAttributeError(dicom.ReferencedFrameNumber.String(), dicom.TagName(dicom.ReferencedFrameNumber), s, srerrors.ErrVRViolation))
			continue
		}
		c.Frames = append(c.Frames, int32(v))
	}
	c.Segments = item.GetUint16s(dicom.ReferencedSegmentNumber)
	return k.err
}

func (c *ImageContent) writeItem(ds *dicom.Dataset) {
	item := c.Reference.write(ds)
	if len(c.Frames) > 0 {
		item.PutString(dicom.ReferencedFrameNumber, strings.ReplaceAll(joinInts(c.Frames), ",", `\`))
	}
	if len(c.Segments) > 0 {
		item.AddElement(dicom.ReferencedSegmentNumber, dicom.VR_US, append([]uint16(nil), c.Segments...))
	}
}

func (c *ImageContent) readXML(doc *XMLDocument, cursor XMLCursor) error {
	value, err := c.Reference.readXML(doc, cursor)
	if err != nil {
		return err
	}
	frames, err := splitInts(doc.GetNamedChildText(value, "frames"), 32)
	if err != nil {
		return srerrors.NewXMLError(doc.FullPath(value), "reading frames", err)
	}
	c.Frames = nil
	for _, f := range frames {
		c.Frames = append(c.Frames, int32(f))
	}
	segments, err := splitInts(doc.GetNamedChildText(value, "segments"), 17)
	if err != nil {
		return srerrors.NewXMLError(doc.FullPath(value), "reading segments", err)
	}
	c.Segments = nil
	for _, s := range segments {
		c.Segments = append(c.Segments, uint16(s))
	}
	return nil
}

func (c *ImageContent) writeXML(el *etree.Element, _ XMLFlags) {
	value := c.Reference.writeXML(el)
	if len(c.Frames) > 0 {
		value.CreateElement("frames").SetText(joinInts(c.Frames))
	}
	if len(c.Segments) > 0 {
		value.CreateElement("segments").SetText(joinInts(c.Segments))
	}
}

func (c *ImageContent) renderHTML(parent *html.Node, flags HTMLFlags) {
	c.Reference.renderHTML(parent, "Image")
	if flags&HTMLRenderFullData != 0 && len(c.Frames) > 0 {
		appendText(parent, " (frames "+joinInts(c.Frames)+")")
	}
}

// WaveformContent is the payload of WAVEFORM items. Channels holds
// (multiplex group, channel) pairs.
type WaveformContent struct {
	Reference SOPReference
	Channels  []uint16
}

func (c *WaveformContent) ValueType() types.ValueType { return types.ValueTypeWaveform }

func (c *WaveformContent) IsValid() bool {
	return c.Reference.IsValid() && len(c.Channels)%2 == 0
}

func (c *WaveformContent) IsShort(flags HTMLFlags) bool {
	return flags&HTMLRenderFullData == 0 || len(c.Channels) == 0
}

func (c *WaveformContent) String() string {
	if len(c.Channels) == 0 {
		return c.Reference.String()
	}
	return c.Reference.String() + " channels " + joinInts(c.Channels)
}

func (c *WaveformContent) clone() Content {
	clone := *c
	clone.Channels = append([]uint16(nil), c.Channels...)
	return &clone
}

func (c *WaveformContent) readItem(ds *dicom.Dataset) error {
	var k errKeeper
	if item := c.Reference.read(ds, &k); item != nil {
		c.Channels = item.GetUint16s(dicom.ReferencedWaveformChannels)
	}
	return k.err
}

func (c *WaveformContent) writeItem(ds *dicom.Dataset) {
	item := c.Reference.write(ds)
	if len(c.Channels) > 0 {
		item.AddElement(dicom.ReferencedWaveformChannels, dicom.VR_US, append([]uint16(nil), c.Channels...))
	}
}

func (c *WaveformContent) readXML(doc *XMLDocument, cursor XMLCursor) error {
	value, err := c.Reference.readXML(doc, cursor)
	if err != nil {
		return err
	}
	channels, err := splitInts(doc.GetNamedChildText(value, "channels"), 17)
	if err != nil {
		return srerrors.NewXMLError(doc.FullPath(value), "reading channels", err)
	}
	c.Channels = nil
	for _, ch := range channels {
		c.Channels = append(c.Channels, uint16(ch))
	}
	return nil
}

func (c *WaveformContent) writeXML(el *etree.Element, _ XMLFlags) {
	value := c.Reference.writeXML(el)
	if len(c.Channels) > 0 {
		value.CreateElement("channels").SetText(joinInts(c.Channels))
	}
}

func (c *WaveformContent) renderHTML(parent *html.Node, flags HTMLFlags) {
	c.Reference.renderHTML(parent, "Waveform")
	if flags&HTMLRenderFullData != 0 && len(c.Channels) > 0 {
		appendText(parent, " (channels "+joinInts(c.Channels)+")")
	}
}

// ContainerContent is the payload of CONTAINER items.
type ContainerContent struct {
	Continuity types.ContinuityOfContent
}

func (c *ContainerContent) ValueType() types.ValueType { return types.ValueTypeContainer }
func (c *ContainerContent) IsValid() bool              { return c.Continuity.IsValid() }
func (c *ContainerContent) IsShort(HTMLFlags) bool     { return false }
func (c *ContainerContent) String() string             { return "" }
func (c *ContainerContent) clone() Content             { clone := *c; return &clone }

func (c *ContainerContent) readItem(ds *dicom.Dataset) error {
	value, err := ds.GetAndCheckString(dicom.ContinuityOfContent, "1", dicom.Type1)
	c.Continuity = types.ContinuityOfContent(value)
	if err == nil && !c.Continuity.IsValid() {
		err = srerrors.NewAttributeError(dicom.ContinuityOfContent.String(), dicom.TagName(dicom.ContinuityOfContent), value, srerrors.ErrInvalidValue)
	}
	return err
}

func (c *ContainerContent) writeItem(ds *dicom.Dataset) {
	ds.PutString(dicom.ContinuityOfContent, string(c.Continuity))
}

func (c *ContainerContent) readXML(doc *XMLDocument, cursor XMLCursor) error {
	c.Continuity = types.ContinuitySeparate
	if flag := doc.GetAttribute(cursor, "flag"); flag != "" {
		c.Continuity = types.ContinuityOfContent(flag)
	}
	return nil
}

func (c *ContainerContent) writeXML(el *etree.Element, _ XMLFlags) {
	el.CreateAttr("flag", string(c.Continuity))
}

func (c *ContainerContent) renderHTML(*html.Node, HTMLFlags) {}

// ByReferenceContent is the payload of by-reference placeholders. The
// position is what datasets carry; the target identity is what the tree
// maintains. DocumentTree keeps both in sync.
type ByReferenceContent struct {
	ReferencedPosition string
	TargetID           tree.NodeID
}

func (c *ByReferenceContent) ValueType() types.ValueType { return types.ValueTypeByReference }

func (c *ByReferenceContent) IsValid() bool {
	return c.ReferencedPosition != "" || c.TargetID != 0
}

func (c *ByReferenceContent) IsShort(HTMLFlags) bool { return true }
func (c *ByReferenceContent) String() string         { return c.ReferencedPosition }
func (c *ByReferenceContent) clone() Content         { clone := *c; return &clone }

func (c *ByReferenceContent) readItem(ds *dicom.Dataset) error {
	ids := ds.GetUint32s(dicom.ReferencedContentItemIdentifier)
	if len(ids) == 0 {
		return srerrors.NewAttributeError(dicom.ReferencedContentItemIdentifier.String(), dicom.TagName(dicom.ReferencedContentItemIdentifier), "", srerrors.ErrMandatoryAttributeEmpty)
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatUint(uint64(id), 10)
	}
	c.ReferencedPosition = strings.Join(parts, ".")
	return nil
}

// identifiers converts the referenced position to the attribute value.
func (c *ByReferenceContent) identifiers() ([]uint32, error) {
	if c.ReferencedPosition == "" {
		return nil, fmt.Errorf("empty referenced position: %w", srerrors.ErrInvalidValue)
	}
	parts := strings.Split(c.ReferencedPosition, ".")
	ids := make([]uint32, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseUint(p, 10, 32)
		if err != nil || v == 0 {
			return nil, fmt.Errorf("referenced position %q: %w", c.ReferencedPosition, srerrors.ErrInvalidValue)
		}
		ids[i] = uint32(v)
	}
	return ids, nil
}

func (c *ByReferenceContent) writeItem(ds *dicom.Dataset) {
	if ids, err := c.identifiers(); err == nil {
		ds.AddElement(dicom.ReferencedContentItemIdentifier, dicom.VR_UL, ids)
	}
}

// readXML stores the XML item identifier; the document maps it to a node
// identity once all items are read.
func (c *ByReferenceContent) readXML(doc *XMLDocument, cursor XMLCursor) error {
	ref := doc.GetAttribute(cursor, "ref")
	id, err := strconv.ParseUint(ref, 10, 64)
	if err != nil || id == 0 {
		return srerrors.NewXMLError(doc.FullPath(cursor), "invalid reference "+strconv.Quote(ref), srerrors.ErrInvalidValue)
	}
	c.TargetID = tree.NodeID(id)
	return nil
}

func (c *ByReferenceContent) writeXML(el *etree.Element, _ XMLFlags) {
	el.CreateAttr("ref", strconv.FormatUint(uint64(c.TargetID), 10))
}

func (c *ByReferenceContent) renderHTML(parent *html.Node, _ HTMLFlags) {
	a := appendElement(parent, "a", attr("href", fmt.Sprintf("#content_item_%d", c.TargetID)))
	appendText(a, "Content Item "+c.ReferencedPosition)
}

// IncludedTemplateContent splices a separately owned template into the
// tree. The template is never copied and never written as such: datasets
// and XML receive its content items in place of the placeholder.
type IncludedTemplateContent struct {
	Template *DocumentTree
}

func (c *IncludedTemplateContent) ValueType() types.ValueType {
	return types.ValueTypeIncludedTemplate
}

func (c *IncludedTemplateContent) IsValid() bool {
	return c.Template != nil && !c.Template.IsEmpty()
}

func (c *IncludedTemplateContent) IsShort(HTMLFlags) bool { return false }

func (c *IncludedTemplateContent) String() string {
	if c.Template == nil || c.Template.Root() == nil {
		return "empty"
	}
	root := c.Template.Root()
	if !root.HasTemplateIdentification() {
		return "template"
	}
	return fmt.Sprintf("TID %s (%s)", root.TemplateIdentifier(), root.MappingResource())
}

func (c *IncludedTemplateContent) clone() Content { clone := *c; return &clone }

func (c *IncludedTemplateContent) readItem(*dicom.Dataset) error {
	return fmt.Errorf("included template cannot be read: %w", srerrors.ErrIllegalCall)
}

func (c *IncludedTemplateContent) writeItem(*dicom.Dataset) {}

func (c *IncludedTemplateContent) readXML(*XMLDocument, XMLCursor) error {
	return fmt.Errorf("included template cannot be read: %w", srerrors.ErrIllegalCall)
}

func (c *IncludedTemplateContent) writeXML(*etree.Element, XMLFlags) {}

func (c *IncludedTemplateContent) renderHTML(parent *html.Node, _ HTMLFlags) {
	appendText(parent, c.String())
}
