package sr

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/net/html"

	"github.com/caio-sobreiro/dicomsr/dicom"
	srerrors "github.com/caio-sobreiro/dicomsr/errors"
	"github.com/caio-sobreiro/dicomsr/types"
)

func formatFloat32(f float32) string {
	return strconv.FormatFloat(float64(f), 'g', -1, 32)
}

// formatPoints joins the coordinates as "x/y,x/y" (dim values per point).
func formatPoints(data []float32, dim int) string {
	var b strings.Builder
	for i, f := range data {
		if i > 0 {
			if i%dim == 0 {
				b.WriteByte(',')
			} else {
				b.WriteByte('/')
			}
		}
		b.WriteString(formatFloat32(f))
	}
	return b.String()
}

func parsePoints(text string, dim int) ([]float32, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	var data []float32
	for _, point := range strings.Split(text, ",") {
		coords := strings.Split(strings.TrimSpace(point), "/")
		if len(coords) != dim {
			return nil, fmt.Errorf("point %q: %w", point, srerrors.ErrInvalidValue)
		}
		for _, c := range coords {
			f, err := strconv.ParseFloat(strings.TrimSpace(c), 32)
			if err != nil {
				return nil, fmt.Errorf("coordinate %q: %w", c, srerrors.ErrInvalidValue)
			}
			data = append(data, float32(f))
		}
	}
	return data, nil
}

// SCoordContent is the payload of SCOORD items: image relative
// (column,row) pairs.
type SCoordContent struct {
	GraphicType types.GraphicType
	Data        []float32
}

func (c *SCoordContent) ValueType() types.ValueType { return types.ValueTypeSCoord }

func (c *SCoordContent) IsValid() bool {
	if !c.GraphicType.IsValid() || len(c.Data) == 0 || len(c.Data)%2 != 0 {
		return false
	}
	points := len(c.Data) / 2
	n, open := c.GraphicType.PointCount()
	if open {
		return points >= n
	}
	return points == n
}

func (c *SCoordContent) IsShort(flags HTMLFlags) bool {
	return flags&HTMLRenderFullData == 0
}

func (c *SCoordContent) String() string {
	return fmt.Sprintf("(%s,%s)", c.GraphicType, formatPoints(c.Data, 2))
}

func (c *SCoordContent) clone() Content {
	clone := *c
	clone.Data = append([]float32(nil), c.Data...)
	return &clone
}

func (c *SCoordContent) readItem(ds *dicom.Dataset) error {
	var k errKeeper
	c.GraphicType = types.GraphicType(k.keep(ds.GetAndCheckString(dicom.GraphicType, "1", dicom.Type1)))
	c.Data = ds.GetFloat32s(dicom.GraphicData)
	if !dicom.CheckVM(len(c.Data), "2-2n") {
		k.add(srerrors.NewAttributeError(dicom.GraphicData.String(), dicom.TagName(dicom.GraphicData), "", srerrors.ErrVMViolation))
	}
	return k.err
}

func (c *SCoordContent) writeItem(ds *dicom.Dataset) {
	ds.PutString(dicom.GraphicType, string(c.GraphicType))
	ds.AddElement(dicom.GraphicData, dicom.VR_FL, append([]float32(nil), c.Data...))
}

func (c *SCoordContent) readXML(doc *XMLDocument, cursor XMLCursor) error {
	data, err := doc.GetNamedChild(cursor, "data", true)
	if err != nil {
		return err
	}
	c.GraphicType = types.GraphicType(doc.GetAttribute(data, "type"))
	if c.Data, err = parsePoints(doc.GetNodeText(data), 2); err != nil {
		return srerrors.NewXMLError(doc.FullPath(data), "reading graphic data", err)
	}
	return nil
}

func (c *SCoordContent) writeXML(el *etree.Element, _ XMLFlags) {
	data := el.CreateElement("data")
	data.CreateAttr("type", string(c.GraphicType))
	data.SetText(formatPoints(c.Data, 2))
}

func (c *SCoordContent) renderHTML(parent *html.Node, flags HTMLFlags) {
	appendText(parent, string(c.GraphicType))
	if flags&HTMLRenderFullData != 0 {
		appendText(parent, " "+formatPoints(c.Data, 2))
	}
}

// SCoord3DContent is the payload of SCOORD3D items: (x,y,z) triplets in a
// frame of reference.
type SCoord3DContent struct {
	GraphicType         types.GraphicType3D
	Data                []float32
	FrameOfReferenceUID string
}

func (c *SCoord3DContent) ValueType() types.ValueType { return types.ValueTypeSCoord3D }

func (c *SCoord3DContent) IsValid() bool {
	if !c.GraphicType.IsValid() || !dicom.IsValidUID(c.FrameOfReferenceUID) ||
		len(c.Data) == 0 || len(c.Data)%3 != 0 {
		return false
	}
	points := len(c.Data) / 3
	switch c.GraphicType {
	case types.GraphicType3DPoint:
		return points == 1
	case types.GraphicType3DEllipse:
		return points == 4
	case types.GraphicType3DEllipsoid:
		return points == 6
	}
	return true
}

func (c *SCoord3DContent) IsShort(flags HTMLFlags) bool {
	return flags&HTMLRenderFullData == 0
}

func (c *SCoord3DContent) String() string {
	return fmt.Sprintf("(%s,%s,%s)", c.GraphicType, c.FrameOfReferenceUID, formatPoints(c.Data, 3))
}

func (c *SCoord3DContent) clone() Content {
	clone := *c
	clone.Data = append([]float32(nil), c.Data...)
	return &clone
}

func (c *SCoord3DContent) readItem(ds *dicom.Dataset) error {
	var k errKeeper
	c.GraphicType = types.GraphicType3D(k.keep(ds.GetAndCheckString(dicom.GraphicType, "1", dicom.Type1)))
	c.FrameOfReferenceUID = k.keep(ds.GetAndCheckString(dicom.ReferencedFrameOfReferenceUID, "1", dicom.Type1))
	c.Data = ds.GetFloat32s(dicom.GraphicData)
	if !dicom.CheckVM(len(c.Data), "3-3n") {
		k.add(srerrors.NewAttributeError(dicom.GraphicData.String(), dicom.TagName(dicom.GraphicData), "", srerrors.ErrVMViolation))
	}
	return k.err
}

func (c *SCoord3DContent) writeItem(ds *dicom.Dataset) {
	ds.PutString(dicom.GraphicType, string(c.GraphicType))
	ds.PutString(dicom.ReferencedFrameOfReferenceUID, c.FrameOfReferenceUID)
	ds.AddElement(dicom.GraphicData, dicom.VR_FL, append([]float32(nil), c.Data...))
}

func (c *SCoord3DContent) readXML(doc *XMLDocument, cursor XMLCursor) error {
	data, err := doc.GetNamedChild(cursor, "data", true)
	if err != nil {
		return err
	}
	c.GraphicType = types.GraphicType3D(doc.GetAttribute(data, "type"))
	if frame, _ := doc.GetNamedChild(cursor, "fhref", false); frame.Valid() {
		c.FrameOfReferenceUID = doc.GetAttribute(frame, "uid")
	}
	if c.Data, err = parsePoints(doc.GetNodeText(data), 3); err != nil {
		return srerrors.NewXMLError(doc.FullPath(data), "reading graphic data", err)
	}
	return nil
}

func (c *SCoord3DContent) writeXML(el *etree.Element, _ XMLFlags) {
	el.CreateElement("fhref").CreateAttr("uid", c.FrameOfReferenceUID)
	data := el.CreateElement("data")
	data.CreateAttr("type", string(c.GraphicType))
	data.SetText(formatPoints(c.Data, 3))
}

func (c *SCoord3DContent) renderHTML(parent *html.Node, flags HTMLFlags) {
	appendText(parent, string(c.GraphicType))
	if flags&HTMLRenderFullData != 0 {
		appendText(parent, " "+formatPoints(c.Data, 3)+" (frame of reference "+c.FrameOfReferenceUID+")")
	}
}

// TCoordContent is the payload of TCOORD items. Exactly one of the three
// reference lists is set.
type TCoordContent struct {
	RangeType       types.TemporalRangeType
	SamplePositions []uint32
	TimeOffsets     []float64
	DateTimes       []string
}

func (c *TCoordContent) ValueType() types.ValueType { return types.ValueTypeTCoord }

func (c *TCoordContent) IsValid() bool {
	if !c.RangeType.IsValid() {
		return false
	}
	set := 0
	for _, n := range []int{len(c.SamplePositions), len(c.TimeOffsets), len(c.DateTimes)} {
		if n > 0 {
			set++
		}
	}
	if set != 1 {
		return false
	}
	for _, dt := range c.DateTimes {
		if !dicom.IsValidDateTime(dt) {
			return false
		}
	}
	return true
}

func (c *TCoordContent) IsShort(flags HTMLFlags) bool {
	return flags&HTMLRenderFullData == 0
}

func (c *TCoordContent) references() string {
	switch {
	case len(c.SamplePositions) > 0:
		parts := make([]string, len(c.SamplePositions))
		for i, p := range c.SamplePositions {
			parts[i] = strconv.FormatUint(uint64(p), 10)
		}
		return strings.Join(parts, ",")
	case len(c.TimeOffsets) > 0:
		parts := make([]string, len(c.TimeOffsets))
		for i, o := range c.TimeOffsets {
			parts[i] = strconv.FormatFloat(o, 'g', -1, 64)
		}
		return strings.Join(parts, ",")
	}
	return strings.Join(c.DateTimes, ",")
}

func (c *TCoordContent) String() string {
	return fmt.Sprintf("(%s,%s)", c.RangeType, c.references())
}

func (c *TCoordContent) clone() Content {
	clone := *c
	clone.SamplePositions = append([]uint32(nil), c.SamplePositions...)
	clone.TimeOffsets = append([]float64(nil), c.TimeOffsets...)
	clone.DateTimes = append([]string(nil), c.DateTimes...)
	return &clone
}

func (c *TCoordContent) readItem(ds *dicom.Dataset) error {
	var k errKeeper
	c.RangeType = types.TemporalRangeType(k.keep(ds.GetAndCheckString(dicom.TemporalRangeType, "1", dicom.Type1)))
	c.SamplePositions = ds.GetUint32s(dicom.ReferencedSamplePositions)
	c.TimeOffsets = nil
	for _, s := range ds.GetStrings(dicom.ReferencedTimeOffsets) {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			k.add(srerrors.NewAttributeError(dicom.ReferencedTimeOffsets.String(), dicom.TagName(dicom.ReferencedTimeOffsets), s, srerrors.ErrVRViolation))
			continue
		}
		c.TimeOffsets = append(c.TimeOffsets, f)
	}
	c.DateTimes = ds.GetStrings(dicom.ReferencedDateTime)
	return k.err
}

func (c *TCoordContent) writeItem(ds *dicom.Dataset) {
	ds.PutString(dicom.TemporalRangeType, string(c.RangeType))
	switch {
	case len(c.SamplePositions) > 0:
		ds.AddElement(dicom.ReferencedSamplePositions, dicom.VR_UL, append([]uint32(nil), c.SamplePositions...))
	case len(c.TimeOffsets) > 0:
		parts := make([]string, len(c.TimeOffsets))
		for i, o := range c.TimeOffsets {
			parts[i] = strconv.FormatFloat(o, 'g', 16, 64)
		}
		ds.PutString(dicom.ReferencedTimeOffsets, strings.Join(parts, `\`))
	case len(c.DateTimes) > 0:
		ds.PutString(dicom.ReferencedDateTime, strings.Join(c.DateTimes, `\`))
	}
}

func (c *TCoordContent) readXML(doc *XMLDocument, cursor XMLCursor) error {
	data, err := doc.GetNamedChild(cursor, "data", true)
	if err != nil {
		return err
	}
	c.RangeType = types.TemporalRangeType(doc.GetAttribute(data, "type"))
	split := func(s string) []string {
		if s = strings.TrimSpace(s); s == "" {
			return nil
		}
		return strings.Split(s, ",")
	}
	bad := func(v string) error {
		return srerrors.NewXMLError(doc.FullPath(data), "reading temporal reference "+v, srerrors.ErrInvalidValue)
	}
	for _, v := range split(doc.GetNamedChildText(data, "sample")) {
		p, err := strconv.ParseUint(strings.TrimSpace(v), 10, 32)
		if err != nil {
			return bad(v)
		}
		c.SamplePositions = append(c.SamplePositions, uint32(p))
	}
	for _, v := range split(doc.GetNamedChildText(data, "offset")) {
		o, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return bad(v)
		}
		c.TimeOffsets = append(c.TimeOffsets, o)
	}
	for _, v := range split(doc.GetNamedChildText(data, "datetime")) {
		c.DateTimes = append(c.DateTimes, xmlDateTimeToDICOM(v))
	}
	return nil
}

func (c *TCoordContent) writeXML(el *etree.Element, _ XMLFlags) {
	data := el.CreateElement("data")
	data.CreateAttr("type", string(c.RangeType))
	switch {
	case len(c.SamplePositions) > 0:
		data.CreateElement("sample").SetText(c.references())
	case len(c.TimeOffsets) > 0:
		data.CreateElement("offset").SetText(c.references())
	case len(c.DateTimes) > 0:
		converted := make([]string, len(c.DateTimes))
		for i, dt := range c.DateTimes {
			converted[i] = dicomDateTimeToXML(dt)
		}
		data.CreateElement("datetime").SetText(strings.Join(converted, ","))
	}
}

func (c *TCoordContent) renderHTML(parent *html.Node, flags HTMLFlags) {
	appendText(parent, string(c.RangeType))
	if flags&HTMLRenderFullData != 0 {
		appendText(parent, " "+c.references())
	}
}
