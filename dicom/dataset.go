package dicom

import (
	"encoding/binary"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	srerrors "github.com/caio-sobreiro/dicomsr/errors"
	"github.com/caio-sobreiro/dicomsr/types"
)

// VR (Value Representation) constants
const (
	VR_AE = "AE" // Application Entity
	VR_AS = "AS" // Age String
	VR_AT = "AT" // Attribute Tag
	VR_CS = "CS" // Code String
	VR_DA = "DA" // Date
	VR_DS = "DS" // Decimal String
	VR_DT = "DT" // Date Time
	VR_FL = "FL" // Floating Point Single
	VR_FD = "FD" // Floating Point Double
	VR_IS = "IS" // Integer String
	VR_LO = "LO" // Long String
	VR_LT = "LT" // Long Text
	VR_OB = "OB" // Other Byte
	VR_OD = "OD" // Other Double
	VR_OF = "OF" // Other Float
	VR_OL = "OL" // Other Long
	VR_OV = "OV" // Other Very Long
	VR_OW = "OW" // Other Word
	VR_PN = "PN" // Person Name
	VR_SH = "SH" // Short String
	VR_SL = "SL" // Signed Long
	VR_SQ = "SQ" // Sequence of Items
	VR_SS = "SS" // Signed Short
	VR_ST = "ST" // Short Text
	VR_SV = "SV" // Signed Very Long
	VR_TM = "TM" // Time
	VR_UC = "UC" // Unlimited Characters
	VR_UI = "UI" // Unique Identifier
	VR_UL = "UL" // Unsigned Long
	VR_UN = "UN" // Unknown
	VR_UR = "UR" // Universal Resource
	VR_US = "US" // Unsigned Short
	VR_UT = "UT" // Unlimited Text
	VR_UV = "UV" // Unsigned Very Long
)

// Common transfer syntax UIDs
const (
	TransferSyntaxImplicitVRLittleEndian = types.ImplicitVRLittleEndian
	TransferSyntaxExplicitVRLittleEndian = types.ExplicitVRLittleEndian
)

const undefinedLength = 0xFFFFFFFF

// Item encoding tags (PS3.5 7.5).
var (
	ItemTag                 = Tag{0xFFFE, 0xE000}
	ItemDelimitationTag     = Tag{0xFFFE, 0xE00D}
	SequenceDelimitationTag = Tag{0xFFFE, 0xE0DD}
)

// Tag represents a DICOM tag (group, element)
type Tag struct {
	Group   uint16
	Element uint16
}

// String returns the tag as a string in (GGGG,EEEE) format
func (t Tag) String() string {
	return fmt.Sprintf("(%04x,%04x)", t.Group, t.Element)
}

// Compare orders tags by group, then by element.
func (t Tag) Compare(other Tag) int {
	if t.Group != other.Group {
		if t.Group < other.Group {
			return -1
		}
		return 1
	}
	switch {
	case t.Element < other.Element:
		return -1
	case t.Element > other.Element:
		return 1
	}
	return 0
}

// Element represents a DICOM data element.
//
// Value holds one of: string (backslash separated when multi-valued),
// []string, []uint16, []int16, []uint32, []int32, []float32, []float64,
// []byte or []*Dataset for sequences.
type Element struct {
	Tag    Tag
	VR     string
	Length uint32
	Value  interface{}
}

// Dataset represents a collection of DICOM elements
type Dataset struct {
	Elements map[Tag]*Element
}

// NewDataset creates a new empty dataset
func NewDataset() *Dataset {
	return &Dataset{
		Elements: make(map[Tag]*Element),
	}
}

// AddElement adds an element to the dataset
func (d *Dataset) AddElement(tag Tag, vr string, value interface{}) {
	element := &Element{
		Tag:   tag,
		VR:    vr,
		Value: value,
	}
	d.Elements[tag] = element
}

// PutString stores a string value using the VR from the data dictionary.
func (d *Dataset) PutString(tag Tag, value string) {
	d.AddElement(tag, LookupVR(tag), value)
}

// GetElement returns an element by tag
func (d *Dataset) GetElement(tag Tag) (*Element, bool) {
	element, exists := d.Elements[tag]
	return element, exists
}

// HasElement reports whether the tag is present, even with an empty value.
func (d *Dataset) HasElement(tag Tag) bool {
	_, exists := d.Elements[tag]
	return exists
}

// RemoveElement deletes an element, if present.
func (d *Dataset) RemoveElement(tag Tag) {
	delete(d.Elements, tag)
}

// Len returns the number of top level elements.
func (d *Dataset) Len() int {
	return len(d.Elements)
}

// Tags returns the tags of the dataset in ascending order.
func (d *Dataset) Tags() []Tag {
	tags := make([]Tag, 0, len(d.Elements))
	for tag := range d.Elements {
		tags = append(tags, tag)
	}
	slices.SortFunc(tags, Tag.Compare)
	return tags
}

// GetString returns a string value for a tag
func (d *Dataset) GetString(tag Tag) string {
	if element, exists := d.Elements[tag]; exists {
		switch v := element.Value.(type) {
		case string:
			return strings.TrimSpace(v)
		case []string:
			return strings.Join(v, "\\")
		}
	}
	return ""
}

// GetStrings returns a slice of string values for a tag
func (d *Dataset) GetStrings(tag Tag) []string {
	if element, exists := d.Elements[tag]; exists {
		switch v := element.Value.(type) {
		case string:
			if v == "" {
				return nil
			}
			// Split by backslash for multiple values
			parts := strings.Split(v, "\\")
			result := make([]string, len(parts))
			for i, part := range parts {
				result[i] = strings.TrimSpace(part)
			}
			return result
		case []string:
			return v
		}
	}
	return nil
}

// GetUint16s returns the values of a US element.
func (d *Dataset) GetUint16s(tag Tag) []uint16 {
	if element, exists := d.Elements[tag]; exists {
		if v, ok := element.Value.([]uint16); ok {
			return v
		}
	}
	return nil
}

// GetUint32s returns the values of a UL element.
func (d *Dataset) GetUint32s(tag Tag) []uint32 {
	if element, exists := d.Elements[tag]; exists {
		switch v := element.Value.(type) {
		case []uint32:
			return v
		case uint32:
			return []uint32{v}
		}
	}
	return nil
}

// GetFloat32s returns the values of an FL or OF element.
func (d *Dataset) GetFloat32s(tag Tag) []float32 {
	if element, exists := d.Elements[tag]; exists {
		switch v := element.Value.(type) {
		case []float32:
			return v
		case []float64:
			out := make([]float32, len(v))
			for i, f := range v {
				out[i] = float32(f)
			}
			return out
		}
	}
	return nil
}

// GetFloat64s returns the values of an FD element.
func (d *Dataset) GetFloat64s(tag Tag) []float64 {
	if element, exists := d.Elements[tag]; exists {
		if v, ok := element.Value.([]float64); ok {
			return v
		}
	}
	return nil
}

// GetBytes returns the raw value of an OB/OW/UN element.
func (d *Dataset) GetBytes(tag Tag) []byte {
	if element, exists := d.Elements[tag]; exists {
		if v, ok := element.Value.([]byte); ok {
			return v
		}
	}
	return nil
}

// AddSequence stores a sequence element with the given items.
func (d *Dataset) AddSequence(tag Tag, items []*Dataset) {
	d.AddElement(tag, VR_SQ, items)
}

// GetSequence returns the items of a sequence element.
func (d *Dataset) GetSequence(tag Tag) []*Dataset {
	if element, exists := d.Elements[tag]; exists {
		if items, ok := element.Value.([]*Dataset); ok {
			return items
		}
	}
	return nil
}

// GetSequenceItem returns the item at index, or nil.
func (d *Dataset) GetSequenceItem(tag Tag, index int) *Dataset {
	items := d.GetSequence(tag)
	if index < 0 || index >= len(items) {
		return nil
	}
	return items[index]
}

// AppendSequenceItem appends an empty item to a sequence, creating the
// sequence when missing, and returns the new item.
func (d *Dataset) AppendSequenceItem(tag Tag) *Dataset {
	item := NewDataset()
	element, exists := d.Elements[tag]
	if !exists {
		d.AddSequence(tag, []*Dataset{item})
		return item
	}
	items, _ := element.Value.([]*Dataset)
	element.VR = VR_SQ
	element.Value = append(items, item)
	return item
}

// Clone returns a deep copy of the dataset.
func (d *Dataset) Clone() *Dataset {
	if d == nil {
		return nil
	}
	out := NewDataset()
	for tag, element := range d.Elements {
		var value interface{}
		switch v := element.Value.(type) {
		case []*Dataset:
			items := make([]*Dataset, len(v))
			for i, item := range v {
				items[i] = item.Clone()
			}
			value = items
		case []string:
			value = slices.Clone(v)
		case []uint16:
			value = slices.Clone(v)
		case []int16:
			value = slices.Clone(v)
		case []uint32:
			value = slices.Clone(v)
		case []int32:
			value = slices.Clone(v)
		case []float32:
			value = slices.Clone(v)
		case []float64:
			value = slices.Clone(v)
		case []byte:
			value = slices.Clone(v)
		default:
			value = v
		}
		out.AddElement(tag, element.VR, value)
	}
	return out
}

// ParseDataset parses a DICOM dataset from raw bytes (Explicit VR Little Endian)
func ParseDataset(data []byte) (*Dataset, error) {
	dec := &decoder{data: data, explicit: true}
	dataset, _, err := dec.parseDataset(0, len(data), false)
	return dataset, err
}

// ParseDatasetWithTransferSyntax parses a dataset using the provided transfer syntax.
func ParseDatasetWithTransferSyntax(data []byte, transferSyntaxUID string) (*Dataset, error) {
	info, err := nativeTransferSyntax(transferSyntaxUID)
	if err != nil {
		return nil, err
	}
	if info.ExplicitVR {
		return ParseDataset(data)
	}
	return parseImplicitVRDataset(data)
}

// nativeTransferSyntax looks uid up in the transfer syntax registry. An
// empty uid means Explicit VR Little Endian.
func nativeTransferSyntax(uid string) (*types.TransferSyntaxInfo, error) {
	if uid == "" {
		uid = TransferSyntaxExplicitVRLittleEndian
	}
	info := types.GetTransferSyntaxInfo(uid)
	if !info.Supported {
		return nil, fmt.Errorf("%w: %s (%s)", srerrors.ErrUnsupportedTransferSyntax, uid, info.Name)
	}
	return info, nil
}

func parseImplicitVRDataset(data []byte) (*Dataset, error) {
	dec := &decoder{data: data}
	dataset, _, err := dec.parseDataset(0, len(data), false)
	return dataset, err
}

type decoder struct {
	data     []byte
	explicit bool
}

func (dec *decoder) malformed(offset int, format string, args ...interface{}) error {
	return fmt.Errorf("%w: offset %d: %s", srerrors.ErrMalformedDataset, offset, fmt.Sprintf(format, args...))
}

// parseDataset reads elements in [offset,end). With inItem set, an item
// delimitation tag ends the dataset.
func (dec *decoder) parseDataset(offset, end int, inItem bool) (*Dataset, int, error) {
	dataset := NewDataset()
	data := dec.data

	for offset < end {
		// Need at least 8 bytes for tag + VR + length
		if offset+8 > end {
			break
		}

		group := binary.LittleEndian.Uint16(data[offset : offset+2])
		element := binary.LittleEndian.Uint16(data[offset+2 : offset+4])
		tag := Tag{Group: group, Element: element}

		if tag == ItemDelimitationTag {
			offset += 8
			if inItem {
				return dataset, offset, nil
			}
			continue
		}

		var (
			vr          string
			length      uint32
			valueOffset int
		)

		if dec.explicit {
			vr = string(data[offset+4 : offset+6])
			if isLongVR(vr) {
				// Tag (4) + VR (2) + Reserved (2) + Length (4)
				if offset+12 > end {
					return nil, offset, dec.malformed(offset, "truncated header of %s", tag)
				}
				length = binary.LittleEndian.Uint32(data[offset+8 : offset+12])
				valueOffset = offset + 12
			} else {
				length = uint32(binary.LittleEndian.Uint16(data[offset+6 : offset+8]))
				valueOffset = offset + 8
			}
		} else {
			length = binary.LittleEndian.Uint32(data[offset+4 : offset+8])
			valueOffset = offset + 8
			vr = determineVR(tag)
		}

		if vr == VR_SQ || length == undefinedLength {
			items, next, err := dec.parseSequence(valueOffset, length, end)
			if err != nil {
				return nil, offset, fmt.Errorf("sequence %s: %w", tag, err)
			}
			dataset.AddSequence(tag, items)
			offset = next
			continue
		}

		if valueOffset+int(length) > end {
			return nil, offset, dec.malformed(offset, "value of %s exceeds available data", tag)
		}

		value := parseElementValue(vr, data[valueOffset:valueOffset+int(length)])
		dataset.AddElement(tag, vr, value)
		dataset.Elements[tag].Length = length

		offset = valueOffset + int(length)
	}

	return dataset, offset, nil
}

func (dec *decoder) parseSequence(offset int, length uint32, limit int) ([]*Dataset, int, error) {
	data := dec.data
	end := limit
	if length != undefinedLength {
		end = offset + int(length)
		if end > limit {
			return nil, offset, dec.malformed(offset, "sequence length %d exceeds available data", length)
		}
	}

	var items []*Dataset
	for offset+8 <= end {
		group := binary.LittleEndian.Uint16(data[offset : offset+2])
		element := binary.LittleEndian.Uint16(data[offset+2 : offset+4])
		tag := Tag{Group: group, Element: element}
		itemLength := binary.LittleEndian.Uint32(data[offset+4 : offset+8])

		if tag == SequenceDelimitationTag {
			return items, offset + 8, nil
		}
		if tag != ItemTag {
			return nil, offset, dec.malformed(offset, "expected item tag, found %s", tag)
		}

		var (
			item *Dataset
			next int
			err  error
		)
		if itemLength == undefinedLength {
			item, next, err = dec.parseDataset(offset+8, end, true)
		} else {
			itemEnd := offset + 8 + int(itemLength)
			if itemEnd > end {
				return nil, offset, dec.malformed(offset, "item length %d exceeds sequence", itemLength)
			}
			item, _, err = dec.parseDataset(offset+8, itemEnd, false)
			next = itemEnd
		}
		if err != nil {
			return nil, offset, fmt.Errorf("item %d: %w", len(items)+1, err)
		}
		items = append(items, item)
		offset = next
	}

	return items, end, nil
}

// parseElementValue converts the raw value according to its VR
func parseElementValue(vr string, data []byte) interface{} {
	switch vr {
	case VR_US:
		out := make([]uint16, len(data)/2)
		for i := range out {
			out[i] = binary.LittleEndian.Uint16(data[i*2:])
		}
		return out
	case VR_SS:
		out := make([]int16, len(data)/2)
		for i := range out {
			out[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
		}
		return out
	case VR_UL:
		out := make([]uint32, len(data)/4)
		for i := range out {
			out[i] = binary.LittleEndian.Uint32(data[i*4:])
		}
		return out
	case VR_SL:
		out := make([]int32, len(data)/4)
		for i := range out {
			out[i] = int32(binary.LittleEndian.Uint32(data[i*4:]))
		}
		return out
	case VR_FL:
		out := make([]float32, len(data)/4)
		for i := range out {
			out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
		}
		return out
	case VR_FD:
		out := make([]float64, len(data)/8)
		for i := range out {
			out[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[i*8:]))
		}
		return out
	case VR_OB, VR_OD, VR_OF, VR_OL, VR_OV, VR_OW, VR_UN, VR_AT, VR_SV, VR_UV:
		return slices.Clone(data)
	case VR_UT, VR_LT, VR_ST, VR_UR:
		// Leading spaces are significant for text VRs
		return strings.TrimRight(string(data), "\x00 ")
	}

	if len(data) == 0 {
		return ""
	}

	// Remove null padding
	value := string(data)
	if idx := strings.IndexByte(value, 0); idx != -1 {
		value = value[:idx]
	}

	return strings.TrimSpace(value)
}

// determineVR determines the VR of an implicit VR element from the dictionary
func determineVR(tag Tag) string {
	return LookupVR(tag)
}

func isLongVR(vr string) bool {
	switch vr {
	case VR_OB, VR_OD, VR_OF, VR_OL, VR_OV, VR_OW, VR_SQ, VR_UC, VR_UR, VR_UT, VR_UN, VR_SV, VR_UV:
		return true
	}
	return false
}

// EncodeDataset encodes a dataset to bytes (Explicit VR Little Endian)
func (d *Dataset) EncodeDataset() []byte {
	return encodeDataset(nil, d, true)
}

// EncodeDatasetWithTransferSyntax encodes a dataset using the provided transfer syntax.
func EncodeDatasetWithTransferSyntax(dataset *Dataset, transferSyntaxUID string) ([]byte, error) {
	if dataset == nil {
		return nil, nil
	}

	info, err := nativeTransferSyntax(transferSyntaxUID)
	if err != nil {
		return nil, err
	}
	if info.ExplicitVR {
		return dataset.EncodeDataset(), nil
	}
	return encodeImplicitVRDataset(dataset), nil
}

func encodeImplicitVRDataset(dataset *Dataset) []byte {
	return encodeDataset(nil, dataset, false)
}

func encodeDataset(buf []byte, d *Dataset, explicit bool) []byte {
	for _, tag := range d.Tags() {
		buf = encodeElement(buf, d.Elements[tag], explicit)
	}
	return buf
}

func encodeElement(buf []byte, element *Element, explicit bool) []byte {
	buf = binary.LittleEndian.AppendUint16(buf, element.Tag.Group)
	buf = binary.LittleEndian.AppendUint16(buf, element.Tag.Element)

	vr := element.VR
	if vr == "" {
		vr = LookupVR(element.Tag)
	}

	var valueBytes []byte
	if items, ok := element.Value.([]*Dataset); ok {
		vr = VR_SQ
		for _, item := range items {
			content := encodeDataset(nil, item, explicit)
			valueBytes = binary.LittleEndian.AppendUint16(valueBytes, ItemTag.Group)
			valueBytes = binary.LittleEndian.AppendUint16(valueBytes, ItemTag.Element)
			valueBytes = binary.LittleEndian.AppendUint32(valueBytes, uint32(len(content)))
			valueBytes = append(valueBytes, content...)
		}
	} else {
		valueBytes = encodeElementValue(element)
		// DICOM requires even lengths
		if len(valueBytes)%2 == 1 {
			valueBytes = append(valueBytes, paddingByte(vr))
		}
	}

	if !explicit {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(valueBytes)))
		return append(buf, valueBytes...)
	}

	buf = append(buf, vr...)
	if isLongVR(vr) {
		buf = append(buf, 0x00, 0x00) // Reserved bytes
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(valueBytes)))
	} else {
		if len(valueBytes) > 65535 {
			// Value too long for short VR format
			valueBytes = valueBytes[:65534]
		}
		buf = binary.LittleEndian.AppendUint16(buf, uint16(len(valueBytes)))
	}
	return append(buf, valueBytes...)
}

func paddingByte(vr string) byte {
	switch vr {
	case VR_UI, VR_OB, VR_UN:
		return 0x00
	}
	return 0x20
}

// encodeElementValue encodes an element value to bytes
func encodeElementValue(element *Element) []byte {
	switch v := element.Value.(type) {
	case nil:
		return nil
	case string:
		return []byte(strings.TrimRight(v, "\x00"))
	case []string:
		joined := strings.Join(v, "\\")
		joined = strings.TrimRight(joined, "\x00")
		return []byte(joined)
	case int:
		return []byte(strconv.Itoa(v))
	case uint16:
		return binary.LittleEndian.AppendUint16(nil, v)
	case uint32:
		return binary.LittleEndian.AppendUint32(nil, v)
	case []uint16:
		var out []byte
		for _, n := range v {
			out = binary.LittleEndian.AppendUint16(out, n)
		}
		return out
	case []int16:
		var out []byte
		for _, n := range v {
			out = binary.LittleEndian.AppendUint16(out, uint16(n))
		}
		return out
	case []uint32:
		var out []byte
		for _, n := range v {
			out = binary.LittleEndian.AppendUint32(out, n)
		}
		return out
	case []int32:
		var out []byte
		for _, n := range v {
			out = binary.LittleEndian.AppendUint32(out, uint32(n))
		}
		return out
	case []float32:
		var out []byte
		for _, f := range v {
			out = binary.LittleEndian.AppendUint32(out, math.Float32bits(f))
		}
		return out
	case []float64:
		var out []byte
		for _, f := range v {
			out = binary.LittleEndian.AppendUint64(out, math.Float64bits(f))
		}
		return out
	case []byte:
		return v
	default:
		return []byte(fmt.Sprintf("%v", v))
	}
}
