package dicom

import (
	"encoding/binary"
	"fmt"
	"log/slog"

	"github.com/caio-sobreiro/dicomsr/types"
)

const (
	preambleLength = 128
	part10Prefix   = "DICM"

	// ImplementationClassUIDValue identifies files written by this module.
	ImplementationClassUIDValue = "2.25.166372434152853702154585768474437513027"
	// ImplementationVersionNameValue is written to (0002,0013).
	ImplementationVersionNameValue = "DICOMSR_100"
)

// FileMeta holds the File Meta Information of a Part 10 file.
type FileMeta struct {
	MediaStorageSOPClassUID    string
	MediaStorageSOPInstanceUID string
	TransferSyntaxUID          string
	ImplementationClassUID     string
	ImplementationVersionName  string
}

// readFileMeta parses the group 0x0002 elements following the preamble and
// returns the offset of the dataset.
func readFileMeta(data []byte) (*FileMeta, int, error) {
	if len(data) < preambleLength+len(part10Prefix) {
		return nil, 0, fmt.Errorf("data too short to be DICOM Part 10 (need at least 132 bytes, got %d)", len(data))
	}

	// Check for DICM prefix at offset 128
	if string(data[preambleLength:preambleLength+4]) != part10Prefix {
		return nil, 0, fmt.Errorf("not a valid DICOM Part 10 file (missing DICM prefix at offset 128)")
	}

	offset := preambleLength + 4
	meta := NewDataset()

	// File Meta Information is always Explicit VR Little Endian
	for offset+8 <= len(data) {
		group := binary.LittleEndian.Uint16(data[offset : offset+2])
		if group != 0x0002 {
			break
		}
		element := binary.LittleEndian.Uint16(data[offset+2 : offset+4])
		vr := string(data[offset+4 : offset+6])

		var (
			length      uint32
			valueOffset int
		)
		if isLongVR(vr) {
			if offset+12 > len(data) {
				break
			}
			length = binary.LittleEndian.Uint32(data[offset+8 : offset+12])
			valueOffset = offset + 12
		} else {
			length = uint32(binary.LittleEndian.Uint16(data[offset+6 : offset+8]))
			valueOffset = offset + 8
		}
		if valueOffset+int(length) > len(data) {
			return nil, 0, fmt.Errorf("file meta element (0002,%04x) exceeds available data", element)
		}

		tag := Tag{Group: group, Element: element}
		meta.AddElement(tag, vr, parseElementValue(vr, data[valueOffset:valueOffset+int(length)]))
		offset = valueOffset + int(length)
	}

	fm := &FileMeta{
		MediaStorageSOPClassUID:    meta.GetString(MediaStorageSOPClassUID),
		MediaStorageSOPInstanceUID: meta.GetString(MediaStorageSOPInstanceUID),
		TransferSyntaxUID:          meta.GetString(TransferSyntaxUID),
		ImplementationClassUID:     meta.GetString(ImplementationClassUID),
		ImplementationVersionName:  meta.GetString(ImplementationVersionName),
	}
	if fm.TransferSyntaxUID != "" {
		slog.Debug("Found Transfer Syntax UID in File Meta Information",
			"transfer_syntax", fm.TransferSyntaxUID,
			"dataset_start_offset", offset)
	}
	return fm, offset, nil
}

// StripPart10Header removes the DICOM Part 10 preamble and File Meta Information
// to extract just the dataset.
//
// DICOM Part 10 files contain:
//   - 128 byte preamble
//   - 4 byte "DICM" prefix
//   - File Meta Information elements (group 0x0002)
//   - Dataset (the actual DICOM data)
func StripPart10Header(data []byte) ([]byte, error) {
	_, offset, err := readFileMeta(data)
	if err != nil {
		return nil, err
	}
	if offset >= len(data) {
		return nil, fmt.Errorf("failed to find dataset after File Meta Information")
	}
	return data[offset:], nil
}

// HasPart10Header checks if the data starts with a DICOM Part 10 header.
//
// Returns true if the data contains the 128-byte preamble followed by "DICM".
func HasPart10Header(data []byte) bool {
	if len(data) < preambleLength+4 {
		return false
	}
	return string(data[preambleLength:preambleLength+4]) == part10Prefix
}

// ParsePart10 decodes a complete Part 10 file using the transfer syntax
// announced in its File Meta Information.
//
// Data without a preamble is parsed as a bare Explicit VR Little Endian dataset.
func ParsePart10(data []byte) (*Dataset, *FileMeta, error) {
	if !HasPart10Header(data) {
		ds, err := ParseDataset(data)
		return ds, &FileMeta{TransferSyntaxUID: TransferSyntaxExplicitVRLittleEndian}, err
	}
	meta, offset, err := readFileMeta(data)
	if err != nil {
		return nil, nil, err
	}
	ds, err := ParseDatasetWithTransferSyntax(data[offset:], meta.TransferSyntaxUID)
	if err != nil {
		return nil, meta, err
	}
	return ds, meta, nil
}

// EncodePart10 writes the dataset as a Part 10 file. Missing meta values are
// taken from the dataset's SOP Common attributes.
func EncodePart10(ds *Dataset, meta *FileMeta) ([]byte, error) {
	if meta == nil {
		meta = &FileMeta{}
	}
	fm := *meta
	if fm.MediaStorageSOPClassUID == "" {
		fm.MediaStorageSOPClassUID = ds.GetString(SOPClassUID)
	}
	if fm.MediaStorageSOPInstanceUID == "" {
		fm.MediaStorageSOPInstanceUID = ds.GetString(SOPInstanceUID)
	}
	if fm.TransferSyntaxUID == "" {
		fm.TransferSyntaxUID = types.ExplicitVRLittleEndian
	}
	if fm.ImplementationClassUID == "" {
		fm.ImplementationClassUID = ImplementationClassUIDValue
		fm.ImplementationVersionName = ImplementationVersionNameValue
	}

	body, err := EncodeDatasetWithTransferSyntax(ds, fm.TransferSyntaxUID)
	if err != nil {
		return nil, err
	}

	group := NewDataset()
	group.AddElement(FileMetaInformationVersion, VR_OB, []byte{0x00, 0x01})
	group.AddElement(MediaStorageSOPClassUID, VR_UI, fm.MediaStorageSOPClassUID)
	group.AddElement(MediaStorageSOPInstanceUID, VR_UI, fm.MediaStorageSOPInstanceUID)
	group.AddElement(TransferSyntaxUID, VR_UI, fm.TransferSyntaxUID)
	group.AddElement(ImplementationClassUID, VR_UI, fm.ImplementationClassUID)
	if fm.ImplementationVersionName != "" {
		group.AddElement(ImplementationVersionName, VR_SH, fm.ImplementationVersionName)
	}
	groupBytes := group.EncodeDataset()

	out := make([]byte, preambleLength, preambleLength+4+12+len(groupBytes)+len(body))
	out = append(out, part10Prefix...)
	out = encodeElement(out, &Element{Tag: FileMetaInformationGroupLength, VR: VR_UL, Value: uint32(len(groupBytes))}, true)
	out = append(out, groupBytes...)
	return append(out, body...), nil
}

// Part10Codec reads and writes Part 10 files with ParsePart10 and
// EncodePart10.
type Part10Codec struct{}

// Decode implements interfaces.DatasetCodec.
func (Part10Codec) Decode(data []byte) (*Dataset, *FileMeta, error) {
	return ParsePart10(data)
}

// Encode implements interfaces.DatasetCodec.
func (Part10Codec) Encode(ds *Dataset, meta *FileMeta) ([]byte, error) {
	return EncodePart10(ds, meta)
}
