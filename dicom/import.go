package dicom

import (
	"bytes"
	"fmt"
	"io"
	"os"

	sdicom "github.com/suyashkumar/dicom"

	"github.com/caio-sobreiro/dicomsr/types"
)

// ImportFile reads a DICOM file of any transfer syntax supported by the
// github.com/suyashkumar/dicom parser and converts it into a Dataset.
// Pixel data is skipped.
func ImportFile(path string) (*Dataset, *FileMeta, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("could not open file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, nil, fmt.Errorf("could not stat file: %w", err)
	}

	return Import(file, info.Size())
}

// LoadFile reads a DICOM object from path. Part 10 files in a transfer
// syntax the native codec supports are decoded natively; other Part 10
// files and bare datasets it cannot parse go through ImportFile.
func LoadFile(path string) (*Dataset, *FileMeta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("could not read file: %w", err)
	}
	if HasPart10Header(data) {
		meta, _, err := readFileMeta(data)
		if err == nil && types.IsSupportedTransferSyntax(meta.TransferSyntaxUID) {
			return ParsePart10(data)
		}
	} else if ds, meta, err := ParsePart10(data); err == nil {
		return ds, meta, nil
	}
	return Import(bytes.NewReader(data), int64(len(data)))
}

// Import parses size bytes from r, see ImportFile.
func Import(r io.Reader, size int64) (*Dataset, *FileMeta, error) {
	parsed, err := sdicom.Parse(r, size, nil, sdicom.SkipPixelData())
	if err != nil {
		return nil, nil, fmt.Errorf("could not parse DICOM: %w", err)
	}

	ds := convertElements(parsed.Elements)
	meta := &FileMeta{
		MediaStorageSOPClassUID:    ds.GetString(MediaStorageSOPClassUID),
		MediaStorageSOPInstanceUID: ds.GetString(MediaStorageSOPInstanceUID),
		TransferSyntaxUID:          ds.GetString(TransferSyntaxUID),
		ImplementationClassUID:     ds.GetString(ImplementationClassUID),
		ImplementationVersionName:  ds.GetString(ImplementationVersionName),
	}
	for tag := range ds.Elements {
		if tag.Group == 0x0002 {
			ds.RemoveElement(tag)
		}
	}
	return ds, meta, nil
}

func convertElements(elements []*sdicom.Element) *Dataset {
	ds := NewDataset()
	for _, elem := range elements {
		if elem == nil || elem.Value == nil {
			continue
		}
		tag := Tag{Group: elem.Tag.Group, Element: elem.Tag.Element}
		vr := elem.RawValueRepresentation
		if vr == "" || len(vr) != 2 {
			vr = LookupVR(tag)
		}

		switch elem.Value.ValueType() {
		case sdicom.Strings:
			values, _ := elem.Value.GetValue().([]string)
			if len(values) == 1 {
				ds.AddElement(tag, vr, values[0])
			} else {
				ds.AddElement(tag, vr, values)
			}
		case sdicom.Ints:
			values, _ := elem.Value.GetValue().([]int)
			ds.AddElement(tag, vr, convertInts(vr, values))
		case sdicom.Floats:
			values, _ := elem.Value.GetValue().([]float64)
			if vr == VR_FL || vr == VR_OF {
				out := make([]float32, len(values))
				for i, f := range values {
					out[i] = float32(f)
				}
				ds.AddElement(tag, vr, out)
			} else {
				ds.AddElement(tag, vr, values)
			}
		case sdicom.Bytes:
			values, _ := elem.Value.GetValue().([]byte)
			ds.AddElement(tag, vr, values)
		case sdicom.Sequences:
			items, _ := elem.Value.GetValue().([]*sdicom.SequenceItemValue)
			converted := make([]*Dataset, 0, len(items))
			for _, item := range items {
				children, _ := item.GetValue().([]*sdicom.Element)
				converted = append(converted, convertElements(children))
			}
			ds.AddSequence(tag, converted)
		}
	}
	return ds
}

func convertInts(vr string, values []int) interface{} {
	switch vr {
	case VR_US:
		out := make([]uint16, len(values))
		for i, v := range values {
			out[i] = uint16(v)
		}
		return out
	case VR_SS:
		out := make([]int16, len(values))
		for i, v := range values {
			out[i] = int16(v)
		}
		return out
	case VR_SL:
		out := make([]int32, len(values))
		for i, v := range values {
			out[i] = int32(v)
		}
		return out
	default:
		out := make([]uint32, len(values))
		for i, v := range values {
			out[i] = uint32(v)
		}
		return out
	}
}
