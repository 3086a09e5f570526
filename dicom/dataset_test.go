package dicom

import (
	"encoding/binary"
	"errors"
	"strings"
	"testing"

	srerrors "github.com/caio-sobreiro/dicomsr/errors"
)

func TestTag_String(t *testing.T) {
	tests := []struct {
		name     string
		tag      Tag
		expected string
	}{
		{"Relationship Type", RelationshipType, "(0040,a010)"},
		{"Content Sequence", ContentSequence, "(0040,a730)"},
		{"Digital Signatures Sequence", DigitalSignaturesSequence, "(fffa,fffa)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.tag.String()
			if result != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, result)
			}
		})
	}
}

func TestDataset_GetString(t *testing.T) {
	ds := NewDataset()

	tests := []struct {
		name     string
		tag      Tag
		value    interface{}
		expected string
	}{
		{"String value", TextValue, "Findings", "Findings"},
		{"String with spaces", CodeValue, "  121071  ", "121071"},
		{"String slice", ValueType, []string{"A", "B"}, "A\\B"},
		{"Non-string value", ReferencedContentItemIdentifier, []uint32{1, 2}, ""},
		{"Non-existing tag", Tag{0xFFFF, 0xFFFF}, nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != nil {
				ds.AddElement(tt.tag, VR_LO, tt.value)
			}
			result := ds.GetString(tt.tag)
			if result != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, result)
			}
		})
	}
}

func TestDataset_GetStrings(t *testing.T) {
	ds := NewDataset()
	ds.PutString(ReferencedFrameNumber, "1\\ 2 \\3")

	got := ds.GetStrings(ReferencedFrameNumber)
	want := []string{"1", "2", "3"}
	if len(got) != len(want) {
		t.Fatalf("Expected %d strings, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("String[%d]: expected %q, got %q", i, want[i], got[i])
		}
	}

	ds.PutString(TextValue, "")
	if got := ds.GetStrings(TextValue); got != nil {
		t.Errorf("GetStrings(empty) = %v, want nil", got)
	}
	if el, _ := ds.GetElement(ReferencedFrameNumber); el.VR != VR_IS {
		t.Errorf("PutString VR = %s, want IS", el.VR)
	}
}

func TestDataset_Sequences(t *testing.T) {
	ds := NewDataset()
	first := ds.AppendSequenceItem(ContentSequence)
	first.PutString(RelationshipType, "CONTAINS")
	second := ds.AppendSequenceItem(ContentSequence)
	second.PutString(RelationshipType, "HAS OBS CONTEXT")

	items := ds.GetSequence(ContentSequence)
	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(items))
	}
	if got := ds.GetSequenceItem(ContentSequence, 1).GetString(RelationshipType); got != "HAS OBS CONTEXT" {
		t.Errorf("item 2 RelationshipType = %q", got)
	}
	if ds.GetSequenceItem(ContentSequence, 2) != nil {
		t.Error("GetSequenceItem out of range should return nil")
	}

	clone := ds.Clone()
	clone.GetSequenceItem(ContentSequence, 0).PutString(RelationshipType, "INFERRED FROM")
	if got := first.GetString(RelationshipType); got != "CONTAINS" {
		t.Errorf("Clone shares items with the original: %q", got)
	}
}

func TestParseDataset(t *testing.T) {
	tests := []struct {
		name        string
		data        []byte
		expectedLen int
		checks      func(t *testing.T, ds *Dataset)
	}{
		{
			name:        "Empty dataset",
			data:        []byte{},
			expectedLen: 0,
		},
		{
			name: "Single element",
			data: func() []byte {
				// Explicit VR: Tag (4) + VR (2) + Length (2) + Value
				data := make([]byte, 8)
				binary.LittleEndian.PutUint16(data[0:2], 0x0040)
				binary.LittleEndian.PutUint16(data[2:4], 0xA040)
				data[4] = 'C'
				data[5] = 'S'
				binary.LittleEndian.PutUint16(data[6:8], 4)
				data = append(data, []byte("TEXT")...)
				return data
			}(),
			expectedLen: 1,
			checks: func(t *testing.T, ds *Dataset) {
				if value := ds.GetString(ValueType); value != "TEXT" {
					t.Errorf("Expected TEXT, got %s", value)
				}
			},
		},
		{
			name: "Undefined length sequence",
			data: func() []byte {
				var data []byte
				data = binary.LittleEndian.AppendUint16(data, 0x0040)
				data = binary.LittleEndian.AppendUint16(data, 0xA730)
				data = append(data, 'S', 'Q', 0, 0)
				data = binary.LittleEndian.AppendUint32(data, undefinedLength)
				// item with undefined length
				data = binary.LittleEndian.AppendUint16(data, 0xFFFE)
				data = binary.LittleEndian.AppendUint16(data, 0xE000)
				data = binary.LittleEndian.AppendUint32(data, undefinedLength)
				data = binary.LittleEndian.AppendUint16(data, 0x0040)
				data = binary.LittleEndian.AppendUint16(data, 0xA010)
				data = append(data, 'C', 'S')
				data = binary.LittleEndian.AppendUint16(data, 8)
				data = append(data, []byte("CONTAINS")...)
				// item delimiter
				data = binary.LittleEndian.AppendUint16(data, 0xFFFE)
				data = binary.LittleEndian.AppendUint16(data, 0xE00D)
				data = binary.LittleEndian.AppendUint32(data, 0)
				// sequence delimiter
				data = binary.LittleEndian.AppendUint16(data, 0xFFFE)
				data = binary.LittleEndian.AppendUint16(data, 0xE0DD)
				data = binary.LittleEndian.AppendUint32(data, 0)
				return data
			}(),
			expectedLen: 1,
			checks: func(t *testing.T, ds *Dataset) {
				item := ds.GetSequenceItem(ContentSequence, 0)
				if item == nil {
					t.Fatal("missing sequence item")
				}
				if got := item.GetString(RelationshipType); got != "CONTAINS" {
					t.Errorf("RelationshipType = %q, want CONTAINS", got)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := ParseDataset(tt.data)
			if err != nil {
				t.Fatalf("ParseDataset failed: %v", err)
			}

			if len(ds.Elements) != tt.expectedLen {
				t.Errorf("Expected %d elements, got %d", tt.expectedLen, len(ds.Elements))
			}

			if tt.checks != nil {
				tt.checks(t, ds)
			}
		})
	}
}

func TestParseDataset_Truncated(t *testing.T) {
	data := make([]byte, 8)
	binary.LittleEndian.PutUint16(data[0:2], 0x0040)
	binary.LittleEndian.PutUint16(data[2:4], 0xA160)
	data[4] = 'L'
	data[5] = 'O'
	binary.LittleEndian.PutUint16(data[6:8], 20)
	data = append(data, []byte("short")...)

	_, err := ParseDataset(data)
	if !errors.Is(err, srerrors.ErrMalformedDataset) {
		t.Errorf("ParseDataset() error = %v, want ErrMalformedDataset", err)
	}
}

func buildContentDataset() *Dataset {
	ds := NewDataset()
	ds.PutString(ValueType, "CONTAINER")
	ds.PutString(ContinuityOfContent, "SEPARATE")
	concept := ds.AppendSequenceItem(ConceptNameCodeSequence)
	concept.PutString(CodeValue, "121070")
	concept.PutString(CodingSchemeDesignator, "DCM")
	concept.PutString(CodeMeaning, "Findings")

	item := ds.AppendSequenceItem(ContentSequence)
	item.PutString(RelationshipType, "CONTAINS")
	item.PutString(ValueType, "SCOORD")
	item.PutString(GraphicType, "POINT")
	item.AddElement(GraphicData, VR_FL, []float32{1.5, 2.5})
	item.AddElement(ReferencedWaveformChannels, VR_US, []uint16{1, 2})

	ref := ds.AppendSequenceItem(ContentSequence)
	ref.PutString(RelationshipType, "INFERRED FROM")
	ref.AddElement(ReferencedContentItemIdentifier, VR_UL, []uint32{1, 2})
	return ds
}

func TestEncodeParseRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		ts   string
	}{
		{"Explicit VR Little Endian", TransferSyntaxExplicitVRLittleEndian},
		{"Implicit VR Little Endian", TransferSyntaxImplicitVRLittleEndian},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := EncodeDatasetWithTransferSyntax(buildContentDataset(), tt.ts)
			if err != nil {
				t.Fatalf("Encode error = %v", err)
			}
			ds, err := ParseDatasetWithTransferSyntax(data, tt.ts)
			if err != nil {
				t.Fatalf("Parse error = %v", err)
			}

			if got := ds.GetString(ValueType); got != "CONTAINER" {
				t.Errorf("ValueType = %q, want CONTAINER", got)
			}
			concept := ds.GetSequenceItem(ConceptNameCodeSequence, 0)
			if concept == nil || concept.GetString(CodeMeaning) != "Findings" {
				t.Fatalf("concept name not preserved: %+v", concept)
			}
			items := ds.GetSequence(ContentSequence)
			if len(items) != 2 {
				t.Fatalf("len(ContentSequence) = %d, want 2", len(items))
			}
			if got := items[0].GetFloat32s(GraphicData); len(got) != 2 || got[1] != 2.5 {
				t.Errorf("GraphicData = %v", got)
			}
			if got := items[0].GetUint16s(ReferencedWaveformChannels); len(got) != 2 || got[1] != 2 {
				t.Errorf("ReferencedWaveformChannels = %v", got)
			}
			if got := items[1].GetUint32s(ReferencedContentItemIdentifier); len(got) != 2 || got[0] != 1 {
				t.Errorf("ReferencedContentItemIdentifier = %v", got)
			}
		})
	}
}

func TestEncodeDatasetWithTransferSyntax_Unsupported(t *testing.T) {
	_, err := EncodeDatasetWithTransferSyntax(NewDataset(), "1.2.840.10008.1.2.2")
	if !errors.Is(err, srerrors.ErrUnsupportedTransferSyntax) {
		t.Errorf("error = %v, want ErrUnsupportedTransferSyntax", err)
	}
	if _, err := ParseDatasetWithTransferSyntax(nil, "1.2.840.10008.1.2.4.50"); !errors.Is(err, srerrors.ErrUnsupportedTransferSyntax) {
		t.Errorf("parse error = %v, want ErrUnsupportedTransferSyntax", err)
	}
	if _, err := EncodeDatasetWithTransferSyntax(NewDataset(), "1.2.840.10008.1.2.2"); err == nil || !strings.Contains(err.Error(), "Explicit VR Big Endian") {
		t.Errorf("error = %v, want it to name the transfer syntax", err)
	}
}

func TestParseDatasetWithTransferSyntax_Default(t *testing.T) {
	ds := NewDataset()
	ds.PutString(ValueType, "TEXT")
	data, err := EncodeDatasetWithTransferSyntax(ds, "")
	if err != nil {
		t.Fatal(err)
	}
	got, err := ParseDatasetWithTransferSyntax(data, "")
	if err != nil {
		t.Fatalf("ParseDatasetWithTransferSyntax() error = %v", err)
	}
	if got.GetString(ValueType) != "TEXT" {
		t.Errorf("ValueType = %q, want TEXT", got.GetString(ValueType))
	}
}

func TestDataset_EncodeDataset(t *testing.T) {
	tests := []struct {
		name   string
		setup  func() *Dataset
		verify func(t *testing.T, data []byte)
	}{
		{
			name:  "Empty dataset",
			setup: NewDataset,
			verify: func(t *testing.T, data []byte) {
				if len(data) != 0 {
					t.Errorf("Expected empty data, got %d bytes", len(data))
				}
			},
		},
		{
			name: "Odd length UID padded with NUL",
			setup: func() *Dataset {
				ds := NewDataset()
				ds.AddElement(ObservationUID, VR_UI, "1.2.3")
				return ds
			},
			verify: func(t *testing.T, data []byte) {
				length := binary.LittleEndian.Uint16(data[6:8])
				if length != 6 {
					t.Errorf("Expected padded length 6, got %d", length)
				}
				if data[8+5] != 0x00 {
					t.Errorf("Expected NUL padding, got 0x%02x", data[8+5])
				}
			},
		},
		{
			name: "Multiple elements in tag order",
			setup: func() *Dataset {
				ds := NewDataset()
				ds.PutString(ObservationUID, "1.2.3")
				ds.PutString(MappingResource, "DCMR")
				return ds
			},
			verify: func(t *testing.T, data []byte) {
				group := binary.LittleEndian.Uint16(data[0:2])
				element := binary.LittleEndian.Uint16(data[2:4])
				if group != 0x0008 || element != 0x0105 {
					t.Errorf("First tag should be (0008,0105), got (%04x,%04x)", group, element)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.verify(t, tt.setup().EncodeDataset())
		})
	}
}

func TestCheckVM(t *testing.T) {
	tests := []struct {
		count int
		vm    string
		want  bool
	}{
		{1, "1", true},
		{2, "1", false},
		{0, "1-n", false},
		{5, "1-n", true},
		{3, "1-3", true},
		{4, "1-3", false},
		{4, "2-2n", true},
		{3, "2-2n", false},
		{7, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.vm, func(t *testing.T) {
			if got := CheckVM(tt.count, tt.vm); got != tt.want {
				t.Errorf("CheckVM(%d, %q) = %v, want %v", tt.count, tt.vm, got, tt.want)
			}
		})
	}
}

func TestValueRepresentationCheckers(t *testing.T) {
	tests := []struct {
		name  string
		check func(string) bool
		value string
		want  bool
	}{
		{"UID", IsValidUID, "1.2.840.10008.5.1.4.1.1.88.33", true},
		{"UID leading zero", IsValidUID, "1.02.3", false},
		{"UID letters", IsValidUID, "1.2.abc", false},
		{"CS", IsValidCodeString, "DCMR", true},
		{"CS lower case", IsValidCodeString, "dcmr", false},
		{"CS too long", IsValidCodeString, "ABCDEFGHIJKLMNOPQ", false},
		{"DA", IsValidDate, "20200615", true},
		{"DA month", IsValidDate, "20201315", false},
		{"TM", IsValidTime, "120000.123", true},
		{"TM hour", IsValidTime, "250000", false},
		{"DT full", IsValidDateTime, "20200615120000.000000+0100", true},
		{"DT year", IsValidDateTime, "2020", true},
		{"DT garbage", IsValidDateTime, "2020-06-15", false},
		{"DS", IsValidDecimalString, "-1.5e3", true},
		{"DS text", IsValidDecimalString, "abc", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.check(tt.value); got != tt.want {
				t.Errorf("check(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestGetAndCheckString(t *testing.T) {
	ds := NewDataset()
	ds.PutString(ObservationUID, "1.2.3")
	ds.PutString(ObservationDateTime, "not-a-date")
	ds.PutString(TemplateIdentifier, "")
	ds.PutString(MappingResource, "DCMR\\SRT")

	tests := []struct {
		name     string
		tag      Tag
		vm       string
		attrType string
		wantErr  error
	}{
		{"Valid UID", ObservationUID, "1", Type3, nil},
		{"Bad DT", ObservationDateTime, "1", Type1C, srerrors.ErrVRViolation},
		{"Empty type 1", TemplateIdentifier, "1", Type1, srerrors.ErrMandatoryAttributeEmpty},
		{"Missing type 1", TextValue, "1", Type1, srerrors.ErrMandatoryAttributeMissing},
		{"Missing type 3", TextValue, "1", Type3, nil},
		{"VM violation", MappingResource, "1", Type1, srerrors.ErrVMViolation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ds.GetAndCheckString(tt.tag, tt.vm, tt.attrType)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("GetAndCheckString() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("GetAndCheckString() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLookupVR(t *testing.T) {
	if got := LookupVR(GraphicData); got != VR_FL {
		t.Errorf("LookupVR(GraphicData) = %s, want FL", got)
	}
	if got := LookupVR(Tag{0x0009, 0x0010}); got != VR_UN && got != VR_LO {
		t.Errorf("LookupVR(private creator) = %s", got)
	}
	if got := TagName(ContentSequence); got != "ContentSequence" {
		t.Errorf("TagName(ContentSequence) = %s", got)
	}
}

func TestNewUID(t *testing.T) {
	a, b := NewUID(), NewUID()
	if a == b {
		t.Error("NewUID returned duplicates")
	}
	if !strings.HasPrefix(a, UUIDRoot) {
		t.Errorf("NewUID() = %s, want prefix %s", a, UUIDRoot)
	}
	if !IsValidUID(a) {
		t.Errorf("NewUID() = %s is not a valid UID", a)
	}
}
