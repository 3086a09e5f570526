package dicom

import (
	dcmtag "github.com/suyashkumar/dicom/pkg/tag"
)

// File Meta Information
var (
	FileMetaInformationGroupLength = Tag{0x0002, 0x0000}
	FileMetaInformationVersion     = Tag{0x0002, 0x0001}
	MediaStorageSOPClassUID        = Tag{0x0002, 0x0002}
	MediaStorageSOPInstanceUID     = Tag{0x0002, 0x0003}
	TransferSyntaxUID              = Tag{0x0002, 0x0010}
	ImplementationClassUID         = Tag{0x0002, 0x0012}
	ImplementationVersionName      = Tag{0x0002, 0x0013}
)

// General and SR document module attributes
var (
	SpecificCharacterSet = Tag{0x0008, 0x0005}
	SOPClassUID          = Tag{0x0008, 0x0016}
	SOPInstanceUID       = Tag{0x0008, 0x0018}
	ContentDate          = Tag{0x0008, 0x0023}
	ContentTime          = Tag{0x0008, 0x0033}
	Modality             = Tag{0x0008, 0x0060}
	PatientName          = Tag{0x0010, 0x0010}
	PatientID            = Tag{0x0010, 0x0020}
	StudyInstanceUID     = Tag{0x0020, 0x000D}
	SeriesInstanceUID    = Tag{0x0020, 0x000E}
	SeriesNumber         = Tag{0x0020, 0x0011}
	InstanceNumber       = Tag{0x0020, 0x0013}
	CompletionFlag       = Tag{0x0040, 0xA491}
	VerificationFlag     = Tag{0x0040, 0xA493}
)

// Code sequence macro
var (
	CodeValue              = Tag{0x0008, 0x0100}
	CodingSchemeDesignator = Tag{0x0008, 0x0102}
	CodingSchemeVersion    = Tag{0x0008, 0x0103}
	CodeMeaning            = Tag{0x0008, 0x0104}
	LongCodeValue          = Tag{0x0008, 0x0119}
	URNCodeValue           = Tag{0x0008, 0x0120}
)

// Document relationship and content macros
var (
	RelationshipType                = Tag{0x0040, 0xA010}
	ValueType                       = Tag{0x0040, 0xA040}
	ObservationDateTime             = Tag{0x0040, 0xA032}
	ObservationUID                  = Tag{0x0040, 0xA171}
	ConceptNameCodeSequence         = Tag{0x0040, 0xA043}
	ContentSequence                 = Tag{0x0040, 0xA730}
	ContentTemplateSequence         = Tag{0x0040, 0xA504}
	MappingResource                 = Tag{0x0008, 0x0105}
	MappingResourceUID              = Tag{0x0008, 0x0118}
	TemplateIdentifier              = Tag{0x0040, 0xDB00}
	ReferencedContentItemIdentifier = Tag{0x0040, 0xDB73}
	ContinuityOfContent             = Tag{0x0040, 0xA050}
)

// Content item payloads
var (
	TextValue                         = Tag{0x0040, 0xA160}
	FloatingPointValue                = Tag{0x0040, 0xA161}
	ConceptCodeSequence               = Tag{0x0040, 0xA168}
	MeasuredValueSequence             = Tag{0x0040, 0xA300}
	NumericValueQualifierCodeSequence = Tag{0x0040, 0xA301}
	NumericValue                      = Tag{0x0040, 0xA30A}
	MeasurementUnitsCodeSequence      = Tag{0x0040, 0x08EA}
	DateTime                          = Tag{0x0040, 0xA120}
	Date                              = Tag{0x0040, 0xA121}
	Time                              = Tag{0x0040, 0xA122}
	PersonName                        = Tag{0x0040, 0xA123}
	UID                               = Tag{0x0040, 0xA124}
	GraphicData                       = Tag{0x0070, 0x0022}
	GraphicType                       = Tag{0x0070, 0x0023}
	ReferencedFrameOfReferenceUID     = Tag{0x3006, 0x0024}
	TemporalRangeType                 = Tag{0x0040, 0xA130}
	ReferencedSamplePositions         = Tag{0x0040, 0xA132}
	ReferencedTimeOffsets             = Tag{0x0040, 0xA138}
	ReferencedDateTime                = Tag{0x0040, 0xA13A}
	ReferencedSOPSequence             = Tag{0x0008, 0x1199}
	ReferencedSOPClassUID             = Tag{0x0008, 0x1150}
	ReferencedSOPInstanceUID          = Tag{0x0008, 0x1155}
	ReferencedFrameNumber             = Tag{0x0008, 0x1160}
	ReferencedWaveformChannels        = Tag{0x0040, 0xA0B0}
	ReferencedSegmentNumber           = Tag{0x0062, 0x000B}
)

// MAC and digital signature attributes
var (
	MACIDNumber                     = Tag{0x0400, 0x0005}
	MACCalculationTransferSyntaxUID = Tag{0x0400, 0x0010}
	MACAlgorithm                    = Tag{0x0400, 0x0015}
	DataElementsSigned              = Tag{0x0400, 0x0020}
	DigitalSignatureUID             = Tag{0x0400, 0x0100}
	DigitalSignatureDateTime        = Tag{0x0400, 0x0105}
	CertificateType                 = Tag{0x0400, 0x0110}
	Signature                       = Tag{0x0400, 0x0120}
	MACParametersSequence           = Tag{0x4FFE, 0x0001}
	DigitalSignaturesSequence       = Tag{0xFFFA, 0xFFFA}
)

// TagInfo describes a dictionary entry.
type TagInfo struct {
	Keyword string
	VR      string
	VM      string
}

var dictionary = map[Tag]TagInfo{
	FileMetaInformationGroupLength: {"FileMetaInformationGroupLength", VR_UL, "1"},
	FileMetaInformationVersion:     {"FileMetaInformationVersion", VR_OB, "1"},
	MediaStorageSOPClassUID:        {"MediaStorageSOPClassUID", VR_UI, "1"},
	MediaStorageSOPInstanceUID:     {"MediaStorageSOPInstanceUID", VR_UI, "1"},
	TransferSyntaxUID:              {"TransferSyntaxUID", VR_UI, "1"},
	ImplementationClassUID:         {"ImplementationClassUID", VR_UI, "1"},
	ImplementationVersionName:      {"ImplementationVersionName", VR_SH, "1"},

	SpecificCharacterSet: {"SpecificCharacterSet", VR_CS, "1-n"},
	SOPClassUID:          {"SOPClassUID", VR_UI, "1"},
	SOPInstanceUID:       {"SOPInstanceUID", VR_UI, "1"},
	ContentDate:          {"ContentDate", VR_DA, "1"},
	ContentTime:          {"ContentTime", VR_TM, "1"},
	Modality:             {"Modality", VR_CS, "1"},
	PatientName:          {"PatientName", VR_PN, "1"},
	PatientID:            {"PatientID", VR_LO, "1"},
	StudyInstanceUID:     {"StudyInstanceUID", VR_UI, "1"},
	SeriesInstanceUID:    {"SeriesInstanceUID", VR_UI, "1"},
	SeriesNumber:         {"SeriesNumber", VR_IS, "1"},
	InstanceNumber:       {"InstanceNumber", VR_IS, "1"},
	CompletionFlag:       {"CompletionFlag", VR_CS, "1"},
	VerificationFlag:     {"VerificationFlag", VR_CS, "1"},

	CodeValue:              {"CodeValue", VR_SH, "1"},
	CodingSchemeDesignator: {"CodingSchemeDesignator", VR_SH, "1"},
	CodingSchemeVersion:    {"CodingSchemeVersion", VR_SH, "1"},
	CodeMeaning:            {"CodeMeaning", VR_LO, "1"},
	LongCodeValue:          {"LongCodeValue", VR_UC, "1"},
	URNCodeValue:           {"URNCodeValue", VR_UR, "1"},

	RelationshipType:                {"RelationshipType", VR_CS, "1"},
	ValueType:                       {"ValueType", VR_CS, "1"},
	ObservationDateTime:             {"ObservationDateTime", VR_DT, "1"},
	ObservationUID:                  {"ObservationUID", VR_UI, "1"},
	ConceptNameCodeSequence:         {"ConceptNameCodeSequence", VR_SQ, "1"},
	ContentSequence:                 {"ContentSequence", VR_SQ, "1"},
	ContentTemplateSequence:         {"ContentTemplateSequence", VR_SQ, "1"},
	MappingResource:                 {"MappingResource", VR_CS, "1"},
	MappingResourceUID:              {"MappingResourceUID", VR_UI, "1"},
	TemplateIdentifier:              {"TemplateIdentifier", VR_CS, "1"},
	ReferencedContentItemIdentifier: {"ReferencedContentItemIdentifier", VR_UL, "1-n"},
	ContinuityOfContent:             {"ContinuityOfContent", VR_CS, "1"},

	TextValue:                         {"TextValue", VR_UT, "1"},
	FloatingPointValue:                {"FloatingPointValue", VR_FD, "1"},
	ConceptCodeSequence:               {"ConceptCodeSequence", VR_SQ, "1"},
	MeasuredValueSequence:             {"MeasuredValueSequence", VR_SQ, "1"},
	NumericValueQualifierCodeSequence: {"NumericValueQualifierCodeSequence", VR_SQ, "1"},
	NumericValue:                      {"NumericValue", VR_DS, "1-n"},
	MeasurementUnitsCodeSequence:      {"MeasurementUnitsCodeSequence", VR_SQ, "1"},
	DateTime:                          {"DateTime", VR_DT, "1"},
	Date:                              {"Date", VR_DA, "1"},
	Time:                              {"Time", VR_TM, "1"},
	PersonName:                        {"PersonName", VR_PN, "1"},
	UID:                               {"UID", VR_UI, "1"},
	GraphicData:                       {"GraphicData", VR_FL, "2-n"},
	GraphicType:                       {"GraphicType", VR_CS, "1"},
	ReferencedFrameOfReferenceUID:     {"ReferencedFrameOfReferenceUID", VR_UI, "1"},
	TemporalRangeType:                 {"TemporalRangeType", VR_CS, "1"},
	ReferencedSamplePositions:         {"ReferencedSamplePositions", VR_UL, "1-n"},
	ReferencedTimeOffsets:             {"ReferencedTimeOffsets", VR_DS, "1-n"},
	ReferencedDateTime:                {"ReferencedDateTime", VR_DT, "1-n"},
	ReferencedSOPSequence:             {"ReferencedSOPSequence", VR_SQ, "1"},
	ReferencedSOPClassUID:             {"ReferencedSOPClassUID", VR_UI, "1"},
	ReferencedSOPInstanceUID:          {"ReferencedSOPInstanceUID", VR_UI, "1"},
	ReferencedFrameNumber:             {"ReferencedFrameNumber", VR_IS, "1-n"},
	ReferencedWaveformChannels:        {"ReferencedWaveformChannels", VR_US, "2-2n"},
	ReferencedSegmentNumber:           {"ReferencedSegmentNumber", VR_US, "1-n"},

	MACIDNumber:                     {"MACIDNumber", VR_US, "1"},
	MACCalculationTransferSyntaxUID: {"MACCalculationTransferSyntaxUID", VR_UI, "1"},
	MACAlgorithm:                    {"MACAlgorithm", VR_CS, "1"},
	DataElementsSigned:              {"DataElementsSigned", VR_AT, "1-n"},
	DigitalSignatureUID:             {"DigitalSignatureUID", VR_UI, "1"},
	DigitalSignatureDateTime:        {"DigitalSignatureDateTime", VR_DT, "1"},
	CertificateType:                 {"CertificateType", VR_CS, "1"},
	Signature:                       {"Signature", VR_OB, "1"},
	MACParametersSequence:           {"MACParametersSequence", VR_SQ, "1"},
	DigitalSignaturesSequence:       {"DigitalSignaturesSequence", VR_SQ, "1"},
}

// LookupTag returns the dictionary entry of a tag. Tags outside the SR
// dictionary are resolved through the standard data dictionary.
func LookupTag(tag Tag) (TagInfo, bool) {
	if info, ok := dictionary[tag]; ok {
		return info, true
	}
	info, err := dcmtag.Find(dcmtag.Tag{Group: tag.Group, Element: tag.Element})
	if err != nil {
		return TagInfo{}, false
	}
	return TagInfo{Keyword: info.Name, VR: info.VR, VM: info.VM}, true
}

// LookupVR returns the VR of a tag, VR_UN when it is not known.
func LookupVR(tag Tag) string {
	info, ok := LookupTag(tag)
	if !ok || info.VR == "" {
		return VR_UN
	}
	// Dictionary entries like "US or SS" resolve to the first choice.
	if len(info.VR) > 2 {
		return info.VR[:2]
	}
	return info.VR
}

// TagName returns the keyword of a tag, or its (gggg,eeee) form.
func TagName(tag Tag) string {
	if info, ok := LookupTag(tag); ok && info.Keyword != "" {
		return info.Keyword
	}
	return tag.String()
}
