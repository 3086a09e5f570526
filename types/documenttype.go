package types

// DICOM Structured Reporting storage SOP Class UIDs (PS3.4 Annex B.5).
const (
	BasicTextSRStorage                     = "1.2.840.10008.5.1.4.1.1.88.11"
	EnhancedSRStorage                      = "1.2.840.10008.5.1.4.1.1.88.22"
	ComprehensiveSRStorage                 = "1.2.840.10008.5.1.4.1.1.88.33"
	Comprehensive3DSRStorage               = "1.2.840.10008.5.1.4.1.1.88.34"
	ExtensibleSRStorage                    = "1.2.840.10008.5.1.4.1.1.88.35"
	ProcedureLogStorage                    = "1.2.840.10008.5.1.4.1.1.88.40"
	MammographyCADSRStorage                = "1.2.840.10008.5.1.4.1.1.88.50"
	KeyObjectSelectionDocumentStorage      = "1.2.840.10008.5.1.4.1.1.88.59"
	ChestCADSRStorage                      = "1.2.840.10008.5.1.4.1.1.88.65"
	XRayRadiationDoseSRStorage             = "1.2.840.10008.5.1.4.1.1.88.67"
	RadiopharmaceuticalRadiationDoseSR     = "1.2.840.10008.5.1.4.1.1.88.68"
	ColonCADSRStorage                      = "1.2.840.10008.5.1.4.1.1.88.69"
	ImplantationPlanSRStorage              = "1.2.840.10008.5.1.4.1.1.88.70"
	AcquisitionContextSRStorage            = "1.2.840.10008.5.1.4.1.1.88.71"
	SimplifiedAdultEchoSRStorage           = "1.2.840.10008.5.1.4.1.1.88.72"
	PatientRadiationDoseSRStorage          = "1.2.840.10008.5.1.4.1.1.88.73"
	EnhancedXRayRadiationDoseSRStorage     = "1.2.840.10008.5.1.4.1.1.88.76"
	SpectaclePrescriptionReportStorage     = "1.2.840.10008.5.1.4.1.1.78.6"
	MacularGridThicknessAndVolumeReportSR  = "1.2.840.10008.5.1.4.1.1.79.1"
)

// DocumentType identifies the SR IOD a document tree conforms to.
type DocumentType int

const (
	DocumentTypeInvalid DocumentType = iota
	DocumentTypeBasicText
	DocumentTypeEnhanced
	DocumentTypeComprehensive
	DocumentTypeComprehensive3D
	DocumentTypeExtensible
	DocumentTypeProcedureLog
	DocumentTypeMammographyCAD
	DocumentTypeKeyObjectSelection
	DocumentTypeChestCAD
	DocumentTypeXRayRadiationDose
	DocumentTypeRadiopharmaceuticalRadiationDose
	DocumentTypeColonCAD
	DocumentTypeImplantationPlan
	DocumentTypeAcquisitionContext
	DocumentTypeSimplifiedAdultEcho
	DocumentTypePatientRadiationDose
	DocumentTypeEnhancedXRayRadiationDose
	DocumentTypeSpectaclePrescriptionReport
	DocumentTypeMacularGridThicknessAndVolumeReport
)

// DocumentTypeInfo provides the SOP class and modality of a document type.
type DocumentTypeInfo struct {
	Type        DocumentType
	SOPClassUID string
	Name        string
	Modality    string
}

var documentTypeRegistry = map[DocumentType]DocumentTypeInfo{
	DocumentTypeBasicText:                           {DocumentTypeBasicText, BasicTextSRStorage, "Basic Text SR", "SR"},
	DocumentTypeEnhanced:                            {DocumentTypeEnhanced, EnhancedSRStorage, "Enhanced SR", "SR"},
	DocumentTypeComprehensive:                       {DocumentTypeComprehensive, ComprehensiveSRStorage, "Comprehensive SR", "SR"},
	DocumentTypeComprehensive3D:                     {DocumentTypeComprehensive3D, Comprehensive3DSRStorage, "Comprehensive 3D SR", "SR"},
	DocumentTypeExtensible:                          {DocumentTypeExtensible, ExtensibleSRStorage, "Extensible SR", "SR"},
	DocumentTypeProcedureLog:                        {DocumentTypeProcedureLog, ProcedureLogStorage, "Procedure Log", "SR"},
	DocumentTypeMammographyCAD:                      {DocumentTypeMammographyCAD, MammographyCADSRStorage, "Mammography CAD SR", "SR"},
	DocumentTypeKeyObjectSelection:                  {DocumentTypeKeyObjectSelection, KeyObjectSelectionDocumentStorage, "Key Object Selection Document", "KO"},
	DocumentTypeChestCAD:                            {DocumentTypeChestCAD, ChestCADSRStorage, "Chest CAD SR", "SR"},
	DocumentTypeXRayRadiationDose:                   {DocumentTypeXRayRadiationDose, XRayRadiationDoseSRStorage, "X-Ray Radiation Dose SR", "SR"},
	DocumentTypeRadiopharmaceuticalRadiationDose:    {DocumentTypeRadiopharmaceuticalRadiationDose, RadiopharmaceuticalRadiationDoseSR, "Radiopharmaceutical Radiation Dose SR", "SR"},
	DocumentTypeColonCAD:                            {DocumentTypeColonCAD, ColonCADSRStorage, "Colon CAD SR", "SR"},
	DocumentTypeImplantationPlan:                    {DocumentTypeImplantationPlan, ImplantationPlanSRStorage, "Implantation Plan SR Document", "PLAN"},
	DocumentTypeAcquisitionContext:                  {DocumentTypeAcquisitionContext, AcquisitionContextSRStorage, "Acquisition Context SR", "SR"},
	DocumentTypeSimplifiedAdultEcho:                 {DocumentTypeSimplifiedAdultEcho, SimplifiedAdultEchoSRStorage, "Simplified Adult Echo SR", "SR"},
	DocumentTypePatientRadiationDose:                {DocumentTypePatientRadiationDose, PatientRadiationDoseSRStorage, "Patient Radiation Dose SR", "SR"},
	DocumentTypeEnhancedXRayRadiationDose:           {DocumentTypeEnhancedXRayRadiationDose, EnhancedXRayRadiationDoseSRStorage, "Enhanced X-Ray Radiation Dose SR", "SR"},
	DocumentTypeSpectaclePrescriptionReport:         {DocumentTypeSpectaclePrescriptionReport, SpectaclePrescriptionReportStorage, "Spectacle Prescription Report", "SR"},
	DocumentTypeMacularGridThicknessAndVolumeReport: {DocumentTypeMacularGridThicknessAndVolumeReport, MacularGridThicknessAndVolumeReportSR, "Macular Grid Thickness and Volume Report", "SR"},
}

// GetDocumentTypeInfo returns information about a document type.
func GetDocumentTypeInfo(dt DocumentType) *DocumentTypeInfo {
	info, ok := documentTypeRegistry[dt]
	if !ok {
		return &DocumentTypeInfo{
			Type: DocumentTypeInvalid,
			Name: "Unknown",
		}
	}
	return &info
}

// DocumentTypeFromSOPClassUID maps a storage SOP class UID to a document type.
func DocumentTypeFromSOPClassUID(uid string) DocumentType {
	for dt, info := range documentTypeRegistry {
		if info.SOPClassUID == uid {
			return dt
		}
	}
	return DocumentTypeInvalid
}

// IsSRStorageSOPClass returns true if the UID is one of the SR storage SOP classes.
func IsSRStorageSOPClass(uid string) bool {
	return DocumentTypeFromSOPClassUID(uid) != DocumentTypeInvalid
}

func (dt DocumentType) String() string {
	return GetDocumentTypeInfo(dt).Name
}
