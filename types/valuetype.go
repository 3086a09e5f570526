package types

// ValueType is the kind of payload carried by a content item
// (DICOM PS3.3 C.17.3.2.1) plus two internal markers.
type ValueType int

const (
	ValueTypeInvalid ValueType = iota
	ValueTypeText
	ValueTypeCode
	ValueTypeNum
	ValueTypeDateTime
	ValueTypeDate
	ValueTypeTime
	ValueTypeUIDRef
	ValueTypePName
	ValueTypeSCoord
	ValueTypeSCoord3D
	ValueTypeTCoord
	ValueTypeComposite
	ValueTypeImage
	ValueTypeWaveform
	ValueTypeContainer
	// ValueTypeByReference marks a placeholder for a by-reference relationship.
	ValueTypeByReference
	// ValueTypeIncludedTemplate marks a node that splices in a separately owned template.
	ValueTypeIncludedTemplate
)

type valueTypeInfo struct {
	term     string
	xmlTag   string
	readable string
}

var valueTypeRegistry = map[ValueType]valueTypeInfo{
	ValueTypeInvalid:          {"", "", "invalid/unknown value type"},
	ValueTypeText:             {"TEXT", "text", "Text"},
	ValueTypeCode:             {"CODE", "code", "Code"},
	ValueTypeNum:              {"NUM", "num", "Number"},
	ValueTypeDateTime:         {"DATETIME", "datetime", "Date/Time"},
	ValueTypeDate:             {"DATE", "date", "Date"},
	ValueTypeTime:             {"TIME", "time", "Time"},
	ValueTypeUIDRef:           {"UIDREF", "uidref", "UID Reference"},
	ValueTypePName:            {"PNAME", "pname", "Person Name"},
	ValueTypeSCoord:           {"SCOORD", "scoord", "Spatial Coordinates"},
	ValueTypeSCoord3D:         {"SCOORD3D", "scoord3d", "Spatial Coordinates 3D"},
	ValueTypeTCoord:           {"TCOORD", "tcoord", "Temporal Coordinates"},
	ValueTypeComposite:        {"COMPOSITE", "composite", "Composite Object"},
	ValueTypeImage:            {"IMAGE", "image", "Image"},
	ValueTypeWaveform:         {"WAVEFORM", "waveform", "Waveform"},
	ValueTypeContainer:        {"CONTAINER", "container", "Container"},
	ValueTypeByReference:      {"", "reference", "by-reference"},
	ValueTypeIncludedTemplate: {"", "include", "included template"},
}

// DefinedTerm returns the DICOM defined term, empty for internal markers.
func (v ValueType) DefinedTerm() string {
	return valueTypeRegistry[v].term
}

// XMLTagName returns the element name used in the XML representation.
func (v ValueType) XMLTagName() string {
	return valueTypeRegistry[v].xmlTag
}

// ReadableName returns the human readable name of the value type.
func (v ValueType) ReadableName() string {
	if info, ok := valueTypeRegistry[v]; ok {
		return info.readable
	}
	return valueTypeRegistry[ValueTypeInvalid].readable
}

func (v ValueType) String() string {
	if term := v.DefinedTerm(); term != "" {
		return term
	}
	return v.ReadableName()
}

// IsConcrete reports whether v is one of the DICOM defined value types.
func (v ValueType) IsConcrete() bool {
	return v >= ValueTypeText && v <= ValueTypeContainer
}

// ValueTypeFromDefinedTerm maps a defined term to a value type.
// Unmapped terms yield ValueTypeInvalid.
func ValueTypeFromDefinedTerm(term string) ValueType {
	if term == "" {
		return ValueTypeInvalid
	}
	for vt, info := range valueTypeRegistry {
		if info.term == term {
			return vt
		}
	}
	return ValueTypeInvalid
}

// ValueTypeFromXMLTagName maps an XML element name to a value type.
func ValueTypeFromXMLTagName(name string) ValueType {
	if name == "" {
		return ValueTypeInvalid
	}
	for vt, info := range valueTypeRegistry {
		if info.xmlTag == name {
			return vt
		}
	}
	return ValueTypeInvalid
}

// ConcreteValueTypes returns the DICOM defined value types in enumeration order.
func ConcreteValueTypes() []ValueType {
	out := make([]ValueType, 0, int(ValueTypeContainer))
	for vt := ValueTypeText; vt <= ValueTypeContainer; vt++ {
		out = append(out, vt)
	}
	return out
}
