package types

// RelationshipType is the relationship between a content item and its parent
// as defined in DICOM PS3.3 C.17.3.2.4.
type RelationshipType int

const (
	// RelationshipInvalid marks an unset or rejected relationship.
	RelationshipInvalid RelationshipType = iota
	// RelationshipUnknown is used when a read accepted an unrecognized defined term.
	RelationshipUnknown
	// RelationshipIsRoot is the internal relationship of the document root.
	RelationshipIsRoot
	RelationshipContains
	RelationshipHasObsContext
	RelationshipHasAcqContext
	RelationshipHasConceptMod
	RelationshipHasProperties
	RelationshipInferredFrom
	RelationshipSelectedFrom
)

type relationshipInfo struct {
	term     string
	readable string
}

var relationshipRegistry = map[RelationshipType]relationshipInfo{
	RelationshipInvalid:       {"", "invalid relationship type"},
	RelationshipUnknown:       {"", "unknown relationship type"},
	RelationshipIsRoot:        {"", "is root"},
	RelationshipContains:      {"CONTAINS", "contains"},
	RelationshipHasObsContext: {"HAS OBS CONTEXT", "has obs context"},
	RelationshipHasAcqContext: {"HAS ACQ CONTEXT", "has acq context"},
	RelationshipHasConceptMod: {"HAS CONCEPT MOD", "has concept mod"},
	RelationshipHasProperties: {"HAS PROPERTIES", "has properties"},
	RelationshipInferredFrom:  {"INFERRED FROM", "inferred from"},
	RelationshipSelectedFrom:  {"SELECTED FROM", "selected from"},
}

// DefinedTerm returns the DICOM defined term, empty for internal markers.
func (r RelationshipType) DefinedTerm() string {
	return relationshipRegistry[r].term
}

// ReadableName returns a lower case label used when printing.
func (r RelationshipType) ReadableName() string {
	if info, ok := relationshipRegistry[r]; ok {
		return info.readable
	}
	return relationshipRegistry[RelationshipInvalid].readable
}

func (r RelationshipType) String() string {
	if term := r.DefinedTerm(); term != "" {
		return term
	}
	return r.ReadableName()
}

// IsConcrete reports whether r is one of the DICOM defined relationships.
func (r RelationshipType) IsConcrete() bool {
	return r >= RelationshipContains && r <= RelationshipSelectedFrom
}

// RelationshipTypeFromDefinedTerm maps a defined term to a relationship type.
// An empty term maps to RelationshipInvalid, any other unmapped term to
// RelationshipUnknown.
func RelationshipTypeFromDefinedTerm(term string) RelationshipType {
	if term == "" {
		return RelationshipInvalid
	}
	for rel, info := range relationshipRegistry {
		if info.term != "" && info.term == term {
			return rel
		}
	}
	return RelationshipUnknown
}

// ConcreteRelationshipTypes returns the DICOM defined relationships in
// enumeration order.
func ConcreteRelationshipTypes() []RelationshipType {
	return []RelationshipType{
		RelationshipContains,
		RelationshipHasObsContext,
		RelationshipHasAcqContext,
		RelationshipHasConceptMod,
		RelationshipHasProperties,
		RelationshipInferredFrom,
		RelationshipSelectedFrom,
	}
}
