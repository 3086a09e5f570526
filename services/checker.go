// Package services provides the content constraint checkers of the SR IODs.
//
// Each checker encodes the "Relationship Content Constraints" table of its
// IOD (PS3.3 Annex A.35) as a list of rows. A row allows a relationship
// type from a set of source value types to a set of target value types,
// optionally restricted to by-value relationships.
package services

import (
	"github.com/caio-sobreiro/dicomsr/types"
)

type valueTypeSet map[types.ValueType]bool

func setOf(vts ...types.ValueType) valueTypeSet {
	set := make(valueTypeSet, len(vts))
	for _, vt := range vts {
		set[vt] = true
	}
	return set
}

// row is one line of a relationship content constraints table
type row struct {
	rel         types.RelationshipType
	sources     valueTypeSet
	targets     valueTypeSet
	byValueOnly valueTypeSet
}

// TableChecker is a ConstraintChecker backed by a constraints table.
type TableChecker struct {
	documentType     types.DocumentType
	byReference      bool
	templateRequired bool
	rootTemplateID   string
	rootResource     string
	rows             []row
}

// DocumentType implements interfaces.ConstraintChecker.
func (c *TableChecker) DocumentType() types.DocumentType {
	return c.documentType
}

// IsByReferenceAllowed implements interfaces.ConstraintChecker.
func (c *TableChecker) IsByReferenceAllowed() bool {
	return c.byReference
}

// IsTemplateSupportRequired implements interfaces.ConstraintChecker.
func (c *TableChecker) IsTemplateSupportRequired() bool {
	return c.templateRequired
}

// RootTemplateIdentification implements interfaces.ConstraintChecker.
func (c *TableChecker) RootTemplateIdentification() (string, string) {
	return c.rootTemplateID, c.rootResource
}

// CheckContentRelationship implements interfaces.ConstraintChecker.
func (c *TableChecker) CheckContentRelationship(source types.ValueType, rel types.RelationshipType, target types.ValueType, byReference bool) bool {
	if byReference && !c.byReference {
		return false
	}
	for _, r := range c.rows {
		if r.rel != rel || !r.sources[source] || !r.targets[target] {
			continue
		}
		if byReference && r.byValueOnly[target] {
			continue
		}
		return true
	}
	return false
}

var (
	basicContent = []types.ValueType{
		types.ValueTypeText, types.ValueTypeCode, types.ValueTypeDateTime, types.ValueTypeDate,
		types.ValueTypeTime, types.ValueTypeUIDRef, types.ValueTypePName,
	}
	references = []types.ValueType{
		types.ValueTypeComposite, types.ValueTypeImage, types.ValueTypeWaveform,
	}
)

func concat(lists ...[]types.ValueType) []types.ValueType {
	var out []types.ValueType
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}

// NewBasicTextChecker returns the checker of the Basic Text SR IOD
// (A.35.1).
func NewBasicTextChecker() *TableChecker {
	container := []types.ValueType{types.ValueTypeContainer}
	return &TableChecker{
		documentType: types.DocumentTypeBasicText,
		rows: []row{
			{
				rel:     types.RelationshipContains,
				sources: setOf(container...),
				targets: setOf(concat(basicContent, references, container)...),
			},
			{
				rel:     types.RelationshipHasObsContext,
				sources: setOf(concat(container, basicContent)...),
				targets: setOf(concat(basicContent, []types.ValueType{types.ValueTypeComposite})...),
			},
			{
				rel:     types.RelationshipHasAcqContext,
				sources: setOf(concat(container, basicContent)...),
				targets: setOf(concat(basicContent, []types.ValueType{types.ValueTypeComposite})...),
			},
			{
				rel:     types.RelationshipHasConceptMod,
				sources: setOf(concat(container, basicContent, references)...),
				targets: setOf(types.ValueTypeText, types.ValueTypeCode),
			},
			{
				rel:     types.RelationshipHasProperties,
				sources: setOf(basicContent...),
				targets: setOf(concat(basicContent, references)...),
			},
			{
				rel:     types.RelationshipInferredFrom,
				sources: setOf(basicContent...),
				targets: setOf(concat(basicContent, references)...),
			},
		},
	}
}

// enhancedRows are shared by the Enhanced, Comprehensive and Comprehensive
// 3D SR IODs. spatial lists the coordinate value types of the IOD.
func enhancedRows(spatial []types.ValueType) []row {
	container := []types.ValueType{types.ValueTypeContainer}
	content := concat(basicContent, []types.ValueType{types.ValueTypeNum})
	coords := concat(spatial, []types.ValueType{types.ValueTypeTCoord})
	return []row{
		{
			rel:         types.RelationshipContains,
			sources:     setOf(container...),
			targets:     setOf(concat(content, references, coords, container)...),
			byValueOnly: setOf(container...),
		},
		{
			rel:     types.RelationshipHasObsContext,
			sources: setOf(concat(container, content, references, coords)...),
			targets: setOf(concat(content, []types.ValueType{types.ValueTypeComposite})...),
		},
		{
			rel:     types.RelationshipHasAcqContext,
			sources: setOf(concat(container, references)...),
			targets: setOf(concat(content, references, coords, container)...),
		},
		{
			rel:     types.RelationshipHasConceptMod,
			sources: setOf(concat(container, content, references, coords)...),
			targets: setOf(types.ValueTypeText, types.ValueTypeCode),
		},
		{
			rel:         types.RelationshipHasProperties,
			sources:     setOf(content...),
			targets:     setOf(concat(content, references, coords, container)...),
			byValueOnly: setOf(container...),
		},
		{
			rel:         types.RelationshipInferredFrom,
			sources:     setOf(content...),
			targets:     setOf(concat(content, references, coords, container)...),
			byValueOnly: setOf(container...),
		},
		{
			rel:     types.RelationshipSelectedFrom,
			sources: setOf(spatial...),
			targets: setOf(types.ValueTypeImage),
		},
		{
			rel:     types.RelationshipSelectedFrom,
			sources: setOf(types.ValueTypeTCoord),
			targets: setOf(concat(spatial, []types.ValueType{types.ValueTypeImage, types.ValueTypeWaveform})...),
		},
	}
}

// NewEnhancedChecker returns the checker of the Enhanced SR IOD (A.35.2).
func NewEnhancedChecker() *TableChecker {
	return &TableChecker{
		documentType: types.DocumentTypeEnhanced,
		rows:         enhancedRows([]types.ValueType{types.ValueTypeSCoord}),
	}
}

// NewComprehensiveChecker returns the checker of the Comprehensive SR IOD
// (A.35.3). It is the only classic SR IOD permitting by-reference
// relationships.
func NewComprehensiveChecker() *TableChecker {
	return &TableChecker{
		documentType: types.DocumentTypeComprehensive,
		byReference:  true,
		rows:         enhancedRows([]types.ValueType{types.ValueTypeSCoord}),
	}
}

// NewComprehensive3DChecker returns the checker of the Comprehensive 3D SR
// IOD (A.35.13).
func NewComprehensive3DChecker() *TableChecker {
	return &TableChecker{
		documentType: types.DocumentTypeComprehensive3D,
		byReference:  true,
		rows:         enhancedRows([]types.ValueType{types.ValueTypeSCoord, types.ValueTypeSCoord3D}),
	}
}

// NewKeyObjectSelectionChecker returns the checker of the Key Object
// Selection Document IOD (A.35.4). Its root follows TID 2010.
func NewKeyObjectSelectionChecker() *TableChecker {
	return &TableChecker{
		documentType:     types.DocumentTypeKeyObjectSelection,
		templateRequired: true,
		rootTemplateID:   "2010",
		rootResource:     "DCMR",
		rows: []row{
			{
				rel:     types.RelationshipContains,
				sources: setOf(types.ValueTypeContainer),
				targets: setOf(types.ValueTypeText, types.ValueTypeImage, types.ValueTypeWaveform, types.ValueTypeComposite),
			},
			{
				rel:     types.RelationshipHasObsContext,
				sources: setOf(types.ValueTypeContainer),
				targets: setOf(types.ValueTypeText, types.ValueTypeCode, types.ValueTypeUIDRef, types.ValueTypePName),
			},
			{
				rel:     types.RelationshipHasConceptMod,
				sources: setOf(types.ValueTypeContainer),
				targets: setOf(types.ValueTypeCode),
			},
		},
	}
}

// NewXRayRadiationDoseChecker returns the checker of the X-Ray Radiation
// Dose SR IOD (A.35.8). Its root follows TID 10001.
func NewXRayRadiationDoseChecker() *TableChecker {
	container := []types.ValueType{types.ValueTypeContainer}
	content := []types.ValueType{
		types.ValueTypeText, types.ValueTypeCode, types.ValueTypeNum,
		types.ValueTypeDateTime, types.ValueTypeUIDRef, types.ValueTypePName,
	}
	refs := []types.ValueType{types.ValueTypeComposite, types.ValueTypeImage}
	sources := []types.ValueType{types.ValueTypeContainer, types.ValueTypeText, types.ValueTypeCode, types.ValueTypeNum}
	return &TableChecker{
		documentType:     types.DocumentTypeXRayRadiationDose,
		byReference:      true,
		templateRequired: true,
		rootTemplateID:   "10001",
		rootResource:     "DCMR",
		rows: []row{
			{
				rel:         types.RelationshipContains,
				sources:     setOf(container...),
				targets:     setOf(concat(content, refs, container)...),
				byValueOnly: setOf(container...),
			},
			{
				rel:     types.RelationshipHasObsContext,
				sources: setOf(sources...),
				targets: setOf(concat(content, refs)...),
			},
			{
				rel:     types.RelationshipHasConceptMod,
				sources: setOf(sources...),
				targets: setOf(types.ValueTypeText, types.ValueTypeCode),
			},
			{
				rel:         types.RelationshipHasProperties,
				sources:     setOf(types.ValueTypeText, types.ValueTypeCode, types.ValueTypeNum),
				targets:     setOf(concat(content, refs, container)...),
				byValueOnly: setOf(container...),
			},
			{
				rel:     types.RelationshipInferredFrom,
				sources: setOf(types.ValueTypeText, types.ValueTypeCode, types.ValueTypeNum),
				targets: setOf(concat(content, refs)...),
			},
		},
	}
}
