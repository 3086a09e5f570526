package services

import (
	"testing"

	"github.com/caio-sobreiro/dicomsr/interfaces"
	"github.com/caio-sobreiro/dicomsr/types"
)

func TestCheckContentRelationship(t *testing.T) {
	tests := []struct {
		name        string
		checker     interfaces.ConstraintChecker
		source      types.ValueType
		rel         types.RelationshipType
		target      types.ValueType
		byReference bool
		want        bool
	}{
		{"basic container contains text", NewBasicTextChecker(), types.ValueTypeContainer, types.RelationshipContains, types.ValueTypeText, false, true},
		{"basic container contains num", NewBasicTextChecker(), types.ValueTypeContainer, types.RelationshipContains, types.ValueTypeNum, false, false},
		{"basic text contains text", NewBasicTextChecker(), types.ValueTypeText, types.RelationshipContains, types.ValueTypeText, false, false},
		{"basic by-reference", NewBasicTextChecker(), types.ValueTypeText, types.RelationshipInferredFrom, types.ValueTypeText, true, false},
		{"enhanced container contains num", NewEnhancedChecker(), types.ValueTypeContainer, types.RelationshipContains, types.ValueTypeNum, false, true},
		{"enhanced scoord selected from image", NewEnhancedChecker(), types.ValueTypeSCoord, types.RelationshipSelectedFrom, types.ValueTypeImage, false, true},
		{"enhanced scoord3d", NewEnhancedChecker(), types.ValueTypeContainer, types.RelationshipContains, types.ValueTypeSCoord3D, false, false},
		{"enhanced by-reference", NewEnhancedChecker(), types.ValueTypeNum, types.RelationshipInferredFrom, types.ValueTypeImage, true, false},
		{"comprehensive by-reference", NewComprehensiveChecker(), types.ValueTypeNum, types.RelationshipInferredFrom, types.ValueTypeImage, true, true},
		{"comprehensive by-reference container", NewComprehensiveChecker(), types.ValueTypeContainer, types.RelationshipContains, types.ValueTypeContainer, true, false},
		{"comprehensive by-value container", NewComprehensiveChecker(), types.ValueTypeContainer, types.RelationshipContains, types.ValueTypeContainer, false, true},
		{"comprehensive tcoord selected from waveform", NewComprehensiveChecker(), types.ValueTypeTCoord, types.RelationshipSelectedFrom, types.ValueTypeWaveform, false, true},
		{"3d scoord3d", NewComprehensive3DChecker(), types.ValueTypeContainer, types.RelationshipContains, types.ValueTypeSCoord3D, false, true},
		{"kos contains image", NewKeyObjectSelectionChecker(), types.ValueTypeContainer, types.RelationshipContains, types.ValueTypeImage, false, true},
		{"kos contains code", NewKeyObjectSelectionChecker(), types.ValueTypeContainer, types.RelationshipContains, types.ValueTypeCode, false, false},
		{"dose container contains num", NewXRayRadiationDoseChecker(), types.ValueTypeContainer, types.RelationshipContains, types.ValueTypeNum, false, true},
		{"unknown relationship", NewComprehensiveChecker(), types.ValueTypeContainer, types.RelationshipUnknown, types.ValueTypeText, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.checker.CheckContentRelationship(tt.source, tt.rel, tt.target, tt.byReference)
			if got != tt.want {
				t.Errorf("CheckContentRelationship(%v, %v, %v, %v) = %v, want %v",
					tt.source, tt.rel, tt.target, tt.byReference, got, tt.want)
			}
		})
	}
}

func TestRootTemplateIdentification(t *testing.T) {
	tests := []struct {
		name     string
		checker  interfaces.ConstraintChecker
		id       string
		resource string
		required bool
	}{
		{"comprehensive", NewComprehensiveChecker(), "", "", false},
		{"key object selection", NewKeyObjectSelectionChecker(), "2010", "DCMR", true},
		{"x-ray dose", NewXRayRadiationDoseChecker(), "10001", "DCMR", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, resource := tt.checker.RootTemplateIdentification()
			if id != tt.id || resource != tt.resource {
				t.Errorf("RootTemplateIdentification() = (%q, %q), want (%q, %q)", id, resource, tt.id, tt.resource)
			}
			if tt.checker.IsTemplateSupportRequired() != tt.required {
				t.Errorf("IsTemplateSupportRequired() = %v, want %v", tt.checker.IsTemplateSupportRequired(), tt.required)
			}
		})
	}
}
