package sr

import (
	"errors"
	"testing"

	srerrors "github.com/caio-sobreiro/dicomsr/errors"
	"github.com/caio-sobreiro/dicomsr/types"
)

func TestNewNode(t *testing.T) {
	for _, vt := range types.ConcreteValueTypes() {
		n, err := NewNode(types.RelationshipContains, vt)
		if err != nil {
			t.Fatalf("NewNode(%s) error = %v", vt, err)
		}
		if n.ValueType() != vt || n.Content().ValueType() != vt {
			t.Errorf("NewNode(%s) value type = %s/%s", vt, n.ValueType(), n.Content().ValueType())
		}
		if n.NodeID() == 0 {
			t.Errorf("NewNode(%s) has no identity", vt)
		}
	}
	if _, err := NewNode(types.RelationshipContains, types.ValueTypeInvalid); !errors.Is(err, srerrors.ErrUnknownValueType) {
		t.Errorf("NewNode(invalid) error = %v, want %v", err, srerrors.ErrUnknownValueType)
	}
}

func TestNode_SetRelationshipType(t *testing.T) {
	n, _ := NewNode(types.RelationshipUnknown, types.ValueTypeText)
	if err := n.SetRelationshipType(types.RelationshipContains); err != nil {
		t.Fatalf("first SetRelationshipType() error = %v", err)
	}
	err := n.SetRelationshipType(types.RelationshipContains)
	if !errors.Is(err, srerrors.ErrCannotChangeRelationshipType) {
		t.Errorf("second SetRelationshipType() error = %v, want %v", err, srerrors.ErrCannotChangeRelationshipType)
	}
	if n.RelationshipType() != types.RelationshipContains {
		t.Errorf("RelationshipType() = %s, want CONTAINS", n.RelationshipType())
	}

	u, _ := NewNode(types.RelationshipUnknown, types.ValueTypeText)
	if err := u.SetRelationshipType(types.RelationshipInvalid); !errors.Is(err, srerrors.ErrInvalidValue) {
		t.Errorf("SetRelationshipType(invalid) error = %v, want %v", err, srerrors.ErrInvalidValue)
	}
	if u.RelationshipType() != types.RelationshipUnknown {
		t.Errorf("RelationshipType() = %s, want unknown", u.RelationshipType())
	}
}

func TestNode_SetTemplateIdentification(t *testing.T) {
	tests := []struct {
		name              string
		id, resource, uid string
		wantErr           bool
		wantSet           bool
	}{
		{"complete", "1500", "DCMR", "", false, true},
		{"with uid", "1500", "DCMR", "1.2.840.10008.8.1.1", false, true},
		{"empty", "", "", "", false, false},
		{"identifier only", "1500", "", "", true, false},
		{"resource only", "", "DCMR", "", true, false},
		{"identifier only with uid", "1500", "", "1.2.3", true, false},
		{"resource only with uid", "", "DCMR", "1.2.3", true, false},
		{"uid only", "", "", "1.2.3", true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, _ := NewNode(types.RelationshipContains, types.ValueTypeContainer)
			err := n.SetTemplateIdentification(tt.id, tt.resource, tt.uid, true)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SetTemplateIdentification() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, srerrors.ErrInvalidTemplateIdentification) {
				t.Errorf("error = %v, want %v", err, srerrors.ErrInvalidTemplateIdentification)
			}
			if n.HasTemplateIdentification() != tt.wantSet {
				t.Errorf("HasTemplateIdentification() = %v, want %v", n.HasTemplateIdentification(), tt.wantSet)
			}
		})
	}
}

func TestNode_CompareTemplateIdentification(t *testing.T) {
	n, _ := NewNode(types.RelationshipContains, types.ValueTypeContainer)
	if err := n.SetTemplateIdentification("1500", "DCMR", "1.2.3", false); err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		id, resource, uid string
		want              bool
	}{
		{"1500", "DCMR", "1.2.3", true},
		{"1500", "DCMR", "", true},
		{"1500", "DCMR", "1.2.4", false},
		{"1501", "DCMR", "", false},
		{"1500", "SCT", "", false},
	}
	for _, tt := range tests {
		if got := n.CompareTemplateIdentification(tt.id, tt.resource, tt.uid); got != tt.want {
			t.Errorf("CompareTemplateIdentification(%q, %q, %q) = %v, want %v", tt.id, tt.resource, tt.uid, got, tt.want)
		}
	}
}

func TestNode_SetConceptName(t *testing.T) {
	n, _ := NewNode(types.RelationshipContains, types.ValueTypeText)
	if err := n.SetConceptName(CodedEntry{CodeValue: "121071"}, true); err == nil {
		t.Error("SetConceptName(incomplete) should fail")
	}
	if !n.ConceptName().IsEmpty() {
		t.Errorf("ConceptName() = %s, want empty after failed set", n.ConceptName())
	}
	finding := NewCodedEntry("121071", "DCM", "Finding")
	if err := n.SetConceptName(finding, true); err != nil {
		t.Fatalf("SetConceptName() error = %v", err)
	}
	if n.ConceptName() != finding {
		t.Errorf("ConceptName() = %s, want %s", n.ConceptName(), finding)
	}
}

func TestNode_SetObservationDateTime(t *testing.T) {
	n, _ := NewNode(types.RelationshipContains, types.ValueTypeText)
	if err := n.SetObservationDateTime("2020-06-15", true); err == nil {
		t.Error("SetObservationDateTime(XML form) should fail the DT check")
	}
	if err := n.SetObservationDateTime("20200615120000", true); err != nil {
		t.Errorf("SetObservationDateTime() error = %v", err)
	}
	if got := n.ObservationDateTime(); got != "20200615120000" {
		t.Errorf("ObservationDateTime() = %q, want 20200615120000", got)
	}
}

func TestNode_SetContent(t *testing.T) {
	n, _ := NewNode(types.RelationshipContains, types.ValueTypeText)
	if err := n.SetContent(&CodeContent{Code: NewCodedEntry("1", "DCM", "x")}); !errors.Is(err, srerrors.ErrIllegalParameter) {
		t.Errorf("SetContent(code) error = %v, want %v", err, srerrors.ErrIllegalParameter)
	}
	if err := n.SetContent(&TextContent{}); !errors.Is(err, srerrors.ErrInvalidValue) {
		t.Errorf("SetContent(empty text) error = %v, want %v", err, srerrors.ErrInvalidValue)
	}
	if n.HasValidValue() {
		t.Error("empty text node should not have a valid value")
	}
	if err := n.SetContent(&TextContent{Value: "normal"}); err != nil {
		t.Fatalf("SetContent() error = %v", err)
	}
	if !n.IsValid() {
		t.Error("text node with value should be valid")
	}
}

func TestNewNodeCopy(t *testing.T) {
	src, _ := NewNode(types.RelationshipContains, types.ValueTypeText)
	src.SetConceptName(NewCodedEntry("121071", "DCM", "Finding"), true)
	src.SetContent(&TextContent{Value: "normal"})
	src.SetMark(true)

	clone := src.Clone()
	if clone.NodeID() == src.NodeID() {
		t.Error("clone shares the identity of its source")
	}
	if !clone.Equal(src) {
		t.Error("clone should equal its source")
	}
	if clone.IsMarked() {
		t.Error("clone should not copy the mark")
	}
	if got := clone.Content().(*TextContent).Value; got != "normal" {
		t.Errorf("clone value = %q, want normal", got)
	}

	other, err := NewNodeCopy(types.ValueTypeCode, src)
	if !errors.Is(err, srerrors.ErrIllegalCall) {
		t.Errorf("NewNodeCopy(mismatch) error = %v, want %v", err, srerrors.ErrIllegalCall)
	}
	if other == nil || other.HasValidValue() {
		t.Error("mismatching copy should return a node with empty payload")
	}
}
