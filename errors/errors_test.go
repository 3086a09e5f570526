package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestContentItemError(t *testing.T) {
	err := NewContentItemError("reading", "1.2.3", "CONTAINS", "TEXT", ErrInvalidByValueRelationship)

	if err.Position != "1.2.3" {
		t.Errorf("Position = %v, want 1.2.3", err.Position)
	}
	if !errors.Is(err, ErrInvalidByValueRelationship) {
		t.Error("errors.Is should match the wrapped condition")
	}

	msg := err.Error()
	for _, part := range []string{"1.2.3", "CONTAINS TEXT", "invalid by-value relationship"} {
		if !strings.Contains(msg, part) {
			t.Errorf("Error() = %q, missing %q", msg, part)
		}
	}
}

func TestContentItemErrorWithoutTypes(t *testing.T) {
	tests := []struct {
		name string
		rel  string
		vt   string
		want string
	}{
		{"Position only", "", "", "reading content item 1: dicomsr: invalid value"},
		{"Value type only", "", "NUM", "reading content item 1 (NUM): dicomsr: invalid value"},
		{"Relationship only", "CONTAINS", "", "reading content item 1 (CONTAINS): dicomsr: invalid value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewContentItemError("reading", "1", tt.rel, tt.vt, ErrInvalidValue)
			if got := err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAttributeError(t *testing.T) {
	err := NewAttributeError("(0040,a124)", "UID", "1..2", ErrVRViolation)

	var attrErr *AttributeError
	if !errors.As(err, &attrErr) {
		t.Fatal("errors.As should find *AttributeError")
	}
	if !errors.Is(err, ErrVRViolation) {
		t.Error("errors.Is should match ErrVRViolation")
	}
	if got := err.Error(); !strings.HasPrefix(got, "UID (0040,a124)") {
		t.Errorf("Error() = %q, want keyword prefix", got)
	}
}

func TestXMLError(t *testing.T) {
	err := NewXMLError("/report/document", "missing content", ErrCorruptedXMLStructure)

	if !errors.Is(err, ErrCorruptedXMLStructure) {
		t.Error("errors.Is should match ErrCorruptedXMLStructure")
	}
	if err.Error() == "" {
		t.Error("Error message should not be empty")
	}
}
