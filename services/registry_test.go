package services

import (
	"errors"
	"testing"

	srerrors "github.com/caio-sobreiro/dicomsr/errors"
	"github.com/caio-sobreiro/dicomsr/interfaces"
	"github.com/caio-sobreiro/dicomsr/types"
)

var _ interfaces.ConstraintChecker = (*TableChecker)(nil)

func TestRegistry_RegisterLookup(t *testing.T) {
	registry := NewRegistry()
	if registry.HasChecker(types.DocumentTypeComprehensive) {
		t.Fatal("new registry should be empty")
	}

	registry.Register(NewComprehensiveChecker())
	checker, ok := registry.Lookup(types.DocumentTypeComprehensive)
	if !ok {
		t.Fatal("Lookup() did not find the registered checker")
	}
	if checker.DocumentType() != types.DocumentTypeComprehensive {
		t.Errorf("DocumentType() = %v, want %v", checker.DocumentType(), types.DocumentTypeComprehensive)
	}

	registry.Unregister(types.DocumentTypeComprehensive)
	if registry.HasChecker(types.DocumentTypeComprehensive) {
		t.Error("checker still registered after Unregister()")
	}
}

func TestRegistry_CheckerForUnknown(t *testing.T) {
	registry := NewRegistry()
	_, err := registry.CheckerFor(types.DocumentTypeChestCAD)
	if !errors.Is(err, srerrors.ErrUnknownDocumentType) {
		t.Errorf("CheckerFor() error = %v, want ErrUnknownDocumentType", err)
	}
}

func TestDefaultRegistry(t *testing.T) {
	registry := DefaultRegistry()
	want := []types.DocumentType{
		types.DocumentTypeBasicText,
		types.DocumentTypeEnhanced,
		types.DocumentTypeComprehensive,
		types.DocumentTypeComprehensive3D,
		types.DocumentTypeKeyObjectSelection,
		types.DocumentTypeXRayRadiationDose,
	}
	got := registry.RegisteredDocumentTypes()
	if len(got) != len(want) {
		t.Fatalf("RegisteredDocumentTypes() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("RegisteredDocumentTypes()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}
