package services

import (
	"fmt"
	"log/slog"
	"slices"

	srerrors "github.com/caio-sobreiro/dicomsr/errors"
	"github.com/caio-sobreiro/dicomsr/interfaces"
	"github.com/caio-sobreiro/dicomsr/types"
)

// Registry maps SR document types to their constraint checkers.
//
// The registry acts as a lookup table for document trees: a tree created for
// a given document type asks the registry for the checker enforcing that
// IOD's relationship content constraints.
//
// Example usage:
//
//	registry := services.NewRegistry()
//	registry.Register(services.NewComprehensiveChecker())
//
//	checker, ok := registry.Lookup(types.DocumentTypeComprehensive)
type Registry struct {
	checkers map[types.DocumentType]interfaces.ConstraintChecker
}

// NewRegistry creates a new, empty checker registry.
//
// Use Register to add checkers, or DefaultRegistry for one holding every
// checker of this package.
func NewRegistry() *Registry {
	return &Registry{
		checkers: make(map[types.DocumentType]interfaces.ConstraintChecker),
	}
}

// DefaultRegistry returns a registry holding all built-in checkers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewBasicTextChecker())
	r.Register(NewEnhancedChecker())
	r.Register(NewComprehensiveChecker())
	r.Register(NewComprehensive3DChecker())
	r.Register(NewKeyObjectSelectionChecker())
	r.Register(NewXRayRadiationDoseChecker())
	return r
}

// Register adds a checker under the document type it reports.
//
// Only one checker can be registered per document type; calling Register
// again for the same type replaces the previous checker.
func (r *Registry) Register(checker interfaces.ConstraintChecker) {
	r.checkers[checker.DocumentType()] = checker
}

// Unregister removes the checker for a document type.
//
// Trees created for this type afterwards have no constraint checker.
func (r *Registry) Unregister(dt types.DocumentType) {
	delete(r.checkers, dt)
}

// Lookup returns the checker registered for dt.
func (r *Registry) Lookup(dt types.DocumentType) (interfaces.ConstraintChecker, bool) {
	checker, ok := r.checkers[dt]
	return checker, ok
}

// CheckerFor returns the checker registered for dt, or an error wrapping
// errors.ErrUnknownDocumentType.
//
// Parameters:
//   - dt: The SR document type, e.g. types.DocumentTypeComprehensive
//
// Returns:
//   - The constraint checker of the IOD
//   - Error if the type is invalid or no checker is registered
func (r *Registry) CheckerFor(dt types.DocumentType) (interfaces.ConstraintChecker, error) {
	checker, ok := r.checkers[dt]
	if !ok {
		slog.Debug("No constraint checker registered for document type",
			"document_type", dt.String())
		return nil, fmt.Errorf("%w: %s", srerrors.ErrUnknownDocumentType, dt)
	}
	return checker, nil
}

// HasChecker returns true if a checker is registered for dt.
func (r *Registry) HasChecker(dt types.DocumentType) bool {
	_, ok := r.checkers[dt]
	return ok
}

// RegisteredDocumentTypes returns the registered document types in
// ascending order.
func (r *Registry) RegisteredDocumentTypes() []types.DocumentType {
	dts := make([]types.DocumentType, 0, len(r.checkers))
	for dt := range r.checkers {
		dts = append(dts, dt)
	}
	slices.Sort(dts)
	return dts
}
