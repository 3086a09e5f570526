// Package interfaces contains the collaborator contracts used by the SR
// document tree.
package interfaces

import "github.com/caio-sobreiro/dicomsr/types"

// ConstraintChecker encodes the content constraints of one SR IOD: which
// relationships are legal between which value types and which template the
// document root has to follow.
type ConstraintChecker interface {
	// DocumentType returns the SR document type the checker belongs to.
	DocumentType() types.DocumentType

	// IsByReferenceAllowed reports whether the IOD permits by-reference
	// relationships at all.
	IsByReferenceAllowed() bool

	// IsTemplateSupportRequired reports whether the IOD requires a root
	// template.
	IsTemplateSupportRequired() bool

	// RootTemplateIdentification returns the expected root template
	// identifier and mapping resource, or two empty strings.
	RootTemplateIdentification() (templateIdentifier, mappingResource string)

	// CheckContentRelationship reports whether a content item of type source
	// may have a child of type target with relationship rel.
	CheckContentRelationship(source types.ValueType, rel types.RelationshipType, target types.ValueType, byReference bool) bool
}
