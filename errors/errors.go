// Package errors provides the error conditions reported while building,
// reading and writing SR document trees.
package errors

import (
	"errors"
	"fmt"
)

// Structural and semantic conditions.
var (
	ErrInvalidDocumentTree              = errors.New("dicomsr: invalid document tree")
	ErrEmptyDocumentTree                = errors.New("dicomsr: empty document tree")
	ErrInvalidContentItem               = errors.New("dicomsr: invalid content item")
	ErrInvalidValue                     = errors.New("dicomsr: invalid value")
	ErrUnknownValueType                 = errors.New("dicomsr: unknown value type")
	ErrUnknownRelationshipType          = errors.New("dicomsr: unknown relationship type")
	ErrInvalidByValueRelationship       = errors.New("dicomsr: invalid by-value relationship")
	ErrInvalidByReferenceRelationship   = errors.New("dicomsr: invalid by-reference relationship")
	ErrCannotChangeRelationshipType     = errors.New("dicomsr: cannot change relationship type")
	ErrInvalidTemplateIdentification    = errors.New("dicomsr: invalid template identification")
	ErrUnknownDocumentType              = errors.New("dicomsr: unknown document type")
	ErrCannotAddContentItem             = errors.New("dicomsr: cannot add content item")
	ErrCannotInsertSubTree              = errors.New("dicomsr: cannot insert sub-tree")
	ErrReferencedContentItemNotFound    = errors.New("dicomsr: referenced content item not found")
	ErrCorruptedXMLStructure            = errors.New("dicomsr: corrupted XML structure")
	ErrUnsupportedTransferSyntax        = errors.New("dicomsr: unsupported transfer syntax")
	ErrTemplateSupportRequired          = errors.New("dicomsr: template support required")
	ErrInvalidDigitalSignatureAlgorithm = errors.New("dicomsr: invalid digital signature algorithm")
	ErrSignatureVerificationFailed      = errors.New("dicomsr: signature verification failed")
)

// Caller misuse.
var (
	ErrIllegalCall      = errors.New("dicomsr: illegal call")
	ErrIllegalParameter = errors.New("dicomsr: illegal parameter")
)

// Attribute level conditions reported by the dataset layer.
var (
	ErrMandatoryAttributeMissing = errors.New("dicomsr: mandatory attribute missing")
	ErrMandatoryAttributeEmpty   = errors.New("dicomsr: mandatory attribute empty")
	ErrVRViolation               = errors.New("dicomsr: value representation violated")
	ErrVMViolation               = errors.New("dicomsr: value multiplicity violated")
	ErrMalformedDataset          = errors.New("dicomsr: malformed dataset")
)

// ContentItemError locates a failure at a content item inside the tree.
type ContentItemError struct {
	Op               string
	Position         string
	ValueType        string
	RelationshipType string
	Err              error
}

func (e *ContentItemError) Error() string {
	msg := fmt.Sprintf("%s content item %s", e.Op, e.Position)
	if e.RelationshipType != "" {
		msg += fmt.Sprintf(" (%s", e.RelationshipType)
		if e.ValueType != "" {
			msg += " " + e.ValueType
		}
		msg += ")"
	} else if e.ValueType != "" {
		msg += fmt.Sprintf(" (%s)", e.ValueType)
	}
	return fmt.Sprintf("%s: %v", msg, e.Err)
}

func (e *ContentItemError) Unwrap() error {
	return e.Err
}

// NewContentItemError creates a new content item error
func NewContentItemError(op, position, relationshipType, valueType string, err error) *ContentItemError {
	return &ContentItemError{
		Op:               op,
		Position:         position,
		RelationshipType: relationshipType,
		ValueType:        valueType,
		Err:              err,
	}
}

// AttributeError reports a problem with a single data element.
type AttributeError struct {
	Tag     string
	Keyword string
	Value   string
	Err     error
}

func (e *AttributeError) Error() string {
	name := e.Tag
	if e.Keyword != "" {
		name = fmt.Sprintf("%s %s", e.Keyword, e.Tag)
	}
	if e.Value != "" {
		return fmt.Sprintf("%s = %q: %v", name, e.Value, e.Err)
	}
	return fmt.Sprintf("%s: %v", name, e.Err)
}

func (e *AttributeError) Unwrap() error {
	return e.Err
}

// NewAttributeError creates a new attribute error
func NewAttributeError(tag, keyword, value string, err error) *AttributeError {
	return &AttributeError{
		Tag:     tag,
		Keyword: keyword,
		Value:   value,
		Err:     err,
	}
}

// XMLError reports a problem at an element of an XML document.
type XMLError struct {
	Path string
	Msg  string
	Err  error
}

func (e *XMLError) Error() string {
	return fmt.Sprintf("xml %s: %s: %v", e.Path, e.Msg, e.Err)
}

func (e *XMLError) Unwrap() error {
	return e.Err
}

// NewXMLError creates a new XML error
func NewXMLError(path, msg string, err error) *XMLError {
	return &XMLError{
		Path: path,
		Msg:  msg,
		Err:  err,
	}
}
