package sr

import (
	"fmt"
	"log/slog"

	"github.com/caio-sobreiro/dicomsr/dicom"
	srerrors "github.com/caio-sobreiro/dicomsr/errors"
	"github.com/caio-sobreiro/dicomsr/tree"
	"github.com/caio-sobreiro/dicomsr/types"
)

// Node is a content item of an SR document tree.
type Node struct {
	tree.Links[*Node]

	relationshipType    types.RelationshipType
	valueType           types.ValueType
	conceptName         CodedEntry
	observationDateTime string
	observationUID      string

	templateIdentifier string
	mappingResource    string
	mappingResourceUID string

	marked          bool
	referenceTarget bool

	macParameters     []*dicom.Dataset
	digitalSignatures []*dicom.Dataset

	content Content
}

// NewNode creates an empty content item of the given value type.
func NewNode(rel types.RelationshipType, vt types.ValueType) (*Node, error) {
	content, err := NewContent(vt)
	if err != nil {
		return nil, err
	}
	return &Node{
		Links:            tree.NewLinks[*Node](),
		relationshipType: rel,
		valueType:        vt,
		content:          content,
	}, nil
}

// NewNodeCopy creates a node of value type vt copying src. If src holds a
// different value type the payload stays empty and ErrIllegalCall is
// returned together with the node.
func NewNodeCopy(vt types.ValueType, src *Node) (*Node, error) {
	n, err := NewNode(types.RelationshipInvalid, vt)
	if err != nil {
		return nil, err
	}
	if src == nil {
		return n, fmt.Errorf("copy of nil node: %w", srerrors.ErrIllegalCall)
	}
	n.copyBase(src)
	if src.valueType != vt {
		return n, fmt.Errorf("copy of %s node as %s: %w", src.valueType, vt, srerrors.ErrIllegalCall)
	}
	n.content = src.content.clone()
	return n, nil
}

func (n *Node) copyBase(src *Node) {
	n.relationshipType = src.relationshipType
	n.conceptName = src.conceptName
	n.observationDateTime = src.observationDateTime
	n.observationUID = src.observationUID
	n.templateIdentifier = src.templateIdentifier
	n.mappingResource = src.mappingResource
	n.mappingResourceUID = src.mappingResourceUID
	n.SetAnnotation(src.Annotation())
	for _, ds := range src.macParameters {
		n.macParameters = append(n.macParameters, ds.Clone())
	}
	for _, ds := range src.digitalSignatures {
		n.digitalSignatures = append(n.digitalSignatures, ds.Clone())
	}
}

// Clone returns an unlinked copy with a new identity. Mark and
// reference target flags are not copied.
func (n *Node) Clone() *Node {
	clone, _ := NewNodeCopy(n.valueType, n)
	return clone
}

// NodeID returns the node's identity.
func (n *Node) NodeID() tree.NodeID { return n.Ident() }

// RelationshipType returns the relationship to the parent.
func (n *Node) RelationshipType() types.RelationshipType { return n.relationshipType }

// ValueType returns the value type.
func (n *Node) ValueType() types.ValueType { return n.valueType }

// ConceptName returns the concept name.
func (n *Node) ConceptName() CodedEntry { return n.conceptName }

// ObservationDateTime returns the observation date/time (DT).
func (n *Node) ObservationDateTime() string { return n.observationDateTime }

// ObservationUID returns the observation UID.
func (n *Node) ObservationUID() string { return n.observationUID }

// TemplateIdentifier returns the template identifier, e.g. "1500".
func (n *Node) TemplateIdentifier() string { return n.templateIdentifier }

// MappingResource returns the template mapping resource, e.g. "DCMR".
func (n *Node) MappingResource() string { return n.mappingResource }

// MappingResourceUID returns the optional mapping resource UID.
func (n *Node) MappingResourceUID() string { return n.mappingResourceUID }

// IsMarked reports whether the node is marked for signing.
func (n *Node) IsMarked() bool { return n.marked }

// IsReferenceTarget reports whether a by-reference relationship points here.
func (n *Node) IsReferenceTarget() bool { return n.referenceTarget }

// Content returns the payload.
func (n *Node) Content() Content { return n.content }

// HasChildNodes reports whether the node has children.
func (n *Node) HasChildNodes() bool { return tree.HasChildNodes(n) }

// HasSiblingNodes reports whether the node has siblings.
func (n *Node) HasSiblingNodes() bool { return tree.HasSiblingNodes(n) }

// SetRelationshipType assigns a relationship type. Only a node whose type
// is still unknown can be changed.
func (n *Node) SetRelationshipType(rel types.RelationshipType) error {
	if rel == types.RelationshipInvalid {
		return fmt.Errorf("relationship type %s: %w", rel, srerrors.ErrInvalidValue)
	}
	if n.relationshipType != types.RelationshipUnknown {
		return fmt.Errorf("from %s to %s: %w", n.relationshipType, rel, srerrors.ErrCannotChangeRelationshipType)
	}
	n.relationshipType = rel
	return nil
}

// SetConceptName replaces the concept name. An empty entry clears it.
func (n *Node) SetConceptName(c CodedEntry, check bool) error {
	if check && !c.IsEmpty() {
		if err := c.Check(); err != nil {
			return err
		}
	}
	n.conceptName = c
	return nil
}

// SetObservationDateTime sets the observation date/time (DT format).
func (n *Node) SetObservationDateTime(value string, check bool) error {
	if check && value != "" && !dicom.IsValidDateTime(value) {
		return srerrors.NewAttributeError(dicom.ObservationDateTime.String(), "ObservationDateTime", value, srerrors.ErrVRViolation)
	}
	n.observationDateTime = value
	return nil
}

// SetObservationUID sets the observation UID.
func (n *Node) SetObservationUID(value string, check bool) error {
	if check && value != "" && !dicom.IsValidUID(value) {
		return srerrors.NewAttributeError(dicom.ObservationUID.String(), "ObservationUID", value, srerrors.ErrVRViolation)
	}
	n.observationUID = value
	return nil
}

// GenerateObservationUID assigns a new observation UID and returns it.
func (n *Node) GenerateObservationUID() string {
	n.observationUID = dicom.NewUID()
	return n.observationUID
}

// SetTemplateIdentification sets the template identifier, mapping
// resource and optional mapping resource UID. Identifier and resource must
// be both empty or both set.
func (n *Node) SetTemplateIdentification(id, resource, resourceUID string, check bool) error {
	if (id == "") != (resource == "") || (id == "" && resourceUID != "") {
		return fmt.Errorf("template %q, resource %q: %w", id, resource, srerrors.ErrInvalidTemplateIdentification)
	}
	if check {
		if !dicom.IsValidCodeString(id) || !dicom.IsValidCodeString(resource) {
			return fmt.Errorf("template %q, resource %q: %w", id, resource, srerrors.ErrVRViolation)
		}
		if resourceUID != "" && !dicom.IsValidUID(resourceUID) {
			return fmt.Errorf("mapping resource UID %q: %w", resourceUID, srerrors.ErrVRViolation)
		}
	}
	if id != "" && n.valueType != types.ValueTypeContainer && n.valueType != types.ValueTypeIncludedTemplate {
		slog.Default().Warn("template identification set on content item that is not a container",
			"value_type", n.valueType.String(), "template", id, "resource", resource)
	}
	n.templateIdentifier = id
	n.mappingResource = resource
	n.mappingResourceUID = resourceUID
	return nil
}

// HasTemplateIdentification reports whether identifier and resource are set.
func (n *Node) HasTemplateIdentification() bool {
	return n.templateIdentifier != "" && n.mappingResource != ""
}

// CompareTemplateIdentification compares the template triple. The mapping
// resource UID only counts when both sides carry one.
func (n *Node) CompareTemplateIdentification(id, resource, resourceUID string) bool {
	if n.templateIdentifier != id || n.mappingResource != resource {
		return false
	}
	if n.mappingResourceUID != "" && resourceUID != "" {
		return n.mappingResourceUID == resourceUID
	}
	return true
}

// SetMark sets the flag that selects the item for digital signatures.
func (n *Node) SetMark(marked bool) { n.marked = marked }

// SetReferenceTarget flags the node as target of a by-reference relationship.
func (n *Node) SetReferenceTarget(target bool) { n.referenceTarget = target }

// SetContent replaces the payload. The payload must match the value type
// and hold a valid value.
func (n *Node) SetContent(c Content) error {
	if c == nil || c.ValueType() != n.valueType {
		return fmt.Errorf("content for %s node: %w", n.valueType, srerrors.ErrIllegalParameter)
	}
	if !c.IsValid() {
		return fmt.Errorf("%s content %s: %w", n.valueType, c, srerrors.ErrInvalidValue)
	}
	n.content = c
	return nil
}

// HasValidValue reports whether the payload holds a valid value.
func (n *Node) HasValidValue() bool {
	return n.content != nil && n.content.IsValid()
}

// IsValid checks the node's own attributes and its payload.
func (n *Node) IsValid() bool {
	if n.valueType == types.ValueTypeInvalid || n.relationshipType == types.RelationshipInvalid {
		return false
	}
	if !n.conceptName.IsEmpty() && !n.conceptName.IsValid() {
		return false
	}
	if (n.templateIdentifier == "") != (n.mappingResource == "") {
		return false
	}
	return n.HasValidValue()
}

// IsShort reports whether the value can be rendered inline.
func (n *Node) IsShort(flags HTMLFlags) bool {
	return n.content != nil && n.content.IsShort(flags)
}

// Equal compares relationship type, value type and concept name.
func (n *Node) Equal(other *Node) bool {
	if n == nil || other == nil {
		return n == other
	}
	return n.relationshipType == other.relationshipType &&
		n.valueType == other.valueType &&
		n.conceptName.Equal(other.conceptName)
}

// MACParameters returns the copied-through MAC Parameters Sequence items.
func (n *Node) MACParameters() []*dicom.Dataset { return n.macParameters }

// DigitalSignatures returns the copied-through Digital Signatures Sequence
// items.
func (n *Node) DigitalSignatures() []*dicom.Dataset { return n.digitalSignatures }

// AddDigitalSignature appends a signature item and its MAC parameters.
func (n *Node) AddDigitalSignature(macParameters, signature *dicom.Dataset) {
	if macParameters != nil {
		n.macParameters = append(n.macParameters, macParameters)
	}
	if signature != nil {
		n.digitalSignatures = append(n.digitalSignatures, signature)
	}
}

// RemoveDigitalSignatures drops all signature sequences.
func (n *Node) RemoveDigitalSignatures() {
	n.macParameters = nil
	n.digitalSignatures = nil
}

func (n *Node) String() string {
	return fmt.Sprintf("%s %s:%s", n.relationshipType, n.valueType, n.conceptName)
}
