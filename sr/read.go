package sr

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/caio-sobreiro/dicomsr/dicom"
	srerrors "github.com/caio-sobreiro/dicomsr/errors"
	"github.com/caio-sobreiro/dicomsr/interfaces"
	"github.com/caio-sobreiro/dicomsr/tree"
	"github.com/caio-sobreiro/dicomsr/types"
)

type readContext struct {
	*reporter
	flags   ReadFlags
	checker interfaces.ConstraintChecker
}

// ReadDocument creates a tree for the SR storage SOP class of ds and reads
// ds into it.
func ReadDocument(ds *dicom.Dataset, flags ReadFlags, opts ...Option) (*DocumentTree, Diagnostics, error) {
	if ds == nil {
		return nil, nil, fmt.Errorf("nil dataset: %w", srerrors.ErrIllegalParameter)
	}
	sopClass := ds.GetString(dicom.SOPClassUID)
	docType := types.DocumentTypeFromSOPClassUID(sopClass)
	if docType == types.DocumentTypeInvalid {
		return nil, nil, fmt.Errorf("SOP class %q: %w", sopClass, srerrors.ErrUnknownDocumentType)
	}
	t := NewDocumentTree(docType, opts...)
	diags, err := t.Read(ds, flags)
	return t, diags, err
}

// Read replaces the tree with the content items of ds. The dataset itself
// is the root content item and must be a CONTAINER.
//
// Non-fatal problems are returned as diagnostics. On a fatal error the
// items read so far stay in the tree.
func (t *DocumentTree) Read(ds *dicom.Dataset, flags ReadFlags) (Diagnostics, error) {
	t.Clear()
	rc := &readContext{reporter: newReporter(t.logger), flags: flags, checker: t.checker}
	if flags&IgnoreRelationshipConstraints != 0 {
		rc.checker = nil
	}
	if ds == nil {
		return rc.diags, fmt.Errorf("nil dataset: %w", srerrors.ErrIllegalParameter)
	}

	value, err := ds.GetAndCheckString(dicom.ValueType, "1", dicom.Type1)
	if err != nil {
		rc.error("1", "reading root value type: %v", err)
		return rc.diags, err
	}
	if vt := types.ValueTypeFromDefinedTerm(value); vt != types.ValueTypeContainer {
		rc.error("1", "root content item is %q, not CONTAINER", value)
		return rc.diags, fmt.Errorf("root value type %q: %w", value, srerrors.ErrInvalidDocumentTree)
	}

	root, err := NewNode(types.RelationshipIsRoot, types.ValueTypeContainer)
	if err != nil {
		return rc.diags, err
	}
	t.AddNode(root, tree.AddBelowCurrent)
	if err := rc.readContentItem(root, ds, "1"); err != nil {
		err = rc.fail("1", err)
		return rc.diags, err
	}
	t.GotoRoot()
	t.checkByReferenceRelationships(updateReferenceNodeIDs, rc.reporter)
	return rc.diags, nil
}

// readContentItem reads the document relationship and content macros of
// node from ds, including its content sequence.
func (rc *readContext) readContentItem(node *Node, ds *dicom.Dataset, position string) error {
	if rc.flags&ShowCurrentlyProcessedItem != 0 {
		rc.debug(position, "processing %s content item", node.valueType.DefinedTerm())
	}
	if rc.flags&ReadDigitalSignatures != 0 {
		for _, item := range ds.GetSequence(dicom.MACParametersSequence) {
			node.macParameters = append(node.macParameters, item.Clone())
		}
		for _, item := range ds.GetSequence(dicom.DigitalSignaturesSequence) {
			node.digitalSignatures = append(node.digitalSignatures, item.Clone())
		}
	}

	if node.valueType == types.ValueTypeByReference {
		if err := node.content.readItem(ds); err != nil {
			return rc.contentError(node, position, "reading referenced content item identifier", err)
		}
		return nil
	}
	if err := rc.readRelationshipMacro(node, ds, position); err != nil {
		return err
	}
	return rc.readContentMacro(node, ds, position)
}

func (rc *readContext) readRelationshipMacro(node *Node, ds *dicom.Dataset, position string) error {
	var k errKeeper
	node.observationDateTime = k.keep(ds.GetAndCheckString(dicom.ObservationDateTime, "1", dicom.Type1C))
	node.observationUID = k.keep(ds.GetAndCheckString(dicom.ObservationUID, "1", dicom.Type3))
	if k.err != nil {
		rc.warn(position, "reading observation attributes: %v", k.err)
	}

	if item := ds.GetSequenceItem(dicom.ContentTemplateSequence, 0); item != nil {
		var tk errKeeper
		resource := tk.keep(item.GetAndCheckString(dicom.MappingResource, "1", dicom.Type1))
		resourceUID := tk.keep(item.GetAndCheckString(dicom.MappingResourceUID, "1", dicom.Type3))
		id := tk.keep(item.GetAndCheckString(dicom.TemplateIdentifier, "1", dicom.Type1))
		if tk.err != nil {
			rc.warn(position, "reading content template: %v", tk.err)
		}
		if node.valueType != types.ValueTypeContainer {
			rc.warn(position, "content template sequence on %s content item", node.valueType.DefinedTerm())
		}
		if err := node.SetTemplateIdentification(id, resource, resourceUID, false); err != nil {
			rc.warn(position, "%v", err)
		}
	}

	if node.relationshipType == types.RelationshipIsRoot && rc.checker != nil {
		expectedID, expectedResource := rc.checker.RootTemplateIdentification()
		if expectedID != "" && !node.CompareTemplateIdentification(expectedID, expectedResource, "") {
			if node.HasTemplateIdentification() {
				rc.warn(position, "root template TID %s (%s) does not match expected TID %s (%s)",
					node.templateIdentifier, node.mappingResource, expectedID, expectedResource)
			} else if rc.checker.IsTemplateSupportRequired() {
				rc.warn(position, "root template identification missing, expected TID %s (%s)", expectedID, expectedResource)
			}
		}
	}
	return nil
}

func (rc *readContext) readContentMacro(node *Node, ds *dicom.Dataset, position string) error {
	attrType := dicom.Type3
	if node.relationshipType == types.RelationshipIsRoot {
		attrType = dicom.Type1
	}
	concept, err := readCodeSequence(ds, dicom.ConceptNameCodeSequence, attrType)
	if err != nil {
		if err := rc.contentError(node, position, "reading concept name", err); err != nil {
			return err
		}
	}
	node.conceptName = concept

	if err := node.content.readItem(ds); err != nil {
		if err := rc.contentError(node, position, "reading value", err); err != nil {
			return err
		}
	}

	for i, item := range ds.GetSequence(dicom.ContentSequence) {
		if err := rc.readChild(node, item, position+"."+strconv.Itoa(i+1)); err != nil {
			return err
		}
	}

	if !node.IsValid() {
		if err := rc.contentError(node, position, "checking content item", srerrors.ErrInvalidContentItem); err != nil {
			return err
		}
	}
	return nil
}

// contentError downgrades err to a warning when content item errors are
// ignored.
func (rc *readContext) contentError(node *Node, position, op string, err error) error {
	if rc.flags&IgnoreContentItemErrors != 0 {
		rc.warn(position, "%s: %v", op, err)
		return nil
	}
	return srerrors.NewContentItemError(op, position, node.relationshipType.DefinedTerm(), node.valueType.DefinedTerm(), err)
}

// readChild reads one item of a content sequence and appends it to parent.
func (rc *readContext) readChild(parent *Node, item *dicom.Dataset, position string) error {
	child, err := rc.createChild(parent, item, position)
	if err == nil {
		tree.AppendChild(parent, child)
		err = rc.readContentItem(child, item, position)
		if err != nil {
			tree.Unlink(parent, child)
		}
	}
	if err == nil {
		return nil
	}
	if rc.flags&SkipInvalidContentItems != 0 {
		rc.warn(position, "skipping invalid content item: %v", err)
		return nil
	}
	return rc.fail(position, err)
}

// fail records err once, at the item it originated from, and returns it
// as a content item error.
func (rc *readContext) fail(position string, err error) error {
	var itemErr *srerrors.ContentItemError
	if !errors.As(err, &itemErr) {
		itemErr = srerrors.NewContentItemError("reading", position, "", "", err)
		err = itemErr
	}
	if itemErr.Position == position {
		rc.error(position, "%v", itemErr.Err)
	}
	return err
}

// createChild determines the type of a content sequence item and creates
// the matching node.
func (rc *readContext) createChild(parent *Node, item *dicom.Dataset, position string) (*Node, error) {
	value, err := item.GetAndCheckString(dicom.RelationshipType, "1", dicom.Type1)
	if err != nil {
		return nil, err
	}
	rel := types.RelationshipTypeFromDefinedTerm(value)
	if rel == types.RelationshipUnknown || rel == types.RelationshipIsRoot {
		if rc.flags&AcceptUnknownRelationshipType == 0 {
			return nil, fmt.Errorf("relationship type %q: %w", value, srerrors.ErrUnknownRelationshipType)
		}
		rc.warn(position, "unknown relationship type %q", value)
		rel = types.RelationshipUnknown
	}

	if item.HasElement(dicom.ReferencedContentItemIdentifier) {
		return NewNode(rel, types.ValueTypeByReference)
	}

	value, err = item.GetAndCheckString(dicom.ValueType, "1", dicom.Type1)
	if err != nil {
		return nil, err
	}
	vt := types.ValueTypeFromDefinedTerm(value)
	if !vt.IsConcrete() {
		return nil, fmt.Errorf("value type %q: %w", value, srerrors.ErrUnknownValueType)
	}
	if rc.checker != nil && rel != types.RelationshipUnknown &&
		!rc.checker.CheckContentRelationship(parent.valueType, rel, vt, false) {
		return nil, fmt.Errorf("%s %s %s: %w", parent.valueType.DefinedTerm(), rel.DefinedTerm(), vt.DefinedTerm(),
			srerrors.ErrInvalidByValueRelationship)
	}
	return NewNode(rel, vt)
}
