package sr

import "github.com/caio-sobreiro/dicomsr/tree"

// ReadFlags control how leniently a document tree is read from a dataset.
type ReadFlags uint

const (
	// ReadDigitalSignatures copies the MAC parameters and digital
	// signatures sequences of every content item.
	ReadDigitalSignatures ReadFlags = 1 << iota
	// AcceptUnknownRelationshipType maps unknown relationship types to
	// RelationshipUnknown instead of failing.
	AcceptUnknownRelationshipType
	// IgnoreRelationshipConstraints skips the constraint checker.
	IgnoreRelationshipConstraints
	// IgnoreContentItemErrors accepts content items with invalid values.
	IgnoreContentItemErrors
	// SkipInvalidContentItems drops a failing content item together with
	// its sub-tree and continues with the next sibling.
	SkipInvalidContentItems
	// ShowCurrentlyProcessedItem records a debug diagnostic per item.
	ShowCurrentlyProcessedItem
)

// XMLFlags control the XML representation of a document tree.
type XMLFlags uint

const (
	XMLWriteEmptyTags XMLFlags = 1 << iota
	XMLWriteTemplateIdentification
	XMLAlwaysWriteItemIdentifier
	XMLCodeComponentsAsAttribute
	XMLRelationshipTypeAsAttribute
	XMLValueTypeAsAttribute
	XMLTemplateIdentifierAsAttribute
	// XMLTemplateElementEnclosesItems places the template element around
	// the content item instead of inside it.
	XMLTemplateElementEnclosesItems
	XMLUseNamespace
	// XMLSkipInvalidContentItems drops items that fail to read.
	XMLSkipInvalidContentItems
	// XMLIgnoreContentItemErrors accepts items with invalid values.
	XMLIgnoreContentItemErrors
)

// PrintFlags control the text output of Print.
type PrintFlags uint

const (
	PrintItemPosition PrintFlags = 1 << iota
	PrintShortenLongItemValues
	PrintConceptNameCodes
	PrintTemplateIdentification
	PrintNodeID
	PrintAnnotation
	PrintUseANSIEscapeCodes
	// PrintExpandIncludedTemplates prints the content of included
	// templates in place of the placeholder line.
	PrintExpandIncludedTemplates
)

// HTMLFlags control RenderHTML.
type HTMLFlags uint

const (
	HTMLRenderConceptNameCodes HTMLFlags = 1 << iota
	HTMLNeverExpandChildrenInline
	HTMLRenderFullData
)

// PositionDontCountIncludedTemplateNodes makes included template nodes
// transparent to position counting.
const PositionDontCountIncludedTemplateNodes tree.PositionFlags = 1
