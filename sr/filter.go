package sr

import (
	"fmt"

	srerrors "github.com/caio-sobreiro/dicomsr/errors"
	"github.com/caio-sobreiro/dicomsr/tree"
	"github.com/caio-sobreiro/dicomsr/types"
)

// NodeFilter selects content items. Every filter rejects a nil node.
type NodeFilter interface {
	Matches(n *Node) bool
}

// FilterFunc adapts a function to NodeFilter.
type FilterFunc func(n *Node) bool

// Matches calls f.
func (f FilterFunc) Matches(n *Node) bool {
	return n != nil && f(n)
}

type filterList struct {
	filters []NodeFilter
}

// AddFilter appends a filter to the list.
func (l *filterList) AddFilter(f NodeFilter) error {
	if f == nil {
		return fmt.Errorf("nil filter: %w", srerrors.ErrIllegalParameter)
	}
	l.filters = append(l.filters, f)
	return nil
}

// Len returns the number of filters in the list.
func (l *filterList) Len() int { return len(l.filters) }

func newFilterList(filters []NodeFilter) (filterList, error) {
	var l filterList
	for _, f := range filters {
		if err := l.AddFilter(f); err != nil {
			return filterList{}, err
		}
	}
	return l, nil
}

// AndFilter matches when all filters match. An empty list matches every
// node.
type AndFilter struct {
	filterList
}

// NewAndFilter combines filters; nil entries are rejected.
func NewAndFilter(filters ...NodeFilter) (*AndFilter, error) {
	l, err := newFilterList(filters)
	if err != nil {
		return nil, err
	}
	return &AndFilter{l}, nil
}

// Matches reports whether every filter accepts n.
func (f *AndFilter) Matches(n *Node) bool {
	if n == nil {
		return false
	}
	for _, sub := range f.filters {
		if !sub.Matches(n) {
			return false
		}
	}
	return true
}

// OrFilter matches when any filter matches. An empty list matches nothing.
type OrFilter struct {
	filterList
}

// NewOrFilter combines filters; nil entries are rejected.
func NewOrFilter(filters ...NodeFilter) (*OrFilter, error) {
	l, err := newFilterList(filters)
	if err != nil {
		return nil, err
	}
	return &OrFilter{l}, nil
}

// Matches reports whether at least one filter accepts n.
func (f *OrFilter) Matches(n *Node) bool {
	if n == nil {
		return false
	}
	for _, sub := range f.filters {
		if sub.Matches(n) {
			return true
		}
	}
	return false
}

// HasChildrenFilter matches nodes that have (or lack) child items.
type HasChildrenFilter struct{ Expected bool }

func (f HasChildrenFilter) Matches(n *Node) bool {
	return n != nil && n.HasChildNodes() == f.Expected
}

// HasSiblingsFilter matches nodes that have (or lack) siblings.
type HasSiblingsFilter struct{ Expected bool }

func (f HasSiblingsFilter) Matches(n *Node) bool {
	return n != nil && n.HasSiblingNodes() == f.Expected
}

// HasConceptNameFilter matches nodes with (or without) a concept name.
type HasConceptNameFilter struct{ Expected bool }

func (f HasConceptNameFilter) Matches(n *Node) bool {
	return n != nil && n.conceptName.IsEmpty() != f.Expected
}

// ConceptNameFilter matches a concept name by coding scheme and code
// value. The code meaning is ignored.
type ConceptNameFilter struct{ Value CodedEntry }

func (f ConceptNameFilter) Matches(n *Node) bool {
	return n != nil && n.conceptName.Equal(f.Value)
}

// ValueTypeFilter matches one value type.
type ValueTypeFilter struct{ Value types.ValueType }

func (f ValueTypeFilter) Matches(n *Node) bool {
	return n != nil && n.valueType == f.Value
}

// RelationshipTypeFilter matches one relationship type.
type RelationshipTypeFilter struct{ Value types.RelationshipType }

func (f RelationshipTypeFilter) Matches(n *Node) bool {
	return n != nil && n.relationshipType == f.Value
}

// AnnotationFilter matches nodes carrying an equal annotation.
type AnnotationFilter struct{ Value tree.Annotation }

func (f AnnotationFilter) Matches(n *Node) bool {
	return n != nil && n.Annotation().Equal(f.Value)
}

// ObservationDateTimeFilter matches observation date/times within the
// inclusive range [From, To]; an empty bound is open. A node without
// observation date/time only matches the fully open range.
type ObservationDateTimeFilter struct {
	From string
	To   string
}

func (f ObservationDateTimeFilter) Matches(n *Node) bool {
	if n == nil {
		return false
	}
	if n.observationDateTime == "" {
		return f.From == "" && f.To == ""
	}
	t, err := ParseDateTime(n.observationDateTime)
	if err != nil {
		return false
	}
	if f.From != "" {
		from, err := ParseDateTime(f.From)
		if err != nil || t.Before(from) {
			return false
		}
	}
	if f.To != "" {
		to, err := ParseDateTime(f.To)
		if err != nil || t.After(to) {
			return false
		}
	}
	return true
}

// ObservationUIDFilter matches the observation UID exactly.
type ObservationUIDFilter struct{ Value string }

func (f ObservationUIDFilter) Matches(n *Node) bool {
	return n != nil && n.observationUID == f.Value
}

// TemplateIdentificationFilter compares the template triple; the mapping
// resource UID only counts when both sides carry one.
type TemplateIdentificationFilter struct {
	Identifier         string
	MappingResource    string
	MappingResourceUID string
}

func (f TemplateIdentificationFilter) Matches(n *Node) bool {
	return n != nil && n.CompareTemplateIdentification(f.Identifier, f.MappingResource, f.MappingResourceUID)
}
