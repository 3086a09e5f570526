// Package tree provides the intrusive tree used by SR documents: nodes with
// stable identities, a position counter and a generic cursor that navigates
// and mutates the node graph.
package tree

import "sync/atomic"

// NodeID identifies a node for its whole lifetime. Zero means "no node".
type NodeID uint64

var lastNodeID atomic.Uint64

// NextNodeID returns a fresh identity. Identities are never reused.
func NextNodeID() NodeID {
	return NodeID(lastNodeID.Add(1))
}

// Links is the link block embedded by every node type of a tree.
//
// A node owns its first child (down) and its next sibling (next); prev is a
// back reference used for navigation only. Domain types embed Links with a
// pointer to themselves as type parameter:
//
//	type Item struct {
//		tree.Links[*Item]
//		Name string
//	}
//
//	item := &Item{Links: tree.NewLinks[*Item](), Name: "a"}
type Links[T any] struct {
	next       T
	prev       T
	down       T
	ident      NodeID
	annotation Annotation
}

// NewLinks returns an unlinked block with a newly assigned identity.
func NewLinks[T any]() Links[T] {
	return Links[T]{ident: NextNodeID()}
}

func (l *Links[T]) links() *Links[T] {
	return l
}

// Next returns the next sibling.
func (l *Links[T]) Next() T { return l.next }

// Prev returns the previous sibling.
func (l *Links[T]) Prev() T { return l.prev }

// Down returns the first child.
func (l *Links[T]) Down() T { return l.down }

// Ident returns the identity assigned at construction.
func (l *Links[T]) Ident() NodeID { return l.ident }

// Annotation returns the node's annotation.
func (l *Links[T]) Annotation() Annotation { return l.annotation }

// SetAnnotation replaces the node's annotation.
func (l *Links[T]) SetAnnotation(a Annotation) { l.annotation = a }

// Node is the constraint satisfied by pointers to types embedding Links.
type Node[T any] interface {
	comparable
	links() *Links[T]
}

func isNil[T comparable](n T) bool {
	var zero T
	return n == zero
}

// NodeIdent returns the identity of n, or 0 for a nil node.
func NodeIdent[T Node[T]](n T) NodeID {
	if isNil(n) {
		return 0
	}
	return n.links().ident
}

// AppendChild links child (and the sibling chain following it) as the last
// child of parent. child must not be linked to a previous sibling.
func AppendChild[T Node[T]](parent, child T) {
	if isNil(parent) || isNil(child) {
		return
	}
	p := parent.links()
	if isNil(p.down) {
		p.down = child
		child.links().prev = *new(T)
		return
	}
	last := p.down
	for !isNil(last.links().next) {
		last = last.links().next
	}
	last.links().next = child
	child.links().prev = last
}

// AppendSibling links node after the last sibling of first and returns node.
func AppendSibling[T Node[T]](first, node T) T {
	if isNil(first) {
		return node
	}
	last := first
	for !isNil(last.links().next) {
		last = last.links().next
	}
	last.links().next = node
	if !isNil(node) {
		node.links().prev = last
	}
	return node
}

// HasChildNodes reports whether n has a first child.
func HasChildNodes[T Node[T]](n T) bool {
	return !isNil(n) && !isNil(n.links().down)
}

// HasSiblingNodes reports whether n has a previous or a next sibling.
func HasSiblingNodes[T Node[T]](n T) bool {
	if isNil(n) {
		return false
	}
	l := n.links()
	return !isNil(l.prev) || !isNil(l.next)
}

// Unlink removes child, together with its subtree, from the children of
// parent. It reports whether child was found.
func Unlink[T Node[T]](parent, child T) bool {
	if isNil(parent) || isNil(child) {
		return false
	}
	var zero T
	p, c := parent.links(), child.links()
	found := false
	for n := p.down; !isNil(n); n = n.links().next {
		if n == child {
			found = true
			break
		}
	}
	if !found {
		return false
	}
	if isNil(c.prev) {
		p.down = c.next
	} else {
		c.prev.links().next = c.next
	}
	if !isNil(c.next) {
		c.next.links().prev = c.prev
	}
	c.prev = zero
	c.next = zero
	return true
}
