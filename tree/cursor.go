package tree

import (
	"strconv"
	"strings"
)

// Traversal customises how a cursor descends and counts positions.
//
// Child returns the node reached by descending from n; nil means the node's
// own first child. Counted reports whether n occupies a position of its own;
// nil means every node is counted. An uncounted node is transparent: moving
// onto it leaves the position unchanged and descending through it does not
// open a new level. It starts at the position its first counted item takes,
// and the counted items on its top level number on in the enclosing level.
type Traversal[T any] struct {
	Child   func(n T) T
	Counted func(n T) bool
}

type frame[T any] struct {
	node        T
	transparent bool
	saved       PositionCounter
}

// Cursor is a navigation handle over a tree of nodes. It never owns nodes.
// The zero value is an invalid cursor. Cursors are copied with Clone.
//
// Navigation never fails loudly: on an invalid cursor or at the edge of the
// tree every method returns 0 or false and leaves the cursor unchanged.
type Cursor[T Node[T]] struct {
	node      T
	stack     []frame[T]
	position  PositionCounter
	traversal Traversal[T]
}

// NewCursor returns a cursor positioned on node at position "1".
func NewCursor[T Node[T]](node T) Cursor[T] {
	var c Cursor[T]
	c.SetCursor(node)
	return c
}

// NewCursorWithTraversal returns a cursor positioned on node that descends
// and counts according to traversal.
func NewCursorWithTraversal[T Node[T]](node T, flags PositionFlags, traversal Traversal[T]) Cursor[T] {
	c := Cursor[T]{traversal: traversal}
	c.position.Initialize(!isNil(node), flags)
	c.node = node
	return c
}

func (c *Cursor[T]) child(n T) T {
	if c.traversal.Child != nil {
		return c.traversal.Child(n)
	}
	return n.links().down
}

func (c *Cursor[T]) counted(n T) bool {
	if c.traversal.Counted != nil {
		return c.traversal.Counted(n)
	}
	return true
}

// weight returns the number of positions n occupies on its level: 1 for a
// counted node, otherwise the number of counted positions on the top level
// of the chain it descends into.
func (c *Cursor[T]) weight(n T) int {
	if c.counted(n) {
		return 1
	}
	w := 0
	for item := c.child(n); !isNil(item); item = item.links().next {
		w += c.weight(item)
	}
	return w
}

// SetCursor moves the cursor to node, discarding its ancestors. The position
// flags are kept.
func (c *Cursor[T]) SetCursor(node T) NodeID {
	c.node = node
	c.stack = nil
	c.position.Initialize(!isNil(node), c.position.Flags())
	return c.NodeID()
}

// Clear resets the cursor to the invalid state.
func (c *Cursor[T]) Clear() {
	var zero T
	c.node = zero
	c.stack = nil
	c.position.Clear()
}

// Clone returns an independent copy sharing the same nodes.
func (c *Cursor[T]) Clone() Cursor[T] {
	clone := *c
	clone.stack = append([]frame[T](nil), c.stack...)
	clone.position = c.position.Clone()
	return clone
}

// Swap exchanges the state of both cursors.
func (c *Cursor[T]) Swap(other *Cursor[T]) {
	*c, *other = *other, *c
}

// IsValid reports whether the cursor points to a node.
func (c *Cursor[T]) IsValid() bool {
	return !isNil(c.node)
}

// Node returns the current node.
func (c *Cursor[T]) Node() T {
	return c.node
}

// NodeID returns the identity of the current node, or 0.
func (c *Cursor[T]) NodeID() NodeID {
	return NodeIdent(c.node)
}

// Parent returns the node the cursor descended from.
func (c *Cursor[T]) Parent() T {
	if len(c.stack) == 0 {
		var zero T
		return zero
	}
	return c.stack[len(c.stack)-1].node
}

// Ancestor returns the i-th node on the ancestor stack, 0 being the parent.
func (c *Cursor[T]) Ancestor(i int) T {
	if i < 0 || i >= len(c.stack) {
		var zero T
		return zero
	}
	return c.stack[len(c.stack)-1-i].node
}

// Depth returns the number of nodes on the ancestor stack.
func (c *Cursor[T]) Depth() int {
	return len(c.stack)
}

// ChildNode returns the node GoDown would move to.
func (c *Cursor[T]) ChildNode() T {
	if !c.IsValid() {
		var zero T
		return zero
	}
	return c.child(c.node)
}

// CountChildNodes counts the direct children of the current node, or all
// of its descendants if deep is set.
func (c *Cursor[T]) CountChildNodes(deep bool) int {
	child := c.ChildNode()
	if isNil(child) {
		return 0
	}
	sub := NewCursorWithTraversal(child, c.position.Flags(), c.traversal)
	count := 0
	for {
		count++
		if sub.Iterate(deep) == 0 {
			break
		}
	}
	return count
}

// HasParent reports whether GoUp would succeed.
func (c *Cursor[T]) HasParent() bool {
	return c.IsValid() && len(c.stack) > 0
}

// HasChildren reports whether GoDown would succeed.
func (c *Cursor[T]) HasChildren() bool {
	return !isNil(c.ChildNode())
}

// HasPrevious reports whether the current node has a previous sibling.
func (c *Cursor[T]) HasPrevious() bool {
	return c.IsValid() && !isNil(c.node.links().prev)
}

// HasNext reports whether the current node has a next sibling.
func (c *Cursor[T]) HasNext() bool {
	return c.IsValid() && !isNil(c.node.links().next)
}

// HasSiblings reports whether the current node has any sibling.
func (c *Cursor[T]) HasSiblings() bool {
	return c.HasPrevious() || c.HasNext()
}

// GotoPrevious moves to the previous sibling.
func (c *Cursor[T]) GotoPrevious() NodeID {
	if !c.HasPrevious() {
		return 0
	}
	c.node = c.node.links().prev
	for w := c.weight(c.node); w > 0; w-- {
		c.position.Decrement()
	}
	return c.NodeID()
}

// GotoNext moves to the next sibling.
func (c *Cursor[T]) GotoNext() NodeID {
	if !c.HasNext() {
		return 0
	}
	for w := c.weight(c.node); w > 0; w-- {
		c.position.Increment()
	}
	c.node = c.node.links().next
	return c.NodeID()
}

// GotoFirst moves to the first sibling on the current level.
func (c *Cursor[T]) GotoFirst() NodeID {
	if !c.IsValid() {
		return 0
	}
	for c.GotoPrevious() != 0 {
	}
	return c.NodeID()
}

// GotoLast moves to the last sibling on the current level.
func (c *Cursor[T]) GotoLast() NodeID {
	if !c.IsValid() {
		return 0
	}
	for c.GotoNext() != 0 {
	}
	return c.NodeID()
}

// GoUp returns to the node the cursor last descended from.
func (c *Cursor[T]) GoUp() NodeID {
	if !c.HasParent() {
		return 0
	}
	f := c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
	c.node = f.node
	if f.transparent {
		c.position = f.saved.Clone()
	} else {
		c.position.Ascend()
	}
	return c.NodeID()
}

// GoDown moves to the first child of the current node.
func (c *Cursor[T]) GoDown() NodeID {
	child := c.ChildNode()
	if isNil(child) {
		return 0
	}
	c.descendTo(child)
	return c.NodeID()
}

func (c *Cursor[T]) descendTo(child T) {
	if c.counted(c.node) {
		c.stack = append(c.stack, frame[T]{node: c.node})
		c.position.Descend()
	} else {
		// the first item inside starts where the transparent node does
		c.stack = append(c.stack, frame[T]{node: c.node, transparent: true, saved: c.position.Clone()})
	}
	c.node = child
}

// Iterate moves to the next node in pre-order if deep is set, otherwise to
// the next sibling. It returns 0 when the traversal is exhausted; a deep
// traversal then leaves the cursor invalid.
func (c *Cursor[T]) Iterate(deep bool) NodeID {
	if !c.IsValid() {
		return 0
	}
	if deep {
		if child := c.child(c.node); !isNil(child) {
			c.descendTo(child)
			return c.NodeID()
		}
	}
	if c.HasNext() {
		return c.GotoNext()
	}
	if deep && len(c.stack) > 0 {
		for {
			if len(c.stack) == 0 {
				var zero T
				c.node = zero
				return 0
			}
			f := c.stack[len(c.stack)-1]
			c.stack = c.stack[:len(c.stack)-1]
			c.node = f.node
			if f.transparent {
				c.position = f.saved
			} else {
				c.position.Ascend()
			}
			if c.HasNext() {
				return c.GotoNext()
			}
		}
	}
	return 0
}

// GotoMatch searches forward in pre-order, starting with the current node,
// for a node satisfying match.
func (c *Cursor[T]) GotoMatch(match func(T) bool, deep bool) NodeID {
	for c.IsValid() {
		if match(c.node) {
			return c.NodeID()
		}
		if c.Iterate(deep) == 0 {
			break
		}
	}
	return 0
}

// GotoNode searches forward from the current node for the node with the
// given identity. It does not restart at the root.
func (c *Cursor[T]) GotoNode(id NodeID) NodeID {
	if id == 0 {
		return 0
	}
	return c.GotoMatch(func(n T) bool { return n.links().ident == id }, true)
}

// GotoAnnotation searches forward from the current node for a node carrying
// the given annotation.
func (c *Cursor[T]) GotoAnnotation(a Annotation) NodeID {
	return c.GotoMatch(func(n T) bool { return n.links().annotation.Equal(a) }, true)
}

// GotoNodePosition follows a position string such as "1.2.3", relative to
// the current node: the first segment selects a sibling on the current level
// and every further segment descends one level. Segments count positions,
// so a position inside a transparent node is reached through it.
func (c *Cursor[T]) GotoNodePosition(position, sep string) NodeID {
	if !c.IsValid() || position == "" {
		return 0
	}
	if sep == "" {
		sep = "."
	}
	var id NodeID
	for i, segment := range strings.Split(position, sep) {
		index, err := strconv.Atoi(segment)
		if err != nil || index < 1 {
			return 0
		}
		if i > 0 && c.GoDown() == 0 {
			return 0
		}
		if id = c.seek(c.position.Position() + index - 1); id == 0 {
			return 0
		}
	}
	return id
}

// seek moves forward on the current level to the counted node at target,
// descending into transparent nodes that span it.
func (c *Cursor[T]) seek(target int) NodeID {
	for c.IsValid() {
		pos := c.position.Position()
		if c.counted(c.node) {
			if pos == target {
				return c.NodeID()
			}
			if pos > target {
				return 0
			}
		} else if target < pos+c.weight(c.node) {
			c.descendTo(c.child(c.node))
			continue
		}
		if c.GotoNext() == 0 {
			return 0
		}
	}
	return 0
}

// Position returns the dotted position of the current node, e.g. "1.2.3",
// or "" for an invalid cursor.
func (c *Cursor[T]) Position() string {
	return c.PositionSep(".")
}

// PositionSep is Position with a custom separator.
func (c *Cursor[T]) PositionSep(sep string) string {
	if !c.IsValid() {
		return ""
	}
	return c.position.Format(sep)
}

// PositionCounter returns a copy of the cursor's position counter.
func (c *Cursor[T]) PositionCounter() PositionCounter {
	return c.position.Clone()
}

// Level returns the depth of the current node, starting at 1.
func (c *Cursor[T]) Level() int {
	if !c.IsValid() {
		return 0
	}
	return c.position.Level()
}
