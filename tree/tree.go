package tree

// AddMode selects where AddNode and InsertSubTree link new nodes relative to
// the current node.
type AddMode int

const (
	// AddAfterCurrent links the node as next sibling of the current node.
	AddAfterCurrent AddMode = iota
	// AddBeforeCurrent links the node as previous sibling of the current node.
	AddBeforeCurrent
	// AddBelowCurrent links the node as last child of the current node.
	AddBelowCurrent
	// AddBelowCurrentBeforeFirstChild links the node as first child of the
	// current node.
	AddBelowCurrentBeforeFirstChild
)

func (m AddMode) String() string {
	switch m {
	case AddAfterCurrent:
		return "after current"
	case AddBeforeCurrent:
		return "before current"
	case AddBelowCurrent:
		return "below current"
	case AddBelowCurrentBeforeFirstChild:
		return "below current before first child"
	default:
		return "invalid"
	}
}

// Tree owns a node graph and mutates it through its embedded cursor.
//
// Structural changes are only consistent when the cursor reached the current
// node by navigating from the root. Other cursors over the same tree are not
// updated and must be repositioned by the caller after a mutation.
type Tree[T Node[T]] struct {
	Cursor[T]
	root T
}

// NewTree returns an empty tree.
func NewTree[T Node[T]]() *Tree[T] {
	return &Tree[T]{}
}

// Root returns the first top-level node.
func (t *Tree[T]) Root() T {
	return t.root
}

// IsEmpty reports whether the tree has no nodes.
func (t *Tree[T]) IsEmpty() bool {
	return isNil(t.root)
}

// Clear drops all nodes and invalidates the cursor.
func (t *Tree[T]) Clear() {
	var zero T
	t.root = zero
	t.Cursor.Clear()
}

// GotoRoot moves the cursor to the root node.
func (t *Tree[T]) GotoRoot() NodeID {
	return t.SetCursor(t.root)
}

// CountNodes returns the number of nodes in the tree.
func (t *Tree[T]) CountNodes() int {
	if t.IsEmpty() {
		return 0
	}
	cursor := NewCursor(t.root)
	count := 0
	for {
		count++
		if cursor.Iterate(true) == 0 {
			break
		}
	}
	return count
}

// AddNode links node, together with the siblings chained after it, into the
// tree and moves the cursor to it. An empty tree accepts the node as root
// regardless of mode. It returns 0 if the node could not be added.
func (t *Tree[T]) AddNode(node T, mode AddMode) NodeID {
	if isNil(node) {
		return 0
	}
	var zero T
	n := node.links()
	last := node
	for !isNil(last.links().next) {
		last = last.links().next
	}

	if !t.IsValid() {
		if !t.IsEmpty() {
			return 0
		}
		n.prev = zero
		t.root = node
		t.SetCursor(node)
		return n.ident
	}

	cur := t.node.links()
	switch mode {
	case AddAfterCurrent:
		next := cur.next
		n.prev = t.node
		last.links().next = next
		if !isNil(next) {
			next.links().prev = last
		}
		cur.next = node
		t.position.Increment()
	case AddBeforeCurrent:
		prev := cur.prev
		switch {
		case !isNil(prev):
			prev.links().next = node
		case len(t.stack) > 0:
			t.Parent().links().down = node
		case t.node == t.root:
			t.root = node
		default:
			return 0
		}
		n.prev = prev
		last.links().next = t.node
		cur.prev = last
	case AddBelowCurrent:
		t.stack = append(t.stack, frame[T]{node: t.node})
		t.position.Descend()
		if child := cur.down; !isNil(child) {
			for !isNil(child.links().next) {
				child = child.links().next
				t.position.Increment()
			}
			child.links().next = node
			n.prev = child
			t.position.Increment()
		} else {
			n.prev = zero
			cur.down = node
		}
	case AddBelowCurrentBeforeFirstChild:
		t.stack = append(t.stack, frame[T]{node: t.node})
		t.position.Descend()
		if child := cur.down; !isNil(child) {
			last.links().next = child
			child.links().prev = last
		}
		n.prev = zero
		cur.down = node
	default:
		return 0
	}
	t.node = node
	return n.ident
}

// InsertSubTree links a detached subtree (its root and the root's following
// siblings) and moves the cursor to root.
func (t *Tree[T]) InsertSubTree(root T, mode AddMode) NodeID {
	return t.AddNode(root, mode)
}

// RemoveNode unlinks the current node and its subtree. The cursor moves to
// the next sibling, else the previous sibling, else the parent. It returns
// the identity of the new current node, or 0.
func (t *Tree[T]) RemoveNode() NodeID {
	if isNil(t.detach()) {
		return 0
	}
	return t.NodeID()
}

// ExtractSubTree unlinks the current node and its subtree and returns it.
// The cursor moves as with RemoveNode.
func (t *Tree[T]) ExtractSubTree() T {
	return t.detach()
}

func (t *Tree[T]) detach() T {
	var zero T
	if !t.IsValid() {
		return zero
	}
	node := t.node
	l := node.links()
	prev, next := l.prev, l.next

	switch {
	case !isNil(prev):
		prev.links().next = next
	case len(t.stack) > 0:
		t.Parent().links().down = next
	case node == t.root:
		t.root = next
	default:
		// cursor was not positioned from the root, the parent is unknown
		return zero
	}

	switch {
	case !isNil(next):
		next.links().prev = prev
		t.node = next
	case !isNil(prev):
		t.node = prev
		t.position.Decrement()
	case len(t.stack) > 0:
		t.GoUp()
	default:
		t.node = zero
		t.position.Initialize(false, t.position.Flags())
	}

	l.prev = zero
	l.next = zero
	return node
}
