package tree

import (
	"testing"
)

type testNode struct {
	Links[*testNode]
	name     string
	include  *testNode
	included bool
}

func newTestNode(name string) *testNode {
	return &testNode{Links: NewLinks[*testNode](), name: name}
}

// buildTree creates
//
//	a
//	├── b
//	│   ├── d
//	│   └── e
//	└── c
//	    └── f
func buildTree(t *testing.T) (*Tree[*testNode], map[string]*testNode) {
	t.Helper()
	nodes := map[string]*testNode{}
	for _, name := range []string{"a", "b", "c", "d", "e", "f"} {
		nodes[name] = newTestNode(name)
	}
	tr := NewTree[*testNode]()
	steps := []struct {
		name string
		mode AddMode
	}{
		{"a", AddBelowCurrent},
		{"b", AddBelowCurrent},
		{"d", AddBelowCurrent},
		{"e", AddAfterCurrent},
	}
	for _, step := range steps {
		if tr.AddNode(nodes[step.name], step.mode) == 0 {
			t.Fatalf("AddNode(%s) failed", step.name)
		}
	}
	tr.GoUp()
	tr.AddNode(nodes["c"], AddAfterCurrent)
	tr.AddNode(nodes["f"], AddBelowCurrent)
	tr.GotoRoot()
	return tr, nodes
}

func names(c *Cursor[*testNode], deep bool) []string {
	var out []string
	for c.IsValid() {
		out = append(out, c.Node().name+"@"+c.Position())
		if c.Iterate(deep) == 0 {
			break
		}
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestCursor_ZeroValue(t *testing.T) {
	var c Cursor[*testNode]
	if c.IsValid() {
		t.Fatal("zero cursor should be invalid")
	}
	checks := []struct {
		name string
		got  NodeID
	}{
		{"GotoNext", c.GotoNext()},
		{"GotoPrevious", c.GotoPrevious()},
		{"GotoFirst", c.GotoFirst()},
		{"GotoLast", c.GotoLast()},
		{"GoUp", c.GoUp()},
		{"GoDown", c.GoDown()},
		{"Iterate", c.Iterate(true)},
		{"GotoNodePosition", c.GotoNodePosition("1", ".")},
	}
	for _, check := range checks {
		if check.got != 0 {
			t.Errorf("%s() = %d, want 0", check.name, check.got)
		}
	}
	if c.Position() != "" || c.Level() != 0 || c.CountChildNodes(true) != 0 {
		t.Error("invalid cursor should report empty position, level 0 and no children")
	}
}

func TestCursor_DeepTraversal(t *testing.T) {
	tr, _ := buildTree(t)
	c := NewCursor(tr.Root())

	got := names(&c, true)
	want := []string{"a@1", "b@1.1", "d@1.1.1", "e@1.1.2", "c@1.2", "f@1.2.1"}
	if !equalStrings(got, want) {
		t.Errorf("deep traversal = %v, want %v", got, want)
	}
	if c.IsValid() {
		t.Error("cursor should be invalid after exhausted deep traversal")
	}
	if tr.CountNodes() != 6 {
		t.Errorf("CountNodes() = %d, want 6", tr.CountNodes())
	}
}

func TestCursor_ShallowTraversal(t *testing.T) {
	tr, _ := buildTree(t)
	tr.GoDown()
	c := tr.Clone()

	got := names(&c, false)
	want := []string{"b@1.1", "c@1.2"}
	if !equalStrings(got, want) {
		t.Errorf("shallow traversal = %v, want %v", got, want)
	}
	if !c.IsValid() || c.Node().name != "c" {
		t.Error("shallow traversal should stay on the last sibling")
	}
}

func TestCursor_CountChildNodes(t *testing.T) {
	tr, _ := buildTree(t)
	tests := []struct {
		deep bool
		want int
	}{
		{false, 2},
		{true, 5},
	}
	for _, tt := range tests {
		if got := tr.CountChildNodes(tt.deep); got != tt.want {
			t.Errorf("CountChildNodes(%v) = %d, want %d", tt.deep, got, tt.want)
		}
	}
}

func TestCursor_SiblingNavigation(t *testing.T) {
	tr, nodes := buildTree(t)
	tr.GoDown()
	tr.GoDown()

	if !tr.HasParent() || !tr.HasNext() || tr.HasPrevious() || !tr.HasSiblings() {
		t.Error("unexpected structure at d")
	}
	if tr.GotoPrevious() != 0 {
		t.Error("GotoPrevious() at first sibling should fail")
	}
	if id := tr.GotoLast(); id != nodes["e"].Ident() || tr.Position() != "1.1.2" {
		t.Errorf("GotoLast() = %d at %q", id, tr.Position())
	}
	if tr.GotoNext() != 0 || tr.Node() != nodes["e"] {
		t.Error("GotoNext() at last sibling should fail without moving")
	}
	if id := tr.GotoFirst(); id != nodes["d"].Ident() || tr.Position() != "1.1.1" {
		t.Errorf("GotoFirst() = %d at %q", id, tr.Position())
	}
	if tr.Parent() != nodes["b"] {
		t.Errorf("Parent() = %v, want b", tr.Parent().name)
	}
	if tr.GoUp() != nodes["b"].Ident() || tr.GoUp() != nodes["a"].Ident() || tr.GoUp() != 0 {
		t.Error("GoUp() chain failed")
	}
	if tr.Level() != 1 {
		t.Errorf("Level() = %d, want 1", tr.Level())
	}
}

func TestCursor_DownUpInverse(t *testing.T) {
	tr, _ := buildTree(t)
	c := NewCursor(tr.Root())
	for c.IsValid() {
		if c.HasChildren() {
			other := c.Clone()
			id, pos := other.NodeID(), other.Position()
			other.GoDown()
			other.GoUp()
			if other.NodeID() != id || other.Position() != pos {
				t.Errorf("GoDown/GoUp at %s gave %d@%s", pos, other.NodeID(), other.Position())
			}
		}
		if c.Iterate(true) == 0 {
			break
		}
	}
}

func TestCursor_GotoNodePosition(t *testing.T) {
	tr, nodes := buildTree(t)
	tests := []struct {
		position string
		sep      string
		want     *testNode
	}{
		{"1", ".", nodes["a"]},
		{"1.1", ".", nodes["b"]},
		{"1.1.2", ".", nodes["e"]},
		{"1/2/1", "/", nodes["f"]},
		{"1.3", ".", nil},
		{"1.0", ".", nil},
		{"1.x", ".", nil},
		{"1.2.1.1", ".", nil},
	}
	for _, tt := range tests {
		t.Run(tt.position, func(t *testing.T) {
			c := NewCursor(tr.Root())
			id := c.GotoNodePosition(tt.position, tt.sep)
			if tt.want == nil {
				if id != 0 {
					t.Errorf("GotoNodePosition(%q) = %d, want 0", tt.position, id)
				}
				return
			}
			if id != tt.want.Ident() {
				t.Errorf("GotoNodePosition(%q) = %d, want %d", tt.position, id, tt.want.Ident())
			}
		})
	}
}

func TestCursor_PositionRoundTrip(t *testing.T) {
	tr, _ := buildTree(t)
	c := NewCursor(tr.Root())
	for c.IsValid() {
		other := NewCursor(tr.Root())
		if other.GotoNodePosition(c.Position(), ".") != c.NodeID() {
			t.Errorf("position %q does not lead back to node %d", c.Position(), c.NodeID())
		}
		if c.Iterate(true) == 0 {
			break
		}
	}
}

func TestCursor_GotoNodeSearchesForward(t *testing.T) {
	tr, nodes := buildTree(t)
	c := NewCursor(tr.Root())
	if c.GotoNode(nodes["e"].Ident()) != nodes["e"].Ident() || c.Position() != "1.1.2" {
		t.Fatalf("GotoNode(e) ended at %q", c.Position())
	}
	// b lies behind the cursor
	if c.GotoNode(nodes["b"].Ident()) != 0 {
		t.Error("GotoNode() should not restart at the root")
	}
	if c.GotoNode(0) != 0 {
		t.Error("GotoNode(0) should fail")
	}
}

func TestCursor_GotoAnnotation(t *testing.T) {
	tr, nodes := buildTree(t)
	nodes["f"].SetAnnotation(NewAnnotation("target"))
	c := NewCursor(tr.Root())
	if c.GotoAnnotation(NewAnnotation("target")) != nodes["f"].Ident() {
		t.Errorf("GotoAnnotation() ended at %q", c.Position())
	}
}

func TestCursor_CloneAndSwap(t *testing.T) {
	tr, nodes := buildTree(t)
	tr.GoDown()
	tr.GoDown()
	clone := tr.Clone()
	clone.GoUp()
	clone.GotoNext()
	if tr.Node() != nodes["d"] || tr.Position() != "1.1.1" {
		t.Errorf("original moved to %q", tr.Position())
	}
	if clone.Node() != nodes["c"] || clone.Position() != "1.2" {
		t.Errorf("clone at %q, want 1.2", clone.Position())
	}

	other := NewCursor(nodes["f"])
	clone.Swap(&other)
	if clone.Node() != nodes["f"] || other.Node() != nodes["c"] {
		t.Error("Swap() did not exchange cursors")
	}
}

func TestCursor_IdentityStable(t *testing.T) {
	tr, nodes := buildTree(t)
	before := nodes["e"].Ident()
	tr.GotoNode(nodes["d"].Ident())
	tr.RemoveNode()
	if nodes["e"].Ident() != before {
		t.Error("identity changed after structural change")
	}
}

// included template traversal: the node "t" splices in the chain x, y.
func includedTraversal() Traversal[*testNode] {
	return Traversal[*testNode]{
		Child: func(n *testNode) *testNode {
			if n.included {
				return n.include
			}
			return n.Down()
		},
		Counted: func(n *testNode) bool { return !n.included },
	}
}

func buildIncluded(t *testing.T, first bool) *testNode {
	t.Helper()
	root := newTestNode("r")
	p := newTestNode("p")
	q := newTestNode("q")
	tmpl := newTestNode("t")
	tmpl.included = true
	tmpl.include = newTestNode("x")
	AppendSibling(tmpl.include, newTestNode("y"))
	if first {
		AppendChild(root, tmpl)
		AppendChild(root, q)
	} else {
		AppendChild(root, p)
		AppendChild(root, tmpl)
		AppendChild(root, q)
	}
	return root
}

func TestCursor_TransparentNodes(t *testing.T) {
	tests := []struct {
		name  string
		first bool
		want  []string
	}{
		{"middle", false, []string{"r@1", "p@1.1", "t@1.2", "x@1.2", "y@1.3", "q@1.4"}},
		{"first", true, []string{"r@1", "t@1.1", "x@1.1", "y@1.2", "q@1.3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := buildIncluded(t, tt.first)
			c := NewCursorWithTraversal(root, 0, includedTraversal())
			got := names(&c, true)
			if !equalStrings(got, tt.want) {
				t.Errorf("traversal = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCursor_TransparentGoUpRestores(t *testing.T) {
	root := buildIncluded(t, false)
	c := NewCursorWithTraversal(root, 0, includedTraversal())
	c.GoDown()
	c.GotoNext()
	if c.Node().name != "t" || c.Position() != "1.2" {
		t.Fatalf("at %s@%s, want t@1.2", c.Node().name, c.Position())
	}
	if c.CountChildNodes(false) != 2 {
		t.Errorf("CountChildNodes(false) = %d, want 2", c.CountChildNodes(false))
	}
	c.GoDown()
	c.GotoNext()
	if c.Node().name != "y" || c.Position() != "1.3" || c.Level() != 2 {
		t.Errorf("at %s@%s level %d, want y@1.3 level 2", c.Node().name, c.Position(), c.Level())
	}
	c.GoUp()
	if c.Node().name != "t" || c.Position() != "1.2" {
		t.Errorf("GoUp() gave %s@%s, want t@1.2", c.Node().name, c.Position())
	}
	c.GotoNext()
	if c.Node().name != "q" || c.Position() != "1.4" {
		t.Errorf("GotoNext() gave %s@%s, want q@1.4", c.Node().name, c.Position())
	}
	c.GotoPrevious()
	if c.Node().name != "t" || c.Position() != "1.2" {
		t.Errorf("GotoPrevious() gave %s@%s, want t@1.2", c.Node().name, c.Position())
	}
}

func TestCursor_TransparentPositionsAgree(t *testing.T) {
	root := buildIncluded(t, false)

	// every route to q must report the same position
	iterated := NewCursorWithTraversal(root, 0, includedTraversal())
	for iterated.IsValid() && iterated.Node().name != "q" {
		iterated.Iterate(true)
	}
	stepped := NewCursorWithTraversal(root, 0, includedTraversal())
	stepped.GoDown()
	stepped.GotoLast()
	through := NewCursorWithTraversal(root, 0, includedTraversal())
	through.GoDown()
	through.GotoNext()
	through.GoDown()
	through.GoUp()
	through.GotoNext()

	for name, c := range map[string]*Cursor[*testNode]{"Iterate": &iterated, "GotoLast": &stepped, "GoDown/GoUp": &through} {
		if c.Node() != root.Down().Next().Next() || c.Position() != "1.4" {
			t.Errorf("%s: at %v@%s, want q@1.4", name, c.Node(), c.Position())
		}
	}
}

func TestCursor_TransparentGotoNodePosition(t *testing.T) {
	tests := []struct {
		position string
		want     string
	}{
		{"1", "r"},
		{"1.1", "p"},
		{"1.2", "x"},
		{"1.3", "y"},
		{"1.4", "q"},
		{"1.5", ""},
	}
	for _, tt := range tests {
		t.Run(tt.position, func(t *testing.T) {
			c := NewCursorWithTraversal(buildIncluded(t, false), 0, includedTraversal())
			id := c.GotoNodePosition(tt.position, ".")
			if tt.want == "" {
				if id != 0 {
					t.Errorf("GotoNodePosition(%q) = %d, want 0", tt.position, id)
				}
				return
			}
			if id == 0 || c.Node().name != tt.want {
				t.Fatalf("GotoNodePosition(%q) = %d, want node %s", tt.position, id, tt.want)
			}
			if c.Position() != tt.position {
				t.Errorf("Position() = %q, want %q", c.Position(), tt.position)
			}
		})
	}
}
