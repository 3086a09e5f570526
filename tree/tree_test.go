package tree

import "testing"

func treeNames(tr *Tree[*testNode]) []string {
	c := NewCursor(tr.Root())
	return names(&c, true)
}

func TestTree_AddNodeModes(t *testing.T) {
	tr := NewTree[*testNode]()
	if !tr.IsEmpty() || tr.CountNodes() != 0 {
		t.Fatal("new tree should be empty")
	}
	if tr.AddNode(nil, AddBelowCurrent) != 0 {
		t.Error("AddNode(nil) should fail")
	}

	root := newTestNode("root")
	if tr.AddNode(root, AddAfterCurrent) != root.Ident() || tr.Root() != root {
		t.Fatal("first node should become the root")
	}

	tests := []struct {
		name     string
		mode     AddMode
		position string
	}{
		{"c2", AddBelowCurrent, "1.1"},
		{"c4", AddAfterCurrent, "1.2"},
		{"c3", AddBeforeCurrent, "1.2"},
	}
	for _, tt := range tests {
		node := newTestNode(tt.name)
		if tr.AddNode(node, tt.mode) != node.Ident() {
			t.Fatalf("AddNode(%s, %v) failed", tt.name, tt.mode)
		}
		if tr.Position() != tt.position {
			t.Errorf("AddNode(%s, %v) position = %q, want %q", tt.name, tt.mode, tr.Position(), tt.position)
		}
	}

	tr.GotoRoot()
	c1 := newTestNode("c1")
	tr.AddNode(c1, AddBelowCurrentBeforeFirstChild)
	if tr.Position() != "1.1" {
		t.Errorf("position = %q, want 1.1", tr.Position())
	}
	tr.GotoRoot()
	c5 := newTestNode("c5")
	tr.AddNode(c5, AddBelowCurrent)
	if tr.Position() != "1.5" {
		t.Errorf("position = %q, want 1.5", tr.Position())
	}

	want := []string{"root@1", "c1@1.1", "c2@1.2", "c3@1.3", "c4@1.4", "c5@1.5"}
	if got := treeNames(tr); !equalStrings(got, want) {
		t.Errorf("tree = %v, want %v", got, want)
	}
	if c1.Prev() != nil {
		t.Error("first child must not have a previous sibling")
	}
	for n := root.Down(); n.Next() != nil; n = n.Next() {
		if n.Next().Prev() != n {
			t.Errorf("broken back link after %s", n.name)
		}
	}
}

func TestTree_AddBeforeRoot(t *testing.T) {
	tr := NewTree[*testNode]()
	second := newTestNode("second")
	first := newTestNode("first")
	tr.AddNode(second, AddBelowCurrent)
	tr.AddNode(first, AddBeforeCurrent)
	if tr.Root() != first || first.Next() != second || second.Prev() != first {
		t.Error("AddBeforeCurrent on the root should replace the root")
	}
}

func TestTree_RemoveNode(t *testing.T) {
	tests := []struct {
		name        string
		remove      string
		wantCurrent string
		wantPos     string
		want        []string
	}{
		{"with next sibling", "d", "e", "1.1.1", []string{"a@1", "b@1.1", "e@1.1.1", "c@1.2", "f@1.2.1"}},
		{"last sibling", "e", "d", "1.1.1", []string{"a@1", "b@1.1", "d@1.1.1", "c@1.2", "f@1.2.1"}},
		{"only child", "f", "c", "1.2", []string{"a@1", "b@1.1", "d@1.1.1", "e@1.1.2", "c@1.2"}},
		{"subtree", "b", "c", "1.1", []string{"a@1", "c@1.1", "f@1.1.1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, nodes := buildTree(t)
			if tr.GotoNode(nodes[tt.remove].Ident()) == 0 {
				t.Fatalf("GotoNode(%s) failed", tt.remove)
			}
			id := tr.RemoveNode()
			if id != nodes[tt.wantCurrent].Ident() || tr.Position() != tt.wantPos {
				t.Errorf("RemoveNode() moved to %s@%s, want %s@%s", tr.Node().name, tr.Position(), tt.wantCurrent, tt.wantPos)
			}
			if got := treeNames(tr); !equalStrings(got, tt.want) {
				t.Errorf("tree = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTree_RemoveRoot(t *testing.T) {
	tr, _ := buildTree(t)
	if tr.RemoveNode() != 0 {
		t.Error("removing the only root should leave no current node")
	}
	if !tr.IsEmpty() || tr.IsValid() {
		t.Error("tree should be empty")
	}
}

func TestTree_RemoveUnrootedCursor(t *testing.T) {
	tr, nodes := buildTree(t)
	tr.SetCursor(nodes["d"])
	if tr.RemoveNode() != 0 {
		t.Error("RemoveNode() without known parent should fail")
	}
	if tr.CountNodes() != 6 {
		t.Errorf("CountNodes() = %d, want 6", tr.CountNodes())
	}
}

func TestTree_ExtractInsertSubTree(t *testing.T) {
	tr, nodes := buildTree(t)
	tr.GotoNode(nodes["b"].Ident())
	sub := tr.ExtractSubTree()
	if sub != nodes["b"] || sub.Prev() != nil || sub.Next() != nil {
		t.Fatal("ExtractSubTree() should return the detached subtree root")
	}
	if tr.CountNodes() != 3 {
		t.Errorf("CountNodes() = %d, want 3", tr.CountNodes())
	}

	tr.GotoNode(nodes["f"].Ident())
	if tr.InsertSubTree(sub, AddAfterCurrent) != sub.Ident() {
		t.Fatal("InsertSubTree() failed")
	}
	if tr.Position() != "1.1.2" {
		t.Errorf("position = %q, want 1.1.2", tr.Position())
	}
	want := []string{"a@1", "c@1.1", "f@1.1.1", "b@1.1.2", "d@1.1.2.1", "e@1.1.2.2"}
	if got := treeNames(tr); !equalStrings(got, want) {
		t.Errorf("tree = %v, want %v", got, want)
	}
}

func TestTree_InsertChain(t *testing.T) {
	tr, nodes := buildTree(t)
	x := newTestNode("x")
	AppendSibling(x, newTestNode("y"))
	tr.GotoNode(nodes["d"].Ident())
	tr.InsertSubTree(x, AddAfterCurrent)
	want := []string{"a@1", "b@1.1", "d@1.1.1", "x@1.1.2", "y@1.1.3", "e@1.1.4", "c@1.2", "f@1.2.1"}
	if got := treeNames(tr); !equalStrings(got, want) {
		t.Errorf("tree = %v, want %v", got, want)
	}
}

func TestTree_Clear(t *testing.T) {
	tr, _ := buildTree(t)
	tr.Clear()
	if !tr.IsEmpty() || tr.IsValid() || tr.GotoRoot() != 0 {
		t.Error("Clear() should empty the tree")
	}
}

func TestAppendChild(t *testing.T) {
	parent := newTestNode("p")
	a, b := newTestNode("a"), newTestNode("b")
	AppendChild(parent, a)
	AppendChild(parent, b)
	if parent.Down() != a || a.Next() != b || b.Prev() != a {
		t.Error("AppendChild() should keep document order")
	}
	if !HasChildNodes(parent) || HasChildNodes(a) || !HasSiblingNodes(b) || HasSiblingNodes(parent) {
		t.Error("structural queries disagree with links")
	}
	if NodeIdent[*testNode](nil) != 0 {
		t.Error("NodeIdent(nil) should be 0")
	}
	if a.Ident() == 0 || a.Ident() == b.Ident() {
		t.Error("identities must be non-zero and unique")
	}
}

func TestAddMode_String(t *testing.T) {
	if AddBelowCurrent.String() != "below current" || AddMode(42).String() != "invalid" {
		t.Error("unexpected AddMode names")
	}
}

func TestUnlink(t *testing.T) {
	parent := newTestNode("p")
	a, b, c := newTestNode("a"), newTestNode("b"), newTestNode("c")
	AppendChild(parent, a)
	AppendChild(parent, b)
	AppendChild(parent, c)

	tests := []struct {
		node *testNode
		want []*testNode
	}{
		{b, []*testNode{a, c}},
		{a, []*testNode{c}},
		{c, nil},
	}
	for _, tt := range tests {
		if !Unlink(parent, tt.node) {
			t.Fatalf("Unlink(%s) failed", tt.node.name)
		}
		var got []*testNode
		for n := parent.Down(); n != nil; n = n.Next() {
			got = append(got, n)
		}
		if len(got) != len(tt.want) {
			t.Fatalf("after Unlink(%s) %d children, want %d", tt.node.name, len(got), len(tt.want))
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("child %d = %s, want %s", i, got[i].name, tt.want[i].name)
			}
		}
		if len(got) > 0 && got[0].Prev() != nil {
			t.Error("first child has a previous sibling")
		}
	}
	if Unlink(parent, a) {
		t.Error("Unlink() of a detached node should fail")
	}
}

func TestCursor_Ancestor(t *testing.T) {
	tr, nodes := buildTree(t)
	tr.GotoNode(nodes["e"].Ident())
	if tr.Depth() != 2 || tr.Ancestor(0) != nodes["b"] || tr.Ancestor(1) != nodes["a"] || tr.Ancestor(2) != nil {
		t.Error("Ancestor() does not follow the ancestor stack")
	}
}
