package main

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/caio-sobreiro/dicomsr/sr"
	"github.com/caio-sobreiro/dicomsr/tree"
	"github.com/caio-sobreiro/dicomsr/types"
)

var errQuit = errors.New("quit requested")

// navigator moves a cursor through a document tree on behalf of an
// interactive session.
type navigator struct {
	doc   *sr.DocumentTree
	out   io.Writer
	flags sr.PrintFlags

	// last value type searched for, repeated by "next-match"
	search types.ValueType
}

func newNavigator(doc *sr.DocumentTree, out io.Writer, flags sr.PrintFlags) *navigator {
	doc.GotoRoot()
	return &navigator{doc: doc, out: out, flags: flags}
}

// prompt shows the position of the current item.
func (n *navigator) prompt() string {
	return "dsr " + n.doc.Position() + "> "
}

func parseArgs(input string) []string {
	var args []string
	var current strings.Builder
	inQuotes := false

	for _, char := range input {
		switch char {
		case '"':
			inQuotes = !inQuotes
		case ' ', '\t':
			if inQuotes {
				current.WriteRune(char)
			} else if current.Len() > 0 {
				args = append(args, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(char)
		}
	}
	if current.Len() > 0 {
		args = append(args, current.String())
	}
	return args
}

func (n *navigator) execute(line string) error {
	args := parseArgs(strings.TrimSpace(line))
	if len(args) == 0 {
		return nil
	}

	switch args[0] {
	case "show", "s":
		n.show()
		return nil
	case "down", "d":
		return n.move(n.doc.GoDown(), "no child items")
	case "up", "u":
		return n.move(n.doc.GoUp(), "already at the top")
	case "next", "n":
		return n.move(n.doc.GotoNext(), "no next sibling")
	case "prev", "p":
		return n.move(n.doc.GotoPrevious(), "no previous sibling")
	case "first":
		return n.move(n.doc.GotoFirst(), "no siblings")
	case "last":
		return n.move(n.doc.GotoLast(), "no siblings")
	case "root":
		return n.move(n.doc.GotoRoot(), "empty document")
	case "goto", "g":
		return n.handleGoto(args[1:])
	case "find", "f":
		return n.handleFind(args[1:])
	case "next-match":
		if n.search == types.ValueTypeInvalid {
			return errors.New("no search active")
		}
		return n.move(n.doc.GotoNextMatchingNode(sr.ValueTypeFilter{Value: n.search}, true), "no further match")
	case "pos":
		fmt.Fprintf(n.out, "%s (level %d, node %d)\n", n.doc.Position(), n.doc.Level(), n.doc.NodeID())
		return nil
	case "count":
		deep := len(args) > 1 && args[1] == "deep"
		fmt.Fprintln(n.out, n.doc.CountChildNodes(deep))
		return nil
	case "print":
		return n.doc.Print(n.out, n.flags)
	case "help", "?":
		n.printHelp()
		return nil
	case "quit", "exit", "q":
		return errQuit
	}
	return fmt.Errorf("unknown command: %s", args[0])
}

func (n *navigator) move(id tree.NodeID, failure string) error {
	if id == 0 {
		return errors.New(failure)
	}
	n.show()
	return nil
}

func (n *navigator) show() {
	node := n.doc.CurrentContentItem()
	if node == nil {
		fmt.Fprintln(n.out, "(empty)")
		return
	}
	line := n.doc.Position() + "  " + node.String()
	if c := node.Content(); c != nil {
		if value := c.String(); value != "" {
			line += " = " + value
		}
	}
	if node.HasChildNodes() {
		line += fmt.Sprintf("  [%d children]", n.doc.CountChildNodes(false))
	}
	fmt.Fprintln(n.out, line)
}

// handleGoto accepts a position such as 1.2.3 or a node id written as #7.
func (n *navigator) handleGoto(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: goto <position|#id>")
	}
	saved := n.doc.Cursor.Clone()
	n.doc.GotoRoot()

	var id tree.NodeID
	if rest, ok := strings.CutPrefix(args[0], "#"); ok {
		v, err := strconv.ParseUint(rest, 10, 64)
		if err != nil {
			n.doc.Cursor = saved
			return fmt.Errorf("invalid node id %q", rest)
		}
		id = n.doc.GotoNode(tree.NodeID(v))
	} else {
		id = n.doc.GotoNodePosition(args[0], ".")
	}
	if id == 0 {
		n.doc.Cursor = saved
		return fmt.Errorf("no content item at %s", args[0])
	}
	n.show()
	return nil
}

// handleFind searches the whole document for the first item of a value
// type, e.g. "find CODE".
func (n *navigator) handleFind(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: find <value type>")
	}
	vt := types.ValueTypeFromDefinedTerm(strings.ToUpper(args[0]))
	if vt == types.ValueTypeInvalid {
		return fmt.Errorf("unknown value type %q", args[0])
	}
	saved := n.doc.Cursor.Clone()
	n.doc.GotoRoot()
	if n.doc.GotoMatchingNode(sr.ValueTypeFilter{Value: vt}, true) == 0 {
		n.doc.Cursor = saved
		return fmt.Errorf("no %s content item", vt)
	}
	n.search = vt
	n.show()
	return nil
}

var commandHelp = map[string]string{
	"show":       "show the current content item",
	"down":       "move to the first child item",
	"up":         "move to the parent item",
	"next":       "move to the next sibling",
	"prev":       "move to the previous sibling",
	"first":      "move to the first sibling",
	"last":       "move to the last sibling",
	"root":       "move to the root container",
	"goto":       "goto <position|#id>: jump to an item",
	"find":       "find <value type>: jump to the first item of a value type",
	"next-match": "repeat the last find from the current item",
	"pos":        "print position, level and node id",
	"count":      "count [deep]: count child items",
	"print":      "print the whole document",
	"quit":       "leave the session",
}

func (n *navigator) printHelp() {
	names := make([]string, 0, len(commandHelp))
	for name := range commandHelp {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		fmt.Fprintf(n.out, "  %-11s %s\n", name, commandHelp[name])
	}
}
