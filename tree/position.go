package tree

import (
	"strconv"
	"strings"
)

// PositionFlags is an opaque bit mask carried by a PositionCounter. Cursor
// specialisations define the meaning of the individual bits.
type PositionFlags uint

// PositionCounter tracks the 1-based position of a cursor on every level of
// the tree. A position of 0 means invalid.
type PositionCounter struct {
	position int
	levels   []int
	flags    PositionFlags
}

// Initialize resets the counter to level 1, position 1 (or to invalid) and
// stores flags.
func (p *PositionCounter) Initialize(valid bool, flags PositionFlags) {
	p.levels = nil
	p.flags = flags
	if valid {
		p.position = 1
	} else {
		p.position = 0
	}
}

// Clear resets the counter to the invalid state, flags included.
func (p *PositionCounter) Clear() {
	p.position = 0
	p.levels = nil
	p.flags = 0
}

// IsValid reports whether the current position is at least 1.
func (p PositionCounter) IsValid() bool {
	return p.position > 0
}

// Level returns the 1-based depth, or 0 if the counter is invalid.
func (p PositionCounter) Level() int {
	if !p.IsValid() {
		return 0
	}
	return len(p.levels) + 1
}

// Position returns the position on the current level.
func (p PositionCounter) Position() int {
	return p.position
}

// Flags returns the flags passed to Initialize.
func (p PositionCounter) Flags() PositionFlags {
	return p.flags
}

// Increment advances the position on the current level.
func (p *PositionCounter) Increment() {
	p.position++
}

// Decrement moves back one position. It stops at 0.
func (p *PositionCounter) Decrement() {
	if p.position > 0 {
		p.position--
	}
}

// Descend opens a new level starting at position 1. It fails on an invalid
// counter.
func (p *PositionCounter) Descend() bool {
	if !p.IsValid() {
		return false
	}
	// full slice expression: clones never share the backing array
	p.levels = append(p.levels[:len(p.levels):len(p.levels)], p.position)
	p.position = 1
	return true
}

// Ascend returns to the position saved by the matching Descend. It fails
// if there is no level to return to.
func (p *PositionCounter) Ascend() bool {
	n := len(p.levels)
	if n == 0 {
		return false
	}
	p.position = p.levels[n-1]
	p.levels = p.levels[:n-1]
	return true
}

// Clone returns an independent copy of the counter.
func (p PositionCounter) Clone() PositionCounter {
	clone := p
	if p.levels != nil {
		clone.levels = append([]int(nil), p.levels...)
	}
	return clone
}

// String joins the positions of all levels with sep, e.g. "1.2.3". It
// returns "" for an invalid counter.
func (p PositionCounter) String() string {
	return p.Format(".")
}

// Format is String with a custom separator.
func (p PositionCounter) Format(sep string) string {
	if !p.IsValid() {
		return ""
	}
	var b strings.Builder
	for _, level := range p.levels {
		b.WriteString(strconv.Itoa(level))
		b.WriteString(sep)
	}
	b.WriteString(strconv.Itoa(p.position))
	return b.String()
}
