package tree

import "testing"

func TestPositionCounter_Initialize(t *testing.T) {
	var p PositionCounter
	if p.IsValid() {
		t.Fatal("zero counter should be invalid")
	}
	if p.Level() != 0 {
		t.Errorf("Level() = %d, want 0", p.Level())
	}
	if p.String() != "" {
		t.Errorf("String() = %q, want empty", p.String())
	}

	p.Initialize(true, 3)
	if !p.IsValid() {
		t.Fatal("initialized counter should be valid")
	}
	if p.Level() != 1 || p.Position() != 1 {
		t.Errorf("Level, Position = %d, %d, want 1, 1", p.Level(), p.Position())
	}
	if p.Flags() != 3 {
		t.Errorf("Flags() = %d, want 3", p.Flags())
	}
	if p.String() != "1" {
		t.Errorf("String() = %q, want \"1\"", p.String())
	}

	p.Clear()
	if p.IsValid() || p.Flags() != 0 {
		t.Errorf("Clear() left valid=%v flags=%d", p.IsValid(), p.Flags())
	}
}

func TestPositionCounter_DescendAscend(t *testing.T) {
	var p PositionCounter
	if p.Descend() {
		t.Error("Descend() on invalid counter should fail")
	}
	if p.Ascend() {
		t.Error("Ascend() without levels should fail")
	}

	p.Initialize(true, 0)
	p.Increment()
	if !p.Descend() {
		t.Fatal("Descend() failed")
	}
	p.Increment()
	p.Increment()
	if !p.Descend() {
		t.Fatal("Descend() failed")
	}

	tests := []struct {
		sep  string
		want string
	}{
		{".", "2.3.1"},
		{"/", "2/3/1"},
		{"", "231"},
	}
	for _, tt := range tests {
		if got := p.Format(tt.sep); got != tt.want {
			t.Errorf("Format(%q) = %q, want %q", tt.sep, got, tt.want)
		}
	}
	if p.Level() != 3 {
		t.Errorf("Level() = %d, want 3", p.Level())
	}

	if !p.Ascend() || p.String() != "2.3" {
		t.Errorf("after Ascend() String() = %q, want \"2.3\"", p.String())
	}
	if !p.Ascend() || p.String() != "2" {
		t.Errorf("after Ascend() String() = %q, want \"2\"", p.String())
	}
	if p.Ascend() {
		t.Error("Ascend() at level 1 should fail")
	}
}

func TestPositionCounter_DecrementSaturates(t *testing.T) {
	var p PositionCounter
	p.Initialize(true, 0)
	for i := 0; i < 5; i++ {
		p.Decrement()
		if p.Position() < 0 {
			t.Fatalf("Position() = %d after %d decrements", p.Position(), i+1)
		}
	}
	if p.Position() != 0 || p.IsValid() {
		t.Errorf("Position() = %d, valid = %v, want 0, false", p.Position(), p.IsValid())
	}

	p.Increment()
	if p.Position() != 1 || !p.IsValid() {
		t.Errorf("Increment() from 0 gave %d", p.Position())
	}
}

func TestPositionCounter_CloneIsIndependent(t *testing.T) {
	var p PositionCounter
	p.Initialize(true, 0)
	p.Descend()
	p.Increment()

	clone := p.Clone()
	clone.Descend()
	clone.Increment()
	p.Descend()

	if p.String() != "1.2.1" {
		t.Errorf("original String() = %q, want \"1.2.1\"", p.String())
	}
	if clone.String() != "1.2.2" {
		t.Errorf("clone String() = %q, want \"1.2.2\"", clone.String())
	}
}
