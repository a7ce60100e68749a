package part

import (
	"testing"

	"github.com/hpungsan/origami/internal/errors"
)

func TestStrandSet_GetStrand(t *testing.T) {
	p, _ := newTestPart(t)
	mustHelix(t, p, 0, 0, 99)
	a := mustStrand(t, p, 0, Forward, 40, 49)
	b := mustStrand(t, p, 0, Forward, 0, 9)
	c := mustStrand(t, p, 0, Forward, 20, 29)

	ss, err := p.StrandSet(0, Forward)
	if err != nil {
		t.Fatalf("StrandSet() error = %v", err)
	}

	tests := []struct {
		idx  int
		want StrandID
	}{
		{0, b.ID}, {9, b.ID}, {10, 0}, {19, 0}, {20, c.ID}, {25, c.ID},
		{29, c.ID}, {35, 0}, {40, a.ID}, {49, a.ID}, {50, 0}, {-3, 0},
	}
	for _, tt := range tests {
		s, ok := ss.GetStrand(tt.idx)
		if tt.want == 0 {
			if ok {
				t.Errorf("GetStrand(%d) = %d, want none", tt.idx, s.ID)
			}
			continue
		}
		if !ok || s.ID != tt.want {
			t.Errorf("GetStrand(%d) = %d,%v, want %d", tt.idx, s.ID, ok, tt.want)
		}
	}

	strands := ss.Strands()
	if len(strands) != 3 || strands[0].ID != b.ID || strands[1].ID != c.ID || strands[2].ID != a.ID {
		t.Errorf("Strands() not ordered by low index: %+v", strands)
	}
}

func TestStrandSet_CanSplit(t *testing.T) {
	p, _ := newTestPart(t)
	mustHelix(t, p, 0, 0, 99)
	s := mustStrand(t, p, 0, Forward, 10, 20)
	other := mustStrand(t, p, 0, Reverse, 10, 20)
	ss, _ := p.StrandSet(0, Forward)

	tests := []struct {
		idx  int
		want bool
	}{
		{9, false}, {10, false}, {11, true}, {15, true}, {19, true}, {20, false}, {21, false},
	}
	for _, tt := range tests {
		if got := ss.CanSplit(s, tt.idx); got != tt.want {
			t.Errorf("CanSplit(%d) = %v, want %v", tt.idx, got, tt.want)
		}
	}
	if ss.CanSplit(other, 15) {
		t.Error("CanSplit() = true for a strand of another set")
	}
}

func TestStrandSet_InsertRemove(t *testing.T) {
	ss := newStrandSet(0, Forward)
	a := &Strand{ID: 1, Low: 10, High: 20}
	b := &Strand{ID: 2, Low: 30, High: 35}

	if err := ss.insert(b); err != nil {
		t.Fatalf("insert(b) error = %v", err)
	}
	if err := ss.insert(a); err != nil {
		t.Fatalf("insert(a) error = %v", err)
	}
	if ss.strands[0] != a || ss.strands[1] != b {
		t.Fatal("insert did not keep low-index order")
	}
	if err := ss.insert(&Strand{ID: 3, Low: 20, High: 29}); !errors.Is(err, errors.ErrOverlap) {
		t.Errorf("insert(overlap) error = %v, want OVERLAP", err)
	}
	if err := ss.insert(&Strand{ID: 4, Low: 21, High: 29}); err != nil {
		t.Errorf("insert(gap filler) error = %v", err)
	}

	a.Conn3p = 2
	if err := ss.remove(a); !errors.Is(err, errors.ErrDanglingConnection) {
		t.Errorf("remove(connected) error = %v, want DANGLING_CONNECTION", err)
	}
	a.Conn3p = 0
	if err := ss.remove(a); err != nil {
		t.Errorf("remove() error = %v", err)
	}
	if ss.Len() != 2 {
		t.Errorf("Len() = %d, want 2", ss.Len())
	}
	if err := ss.remove(a); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("remove(absent) error = %v, want NOT_FOUND", err)
	}
}
