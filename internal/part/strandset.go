package part

import (
	"slices"
	"sort"

	"github.com/hpungsan/origami/internal/errors"
)

// StrandSet is the ordered, non-overlapping collection of strands for one
// (helix, direction) pair. Strands are kept sorted by low index.
type StrandSet struct {
	helix     HelixID
	direction Direction
	strands   []*Strand
}

func newStrandSet(helix HelixID, dir Direction) *StrandSet {
	return &StrandSet{helix: helix, direction: dir}
}

// Helix returns the owning helix id.
func (ss *StrandSet) Helix() HelixID { return ss.helix }

// Direction returns the set's direction.
func (ss *StrandSet) Direction() Direction { return ss.direction }

// Len returns the number of strands in the set.
func (ss *StrandSet) Len() int { return len(ss.strands) }

// Strands returns copies of the set's strands in low-index order.
func (ss *StrandSet) Strands() []Strand {
	out := make([]Strand, len(ss.strands))
	for i, s := range ss.strands {
		out[i] = *s
	}
	return out
}

// search returns the position of the first strand whose high index is >= idx.
func (ss *StrandSet) search(idx int) int {
	return sort.Search(len(ss.strands), func(i int) bool {
		return ss.strands[i].High >= idx
	})
}

func (ss *StrandSet) get(idx int) *Strand {
	i := ss.search(idx)
	if i < len(ss.strands) && ss.strands[i].Low <= idx {
		return ss.strands[i]
	}
	return nil
}

// GetStrand returns the strand covering idx, if any.
func (ss *StrandSet) GetStrand(idx int) (Strand, bool) {
	s := ss.get(idx)
	if s == nil {
		return Strand{}, false
	}
	return *s, true
}

func (ss *StrandSet) indexOf(id StrandID) int {
	for i, s := range ss.strands {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// CanSplit reports whether strand can be split at idx: the strand must belong
// to this set and idx must lie strictly between its low and high indices.
func (ss *StrandSet) CanSplit(strand Strand, idx int) bool {
	member := ss.get(strand.Low)
	if member == nil || member.ID != strand.ID {
		return false
	}
	return idx > member.Low && idx < member.High
}

// occupant returns the first strand intersecting [low, high], ignoring the given ids.
func (ss *StrandSet) occupant(low, high int, ignore ...StrandID) *Strand {
	for i := ss.search(low); i < len(ss.strands) && ss.strands[i].Low <= high; i++ {
		if !slices.Contains(ignore, ss.strands[i].ID) {
			return ss.strands[i]
		}
	}
	return nil
}

// checkFree fails with OVERLAP if [low, high] intersects a member.
func (ss *StrandSet) checkFree(low, high int) error {
	if s := ss.occupant(low, high); s != nil {
		return errors.NewOverlap(int(ss.helix), low, high, int64(s.ID))
	}
	return nil
}

// insert adds a strand, failing with OVERLAP if its range is occupied.
func (ss *StrandSet) insert(s *Strand) error {
	if err := ss.checkFree(s.Low, s.High); err != nil {
		return err
	}
	i := ss.search(s.Low)
	ss.strands = slices.Insert(ss.strands, i, s)
	return nil
}

// remove detaches a strand. The strand must have no crossover connections.
func (ss *StrandSet) remove(s *Strand) error {
	if s.Conn5p != 0 || s.Conn3p != 0 {
		return errors.NewDanglingConnection(int64(s.ID))
	}
	i := ss.indexOf(s.ID)
	if i < 0 {
		return errors.NewNotFound("strand", formatStrand(s.ID))
	}
	ss.strands = slices.Delete(ss.strands, i, i+1)
	return nil
}

// replace swaps count consecutive strands starting at position i for the
// given replacements. Callers guarantee the replacements cover the same span.
func (ss *StrandSet) replace(i, count int, with ...*Strand) {
	ss.strands = slices.Replace(ss.strands, i, i+count, with...)
}
