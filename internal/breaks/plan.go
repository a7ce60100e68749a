// Package breaks plans and applies the cuts that fragment long oligos into
// staple-length pieces.
package breaks

import (
	"github.com/hpungsan/origami/internal/errors"
	"github.com/hpungsan/origami/internal/part"
)

// Kind says how an instruction cuts the oligo.
type Kind string

const (
	// Split cuts a strand in its interior.
	Split Kind = "split"
	// RemoveXover cuts an existing junction.
	RemoveXover Kind = "remove_xover"
)

// Instruction is one proposed cut. Helix, Direction and Index locate it; for
// Split, Index is the index handed to SplitStrand (the low end of the upper
// piece), for RemoveXover it is the 3' terminus of the junction's 5'-side
// strand. Strand ids record what was planned against and may be stale once
// earlier instructions have run.
type Instruction struct {
	Kind      Kind           `json:"kind"`
	Helix     part.HelixID   `json:"helix"`
	Direction part.Direction `json:"direction"`
	Index     int            `json:"idx"`
	Strand    part.StrandID  `json:"strand,omitempty"`
	Strand5p  part.StrandID  `json:"strand_5p,omitempty"`
	Strand3p  part.StrandID  `json:"strand_3p,omitempty"`
}

func (in Instruction) samePosition(other Instruction) bool {
	return in.Helix == other.Helix && in.Direction == other.Direction && in.Index == other.Index
}

// Plan walks an oligo's strands from the 5' end and proposes cuts so that no
// fragment runs much past minBreakLen bases:
//
//   - a strand longer than minBreakLen is split every minBreakLen bases from
//     its 5' end, each cut leaving exactly minBreakLen bases on its 5' side;
//   - shorter strands, except the 3'-terminal one, accumulate, and once the
//     running total exceeds minBreakLen the junction at the current strand's
//     3' end is cut.
//
// Plan never mutates anything.
func Plan(chain []part.Strand, minBreakLen int) ([]Instruction, error) {
	if minBreakLen <= 0 {
		return nil, errors.NewInvalidRequest("min_break_len must be positive")
	}

	var plan []Instruction
	add := func(in Instruction) {
		if n := len(plan); n > 0 && plan[n-1].samePosition(in) {
			return
		}
		plan = append(plan, in)
	}

	acc := 0
	for i, s := range chain {
		n := s.Length()
		if n > minBreakLen {
			cut := 0
			for off := minBreakLen; ; off += minBreakLen {
				idx := splitIndex(s, off)
				if idx <= s.Low || idx >= s.High {
					break
				}
				add(Instruction{Kind: Split, Helix: s.Helix, Direction: s.Direction, Index: idx, Strand: s.ID})
				cut = off
			}
			if cut > 0 {
				acc = n - cut
			} else {
				acc += n
			}
			continue
		}
		if i == len(chain)-1 {
			continue
		}
		acc += n
		if acc > minBreakLen {
			add(Instruction{
				Kind: RemoveXover, Helix: s.Helix, Direction: s.Direction, Index: s.Idx3p(),
				Strand5p: s.ID, Strand3p: s.Conn3p,
			})
			acc = 0
		}
	}
	return plan, nil
}

// splitIndex returns the SplitStrand index that leaves off bases on the 5'
// side of the cut.
func splitIndex(s part.Strand, off int) int {
	if s.IsForward() {
		return s.Low + off
	}
	return s.High - off + 1
}
