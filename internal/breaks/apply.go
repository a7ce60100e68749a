package breaks

import (
	"fmt"

	"github.com/hpungsan/origami/internal/errors"
	"github.com/hpungsan/origami/internal/part"
)

// Design is the part surface the executor needs.
type Design interface {
	GetStrand(helix part.HelixID, dir part.Direction, idx int) (part.Strand, error)
	StrandSet(helix part.HelixID, dir part.Direction) (*part.StrandSet, error)
	SplitStrand(id part.StrandID, idx int) (*part.SplitResult, error)
	RemoveXover(strand5p, strand3p part.StrandID) (*part.RemoveXoverResult, error)
}

// Outcome records what the executor did with one instruction.
type Outcome string

const (
	OutcomeSplit   Outcome = "split"
	OutcomeRemoved Outcome = "xover_removed"
	OutcomeSkipped Outcome = "skipped"
)

// Step is one executed instruction.
type Step struct {
	Instruction Instruction    `json:"instruction"`
	Outcome     Outcome        `json:"outcome"`
	Reason      string         `json:"reason,omitempty"`
	Oligos      []part.OligoID `json:"oligos,omitempty"`
}

// Report summarizes an executed plan.
type Report struct {
	Steps   []Step `json:"steps"`
	Split   int    `json:"split"`
	Removed int    `json:"removed"`
	Skipped int    `json:"skipped"`
}

// Apply executes a plan in order. Each instruction is re-resolved by position:
// a live junction at the index is cut directly, otherwise the strand there is
// split and the new internal crossover removed so the oligo really fragments.
// Instructions that no longer fit the design are skipped, not failed.
func Apply(d Design, plan []Instruction) (*Report, error) {
	report := &Report{Steps: make([]Step, 0, len(plan))}
	for _, in := range plan {
		step, err := applyOne(d, in)
		if err != nil {
			return report, fmt.Errorf("instruction at helix %d %s idx %d: %w", in.Helix, in.Direction, in.Index, err)
		}
		switch step.Outcome {
		case OutcomeSplit:
			report.Split++
		case OutcomeRemoved:
			report.Removed++
		default:
			report.Skipped++
		}
		report.Steps = append(report.Steps, step)
	}
	return report, nil
}

func applyOne(d Design, in Instruction) (Step, error) {
	step := Step{Instruction: in}
	s, err := d.GetStrand(in.Helix, in.Direction, in.Index)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			step.Outcome = OutcomeSkipped
			step.Reason = "no strand at position"
			return step, nil
		}
		return step, err
	}

	if s.HasXoverAt(in.Index) {
		s5, s3 := s.ID, s.Conn3p
		if in.Index != s.Idx3p() || s.Conn3p == 0 {
			s5, s3 = s.Conn5p, s.ID
		}
		res, err := d.RemoveXover(s5, s3)
		if err != nil {
			return step, err
		}
		step.Outcome = OutcomeRemoved
		step.Oligos = resultOligos(res)
		return step, nil
	}

	ss, err := d.StrandSet(in.Helix, in.Direction)
	if err != nil {
		return step, err
	}
	if !ss.CanSplit(s, in.Index) {
		step.Outcome = OutcomeSkipped
		step.Reason = fmt.Sprintf("cannot split strand %d [%d,%d] at %d", s.ID, s.Low, s.High, in.Index)
		return step, nil
	}
	split, err := d.SplitStrand(s.ID, in.Index)
	if err != nil {
		return step, err
	}
	res, err := d.RemoveXover(split.Strand5p.ID, split.Strand3p.ID)
	if err != nil {
		return step, err
	}
	step.Outcome = OutcomeSplit
	step.Oligos = resultOligos(res)
	return step, nil
}

func resultOligos(res *part.RemoveXoverResult) []part.OligoID {
	if res.Oligo3p == 0 {
		return []part.OligoID{res.Oligo5p}
	}
	return []part.OligoID{res.Oligo5p, res.Oligo3p}
}
