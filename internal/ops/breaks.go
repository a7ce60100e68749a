package ops

import (
	"context"
	"database/sql"
	"log"

	"github.com/hpungsan/origami/internal/breaks"
	"github.com/hpungsan/origami/internal/config"
	"github.com/hpungsan/origami/internal/design"
	"github.com/hpungsan/origami/internal/errors"
	"github.com/hpungsan/origami/internal/part"
)

// PlanBreaksInput contains parameters for the PlanBreaks operation.
// A zero MinBreakLen uses the configured default.
type PlanBreaksInput struct {
	Ref
	Oligo       part.OligoID `json:"oligo"`
	MinBreakLen int          `json:"min_break_len,omitempty"`
}

// BreakPlan is a proposed set of cuts for one oligo.
type BreakPlan struct {
	Oligo        part.OligoID         `json:"oligo"`
	Length       int                  `json:"length"`
	MinBreakLen  int                  `json:"min_break_len"`
	Instructions []breaks.Instruction `json:"instructions"`
}

// PlanBreaks proposes cuts for one oligo without changing the design.
func PlanBreaks(ctx context.Context, database *sql.DB, cfg *config.Config, input PlanBreaksInput) (*Output[*BreakPlan], error) {
	if input.MinBreakLen < 0 {
		return nil, errors.NewInvalidRequest("min_break_len must not be negative")
	}
	var plan *BreakPlan
	d, err := view(ctx, database, cfg, input.Ref, func(p *part.Part, _ *design.Design) error {
		var err error
		plan, err = planOligo(p, input.Oligo, minBreakLen(cfg, input.MinBreakLen))
		return err
	})
	if err != nil {
		return nil, err
	}
	return newOutput(d, plan), nil
}

func planOligo(p *part.Part, id part.OligoID, l int) (*BreakPlan, error) {
	chain, err := p.OligoStrands(id)
	if err != nil {
		return nil, err
	}
	instructions, err := breaks.Plan(chain, l)
	if err != nil {
		return nil, err
	}
	if instructions == nil {
		instructions = []breaks.Instruction{}
	}
	n := 0
	for _, s := range chain {
		n += s.Length()
	}
	return &BreakPlan{Oligo: id, Length: n, MinBreakLen: l, Instructions: instructions}, nil
}

// ApplyBreaksInput carries a plan, usually one returned by PlanBreaks.
type ApplyBreaksInput struct {
	Ref
	Instructions []breaks.Instruction `json:"instructions"`
}

// ApplyBreaks executes a plan. Instructions that no longer match the design
// are skipped and reported rather than failing the whole plan.
func ApplyBreaks(ctx context.Context, database *sql.DB, cfg *config.Config, input ApplyBreaksInput) (*Output[*breaks.Report], error) {
	var report *breaks.Report
	d, err := mutate(ctx, database, cfg, input.Ref, func(p *part.Part, _ *design.Design) error {
		var err error
		report, err = breaks.Apply(p, input.Instructions)
		return err
	})
	if err != nil {
		return nil, err
	}
	logSkipped(d.ID, report)
	return newOutput(d, report), nil
}

// AutoBreakInput contains parameters for the AutoBreak operation.
type AutoBreakInput struct {
	Ref
	MinBreakLen int `json:"min_break_len,omitempty"`
}

// AutoBreakResult lists what AutoBreak did to each oligo it cut.
type AutoBreakResult struct {
	Scaffold    part.OligoID   `json:"scaffold"`
	MinBreakLen int            `json:"min_break_len"`
	Broken      []BrokenOligo  `json:"broken"`
	Circular    []part.OligoID `json:"circular_skipped,omitempty"`
}

// BrokenOligo is one oligo AutoBreak planned and cut.
type BrokenOligo struct {
	Oligo  part.OligoID   `json:"oligo"`
	Length int            `json:"length"`
	Report *breaks.Report `json:"report"`
}

// AutoBreak cuts every linear staple longer than the break length. The
// scaffold is left whole; when none is marked, the longest oligo is taken as
// the scaffold, marked and recolored.
func AutoBreak(ctx context.Context, database *sql.DB, cfg *config.Config, input AutoBreakInput) (*Output[*AutoBreakResult], error) {
	if input.MinBreakLen < 0 {
		return nil, errors.NewInvalidRequest("min_break_len must not be negative")
	}
	l := minBreakLen(cfg, input.MinBreakLen)
	result := &AutoBreakResult{MinBreakLen: l, Broken: []BrokenOligo{}}

	d, err := mutate(ctx, database, cfg, input.Ref, func(p *part.Part, d *design.Design) error {
		oligos := p.Oligos()
		if d.Scaffold == 0 {
			d.Scaffold = longestOligo(oligos)
			if d.Scaffold != 0 {
				if err := p.SetOligoColor(d.Scaffold, scaffoldColor(cfg)); err != nil {
					return err
				}
			}
		}
		result.Scaffold = d.Scaffold

		for _, o := range oligos {
			if o.ID == d.Scaffold || o.Length <= l {
				continue
			}
			if o.Circular {
				result.Circular = append(result.Circular, o.ID)
				continue
			}
			plan, err := planOligo(p, o.ID, l)
			if err != nil {
				return err
			}
			report, err := breaks.Apply(p, plan.Instructions)
			if err != nil {
				return err
			}
			result.Broken = append(result.Broken, BrokenOligo{Oligo: o.ID, Length: o.Length, Report: report})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for _, b := range result.Broken {
		logSkipped(d.ID, b.Report)
	}
	return newOutput(d, result), nil
}

// longestOligo picks the longest oligo, the lowest id on a tie.
func longestOligo(oligos []part.OligoInfo) part.OligoID {
	var best part.OligoInfo
	for _, o := range oligos {
		if o.Length > best.Length {
			best = o
		}
	}
	return best.ID
}

func logSkipped(designID string, report *breaks.Report) {
	for _, step := range report.Steps {
		if step.Outcome == breaks.OutcomeSkipped {
			in := step.Instruction
			log.Printf("design %s: skipped %s at helix %d %s idx %d: %s",
				designID, in.Kind, in.Helix, in.Direction, in.Index, step.Reason)
		}
	}
}
