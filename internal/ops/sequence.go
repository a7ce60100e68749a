package ops

import (
	"context"
	"database/sql"
	"log"

	"github.com/hpungsan/origami/internal/config"
	"github.com/hpungsan/origami/internal/design"
	"github.com/hpungsan/origami/internal/errors"
	"github.com/hpungsan/origami/internal/part"
)

// ApplySequenceInput contains parameters for the ApplySequence operation.
type ApplySequenceInput struct {
	Ref
	Oligo    part.OligoID `json:"oligo"`
	Sequence string       `json:"sequence"`
}

// ApplySequence assigns bases to an oligo from its 5' end. A sequence longer
// than the oligo is truncated and the result carries a warning.
func ApplySequence(ctx context.Context, database *sql.DB, cfg *config.Config, input ApplySequenceInput) (*Output[*part.SequenceResult], error) {
	if input.Sequence == "" {
		return nil, errors.NewInvalidRequest("sequence is required")
	}
	var res *part.SequenceResult
	d, err := mutate(ctx, database, cfg, input.Ref, func(p *part.Part, _ *design.Design) error {
		var err error
		res, err = p.ApplySequence(input.Oligo, input.Sequence)
		return err
	})
	if err != nil {
		return nil, err
	}
	for _, w := range res.Warnings {
		log.Printf("design %s: %v", d.ID, w)
	}
	return newOutput(d, res), nil
}

// OligoInput addresses one oligo by id.
type OligoInput struct {
	Ref
	Oligo part.OligoID `json:"oligo"`
}

// ClearSequence unsets every base of an oligo.
func ClearSequence(ctx context.Context, database *sql.DB, cfg *config.Config, input OligoInput) (*Output[part.OligoInfo], error) {
	var info part.OligoInfo
	d, err := mutate(ctx, database, cfg, input.Ref, func(p *part.Part, _ *design.Design) error {
		if err := p.ClearSequence(input.Oligo); err != nil {
			return err
		}
		var err error
		info, err = p.Oligo(input.Oligo)
		return err
	})
	if err != nil {
		return nil, err
	}
	return newOutput(d, info), nil
}

// PropagateComplement writes the complement of an oligo's bases onto every
// strand paired with it.
func PropagateComplement(ctx context.Context, database *sql.DB, cfg *config.Config, input OligoInput) (*Output[*part.PropagateResult], error) {
	var res *part.PropagateResult
	d, err := mutate(ctx, database, cfg, input.Ref, func(p *part.Part, _ *design.Design) error {
		var err error
		res, err = p.PropagateComplement(input.Oligo)
		return err
	})
	if err != nil {
		return nil, err
	}
	return newOutput(d, res), nil
}
