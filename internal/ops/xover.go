package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/origami/internal/config"
	"github.com/hpungsan/origami/internal/design"
	"github.com/hpungsan/origami/internal/part"
)

// XoverInput names a junction by its two strands: the 3' end of Strand5p
// meets the 5' end of Strand3p.
type XoverInput struct {
	Ref
	Strand5p part.StrandID `json:"strand_5p"`
	Strand3p part.StrandID `json:"strand_3p"`
}

// CreateXover links two strand ends, merging their oligos or closing a circle.
func CreateXover(ctx context.Context, database *sql.DB, cfg *config.Config, input XoverInput) (*Output[*part.CreateXoverResult], error) {
	var res *part.CreateXoverResult
	d, err := mutate(ctx, database, cfg, input.Ref, func(p *part.Part, _ *design.Design) error {
		var err error
		res, err = p.CreateXover(input.Strand5p, input.Strand3p)
		return err
	})
	if err != nil {
		return nil, err
	}
	return newOutput(d, res), nil
}

// RemoveXover unlinks a junction, splitting a linear oligo or opening a circle.
func RemoveXover(ctx context.Context, database *sql.DB, cfg *config.Config, input XoverInput) (*Output[*part.RemoveXoverResult], error) {
	var res *part.RemoveXoverResult
	d, err := mutate(ctx, database, cfg, input.Ref, func(p *part.Part, _ *design.Design) error {
		var err error
		res, err = p.RemoveXover(input.Strand5p, input.Strand3p)
		return err
	})
	if err != nil {
		return nil, err
	}
	return newOutput(d, res), nil
}
