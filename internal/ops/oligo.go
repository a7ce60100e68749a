package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/origami/internal/config"
	"github.com/hpungsan/origami/internal/design"
	"github.com/hpungsan/origami/internal/errors"
	"github.com/hpungsan/origami/internal/part"
)

// GetOligoAt returns the oligo owning the strand that covers a position.
func GetOligoAt(ctx context.Context, database *sql.DB, cfg *config.Config, input PositionInput) (*Output[part.OligoInfo], error) {
	dir, err := parseDirection(input.Direction)
	if err != nil {
		return nil, err
	}
	var info part.OligoInfo
	d, err := view(ctx, database, cfg, input.Ref, func(p *part.Part, _ *design.Design) error {
		var err error
		info, err = p.GetOligoAt(input.Helix, dir, input.Index)
		return err
	})
	if err != nil {
		return nil, err
	}
	return newOutput(d, info), nil
}

// Oligos lists every oligo of a design with its length and sequence.
func Oligos(ctx context.Context, database *sql.DB, cfg *config.Config, ref Ref) (*Output[[]part.OligoInfo], error) {
	var oligos []part.OligoInfo
	d, err := view(ctx, database, cfg, ref, func(p *part.Part, _ *design.Design) error {
		oligos = p.Oligos()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return newOutput(d, oligos), nil
}

// SetOligoColorInput contains parameters for the SetOligoColor operation.
type SetOligoColorInput struct {
	Ref
	Oligo part.OligoID `json:"oligo"`
	Color string       `json:"color"`
}

// SetOligoColor recolors one oligo.
func SetOligoColor(ctx context.Context, database *sql.DB, cfg *config.Config, input SetOligoColorInput) (*Output[part.OligoInfo], error) {
	var info part.OligoInfo
	d, err := mutate(ctx, database, cfg, input.Ref, func(p *part.Part, _ *design.Design) error {
		if err := p.SetOligoColor(input.Oligo, input.Color); err != nil {
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

// SetScaffold marks an oligo as the design's scaffold and gives it the
// configured scaffold color. Oligo zero clears the mark.
func SetScaffold(ctx context.Context, database *sql.DB, cfg *config.Config, input OligoInput) (*design.Summary, error) {
	if input.Oligo < 0 {
		return nil, errors.NewInvalidRequest("oligo must not be negative")
	}
	d, err := mutate(ctx, database, cfg, input.Ref, func(p *part.Part, d *design.Design) error {
		d.Scaffold = input.Oligo
		if input.Oligo == 0 {
			return nil
		}
		return p.SetOligoColor(input.Oligo, scaffoldColor(cfg))
	})
	if err != nil {
		return nil, err
	}
	summary := d.ToSummary()
	return &summary, nil
}

func scaffoldColor(cfg *config.Config) string {
	if cfg != nil && cfg.ScaffoldColor != "" {
		return cfg.ScaffoldColor
	}
	return config.DefaultConfig().ScaffoldColor
}
