package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/origami/internal/config"
	"github.com/hpungsan/origami/internal/design"
	"github.com/hpungsan/origami/internal/part"
)

// AddStrandInput contains parameters for the AddStrand operation.
type AddStrandInput struct {
	Ref
	Helix     part.HelixID `json:"helix"`
	Direction string       `json:"direction"`
	Low       int          `json:"low_idx"`
	High      int          `json:"high_idx"`
}

// AddStrand places a new strand, which starts out as its own oligo.
func AddStrand(ctx context.Context, database *sql.DB, cfg *config.Config, input AddStrandInput) (*Output[part.Strand], error) {
	dir, err := parseDirection(input.Direction)
	if err != nil {
		return nil, err
	}
	var s part.Strand
	d, err := mutate(ctx, database, cfg, input.Ref, func(p *part.Part, _ *design.Design) error {
		var err error
		s, err = p.AddStrand(input.Helix, dir, input.Low, input.High)
		return err
	})
	if err != nil {
		return nil, err
	}
	return newOutput(d, s), nil
}

// StrandInput addresses one strand by id.
type StrandInput struct {
	Ref
	Strand part.StrandID `json:"strand"`
}

// RemovedStrand reports a removed strand.
type RemovedStrand struct {
	Strand part.StrandID `json:"strand"`
}

// RemoveStrand deletes an unconnected strand together with its oligo.
func RemoveStrand(ctx context.Context, database *sql.DB, cfg *config.Config, input StrandInput) (*Output[RemovedStrand], error) {
	d, err := mutate(ctx, database, cfg, input.Ref, func(p *part.Part, _ *design.Design) error {
		return p.RemoveStrand(input.Strand)
	})
	if err != nil {
		return nil, err
	}
	return newOutput(d, RemovedStrand{Strand: input.Strand}), nil
}

// SplitStrandInput contains parameters for the SplitStrand operation.
type SplitStrandInput struct {
	Ref
	Strand part.StrandID `json:"strand"`
	Index  int           `json:"idx"`
}

// SplitStrand cuts a strand into [low, idx-1] and [idx, high].
func SplitStrand(ctx context.Context, database *sql.DB, cfg *config.Config, input SplitStrandInput) (*Output[*part.SplitResult], error) {
	var res *part.SplitResult
	d, err := mutate(ctx, database, cfg, input.Ref, func(p *part.Part, _ *design.Design) error {
		var err error
		res, err = p.SplitStrand(input.Strand, input.Index)
		return err
	})
	if err != nil {
		return nil, err
	}
	return newOutput(d, res), nil
}

// MergeStrandInput contains parameters for the MergeStrand operation.
type MergeStrandInput struct {
	Ref
	Left  part.StrandID `json:"left"`
	Right part.StrandID `json:"right"`
}

// MergeStrand joins two abutting strands that are linked 3' to 5'.
func MergeStrand(ctx context.Context, database *sql.DB, cfg *config.Config, input MergeStrandInput) (*Output[*part.MergeResult], error) {
	var res *part.MergeResult
	d, err := mutate(ctx, database, cfg, input.Ref, func(p *part.Part, _ *design.Design) error {
		var err error
		res, err = p.MergeStrand(input.Left, input.Right)
		return err
	})
	if err != nil {
		return nil, err
	}
	return newOutput(d, res), nil
}

// PositionInput addresses one base position on a helix.
type PositionInput struct {
	Ref
	Helix     part.HelixID `json:"helix"`
	Direction string       `json:"direction"`
	Index     int          `json:"idx"`
}

// GetStrand returns the strand covering a position.
func GetStrand(ctx context.Context, database *sql.DB, cfg *config.Config, input PositionInput) (*Output[part.Strand], error) {
	dir, err := parseDirection(input.Direction)
	if err != nil {
		return nil, err
	}
	var s part.Strand
	d, err := view(ctx, database, cfg, input.Ref, func(p *part.Part, _ *design.Design) error {
		var err error
		s, err = p.GetStrand(input.Helix, dir, input.Index)
		return err
	})
	if err != nil {
		return nil, err
	}
	return newOutput(d, s), nil
}
