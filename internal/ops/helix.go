package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/origami/internal/config"
	"github.com/hpungsan/origami/internal/design"
	"github.com/hpungsan/origami/internal/errors"
	"github.com/hpungsan/origami/internal/part"
)

// AddHelixInput contains parameters for the AddHelix operation.
type AddHelixInput struct {
	Ref
	Helix  part.HelixID `json:"helix"`
	MinIdx int          `json:"min_idx"`
	MaxIdx int          `json:"max_idx"`
}

// AddHelix adds an empty virtual helix over [MinIdx, MaxIdx].
func AddHelix(ctx context.Context, database *sql.DB, cfg *config.Config, input AddHelixInput) (*Output[part.HelixInfo], error) {
	var info part.HelixInfo
	d, err := mutate(ctx, database, cfg, input.Ref, func(p *part.Part, _ *design.Design) error {
		var err error
		info, err = p.AddHelix(input.Helix, input.MinIdx, input.MaxIdx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return newOutput(d, info), nil
}

// HelixInput addresses one helix.
type HelixInput struct {
	Ref
	Helix part.HelixID `json:"helix"`
}

// RemovedHelix reports a removed helix.
type RemovedHelix struct {
	Helix part.HelixID `json:"helix"`
}

// RemoveHelix removes a helix that carries no strands.
func RemoveHelix(ctx context.Context, database *sql.DB, cfg *config.Config, input HelixInput) (*Output[RemovedHelix], error) {
	d, err := mutate(ctx, database, cfg, input.Ref, func(p *part.Part, _ *design.Design) error {
		return p.RemoveHelix(input.Helix)
	})
	if err != nil {
		return nil, err
	}
	return newOutput(d, RemovedHelix{Helix: input.Helix}), nil
}

// Helices lists every helix of a design in id order.
func Helices(ctx context.Context, database *sql.DB, cfg *config.Config, ref Ref) (*Output[[]part.HelixInfo], error) {
	var helices []part.HelixInfo
	d, err := view(ctx, database, cfg, ref, func(p *part.Part, _ *design.Design) error {
		helices = p.Helices()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return newOutput(d, helices), nil
}

// HelixPropertiesInput selects helices whose properties are combined.
type HelixPropertiesInput struct {
	Ref
	Helices []part.HelixID `json:"helices"`
}

// HelixProperties combines the properties of several helices. Keys on which
// the helices disagree come back as conflicting with every distinct value.
func HelixProperties(ctx context.Context, database *sql.DB, cfg *config.Config, input HelixPropertiesInput) (*Output[map[string]part.PropertyValue], error) {
	if len(input.Helices) == 0 {
		return nil, errors.NewInvalidRequest("helices must not be empty")
	}
	var props map[string]part.PropertyValue
	d, err := view(ctx, database, cfg, input.Ref, func(p *part.Part, _ *design.Design) error {
		var err error
		props, err = p.CombineHelixProperties(input.Helices)
		return err
	})
	if err != nil {
		return nil, err
	}
	return newOutput(d, props), nil
}

// SetHelixPropertyInput contains parameters for the SetHelixProperty operation.
type SetHelixPropertyInput struct {
	Ref
	Helices []part.HelixID `json:"helices"`
	Key     string         `json:"key"`
	Value   string         `json:"value"`
}

// SetHelixProperty sets one property on every listed helix at once and
// returns the combined properties afterwards.
func SetHelixProperty(ctx context.Context, database *sql.DB, cfg *config.Config, input SetHelixPropertyInput) (*Output[map[string]part.PropertyValue], error) {
	if len(input.Helices) == 0 {
		return nil, errors.NewInvalidRequest("helices must not be empty")
	}
	var props map[string]part.PropertyValue
	d, err := mutate(ctx, database, cfg, input.Ref, func(p *part.Part, _ *design.Design) error {
		if err := p.SetHelixProperty(input.Helices, input.Key, input.Value); err != nil {
			return err
		}
		var err error
		props, err = p.CombineHelixProperties(input.Helices)
		return err
	})
	if err != nil {
		return nil, err
	}
	return newOutput(d, props), nil
}
