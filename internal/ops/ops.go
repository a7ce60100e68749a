// Package ops runs design commands against the store. Each mutating
// operation loads one design into a part, applies a single command and saves
// the result inside one transaction, so a failed command leaves the stored
// design as it was.
package ops

import (
	"context"
	"crypto/rand"
	"database/sql"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/origami/internal/config"
	"github.com/hpungsan/origami/internal/db"
	"github.com/hpungsan/origami/internal/design"
	"github.com/hpungsan/origami/internal/errors"
	"github.com/hpungsan/origami/internal/part"
)

// Pagination limits
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// Pagination contains pagination metadata for list operations.
type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
	Total   int  `json:"total"`
}

// Ref names the design an operation works on, by id or by name.
type Ref struct {
	ID   string `json:"design_id,omitempty"`
	Name string `json:"design,omitempty"`
}

// Address represents a validated design address.
type Address struct {
	ByID bool
	ID   string
	Name string // normalized
}

// ValidateAddress validates addressing parameters and returns a normalized Address.
// Exactly one of id or name must be set.
func ValidateAddress(id, name string) (*Address, error) {
	id = strings.TrimSpace(id)
	name = strings.TrimSpace(name)

	if id != "" && name != "" {
		return nil, errors.NewAmbiguousAddressing()
	}
	if id != "" {
		return &Address{ByID: true, ID: id}, nil
	}
	nameNorm := design.Normalize(name)
	if nameNorm == "" {
		return nil, errors.NewInvalidRequest("must specify either design_id or design")
	}
	return &Address{Name: nameNorm}, nil
}

// Output pairs a command's result with the design header as saved.
type Output[T any] struct {
	Design design.Summary `json:"design"`
	Result T              `json:"result"`
}

func newOutput[T any](d *design.Design, result T) *Output[T] {
	return &Output[T]{Design: d.ToSummary(), Result: result}
}

// resolve fetches the active design a Ref points at.
func resolve(ctx context.Context, q db.Querier, ref Ref) (*design.Design, error) {
	addr, err := ValidateAddress(ref.ID, ref.Name)
	if err != nil {
		return nil, err
	}
	if addr.ByID {
		return db.GetDesign(ctx, q, addr.ID, false)
	}
	return db.GetDesignByName(ctx, q, addr.Name)
}

func partOptions(cfg *config.Config) part.Options {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return part.Options{Palette: cfg.Palette, VerifyInvariants: cfg.VerifyInvariants}
}

func minBreakLen(cfg *config.Config, override int) int {
	if override > 0 {
		return override
	}
	if cfg != nil && cfg.MinBreakLen > 0 {
		return cfg.MinBreakLen
	}
	return config.DefaultConfig().MinBreakLen
}

func loadPart(ctx context.Context, q db.Querier, cfg *config.Config, d *design.Design) (*part.Part, error) {
	snap, err := db.LoadSnapshot(ctx, q, d.ID)
	if err != nil {
		return nil, err
	}
	return part.FromSnapshot(snap, partOptions(cfg))
}

// mutate runs fn against the design's part and saves the result in the same
// transaction. An error from fn rolls everything back.
func mutate(ctx context.Context, database *sql.DB, cfg *config.Config, ref Ref, fn func(*part.Part, *design.Design) error) (*design.Design, error) {
	var d *design.Design
	err := db.WithTx(ctx, database, func(tx *sql.Tx) error {
		var err error
		d, err = resolve(ctx, tx, ref)
		if err != nil {
			return err
		}
		p, err := loadPart(ctx, tx, cfg, d)
		if err != nil {
			return err
		}

		anchor := scaffoldAnchor(p, d.Scaffold)
		if err := fn(p, d); err != nil {
			return err
		}
		d.Scaffold = anchor.follow(p, d.Scaffold)

		snap := p.Snapshot()
		if err := db.SaveSnapshot(ctx, tx, d.ID, snap); err != nil {
			return err
		}
		d.SetCounts(snap)
		return db.UpdateDesign(ctx, tx, d)
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

// view runs fn against a read-only load of the design's part.
func view(ctx context.Context, database *sql.DB, cfg *config.Config, ref Ref, fn func(*part.Part, *design.Design) error) (*design.Design, error) {
	d, err := resolve(ctx, database, ref)
	if err != nil {
		return nil, err
	}
	p, err := loadPart(ctx, database, cfg, d)
	if err != nil {
		return nil, err
	}
	if err := fn(p, d); err != nil {
		return nil, err
	}
	return d, nil
}

// anchor remembers where the scaffold's 5' base sits so the scaffold mark can
// follow it when a command replaces the oligo id.
type anchor struct {
	ok    bool
	helix part.HelixID
	dir   part.Direction
	idx   int
}

func scaffoldAnchor(p *part.Part, id part.OligoID) anchor {
	if id == 0 {
		return anchor{}
	}
	chain, err := p.OligoStrands(id)
	if err != nil || len(chain) == 0 {
		return anchor{}
	}
	s := chain[0]
	return anchor{ok: true, helix: s.Helix, dir: s.Direction, idx: s.Idx5p()}
}

func (a anchor) follow(p *part.Part, id part.OligoID) part.OligoID {
	if id == 0 {
		return 0
	}
	if _, err := p.Oligo(id); err == nil {
		return id
	}
	if !a.ok {
		return 0
	}
	o, err := p.GetOligoAt(a.helix, a.dir, a.idx)
	if err != nil {
		return 0
	}
	return o.ID
}

// parseDirection maps a direction name onto part.Direction.
func parseDirection(s string) (part.Direction, error) {
	d, err := part.ParseDirection(s)
	if err != nil {
		return d, errors.NewInvalidRequest(err.Error())
	}
	return d, nil
}

// generateULID creates a new ULID string.
func generateULID() (string, error) {
	id, err := ulid.New(ulid.Timestamp(time.Now()), ulid.Monotonic(rand.Reader, 0))
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
