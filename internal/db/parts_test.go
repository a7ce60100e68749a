package db

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/origami/internal/errors"
	"github.com/hpungsan/origami/internal/part"
)

func samplePart(t *testing.T) *part.Part {
	t.Helper()
	p := part.New(part.Options{VerifyInvariants: true})
	_, err := p.AddHelix(0, 0, 41)
	require.NoError(t, err)
	_, err = p.AddHelix(1, 0, 41)
	require.NoError(t, err)
	require.NoError(t, p.SetHelixProperty([]part.HelixID{1}, "row", "2"))
	require.NoError(t, p.SetHelixProperty([]part.HelixID{0}, part.PropName, "first"))

	a, err := p.AddStrand(0, part.Forward, 0, 20)
	require.NoError(t, err)
	b, err := p.AddStrand(1, part.Reverse, 0, 20)
	require.NoError(t, err)
	_, err = p.CreateXover(a.ID, b.ID)
	require.NoError(t, err)
	_, err = p.ApplySequence(a.Oligo, "ACGTACGTAC")
	require.NoError(t, err)

	c, err := p.AddStrand(1, part.Forward, 5, 9)
	require.NoError(t, err)
	_, err = p.CreateXover(c.ID, c.ID)
	require.NoError(t, err)

	tmp, err := p.AddStrand(0, part.Reverse, 30, 40)
	require.NoError(t, err)
	require.NoError(t, p.RemoveStrand(tmp.ID))
	return p
}

func TestSaveLoadSnapshot(t *testing.T) {
	ctx := context.Background()
	database := newTestDB(t)
	require.NoError(t, InsertDesign(ctx, database, newTestDesign("A", "Tile")))

	snap := samplePart(t).Snapshot()
	require.NoError(t, WithTx(ctx, database, func(tx *sql.Tx) error {
		return SaveSnapshot(ctx, tx, "A", snap)
	}))

	got, err := LoadSnapshot(ctx, database, "A")
	require.NoError(t, err)
	require.Equal(t, snap, got)

	_, err = part.FromSnapshot(got, part.Options{VerifyInvariants: true})
	require.NoError(t, err)
}

func TestSaveSnapshot_Replaces(t *testing.T) {
	ctx := context.Background()
	database := newTestDB(t)
	require.NoError(t, InsertDesign(ctx, database, newTestDesign("A", "Tile")))
	require.NoError(t, SaveSnapshot(ctx, database, "A", samplePart(t).Snapshot()))

	empty := part.New(part.Options{}).Snapshot()
	require.NoError(t, SaveSnapshot(ctx, database, "A", empty))

	got, err := LoadSnapshot(ctx, database, "A")
	require.NoError(t, err)
	require.Empty(t, got.Helices)
	require.Empty(t, got.Strands)
	require.Empty(t, got.Oligos)
}

func TestSaveSnapshot_KeepsDesignsApart(t *testing.T) {
	ctx := context.Background()
	database := newTestDB(t)
	require.NoError(t, InsertDesign(ctx, database, newTestDesign("A", "one")))
	require.NoError(t, InsertDesign(ctx, database, newTestDesign("B", "two")))

	snap := samplePart(t).Snapshot()
	require.NoError(t, SaveSnapshot(ctx, database, "A", snap))
	require.NoError(t, SaveSnapshot(ctx, database, "B", part.New(part.Options{}).Snapshot()))

	got, err := LoadSnapshot(ctx, database, "A")
	require.NoError(t, err)
	require.Equal(t, snap, got)
}

func TestLoadSnapshot_NotFound(t *testing.T) {
	_, err := LoadSnapshot(context.Background(), newTestDB(t), "missing")
	require.True(t, errors.Is(err, errors.ErrNotFound), "got %v", err)
}

func TestWithTx_RollsBack(t *testing.T) {
	ctx := context.Background()
	database := newTestDB(t)
	require.NoError(t, InsertDesign(ctx, database, newTestDesign("A", "Tile")))

	boom := errors.NewInvalidRequest("boom")
	err := WithTx(ctx, database, func(tx *sql.Tx) error {
		if err := SaveSnapshot(ctx, tx, "A", samplePart(t).Snapshot()); err != nil {
			return err
		}
		return boom
	})
	require.Equal(t, boom, err)

	got, err := LoadSnapshot(ctx, database, "A")
	require.NoError(t, err)
	require.Empty(t, got.Strands)
}
