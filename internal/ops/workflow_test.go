package ops

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/origami/internal/errors"
	"github.com/hpungsan/origami/internal/part"
)

// TestWorkflow_DesignLifecycle walks a two-helix design from creation through
// sequencing, breaking, reporting and an export/import round trip.
func TestWorkflow_DesignLifecycle(t *testing.T) {
	ctx := context.Background()
	database := newTestDB(t)
	dir := t.TempDir()
	cfg := transferConfig(dir)

	// 1. Create and lay out the helices.
	created, err := Create(ctx, database, CreateInput{Name: "Two Helix"})
	require.NoError(t, err)
	ref := Ref{Name: "two helix"}
	mustAddHelix(t, database, ref, 0, 0, 79)
	mustAddHelix(t, database, ref, 1, 0, 79)

	// 2. Scaffold loop: forward on helix 0, back along helix 1.
	s1 := mustAddStrand(t, database, ref, 0, "fwd", 0, 79)
	s2 := mustAddStrand(t, database, ref, 1, "rev", 0, 79)
	scaf, err := CreateXover(ctx, database, cfg, XoverInput{Ref: ref, Strand5p: s1.ID, Strand3p: s2.ID})
	require.NoError(t, err)
	_, err = SetScaffold(ctx, database, cfg, OligoInput{Ref: ref, Oligo: scaf.Result.Oligo})
	require.NoError(t, err)

	// 3. One long staple pairing the whole scaffold.
	s3 := mustAddStrand(t, database, ref, 0, "rev", 0, 79)
	s4 := mustAddStrand(t, database, ref, 1, "fwd", 0, 79)
	staple, err := CreateXover(ctx, database, cfg, XoverInput{Ref: ref, Strand5p: s3.ID, Strand3p: s4.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, staple.Design.Oligos)

	// 4. Sequence the scaffold and push the complement onto the staple.
	seq := strings.Repeat("ACGT", 42)
	applied, err := ApplySequence(ctx, database, cfg, ApplySequenceInput{Ref: ref, Oligo: scaf.Result.Oligo, Sequence: seq})
	require.NoError(t, err)
	assert.Equal(t, 160, applied.Result.Applied)
	require.Len(t, applied.Result.Warnings, 1)
	assert.Equal(t, errors.ErrSequenceTruncated, applied.Result.Warnings[0].Code)

	prop, err := PropagateComplement(ctx, database, cfg, OligoInput{Ref: ref, Oligo: scaf.Result.Oligo})
	require.NoError(t, err)
	assert.Equal(t, []part.OligoID{staple.Result.Oligo}, prop.Result.Changed)

	// 5. Break the staple; the scaffold stays whole.
	broken, err := AutoBreak(ctx, database, cfg, AutoBreakInput{Ref: ref, MinBreakLen: 40})
	require.NoError(t, err)
	assert.Equal(t, scaf.Result.Oligo, broken.Result.Scaffold)
	require.Len(t, broken.Result.Broken, 1)
	assert.Greater(t, broken.Design.Oligos, 2)

	oligos, err := Oligos(ctx, database, cfg, ref)
	require.NoError(t, err)
	for _, o := range oligos.Result {
		assert.Len(t, o.Sequence, o.Length, "oligo %d lost bases", o.ID)
		if o.ID == scaf.Result.Oligo {
			assert.Equal(t, seq[:160], o.Sequence)
		}
	}

	// 6. Report.
	md, err := Report(ctx, database, cfg, ReportInput{Ref: ref})
	require.NoError(t, err)
	assert.Equal(t, FormatMarkdown, md.Result.Format)
	assert.Contains(t, md.Result.Content, "# Two Helix")
	require.NotNil(t, md.Result.Report.Scaffold)
	assert.Equal(t, 160, md.Result.Report.Scaffold.Length)
	assert.Len(t, md.Result.Report.Staples, broken.Design.Oligos-1)

	html, err := Report(ctx, database, cfg, ReportInput{Ref: ref, Format: FormatHTML})
	require.NoError(t, err)
	assert.Contains(t, html.Result.Content, "<table>")

	_, err = Report(ctx, database, cfg, ReportInput{Ref: ref, Format: "pdf"})
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest), "got %v", err)

	// 7. Export, delete, purge, and bring it back.
	want := mustSnapshot(t, database, ref)
	exported, err := Export(ctx, database, cfg, ExportInput{Ref: ref, Path: filepath.Join(dir, "two-helix.jsonl")})
	require.NoError(t, err)
	assert.Equal(t, 1, exported.Count)

	_, err = Delete(ctx, database, ref)
	require.NoError(t, err)
	purged, err := Purge(ctx, database, PurgeInput{})
	require.NoError(t, err)
	assert.Equal(t, 1, purged.Purged)
	_, err = Open(ctx, database, cfg, ref)
	assert.True(t, errors.Is(err, errors.ErrNotFound), "got %v", err)

	imported, err := Import(ctx, database, cfg, ImportInput{Path: exported.Path})
	require.NoError(t, err)
	assert.Equal(t, 1, imported.Imported)
	assert.Equal(t, []string{created.ID}, imported.Designs)

	restored, err := Open(ctx, database, cfg, ref)
	require.NoError(t, err)
	assert.Equal(t, want, restored.Snapshot)
	assert.Equal(t, scaf.Result.Oligo, restored.Design.Scaffold)
}
