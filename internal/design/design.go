// Package design holds the stored-document record that wraps a part.
package design

import "github.com/hpungsan/origami/internal/part"

// Design is one stored origami document. The part itself lives in the
// helices, strands and oligos tables and travels as a part.Snapshot.
type Design struct {
	// ID is a ULID that uniquely identifies this design
	ID string

	// NameRaw is the name as provided by the user
	NameRaw string

	// NameNorm is the normalized name (lowercased, trimmed, collapsed spaces)
	NameNorm string

	// Title is an optional human-readable title
	Title *string

	// Scaffold is the oligo marked as scaffold, or zero.
	Scaffold part.OligoID

	// Helices, Strands and Oligos count the part's contents as of the last save.
	Helices int
	Strands int
	Oligos  int

	// CreatedAt is the Unix timestamp when the design was created
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last committed command
	UpdatedAt int64

	// DeletedAt is the Unix timestamp for soft delete (nullable)
	DeletedAt *int64
}

// SetCounts refreshes the content counters from a snapshot.
func (d *Design) SetCounts(snap *part.Snapshot) {
	d.Helices = len(snap.Helices)
	d.Strands = len(snap.Strands)
	d.Oligos = len(snap.Oligos)
}
