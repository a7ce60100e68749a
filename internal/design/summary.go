package design

import "github.com/hpungsan/origami/internal/part"

// Summary is a design's metadata without its part contents.
// Used by list operations.
type Summary struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	NameNorm  string       `json:"name_norm"`
	Title     *string      `json:"title,omitempty"`
	Scaffold  part.OligoID `json:"scaffold,omitempty"`
	Helices   int          `json:"helices"`
	Strands   int          `json:"strands"`
	Oligos    int          `json:"oligos"`
	CreatedAt int64        `json:"created_at"`
	UpdatedAt int64        `json:"updated_at"`
	DeletedAt *int64       `json:"deleted_at,omitempty"`
}

// ToSummary strips a design down to its metadata.
func (d *Design) ToSummary() Summary {
	return Summary{
		ID:        d.ID,
		Name:      d.NameRaw,
		NameNorm:  d.NameNorm,
		Title:     d.Title,
		Scaffold:  d.Scaffold,
		Helices:   d.Helices,
		Strands:   d.Strands,
		Oligos:    d.Oligos,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
		DeletedAt: d.DeletedAt,
	}
}
