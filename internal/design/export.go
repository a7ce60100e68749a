package design

import "github.com/hpungsan/origami/internal/part"

// ExportSchemaVersion is written into every export header.
const ExportSchemaVersion = "1"

// ExportRecord is one line of a JSONL export file. The first line is a
// header with OrigamiExport set; every following line carries one design.
type ExportRecord struct {
	// Header fields (only present in header line)
	OrigamiExport bool   `json:"_origami_export,omitempty"`
	SchemaVersion string `json:"schema_version,omitempty"`
	ExportedAt    int64  `json:"exported_at,omitempty"`

	ID        string         `json:"id,omitempty"`
	Name      string         `json:"name,omitempty"`
	NameNorm  string         `json:"name_norm,omitempty"` // ignored on import, recomputed
	Title     *string        `json:"title,omitempty"`
	Scaffold  part.OligoID   `json:"scaffold,omitempty"`
	CreatedAt int64          `json:"created_at,omitempty"`
	UpdatedAt int64          `json:"updated_at,omitempty"`
	Snapshot  *part.Snapshot `json:"snapshot,omitempty"`
}

// ToExportRecord pairs a design with its part contents for export.
func ToExportRecord(d *Design, snap *part.Snapshot) *ExportRecord {
	return &ExportRecord{
		ID:        d.ID,
		Name:      d.NameRaw,
		NameNorm:  d.NameNorm,
		Title:     d.Title,
		Scaffold:  d.Scaffold,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
		Snapshot:  snap,
	}
}

// ToDesign rebuilds the design record, recomputing the normalized name and
// the content counters.
func (r *ExportRecord) ToDesign() *Design {
	d := &Design{
		ID:        r.ID,
		NameRaw:   r.Name,
		NameNorm:  Normalize(r.Name),
		Title:     r.Title,
		Scaffold:  r.Scaffold,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.Snapshot != nil {
		d.SetCounts(r.Snapshot)
	}
	return d
}
