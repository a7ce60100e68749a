package ops

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/hpungsan/origami/internal/config"
	"github.com/hpungsan/origami/internal/db"
	"github.com/hpungsan/origami/internal/design"
	"github.com/hpungsan/origami/internal/errors"
	"github.com/hpungsan/origami/internal/part"
)

// CreateInput contains parameters for the Create operation.
type CreateInput struct {
	Name  string  `json:"name"`
	Title *string `json:"title,omitempty"`
}

// Create stores a new, empty design.
func Create(ctx context.Context, database *sql.DB, input CreateInput) (*design.Summary, error) {
	name := strings.TrimSpace(input.Name)
	nameNorm := design.Normalize(name)
	if nameNorm == "" {
		return nil, errors.NewInvalidRequest("name is required")
	}

	id, err := generateULID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	now := time.Now().Unix()
	d := &design.Design{
		ID:        id,
		NameRaw:   name,
		NameNorm:  nameNorm,
		Title:     input.Title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := db.InsertDesign(ctx, database, d); err != nil {
		return nil, err
	}
	summary := d.ToSummary()
	return &summary, nil
}

// OpenOutput is a design loaded into memory.
type OpenOutput struct {
	Design   design.Summary `json:"design"`
	Snapshot *part.Snapshot `json:"snapshot"`
	Part     *part.Part     `json:"-"`
}

// Open loads a design into a part.
func Open(ctx context.Context, database *sql.DB, cfg *config.Config, ref Ref) (*OpenOutput, error) {
	out := &OpenOutput{}
	d, err := view(ctx, database, cfg, ref, func(p *part.Part, _ *design.Design) error {
		out.Part = p
		out.Snapshot = p.Snapshot()
		return nil
	})
	if err != nil {
		return nil, err
	}
	out.Design = d.ToSummary()
	return out, nil
}

// UpdateInput contains parameters for the Update operation.
type UpdateInput struct {
	Ref
	Title *string `json:"title,omitempty"`
}

// Update changes a design's title. An empty title clears it.
func Update(ctx context.Context, database *sql.DB, cfg *config.Config, input UpdateInput) (*design.Summary, error) {
	if input.Title == nil {
		return nil, errors.NewInvalidRequest("nothing to update")
	}
	d, err := mutate(ctx, database, cfg, input.Ref, func(_ *part.Part, d *design.Design) error {
		if t := strings.TrimSpace(*input.Title); t != "" {
			d.Title = &t
		} else {
			d.Title = nil
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	summary := d.ToSummary()
	return &summary, nil
}

// ListInput contains parameters for the List operation.
type ListInput struct {
	Limit          int  `json:"limit,omitempty"`
	Offset         int  `json:"offset,omitempty"`
	IncludeDeleted bool `json:"include_deleted,omitempty"`
}

// ListOutput contains the result of the List operation.
type ListOutput struct {
	Items      []design.Summary `json:"items"`
	Pagination Pagination       `json:"pagination"`
}

// List returns design summaries, most recently updated first.
func List(ctx context.Context, database *sql.DB, input ListInput) (*ListOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	offset := max(input.Offset, 0)

	items, total, err := db.ListDesigns(ctx, database, limit, offset, input.IncludeDeleted)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []design.Summary{}
	}
	return &ListOutput{
		Items: items,
		Pagination: Pagination{
			Limit:   limit,
			Offset:  offset,
			HasMore: offset+len(items) < total,
			Total:   total,
		},
	}, nil
}

// DeleteOutput contains the result of the Delete operation.
type DeleteOutput struct {
	Deleted bool   `json:"deleted"`
	ID      string `json:"id"`
}

// Delete soft-deletes a design. Its name becomes free for reuse.
func Delete(ctx context.Context, database *sql.DB, ref Ref) (*DeleteOutput, error) {
	d, err := resolve(ctx, database, ref)
	if err != nil {
		return nil, err
	}
	if err := db.SoftDelete(ctx, database, d.ID); err != nil {
		return nil, err
	}
	return &DeleteOutput{Deleted: true, ID: d.ID}, nil
}

// PurgeInput contains parameters for the Purge operation.
type PurgeInput struct {
	OlderThanDays *int `json:"older_than_days,omitempty"`
}

// PurgeOutput contains the result of the Purge operation.
type PurgeOutput struct {
	Purged  int    `json:"purged"`
	Message string `json:"message"`
}

// Purge permanently deletes soft-deleted designs.
func Purge(ctx context.Context, database *sql.DB, input PurgeInput) (*PurgeOutput, error) {
	if input.OlderThanDays != nil && *input.OlderThanDays < 0 {
		return nil, errors.NewInvalidRequest("older_than_days must not be negative")
	}
	count, err := db.PurgeDeleted(ctx, database, input.OlderThanDays)
	if err != nil {
		return nil, err
	}
	return &PurgeOutput{
		Purged:  count,
		Message: formatPurgeMessage(count, input.OlderThanDays),
	}, nil
}

// formatPurgeMessage creates a human-readable message for the purge result.
func formatPurgeMessage(count int, olderThanDays *int) string {
	if count == 0 {
		return "No deleted designs to purge"
	}

	word := "design"
	if count > 1 {
		word = "designs"
	}
	msg := fmt.Sprintf("Permanently deleted %d %s", count, word)
	if olderThanDays != nil {
		msg += fmt.Sprintf(" (deleted more than %d days ago)", *olderThanDays)
	}
	return msg
}
