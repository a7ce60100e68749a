package db

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/hpungsan/origami/internal/design"
	"github.com/hpungsan/origami/internal/errors"
	"github.com/hpungsan/origami/internal/part"
)

const designColumns = `
	id, name_raw, name_norm, title, scaffold,
	helix_count, strand_count, oligo_count,
	created_at, updated_at, deleted_at
`

// InsertDesign stores a new design record. A name already used by an active
// design fails with NAME_ALREADY_EXISTS, a taken id with ID_ALREADY_EXISTS.
func InsertDesign(ctx context.Context, q Querier, d *design.Design) error {
	query := `
		INSERT INTO designs (
			id, name_raw, name_norm, title, scaffold,
			helix_count, strand_count, oligo_count,
			created_at, updated_at, deleted_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)
	`
	_, err := q.ExecContext(ctx, query,
		d.ID, d.NameRaw, d.NameNorm, toNullString(d.Title), toNullOligo(d.Scaffold),
		d.Helices, d.Strands, d.Oligos,
		d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			if strings.Contains(err.Error(), "designs.id") {
				return errors.NewIDAlreadyExists(d.ID)
			}
			return errors.NewNameAlreadyExists(d.NameRaw)
		}
		return errors.NewInternal(err)
	}
	return nil
}

// isUniqueConstraintError checks if the error is a SQLite UNIQUE constraint violation.
func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// GetDesign retrieves a design by its ULID.
// If includeDeleted is false, soft-deleted designs are excluded.
func GetDesign(ctx context.Context, q Querier, id string, includeDeleted bool) (*design.Design, error) {
	query := `SELECT ` + designColumns + ` FROM designs WHERE id = ?`
	if !includeDeleted {
		query += " AND deleted_at IS NULL"
	}

	d, err := scanDesign(q.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("design", id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return d, nil
}

// GetDesignByName retrieves the active design with the given normalized name.
func GetDesignByName(ctx context.Context, q Querier, nameNorm string) (*design.Design, error) {
	query := `SELECT ` + designColumns + ` FROM designs WHERE name_norm = ? AND deleted_at IS NULL`

	d, err := scanDesign(q.QueryRowContext(ctx, query, nameNorm))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("design", nameNorm)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return d, nil
}

// ListDesigns returns design summaries ordered by most recent update, plus
// the total count ignoring pagination.
func ListDesigns(ctx context.Context, q Querier, limit, offset int, includeDeleted bool) ([]design.Summary, int, error) {
	where := " WHERE deleted_at IS NULL"
	if includeDeleted {
		where = ""
	}

	var total int
	if err := q.QueryRowContext(ctx, "SELECT COUNT(*) FROM designs"+where).Scan(&total); err != nil {
		return nil, 0, errors.NewInternal(err)
	}

	// id breaks ties so pages are stable within one second.
	query := `SELECT ` + designColumns + ` FROM designs` + where + ` ORDER BY updated_at DESC, id DESC LIMIT ? OFFSET ?`
	rows, err := q.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	defer rows.Close()

	var items []design.Summary
	for rows.Next() {
		d, err := scanDesign(rows)
		if err != nil {
			return nil, 0, errors.NewInternal(err)
		}
		items = append(items, d.ToSummary())
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	return items, total, nil
}

// UpdateDesign writes the mutable fields of an active design and stamps
// updated_at with the current time.
func UpdateDesign(ctx context.Context, q Querier, d *design.Design) error {
	now := time.Now().Unix()
	query := `
		UPDATE designs
		SET title = ?, scaffold = ?, helix_count = ?, strand_count = ?, oligo_count = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`
	result, err := q.ExecContext(ctx, query,
		toNullString(d.Title), toNullOligo(d.Scaffold), d.Helices, d.Strands, d.Oligos, now,
		d.ID,
	)
	if err != nil {
		return errors.NewInternal(err)
	}
	if err := requireRow(result, d.ID); err != nil {
		return err
	}
	d.UpdatedAt = now
	return nil
}

// SoftDelete marks a design as deleted by setting deleted_at.
func SoftDelete(ctx context.Context, q Querier, id string) error {
	result, err := q.ExecContext(ctx,
		`UPDATE designs SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`,
		time.Now().Unix(), id,
	)
	if err != nil {
		return errors.NewInternal(err)
	}
	return requireRow(result, id)
}

// PurgeDeleted permanently removes soft-deleted designs and their contents.
// If olderThanDays is set, only designs deleted before that cutoff are removed.
func PurgeDeleted(ctx context.Context, database *sql.DB, olderThanDays *int) (int, error) {
	query := `SELECT id FROM designs WHERE deleted_at IS NOT NULL`
	var args []any
	if olderThanDays != nil {
		cutoff := time.Now().Add(-time.Duration(*olderThanDays) * 24 * time.Hour).Unix()
		query += " AND deleted_at < ?"
		args = append(args, cutoff)
	}

	purged := 0
	err := WithTx(ctx, database, func(tx *sql.Tx) error {
		ids, err := queryIDs(ctx, tx, query, args...)
		if err != nil {
			return err
		}
		for _, id := range ids {
			if err := deleteContents(ctx, tx, id); err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, `DELETE FROM designs WHERE id = ?`, id); err != nil {
				return errors.NewInternal(err)
			}
		}
		purged = len(ids)
		return nil
	})
	return purged, err
}

func queryIDs(ctx context.Context, q Querier, query string, args ...any) ([]string, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errors.NewInternal(err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return ids, nil
}

func requireRow(result sql.Result, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if n == 0 {
		return errors.NewNotFound("design", id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanDesign scans a single row into a Design struct.
func scanDesign(row rowScanner) (*design.Design, error) {
	var (
		d         design.Design
		title     sql.NullString
		scaffold  sql.NullInt64
		deletedAt sql.NullInt64
	)
	err := row.Scan(
		&d.ID, &d.NameRaw, &d.NameNorm, &title, &scaffold,
		&d.Helices, &d.Strands, &d.Oligos,
		&d.CreatedAt, &d.UpdatedAt, &deletedAt,
	)
	if err != nil {
		return nil, err
	}

	d.Title = fromNullString(title)
	if scaffold.Valid {
		d.Scaffold = part.OligoID(scaffold.Int64)
	}
	if deletedAt.Valid {
		d.DeletedAt = &deletedAt.Int64
	}
	return &d, nil
}

// toNullString converts a *string to sql.NullString.
func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// fromNullString converts a sql.NullString to *string.
func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

func toNullOligo(id part.OligoID) sql.NullInt64 {
	if id == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(id), Valid: true}
}
