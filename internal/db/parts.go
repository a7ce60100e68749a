package db

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/hpungsan/origami/internal/errors"
	"github.com/hpungsan/origami/internal/part"
)

// SaveSnapshot replaces the stored part contents of a design with snap.
// Call it inside a transaction so readers never see a half-written part.
func SaveSnapshot(ctx context.Context, q Querier, designID string, snap *part.Snapshot) error {
	if err := deleteContents(ctx, q, designID); err != nil {
		return err
	}

	for _, h := range snap.Helices {
		var props sql.NullString
		if len(h.Properties) > 0 {
			data, err := json.Marshal(h.Properties)
			if err != nil {
				return errors.NewInternal(err)
			}
			props = sql.NullString{String: string(data), Valid: true}
		}
		_, err := q.ExecContext(ctx,
			`INSERT INTO helices (design_id, id, min_idx, max_idx, name, props_json) VALUES (?, ?, ?, ?, ?, ?)`,
			designID, h.ID, h.MinIdx, h.MaxIdx, emptyToNull(h.Name), props,
		)
		if err != nil {
			return errors.NewInternal(err)
		}
	}

	for _, s := range snap.Strands {
		_, err := q.ExecContext(ctx,
			`INSERT INTO strands (design_id, id, helix, direction, low_idx, high_idx, conn_5p, conn_3p)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			designID, s.ID, s.Helix, int(s.Direction), s.Low, s.High, toNullStrand(s.Conn5p), toNullStrand(s.Conn3p),
		)
		if err != nil {
			return errors.NewInternal(err)
		}
	}

	for _, o := range snap.Oligos {
		chain, err := json.Marshal(o.Strands)
		if err != nil {
			return errors.NewInternal(err)
		}
		_, err = q.ExecContext(ctx,
			`INSERT INTO oligos (design_id, id, strands_json, sequence, color, circular) VALUES (?, ?, ?, ?, ?, ?)`,
			designID, o.ID, string(chain), emptyToNull(o.Sequence), o.Color, o.Circular,
		)
		if err != nil {
			return errors.NewInternal(err)
		}
	}

	_, err := q.ExecContext(ctx,
		`UPDATE designs SET last_strand = ?, last_oligo = ? WHERE id = ?`,
		snap.LastStrand, snap.LastOligo, designID,
	)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// LoadSnapshot reads the stored part contents of a design, ordered by id.
func LoadSnapshot(ctx context.Context, q Querier, designID string) (*part.Snapshot, error) {
	snap := &part.Snapshot{
		Helices: []part.HelixRecord{},
		Strands: []part.StrandRecord{},
		Oligos:  []part.OligoRecord{},
	}

	err := q.QueryRowContext(ctx,
		`SELECT last_strand, last_oligo FROM designs WHERE id = ?`, designID,
	).Scan(&snap.LastStrand, &snap.LastOligo)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("design", designID)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	if err := loadHelices(ctx, q, designID, snap); err != nil {
		return nil, err
	}
	if err := loadStrands(ctx, q, designID, snap); err != nil {
		return nil, err
	}
	if err := loadOligos(ctx, q, designID, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

func loadHelices(ctx context.Context, q Querier, designID string, snap *part.Snapshot) error {
	rows, err := q.QueryContext(ctx,
		`SELECT id, min_idx, max_idx, name, props_json FROM helices WHERE design_id = ? ORDER BY id`, designID)
	if err != nil {
		return errors.NewInternal(err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			h     part.HelixRecord
			name  sql.NullString
			props sql.NullString
		)
		if err := rows.Scan(&h.ID, &h.MinIdx, &h.MaxIdx, &name, &props); err != nil {
			return errors.NewInternal(err)
		}
		h.Name = name.String
		if props.Valid && props.String != "" {
			if err := json.Unmarshal([]byte(props.String), &h.Properties); err != nil {
				return errors.NewInternal(err)
			}
		}
		snap.Helices = append(snap.Helices, h)
	}
	if err := rows.Err(); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

func loadStrands(ctx context.Context, q Querier, designID string, snap *part.Snapshot) error {
	rows, err := q.QueryContext(ctx,
		`SELECT id, helix, direction, low_idx, high_idx, conn_5p, conn_3p FROM strands WHERE design_id = ? ORDER BY id`, designID)
	if err != nil {
		return errors.NewInternal(err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			s              part.StrandRecord
			dir            int
			conn5p, conn3p sql.NullInt64
		)
		if err := rows.Scan(&s.ID, &s.Helix, &dir, &s.Low, &s.High, &conn5p, &conn3p); err != nil {
			return errors.NewInternal(err)
		}
		s.Direction = part.Direction(dir)
		s.Conn5p = part.StrandID(conn5p.Int64)
		s.Conn3p = part.StrandID(conn3p.Int64)
		snap.Strands = append(snap.Strands, s)
	}
	if err := rows.Err(); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

func loadOligos(ctx context.Context, q Querier, designID string, snap *part.Snapshot) error {
	rows, err := q.QueryContext(ctx,
		`SELECT id, strands_json, sequence, color, circular FROM oligos WHERE design_id = ? ORDER BY id`, designID)
	if err != nil {
		return errors.NewInternal(err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			o     part.OligoRecord
			chain string
			seq   sql.NullString
		)
		if err := rows.Scan(&o.ID, &chain, &seq, &o.Color, &o.Circular); err != nil {
			return errors.NewInternal(err)
		}
		if err := json.Unmarshal([]byte(chain), &o.Strands); err != nil {
			return errors.NewInternal(err)
		}
		o.Sequence = seq.String
		snap.Oligos = append(snap.Oligos, o)
	}
	if err := rows.Err(); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// deleteContents removes a design's helices, strands and oligos.
func deleteContents(ctx context.Context, q Querier, designID string) error {
	for _, table := range []string{"oligos", "strands", "helices"} {
		if _, err := q.ExecContext(ctx, "DELETE FROM "+table+" WHERE design_id = ?", designID); err != nil {
			return errors.NewInternal(err)
		}
	}
	return nil
}

func emptyToNull(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func toNullStrand(id part.StrandID) sql.NullInt64 {
	if id == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(id), Valid: true}
}
