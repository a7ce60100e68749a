package ops

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/hpungsan/origami/internal/config"
	"github.com/hpungsan/origami/internal/db"
	"github.com/hpungsan/origami/internal/design"
	"github.com/hpungsan/origami/internal/errors"
	"github.com/hpungsan/origami/internal/part"
)

// ImportMode controls collision behavior during import.
type ImportMode string

const (
	ImportModeError  ImportMode = "error"  // fail on any collision or bad record (atomic)
	ImportModeRename ImportMode = "rename" // new id and suffixed name on collision
)

// maxImportLine bounds one JSONL record; a design snapshot is a single line.
const maxImportLine = 64 << 20

// maxRenameAttempts bounds the name-suffix search in rename mode.
const maxRenameAttempts = 100

// ImportInput contains parameters for the Import operation.
type ImportInput struct {
	Path string     `json:"path"`
	Mode ImportMode `json:"mode,omitempty"` // default: error
}

// ImportOutput contains the result of the Import operation.
type ImportOutput struct {
	Imported int           `json:"imported"`
	Skipped  int           `json:"skipped"`
	Designs  []string      `json:"designs"`
	Errors   []ImportError `json:"errors"`
}

// ImportError represents an error that occurred during import.
type ImportError struct {
	Line    int    `json:"line"`
	ID      string `json:"id,omitempty"`
	Name    string `json:"name,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// importRecord is one parsed design line.
type importRecord struct {
	line   int
	record *design.ExportRecord
}

// Import reads designs from a JSONL export file. Every record's snapshot is
// rebuilt into a part before anything is stored, so corrupt contents never
// reach the database.
func Import(ctx context.Context, database *sql.DB, cfg *config.Config, input ImportInput) (*ImportOutput, error) {
	if input.Mode == "" {
		input.Mode = ImportModeError
	}
	if input.Mode != ImportModeError && input.Mode != ImportModeRename {
		return nil, errors.NewInvalidRequest("mode must be one of: error, rename")
	}
	path, err := ValidatePath(input.Path, PathCheckRead, cfg)
	if err != nil {
		return nil, err
	}

	file, err := openFileNoFollowRead(path)
	if err != nil {
		if _, ok := err.(*errors.OrigamiError); ok {
			return nil, err
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to open import file: %w", err))
	}
	defer file.Close()

	records, problems := parseExportFile(file, partOptions(cfg))

	if input.Mode == ImportModeError {
		if len(problems) > 0 {
			return &ImportOutput{Designs: []string{}, Errors: problems}, nil
		}
		return importAtomic(ctx, database, records)
	}
	return importRename(ctx, database, records, problems)
}

// parseExportFile reads every design line, checking that its snapshot
// rebuilds into a consistent part.
func parseExportFile(r io.Reader, opts part.Options) ([]importRecord, []ImportError) {
	var records []importRecord
	var problems []ImportError

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxImportLine)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var record design.ExportRecord
		if err := json.Unmarshal(line, &record); err != nil {
			problems = append(problems, ImportError{
				Line:    lineNum,
				Code:    "PARSE_ERROR",
				Message: fmt.Sprintf("invalid JSON: %v", err),
			})
			continue
		}
		if record.OrigamiExport {
			continue
		}
		if record.ID == "" || design.Normalize(record.Name) == "" {
			problems = append(problems, ImportError{
				Line:    lineNum,
				ID:      record.ID,
				Code:    "INVALID_RECORD",
				Message: "missing id or name field",
			})
			continue
		}
		if _, err := part.FromSnapshot(record.Snapshot, opts); err != nil {
			problems = append(problems, ImportError{
				Line:    lineNum,
				ID:      record.ID,
				Name:    record.Name,
				Code:    string(errors.ErrInvalidSnapshot),
				Message: err.Error(),
			})
			continue
		}
		records = append(records, importRecord{line: lineNum, record: &record})
	}

	if err := scanner.Err(); err != nil {
		problems = append(problems, ImportError{
			Line:    lineNum,
			Code:    "READ_ERROR",
			Message: fmt.Sprintf("failed to read file: %v", err),
		})
	}
	return records, problems
}

// importAtomic stores every record in one transaction and stores none if any
// id or name is already taken.
func importAtomic(ctx context.Context, database *sql.DB, records []importRecord) (*ImportOutput, error) {
	out := &ImportOutput{Designs: []string{}}
	var collision *ImportError

	err := db.WithTx(ctx, database, func(tx *sql.Tx) error {
		for _, r := range records {
			d := importedDesign(r.record)
			err := checkIDFree(ctx, tx, d.ID)
			if err == nil {
				err = storeImported(ctx, tx, d, r.record.Snapshot)
			}
			if errors.Is(err, errors.ErrNameAlreadyExists) || errors.Is(err, errors.ErrIDAlreadyExists) {
				collision = &ImportError{
					Line:    r.line,
					ID:      d.ID,
					Name:    d.NameRaw,
					Code:    string(err.(*errors.OrigamiError).Code),
					Message: err.Error(),
				}
				return err
			}
			if err != nil {
				return err
			}
			out.Designs = append(out.Designs, d.ID)
		}
		return nil
	})
	if collision != nil {
		return &ImportOutput{Designs: []string{}, Errors: []ImportError{*collision}}, nil
	}
	if err != nil {
		return nil, err
	}
	out.Imported = len(out.Designs)
	return out, nil
}

// importRename stores records one by one, giving a fresh id to a record whose
// id is taken and a numbered name to one whose name is taken.
func importRename(ctx context.Context, database *sql.DB, records []importRecord, problems []ImportError) (*ImportOutput, error) {
	out := &ImportOutput{Designs: []string{}, Errors: problems, Skipped: len(problems)}

	for _, r := range records {
		if err := ctx.Err(); err != nil {
			return nil, errors.NewCancelled("import")
		}
		d := importedDesign(r.record)
		if _, err := db.GetDesign(ctx, database, d.ID, true); err == nil {
			id, err := generateULID()
			if err != nil {
				return nil, errors.NewInternal(err)
			}
			d.ID = id
		} else if !errors.Is(err, errors.ErrNotFound) {
			return nil, err
		}

		stored := false
		base := d.NameRaw
		for attempt := 1; attempt <= maxRenameAttempts && !stored; attempt++ {
			if attempt > 1 {
				d.NameRaw = fmt.Sprintf("%s-%d", base, attempt)
				d.NameNorm = design.Normalize(d.NameRaw)
			}
			err := db.WithTx(ctx, database, func(tx *sql.Tx) error {
				return storeImported(ctx, tx, d, r.record.Snapshot)
			})
			if errors.Is(err, errors.ErrNameAlreadyExists) {
				continue
			}
			if err != nil {
				return nil, err
			}
			stored = true
		}
		if !stored {
			out.Errors = append(out.Errors, ImportError{
				Line:    r.line,
				ID:      r.record.ID,
				Name:    base,
				Code:    "RENAME_FAILED",
				Message: fmt.Sprintf("no free name after %d attempts", maxRenameAttempts),
			})
			out.Skipped++
			continue
		}
		out.Designs = append(out.Designs, d.ID)
		out.Imported++
	}
	return out, nil
}

func importedDesign(r *design.ExportRecord) *design.Design {
	d := r.ToDesign()
	now := time.Now().Unix()
	if d.CreatedAt == 0 {
		d.CreatedAt = now
	}
	if d.UpdatedAt == 0 {
		d.UpdatedAt = d.CreatedAt
	}
	return d
}

// checkIDFree fails with ID_ALREADY_EXISTS when any design, deleted or not,
// already holds id.
func checkIDFree(ctx context.Context, q db.Querier, id string) error {
	_, err := db.GetDesign(ctx, q, id, true)
	if err == nil {
		return errors.NewIDAlreadyExists(id)
	}
	if errors.Is(err, errors.ErrNotFound) {
		return nil
	}
	return err
}

func storeImported(ctx context.Context, tx *sql.Tx, d *design.Design, snap *part.Snapshot) error {
	if snap == nil {
		snap = &part.Snapshot{}
	}
	if err := db.InsertDesign(ctx, tx, d); err != nil {
		return err
	}
	return db.SaveSnapshot(ctx, tx, d.ID, snap)
}
