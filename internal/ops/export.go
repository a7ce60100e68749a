package ops

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"time"

	"github.com/hpungsan/origami/internal/config"
	"github.com/hpungsan/origami/internal/db"
	"github.com/hpungsan/origami/internal/design"
	"github.com/hpungsan/origami/internal/errors"
)

// ExportInput contains parameters for the Export operation. With a Ref set
// only that design is written; otherwise every design is.
type ExportInput struct {
	Ref
	Path           string `json:"path,omitempty"` // default: ~/.origami/exports/<name>-<timestamp>.jsonl
	IncludeDeleted bool   `json:"include_deleted,omitempty"`
}

// ExportOutput contains the result of the Export operation.
type ExportOutput struct {
	Path       string `json:"path"`
	Count      int    `json:"count"`
	ExportedAt int64  `json:"exported_at"`
}

// Export writes designs and their part contents to a JSONL file.
func Export(ctx context.Context, database *sql.DB, cfg *config.Config, input ExportInput) (*ExportOutput, error) {
	now := time.Now()

	ids, label, err := exportSelection(ctx, database, input)
	if err != nil {
		return nil, err
	}

	exportPath := input.Path
	if exportPath == "" {
		exportPath, err = defaultExportPath(label, now)
		if err != nil {
			return nil, err
		}
	}

	// Default paths are validated too, since they embed a design name.
	exportPath, err = ValidatePath(exportPath, PathCheckWrite, cfg)
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(exportPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create export directory: %w", err))
	}

	// Write to temp file first, then rename so an existing file survives failure.
	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := exportPath + "." + hex.EncodeToString(randBytes) + ".tmp"
	file, err := openFileNoFollow(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create export file: %w", err))
	}

	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	enc := json.NewEncoder(file)
	header := design.ExportRecord{
		OrigamiExport: true,
		SchemaVersion: design.ExportSchemaVersion,
		ExportedAt:    now.Unix(),
	}
	if err := enc.Encode(header); err != nil {
		return nil, errors.NewInternal(err)
	}

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, errors.NewCancelled("export")
		}
		d, err := db.GetDesign(ctx, database, id, true)
		if err != nil {
			return nil, err
		}
		snap, err := db.LoadSnapshot(ctx, database, id)
		if err != nil {
			return nil, err
		}
		if err := enc.Encode(design.ToExportRecord(d, snap)); err != nil {
			return nil, errors.NewInternal(err)
		}
	}

	if err := file.Sync(); err != nil {
		return nil, errors.NewInternal(err)
	}
	// Close before rename (required on Windows).
	if err := file.Close(); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to close export file: %w", err))
	}
	file = nil

	// os.Rename would follow a symlinked destination.
	if info, err := os.Lstat(exportPath); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return nil, errors.NewInternal(fmt.Errorf("export path is a symlink"))
	}

	// On Windows os.Rename fails if the destination exists; the existing file
	// is kept rather than risking a delete-then-rename.
	if err := os.Rename(tempPath, exportPath); err != nil {
		if runtime.GOOS == "windows" {
			if _, statErr := os.Stat(exportPath); statErr == nil {
				return nil, errors.NewInvalidRequest("export destination already exists; overwriting is not supported on Windows (choose a new path or delete the existing file)")
			}
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to finalize export: %w", err))
	}

	success = true
	return &ExportOutput{
		Path:       exportPath,
		Count:      len(ids),
		ExportedAt: now.Unix(),
	}, nil
}

// exportSelection returns the ids to export, oldest update first, and a label
// for the default file name.
func exportSelection(ctx context.Context, database *sql.DB, input ExportInput) ([]string, string, error) {
	if input.ID != "" || input.Name != "" {
		d, err := resolve(ctx, database, input.Ref)
		if err != nil {
			return nil, "", err
		}
		return []string{d.ID}, d.NameNorm, nil
	}

	var ids []string
	for offset := 0; ; offset += MaxListLimit {
		page, total, err := db.ListDesigns(ctx, database, MaxListLimit, offset, input.IncludeDeleted)
		if err != nil {
			return nil, "", err
		}
		for _, s := range page {
			ids = append(ids, s.ID)
		}
		if len(page) == 0 || offset+len(page) >= total {
			break
		}
	}
	// Listing is newest first; exports read better oldest first.
	slices.Reverse(ids)
	return ids, "all", nil
}

// defaultExportPath generates the default export path.
// Format: ~/.origami/exports/<label>-<timestamp>.jsonl
func defaultExportPath(label string, now time.Time) (string, error) {
	dir, err := DefaultExportsDir()
	if err != nil {
		return "", err
	}
	filename := fmt.Sprintf("%s-%s.jsonl", SanitizeForFilename(label), now.Format("2006-01-02T150405"))
	return filepath.Join(dir, filename), nil
}
