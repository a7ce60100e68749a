package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/origami/internal/config"
	"github.com/hpungsan/origami/internal/design"
	"github.com/hpungsan/origami/internal/errors"
	"github.com/hpungsan/origami/internal/part"
	"github.com/hpungsan/origami/internal/report"
)

// Report formats.
const (
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
)

// ReportInput contains parameters for the Report operation.
type ReportInput struct {
	Ref
	Format string `json:"format,omitempty"` // markdown (default) or html
}

// ReportOutput contains a rendered oligo report.
type ReportOutput struct {
	Format  string         `json:"format"`
	Content string         `json:"content"`
	Report  *report.Report `json:"report"`
}

// Report lists a design's oligos, flagging staples shorter than the
// configured short_oligo_len and naming the scaffold separately.
func Report(ctx context.Context, database *sql.DB, cfg *config.Config, input ReportInput) (*Output[*ReportOutput], error) {
	format := input.Format
	if format == "" {
		format = FormatMarkdown
	}
	if format != FormatMarkdown && format != FormatHTML {
		return nil, errors.NewInvalidRequest("format must be one of: markdown, html")
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	out := &ReportOutput{Format: format}
	d, err := view(ctx, database, cfg, input.Ref, func(p *part.Part, d *design.Design) error {
		title := d.NameRaw
		if d.Title != nil {
			title = *d.Title
		}
		r, err := report.Build(p, report.Options{
			Title:         title,
			Scaffold:      d.Scaffold,
			ShortOligoLen: cfg.ShortOligoLen,
		})
		if err != nil {
			return err
		}
		out.Report = r
		if format == FormatHTML {
			out.Content, err = r.HTML()
			if err != nil {
				return errors.NewInternal(err)
			}
			return nil
		}
		out.Content = r.Markdown()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return newOutput(d, out), nil
}
