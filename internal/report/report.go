// Package report renders a design's oligo listing as markdown or HTML.
package report

import (
	"bytes"
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/hpungsan/origami/internal/part"
)

// Source is the part surface a report reads.
type Source interface {
	Oligos() []part.OligoInfo
	Strand(id part.StrandID) (part.Strand, error)
}

// Options tunes a report.
type Options struct {
	Title string
	// Scaffold is listed on its own line instead of in the staple table.
	Scaffold part.OligoID
	// ShortOligoLen flags staples shorter than this many bases.
	ShortOligoLen int
}

// Row is one staple line of the report.
type Row struct {
	Oligo    part.OligoID   `json:"oligo"`
	Color    string         `json:"color"`
	Length   int            `json:"length"`
	Helix    part.HelixID   `json:"helix"`
	Dir      part.Direction `json:"direction"`
	Idx5p    int            `json:"idx_5p"`
	Sequence string         `json:"sequence"`
	Circular bool           `json:"circular,omitempty"`
	Short    bool           `json:"short,omitempty"`
}

// Report is a built oligo listing.
type Report struct {
	Title    string `json:"title"`
	Scaffold *Row   `json:"scaffold,omitempty"`
	Staples  []Row  `json:"staples"`
	Short    int    `json:"short"`
}

// Build lists every oligo, staples ordered by color and then id.
func Build(src Source, opts Options) (*Report, error) {
	r := &Report{Title: opts.Title, Staples: []Row{}}
	for _, o := range src.Oligos() {
		s5, err := src.Strand(o.Strand5p())
		if err != nil {
			return nil, err
		}
		row := Row{
			Oligo:    o.ID,
			Color:    o.Color,
			Length:   o.Length,
			Helix:    s5.Helix,
			Dir:      s5.Direction,
			Idx5p:    s5.Idx5p(),
			Sequence: o.Sequence,
			Circular: o.Circular,
		}
		if o.ID == opts.Scaffold {
			r.Scaffold = &row
			continue
		}
		if o.Length < opts.ShortOligoLen {
			row.Short = true
			r.Short++
		}
		r.Staples = append(r.Staples, row)
	}
	slices.SortFunc(r.Staples, func(a, b Row) int {
		return cmp.Or(cmp.Compare(a.Color, b.Color), cmp.Compare(a.Oligo, b.Oligo))
	})
	return r, nil
}

// Markdown renders the report as a markdown document with one table row per
// staple. Unset bases show as '?'.
func (r *Report) Markdown() string {
	var b strings.Builder
	title := r.Title
	if title == "" {
		title = "Oligos"
	}
	fmt.Fprintf(&b, "# %s\n\n", escape(title))

	if r.Scaffold != nil {
		fmt.Fprintf(&b, "Scaffold **%d** has length %d, 5' end at helix %d %s idx %d.\n\n",
			r.Scaffold.Oligo, r.Scaffold.Length, r.Scaffold.Helix, r.Scaffold.Dir, r.Scaffold.Idx5p)
	}
	fmt.Fprintf(&b, "%d staples, %d short.\n\n", len(r.Staples), r.Short)
	if len(r.Staples) == 0 {
		return b.String()
	}

	b.WriteString("| Oligo | Color | Length | 5' end | Sequence | Notes |\n")
	b.WriteString("|---:|---|---:|---|---|---|\n")
	for _, row := range r.Staples {
		var notes []string
		if row.Short {
			notes = append(notes, "**short**")
		}
		if row.Circular {
			notes = append(notes, "circular")
		}
		fmt.Fprintf(&b, "| %d | `%s` | %d | H%d %s %d | %s | %s |\n",
			row.Oligo, row.Color, row.Length, row.Helix, row.Dir, row.Idx5p,
			displaySequence(row.Sequence, row.Length), strings.Join(notes, ", "))
	}
	return b.String()
}

// HTML renders the markdown form through goldmark with table support.
func (r *Report) HTML() (string, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	var buf bytes.Buffer
	if err := md.Convert([]byte(r.Markdown()), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func displaySequence(seq string, n int) string {
	if strings.TrimSpace(seq) == "" {
		return "-"
	}
	if len(seq) < n {
		seq += strings.Repeat(" ", n-len(seq))
	}
	return "`" + strings.NewReplacer(" ", "?", "|", "\\|", "`", "'").Replace(seq) + "`"
}

func escape(s string) string {
	return strings.NewReplacer("|", "\\|", "*", "\\*", "_", "\\_", "#", "\\#").Replace(s)
}
