package report

import (
	"strings"
	"testing"

	"github.com/hpungsan/origami/internal/part"
)

// samplePart has a 60-base scaffold (oligo 1), a 10-base staple (oligo 2)
// and a 30-base staple (oligo 3) recolored to sort first.
func samplePart(t *testing.T) *part.Part {
	t.Helper()
	p := part.New(part.Options{VerifyInvariants: true})
	if _, err := p.AddHelix(0, 0, 99); err != nil {
		t.Fatal(err)
	}
	for _, s := range []struct {
		dir       part.Direction
		low, high int
	}{
		{part.Forward, 0, 59},
		{part.Reverse, 0, 9},
		{part.Forward, 70, 99},
	} {
		if _, err := p.AddStrand(0, s.dir, s.low, s.high); err != nil {
			t.Fatal(err)
		}
	}
	if err := p.SetOligoColor(3, "#000000"); err != nil {
		t.Fatal(err)
	}
	if _, err := p.ApplySequence(3, "ACGT"); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestBuild(t *testing.T) {
	r, err := Build(samplePart(t), Options{Title: "Tile", Scaffold: 1, ShortOligoLen: 20})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if r.Scaffold == nil || r.Scaffold.Oligo != 1 || r.Scaffold.Length != 60 {
		t.Fatalf("Scaffold = %+v, want oligo 1 of length 60", r.Scaffold)
	}
	if len(r.Staples) != 2 {
		t.Fatalf("len(Staples) = %d, want 2", len(r.Staples))
	}
	if r.Staples[0].Oligo != 3 || r.Staples[1].Oligo != 2 {
		t.Errorf("staple order = %d, %d; want 3, 2", r.Staples[0].Oligo, r.Staples[1].Oligo)
	}
	if !r.Staples[1].Short || r.Staples[0].Short || r.Short != 1 {
		t.Errorf("short flags = %v/%v (count %d)", r.Staples[0].Short, r.Staples[1].Short, r.Short)
	}
	if got := r.Staples[1]; got.Dir != part.Reverse || got.Idx5p != 9 {
		t.Errorf("reverse staple 5' end = %s %d, want reverse 9", got.Dir, got.Idx5p)
	}
}

func TestBuild_NoScaffold(t *testing.T) {
	r, err := Build(samplePart(t), Options{ShortOligoLen: 20})
	if err != nil {
		t.Fatal(err)
	}
	if r.Scaffold != nil || len(r.Staples) != 3 {
		t.Errorf("scaffold = %v, staples = %d; want nil, 3", r.Scaffold, len(r.Staples))
	}
}

func TestMarkdown(t *testing.T) {
	r, err := Build(samplePart(t), Options{Title: "Tile", Scaffold: 1, ShortOligoLen: 20})
	if err != nil {
		t.Fatal(err)
	}
	md := r.Markdown()

	for _, want := range []string{
		"# Tile\n",
		"Scaffold **1** has length 60, 5' end at helix 0 forward idx 0.",
		"2 staples, 1 short.",
		"| 2 | `#007200` | 10 | H0 reverse 9 | - | **short** |",
		"| 3 | `#000000` | 30 | H0 forward 70 | `ACGT" + strings.Repeat("?", 26) + "` |  |",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q\n%s", want, md)
		}
	}
	if strings.Index(md, "| 3 |") > strings.Index(md, "| 2 |") {
		t.Error("staples not ordered by color")
	}
}

func TestMarkdown_Empty(t *testing.T) {
	r, err := Build(part.New(part.Options{}), Options{})
	if err != nil {
		t.Fatal(err)
	}
	md := r.Markdown()
	if !strings.HasPrefix(md, "# Oligos\n") || strings.Contains(md, "| Oligo |") {
		t.Errorf("empty report = %q", md)
	}
}

func TestHTML(t *testing.T) {
	r, err := Build(samplePart(t), Options{Title: "Tile_1", Scaffold: 1, ShortOligoLen: 20})
	if err != nil {
		t.Fatal(err)
	}
	html, err := r.HTML()
	if err != nil {
		t.Fatalf("HTML() error = %v", err)
	}
	for _, want := range []string{"<h1>Tile_1</h1>", "<table>", "<strong>short</strong>", "<code>#007200</code>"} {
		if !strings.Contains(html, want) {
			t.Errorf("html missing %q\n%s", want, html)
		}
	}
}
