package part

import (
	"maps"
	"slices"
	"strings"

	"github.com/hpungsan/origami/internal/errors"
)

// Unset marks a base with no assigned nucleotide.
const Unset = ' '

// Oligo is the 5'->3' chain of strands forming one physical molecule.
// It is the sole owner of the chain's sequence; seq never has trailing Unset
// bases and is never longer than the chain.
type Oligo struct {
	id       OligoID
	strands  []StrandID
	seq      string
	circular bool
	color    string
}

// OligoInfo is a read-only view of an oligo.
type OligoInfo struct {
	ID       OligoID    `json:"id"`
	Strands  []StrandID `json:"strands"`
	Length   int        `json:"length"`
	Sequence string     `json:"sequence,omitempty"`
	Circular bool       `json:"circular,omitempty"`
	Color    string     `json:"color"`
}

// Strand5p returns the 5'-most strand id.
func (oi OligoInfo) Strand5p() StrandID { return oi.Strands[0] }

// Strand3p returns the 3'-most strand id.
func (oi OligoInfo) Strand3p() StrandID { return oi.Strands[len(oi.Strands)-1] }

func (o *Oligo) info(p *Part) OligoInfo {
	return OligoInfo{
		ID:       o.id,
		Strands:  slices.Clone(o.strands),
		Length:   p.chainLength(o.strands),
		Sequence: o.seq,
		Circular: o.circular,
		Color:    o.color,
	}
}

func (o *Oligo) indexOf(id StrandID) int {
	return slices.Index(o.strands, id)
}

func (p *Part) chainLength(chain []StrandID) int {
	n := 0
	for _, id := range chain {
		n += p.strands[id].Length()
	}
	return n
}

// offsets returns each chain member's base offset from the oligo's 5' end.
func (p *Part) offsets(chain []StrandID) []int {
	out := make([]int, len(chain))
	n := 0
	for i, id := range chain {
		out[i] = n
		n += p.strands[id].Length()
	}
	return out
}

// Oligo returns a view of one oligo.
func (p *Part) Oligo(id OligoID) (OligoInfo, error) {
	o, err := p.oligo(id)
	if err != nil {
		return OligoInfo{}, err
	}
	return o.info(p), nil
}

// Oligos returns every oligo ordered by id.
func (p *Part) Oligos() []OligoInfo {
	ids := slices.Sorted(maps.Keys(p.oligos))
	out := make([]OligoInfo, len(ids))
	for i, id := range ids {
		out[i] = p.oligos[id].info(p)
	}
	return out
}

// SetOligoColor recolors one oligo.
func (p *Part) SetOligoColor(id OligoID, color string) error {
	o, err := p.oligo(id)
	if err != nil {
		return err
	}
	if color == "" {
		return errors.NewInvalidRequest("color must not be empty")
	}
	if o.color != color {
		o.color = color
		p.emit(Event{Kind: OligoChanged, Oligos: []OligoID{id}})
	}
	p.commit()
	return nil
}

// CircularOligos returns the ids of all circular oligos.
func (p *Part) CircularOligos() []OligoID {
	var out []OligoID
	for _, o := range p.Oligos() {
		if o.Circular {
			out = append(out, o.ID)
		}
	}
	return out
}

// Length returns the total base count of an oligo.
func (p *Part) Length(id OligoID) (int, error) {
	o, err := p.oligo(id)
	if err != nil {
		return 0, err
	}
	return p.chainLength(o.strands), nil
}

// Sequence returns an oligo's assigned sequence; unset bases are spaces and
// trailing unset bases are omitted.
func (p *Part) Sequence(id OligoID) (string, error) {
	o, err := p.oligo(id)
	if err != nil {
		return "", err
	}
	return o.seq, nil
}

// OligoStrands returns copies of an oligo's strands in 5'->3' order.
func (p *Part) OligoStrands(id OligoID) ([]Strand, error) {
	o, err := p.oligo(id)
	if err != nil {
		return nil, err
	}
	out := make([]Strand, len(o.strands))
	for i, sid := range o.strands {
		out[i] = *p.strands[sid]
	}
	return out, nil
}

// trimSeq drops trailing unset bases.
func trimSeq(s string) string {
	return strings.TrimRight(s, string(Unset))
}

// padSeq extends s with unset bases to length n.
func padSeq(s string, n int) string {
	if len(s) >= n {
		return s
	}
	return s + strings.Repeat(string(Unset), n-len(s))
}

// splitSeq cuts s at base offset off.
func splitSeq(s string, off int) (string, string) {
	if off >= len(s) {
		return s, ""
	}
	return trimSeq(s[:off]), s[off:]
}

// rotateSeq moves the first off bases of a length-n sequence to its end.
func rotateSeq(s string, off, n int) string {
	if n == 0 {
		return s
	}
	off %= n
	padded := padSeq(s, n)
	return trimSeq(padded[off:] + padded[:off])
}

// fragment returns the bases of s in [off, off+n), padded with unset bases.
func fragment(s string, off, n int) string {
	return padSeq(s, off+n)[off : off+n]
}
