package part

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/hpungsan/origami/internal/errors"
)

var complement [256]byte

func init() {
	for i := range complement {
		complement[i] = 'N'
	}
	complement['A'] = 'T'
	complement['C'] = 'G'
	complement['G'] = 'C'
	complement['T'] = 'A'
	complement['U'] = 'A'
	complement['R'] = 'Y'
	complement['Y'] = 'R'
	complement['S'] = 'S'
	complement['W'] = 'W'
	complement['K'] = 'M'
	complement['M'] = 'K'
	complement['B'] = 'V'
	complement['V'] = 'B'
	complement['D'] = 'H'
	complement['H'] = 'D'
	complement[Unset] = Unset
}

// iupacBases lists the nucleotide codes a sequence may contain.
const iupacBases = "ACGTURYSWKMBVDHN"

// checkSequence rejects any character that is not an IUPAC nucleotide code.
func checkSequence(seq string) error {
	for i, r := range seq {
		if r > 'z' || !strings.ContainsRune(iupacBases, r&^0x20) {
			return errors.NewInvalidRequest(fmt.Sprintf("invalid base %q at position %d", r, i))
		}
	}
	return nil
}

// Complement returns the Watson-Crick complement of a base; unknown bases map to 'N'.
func Complement(b byte) byte {
	if b >= 'a' && b <= 'z' {
		b -= 'a' - 'A'
	}
	return complement[b]
}

// SequenceResult describes an applied sequence.
type SequenceResult struct {
	Oligo    OligoID                `json:"oligo"`
	Applied  int                    `json:"applied"`
	Length   int                    `json:"length"`
	Warnings []*errors.OrigamiError `json:"warnings,omitempty"`
}

// PropagateResult lists the oligos whose sequence changed by complement propagation.
type PropagateResult struct {
	Source  OligoID   `json:"source"`
	Changed []OligoID `json:"changed"`
}

// ApplySequence assigns seq to an oligo from its 5' end, one base per
// position in chain order. Bases past the end of seq keep their prior value.
// A seq longer than the oligo is truncated and reported as a warning.
func (p *Part) ApplySequence(id OligoID, seq string) (*SequenceResult, error) {
	o, err := p.oligo(id)
	if err != nil {
		return nil, err
	}
	if err := checkSequence(seq); err != nil {
		return nil, err
	}
	n := p.chainLength(o.strands)
	seq = strings.ToUpper(seq)

	result := &SequenceResult{Oligo: id, Length: n}
	if len(seq) > n {
		result.Warnings = append(result.Warnings, errors.NewSequenceTruncated(int64(id), n, len(seq)))
		seq = seq[:n]
	}
	result.Applied = len(seq)

	next := seq
	if len(o.seq) > len(seq) {
		next += o.seq[len(seq):]
	}
	next = trimSeq(next)
	if next != o.seq {
		o.seq = next
		p.emit(Event{Kind: SequenceChanged, Oligos: []OligoID{id}})
	}
	p.commit()
	return result, nil
}

// ClearSequence removes every assigned base of an oligo.
func (p *Part) ClearSequence(id OligoID) error {
	o, err := p.oligo(id)
	if err != nil {
		return err
	}
	if o.seq != "" {
		o.seq = ""
		p.emit(Event{Kind: SequenceChanged, Oligos: []OligoID{id}})
	}
	p.commit()
	return nil
}

// StrandSequence returns a strand's fragment of its oligo's sequence in 5'->3'
// order, with unset bases as spaces.
func (p *Part) StrandSequence(id StrandID) (string, error) {
	s, err := p.strand(id)
	if err != nil {
		return "", err
	}
	o := p.oligos[s.Oligo]
	off := p.offsets(o.strands)[o.indexOf(id)]
	return fragment(o.seq, off, s.Length()), nil
}

// BaseAt returns the base assigned at idx on (helix, dir), or Unset.
func (p *Part) BaseAt(helix HelixID, dir Direction, idx int) (byte, error) {
	s, err := p.strandAt(helix, dir, idx)
	if err != nil {
		return 0, err
	}
	return p.baseAt(s, idx), nil
}

func (p *Part) baseAt(s *Strand, idx int) byte {
	o := p.oligos[s.Oligo]
	pos := p.offsets(o.strands)[o.indexOf(s.ID)] + s.offsetOf(idx)
	if pos < len(o.seq) {
		return o.seq[pos]
	}
	return Unset
}

// PropagateComplement writes the complement of every assigned base of the
// source oligo onto the antiparallel strands paired with it, re-deriving the
// sequence of each oligo touched. Bases paired with the source itself are skipped.
func (p *Part) PropagateComplement(source OligoID) (*PropagateResult, error) {
	src, err := p.oligo(source)
	if err != nil {
		return nil, err
	}

	updates := make(map[OligoID]map[int]byte)
	offsets := p.offsets(src.strands)
	for i, sid := range src.strands {
		s := p.strands[sid]
		opposite := p.helices[s.Helix].set(s.Direction.Opposite())
		for k := 0; k < s.Length(); k++ {
			pos := offsets[i] + k
			if pos >= len(src.seq) {
				break
			}
			base := src.seq[pos]
			if base == Unset {
				continue
			}
			idx := s.Idx5p() + k
			if !s.IsForward() {
				idx = s.Idx5p() - k
			}
			t := opposite.get(idx)
			if t == nil || t.Oligo == src.id {
				continue
			}
			target := p.oligos[t.Oligo]
			tpos := p.offsets(target.strands)[target.indexOf(t.ID)] + t.offsetOf(idx)
			if updates[target.id] == nil {
				updates[target.id] = make(map[int]byte)
			}
			updates[target.id][tpos] = Complement(base)
		}
	}

	result := &PropagateResult{Source: source, Changed: []OligoID{}}
	for _, oid := range slices.Sorted(maps.Keys(updates)) {
		target := p.oligos[oid]
		buf := []byte(padSeq(target.seq, p.chainLength(target.strands)))
		for pos, b := range updates[oid] {
			buf[pos] = b
		}
		next := trimSeq(string(buf))
		if next == target.seq {
			continue
		}
		target.seq = next
		result.Changed = append(result.Changed, oid)
		p.emit(Event{Kind: SequenceChanged, Oligos: []OligoID{oid}})
	}
	p.commit()
	return result, nil
}
