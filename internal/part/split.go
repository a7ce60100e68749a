package part

import (
	"slices"

	"github.com/hpungsan/origami/internal/errors"
)

// SplitResult describes the two strands that replaced a split strand.
type SplitResult struct {
	Removed  StrandID `json:"removed"`
	Strand5p Strand   `json:"strand_5p"`
	Strand3p Strand   `json:"strand_3p"`
	Oligo    OligoID  `json:"oligo"`
}

// MergeResult describes the strand that replaced two merged strands.
type MergeResult struct {
	Removed []StrandID `json:"removed"`
	Strand  Strand     `json:"strand"`
	Oligo   OligoID    `json:"oligo"`
}

// SplitStrand cuts a strand at idx into [low, idx-1] and [idx, high], joined
// by an internal crossover. The oligo keeps its length and sequence.
func (p *Part) SplitStrand(id StrandID, idx int) (*SplitResult, error) {
	s, err := p.strand(id)
	if err != nil {
		return nil, err
	}
	ss := p.helices[s.Helix].set(s.Direction)
	if !ss.CanSplit(*s, idx) {
		return nil, errors.NewInvalidSplitIndex(int64(id), idx, s.Low, s.High)
	}
	o := p.oligos[s.Oligo]

	left := &Strand{ID: p.newStrandID(), Helix: s.Helix, Direction: s.Direction, Low: s.Low, High: idx - 1, Oligo: o.id}
	right := &Strand{ID: p.newStrandID(), Helix: s.Helix, Direction: s.Direction, Low: idx, High: s.High, Oligo: o.id}
	piece5, piece3 := left, right
	if !s.IsForward() {
		piece5, piece3 = right, left
	}

	// External ends move to the piece holding that terminus; a self-closed
	// strand's loop now runs between the two pieces.
	piece5.Conn5p = s.Conn5p
	if s.Conn5p == s.ID {
		piece5.Conn5p = piece3.ID
	} else if s.Conn5p != 0 {
		p.strands[s.Conn5p].Conn3p = piece5.ID
	}
	piece3.Conn3p = s.Conn3p
	if s.Conn3p == s.ID {
		piece3.Conn3p = piece5.ID
	} else if s.Conn3p != 0 {
		p.strands[s.Conn3p].Conn5p = piece3.ID
	}
	piece5.Conn3p = piece3.ID
	piece3.Conn5p = piece5.ID

	pos := o.indexOf(s.ID)
	o.strands = slices.Replace(o.strands, pos, pos+1, piece5.ID, piece3.ID)
	ss.replace(ss.indexOf(s.ID), 1, left, right)
	delete(p.strands, s.ID)
	p.strands[left.ID] = left
	p.strands[right.ID] = right

	p.emit(Event{Kind: StrandRemoved, Strands: []StrandID{s.ID}})
	p.emit(Event{Kind: StrandAdded, Strands: []StrandID{left.ID, right.ID}})
	p.emit(Event{Kind: OligoChanged, Oligos: []OligoID{o.id}, Strands: []StrandID{piece5.ID, piece3.ID}})
	p.commit()

	return &SplitResult{Removed: s.ID, Strand5p: *piece5, Strand3p: *piece3, Oligo: o.id}, nil
}

// MergeStrand collapses two strands joined by an internal crossover back into
// one. The strands may be given in either order.
func (p *Part) MergeStrand(leftID, rightID StrandID) (*MergeResult, error) {
	left, err := p.strand(leftID)
	if err != nil {
		return nil, err
	}
	right, err := p.strand(rightID)
	if err != nil {
		return nil, err
	}
	if right.Low < left.Low {
		left, right = right, left
	}
	if left.ID == right.ID || left.Helix != right.Helix || left.Direction != right.Direction || left.High+1 != right.Low {
		return nil, errors.NewNotAdjacent(int64(leftID), int64(rightID))
	}
	piece5, piece3 := left, right
	if !left.IsForward() {
		piece5, piece3 = right, left
	}
	if piece5.Conn3p != piece3.ID || piece3.Conn5p != piece5.ID {
		return nil, errors.NewNotAdjacent(int64(leftID), int64(rightID))
	}

	o := p.oligos[piece5.Oligo]
	ss := p.helices[left.Helix].set(left.Direction)
	m := &Strand{ID: p.newStrandID(), Helix: left.Helix, Direction: left.Direction, Low: left.Low, High: right.High, Oligo: o.id}

	// A two-strand circle collapses into a self-closed strand.
	m.Conn5p = piece5.Conn5p
	if m.Conn5p == piece3.ID {
		m.Conn5p = m.ID
	} else if m.Conn5p != 0 {
		p.strands[m.Conn5p].Conn3p = m.ID
	}
	m.Conn3p = piece3.Conn3p
	if m.Conn3p == piece5.ID {
		m.Conn3p = m.ID
	} else if m.Conn3p != 0 {
		p.strands[m.Conn3p].Conn5p = m.ID
	}

	pos := o.indexOf(piece5.ID)
	if pos+1 < len(o.strands) {
		o.strands = slices.Replace(o.strands, pos, pos+2, m.ID)
	} else {
		// piece5 closes a circle onto piece3 at the chain head; rotate so the
		// merged strand sits at the tail.
		n := p.chainLength(o.strands)
		o.seq = rotateSeq(o.seq, piece3.Length(), n)
		o.strands = append(slices.Clone(o.strands[1:pos]), m.ID)
	}
	ss.replace(ss.indexOf(left.ID), 2, m)
	delete(p.strands, left.ID)
	delete(p.strands, right.ID)
	p.strands[m.ID] = m

	removed := []StrandID{left.ID, right.ID}
	p.emit(Event{Kind: StrandRemoved, Strands: removed})
	p.emit(Event{Kind: StrandAdded, Strands: []StrandID{m.ID}})
	p.emit(Event{Kind: OligoChanged, Oligos: []OligoID{o.id}, Strands: []StrandID{m.ID}})
	p.commit()

	return &MergeResult{Removed: removed, Strand: *m, Oligo: o.id}, nil
}
