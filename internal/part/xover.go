package part

import (
	"slices"

	"github.com/hpungsan/origami/internal/errors"
)

// CreateXoverResult describes the oligo produced by a new crossover.
type CreateXoverResult struct {
	Oligo    OligoID `json:"oligo"`
	Absorbed OligoID `json:"absorbed,omitempty"`
	Circular bool    `json:"circular"`
}

// RemoveXoverResult describes the oligos left after a crossover is removed.
// When a circular oligo is opened, Oligo3p is zero.
type RemoveXoverResult struct {
	Oligo5p OligoID `json:"oligo_5p"`
	Oligo3p OligoID `json:"oligo_3p,omitempty"`
	Opened  bool    `json:"opened"`
}

// CreateXover links the 3' end of strand5p to the 5' end of strand3p.
// Different oligos merge with the 5'-side chain first and the 5'-side color;
// linking a linear oligo's 3'-most strand to its own 5'-most strand closes it
// into a circle.
func (p *Part) CreateXover(strand5p, strand3p StrandID) (*CreateXoverResult, error) {
	a, err := p.strand(strand5p)
	if err != nil {
		return nil, err
	}
	b, err := p.strand(strand3p)
	if err != nil {
		return nil, err
	}
	if a.Conn3p != 0 {
		return nil, errors.NewTerminalAlreadyConnected(int64(a.ID), "3'")
	}
	if b.Conn5p != 0 {
		return nil, errors.NewTerminalAlreadyConnected(int64(b.ID), "5'")
	}

	oa, ob := p.oligos[a.Oligo], p.oligos[b.Oligo]
	if oa == ob {
		if oa.circular || oa.strands[0] != b.ID || oa.strands[len(oa.strands)-1] != a.ID {
			return nil, errors.NewDisconnectedCycle(int64(a.ID), int64(b.ID))
		}
		a.Conn3p = b.ID
		b.Conn5p = a.ID
		oa.circular = true
		p.emit(Event{Kind: OligoChanged, Oligos: []OligoID{oa.id}, Strands: []StrandID{a.ID, b.ID}})
		p.commit()
		return &CreateXoverResult{Oligo: oa.id, Circular: true}, nil
	}

	lenA := p.chainLength(oa.strands)
	a.Conn3p = b.ID
	b.Conn5p = a.ID
	for _, id := range ob.strands {
		p.strands[id].Oligo = oa.id
	}
	oa.strands = append(oa.strands, ob.strands...)
	oa.seq = trimSeq(padSeq(oa.seq, lenA) + ob.seq)
	delete(p.oligos, ob.id)

	p.emit(Event{Kind: OligoMerged, Oligos: []OligoID{oa.id, ob.id}, Strands: []StrandID{a.ID, b.ID}})
	p.commit()
	return &CreateXoverResult{Oligo: oa.id, Absorbed: ob.id}, nil
}

// RemoveXover unlinks strand5p's 3' end from strand3p's 5' end. A linear
// oligo splits in two at the junction, sequence included; the shorter piece
// (the 3'-side one on a tie) gets a placeholder color. A circular oligo opens
// into one linear oligo starting at strand3p.
func (p *Part) RemoveXover(strand5p, strand3p StrandID) (*RemoveXoverResult, error) {
	a, err := p.strand(strand5p)
	if err != nil {
		return nil, err
	}
	b, err := p.strand(strand3p)
	if err != nil {
		return nil, err
	}
	if a.Conn3p != b.ID || b.Conn5p != a.ID {
		return nil, errors.NewNotConnected(int64(a.ID), int64(b.ID))
	}

	o := p.oligos[a.Oligo]
	n := p.chainLength(o.strands)
	cut := o.indexOf(a.ID) + 1
	off := p.offsets(o.strands)
	boundary := n
	if cut < len(o.strands) {
		boundary = off[cut]
	}

	a.Conn3p = 0
	b.Conn5p = 0

	if o.circular {
		o.strands = append(slices.Clone(o.strands[cut:]), o.strands[:cut]...)
		o.seq = rotateSeq(o.seq, boundary, n)
		o.circular = false
		p.emit(Event{Kind: OligoChanged, Oligos: []OligoID{o.id}, Strands: []StrandID{a.ID, b.ID}})
		p.commit()
		return &RemoveXoverResult{Oligo5p: o.id, Opened: true}, nil
	}

	head, tail := splitSeq(o.seq, boundary)
	nb := &Oligo{
		id:      p.newOligoID(),
		strands: slices.Clone(o.strands[cut:]),
		seq:     trimSeq(tail),
		color:   o.color,
	}
	o.strands = slices.Clone(o.strands[:cut])
	o.seq = head
	for _, id := range nb.strands {
		p.strands[id].Oligo = nb.id
	}
	p.oligos[nb.id] = nb

	if boundary < n-boundary {
		o.color = p.distinctColor(nb.color)
	} else {
		nb.color = p.distinctColor(o.color)
	}

	p.emit(Event{Kind: OligoSplit, Oligos: []OligoID{o.id, nb.id}, Strands: []StrandID{a.ID, b.ID}})
	p.commit()
	return &RemoveXoverResult{Oligo5p: o.id, Oligo3p: nb.id}, nil
}
