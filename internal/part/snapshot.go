package part

import (
	"fmt"
	"maps"
	"slices"

	"github.com/hpungsan/origami/internal/errors"
)

// Snapshot is the flat description a part reduces to and is rebuilt from.
// LastStrand and LastOligo carry the id counters so removed ids are not
// handed out again after a reload.
type Snapshot struct {
	Helices    []HelixRecord  `json:"helices"`
	Strands    []StrandRecord `json:"strands"`
	Oligos     []OligoRecord  `json:"oligos"`
	LastStrand StrandID       `json:"last_strand,omitempty"`
	LastOligo  OligoID        `json:"last_oligo,omitempty"`
}

// HelixRecord describes one virtual helix.
type HelixRecord struct {
	ID         HelixID           `json:"id"`
	MinIdx     int               `json:"min_idx"`
	MaxIdx     int               `json:"max_idx"`
	Name       string            `json:"name,omitempty"`
	Properties map[string]string `json:"properties,omitempty"`
}

// StrandRecord describes one strand and its connection references.
type StrandRecord struct {
	ID        StrandID  `json:"id"`
	Helix     HelixID   `json:"helix"`
	Direction Direction `json:"direction"`
	Low       int       `json:"low_idx"`
	High      int       `json:"high_idx"`
	Conn5p    StrandID  `json:"connection_5p,omitempty"`
	Conn3p    StrandID  `json:"connection_3p,omitempty"`
}

// OligoRecord describes one oligo's strand chain, sequence and color.
type OligoRecord struct {
	ID       OligoID    `json:"id"`
	Strands  []StrandID `json:"strands"`
	Sequence string     `json:"sequence,omitempty"`
	Color    string     `json:"color"`
	Circular bool       `json:"circular,omitempty"`
}

// Snapshot reduces the part to its flat description, ordered by id.
func (p *Part) Snapshot() *Snapshot {
	snap := &Snapshot{
		Helices:    make([]HelixRecord, 0, len(p.helices)),
		Strands:    make([]StrandRecord, 0, len(p.strands)),
		Oligos:     make([]OligoRecord, 0, len(p.oligos)),
		LastStrand: p.lastStrand,
		LastOligo:  p.lastOligo,
	}
	for _, id := range p.helixIDs() {
		vh := p.helices[id]
		var props map[string]string
		if len(vh.properties) > 0 {
			props = maps.Clone(vh.properties)
		}
		snap.Helices = append(snap.Helices, HelixRecord{ID: id, MinIdx: vh.minIdx, MaxIdx: vh.maxIdx, Name: vh.name, Properties: props})
	}
	for _, id := range slices.Sorted(maps.Keys(p.strands)) {
		s := p.strands[id]
		snap.Strands = append(snap.Strands, StrandRecord{
			ID: s.ID, Helix: s.Helix, Direction: s.Direction,
			Low: s.Low, High: s.High, Conn5p: s.Conn5p, Conn3p: s.Conn3p,
		})
	}
	for _, id := range slices.Sorted(maps.Keys(p.oligos)) {
		o := p.oligos[id]
		snap.Oligos = append(snap.Oligos, OligoRecord{
			ID: o.id, Strands: slices.Clone(o.strands), Sequence: o.seq, Color: o.color, Circular: o.circular,
		})
	}
	return snap
}

// FromSnapshot rebuilds a part from its flat description, preserving ids.
// An inconsistent description fails with INVALID_SNAPSHOT.
func FromSnapshot(snap *Snapshot, opts Options) (*Part, error) {
	p := New(opts)
	if snap == nil {
		return p, nil
	}
	invalid := func(format string, args ...any) error {
		return errors.NewInvalidSnapshot(fmt.Errorf(format, args...))
	}
	p.lastStrand = max(snap.LastStrand, 0)
	p.lastOligo = max(snap.LastOligo, 0)

	for _, h := range snap.Helices {
		if _, ok := p.helices[h.ID]; ok {
			return nil, invalid("duplicate helix %d", h.ID)
		}
		if h.MinIdx > h.MaxIdx {
			return nil, invalid("helix %d has empty domain", h.ID)
		}
		vh := newVirtualHelix(h.ID, h.MinIdx, h.MaxIdx)
		vh.name = h.Name
		if len(h.Properties) > 0 {
			vh.properties = maps.Clone(h.Properties)
		}
		p.helices[h.ID] = vh
	}

	for _, r := range snap.Strands {
		if r.ID <= 0 {
			return nil, invalid("strand id %d must be positive", r.ID)
		}
		if _, ok := p.strands[r.ID]; ok {
			return nil, invalid("duplicate strand %d", r.ID)
		}
		vh, ok := p.helices[r.Helix]
		if !ok {
			return nil, invalid("strand %d on missing helix %d", r.ID, r.Helix)
		}
		if !r.Direction.valid() {
			return nil, invalid("strand %d has invalid direction %d", r.ID, r.Direction)
		}
		s := &Strand{ID: r.ID, Helix: r.Helix, Direction: r.Direction, Low: r.Low, High: r.High, Conn5p: r.Conn5p, Conn3p: r.Conn3p}
		if err := vh.set(r.Direction).insert(s); err != nil {
			return nil, invalid("strand %d: %v", r.ID, err)
		}
		p.strands[s.ID] = s
		p.lastStrand = max(p.lastStrand, s.ID)
	}

	for _, r := range snap.Oligos {
		if r.ID <= 0 {
			return nil, invalid("oligo id %d must be positive", r.ID)
		}
		if _, ok := p.oligos[r.ID]; ok {
			return nil, invalid("duplicate oligo %d", r.ID)
		}
		for _, sid := range r.Strands {
			s, ok := p.strands[sid]
			if !ok {
				return nil, invalid("oligo %d references missing strand %d", r.ID, sid)
			}
			if s.Oligo != 0 {
				return nil, invalid("strand %d belongs to oligos %d and %d", sid, s.Oligo, r.ID)
			}
			s.Oligo = r.ID
		}
		color := r.Color
		if color == "" {
			color = p.nextColor()
		}
		p.oligos[r.ID] = &Oligo{id: r.ID, strands: slices.Clone(r.Strands), seq: trimSeq(r.Sequence), circular: r.Circular, color: color}
		p.lastOligo = max(p.lastOligo, r.ID)
	}

	if err := p.Check(); err != nil {
		return nil, errors.NewInvalidSnapshot(err)
	}
	return p, nil
}
