// Package part holds the strand/crossover/oligo model of a DNA-origami design.
//
// A Part owns every virtual helix, strand and oligo. Strands and oligos refer
// to each other by id only. Every mutating command validates completely before
// touching state, so a returned error always means nothing changed; observers
// are notified after the change is committed.
package part

import (
	"fmt"
	"strconv"

	"github.com/hpungsan/origami/internal/errors"
)

var fallbackPalette = []string{"#cc0000", "#007200", "#1700de", "#b8056c", "#888888"}

// Options configures a new Part.
type Options struct {
	// Palette is the color cycle for new oligos and split placeholders.
	Palette []string
	// VerifyInvariants runs Check after every commit and panics on violation.
	VerifyInvariants bool
	// Observers are subscribed before any command runs.
	Observers []Observer
}

// Part is the top-level design aggregate.
type Part struct {
	helices map[HelixID]*VirtualHelix
	strands map[StrandID]*Strand
	oligos  map[OligoID]*Oligo

	lastStrand StrandID
	lastOligo  OligoID

	palette     []string
	colorCursor int

	verify    bool
	observers []Observer
	pending   []Event
}

// New creates an empty part.
func New(opts Options) *Part {
	palette := opts.Palette
	if len(palette) == 0 {
		palette = fallbackPalette
	}
	return &Part{
		helices:   make(map[HelixID]*VirtualHelix),
		strands:   make(map[StrandID]*Strand),
		oligos:    make(map[OligoID]*Oligo),
		palette:   append([]string(nil), palette...),
		verify:    opts.VerifyInvariants,
		observers: append([]Observer(nil), opts.Observers...),
	}
}

// Subscribe adds an observer for subsequent commits.
func (p *Part) Subscribe(o Observer) {
	p.observers = append(p.observers, o)
}

func (p *Part) emit(e Event) {
	p.pending = append(p.pending, e)
}

// commit ends a command: it optionally re-verifies the whole part and then
// delivers the command's events.
func (p *Part) commit() {
	if p.verify {
		if err := p.Check(); err != nil {
			panic(fmt.Sprintf("part: internal consistency fault: %v", err))
		}
	}
	events := p.pending
	p.pending = nil
	for _, e := range events {
		for _, o := range p.observers {
			dispatch(o, e)
		}
	}
}

func (p *Part) newStrandID() StrandID {
	p.lastStrand++
	return p.lastStrand
}

func (p *Part) newOligoID() OligoID {
	p.lastOligo++
	return p.lastOligo
}

// nextColor returns the next palette color in rotation.
func (p *Part) nextColor() string {
	c := p.palette[p.colorCursor%len(p.palette)]
	p.colorCursor++
	return c
}

// distinctColor returns the next palette color that differs from avoid.
// With a single-color palette it returns that color.
func (p *Part) distinctColor(avoid string) string {
	for range p.palette {
		if c := p.nextColor(); c != avoid {
			return c
		}
	}
	return p.palette[0]
}

func formatStrand(id StrandID) string { return strconv.FormatInt(int64(id), 10) }
func formatOligo(id OligoID) string   { return strconv.FormatInt(int64(id), 10) }

func (p *Part) helix(id HelixID) (*VirtualHelix, error) {
	vh, ok := p.helices[id]
	if !ok {
		return nil, errors.NewNotFound("helix", strconv.Itoa(int(id)))
	}
	return vh, nil
}

func (p *Part) set(helix HelixID, dir Direction) (*StrandSet, error) {
	if !dir.valid() {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("invalid direction %d", dir))
	}
	vh, err := p.helix(helix)
	if err != nil {
		return nil, err
	}
	return vh.set(dir), nil
}

func (p *Part) strand(id StrandID) (*Strand, error) {
	s, ok := p.strands[id]
	if !ok {
		return nil, errors.NewNotFound("strand", formatStrand(id))
	}
	return s, nil
}

func (p *Part) oligo(id OligoID) (*Oligo, error) {
	o, ok := p.oligos[id]
	if !ok {
		return nil, errors.NewNotFound("oligo", formatOligo(id))
	}
	return o, nil
}

func (p *Part) strandAt(helix HelixID, dir Direction, idx int) (*Strand, error) {
	ss, err := p.set(helix, dir)
	if err != nil {
		return nil, err
	}
	s := ss.get(idx)
	if s == nil {
		return nil, errors.NewNotFound("strand", fmt.Sprintf("helix %d %s idx %d", helix, dir, idx))
	}
	return s, nil
}

// Strand returns a copy of the strand with the given id.
func (p *Part) Strand(id StrandID) (Strand, error) {
	s, err := p.strand(id)
	if err != nil {
		return Strand{}, err
	}
	return *s, nil
}

// GetStrand returns the strand covering idx on (helix, dir).
func (p *Part) GetStrand(helix HelixID, dir Direction, idx int) (Strand, error) {
	s, err := p.strandAt(helix, dir, idx)
	if err != nil {
		return Strand{}, err
	}
	return *s, nil
}

// GetOligoAt returns the oligo owning the strand that covers idx on (helix, dir).
func (p *Part) GetOligoAt(helix HelixID, dir Direction, idx int) (OligoInfo, error) {
	s, err := p.strandAt(helix, dir, idx)
	if err != nil {
		return OligoInfo{}, err
	}
	return p.oligos[s.Oligo].info(p), nil
}

// StrandCount returns the number of strands in the part.
func (p *Part) StrandCount() int {
	return len(p.strands)
}

// AddStrand creates a strand on (helix, dir) covering [low, high] as a new
// single-strand oligo.
func (p *Part) AddStrand(helix HelixID, dir Direction, low, high int) (Strand, error) {
	ss, err := p.set(helix, dir)
	if err != nil {
		return Strand{}, err
	}
	if low > high {
		return Strand{}, errors.NewInvalidRequest("low_idx must not exceed high_idx")
	}
	vh := p.helices[helix]
	if !vh.inDomain(low, high) {
		return Strand{}, errors.NewIndexOutOfRange(int(helix), low, high, vh.minIdx, vh.maxIdx)
	}
	if err := ss.checkFree(low, high); err != nil {
		return Strand{}, err
	}

	s := &Strand{ID: p.newStrandID(), Helix: helix, Direction: dir, Low: low, High: high}
	o := &Oligo{id: p.newOligoID(), strands: []StrandID{s.ID}, color: p.nextColor()}
	s.Oligo = o.id
	if err := ss.insert(s); err != nil {
		return Strand{}, err
	}
	p.strands[s.ID] = s
	p.oligos[o.id] = o

	p.emit(Event{Kind: StrandAdded, Strands: []StrandID{s.ID}})
	p.emit(Event{Kind: OligoAdded, Oligos: []OligoID{o.id}, Strands: []StrandID{s.ID}})
	p.commit()
	return *s, nil
}

// RemoveStrand deletes an unconnected strand and its single-strand oligo.
func (p *Part) RemoveStrand(id StrandID) error {
	s, err := p.strand(id)
	if err != nil {
		return err
	}
	ss := p.helices[s.Helix].set(s.Direction)
	if err := ss.remove(s); err != nil {
		return err
	}

	delete(p.strands, id)
	delete(p.oligos, s.Oligo)
	p.emit(Event{Kind: StrandRemoved, Strands: []StrandID{id}})
	p.emit(Event{Kind: OligoRemoved, Oligos: []OligoID{s.Oligo}})
	p.commit()
	return nil
}
