package part

import (
	"maps"
	"slices"
	"strconv"

	"github.com/hpungsan/origami/internal/errors"
)

// VirtualHelix owns the forward and reverse strand sets over a shared index domain.
type VirtualHelix struct {
	id         HelixID
	minIdx     int
	maxIdx     int
	name       string
	properties map[string]string
	sets       [2]*StrandSet
}

// HelixInfo is a read-only view of a virtual helix.
type HelixInfo struct {
	ID             HelixID           `json:"id"`
	MinIdx         int               `json:"min_idx"`
	MaxIdx         int               `json:"max_idx"`
	Name           string            `json:"name,omitempty"`
	Properties     map[string]string `json:"properties,omitempty"`
	ForwardStrands int               `json:"forward_strands"`
	ReverseStrands int               `json:"reverse_strands"`
}

func newVirtualHelix(id HelixID, minIdx, maxIdx int) *VirtualHelix {
	return &VirtualHelix{
		id:     id,
		minIdx: minIdx,
		maxIdx: maxIdx,
		sets:   [2]*StrandSet{newStrandSet(id, Forward), newStrandSet(id, Reverse)},
	}
}

func (vh *VirtualHelix) set(dir Direction) *StrandSet {
	return vh.sets[dir]
}

func (vh *VirtualHelix) inDomain(low, high int) bool {
	return low >= vh.minIdx && high <= vh.maxIdx
}

func (vh *VirtualHelix) strandCount() int {
	return vh.sets[Forward].Len() + vh.sets[Reverse].Len()
}

func (vh *VirtualHelix) info() HelixInfo {
	var props map[string]string
	if len(vh.properties) > 0 {
		props = maps.Clone(vh.properties)
	}
	return HelixInfo{
		ID:             vh.id,
		MinIdx:         vh.minIdx,
		MaxIdx:         vh.maxIdx,
		Name:           vh.name,
		Properties:     props,
		ForwardStrands: vh.sets[Forward].Len(),
		ReverseStrands: vh.sets[Reverse].Len(),
	}
}

// AddHelix creates a virtual helix with index domain [minIdx, maxIdx].
func (p *Part) AddHelix(id HelixID, minIdx, maxIdx int) (HelixInfo, error) {
	if _, ok := p.helices[id]; ok {
		return HelixInfo{}, errors.NewInvalidRequest("helix " + strconv.Itoa(int(id)) + " already exists")
	}
	if minIdx > maxIdx {
		return HelixInfo{}, errors.NewInvalidRequest("helix min_idx must not exceed max_idx")
	}

	vh := newVirtualHelix(id, minIdx, maxIdx)
	p.helices[id] = vh
	p.emit(Event{Kind: HelixAdded, Helices: []HelixID{id}})
	p.commit()
	return vh.info(), nil
}

// RemoveHelix destroys an empty virtual helix.
func (p *Part) RemoveHelix(id HelixID) error {
	vh, err := p.helix(id)
	if err != nil {
		return err
	}
	if n := vh.strandCount(); n > 0 {
		return errors.NewHelixNotEmpty(int(id), n)
	}

	delete(p.helices, id)
	p.emit(Event{Kind: HelixRemoved, Helices: []HelixID{id}})
	p.commit()
	return nil
}

// Helix returns a view of one helix.
func (p *Part) Helix(id HelixID) (HelixInfo, error) {
	vh, err := p.helix(id)
	if err != nil {
		return HelixInfo{}, err
	}
	return vh.info(), nil
}

// Helices returns all helices ordered by id.
func (p *Part) Helices() []HelixInfo {
	out := make([]HelixInfo, 0, len(p.helices))
	for _, id := range p.helixIDs() {
		out = append(out, p.helices[id].info())
	}
	return out
}

func (p *Part) helixIDs() []HelixID {
	return slices.Sorted(maps.Keys(p.helices))
}

// StrandSet returns the strand set for (helix, dir) for read-only queries.
func (p *Part) StrandSet(helix HelixID, dir Direction) (*StrandSet, error) {
	return p.set(helix, dir)
}
