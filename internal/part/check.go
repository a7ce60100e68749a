package part

import "fmt"

// Check verifies every structural invariant of the part and returns the first
// violation found.
func (p *Part) Check() error {
	inSets := 0
	for _, hid := range p.helixIDs() {
		vh := p.helices[hid]
		for _, ss := range vh.sets {
			for i, s := range ss.strands {
				if p.strands[s.ID] != s {
					return fmt.Errorf("strand %d in helix %d set is not indexed", s.ID, hid)
				}
				if s.Helix != hid || s.Direction != ss.direction {
					return fmt.Errorf("strand %d filed under wrong helix/direction", s.ID)
				}
				if s.Low > s.High {
					return fmt.Errorf("strand %d has low %d > high %d", s.ID, s.Low, s.High)
				}
				if !vh.inDomain(s.Low, s.High) {
					return fmt.Errorf("strand %d [%d,%d] outside helix %d domain", s.ID, s.Low, s.High, hid)
				}
				if i > 0 && ss.strands[i-1].High >= s.Low {
					return fmt.Errorf("strands %d and %d overlap or are unordered", ss.strands[i-1].ID, s.ID)
				}
				inSets++
			}
		}
	}
	if inSets != len(p.strands) {
		return fmt.Errorf("%d strands indexed but %d filed in strand sets", len(p.strands), inSets)
	}

	for id, s := range p.strands {
		if s.Conn3p != 0 {
			t, ok := p.strands[s.Conn3p]
			if !ok || t.Conn5p != id {
				return fmt.Errorf("strand %d 3' connection to %d is not reciprocal", id, s.Conn3p)
			}
		}
		if s.Conn5p != 0 {
			t, ok := p.strands[s.Conn5p]
			if !ok || t.Conn3p != id {
				return fmt.Errorf("strand %d 5' connection to %d is not reciprocal", id, s.Conn5p)
			}
		}
		if _, ok := p.oligos[s.Oligo]; !ok {
			return fmt.Errorf("strand %d belongs to missing oligo %d", id, s.Oligo)
		}
	}

	members := 0
	for oid, o := range p.oligos {
		if err := p.checkChain(oid, o); err != nil {
			return err
		}
		members += len(o.strands)
	}
	if members != len(p.strands) {
		return fmt.Errorf("%d strands but %d oligo chain entries", len(p.strands), members)
	}
	return nil
}

func (p *Part) checkChain(oid OligoID, o *Oligo) error {
	if o.id != oid {
		return fmt.Errorf("oligo %d filed under id %d", o.id, oid)
	}
	if len(o.strands) == 0 {
		return fmt.Errorf("oligo %d has no strands", oid)
	}
	seen := make(map[StrandID]bool, len(o.strands))
	for i, sid := range o.strands {
		s, ok := p.strands[sid]
		if !ok {
			return fmt.Errorf("oligo %d references missing strand %d", oid, sid)
		}
		if s.Oligo != oid {
			return fmt.Errorf("strand %d listed in oligo %d but owned by %d", sid, oid, s.Oligo)
		}
		if seen[sid] {
			return fmt.Errorf("strand %d appears twice in oligo %d", sid, oid)
		}
		seen[sid] = true
		if i+1 < len(o.strands) && s.Conn3p != o.strands[i+1] {
			return fmt.Errorf("oligo %d chain breaks after strand %d", oid, sid)
		}
	}

	first := p.strands[o.strands[0]]
	last := p.strands[o.strands[len(o.strands)-1]]
	if o.circular {
		if last.Conn3p != first.ID {
			return fmt.Errorf("circular oligo %d does not close", oid)
		}
	} else if first.Conn5p != 0 || last.Conn3p != 0 {
		return fmt.Errorf("linear oligo %d has connected termini", oid)
	}

	if n := p.chainLength(o.strands); len(o.seq) > n {
		return fmt.Errorf("oligo %d sequence length %d exceeds length %d", oid, len(o.seq), n)
	}
	return nil
}
