package part

import (
	"fmt"
	"strings"
)

// HelixID identifies a virtual helix within a part.
type HelixID int

// StrandID identifies a strand within a part. Zero means "no strand".
type StrandID int64

// OligoID identifies an oligo within a part. Zero means "no oligo".
type OligoID int64

// Direction selects one of the two antiparallel strand sets of a helix.
type Direction int

const (
	// Forward strands run 5' at the low index to 3' at the high index.
	Forward Direction = iota
	// Reverse strands run 5' at the high index to 3' at the low index.
	Reverse
)

// String returns "forward" or "reverse".
func (d Direction) String() string {
	if d == Reverse {
		return "reverse"
	}
	return "forward"
}

// Opposite returns the antiparallel direction.
func (d Direction) Opposite() Direction {
	if d == Reverse {
		return Forward
	}
	return Reverse
}

func (d Direction) valid() bool {
	return d == Forward || d == Reverse
}

// ParseDirection accepts "forward"/"fwd"/"0" and "reverse"/"rev"/"1".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "forward", "fwd", "f", "0":
		return Forward, nil
	case "reverse", "rev", "r", "1":
		return Reverse, nil
	}
	return Forward, fmt.Errorf("unknown direction %q", s)
}

// Strand is a contiguous span of bases on one helix and direction.
// Conn5p is the strand whose 3' end joins this strand's 5' end; Conn3p is the
// strand whose 5' end joins this strand's 3' end.
type Strand struct {
	ID        StrandID  `json:"id"`
	Helix     HelixID   `json:"helix"`
	Direction Direction `json:"direction"`
	Low       int       `json:"low_idx"`
	High      int       `json:"high_idx"`
	Conn5p    StrandID  `json:"connection_5p,omitempty"`
	Conn3p    StrandID  `json:"connection_3p,omitempty"`
	Oligo     OligoID   `json:"oligo"`
}

// Length returns the number of bases covered by the strand.
func (s Strand) Length() int {
	return s.High - s.Low + 1
}

// IsForward reports whether the strand runs low-to-high.
func (s Strand) IsForward() bool {
	return s.Direction == Forward
}

// Idx5p returns the index of the 5' terminal base.
func (s Strand) Idx5p() int {
	if s.IsForward() {
		return s.Low
	}
	return s.High
}

// Idx3p returns the index of the 3' terminal base.
func (s Strand) Idx3p() int {
	if s.IsForward() {
		return s.High
	}
	return s.Low
}

// Covers reports whether idx lies within the strand.
func (s Strand) Covers(idx int) bool {
	return idx >= s.Low && idx <= s.High
}

// HasXoverAt reports whether the strand carries a connection at terminal base idx.
func (s Strand) HasXoverAt(idx int) bool {
	return (idx == s.Idx3p() && s.Conn3p != 0) || (idx == s.Idx5p() && s.Conn5p != 0)
}

// offsetOf returns the 5'->3' position of idx within the strand.
func (s Strand) offsetOf(idx int) int {
	if s.IsForward() {
		return idx - s.Low
	}
	return s.High - idx
}
