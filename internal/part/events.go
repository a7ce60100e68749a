package part

// EventKind names a committed change.
type EventKind string

const (
	HelixAdded      EventKind = "helix_added"
	HelixRemoved    EventKind = "helix_removed"
	HelixChanged    EventKind = "helix_changed"
	StrandAdded     EventKind = "strand_added"
	StrandRemoved   EventKind = "strand_removed"
	OligoAdded      EventKind = "oligo_added"
	OligoRemoved    EventKind = "oligo_removed"
	OligoMerged     EventKind = "oligo_merged"
	OligoSplit      EventKind = "oligo_split"
	OligoChanged    EventKind = "oligo_changed"
	SequenceChanged EventKind = "sequence_changed"
)

// Event describes one committed change by kind and affected ids.
// For OligoMerged the first oligo survives and the second was absorbed;
// for OligoSplit the first is the 5'-side piece and the second the new 3'-side piece.
type Event struct {
	Kind    EventKind  `json:"kind"`
	Helices []HelixID  `json:"helices,omitempty"`
	Strands []StrandID `json:"strands,omitempty"`
	Oligos  []OligoID  `json:"oligos,omitempty"`
}

// Observer receives change notifications synchronously after each commit,
// in commit order.
type Observer interface {
	HelicesChanged(Event)
	StrandsChanged(Event)
	OligosChanged(Event)
}

// ObserverFunc adapts a single function to the Observer interface.
type ObserverFunc func(Event)

func (f ObserverFunc) HelicesChanged(e Event) { f(e) }
func (f ObserverFunc) StrandsChanged(e Event) { f(e) }
func (f ObserverFunc) OligosChanged(e Event)  { f(e) }

// Recorder is an Observer that keeps every event it sees.
type Recorder struct {
	Events []Event
}

func (r *Recorder) HelicesChanged(e Event) { r.Events = append(r.Events, e) }
func (r *Recorder) StrandsChanged(e Event) { r.Events = append(r.Events, e) }
func (r *Recorder) OligosChanged(e Event)  { r.Events = append(r.Events, e) }

// Kinds returns the recorded event kinds in order.
func (r *Recorder) Kinds() []EventKind {
	kinds := make([]EventKind, len(r.Events))
	for i, e := range r.Events {
		kinds[i] = e.Kind
	}
	return kinds
}

// Reset drops recorded events.
func (r *Recorder) Reset() {
	r.Events = nil
}

func dispatch(o Observer, e Event) {
	switch e.Kind {
	case HelixAdded, HelixRemoved, HelixChanged:
		o.HelicesChanged(e)
	case StrandAdded, StrandRemoved:
		o.StrandsChanged(e)
	default:
		o.OligosChanged(e)
	}
}
