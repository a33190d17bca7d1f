package signal

// Buffer is a block of samples produced by an output port or read by an
// input port. Its backing arrays are allocated once and resliced on
// block size changes, so it never grows during processing.
type Buffer struct {
	Type Type
	// Samples holds exactly one block.
	Samples []float32
	// Events holds the block's MIDI events ordered by offset.
	Events []Event

	data   []float32
	events []Event
}

// NewBuffer allocates a buffer able to hold capacity samples and
// maxEvents MIDI events. The buffer starts with capacity length.
func NewBuffer(t Type, capacity, maxEvents int) *Buffer {
	b := &Buffer{}
	b.init(t, capacity, maxEvents)
	return b
}

// Init sets up a zero Buffer in place. It is used by owners that keep
// buffers in flat slices.
func (b *Buffer) Init(t Type, capacity, maxEvents int) {
	b.init(t, capacity, maxEvents)
}

func (b *Buffer) init(t Type, capacity, maxEvents int) {
	b.Type = t
	b.data = make([]float32, capacity)
	b.events = make([]Event, maxEvents)
	b.Samples = b.data
	b.Events = b.events[:0]
}

// Len returns the current block length.
func (b *Buffer) Len() int {
	return len(b.Samples)
}

// Cap returns the maximum block length.
func (b *Buffer) Cap() int {
	return len(b.data)
}

// Resize sets the block length. It panics if n exceeds the capacity.
func (b *Buffer) Resize(n int) {
	b.Samples = b.data[:n]
}

// Clear zeroes the samples and drops all events.
func (b *Buffer) Clear() {
	for i := range b.Samples {
		b.Samples[i] = 0
	}
	b.Events = b.Events[:0]
}

// Fill sets every sample to v and drops all events.
func (b *Buffer) Fill(v float32) {
	for i := range b.Samples {
		b.Samples[i] = v
	}
	b.Events = b.Events[:0]
}

// CopyFrom copies src into b, converting samples from the source type
// to b's type. Events are copied only between MIDI buffers.
func (b *Buffer) CopyFrom(src *Buffer) {
	n := copy(b.Samples, src.Samples)
	if NeedsConversion(src.Type, b.Type) {
		for i := 0; i < n; i++ {
			b.Samples[i] = Convert(src.Type, b.Type, b.Samples[i])
		}
	}
	b.Events = b.Events[:0]
	if src.Type == MIDI && b.Type == MIDI {
		for _, e := range src.Events {
			if !b.PushEvent(e) {
				break
			}
		}
	}
}

// PushEvent appends e to the block. It returns false if the event
// capacity is exhausted.
func (b *Buffer) PushEvent(e Event) bool {
	if len(b.Events) == cap(b.Events) {
		return false
	}
	b.Events = append(b.Events, e)
	return true
}

// Peak returns the largest absolute sample value.
func (b *Buffer) Peak() float32 {
	var peak float32
	for _, v := range b.Samples {
		if v < 0 {
			v = -v
		}
		if v > peak {
			peak = v
		}
	}
	return peak
}

// First returns the first sample of the block or 0 if it is empty.
func (b *Buffer) First() float32 {
	if len(b.Samples) == 0 {
		return 0
	}
	return b.Samples[0]
}
