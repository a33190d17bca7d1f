package engine

import "github.com/pipelined/modular/graph"

// EventKind tells what an Event reports.
type EventKind uint8

// Event kinds.
const (
	// Level reports output peaks of the last telemetry interval.
	Level EventKind = iota + 1
	// CPULoad reports the smoothed processing load in percent.
	CPULoad
	// InputValue reports the first sample of a monitored input.
	InputValue
	// OutputValue reports the peak of a monitored output.
	OutputValue
	// Started is sent when playback starts.
	Started
	// Stopped is sent when playback stops.
	Stopped
	// Rejected is sent when the audio goroutine refuses a command.
	Rejected
	// Overrun is sent when a callback took longer than its audio.
	Overrun
)

func (k EventKind) String() string {
	switch k {
	case Level:
		return "Level"
	case CPULoad:
		return "CPULoad"
	case InputValue:
		return "InputValue"
	case OutputValue:
		return "OutputValue"
	case Started:
		return "Started"
	case Stopped:
		return "Stopped"
	case Rejected:
		return "Rejected"
	case Overrun:
		return "Overrun"
	default:
		return "Unknown"
	}
}

// Event is telemetry sent from the audio goroutine. Events are lossy:
// they are dropped when the queue is full.
type Event struct {
	Kind EventKind
	Node graph.NodeID
	Slot int
	// Value holds the load, monitored value or overrun ratio.
	Value float32
	// Left and Right are output peaks for Level.
	Left  float32
	Right float32
	// Command and Err describe a rejection.
	Command Command
	Err     error
}
