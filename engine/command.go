package engine

import (
	"github.com/pipelined/modular/graph"
	"github.com/pipelined/modular/module"
	"github.com/pipelined/modular/signal"
)

// CommandKind selects the mutation a Command performs.
type CommandKind uint8

// Command kinds.
const (
	AddModule CommandKind = iota + 1
	RemoveModule
	Connect
	Disconnect
	SetParameter
	SetPlaying
	ClearGraph
	Monitor
	Unmonitor
	SendMIDI
	ResetModule
)

func (k CommandKind) String() string {
	switch k {
	case AddModule:
		return "AddModule"
	case RemoveModule:
		return "RemoveModule"
	case Connect:
		return "Connect"
	case Disconnect:
		return "Disconnect"
	case SetParameter:
		return "SetParameter"
	case SetPlaying:
		return "SetPlaying"
	case ClearGraph:
		return "ClearGraph"
	case Monitor:
		return "Monitor"
	case Unmonitor:
		return "Unmonitor"
	case SendMIDI:
		return "SendMIDI"
	case ResetModule:
		return "ResetModule"
	default:
		return "Unknown"
	}
}

// Command is a mutation sent from the control side to the audio
// goroutine. It is plain data, except for AddModule which moves a
// prepared module instance to the audio goroutine.
type Command struct {
	// Seq is assigned by the Controller and increases by one per
	// command.
	Seq  uint64
	Kind CommandKind
	Node graph.NodeID
	// Type is the module type for AddModule.
	Type string
	// Connection is used by Connect.
	Connection graph.Connection
	// Slot and Direction address a port for Disconnect, Monitor and
	// Unmonitor.
	Slot      int
	Direction module.Direction
	// Param and Value are used by SetParameter.
	Param   int
	Value   float32
	Playing bool
	MIDI    signal.Event

	instance module.Module
}
