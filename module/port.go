package module

import "github.com/pipelined/modular/signal"

// Direction tells inputs from outputs.
type Direction uint8

const (
	// Input ports read signals.
	Input Direction = iota
	// Output ports write signals.
	Output
)

func (d Direction) String() string {
	if d == Input {
		return "in"
	}
	return "out"
}

// ParseDirection accepts "in", "input", "out" and "output".
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "in", "input":
		return Input, true
	case "out", "output":
		return Output, true
	}
	return Input, false
}

// Port is a named, typed endpoint of a module. A port's slot index is
// its position among the ports of the same direction.
type Port struct {
	Name      string      `json:"name" yaml:"name"`
	Direction Direction   `json:"direction" yaml:"direction"`
	Type      signal.Type `json:"type" yaml:"type"`
	// Default is the value an unconnected input reads.
	Default float32 `json:"default,omitempty" yaml:"default,omitempty"`
}

// In declares an input port.
func In(name string, t signal.Type, def float32) Port {
	return Port{Name: name, Direction: Input, Type: t, Default: def}
}

// Out declares an output port.
func Out(name string, t signal.Type) Port {
	return Port{Name: name, Direction: Output, Type: t}
}
