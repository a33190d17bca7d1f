package module

// Category groups module types for listing.
type Category uint8

// Module categories.
const (
	Source Category = iota
	Filter
	Modulator
	Utility
	Effect
	Sink
)

func (c Category) String() string {
	switch c {
	case Source:
		return "source"
	case Filter:
		return "filter"
	case Modulator:
		return "modulator"
	case Utility:
		return "utility"
	case Effect:
		return "effect"
	case Sink:
		return "sink"
	default:
		return "unknown"
	}
}

// Descriptor is the static description of a module type.
type Descriptor struct {
	// Type is the identifier the module is registered under.
	Type        string   `json:"type" yaml:"type"`
	Name        string   `json:"name" yaml:"name"`
	Category    Category `json:"category" yaml:"category"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Ports       []Port   `json:"ports" yaml:"ports"`
	Params      []Param  `json:"params,omitempty" yaml:"params,omitempty"`
	// Terminal outputs are mixed into the device output.
	Terminal bool `json:"terminal,omitempty" yaml:"terminal,omitempty"`
}

// NumInputs returns the number of input ports.
func (d *Descriptor) NumInputs() int {
	return d.count(Input)
}

// NumOutputs returns the number of output ports.
func (d *Descriptor) NumOutputs() int {
	return d.count(Output)
}

func (d *Descriptor) count(dir Direction) int {
	n := 0
	for i := range d.Ports {
		if d.Ports[i].Direction == dir {
			n++
		}
	}
	return n
}

// Port returns the slot-th port of direction dir.
func (d *Descriptor) Port(dir Direction, slot int) (Port, bool) {
	n := 0
	for i := range d.Ports {
		if d.Ports[i].Direction != dir {
			continue
		}
		if n == slot {
			return d.Ports[i], true
		}
		n++
	}
	return Port{}, false
}

// Slot returns the slot index of the named port.
func (d *Descriptor) Slot(dir Direction, name string) (int, bool) {
	n := 0
	for i := range d.Ports {
		if d.Ports[i].Direction != dir {
			continue
		}
		if d.Ports[i].Name == name {
			return n, true
		}
		n++
	}
	return -1, false
}

// Inputs returns a copy of the input ports.
func (d *Descriptor) Inputs() []Port {
	return d.filter(Input)
}

// Outputs returns a copy of the output ports.
func (d *Descriptor) Outputs() []Port {
	return d.filter(Output)
}

func (d *Descriptor) filter(dir Direction) []Port {
	ports := make([]Port, 0, len(d.Ports))
	for _, p := range d.Ports {
		if p.Direction == dir {
			ports = append(ports, p)
		}
	}
	return ports
}

// Param returns the index of the named parameter.
func (d *Descriptor) Param(name string) (int, bool) {
	for i := range d.Params {
		if d.Params[i].Name == name {
			return i, true
		}
	}
	return -1, false
}

// Defaults writes default parameter values into dst and returns it
// resliced to the number of parameters.
func (d *Descriptor) Defaults(dst []float32) []float32 {
	dst = dst[:len(d.Params)]
	for i := range d.Params {
		dst[i] = d.Params[i].Default
	}
	return dst
}
