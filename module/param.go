package module

import (
	"math"
	"strconv"
)

// Scale hints how a parameter is presented and modulated.
type Scale uint8

const (
	// Linear values change evenly between bounds.
	Linear Scale = iota
	// Logarithmic values are spread over octaves, e.g. frequencies.
	Logarithmic
	// Discrete values are whole numbers, optionally labelled.
	Discrete
	// Toggle is either 0 or 1.
	Toggle
)

func (s Scale) String() string {
	switch s {
	case Linear:
		return "linear"
	case Logarithmic:
		return "log"
	case Discrete:
		return "discrete"
	case Toggle:
		return "toggle"
	default:
		return "unknown"
	}
}

// Param describes a bounded numeric parameter.
type Param struct {
	Name    string   `json:"name" yaml:"name"`
	Min     float32  `json:"min" yaml:"min"`
	Max     float32  `json:"max" yaml:"max"`
	Default float32  `json:"default" yaml:"default"`
	Scale   Scale    `json:"scale" yaml:"scale"`
	Unit    string   `json:"unit,omitempty" yaml:"unit,omitempty"`
	Labels  []string `json:"labels,omitempty" yaml:"labels,omitempty"`
}

// Range declares a linear parameter.
func Range(name string, min, max, def float32, unit string) Param {
	return Param{Name: name, Min: min, Max: max, Default: def, Scale: Linear, Unit: unit}
}

// Log declares a logarithmic parameter.
func Log(name string, min, max, def float32, unit string) Param {
	return Param{Name: name, Min: min, Max: max, Default: def, Scale: Logarithmic, Unit: unit}
}

// Choice declares a discrete parameter over labels.
func Choice(name string, def int, labels ...string) Param {
	return Param{Name: name, Max: float32(len(labels) - 1), Default: float32(def), Scale: Discrete, Labels: labels}
}

// Switch declares a toggle.
func Switch(name string, on bool) Param {
	p := Param{Name: name, Max: 1, Scale: Toggle}
	if on {
		p.Default = 1
	}
	return p
}

// Clamp brings v into the parameter range. NaN maps to the default,
// discrete values are rounded and toggles snap to 0 or 1.
func (p Param) Clamp(v float32) float32 {
	if v != v {
		return p.Default
	}
	switch p.Scale {
	case Discrete:
		v = float32(math.Round(float64(v)))
	case Toggle:
		if v >= 0.5 {
			v = 1
		} else {
			v = 0
		}
	}
	if v < p.Min {
		return p.Min
	}
	if v > p.Max {
		return p.Max
	}
	return v
}

// Format renders v with its label or unit.
func (p Param) Format(v float32) string {
	switch p.Scale {
	case Toggle:
		if v >= 0.5 {
			return "on"
		}
		return "off"
	case Discrete:
		if i := int(v); i >= 0 && i < len(p.Labels) {
			return p.Labels[i]
		}
	}
	s := strconv.FormatFloat(float64(v), 'g', 4, 32)
	if p.Unit != "" {
		s += " " + p.Unit
	}
	return s
}
