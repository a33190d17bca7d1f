package engine

import (
	"fmt"

	"github.com/pipelined/modular/graph"
	"github.com/pipelined/modular/log"
	"github.com/pipelined/modular/registry"
)

// Defaults.
const (
	DefaultSampleRate          = 44100
	DefaultMaxBlockSize        = 512
	DefaultChannels            = 2
	DefaultMaxNodes            = 256
	DefaultMaxPorts            = 16
	DefaultMaxParams           = 16
	DefaultCommandQueue        = 1024
	DefaultEventQueue          = 256
	DefaultMaxCommandsPerBlock = 256
	DefaultTelemetryInterval   = 8
	DefaultMaxMonitors         = 64
	// DefaultName labels the metrics of engines created without WithName.
	DefaultName = "default"
)

// cpuSmoothing is the weight of the newest load sample.
const cpuSmoothing = 0.3

type config struct {
	name                string
	sampleRate          float64
	maxBlockSize        int
	channels            int
	limits              graph.Limits
	commandQueue        int
	eventQueue          int
	maxCommandsPerBlock int
	telemetryInterval   int
	maxMonitors         int
	registry            *registry.Registry
	logger              log.Logger
}

func defaultConfig() config {
	return config{
		name:         DefaultName,
		sampleRate:   DefaultSampleRate,
		maxBlockSize: DefaultMaxBlockSize,
		channels:     DefaultChannels,
		limits: graph.Limits{
			MaxNodes:   DefaultMaxNodes,
			MaxInputs:  DefaultMaxPorts,
			MaxOutputs: DefaultMaxPorts,
			MaxParams:  DefaultMaxParams,
		},
		commandQueue:        DefaultCommandQueue,
		eventQueue:          DefaultEventQueue,
		maxCommandsPerBlock: DefaultMaxCommandsPerBlock,
		telemetryInterval:   DefaultTelemetryInterval,
		maxMonitors:         DefaultMaxMonitors,
		logger:              log.Silent(),
	}
}

// Option provides a way to set functional parameters to the engine.
type Option func(*config) error

func positive(name string, v int) error {
	if v <= 0 {
		return fmt.Errorf("%w: %s must be positive, got %d", ErrInvalidOption, name, v)
	}
	return nil
}

// WithSampleRate sets the sample rate passed to modules.
func WithSampleRate(sampleRate float64) Option {
	return func(c *config) error {
		if sampleRate <= 0 {
			return fmt.Errorf("%w: sample rate %v", ErrInvalidOption, sampleRate)
		}
		c.sampleRate = sampleRate
		return nil
	}
}

// WithMaxBlockSize sets the buffer capacity. Larger device blocks are
// processed in chunks.
func WithMaxBlockSize(n int) Option {
	return func(c *config) error {
		c.maxBlockSize = n
		return positive("max block size", n)
	}
}

// WithChannels sets the number of interleaved device channels.
func WithChannels(n int) Option {
	return func(c *config) error {
		c.channels = n
		return positive("channels", n)
	}
}

// WithMaxNodes sets the number of node slots.
func WithMaxNodes(n int) Option {
	return func(c *config) error {
		c.limits.MaxNodes = n
		return positive("max nodes", n)
	}
}

// WithMaxPorts sets the number of inputs and outputs a node may have.
func WithMaxPorts(n int) Option {
	return func(c *config) error {
		c.limits.MaxInputs = n
		c.limits.MaxOutputs = n
		return positive("max ports", n)
	}
}

// WithMaxParams sets the number of parameters a node may have.
func WithMaxParams(n int) Option {
	return func(c *config) error {
		c.limits.MaxParams = n
		return positive("max params", n)
	}
}

// WithCommandQueue sets the command queue capacity.
func WithCommandQueue(n int) Option {
	return func(c *config) error {
		c.commandQueue = n
		return positive("command queue", n)
	}
}

// WithEventQueue sets the event queue capacity.
func WithEventQueue(n int) Option {
	return func(c *config) error {
		c.eventQueue = n
		return positive("event queue", n)
	}
}

// WithMaxCommandsPerBlock bounds the commands applied per callback.
func WithMaxCommandsPerBlock(n int) Option {
	return func(c *config) error {
		c.maxCommandsPerBlock = n
		return positive("commands per block", n)
	}
}

// WithTelemetryInterval sets how many callbacks pass between telemetry
// reports.
func WithTelemetryInterval(n int) Option {
	return func(c *config) error {
		c.telemetryInterval = n
		return positive("telemetry interval", n)
	}
}

// WithMaxMonitors sets how many ports can be monitored at once.
func WithMaxMonitors(n int) Option {
	return func(c *config) error {
		c.maxMonitors = n
		return positive("max monitors", n)
	}
}

// WithName sets the label engine metrics are published under. Engines
// created with the same name share one set of metrics.
func WithName(name string) Option {
	return func(c *config) error {
		if name == "" {
			return fmt.Errorf("%w: empty name", ErrInvalidOption)
		}
		c.name = name
		return nil
	}
}

// WithRegistry sets the module catalog. The built-in modules are used
// if this option is not provided.
func WithRegistry(r *registry.Registry) Option {
	return func(c *config) error {
		c.registry = r
		return nil
	}
}

// WithLogger sets logger to the engine. If this option is not provided,
// silent logger is used.
func WithLogger(logger log.Logger) Option {
	return func(c *config) error {
		c.logger = logger
		return nil
	}
}
