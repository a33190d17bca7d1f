/*
Package engine runs the modular graph.

New returns a Controller and a Processor sharing two lock-free queues.
The Processor belongs to the audio goroutine: the device callback calls
Process once per block. The Controller belongs to the control goroutine:
it validates every mutation against its own copy of the graph, so
mistakes are reported synchronously, and sends commands that the
Processor applies at the next block boundary. Telemetry flows back as
events that the control goroutine collects with Poll.
*/
package engine

import (
	"fmt"

	"github.com/rs/xid"
	"gitlab.com/gomidi/midi/v2"

	"github.com/pipelined/modular/graph"
	"github.com/pipelined/modular/internal/spsc"
	"github.com/pipelined/modular/log"
	"github.com/pipelined/modular/metric"
	"github.com/pipelined/modular/module"
	"github.com/pipelined/modular/modules"
	"github.com/pipelined/modular/registry"
	"github.com/pipelined/modular/signal"
)

type portKey struct {
	node graph.NodeID
	slot int
	dir  module.Direction
}

// Telemetry is the newest state reported by the audio goroutine.
type Telemetry struct {
	CPULoad float32
	Left    float32
	Right   float32
	Playing bool
	// Overruns counts Overrun events received.
	Overruns int
}

// Controller mutates the graph from the control goroutine. It is not
// safe for concurrent use.
type Controller struct {
	id       string
	cfg      config
	log      log.Logger
	metric   *metric.Metric
	shadow   *graph.Store
	commands *spsc.Queue[Command]
	events   *spsc.Queue[Event]
	stats    *Stats

	seq      uint64
	nextID   graph.NodeID
	playing  bool
	monitors map[portKey]struct{}
	values   map[portKey]float32
	latest   Telemetry
}

// New creates an engine and applies provided options.
func New(options ...Option) (*Controller, *Processor, error) {
	cfg := defaultConfig()
	for _, option := range options {
		if err := option(&cfg); err != nil {
			return nil, nil, err
		}
	}
	if cfg.registry == nil {
		cfg.registry = modules.Default()
	}
	commands := spsc.New[Command](cfg.commandQueue)
	events := spsc.New[Event](cfg.eventQueue)
	stats := &Stats{}
	id := xid.New().String()
	c := &Controller{
		id:       id,
		cfg:      cfg,
		log:      cfg.logger,
		metric:   metric.New(cfg.name, cfg.sampleRate, stats),
		shadow:   graph.New(cfg.limits),
		commands: commands,
		events:   events,
		stats:    stats,
		nextID:   1,
		monitors: make(map[portKey]struct{}),
		values:   make(map[portKey]float32),
	}
	c.log.Debug(fmt.Sprintf("engine %s (%s): created at %v Hz, %d channels, max block %d", id, cfg.name, cfg.sampleRate, cfg.channels, cfg.maxBlockSize))
	return c, newProcessor(cfg, commands, events, stats), nil
}

// ID returns the engine id.
func (c *Controller) ID() string {
	return c.id
}

// Name returns the label engine metrics are published under.
func (c *Controller) Name() string {
	return c.cfg.name
}

// Stats returns counters of the audio goroutine.
func (c *Controller) Stats() *Stats {
	return c.stats
}

// Registry returns the module catalog.
func (c *Controller) Registry() *registry.Registry {
	return c.cfg.registry
}

// SampleRate returns the engine sample rate.
func (c *Controller) SampleRate() float64 {
	return c.cfg.sampleRate
}

// Channels returns the number of output channels.
func (c *Controller) Channels() int {
	return c.cfg.channels
}

// Pending returns the number of commands not yet applied.
func (c *Controller) Pending() int {
	return c.commands.Len()
}

// Playing reports the last requested transport state.
func (c *Controller) Playing() bool {
	return c.playing
}

// AddModule creates a module of typeID under a fresh id.
func (c *Controller) AddModule(typeID string) (graph.NodeID, error) {
	id := c.nextID
	if err := c.AddModuleWithID(id, typeID); err != nil {
		return 0, err
	}
	return id, nil
}

// AddModuleWithID creates a module of typeID under id. The instance is
// created and prepared here and moved to the audio goroutine.
func (c *Controller) AddModuleWithID(id graph.NodeID, typeID string) error {
	if err := c.reserve(); err != nil {
		return err
	}
	m, err := c.cfg.registry.Create(typeID)
	if err != nil {
		return c.refuse(AddModule, id, err)
	}
	if _, err := c.shadow.Add(id, typeID, m.Descriptor()); err != nil {
		return c.refuse(AddModule, id, err)
	}
	m.Prepare(c.cfg.sampleRate, c.cfg.maxBlockSize)
	if id >= c.nextID {
		c.nextID = id + 1
	}
	c.send(Command{Kind: AddModule, Node: id, Type: typeID, instance: m})
	return nil
}

// RemoveModule deletes a node with all its connections.
func (c *Controller) RemoveModule(id graph.NodeID) error {
	if err := c.reserve(); err != nil {
		return err
	}
	if _, err := c.shadow.Remove(id); err != nil {
		return c.refuse(RemoveModule, id, err)
	}
	for k := range c.monitors {
		if k.node == id {
			delete(c.monitors, k)
			delete(c.values, k)
		}
	}
	c.send(Command{Kind: RemoveModule, Node: id})
	return nil
}

// Connect links an output to an input, replacing the input's previous
// connection.
func (c *Controller) Connect(from graph.NodeID, fromSlot int, to graph.NodeID, toSlot int) error {
	if err := c.reserve(); err != nil {
		return err
	}
	conn := graph.Connection{From: from, FromSlot: fromSlot, To: to, ToSlot: toSlot}
	if _, err := c.shadow.Connect(conn); err != nil {
		return c.refuse(Connect, to, err)
	}
	c.send(Command{Kind: Connect, Node: to, Connection: conn})
	return nil
}

// Disconnect removes the connection of an input or all connections of
// an output.
func (c *Controller) Disconnect(id graph.NodeID, slot int, dir module.Direction) error {
	if err := c.reserve(); err != nil {
		return err
	}
	if _, err := c.shadow.Disconnect(id, slot, dir); err != nil {
		return c.refuse(Disconnect, id, err)
	}
	c.send(Command{Kind: Disconnect, Node: id, Slot: slot, Direction: dir})
	return nil
}

// SetParameter sets a parameter. The value is clamped to its range.
func (c *Controller) SetParameter(id graph.NodeID, index int, value float32) error {
	if err := c.reserve(); err != nil {
		return err
	}
	v, err := c.shadow.SetParam(id, index, value)
	if err != nil {
		return c.refuse(SetParameter, id, err)
	}
	c.send(Command{Kind: SetParameter, Node: id, Param: index, Value: v})
	return nil
}

// SetPlaying starts or stops rendering.
func (c *Controller) SetPlaying(playing bool) error {
	if err := c.reserve(); err != nil {
		return err
	}
	c.playing = playing
	c.send(Command{Kind: SetPlaying, Playing: playing})
	return nil
}

// Clear removes every node.
func (c *Controller) Clear() error {
	if err := c.reserve(); err != nil {
		return err
	}
	c.shadow.Clear()
	c.monitors = make(map[portKey]struct{})
	c.values = make(map[portKey]float32)
	c.send(Command{Kind: ClearGraph})
	return nil
}

// Monitor subscribes to values of a port. Inputs report the first
// sample of a block, outputs the block peak.
func (c *Controller) Monitor(id graph.NodeID, slot int, dir module.Direction) error {
	if err := c.reserve(); err != nil {
		return err
	}
	desc, ok := c.Descriptor(id)
	if !ok {
		return c.refuse(Monitor, id, graph.ErrNodeNotFound)
	}
	if _, ok := desc.Port(dir, slot); !ok {
		return c.refuse(Monitor, id, graph.ErrInvalidPort)
	}
	k := portKey{node: id, slot: slot, dir: dir}
	if _, ok := c.monitors[k]; ok {
		return nil
	}
	if len(c.monitors) == c.cfg.maxMonitors {
		return c.refuse(Monitor, id, ErrTooManyMonitors)
	}
	c.monitors[k] = struct{}{}
	c.send(Command{Kind: Monitor, Node: id, Slot: slot, Direction: dir})
	return nil
}

// Unmonitor cancels a Monitor.
func (c *Controller) Unmonitor(id graph.NodeID, slot int, dir module.Direction) error {
	if err := c.reserve(); err != nil {
		return err
	}
	k := portKey{node: id, slot: slot, dir: dir}
	if _, ok := c.monitors[k]; !ok {
		return c.refuse(Unmonitor, id, ErrNotMonitored)
	}
	delete(c.monitors, k)
	delete(c.values, k)
	c.send(Command{Kind: Unmonitor, Node: id, Slot: slot, Direction: dir})
	return nil
}

// SendMIDI decodes msg and delivers it to a node that receives MIDI.
// Nodes that don't are reported with a Rejected event.
func (c *Controller) SendMIDI(id graph.NodeID, msg midi.Message) error {
	e, ok := signal.EventOf(msg)
	if !ok {
		return fmt.Errorf("%w: %v", ErrUnsupportedMIDI, msg)
	}
	if err := c.reserve(); err != nil {
		return err
	}
	if !c.shadow.Contains(id) {
		return c.refuse(SendMIDI, id, graph.ErrNodeNotFound)
	}
	c.send(Command{Kind: SendMIDI, Node: id, MIDI: e})
	return nil
}

// ResetModule clears the internal state of a node.
func (c *Controller) ResetModule(id graph.NodeID) error {
	if err := c.reserve(); err != nil {
		return err
	}
	if !c.shadow.Contains(id) {
		return c.refuse(ResetModule, id, graph.ErrNodeNotFound)
	}
	c.send(Command{Kind: ResetModule, Node: id})
	return nil
}

// Snapshot copies the graph as the control side sees it.
func (c *Controller) Snapshot() graph.Snapshot {
	return c.shadow.Snapshot()
}

// Descriptor returns the descriptor of a node.
func (c *Controller) Descriptor(id graph.NodeID) (*module.Descriptor, bool) {
	slot, ok := c.shadow.Lookup(id)
	if !ok {
		return nil, false
	}
	return c.shadow.Descriptor(slot), true
}

// Poll receives pending events, updates the telemetry view and passes
// each event to fn if it is not nil. It returns the number of events.
func (c *Controller) Poll(fn func(Event)) int {
	n := 0
	for {
		e, ok := c.events.Pop()
		if !ok {
			return n
		}
		c.observe(e)
		if fn != nil {
			fn(e)
		}
		n++
	}
}

// Latest returns the newest telemetry seen by Poll.
func (c *Controller) Latest() Telemetry {
	return c.latest
}

// Value returns the newest value of a monitored port.
func (c *Controller) Value(id graph.NodeID, slot int, dir module.Direction) (float32, bool) {
	v, ok := c.values[portKey{node: id, slot: slot, dir: dir}]
	return v, ok
}

func (c *Controller) observe(e Event) {
	c.metric.Event()
	switch e.Kind {
	case Level:
		c.latest.Left, c.latest.Right = e.Left, e.Right
	case CPULoad:
		c.latest.CPULoad = e.Value
	case InputValue:
		k := portKey{node: e.Node, slot: e.Slot, dir: module.Input}
		if _, ok := c.monitors[k]; ok {
			c.values[k] = e.Value
		}
	case OutputValue:
		k := portKey{node: e.Node, slot: e.Slot, dir: module.Output}
		if _, ok := c.monitors[k]; ok {
			c.values[k] = e.Value
		}
	case Started:
		c.latest.Playing = true
	case Stopped:
		c.latest.Playing = false
	case Overrun:
		c.latest.Overruns++
	case Rejected:
		c.metric.Rejected()
		c.log.Info(fmt.Sprintf("engine %s: command %d %v node %d rejected: %v", c.id, e.Command.Seq, e.Command.Kind, e.Node, e.Err))
	}
}

// reserve checks that the next command fits into the queue. There is
// only one producer, so a reserved slot can't be taken by anyone else.
func (c *Controller) reserve() error {
	if c.commands.Free() == 0 {
		c.metric.QueueFull()
		return ErrQueueFull
	}
	return nil
}

func (c *Controller) refuse(kind CommandKind, id graph.NodeID, err error) error {
	c.metric.Rejected()
	c.log.Debug(fmt.Sprintf("engine %s: %v node %d refused: %v", c.id, kind, id, err))
	return fmt.Errorf("%v node %d: %w", kind, id, err)
}

func (c *Controller) send(cmd Command) {
	c.seq++
	cmd.Seq = c.seq
	c.commands.Push(cmd)
	c.metric.Command()
	c.log.Debug(fmt.Sprintf("engine %s: command %d %v node %d", c.id, cmd.Seq, cmd.Kind, cmd.Node))
}
