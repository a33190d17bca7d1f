package engine

import (
	"time"

	"github.com/pipelined/modular/graph"
	"github.com/pipelined/modular/internal/spsc"
	"github.com/pipelined/modular/module"
	"github.com/pipelined/modular/pool"
	"github.com/pipelined/modular/signal"
)

type monitor struct {
	node graph.NodeID
	slot int
	port int
	dir  module.Direction
}

// Renderer is the audio side of an engine as devices see it.
type Renderer interface {
	Process(out []float32)
	Channels() int
	SampleRate() float64
}

// Processor renders the graph. It is owned by the audio goroutine:
// Process must be called from one goroutine at a time and never
// allocates, blocks or logs.
type Processor struct {
	cfg      config
	commands *spsc.Queue[Command]
	events   *spsc.Queue[Event]
	stats    *Stats

	graph    *graph.Store
	pool     *pool.Pool
	modules  []module.Module
	order    []int
	ctx      module.Context
	monitors []monitor

	cpuLoad   float64
	callbacks int
	left      float32
	right     float32
}

func newProcessor(cfg config, commands *spsc.Queue[Command], events *spsc.Queue[Event], stats *Stats) *Processor {
	return &Processor{
		cfg:      cfg,
		commands: commands,
		events:   events,
		stats:    stats,
		graph:    graph.New(cfg.limits),
		pool: pool.New(
			cfg.limits.MaxNodes,
			cfg.limits.MaxInputs,
			cfg.limits.MaxOutputs,
			cfg.maxBlockSize,
			signal.MaxEvents,
		),
		modules:  make([]module.Module, cfg.limits.MaxNodes),
		monitors: make([]monitor, 0, cfg.maxMonitors),
		ctx: module.Context{
			SampleRate: cfg.sampleRate,
			BlockSize:  cfg.maxBlockSize,
		},
	}
}

// Channels returns the number of interleaved channels Process writes.
func (p *Processor) Channels() int {
	return p.cfg.channels
}

// SampleRate returns the engine sample rate.
func (p *Processor) SampleRate() float64 {
	return p.cfg.sampleRate
}

// Process renders len(out)/Channels() interleaved frames. Pending
// commands are applied first, so every mutation takes effect at a
// block boundary. A stopped engine writes silence.
func (p *Processor) Process(out []float32) {
	start := time.Now()
	p.drain()
	order, err := p.graph.Order()
	if err != nil {
		// Connect rejects cycles, a cycle here is a broken store.
		panic(err)
	}
	p.order = order

	ch := p.cfg.channels
	frames := len(out) / ch
	for done := 0; done < frames; {
		n := frames - done
		if n > p.cfg.maxBlockSize {
			n = p.cfg.maxBlockSize
		}
		p.render(out[done*ch:(done+n)*ch], n)
		done += n
	}
	clear(out[frames*ch:])

	p.stats.blocks.Add(1)
	if p.ctx.Transport == module.Playing {
		p.stats.samples.Add(uint64(frames))
	}
	p.report(start, frames)
}

func (p *Processor) render(out []float32, n int) {
	p.pool.SetBlockSize(n)
	p.ctx.BlockSize = n
	p.pool.ClearAll()
	if p.ctx.Transport != module.Playing {
		clear(out)
		return
	}
	for _, slot := range p.order {
		in := p.gather(slot)
		p.modules[slot].Process(in, p.pool.Outputs(slot), p.graph.Params(slot), &p.ctx)
	}
	p.mix(out, n)
	p.ctx.Position += uint64(n)
}

// gather points every input view of slot at the buffer the module
// reads: the source output when connected, a converted copy when the
// source samples must be rewritten, the port default otherwise.
func (p *Processor) gather(slot int) []*signal.Buffer {
	desc := p.graph.Descriptor(slot)
	views := p.pool.Inputs(slot)
	in := 0
	for i := range desc.Ports {
		port := &desc.Ports[i]
		if port.Direction != module.Input {
			continue
		}
		scratch := p.pool.Input(slot, in)
		src, out, ok := p.graph.Source(slot, in)
		if !ok {
			scratch.Fill(port.Default)
			views[in] = scratch
			in++
			continue
		}
		b := p.pool.Output(src, out)
		if signal.NeedsConversion(b.Type, port.Type) {
			scratch.CopyFrom(b)
			views[in] = scratch
		} else {
			views[in] = b
		}
		in++
	}
	return views
}

// mix sums outputs of terminal nodes into out. Output i feeds channel
// i, channels beyond the node's outputs repeat its last output.
func (p *Processor) mix(out []float32, n int) {
	ch := p.cfg.channels
	clear(out)
	for _, slot := range p.order {
		if !p.graph.Descriptor(slot).Terminal {
			continue
		}
		outs := p.pool.Outputs(slot)
		if len(outs) == 0 {
			continue
		}
		for c := 0; c < ch; c++ {
			src := outs[min(c, len(outs)-1)].Samples
			for i := 0; i < n; i++ {
				out[i*ch+c] += src[i]
			}
		}
	}
	for i := 0; i < n; i++ {
		l, r := abs(out[i*ch]), abs(out[i*ch+ch-1])
		if l > p.left {
			p.left = l
		}
		if r > p.right {
			p.right = r
		}
	}
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func (p *Processor) drain() {
	for i := 0; i < p.cfg.maxCommandsPerBlock; i++ {
		cmd, ok := p.commands.Pop()
		if !ok {
			return
		}
		if err := p.apply(&cmd); err != nil {
			cmd.instance = nil
			p.stats.rejected.Add(1)
			p.send(Event{Kind: Rejected, Node: cmd.Node, Command: cmd, Err: err})
		}
	}
}

func (p *Processor) apply(cmd *Command) error {
	switch cmd.Kind {
	case AddModule:
		if cmd.instance == nil {
			return ErrNoInstance
		}
		desc := cmd.instance.Descriptor()
		slot, err := p.graph.Add(cmd.Node, cmd.Type, desc)
		if err != nil {
			return err
		}
		p.modules[slot] = cmd.instance
		p.pool.Activate(slot, desc)
	case RemoveModule:
		slot, err := p.graph.Remove(cmd.Node)
		if err != nil {
			return err
		}
		p.modules[slot] = nil
		p.pool.Deactivate(slot)
		p.dropMonitors(cmd.Node)
	case Connect:
		_, err := p.graph.Connect(cmd.Connection)
		return err
	case Disconnect:
		_, err := p.graph.Disconnect(cmd.Node, cmd.Slot, cmd.Direction)
		return err
	case SetParameter:
		_, err := p.graph.SetParam(cmd.Node, cmd.Param, cmd.Value)
		return err
	case SetPlaying:
		p.setPlaying(cmd.Playing)
	case ClearGraph:
		p.graph.Clear()
		p.pool.DeactivateAll()
		for i := range p.modules {
			p.modules[i] = nil
		}
		p.monitors = p.monitors[:0]
	case Monitor:
		return p.monitor(cmd)
	case Unmonitor:
		return p.unmonitor(cmd)
	case SendMIDI:
		slot, ok := p.graph.Lookup(cmd.Node)
		if !ok {
			return graph.ErrNodeNotFound
		}
		r, ok := p.modules[slot].(module.MIDIReceiver)
		if !ok {
			return ErrNotMIDIReceiver
		}
		if !r.ReceiveMIDI(cmd.MIDI) {
			return ErrMIDIOverflow
		}
	case ResetModule:
		slot, ok := p.graph.Lookup(cmd.Node)
		if !ok {
			return graph.ErrNodeNotFound
		}
		p.modules[slot].Reset()
	default:
		return ErrUnknownCommand
	}
	return nil
}

func (p *Processor) setPlaying(playing bool) {
	current := p.ctx.Transport == module.Playing
	if playing == current {
		return
	}
	if playing {
		p.ctx.Transport = module.Playing
		p.ctx.Position = 0
		p.send(Event{Kind: Started})
	} else {
		p.ctx.Transport = module.Stopped
		p.cpuLoad = 0
		p.stats.setCPULoad(0)
		p.send(Event{Kind: Stopped})
	}
	p.stats.playing.Store(playing)
}

func (p *Processor) monitor(cmd *Command) error {
	slot, ok := p.graph.Lookup(cmd.Node)
	if !ok {
		return graph.ErrNodeNotFound
	}
	if _, ok := p.graph.Descriptor(slot).Port(cmd.Direction, cmd.Slot); !ok {
		return graph.ErrInvalidPort
	}
	for _, m := range p.monitors {
		if m.node == cmd.Node && m.port == cmd.Slot && m.dir == cmd.Direction {
			return nil
		}
	}
	if len(p.monitors) == cap(p.monitors) {
		return ErrTooManyMonitors
	}
	p.monitors = append(p.monitors, monitor{node: cmd.Node, slot: slot, port: cmd.Slot, dir: cmd.Direction})
	return nil
}

func (p *Processor) unmonitor(cmd *Command) error {
	for i, m := range p.monitors {
		if m.node == cmd.Node && m.port == cmd.Slot && m.dir == cmd.Direction {
			p.monitors = append(p.monitors[:i], p.monitors[i+1:]...)
			return nil
		}
	}
	return ErrNotMonitored
}

func (p *Processor) dropMonitors(node graph.NodeID) {
	kept := p.monitors[:0]
	for _, m := range p.monitors {
		if m.node != node {
			kept = append(kept, m)
		}
	}
	p.monitors = kept
}

// report updates the load average and sends telemetry every
// telemetryInterval callbacks.
func (p *Processor) report(start time.Time, frames int) {
	if p.ctx.Transport != module.Playing || frames == 0 {
		return
	}
	elapsed := time.Since(start)
	period := signal.DurationOf(p.cfg.sampleRate, int64(frames))
	load := float64(elapsed) / float64(period) * 100
	p.cpuLoad = p.cpuLoad*(1-cpuSmoothing) + load*cpuSmoothing
	p.stats.setCPULoad(float32(p.cpuLoad))
	if elapsed > period {
		p.stats.xruns.Add(1)
		p.send(Event{Kind: Overrun, Value: float32(load / 100)})
	}

	p.callbacks++
	if p.callbacks < p.cfg.telemetryInterval {
		return
	}
	p.callbacks = 0
	p.send(Event{Kind: CPULoad, Value: float32(p.cpuLoad)})
	p.send(Event{Kind: Level, Left: p.left, Right: p.right})
	p.left, p.right = 0, 0
	for _, m := range p.monitors {
		if m.dir == module.Input {
			p.send(Event{Kind: InputValue, Node: m.node, Slot: m.port, Value: p.pool.Inputs(m.slot)[m.port].First()})
		} else {
			p.send(Event{Kind: OutputValue, Node: m.node, Slot: m.port, Value: p.pool.Output(m.slot, m.port).Peak()})
		}
	}
}

func (p *Processor) send(e Event) {
	if !p.events.Push(e) {
		p.stats.dropped.Add(1)
	}
}
