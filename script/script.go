/*
Package script drives a running engine from Lua.

Scripts get these globals:

	id = add("osc")             -- or add("osc", 7) to pick the id
	remove(id)
	connect(from, "out", to, "in") -- ports by name or zero based slot
	disconnect(id, "in", "in")  -- port, then direction "in" or "out"
	set(id, "frequency", 220)   -- parameter by name or index
	play() / stop()
	note_on(id, 60, 100) / note_off(id, 60)
	sleep(0.5)                  -- seconds, engine events are polled meanwhile
	log("text")

Every failed command raises a Lua error with the engine error text.
*/
package script

import (
	"context"
	"errors"
	"fmt"
	"time"

	lua "github.com/yuin/gopher-lua"
	"gitlab.com/gomidi/midi/v2"

	"github.com/pipelined/modular/engine"
	"github.com/pipelined/modular/graph"
	"github.com/pipelined/modular/log"
	"github.com/pipelined/modular/module"
)

// Controller is the part of engine.Controller scripts use.
type Controller interface {
	AddModule(typeID string) (graph.NodeID, error)
	AddModuleWithID(id graph.NodeID, typeID string) error
	RemoveModule(id graph.NodeID) error
	Connect(from graph.NodeID, fromSlot int, to graph.NodeID, toSlot int) error
	Disconnect(id graph.NodeID, slot int, dir module.Direction) error
	SetParameter(id graph.NodeID, index int, value float32) error
	SetPlaying(playing bool) error
	SendMIDI(id graph.NodeID, msg midi.Message) error
	Descriptor(id graph.NodeID) (*module.Descriptor, bool)
	Poll(fn func(engine.Event)) int
}

// DefaultPollInterval is how often events are polled during sleep and
// while waiting for queue space.
const DefaultPollInterval = 10 * time.Millisecond

// Script runs Lua sources against a controller.
type Script struct {
	c        Controller
	log      log.Logger
	interval time.Duration
	onEvent  func(engine.Event)
}

// Option configures a Script.
type Option func(*Script)

// WithLogger sets the logger that receives log calls.
func WithLogger(l log.Logger) Option {
	return func(s *Script) {
		s.log = l
	}
}

// WithPollInterval sets the poll interval.
func WithPollInterval(d time.Duration) Option {
	return func(s *Script) {
		s.interval = d
	}
}

// WithEvents passes polled events to fn.
func WithEvents(fn func(engine.Event)) Option {
	return func(s *Script) {
		s.onEvent = fn
	}
}

// New returns a Script.
func New(c Controller, options ...Option) *Script {
	s := &Script{
		c:        c,
		log:      log.Silent(),
		interval: DefaultPollInterval,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// Run executes src. It returns ctx.Err() if ctx is done before the
// script ends.
func (s *Script) Run(ctx context.Context, src string) error {
	return s.run(ctx, func(L *lua.LState) error { return L.DoString(src) })
}

// RunFile executes the script at path.
func (s *Script) RunFile(ctx context.Context, path string) error {
	return s.run(ctx, func(L *lua.LState) error { return L.DoFile(path) })
}

func (s *Script) run(ctx context.Context, do func(*lua.LState) error) error {
	L := lua.NewState()
	defer L.Close()
	L.SetContext(ctx)
	s.register(ctx, L)
	err := do(L)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func (s *Script) register(ctx context.Context, L *lua.LState) {
	funcs := map[string]lua.LGFunction{
		"add":        s.add(ctx),
		"remove":     s.remove(ctx),
		"connect":    s.connect(ctx),
		"disconnect": s.disconnect(ctx),
		"set":        s.set(ctx),
		"play":       s.playing(ctx, true),
		"stop":       s.playing(ctx, false),
		"note_on":    s.note(ctx, true),
		"note_off":   s.note(ctx, false),
		"sleep":      s.sleep(ctx),
		"log":        s.print,
	}
	for name, fn := range funcs {
		L.SetGlobal(name, L.NewFunction(fn))
	}
}

// send retries fn while the command queue is full.
func (s *Script) send(ctx context.Context, L *lua.LState, fn func() error) {
	for {
		err := fn()
		if err == nil {
			return
		}
		if !errors.Is(err, engine.ErrQueueFull) {
			L.RaiseError("%v", err)
			return
		}
		if !s.wait(ctx, s.interval) {
			L.RaiseError("%v", ctx.Err())
			return
		}
	}
}

// wait polls events for d. It returns false if ctx is done first.
func (s *Script) wait(ctx context.Context, d time.Duration) bool {
	deadline := time.NewTimer(d)
	defer deadline.Stop()
	t := time.NewTicker(s.interval)
	defer t.Stop()
	for {
		s.c.Poll(s.onEvent)
		select {
		case <-ctx.Done():
			return false
		case <-deadline.C:
			s.c.Poll(s.onEvent)
			return true
		case <-t.C:
		}
	}
}

func (s *Script) add(ctx context.Context) lua.LGFunction {
	return func(L *lua.LState) int {
		typeID := L.CheckString(1)
		var id graph.NodeID
		if L.GetTop() >= 2 {
			id = checkNode(L, 2)
			s.send(ctx, L, func() error { return s.c.AddModuleWithID(id, typeID) })
		} else {
			s.send(ctx, L, func() (err error) {
				id, err = s.c.AddModule(typeID)
				return err
			})
		}
		L.Push(lua.LNumber(id))
		return 1
	}
}

func (s *Script) remove(ctx context.Context) lua.LGFunction {
	return func(L *lua.LState) int {
		id := checkNode(L, 1)
		s.send(ctx, L, func() error { return s.c.RemoveModule(id) })
		return 0
	}
}

func (s *Script) connect(ctx context.Context) lua.LGFunction {
	return func(L *lua.LState) int {
		from := checkNode(L, 1)
		fromSlot := s.checkSlot(L, 2, from, module.Output)
		to := checkNode(L, 3)
		toSlot := s.checkSlot(L, 4, to, module.Input)
		s.send(ctx, L, func() error { return s.c.Connect(from, fromSlot, to, toSlot) })
		return 0
	}
}

func (s *Script) disconnect(ctx context.Context) lua.LGFunction {
	return func(L *lua.LState) int {
		id := checkNode(L, 1)
		dir, ok := module.ParseDirection(L.OptString(3, "in"))
		if !ok {
			L.ArgError(3, `direction must be "in" or "out"`)
		}
		slot := s.checkSlot(L, 2, id, dir)
		s.send(ctx, L, func() error { return s.c.Disconnect(id, slot, dir) })
		return 0
	}
}

func (s *Script) set(ctx context.Context) lua.LGFunction {
	return func(L *lua.LState) int {
		id := checkNode(L, 1)
		var index int
		switch v := L.CheckAny(2).(type) {
		case lua.LNumber:
			index = int(v)
		case lua.LString:
			desc := s.descriptor(L, id)
			i, ok := desc.Param(string(v))
			if !ok {
				L.ArgError(2, fmt.Sprintf("%s has no parameter %q", desc.Type, string(v)))
			}
			index = i
		default:
			L.TypeError(2, lua.LTNumber)
		}
		value := float32(L.CheckNumber(3))
		s.send(ctx, L, func() error { return s.c.SetParameter(id, index, value) })
		return 0
	}
}

func (s *Script) playing(ctx context.Context, playing bool) lua.LGFunction {
	return func(L *lua.LState) int {
		s.send(ctx, L, func() error { return s.c.SetPlaying(playing) })
		return 0
	}
}

func (s *Script) note(ctx context.Context, on bool) lua.LGFunction {
	return func(L *lua.LState) int {
		id := checkNode(L, 1)
		key := checkData(L, 2, L.CheckInt(2))
		msg := midi.NoteOff(0, key)
		if on {
			msg = midi.NoteOn(0, key, checkData(L, 3, L.OptInt(3, 100)))
		}
		s.send(ctx, L, func() error { return s.c.SendMIDI(id, msg) })
		return 0
	}
}

func (s *Script) sleep(ctx context.Context) lua.LGFunction {
	return func(L *lua.LState) int {
		d := time.Duration(float64(L.CheckNumber(1)) * float64(time.Second))
		if !s.wait(ctx, d) {
			L.RaiseError("%v", ctx.Err())
		}
		return 0
	}
}

func (s *Script) print(L *lua.LState) int {
	s.log.Info(L.CheckString(1))
	return 0
}

func (s *Script) descriptor(L *lua.LState, id graph.NodeID) *module.Descriptor {
	desc, ok := s.c.Descriptor(id)
	if !ok {
		L.RaiseError("node %d: %v", id, graph.ErrNodeNotFound)
	}
	return desc
}

// checkSlot accepts a slot number or a port name.
func (s *Script) checkSlot(L *lua.LState, n int, id graph.NodeID, dir module.Direction) int {
	switch v := L.CheckAny(n).(type) {
	case lua.LNumber:
		return int(v)
	case lua.LString:
		desc := s.descriptor(L, id)
		slot, ok := desc.Slot(dir, string(v))
		if !ok {
			L.ArgError(n, fmt.Sprintf("%s has no %v port %q", desc.Type, dir, string(v)))
		}
		return slot
	}
	L.TypeError(n, lua.LTNumber)
	return 0
}

func checkNode(L *lua.LState, n int) graph.NodeID {
	v := L.CheckInt(n)
	if v < 0 {
		L.ArgError(n, "node id must not be negative")
	}
	return graph.NodeID(v)
}

// checkData checks a 7 bit MIDI data byte.
func checkData(L *lua.LState, n int, v int) uint8 {
	if v < 0 || v > 127 {
		L.ArgError(n, "must be within 0..127")
	}
	return uint8(v)
}
