// Package metric publishes engine counters through expvar.
package metric

import (
	"expvar"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pipelined/modular/signal"
)

const enginesLabel = "modular.engines"

const (
	// CommandCounter counts commands sent to the audio goroutine.
	CommandCounter = "Commands"
	// RejectedCounter counts rejected commands.
	RejectedCounter = "Rejected"
	// QueueFullCounter counts commands refused because the queue was full.
	QueueFullCounter = "QueueFull"
	// EventCounter counts received events.
	EventCounter = "Events"
	// DroppedCounter counts events the audio goroutine could not send.
	DroppedCounter = "Dropped"
	// BlockCounter counts processed device callbacks.
	BlockCounter = "Blocks"
	// SampleCounter counts processed frames.
	SampleCounter = "Samples"
	// DurationCounter is the duration of processed frames.
	DurationCounter = "Duration"
	// CPULoadGauge is the smoothed share of the block period spent
	// processing, in percent.
	CPULoadGauge = "CPULoad"
)

var (
	engines = metrics{
		m: make(map[string]*Metric),
	}

	counters = []string{
		CommandCounter,
		RejectedCounter,
		QueueFullCounter,
		EventCounter,
		DroppedCounter,
		BlockCounter,
		SampleCounter,
		DurationCounter,
		CPULoadGauge,
	}
)

// Source exposes counters maintained by the audio goroutine.
type Source interface {
	Blocks() uint64
	Samples() uint64
	Dropped() uint64
	CPULoad() float32
}

// Metric holds the counters of engines sharing a name.
type Metric struct {
	commands  *expvar.Int
	rejected  *expvar.Int
	queueFull *expvar.Int
	events    *expvar.Int
	bound     atomic.Pointer[binding]
}

type binding struct {
	src        Source
	sampleRate float64
}

// New publishes counters for engine name. Values kept by the audio
// goroutine are read from src when metrics are exported.
//
// expvar entries can't be removed, so they live for the process
// lifetime. Calling New again with the same name returns the existing
// metric bound to the new src: control counters keep accumulating and
// audio counters follow the newest engine.
func New(name string, sampleRate float64, src Source) *Metric {
	engines.Lock()
	defer engines.Unlock()
	if m, ok := engines.m[name]; ok {
		m.bound.Store(&binding{src: src, sampleRate: sampleRate})
		return m
	}
	m := &Metric{
		commands:  expvar.NewInt(key(name, CommandCounter)),
		rejected:  expvar.NewInt(key(name, RejectedCounter)),
		queueFull: expvar.NewInt(key(name, QueueFullCounter)),
		events:    expvar.NewInt(key(name, EventCounter)),
	}
	m.bound.Store(&binding{src: src, sampleRate: sampleRate})
	expvar.Publish(key(name, DroppedCounter), expvar.Func(func() interface{} {
		return m.bound.Load().src.Dropped()
	}))
	expvar.Publish(key(name, BlockCounter), expvar.Func(func() interface{} {
		return m.bound.Load().src.Blocks()
	}))
	expvar.Publish(key(name, SampleCounter), expvar.Func(func() interface{} {
		return m.bound.Load().src.Samples()
	}))
	expvar.Publish(key(name, DurationCounter), duration(func() time.Duration {
		b := m.bound.Load()
		return signal.DurationOf(b.sampleRate, int64(b.src.Samples()))
	}))
	expvar.Publish(key(name, CPULoadGauge), expvar.Func(func() interface{} {
		return strconv.FormatFloat(float64(m.bound.Load().src.CPULoad()), 'f', 2, 32)
	}))
	engines.m[name] = m
	return m
}

// Command counts a sent command.
func (m *Metric) Command() {
	m.commands.Add(1)
}

// Rejected counts a rejected command.
func (m *Metric) Rejected() {
	m.rejected.Add(1)
}

// QueueFull counts a command refused by a full queue.
func (m *Metric) QueueFull() {
	m.queueFull.Add(1)
}

// Event counts a received event.
func (m *Metric) Event() {
	m.events.Add(1)
}

// Get metrics values for engine name.
func Get(name string) map[string]string {
	m := make(map[string]string)
	for _, counter := range counters {
		v := expvar.Get(key(name, counter))
		if v != nil {
			m[counter] = v.String()
		}
	}
	return m
}

// Engines returns names of all measured engines.
func Engines() []string {
	engines.Lock()
	defer engines.Unlock()
	names := make([]string, 0, len(engines.m))
	for name := range engines.m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type metrics struct {
	sync.Mutex
	m map[string]*Metric
}

func key(name, counter string) string {
	return fmt.Sprintf("%s.%s.%s", enginesLabel, name, counter)
}

// duration allows to format time.Duration metric values.
type duration func() time.Duration

func (d duration) String() string {
	return strconv.Quote(d().String())
}
