/*
Package pool provides the preallocated buffer arena of the audio graph.

Every node slot owns a fixed set of output buffers and a fixed set of
input scratch buffers. All of them are allocated by New with the largest
block size; nothing is allocated afterwards. Output buffers are read by
downstream nodes through the views returned by Output and Outputs.
*/
package pool

import (
	"github.com/pipelined/modular/module"
	"github.com/pipelined/modular/signal"
)

// Pool holds buffers for maxNodes slots.
type Pool struct {
	maxInputs    int
	maxOutputs   int
	maxBlockSize int
	blockSize    int

	outputs []signal.Buffer
	inputs  []signal.Buffer
	// views are per slot pointer slices over outputs and inputs so
	// modules can be called without building slices. Input views are
	// repointed every block, scratch keeps the slot's own buffers.
	outViews [][]*signal.Buffer
	inViews  [][]*signal.Buffer
	scratch  [][]*signal.Buffer
	active   []bool
}

// New allocates an arena for maxNodes slots with up to maxInputs inputs
// and maxOutputs outputs each. Every buffer holds maxBlockSize samples
// and maxEvents MIDI events.
func New(maxNodes, maxInputs, maxOutputs, maxBlockSize, maxEvents int) *Pool {
	p := &Pool{
		maxInputs:    maxInputs,
		maxOutputs:   maxOutputs,
		maxBlockSize: maxBlockSize,
		blockSize:    maxBlockSize,
		outputs:      make([]signal.Buffer, maxNodes*maxOutputs),
		inputs:       make([]signal.Buffer, maxNodes*maxInputs),
		outViews:     make([][]*signal.Buffer, maxNodes),
		inViews:      make([][]*signal.Buffer, maxNodes),
		scratch:      make([][]*signal.Buffer, maxNodes),
		active:       make([]bool, maxNodes),
	}
	for i := range p.outputs {
		p.outputs[i].Init(signal.Audio, maxBlockSize, maxEvents)
	}
	for i := range p.inputs {
		p.inputs[i].Init(signal.Audio, maxBlockSize, maxEvents)
	}
	for slot := 0; slot < maxNodes; slot++ {
		outs := make([]*signal.Buffer, maxOutputs)
		for i := range outs {
			outs[i] = &p.outputs[slot*maxOutputs+i]
		}
		p.outViews[slot] = outs[:0]
		ins := make([]*signal.Buffer, maxInputs)
		scratch := make([]*signal.Buffer, maxInputs)
		for i := range ins {
			ins[i] = &p.inputs[slot*maxInputs+i]
			scratch[i] = ins[i]
		}
		p.inViews[slot] = ins[:0]
		p.scratch[slot] = scratch[:0]
	}
	return p
}

// Activate assigns buffers to slot according to the ports of d. Output
// and input buffers take the type of their port and are cleared.
func (p *Pool) Activate(slot int, d *module.Descriptor) {
	outs := p.outViews[slot][:0]
	scratch := p.scratch[slot][:0]
	for _, port := range d.Ports {
		var b *signal.Buffer
		if port.Direction == module.Output {
			outs = outs[:len(outs)+1]
			b = outs[len(outs)-1]
		} else {
			scratch = scratch[:len(scratch)+1]
			b = scratch[len(scratch)-1]
		}
		b.Type = port.Type
		b.Resize(p.blockSize)
		b.Clear()
	}
	ins := p.inViews[slot][:len(scratch)]
	copy(ins, scratch)
	p.outViews[slot] = outs
	p.inViews[slot] = ins
	p.scratch[slot] = scratch
	p.active[slot] = true
}

// Deactivate releases the buffers of slot.
func (p *Pool) Deactivate(slot int) {
	p.outViews[slot] = p.outViews[slot][:0]
	p.inViews[slot] = p.inViews[slot][:0]
	p.scratch[slot] = p.scratch[slot][:0]
	p.active[slot] = false
}

// DeactivateAll releases every slot.
func (p *Pool) DeactivateAll() {
	for slot := range p.active {
		p.Deactivate(slot)
	}
}

// Active reports whether slot holds buffers.
func (p *Pool) Active(slot int) bool {
	return p.active[slot]
}

// Output returns the out-th output buffer of slot.
func (p *Pool) Output(slot, out int) *signal.Buffer {
	return p.outViews[slot][out]
}

// Outputs returns the output buffers of slot ordered by port slot.
func (p *Pool) Outputs(slot int) []*signal.Buffer {
	return p.outViews[slot]
}

// Input returns the scratch buffer of the in-th input of slot. It
// holds defaults for unconnected inputs and converted copies of
// sources whose samples must be rewritten.
func (p *Pool) Input(slot, in int) *signal.Buffer {
	return p.scratch[slot][in]
}

// Inputs returns the input views of slot. The caller points each entry
// at the buffer the module reads for that input, so the returned slice
// is reused every block.
func (p *Pool) Inputs(slot int) []*signal.Buffer {
	return p.inViews[slot]
}

// ClearAll zeroes every output buffer of active slots.
func (p *Pool) ClearAll() {
	for slot, ok := range p.active {
		if !ok {
			continue
		}
		for _, b := range p.outViews[slot] {
			b.Clear()
		}
	}
}

// BlockSize returns the current block length.
func (p *Pool) BlockSize() int {
	return p.blockSize
}

// MaxBlockSize returns the capacity of each buffer.
func (p *Pool) MaxBlockSize() int {
	return p.maxBlockSize
}

// SetBlockSize reslices every active buffer to n samples. It panics if
// n exceeds the maximum block size.
func (p *Pool) SetBlockSize(n int) {
	if n == p.blockSize {
		return
	}
	if n > p.maxBlockSize || n < 0 {
		panic("pool: block size out of range")
	}
	p.blockSize = n
	for slot, ok := range p.active {
		if !ok {
			continue
		}
		for _, b := range p.outViews[slot] {
			b.Resize(n)
		}
		for _, b := range p.scratch[slot] {
			b.Resize(n)
		}
	}
}
