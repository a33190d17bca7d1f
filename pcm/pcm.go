// Package pcm encodes engine output as raw sample bytes for devices
// that pull audio through an io.Reader.
package pcm

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/pipelined/modular/engine"
)

// BytesPerSample is the size of an encoded float32 sample.
const BytesPerSample = 4

// Reader renders blocks of frames on demand and encodes them as float32
// little-endian samples.
type Reader struct {
	r       engine.Renderer
	samples []float32
	pending []byte
	block   []byte
}

// NewReader returns a Reader rendering blocks of frames.
func NewReader(r engine.Renderer, frames int) *Reader {
	n := frames * r.Channels()
	return &Reader{
		r:       r,
		samples: make([]float32, n),
		block:   make([]byte, n*BytesPerSample),
	}
}

var _ io.Reader = (*Reader)(nil)

// Read implements io.Reader. It never fails.
func (r *Reader) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if len(r.pending) == 0 {
			r.render()
		}
		c := copy(p[n:], r.pending)
		r.pending = r.pending[c:]
		n += c
	}
	return n, nil
}

func (r *Reader) render() {
	r.r.Process(r.samples)
	for i, v := range r.samples {
		binary.LittleEndian.PutUint32(r.block[i*BytesPerSample:], math.Float32bits(v))
	}
	r.pending = r.block
}
