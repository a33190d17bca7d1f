// Package wav renders an engine offline into wav files.
package wav

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/pipelined/modular/engine"
	"github.com/pipelined/modular/signal"
)

// BlockSize is the number of frames rendered per Process call.
const BlockSize = 512

// pcmFormat is the wav audio format for integer samples.
const pcmFormat = 1

// ErrUnsupportedBitDepth is returned when unsupported bit depth is used.
var ErrUnsupportedBitDepth = errors.New("only 8, 16, 24 and 32 bit depth is supported")

// Render processes samples frames and encodes them into ws.
func Render(ws io.WriteSeeker, r engine.Renderer, samples int64, bitDepth signal.BitDepth) error {
	if !bitDepth.Supported() {
		return fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bitDepth)
	}
	ch := r.Channels()
	sampleRate := int(r.SampleRate())
	e := wav.NewEncoder(ws, sampleRate, int(bitDepth), ch, pcmFormat)
	ib := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: ch,
			SampleRate:  sampleRate,
		},
		SourceBitDepth: int(bitDepth),
	}
	buf := make([]float32, BlockSize*ch)
	data := make([]int, BlockSize*ch)
	for done := int64(0); done < samples; {
		n := int(min(BlockSize, samples-done))
		b := buf[:n*ch]
		r.Process(b)
		ib.Data = data[:n*ch]
		signal.AsInts(ib.Data, b, bitDepth)
		// 8 bit wav samples are unsigned.
		if bitDepth == signal.BitDepth8 {
			for i := range ib.Data {
				ib.Data[i] += 128
			}
		}
		if err := e.Write(ib); err != nil {
			return err
		}
		done += int64(n)
	}
	return e.Close()
}

// RenderFile creates a wav file at path and renders into it.
func RenderFile(path string, r engine.Renderer, samples int64, bitDepth signal.BitDepth) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Render(f, r, samples, bitDepth); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
