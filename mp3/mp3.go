// Package mp3 renders an engine offline into mp3 files with LAME.
package mp3

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/viert/lame"

	"github.com/pipelined/modular/engine"
	"github.com/pipelined/modular/signal"
)

// BlockSize is the number of frames rendered per Process call.
const BlockSize = 512

// Defaults.
const (
	DefaultBitRate = 192
	DefaultQuality = 2
)

// Render processes samples frames and encodes them into w. Quality
// ranges from 0 (best) to 9.
func Render(w io.Writer, r engine.Renderer, samples int64, bitRate, quality int) error {
	ch := r.Channels()
	wr := lame.NewWriter(w)
	wr.Encoder.SetBitrate(bitRate)
	wr.Encoder.SetQuality(quality)
	wr.Encoder.SetNumChannels(ch)
	wr.Encoder.SetInSamplerate(int(r.SampleRate()))
	if ch == 1 {
		wr.Encoder.SetMode(lame.MONO)
	} else {
		wr.Encoder.SetMode(lame.JOINT_STEREO)
	}
	wr.Encoder.SetVBR(lame.VBR_RH)
	wr.Encoder.InitParams()

	buf := make([]float32, BlockSize*ch)
	ints := make([]int, BlockSize*ch)
	pcm := make([]byte, BlockSize*ch*2)
	for done := int64(0); done < samples; {
		n := int(min(BlockSize, samples-done))
		b := buf[:n*ch]
		r.Process(b)
		signal.AsInts(ints, b, signal.BitDepth16)
		for i := range b {
			binary.LittleEndian.PutUint16(pcm[i*2:], uint16(int16(ints[i])))
		}
		if _, err := wr.Write(pcm[:len(b)*2]); err != nil {
			return err
		}
		done += int64(n)
	}
	return wr.Close()
}

// RenderFile creates an mp3 file at path and renders into it.
func RenderFile(path string, r engine.Renderer, samples int64, bitRate, quality int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Render(f, r, samples, bitRate, quality); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
