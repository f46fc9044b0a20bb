// Package lame implements mp3.Codec with libmp3lame.
package lame

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/viert/lame"

	"github.com/dudk/mmlmp3/mp3"
)

// Codec encodes blocks with lame. Mono sessions submit only the left
// block, stereo sessions interleave both blocks.
type Codec struct {
	numChannels int
	out         *bytes.Buffer
	wr          *lame.LameWriter
	pcm         []byte
	flushed     bool
	released    bool
}

// New creates constant bitrate lame session.
func New(s mp3.Settings) (mp3.Codec, error) {
	if s.NumChannels != 1 && s.NumChannels != 2 {
		return nil, fmt.Errorf("unsupported number of channels: %d", s.NumChannels)
	}
	if s.SampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate: %d", s.SampleRate)
	}
	c := Codec{
		numChannels: s.NumChannels,
		out:         new(bytes.Buffer),
		pcm:         make([]byte, 0, mp3.FrameSize*2*s.NumChannels),
	}
	c.wr = lame.NewWriter(c.out)
	c.wr.Encoder.SetBitrate(s.BitRate)
	c.wr.Encoder.SetQuality(s.Quality)
	c.wr.Encoder.SetNumChannels(s.NumChannels)
	c.wr.Encoder.SetInSamplerate(s.SampleRate)
	if s.NumChannels == 2 {
		c.wr.Encoder.SetMode(lame.JOINT_STEREO)
	}
	if rc := c.wr.Encoder.InitParams(); rc < 0 {
		c.wr.Encoder.Close()
		return nil, fmt.Errorf("init params: %d", rc)
	}
	return &c, nil
}

// Encode implements mp3.Codec.
func (c *Codec) Encode(left, right []int16, out []byte) (int, error) {
	if err := c.usable(); err != nil {
		return 0, err
	}
	if len(left) != len(right) {
		return 0, fmt.Errorf("left and right blocks must have the same length: %d != %d", len(left), len(right))
	}
	c.pcm = c.pcm[:0]
	for i := range left {
		c.pcm = binary.LittleEndian.AppendUint16(c.pcm, uint16(left[i]))
		if c.numChannels == 2 {
			c.pcm = binary.LittleEndian.AppendUint16(c.pcm, uint16(right[i]))
		}
	}
	if err := guard(func() error {
		_, err := c.wr.Write(c.pcm)
		return err
	}); err != nil {
		return 0, err
	}
	return c.drain(out)
}

// Flush implements mp3.Codec. Codec can't be used after flush.
func (c *Codec) Flush(out []byte) (int, error) {
	if err := c.usable(); err != nil {
		return 0, err
	}
	c.flushed = true
	if err := guard(c.wr.Close); err != nil {
		return 0, err
	}
	return c.drain(out)
}

func (c *Codec) usable() error {
	switch {
	case c.released:
		return errors.New("codec is released")
	case c.flushed:
		return errors.New("codec is flushed")
	}
	return nil
}

// guard converts panics of the binding into errors. It slices encoded
// output with the library return code, which is negative on failure.
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lame: %v", r)
		}
	}()
	return fn()
}

// drain moves encoded bytes into out.
func (c *Codec) drain(out []byte) (int, error) {
	n := c.out.Len()
	if n > len(out) {
		return 0, fmt.Errorf("%d encoded bytes exceed output buffer of %d", n, len(out))
	}
	copy(out, c.out.Bytes())
	c.out.Reset()
	return n, nil
}

// Close releases native encoder. Pending samples of unflushed codec are
// discarded.
func (c *Codec) Close() error {
	if c.released {
		return nil
	}
	c.released = true
	c.wr.Encoder.Close()
	c.out.Reset()
	return nil
}

// Released reports whether native encoder is released.
func (c *Codec) Released() bool {
	return c.released
}
