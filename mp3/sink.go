package mp3

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/dudk/mmlmp3/log"
	"github.com/dudk/mmlmp3/metric"
	"github.com/dudk/mmlmp3/wav"
)

// StageName is used for metric and log fields.
const StageName = "encode"

// Option configures Encode.
type Option func(*encoder)

// WithLogger sets logger for encoding.
func WithLogger(l logrus.FieldLogger) Option {
	return func(e *encoder) {
		e.log = l
	}
}

// WithMetric enables encoding metrics.
func WithMetric(m *metric.Metric) Option {
	return func(e *encoder) {
		e.metric = m
	}
}

// encoder submits blocks of FrameSize samples to the codec.
type encoder struct {
	log    logrus.FieldLogger
	metric *metric.Metric
	meter  *metric.Meter

	codec       Codec
	w           io.Writer
	numChannels int
	left, right []int16
	fill        int
	out         []byte
	calls       int
	written     int
}

// Encode converts wav container at containerPath into mp3 file at
// outputPath. The container must be finalized. Output file is removed if
// encoding fails.
func Encode(containerPath, outputPath string, newCodec CodecFunc, options ...Option) (err error) {
	e := encoder{
		log:   log.Discard(),
		left:  make([]int16, FrameSize),
		right: make([]int16, FrameSize),
		out:   make([]byte, OutputBufferSize),
	}
	for _, option := range options {
		option(&e)
	}

	p, err := wav.OpenPump(containerPath)
	if err != nil {
		if errors.Is(err, wav.ErrInvalidFile) {
			return fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
		}
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	defer p.Close()

	format := p.Format()
	if err := validate(format); err != nil {
		return fmt.Errorf("%w: %v", err, containerPath)
	}
	e.numChannels = format.NumChannels

	e.codec, err = newCodec(Settings{
		SampleRate:  format.SampleRate,
		NumChannels: format.NumChannels,
		BitRate:     BitRate,
		Quality:     Quality,
	})
	if err != nil {
		return fmt.Errorf("%w: init: %v", ErrCodec, err)
	}
	defer func() {
		if cerr := e.codec.Close(); cerr != nil {
			e.log.WithField("stage", StageName).Warnf("failed to release codec: %v", cerr)
		}
	}()

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: %v", ErrIO, cerr)
		}
		if err != nil {
			if rerr := os.Remove(outputPath); rerr != nil {
				e.log.WithField("stage", StageName).Warnf("failed to remove incomplete output %v: %v", outputPath, rerr)
			}
		}
	}()

	bw := bufio.NewWriter(f)
	e.w = bw
	e.meter = e.metric.Meter(StageName, format.SampleRate)
	defer e.meter.Done()

	if err = e.run(p); err != nil {
		return err
	}
	if err = bw.Flush(); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	e.log.WithFields(logrus.Fields{
		"stage":  StageName,
		"blocks": e.calls,
		"bytes":  e.written,
	}).Debug("encoded")
	return nil
}

func validate(f wav.Format) error {
	// 16-bit extensible containers carry integer samples only.
	pcm := f.AudioFormat == wav.FormatPCM || f.AudioFormat == wav.FormatExtensible
	if !pcm || f.BitDepth != 16 {
		return fmt.Errorf("%w: only 16-bit integer samples are supported, got %d-bit format %d", ErrUnsupportedFormat, f.BitDepth, f.AudioFormat)
	}
	if f.NumChannels != 1 && f.NumChannels != 2 {
		return fmt.Errorf("%w: only mono and stereo are supported, got %d channels", ErrUnsupportedFormat, f.NumChannels)
	}
	return nil
}

// run reads the whole container, submits blocks and flushes the codec.
func (e *encoder) run(p *wav.Pump) error {
	buf := make([]int, FrameSize*e.numChannels)
	var (
		pending    int
		hasPending bool
	)
	for {
		n, err := p.Read(buf)
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("%w: read samples: %v", ErrIO, err)
		}
		samples := buf[:n]
		if e.numChannels == 1 {
			for _, s := range samples {
				if err := e.push(int16(s), int16(s)); err != nil {
					return err
				}
			}
			continue
		}
		for _, s := range samples {
			if !hasPending {
				pending, hasPending = s, true
				continue
			}
			hasPending = false
			if err := e.push(int16(pending), int16(s)); err != nil {
				return err
			}
		}
	}
	// dangling sample of incomplete stereo frame is dropped.
	if e.fill > 0 {
		if err := e.submit(); err != nil {
			return err
		}
	}
	n, err := e.codec.Flush(e.out)
	return e.emit(n, err)
}

// push appends one sample pair to the current block and submits it once full.
func (e *encoder) push(l, r int16) error {
	e.left[e.fill] = l
	e.right[e.fill] = r
	e.fill++
	if e.fill == FrameSize {
		return e.submit()
	}
	return nil
}

// submit zero-pads current block up to FrameSize and encodes it.
func (e *encoder) submit() error {
	for i := e.fill; i < FrameSize; i++ {
		e.left[i] = 0
		e.right[i] = 0
	}
	e.meter.Block(e.fill)
	e.fill = 0
	e.calls++
	n, err := e.codec.Encode(e.left, e.right, e.out)
	return e.emit(n, err)
}

// emit appends n bytes of codec output to the stream.
func (e *encoder) emit(n int, err error) error {
	switch {
	case err != nil:
		return fmt.Errorf("%w: %v", ErrCodec, err)
	case n < 0:
		return fmt.Errorf("%w: codec returned %d", ErrCodec, n)
	case n > len(e.out):
		return fmt.Errorf("%w: %d bytes exceed output buffer of %d", ErrCodec, n, len(e.out))
	case n == 0:
		return nil
	}
	if _, err := e.w.Write(e.out[:n]); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	e.written += n
	e.meter.Bytes(n)
	return nil
}
