// Package wav reads and writes the intermediate PCM container.
package wav

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// BitDepth of containers written by Sink.
const BitDepth = 16

// FormatPCM is the WAVE format tag of integer PCM data.
const FormatPCM = 1

// FormatExtensible is the WAVE_FORMAT_EXTENSIBLE tag. Its samples are
// decoded by bit depth like plain PCM.
const FormatExtensible = 0xFFFE

type (
	// Pump reads samples from wav file. It doesn't validate sample format,
	// callers decide which formats they accept.
	Pump struct {
		path    string
		file    *os.File
		decoder *wav.Decoder
		format  Format
		ib      *audio.IntBuffer
	}

	// Sink saves interleaved 16-bit samples to wav file. Sample rate and
	// number of channels are fixed at creation.
	Sink struct {
		path        string
		numChannels int
		file        *os.File
		encoder     *wav.Encoder
		ib          *audio.IntBuffer
		frames      int
	}

	// Format describes container header.
	Format struct {
		SampleRate  int
		NumChannels int
		BitDepth    int
		AudioFormat int
	}
)

// ErrInvalidFile is returned when the file doesn't contain a valid wav header.
var ErrInvalidFile = errors.New("wav is not valid")

// OpenPump opens wav file and reads its header.
func OpenPump(path string) (*Pump, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	decoder := wav.NewDecoder(file)
	if !decoder.IsValidFile() {
		if err := file.Close(); err != nil {
			return nil, fmt.Errorf("%w, failed to close the file %v: %v", ErrInvalidFile, path, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, path)
	}
	if err := decoder.FwdToPCM(); err != nil {
		file.Close()
		return nil, fmt.Errorf("%w: %v: %v", ErrInvalidFile, path, err)
	}

	return &Pump{
		path:    path,
		file:    file,
		decoder: decoder,
		format: Format{
			SampleRate:  int(decoder.SampleRate),
			NumChannels: int(decoder.NumChans),
			BitDepth:    int(decoder.BitDepth),
			AudioFormat: int(decoder.WavAudioFormat),
		},
	}, nil
}

// Format returns container header attributes.
func (p *Pump) Format() Format {
	return p.format
}

// Read reads interleaved samples into buf and returns number of samples
// read. io.EOF is returned once no samples are left.
func (p *Pump) Read(buf []int) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}
	if p.ib == nil || len(p.ib.Data) != len(buf) {
		p.ib = &audio.IntBuffer{
			Format:         p.decoder.Format(),
			Data:           make([]int, len(buf)),
			SourceBitDepth: p.format.BitDepth,
		}
	}
	n, err := p.decoder.PCMBuffer(p.ib)
	if err != nil && err != io.EOF {
		return 0, err
	}
	if n == 0 {
		return 0, io.EOF
	}
	copy(buf, p.ib.Data[:n])
	return n, nil
}

// Close closes the file.
func (p *Pump) Close() error {
	return p.file.Close()
}

// NewSink creates wav file and writes its header, so even a container
// without samples is well-formed once closed.
func NewSink(path string, sampleRate, numChannels int) (*Sink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	s := Sink{
		path:        path,
		numChannels: numChannels,
		file:        f,
		encoder:     wav.NewEncoder(f, sampleRate, BitDepth, numChannels, FormatPCM),
		ib: &audio.IntBuffer{
			Format: &audio.Format{
				NumChannels: numChannels,
				SampleRate:  sampleRate,
			},
			Data:           []int{},
			SourceBitDepth: BitDepth,
		},
	}
	if err := s.encoder.Write(s.ib); err != nil {
		f.Close()
		return nil, err
	}
	return &s, nil
}

// WriteStereo appends left[i], right[i] pairs to the container.
func (s *Sink) WriteStereo(left, right []int16) error {
	if s.numChannels != 2 {
		return fmt.Errorf("stereo write to %d channel container", s.numChannels)
	}
	if len(left) != len(right) {
		return fmt.Errorf("channel length mismatch: %d != %d", len(left), len(right))
	}
	if cap(s.ib.Data) < 2*len(left) {
		s.ib.Data = make([]int, 2*len(left))
	}
	s.ib.Data = s.ib.Data[:2*len(left)]
	for i := range left {
		s.ib.Data[2*i] = int(left[i])
		s.ib.Data[2*i+1] = int(right[i])
	}
	return s.write()
}

// WriteInterleaved appends interleaved samples to the container.
func (s *Sink) WriteInterleaved(samples []int16) error {
	if len(samples)%s.numChannels != 0 {
		return fmt.Errorf("%d samples is not a whole number of %d channel frames", len(samples), s.numChannels)
	}
	if cap(s.ib.Data) < len(samples) {
		s.ib.Data = make([]int, len(samples))
	}
	s.ib.Data = s.ib.Data[:len(samples)]
	for i := range samples {
		s.ib.Data[i] = int(samples[i])
	}
	return s.write()
}

func (s *Sink) write() error {
	if err := s.encoder.Write(s.ib); err != nil {
		return err
	}
	s.frames += len(s.ib.Data) / s.numChannels
	return nil
}

// Frames returns number of frames written so far.
func (s *Sink) Frames() int {
	return s.frames
}

// Close finalizes header and closes the file. The file is closed even if
// header finalization fails.
func (s *Sink) Close() error {
	err := s.encoder.Close()
	if cerr := s.file.Close(); err == nil {
		err = cerr
	}
	return err
}
