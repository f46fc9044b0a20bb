// Package mp3 encodes 16-bit PCM containers into mp3 files.
//
// Encoding is done in fixed blocks of FrameSize samples per channel. Mono
// sources are duplicated into both codec channels, stereo sources are
// de-interleaved. Only the final block is zero-padded. Once all blocks are
// submitted the codec is flushed exactly once.
package mp3

import "errors"

const (
	// FrameSize is the number of samples per channel in one encode call.
	FrameSize = 1152
	// BitRate of produced files in kbps.
	BitRate = 192
	// Quality is the best codec quality setting.
	Quality = 0
	// OutputBufferSize is the worst-case number of bytes produced by one
	// encode call: 1.25 * FrameSize + 7200.
	OutputBufferSize = FrameSize*5/4 + 7200
)

var (
	// ErrUnsupportedFormat is returned for containers that are not 16-bit
	// integer PCM with one or two channels.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrIO is returned when container can't be read or output can't be written.
	ErrIO = errors.New("io failure")
	// ErrCodec is returned when codec fails.
	ErrCodec = errors.New("codec failure")
)

// Settings are passed to the codec when encoding starts. SampleRate and
// NumChannels are taken verbatim from the container header.
type Settings struct {
	SampleRate  int
	NumChannels int
	BitRate     int
	Quality     int
}

// Codec is a lossy encoder session. Encode always receives exactly
// FrameSize samples per channel and writes produced bytes to the start of
// out. Zero bytes is a valid result, the codec may buffer internally. For
// mono sessions left and right carry the same samples.
type Codec interface {
	Encode(left, right []int16, out []byte) (int, error)
	Flush(out []byte) (int, error)
	Close() error
}

// CodecFunc creates a new codec session.
type CodecFunc func(Settings) (Codec, error)
