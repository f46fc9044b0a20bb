package mp3

import (
	"fmt"
	"os"
	"time"

	gomp3 "github.com/hajimehoshi/go-mp3"

	"github.com/dudk/mmlmp3/metric"
)

// Info describes decoded mp3 file.
type Info struct {
	SampleRate int
	// Frames is number of decoded samples per channel.
	Frames   int64
	Duration time.Duration
}

// Probe decodes mp3 file at path and returns its attributes.
func Probe(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("%w: %v", ErrIO, err)
	}
	defer f.Close()

	d, err := gomp3.NewDecoder(f)
	if err != nil {
		return Info{}, fmt.Errorf("%w: %v: %v", ErrUnsupportedFormat, path, err)
	}
	// decoder always provides 16-bit stereo.
	frames := d.Length() / 4
	return Info{
		SampleRate: d.SampleRate(),
		Frames:     frames,
		Duration:   metric.DurationOf(d.SampleRate(), frames),
	}, nil
}
