package wav_test

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dudk/mmlmp3/test"
	"github.com/dudk/mmlmp3/wav"
)

func readAll(t *testing.T, p *wav.Pump, bufSize int) []int {
	t.Helper()
	var result []int
	buf := make([]int, bufSize)
	for {
		n, err := p.Read(buf)
		if err == io.EOF {
			return result
		}
		require.NoError(t, err)
		result = append(result, buf[:n]...)
	}
}

func TestSinkPump(t *testing.T) {
	tests := []struct {
		left  []int16
		right []int16
		calls int
	}{
		{
			left:  []int16{1, 2, 3},
			right: []int16{-1, -2, -3},
			calls: 1,
		},
		{
			left:  []int16{32767, -32768},
			right: []int16{0, 0},
			calls: 3,
		},
		{
			calls: 0,
		},
	}

	for _, c := range tests {
		path := filepath.Join(t.TempDir(), "sink.wav")
		s, err := wav.NewSink(path, 44100, 2)
		require.NoError(t, err)
		for i := 0; i < c.calls; i++ {
			assert.NoError(t, s.WriteStereo(c.left, c.right))
		}
		assert.Equal(t, c.calls*len(c.left), s.Frames())
		require.NoError(t, s.Close())

		p, err := wav.OpenPump(path)
		require.NoError(t, err)
		assert.Equal(t, wav.Format{SampleRate: 44100, NumChannels: 2, BitDepth: 16, AudioFormat: wav.FormatPCM}, p.Format())

		var expected []int
		for i := 0; i < c.calls; i++ {
			for j := range c.left {
				expected = append(expected, int(c.left[j]), int(c.right[j]))
			}
		}
		assert.Equal(t, expected, readAll(t, p, 4))
		assert.NoError(t, p.Close())
	}
}

func TestEmptySinkIsValid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.wav")
	s, err := wav.NewSink(path, 44100, 2)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(44), fi.Size())

	p, err := wav.OpenPump(path)
	require.NoError(t, err)
	defer p.Close()
	n, err := p.Read(make([]int, 16))
	assert.Equal(t, 0, n)
	assert.Equal(t, io.EOF, err)
}

func TestSinkChannelMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mono.wav")
	s, err := wav.NewSink(path, 22050, 1)
	require.NoError(t, err)
	assert.Error(t, s.WriteStereo([]int16{1}, []int16{1}))
	assert.NoError(t, s.WriteInterleaved([]int16{1, 2, 3}))
	assert.Equal(t, 3, s.Frames())
	require.NoError(t, s.Close())

	s, err = wav.NewSink(path, 22050, 2)
	require.NoError(t, err)
	assert.Error(t, s.WriteStereo([]int16{1, 2}, []int16{1}))
	assert.Error(t, s.WriteInterleaved([]int16{1, 2, 3}))
	require.NoError(t, s.Close())
}

func TestPumpFormat(t *testing.T) {
	tests := []struct {
		format   test.Wav
		expected wav.Format
	}{
		{
			format:   test.Wav{SampleRate: 48000, NumChannels: 1, BitDepth: 16, AudioFormat: 1, Samples: 10},
			expected: wav.Format{SampleRate: 48000, NumChannels: 1, BitDepth: 16, AudioFormat: 1},
		},
		{
			format:   test.Wav{SampleRate: 44100, NumChannels: 2, BitDepth: 24, AudioFormat: 1, Samples: 10},
			expected: wav.Format{SampleRate: 44100, NumChannels: 2, BitDepth: 24, AudioFormat: 1},
		},
		{
			format:   test.Wav{SampleRate: 44100, NumChannels: 3, BitDepth: 16, AudioFormat: 1, Samples: 10},
			expected: wav.Format{SampleRate: 44100, NumChannels: 3, BitDepth: 16, AudioFormat: 1},
		},
	}
	for _, c := range tests {
		path := test.WriteWav(t, c.format)
		p, err := wav.OpenPump(path)
		require.NoError(t, err)
		assert.Equal(t, c.expected, p.Format())
		assert.NoError(t, p.Close())
	}
}

func TestPumpInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "garbage.wav")
	require.NoError(t, os.WriteFile(path, []byte("definitely not a riff file"), 0644))
	_, err := wav.OpenPump(path)
	assert.ErrorIs(t, err, wav.ErrInvalidFile)

	_, err = wav.OpenPump(filepath.Join(dir, "missing.wav"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
