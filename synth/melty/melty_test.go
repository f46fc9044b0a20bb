package melty

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dudk/mmlmp3/synth"
)

func TestNew(t *testing.T) {
	e, err := New(synth.DefaultSettings())
	assert.NoError(t, err)
	assert.NotNil(t, e)

	s := synth.DefaultSettings()
	s.Polyphony = 0
	_, err = New(s)
	assert.Error(t, err)

	s = synth.DefaultSettings()
	s.Gain = -1
	_, err = New(s)
	assert.Error(t, err)
}

func TestLoadBank(t *testing.T) {
	dir := t.TempDir()
	garbage := filepath.Join(dir, "garbage.sf2")
	require.NoError(t, os.WriteFile(garbage, []byte("RIFF\x04\x00\x00\x00junk"), 0644))

	tests := []struct {
		path string
	}{
		{path: filepath.Join(dir, "missing.sf2")},
		{path: garbage},
	}
	for _, c := range tests {
		e, err := New(synth.DefaultSettings())
		require.NoError(t, err)
		assert.Error(t, e.LoadBank(c.path))
		assert.NoError(t, e.Close())
	}
}

func TestNoBank(t *testing.T) {
	e, err := New(synth.DefaultSettings())
	require.NoError(t, err)

	_, err = e.NewPlayer()
	assert.ErrorIs(t, err, ErrNoBank)
	assert.ErrorIs(t, e.ProgramChange(0, 1), ErrNoBank)
}

func TestFrames(t *testing.T) {
	assert.Equal(t, int64(0), frames(0, 44100))
	assert.Equal(t, int64(44100), frames(time.Second, 44100))
	assert.Equal(t, int64(23), frames(500*time.Microsecond, 44100))
}

func TestToInt16(t *testing.T) {
	tests := []struct {
		in       float32
		expected int16
	}{
		{in: 0, expected: 0},
		{in: 1, expected: 32767},
		{in: -1, expected: -32767},
		{in: 2, expected: 32767},
		{in: -2, expected: -32768},
		{in: 0.5, expected: 16384},
	}
	for _, c := range tests {
		assert.Equal(t, c.expected, toInt16(c.in))
	}
}
