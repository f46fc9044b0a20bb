package lame_test

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dudk/mmlmp3/internal/lame"
	"github.com/dudk/mmlmp3/mp3"
	"github.com/dudk/mmlmp3/test"
)

func TestNew(t *testing.T) {
	tests := []struct {
		settings mp3.Settings
		valid    bool
	}{
		{settings: mp3.Settings{SampleRate: 44100, NumChannels: 2, BitRate: mp3.BitRate, Quality: mp3.Quality}, valid: true},
		{settings: mp3.Settings{SampleRate: 44100, NumChannels: 1, BitRate: mp3.BitRate, Quality: mp3.Quality}, valid: true},
		{settings: mp3.Settings{SampleRate: 44100, NumChannels: 3, BitRate: mp3.BitRate, Quality: mp3.Quality}},
		{settings: mp3.Settings{NumChannels: 2, BitRate: mp3.BitRate, Quality: mp3.Quality}},
	}
	for _, c := range tests {
		codec, err := lame.New(c.settings)
		if !c.valid {
			assert.Error(t, err)
			continue
		}
		require.NoError(t, err)
		assert.NoError(t, codec.Close())
		assert.True(t, codec.(*lame.Codec).Released())
		// second close is noop.
		assert.NoError(t, codec.Close())
	}
}

func TestEncodeAllZero(t *testing.T) {
	for _, samples := range []int{0, 1, mp3.FrameSize, 3*mp3.FrameSize + 10, 44100} {
		for _, numChannels := range []int{1, 2} {
			in := test.WriteWav(t, test.Wav{SampleRate: 44100, NumChannels: numChannels, BitDepth: 16, AudioFormat: 1, Samples: samples})
			out := filepath.Join(t.TempDir(), "zero.mp3")
			assert.NoError(t, mp3.Encode(in, out, lame.New), "samples: %d channels: %d", samples, numChannels)
			assert.FileExists(t, out)
		}
	}
}

func TestEncodeProbe(t *testing.T) {
	numFrames := 44100
	data := make([]int, 0, 2*numFrames)
	for i := 0; i < numFrames; i++ {
		v := int(8000 * math.Sin(2*math.Pi*440*float64(i)/44100))
		data = append(data, v, v)
	}
	in := test.WriteWav(t, test.Wav{SampleRate: 44100, NumChannels: 2, BitDepth: 16, AudioFormat: 1, Data: data})
	out := filepath.Join(t.TempDir(), "sine.mp3")
	require.NoError(t, mp3.Encode(in, out, lame.New))

	info, err := mp3.Probe(out)
	require.NoError(t, err)
	assert.Equal(t, 44100, info.SampleRate)
	// encoder delay, tag frame and padding add a few frames.
	assert.GreaterOrEqual(t, info.Frames, int64(numFrames))
	assert.Less(t, info.Frames, int64(numFrames+6*mp3.FrameSize))
}

func TestClosedCodec(t *testing.T) {
	codec, err := lame.New(mp3.Settings{SampleRate: 44100, NumChannels: 2, BitRate: mp3.BitRate, Quality: mp3.Quality})
	require.NoError(t, err)
	out := make([]byte, mp3.OutputBufferSize)
	_, err = codec.Flush(out)
	require.NoError(t, err)

	block := make([]int16, mp3.FrameSize)
	_, err = codec.Encode(block, block, out)
	assert.Error(t, err)
	_, err = codec.Flush(out)
	assert.Error(t, err)
	assert.False(t, codec.(*lame.Codec).Released())
	assert.NoError(t, codec.Close())
	assert.True(t, codec.(*lame.Codec).Released())
}

func TestCloseWithoutFlush(t *testing.T) {
	codec, err := lame.New(mp3.Settings{SampleRate: 44100, NumChannels: 2, BitRate: mp3.BitRate, Quality: mp3.Quality})
	require.NoError(t, err)
	out := make([]byte, mp3.OutputBufferSize)
	block := make([]int16, mp3.FrameSize)
	for i := 0; i < 4; i++ {
		_, err = codec.Encode(block, block, out)
		require.NoError(t, err)
	}

	assert.NoError(t, codec.Close())
	assert.True(t, codec.(*lame.Codec).Released())
	_, err = codec.Encode(block, block, out)
	assert.Error(t, err)
	// pending samples are discarded, not flushed.
	_, err = codec.Flush(out)
	assert.Error(t, err)
}

func TestEncodeReleases(t *testing.T) {
	var codecs []*lame.Codec
	newCodec := func(s mp3.Settings) (mp3.Codec, error) {
		c, err := lame.New(s)
		if err == nil {
			codecs = append(codecs, c.(*lame.Codec))
		}
		return c, err
	}
	in := test.WriteWav(t, test.Wav{SampleRate: 44100, NumChannels: 2, BitDepth: 16, AudioFormat: 1, Samples: 3 * mp3.FrameSize})

	require.NoError(t, mp3.Encode(in, filepath.Join(t.TempDir(), "ok.mp3"), newCodec))
	// output can't be created after codec is allocated.
	err := mp3.Encode(in, filepath.Join(t.TempDir(), "missing", "fail.mp3"), newCodec)
	assert.ErrorIs(t, err, mp3.ErrIO)

	require.Len(t, codecs, 2)
	for _, c := range codecs {
		assert.True(t, c.Released())
	}
}
