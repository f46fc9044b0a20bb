// Package test contains helper functions useful for testing mmlmp3 packages.
package test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Wav describes a container generated by WriteWav.
type Wav struct {
	SampleRate  int
	NumChannels int
	BitDepth    int
	AudioFormat int
	// Samples is number of samples per channel.
	Samples int
	// Value is written as every sample. Zero produces silence.
	Value int
	// Data holds interleaved samples. If set, Samples and Value are ignored.
	Data []int
}

// WriteWav writes a container described by w into a temporary directory
// and returns its path. Unlike wav.Sink it allows any header values.
func WriteWav(t testing.TB, w Wav) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), fmt.Sprintf("%dch-%dbit-%d.wav", w.NumChannels, w.BitDepth, w.Samples))
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %v: %v", path, err)
	}
	e := wav.NewEncoder(f, w.SampleRate, w.BitDepth, w.NumChannels, w.AudioFormat)
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: w.NumChannels,
			SampleRate:  w.SampleRate,
		},
		Data:           w.Data,
		SourceBitDepth: w.BitDepth,
	}
	if buf.Data == nil {
		buf.Data = make([]int, w.Samples*w.NumChannels)
		for i := range buf.Data {
			buf.Data[i] = w.Value
		}
	}
	if err := e.Write(buf); err != nil {
		t.Fatalf("write %v: %v", path, err)
	}
	if err := e.Close(); err != nil {
		t.Fatalf("close encoder %v: %v", path, err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close %v: %v", path, err)
	}
	return path
}

// Files returns names of all files in dir.
func Files(t testing.TB, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir %v: %v", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}
