package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dudk/mmlmp3"
	"github.com/dudk/mmlmp3/mp3"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestInit(t *testing.T) {
	// check if commands are registered
	cmd := newRootCmd()
	assert.Equal(t, 2, len(cmd.Commands()))
	for _, name := range []string{"temp-dir", "sample-rate", "polyphony", "gain", "reverb", "chorus", "debug"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), name)
	}
}

func TestParseProgram(t *testing.T) {
	tests := []struct {
		arg     string
		program int
		valid   bool
	}{
		{arg: "0", program: 0, valid: true},
		{arg: "25", program: 25, valid: true},
		{arg: "127", program: 127, valid: true},
		{arg: "128"},
		{arg: "200"},
		{arg: "-1"},
		{arg: "piano"},
	}
	for _, c := range tests {
		p, err := parseProgram(c.arg)
		if !c.valid {
			assert.Error(t, err, c.arg)
			continue
		}
		assert.NoError(t, err)
		assert.Equal(t, c.program, p)
	}
}

func TestInfo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "song.mml")
	require.NoError(t, os.WriteFile(path, []byte("MML@cde;\n"), 0644))

	out, err := execute(t, "info", path)
	require.NoError(t, err)
	assert.Contains(t, out, "File size:  9 bytes")
	assert.Contains(t, out, "Lines:      1")
	assert.Contains(t, out, "Complexity: Low")

	_, err = execute(t, "info", filepath.Join(t.TempDir(), "missing.mml"))
	assert.ErrorIs(t, err, mmlmp3.ErrSourceNotFound)
}

func TestProbe(t *testing.T) {
	_, err := execute(t, "probe", filepath.Join(t.TempDir(), "missing.mp3"))
	assert.ErrorIs(t, err, mp3.ErrIO)
}

func TestConvertArgs(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "song.txt")
	require.NoError(t, os.WriteFile(source, []byte("cde"), 0644))
	output := filepath.Join(dir, "out.mp3")

	_, err := execute(t, source)
	assert.Error(t, err)

	_, err = execute(t, source, "bank.sf2", output, "200")
	assert.Error(t, err)

	// unsupported source is rejected before bank is loaded.
	_, err = execute(t, source, filepath.Join(dir, "missing.sf2"), output)
	assert.ErrorIs(t, err, mmlmp3.ErrValidation)
	assert.NoFileExists(t, output)
	assert.NoFileExists(t, filepath.Join(dir, "missing.sf2"))
}
