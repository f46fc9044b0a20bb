// Package mml compiles Mabinogi-style music macro language into Standard
// MIDI Files.
//
// Notation is a list of tracks separated by commas, optionally wrapped into
// "MML@" and ";". Every track is compiled into its own SMF track on its own
// MIDI channel. Tempo changes from all tracks are collected into a separate
// conductor track.
package mml

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// Resolution is a number of ticks per quarter note.
const Resolution = 480

const (
	defaultTempo  = 120
	defaultLength = 4
	defaultOctave = 4
	defaultVolume = 8

	minTempo  = 32
	maxTempo  = 255
	maxLength = 64
	maxOctave = 8
	maxVolume = 15
	maxNote   = 96

	// percussion channel is never assigned to a track.
	percussionChannel = 9
	maxTracks         = 15
)

var (
	// ErrCompile is returned when notation can't be compiled.
	ErrCompile = errors.New("mml compile failed")
	// ErrEmpty is returned when notation has no content.
	ErrEmpty = errors.New("mml is empty")
	// ErrUnrecognized is returned when notation has no known commands.
	ErrUnrecognized = errors.New("no recognizable mml commands found")
)

// commandChars are characters that at least one command starts with.
const commandChars = "ABCDEFGRLTVNabcdefgrltvn0123456789"

// Validate performs a basic check of notation before compilation.
func Validate(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmpty
	}
	if !strings.ContainsAny(text, commandChars) {
		return ErrUnrecognized
	}
	return nil
}

// Complexity is a rough estimation of notation size.
type Complexity int

const (
	// Low complexity is up to 500 characters.
	Low Complexity = iota
	// Medium complexity is up to 1000 characters.
	Medium
	// High complexity is above 1000 characters.
	High
)

func (c Complexity) String() string {
	switch c {
	case Medium:
		return "Medium"
	case High:
		return "High"
	default:
		return "Low"
	}
}

// Stats describes notation text.
type Stats struct {
	Bytes      int
	Lines      int
	Chars      int
	Complexity Complexity
}

// Stat returns stats of notation text.
func Stat(text string) Stats {
	s := Stats{
		Bytes: len(text),
		Chars: utf8.RuneCountInString(text),
	}
	if text != "" {
		s.Lines = strings.Count(text, "\n")
		if !strings.HasSuffix(text, "\n") {
			s.Lines++
		}
	}
	switch {
	case s.Chars > 1000:
		s.Complexity = High
	case s.Chars > 500:
		s.Complexity = Medium
	}
	return s
}
