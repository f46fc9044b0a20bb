package mmlmp3

import (
	"path/filepath"
	"strings"
)

// Kind of conversion source.
type Kind int

const (
	// Unknown source can't be converted.
	Unknown Kind = iota
	// Notation is MML text that has to be compiled first.
	Notation
	// Events is a Standard MIDI File.
	Events
)

func (k Kind) String() string {
	switch k {
	case Notation:
		return "MML"
	case Events:
		return "MIDI"
	default:
		return "unknown"
	}
}

// KindOf detects source kind by file extension.
func KindOf(path string) Kind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mml":
		return Notation
	case ".mid", ".midi":
		return Events
	default:
		return Unknown
	}
}

// Source of conversion. Either Path or Text must be set. Text is always
// treated as notation.
type Source struct {
	Path string
	Text string
}

// Kind returns kind of the source.
func (s Source) Kind() Kind {
	if s.Path == "" {
		return Notation
	}
	return KindOf(s.Path)
}

// name is used in errors and logs.
func (s Source) name() string {
	if s.Path == "" {
		return "<text>"
	}
	return s.Path
}
