package mmlmp3

import (
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/dudk/mmlmp3/metric"
	"github.com/dudk/mmlmp3/mp3"
	"github.com/dudk/mmlmp3/synth"
)

// Option provides a way to set functional parameters to pipeline.
type Option func(p *Pipeline) error

// CompileFunc compiles notation text into SMF bytes.
type CompileFunc func(text string, program int) ([]byte, error)

// WithTempDir sets directory for temporary artifacts. If this option is
// not provided, os.TempDir is used.
func WithTempDir(dir string) Option {
	return func(p *Pipeline) error {
		if dir == "" {
			return errors.New("temporary directory is empty")
		}
		p.tempDir = dir
		return nil
	}
}

// WithLogger sets logger to Pipeline. If this option is not provided,
// silent logger is used.
func WithLogger(l logrus.FieldLogger) Option {
	return func(p *Pipeline) error {
		p.log = l
		return nil
	}
}

// WithCodec sets codec used to encode containers.
func WithCodec(fn mp3.CodecFunc) Option {
	return func(p *Pipeline) error {
		p.newCodec = fn
		return nil
	}
}

// WithEngine sets synthesizer engine.
func WithEngine(fn synth.EngineFunc) Option {
	return func(p *Pipeline) error {
		p.newEngine = fn
		return nil
	}
}

// WithSettings sets synthesizer settings.
func WithSettings(s synth.Settings) Option {
	return func(p *Pipeline) error {
		p.settings = s
		return nil
	}
}

// WithCompiler sets notation compiler.
func WithCompiler(fn CompileFunc) Option {
	return func(p *Pipeline) error {
		p.compile = fn
		return nil
	}
}

// WithMetric adds meterics for all stages.
func WithMetric(m *metric.Metric) Option {
	return func(p *Pipeline) error {
		p.metric = m
		return nil
	}
}
