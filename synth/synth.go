// Package synth renders event streams into 16-bit PCM containers.
//
// A Session owns one synthesizer engine with a loaded instrument bank. Each
// Synthesize call creates a player bound to that engine, queues the event
// stream and renders it in blocks of BufferSize frames until the player
// stops. Engine handles are released on every exit path.
package synth

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/dudk/mmlmp3/log"
	"github.com/dudk/mmlmp3/metric"
)

// BufferSize is the number of frames rendered per engine call.
const BufferSize = 4096

// StageName is used for metric and log fields.
const StageName = "synthesize"

var (
	// ErrEngineInit is returned when engine can't be created.
	ErrEngineInit = errors.New("engine init failed")
	// ErrInvalidBank is returned when instrument bank can't be loaded.
	ErrInvalidBank = errors.New("invalid instrument bank")
	// ErrProgramChange is returned when program can't be selected.
	ErrProgramChange = errors.New("program change failed")
	// ErrPlayerCreate is returned when player can't be created.
	ErrPlayerCreate = errors.New("player create failed")
	// ErrEventQueue is returned when event stream can't be queued.
	ErrEventQueue = errors.New("event queue failed")
	// ErrWrite is returned when container can't be created or written.
	ErrWrite = errors.New("write failed")
	// ErrFinalize is returned when container can't be finalized.
	ErrFinalize = errors.New("finalize failed")
)

type (
	// Settings of the synthesizer engine.
	Settings struct {
		SampleRate  int
		NumChannels int
		Polyphony   int
		Reverb      bool
		Chorus      bool
		Gain        float64
	}

	// Engine is a software synthesizer. It is not safe for concurrent use.
	Engine interface {
		// LoadBank loads instrument bank from path.
		LoadBank(path string) error
		// ProgramChange selects program on channel.
		ProgramChange(channel, program int) error
		// NewPlayer creates a player bound to the engine.
		NewPlayer() (Player, error)
		Close() error
	}

	// Player drives the engine with queued event streams.
	Player interface {
		// Add queues event stream file.
		Add(path string) error
		Play() error
		// Playing reports if player still has events to render.
		Playing() bool
		// Render fills left and right with next frames.
		Render(left, right []int16) error
		Close() error
	}

	// EngineFunc creates a new engine.
	EngineFunc func(Settings) (Engine, error)
)

// DefaultSettings returns settings used for conversions.
func DefaultSettings() Settings {
	return Settings{
		SampleRate:  44100,
		NumChannels: 2,
		Polyphony:   256,
		Reverb:      true,
		Chorus:      true,
		Gain:        1.0,
	}
}

// Session holds engine with loaded instrument bank.
type Session struct {
	settings Settings
	engine   Engine
	bank     string
	log      logrus.FieldLogger
	metric   *metric.Metric
}

// Option configures Session.
type Option func(*Session)

// WithLogger sets session logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Session) {
		s.log = l
	}
}

// WithMetric enables synthesis metrics.
func WithMetric(m *metric.Metric) Option {
	return func(s *Session) {
		s.metric = m
	}
}

// NewSession creates engine with provided settings. Containers are always
// stereo, so NumChannels other than 2 is rejected.
func NewSession(settings Settings, newEngine EngineFunc, options ...Option) (*Session, error) {
	if settings.NumChannels != 2 {
		return nil, fmt.Errorf("%w: %d channels requested, only stereo is supported", ErrEngineInit, settings.NumChannels)
	}
	if settings.SampleRate <= 0 {
		return nil, fmt.Errorf("%w: invalid sample rate %d", ErrEngineInit, settings.SampleRate)
	}
	e, err := newEngine(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEngineInit, err)
	}
	s := &Session{
		settings: settings,
		engine:   e,
		log:      log.Discard(),
	}
	for _, option := range options {
		option(s)
	}
	return s, nil
}

// Settings returns session settings.
func (s *Session) Settings() Settings {
	return s.settings
}

// LoadBank loads instrument bank into the engine. Engine failure is
// returned as is, wrapped with ErrInvalidBank.
func (s *Session) LoadBank(path string) error {
	if err := s.engine.LoadBank(path); err != nil {
		return fmt.Errorf("%w: %v: %v", ErrInvalidBank, path, err)
	}
	s.bank = path
	s.log.WithField("bank", path).Debug("instrument bank loaded")
	return nil
}

// SelectProgram selects program on the first channel.
func (s *Session) SelectProgram(program int) error {
	if program < 0 || program > 127 {
		return fmt.Errorf("%w: program %d is out of range 0..127", ErrProgramChange, program)
	}
	if err := s.engine.ProgramChange(0, program); err != nil {
		return fmt.Errorf("%w: program %d: %v", ErrProgramChange, program, err)
	}
	return nil
}

// Close releases the engine.
func (s *Session) Close() error {
	return s.engine.Close()
}
