// Package melty implements synth.Engine with a pure Go SoundFont synthesizer.
package melty

import (
	"bufio"
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/sinshu/go-meltysynth/meltysynth"

	"github.com/dudk/mmlmp3/synth"
)

// ErrNoBank is returned when engine is used before bank is loaded.
var ErrNoBank = errors.New("no instrument bank loaded")

// Engine renders SMF event streams with SoundFont instruments.
type Engine struct {
	settings    synth.Settings
	synthesizer *meltysynth.Synthesizer
}

// New creates engine. Synthesizer itself is created when bank is loaded.
func New(s synth.Settings) (synth.Engine, error) {
	if s.Polyphony <= 0 {
		return nil, fmt.Errorf("invalid polyphony %d", s.Polyphony)
	}
	if s.Gain < 0 {
		return nil, fmt.Errorf("invalid gain %v", s.Gain)
	}
	return &Engine{settings: s}, nil
}

// LoadBank parses SoundFont file and creates synthesizer for it.
func (e *Engine) LoadBank(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	sf, err := meltysynth.NewSoundFont(bufio.NewReader(f))
	if err != nil {
		return fmt.Errorf("failed to parse SoundFont: %w", err)
	}

	settings := meltysynth.NewSynthesizerSettings(int32(e.settings.SampleRate))
	settings.MaximumPolyphony = int32(e.settings.Polyphony)
	// reverb and chorus share one switch in this synthesizer.
	settings.EnableReverbAndChorus = e.settings.Reverb || e.settings.Chorus

	s, err := meltysynth.NewSynthesizer(sf, settings)
	if err != nil {
		return fmt.Errorf("failed to create synthesizer: %w", err)
	}
	s.MasterVolume = float32(e.settings.Gain)
	e.synthesizer = s
	return nil
}

// ProgramChange sends program change message to the synthesizer.
func (e *Engine) ProgramChange(channel, program int) error {
	if e.synthesizer == nil {
		return ErrNoBank
	}
	if channel < 0 || channel > 15 {
		return fmt.Errorf("invalid channel %d", channel)
	}
	e.synthesizer.ProcessMidiMessage(int32(channel), 0xC0, int32(program), 0)
	return nil
}

// NewPlayer creates sequencer bound to the synthesizer.
func (e *Engine) NewPlayer() (synth.Player, error) {
	if e.synthesizer == nil {
		return nil, ErrNoBank
	}
	return &player{
		engine:    e,
		sequencer: meltysynth.NewMidiFileSequencer(e.synthesizer),
	}, nil
}

// Close drops the synthesizer and its bank.
func (e *Engine) Close() error {
	e.synthesizer = nil
	return nil
}

// player plays queued files one after another.
type player struct {
	engine    *Engine
	sequencer *meltysynth.MidiFileSequencer
	queue     []*meltysynth.MidiFile
	playing   bool
	remaining int64
	left      []float32
	right     []float32
}

// Add parses SMF file and queues it.
func (p *player) Add(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	mf, err := meltysynth.NewMidiFile(bufio.NewReader(f))
	if err != nil {
		return fmt.Errorf("failed to parse event stream: %w", err)
	}
	p.queue = append(p.queue, mf)
	return nil
}

// Play starts the first queued file.
func (p *player) Play() error {
	if len(p.queue) == 0 {
		return errors.New("no event streams queued")
	}
	p.next()
	return nil
}

func (p *player) next() {
	mf := p.queue[0]
	p.queue = p.queue[1:]
	p.sequencer.Play(mf, false)
	p.remaining = frames(mf.GetLength(), p.engine.settings.SampleRate)
	p.playing = true
}

// Playing is true until all queued files are rendered.
func (p *player) Playing() bool {
	for p.playing && p.remaining <= 0 {
		if len(p.queue) == 0 {
			p.playing = false
			break
		}
		p.next()
	}
	return p.playing
}

// Render renders next frames and converts them to 16-bit samples.
func (p *player) Render(left, right []int16) error {
	if len(left) != len(right) {
		return fmt.Errorf("channel length mismatch: %d != %d", len(left), len(right))
	}
	if len(p.left) != len(left) {
		p.left = make([]float32, len(left))
		p.right = make([]float32, len(right))
	}
	p.sequencer.Render(p.left, p.right)
	for i := range left {
		left[i] = toInt16(p.left[i])
		right[i] = toInt16(p.right[i])
	}
	p.remaining -= int64(len(left))
	return nil
}

// Close silences all channels so the next player starts clean.
func (p *player) Close() error {
	if s := p.engine.synthesizer; s != nil {
		for ch := int32(0); ch < 16; ch++ {
			s.ProcessMidiMessage(ch, 0xB0, 0x78, 0) // all sound off
			s.ProcessMidiMessage(ch, 0xB0, 0x79, 0) // reset controllers
		}
	}
	p.queue = nil
	p.playing = false
	return nil
}

func frames(d time.Duration, sampleRate int) int64 {
	return int64(math.Ceil(d.Seconds() * float64(sampleRate)))
}

func toInt16(v float32) int16 {
	s := math.Round(float64(v) * math.MaxInt16)
	switch {
	case s > math.MaxInt16:
		return math.MaxInt16
	case s < math.MinInt16:
		return math.MinInt16
	}
	return int16(s)
}
