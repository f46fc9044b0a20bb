// Package mock provides mocks for engines and codecs and allows to execute
// integration tests without native libraries or instrument banks.
package mock

import (
	"errors"
	"os"

	"github.com/dudk/mmlmp3/mp3"
	"github.com/dudk/mmlmp3/synth"
)

// Engine mocks a synth.Engine interface. Every player renders Buffers
// blocks filled with Value.
type Engine struct {
	Settings synth.Settings
	Buffers  int
	Value    int16

	ErrorOnInit      error
	ErrorOnLoad      error
	ErrorOnProgram   error
	ErrorOnPlayer    error
	ErrorOnAdd       error
	ErrorOnPlay      error
	ErrorOnRender    error
	ErrorOnClose     error
	ErrorOnPlayerEnd error
	// RenderLimit makes render fail after that many calls when
	// ErrorOnRender is set. Zero fails on the first call.
	RenderLimit int

	Bank     string
	Programs []int
	Players  []*Player
	Closed   bool
}

// New returns engine func that always returns m.
func (m *Engine) New() synth.EngineFunc {
	return func(s synth.Settings) (synth.Engine, error) {
		if m.ErrorOnInit != nil {
			return nil, m.ErrorOnInit
		}
		m.Settings = s
		return m, nil
	}
}

// LoadBank implements synth.Engine. Bank path must exist.
func (m *Engine) LoadBank(path string) error {
	if m.ErrorOnLoad != nil {
		return m.ErrorOnLoad
	}
	if _, err := os.Stat(path); err != nil {
		return err
	}
	m.Bank = path
	return nil
}

// ProgramChange implements synth.Engine.
func (m *Engine) ProgramChange(channel, program int) error {
	if m.ErrorOnProgram != nil {
		return m.ErrorOnProgram
	}
	m.Programs = append(m.Programs, program)
	return nil
}

// NewPlayer implements synth.Engine.
func (m *Engine) NewPlayer() (synth.Player, error) {
	if m.ErrorOnPlayer != nil {
		return nil, m.ErrorOnPlayer
	}
	p := &Player{engine: m}
	m.Players = append(m.Players, p)
	return p, nil
}

// Close implements synth.Engine.
func (m *Engine) Close() error {
	m.Closed = true
	return m.ErrorOnClose
}

// Player mocks a synth.Player interface.
type Player struct {
	engine  *Engine
	Queued  []string
	Started bool
	Renders int
	Polls   int
	Closed  bool
}

// Add implements synth.Player. Event stream file must exist.
func (p *Player) Add(path string) error {
	if p.engine.ErrorOnAdd != nil {
		return p.engine.ErrorOnAdd
	}
	if _, err := os.Stat(path); err != nil {
		return err
	}
	p.Queued = append(p.Queued, path)
	return nil
}

// Play implements synth.Player.
func (p *Player) Play() error {
	if p.engine.ErrorOnPlay != nil {
		return p.engine.ErrorOnPlay
	}
	p.Started = true
	return nil
}

// Playing implements synth.Player.
func (p *Player) Playing() bool {
	p.Polls++
	return p.Started && p.Renders < p.engine.Buffers*len(p.Queued)
}

// Render implements synth.Player.
func (p *Player) Render(left, right []int16) error {
	if p.engine.ErrorOnRender != nil && p.Renders >= p.engine.RenderLimit {
		return p.engine.ErrorOnRender
	}
	for i := range left {
		left[i] = p.engine.Value
		right[i] = -p.engine.Value
	}
	p.Renders++
	return nil
}

// Close implements synth.Player.
func (p *Player) Close() error {
	p.Closed = true
	return p.engine.ErrorOnPlayerEnd
}

// ErrOverflow is returned by Codec when Produce doesn't fit output buffer.
var ErrOverflow = errors.New("output buffer overflow")

// Codec mocks a mp3.Codec interface. Every encode call produces Produce
// bytes, flush produces FlushProduce bytes.
type Codec struct {
	Settings     mp3.Settings
	Produce      int
	FlushProduce int
	// Result overrides returned byte count of encode calls when not zero.
	Result int

	ErrorOnInit   error
	ErrorOnEncode error
	ErrorOnFlush  error
	ErrorOnClose  error
	// EncodeLimit makes encode fail after that many calls when
	// ErrorOnEncode is set.
	EncodeLimit int

	Blocks  [][2][]int16
	Flushes int
	Closed  bool
}

// New returns codec func that always returns m.
func (m *Codec) New() mp3.CodecFunc {
	return func(s mp3.Settings) (mp3.Codec, error) {
		if m.ErrorOnInit != nil {
			return nil, m.ErrorOnInit
		}
		m.Settings = s
		return m, nil
	}
}

// Encode implements mp3.Codec. Submitted blocks are copied.
func (m *Codec) Encode(left, right []int16, out []byte) (int, error) {
	if m.ErrorOnEncode != nil && len(m.Blocks) >= m.EncodeLimit {
		return 0, m.ErrorOnEncode
	}
	l := append([]int16(nil), left...)
	r := append([]int16(nil), right...)
	m.Blocks = append(m.Blocks, [2][]int16{l, r})
	if m.Result != 0 {
		return m.Result, nil
	}
	return m.produce(m.Produce, byte(len(m.Blocks)), out)
}

// Flush implements mp3.Codec.
func (m *Codec) Flush(out []byte) (int, error) {
	m.Flushes++
	if m.ErrorOnFlush != nil {
		return 0, m.ErrorOnFlush
	}
	return m.produce(m.FlushProduce, 0xFF, out)
}

func (m *Codec) produce(n int, value byte, out []byte) (int, error) {
	if n > len(out) {
		return 0, ErrOverflow
	}
	for i := 0; i < n; i++ {
		out[i] = value
	}
	return n, nil
}

// Close implements mp3.Codec.
func (m *Codec) Close() error {
	m.Closed = true
	return m.ErrorOnClose
}
