package mml

import (
	"fmt"
	"strings"
)

type (
	note struct {
		tick     uint32
		duration uint32
		key      uint8
		velocity uint8
	}

	tempo struct {
		tick uint32
		bpm  int
	}

	// track is a single compiled voice.
	track struct {
		notes  []note
		tempos []tempo
		end    uint32
	}
)

// semitones of natural notes within an octave.
var semitones = map[byte]int{
	'c': 0,
	'd': 2,
	'e': 4,
	'f': 5,
	'g': 7,
	'a': 9,
	'b': 11,
}

// parse splits notation into tracks and parses each of them.
func parse(text string) ([]track, error) {
	body := strings.TrimSpace(text)
	if len(body) >= 4 && strings.EqualFold(body[:4], "mml@") {
		body = body[4:]
	}
	body = strings.TrimSpace(body)
	body = strings.TrimSuffix(body, ";")

	sources := strings.Split(body, ",")
	if len(sources) > maxTracks {
		return nil, fmt.Errorf("%w: %d tracks, at most %d supported", ErrCompile, len(sources), maxTracks)
	}
	tracks := make([]track, 0, len(sources))
	for i, src := range sources {
		p := parser{
			src:    strings.ToLower(src),
			index:  i,
			length: lengthTicks(defaultLength, 0),
			octave: defaultOctave,
			volume: defaultVolume,
			last:   -1,
		}
		t, err := p.parse()
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, t)
	}
	return tracks, nil
}

// parser holds state of a single track.
type parser struct {
	src   string
	pos   int
	index int

	tick   uint32
	length uint32
	octave int
	volume int
	tie    bool
	// last is index of the last note, -1 if none.
	last int

	track track
}

func (p *parser) parse() (track, error) {
	for {
		p.skipSpace()
		if p.pos >= len(p.src) {
			break
		}
		c := p.src[p.pos]
		p.pos++
		var err error
		switch {
		case c >= 'a' && c <= 'g':
			err = p.note(c)
		case c == 'n':
			err = p.noteNumber()
		case c == 'r':
			var d uint32
			if d, err = p.duration(); err == nil {
				p.tick += d
				p.tie = false
			}
		case c == 'l':
			err = p.defaultLength()
		case c == 'o':
			var o int
			if o, err = p.requiredNumber(0, maxOctave); err == nil {
				p.octave = o
			}
		case c == '<':
			err = p.shiftOctave(-1)
		case c == '>':
			err = p.shiftOctave(1)
		case c == 't':
			var bpm int
			if bpm, err = p.requiredNumber(minTempo, maxTempo); err == nil {
				p.track.tempos = append(p.track.tempos, tempo{tick: p.tick, bpm: bpm})
			}
		case c == 'v':
			var v int
			if v, err = p.requiredNumber(0, maxVolume); err == nil {
				p.volume = v
			}
		case c == '&':
			p.tie = true
		default:
			err = p.errorf("unexpected %q", c)
		}
		if err != nil {
			return track{}, err
		}
	}
	p.track.end = p.tick
	return p.track, nil
}

func (p *parser) note(c byte) error {
	semitone := semitones[c]
accidentals:
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case '+', '#':
			semitone++
		case '-':
			semitone--
		default:
			break accidentals
		}
		p.pos++
	}
	d, err := p.duration()
	if err != nil {
		return err
	}
	key := (p.octave+1)*12 + semitone
	if key < 0 || key > 127 {
		return p.errorf("note %d is out of range", key)
	}
	p.add(uint8(key), d)
	return nil
}

func (p *parser) noteNumber() error {
	n, err := p.requiredNumber(0, maxNote)
	if err != nil {
		return err
	}
	p.add(uint8(n+12), p.length)
	return nil
}

// add appends a note at current tick. Tied note of the same key extends
// the previous one.
func (p *parser) add(key uint8, d uint32) {
	defer func() {
		p.tick += d
		p.tie = false
	}()
	if p.tie && p.last >= 0 {
		prev := &p.track.notes[p.last]
		if prev.key == key && prev.tick+prev.duration == p.tick {
			prev.duration += d
			return
		}
	}
	if p.volume == 0 {
		p.last = -1
		return
	}
	p.track.notes = append(p.track.notes, note{
		tick:     p.tick,
		duration: d,
		key:      key,
		velocity: velocity(p.volume),
	})
	p.last = len(p.track.notes) - 1
}

func (p *parser) defaultLength() error {
	l, err := p.requiredNumber(1, maxLength)
	if err != nil {
		return err
	}
	p.length = lengthTicks(l, p.dots())
	return nil
}

func (p *parser) shiftOctave(delta int) error {
	o := p.octave + delta
	if o < 0 || o > maxOctave {
		return p.errorf("octave %d is out of range 0..%d", o, maxOctave)
	}
	p.octave = o
	return nil
}

// duration parses optional length and dots after a note or rest.
func (p *parser) duration() (uint32, error) {
	l, ok := p.number()
	if !ok {
		if dots := p.dots(); dots > 0 {
			return dotted(p.length, dots), nil
		}
		return p.length, nil
	}
	if l < 1 || l > maxLength {
		return 0, p.errorf("length %d is out of range 1..%d", l, maxLength)
	}
	return lengthTicks(l, p.dots()), nil
}

func (p *parser) requiredNumber(min, max int) (int, error) {
	n, ok := p.number()
	if !ok {
		return 0, p.errorf("number expected")
	}
	if n < min || n > max {
		return 0, p.errorf("value %d is out of range %d..%d", n, min, max)
	}
	return n, nil
}

// number parses decimal digits at current position.
func (p *parser) number() (int, bool) {
	start := p.pos
	n := 0
	for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
		if n < 10000 {
			n = n*10 + int(p.src[p.pos]-'0')
		}
		p.pos++
	}
	return n, p.pos > start
}

func (p *parser) dots() int {
	n := 0
	for p.pos < len(p.src) && p.src[p.pos] == '.' {
		n++
		p.pos++
	}
	return n
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) errorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: track %d at %d: %s", ErrCompile, p.index, p.pos, fmt.Sprintf(format, args...))
}

// lengthTicks converts note length like 4 for a quarter into ticks.
func lengthTicks(l, dots int) uint32 {
	return dotted(uint32(4*Resolution/l), dots)
}

func dotted(ticks uint32, dots int) uint32 {
	add := ticks
	for i := 0; i < dots; i++ {
		add /= 2
		ticks += add
	}
	return ticks
}

func velocity(volume int) uint8 {
	v := volume * 8
	if v > 127 {
		v = 127
	}
	return uint8(v)
}
