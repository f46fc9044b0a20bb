package mml

import (
	"bytes"
	"fmt"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// Compile converts notation into SMF format 1 bytes. The first track of the
// file is a conductor with tempo changes, every notation track follows with
// program selected at its start.
func Compile(text string, program int) ([]byte, error) {
	if program < 0 || program > 127 {
		return nil, fmt.Errorf("%w: program %d is out of range 0..127", ErrCompile, program)
	}
	tracks, err := parse(text)
	if err != nil {
		return nil, err
	}

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(Resolution)
	if err := s.Add(conductor(tracks)); err != nil {
		return nil, fmt.Errorf("%w: add conductor track: %v", ErrCompile, err)
	}
	for i, t := range tracks {
		if err := s.Add(t.events(channel(i), uint8(program))); err != nil {
			return nil, fmt.Errorf("%w: add track %d: %v", ErrCompile, i, err)
		}
	}

	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("%w: write: %v", ErrCompile, err)
	}
	return buf.Bytes(), nil
}

// conductor collects tempo changes of all tracks. Default tempo is set
// unless notation changes it at the very start.
func conductor(tracks []track) smf.Track {
	var tempos []tempo
	for _, t := range tracks {
		tempos = append(tempos, t.tempos...)
	}
	sort.SliceStable(tempos, func(i, j int) bool {
		return tempos[i].tick < tempos[j].tick
	})
	if len(tempos) == 0 || tempos[0].tick > 0 {
		tempos = append([]tempo{{bpm: defaultTempo}}, tempos...)
	}

	var tr smf.Track
	var cur uint32
	for _, t := range tempos {
		tr.Add(t.tick-cur, smf.MetaTempo(float64(t.bpm)))
		cur = t.tick
	}
	tr.Close(0)
	return tr
}

// events converts track into SMF track on channel ch.
func (t track) events(ch, program uint8) smf.Track {
	var tr smf.Track
	tr.Add(0, midi.ProgramChange(ch, program))
	var cur uint32
	for _, n := range t.notes {
		tr.Add(n.tick-cur, midi.NoteOn(ch, n.key, n.velocity))
		tr.Add(n.duration, midi.NoteOff(ch, n.key))
		cur = n.tick + n.duration
	}
	tr.Close(t.end - cur)
	return tr
}

// channel returns MIDI channel of i-th track.
func channel(i int) uint8 {
	if i >= percussionChannel {
		i++
	}
	return uint8(i)
}
