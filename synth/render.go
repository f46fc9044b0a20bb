package synth

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/dudk/mmlmp3/wav"
)

// frameBuffer is reused across render calls.
type frameBuffer struct {
	left  []int16
	right []int16
}

func newFrameBuffer(size int) frameBuffer {
	return frameBuffer{
		left:  make([]int16, size),
		right: make([]int16, size),
	}
}

// Synthesize renders event stream at eventPath into container at
// containerPath. If engine fails to render a block, rendering stops and
// everything written so far is kept. Container is finalized in any case
// once it was created.
func (s *Session) Synthesize(eventPath, containerPath string) (err error) {
	if s.bank == "" {
		return fmt.Errorf("%w: no instrument bank loaded", ErrPlayerCreate)
	}
	player, err := s.engine.NewPlayer()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPlayerCreate, err)
	}
	defer func() {
		if cerr := player.Close(); cerr != nil {
			s.log.WithField("stage", StageName).Warnf("failed to release player: %v", cerr)
		}
	}()

	if err := player.Add(eventPath); err != nil {
		return fmt.Errorf("%w: %v: %v", ErrEventQueue, eventPath, err)
	}

	sink, err := wav.NewSink(containerPath, s.settings.SampleRate, s.settings.NumChannels)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	defer func() {
		if cerr := sink.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: %v: %v", ErrFinalize, containerPath, cerr)
		}
	}()

	if err := player.Play(); err != nil {
		return fmt.Errorf("%w: start playback: %v", ErrEventQueue, err)
	}

	meter := s.metric.Meter(StageName, s.settings.SampleRate)
	defer meter.Done()
	buf := newFrameBuffer(BufferSize)
	for player.Playing() {
		if rerr := player.Render(buf.left, buf.right); rerr != nil {
			s.log.WithFields(logrus.Fields{
				"stage":  StageName,
				"frames": sink.Frames(),
			}).Warnf("rendering stopped: %v", rerr)
			break
		}
		if err := sink.WriteStereo(buf.left, buf.right); err != nil {
			return fmt.Errorf("%w: %v: %v", ErrWrite, containerPath, err)
		}
		meter.Block(BufferSize)
	}
	s.log.WithFields(logrus.Fields{
		"stage":  StageName,
		"frames": sink.Frames(),
	}).Debug("synthesized")
	return nil
}
