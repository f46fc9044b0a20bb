package mmlmp3

import (
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/dudk/mmlmp3/internal/lame"
	"github.com/dudk/mmlmp3/log"
	"github.com/dudk/mmlmp3/metric"
	"github.com/dudk/mmlmp3/mml"
	"github.com/dudk/mmlmp3/mp3"
	"github.com/dudk/mmlmp3/synth"
	"github.com/dudk/mmlmp3/synth/melty"
)

const (
	// StageLoad loads instrument bank.
	StageLoad = "load"
	// StageCompile compiles notation into event stream.
	StageCompile = "compile"
	// StageSynthesize renders event stream into container.
	StageSynthesize = synth.StageName
	// StageEncode encodes container into output.
	StageEncode = mp3.StageName
)

// NoProgram means that program isn't provided and default is used.
const NoProgram = -1

// Request describes a single conversion.
type Request struct {
	Source Source
	// Output is a path of encoded file.
	Output string
	// Program is forwarded to notation compiler. It's ignored for MIDI
	// sources, since they carry their own programs.
	Program int
}

// Pipeline converts notation and MIDI files into MP3. It holds a
// synthesizer session with loaded instrument bank, so multiple requests
// reuse it. Pipeline is not safe for concurrent use.
type Pipeline struct {
	bank      string
	tempDir   string
	settings  synth.Settings
	newEngine synth.EngineFunc
	newCodec  mp3.CodecFunc
	compile   CompileFunc
	session   *synth.Session
	metric    *metric.Metric
	log       logrus.FieldLogger
}

// New creates a new pipeline and loads instrument bank.
func New(bankPath string, options ...Option) (*Pipeline, error) {
	p := &Pipeline{
		bank:      bankPath,
		tempDir:   os.TempDir(),
		settings:  synth.DefaultSettings(),
		newEngine: melty.New,
		newCodec:  lame.New,
		compile:   mml.Compile,
		log:       log.Discard(),
	}
	for _, option := range options {
		if err := option(p); err != nil {
			return nil, err
		}
	}

	session, err := synth.NewSession(p.settings, p.newEngine,
		synth.WithLogger(p.log),
		synth.WithMetric(p.metric),
	)
	if err != nil {
		return nil, &StageError{Stage: StageLoad, Err: err}
	}
	if err := session.LoadBank(bankPath); err != nil {
		if cerr := session.Close(); cerr != nil {
			p.log.Warnf("failed to close engine: %v", cerr)
		}
		return nil, &StageError{Stage: StageLoad, Path: bankPath, Err: err}
	}
	p.session = session
	p.log.WithField("bank", bankPath).Info("pipeline ready")
	return p, nil
}

// Convert creates a pipeline, runs a single request and closes it.
// Request is validated before instrument bank is loaded.
func Convert(req Request, bankPath string, options ...Option) (err error) {
	if _, err := validate(req); err != nil {
		return err
	}
	p, err := New(bankPath, options...)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := p.Close(); cerr != nil {
			p.log.Warnf("failed to close pipeline: %v", cerr)
		}
	}()
	return p.Run(req)
}

// Run executes request: compiles notation if needed, synthesizes it into
// temporary container and encodes into output. The first failed stage
// error is returned and the rest of stages are skipped. Temporary
// artifacts are removed in any case.
func (p *Pipeline) Run(req Request) error {
	kind, err := validate(req)
	if err != nil {
		return err
	}
	run := newUID()
	l := p.log.WithFields(logrus.Fields{
		"run":    run,
		"source": req.Source.name(),
		"kind":   kind,
	})
	a := newArtifacts(p.tempDir, run)
	defer func() {
		if err := a.cleanup(l); err != nil {
			l.Warnf("failed to clean up temporary files: %v", err)
		}
	}()

	events := req.Source.Path
	if kind == Notation {
		if events, err = p.compileSource(req, a); err != nil {
			return err
		}
		l.WithField("stage", StageCompile).Info("compiled")
	} else if req.Program != NoProgram {
		l.Debugf("program %d ignored for %v source", req.Program, kind)
	}

	a.track(a.container)
	if err := p.session.Synthesize(events, a.container); err != nil {
		return &StageError{Stage: StageSynthesize, Path: events, Err: err}
	}
	l.WithField("stage", StageSynthesize).Info("synthesized")

	if err := mp3.Encode(a.container, req.Output, p.newCodec,
		mp3.WithLogger(l),
		mp3.WithMetric(p.metric),
	); err != nil {
		return &StageError{Stage: StageEncode, Path: req.Output, Err: err}
	}
	l.WithFields(logrus.Fields{
		"stage":  StageEncode,
		"output": req.Output,
	}).Info("encoded")
	return nil
}

// compileSource compiles notation into events artifact and returns its path.
func (p *Pipeline) compileSource(req Request, a *artifacts) (string, error) {
	text := req.Source.Text
	if req.Source.Path != "" {
		b, err := os.ReadFile(req.Source.Path)
		if err != nil {
			return "", &StageError{Stage: StageCompile, Path: req.Source.Path, Err: fmt.Errorf("%w: %v", ErrCompile, err)}
		}
		text = string(b)
	}
	if err := mml.Validate(text); err != nil {
		return "", &StageError{Stage: StageCompile, Path: req.Source.name(), Err: fmt.Errorf("%w: %w", ErrCompile, err)}
	}
	program := req.Program
	if program == NoProgram {
		program = 0
	}
	b, err := p.compile(text, program)
	if err != nil {
		return "", &StageError{Stage: StageCompile, Path: req.Source.name(), Err: fmt.Errorf("%w: %w", ErrCompile, err)}
	}
	a.track(a.events)
	if err := os.WriteFile(a.events, b, 0644); err != nil {
		return "", &StageError{Stage: StageCompile, Path: a.events, Err: fmt.Errorf("%w: %v", ErrCompile, err)}
	}
	return a.events, nil
}

// validate checks request before any stage is executed.
func validate(req Request) (Kind, error) {
	if req.Program != NoProgram && (req.Program < 0 || req.Program > 127) {
		return Unknown, fmt.Errorf("%w: program %d is out of range 0..127", ErrValidation, req.Program)
	}
	if req.Output == "" {
		return Unknown, fmt.Errorf("%w: output path is empty", ErrValidation)
	}
	src := req.Source
	if src.Path != "" && src.Text != "" {
		return Unknown, fmt.Errorf("%w: both source path and text provided", ErrValidation)
	}
	if src.Path == "" && src.Text == "" {
		return Unknown, fmt.Errorf("%w: source is empty", ErrValidation)
	}
	kind := src.Kind()
	if kind == Unknown {
		return Unknown, fmt.Errorf("%w: unsupported source format %q, supported: .mml, .mid, .midi", ErrValidation, src.Path)
	}
	if src.Path != "" {
		info, err := os.Stat(src.Path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return Unknown, fmt.Errorf("%w: %v", ErrSourceNotFound, src.Path)
			}
			return Unknown, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		if info.IsDir() {
			return Unknown, fmt.Errorf("%w: %v is a directory", ErrValidation, src.Path)
		}
	}
	return kind, nil
}

// Inspect returns stats of notation file.
func Inspect(path string) (mml.Stats, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return mml.Stats{}, fmt.Errorf("%w: %v", ErrSourceNotFound, path)
		}
		return mml.Stats{}, err
	}
	return mml.Stat(string(b)), nil
}

// Measure returns metrics of the last executed stages. It's nil if
// pipeline was created without metric.
func (p *Pipeline) Measure() metric.Measure {
	return p.metric.Measure()
}

// Close releases synthesizer engine.
func (p *Pipeline) Close() error {
	return p.session.Close()
}
