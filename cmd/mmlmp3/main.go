// Package main is the entry point for mmlmp3 CLI.
package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dudk/mmlmp3"
	"github.com/dudk/mmlmp3/internal/config"
	"github.com/dudk/mmlmp3/log"
	"github.com/dudk/mmlmp3/metric"
	"github.com/dudk/mmlmp3/mml"
	"github.com/dudk/mmlmp3/mp3"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// options are flags of convert command.
type options struct {
	cfg   config.Config
	debug bool
}

func newRootCmd() *cobra.Command {
	opts := options{cfg: config.Load()}
	root := &cobra.Command{
		Use:   "mmlmp3 <input> <soundfont.sf2> <output.mp3> [instrument]",
		Short: "Convert MML and MIDI files to MP3",
		Long: `mmlmp3 converts Mabinogi MML (.mml) and MIDI (.mid, .midi) files to MP3.

Notation is compiled into MIDI, synthesized with a SoundFont into 16-bit
WAV and encoded into MP3 at 192 kbps. Instrument is a MIDI program 0-127
applied to MML sources, MIDI files carry their own programs.

Examples:
  mmlmp3 song.mml soundfont.sf2 output.mp3
  mmlmp3 song.mml soundfont.sf2 output.mp3 25
  mmlmp3 song.mid soundfont.sf2 output.mp3
  mmlmp3 info song.mml
  mmlmp3 probe output.mp3`,
		Version:       version,
		Args:          cobra.RangeArgs(3, 4),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd.OutOrStdout(), opts, args)
		},
	}

	flags := root.Flags()
	flags.StringVar(&opts.cfg.TempDir, "temp-dir", opts.cfg.TempDir, "directory for intermediate files")
	flags.IntVar(&opts.cfg.SampleRate, "sample-rate", opts.cfg.SampleRate, "synthesis sample rate")
	flags.IntVar(&opts.cfg.Polyphony, "polyphony", opts.cfg.Polyphony, "maximum number of voices")
	flags.Float64Var(&opts.cfg.Gain, "gain", opts.cfg.Gain, "synthesizer master volume")
	flags.BoolVar(&opts.cfg.Reverb, "reverb", opts.cfg.Reverb, "enable reverb")
	flags.BoolVar(&opts.cfg.Chorus, "chorus", opts.cfg.Chorus, "enable chorus")
	flags.BoolVar(&opts.debug, "debug", false, "enable debug output")

	root.AddCommand(newInfoCmd(), newProbeCmd())
	return root
}

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <file.mml>",
		Short: "Show MML file statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := mmlmp3.Inspect(args[0])
			if err != nil {
				return err
			}
			printStats(cmd.OutOrStdout(), stats)
			return nil
		},
	}
}

func newProbeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "probe <file.mp3>",
		Short: "Decode MP3 file and show its parameters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := mp3.Probe(args[0])
			if err != nil {
				return err
			}
			printInfo(cmd.OutOrStdout(), info)
			return nil
		},
	}
}

func runConvert(w io.Writer, opts options, args []string) error {
	input, bank, output := args[0], args[1], args[2]
	program := mmlmp3.NoProgram
	if len(args) == 4 {
		p, err := parseProgram(args[3])
		if err != nil {
			return err
		}
		program = p
	}

	logger := log.GetLogger()
	if opts.debug {
		logger.SetLevel(logrus.DebugLevel)
	}

	kind := mmlmp3.KindOf(input)
	fmt.Fprintf(w, "Converting %v to MP3\n", kind)
	fmt.Fprintf(w, "Input:      %s\n", input)
	fmt.Fprintf(w, "SoundFont:  %s\n", bank)
	if kind == mmlmp3.Notation && program != mmlmp3.NoProgram {
		fmt.Fprintf(w, "Instrument: %d\n", program)
	}
	fmt.Fprintf(w, "Output:     %s\n", output)
	if kind == mmlmp3.Notation {
		if stats, err := mmlmp3.Inspect(input); err == nil {
			printStats(w, stats)
		}
	}

	m := &metric.Metric{}
	err := mmlmp3.Convert(mmlmp3.Request{
		Source:  mmlmp3.Source{Path: input},
		Output:  output,
		Program: program,
	}, bank,
		mmlmp3.WithTempDir(opts.cfg.TempDir),
		mmlmp3.WithSettings(opts.cfg.Settings()),
		mmlmp3.WithLogger(logger),
		mmlmp3.WithMetric(m),
	)
	if err != nil {
		return err
	}

	measure := m.Measure()
	fmt.Fprintf(w, "Synthesized %v in %v\n",
		measure[mmlmp3.StageSynthesize][metric.DurationCounter],
		measure[mmlmp3.StageSynthesize][metric.ElapsedCounter],
	)
	info, err := mp3.Probe(output)
	if err != nil {
		return err
	}
	printInfo(w, info)
	return nil
}

// parseProgram parses instrument argument.
func parseProgram(s string) (int, error) {
	p, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid instrument number: %v", s)
	}
	if p < 0 || p > 127 {
		return 0, fmt.Errorf("instrument number must be between 0-127: %d", p)
	}
	return p, nil
}

func printStats(w io.Writer, s mml.Stats) {
	fmt.Fprintln(w, "MML file info:")
	fmt.Fprintf(w, "  File size:  %d bytes\n", s.Bytes)
	fmt.Fprintf(w, "  Lines:      %d\n", s.Lines)
	fmt.Fprintf(w, "  Characters: %d\n", s.Chars)
	fmt.Fprintf(w, "  Complexity: %v\n", s.Complexity)
}

func printInfo(w io.Writer, info mp3.Info) {
	fmt.Fprintf(w, "MP3: %d Hz, %d frames, %v\n", info.SampleRate, info.Frames, info.Duration)
}
