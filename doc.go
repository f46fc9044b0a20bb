/*
Package mmlmp3 converts music macro language and MIDI files into MP3.

Concept

Conversion has up to three stages, executed sequentially:

    Compile - MML notation is compiled into Standard MIDI File;
    Synthesize - MIDI events are rendered into 16-bit PCM WAV container;
    Encode - container is encoded into MP3 file.

MIDI sources skip the first stage. Every stage is gated on the previous
one: the first failure is returned as StageError and the rest of stages
are not attempted.

Artifacts

Intermediate MIDI and WAV files are written into a temporary directory
with names unique per run:

    <tempDir>/mmlmp3-<run>.mid
    <tempDir>/mmlmp3-<run>.wav

They are removed when run ends, whether it succeeded or not. Failure to
remove them is logged as a warning and never returned.

Usage

Pipeline loads instrument bank once and can execute multiple requests:

    p, err := mmlmp3.New("piano.sf2")
    if err != nil {
        return err
    }
    defer p.Close()
    err = p.Run(mmlmp3.Request{
        Source:  mmlmp3.Source{Path: "song.mml"},
        Output:  "song.mp3",
        Program: mmlmp3.NoProgram,
    })

Convert does the same for a single request.
*/
package mmlmp3
