package composer

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/Kingdread/digital-composer/pkg/midifile"
)

// ComposeMIDI reads a MIDI file from r, learns from the configured track and
// writes the composition as a new MIDI file to w.
func (c *Composer) ComposeMIDI(r io.Reader, w io.Writer) error {
	notes, err := midifile.GetNotes(r, c.opts.Track)
	if err != nil {
		return fmt.Errorf("failed to read notes: %w", err)
	}
	c.logger.Debug("decoded track", "track", c.opts.Track, "notes", len(notes))

	voices, err := c.Compose(notes)
	if err != nil {
		return fmt.Errorf("failed to compose: %w", err)
	}

	if err := midifile.NewEncoder(c.rng).WriteMIDIFile(w, voices); err != nil {
		return fmt.Errorf("failed to write composition: %w", err)
	}
	return nil
}

// ComposeFile is ComposeMIDI from inputPath to outputPath. The output file is
// only created once the input has been read.
func (c *Composer) ComposeFile(inputPath, outputPath string) error {
	in, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer func() { _ = in.Close() }()

	notes, err := midifile.GetNotes(in, c.opts.Track)
	if err != nil {
		return fmt.Errorf("failed to read notes: %w", err)
	}
	c.logger.Debug("decoded track", "file", inputPath, "track", c.opts.Track, "notes", len(notes))

	voices, err := c.Compose(notes)
	if err != nil {
		return fmt.Errorf("failed to compose: %w", err)
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	bw := bufio.NewWriter(out)
	if err := midifile.NewEncoder(c.rng).WriteMIDIFile(bw, voices); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to write composition: %w", err)
	}
	if err := bw.Flush(); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return out.Close()
}
