package midifile

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"gitlab.com/gomidi/midi/v2"
)

// Bounds of the random gap between a note's on and off events, in ticks
const (
	MinNoteDelay = 15
	MaxNoteDelay = 30
)

var endOfTrack = []byte{0x00, StatusMeta, MetaEndOfTrack, 0x00}

// Rand supplies the randomness for note lengths
type Rand interface {
	IntN(n int) int
}

// Encoder writes note sequences as a format 1 Standard MIDI File, one track
// per sequence. Every note is a note-on/note-off pair on the same channel with
// a random length; no other timing is reproduced.
type Encoder struct {
	rng Rand
}

// NewEncoder creates an Encoder drawing note lengths from rng
func NewEncoder(rng Rand) *Encoder {
	return &Encoder{rng: rng}
}

// WriteMIDIFile writes a complete MIDI file containing tracks to w.
func (e *Encoder) WriteMIDIFile(w io.Writer, tracks []NoteSequence) error {
	data, err := e.GenerateMIDI(tracks)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write MIDI: %w", err)
	}
	return nil
}

// GenerateMIDI returns the bytes of a complete MIDI file containing tracks.
func (e *Encoder) GenerateMIDI(tracks []NoteSequence) ([]byte, error) {
	if len(tracks) > math.MaxUint16 {
		return nil, fmt.Errorf("too many tracks: %d (max %d)", len(tracks), math.MaxUint16)
	}

	var buf bytes.Buffer
	buf.WriteString(HeaderTag)
	header := []any{
		uint32(HeaderLength),
		uint16(FormatMultiTrack),
		uint16(len(tracks)),
		uint16(Division),
	}
	for _, v := range header {
		if err := binary.Write(&buf, binary.BigEndian, v); err != nil {
			return nil, err
		}
	}

	for i, notes := range tracks {
		body, err := e.trackData(notes)
		if err != nil {
			return nil, fmt.Errorf("error encoding track #%d: %w", i, err)
		}
		buf.WriteString(TrackTag)
		if err := binary.Write(&buf, binary.BigEndian, uint32(len(body))); err != nil {
			return nil, err
		}
		buf.Write(body)
	}

	return buf.Bytes(), nil
}

// trackData builds the event body of one track chunk. Every event carries its
// own status byte.
func (e *Encoder) trackData(notes NoteSequence) ([]byte, error) {
	out := make([]byte, 0, len(notes)*8+len(endOfTrack))
	for _, p := range notes {
		if p > 127 {
			return nil, fmt.Errorf("pitch %d out of range", p)
		}
		out = append(out, 0x00)
		out = append(out, midi.NoteOn(OutputChannel, p, NoteVelocity)...)
		out = append(out, e.noteDelay())
		out = append(out, midi.NoteOff(OutputChannel, p)...)
	}
	return append(out, endOfTrack...), nil
}

// noteDelay returns a delta-time uniformly drawn from [MinNoteDelay, MaxNoteDelay].
// It always fits in a single variable-length byte.
func (e *Encoder) noteDelay() byte {
	return byte(MinNoteDelay + e.rng.IntN(MaxNoteDelay-MinNoteDelay+1))
}
