// Package midifile reads the pitches of note-on events from Standard MIDI Files
// and writes generated melodies back out as playable MIDI data.
package midifile

// Pitch is a MIDI note number (0-127)
type Pitch = uint8

// NoteSequence is a melody: the pitches of consecutive note-on events, in order
type NoteSequence []Pitch

// Chunk tags and fixed header values
const (
	HeaderTag = "MThd"
	TrackTag  = "MTrk"

	HeaderLength = 6

	// FormatMultiTrack is SMF format type 1
	FormatMultiTrack = 1

	// Division is the time division (ticks per quarter note) of written files
	Division = 0x30
)

// Status bytes and meta types used by the scanner and the encoder
const (
	StatusMeta     = 0xFF
	MetaEndOfTrack = 0x2F

	// OutputChannel is the zero-based channel written notes are played on
	OutputChannel = 1
	NoteVelocity  = 127
)

// Ints converts the sequence to plain ints, e.g. for JSON output where a
// byte slice would otherwise be base64 encoded.
func (s NoteSequence) Ints() []int {
	out := make([]int, len(s))
	for i, p := range s {
		out[i] = int(p)
	}
	return out
}
