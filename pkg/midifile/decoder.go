package midifile

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// GetNotes reads the Standard MIDI File from r and returns the note-on pitches
// of the track with the given zero-based index. Tracks before it are skipped by
// their declared chunk length; their content is not validated.
func GetNotes(r io.Reader, track uint16) (NoteSequence, error) {
	br := bufio.NewReader(r)

	if err := expectTag(br, HeaderTag, "file header", func(got []byte) error {
		return invalidFile("invalid MIDI file header %q", got)
	}); err != nil {
		return nil, err
	}

	// Header length and format type are not checked.
	if _, err := br.Discard(4 + 2); err != nil {
		return nil, truncated("file header", err)
	}

	var numTracks uint16
	if err := binary.Read(br, binary.BigEndian, &numTracks); err != nil {
		return nil, truncated("track count", err)
	}
	if track >= numTracks {
		return nil, &Error{
			Kind:   KindInvalidTrackNumber,
			Reason: fmt.Sprintf("the file has no track %d (it has %d)", track, numTracks),
			Track:  track,
		}
	}

	// Time division
	if _, err := br.Discard(2); err != nil {
		return nil, truncated("time division", err)
	}

	for tn := uint16(0); tn < numTracks; tn++ {
		if err := expectTag(br, TrackTag, fmt.Sprintf("header of track %d", tn), func(got []byte) error {
			return &Error{
				Kind:   KindInvalidFile,
				Reason: fmt.Sprintf("invalid MIDI track header %q in track %d", got, tn),
				Track:  tn,
			}
		}); err != nil {
			return nil, err
		}

		var length uint32
		if err := binary.Read(br, binary.BigEndian, &length); err != nil {
			return nil, truncated(fmt.Sprintf("length of track %d", tn), err)
		}

		if tn != track {
			if err := discard(br, int64(length)); err != nil {
				return nil, truncated(fmt.Sprintf("body of track %d", tn), err)
			}
			continue
		}

		notes, err := ScanTrack(br)
		if err != nil {
			if e, ok := err.(*Error); ok {
				e.Track = tn
			}
			return nil, err
		}
		return notes, nil
	}

	return nil, &Error{Kind: KindUnknown, Reason: fmt.Sprintf("track %d not found", track), Track: track}
}

// ReadNotes is GetNotes over an in-memory file.
func ReadNotes(data []byte, track uint16) (NoteSequence, error) {
	return GetNotes(bytes.NewReader(data), track)
}

func expectTag(r io.Reader, tag, what string, mismatch func(got []byte) error) error {
	buf := make([]byte, len(tag))
	if _, err := io.ReadFull(r, buf); err != nil {
		return truncated(what, err)
	}
	if string(buf) != tag {
		return mismatch(buf)
	}
	return nil
}

func discard(r io.Reader, n int64) error {
	copied, err := io.CopyN(io.Discard, r, n)
	if err == nil && copied != n {
		err = io.ErrUnexpectedEOF
	}
	return err
}
