package midifile

import (
	"bytes"
	"fmt"

	"gitlab.com/gomidi/midi/v2/smf"
)

// TrackSummary describes one track of a MIDI file, to help pick the track to
// learn from.
type TrackSummary struct {
	Index   int    `json:"index"`
	Name    string `json:"name,omitempty"`
	Notes   int    `json:"notes"`
	Lowest  Pitch  `json:"lowest"`
	Highest Pitch  `json:"highest"`
}

// Inspect parses a whole MIDI file and summarizes each of its tracks.
func Inspect(data []byte) (summaries []TrackSummary, err error) {
	// smf.ReadFrom can panic on malformed input
	defer func() {
		if r := recover(); r != nil {
			summaries = nil
			err = invalidFile("failed to parse MIDI: %v", r)
		}
	}()

	s, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse MIDI: %w", err)
	}

	summaries = make([]TrackSummary, 0, len(s.Tracks))
	for i, track := range s.Tracks {
		summaries = append(summaries, summarizeTrack(i, track))
	}
	return summaries, nil
}

func summarizeTrack(index int, track smf.Track) TrackSummary {
	sum := TrackSummary{Index: index}
	for _, ev := range track {
		var ch, key, vel uint8
		var name string
		switch {
		case ev.Message.GetMetaTrackName(&name):
			if sum.Name == "" {
				sum.Name = name
			}
		case ev.Message.GetNoteStart(&ch, &key, &vel):
			if sum.Notes == 0 || key < sum.Lowest {
				sum.Lowest = key
			}
			if sum.Notes == 0 || key > sum.Highest {
				sum.Highest = key
			}
			sum.Notes++
		}
	}
	return sum
}

// String renders the summary as a single line.
func (t TrackSummary) String() string {
	name := t.Name
	if name == "" {
		name = "(unnamed)"
	}
	if t.Notes == 0 {
		return fmt.Sprintf("track %d: %s, no notes", t.Index, name)
	}
	return fmt.Sprintf("track %d: %s, %d notes, pitch %d-%d", t.Index, name, t.Notes, t.Lowest, t.Highest)
}
