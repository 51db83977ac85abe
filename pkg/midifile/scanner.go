package midifile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
)

type scanState int

const (
	stateDeltaTime scanState = iota
	stateStatus
	stateParams
	stateMetaOrSysEx
	stateEndOfTrack
)

type trackScanner struct {
	r     *bufio.Reader
	state scanState

	runningStatus byte

	// current event
	status byte
	kind   EventKind
	data1  byte

	events int
	notes  NoteSequence
}

// ScanTrack reads one track body from r, which must be positioned at the first
// delta-time of the track, and returns the pitches of all note-on events with
// a non-zero velocity. Scanning ends at the End Of Track meta event; running
// out of input before it is an error.
func ScanTrack(r io.Reader) (NoteSequence, error) {
	s := &trackScanner{
		r:     bufio.NewReader(r),
		notes: NoteSequence{},
	}
	if err := s.run(); err != nil {
		return nil, err
	}
	return s.notes, nil
}

func (s *trackScanner) run() error {
	for s.state != stateEndOfTrack {
		var err error
		switch s.state {
		case stateDeltaTime:
			err = s.readDeltaTime()
		case stateStatus:
			err = s.readStatus()
		case stateParams:
			err = s.readParams()
		case stateMetaOrSysEx:
			err = s.readMetaOrSysEx()
		default:
			panic(fmt.Errorf("scanner in illegal state: %v", s.state))
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// readDeltaTime consumes the event's delta-time. Timing is not reproduced, so
// the value is dropped. Input ending here, between two events, means the
// End Of Track marker never came.
func (s *trackScanner) readDeltaTime() error {
	if _, err := s.r.Peek(1); err != nil {
		if errors.Is(err, io.EOF) {
			return &Error{
				Kind:   KindUnexpectedEndOfTrack,
				Reason: fmt.Sprintf("no End Of Track event after %d event(s)", s.events),
				Err:    err,
			}
		}
		return truncated("delta-time", err)
	}
	if _, _, err := DecodeVarLen(s.r); err != nil {
		return err
	}
	s.state = stateStatus
	return nil
}

// readStatus determines the effective status byte and reads the first data
// byte. For meta events that byte is the meta type.
func (s *trackScanner) readStatus() error {
	first, err := s.r.ReadByte()
	if err != nil {
		return truncated(fmt.Sprintf("status of event %d", s.events), err)
	}

	if first&0x80 == 0 {
		// Running status: the byte we just read is already the first data byte.
		s.status = s.runningStatus
		s.data1 = first
	} else {
		s.status = first
		if s.data1, err = s.r.ReadByte(); err != nil {
			return truncated(fmt.Sprintf("data of %v event %d", ClassifyStatus(first), s.events), err)
		}
	}

	s.kind = ClassifyStatus(s.status)
	switch s.kind {
	case EventMeta, EventSysEx:
		s.state = stateMetaOrSysEx
	default:
		s.state = stateParams
	}
	return nil
}

func (s *trackScanner) readParams() error {
	switch s.kind {
	case EventNoteOn:
		velocity, err := s.r.ReadByte()
		if err != nil {
			return truncated(fmt.Sprintf("velocity of NoteOn event %d", s.events), err)
		}
		// A note-on with velocity 0 is a note-off.
		if velocity != 0 {
			s.notes = append(s.notes, s.data1)
		}
	case EventNoteOff, EventPolyAftertouch, EventController, EventPitchBend:
		if err := s.skip(s.kind.extraDataBytes(), fmt.Sprintf("data of %v event %d", s.kind, s.events)); err != nil {
			return err
		}
	case EventProgramChange, EventChannelAftertouch:
	default:
		// No status seen yet; nothing more is known about this byte.
	}

	s.finishEvent()
	return nil
}

// readMetaOrSysEx skips the body of a meta or system event. A meta event
// whose type is End Of Track ends the scan.
func (s *trackScanner) readMetaOrSysEx() error {
	length, _, err := DecodeVarLen(s.r)
	if err != nil {
		return err
	}
	if err := s.skip(int(length), fmt.Sprintf("%v event %d", s.kind, s.events)); err != nil {
		return err
	}

	if s.kind == EventMeta && s.data1 == MetaEndOfTrack {
		s.events++
		s.state = stateEndOfTrack
		return nil
	}
	s.finishEvent()
	return nil
}

// finishEvent makes the event's status the running status, whatever its kind.
func (s *trackScanner) finishEvent() {
	s.runningStatus = s.status
	s.events++
	s.state = stateDeltaTime
}

func (s *trackScanner) skip(n int, what string) error {
	if _, err := s.r.Discard(n); err != nil {
		return truncated(what, err)
	}
	return nil
}
