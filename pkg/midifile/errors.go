package midifile

import (
	"errors"
	"fmt"
	"io"
)

// ErrorKind classifies decoding failures
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindInvalidFile
	KindInvalidTrackNumber
	KindTruncatedStream
	KindUnexpectedEndOfTrack
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidFile:
		return "invalid MIDI file"
	case KindInvalidTrackNumber:
		return "invalid track number"
	case KindTruncatedStream:
		return "truncated stream"
	case KindUnexpectedEndOfTrack:
		return "unexpected end of track"
	default:
		return "unknown error"
	}
}

// Sentinels for errors.Is; they match any *Error of the same kind.
var (
	ErrInvalidFile          = &Error{Kind: KindInvalidFile}
	ErrInvalidTrackNumber   = &Error{Kind: KindInvalidTrackNumber}
	ErrTruncatedStream      = &Error{Kind: KindTruncatedStream}
	ErrUnexpectedEndOfTrack = &Error{Kind: KindUnexpectedEndOfTrack}
	ErrUnknown              = &Error{Kind: KindUnknown}
)

// Error is returned by all decoding operations. Err holds the underlying
// I/O error, if any, and is exposed through Unwrap.
type Error struct {
	Kind   ErrorKind
	Reason string
	Track  uint16
	Err    error
}

func (e *Error) Error() string {
	if e.Reason == "" {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.Reason
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func invalidFile(format string, args ...any) error {
	return &Error{Kind: KindInvalidFile, Reason: fmt.Sprintf(format, args...)}
}

// truncated reports a short read while reading what.
func truncated(what string, err error) error {
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return &Error{Kind: KindTruncatedStream, Reason: "reading " + what, Err: err}
}

// IsDecodeError reports whether err was caused by malformed or unusable input
// rather than by the environment.
func IsDecodeError(err error) bool {
	var e *Error
	return errors.As(err, &e)
}
