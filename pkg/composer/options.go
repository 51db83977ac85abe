package composer

import (
	"errors"
	"fmt"
	"strings"
)

// StallPolicy decides what Generate does when the current context has no
// recorded successor.
type StallPolicy string

const (
	// StallFail stops generation with ErrStalledGeneration
	StallFail StallPolicy = "fail"
	// StallReseed restarts from a random context seen during training
	StallReseed StallPolicy = "reseed"
)

// ParseStallPolicy parses "fail" or "reseed"
func ParseStallPolicy(s string) (StallPolicy, error) {
	switch p := StallPolicy(strings.ToLower(s)); p {
	case StallFail, StallReseed:
		return p, nil
	default:
		return "", fmt.Errorf("unknown stall policy %q (want %q or %q)", s, StallFail, StallReseed)
	}
}

// Options configures one composition
type Options struct {
	// Track is the zero-based index of the track to learn from
	Track uint16 `json:"track"`
	// Degree is the number of preceding pitches the next one depends on
	Degree int `json:"degree"`
	// Length is the number of pitches to generate per voice
	Length int `json:"length"`
	// Voices is the number of independent sequences, each written as its own track
	Voices int `json:"voices"`
	// Seed seeds the random source; 0 picks a time-based seed
	Seed uint64 `json:"seed"`

	OnStall StallPolicy `json:"on_stall"`
}

// DefaultOptions returns the options used when nothing is specified
func DefaultOptions() Options {
	return Options{
		Track:   0,
		Degree:  1,
		Length:  100,
		Voices:  1,
		OnStall: StallFail,
	}
}

// Validate checks the options for consistency
func (o Options) Validate() error {
	var errs []error
	if o.Degree < 1 {
		errs = append(errs, fmt.Errorf("%w, got %d", ErrInvalidDegree, o.Degree))
	}
	if o.Length < 0 {
		errs = append(errs, fmt.Errorf("length must not be negative, got %d", o.Length))
	}
	if o.Voices < 1 || o.Voices > 0xFFFF {
		errs = append(errs, fmt.Errorf("voices must be between 1 and 65535, got %d", o.Voices))
	}
	if _, err := ParseStallPolicy(string(o.OnStall)); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
