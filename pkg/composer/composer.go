// Package composer learns a Markov chain from a melody and samples new melodies
// from it.
package composer

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/Kingdread/digital-composer/pkg/markov"
	"github.com/Kingdread/digital-composer/pkg/midifile"
	"github.com/charmbracelet/log"
)

var (
	ErrInvalidDegree     = errors.New("degree must be at least 1")
	ErrSequenceTooShort  = errors.New("sequence must be longer than the degree")
	ErrStalledGeneration = errors.New("generation stalled: no successor for the current context")
)

// Rand is the random source shared by sampling and note-length synthesis
type Rand interface {
	IntN(n int) int
}

// Chain maps context digests to the pitches that followed them
type Chain = markov.Chain[uint64, midifile.Pitch]

// Model is a chain trained on one melody, with the contexts it was built from.
type Model struct {
	Chain  *Chain
	Degree int

	tail     []midifile.Pitch
	contexts [][]midifile.Pitch
}

// Tail returns the last Degree pitches of the training melody, the context
// generation starts from.
func (m *Model) Tail() []midifile.Pitch {
	return append([]midifile.Pitch(nil), m.tail...)
}

// Contexts returns the number of distinct contexts that have a successor.
func (m *Model) Contexts() int {
	return len(m.contexts)
}

// Train builds a chain of the given degree from notes: every window of degree
// consecutive pitches is marked with the pitch that follows it.
func Train(notes midifile.NoteSequence, degree int) (*Model, error) {
	if degree < 1 {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidDegree, degree)
	}
	if len(notes) <= degree {
		return nil, fmt.Errorf("%w: %d notes, degree %d", ErrSequenceTooShort, len(notes), degree)
	}

	m := &Model{
		Chain:  markov.New[uint64, midifile.Pitch](),
		Degree: degree,
	}
	seen := make(map[uint64]bool)
	w := markov.NewWindow(notes[:degree])
	for _, p := range notes[degree:] {
		key := w.Digest()
		if !seen[key] {
			seen[key] = true
			m.contexts = append(m.contexts, w.Bytes())
		}
		m.Chain.Mark(key, p)
		w.Slide(p)
	}
	m.tail = w.Bytes()
	return m, nil
}

// Composer samples melodies from trained models.
type Composer struct {
	opts   Options
	rng    Rand
	logger *log.Logger
}

// New creates a Composer seeded from opts.Seed. A nil logger means log.Default().
func New(opts Options, logger *log.Logger) *Composer {
	return NewWithRand(opts, NewRand(opts.Seed), logger)
}

// NewWithRand creates a Composer using rng for every random decision.
func NewWithRand(opts Options, rng Rand, logger *log.Logger) *Composer {
	if logger == nil {
		logger = log.Default()
	}
	return &Composer{opts: opts, rng: rng, logger: logger}
}

// NewRand returns a PCG source for seed, or a time-seeded one for seed 0.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15))
}

// Options returns the composer's options
func (c *Composer) Options() Options {
	return c.opts
}

// Generate samples length pitches from m, starting at the context seed.
//
// A context without successors can never make progress, since neither the
// chain nor the context change. Under StallFail this ends generation with
// ErrStalledGeneration and the pitches produced so far. Under StallReseed the
// context is replaced by a random training context, at most length times.
func (c *Composer) Generate(m *Model, seed []midifile.Pitch, length int) (midifile.NoteSequence, error) {
	if len(seed) != m.Degree {
		return nil, fmt.Errorf("seed has %d pitches, model degree is %d", len(seed), m.Degree)
	}

	out := make(midifile.NoteSequence, 0, length)
	w := markov.NewWindow(seed)
	reseeds := 0
	for len(out) < length {
		if p, ok := m.Chain.RandomSuccessor(w.Digest(), c.rng); ok {
			out = append(out, p)
			w.Slide(p)
			continue
		}

		if c.opts.OnStall != StallReseed || reseeds >= length || len(m.contexts) == 0 {
			return out, fmt.Errorf("%w after %d of %d pitches (context %v)", ErrStalledGeneration, len(out), length, w.Bytes())
		}
		next := m.contexts[c.rng.IntN(len(m.contexts))]
		c.logger.Debug("reseeding stalled context", "context", w.Bytes(), "next", next, "produced", len(out))
		w.Reset(next)
		reseeds++
	}
	return out, nil
}

// Compose trains once on notes and generates opts.Voices sequences from it.
func (c *Composer) Compose(notes midifile.NoteSequence) ([]midifile.NoteSequence, error) {
	if err := c.opts.Validate(); err != nil {
		return nil, err
	}

	m, err := Train(notes, c.opts.Degree)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("trained chain", "notes", len(notes), "degree", m.Degree, "contexts", m.Chain.Contexts())
	tail := m.Tail()
	c.logger.Debug("seed context", "pitches", midifile.NoteSequence(tail).Ints(),
		"successors", m.Chain.Successors(markov.NewWindow(tail).Digest()))

	voices := make([]midifile.NoteSequence, 0, c.opts.Voices)
	for v := 0; v < c.opts.Voices; v++ {
		seq, err := c.Generate(m, m.Tail(), c.opts.Length)
		if err != nil {
			return nil, fmt.Errorf("voice %d: %w", v, err)
		}
		voices = append(voices, seq)
	}
	c.logger.Debug("generated voices", "voices", len(voices), "length", c.opts.Length)
	return voices, nil
}
