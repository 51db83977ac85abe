package composer

import (
	"bytes"
	"io"
	"math/rand/v2"
	"testing"

	"github.com/Kingdread/digital-composer/pkg/markov"
	"github.com/Kingdread/digital-composer/pkg/midifile"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func testComposer(opts Options, seed uint64) *Composer {
	return NewWithRand(opts, rand.New(rand.NewPCG(seed, seed)), quietLogger())
}

func pitchSet(notes midifile.NoteSequence) map[midifile.Pitch]bool {
	set := make(map[midifile.Pitch]bool)
	for _, p := range notes {
		set[p] = true
	}
	return set
}

func TestTrainValidation(t *testing.T) {
	_, err := Train(midifile.NoteSequence{60, 62, 64}, 0)
	assert.ErrorIs(t, err, ErrInvalidDegree)

	_, err = Train(midifile.NoteSequence{60, 62}, 2)
	assert.ErrorIs(t, err, ErrSequenceTooShort)

	_, err = Train(nil, 1)
	assert.ErrorIs(t, err, ErrSequenceTooShort)
}

func TestTrainCounts(t *testing.T) {
	m, err := Train(midifile.NoteSequence{60, 64, 67, 60, 64, 67}, 1)
	require.NoError(t, err)

	assert := assert.New(t)
	assert.Equal(1, m.Degree)
	assert.Equal(3, m.Chain.Contexts())
	assert.Equal(3, m.Contexts())
	assert.Equal([]midifile.Pitch{67}, m.Tail())

	key := func(p ...midifile.Pitch) uint64 {
		return markov.NewWindow(p).Digest()
	}
	assert.Equal(uint64(2), m.Chain.Count(key(60), 64))
	assert.Equal(uint64(2), m.Chain.Count(key(64), 67))
	assert.Equal(uint64(1), m.Chain.Count(key(67), 60))
}

func TestTrainHigherDegree(t *testing.T) {
	m, err := Train(midifile.NoteSequence{1, 2, 3, 1, 2, 4}, 2)
	require.NoError(t, err)

	assert.Equal(t, []midifile.Pitch{2, 4}, m.Tail())
	// (1,2) was followed by 3 and 4; (2,3) by 1; (3,1) by 2
	assert.Equal(t, 3, m.Chain.Contexts())
}

func TestGenerateDeterministicChain(t *testing.T) {
	m, err := Train(midifile.NoteSequence{60, 62, 64, 65}, 1)
	require.NoError(t, err)

	c := testComposer(DefaultOptions(), 1)
	got, err := c.Generate(m, []midifile.Pitch{60}, 3)
	require.NoError(t, err)
	assert.Equal(t, midifile.NoteSequence{62, 64, 65}, got)
}

func TestGenerateStallFails(t *testing.T) {
	m, err := Train(midifile.NoteSequence{60, 62, 64, 65}, 1)
	require.NoError(t, err)

	c := testComposer(DefaultOptions(), 1)
	got, err := c.Generate(m, []midifile.Pitch{60}, 10)
	assert.ErrorIs(t, err, ErrStalledGeneration)
	assert.Equal(t, midifile.NoteSequence{62, 64, 65}, got, "partial result is returned")

	// The tail context itself has no successor.
	got, err = c.Generate(m, m.Tail(), 1)
	assert.ErrorIs(t, err, ErrStalledGeneration)
	assert.Empty(t, got)
}

func TestGenerateStallReseeds(t *testing.T) {
	m, err := Train(midifile.NoteSequence{60, 62, 64, 65}, 1)
	require.NoError(t, err)

	opts := DefaultOptions()
	opts.OnStall = StallReseed
	c := testComposer(opts, 3)
	got, err := c.Generate(m, m.Tail(), 25)
	require.NoError(t, err)
	assert.Len(t, got, 25)
	for _, p := range got {
		assert.Contains(t, []midifile.Pitch{62, 64, 65}, p)
	}
}

func TestGenerateZeroLength(t *testing.T) {
	m, err := Train(midifile.NoteSequence{60, 62}, 1)
	require.NoError(t, err)

	got, err := testComposer(DefaultOptions(), 1).Generate(m, m.Tail(), 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestGenerateSeedSize(t *testing.T) {
	m, err := Train(midifile.NoteSequence{60, 62, 64}, 2)
	require.NoError(t, err)

	_, err = testComposer(DefaultOptions(), 1).Generate(m, []midifile.Pitch{60}, 3)
	assert.Error(t, err)
}

func TestGenerateOnlyEmitsTrainedPitches(t *testing.T) {
	rng := rand.New(rand.NewPCG(11, 12))
	training := make(midifile.NoteSequence, 300)
	for i := range training {
		training[i] = midifile.Pitch(48 + rng.IntN(24))
	}
	allowed := pitchSet(training)

	for degree := 1; degree <= 4; degree++ {
		m, err := Train(training, degree)
		require.NoError(t, err)

		opts := DefaultOptions()
		opts.OnStall = StallReseed
		c := testComposer(opts, uint64(degree))
		got, err := c.Generate(m, m.Tail(), 200)
		require.NoError(t, err)
		require.Len(t, got, 200)
		for _, p := range got {
			require.True(t, allowed[p], "degree %d emitted untrained pitch %d", degree, p)
		}
	}
}

func TestComposeCycle(t *testing.T) {
	opts := DefaultOptions()
	opts.Length = 3
	c := testComposer(opts, 99)

	for i := 0; i < 50; i++ {
		voices, err := c.Compose(midifile.NoteSequence{60, 64, 67, 60, 64, 67})
		require.NoError(t, err)
		require.Len(t, voices, 1)
		assert.Len(t, voices[0], 3)
		for _, p := range voices[0] {
			assert.Contains(t, []midifile.Pitch{60, 64, 67}, p)
		}
	}
}

func TestComposeVoices(t *testing.T) {
	opts := DefaultOptions()
	opts.Voices = 3
	opts.Length = 40
	opts.Degree = 2
	c := testComposer(opts, 5)

	voices, err := c.Compose(midifile.NoteSequence{60, 62, 64, 62, 60, 62, 64, 65, 64, 62, 60})
	require.NoError(t, err)
	require.Len(t, voices, 3)
	for _, v := range voices {
		assert.Len(t, v, 40)
	}
}

func TestComposeIsRepeatableWithSeed(t *testing.T) {
	notes := midifile.NoteSequence{60, 62, 64, 62, 60, 67, 64, 62, 60, 60, 62}
	opts := DefaultOptions()
	opts.Seed = 1234
	opts.Length = 64
	opts.OnStall = StallReseed

	a, err := New(opts, quietLogger()).Compose(notes)
	require.NoError(t, err)
	b, err := New(opts, quietLogger()).Compose(notes)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestComposeRejectsInvalidOptions(t *testing.T) {
	opts := DefaultOptions()
	opts.Degree = 0
	_, err := testComposer(opts, 1).Compose(midifile.NoteSequence{60, 62})
	assert.ErrorIs(t, err, ErrInvalidDegree)
}

func TestComposeLogsSeedSuccessors(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf)
	logger.SetLevel(log.DebugLevel)

	opts := DefaultOptions()
	opts.Length = 4
	c := NewWithRand(opts, rand.New(rand.NewPCG(3, 3)), logger)
	_, err := c.Compose(midifile.NoteSequence{60, 64, 67, 60, 64, 67})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "seed context")
	assert.Contains(t, out, "map[60:1]")
}
