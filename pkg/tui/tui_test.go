package tui

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/Kingdread/digital-composer/pkg/composer"
	"github.com/Kingdread/digital-composer/pkg/midifile"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testModel() Model {
	return New(composer.DefaultOptions(), log.New(io.Discard))
}

func press(t *testing.T, m Model, keys ...tea.KeyMsg) Model {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(Model)
	}
	return m
}

var (
	keyUp    = tea.KeyMsg{Type: tea.KeyUp}
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyLeft  = tea.KeyMsg{Type: tea.KeyLeft}
	keyRight = tea.KeyMsg{Type: tea.KeyRight}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
)

func TestMenuNavigation(t *testing.T) {
	m := press(t, testModel(), keyUp)
	assert.Equal(t, 0, m.menuIndex)

	for range menuItems {
		m = press(t, m, keyDown)
	}
	assert.Equal(t, len(menuItems)-1, m.menuIndex)
}

func TestAdjustSettings(t *testing.T) {
	m := testModel()

	// Track
	m = press(t, m, keyDown, keyDown, keyRight, keyRight, keyLeft)
	assert.Equal(t, uint16(1), m.Options().Track)
	m = press(t, m, keyLeft, keyLeft)
	assert.Equal(t, uint16(0), m.Options().Track)

	// Degree never drops below 1
	m = press(t, m, keyDown, keyLeft, keyRight, keyRight)
	assert.Equal(t, 3, m.Options().Degree)
	m = press(t, m, keyLeft, keyLeft, keyLeft, keyLeft)
	assert.Equal(t, 1, m.Options().Degree)

	// Length moves in tens
	m = press(t, m, keyDown, keyRight)
	assert.Equal(t, 110, m.Options().Length)

	// Stall policy toggles
	m = press(t, m, keyDown, keyEnter)
	assert.Equal(t, composer.StallReseed, m.Options().OnStall)
	m = press(t, m, keyRight)
	assert.Equal(t, composer.StallFail, m.Options().OnStall)

	assert.NoError(t, m.Options().Validate())
}

func TestSelectComposeOpensFilePicker(t *testing.T) {
	m := press(t, testModel(), keyEnter)
	assert.Equal(t, StateFilePicker, m.state)
	assert.Equal(t, ActionCompose, m.action)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, StateMenu, m.state)
}

func TestWorkDoneShowsResult(t *testing.T) {
	m := testModel()
	next, _ := m.Update(workDoneMsg{err: errors.New("boom")})
	m = next.(Model)
	assert.Equal(t, StateResult, m.state)
	assert.Contains(t, m.View(), "boom")

	m = press(t, m, keyEnter)
	assert.Equal(t, StateMenu, m.state)
	assert.Nil(t, m.err)
}

func TestPerformWork(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "melody.mid")
	data, err := midifile.NewEncoder(composer.NewRand(1)).GenerateMIDI([]midifile.NoteSequence{{60, 62, 64, 60, 62, 64}})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(input, data, 0644))

	m := testModel()
	m.opts.Length = 20
	m.selectedFile = input

	m.action = ActionCompose
	done := m.performWork()().(workDoneMsg)
	require.NoError(t, done.err)
	assert.Equal(t, filepath.Join(dir, "melody-composition.mid"), done.outputFile)
	out, err := os.ReadFile(done.outputFile)
	require.NoError(t, err)
	notes, err := midifile.ReadNotes(out, 0)
	require.NoError(t, err)
	assert.Len(t, notes, 20)

	m.action = ActionInspect
	done = m.performWork()().(workDoneMsg)
	require.NoError(t, done.err)
	require.Len(t, done.tracks, 1)
	assert.Equal(t, 6, done.tracks[0].Notes)
}
