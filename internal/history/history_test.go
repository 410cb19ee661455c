package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUndoAllReturnsToInitial(t *testing.T) {
	s := New("v0")
	commits := []string{"v1", "v2", "v3", "v4"}
	for _, v := range commits {
		s.Set(v)
	}

	for range commits {
		require.True(t, s.Undo())
	}

	assert.Equal(t, "v0", s.Present())
	assert.False(t, s.CanUndo())
	assert.False(t, s.Undo(), "undo on empty past must be a no-op")
	assert.Equal(t, "v0", s.Present())
}

func TestCommitClearsRedo(t *testing.T) {
	s := New(1)
	s.Set(2)
	s.Set(3)
	require.True(t, s.Undo())
	require.True(t, s.CanRedo())

	s.Set(10)

	assert.False(t, s.CanRedo())
	assert.False(t, s.Redo(), "redo after a commit must be a no-op")
	assert.Equal(t, 10, s.Present())
}

func TestUndoRedoRoundTrip(t *testing.T) {
	type doc struct {
		Name  string
		Langs []string
	}
	s := New(doc{Name: "a", Langs: []string{"en"}})
	s.Set(doc{Name: "b", Langs: []string{"en", "es"}})

	before := s.Present()
	require.True(t, s.Undo())
	require.True(t, s.Redo())

	assert.Equal(t, before, s.Present())
	assert.True(t, s.CanUndo())
	assert.False(t, s.CanRedo())
}

func TestUpdateUsesPresent(t *testing.T) {
	s := New(5)
	s.Update(func(v int) int { return v * 2 })
	assert.Equal(t, 10, s.Present())
	require.True(t, s.Undo())
	assert.Equal(t, 5, s.Present())
}

func TestEveryCommitIsRecorded(t *testing.T) {
	// No no-op detection: committing an equal value still grows the past.
	s := New("same")
	s.Set("same")
	s.Set("same")
	assert.True(t, s.CanUndo())
	require.True(t, s.Undo())
	require.True(t, s.Undo())
	assert.False(t, s.CanUndo())
}

func TestResetDropsBothStacks(t *testing.T) {
	s := New("a")
	s.Set("b")
	require.True(t, s.Undo())
	require.True(t, s.CanRedo())

	s.Reset("fresh")

	assert.Equal(t, "fresh", s.Present())
	assert.False(t, s.CanUndo())
	assert.False(t, s.CanRedo())
}

func TestRedoOrdering(t *testing.T) {
	s := New(0)
	s.Set(1)
	s.Set(2)
	s.Set(3)
	require.True(t, s.Undo()) // 2
	require.True(t, s.Undo()) // 1
	require.True(t, s.Redo()) // 2
	assert.Equal(t, 2, s.Present())
	require.True(t, s.Redo()) // 3
	assert.Equal(t, 3, s.Present())
	assert.False(t, s.Redo())
}
