// Package history provides a generic linear undo/redo container.
package history

// Store holds exactly one present value of type T plus the undo and redo
// stacks around it. Committing a new present always clears the redo stack:
// new edits prune the redo branch. The store performs no no-op detection;
// every commit is recorded even if the value is unchanged.
//
// Store is not safe for concurrent use; the owning engine serializes access.
type Store[T any] struct {
	past    []T // oldest -> newest
	present T
	future  []T // nearest -> farthest
}

// New returns a store whose present is initial and whose stacks are empty.
func New[T any](initial T) *Store[T] {
	return &Store[T]{present: initial}
}

// Present returns the current value.
func (s *Store[T]) Present() T {
	return s.present
}

// Set commits v as the new present, pushing the old present onto the undo
// stack and clearing the redo stack.
func (s *Store[T]) Set(v T) {
	s.past = append(s.past, s.present)
	s.present = v
	s.future = nil
}

// Update commits fn(present) as the new present. Same bookkeeping as Set.
func (s *Store[T]) Update(fn func(T) T) {
	s.Set(fn(s.present))
}

// Undo moves one step back. It is a no-op when the undo stack is empty and
// reports whether anything changed.
func (s *Store[T]) Undo() bool {
	if len(s.past) == 0 {
		return false
	}
	prev := s.past[len(s.past)-1]
	s.past = s.past[:len(s.past)-1]
	s.future = append([]T{s.present}, s.future...)
	s.present = prev
	return true
}

// Redo moves one step forward. It is a no-op when the redo stack is empty
// and reports whether anything changed.
func (s *Store[T]) Redo() bool {
	if len(s.future) == 0 {
		return false
	}
	next := s.future[0]
	s.future = s.future[1:]
	s.past = append(s.past, s.present)
	s.present = next
	return true
}

// Reset replaces the present with v and drops both stacks. Used when a
// different document is loaded; not an undo.
func (s *Store[T]) Reset(v T) {
	s.past = nil
	s.future = nil
	s.present = v
}

// CanUndo reports whether the undo stack is non-empty.
func (s *Store[T]) CanUndo() bool { return len(s.past) > 0 }

// CanRedo reports whether the redo stack is non-empty.
func (s *Store[T]) CanRedo() bool { return len(s.future) > 0 }
