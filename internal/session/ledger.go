package session

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// The set ledger: append/delete operations on the active session's set list.
// Logging is two-phase: the entry is marked logged locally, the insert is
// issued, and on store failure the caller keeps the original snapshot, so the
// local mark rolls back for free.

// AddSet appends an empty, unlogged row to the session's set list.
func (m *Machine) AddSet(s Session) Session {
	s.Sets = append(cloneSets(s.Sets), SetEntry{})
	return s
}

// LogSet parses and persists the set at index. The raw reps/weight inputs
// must parse as non-negative integers; anything else is rejected before a
// store call is issued. set_order is the caller's current index at log time,
// not a server-assigned sequence. On success the entry carries the generated
// id, and the rest gate engages.
func (m *Machine) LogSet(ctx context.Context, s Session, index int) (Session, error) {
	if s.State != StateActive {
		return s, ErrNotActive
	}
	if s.Resting {
		return s, ErrResting
	}
	if index < 0 || index >= len(s.Sets) {
		return s, fmt.Errorf("%w: set index %d out of range", ErrValidation, index)
	}
	entry := s.Sets[index]
	if entry.Logged {
		return s, fmt.Errorf("%w: set %d already logged", ErrValidation, index)
	}
	reps, err := strconv.Atoi(entry.Reps)
	if err != nil || reps < 0 {
		return s, fmt.Errorf("%w: reps %q", ErrValidation, entry.Reps)
	}
	weight, err := strconv.Atoi(entry.Weight)
	if err != nil || weight < 0 {
		return s, fmt.Errorf("%w: weight %q", ErrValidation, entry.Weight)
	}
	if s.WorkoutExerciseID == uuid.Nil {
		return s, fmt.Errorf("%w: no workout session", ErrValidation)
	}

	persisted, err := m.gw.InsertSet(ctx, s.WorkoutExerciseID, reps, weight, index)
	if err != nil {
		// Atomic failure: no partial row, snapshot unchanged.
		return s, err
	}

	s.Sets = cloneSets(s.Sets)
	s.Sets[index].ID = persisted.ID
	s.Sets[index].Logged = true
	s.Resting = true
	return s, nil
}

// DeleteSet removes the row at index. Persisted rows are hard-deleted from
// the store first; sibling set_order values are not compacted. Rows never
// logged exist only in the snapshot and are dropped without a store call.
func (m *Machine) DeleteSet(ctx context.Context, s Session, index int) (Session, error) {
	if index < 0 || index >= len(s.Sets) {
		return s, fmt.Errorf("%w: set index %d out of range", ErrValidation, index)
	}
	entry := s.Sets[index]
	if entry.ID != uuid.Nil && s.State == StateActive {
		if err := m.gw.DeleteSet(ctx, entry.ID, s.UserID); err != nil {
			return s, err
		}
	}
	sets := cloneSets(s.Sets)
	s.Sets = append(sets[:index], sets[index+1:]...)
	return s, nil
}

func cloneSets(sets []SetEntry) []SetEntry {
	out := make([]SetEntry, len(sets))
	copy(out, sets)
	return out
}
