package store

import (
	"context"

	"github.com/iho/pocketbank/internal/domain"
)

// ExportSnapshot returns a serializable envelope carrying a full copy
// of the current state.
func (s *Store) ExportSnapshot() domain.SnapshotEnvelope {
	s.mu.Lock()
	defer s.mu.Unlock()

	return domain.SnapshotEnvelope{
		Data:      *s.state.Clone(),
		Timestamp: s.now(),
		Version:   domain.SchemaVersion,
	}
}

// ImportSnapshot replaces in-memory state with the envelope's contents,
// migrating first when the envelope was written by an older build.
// Envelopes from a newer build are refused.
func (s *Store) ImportSnapshot(env domain.SnapshotEnvelope) error {
	if env.Version > domain.SchemaVersion {
		return domain.ErrSnapshotVersionAhead
	}

	incoming := env.Data
	st := &incoming
	if st.Version != domain.SchemaVersion {
		st = domain.Migrate(st, s.now())
	}

	// Clone so the caller's retained envelope cannot reach into live
	// state through shared backing arrays.
	return s.mutate("import_snapshot", func(current *domain.AppState) error {
		*current = *st.Clone()
		return nil
	})
}

// ResetAll clears every storage tier and reinitializes from the
// default seed. The profile picture survives the reset; everything
// else is discarded.
func (s *Store) ResetAll(ctx context.Context) error {
	s.backend.Clear(ctx)

	err := s.mutate("reset_all", func(st *domain.AppState) error {
		picture := st.Profile.ProfilePicture
		*st = *domain.DefaultState(s.now())
		st.Profile.ProfilePicture = picture
		return nil
	})
	if err != nil {
		return err
	}

	// Write the seeded state immediately so a crash inside the debounce
	// window cannot resurrect the cleared data.
	s.mu.Lock()
	st := s.state
	s.mu.Unlock()
	s.writeSync(st)

	return nil
}
