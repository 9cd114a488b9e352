// Package store holds the reactive state core: the sole mutation
// surface for application state, the source of derived reads, and the
// coordinator of debounced persistence and listener fan-out.
package store

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/pocketbank/internal/alert"
	"github.com/iho/pocketbank/internal/domain"
	"github.com/iho/pocketbank/internal/infrastructure/metrics"
	"github.com/iho/pocketbank/internal/storage"
)

// Storage keys. The backup key holds a trailing copy of the same
// envelope so a corrupted main write can be recovered by hand.
const (
	StateKey  = "appstate"
	BackupKey = "appstate:backup"
)

// Default debounce windows. Listener notification coalesces bursts
// into one re-render signal; persistence coalesces them into one
// storage write. In-memory state may lead persisted state by up to the
// persistence window; Flush closes the gap on teardown.
const (
	DefaultNotifyDebounce  = 250 * time.Millisecond
	DefaultPersistDebounce = 3 * time.Second
)

// Store is the canonical owner of AppState. Construct exactly one per
// process and pass it by reference; all mutation goes through its
// methods.
type Store struct {
	mu    sync.Mutex
	state *domain.AppState

	backend *storage.Tiered
	alerts  alert.Sender
	idGen   IDGenerator
	logger  zerolog.Logger
	metrics *metrics.Metrics
	now     func() time.Time

	notifyDebounce  *Debouncer
	persistDebounce *Debouncer

	lmu        sync.Mutex
	listeners  map[int]func()
	nextListen int
}

// Config holds Store dependencies.
type Config struct {
	Backend *storage.Tiered
	Alerts  alert.Sender
	IDGen   IDGenerator
	Logger  zerolog.Logger
	Metrics *metrics.Metrics

	NotifyDebounce  time.Duration
	PersistDebounce time.Duration

	// Now is the clock; defaults to time.Now. Tests inject a fixed one.
	Now func() time.Time
}

// New builds a Store and loads state through the backend's synchronous
// path so first paint does not wait on the asynchronous tier. Missing
// state falls back to the seeded default; a version mismatch migrates
// before the store accepts any mutation.
func New(cfg Config) *Store {
	return newStore(cfg, realTimerFactory)
}

func newStore(cfg Config, factory timerFactory) *Store {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.IDGen == nil {
		cfg.IDGen = NewULIDGenerator()
	}
	if cfg.Alerts == nil {
		cfg.Alerts = alert.NewLogSender(nil)
	}
	if cfg.NotifyDebounce <= 0 {
		cfg.NotifyDebounce = DefaultNotifyDebounce
	}
	if cfg.PersistDebounce <= 0 {
		cfg.PersistDebounce = DefaultPersistDebounce
	}

	s := &Store{
		backend:   cfg.Backend,
		alerts:    cfg.Alerts,
		idGen:     cfg.IDGen,
		logger:    cfg.Logger,
		metrics:   cfg.Metrics,
		now:       cfg.Now,
		listeners: make(map[int]func()),
	}
	s.notifyDebounce = newDebouncer(cfg.NotifyDebounce, s.notifyListeners, factory)
	s.persistDebounce = newDebouncer(cfg.PersistDebounce, s.persist, factory)

	s.state = s.loadInitialState()

	return s
}

func (s *Store) loadInitialState() *domain.AppState {
	now := s.now()

	data, ok := s.backend.LoadSync(StateKey)
	if !ok {
		s.logger.Info().Msg("no persisted state, seeding defaults")
		return domain.DefaultState(now)
	}

	var st domain.AppState
	if err := json.Unmarshal(data, &st); err != nil {
		s.logger.Error().Err(err).Msg("persisted state unreadable, seeding defaults")
		return domain.DefaultState(now)
	}

	if st.Version != domain.SchemaVersion {
		s.logger.Info().Int("from", st.Version).Int("to", domain.SchemaVersion).Msg("migrating persisted state")
		migrated := domain.Migrate(&st, now)
		s.writeSync(migrated)
		return migrated
	}

	return &st
}

// Subscribe registers a zero-argument listener invoked after any
// mutation's debounce window elapses. The returned function removes
// the listener.
func (s *Store) Subscribe(listener func()) (unsubscribe func()) {
	s.lmu.Lock()
	defer s.lmu.Unlock()

	id := s.nextListen
	s.nextListen++
	s.listeners[id] = listener

	return func() {
		s.lmu.Lock()
		defer s.lmu.Unlock()
		delete(s.listeners, id)
	}
}

// mutate runs fn against the state under the lock, then schedules the
// debounced fan-out. Listener callbacks and persistence never observe
// a half-applied mutation because fn completes before either timer can
// fire.
func (s *Store) mutate(op string, fn func(st *domain.AppState) error) error {
	s.mu.Lock()
	err := fn(s.state)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.Mutations.WithLabelValues(op).Inc()
	}

	s.notifyDebounce.Trigger()
	s.persistDebounce.Trigger()

	return nil
}

func (s *Store) notifyListeners() {
	s.lmu.Lock()
	callbacks := make([]func(), 0, len(s.listeners))
	for _, l := range s.listeners {
		callbacks = append(callbacks, l)
	}
	s.lmu.Unlock()

	for _, cb := range callbacks {
		cb()
	}

	if s.metrics != nil {
		s.metrics.ListenerNotifies.Inc()
	}
}

// persist writes the current state to the backend's asynchronous path,
// main key plus backup copy.
func (s *Store) persist() {
	data, err := s.encodeState()
	if err != nil {
		s.logger.Error().Err(err).Msg("state serialization failed, skipping persist")
		return
	}

	ctx := context.Background()
	s.backend.Save(ctx, StateKey, data)
	s.backend.Save(ctx, BackupKey, data)

	if s.metrics != nil {
		s.metrics.PersistWrites.Inc()
	}
}

// Flush cancels pending debounce timers and writes state through the
// synchronous path. Call on teardown so a never-elapsed window cannot
// lose data.
func (s *Store) Flush() {
	s.notifyDebounce.Cancel()
	s.persistDebounce.Cancel()

	s.mu.Lock()
	st := s.state
	s.mu.Unlock()
	s.writeSync(st)
}

func (s *Store) writeSync(st *domain.AppState) {
	data, err := json.Marshal(st)
	if err != nil {
		s.logger.Error().Err(err).Msg("state serialization failed, skipping sync write")
		return
	}
	s.backend.SaveSync(StateKey, data)
	s.backend.SaveSync(BackupKey, data)
}

func (s *Store) encodeState() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return json.Marshal(s.state)
}

// UserProfile returns a copy of the profile.
func (s *Store) UserProfile() domain.UserProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Profile
}

// UpdateProfile applies a partial profile edit.
func (s *Store) UpdateProfile(patch domain.ProfilePatch) error {
	return s.mutate("update_profile", func(st *domain.AppState) error {
		st.Profile.Apply(patch)
		return nil
	})
}

// SetBalance overwrites the balance, re-rounded to 2 decimals.
func (s *Store) SetBalance(value decimal.Decimal) error {
	return s.mutate("set_balance", func(st *domain.AppState) error {
		st.Profile.Balance = domain.RoundMoney(value)
		return nil
	})
}

// Balance returns the current balance.
func (s *Store) Balance() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Profile.Balance
}

// Settings returns a copy of the settings.
func (s *Store) Settings() domain.AppSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Settings
}

// UpdateSettings applies a partial settings edit.
func (s *Store) UpdateSettings(patch domain.SettingsPatch) error {
	return s.mutate("update_settings", func(st *domain.AppState) error {
		st.Settings.Apply(patch)
		return nil
	})
}

// LastSynced reports the last successful remote sync time.
func (s *Store) LastSynced() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.LastSynced
}

// MarkSynced records a successful remote sync.
func (s *Store) MarkSynced(t time.Time) error {
	return s.mutate("mark_synced", func(st *domain.AppState) error {
		st.LastSynced = t
		return nil
	})
}
