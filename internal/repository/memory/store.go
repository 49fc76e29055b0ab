// Package memory provides an in-process implementation of the repository
// interfaces. It backs tests and local runs without POSTGRES_DSN.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/spec-kit/booking-service/internal/domain"
	"github.com/spec-kit/booking-service/internal/repository"
)

type state struct {
	reservations map[string]domain.Reservation
	staff        map[string]domain.StaffMember
	menus        map[string]domain.Menu
	flags        map[domain.TenantID]domain.FeatureFlags
}

func newState() *state {
	return &state{
		reservations: map[string]domain.Reservation{},
		staff:        map[string]domain.StaffMember{},
		menus:        map[string]domain.Menu{},
		flags:        map[domain.TenantID]domain.FeatureFlags{},
	}
}

func (s *state) clone() *state {
	out := newState()
	for k, v := range s.reservations {
		out.reservations[k] = v
	}
	for k, v := range s.staff {
		out.staff[k] = v
	}
	for k, v := range s.menus {
		out.menus[k] = v
	}
	for k, v := range s.flags {
		out.flags[k] = v
	}
	return out
}

// access abstracts whether a repository runs against the live state or a
// transaction's working copy.
type access interface {
	read(fn func(st *state))
	write(fn func(st *state) error) error
	now() time.Time
}

// Store is a mutex-guarded in-memory repository.Store and repository.TxManager.
// Units of work run one at a time against a copy of the state that replaces
// the live state only when fn succeeds.
type Store struct {
	mu    sync.RWMutex
	txMu  sync.Mutex
	data  *state
	clock func() time.Time
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{data: newState(), clock: time.Now}
}

// WithClock overrides the timestamp source, for deterministic ordering.
func (s *Store) WithClock(clock func() time.Time) *Store {
	s.clock = clock
	return s
}

func (s *Store) read(fn func(st *state)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.data)
}

func (s *Store) write(fn func(st *state) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.data)
}

func (s *Store) now() time.Time { return s.clock().UTC() }

// Reservations implements repository.Store.
func (s *Store) Reservations() repository.ReservationRepository {
	return &reservationRepository{a: s}
}

// Staff implements repository.Store.
func (s *Store) Staff() repository.StaffRepository {
	return &staffRepository{a: s}
}

// Menus implements repository.Store.
func (s *Store) Menus() repository.MenuRepository {
	return &menuRepository{a: s}
}

// FeatureFlags returns the flag repository over the live state.
func (s *Store) FeatureFlags() repository.FeatureFlagRepository {
	return &featureFlagRepository{a: s}
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// WithinTx implements repository.TxManager. The key is ignored: every unit of
// work is serialized.
func (s *Store) WithinTx(ctx context.Context, _ repository.LockKey, fn func(ctx context.Context, store repository.Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	work := s.data.clone()
	s.mu.RUnlock()

	tx := &txStore{st: work, clock: s.now}
	if err := fn(ctx, tx); err != nil {
		return err
	}

	s.mu.Lock()
	s.data = work
	s.mu.Unlock()
	return nil
}

type txStore struct {
	st    *state
	clock func() time.Time
}

func (t *txStore) read(fn func(st *state))             { fn(t.st) }
func (t *txStore) write(fn func(st *state) error) error { return fn(t.st) }
func (t *txStore) now() time.Time                       { return t.clock() }

func (t *txStore) Reservations() repository.ReservationRepository {
	return &reservationRepository{a: t}
}

func (t *txStore) Staff() repository.StaffRepository {
	return &staffRepository{a: t}
}

func (t *txStore) Menus() repository.MenuRepository {
	return &menuRepository{a: t}
}

var (
	_ repository.Store     = (*Store)(nil)
	_ repository.TxManager = (*Store)(nil)
	_ repository.Store     = (*txStore)(nil)
)
