package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/booking-service/internal/domain"
)

// DBTX is the query surface shared by *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store groups the repositories reachable inside one unit of work.
type Store interface {
	Reservations() ReservationRepository
	Staff() StaffRepository
	Menus() MenuRepository
}

// LockKey names the serialization domain of a booking commit: every commit
// for the same tenant and date runs one at a time.
type LockKey struct {
	Tenant domain.TenantID
	Date   time.Time
}

func (k LockKey) String() string {
	return fmt.Sprintf("%s:%s", k.Tenant, k.Date.Format("2006-01-02"))
}

// TxManager runs fn atomically. Either every write fn made through store is
// committed or none is.
type TxManager interface {
	WithinTx(ctx context.Context, key LockKey, fn func(ctx context.Context, store Store) error) error
}

type pgStore struct {
	db DBTX
}

// NewStore returns a Store over db, which may be a pool or a transaction.
func NewStore(db DBTX) Store {
	return &pgStore{db: db}
}

func (s *pgStore) Reservations() ReservationRepository { return NewReservationRepository(s.db) }
func (s *pgStore) Staff() StaffRepository              { return NewStaffRepository(s.db) }
func (s *pgStore) Menus() MenuRepository               { return NewMenuRepository(s.db) }

type pgTxManager struct {
	pool *pgxpool.Pool
}

// NewTxManager returns a Postgres-backed TxManager. Each unit of work takes
// a transaction-scoped advisory lock on its LockKey before running fn, so
// concurrent commits for the same tenant-day re-read each other's rows.
func NewTxManager(pool *pgxpool.Pool) TxManager {
	return &pgTxManager{pool: pool}
}

func (m *pgTxManager) WithinTx(ctx context.Context, key LockKey, fn func(ctx context.Context, store Store) error) (err error) {
	tx, err := m.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(context.Background())
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback(context.Background())
		}
	}()

	if _, err = tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, key.String()); err != nil {
		return fmt.Errorf("advisory lock %s: %w", key, err)
	}
	if err = fn(ctx, NewStore(tx)); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return translate(err)
	}
	return nil
}
