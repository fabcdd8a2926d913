package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/shrimpsizemoose/kladdkaka/internal/store"
)

// PostgresStore backs deployments where several hosts share one database
// instead of a local file. Same engine contract as the sqlite store.
type PostgresStore struct {
	store.BaseStore
}

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to connect to postgres: %v", store.ErrStorageUnavailable, err)
	}

	s := &PostgresStore{BaseStore: store.BaseStore{
		DB: db,
		Converter: func(query string) string {
			out := query
			for i := 1; strings.Contains(out, "?"); i++ {
				out = strings.Replace(out, "?", fmt.Sprintf("$%d", i), 1)
			}
			return out
		},
		IsDuplicate: isUniqueViolation,
		IsBusy:      isLockErr,
	}}

	if err := s.EnsureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to upgrade schema: %w", err)
	}

	return s, nil
}

func isUniqueViolation(err error) bool {
	var perr *pq.Error
	if !errors.As(err, &perr) {
		return false
	}
	return perr.Code == "23505"
}

func isLockErr(err error) bool {
	var perr *pq.Error
	if !errors.As(err, &perr) {
		return false
	}
	// lock_not_available or deadlock_detected
	return perr.Code == "55P03" || perr.Code == "40P01"
}
