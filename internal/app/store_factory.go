package app

import (
	"strings"

	"github.com/shrimpsizemoose/kladdkaka/internal/store"
	"github.com/shrimpsizemoose/kladdkaka/internal/store/postgres"
	"github.com/shrimpsizemoose/kladdkaka/internal/store/sqlite"
)

func NewStore(dsn string) (store.Engine, error) {
	dbType := store.DBTypeSQLite
	if strings.HasPrefix(dsn, "postgres") {
		dbType = store.DBTypePostgres
	}

	switch dbType {
	case store.DBTypePostgres:
		return postgres.NewPostgresStore(dsn)
	default:
		return sqlite.NewSQLiteStore(dsn)
	}
}
