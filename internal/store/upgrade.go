package store

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/kladdkaka/internal/schema"
)

const versionKey = "schema_version"

// EnsureSchema brings the database up to the registry's declared version.
// The upgrade is additive only: missing tables, columns and indexes are
// created, nothing is ever dropped. Every statement is idempotent, so a
// connection that loses the upgrade race to another one converges on the
// same schema when it retries.
func (s *BaseStore) EnsureSchema() error {
	if err := s.exec(`
		CREATE TABLE IF NOT EXISTS schema_meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)
	`); err != nil {
		return err
	}

	stored, err := s.schemaVersion()
	if err != nil {
		return err
	}
	if stored >= schema.Version {
		if stored > schema.Version {
			logger.Debug.Printf("database schema v%d is newer than this build's v%d, leaving it alone", stored, schema.Version)
		}
		return nil
	}

	logger.Info.Printf("upgrading schema v%d -> v%d", stored, schema.Version)

	for _, col := range schema.Registry {
		if err := s.ensureCollection(&col); err != nil {
			return err
		}
	}

	if err := s.MetaSet(versionKey, strconv.Itoa(schema.Version)); err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}
	return nil
}

func (s *BaseStore) ensureCollection(col *schema.Collection) error {
	columns := []string{"id TEXT PRIMARY KEY", "doc TEXT NOT NULL"}
	for _, idx := range col.Indexes {
		columns = append(columns, idx.Field+" TEXT")
	}
	create := fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (%s)",
		col.Name,
		strings.Join(columns, ", "),
	)
	if err := s.exec(create); err != nil {
		return err
	}

	for _, idx := range col.Indexes {
		// The table may predate this index; the column add fails harmlessly
		// when it is already there.
		alter := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s TEXT", col.Name, idx.Field)
		if err := s.exec(alter); err != nil && !isDuplicateColumn(err) {
			return err
		}

		unique := ""
		if idx.Unique {
			unique = "UNIQUE "
		}
		index := fmt.Sprintf(
			"CREATE %sINDEX IF NOT EXISTS idx_%s_%s ON %s (%s)",
			unique, col.Name, idx.Name, col.Name, idx.Field,
		)
		if err := s.exec(index); err != nil {
			return err
		}
	}
	return nil
}

func (s *BaseStore) exec(query string) error {
	if _, err := s.DB.Exec(query); err != nil {
		if s.IsBusy != nil && s.IsBusy(err) {
			return fmt.Errorf("%w: %v", ErrUpgradeBlocked, err)
		}
		return fmt.Errorf("schema statement failed: %w", err)
	}
	return nil
}

func (s *BaseStore) schemaVersion() (int, error) {
	raw, err := s.MetaGet(versionKey)
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("bad schema version %q: %w", raw, err)
	}
	return v, nil
}

func isDuplicateColumn(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "duplicate column") || strings.Contains(msg, "already exists")
}
