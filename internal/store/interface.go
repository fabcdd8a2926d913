package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/shrimpsizemoose/kladdkaka/internal/schema"
)

// Engine is the shared structured store every panel works against: generic
// per-collection CRUD plus indexed lookup, collections restricted to the
// schema registry's declared set.
type Engine interface {
	Close() error
	EnsureSchema() error

	GetAll(collection string) ([]Document, error)
	Get(collection, key string) (Document, error)
	GetByIndex(collection, index, value string) ([]Document, error)
	Add(collection string, doc Document) (string, error)
	Update(collection string, doc Document) (string, error)
	Delete(collection, key string) error
	Clear(collection string) error

	// Markers live outside the collections, so they survive Clear.
	MetaGet(key string) (string, error)
	MetaSet(key, value string) error
}

// BaseStore provides common functionality for different DB implementations.
// Dialect stores embed it and plug in the placeholder converter plus the
// driver-specific error classifiers.
type BaseStore struct {
	DB        *sqlx.DB
	Converter func(string) string

	// IsDuplicate reports whether the driver error is a primary-key or
	// unique-index violation.
	IsDuplicate func(error) bool
	// IsBusy reports whether the driver error means another connection
	// holds a conflicting lock.
	IsBusy func(error) bool
}

func (s *BaseStore) Close() error {
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}

func (s *BaseStore) collection(name string) (*schema.Collection, error) {
	col, ok := schema.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("collection %q: %w", name, ErrUnknownCollection)
	}
	return col, nil
}

func (s *BaseStore) GetAll(collection string) ([]Document, error) {
	col, err := s.collection(collection)
	if err != nil {
		return nil, err
	}

	var rows []string
	query := fmt.Sprintf("SELECT doc FROM %s", col.Name)
	if err := s.DB.Select(&rows, query); err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", col.Name, err)
	}

	docs := make([]Document, 0, len(rows))
	for _, raw := range rows {
		doc, err := decodeDoc(raw)
		if err != nil {
			return nil, fmt.Errorf("corrupt record in %s: %w", col.Name, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (s *BaseStore) Get(collection, key string) (Document, error) {
	col, err := s.collection(collection)
	if err != nil {
		return nil, err
	}

	var raw string
	query := s.Converter(fmt.Sprintf("SELECT doc FROM %s WHERE id = ?", col.Name))
	err = s.DB.Get(&raw, query, key)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s/%s: %w", col.Name, key, err)
	}
	return decodeDoc(raw)
}

func (s *BaseStore) GetByIndex(collection, index, value string) ([]Document, error) {
	col, err := s.collection(collection)
	if err != nil {
		return nil, err
	}
	idx, ok := col.Index(index)
	if !ok {
		return nil, fmt.Errorf("collection %s has no index %q: %w", col.Name, index, ErrIndexNotFound)
	}

	var rows []string
	query := s.Converter(fmt.Sprintf("SELECT doc FROM %s WHERE %s = ?", col.Name, idx.Field))
	if err := s.DB.Select(&rows, query, value); err != nil {
		return nil, fmt.Errorf("failed to query %s by %s: %w", col.Name, idx.Name, err)
	}

	docs := make([]Document, 0, len(rows))
	for _, raw := range rows {
		doc, err := decodeDoc(raw)
		if err != nil {
			return nil, fmt.Errorf("corrupt record in %s: %w", col.Name, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (s *BaseStore) Add(collection string, doc Document) (string, error) {
	col, err := s.collection(collection)
	if err != nil {
		return "", err
	}
	key, query, args, err := s.writeQuery(col, doc, false)
	if err != nil {
		return "", err
	}

	if _, err := s.DB.Exec(query, args...); err != nil {
		if s.IsDuplicate != nil && s.IsDuplicate(err) {
			return "", fmt.Errorf("%s/%s: %w", col.Name, key, ErrDuplicateKey)
		}
		return "", fmt.Errorf("failed to add to %s: %w", col.Name, err)
	}
	return key, nil
}

func (s *BaseStore) Update(collection string, doc Document) (string, error) {
	col, err := s.collection(collection)
	if err != nil {
		return "", err
	}
	key, query, args, err := s.writeQuery(col, doc, true)
	if err != nil {
		return "", err
	}

	if _, err := s.DB.Exec(query, args...); err != nil {
		return "", fmt.Errorf("failed to update %s/%s: %w", col.Name, key, err)
	}
	return key, nil
}

func (s *BaseStore) Delete(collection, key string) error {
	col, err := s.collection(collection)
	if err != nil {
		return err
	}

	query := s.Converter(fmt.Sprintf("DELETE FROM %s WHERE id = ?", col.Name))
	if _, err := s.DB.Exec(query, key); err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", col.Name, key, err)
	}
	return nil
}

func (s *BaseStore) Clear(collection string) error {
	col, err := s.collection(collection)
	if err != nil {
		return err
	}

	if _, err := s.DB.Exec(fmt.Sprintf("DELETE FROM %s", col.Name)); err != nil {
		return fmt.Errorf("failed to clear %s: %w", col.Name, err)
	}
	return nil
}

func (s *BaseStore) MetaGet(key string) (string, error) {
	var value string
	query := s.Converter("SELECT value FROM schema_meta WHERE key = ?")
	err := s.DB.Get(&value, query, key)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read meta %s: %w", key, err)
	}
	return value, nil
}

func (s *BaseStore) MetaSet(key, value string) error {
	query := s.Converter(`
		INSERT INTO schema_meta (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value
	`)
	if _, err := s.DB.Exec(query, key, value); err != nil {
		return fmt.Errorf("failed to write meta %s: %w", key, err)
	}
	return nil
}

// writeQuery builds the INSERT (or upsert) statement for one document,
// extracting the key and every declared index field into its own column.
// Table and column names come from the static registry, never from input.
func (s *BaseStore) writeQuery(col *schema.Collection, doc Document, upsert bool) (string, string, []any, error) {
	key, ok := doc.StringField(col.KeyField)
	if !ok || key == "" {
		return "", "", nil, fmt.Errorf("record for %s is missing key field %q", col.Name, col.KeyField)
	}

	raw, err := encodeDoc(doc)
	if err != nil {
		return "", "", nil, fmt.Errorf("failed to encode record for %s: %w", col.Name, err)
	}

	columns := []string{"id", "doc"}
	args := []any{key, raw}
	for _, idx := range col.Indexes {
		columns = append(columns, idx.Field)
		if v, ok := doc.StringField(idx.Field); ok {
			args = append(args, v)
		} else {
			args = append(args, nil)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES (%s)",
		col.Name,
		strings.Join(columns, ", "),
		strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", "),
	)
	if upsert {
		sets := make([]string, 0, len(columns)-1)
		for _, c := range columns[1:] {
			sets = append(sets, fmt.Sprintf("%s = excluded.%s", c, c))
		}
		fmt.Fprintf(&b, " ON CONFLICT (id) DO UPDATE SET %s", strings.Join(sets, ", "))
	}

	return key, s.Converter(b.String()), args, nil
}

func encodeDoc(doc Document) (string, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeDoc(raw string) (Document, error) {
	var doc Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, err
	}
	return doc, nil
}
