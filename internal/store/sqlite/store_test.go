// internal/store/sqlite/store_test.go
package sqlite

import (
	"log"
	"os"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shrimpsizemoose/kladdkaka/internal/schema"
	"github.com/shrimpsizemoose/kladdkaka/internal/store"
)

func setupTestDB(t *testing.T) (*SQLiteStore, func()) {
	s, err := NewSQLiteStore(":memory:")
	require.NoError(t, err, "Failed to create store")

	cleanup := func() {
		err := s.Close()
		require.NoError(t, err, "Failed to close database")
	}

	return s, cleanup
}

func TestMain(m *testing.M) {
	log.Println("Starting SQLite store tests...")
	code := m.Run()
	log.Println("Finished SQLite store tests")
	os.Exit(code)
}

func courseDoc(id, code, name string) store.Document {
	return store.Document{
		"id":     id,
		"code":   code,
		"name":   name,
		"credit": float64(3),
		"status": "draft",
	}
}

func TestAddAndGet(t *testing.T) {
	s, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := s.Add("courses", courseDoc("crs_1", "CS101", "Intro"))
	require.NoError(t, err)

	t.Run("point lookup", func(t *testing.T) {
		got, err := s.Get("courses", "crs_1")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "CS101", got["code"])
		assert.Equal(t, "Intro", got["name"])
	})

	t.Run("absent key is not an error", func(t *testing.T) {
		got, err := s.Get("courses", "crs_404")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("unknown collection is rejected", func(t *testing.T) {
		_, err := s.Get("nonsense", "x")
		assert.ErrorIs(t, err, store.ErrUnknownCollection)
	})
}

func TestPrimaryKeyUniqueness(t *testing.T) {
	s, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := s.Add("courses", courseDoc("crs_1", "CS101", "Intro"))
	require.NoError(t, err)

	_, err = s.Add("courses", courseDoc("crs_1", "CS999", "Other"))
	assert.ErrorIs(t, err, store.ErrDuplicateKey)

	docs, err := s.GetAll("courses")
	require.NoError(t, err)
	assert.Len(t, docs, 1)
	assert.Equal(t, "CS101", docs[0]["code"])
}

func TestUpdateIsFullReplace(t *testing.T) {
	s, cleanup := setupTestDB(t)
	defer cleanup()

	doc := courseDoc("crs_1", "CS101", "Intro")
	doc["description"] = "long blurb"
	_, err := s.Add("courses", doc)
	require.NoError(t, err)

	_, err = s.Update("courses", store.Document{
		"id":   "crs_1",
		"code": "X",
		"name": "New",
	})
	require.NoError(t, err)

	got, err := s.Get("courses", "crs_1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "New", got["name"])
	assert.Equal(t, "X", got["code"])
	_, hasDescription := got["description"]
	assert.False(t, hasDescription, "old fields must not survive a full-replace update")
}

func TestUpdateInsertsWhenAbsent(t *testing.T) {
	s, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := s.Update("courses", courseDoc("crs_9", "CS900", "Upserted"))
	require.NoError(t, err)

	got, err := s.Get("courses", "crs_9")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "CS900", got["code"])
}

func TestGetByIndex(t *testing.T) {
	s, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := s.Add("courses", courseDoc("crs_1", "CS101", "Intro"))
	require.NoError(t, err)
	_, err = s.Add("courses", courseDoc("crs_2", "CS201", "Structures"))
	require.NoError(t, err)

	t.Run("hit", func(t *testing.T) {
		docs, err := s.GetByIndex("courses", "code", "CS201")
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "crs_2", docs[0]["id"])
	})

	t.Run("miss returns empty, not error", func(t *testing.T) {
		docs, err := s.GetByIndex("courses", "code", "CS999")
		require.NoError(t, err)
		assert.Empty(t, docs)
	})

	t.Run("undeclared index fails loudly", func(t *testing.T) {
		_, err := s.GetByIndex("courses", "flavour", "vanilla")
		assert.ErrorIs(t, err, store.ErrIndexNotFound)
	})
}

func TestDeleteAndClear(t *testing.T) {
	s, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := s.Add("courses", courseDoc("crs_1", "CS101", "Intro"))
	require.NoError(t, err)

	t.Run("delete existing", func(t *testing.T) {
		require.NoError(t, s.Delete("courses", "crs_1"))
		got, err := s.Get("courses", "crs_1")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("delete missing is a no-op", func(t *testing.T) {
		assert.NoError(t, s.Delete("courses", "crs_404"))
	})

	t.Run("clear empties the collection", func(t *testing.T) {
		_, err := s.Add("courses", courseDoc("crs_2", "CS201", "Structures"))
		require.NoError(t, err)
		require.NoError(t, s.Clear("courses"))
		docs, err := s.GetAll("courses")
		require.NoError(t, err)
		assert.Empty(t, docs)
	})
}

func TestEmptyCollectionRead(t *testing.T) {
	s, cleanup := setupTestDB(t)
	defer cleanup()

	docs, err := s.GetAll("data_backups")
	require.NoError(t, err)
	assert.NotNil(t, docs)
	assert.Empty(t, docs)
}

func TestMetaMarkers(t *testing.T) {
	s, cleanup := setupTestDB(t)
	defer cleanup()

	v, err := s.MetaGet("seed_generation")
	require.NoError(t, err)
	assert.Equal(t, "", v)

	require.NoError(t, s.MetaSet("seed_generation", "gen-1"))
	require.NoError(t, s.MetaSet("seed_generation", "gen-2"))

	v, err = s.MetaGet("seed_generation")
	require.NoError(t, err)
	assert.Equal(t, "gen-2", v)

	// markers survive collection clears
	require.NoError(t, s.Clear("users"))
	v, err = s.MetaGet("seed_generation")
	require.NoError(t, err)
	assert.Equal(t, "gen-2", v)
}

func TestAdditiveUpgradePreservesData(t *testing.T) {
	s, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := s.Add("courses", courseDoc("crs_1", "CS101", "Intro"))
	require.NoError(t, err)
	_, err = s.Add("users", store.Document{
		"id":       "usr_1",
		"username": "nils",
		"role":     "student",
		"status":   "active",
	})
	require.NoError(t, err)

	// Pretend the data predates the current schema generation, then re-run
	// the upgrade as a fresh open would.
	require.NoError(t, s.MetaSet("schema_version", "1"))
	require.NoError(t, s.EnsureSchema())

	v, err := s.MetaGet("schema_version")
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(schema.Version), v)

	got, err := s.Get("courses", "crs_1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "CS101", got["code"])

	users, err := s.GetByIndex("users", "username", "nils")
	require.NoError(t, err)
	assert.Len(t, users, 1)

	// every declared collection is queryable after the upgrade
	for _, name := range schema.Names() {
		_, err := s.GetAll(name)
		assert.NoError(t, err, "collection %s should be queryable", name)
	}
}
