// internal/seed/runner_test.go
package seed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shrimpsizemoose/kladdkaka/internal/models"
	"github.com/shrimpsizemoose/kladdkaka/internal/store"
	"github.com/shrimpsizemoose/kladdkaka/internal/store/sqlite"
)

func setupEngine(t *testing.T) store.Engine {
	s, err := sqlite.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func snapshot(t *testing.T, engine store.Engine, collection string) map[string]store.Document {
	docs, err := engine.GetAll(collection)
	require.NoError(t, err)
	byID := make(map[string]store.Document, len(docs))
	for _, doc := range docs {
		id, ok := doc.StringField("id")
		require.True(t, ok)
		byID[id] = doc
	}
	return byID
}

func TestBootSeedsOnce(t *testing.T) {
	engine := setupEngine(t)
	fx, err := DefaultFixture()
	require.NoError(t, err)

	runner := NewRunner(engine, "gen-1")

	seeded, err := runner.Boot(fx)
	require.NoError(t, err)
	assert.True(t, seeded, "first boot must seed")

	users := snapshot(t, engine, "users")
	courses := snapshot(t, engine, "courses")
	assert.Len(t, users, len(fx.Users))
	assert.Len(t, courses, len(fx.Courses))

	t.Run("second boot with same generation is a no-op", func(t *testing.T) {
		seeded, err := runner.Boot(fx)
		require.NoError(t, err)
		assert.False(t, seeded)

		assert.Equal(t, users, snapshot(t, engine, "users"))
		assert.Equal(t, courses, snapshot(t, engine, "courses"))
	})

	t.Run("user data written after seeding survives reboots", func(t *testing.T) {
		doc, err := store.ToDocument(&models.Course{
			ID: "crs_custom", Code: "ART1", Name: "Watercolors",
			Status: models.CourseDraft,
		})
		require.NoError(t, err)
		_, err = engine.Add("courses", doc)
		require.NoError(t, err)

		_, err = runner.Boot(fx)
		require.NoError(t, err)

		got, err := engine.Get("courses", "crs_custom")
		require.NoError(t, err)
		assert.NotNil(t, got)
	})
}

func TestBootReseedsOnNewGeneration(t *testing.T) {
	engine := setupEngine(t)
	fx, err := DefaultFixture()
	require.NoError(t, err)

	_, err = NewRunner(engine, "gen-1").Boot(fx)
	require.NoError(t, err)

	// data from the old generation, gone after the reset
	doc, err := store.ToDocument(&models.Course{
		ID: "crs_stale", Code: "OLD1", Name: "Stale", Status: models.CourseDraft,
	})
	require.NoError(t, err)
	_, err = engine.Add("courses", doc)
	require.NoError(t, err)

	seeded, err := NewRunner(engine, "gen-2").Boot(fx)
	require.NoError(t, err)
	assert.True(t, seeded)

	got, err := engine.Get("courses", "crs_stale")
	require.NoError(t, err)
	assert.Nil(t, got)

	courses := snapshot(t, engine, "courses")
	assert.Len(t, courses, len(fx.Courses))
}

func TestDefaultFixtureTotalsMatchWeights(t *testing.T) {
	fx, err := DefaultFixture()
	require.NoError(t, err)

	// default weights: attendance 10, midterm 30, final 40, homework 20
	for _, score := range fx.Scores {
		expected := int(score.Attendance*0.10 + score.Midterm*0.30 + score.Final*0.40 + score.Homework*0.20 + 0.5)
		assert.Equal(t, expected, score.Total, "seeded total for %s", score.ID)
	}
}
