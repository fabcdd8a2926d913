package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shrimpsizemoose/kladdkaka/internal/models"
	"github.com/shrimpsizemoose/kladdkaka/internal/store"
	"github.com/shrimpsizemoose/kladdkaka/internal/store/sqlite"
)

var defaultWeights = Weights{Attendance: 10, Midterm: 30, Final: 40, Homework: 20}

func TestWeightsValidate(t *testing.T) {
	assert.NoError(t, defaultWeights.Validate())
	assert.Error(t, Weights{Attendance: 50, Midterm: 30, Final: 40, Homework: 20}.Validate())
	assert.Error(t, Weights{}.Validate())
}

func TestGrader_Total(t *testing.T) {
	grader := NewGrader(nil, defaultWeights, nil, 0.5, 7, 1)

	testCases := []struct {
		name                                 string
		attendance, midterm, final, homework float64
		expected                             int
	}{
		{
			name:       "weighted average",
			attendance: 80, midterm: 70, final: 60, homework: 90,
			expected: 71, // 8 + 21 + 24 + 18
		},
		{
			name:       "all zero",
			attendance: 0, midterm: 0, final: 0, homework: 0,
			expected: 0,
		},
		{
			name:       "all full marks",
			attendance: 100, midterm: 100, final: 100, homework: 100,
			expected: 100,
		},
		{
			name:       "rounds half up",
			attendance: 95, midterm: 70, final: 70, homework: 70,
			expected: 73, // 9.5 + 21 + 28 + 14 = 72.5
		},
		{
			name:       "rounds down below half",
			attendance: 95, midterm: 88, final: 91, homework: 85,
			expected: 89, // 89.3
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			total := grader.Total(tc.attendance, tc.midterm, tc.final, tc.homework)
			assert.Equal(t, tc.expected, total)
		})
	}
}

func TestGrader_LateScore(t *testing.T) {
	deadline := time.Date(2026, 4, 1, 23, 59, 59, 0, time.UTC)

	testCases := []struct {
		name          string
		baseScore     int
		submitTime    time.Time
		expectedScore int
	}{
		{
			name:          "early submission",
			baseScore:     10,
			submitTime:    deadline.Add(-6 * time.Hour),
			expectedScore: 10,
		},
		{
			name:          "last minute, still on time",
			baseScore:     10,
			submitTime:    deadline.Add(-1 * time.Minute),
			expectedScore: 10,
		},
		{
			name:          "one second late counts as one day late",
			baseScore:     10,
			submitTime:    deadline.Add(1 * time.Second),
			expectedScore: 9,
		},
		{
			name:          "23 hours late treated as 1 day late",
			baseScore:     10,
			submitTime:    deadline.Add(23 * time.Hour),
			expectedScore: 9,
		},
		{
			name:          "24h1m late treated as 2 days late",
			baseScore:     10,
			submitTime:    deadline.Add(24*time.Hour + 1*time.Minute),
			expectedScore: 8,
		},
		{
			name:          "49 hours late means 3 days late",
			baseScore:     10,
			submitTime:    deadline.Add(49 * time.Hour),
			expectedScore: 7,
		},
		{
			name:          "6 days late falls back to the default multiplier",
			baseScore:     10,
			submitTime:    deadline.Add(6 * 24 * time.Hour),
			expectedScore: 5,
		},
		{
			name:          "10 days late adds the extra penalty",
			baseScore:     10,
			submitTime:    deadline.Add(10 * 24 * time.Hour),
			expectedScore: 4,
		},
	}

	grader := NewGrader(
		nil,
		defaultWeights,
		map[int]int{1: -1, 2: -2, 3: -3},
		0.5,
		7,
		1,
	)

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			score := grader.LateScore(
				tc.baseScore,
				deadline.Unix(),
				tc.submitTime.Unix(),
			)
			assert.Equal(t, tc.expectedScore, score)
		})
	}
}

func TestGrader_RecomputePlan(t *testing.T) {
	engine, err := sqlite.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer engine.Close()

	scores := []models.Score{
		// stale total from an older weight configuration
		{ID: "scr_1", StudentID: "usr_1", PlanID: "pln_1", Attendance: 80, Midterm: 70, Final: 60, Homework: 90, Total: 50, Status: models.ScoreDraft},
		// already correct, must be left untouched
		{ID: "scr_2", StudentID: "usr_2", PlanID: "pln_1", Attendance: 100, Midterm: 100, Final: 100, Homework: 100, Total: 100, Status: models.ScoreDraft},
		// different plan, out of scope
		{ID: "scr_3", StudentID: "usr_1", PlanID: "pln_2", Attendance: 0, Midterm: 0, Final: 0, Homework: 0, Total: 42, Status: models.ScoreDraft},
	}
	for i := range scores {
		doc, err := store.ToDocument(&scores[i])
		require.NoError(t, err)
		_, err = engine.Add("scores", doc)
		require.NoError(t, err)
	}

	grader := NewGrader(engine, defaultWeights, nil, 0.5, 7, 1)

	updated, err := grader.RecomputePlan("pln_1")
	require.NoError(t, err)
	assert.Equal(t, 1, updated)

	doc, err := engine.Get("scores", "scr_1")
	require.NoError(t, err)
	var fixed models.Score
	require.NoError(t, store.FromDocument(doc, &fixed))
	assert.Equal(t, 71, fixed.Total)

	doc, err = engine.Get("scores", "scr_3")
	require.NoError(t, err)
	var other models.Score
	require.NoError(t, store.FromDocument(doc, &other))
	assert.Equal(t, 42, other.Total, "other plans must not be touched")
}
