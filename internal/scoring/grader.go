// internal/scoring/grader.go
package scoring

import (
	"fmt"
	"math"

	"github.com/shrimpsizemoose/kladdkaka/internal/models"
	"github.com/shrimpsizemoose/kladdkaka/internal/store"
)

// Weights are the percent contributions of each grade component. They must
// sum to 100.
type Weights struct {
	Attendance int `toml:"attendance"`
	Midterm    int `toml:"midterm"`
	Final      int `toml:"final"`
	Homework   int `toml:"homework"`
}

func (w Weights) Validate() error {
	sum := w.Attendance + w.Midterm + w.Final + w.Homework
	if sum != 100 {
		return fmt.Errorf("score weights must sum to 100, got %d", sum)
	}
	return nil
}

type Grader struct {
	engine  store.Engine
	weights Weights

	LateDaysModifiers  map[int]int
	DefaultLatePenalty float64
	MaxLateDays        int
	ExtraLatePenalty   int
}

func NewGrader(engine store.Engine, weights Weights, lateModifiers map[int]int, latePenalty float64, maxLateDays, extraPenalty int) *Grader {
	return &Grader{
		engine:             engine,
		weights:            weights,
		LateDaysModifiers:  lateModifiers,
		DefaultLatePenalty: latePenalty,
		MaxLateDays:        maxLateDays,
		ExtraLatePenalty:   extraPenalty,
	}
}

// Total derives the weighted grade from its components, rounded to the
// nearest integer.
func (g *Grader) Total(attendance, midterm, final, homework float64) int {
	sum := attendance*float64(g.weights.Attendance)/100 +
		midterm*float64(g.weights.Midterm)/100 +
		final*float64(g.weights.Final)/100 +
		homework*float64(g.weights.Homework)/100
	return int(math.Round(sum))
}

// Recompute refreshes the derived total in place.
func (g *Grader) Recompute(s *models.Score) {
	s.Total = g.Total(s.Attendance, s.Midterm, s.Final, s.Homework)
}

// RecomputePlan re-derives the total of every score row in a plan and
// writes back the ones that changed. Returns how many rows were updated.
// Run after a weight change, when every stored total is suspect.
func (g *Grader) RecomputePlan(planID string) (int, error) {
	docs, err := g.engine.GetByIndex("scores", "plan_id", planID)
	if err != nil {
		return 0, fmt.Errorf("failed to load scores for plan %s: %w", planID, err)
	}

	updated := 0
	for _, doc := range docs {
		var score models.Score
		if err := store.FromDocument(doc, &score); err != nil {
			return updated, fmt.Errorf("bad score record in plan %s: %w", planID, err)
		}

		total := g.Total(score.Attendance, score.Midterm, score.Final, score.Homework)
		if total == score.Total {
			continue
		}
		score.Total = total

		newDoc, err := store.ToDocument(&score)
		if err != nil {
			return updated, err
		}
		if _, err := g.engine.Update("scores", newDoc); err != nil {
			return updated, fmt.Errorf("failed to write recomputed score %s: %w", score.ID, err)
		}
		updated++
	}
	return updated, nil
}

// LateScore applies the late-submission policy to a homework score: a
// per-day modifier when configured, otherwise the default multiplier, with
// an extra penalty past the allowed window. Any fraction of a day counts
// as a full day late.
func (g *Grader) LateScore(baseScore int, deadline, submitTime int64) int {
	deltaDays := int((submitTime - deadline) / (24 * 60 * 60))
	if submitTime > deadline && (submitTime-deadline)%(24*60*60) != 0 {
		deltaDays++
	}

	if deltaDays <= 0 {
		return baseScore
	}

	if modifier, exists := g.LateDaysModifiers[deltaDays]; exists {
		score := baseScore + modifier
		if score < 0 {
			return 0
		}
		return score
	}

	if deltaDays <= g.MaxLateDays {
		return int(float64(baseScore) * g.DefaultLatePenalty)
	}

	return int(float64(baseScore)*g.DefaultLatePenalty) - g.ExtraLatePenalty
}
