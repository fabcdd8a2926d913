package app

import (
	"fmt"
	"time"

	"github.com/shrimpsizemoose/kladdkaka/internal/models"
	"github.com/shrimpsizemoose/kladdkaka/internal/store"
)

// SubmitAssignment records a student's response. Conceptually at most one
// submission exists per (assignment, student); the pre-check enforces what
// the engine does not.
func (s *Service) SubmitAssignment(sub *models.Submission, sourceID string) error {
	if sub.ID == "" {
		sub.ID = models.NewID("sub")
	}
	if sub.SubmittedAt == 0 {
		sub.SubmittedAt = time.Now().Unix()
	}
	if err := sub.Validate(); err != nil {
		return fmt.Errorf("invalid submission: %w", err)
	}

	existing, err := s.Store.GetByIndex("submissions", "assignment_id", sub.AssignmentID)
	if err != nil {
		return err
	}
	for _, doc := range existing {
		if sid, _ := doc.StringField("student_id"); sid == sub.StudentID {
			return fmt.Errorf("student %s already submitted assignment %s", sub.StudentID, sub.AssignmentID)
		}
	}

	doc, err := store.ToDocument(sub)
	if err != nil {
		return err
	}
	if _, err := s.Store.Add("submissions", doc); err != nil {
		return err
	}

	s.Audit(sub.StudentID, "assignment.submit", sub.AssignmentID, "")
	s.Bus.Emit("submissions", sourceID)
	return nil
}

// GradeSubmission stores a teacher's mark. Homework turned in past its
// deadline gets the late policy applied to the entered score.
func (s *Service) GradeSubmission(submissionID string, rawScore int, comment, actorID, sourceID string) error {
	doc, err := s.Store.Get("submissions", submissionID)
	if err != nil {
		return err
	}
	if doc == nil {
		return fmt.Errorf("submission %s not found", submissionID)
	}
	var sub models.Submission
	if err := store.FromDocument(doc, &sub); err != nil {
		return err
	}

	score := rawScore
	asgDoc, err := s.Store.Get("assignments", sub.AssignmentID)
	if err != nil {
		return err
	}
	if asgDoc != nil {
		var asg models.Assignment
		if err := store.FromDocument(asgDoc, &asg); err != nil {
			return err
		}
		if asg.Type == models.AssignmentHomework && asg.Deadline > 0 {
			score = s.Grader.LateScore(rawScore, asg.Deadline, sub.SubmittedAt)
		}
	}

	final := float64(score)
	sub.Score = &final
	sub.Graded = true
	sub.Comment = comment

	newDoc, err := store.ToDocument(&sub)
	if err != nil {
		return err
	}
	if _, err := s.Store.Update("submissions", newDoc); err != nil {
		return err
	}

	s.Audit(actorID, "submission.grade", submissionID, fmt.Sprintf("score=%d", score))
	s.Bus.Emit("submissions", sourceID)
	return nil
}

// SaveScore upserts one grade row, deriving the total before the write.
// Locked rows reject edits.
func (s *Service) SaveScore(score *models.Score, actorID, sourceID string) error {
	if score.ID == "" {
		score.ID = models.NewID("scr")
	}
	if score.Status == "" {
		score.Status = models.ScoreDraft
	}

	if prev, err := s.Store.Get("scores", score.ID); err != nil {
		return err
	} else if prev != nil {
		if status, _ := prev.StringField("status"); status == models.ScoreLocked {
			return fmt.Errorf("score %s: %w", score.ID, ErrScoreLocked)
		}
	}

	s.Grader.Recompute(score)
	if err := score.Validate(); err != nil {
		return fmt.Errorf("invalid score: %w", err)
	}

	doc, err := store.ToDocument(score)
	if err != nil {
		return err
	}
	if _, err := s.Store.Update("scores", doc); err != nil {
		return err
	}

	s.Audit(actorID, "score.save", score.ID, score.StudentID)
	s.Bus.Emit("scores", sourceID)
	return nil
}

// ReplacePlanScores swaps out every grade row of a plan for the given set,
// totals rederived on the way in. The delete and the inserts are separate
// collection transactions: a crash in between leaves partial state, and
// the next full import corrects it.
func (s *Service) ReplacePlanScores(planID string, scores []models.Score, actorID, sourceID string) error {
	old, err := s.Store.GetByIndex("scores", "plan_id", planID)
	if err != nil {
		return err
	}
	for _, doc := range old {
		id, ok := doc.StringField("id")
		if !ok {
			continue
		}
		if err := s.Store.Delete("scores", id); err != nil {
			return err
		}
	}

	for i := range scores {
		score := &scores[i]
		if score.ID == "" {
			score.ID = models.NewID("scr")
		}
		score.PlanID = planID
		if score.Status == "" {
			score.Status = models.ScoreDraft
		}
		s.Grader.Recompute(score)
		if err := score.Validate(); err != nil {
			return fmt.Errorf("invalid score for student %s: %w", score.StudentID, err)
		}

		doc, err := store.ToDocument(score)
		if err != nil {
			return err
		}
		if _, err := s.Store.Add("scores", doc); err != nil {
			return err
		}
	}

	s.Audit(actorID, "score.replace_plan", planID, fmt.Sprintf("rows=%d", len(scores)))
	s.Bus.Emit("scores", sourceID)
	return nil
}

// RecomputeTotals re-derives every total in a plan under the current
// weights. Used after a weight change leaves stored totals stale.
func (s *Service) RecomputeTotals(planID, actorID, sourceID string) (int, error) {
	updated, err := s.Grader.RecomputePlan(planID)
	if err != nil {
		return updated, err
	}
	if updated > 0 {
		s.Audit(actorID, "score.recompute", planID, fmt.Sprintf("updated=%d", updated))
		s.Bus.Emit("scores", sourceID)
	}
	return updated, nil
}

// PublishPlanScores moves every draft row in the plan to published.
func (s *Service) PublishPlanScores(planID, actorID, sourceID string) (int, error) {
	docs, err := s.Store.GetByIndex("scores", "plan_id", planID)
	if err != nil {
		return 0, err
	}

	published := 0
	for _, doc := range docs {
		var score models.Score
		if err := store.FromDocument(doc, &score); err != nil {
			return published, err
		}
		if score.Status != models.ScoreDraft {
			continue
		}
		score.Status = models.ScorePublished

		newDoc, err := store.ToDocument(&score)
		if err != nil {
			return published, err
		}
		if _, err := s.Store.Update("scores", newDoc); err != nil {
			return published, err
		}
		published++
	}

	if published > 0 {
		s.Audit(actorID, "score.publish_plan", planID, fmt.Sprintf("rows=%d", published))
		s.Bus.Emit("scores", sourceID)
	}
	return published, nil
}

func (s *Service) PlanScores(planID string) ([]models.Score, error) {
	docs, err := s.Store.GetByIndex("scores", "plan_id", planID)
	if err != nil {
		return nil, err
	}
	scores := make([]models.Score, 0, len(docs))
	for _, doc := range docs {
		var score models.Score
		if err := store.FromDocument(doc, &score); err != nil {
			return nil, err
		}
		scores = append(scores, score)
	}
	return scores, nil
}
