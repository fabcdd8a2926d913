package models

import (
	"github.com/go-playground/validator/v10"
)

const (
	ScoreDraft     = "draft"
	ScorePublished = "published"
	ScoreLocked    = "locked"
)

// Score holds the entered grade components for one student in one plan.
// Total is derived from the configured weights and recomputed whenever a
// component or the weights change; it is never entered directly.
type Score struct {
	ID         string  `json:"id" validate:"required"`
	StudentID  string  `json:"student_id" validate:"required"`
	PlanID     string  `json:"plan_id" validate:"required"`
	Attendance float64 `json:"attendance" validate:"gte=0,lte=100"`
	Midterm    float64 `json:"midterm" validate:"gte=0,lte=100"`
	Final      float64 `json:"final" validate:"gte=0,lte=100"`
	Homework   float64 `json:"homework" validate:"gte=0,lte=100"`
	Total      int     `json:"total" validate:"gte=0,lte=100"`
	Status     string  `json:"status" validate:"required,oneof=draft published locked"`
}

func (s *Score) Validate() error {
	validate := validator.New()
	return validate.Struct(s)
}
