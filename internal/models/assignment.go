package models

import (
	"github.com/go-playground/validator/v10"
)

const (
	AssignmentHomework = "homework"
	AssignmentExam     = "exam"
)

type Assignment struct {
	ID       string `json:"id" validate:"required"`
	Type     string `json:"type" validate:"required,oneof=homework exam"`
	CourseID string `json:"course_id,omitempty"`
	PlanID   string `json:"plan_id" validate:"required"`
	Title    string `json:"title" validate:"required"`
	// Homework carries a deadline; exams a start/end window. Unix seconds.
	Deadline int64 `json:"deadline,omitempty"`
	StartsAt int64 `json:"starts_at,omitempty"`
	EndsAt   int64 `json:"ends_at,omitempty"`
	MaxScore int   `json:"max_score" validate:"gte=0,lte=100"`
}

type Submission struct {
	ID           string   `json:"id" validate:"required"`
	AssignmentID string   `json:"assignment_id" validate:"required"`
	StudentID    string   `json:"student_id" validate:"required"`
	Content      string   `json:"content,omitempty"`
	SubmittedAt  int64    `json:"submitted_at"`
	Score        *float64 `json:"score,omitempty"`
	Graded       bool     `json:"graded"`
	Comment      string   `json:"comment,omitempty"`
}

func (a *Assignment) Validate() error {
	validate := validator.New()
	return validate.Struct(a)
}

func (s *Submission) Validate() error {
	validate := validator.New()
	return validate.Struct(s)
}
