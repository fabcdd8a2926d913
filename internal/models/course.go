package models

import (
	"github.com/go-playground/validator/v10"
)

const (
	CourseDraft     = "draft"
	CoursePublished = "published"
	CourseArchived  = "archived"
)

type Course struct {
	ID          string  `json:"id" validate:"required"`
	Code        string  `json:"code" validate:"required,max=16"`
	Name        string  `json:"name" validate:"required"`
	Credit      float64 `json:"credit" validate:"gte=0,lte=20"`
	Status      string  `json:"status" validate:"required,oneof=draft published archived"`
	TeacherID   string  `json:"teacher_id,omitempty"`
	Description string  `json:"description,omitempty"`
	CoverImage  string  `json:"cover_image,omitempty"`
	IntroVideo  string  `json:"intro_video,omitempty"`
}

// Plan is one offering of a course by a teacher in a term.
type Plan struct {
	ID        string `json:"id" validate:"required"`
	CourseID  string `json:"course_id" validate:"required"`
	TeacherID string `json:"teacher_id" validate:"required"`
	Semester  string `json:"semester" validate:"required"`
	Schedule  string `json:"schedule,omitempty"`
	Room      string `json:"room,omitempty"`
	Capacity  int    `json:"capacity,omitempty" validate:"gte=0"`
}

type Enrollment struct {
	ID         string `json:"id" validate:"required"`
	StudentID  string `json:"student_id" validate:"required"`
	PlanID     string `json:"plan_id" validate:"required"`
	EnrolledAt string `json:"enrolled_at,omitempty"`
}

func (c *Course) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

func (p *Plan) Validate() error {
	validate := validator.New()
	return validate.Struct(p)
}

func (e *Enrollment) Validate() error {
	validate := validator.New()
	return validate.Struct(e)
}
