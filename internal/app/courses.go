package app

import (
	"fmt"

	"github.com/shrimpsizemoose/kladdkaka/internal/models"
	"github.com/shrimpsizemoose/kladdkaka/internal/store"
)

// SaveCourse creates or fully overwrites a course. Course codes must stay
// unique across live records; the engine only guards the primary key, so
// the code check happens here, before any write.
func (s *Service) SaveCourse(course *models.Course, actorID, sourceID string) error {
	if course.ID == "" {
		course.ID = models.NewID("crs")
	}
	if course.Status == "" {
		course.Status = models.CourseDraft
	}
	if err := course.Validate(); err != nil {
		return fmt.Errorf("invalid course: %w", err)
	}

	existing, err := s.Store.GetByIndex("courses", "code", course.Code)
	if err != nil {
		return err
	}
	for _, doc := range existing {
		if id, _ := doc.StringField("id"); id != course.ID {
			return fmt.Errorf("code %s: %w", course.Code, ErrCourseCodeTaken)
		}
	}

	doc, err := store.ToDocument(course)
	if err != nil {
		return err
	}
	if _, err := s.Store.Update("courses", doc); err != nil {
		return err
	}

	s.Audit(actorID, "course.save", course.ID, course.Code)
	s.Bus.Emit("courses", sourceID)
	return nil
}

func (s *Service) GetCourse(id string) (*models.Course, error) {
	doc, err := s.Store.Get("courses", id)
	if err != nil || doc == nil {
		return nil, err
	}
	var course models.Course
	if err := store.FromDocument(doc, &course); err != nil {
		return nil, err
	}
	return &course, nil
}

func (s *Service) setCourseStatus(id, status, action, actorID, sourceID string) error {
	course, err := s.GetCourse(id)
	if err != nil {
		return err
	}
	if course == nil {
		return fmt.Errorf("course %s not found", id)
	}

	course.Status = status
	doc, err := store.ToDocument(course)
	if err != nil {
		return err
	}
	if _, err := s.Store.Update("courses", doc); err != nil {
		return err
	}

	s.Audit(actorID, action, id, course.Code)
	s.Bus.Emit("courses", sourceID)
	return nil
}

func (s *Service) PublishCourse(id, actorID, sourceID string) error {
	return s.setCourseStatus(id, models.CoursePublished, "course.publish", actorID, sourceID)
}

// ArchiveCourse flags a course out of circulation. Archived courses are
// never deleted, only flagged.
func (s *Service) ArchiveCourse(id, actorID, sourceID string) error {
	return s.setCourseStatus(id, models.CourseArchived, "course.archive", actorID, sourceID)
}

// DeleteCourse removes a draft that never went live. Anything published
// must be archived instead.
func (s *Service) DeleteCourse(id, actorID, sourceID string) error {
	course, err := s.GetCourse(id)
	if err != nil {
		return err
	}
	if course == nil {
		return nil
	}
	if course.Status != models.CourseDraft {
		return fmt.Errorf("course %s is %s: %w", id, course.Status, ErrCourseNotDraft)
	}

	if err := s.Store.Delete("courses", id); err != nil {
		return err
	}

	s.Audit(actorID, "course.delete", id, course.Code)
	s.Bus.Emit("courses", sourceID)
	return nil
}

func (s *Service) ListCourses() ([]models.Course, error) {
	docs, err := s.Store.GetAll("courses")
	if err != nil {
		return nil, err
	}
	courses := make([]models.Course, 0, len(docs))
	for _, doc := range docs {
		var course models.Course
		if err := store.FromDocument(doc, &course); err != nil {
			return nil, err
		}
		courses = append(courses, course)
	}
	return courses, nil
}

// EnrollStudent registers a student in a plan. One enrollment per
// (student, plan) pair; duplicates are rejected here since the engine does
// not enforce pair uniqueness.
func (s *Service) EnrollStudent(studentID, planID, sourceID string) (*models.Enrollment, error) {
	existing, err := s.Store.GetByIndex("enrollments", "student_id", studentID)
	if err != nil {
		return nil, err
	}
	for _, doc := range existing {
		if pid, _ := doc.StringField("plan_id"); pid == planID {
			return nil, fmt.Errorf("student %s already enrolled in plan %s", studentID, planID)
		}
	}

	enr := models.Enrollment{
		ID:        models.NewID("enr"),
		StudentID: studentID,
		PlanID:    planID,
	}
	doc, err := store.ToDocument(&enr)
	if err != nil {
		return nil, err
	}
	if _, err := s.Store.Add("enrollments", doc); err != nil {
		return nil, err
	}

	s.Audit(studentID, "plan.enroll", planID, "")
	s.Bus.Emit("enrollments", sourceID)
	return &enr, nil
}
