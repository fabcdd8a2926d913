package seed

import (
	"time"

	"github.com/shrimpsizemoose/kladdkaka/internal/auth"
	"github.com/shrimpsizemoose/kladdkaka/internal/models"
)

// Fixture is the baseline record set a fresh deployment starts from. It is
// built by a factory and handed to the runner, never authored inline in
// boot logic.
type Fixture struct {
	Users       []models.User
	Classes     []models.Class
	Courses     []models.Course
	Plans       []models.Plan
	Enrollments []models.Enrollment
	Assignments []models.Assignment
	Scores      []models.Score
}

func (f *Fixture) each(fn func(collection string, record any) error) error {
	for i := range f.Classes {
		if err := fn("classes", &f.Classes[i]); err != nil {
			return err
		}
	}
	for i := range f.Users {
		if err := fn("users", &f.Users[i]); err != nil {
			return err
		}
	}
	for i := range f.Courses {
		if err := fn("courses", &f.Courses[i]); err != nil {
			return err
		}
	}
	for i := range f.Plans {
		if err := fn("plans", &f.Plans[i]); err != nil {
			return err
		}
	}
	for i := range f.Enrollments {
		if err := fn("enrollments", &f.Enrollments[i]); err != nil {
			return err
		}
	}
	for i := range f.Assignments {
		if err := fn("assignments", &f.Assignments[i]); err != nil {
			return err
		}
	}
	for i := range f.Scores {
		if err := fn("scores", &f.Scores[i]); err != nil {
			return err
		}
	}
	return nil
}

// DefaultFixture builds the demo record set: one class, one account per
// role, two courses with a published offering and entered grades.
func DefaultFixture() (*Fixture, error) {
	demo := []struct {
		id, username, fullName, role string
		classID                      string
	}{
		{"usr_sysadmin", "sysadmin", "System Admin", models.RoleSysadmin, ""},
		{"usr_admin", "admin", "Edu Admin", models.RoleAdminEdu, ""},
		{"usr_teacher1", "teacher1", "Greta Holm", models.RoleTeacher, ""},
		{"usr_student1", "student1", "Nils Ek", models.RoleStudent, "cls_1"},
		{"usr_student2", "student2", "Maja Lind", models.RoleStudent, "cls_1"},
	}

	users := make([]models.User, 0, len(demo))
	for _, d := range demo {
		salt, err := auth.NewSalt()
		if err != nil {
			return nil, err
		}
		hash, err := auth.HashPassword("123456", salt)
		if err != nil {
			return nil, err
		}
		users = append(users, models.User{
			ID:           d.id,
			Username:     d.username,
			PasswordHash: hash,
			Salt:         salt,
			Role:         d.role,
			Status:       models.UserActive,
			FullName:     d.fullName,
			ClassID:      d.classID,
			IsFirstLogin: true,
		})
	}

	deadline := time.Now().AddDate(0, 0, 14).Unix()

	return &Fixture{
		Users: users,
		Classes: []models.Class{
			{ID: "cls_1", Name: "CS 2026-1"},
		},
		Courses: []models.Course{
			{ID: "crs_1", Code: "CS101", Name: "Intro to Programming", Credit: 4, Status: models.CoursePublished, TeacherID: "usr_teacher1", Description: "Fundamentals of programming"},
			{ID: "crs_2", Code: "CS201", Name: "Data Structures", Credit: 3, Status: models.CourseDraft, TeacherID: "usr_teacher1"},
		},
		Plans: []models.Plan{
			{ID: "pln_1", CourseID: "crs_1", TeacherID: "usr_teacher1", Semester: "2026-autumn", Schedule: "Mon 10:00", Room: "B204", Capacity: 60},
		},
		Enrollments: []models.Enrollment{
			{ID: "enr_1", StudentID: "usr_student1", PlanID: "pln_1"},
			{ID: "enr_2", StudentID: "usr_student2", PlanID: "pln_1"},
		},
		Assignments: []models.Assignment{
			{ID: "asg_1", Type: models.AssignmentHomework, CourseID: "crs_1", PlanID: "pln_1", Title: "Problem set 1", Deadline: deadline, MaxScore: 100},
		},
		Scores: []models.Score{
			{ID: "scr_1", StudentID: "usr_student1", PlanID: "pln_1", Attendance: 80, Midterm: 70, Final: 60, Homework: 90, Total: 71, Status: models.ScoreDraft},
			{ID: "scr_2", StudentID: "usr_student2", PlanID: "pln_1", Attendance: 95, Midterm: 88, Final: 91, Homework: 85, Total: 89, Status: models.ScoreDraft},
		},
	}, nil
}
