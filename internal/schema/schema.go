// internal/schema/schema.go
package schema

// Version is the current schema generation. Upgrades are additive only:
// bumping it may introduce new collections or indexes, never drop data.
const Version = 4

type Index struct {
	Name   string
	Field  string
	Unique bool
}

type Collection struct {
	Name     string
	KeyField string
	Indexes  []Index
}

// Registry declares every collection the storage engine knows about.
// The engine refuses operations on anything not listed here.
var Registry = []Collection{
	{
		Name:     "users",
		KeyField: "id",
		Indexes: []Index{
			{Name: "username", Field: "username", Unique: true},
			{Name: "role", Field: "role"},
			{Name: "class_id", Field: "class_id"},
		},
	},
	{
		Name:     "classes",
		KeyField: "id",
		Indexes: []Index{
			{Name: "name", Field: "name"},
		},
	},
	{
		Name:     "courses",
		KeyField: "id",
		Indexes: []Index{
			{Name: "code", Field: "code", Unique: true},
			{Name: "status", Field: "status"},
			{Name: "teacher_id", Field: "teacher_id"},
		},
	},
	{
		Name:     "plans",
		KeyField: "id",
		Indexes: []Index{
			{Name: "course_id", Field: "course_id"},
			{Name: "teacher_id", Field: "teacher_id"},
			{Name: "semester", Field: "semester"},
		},
	},
	{
		Name:     "enrollments",
		KeyField: "id",
		Indexes: []Index{
			{Name: "student_id", Field: "student_id"},
			{Name: "plan_id", Field: "plan_id"},
		},
	},
	{
		Name:     "assignments",
		KeyField: "id",
		Indexes: []Index{
			{Name: "plan_id", Field: "plan_id"},
			{Name: "course_id", Field: "course_id"},
			{Name: "type", Field: "type"},
		},
	},
	{
		Name:     "submissions",
		KeyField: "id",
		Indexes: []Index{
			{Name: "assignment_id", Field: "assignment_id"},
			{Name: "student_id", Field: "student_id"},
		},
	},
	{
		Name:     "scores",
		KeyField: "id",
		Indexes: []Index{
			{Name: "student_id", Field: "student_id"},
			{Name: "plan_id", Field: "plan_id"},
			{Name: "status", Field: "status"},
		},
	},
	{
		Name:     "audit_logs",
		KeyField: "id",
		Indexes: []Index{
			{Name: "user_id", Field: "user_id"},
			{Name: "action", Field: "action"},
		},
	},
	{
		Name:     "system_settings",
		KeyField: "id",
	},
	{
		Name:     "data_backups",
		KeyField: "id",
	},
}

func Lookup(name string) (*Collection, bool) {
	for i := range Registry {
		if Registry[i].Name == name {
			return &Registry[i], true
		}
	}
	return nil, false
}

func Names() []string {
	names := make([]string, 0, len(Registry))
	for _, c := range Registry {
		names = append(names, c.Name)
	}
	return names
}

func (c *Collection) Index(name string) (*Index, bool) {
	for i := range c.Indexes {
		if c.Indexes[i].Name == name {
			return &c.Indexes[i], true
		}
	}
	return nil, false
}
