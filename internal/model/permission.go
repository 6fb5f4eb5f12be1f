package model

// PermissionKey is a stable string code for a specific system capability.
// The set of keys is closed: routes and seeds reference these constants, and
// unknown keys are rejected at startup rather than failing silently at
// query time.
type PermissionKey string

const (
	// PermissionViewStudents allows viewing student lists and details.
	PermissionViewStudents PermissionKey = "view_students"

	// PermissionManageStudents allows creating, updating, and reassigning students.
	PermissionManageStudents PermissionKey = "manage_students"

	// PermissionViewCourses allows viewing courses.
	PermissionViewCourses PermissionKey = "view_courses"

	// PermissionManageCourses allows creating, updating, and deleting courses.
	PermissionManageCourses PermissionKey = "manage_courses"

	// PermissionViewClasses allows viewing classes.
	PermissionViewClasses PermissionKey = "view_classes"

	// PermissionManageClasses allows creating, updating, and deleting classes.
	PermissionManageClasses PermissionKey = "manage_classes"

	// PermissionViewGrades allows viewing grades and grade reports.
	PermissionViewGrades PermissionKey = "view_grades"

	// PermissionInputGrades allows recording and correcting grades.
	PermissionInputGrades PermissionKey = "input_grades"

	// PermissionExportGrades allows exporting grade data. Export endpoints
	// additionally require view_grades.
	PermissionExportGrades PermissionKey = "export_grades"

	// PermissionManagePosts allows creating, editing, publishing, and
	// deleting announcement posts.
	PermissionManagePosts PermissionKey = "manage_posts"
)

// AllPermissionKeys is a slice of all available permission keys.
var AllPermissionKeys = []PermissionKey{
	PermissionViewStudents,
	PermissionManageStudents,
	PermissionViewCourses,
	PermissionManageCourses,
	PermissionViewClasses,
	PermissionManageClasses,
	PermissionViewGrades,
	PermissionInputGrades,
	PermissionExportGrades,
	PermissionManagePosts,
}

// KnownPermissionKey reports whether k is part of the closed registry.
func KnownPermissionKey(k PermissionKey) bool {
	for _, known := range AllPermissionKeys {
		if known == k {
			return true
		}
	}
	return false
}

// Permission is a catalog row describing one capability. Static reference
// data, seeded by migration and edited by admins only.
type Permission struct {
	ID          int64         `json:"id"`
	Key         PermissionKey `json:"permission_key"`
	Name        string        `json:"permission_name"`
	Category    string        `json:"category"`
	Description string        `json:"description"`
}
