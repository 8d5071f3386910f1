// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer free of
// ORM concerns.
//
// Structure:
//   - timetable.go: subjects, teachers, lesson types and schedules (read-only reference data)
//   - access.go: authorization records
package models

// All returns every model, in dependency order, for schema auto-migration
func All() []any {
	return []any{
		&SubjectModel{},
		&TeacherModel{},
		&LessonTypeModel{},
		&ScheduleModel{},
		&AuthorizedUserModel{},
	}
}
