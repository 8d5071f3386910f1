package timetable

import "context"

// ScheduleRepository defines the read access to schedule entries.
// Entries are returned with Subject, LessonType and Teacher loaded.
type ScheduleRepository interface {
	// FindAll returns every entry ordered by day of week, then time
	FindAll(ctx context.Context) ([]ScheduleEntry, error)

	// FindByDay returns the entries of a day whose week type is weekType
	// or WeekTypeEvery, ordered by time
	FindByDay(ctx context.Context, day int, weekType WeekType) ([]ScheduleEntry, error)
}

// TeacherRepository defines the read access to teachers
type TeacherRepository interface {
	// FindAll returns every teacher in ascending id order
	FindAll(ctx context.Context) ([]Teacher, error)
}
