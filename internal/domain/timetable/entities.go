package timetable

import "strings"

// Subject is a taught discipline. Reference data, never mutated by the bot.
type Subject struct {
	ID   uint
	Name string
}

// LessonType is the kind of a lesson, e.g. lecture, lab or seminar
type LessonType struct {
	ID   uint
	Name string
}

// Teacher is a lecturer together with the raw contacts markup.
// Contacts is nil when the column is NULL.
type Teacher struct {
	ID       uint
	Name     string
	Contacts *string
}

// ParsedContacts parses the teacher's contacts markup
func (t *Teacher) ParsedContacts() Contacts {
	if t.Contacts == nil {
		return Contacts{}
	}
	return ParseContacts(*t.Contacts)
}

// ScheduleEntry is a single lesson slot in the timetable.
// (DayOfWeek, Time, WeekType) is unique across all entries.
type ScheduleEntry struct {
	ID           uint
	DayOfWeek    int
	Time         string
	WeekType     WeekType
	SubjectID    uint
	TeacherID    *uint
	LessonTypeID uint
	Location     *string

	// Loaded relations
	Subject    Subject
	LessonType LessonType
	Teacher    *Teacher
}

// HasTeacher reports whether a teacher is assigned to the entry
func (e *ScheduleEntry) HasTeacher() bool {
	return e.Teacher != nil && e.Teacher.Name != ""
}

// LocationText returns the location or "" when none is set
func (e *ScheduleEntry) LocationText() string {
	if e.Location == nil {
		return ""
	}
	return *e.Location
}

// IsOnline reports whether the location is an http(s) link
func (e *ScheduleEntry) IsOnline() bool {
	loc := e.LocationText()
	return strings.HasPrefix(loc, "http://") || strings.HasPrefix(loc, "https://")
}

// OccursIn reports whether the entry belongs to the given day under the given parity.
// Entries with WeekTypeEvery match any parity.
func (e *ScheduleEntry) OccursIn(day int, weekType WeekType) bool {
	if e.DayOfWeek != day {
		return false
	}
	return e.WeekType == weekType || e.WeekType == WeekTypeEvery
}
