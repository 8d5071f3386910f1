package models

import "github.com/compmath/schedule-bot/internal/domain/timetable"

// SubjectModel is the persistence model for subjects
type SubjectModel struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"type:varchar(255);not null;uniqueIndex"`
}

// TableName returns the table name for GORM
func (SubjectModel) TableName() string {
	return "subjects"
}

// TeacherModel is the persistence model for teachers.
// Contacts holds the raw markup and is parsed on read.
type TeacherModel struct {
	ID       uint    `gorm:"primaryKey"`
	Name     string  `gorm:"type:varchar(255);not null;uniqueIndex"`
	Contacts *string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (TeacherModel) TableName() string {
	return "teachers"
}

// ToDomain converts the model to a domain Teacher
func (m *TeacherModel) ToDomain() timetable.Teacher {
	return timetable.Teacher{
		ID:       m.ID,
		Name:     m.Name,
		Contacts: m.Contacts,
	}
}

// LessonTypeModel is the persistence model for lesson types
type LessonTypeModel struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"type:varchar(255);not null;uniqueIndex"`
}

// TableName returns the table name for GORM
func (LessonTypeModel) TableName() string {
	return "lesson_types"
}

// ScheduleModel is the persistence model for schedule entries.
// The unique index covers (day_of_week, time, week_type) only, so an
// every-week entry and a parity entry may share a slot.
type ScheduleModel struct {
	ID           uint            `gorm:"primaryKey"`
	DayOfWeek    int             `gorm:"not null;uniqueIndex:uq_schedule_day_time_week_type,priority:1"`
	Time         string          `gorm:"type:varchar(50);not null;uniqueIndex:uq_schedule_day_time_week_type,priority:2"`
	WeekType     int             `gorm:"not null;default:0;uniqueIndex:uq_schedule_day_time_week_type,priority:3"`
	SubjectID    uint            `gorm:"not null;index"`
	Subject      SubjectModel    `gorm:"foreignKey:SubjectID"`
	TeacherID    *uint           `gorm:"index"`
	Teacher      *TeacherModel   `gorm:"foreignKey:TeacherID"`
	LessonTypeID uint            `gorm:"not null;index"`
	LessonType   LessonTypeModel `gorm:"foreignKey:LessonTypeID"`
	Location     *string         `gorm:"type:varchar(512)"`
}

// TableName returns the table name for GORM
func (ScheduleModel) TableName() string {
	return "schedules"
}

// ToDomain converts the model and its joined relations to a domain ScheduleEntry
func (m *ScheduleModel) ToDomain() timetable.ScheduleEntry {
	entry := timetable.ScheduleEntry{
		ID:           m.ID,
		DayOfWeek:    m.DayOfWeek,
		Time:         m.Time,
		WeekType:     timetable.WeekType(m.WeekType),
		SubjectID:    m.SubjectID,
		TeacherID:    m.TeacherID,
		LessonTypeID: m.LessonTypeID,
		Location:     m.Location,
		Subject:      timetable.Subject{ID: m.Subject.ID, Name: m.Subject.Name},
		LessonType:   timetable.LessonType{ID: m.LessonType.ID, Name: m.LessonType.Name},
	}
	// a LEFT JOIN on a missing teacher may still yield an empty struct
	if m.TeacherID != nil && m.Teacher != nil {
		t := m.Teacher.ToDomain()
		entry.Teacher = &t
	}
	return entry
}
