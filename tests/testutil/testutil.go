// Package testutil provides common test utilities for the schedule bot.
// It sets up mocked and in-memory databases and seeds timetable fixtures.
package testutil

import (
	"database/sql"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/compmath/schedule-bot/internal/infrastructure/persistence/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// MockDB wraps a GORM PostgreSQL database backed by sqlmock
type MockDB struct {
	DB    *gorm.DB
	Mock  sqlmock.Sqlmock
	SqlDB *sql.DB
}

// NewMockDB creates a mocked PostgreSQL database.
// The caller is responsible for calling Close() when done.
func NewMockDB(t *testing.T) *MockDB {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err, "Failed to create sqlmock")

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "Failed to open GORM connection")

	return &MockDB{
		DB:    gormDB,
		Mock:  mock,
		SqlDB: mockDB,
	}
}

// Close closes the mock database connection
func (m *MockDB) Close() error {
	return m.SqlDB.Close()
}

// ExpectationsWereMet verifies that all expectations were met
func (m *MockDB) ExpectationsWereMet(t *testing.T) {
	t.Helper()
	require.NoError(t, m.Mock.ExpectationsWereMet(), "Unmet database expectations")
}

var sqliteSeq atomic.Int64

// NewSQLiteDB creates a migrated in-memory SQLite database private to the test.
// A single connection keeps the in-memory database alive and serializes writers.
func NewSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared&_foreign_keys=on", sqliteSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(models.All()...))

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return db
}

// Ptr returns a pointer to v
func Ptr[T any](v T) *T {
	return &v
}

// Fixture ids of SeedTimetable
const (
	SubjectMath    uint = 1
	SubjectPhysics uint = 2
	SubjectHistory uint = 3

	LessonLecture uint = 1
	LessonLab     uint = 2

	TeacherIvanenko  uint = 1
	TeacherPetrenko  uint = 2
	TeacherSydorenko uint = 3
)

// SeedTimetable inserts a small timetable:
//
//	Monday  08:30 every week  Math lecture, Ivanenko, room 101
//	Monday  10:10 even weeks  Physics lab, no teacher, online
//	Monday  10:10 odd weeks   History lecture, Petrenko, no location
//	Tuesday 08:30 odd weeks   Math lab, Ivanenko, room 202
func SeedTimetable(t *testing.T, db *gorm.DB) {
	t.Helper()

	subjects := []models.SubjectModel{
		{ID: SubjectMath, Name: "Вища математика"},
		{ID: SubjectPhysics, Name: "Фізика"},
		{ID: SubjectHistory, Name: "Історія України"},
	}
	lessonTypes := []models.LessonTypeModel{
		{ID: LessonLecture, Name: "Лекція"},
		{ID: LessonLab, Name: "Лабораторна"},
	}
	teachers := []models.TeacherModel{
		{ID: TeacherIvanenko, Name: "Іваненко І.І.", Contacts: Ptr("<contacts><phone>+380501112233</phone><email>ivanenko@uni.edu</email></contacts>")},
		{ID: TeacherPetrenko, Name: "Петренко П.П.", Contacts: Ptr("<contacts><telegram>@petrenko</telegram></contacts>")},
		{ID: TeacherSydorenko, Name: "Сидоренко С.С."},
	}
	schedules := []models.ScheduleModel{
		{ID: 1, DayOfWeek: 1, Time: "08:30", WeekType: 0, SubjectID: SubjectMath, LessonTypeID: LessonLecture, TeacherID: Ptr(TeacherIvanenko), Location: Ptr("101")},
		{ID: 2, DayOfWeek: 1, Time: "10:10", WeekType: 1, SubjectID: SubjectPhysics, LessonTypeID: LessonLab, Location: Ptr("https://meet.example.com/phys")},
		{ID: 3, DayOfWeek: 1, Time: "10:10", WeekType: 2, SubjectID: SubjectHistory, LessonTypeID: LessonLecture, TeacherID: Ptr(TeacherPetrenko)},
		{ID: 4, DayOfWeek: 2, Time: "08:30", WeekType: 2, SubjectID: SubjectMath, LessonTypeID: LessonLab, TeacherID: Ptr(TeacherIvanenko), Location: Ptr("202")},
	}

	require.NoError(t, db.Create(&subjects).Error)
	require.NoError(t, db.Create(&lessonTypes).Error)
	require.NoError(t, db.Create(&teachers).Error)
	for i := range schedules {
		// Omit associations so the zero-valued relations are not upserted
		require.NoError(t, db.Omit("Subject", "LessonType", "Teacher").Create(&schedules[i]).Error)
	}
}
