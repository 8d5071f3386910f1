package persistence

import (
	"context"
	"testing"

	"github.com/compmath/schedule-bot/internal/domain/timetable"
	"github.com/compmath/schedule-bot/internal/infrastructure/persistence/models"
	"github.com/compmath/schedule-bot/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func subjectNames(entries []timetable.ScheduleEntry) []string {
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Subject.Name
	}
	return names
}

func TestGormScheduleRepository_FindAll(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	testutil.SeedTimetable(t, db)
	repo := NewGormScheduleRepository(db)

	entries, err := repo.FindAll(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 4)

	for i := 1; i < len(entries); i++ {
		prev, cur := entries[i-1], entries[i]
		ordered := prev.DayOfWeek < cur.DayOfWeek ||
			(prev.DayOfWeek == cur.DayOfWeek && prev.Time <= cur.Time)
		assert.True(t, ordered, "entries %d and %d out of order", i-1, i)
	}

	first := entries[0]
	assert.Equal(t, "Вища математика", first.Subject.Name)
	assert.Equal(t, "Лекція", first.LessonType.Name)
	require.NotNil(t, first.Teacher)
	assert.Equal(t, "Іваненко І.І.", first.Teacher.Name)
	assert.Equal(t, "101", first.LocationText())
}

func TestGormScheduleRepository_SkipsUnknownWeekType(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	testutil.SeedTimetable(t, db)
	stray := models.ScheduleModel{
		ID: 99, DayOfWeek: 3, Time: "12:00", WeekType: 3,
		SubjectID: testutil.SubjectMath, LessonTypeID: testutil.LessonLecture,
	}
	require.NoError(t, db.Omit("Subject", "LessonType", "Teacher").Create(&stray).Error)
	repo := NewGormScheduleRepository(db)

	entries, err := repo.FindAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, entries, 4)
	for _, e := range entries {
		assert.NotEqual(t, uint(99), e.ID)
	}

	wednesday, err := repo.FindByDay(context.Background(), 3, timetable.WeekTypeOdd)
	require.NoError(t, err)
	assert.Empty(t, wednesday)
}

func TestGormScheduleRepository_FindByDay(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	testutil.SeedTimetable(t, db)
	repo := NewGormScheduleRepository(db)
	ctx := context.Background()

	t.Run("even week keeps every-week and even entries", func(t *testing.T) {
		entries, err := repo.FindByDay(ctx, 1, timetable.WeekTypeEven)
		require.NoError(t, err)
		assert.Equal(t, []string{"Вища математика", "Фізика"}, subjectNames(entries))

		physics := entries[1]
		assert.False(t, physics.HasTeacher())
		assert.Nil(t, physics.Teacher)
		assert.True(t, physics.IsOnline())
	})

	t.Run("odd week keeps every-week and odd entries", func(t *testing.T) {
		entries, err := repo.FindByDay(ctx, 1, timetable.WeekTypeOdd)
		require.NoError(t, err)
		assert.Equal(t, []string{"Вища математика", "Історія України"}, subjectNames(entries))
		require.NotNil(t, entries[1].Teacher)
		assert.Equal(t, "Петренко П.П.", entries[1].Teacher.Name)
		assert.Nil(t, entries[1].Location)
	})

	t.Run("parity-only day", func(t *testing.T) {
		even, err := repo.FindByDay(ctx, 2, timetable.WeekTypeEven)
		require.NoError(t, err)
		assert.Empty(t, even)

		odd, err := repo.FindByDay(ctx, 2, timetable.WeekTypeOdd)
		require.NoError(t, err)
		assert.Len(t, odd, 1)
	})

	t.Run("sunday is free", func(t *testing.T) {
		entries, err := repo.FindByDay(ctx, 7, timetable.WeekTypeEven)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}

func TestScheduleSlotUniqueness(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	testutil.SeedTimetable(t, db)

	insert := func(id uint, day int, at string, wt int) error {
		return db.Omit("Subject", "LessonType", "Teacher").Create(&models.ScheduleModel{
			ID:           id,
			DayOfWeek:    day,
			Time:         at,
			WeekType:     wt,
			SubjectID:    testutil.SubjectMath,
			LessonTypeID: testutil.LessonLecture,
		}).Error
	}

	// Monday 10:10 already holds even and odd entries; an every-week entry still fits
	assert.NoError(t, insert(10, 1, "10:10", 0))

	assert.Error(t, insert(11, 1, "08:30", 0))
	assert.Error(t, insert(12, 1, "10:10", 1))
}

func TestGormTeacherRepository_FindAll(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	testutil.SeedTimetable(t, db)
	repo := NewGormTeacherRepository(db)

	teachers, err := repo.FindAll(context.Background())
	require.NoError(t, err)
	require.Len(t, teachers, 3)

	assert.Equal(t, testutil.TeacherIvanenko, teachers[0].ID)
	assert.Equal(t, testutil.TeacherSydorenko, teachers[2].ID)
	assert.Nil(t, teachers[2].Contacts)

	contacts := teachers[0].ParsedContacts()
	require.NotNil(t, contacts.Phone)
	assert.Equal(t, "+380501112233", *contacts.Phone)
}
