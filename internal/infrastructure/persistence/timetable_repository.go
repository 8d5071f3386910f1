package persistence

import (
	"context"

	"github.com/compmath/schedule-bot/internal/domain/timetable"
	"github.com/compmath/schedule-bot/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormScheduleRepository implements ScheduleRepository using GORM
type GormScheduleRepository struct {
	db *gorm.DB
}

// NewGormScheduleRepository creates a new GormScheduleRepository
func NewGormScheduleRepository(db *gorm.DB) *GormScheduleRepository {
	return &GormScheduleRepository{db: db}
}

func scheduleColumn(name string) clause.Column {
	return clause.Column{Table: clause.CurrentTable, Name: name}
}

// withRelations joins subject and lesson type (required) and teacher (optional)
func (r *GormScheduleRepository) withRelations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.ScheduleModel{}).
		InnerJoins("Subject").
		InnerJoins("LessonType").
		Joins("Teacher")
}

// FindAll returns every entry ordered by day of week, then time
func (r *GormScheduleRepository) FindAll(ctx context.Context) ([]timetable.ScheduleEntry, error) {
	var rows []models.ScheduleModel
	err := r.withRelations(ctx).
		Order(clause.OrderBy{Columns: []clause.OrderByColumn{
			{Column: scheduleColumn("day_of_week")},
			{Column: scheduleColumn("time")},
		}}).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toScheduleEntries(rows), nil
}

// FindByDay returns the entries of a day for the given parity plus every-week entries
func (r *GormScheduleRepository) FindByDay(ctx context.Context, day int, weekType timetable.WeekType) ([]timetable.ScheduleEntry, error) {
	var rows []models.ScheduleModel
	err := r.withRelations(ctx).
		Where(clause.Eq{Column: scheduleColumn("day_of_week"), Value: day}).
		Where(clause.IN{Column: scheduleColumn("week_type"), Values: []any{int(weekType), int(timetable.WeekTypeEvery)}}).
		Order(clause.OrderByColumn{Column: scheduleColumn("time")}).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toScheduleEntries(rows), nil
}

// toScheduleEntries drops rows whose week_type is none of the known parities;
// FindByDay never matches them either, so both views agree.
func toScheduleEntries(rows []models.ScheduleModel) []timetable.ScheduleEntry {
	entries := make([]timetable.ScheduleEntry, 0, len(rows))
	for i := range rows {
		if !timetable.WeekType(rows[i].WeekType).IsValid() {
			continue
		}
		entries = append(entries, rows[i].ToDomain())
	}
	return entries
}

// GormTeacherRepository implements TeacherRepository using GORM
type GormTeacherRepository struct {
	db *gorm.DB
}

// NewGormTeacherRepository creates a new GormTeacherRepository
func NewGormTeacherRepository(db *gorm.DB) *GormTeacherRepository {
	return &GormTeacherRepository{db: db}
}

// FindAll returns every teacher in ascending id order
func (r *GormTeacherRepository) FindAll(ctx context.Context) ([]timetable.Teacher, error) {
	var rows []models.TeacherModel
	if err := r.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	teachers := make([]timetable.Teacher, len(rows))
	for i := range rows {
		teachers[i] = rows[i].ToDomain()
	}
	return teachers, nil
}

var (
	_ timetable.ScheduleRepository = (*GormScheduleRepository)(nil)
	_ timetable.TeacherRepository  = (*GormTeacherRepository)(nil)
)
