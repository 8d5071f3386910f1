// Package timetable answers the schedule commands: the week and single-day
// timetables, the current week parity and the teacher directory.
package timetable

import (
	"context"
	"fmt"
	"time"

	"github.com/compmath/schedule-bot/internal/domain/timetable"
)

// Clock returns the current time
type Clock func() time.Time

// Day is a formatted single-day timetable
type Day struct {
	Date     time.Time
	WeekType timetable.WeekType
	Text     string
	Free     bool
}

// Service composes the repositories, the week calculator and the formatter
type Service struct {
	schedules timetable.ScheduleRepository
	teachers  timetable.TeacherRepository
	weeks     *timetable.WeekCalculator
	now       Clock
	location  *time.Location
}

// Option configures a Service
type Option func(*Service)

// WithClock overrides the time source
func WithClock(clock Clock) Option {
	return func(s *Service) {
		s.now = clock
	}
}

// WithLocation sets the time zone that decides what "today" is
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.location = loc
		}
	}
}

// NewService creates a new timetable Service
func NewService(
	schedules timetable.ScheduleRepository,
	teachers timetable.TeacherRepository,
	weeks *timetable.WeekCalculator,
	opts ...Option,
) *Service {
	s := &Service{
		schedules: schedules,
		teachers:  teachers,
		weeks:     weeks,
		now:       time.Now,
		location:  time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) today() time.Time {
	return s.now().In(s.location)
}

// CurrentWeekType returns the parity of the current week
func (s *Service) CurrentWeekType() timetable.WeekType {
	return s.weeks.WeekType(s.today())
}

// WeekSchedule renders the whole timetable for the current parity
func (s *Service) WeekSchedule(ctx context.Context) (string, error) {
	entries, err := s.schedules.FindAll(ctx)
	if err != nil {
		return "", fmt.Errorf("load schedule: %w", err)
	}
	return FormatWeek(entries, s.CurrentWeekType()), nil
}

// DaySchedule renders the lessons of the day offsetDays from today
func (s *Service) DaySchedule(ctx context.Context, offsetDays int) (Day, error) {
	date := s.today().AddDate(0, 0, offsetDays)
	weekType := s.weeks.WeekType(date)

	entries, err := s.schedules.FindByDay(ctx, timetable.DayOfWeek(date), weekType)
	if err != nil {
		return Day{}, fmt.Errorf("load schedule for %s: %w", date.Format(timetable.WeekStartLayout), err)
	}

	text := FormatDay(entries)
	return Day{
		Date:     date,
		WeekType: weekType,
		Text:     text,
		Free:     IsFreeDay(text),
	}, nil
}

// TeacherDirectory renders the contacts of every teacher
func (s *Service) TeacherDirectory(ctx context.Context) (string, error) {
	teachers, err := s.teachers.FindAll(ctx)
	if err != nil {
		return "", fmt.Errorf("load teachers: %w", err)
	}
	return FormatTeachers(teachers), nil
}
