package timetable

import (
	"strings"

	"github.com/compmath/schedule-bot/internal/domain/timetable"
)

// Weekdays holds the headings of days 1..6 of the timetable
var Weekdays = [...]string{"Понеділок", "Вівторок", "Середа", "Четвер", "П'ятниця", "Субота"}

const (
	lessonMarker = "🕒"
	onlineLabel  = "Онлайн"
)

// Telegram HTML only needs these three escaped in text
var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
)

// FormatDay renders one line per entry in the order given.
// An empty slice renders as "".
func FormatDay(entries []timetable.ScheduleEntry) string {
	var b strings.Builder
	for i := range entries {
		writeLesson(&b, &entries[i])
	}
	return b.String()
}

func writeLesson(b *strings.Builder, e *timetable.ScheduleEntry) {
	b.WriteString(lessonMarker)
	b.WriteString(" <b>")
	b.WriteString(textEscaper.Replace(e.Time))
	b.WriteString("</b> | <b>")
	b.WriteString(textEscaper.Replace(e.Subject.Name))
	b.WriteString("</b> (")
	b.WriteString(textEscaper.Replace(e.LessonType.Name))
	b.WriteString(")")

	if e.HasTeacher() {
		b.WriteString(", ")
		b.WriteString(textEscaper.Replace(e.Teacher.Name))
	}

	switch loc := e.LocationText(); {
	case loc == "":
	case e.IsOnline():
		b.WriteString(`, <a href="`)
		b.WriteString(attrEscaper.Replace(loc))
		b.WriteString(`">`)
		b.WriteString(onlineLabel)
		b.WriteString("</a>")
	default:
		b.WriteString(", ауд. ")
		b.WriteString(textEscaper.Replace(loc))
	}
	b.WriteString("\n")
}

// FormatWeek renders Monday through Saturday for weekType. Entries keep their
// relative order; a day with lessons gets a heading and every day is followed
// by a blank line, including days without lessons.
func FormatWeek(entries []timetable.ScheduleEntry, weekType timetable.WeekType) string {
	var b strings.Builder
	for day := timetable.FirstWeekday; day <= timetable.LastWeekday; day++ {
		var lessons []timetable.ScheduleEntry
		for i := range entries {
			if entries[i].OccursIn(day, weekType) {
				lessons = append(lessons, entries[i])
			}
		}

		if len(lessons) > 0 {
			b.WriteString("<b>")
			b.WriteString(Weekdays[day-1])
			b.WriteString("</b>:\n")
		}
		b.WriteString(FormatDay(lessons))
		b.WriteString("\n")
	}
	return b.String()
}

// FormatTeachers renders the contact directory. Teachers without contacts
// contribute only the trailing blank line.
func FormatTeachers(teachers []timetable.Teacher) string {
	var b strings.Builder
	b.WriteString("<b>Контакти викладачів:</b>\n\n")

	for i := range teachers {
		c := teachers[i].ParsedContacts()
		if hasAny(c) {
			b.WriteString("<b>")
			b.WriteString(textEscaper.Replace(teachers[i].Name))
			b.WriteString("</b>\n")
			writeContact(&b, "Телефон", c.Phone)
			writeContact(&b, "Email", c.Email)
			writeContact(&b, "Телеграм", c.Telegram)
			writeContact(&b, "Viber", c.Viber)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// hasAny reports whether some field has a non-empty value
func hasAny(c timetable.Contacts) bool {
	for _, f := range []*string{c.Phone, c.Email, c.Telegram, c.Viber} {
		if f != nil && *f != "" {
			return true
		}
	}
	return false
}

func writeContact(b *strings.Builder, label string, value *string) {
	if value == nil || *value == "" {
		return
	}
	b.WriteString(label)
	b.WriteString(": ")
	b.WriteString(textEscaper.Replace(*value))
	b.WriteString("\n")
}

// IsFreeDay reports whether a formatted day has no lessons
func IsFreeDay(formatted string) bool {
	return strings.TrimSpace(formatted) == ""
}
