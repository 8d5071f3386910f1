package telegram

import "fmt"

// Reply texts
const (
	MsgWelcome = "Ласкаво просимо! Будь ласка, авторизуйтеся через команду /auth, після якої послідує ваш секретний код.\n"

	MsgHelp = "Доступні команди:\n\n" +
		"/teachers - Список викладачів\n" +
		"/schedule - Розклад занять\n" +
		"/today - Розклад на сьогодні\n" +
		"/tomorrow - Розклад на завтра\n" +
		"/week_type - Повертає, який тиждень зараз - парний чи непарний\n"

	MsgAuthRequired      = "Необхідно ввести секретний код для доступу до команд."
	MsgAlreadyAuthorized = "Ви вже авторизовані."
	MsgEnterCode         = "Будь ласка, введіть секретний код."
	MsgAuthSuccess       = "Вітаю! Авторизація пройшла успішно.\nСписок доступних команд: /help"
	MsgWrongCode         = "Неправильний код. Будь ласка, спробуйте ще раз."
	MsgBlocked           = "Ви вже використали максимальну кількість спроб авторизації. Будь ласка, зверніться до адміністратора."

	MsgTodayHeader    = "<b>Пари сьогодні:</b>\n\n"
	MsgTomorrowHeader = "<b>Пари завтра:</b>\n\n"
	MsgFreeToday      = "Сьогодні вільний день"
	MsgFreeTomorrow   = "Завтра вільний день"
	MsgEmptySchedule  = "Розклад порожній."

	MsgInternalError = "Сталася помилка. Спробуйте пізніше."
)

// MsgWeekType reports the current parity
func MsgWeekType(label string) string {
	return "Зараз " + label + " тиждень"
}

// MsgAttemptsReset confirms an administrative reset
func MsgAttemptsReset(userID int64) string {
	return fmt.Sprintf("Лічильник спроб для користувача %d успішно скинуто.", userID)
}

// MsgUserNotFound reports a reset target without a record
func MsgUserNotFound(userID int64) string {
	return fmt.Sprintf("Користувача з ID %d не знайдено в базі даних.", userID)
}
