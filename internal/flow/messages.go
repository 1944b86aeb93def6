package flow

// Visitor-facing questionnaire texts.
const (
	msgConsent = "Прежде чем мы начнём, подтвердите согласие на обработку " +
		"персональных данных. Без этого мы не сможем подарить вам промокод."
	msgConsentRequired = "Для продолжения нужно согласие на обработку персональных данных."
	msgAskName         = "Как вас зовут?"
	msgBadName         = "Пожалуйста, напишите имя текстом, хотя бы пару букв."
	msgAskGender       = "Приятно познакомиться! Подскажите, пожалуйста:"
	msgAskGenres       = "Какие спектакли вам ближе? Можно выбрать несколько вариантов."
	msgNeedGenre       = "Выберите хотя бы один вариант, чтобы продолжить."
	msgAskScenario     = "С каким настроением собираетесь в театр?"
	msgAskBirthday     = "Когда у вас день рождения? Напишите в формате ДД.ММ.ГГГГ, например 14.02.1990."
	msgBadBirthday     = "Не получилось разобрать дату. Напишите, пожалуйста, в формате ДД.ММ.ГГГГ, например 14.02.1990."
	msgAskPhone        = "Поделитесь номером телефона кнопкой ниже."
	msgPhoneButtonOnly = "Чтобы мы точно не ошиблись в номере, воспользуйтесь, пожалуйста, кнопкой ниже."
	msgAskEmail        = "Остался последний шаг: напишите вашу электронную почту."
	msgBadEmail        = "Кажется, в адресе опечатка. Проверьте и напишите ещё раз."
	msgEmailRetry      = "Хорошо, напишите почту ещё раз."
	msgPromoIssued     = "Спасибо! Ваш промокод: %s\n\nОн даёт скидку при покупке билетов: %s"
	msgPromoAgain      = "Напомним ваш промокод: %s\n\nБилеты здесь: %s"
)

func msgEmailConfirm(email string) string {
	return "Проверим: " + email + " — всё верно?"
}
