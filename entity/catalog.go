package entity

// Genre is one entry of the fixed repertoire vocabulary offered during the
// questionnaire. Key is the callback-data identifier, Label the stored and
// displayed value.
type Genre struct {
	Key   string
	Label string
}

// Genres is the fixed genre vocabulary in display order.
var Genres = []Genre{
	{"classical_drama", "Классическая драма"},
	{"comedy", "Комедии (лёгкие, жизненные)"},
	{"lyrical", "Лирические истории, про отношения"},
	{"musical", "Музыкальные спектакли"},
	{"literary", "По известным произведениям"},
	{"quality", "Главное — качество"},
}

// GenreLabel resolves a genre key to its stored label; unknown keys pass
// through unchanged.
func GenreLabel(key string) string {
	for _, g := range Genres {
		if g.Key == key {
			return g.Label
		}
	}
	return key
}

// Scenario is one entry of the fixed visit-scenario vocabulary.
type Scenario struct {
	Key   string
	Label string
}

var Scenarios = []Scenario{
	{"self", "Праздник для себя"},
	{"couple", "Вечер с близким человеком"},
	{"family", "Семейный выход"},
	{"gift", "Подарок для кого-то"},
}

func ScenarioLabel(key string) string {
	for _, s := range Scenarios {
		if s.Key == key {
			return s.Label
		}
	}
	return key
}
