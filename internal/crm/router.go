package crm

import (
	"strings"

	"teatrlead/entity"
)

// cityRoutes maps tour geography to CRM backends. Matching is ordered
// substring search over the lowercased city, so compound names must precede
// their prefixes.
var cityRoutes = []struct {
	keyword string
	backend entity.CRMType
}{
	{"волгоград", entity.CRMCity1},
	{"краснодар", entity.CRMCity1},
	{"ростов-на-дону", entity.CRMCity1},
	{"ростов", entity.CRMCity1},
	{"самара", entity.CRMCity1},
	{"сочи", entity.CRMCity1},
	{"ставрополь", entity.CRMCity1},
	{"уфа", entity.CRMCity1},
	{"казань", entity.CRMCity2},
	{"тюмень", entity.CRMCity2},
	{"москва", entity.CRMCity2},
	{"мск", entity.CRMCity2},
	{"екатеринбург", entity.CRMCity2},
	{"новосибирск", entity.CRMCity2},
	{"нижний новгород", entity.CRMCity2},
	{"пермь", entity.CRMCity2},
	{"челябинск", entity.CRMCity2},
}

// Route resolves a city to its CRM backend. The second result reports
// whether the city matched the table; unmatched cities are the caller's call.
func Route(city string) (entity.CRMType, bool) {
	c := strings.ToLower(strings.TrimSpace(city))
	if c == "" {
		return "", false
	}
	for _, r := range cityRoutes {
		if strings.Contains(c, r.keyword) {
			return r.backend, true
		}
	}
	return "", false
}
