// Package stats aggregates visitor profiles into the numbers the admin
// console and the reporting API show. Everything is computed on demand from
// the store; a single bot's audience does not warrant precomputation.
package stats

import (
	"math"
	"sort"

	"teatrlead/entity"
)

// Source lists the profiles to aggregate over.
type Source interface {
	ListProfiles() ([]*entity.VisitorProfile, error)
}

type Aggregator struct {
	source Source
}

func New(source Source) *Aggregator {
	return &Aggregator{source: source}
}

// Overview is the headline counters block.
type Overview struct {
	Total       int `json:"total"`
	Consented   int `json:"consented"`
	WithPhone   int `json:"with_phone"`
	WithEmail   int `json:"with_email"`
	PromoIssued int `json:"promo_issued"`
}

func (a *Aggregator) Overview() (*Overview, error) {
	profiles, err := a.source.ListProfiles()
	if err != nil {
		return nil, err
	}
	o := &Overview{Total: len(profiles)}
	for _, v := range profiles {
		if v.Consent {
			o.Consented++
		}
		if v.Phone != "" {
			o.WithPhone++
		}
		if v.Email != "" {
			o.WithEmail++
		}
		if v.PromoIssued {
			o.PromoIssued++
		}
	}
	return o, nil
}

// Bucket is one row of a grouped count.
type Bucket struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// unknownBucket labels profiles with an empty grouping value.
const unknownBucket = "(не указано)"

func (a *Aggregator) ByCity() ([]Bucket, error) {
	return a.groupBy(func(v *entity.VisitorProfile) string { return v.City })
}

func (a *Aggregator) ByProject() ([]Bucket, error) {
	return a.groupBy(func(v *entity.VisitorProfile) string { return v.Project })
}

func (a *Aggregator) BySource() ([]Bucket, error) {
	return a.groupBy(func(v *entity.VisitorProfile) string { return v.UtmSource })
}

func (a *Aggregator) groupBy(key func(*entity.VisitorProfile) string) ([]Bucket, error) {
	profiles, err := a.source.ListProfiles()
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for _, v := range profiles {
		k := key(v)
		if k == "" {
			k = unknownBucket
		}
		counts[k]++
	}
	buckets := make([]Bucket, 0, len(counts))
	for name, count := range counts {
		buckets = append(buckets, Bucket{Name: name, Count: count})
	}
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].Count != buckets[j].Count {
			return buckets[i].Count > buckets[j].Count
		}
		return buckets[i].Name < buckets[j].Name
	})
	return buckets, nil
}

// FunnelStage is one step of the completion funnel: how many visitors got at
// least this far, as a count and as a share of everyone who started.
type FunnelStage struct {
	Stage   string  `json:"stage"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

var funnelStages = []struct {
	name    string
	reached func(*entity.VisitorProfile) bool
}{
	{"start", func(*entity.VisitorProfile) bool { return true }},
	{"consent", func(v *entity.VisitorProfile) bool { return v.Consent }},
	{"name", func(v *entity.VisitorProfile) bool { return v.Name != "" }},
	{"gender", func(v *entity.VisitorProfile) bool { return v.Gender != "" }},
	{"genres", func(v *entity.VisitorProfile) bool { return len(v.Genres) > 0 }},
	{"scenario", func(v *entity.VisitorProfile) bool { return v.Scenario != "" }},
	{"birthday", func(v *entity.VisitorProfile) bool { return v.Birthday != "" }},
	{"phone", func(v *entity.VisitorProfile) bool { return v.Phone != "" }},
	{"email", func(v *entity.VisitorProfile) bool { return v.Email != "" }},
	{"promo", func(v *entity.VisitorProfile) bool { return v.PromoIssued }},
}

// Funnel reports drop-off per questionnaire stage. Empty when nobody has
// started yet.
func (a *Aggregator) Funnel() ([]FunnelStage, error) {
	profiles, err := a.source.ListProfiles()
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return []FunnelStage{}, nil
	}
	total := float64(len(profiles))
	stages := make([]FunnelStage, 0, len(funnelStages))
	for _, st := range funnelStages {
		count := 0
		for _, v := range profiles {
			if st.reached(v) {
				count++
			}
		}
		percent := math.Round(float64(count)/total*100*100) / 100
		stages = append(stages, FunnelStage{Stage: st.name, Count: count, Percent: percent})
	}
	return stages, nil
}
