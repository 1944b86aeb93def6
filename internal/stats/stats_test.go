package stats

import (
	"testing"

	"teatrlead/entity"
)

type fakeSource struct {
	profiles []*entity.VisitorProfile
}

func (f *fakeSource) ListProfiles() ([]*entity.VisitorProfile, error) {
	return f.profiles, nil
}

func testProfiles() []*entity.VisitorProfile {
	return []*entity.VisitorProfile{
		{
			UserID: 1, City: "Самара", Project: "Ревизор", UtmSource: "vk",
			Consent: true, Name: "Анна", Gender: "Женский",
			Genres: []string{"comedy"}, Scenario: "couple", Birthday: "14.02.1990",
			Phone: "+79000000001", Email: "anna@example.com", PromoIssued: true,
		},
		{
			UserID: 2, City: "Самара", Project: "Ревизор", UtmSource: "vk",
			Consent: true, Name: "Пётр", Gender: "Мужской",
			Genres: []string{"musical"},
		},
		{
			UserID: 3, City: "Казань", Project: "Вишнёвый сад",
			Consent: true, Name: "Ольга",
		},
		{UserID: 4},
	}
}

func TestOverview(t *testing.T) {
	a := New(&fakeSource{profiles: testProfiles()})

	o, err := a.Overview()
	if err != nil {
		t.Fatal(err)
	}
	if o.Total != 4 {
		t.Errorf("total = %d, want 4", o.Total)
	}
	if o.Consented != 3 {
		t.Errorf("consented = %d, want 3", o.Consented)
	}
	if o.WithPhone != 1 || o.WithEmail != 1 || o.PromoIssued != 1 {
		t.Errorf("phone/email/promo = %d/%d/%d, want 1/1/1", o.WithPhone, o.WithEmail, o.PromoIssued)
	}
}

func TestByCity(t *testing.T) {
	a := New(&fakeSource{profiles: testProfiles()})

	buckets, err := a.ByCity()
	if err != nil {
		t.Fatal(err)
	}
	if len(buckets) != 3 {
		t.Fatalf("buckets = %d, want 3", len(buckets))
	}
	if buckets[0].Name != "Самара" || buckets[0].Count != 2 {
		t.Errorf("top bucket = %+v, want Самара/2", buckets[0])
	}
	found := false
	for _, b := range buckets {
		if b.Name == unknownBucket && b.Count == 1 {
			found = true
		}
	}
	if !found {
		t.Errorf("profiles without a city must land in %q: %+v", unknownBucket, buckets)
	}
}

func TestFunnel(t *testing.T) {
	a := New(&fakeSource{profiles: testProfiles()})

	funnel, err := a.Funnel()
	if err != nil {
		t.Fatal(err)
	}
	if len(funnel) != 10 {
		t.Fatalf("stages = %d, want 10", len(funnel))
	}
	if funnel[0].Stage != "start" || funnel[0].Count != 4 || funnel[0].Percent != 100 {
		t.Errorf("start stage = %+v", funnel[0])
	}
	if funnel[1].Stage != "consent" || funnel[1].Count != 3 || funnel[1].Percent != 75 {
		t.Errorf("consent stage = %+v", funnel[1])
	}
	if funnel[9].Stage != "promo" || funnel[9].Count != 1 || funnel[9].Percent != 25 {
		t.Errorf("promo stage = %+v", funnel[9])
	}
	// Monotonically non-increasing past the start stage.
	for i := 2; i < len(funnel); i++ {
		if funnel[i].Count > funnel[i-1].Count {
			t.Errorf("funnel grows at %s: %d > %d", funnel[i].Stage, funnel[i].Count, funnel[i-1].Count)
		}
	}
}

func TestFunnelEmpty(t *testing.T) {
	a := New(&fakeSource{})

	funnel, err := a.Funnel()
	if err != nil {
		t.Fatal(err)
	}
	if len(funnel) != 0 {
		t.Errorf("funnel for empty audience = %+v, want empty", funnel)
	}
}
