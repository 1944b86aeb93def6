package flow

import (
	"testing"
	"time"
)

func TestPersonalPromo(t *testing.T) {
	day := time.Date(2026, 2, 15, 10, 0, 0, 0, time.UTC)

	code := personalPromo(777, "Ревизор", day)
	if len(code) != 8 {
		t.Fatalf("code length = %d, want 8", len(code))
	}
	for _, r := range code {
		if !(r >= '0' && r <= '9' || r >= 'A' && r <= 'F') {
			t.Fatalf("code %q is not upper-case hex", code)
		}
	}

	// Stable within a day, distinct across visitors and days.
	if personalPromo(777, "Ревизор", day.Add(5*time.Hour)) != code {
		t.Error("code changed within the same day")
	}
	if personalPromo(778, "Ревизор", day) == code {
		t.Error("different visitors share a code")
	}
	if personalPromo(777, "Ревизор", day.AddDate(0, 0, 1)) == code {
		t.Error("code survives a day boundary")
	}
}
