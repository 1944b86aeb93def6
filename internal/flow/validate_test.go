package flow

import "testing"

func TestValidName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"Екатерина", true},
		{"Ek", true},
		{"Ян", true},
		{"  Анна  ", true},
		{"A", false},
		{" ", false},
		{"", false},
	}
	for _, tc := range tests {
		if got := ValidName(tc.name); got != tc.want {
			t.Errorf("ValidName(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestValidBirthday(t *testing.T) {
	tests := []struct {
		date string
		want bool
	}{
		{"14.02.1990", true},
		{"01.01.1900", true},
		{"31.12.2100", true},
		{"29.02.2000", true},
		{"30.02.2000", false},
		{"29.02.1999", false},
		{"32.01.1990", false},
		{"14.13.1990", false},
		{"14.02.1899", false},
		{"14.02.2101", false},
		{"14/02/1990", false},
		{"14.2.1990", false},
		{"1990-02-14", false},
		{"завтра", false},
		{"", false},
	}
	for _, tc := range tests {
		if got := ValidBirthday(tc.date); got != tc.want {
			t.Errorf("ValidBirthday(%q) = %v, want %v", tc.date, got, tc.want)
		}
	}
}

func TestValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"anna@example.com", true},
		{"a@b.c", true},
		{"@b.c", true},
		{"a@b", false},
		{"a.b", false},
		{"ab@", false},
		{"a@c", false},
		{"", false},
	}
	for _, tc := range tests {
		if got := ValidEmail(tc.email); got != tc.want {
			t.Errorf("ValidEmail(%q) = %v, want %v", tc.email, got, tc.want)
		}
	}
}
