package slug

import (
	"regexp"
	"strings"
	"testing"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Ann & Bob's Wedding", "ann-bob-s-wedding"},
		{"  Crème Brûlée Party!  ", "creme-brulee-party"},
		{"2024 -- Summer", "2024-summer"},
		{"!!!", "site"},
		{"", "site"},
		{"Ünïcödé", "unicode"},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSlugifyCapsLength(t *testing.T) {
	got := Slugify(strings.Repeat("ab ", 40))
	if len(got) > maxLength {
		t.Errorf("len = %d, want <= %d", len(got), maxLength)
	}
	if strings.HasSuffix(got, "-") {
		t.Errorf("slug %q ends with a dash", got)
	}
}

func TestWithSuffix(t *testing.T) {
	re := regexp.MustCompile(`^our-day-[0-9a-f]{8}$`)
	a := WithSuffix("Our Day")
	b := WithSuffix("Our Day")
	if !re.MatchString(a) {
		t.Errorf("WithSuffix() = %q, want slug-random8", a)
	}
	if a == b {
		t.Errorf("two slugs collided: %q", a)
	}
}
