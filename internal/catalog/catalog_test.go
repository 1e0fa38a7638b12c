package catalog

import "testing"

func TestParseDuration(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"12 сағат 28 мин", 12*3600 + 28*60},
		{"1 сағат 20 мин", 3600 + 20*60},
		{"45 мин", 45 * 60},
		{"2 сағат", 2 * 3600},
		{"0 сағат 0 мин", 0},
		{"", 0},
		{"қырық минут", 0},
	}
	for _, tc := range cases {
		if got := ParseDuration(tc.in); got != tc.want {
			t.Fatalf("ParseDuration(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestBookByID(t *testing.T) {
	b, err := BookByID(1)
	if err != nil {
		t.Fatalf("BookByID(1): %v", err)
	}
	if b.Title != "Абай жолы" {
		t.Fatalf("unexpected title %q", b.Title)
	}
	if _, err := BookByID(999); err == nil {
		t.Fatalf("expected error for unknown id")
	}
}

func TestBookAudio(t *testing.T) {
	url, err := BookAudio(2, VoiceFemale)
	if err != nil {
		t.Fatalf("BookAudio: %v", err)
	}
	if url == "" {
		t.Fatalf("expected non-empty url")
	}
	if _, err := BookAudio(2, Voice("robot")); err == nil {
		t.Fatalf("expected error for unknown voice")
	}
}

func TestBooks_ReturnsCopy(t *testing.T) {
	a := Books()
	a[0].Title = "mutated"
	b := Books()
	if b[0].Title == "mutated" {
		t.Fatalf("Books must return a copy")
	}
}
