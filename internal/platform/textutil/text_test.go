package textutil

import "testing"

func TestStripLocaleTag(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Zapatilla urbana [CL]", "Zapatilla urbana"},
		{"[PE] Polo manga corta", "Polo manga corta"},
		{"Sin etiqueta", "Sin etiqueta"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := StripLocaleTag(tc.in); got != tc.want {
			t.Errorf("StripLocaleTag(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Zapatilla Urbana", "zapatilla-urbana"},
		{"Café con Leche", "cafe-con-leche"},
		{"  ROJO / AZUL  ", "rojo-azul"},
		{"ñandú", "nandu"},
		{"---", ""},
	}
	for _, tc := range cases {
		if got := Slugify(tc.in); got != tc.want {
			t.Errorf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	cases := []struct {
		in    string
		limit int
		want  string
	}{
		{"corto", 150, "corto"},
		{"abcdefghij", 8, "abcde..."},
		{"abcdefghij", 10, "abcdefghij"},
		{"ábcdéfghíj", 8, "ábcdé..."},
		{"abc", 0, "abc"},
	}
	for _, tc := range cases {
		if got := Truncate(tc.in, tc.limit, "..."); got != tc.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tc.in, tc.limit, got, tc.want)
		}
	}
}
