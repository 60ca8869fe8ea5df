package services

import "testing"

func TestStripCodeFences(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"```json\n[{\"q\":1}]\n```", "[{\"q\":1}]"},
		{"```\n[]\n```", "[]"},
		{"[]", "[]"},
		{"  [1, 2]  ", "[1, 2]"},
	}
	for _, c := range cases {
		if got := stripCodeFences(c.in); got != c.want {
			t.Errorf("stripCodeFences(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
