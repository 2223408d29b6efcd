package card

import "testing"

func TestDraftValid(t *testing.T) {
	cases := []struct {
		front, back string
		want        bool
	}{
		{"Hola", "Hello", true},
		{"", "Hello", false},
		{"Hola", "", false},
		{"   ", "Hello", false},
		{"Hola", "\t", false},
		{"", "", false},
	}
	for _, tc := range cases {
		d := Draft{Front: tc.front, Back: tc.back}
		if got := d.Valid(); got != tc.want {
			t.Fatalf("Draft{%q,%q}.Valid() = %v, want %v", tc.front, tc.back, got, tc.want)
		}
	}
}

func TestCardListItem(t *testing.T) {
	c := Card{ID: "1", Front: "Bonjour", Back: "Hello"}
	if c.Title() != "Bonjour" {
		t.Fatalf("Title() = %q", c.Title())
	}
	if c.Description() != "Hello" {
		t.Fatalf("Description() = %q", c.Description())
	}
	if c.FilterValue() != "Bonjour" {
		t.Fatalf("FilterValue() = %q", c.FilterValue())
	}
}
