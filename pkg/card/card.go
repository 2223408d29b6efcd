package card

import "strings"

// Card is a front/back pair owned by a single user. ID is assigned by
// the card service on create and never changes afterwards.
type Card struct {
	ID    string `json:"id"`
	Front string `json:"front"`
	Back  string `json:"back"`
}

// Draft holds unsaved front/back text for the add/edit form.
type Draft struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

// Valid reports whether both sides have content after trimming.
func (d Draft) Valid() bool {
	return strings.TrimSpace(d.Front) != "" && strings.TrimSpace(d.Back) != ""
}

// Title returns the front of the card.
func (c Card) Title() string { return c.Front }

// Description returns the back of the card.
func (c Card) Description() string { return c.Back }

// FilterValue returns the front of the card.
func (c Card) FilterValue() string { return c.Front }
