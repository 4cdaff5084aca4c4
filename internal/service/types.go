// Package service defines the backend-agnostic interface for board operations.
package service

import "errors"

// CheckItemComplete is the only check item state this tool ever writes.
// The status icon in the item name carries the real status.
const CheckItemComplete = "complete"

// ErrNotFound is returned by a backend when a resource does not exist.
var ErrNotFound = errors.New("not found")

// Card is a card on the board.
type Card struct {
	ID        string
	ShortLink string
	Name      string
}

// Matches reports whether ref names this card by full id or short link.
func (c Card) Matches(ref string) bool {
	return ref != "" && (ref == c.ID || ref == c.ShortLink)
}

// Checklist is a named checklist attached to a card.
type Checklist struct {
	ID     string
	CardID string
	Name   string
}

// CheckItem is a single line of a checklist.
type CheckItem struct {
	ID          string
	ChecklistID string
	Name        string
	State       string // "incomplete" or "complete"
}
