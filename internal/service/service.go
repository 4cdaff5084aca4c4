// Package service defines the backend-agnostic interface for board operations.
package service

import "context"

// Service defines the remote calls the tracker needs.
// All Trello API calls go through this interface.
// The track package never imports the backend directly.
type Service interface {
	// SearchCards runs a free-text card search.
	// Results are in API order and may include cards that do not match exactly.
	SearchCards(ctx context.Context, query string) ([]Card, error)

	// ListChecklists returns the checklists of a card in API order.
	ListChecklists(ctx context.Context, cardID string) ([]Checklist, error)

	// CreateChecklist adds a new checklist to a card.
	CreateChecklist(ctx context.Context, cardID, name string) (Checklist, error)

	// CreateCheckItem appends an item to a checklist.
	CreateCheckItem(ctx context.Context, checklistID, name string) (CheckItem, error)

	// UpdateCheckItem sets the name and state of an item on a card.
	UpdateCheckItem(ctx context.Context, cardID, itemID, name, state string) error

	// AddComment posts a comment on a card.
	AddComment(ctx context.Context, cardID, text string) error
}
