package trello

import (
	"fmt"

	"trello-track/internal/service"
)

// Wire formats of the Trello responses. Only the fields the tracker needs
// are decoded; required fields are checked in the to* conversions.

type searchResult struct {
	Cards []card `json:"cards"`
}

type card struct {
	ID        string `json:"id"`
	ShortLink string `json:"shortLink"`
	Name      string `json:"name"`
}

func (c card) toCard() (service.Card, error) {
	if c.ID == "" || c.ShortLink == "" {
		return service.Card{}, fmt.Errorf("%w: card without id or shortLink", ErrInvalidResponse)
	}
	return service.Card{ID: c.ID, ShortLink: c.ShortLink, Name: c.Name}, nil
}

type checklist struct {
	ID     string `json:"id"`
	IDCard string `json:"idCard"`
	Name   string `json:"name"`
}

func (c checklist) toChecklist(cardID string) (service.Checklist, error) {
	if c.ID == "" {
		return service.Checklist{}, fmt.Errorf("%w: checklist without id", ErrInvalidResponse)
	}
	if c.IDCard != "" {
		cardID = c.IDCard
	}
	return service.Checklist{ID: c.ID, CardID: cardID, Name: c.Name}, nil
}

type checkItem struct {
	ID          string `json:"id"`
	IDChecklist string `json:"idChecklist"`
	Name        string `json:"name"`
	State       string `json:"state"`
}

func (c checkItem) toCheckItem(checklistID string) (service.CheckItem, error) {
	if c.ID == "" {
		return service.CheckItem{}, fmt.Errorf("%w: check item without id", ErrInvalidResponse)
	}
	if c.IDChecklist != "" {
		checklistID = c.IDChecklist
	}
	return service.CheckItem{ID: c.ID, ChecklistID: checklistID, Name: c.Name, State: c.State}, nil
}
