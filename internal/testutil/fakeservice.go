// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"sync"

	"trello-track/internal/service"
)

// Call records one remote call made against FakeService.
type Call struct {
	Method string
	Args   []string
}

// Comment is a comment posted through FakeService.
type Comment struct {
	CardID string
	Text   string
}

// FakeService is an in-memory implementation of service.Service for testing.
// Every call is recorded in order, including calls that fail.
type FakeService struct {
	mu         sync.RWMutex
	cards      []service.Card
	checklists map[string][]service.Checklist // cardID -> checklists
	items      map[string][]service.CheckItem // checklistID -> items
	itemCards  map[string]string              // itemID -> cardID
	comments   []Comment
	calls      []Call
	nextID     int

	// Error injection for testing
	SearchCardsErr     error
	ListChecklistsErr  error
	CreateChecklistErr error
	CreateCheckItemErr error
	UpdateCheckItemErr error
	AddCommentErr      error

	// OnCreateCheckItem, if set, runs after an item is created.
	OnCreateCheckItem func(item service.CheckItem)
}

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{
		checklists: make(map[string][]service.Checklist),
		items:      make(map[string][]service.CheckItem),
		itemCards:  make(map[string]string),
	}
}

// AddCard adds a card to the fake board.
func (f *FakeService) AddCard(id, shortLink, name string) service.Card {
	f.mu.Lock()
	defer f.mu.Unlock()
	card := service.Card{ID: id, ShortLink: shortLink, Name: name}
	f.cards = append(f.cards, card)
	return card
}

// AddChecklist adds a checklist to a card and returns it.
func (f *FakeService) AddChecklist(cardID, name string) service.Checklist {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addChecklistLocked(cardID, name)
}

// Calls returns the recorded calls in order.
func (f *FakeService) Calls() []Call {
	f.mu.RLock()
	defer f.mu.RUnlock()
	result := make([]Call, len(f.calls))
	copy(result, f.calls)
	return result
}

// CallsTo returns the recorded calls to one method.
func (f *FakeService) CallsTo(method string) []Call {
	var result []Call
	for _, c := range f.Calls() {
		if c.Method == method {
			result = append(result, c)
		}
	}
	return result
}

// ResetCalls forgets the recorded calls.
func (f *FakeService) ResetCalls() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

// Checklists returns the checklists of a card.
func (f *FakeService) Checklists(cardID string) []service.Checklist {
	f.mu.RLock()
	defer f.mu.RUnlock()
	result := make([]service.Checklist, len(f.checklists[cardID]))
	copy(result, f.checklists[cardID])
	return result
}

// Items returns the items of a checklist.
func (f *FakeService) Items(checklistID string) []service.CheckItem {
	f.mu.RLock()
	defer f.mu.RUnlock()
	result := make([]service.CheckItem, len(f.items[checklistID]))
	copy(result, f.items[checklistID])
	return result
}

// Comments returns the posted comments.
func (f *FakeService) Comments() []Comment {
	f.mu.RLock()
	defer f.mu.RUnlock()
	result := make([]Comment, len(f.comments))
	copy(result, f.comments)
	return result
}

// SearchCards implements service.Service.
// Cards match when the query equals their id, short link or name.
func (f *FakeService) SearchCards(ctx context.Context, query string) ([]service.Card, error) {
	f.record("SearchCards", query)
	if f.SearchCardsErr != nil {
		return nil, f.SearchCardsErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()

	var result []service.Card
	for _, c := range f.cards {
		if c.ID == query || c.ShortLink == query || c.Name == query {
			result = append(result, c)
		}
	}
	return result, nil
}

// ListChecklists implements service.Service.
func (f *FakeService) ListChecklists(ctx context.Context, cardID string) ([]service.Checklist, error) {
	f.record("ListChecklists", cardID)
	if f.ListChecklistsErr != nil {
		return nil, f.ListChecklistsErr
	}
	return f.Checklists(cardID), nil
}

// CreateChecklist implements service.Service.
func (f *FakeService) CreateChecklist(ctx context.Context, cardID, name string) (service.Checklist, error) {
	f.record("CreateChecklist", cardID, name)
	if f.CreateChecklistErr != nil {
		return service.Checklist{}, f.CreateChecklistErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addChecklistLocked(cardID, name), nil
}

// CreateCheckItem implements service.Service.
func (f *FakeService) CreateCheckItem(ctx context.Context, checklistID, name string) (service.CheckItem, error) {
	f.record("CreateCheckItem", checklistID, name)
	if f.CreateCheckItemErr != nil {
		return service.CheckItem{}, f.CreateCheckItemErr
	}

	f.mu.Lock()
	cardID, ok := f.cardOfChecklistLocked(checklistID)
	if !ok {
		f.mu.Unlock()
		return service.CheckItem{}, service.ErrNotFound
	}
	item := service.CheckItem{
		ID:          f.newIDLocked("item"),
		ChecklistID: checklistID,
		Name:        name,
		State:       "incomplete",
	}
	f.items[checklistID] = append(f.items[checklistID], item)
	f.itemCards[item.ID] = cardID
	hook := f.OnCreateCheckItem
	f.mu.Unlock()

	if hook != nil {
		hook(item)
	}
	return item, nil
}

// UpdateCheckItem implements service.Service.
func (f *FakeService) UpdateCheckItem(ctx context.Context, cardID, itemID, name, state string) error {
	f.record("UpdateCheckItem", cardID, itemID, name, state)
	if f.UpdateCheckItemErr != nil {
		return f.UpdateCheckItemErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.itemCards[itemID] != cardID {
		return service.ErrNotFound
	}
	for checklistID, items := range f.items {
		for i, item := range items {
			if item.ID == itemID {
				f.items[checklistID][i].Name = name
				f.items[checklistID][i].State = state
				return nil
			}
		}
	}
	return service.ErrNotFound
}

// AddComment implements service.Service.
func (f *FakeService) AddComment(ctx context.Context, cardID, text string) error {
	f.record("AddComment", cardID, text)
	if f.AddCommentErr != nil {
		return f.AddCommentErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.comments = append(f.comments, Comment{CardID: cardID, Text: text})
	return nil
}

func (f *FakeService) record(method string, args ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Method: method, Args: args})
}

func (f *FakeService) addChecklistLocked(cardID, name string) service.Checklist {
	cl := service.Checklist{ID: f.newIDLocked("checklist"), CardID: cardID, Name: name}
	f.checklists[cardID] = append(f.checklists[cardID], cl)
	return cl
}

func (f *FakeService) cardOfChecklistLocked(checklistID string) (string, bool) {
	for cardID, lists := range f.checklists {
		for _, cl := range lists {
			if cl.ID == checklistID {
				return cardID, true
			}
		}
	}
	return "", false
}

func (f *FakeService) newIDLocked(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}
