package track

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"trello-track/internal/output"
	"trello-track/internal/service"
)

// ChecklistName is the checklist that holds one item per operation.
const ChecklistName = "Commands"

// Tracker creates operations against one card.
type Tracker struct {
	svc    service.Service
	cardID string
	logger *log.Logger
}

// NewTracker returns a tracker for cardID, a card id or short link.
// An empty cardID makes every operation NoTrack. A nil logger discards output.
func NewTracker(svc service.Service, cardID string, logger *log.Logger) *Tracker {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Tracker{svc: svc, cardID: cardID, logger: logger}
}

// CardID returns the card the tracker reports to.
func (t *Tracker) CardID() string { return t.cardID }

// NewOperation creates the check item for desc and returns its operation.
// The item starts in progress when startInProgress is set, otherwise ready.
// A missing or unknown card yields a NoTrack operation and a warning; only
// remote call failures are returned as errors.
func (t *Tracker) NewOperation(ctx context.Context, desc string, startInProgress bool) (*Operation, error) {
	op := &Operation{svc: t.svc, logger: t.logger, desc: desc, state: NoTrack}

	if t.cardID == "" || t.svc == nil {
		t.logger.Warn("no card supplied, this operation will not be tracked", "desc", desc)
		return op, nil
	}

	card, ok, err := t.findCard(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		t.logger.Warn("could not find card, this operation will not be tracked", "card", t.cardID)
		return op, nil
	}

	checklist, err := t.checklist(ctx, card)
	if err != nil {
		return nil, err
	}

	state := Ready
	if startInProgress {
		state = InProgress
	}
	item, err := t.svc.CreateCheckItem(ctx, checklist.ID, output.Label(state.Icon(), desc))
	if err != nil {
		return nil, fmt.Errorf("create check item: %w", err)
	}
	t.logger.Debug("check item created", "card", card.ShortLink, "item", item.ID, "state", state)

	op.card = card
	op.item = item
	op.state = state
	return op, nil
}

// Track runs fn inside an operation that starts already in progress.
func (t *Tracker) Track(ctx context.Context, desc string, fn Work) error {
	op, err := t.NewOperation(ctx, desc, true)
	if err != nil {
		return err
	}
	return op.Run(ctx, fn)
}

// NewTaskManager returns an empty task manager reporting to this tracker.
func (t *Tracker) NewTaskManager() *TaskManager {
	return &TaskManager{tracker: t}
}

// findCard searches for the tracker's card. Search is fuzzy, so only a card
// whose id or short link equals cardID counts.
func (t *Tracker) findCard(ctx context.Context) (service.Card, bool, error) {
	cards, err := t.svc.SearchCards(ctx, t.cardID)
	if err != nil {
		return service.Card{}, false, fmt.Errorf("search card %s: %w", t.cardID, err)
	}
	for _, c := range cards {
		if c.Matches(t.cardID) {
			return c, true, nil
		}
	}
	return service.Card{}, false, nil
}

// checklist returns the first checklist named ChecklistName on card,
// creating one when there is none.
func (t *Tracker) checklist(ctx context.Context, card service.Card) (service.Checklist, error) {
	lists, err := t.svc.ListChecklists(ctx, card.ID)
	if err != nil {
		return service.Checklist{}, fmt.Errorf("list checklists of %s: %w", card.ShortLink, err)
	}
	for _, cl := range lists {
		if cl.Name == ChecklistName {
			return cl, nil
		}
	}

	cl, err := t.svc.CreateChecklist(ctx, card.ID, ChecklistName)
	if err != nil {
		return service.Checklist{}, fmt.Errorf("create checklist on %s: %w", card.ShortLink, err)
	}
	t.logger.Debug("checklist created", "card", card.ShortLink, "checklist", cl.ID)
	return cl, nil
}
