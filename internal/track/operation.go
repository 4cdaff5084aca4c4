// Package track mirrors the lifecycle of units of work onto checklist items.
//
// Each Operation owns one item on the "Commands" checklist of a card and
// moves it forward through Ready, InProgress and then Done or Failed. The
// item name carries the status icon; the item itself is always marked
// complete. When no card can be resolved the operation is in NoTrack and
// never talks to the board.
package track

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"trello-track/internal/output"
	"trello-track/internal/service"
)

// State is the lifecycle position of an Operation.
type State int

const (
	NoTrack State = iota
	Ready
	InProgress
	Done
	Failed
)

func (s State) String() string {
	switch s {
	case NoTrack:
		return "no-track"
	case Ready:
		return "ready"
	case InProgress:
		return "in-progress"
	case Done:
		return "done"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Icon returns the status icon for s, or "" for NoTrack.
func (s State) Icon() string {
	switch s {
	case Ready:
		return output.IconReady
	case InProgress:
		return output.IconInProgress
	case Done:
		return output.IconDone
	case Failed:
		return output.IconFailed
	default:
		return ""
	}
}

// ErrInvalidState is returned when a transition is not allowed from the
// current state. No remote call is made in that case.
var ErrInvalidState = errors.New("invalid operation state")

// errAborted stands in for the work error when the work exits without
// returning or panicking (runtime.Goexit).
var errAborted = errors.New("aborted")

// Work is a unit of work run inside a tracked scope.
type Work func(ctx context.Context) error

// Operation binds one unit of work to one checklist item.
// An Operation is not safe for concurrent use.
type Operation struct {
	svc    service.Service
	logger *log.Logger
	desc   string
	card   service.Card
	item   service.CheckItem
	state  State
}

// State returns the current state.
func (o *Operation) State() State { return o.state }

// Description returns the description shown after the icon.
func (o *Operation) Description() string { return o.desc }

// Card returns the tracked card. It is zero in NoTrack.
func (o *Operation) Card() service.Card { return o.card }

// Item returns the last known check item. It is zero in NoTrack.
func (o *Operation) Item() service.CheckItem { return o.item }

// Begin enters the tracked scope. A Ready item is switched to in progress;
// InProgress and NoTrack are left unchanged.
func (o *Operation) Begin(ctx context.Context) error {
	switch o.state {
	case NoTrack, InProgress:
		return nil
	case Ready:
		return o.setState(ctx, InProgress)
	default:
		return fmt.Errorf("%w: begin from %s", ErrInvalidState, o.state)
	}
}

// End leaves the tracked scope. A nil workErr moves the item to Done;
// otherwise it moves to Failed and the error is posted as a card comment.
// End is a no-op in NoTrack.
func (o *Operation) End(ctx context.Context, workErr error) error {
	switch o.state {
	case NoTrack:
		return nil
	case InProgress:
	default:
		return fmt.Errorf("%w: end from %s", ErrInvalidState, o.state)
	}

	if workErr == nil {
		return o.setState(ctx, Done)
	}

	if err := o.setState(ctx, Failed); err != nil {
		return err
	}
	if err := o.svc.AddComment(ctx, o.card.ID, output.FailureComment(o.desc, workErr)); err != nil {
		return fmt.Errorf("comment on card %s: %w", o.card.ShortLink, err)
	}
	return nil
}

// Run begins the operation, runs fn and ends the operation exactly once,
// whichever way fn exits. A panic in fn is recorded as a failure and then
// re-raised. The returned error is fn's error joined with any tracking error.
//
// The final update ignores cancellation of ctx so that a cancelled run still
// leaves the item in a terminal state.
func (o *Operation) Run(ctx context.Context, fn Work) error {
	if err := o.Begin(ctx); err != nil {
		return err
	}
	endCtx := context.WithoutCancel(ctx)

	finished := false
	defer func() {
		if finished {
			return
		}
		r := recover()
		cause := errAborted
		if r != nil {
			cause = fmt.Errorf("panic: %v", r)
		}
		if err := o.End(endCtx, cause); err != nil {
			o.logger.Error("failed to record failure", "desc", o.desc, "err", err)
		}
		if r != nil {
			panic(r)
		}
	}()

	workErr := fn(ctx)
	finished = true

	if err := o.End(endCtx, workErr); err != nil {
		return errors.Join(workErr, err)
	}
	return workErr
}

// setState renames the item for next and records next once the board has
// accepted it. On failure the state still matches the board.
func (o *Operation) setState(ctx context.Context, next State) error {
	name := output.Label(next.Icon(), o.desc)
	if err := o.svc.UpdateCheckItem(ctx, o.card.ID, o.item.ID, name, service.CheckItemComplete); err != nil {
		return fmt.Errorf("update check item %s: %w", o.item.ID, err)
	}
	o.state = next
	o.item.Name = name
	o.item.State = service.CheckItemComplete
	o.logger.Debug("check item updated", "item", o.item.ID, "state", next)
	return nil
}
