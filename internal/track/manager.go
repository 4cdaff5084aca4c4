package track

import (
	"context"
	"errors"
	"fmt"
	"slices"
)

type task struct {
	desc string
	work Work
}

// TaskManager runs named units of work, each in its own operation.
//
// Used through Scope (or Close), it also acts as a recovery hook: when the
// surrounding scope fails, every registered task is run and the registry is
// cleared.
type TaskManager struct {
	tracker *Tracker
	tasks   []task
}

// Add registers a task. It makes no remote call.
func (m *TaskManager) Add(desc string, work Work) {
	m.tasks = append(m.tasks, task{desc: desc, work: work})
}

// Len returns the number of registered tasks.
func (m *TaskManager) Len() int { return len(m.tasks) }

// Clear forgets all registered tasks.
func (m *TaskManager) Clear() { m.tasks = nil }

// Run creates one ready item per task before running any of them, then runs
// the tasks in order. A failing or panicking task does not stop the ones
// after it; their errors are joined. When a task panicked, the first panic is
// re-raised once every task has run. Run does not clear the registry.
func (m *TaskManager) Run(ctx context.Context) error {
	p, err := m.run(ctx)
	if p != nil {
		panic(p.value)
	}
	return err
}

// taskPanic holds a value recovered from a task.
type taskPanic struct {
	value any
}

// run is Run without the re-panic. The first recovered panic is returned.
func (m *TaskManager) run(ctx context.Context) (*taskPanic, error) {
	tasks := slices.Clone(m.tasks)

	ops := make([]*Operation, 0, len(tasks))
	for _, t := range tasks {
		op, err := m.tracker.NewOperation(ctx, t.desc, false)
		if err != nil {
			return nil, fmt.Errorf("track %q: %w", t.desc, err)
		}
		ops = append(ops, op)
	}

	var errs []error
	var first *taskPanic
	for i, t := range tasks {
		p, err := runTask(ctx, ops[i], t.work)
		if p != nil && first == nil {
			first = p
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", ops[i].Description(), err))
		}
	}
	return first, errors.Join(errs...)
}

// runTask runs one operation and turns a panic in work into an error.
func runTask(ctx context.Context, op *Operation, work Work) (p *taskPanic, err error) {
	defer func() {
		if r := recover(); r != nil {
			p = &taskPanic{value: r}
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return nil, op.Run(ctx, work)
}

// Close is the exit step of a scope that used the manager. When scopeErr is
// non-nil every registered task is run and the registry is cleared; the
// result joins scopeErr with the task errors. A nil scopeErr does nothing.
func (m *TaskManager) Close(ctx context.Context, scopeErr error) error {
	if scopeErr == nil {
		return nil
	}
	defer m.Clear()
	return errors.Join(scopeErr, m.Run(ctx))
}

// Scope runs fn and then Close with its error. A panic in fn also triggers
// the recovery run, after which fn's panic is re-raised. Task panics during
// that run are logged with the other task errors.
func (m *TaskManager) Scope(ctx context.Context, fn Work) error {
	finished := false
	defer func() {
		if finished {
			return
		}
		defer m.Clear()
		r := recover()
		if _, err := m.run(ctx); err != nil {
			m.tracker.logger.Error("recovery run failed", "err", err)
		}
		if r != nil {
			panic(r)
		}
	}()

	err := fn(ctx)
	finished = true
	return m.Close(ctx, err)
}
