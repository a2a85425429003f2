// Package executor applies plans to the browser through a Host.
package executor

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/lotas/tabdedupe/internal/applog"
	"github.com/lotas/tabdedupe/internal/types"
)

// AppendIndex places moved tabs at the end of the destination window.
const AppendIndex = -1

// Host is the subset of the browser tab API the executor mutates.
type Host interface {
	MoveTabs(ctx context.Context, tabIDs []int, windowID, index int) error
	CloseTabs(ctx context.Context, tabIDs []int) error
	FocusWindow(ctx context.Context, windowID int) error
}

// BatchError is implemented by host errors that name the IDs a batch call
// failed on. The other IDs of that call were applied.
type BatchError interface {
	error
	FailedIDs() []int
}

// ActionHook is told about every tracked operation that changed something.
type ActionHook interface {
	ActionSucceeded(ctx context.Context, op types.Operation)
}

// PartialFailureError reports the tab IDs a plan could not act on. The
// outcome returned alongside it still lists what did succeed.
type PartialFailureError struct {
	Op     types.Operation
	Failed map[int]error
}

func (e *PartialFailureError) Error() string {
	ids := e.ids()
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf("tab %d: %v", id, e.Failed[id]))
	}
	return fmt.Sprintf("%s: %d of the tabs failed: %s", e.Op, len(ids), strings.Join(parts, "; "))
}

// Unwrap exposes the per-tab errors to errors.Is and errors.As.
func (e *PartialFailureError) Unwrap() []error {
	ids := e.ids()
	errs := make([]error, 0, len(ids))
	for _, id := range ids {
		errs = append(errs, e.Failed[id])
	}
	return errs
}

func (e *PartialFailureError) ids() []int {
	ids := make([]int, 0, len(e.Failed))
	for id := range e.Failed {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Executor runs plans. Hook may be nil.
type Executor struct {
	Host Host
	Hook ActionHook
}

// New returns an Executor for host.
func New(host Host, hook ActionHook) *Executor {
	return &Executor{Host: host, Hook: hook}
}

// Execute applies p. An empty plan returns a no-op outcome without calling
// the host. Per-tab failures are collected into a *PartialFailureError; a
// vanished tab never stops the rest of the plan.
func (e *Executor) Execute(ctx context.Context, p types.Plan) (types.Outcome, error) {
	out := types.Outcome{Operation: p.Operation}
	if p.Empty() {
		out.NoOp = true
		return out, nil
	}

	failed := make(map[int]error)

	if len(p.Close) > 0 {
		out.Closed = e.apply(ctx, p.Close, failed, func(ids []int) error {
			return e.Host.CloseTabs(ctx, ids)
		})
	}
	if len(p.Move) > 0 {
		if p.DestinationWindowID == 0 {
			for _, id := range p.Move {
				failed[id] = fmt.Errorf("move tab %d: no destination window", id)
			}
		} else {
			out.Moved = e.apply(ctx, p.Move, failed, func(ids []int) error {
				return e.Host.MoveTabs(ctx, ids, p.DestinationWindowID, AppendIndex)
			})
		}
	}

	if p.DestinationWindowID != 0 && (len(p.Move) == 0 || len(out.Moved) > 0) {
		if err := e.Host.FocusWindow(ctx, p.DestinationWindowID); err != nil {
			out.FocusError = err.Error()
			applog.Error("executor.focus", err, "window", p.DestinationWindowID)
		}
	}

	if e.Hook != nil && p.Operation.Tracked() && out.Changed() {
		e.Hook.ActionSucceeded(ctx, p.Operation)
	}

	applog.Info("executor.done", "op", p.Operation, "closed", len(out.Closed), "moved", len(out.Moved), "failed", len(failed))

	if len(failed) == 0 {
		return out, nil
	}
	out.Failed = make(map[int]string, len(failed))
	for id, err := range failed {
		out.Failed[id] = err.Error()
	}
	return out, &PartialFailureError{Op: p.Operation, Failed: failed}
}

// apply tries the whole batch first. When the host names the IDs it failed
// on, the rest count as done; otherwise it falls back to one call per ID.
// It returns the IDs that succeeded.
func (e *Executor) apply(ctx context.Context, ids []int, failed map[int]error, call func([]int) error) []int {
	err := call(ids)
	if err == nil {
		return append([]int(nil), ids...)
	}

	var batch BatchError
	if errors.As(err, &batch) && len(batch.FailedIDs()) > 0 {
		bad := make(map[int]bool, len(batch.FailedIDs()))
		for _, id := range batch.FailedIDs() {
			bad[id] = true
		}
		var ok []int
		for _, id := range ids {
			if bad[id] {
				failed[id] = err
				continue
			}
			ok = append(ok, id)
		}
		return ok
	}

	var ok []int
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			failed[id] = err
			continue
		}
		if err := call([]int{id}); err != nil {
			failed[id] = err
			continue
		}
		ok = append(ok, id)
	}
	return ok
}
