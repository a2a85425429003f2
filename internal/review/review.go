// Package review decides when to ask the user for a store review.
package review

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lotas/tabdedupe/internal/applog"
	"github.com/lotas/tabdedupe/internal/types"
)

const (
	DefaultThreshold = 5
	DefaultInterval  = 7 * 24 * time.Hour
)

// Store persists the review state.
type Store interface {
	LoadReviewState(ctx context.Context) (types.ReviewState, error)
	SaveReviewState(ctx context.Context, st types.ReviewState) error
}

// Opener opens a URL in a new browser tab.
type Opener interface {
	OpenTab(ctx context.Context, url string) error
}

// Tracker counts successful actions and says when the prompt is due.
type Tracker struct {
	store     Store
	threshold int
	interval  time.Duration
	url       string
	now       func() time.Time

	mu      sync.Mutex
	pending bool
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithThreshold sets how many successful actions come before a prompt.
func WithThreshold(n int) Option {
	return func(t *Tracker) {
		if n > 0 {
			t.threshold = n
		}
	}
}

// WithInterval sets the minimum time between two prompts.
func WithInterval(d time.Duration) Option {
	return func(t *Tracker) {
		if d > 0 {
			t.interval = d
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// NewTracker returns a Tracker storing its state in store. reviewURL is
// opened by Accept.
func NewTracker(store Store, reviewURL string, opts ...Option) *Tracker {
	t := &Tracker{
		store:     store,
		threshold: DefaultThreshold,
		interval:  DefaultInterval,
		url:       reviewURL,
		now:       time.Now,
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// URL returns the review page address.
func (t *Tracker) URL() string {
	return t.url
}

// ActionSucceeded records one successful tracked action. It satisfies the
// executor's hook; errors are logged, never returned.
func (t *Tracker) ActionSucceeded(ctx context.Context, op types.Operation) {
	if _, err := t.Record(ctx); err != nil {
		applog.Error("review.record", err, "op", op)
	}
}

// Record increments the action count and reports whether the prompt should
// be shown now. When it returns true the prompt time is saved.
func (t *Tracker) Record(ctx context.Context) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	st, err := t.store.LoadReviewState(ctx)
	if err != nil {
		return false, err
	}
	st.SuccessfulActions++

	prompt := t.due(st)
	if prompt {
		st.LastPromptAt = t.now()
		t.pending = true
	}
	if err := t.store.SaveReviewState(ctx, st); err != nil {
		return false, err
	}
	if prompt {
		applog.Info("review.prompt", "actions", st.SuccessfulActions)
	}
	return prompt, nil
}

func (t *Tracker) due(st types.ReviewState) bool {
	if st.Dismissed || st.Given || st.Disabled {
		return false
	}
	if st.SuccessfulActions < t.threshold {
		return false
	}
	return st.LastPromptAt.IsZero() || t.now().Sub(st.LastPromptAt) >= t.interval
}

// TakePending reports whether a prompt became due since the last call, and
// clears it.
func (t *Tracker) TakePending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	p := t.pending
	t.pending = false
	return p
}

// State returns the stored review state.
func (t *Tracker) State(ctx context.Context) (types.ReviewState, error) {
	return t.store.LoadReviewState(ctx)
}

// Dismiss hides the prompt for good ("not now" in the dialog).
func (t *Tracker) Dismiss(ctx context.Context) error {
	return t.update(ctx, func(st *types.ReviewState) { st.Dismissed = true })
}

// Disable turns the prompt off ("never show again").
func (t *Tracker) Disable(ctx context.Context) error {
	return t.update(ctx, func(st *types.ReviewState) { st.Disabled = true })
}

// Accept opens the review page through opener and marks the review given.
func (t *Tracker) Accept(ctx context.Context, opener Opener) error {
	if err := opener.OpenTab(ctx, t.url); err != nil {
		return fmt.Errorf("open review page: %w", err)
	}
	return t.update(ctx, func(st *types.ReviewState) { st.Given = true })
}

func (t *Tracker) update(ctx context.Context, fn func(*types.ReviewState)) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	st, err := t.store.LoadReviewState(ctx)
	if err != nil {
		return err
	}
	fn(&st)
	t.pending = false
	return t.store.SaveReviewState(ctx, st)
}
