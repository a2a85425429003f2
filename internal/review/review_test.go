package review

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lotas/tabdedupe/internal/types"
)

type memStore struct {
	st      types.ReviewState
	loadErr error
}

func (m *memStore) LoadReviewState(context.Context) (types.ReviewState, error) {
	return m.st, m.loadErr
}

func (m *memStore) SaveReviewState(_ context.Context, st types.ReviewState) error {
	m.st = st
	return nil
}

type fakeOpener struct {
	urls []string
	err  error
}

func (f *fakeOpener) OpenTab(_ context.Context, url string) error {
	f.urls = append(f.urls, url)
	return f.err
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func TestPromptOnFifthAction(t *testing.T) {
	ctx := context.Background()
	c := &clock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	store := &memStore{}
	tr := NewTracker(store, "https://example.com/review", WithClock(c.now))

	for i := 1; i <= 4; i++ {
		prompt, err := tr.Record(ctx)
		if err != nil {
			t.Fatalf("Record #%d: %v", i, err)
		}
		if prompt {
			t.Fatalf("prompted after %d actions", i)
		}
	}
	prompt, err := tr.Record(ctx)
	if err != nil || !prompt {
		t.Fatalf("fifth action: prompt=%v err=%v", prompt, err)
	}
	if !store.st.LastPromptAt.Equal(c.t) {
		t.Errorf("last prompt = %v, want %v", store.st.LastPromptAt, c.t)
	}
	if !tr.TakePending() || tr.TakePending() {
		t.Error("TakePending should report the prompt exactly once")
	}

	c.t = c.t.Add(6 * 24 * time.Hour)
	if prompt, _ := tr.Record(ctx); prompt {
		t.Error("prompted again within seven days")
	}

	c.t = c.t.Add(24 * time.Hour)
	if prompt, _ := tr.Record(ctx); !prompt {
		t.Error("expected a prompt once seven days passed")
	}
}

func TestNoPromptWhenSuppressed(t *testing.T) {
	ctx := context.Background()
	for name, st := range map[string]types.ReviewState{
		"dismissed": {SuccessfulActions: 10, Dismissed: true},
		"given":     {SuccessfulActions: 10, Given: true},
		"disabled":  {SuccessfulActions: 10, Disabled: true},
	} {
		tr := NewTracker(&memStore{st: st}, "")
		if prompt, err := tr.Record(ctx); err != nil || prompt {
			t.Errorf("%s: prompt=%v err=%v", name, prompt, err)
		}
	}
}

func TestDismissAndDisable(t *testing.T) {
	ctx := context.Background()
	store := &memStore{st: types.ReviewState{SuccessfulActions: 4}}
	tr := NewTracker(store, "")

	if err := tr.Disable(ctx); err != nil {
		t.Fatalf("Disable: %v", err)
	}
	if prompt, _ := tr.Record(ctx); prompt {
		t.Error("disabled tracker prompted")
	}
	if store.st.SuccessfulActions != 5 {
		t.Errorf("count = %d, want 5", store.st.SuccessfulActions)
	}

	store.st = types.ReviewState{}
	if err := tr.Dismiss(ctx); err != nil {
		t.Fatalf("Dismiss: %v", err)
	}
	if !store.st.Dismissed {
		t.Error("dismissed flag not saved")
	}
}

func TestAccept(t *testing.T) {
	ctx := context.Background()
	store := &memStore{}
	tr := NewTracker(store, "https://example.com/review")

	opener := &fakeOpener{}
	if err := tr.Accept(ctx, opener); err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if len(opener.urls) != 1 || opener.urls[0] != "https://example.com/review" {
		t.Errorf("opened %v", opener.urls)
	}
	if !store.st.Given {
		t.Error("given flag not saved")
	}

	store.st = types.ReviewState{}
	if err := tr.Accept(ctx, &fakeOpener{err: errors.New("offline")}); err == nil {
		t.Error("expected error when the page cannot be opened")
	}
	if store.st.Given {
		t.Error("review marked given although the page did not open")
	}
}

func TestCustomThreshold(t *testing.T) {
	tr := NewTracker(&memStore{}, "", WithThreshold(2), WithInterval(time.Hour))
	ctx := context.Background()
	tr.Record(ctx)
	if prompt, _ := tr.Record(ctx); !prompt {
		t.Error("expected prompt at second action with threshold 2")
	}
}

func TestActionSucceededSwallowsErrors(t *testing.T) {
	tr := NewTracker(&memStore{loadErr: errors.New("db locked")}, "")
	tr.ActionSucceeded(context.Background(), types.OpKeepFirst)
}
