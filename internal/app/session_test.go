package app_test

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"timed-quiz/internal/app"
	"timed-quiz/internal/domain"
)

func TestSessionRunsToCompletionOnTimer(t *testing.T) {
	clock := newManualClock()
	var completions atomic.Int32
	session := app.NewSession(
		app.WithClock(clock),
		app.WithCompletionHook(func(domain.QuizState) { completions.Add(1) }),
	)
	defer session.Close()

	updates, cancel := session.Subscribe()
	defer cancel()
	next(t, updates) // initial snapshot

	state, err := session.StartQuiz("cat-a", 1)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if state.TimeRemaining != 60 || !state.IsQuizActive {
		t.Fatalf("expected 60s active quiz, got %+v", state)
	}
	next(t, updates)

	tk := onlyTicker(t, clock)
	for i := 1; i < 60; i++ {
		st := fire(t, tk, updates)
		if st.TimeRemaining != 60-i || !st.IsQuizActive {
			t.Fatalf("tick %d: unexpected state %+v", i, st)
		}
	}

	final := fire(t, tk, updates)
	if final.IsQuizActive || !final.IsQuizCompleted || final.TimeRemaining != 0 {
		t.Fatalf("expected completed quiz after 60 ticks, got %+v", final)
	}
	if n := completions.Load(); n != 1 {
		t.Fatalf("expected exactly one completion, got %d", n)
	}
	if live := clock.live(); len(live) != 0 {
		t.Fatalf("expected ticker stopped after completion, %d running", len(live))
	}

	// a late tick must not touch the state
	select {
	case tk.ch <- time.Now():
	case <-time.After(20 * time.Millisecond):
	}
	if _, err := session.CompleteQuiz(); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if got := session.State(); got.TimeRemaining != 0 || !got.IsQuizCompleted {
		t.Fatalf("unexpected state after late tick %+v", got)
	}
	if n := completions.Load(); n != 1 {
		t.Fatalf("expected no second completion, got %d", n)
	}
}

func TestSessionRestartLeavesSingleTicker(t *testing.T) {
	clock := newManualClock()
	session := app.NewSession(app.WithClock(clock))
	defer session.Close()

	updates, cancel := session.Subscribe()
	defer cancel()
	next(t, updates)

	mustState(t)(session.StartQuiz("cat-a", 1))
	first := onlyTicker(t, clock)
	mustState(t)(session.ResetQuiz())
	if !first.isStopped() {
		t.Fatalf("reset must stop the ticker")
	}
	if live := clock.live(); len(live) != 0 {
		t.Fatalf("expected no running ticker while idle, got %d", len(live))
	}
	mustState(t)(session.StartQuiz("cat-a", 1))
	for i := 0; i < 3; i++ {
		next(t, updates)
	}

	if clock.created() != 2 {
		t.Fatalf("expected two tickers created, got %d", clock.created())
	}
	second := onlyTicker(t, clock)

	for i := 0; i < 5; i++ {
		fire(t, second, updates)
	}

	// the stale ticker either has no reader or its tick is discarded
	select {
	case first.ch <- time.Now():
	case <-time.After(20 * time.Millisecond):
	}
	if got := session.State().TimeRemaining; got != 55 {
		t.Fatalf("expected 55s after five ticks, got %d", got)
	}
}

func TestSessionStartWhileActiveRestartsCountdown(t *testing.T) {
	clock := newManualClock()
	session := app.NewSession(app.WithClock(clock))
	defer session.Close()

	updates, cancel := session.Subscribe()
	defer cancel()
	next(t, updates)

	mustState(t)(session.StartQuiz("cat-a", 2))
	next(t, updates)
	fire(t, onlyTicker(t, clock), updates)
	mustState(t)(session.SelectAnswer(1, 1))
	next(t, updates)

	state, err := session.StartQuiz("cat-b", 1)
	if err != nil {
		t.Fatalf("restart: %v", err)
	}
	next(t, updates)
	if state.CurrentCategory != "cat-b" || state.TimeRemaining != 60 || len(state.SelectedAnswers) != 0 {
		t.Fatalf("expected fresh run, got %+v", state)
	}
	if clock.created() != 2 {
		t.Fatalf("expected new ticker for new run, got %d created", clock.created())
	}
	st := fire(t, onlyTicker(t, clock), updates)
	if st.TimeRemaining != 59 {
		t.Fatalf("expected 59s, got %d", st.TimeRemaining)
	}
}

func TestSessionCompleteCommandStopsTicker(t *testing.T) {
	clock := newManualClock()
	var completed []domain.QuizState
	session := app.NewSession(
		app.WithClock(clock),
		app.WithCompletionHook(func(st domain.QuizState) { completed = append(completed, st) }),
	)
	defer session.Close()

	mustState(t)(session.StartQuiz("cat-a", 1))
	mustState(t)(session.SelectAnswer(7, 2))
	state := mustState(t)(session.CompleteQuiz())
	if state.IsQuizActive || !state.IsQuizCompleted {
		t.Fatalf("expected completed state, got %+v", state)
	}
	mustState(t)(session.CompleteQuiz())

	if len(completed) != 1 || completed[0].SelectedAnswers[7] != 2 {
		t.Fatalf("expected one completion carrying the answers, got %+v", completed)
	}
	if live := clock.live(); len(live) != 0 {
		t.Fatalf("expected ticker stopped, %d running", len(live))
	}
}

func TestSessionZeroTimeLimitCompletesImmediately(t *testing.T) {
	clock := newManualClock()
	var completions atomic.Int32
	session := app.NewSession(
		app.WithClock(clock),
		app.WithCompletionHook(func(domain.QuizState) { completions.Add(1) }),
	)
	defer session.Close()

	state := mustState(t)(session.StartQuiz("cat-a", 0))
	if state.IsQuizActive || !state.IsQuizCompleted {
		t.Fatalf("expected immediate completion, got %+v", state)
	}
	if clock.created() != 0 {
		t.Fatalf("expected no ticker for an exhausted timer, got %d", clock.created())
	}

	// a second run after a completed one still reports its own completion
	mustState(t)(session.StartQuiz("cat-a", 0))
	if n := completions.Load(); n != 2 {
		t.Fatalf("expected two completions, got %d", n)
	}
}

func TestSessionNegativeTimeLimitNeverTicks(t *testing.T) {
	clock := newManualClock()
	var completions atomic.Int32
	session := app.NewSession(
		app.WithClock(clock),
		app.WithCompletionHook(func(domain.QuizState) { completions.Add(1) }),
	)
	defer session.Close()

	state := mustState(t)(session.StartQuiz("cat-a", -1))
	if !state.IsQuizActive || state.IsQuizCompleted || state.TimeRemaining != -60 {
		t.Fatalf("expected an active run with -60s, got %+v", state)
	}
	if clock.created() != 0 {
		t.Fatalf("expected no ticker for a negative limit, got %d", clock.created())
	}

	state = mustState(t)(session.SelectAnswer(1, 0))
	if !state.IsQuizActive || clock.created() != 0 || completions.Load() != 0 {
		t.Fatalf("commands must not start the countdown, state=%+v tickers=%d", state, clock.created())
	}

	state = mustState(t)(session.CompleteQuiz())
	if !state.IsQuizCompleted || completions.Load() != 1 {
		t.Fatalf("expected explicit completion, got %+v", state)
	}
}

func TestSessionNavigationCommands(t *testing.T) {
	session := app.NewSession(app.WithClock(newManualClock()))
	defer session.Close()

	mustState(t)(session.StartQuiz("cat-a", 1))
	mustState(t)(session.PreviousQuestion())
	mustState(t)(session.NextQuestion())
	state := mustState(t)(session.NextQuestion())
	if state.CurrentQuestionIndex != 2 {
		t.Fatalf("expected index 2, got %d", state.CurrentQuestionIndex)
	}
	state = mustState(t)(session.PreviousQuestion())
	if state.CurrentQuestionIndex != 1 {
		t.Fatalf("expected index 1, got %d", state.CurrentQuestionIndex)
	}

	state = mustState(t)(session.ResetQuiz())
	if state.HasCategory() || state.CurrentQuestionIndex != 0 || len(state.SelectedAnswers) != 0 {
		t.Fatalf("expected idle state, got %+v", state)
	}
}

func TestSessionCloseStopsEverything(t *testing.T) {
	clock := newManualClock()
	session := app.NewSession(app.WithClock(clock))

	updates, _ := session.Subscribe()
	next(t, updates)
	mustState(t)(session.StartQuiz("cat-a", 1))
	next(t, updates)

	if err := session.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if live := clock.live(); len(live) != 0 {
		t.Fatalf("expected ticker stopped on close, %d running", len(live))
	}
	if _, ok := <-updates; ok {
		t.Fatalf("expected updates channel closed")
	}
	if _, err := session.NextQuestion(); !errors.Is(err, domain.ErrSessionClosed) {
		t.Fatalf("expected ErrSessionClosed, got %v", err)
	}
	if err := session.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func TestSessionWithSystemClock(t *testing.T) {
	done := make(chan domain.QuizState, 2)
	session := app.NewSession(
		app.WithTickInterval(time.Millisecond),
		app.WithCompletionHook(func(st domain.QuizState) { done <- st }),
	)
	defer session.Close()

	mustState(t)(session.StartQuiz("cat-a", 1))

	select {
	case st := <-done:
		if st.TimeRemaining != 0 || !st.IsQuizCompleted {
			t.Fatalf("unexpected completion state %+v", st)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("quiz did not complete, state %+v", session.State())
	}

	time.Sleep(20 * time.Millisecond)
	if len(done) != 0 {
		t.Fatalf("expected a single completion")
	}
}

func mustState(t *testing.T) func(domain.QuizState, error) domain.QuizState {
	t.Helper()
	return func(st domain.QuizState, err error) domain.QuizState {
		t.Helper()
		if err != nil {
			t.Fatalf("command failed: %v", err)
		}
		return st
	}
}
