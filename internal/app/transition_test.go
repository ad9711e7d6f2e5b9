package app_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"timed-quiz/internal/app"
	"timed-quiz/internal/domain"
)

// bogusAction satisfies domain.Action but is not one of the known variants.
type bogusAction struct {
	domain.ResetQuiz
}

func (bogusAction) Kind() string { return "BOGUS" }

func populatedState() domain.QuizState {
	return domain.QuizState{
		CurrentCategory:      "cat-a",
		CurrentQuestionIndex: 3,
		SelectedAnswers:      map[int]int{1: 2, 4: 0},
		TimeRemaining:        42,
		IsQuizActive:         true,
	}
}

func TestTransitionUnknownActionIsIdentity(t *testing.T) {
	for _, state := range []domain.QuizState{domain.InitialQuizState(), populatedState()} {
		require.Equal(t, state, app.Transition(state, bogusAction{}))
		require.Equal(t, state, app.Transition(state, nil))
	}
}

func TestTransitionStartQuiz(t *testing.T) {
	next := app.Transition(populatedState(), domain.StartQuiz{CategoryID: "cat-b", TimeLimitMinutes: 2})

	require.Equal(t, "cat-b", next.CurrentCategory)
	require.Equal(t, 120, next.TimeRemaining)
	require.True(t, next.IsQuizActive)
	require.False(t, next.IsQuizCompleted)
	require.Zero(t, next.CurrentQuestionIndex)
	require.Zero(t, next.Score)
	require.Empty(t, next.SelectedAnswers)
}

func TestTransitionSelectAnswerOverwrites(t *testing.T) {
	state := app.Transition(domain.InitialQuizState(), domain.SelectAnswer{QuestionID: 1, AnswerIndex: 2})
	again := app.Transition(state, domain.SelectAnswer{QuestionID: 1, AnswerIndex: 2})
	require.Equal(t, state, again)

	changed := app.Transition(again, domain.SelectAnswer{QuestionID: 1, AnswerIndex: 3})
	require.Len(t, changed.SelectedAnswers, 1)
	require.Equal(t, 3, changed.SelectedAnswers[1])

	// earlier snapshots keep their own map
	require.Equal(t, 2, again.SelectedAnswers[1])
}

func TestTransitionSelectAnswerLeavesOtherFields(t *testing.T) {
	before := populatedState()
	after := app.Transition(before, domain.SelectAnswer{QuestionID: 9, AnswerIndex: 1})

	require.Equal(t, before.CurrentCategory, after.CurrentCategory)
	require.Equal(t, before.CurrentQuestionIndex, after.CurrentQuestionIndex)
	require.Equal(t, before.TimeRemaining, after.TimeRemaining)
	require.Equal(t, before.IsQuizActive, after.IsQuizActive)
	require.Len(t, after.SelectedAnswers, 3)
	require.Len(t, before.SelectedAnswers, 2)
}

func TestTransitionNavigation(t *testing.T) {
	state := domain.InitialQuizState()

	state = app.Transition(state, domain.PreviousQuestion{})
	require.Zero(t, state.CurrentQuestionIndex)

	for i := 0; i < 12; i++ {
		state = app.Transition(state, domain.NextQuestion{})
	}
	// no upper bound in the model
	require.Equal(t, 12, state.CurrentQuestionIndex)

	state = app.Transition(state, domain.PreviousQuestion{})
	require.Equal(t, 11, state.CurrentQuestionIndex)
}

func TestTransitionUpdateTimerFloorsAtZero(t *testing.T) {
	state := domain.InitialQuizState()
	state.TimeRemaining = 1

	state = app.Transition(state, domain.UpdateTimer{})
	require.Zero(t, state.TimeRemaining)

	state = app.Transition(state, domain.UpdateTimer{})
	require.Zero(t, state.TimeRemaining)
}

func TestTransitionCompleteIsIdempotent(t *testing.T) {
	once := app.Transition(populatedState(), domain.CompleteQuiz{})
	require.False(t, once.IsQuizActive)
	require.True(t, once.IsQuizCompleted)
	require.Equal(t, 42, once.TimeRemaining)

	twice := app.Transition(once, domain.CompleteQuiz{})
	require.Equal(t, once, twice)
}

func TestTransitionResetReturnsIdle(t *testing.T) {
	completed := app.Transition(populatedState(), domain.CompleteQuiz{})
	for _, state := range []domain.QuizState{populatedState(), completed, domain.InitialQuizState()} {
		reset := app.Transition(state, domain.ResetQuiz{})
		require.Equal(t, domain.InitialQuizState(), reset)
		require.False(t, reset.HasCategory())
	}
}

func TestTransitionStartDiscardsPriorAnswers(t *testing.T) {
	state := app.Transition(domain.InitialQuizState(), domain.StartQuiz{CategoryID: "cat-a", TimeLimitMinutes: 1})
	state = app.Transition(state, domain.SelectAnswer{QuestionID: 1, AnswerIndex: 0})
	state = app.Transition(state, domain.SelectAnswer{QuestionID: 2, AnswerIndex: 1})
	state = app.Transition(state, domain.NextQuestion{})

	restarted := app.Transition(state, domain.StartQuiz{CategoryID: "cat-a", TimeLimitMinutes: 1})
	require.Empty(t, restarted.SelectedAnswers)
	require.Zero(t, restarted.CurrentQuestionIndex)
	require.Equal(t, 60, restarted.TimeRemaining)
}

func TestFormatTime(t *testing.T) {
	cases := map[int]string{
		0:    "00:00",
		59:   "00:59",
		60:   "01:00",
		61:   "01:01",
		600:  "10:00",
		3599: "59:59",
		3600: "60:00",
	}
	for in, want := range cases {
		require.Equal(t, want, app.FormatTime(in), "FormatTime(%d)", in)
	}
}
