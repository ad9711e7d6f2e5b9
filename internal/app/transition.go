package app

import "timed-quiz/internal/domain"

// Transition applies one action to a quiz state and returns the next state.
// It is total: unknown actions return the input unchanged.
func Transition(state domain.QuizState, action domain.Action) domain.QuizState {
	switch a := action.(type) {
	case domain.StartQuiz:
		next := domain.InitialQuizState()
		next.CurrentCategory = a.CategoryID
		next.TimeRemaining = a.TimeLimitMinutes * 60
		next.IsQuizActive = true
		return next
	case domain.SelectAnswer:
		answers := make(map[int]int, len(state.SelectedAnswers)+1)
		for qid, idx := range state.SelectedAnswers {
			answers[qid] = idx
		}
		answers[a.QuestionID] = a.AnswerIndex
		state.SelectedAnswers = answers
		return state
	case domain.NextQuestion:
		state.CurrentQuestionIndex++
		return state
	case domain.PreviousQuestion:
		state.CurrentQuestionIndex = max(0, state.CurrentQuestionIndex-1)
		return state
	case domain.UpdateTimer:
		state.TimeRemaining = max(0, state.TimeRemaining-1)
		return state
	case domain.CompleteQuiz:
		state.IsQuizActive = false
		state.IsQuizCompleted = true
		return state
	case domain.ResetQuiz:
		return domain.InitialQuizState()
	default:
		return state
	}
}
