package domain

// Action is one input to the quiz transition function. The set of variants is
// closed: only types in this package implement it.
type Action interface {
	Kind() string
	isAction()
}

const (
	KindStartQuiz        = "START_QUIZ"
	KindSelectAnswer     = "SELECT_ANSWER"
	KindNextQuestion     = "NEXT_QUESTION"
	KindPreviousQuestion = "PREVIOUS_QUESTION"
	KindUpdateTimer      = "UPDATE_TIMER"
	KindCompleteQuiz     = "COMPLETE_QUIZ"
	KindResetQuiz        = "RESET_QUIZ"
)

// StartQuiz begins a fresh session for a category.
type StartQuiz struct {
	CategoryID       string
	TimeLimitMinutes int
}

// SelectAnswer records (or replaces) the chosen option for a question.
type SelectAnswer struct {
	QuestionID  int
	AnswerIndex int
}

type NextQuestion struct{}

type PreviousQuestion struct{}

// UpdateTimer is one countdown tick.
type UpdateTimer struct{}

type CompleteQuiz struct{}

type ResetQuiz struct{}

func (StartQuiz) Kind() string        { return KindStartQuiz }
func (SelectAnswer) Kind() string     { return KindSelectAnswer }
func (NextQuestion) Kind() string     { return KindNextQuestion }
func (PreviousQuestion) Kind() string { return KindPreviousQuestion }
func (UpdateTimer) Kind() string      { return KindUpdateTimer }
func (CompleteQuiz) Kind() string     { return KindCompleteQuiz }
func (ResetQuiz) Kind() string        { return KindResetQuiz }

func (StartQuiz) isAction()        {}
func (SelectAnswer) isAction()     {}
func (NextQuestion) isAction()     {}
func (PreviousQuestion) isAction() {}
func (UpdateTimer) isAction()      {}
func (CompleteQuiz) isAction()     {}
func (ResetQuiz) isAction()        {}
