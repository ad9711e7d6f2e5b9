package domain

import "time"

// QuizState is the full state of one timed quiz. Values are replaced on every
// transition; the answer map of a published state is never written again.
type QuizState struct {
	CurrentCategory      string      `json:"currentCategory,omitempty"` // empty when no quiz is running
	CurrentQuestionIndex int         `json:"currentQuestionIndex"`
	SelectedAnswers      map[int]int `json:"selectedAnswers"`
	TimeRemaining        int         `json:"timeRemaining"` // seconds
	IsQuizActive         bool        `json:"isQuizActive"`
	IsQuizCompleted      bool        `json:"isQuizCompleted"`
	Score                int         `json:"score"` // reserved, graded by the host
}

// InitialQuizState returns the idle state.
func InitialQuizState() QuizState {
	return QuizState{SelectedAnswers: map[int]int{}}
}

// HasCategory reports whether a category has been started.
func (s QuizState) HasCategory() bool {
	return s.CurrentCategory != ""
}

// Answer returns the option selected for a question.
func (s QuizState) Answer(questionID int) (int, bool) {
	idx, ok := s.SelectedAnswers[questionID]
	return idx, ok
}

// Question is a multiple-choice question with a single correct option.
type Question struct {
	ID      int      `json:"id" yaml:"id"`
	Prompt  string   `json:"prompt" yaml:"prompt"`
	Options []string `json:"options" yaml:"options"`
	Correct int      `json:"correct" yaml:"correct"`
}

// Category is a named question set with its own time limit.
type Category struct {
	ID               string     `json:"id" yaml:"id"`
	Title            string     `json:"title" yaml:"title"`
	Description      string     `json:"description" yaml:"description"`
	TimeLimitMinutes int        `json:"timeLimitMinutes" yaml:"timeLimitMinutes"`
	Questions        []Question `json:"questions" yaml:"questions"`
}

// QuizResult is the host-side grading of a finished quiz.
type QuizResult struct {
	RunID         string        `json:"runId"`
	CategoryID    string        `json:"categoryId"`
	Correct       int           `json:"correct"`
	Answered      int           `json:"answered"`
	Total         int           `json:"total"`
	Percent       int           `json:"percent"`
	TimeRemaining int           `json:"timeRemaining"`
	Elapsed       time.Duration `json:"elapsed"`
	TimedOut      bool          `json:"timedOut"`
}
