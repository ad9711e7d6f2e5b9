package console

import (
	"fmt"
	"strings"

	"timed-quiz/internal/app"
	"timed-quiz/internal/domain"
)

const helpText = `commands:
  list               show categories
  start <category>   start a timed quiz
  answer <n>         pick option n (a bare number works too)
  next | prev        move between questions
  submit             finish and show the score
  exit | home        abandon the quiz
  quit               leave`

func renderCategories(categories []domain.Category) string {
	if len(categories) == 0 {
		return "no categories available"
	}
	var b strings.Builder
	b.WriteString("categories:\n")
	for _, c := range categories {
		fmt.Fprintf(&b, "  %-14s %s (%d questions, %d min)\n", c.ID, c.Title, len(c.Questions), c.TimeLimitMinutes)
	}
	b.WriteString("type: start <category>")
	return b.String()
}

func renderQuestion(q domain.Question, pos, total int, state domain.QuizState) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] question %d/%d\n%s\n", app.FormatTime(state.TimeRemaining), pos+1, total, q.Prompt)
	selected, answered := state.Answer(q.ID)
	for i, opt := range q.Options {
		mark := " "
		if answered && selected == i {
			mark = "*"
		}
		fmt.Fprintf(&b, " %s %d) %s\n", mark, i+1, opt)
	}
	fmt.Fprintf(&b, "answered %d/%d", len(state.SelectedAnswers), total)
	return b.String()
}

func renderResult(r domain.QuizResult) string {
	var b strings.Builder
	if r.TimedOut {
		b.WriteString("time is up!\n")
	}
	fmt.Fprintf(&b, "score: %d/%d (%d%%)\n", r.Correct, r.Total, r.Percent)
	fmt.Fprintf(&b, "answered %d, time used %s, time left %s\n",
		r.Answered, app.FormatTime(int(r.Elapsed.Seconds())), app.FormatTime(r.TimeRemaining))
	b.WriteString("type: start <category> to play again, or home")
	return b.String()
}

func renderTimer(state domain.QuizState) string {
	return fmt.Sprintf("[%s] remaining", app.FormatTime(state.TimeRemaining))
}
