package console

// View is the screen the host is showing.
type View int

const (
	ViewHome View = iota
	ViewQuiz
	ViewResults
)

func (v View) String() string {
	switch v {
	case ViewQuiz:
		return "quiz"
	case ViewResults:
		return "results"
	default:
		return "home"
	}
}
