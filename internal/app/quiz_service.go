package app

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"timed-quiz/internal/domain"
	"timed-quiz/internal/logger"
)

// CategoryRepository loads question sets (from cache/backing store).
type CategoryRepository interface {
	GetCategory(ctx context.Context, categoryID string) (domain.Category, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
}

// QuizService binds a Session to the question bank. It is the host side of the
// quiz: it picks time limits, clamps navigation to the loaded questions and
// grades the answer map. The Session itself never sees question content.
type QuizService struct {
	session        *Session
	categories     CategoryRepository
	defaultMinutes int
	log            *logger.Logger

	mu           sync.RWMutex
	category     *domain.Category
	runID        string
	limitSeconds int
}

func NewQuizService(session *Session, categories CategoryRepository, defaultMinutes int, log *logger.Logger) *QuizService {
	if log == nil {
		log = logger.Discard()
	}
	return &QuizService{
		session:        session,
		categories:     categories,
		defaultMinutes: defaultMinutes,
		log:            log.With("quiz"),
	}
}

// Session exposes the underlying controller for subscribers.
func (s *QuizService) Session() *Session {
	return s.session
}

// Categories lists the question sets available to start.
func (s *QuizService) Categories(ctx context.Context) ([]domain.Category, error) {
	return s.categories.ListCategories(ctx)
}

// Start loads a category and begins a new timed run for it.
func (s *QuizService) Start(ctx context.Context, categoryID string) (domain.QuizState, error) {
	category, err := s.categories.GetCategory(ctx, categoryID)
	if err != nil {
		return s.session.State(), err
	}

	minutes := category.TimeLimitMinutes
	if minutes <= 0 {
		minutes = s.defaultMinutes
	}

	// The run is published before the session starts so that a completion
	// snapshot (a zero limit completes at once) already grades against it.
	runID := uuid.NewString()
	s.mu.Lock()
	prevCategory, prevRunID, prevLimit := s.category, s.runID, s.limitSeconds
	s.category = &category
	s.runID = runID
	s.limitSeconds = minutes * 60
	s.mu.Unlock()

	state, err := s.session.StartQuiz(category.ID, minutes)
	if err != nil {
		s.mu.Lock()
		if s.runID == runID {
			s.category, s.runID, s.limitSeconds = prevCategory, prevRunID, prevLimit
		}
		s.mu.Unlock()
		return state, err
	}
	s.log.Info("run %s: %q with %d questions, %d min", runID, category.Title, len(category.Questions), minutes)
	return state, nil
}

// RunID identifies the current run, empty when none was started.
func (s *QuizService) RunID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.runID
}

// Category returns the question set of the current run.
func (s *QuizService) Category() (domain.Category, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.category == nil {
		return domain.Category{}, false
	}
	return *s.category, true
}

// Current returns the question under the cursor together with its zero-based
// position and the question count.
func (s *QuizService) Current() (domain.Question, int, int, error) {
	category, ok := s.Category()
	state := s.session.State()
	if !ok || !state.HasCategory() {
		return domain.Question{}, 0, 0, domain.ErrNoQuiz
	}
	total := len(category.Questions)
	if total == 0 {
		return domain.Question{}, 0, 0, domain.ErrCategoryNotFound
	}
	pos := min(state.CurrentQuestionIndex, total-1)
	return category.Questions[pos], pos, total, nil
}

// Select records option (zero-based) for the current question.
func (s *QuizService) Select(option int) (domain.QuizState, error) {
	if !s.session.State().IsQuizActive {
		return s.session.State(), domain.ErrQuizNotActive
	}
	question, _, _, err := s.Current()
	if err != nil {
		return s.session.State(), err
	}
	if option < 0 || option >= len(question.Options) {
		return s.session.State(), domain.ErrAnswerOutOfRange
	}
	return s.session.SelectAnswer(question.ID, option)
}

// Next moves forward unless the cursor is already on the last question.
func (s *QuizService) Next() (domain.QuizState, error) {
	_, pos, total, err := s.Current()
	if err != nil {
		return s.session.State(), err
	}
	if pos >= total-1 {
		return s.session.State(), nil
	}
	return s.session.NextQuestion()
}

func (s *QuizService) Previous() (domain.QuizState, error) {
	return s.session.PreviousQuestion()
}

// Submit completes the run and grades it.
func (s *QuizService) Submit() (domain.QuizResult, error) {
	if _, err := s.session.CompleteQuiz(); err != nil {
		return domain.QuizResult{}, err
	}
	return s.Result()
}

// Exit abandons the run and returns the session to idle.
func (s *QuizService) Exit() (domain.QuizState, error) {
	s.mu.Lock()
	s.category = nil
	s.runID = ""
	s.limitSeconds = 0
	s.mu.Unlock()
	return s.session.ResetQuiz()
}

// Result grades the current answer map against the category's answer key.
func (s *QuizService) Result() (domain.QuizResult, error) {
	s.mu.RLock()
	category := s.category
	runID := s.runID
	limit := s.limitSeconds
	s.mu.RUnlock()

	state := s.session.State()
	if category == nil || !state.HasCategory() {
		return domain.QuizResult{}, domain.ErrNoQuiz
	}

	result := Grade(*category, state)
	result.RunID = runID
	result.Elapsed = time.Duration(max(0, limit-state.TimeRemaining)) * time.Second
	return result, nil
}

// Grade scores selected answers against a category. Answers for unknown
// question IDs are ignored.
func Grade(category domain.Category, state domain.QuizState) domain.QuizResult {
	result := domain.QuizResult{
		CategoryID:    category.ID,
		Total:         len(category.Questions),
		TimeRemaining: state.TimeRemaining,
		TimedOut:      state.IsQuizCompleted && state.TimeRemaining == 0,
	}
	for _, q := range category.Questions {
		selected, ok := state.SelectedAnswers[q.ID]
		if !ok {
			continue
		}
		result.Answered++
		if selected == q.Correct {
			result.Correct++
		}
	}
	if result.Total > 0 {
		result.Percent = result.Correct * 100 / result.Total
	}
	return result
}
