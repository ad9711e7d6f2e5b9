package app

import (
	"sync"
	"time"

	"timed-quiz/internal/domain"
	"timed-quiz/internal/logger"
)

const defaultTickInterval = time.Second

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithClock replaces the system clock, mainly for tests.
func WithClock(clock Clock) SessionOption {
	return func(s *Session) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithTickInterval changes how often the countdown ticks. Non-positive values keep one second.
func WithTickInterval(d time.Duration) SessionOption {
	return func(s *Session) {
		if d > 0 {
			s.interval = d
		}
	}
}

func WithLogger(l *logger.Logger) SessionOption {
	return func(s *Session) {
		if l != nil {
			s.log = l.With("session")
		}
	}
}

// WithCompletionHook registers fn to run once each time a quiz completes.
// Hooks run on the goroutine that caused the completion and must not call Close.
func WithCompletionHook(fn func(domain.QuizState)) SessionOption {
	return func(s *Session) {
		if fn != nil {
			s.hooks = append(s.hooks, fn)
		}
	}
}

// Session owns one quiz state and the countdown that drives it.
// Commands and ticks are serialized by mu, in arrival order.
type Session struct {
	clock    Clock
	interval time.Duration
	log      *logger.Logger
	hooks    []func(domain.QuizState)

	mu          sync.Mutex
	state       domain.QuizState
	closed      bool
	ticker      Ticker
	stopTick    chan struct{}
	generation  uint64
	subscribers map[chan domain.QuizState]struct{}

	wg sync.WaitGroup
}

func NewSession(opts ...SessionOption) *Session {
	s := &Session{
		clock:       SystemClock{},
		interval:    defaultTickInterval,
		log:         logger.Discard(),
		state:       domain.InitialQuizState(),
		subscribers: make(map[chan domain.QuizState]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current snapshot. The answer map must be treated as read-only.
func (s *Session) State() domain.QuizState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// StartQuiz discards any previous run and starts the countdown for a category.
func (s *Session) StartQuiz(categoryID string, timeLimitMinutes int) (domain.QuizState, error) {
	return s.dispatch(domain.StartQuiz{CategoryID: categoryID, TimeLimitMinutes: timeLimitMinutes})
}

// SelectAnswer records answerIndex for questionID, replacing an earlier choice.
func (s *Session) SelectAnswer(questionID, answerIndex int) (domain.QuizState, error) {
	return s.dispatch(domain.SelectAnswer{QuestionID: questionID, AnswerIndex: answerIndex})
}

// NextQuestion advances without an upper bound; callers clamp against the question count.
func (s *Session) NextQuestion() (domain.QuizState, error) {
	return s.dispatch(domain.NextQuestion{})
}

func (s *Session) PreviousQuestion() (domain.QuizState, error) {
	return s.dispatch(domain.PreviousQuestion{})
}

func (s *Session) CompleteQuiz() (domain.QuizState, error) {
	return s.dispatch(domain.CompleteQuiz{})
}

func (s *Session) ResetQuiz() (domain.QuizState, error) {
	return s.dispatch(domain.ResetQuiz{})
}

// Close stops the countdown and waits for the ticker goroutine to exit.
// Subscriber channels are closed and later commands return ErrSessionClosed.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.stopTickerLocked()
	for ch := range s.subscribers {
		delete(s.subscribers, ch)
		close(ch)
	}
	s.mu.Unlock()

	s.wg.Wait()
	s.log.Debug("closed")
	return nil
}

// Subscribe returns a channel that receives the current state followed by every
// later state. Slow readers miss intermediate snapshots instead of blocking the session.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *Session) Subscribe() (<-chan domain.QuizState, func()) {
	ch := make(chan domain.QuizState, 8)

	s.mu.Lock()
	ch <- s.state
	if s.closed {
		close(ch)
		s.mu.Unlock()
		return ch, func() {}
	}
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Session) dispatch(action domain.Action) (domain.QuizState, error) {
	s.mu.Lock()
	if s.closed {
		state := s.state
		s.mu.Unlock()
		return state, domain.ErrSessionClosed
	}
	completed := s.applyLocked(action, "command")
	state := s.state
	s.broadcastLocked()
	s.mu.Unlock()

	if completed {
		s.notifyCompleted(state)
	}
	return state, nil
}

// tick handles one countdown event. Ticks from a stopped ticker are dropped.
func (s *Session) tick(generation uint64) {
	s.mu.Lock()
	if s.closed || s.ticker == nil || generation != s.generation {
		s.mu.Unlock()
		return
	}
	completed := s.applyLocked(domain.UpdateTimer{}, "timer")
	state := s.state
	s.broadcastLocked()
	s.mu.Unlock()

	if completed {
		s.notifyCompleted(state)
	}
}

// applyLocked runs the transition, then re-evaluates the countdown. It reports
// whether this call moved the quiz into the completed state.
func (s *Session) applyLocked(action domain.Action, source string) bool {
	wasCompleted := s.state.IsQuizCompleted
	s.state = Transition(s.state, action)

	switch action.(type) {
	case domain.StartQuiz:
		// a new run always gets a fresh ticker
		wasCompleted = false
		s.stopTickerLocked()
		s.log.Info("quiz started category=%s remaining=%s", s.state.CurrentCategory, FormatTime(s.state.TimeRemaining))
	case domain.ResetQuiz:
		s.log.Info("quiz reset")
	default:
		s.log.Debug("%s applied index=%d remaining=%d", action.Kind(), s.state.CurrentQuestionIndex, s.state.TimeRemaining)
	}

	switch {
	case !s.state.IsQuizActive:
		s.stopTickerLocked()
	case s.state.TimeRemaining == 0:
		s.stopTickerLocked()
		s.state = Transition(s.state, domain.CompleteQuiz{})
		source = "timer"
	case s.state.TimeRemaining < 0:
		// a negative limit never counts down and never completes on its own
		s.stopTickerLocked()
	case s.ticker == nil:
		s.startTickerLocked()
	}

	completed := !wasCompleted && s.state.IsQuizCompleted
	if completed {
		s.log.Info("quiz completed category=%s by=%s answered=%d", s.state.CurrentCategory, source, len(s.state.SelectedAnswers))
	}
	return completed
}

func (s *Session) startTickerLocked() {
	s.generation++
	generation := s.generation
	ticker := s.clock.NewTicker(s.interval)
	stop := make(chan struct{})
	s.ticker = ticker
	s.stopTick = stop

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C():
				s.tick(generation)
			}
		}
	}()
}

func (s *Session) stopTickerLocked() {
	if s.ticker == nil {
		return
	}
	s.ticker.Stop()
	close(s.stopTick)
	s.ticker = nil
	s.stopTick = nil
	s.generation++
}

func (s *Session) broadcastLocked() {
	for ch := range s.subscribers {
		select {
		case ch <- s.state:
		default:
			// drop the oldest snapshot so the newest always lands
			select {
			case <-ch:
			default:
			}
			ch <- s.state
		}
	}
}

func (s *Session) notifyCompleted(state domain.QuizState) {
	for _, fn := range s.hooks {
		fn(state)
	}
}
