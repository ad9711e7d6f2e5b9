package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"timed-quiz/internal/app"
	"timed-quiz/internal/domain"
	"timed-quiz/internal/logger"
)

// Host drives a QuizService from line commands and renders the quiz as text.
type Host struct {
	service *app.QuizService
	log     *logger.Logger

	mu       sync.Mutex
	view     View
	category string // category of the run the quiz view shows
}

func NewHost(service *app.QuizService, log *logger.Logger) *Host {
	if log == nil {
		log = logger.Discard()
	}
	return &Host{service: service, log: log.With("console")}
}

// View reports the screen currently shown.
func (h *Host) View() View {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.view
}

func (h *Host) setView(v View) {
	h.mu.Lock()
	h.view = v
	h.mu.Unlock()
}

func (h *Host) showRun(v View, category string) {
	h.mu.Lock()
	h.view = v
	h.category = category
	h.mu.Unlock()
}

// Run reads commands from in until EOF, quit or ctx cancellation and writes
// every render to out. Timer expiry switches to the results view on its own.
func (h *Host) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	updates, cancel := h.service.Session().Subscribe()
	defer cancel()

	send := make(chan string, 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	// single writer so renders from commands and ticks never interleave
	go func() {
		defer close(writerDone)
		failed := false
		for msg := range send {
			if failed {
				continue
			}
			if _, err := fmt.Fprintln(out, msg); err != nil {
				// keep draining so senders never block
				h.log.Error("write failed: %v", err)
				failed = true
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				msg := h.onUpdate(update)
				if msg == "" {
					continue
				}
				select {
				case send <- msg:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-closeSignals:
				return
			}
		}
		readErr <- scanner.Err()
	}()

	h.setView(ViewHome)
	send <- h.home(ctx)

	var err error
loop:
	for {
		select {
		case <-ctx.Done():
			err = ctx.Err()
			break loop
		case rerr := <-readErr:
			err = rerr
			break loop
		case line := <-lines:
			msg, quit := h.handle(ctx, line)
			if msg != "" {
				send <- msg
			}
			if quit {
				break loop
			}
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
	return err
}

// onUpdate reacts to state pushed by the session. Only timer-driven changes
// produce output here; command results are rendered by handle. Snapshots still
// queued from an earlier run are recognised against the live session state
// and ignored.
func (h *Host) onUpdate(state domain.QuizState) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.view != ViewQuiz || state.CurrentCategory != h.category {
		return ""
	}
	live := h.service.Session().State()
	if live.CurrentCategory != h.category {
		return ""
	}
	if state.IsQuizCompleted && !state.IsQuizActive {
		if !live.IsQuizCompleted {
			return ""
		}
		h.view = ViewResults
		result, err := h.service.Result()
		if err != nil {
			return "error: " + err.Error()
		}
		return renderResult(result)
	}
	if state.IsQuizActive && live.IsQuizActive && announceAt(state.TimeRemaining) {
		return renderTimer(state)
	}
	return ""
}

func announceAt(remaining int) bool {
	return remaining > 0 && (remaining <= 10 || remaining%60 == 0)
}

func (h *Host) handle(ctx context.Context, line string) (string, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", false
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]
	if _, err := strconv.Atoi(cmd); err == nil {
		cmd, args = "answer", fields
	}

	switch cmd {
	case "quit", "q":
		_, _ = h.service.Exit()
		return "bye", true
	case "help", "?":
		return helpText, false
	case "list", "ls":
		return h.home(ctx), false
	case "start":
		if len(args) != 1 {
			return "usage: start <category>", false
		}
		state, err := h.service.Start(ctx, args[0])
		if err != nil {
			return "error: " + err.Error(), false
		}
		if state.IsQuizCompleted {
			// no time on the clock, straight to the results
			h.showRun(ViewResults, state.CurrentCategory)
			result, err := h.service.Result()
			if err != nil {
				return "error: " + err.Error(), false
			}
			return renderResult(result), false
		}
		h.showRun(ViewQuiz, state.CurrentCategory)
		return h.question(), false
	case "exit", "home":
		if _, err := h.service.Exit(); err != nil {
			return "error: " + err.Error(), false
		}
		h.showRun(ViewHome, "")
		return h.home(ctx), false
	}

	if h.View() != ViewQuiz {
		return "no quiz running, type: start <category>", false
	}

	switch cmd {
	case "answer", "a":
		if len(args) != 1 {
			return "usage: answer <n>", false
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return "usage: answer <n>", false
		}
		if _, err := h.service.Select(n - 1); err != nil {
			return h.commandError(err), false
		}
		return h.question(), false
	case "next", "n":
		if _, err := h.service.Next(); err != nil {
			return h.commandError(err), false
		}
		return h.question(), false
	case "prev", "p":
		if _, err := h.service.Previous(); err != nil {
			return h.commandError(err), false
		}
		return h.question(), false
	case "submit":
		h.setView(ViewResults)
		result, err := h.service.Submit()
		if err != nil {
			return "error: " + err.Error(), false
		}
		return renderResult(result), false
	default:
		return fmt.Sprintf("unknown command %q, type help", cmd), false
	}
}

func (h *Host) commandError(err error) string {
	switch {
	case errors.Is(err, domain.ErrAnswerOutOfRange):
		return "no such option"
	case errors.Is(err, domain.ErrQuizNotActive):
		return "the quiz is over, type submit or home"
	default:
		return "error: " + err.Error()
	}
}

func (h *Host) home(ctx context.Context) string {
	categories, err := h.service.Categories(ctx)
	if err != nil {
		h.log.Warn("list categories: %v", err)
		return "error: " + err.Error()
	}
	return renderCategories(categories)
}

func (h *Host) question() string {
	q, pos, total, err := h.service.Current()
	if err != nil {
		return "error: " + err.Error()
	}
	return renderQuestion(q, pos, total, h.service.Session().State())
}
