package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"timed-quiz/internal/app"
	"timed-quiz/internal/config"
	"timed-quiz/internal/domain"
	"timed-quiz/internal/transport/console"
)

// NewPlayCmd builds the CLI subcommand that runs an interactive quiz.
func NewPlayCmd(configPath *string) *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a timed quiz in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd.Context(), *configPath, category)
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "start this category right away")
	return cmd
}

func runPlay(ctx context.Context, configPath, category string) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	d, err := loadDeps(ctx, configPath)
	if err != nil {
		return err
	}
	defer d.Close()

	session := app.NewSession(
		app.WithTickInterval(config.TTLDuration(d.cfg.Quiz.TickInterval, time.Second)),
		app.WithLogger(d.log),
		app.WithCompletionHook(func(st domain.QuizState) {
			d.log.Debug("completion hook: category=%s answered=%d", st.CurrentCategory, len(st.SelectedAnswers))
		}),
	)
	defer session.Close()

	service := app.NewQuizService(session, d.categories, d.cfg.TimeLimit(), d.log)
	host := console.NewHost(service, d.log)

	var in io.Reader = os.Stdin
	if category != "" {
		in = io.MultiReader(strings.NewReader("start "+category+"\n"), os.Stdin)
	}
	if err := host.Run(ctx, in, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
