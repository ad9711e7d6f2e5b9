package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"

	"timed-quiz/internal/app"
	"timed-quiz/internal/config"
	"timed-quiz/internal/domain"
	"timed-quiz/internal/infra/file"
	"timed-quiz/internal/infra/memory"
	pgloader "timed-quiz/internal/infra/postgres"
	rediscache "timed-quiz/internal/infra/redis"
	"timed-quiz/internal/logger"
)

// deps holds the wired question bank and the resources behind it.
type deps struct {
	cfg        config.Config
	log        *logger.Logger
	categories app.CategoryRepository
	closers    []func()
}

func (d *deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}

func loadDeps(ctx context.Context, path string) (*deps, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	d := &deps{cfg: cfg, log: logger.New(os.Stderr, logLevel(cfg))}

	// Loader priority: Postgres, then a YAML question bank, then the built-in sample.
	var loader memory.CategoryLoader = memory.NewStaticCategoryLoader(sampleCategories())
	switch {
	case cfg.Postgres.URL != "":
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		d.closers = append(d.closers, pool.Close)
		loader = pgloader.NewCategoryLoader(pool)
		d.log.Info("question bank: postgres")
	case cfg.Quiz.QuestionBank != "":
		loader = file.NewCategoryLoader(cfg.Quiz.QuestionBank)
		d.log.Info("question bank: %s", cfg.Quiz.QuestionBank)
	default:
		d.log.Info("question bank: built-in sample")
	}

	ttl := config.TTLDuration(cfg.Cache.TTL, 10*time.Minute)
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		d.closers = append(d.closers, func() { _ = client.Close() })
		d.categories = rediscache.NewCategoryRepository(client, loader, ttl)
	} else {
		d.categories = memory.NewCategoryRepository(loader, ttl)
	}
	return d, nil
}

// logLevel resolves the log level, letting LOG_LEVEL override the config file.
func logLevel(cfg config.Config) logger.Level {
	level := cfg.Log.Level
	if env := os.Getenv("LOG_LEVEL"); env != "" {
		level = env
	}
	return logger.ParseLevel(level)
}

// sampleCategories is the question bank used when nothing else is configured.
func sampleCategories() map[string]domain.Category {
	return map[string]domain.Category{
		"general": {
			ID:               "general",
			Title:            "General knowledge",
			Description:      "A short warm-up",
			TimeLimitMinutes: 2,
			Questions: []domain.Question{
				{ID: 1, Prompt: "What is 2 + 2?", Options: []string{"3", "4", "5"}, Correct: 1},
				{ID: 2, Prompt: "Which planet is known as the red planet?", Options: []string{"Venus", "Mars", "Jupiter"}, Correct: 1},
				{ID: 3, Prompt: "How many minutes are in an hour?", Options: []string{"60", "100", "24"}, Correct: 0},
			},
		},
		"go": {
			ID:               "go",
			Title:            "Go basics",
			Description:      "Language fundamentals",
			TimeLimitMinutes: 3,
			Questions: []domain.Question{
				{ID: 1, Prompt: "Which keyword starts a goroutine?", Options: []string{"async", "go", "spawn"}, Correct: 1},
				{ID: 2, Prompt: "What is the zero value of a map?", Options: []string{"an empty map", "nil", "panic"}, Correct: 1},
				{ID: 3, Prompt: "Which statement waits on several channel operations?", Options: []string{"switch", "select", "for"}, Correct: 1},
				{ID: 4, Prompt: "Which package provides Mutex?", Options: []string{"sync", "atomic", "runtime"}, Correct: 0},
			},
		},
	}
}
