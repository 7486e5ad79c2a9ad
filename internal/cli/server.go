package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"quiz-grading-service/internal/app"
	"quiz-grading-service/internal/config"
	"quiz-grading-service/internal/domain"
	"quiz-grading-service/internal/infra/memory"
	"quiz-grading-service/internal/infra/postgres"
	infraredis "quiz-grading-service/internal/infra/redis"
	"quiz-grading-service/internal/logging"
	transport "quiz-grading-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the grading server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, logger); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	service, cleanup, err := buildService(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      transport.NewRouter(service, logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info("starting grading service", zap.String("port", finalPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to start server", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info("shutting down server")
	case <-ctx.Done():
		logger.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// buildService picks Postgres and Redis when configured and falls back to the
// in-memory demo data otherwise.
func buildService(ctx context.Context, cfg config.Config, logger *zap.Logger) (*app.GradingService, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		closers = append(closers, func() { _ = redisClient.Close() })
	}

	var loader memory.ConfigLoader = memory.NewStaticConfigLoader(sampleQuizzes())
	var grades app.GradebookRepository = memory.NewStaticGradebook(sampleCourses())
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		closers = append(closers, pool.Close)
		loader = postgres.NewConfigLoader(pool)
		grades = postgres.NewGradebookLoader(pool)
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, config.TTLDuration(cfg.Redis.TTL, 10*time.Minute))
	attemptTTL := config.TTLDuration(cfg.Attempt.TTL, 24*time.Hour)

	var quizRepo app.QuizRepository
	var attempts app.AttemptRepository
	if redisClient != nil {
		quizRepo = infraredis.NewQuizRepository(redisClient, loader, quizTTL, logger)
		attempts = infraredis.NewAttemptStore(redisClient, attemptTTL)
	} else {
		quizRepo = memory.NewQuizRepository(loader, quizTTL)
		attempts = memory.NewAttemptStore()
	}

	return app.NewGradingService(quizRepo, attempts, grades, logger), cleanup, nil
}

// sampleQuizzes provides a legacy-shaped demo quiz; Postgres-backed loading replaces it in production.
func sampleQuizzes() map[string]any {
	return map[string]any{
		"quiz-1": map[string]any{
			"id":            "quiz-1",
			"title":         "Capitals",
			"gradingConfig": map[string]any{"enabled": true, "passingScore": 60, "showScore": true},
			"pages": []any{
				map[string]any{
					"id":    "p1",
					"title": "Europe",
					"questions": []any{
						map[string]any{
							"id":            "q1",
							"type":          "multiple-choice",
							"prompt":        "What is the capital of France?",
							"options":       map[string]any{"a": "Lyon", "b": "Paris", "c": "Nice"},
							"correctAnswer": "b",
						},
						map[string]any{
							"id":             "q2",
							"type":           "fill-in-the-blank",
							"prompt":         "{{de}} is the capital of Germany and {{it}} of Italy.",
							"correctAnswers": []any{"Berlin", "Rome"},
						},
					},
				},
			},
		},
	}
}

func sampleCourses() map[string]domain.GradeNode {
	forty := 40.0
	return map[string]domain.GradeNode{
		"course-1": {
			ID:   "course-1",
			Name: "Geography",
			Kind: domain.NodeCategory,
			Children: []domain.GradeNode{
				{ID: "homework", Name: "Homework", Kind: domain.NodeCategory, Weight: &forty, Children: []domain.GradeNode{
					{ID: "quiz-1", Name: "Capitals", Kind: domain.NodeItem},
				}},
				{ID: "final", Name: "Final exam", Kind: domain.NodeItem},
			},
		},
	}
}
