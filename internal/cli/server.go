package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quiz-admin-service/internal/app"
	"quiz-admin-service/internal/config"
	"quiz-admin-service/internal/domain"
	filestore "quiz-admin-service/internal/infra/file"
	"quiz-admin-service/internal/infra/memory"
	pgstore "quiz-admin-service/internal/infra/postgres"
	redisstore "quiz-admin-service/internal/infra/redis"
	"quiz-admin-service/internal/session"
	transport "quiz-admin-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz administration server",
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

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
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

	storageDir := cfg.Storage.Dir
	if storageDir == "" {
		storageDir = "data"
	}
	if err := os.MkdirAll(storageDir, 0o755); err != nil {
		return err
	}

	var bank app.QuestionBank
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		bank = pgstore.NewQuestionBank(pool)
	} else {
		fileBank, err := filestore.OpenQuestionBank(storageDir)
		if err != nil {
			return err
		}
		bank = fileBank
	}

	var source app.QuestionSource
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		cacheTTL := config.Duration(cfg.Quiz.CacheTTL, 10*time.Minute)
		source = redisstore.NewQuestionCache(client, bank, cacheTTL)
	}

	scores, err := filestore.OpenScoreLedger(storageDir)
	if err != nil {
		return err
	}
	perms, err := filestore.OpenPermissionMap(storageDir)
	if err != nil {
		return err
	}
	users := memory.NewUserDirectory(defaultUsers())

	service := app.NewService(bank, source, scores, perms, users)

	quizCfg := session.Config{
		QuestionSeconds: cfg.Quiz.QuestionSeconds,
		RevealDelay:     config.Duration(cfg.Quiz.RevealDelay, time.Second),
	}
	restHandler := transport.NewHandler(service)
	quizHandler := transport.NewQuizHandler(service, quizCfg)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	restHandler.Register(mux)
	mux.HandleFunc("/quiz", quizHandler.ServeQuiz)

	server := &http.Server{
		Addr:              ":" + finalPort,
		Handler:           mux,
		ReadHeaderTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quiz admin service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// defaultUsers seeds the in-memory directory; teachers add more accounts at
// runtime through /add-user.
func defaultUsers() []domain.User {
	return []domain.User{
		{Username: "student1", Password: "1234", Role: domain.RoleStudent},
		{Username: "teacher1", Password: "admin", Role: domain.RoleTeacher},
	}
}
