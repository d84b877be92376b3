package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"social-style-service/internal/app"
	"social-style-service/internal/config"
	"social-style-service/internal/domain"
	"social-style-service/internal/infra/memory"
	"social-style-service/internal/infra/mongodb"
	pgloader "social-style-service/internal/infra/postgres"
	redisstore "social-style-service/internal/infra/redis"
	"social-style-service/internal/logger"
	transport "social-style-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
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
	if logLevel == "" && cfg.Log.Level != "" {
		logger.Setup(logger.Config{Level: cfg.Log.Level})
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	deps, cleanup, err := buildDependencies(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	service := app.NewStyleService(deps.sessions, deps.submissions, deps.questionnaires)
	gin.SetMode(gin.ReleaseMode)
	router := transport.NewRouter(service, cfg.Server.PublicURL)

	server := &http.Server{
		Addr:        ":" + finalPort,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		// No write timeout: live view sockets stay open; each socket write has its own deadline.
	}

	go func() {
		slog.Info("starting social style service", "port", finalPort, "store", cfg.StoreBackend())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("failed to start server", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		slog.Info("shutting down server")
	case <-ctx.Done():
		slog.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

type dependencies struct {
	sessions       app.SessionStore
	submissions    app.SubmissionStore
	questionnaires app.QuestionnaireRepository
}

// buildDependencies connects the configured backends. cleanup releases every opened connection.
func buildDependencies(ctx context.Context, cfg config.Config) (dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	fail := func(err error) (dependencies, func(), error) {
		cleanup()
		return dependencies{}, func() {}, err
	}

	var loader app.QuestionnaireLoader = memory.NewStaticQuestionnaireLoader(domain.DefaultQuestionnaire())
	if cfg.Postgres.URL != "" {
		if err := RunMigrations(ctx, cfg.Postgres.URL); err != nil {
			return fail(fmt.Errorf("migrate: %w", err))
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return fail(fmt.Errorf("connect postgres: %w", err))
		}
		closers = append(closers, pool.Close)
		loader = pgloader.NewQuestionnaireLoader(pool)
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		closers = append(closers, func() { _ = redisClient.Close() })
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fail(fmt.Errorf("ping redis: %w", err))
		}
	}

	deps := dependencies{}
	questionnaireTTL := config.TTLDuration(cfg.Questionnaire.TTL, 10*time.Minute)
	if redisClient != nil {
		deps.questionnaires = redisstore.NewQuestionnaireRepository(redisClient, loader, questionnaireTTL)
	} else {
		deps.questionnaires = memory.NewQuestionnaireRepository(loader, questionnaireTTL)
	}

	switch backend := cfg.StoreBackend(); backend {
	case config.BackendMemory:
		deps.sessions = memory.NewSessionStore()
		deps.submissions = memory.NewSubmissionStore()
	case config.BackendRedis:
		if redisClient == nil {
			return fail(fmt.Errorf("redis store selected but redis.addr is empty"))
		}
		deps.sessions = redisstore.NewSessionStore(redisClient)
		deps.submissions = redisstore.NewSubmissionStore(redisClient)
	case config.BackendMongo:
		if cfg.Mongo.URI == "" {
			return fail(fmt.Errorf("mongo store selected but mongo.uri is empty"))
		}
		client, err := mongodb.Connect(ctx, cfg.Mongo.URI)
		if err != nil {
			return fail(err)
		}
		closers = append(closers, func() { _ = client.Disconnect(context.Background()) })
		dbName := cfg.Mongo.Database
		if dbName == "" {
			dbName = "social_style"
		}
		db := client.Database(dbName)
		if err := mongodb.EnsureIndexes(ctx, db); err != nil {
			return fail(fmt.Errorf("mongo indexes: %w", err))
		}
		deps.sessions = mongodb.NewSessionStore(db)
		deps.submissions = mongodb.NewSubmissionStore(db)
	default:
		return fail(fmt.Errorf("unknown store backend %q", backend))
	}
	return deps, cleanup, nil
}
