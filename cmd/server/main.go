package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"trail-backend/internal/config"
	"trail-backend/internal/database"
	"trail-backend/internal/handlers"
	"trail-backend/internal/logger"
	"trail-backend/internal/middleware"
	"trail-backend/internal/repository"
	"trail-backend/internal/router"
	"trail-backend/internal/services"
	"trail-backend/internal/websocket"
	"trail-backend/internal/wizard"
	"trail-backend/internal/worker"
)

func main() {
	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()

	zlog, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("✗ Logger initialization failed: %v", err)
	}
	defer zlog.Sync()
	zlog.Info("starting Trail backend", "env", cfg.Env, "llm_provider", cfg.LLMProvider)

	// ──── Step 2: Course Storage (PostgreSQL or in-memory) ────
	var (
		courseRepo services.CourseRepository
		pool       *pgxpool.Pool
	)
	if cfg.DatabaseURL != "" {
		pool, err = database.NewPostgresPool(context.Background(), cfg.DatabaseURL, database.PostgresOptions{
			MaxConns: int32(cfg.DBMaxConns),
			MinConns: int32(cfg.DBMinConns),
		}, zlog)
		if err != nil {
			zlog.Fatal("PostgreSQL connection failed", "error", err.Error())
		}
		defer pool.Close()

		if err := database.RunMigrations(context.Background(), pool, cfg.MigrationsDir, zlog); err != nil {
			zlog.Fatal("database migration failed", "error", err.Error())
		}
		courseRepo = repository.NewCourseRepo(pool)
	} else {
		courseRepo = repository.NewMemoryCourseRepo()
		zlog.Warn("DATABASE_URL not set, courses are kept in memory")
	}

	// ──── Step 3: Sessions, Queue and Pub/Sub (Redis or in-memory) ────
	sessionTTL := time.Duration(cfg.SessionTTLMinutes) * time.Minute
	var (
		wizardStore services.SessionStore[wizard.State]
		quizStore   services.SessionStore[services.QuizSession]
		queue       worker.Queue
		queueRedis  *redis.Client
		pubsubRedis *redis.Client
	)
	if cfg.RedisURL != "" {
		redisClients, err := database.NewRedisClients(cfg.RedisURL, database.RedisOptions{
			QueueWait: worker.DefaultPollWait,
			Workers:   cfg.WorkerCount,
			SessionDB: cfg.RedisSessionDB,
		}, zlog)
		if err != nil {
			zlog.Fatal("Redis connection failed", "error", err.Error())
		}
		defer redisClients.Close()

		queueRedis, pubsubRedis = redisClients.Queue, redisClients.PubSub
		wizardStore = repository.NewRedisJSONStore[wizard.State](redisClients.Sessions, "wizard_session", sessionTTL)
		quizStore = repository.NewRedisJSONStore[services.QuizSession](redisClients.Sessions, "quiz_session", sessionTTL)
		queue = worker.NewRedisQueue(queueRedis)
	} else {
		wizardStore = repository.NewMemoryJSONStore[wizard.State](sessionTTL)
		quizStore = repository.NewMemoryJSONStore[services.QuizSession](sessionTTL)
		queue = worker.NewMemoryQueue(100)
		zlog.Warn("REDIS_URL not set, sessions and the job queue are in memory")
	}

	// ──── Step 4: Initialize LLM Client ────
	llmClient, closeLLM := newLLMClient(cfg, zlog)
	defer closeLLM()

	llmTimeout := time.Duration(cfg.LLMTimeoutSeconds) * time.Second
	var generatorClient services.LLMClient
	if llmClient != nil {
		generatorClient = services.NewResilientClient(llmClient, zlog, services.ResilienceOptions{
			Timeout:        llmTimeout,
			MaxRetries:     cfg.LLMMaxRetries,
			Backoff:        time.Second,
			MaxBackoff:     10 * time.Second,
			ConcurrentReqs: cfg.LLMConcurrentRequests,
		})
	}

	var videos services.VideoResolver
	if cfg.VideoEnrichment {
		videos = services.NewYouTubeService(zlog)
		zlog.Info("YouTube video enrichment enabled")
	}

	// ──── Step 5: Initialize Services ────
	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret, 30*24*time.Hour)
	wsHub := websocket.NewHub(pubsubRedis, jwtAuth.ParseOwnerToken, cfg.FrontendURL, zlog)

	generator := services.NewCourseGenerator(generatorClient, zlog, services.GeneratorOptions{
		ProviderName: cfg.LLMProviderName(),
		Temperature:  cfg.LLMTemperature,
		MaxTokens:    cfg.LLMMaxTokens,
	}, videos)
	library := services.NewCourseLibrary(courseRepo)
	quizService := services.NewQuizService(quizStore, courseRepo)
	wizardService := services.NewWizardService(wizardStore, courseRepo, queue, wsHub, generator, zlog)

	// ──── Step 6: Initialize Handlers ────
	authHandler := handlers.NewAuthHandler(jwtAuth)
	courseHandler := handlers.NewCourseHandler(generator, library, quizService)
	wizardHandler := handlers.NewWizardHandler(wizardService)
	quizHandler := handlers.NewQuizHandler(quizService)

	// ──── Step 7: Start Job Worker Pool ────
	// Every attempt may run the full timeout, plus backoff between attempts.
	jobTimeout := llmTimeout*time.Duration(cfg.LLMMaxRetries+1) + time.Minute
	workerPool := worker.NewPool(queue, wizardService, queueRedis, zlog, cfg.WorkerCount, jobTimeout)
	workerPool.Start()

	// ──── Step 8: Start HTTP Server ────
	authLimiter := middleware.NewRateLimiter(10, time.Minute)
	generateLimiter := middleware.NewRateLimiter(cfg.GenerationRateLimit, time.Minute)

	r := router.New(
		jwtAuth,
		authLimiter,
		generateLimiter,
		authHandler,
		courseHandler,
		wizardHandler,
		quizHandler,
		wsHub,
		cfg.FrontendURL,
	)

	server := &http.Server{
		Addr:        fmt.Sprintf(":%s", cfg.Port),
		Handler:     r,
		ReadTimeout: 15 * time.Second,
		// POST /api/generate holds the connection for the whole LLM call.
		WriteTimeout: jobTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		zlog.Info("shutting down")
		workerPool.Stop()
		authLimiter.Stop()
		generateLimiter.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	if !generator.Configured() {
		zlog.Warn("LLM API key not configured, generation requests will fail", "provider", cfg.LLMProviderName())
	}
	zlog.Info("Trail backend ready",
		"api", fmt.Sprintf("http://localhost:%s/api", cfg.Port),
		"ws", fmt.Sprintf("ws://localhost:%s/api/ws", cfg.Port),
	)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		zlog.Fatal("server error", "error", err.Error())
	}
}

// newLLMClient builds the provider client. It returns nil when the provider
// has no key; the process still starts and reports per request.
func newLLMClient(cfg *config.Config, zlog *logger.Logger) (services.LLMClient, func()) {
	noop := func() {}
	if cfg.LLMAPIKey() == "" {
		return nil, noop
	}

	switch cfg.LLMProvider {
	case "gemini":
		client, err := services.NewGeminiClient(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel, zlog)
		if err != nil {
			zlog.Error("Gemini client initialization failed", "error", err.Error())
			return nil, noop
		}
		zlog.Info("Gemini client initialized", "model", cfg.GeminiModel)
		return client, client.Close
	default:
		zlog.Info("OpenAI client initialized", "model", cfg.OpenAIModel, "base_url", cfg.OpenAIBaseURL)
		return services.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, zlog), noop
	}
}
