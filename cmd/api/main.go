package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"studysphere/internal/adapter"
	"studysphere/internal/adapter/llmgen"
	"studysphere/internal/adapter/offline"
	"studysphere/internal/adapter/rag"
	"studysphere/internal/cache"
	"studysphere/internal/config"
	"studysphere/internal/domain"
	"studysphere/internal/handler"
	"studysphere/internal/logger"
	"studysphere/internal/middleware"
	"studysphere/internal/port"
	"studysphere/internal/service"
	"studysphere/internal/util"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

// requestLogger logs every HTTP request with a per-request correlation id.
func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		requestID := util.NewULID()
		c.Locals("request_id", requestID)
		c.Set("X-Request-ID", requestID)

		err := c.Next()

		logger.Get().Info("HTTP Request",
			zap.String("request_id", requestID),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("duration", time.Since(start)),
			zap.String("ip", c.IP()),
			zap.String("user_agent", c.Get("User-Agent")),
		)
		return err
	}
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	// Redis is optional: without it responses are simply not cached.
	var responseCache domain.Cache
	if cfg.Redis.Address != "" {
		redisClient, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			appLogger.Warn("Redis unavailable, response caching disabled", zap.Error(err))
		} else {
			appLogger.Info("Connected to Redis", zap.String("address", cfg.Redis.Address))
			responseCache = adapter.NewRedisCacheAdapter(redisClient)
		}
	}

	// Local LLM is optional as well; the cascade skips that rung when nil.
	var answerGenerator domain.AnswerGenerator
	if cfg.LLM.ServerURL != "" {
		gen, err := llmgen.NewOllamaGenerator(cfg.LLM.ServerURL, cfg.LLM.Model, appLogger)
		if err != nil {
			appLogger.Warn("Local LLM unavailable", zap.Error(err))
		} else {
			appLogger.Info("Local LLM initialized",
				zap.String("server_url", cfg.LLM.ServerURL),
				zap.String("model", cfg.LLM.Model))
			answerGenerator = gen
		}
	}

	var upstream port.UpstreamClient
	if cfg.Upstream.Configured() {
		upstream = rag.NewClient(cfg.Upstream, appLogger)
		appLogger.Info("Upstream client initialized",
			zap.String("base_url", cfg.Upstream.BaseURL),
			zap.String("knowledge_box", cfg.Upstream.KnowledgeBox))
	} else {
		appLogger.Warn("RAG_KEY or KB_ID not set, uploads run in simulation mode")
	}

	generator := offline.NewGenerator()
	respCache := service.NewStudyCacheService(responseCache, cfg.Cache.ResponseTTL)
	documentService := service.NewDocumentService(upstream, cfg)
	studyService := service.NewStudyService(upstream, generator, answerGenerator, respCache, cfg)
	documentHandler := handler.NewDocumentHandler(documentService, studyService)

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  20 * time.Second,
		BodyLimit:    10 * 1024 * 1024,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(requestLogger())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
		MaxAge:       300,
	}))
	app.Use(recover.New())

	apiGroup := app.Group("/api")
	apiGroup.Post("/upload", documentHandler.Upload)
	apiGroup.Post("/summarize", documentHandler.Summarize)
	apiGroup.Post("/quiz", documentHandler.Quiz)
	apiGroup.Post("/question", documentHandler.Question)

	go func() {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port))
		if err := app.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		appLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}
	appLogger.Info("Server exited gracefully")
}
