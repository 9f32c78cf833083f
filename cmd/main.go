package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	fiber "github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/keithhb33/MathVis/internal/api/v1/handlers"
	"github.com/keithhb33/MathVis/internal/api/v1/middleware"
	v1 "github.com/keithhb33/MathVis/internal/api/v1/routes"
	"github.com/keithhb33/MathVis/internal/config"
	"github.com/keithhb33/MathVis/internal/events"
	"github.com/keithhb33/MathVis/internal/logger"
	"github.com/keithhb33/MathVis/internal/notify"
	"github.com/keithhb33/MathVis/internal/queue"
	"github.com/keithhb33/MathVis/internal/registry"
	"github.com/keithhb33/MathVis/internal/render"
	"github.com/keithhb33/MathVis/internal/services"
	"github.com/keithhb33/MathVis/internal/web"
	"github.com/keithhb33/MathVis/internal/worker"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file found, using environment variables")
	}
	logger.Init()

	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, q, err := buildBackends(cfg)
	if err != nil {
		logger.Fatalf("Configuring backends failed: %v", err)
	}
	defer func() {
		if err := q.Close(); err != nil {
			logger.Errorf("Closing render queue failed: %v", err)
		}
		if err := store.Close(); err != nil {
			logger.Errorf("Closing job store failed: %v", err)
		}
	}()

	if err := os.MkdirAll(cfg.VideoDir, 0o755); err != nil {
		logger.Fatalf("Creating video directory %s failed: %v", cfg.VideoDir, err)
	}

	events.Start(ctx)
	notify.NewNotifier(store).Register()

	var wg sync.WaitGroup

	wg.Add(1)
	pool := worker.NewPool(worker.Config{
		Store:         store,
		Queue:         q,
		Renderer:      render.NewManimRenderer(cfg.PythonBin),
		VideoDir:      cfg.VideoDir,
		MaxWorkers:    cfg.MaxWorkers,
		RenderTimeout: cfg.RenderTimeout,
	})
	go pool.Run(ctx, &wg)

	wg.Add(1)
	janitor := registry.NewJanitor(store, cfg.RetentionWindow, cfg.SweepInterval)
	go janitor.Run(ctx, &wg)

	renderService := services.NewRenderService(store, q)

	app := fiber.New(fiber.Config{
		Views:        web.Engine(),
		ErrorHandler: customErrorHandler,
	})
	app.Use(middleware.Logger())
	app.Use("/static", filesystem.New(filesystem.Config{Root: http.FS(web.Static())}))
	app.Static("/videos", cfg.VideoDir)

	v1.Register(app,
		handlers.NewPagesHandler(renderService, cfg.PollIntervalMs),
		handlers.NewJobsHandler(renderService),
		handlers.NewPreviewHandler(services.NewPreviewService()),
	)

	go func() {
		if err := app.Listen(cfg.ListenAddr); err != nil {
			logger.Fatalf("Server stopped: %v", err)
		}
	}()
	logger.Infof("MathVis listening on %s", cfg.ListenAddr)

	<-ctx.Done()
	logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Errorf("Server shutdown failed: %v", err)
	}
	wg.Wait()
	logger.Info("Stopped")
}

// buildBackends picks the job store and render queue from the configuration:
// redis when REDIS_ADDR is set, postgres with an in-process queue when
// DATABASE_URL is set, fully in-memory otherwise.
func buildBackends(cfg *config.Config) (registry.Store, queue.Queue, error) {
	switch {
	case cfg.RedisAddr != "":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		logger.Infof("Using redis registry and queue at %s", cfg.RedisAddr)
		return registry.NewRedisStore(client), queue.NewRedisQueue(client, cfg.QueueName, int64(cfg.QueueCapacity)), nil
	case cfg.DatabaseURL != "":
		store, err := registry.NewPostgresStore(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Using postgres registry with in-process queue")
		return store, queue.NewMemoryQueue(cfg.QueueCapacity), nil
	default:
		logger.Info("Using in-memory registry and queue")
		return registry.NewMemoryStore(), queue.NewMemoryQueue(cfg.QueueCapacity), nil
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
