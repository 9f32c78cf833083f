// Command worker runs a standalone render worker against a shared redis
// backend. Deploy it next to the web server to move Manim rendering off
// the serving host.
package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/keithhb33/MathVis/internal/config"
	"github.com/keithhb33/MathVis/internal/events"
	"github.com/keithhb33/MathVis/internal/logger"
	"github.com/keithhb33/MathVis/internal/notify"
	"github.com/keithhb33/MathVis/internal/queue"
	"github.com/keithhb33/MathVis/internal/registry"
	"github.com/keithhb33/MathVis/internal/render"
	"github.com/keithhb33/MathVis/internal/worker"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file found, using environment variables")
	}
	logger.Init()

	cfg := config.Load()
	if cfg.RedisAddr == "" {
		logger.Fatal("REDIS_ADDR is required: a standalone worker needs a shared registry and queue")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	store := registry.NewRedisStore(client)
	q := queue.NewRedisQueue(client, cfg.QueueName, int64(cfg.QueueCapacity))
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

	// Completion webhooks fire from whichever process finishes the job,
	// so the worker registers the notifier too.
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

	logger.Infof("Render worker consuming %s with %d workers", cfg.QueueName, cfg.MaxWorkers)

	<-ctx.Done()
	logger.Info("Shutting down...")
	wg.Wait()
	logger.Info("Stopped")
}
