package test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/filesystem"

	"github.com/keithhb33/MathVis/internal/api/v1/handlers"
	"github.com/keithhb33/MathVis/internal/api/v1/middleware"
	v1 "github.com/keithhb33/MathVis/internal/api/v1/routes"
	"github.com/keithhb33/MathVis/internal/notify"
	"github.com/keithhb33/MathVis/internal/services"
	"github.com/keithhb33/MathVis/internal/web"
	"github.com/keithhb33/MathVis/internal/worker"
	"github.com/keithhb33/MathVis/pkg/api/v1/client"
)

// testClientTimeout is the timeout for test API client requests
const testClientTimeout = 5 * time.Second

// testPollIntervalMs keeps the result page poller fast in tests
const testPollIntervalMs = 25

// SetupServer configures the test environment with a real API server
func SetupServer(env *TestEnvironment) {
	// Create Fiber app the way the server binary does
	env.App = fiber.New(fiber.Config{
		DisableStartupMessage: true,
		Views:                 web.Engine(),
	})
	env.App.Use(middleware.Logger())
	env.App.Use("/static", filesystem.New(filesystem.Config{Root: http.FS(web.Static())}))
	env.App.Static("/videos", env.VideoDir)

	// Create services
	renderService := services.NewRenderService(env.Store, env.Queue)
	previewService := services.NewPreviewService()

	// Register routes
	v1.Register(env.App,
		handlers.NewPagesHandler(renderService, testPollIntervalMs),
		handlers.NewJobsHandler(renderService),
		handlers.NewPreviewHandler(previewService),
	)

	// Create test server using adaptor to convert Fiber app to http.Handler
	env.Server = httptest.NewServer(adaptor.FiberApp(env.App))

	// Create API client with test configuration
	apiClient, err := client.NewClient(&client.Options{
		BaseURL: env.Server.URL,
		Timeout: testClientTimeout,
	})
	env.Require().NoError(err, "Failed to create API client")
	env.APIClient = apiClient
}

// SetupWorker starts a render pool and the webhook notifier against the
// environment's registry and queue. Events for jobs owned by other
// environments resolve to unknown ids there and are dropped, so notifiers
// from concurrent environments never cross.
func SetupWorker(env *TestEnvironment) {
	notify.NewNotifier(env.Store).Register()

	ctx, cancel := context.WithCancel(context.Background())
	env.workerCancel = cancel
	env.workerWG.Add(1)
	go worker.NewPool(worker.Config{
		Store:    env.Store,
		Queue:    env.Queue,
		Renderer: env.renderer,
		VideoDir: env.VideoDir,
	}).Run(ctx, &env.workerWG)
}
