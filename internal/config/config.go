// Package config loads service configuration from the environment.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/keithhb33/MathVis/internal/logger"
)

// Defaults for the render service.
const (
	// DefaultListenAddr is the address the HTTP server binds to
	DefaultListenAddr = ":8080"
	// DefaultVideoDir is where finished render artifacts are written and served from
	DefaultVideoDir = "static/videos"
	// DefaultPythonBin is the interpreter used to run generated render scripts
	DefaultPythonBin = "python3"
	// DefaultMaxWorkers bounds concurrent renders
	DefaultMaxWorkers = 3
	// DefaultQueueCapacity is the buffer size of the in-memory render queue
	DefaultQueueCapacity = 100
	// DefaultQueueName is the redis stream name when redis is configured
	DefaultQueueName = "mathvis:render-jobs"
	// DefaultRenderTimeout bounds a single render so no job stays pending forever
	DefaultRenderTimeout = 10 * time.Minute
	// DefaultRetentionWindow is how long terminal job records are kept
	DefaultRetentionWindow = 24 * time.Hour
	// DefaultSweepInterval is how often the eviction janitor runs
	DefaultSweepInterval = 10 * time.Minute
	// DefaultPollIntervalMs is the status poll interval handed to the result page
	DefaultPollIntervalMs = 2000
)

// Config holds the configuration for the API server and the render worker.
type Config struct {
	ListenAddr string
	VideoDir   string

	// Renderer
	PythonBin     string
	RenderTimeout time.Duration
	MaxWorkers    int

	// Queue
	QueueName     string
	QueueCapacity int

	// Registry backends. If RedisAddr is set the redis store and queue are
	// used; else if DatabaseURL is set the postgres store is used; otherwise
	// everything runs in memory.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	DatabaseURL   string

	// Retention
	RetentionWindow time.Duration
	SweepInterval   time.Duration

	// Client protocol tunables
	PollIntervalMs int
}

// Load reads the configuration from environment variables, falling back to
// the defaults above.
func Load() *Config {
	return &Config{
		ListenAddr:      GetEnv("LISTEN_ADDR", DefaultListenAddr),
		VideoDir:        GetEnv("VIDEO_DIR", DefaultVideoDir),
		PythonBin:       GetEnv("PYTHON_BIN", DefaultPythonBin),
		RenderTimeout:   getEnvDuration("RENDER_TIMEOUT", DefaultRenderTimeout),
		MaxWorkers:      getEnvInt("MAX_WORKERS", DefaultMaxWorkers),
		QueueName:       GetEnv("QUEUE_NAME", DefaultQueueName),
		QueueCapacity:   getEnvInt("QUEUE_CAPACITY", DefaultQueueCapacity),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		RedisDB:         getEnvInt("REDIS_DB", 0),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RetentionWindow: getEnvDuration("RETENTION_WINDOW", DefaultRetentionWindow),
		SweepInterval:   getEnvDuration("SWEEP_INTERVAL", DefaultSweepInterval),
		PollIntervalMs:  getEnvInt("POLL_INTERVAL_MS", DefaultPollIntervalMs),
	}
}

// GetEnv retrieves the value of an environment variable with a fallback value if not set
func GetEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		logger.Warnf("Invalid value %q for %s, using default %d", v, key, fallback)
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		logger.Warnf("Invalid duration %q for %s, using default %s", v, key, fallback)
		return fallback
	}
	return d
}
