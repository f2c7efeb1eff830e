package main

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"slidecast/internal/ffmpeg"
	"slidecast/internal/httpapi"
	"slidecast/internal/pkg/env"
	"slidecast/internal/pkg/logger"
	"slidecast/internal/pkg/shutdown"
	"slidecast/internal/ports"
	"slidecast/internal/render"
	"slidecast/internal/storage"

	jobstore "slidecast/internal/adapters/jobstore/postgres"
	"slidecast/internal/adapters/progress/redispub"
)

func main() {
	// Initialize logger
	log := logger.New(logger.Config{
		Level:       env.Str("LOG_LEVEL", "info"),
		Format:      env.Str("LOG_FORMAT", "json"),
		ServiceName: "slidecast-api",
		AddSource:   env.Bool("LOG_SOURCE", false),
	})

	log.Info("starting slidecast API",
		"version", "0.1.0",
	)

	httpPort := env.Str("HTTP_PORT", "8080")

	ctx := context.Background()

	// Initialize shutdown manager
	shutdownMgr := shutdown.NewManager(log, 30*time.Second)

	// Connect to PostgreSQL (opcional: habilita POST /jobs/{jobId}/render)
	var pool *pgxpool.Pool
	var jobs ports.JobStore
	if dbURL := env.Str("DATABASE_URL", ""); dbURL != "" {
		log.Info("connecting to PostgreSQL")
		p, err := pgxpool.New(ctx, dbURL)
		if err != nil {
			log.LogFatal("failed to connect to PostgreSQL", err)
		}
		if err := p.Ping(ctx); err != nil {
			log.LogFatal("failed to ping PostgreSQL", err)
		}
		shutdownMgr.Register("postgres", func(ctx context.Context) error {
			p.Close()
			return nil
		})
		pool = p
		jobs = jobstore.New(p)
		log.Info("PostgreSQL connected")
	} else {
		log.Info("DATABASE_URL not set, render-by-job-id disabled")
	}

	// Connect to Redis (opcional: habilita progreso vía pub/sub)
	var rdb *redis.Client
	var progress ports.ProgressSink
	if redisAddr := env.Str("REDIS_ADDR", ""); redisAddr != "" {
		log.Info("connecting to Redis")
		rdb = redis.NewClient(&redis.Options{Addr: redisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.LogFatal("failed to ping Redis", err)
		}
		shutdownMgr.Register("redis", func(ctx context.Context) error {
			return rdb.Close()
		})
		progress = redispub.New(rdb, env.Str("PROGRESS_CHANNEL_PREFIX", ""))
		log.Info("Redis connected")
	} else {
		log.Info("REDIS_ADDR not set, progress publishing disabled")
	}

	// Initialize storage provider (opcional: archiva el video final)
	var sp ports.StorageProvider
	if env.Str("STORAGE_PROVIDER", "") != "" {
		log.Info("initializing storage provider")
		p, err := storage.NewProvider()
		if err != nil {
			log.LogFatal("failed to initialize storage provider", err)
		}
		sp = p
		log.Info("storage provider initialized", "provider", sp.Provider())
	} else {
		log.Info("STORAGE_PROVIDER not set, output archival disabled")
	}

	// Build the encoder and the render pipeline
	enc, err := ffmpeg.NewEncoder(ffmpeg.Config{
		FFmpegPath:    env.Str("FFMPEG_PATH", "ffmpeg"),
		FFprobePath:   env.Str("FFPROBE_PATH", "ffprobe"),
		CanvasWidth:   env.Int("CANVAS_WIDTH", 0),
		CanvasHeight:  env.Int("CANVAS_HEIGHT", 0),
		Preset:        env.Str("RENDER_PRESET", ""),
		SubtitleStyle: env.Str("SUBTITLE_STYLE", ""),
		EncodeTimeout: env.Duration("ENCODE_TIMEOUT", 10*time.Minute),
	}, log)
	if err != nil {
		log.LogFatal("failed to initialize encoder", err)
	}

	pipeline, err := render.New(render.Deps{
		Encoder: enc,
		Config: render.Config{
			WorkRoot:             env.Str("WORK_ROOT", "/tmp/slidecast"),
			FetchTimeout:         env.Duration("FETCH_TIMEOUT", 30*time.Second),
			MaxConcurrentFetches: env.Int("MAX_CONCURRENT_FETCHES", 4),
			FallbackSeconds:      env.Float("FALLBACK_SECONDS", 0),
		},
		Progress: progress,
		Log:      log,
	})
	if err != nil {
		log.LogFatal("failed to initialize render pipeline", err)
	}

	// Create HTTP router
	router := httpapi.NewRouter(httpapi.Deps{
		Pipeline: pipeline,
		Jobs:     jobs,
		Pool:     pool,
		RDB:      rdb,
		SP:       sp,
		Log:      log,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         "0.0.0.0:" + httpPort,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 15 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	// Register server shutdown
	shutdownMgr.Register("http-server", func(ctx context.Context) error {
		log.Info("shutting down HTTP server")
		return server.Shutdown(ctx)
	})

	// Start server in goroutine
	go func() {
		log.Info("HTTP server listening",
			"addr", server.Addr,
			"port", httpPort,
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.LogFatal("HTTP server failed", err)
		}
	}()

	// Wait for shutdown signal
	shutdownMgr.Wait()
}
