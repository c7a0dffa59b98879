package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/viper"

	_ "storewatch/docs"
	"storewatch/internal/cache"
	"storewatch/internal/handlers"
	"storewatch/internal/logger"
	"storewatch/internal/repository"
	"storewatch/internal/repository/db"
	"storewatch/internal/server"
	"storewatch/internal/service"
)

const defaultSamplerInterval = 60 * time.Minute

func main() {
	// load config.yml first so the log level is configurable
	if err := loadConfig(); err != nil {
		fallback := logger.New(logger.InfoLevel)
		fallback.Fatalw("error reading config", "err", err)
	}

	log := logger.New(viper.GetString("log_level"))

	// open DB
	conn, err := openDB(log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Fatalw("failed to close sqlite", "err", cerr)
		}
	}()

	// optional Redis-backed store catalog cache
	storeCache := openStoreCache(log)

	// wire dependencies
	repos := repository.NewRepository(conn)
	services := service.NewService(repos, storeCache, log, serviceConfig())
	apiHandler := handlers.NewHandler(services, log)

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// single consumer for report generation jobs
	go services.Dispatcher.Run(ctx)

	// periodic activity sampler
	if viper.GetBool("sampler.enabled") {
		go services.Sampler.Run(ctx, samplerInterval())
	}

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, viper.GetString("port"), apiHandler, log)

	// graceful shutdown
	waitForShutdown(cancel, srv, log)
}

func loadConfig() error {
	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")
	return viper.ReadInConfig()
}

// openDB initializes the SQLite database using configuration.
func openDB(log *logger.Logger) (*sql.DB, error) {
	dbPath := viper.GetString("db.path")
	if dbPath == "" {
		log.Infow("db.path not set in config; using default file", "default", "storewatch.db")
		dbPath = "storewatch.db"
	}
	return db.Init(dbPath)
}

// openStoreCache connects to Redis when configured; a nil cache is
// valid and simply disables caching.
func openStoreCache(log *logger.Logger) *cache.StoreCache {
	addr := viper.GetString("redis.addr")
	if addr == "" {
		log.Infow("redis.addr not set; store catalog cache disabled")
		return nil
	}
	client, err := cache.NewRedisClient(addr, viper.GetString("redis.password"))
	if err != nil {
		log.Warnw("redis unavailable; store catalog cache disabled", "addr", addr, "err", err)
		return nil
	}
	ttl := viper.GetDuration("redis.ttl")
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return cache.NewStoreCache(client, ttl)
}

func serviceConfig() service.Config {
	cfg := service.Config{
		SigningKey:       viper.GetString("auth.signing_key"),
		TokenTTL:         viper.GetDuration("auth.token_ttl"),
		ReportBatchSize:  viper.GetInt("report.batch_size"),
		ReportWorkers:    viper.GetInt("report.workers"),
		StoreLimit:       viper.GetInt("report.store_limit"),
		QueueSize:        viper.GetInt("report.queue_size"),
		SamplerBatchSize: viper.GetInt("sampler.batch_size"),
	}
	// Pin report "now" for replayed historical datasets.
	if raw := viper.GetString("report.as_of"); raw != "" {
		asOf, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			logger.New(logger.InfoLevel).Fatalw("invalid report.as_of; expected RFC3339", "value", raw, "err", err)
		}
		cfg.AsOf = asOf.UTC()
	}
	return cfg
}

func samplerInterval() time.Duration {
	if iv := viper.GetDuration("sampler.interval"); iv > 0 {
		return iv
	}
	return defaultSamplerInterval
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop background goroutines
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
}
