package main

import (
	"context"
	"crypto/rand"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"devdesk/internal/config"
	"devdesk/internal/handlers"
	"devdesk/internal/llm"
	"devdesk/internal/logger"
	"devdesk/internal/prompts"
	"devdesk/internal/repository"
	"devdesk/internal/repository/db"
	"devdesk/internal/server"
	"devdesk/internal/service"

	"github.com/spf13/pflag"
)

const (
	defaultJanitorTick = time.Minute
	shutdownTimeout    = 10 * time.Second
	sessionKeyBytes    = 32
)

func main() {
	cfgFile := pflag.StringP("config", "c", "", "path to config.yml")
	pflag.Parse()

	// load config.yml
	cfgs, err := config.NewManager(*cfgFile)
	if err != nil {
		logger.New(logger.InfoLevel, nil).Fatalw("error reading config", "err", err)
	}
	cfg := cfgs.Get()

	// init logger
	log := logger.New(cfg.Log.Level, nil)

	// open DB
	conn, err := openDB(cfg, log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	table, err := prompts.Default()
	if err != nil {
		log.Fatalw("failed to load prompt templates", "err", err)
	}

	// wire dependencies
	repos := repository.NewRepository(conn)
	services := service.NewService(repos, service.Options{
		Completer: llm.NewClient(llm.Config{
			APIKey:  cfg.LLM.APIKey,
			BaseURL: cfg.LLM.BaseURL,
			Model:   cfg.LLM.Model,
		}),
		Prompts:       table,
		SessionKey:    sessionKey(cfg, log),
		SessionTTL:    cfg.Session.TTL,
		ExportDir:     cfg.Export.Dir,
		LLMTimeout:    cfg.LLM.Timeout,
		TaskRetention: cfg.Tasks.Retention,
		TestMode:      cfg.LLM.TestMode,
		Log:           log,
	})
	apiHandler := handlers.NewHandler(services, log)

	if cfg.LLM.TestMode {
		log.Warnw("llm test mode enabled; prompts are echoed without calling the API")
	} else if cfg.LLM.APIKey == "" {
		log.Warnw("llm.api_key is empty; generation requests will fail")
	}

	// live-apply test mode on config edits
	cfgs.OnChange(func(c *config.Config) {
		services.Relay.SetTestMode(c.LLM.TestMode)
		log.Infow("config_reloaded", "file", cfgs.ConfigFile(), "llm_test_mode", c.LLM.TestMode)
	})
	cfgs.WatchConfig()

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tick := cfg.Tasks.JanitorTick
	if tick <= 0 {
		tick = defaultJanitorTick
	}
	go services.Janitor.Run(ctx, tick)

	// start HTTP server
	srv := &server.Server{WriteTimeout: server.WriteTimeoutFor(cfg.LLM.Timeout)}
	runHTTPServer(srv, cfg.Port, apiHandler, log)

	// graceful shutdown
	waitForShutdown(cancel, srv, services, log)
}

// openDB initializes the SQLite database using configuration.
func openDB(cfg *config.Config, log *logger.Logger) (*sql.DB, error) {
	dbPath := cfg.DB.Path
	if dbPath == "" {
		log.Infow("db.path not set in config; using default file", "default", "app.db")
		dbPath = "app.db"
	}
	return db.InitDB(dbPath)
}

// sessionKey returns the configured signing secret or a random one for this process.
func sessionKey(cfg *config.Config, log *logger.Logger) []byte {
	if cfg.Session.Secret != "" {
		return []byte(cfg.Session.Secret)
	}
	log.Warnw("session.secret not set; sessions will not survive a restart")
	key := make([]byte, sessionKeyBytes)
	if _, err := rand.Read(key); err != nil {
		log.Fatalw("failed to generate session key", "err", err)
	}
	return key
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		log.Infow("http server listening", "port", port)
		if err := srv.Run(port, handler.InitRoutes()); err != nil && err != http.ErrServerClosed {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, services *service.Service, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop background goroutines
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
	services.Janitor.Shutdown()
}
