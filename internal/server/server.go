// FilePath: server/hub/internal/server/server.go
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/plalog/plalog/server/hub/api"
	"github.com/plalog/plalog/server/hub/api/resources"
	"github.com/plalog/plalog/server/hub/internal/cleanup"
	"github.com/plalog/plalog/server/hub/internal/config"
	"github.com/plalog/plalog/server/hub/internal/database"
	"github.com/plalog/plalog/server/hub/internal/envimport"
	"github.com/plalog/plalog/server/hub/internal/export"
	"github.com/plalog/plalog/server/hub/internal/gardenservice"
	"github.com/plalog/plalog/server/hub/internal/monitoring"
	"github.com/plalog/plalog/server/hub/internal/repository/files"
	"github.com/plalog/plalog/server/hub/internal/repository/sqlrepo"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	nuts "github.com/vaudience/go-nuts"
)

// Server represents our HTTP server
type Server struct {
	config        *config.Config
	srv           *http.Server
	db            database.DB
	redis         *redis.Client
	gardenservice *gardenservice.GardenService
	monitoring    *monitoring.Service
	stopSweeper   context.CancelFunc
}

// New creates a new server instance
func New(cfg *config.Config) *Server {
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return &Server{
		config: cfg,
		srv:    srv,
	}
}

// Start wires the services, begins listening and blocks until shutdown
func (s *Server) Start() error {
	ctx := context.Background()

	s.monitoring = monitoring.NewService(prometheus.DefaultRegisterer)
	if err := s.initializeGardenService(ctx); err != nil {
		s.close()
		return err
	}

	// Set up cleanup event handlers
	s.setupCleanupHandlers()

	router := api.NewRouter(
		resources.NewResources(s.gardenservice, s.db, resources.Options{MaxFileSize: s.config.Import.MaxFileSize}),
		api.Options{
			AllowedOrigins: s.config.Server.AllowedOrigins,
			MetricsPath:    s.config.Monitoring.MetricsPath,
			Registerer:     prometheus.DefaultRegisterer,
			Gatherer:       prometheus.DefaultGatherer,
		},
	)
	s.srv.Handler = router

	// Start server
	go func() {
		nuts.L.Infof("[Server] Starting server on %s", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			nuts.L.Errorf("[Server] Error starting server: %v", err)
			os.Exit(1)
		}
	}()

	return s.waitForShutdown()
}

// waitForShutdown waits for interrupt signal and gracefully shuts down the server
func (s *Server) waitForShutdown() error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	nuts.L.Infof("[Server] Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()

	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}
	s.close()

	nuts.L.Infof("[Server] Server shut down successfully")
	return nil
}

func (s *Server) close() {
	if s.stopSweeper != nil {
		s.stopSweeper()
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			nuts.L.Warnf("[Server] Closing redis: %v", err)
		}
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			nuts.L.Warnf("[Server] Closing database: %v", err)
		}
	}
}

func (s *Server) setupCleanupHandlers() {
	wireCleanupEvents(s.gardenservice.Cleanup, s.monitoring)
}

// wireCleanupEvents logs cascade deletions and counts them in monitoring
func wireCleanupEvents(c *cleanup.CleanupService, m *monitoring.Service) {
	c.OnCleanup(cleanup.EventLocationDeleted, func(id string) {
		nuts.L.Infof("[Cleanup] Location %s and all associated environment data deleted", id)
		m.RecordEvent("location_deletion", map[string]string{
			"location_id": id,
		})
	})

	c.OnCleanup(cleanup.EventEnvironmentLogDeleted, func(id string) {
		nuts.L.Infof("[Cleanup] Environment log %s deleted", id)
		m.RecordEvent("environment_log_deletion", map[string]string{
			"log_id": id,
		})
	})
}

// initializeGardenService opens storage and builds the garden service
func (s *Server) initializeGardenService(ctx context.Context) error {
	db, err := initDB(ctx, s.config.Database)
	if err != nil {
		return err
	}
	s.db = db

	locations := sqlrepo.NewLocationRepository(db)
	environment := sqlrepo.NewEnvironmentRepository(db)

	loc, err := s.config.Import.Location()
	if err != nil {
		return fmt.Errorf("import timezone: %w", err)
	}
	dialects, err := envimport.LoadDialects(s.config.Import.DialectsFile, loc)
	if err != nil {
		return err
	}
	registry := envimport.DefaultRegistry(loc, dialects...)
	nuts.L.Infof("[Server] CSV parsers: %v (timezone %s)", registry.Names(), loc)

	importer := envimport.NewImporter(registry, environment, envimport.WithMetrics(s.monitoring))

	sessions, err := s.initSessionStore(ctx)
	if err != nil {
		return err
	}

	storage, err := initExportStorage(ctx, s.config.Export)
	if err != nil {
		return err
	}

	s.gardenservice = gardenservice.New(
		locations,
		environment,
		envimport.NewWorkflow(importer, sessions),
		export.NewExporter(locations, environment, storage),
	)
	return s.gardenservice.Validate()
}

func initDB(ctx context.Context, cfg config.DatabaseConfig) (database.DB, error) {
	db, err := database.Open(cfg)
	if err != nil {
		return nil, err
	}

	// Set up connection timeout
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.Ping(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := sqlrepo.EnsureSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// initSessionStore uses redis when enabled and an in-memory store otherwise
func (s *Server) initSessionStore(ctx context.Context) (envimport.SessionStore, error) {
	ttl := s.config.Import.SessionTTL
	if s.config.Redis.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", s.config.Redis.Host, s.config.Redis.Port),
			Password: s.config.Redis.Password,
			DB:       s.config.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to ping redis: %w", err)
		}
		s.redis = client
		nuts.L.Infof("[Server] Import sessions stored in redis %s", client.Options().Addr)
		return envimport.NewRedisSessionStore(client, ttl), nil
	}

	store := envimport.NewMemorySessionStore(ttl)
	sweepCtx, cancel := context.WithCancel(context.Background())
	s.stopSweeper = cancel
	go sweepSessions(sweepCtx, store, ttl)
	nuts.L.Infof("[Server] Import sessions stored in memory (ttl %s)", ttl)
	return store, nil
}

func sweepSessions(ctx context.Context, store *envimport.MemorySessionStore, every time.Duration) {
	if every <= 0 {
		every = time.Minute
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := store.Sweep(); n > 0 {
				nuts.L.Infof("[Server] Swept %d expired import sessions", n)
			}
		}
	}
}

func initExportStorage(ctx context.Context, cfg config.ExportConfig) (export.Storage, error) {
	if cfg.Target == "s3" {
		return files.NewS3StoreFromConfig(ctx, cfg.S3)
	}
	return files.NewLocalStore(cfg.BasePath)
}
