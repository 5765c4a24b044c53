// FilePath: server/hub/cmd/main.go
package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	tm "github.com/buger/goterm"
	"github.com/plalog/plalog/server/hub/internal/config"
	"github.com/plalog/plalog/server/hub/internal/database"
	"github.com/plalog/plalog/server/hub/internal/envimport"
	"github.com/plalog/plalog/server/hub/internal/server"
	nuts "github.com/vaudience/go-nuts"
)

func main() {
	// Clear console and draw logo
	ClearConsole()
	DrawLogo()
	// Initialize version info
	nuts.InitVersion()
	nuts.L.Infof("[Main] Starting plalog hub v%s", nuts.GetVersion())

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Fail fast on a broken time zone or dialects file
	summary, err := describeStartup(cfg)
	if err != nil {
		log.Fatalf("Invalid import settings: %v", err)
	}
	for _, line := range summary {
		nuts.L.Infof("[Main] %s", line)
	}

	// Create and start server
	srv := server.New(cfg)
	if err := srv.Start(); err != nil {
		nuts.L.Errorf("[Main] Server error: %v", err)
		os.Exit(1)
	}
}

// describeStartup loads the import settings the server will use and describes them
func describeStartup(cfg *config.Config) ([]string, error) {
	loc, err := cfg.Import.Location()
	if err != nil {
		return nil, fmt.Errorf("import timezone: %w", err)
	}
	dialects, err := envimport.LoadDialects(cfg.Import.DialectsFile, loc)
	if err != nil {
		return nil, err
	}
	registry := envimport.DefaultRegistry(loc, dialects...)

	storage := "sqlite " + cfg.Database.SQLite.Path
	if cfg.Database.Driver == database.DriverPostgres {
		storage = fmt.Sprintf("postgres %s:%d/%s", cfg.Database.Postgres.Host, cfg.Database.Postgres.Port, cfg.Database.Postgres.DBName)
	}
	exportTarget := "local " + cfg.Export.BasePath
	if cfg.Export.Target == "s3" {
		exportTarget = "s3://" + cfg.Export.S3.Bucket
	}
	sessions := fmt.Sprintf("memory (ttl %s)", cfg.Import.SessionTTL)
	if cfg.Redis.Enabled {
		sessions = fmt.Sprintf("redis %s:%d (ttl %s)", cfg.Redis.Host, cfg.Redis.Port, cfg.Import.SessionTTL)
	}

	return []string{
		"Storage: " + storage,
		fmt.Sprintf("Import timezone: %s, max upload %d bytes", loc, cfg.Import.MaxFileSize),
		fmt.Sprintf("CSV parsers (%d custom dialects): %s", len(dialects), strings.Join(registry.Names(), ", ")),
		"Import sessions: " + sessions,
		"Export target: " + exportTarget,
	}, nil
}

// ClearConsole clears the console screen
func ClearConsole() {
	tm.Clear()
	tm.MoveCursor(1, 1)
	tm.Flush()
}

func DrawLogo() {
	fmt.Println()
	lines := []string{
		"        __      __           ",
		"  ____ / /___ _/ /___  ____ _",
		" / __ \\/ / __ `/ / __ \\/ __ `/",
		"/ /_/ / / /_/ / / /_/ / /_/ / ",
		"/ .___/_/\\__,_/_/\\____/\\__, /  ",
		"/_/                   /____/   " + nuts.GetVersion(),
	}

	for _, line := range lines {
		fmt.Println(line)
	}
}
