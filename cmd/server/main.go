package main

import (
	"flag"
	"log"
	"os"
	"strings"

	"github.com/himanishpuri/SurfaceEval/internal/report"
	"github.com/himanishpuri/SurfaceEval/pkg/surfaceeval"
)

var (
	port           int
	dbPath         string
	plotDir        string
	bpm            float64
	numBeats       int
	numRuns        int
	allowedOrigins string
)

func init() {
	flag.IntVar(&port, "port", 8080, "HTTP server port")
	flag.StringVar(&dbPath, "db", getEnvOrDefault("SURFACEEVAL_DB_PATH", "surfaceeval.sqlite3"), "Path to SQLite database")
	flag.StringVar(&plotDir, "plots", getEnvOrDefault("SURFACEEVAL_PLOT_DIR", ""), "Directory for PNG plots of new evaluations (empty disables)")
	flag.Float64Var(&bpm, "bpm", 90, "Default tempo of the expected performance")
	flag.IntVar(&numBeats, "beats", 8, "Default number of expected pad presses")
	flag.IntVar(&numRuns, "runs", 10, "Default number of runs a path template expands to")
	flag.StringVar(&allowedOrigins, "origins", "*", "Comma-separated list of allowed CORS origins (use * for all)")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	flag.Parse()

	// Parse allowed origins
	var origins []string
	if allowedOrigins == "*" {
		origins = []string{"*"}
	} else {
		origins = strings.Split(allowedOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
	}

	storage, err := surfaceeval.NewSQLiteStorage(dbPath)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}

	opts := []surfaceeval.Option{
		surfaceeval.WithBPM(bpm),
		surfaceeval.WithNumBeats(numBeats),
		surfaceeval.WithNumRuns(numRuns),
	}
	if plotDir != "" {
		opts = append(opts, surfaceeval.WithRenderer(report.NewPNGRenderer(plotDir)))
	}

	config := &ServerConfig{
		Port:           port,
		DBPath:         dbPath,
		PlotDir:        plotDir,
		AllowedOrigins: origins,
	}

	server, err := NewServer(storage, opts, config)
	if err != nil {
		log.Fatalf("Failed to create evaluator: %v", err)
	}
	defer server.Close()

	if err := server.Start(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
