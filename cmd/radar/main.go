// Package main runs the wallet radar: a live logsSubscribe stream over
// configured DEX programs and watched accounts, feeding discovered
// candidate wallets into the persistence store.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"solana-wallet-radar/internal/observability"
	"solana-wallet-radar/internal/radar"
	"solana-wallet-radar/internal/storage"
	chstore "solana-wallet-radar/internal/storage/clickhouse"
	"solana-wallet-radar/internal/storage/memory"
	"solana-wallet-radar/internal/storage/migrations"
	pgstore "solana-wallet-radar/internal/storage/postgres"
	"solana-wallet-radar/internal/stream"
)

// Well-known DEX program ids.
const (
	raydiumAMMV4 = "675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8"
	pumpFun      = "6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P"
)

// DEX program aliases mapped to program IDs.
var dexAliases = map[string]string{
	"raydium": raydiumAMMV4,
	"pumpfun": pumpFun,
	// Add more as needed
}

func main() {
	// Parse flags
	wsEndpoint := flag.String("ws-endpoint", envOr("RADAR_WS_ENDPOINT", ""), "Solana WebSocket endpoint")
	postgresDSN := flag.String("postgres-dsn", envOr("RADAR_POSTGRES_DSN", ""), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", envOr("RADAR_CLICKHOUSE_DSN", ""), "ClickHouse DSN for activity archive (empty to disable)")
	programs := flag.String("programs", "", "Comma-separated DEX program IDs to monitor")
	dex := flag.String("dex", "raydium,pumpfun", "Comma-separated DEX aliases (raydium, pumpfun)")
	refreshInterval := flag.Duration("refresh-interval", 5*time.Minute, "Watched-account reload interval")
	statusInterval := flag.Duration("status-interval", 1*time.Minute, "Status log interval")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL")
	httpAddr := flag.String("http-addr", ":9090", "HTTP address for /health and /metrics (empty to disable)")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[radar] ", log.LstdFlags|log.Lshortfile)

	if *wsEndpoint == "" {
		logger.Fatal("--ws-endpoint is required (or set RADAR_WS_ENDPOINT)")
	}

	// Resolve DEX programs
	programList := resolvePrograms(*programs, *dex)
	if len(programList) == 0 {
		logger.Fatal("No DEX programs specified. Use --programs or --dex")
	}
	logger.Printf("Monitoring DEX programs: %v", programList)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())

	// Require --postgres-dsn unless --use-memory is explicitly set
	if !*useMemory && *postgresDSN == "" {
		logger.Fatal("--postgres-dsn is required (use --use-memory for in-memory storage)")
	}

	// Create stores (use interfaces)
	var walletStore storage.WalletStore = memory.NewWalletStore()
	var activityStore storage.ActivityStore

	if !*useMemory {
		pool, err := pgstore.NewPool(ctx, *postgresDSN)
		if err != nil {
			logger.Fatalf("Connect to postgres: %v", err)
		}
		defer pool.Close()

		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			logger.Fatalf("Postgres migrations: %v", err)
		}

		walletStore = pgstore.NewWalletStore(pool)
	}

	if *clickhouseDSN != "" {
		conn, err := chstore.NewConn(ctx, *clickhouseDSN)
		if err != nil {
			logger.Fatalf("Connect to clickhouse: %v", err)
		}
		defer conn.Close()

		if err := migrations.RunClickhouseMigrations(ctx, conn); err != nil {
			logger.Fatalf("Clickhouse migrations: %v", err)
		}

		activityStore = chstore.NewActivityStore(conn)
	}

	// Create the runner
	runner := radar.NewRunner(radar.Options{
		StreamConfig:    stream.DefaultConfig(*wsEndpoint),
		Programs:        programList,
		Store:           walletStore,
		Activity:        activityStore,
		RefreshInterval: *refreshInterval,
		StatusInterval:  *statusInterval,
		Logger:          logger,
		OnFatal: func(err error) {
			// Fail fast; an external supervisor restarts the process.
			logger.Fatalf("Stream connection unrecoverable: %v", err)
		},
	})

	// Start health/metrics server if enabled
	if *httpAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", observability.Handler())
			mux.Handle("/health", runner.Reporter().Handler())
			logger.Printf("Starting HTTP server on %s", *httpAddr)
			if err := http.ListenAndServe(*httpAddr, mux); err != nil && err != http.ErrServerClosed {
				logger.Printf("HTTP server error: %v", err)
			}
		}()
	}

	// Handle shutdown signals with graceful timeout
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Channel to signal main goroutine completion
	done := make(chan error, 1)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		// Wait for second signal for immediate shutdown
		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
			// Normal shutdown completed
		}
	}()

	err := runner.Run(ctx)

	// Signal completion to shutdown handler
	done <- err
	cancel()

	if err != nil && err != context.Canceled {
		logger.Fatalf("Error: %v", err)
	}

	logger.Println("Shutdown complete")
}

// envOr returns the environment value or a default.
func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// resolvePrograms resolves program IDs from flags.
func resolvePrograms(programs, dex string) []string {
	result := make(map[string]bool)

	// Add explicit programs
	if programs != "" {
		for _, p := range strings.Split(programs, ",") {
			p = strings.TrimSpace(p)
			if p != "" {
				result[p] = true
			}
		}
	}

	// Add programs from DEX aliases
	if dex != "" {
		for _, alias := range strings.Split(dex, ",") {
			alias = strings.TrimSpace(strings.ToLower(alias))
			if programID, ok := dexAliases[alias]; ok {
				result[programID] = true
			}
		}
	}

	// Convert to slice
	list := make([]string, 0, len(result))
	for p := range result {
		list = append(list, p)
	}
	return list
}
