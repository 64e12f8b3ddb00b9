// Command mempoolcore runs the Ravencoin-family mempool reconciliation
// core: it connects to a node's RPC interface and a persistent
// UTXO/asset store, serves the C8 query surface over HTTP, and pushes
// touched-scripthash notifications over a websocket hub.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/moontreeapp/electrumx-evr/internal/api"
	"github.com/moontreeapp/electrumx-evr/internal/bitcoind"
	"github.com/moontreeapp/electrumx-evr/internal/chainparams"
	"github.com/moontreeapp/electrumx-evr/internal/collaborator"
	"github.com/moontreeapp/electrumx-evr/internal/mempool"
	"github.com/moontreeapp/electrumx-evr/internal/utxostore"
)

func main() {
	log.Println("Starting Ravencoin Mempool Reconciliation Core...")

	// ─── Required Environment Variables ─────────────────────────────────
	// All credentials MUST come from environment variables. No fallback
	// defaults for security-sensitive values. The process reads only its
	// environment; it does not load a .env file itself.
	// ────────────────────────────────────────────────────────────────────

	dbURL := requireEnv("DATABASE_URL")
	store, err := utxostore.Connect(dbURL)
	if err != nil {
		log.Fatalf("FATAL: failed to connect to PostgreSQL: %v", err)
	}
	defer store.Close()
	if err := store.InitSchema(); err != nil {
		log.Fatalf("FATAL: DB schema init failed: %v", err)
	}

	nodeHost := getEnvOrDefault("RVN_RPC_HOST", "localhost:8766")
	nodeUser := requireEnv("RVN_RPC_USER")
	nodePass := requireEnv("RVN_RPC_PASS")

	node, err := bitcoind.NewClient(bitcoind.Config{
		Host: nodeHost,
		User: nodeUser,
		Pass: nodePass,
	})
	if err != nil {
		log.Fatalf("FATAL: failed to connect to node RPC: %v", err)
	}
	defer node.Shutdown()

	hub := api.NewHub()
	go hub.Run()

	chain := chainparams.Ravencoin{
		HistogramRefreshSecs: getEnvIntOrDefault("RAVENCOIN_HISTOGRAM_REFRESH_SECS", 0),
	}
	core := mempool.NewCore(chain)
	collab := collaborator.New(node, store, hub)

	refreshSecs := getEnvIntOrDefault("MEMPOOL_REFRESH_SECS", 5)
	histogramSecs := getEnvIntOrDefault("MEMPOOL_HISTOGRAM_REFRESH_SECS", int(chain.HistogramRefreshInterval().Seconds()))

	supervisor := mempool.NewSupervisor(
		core,
		collab,
		time.Duration(refreshSecs)*time.Second,
		time.Duration(histogramSecs)*time.Second,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := supervisor.Run(ctx); err != nil {
			log.Fatalf("FATAL: supervisor task failed: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("Shutdown signal received, stopping...")
		cancel()
	}()

	router := api.SetupRouter(core, hub)
	port := getEnvOrDefault("PORT", "5340")

	log.Printf("Mempool core listening on :%s\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("FATAL: HTTP server failed: %v", err)
	}
}

// requireEnv reads a required environment variable and exits if it is
// not set.
func requireEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		log.Fatalf("FATAL: Required environment variable %s is not set. "+
			"Set it in the process environment before starting.", key)
	}
	return val
}

// getEnvOrDefault returns the env var value or a safe default for
// non-secret settings.
func getEnvOrDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// getEnvIntOrDefault parses an integer-valued env var, falling back to
// fallback when unset or unparseable.
func getEnvIntOrDefault(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		log.Printf("Warning: invalid integer for %s=%q, using default %d", key, val, fallback)
		return fallback
	}
	return n
}
