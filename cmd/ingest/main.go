// Package main ingests live market quotes into the quote timeseries store.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"sports-edge-lab/internal/domain"
	"sports-edge-lab/internal/feed"
	"sports-edge-lab/internal/observability"
	"sports-edge-lab/internal/storage"
	chstore "sports-edge-lab/internal/storage/clickhouse"
	"sports-edge-lab/internal/storage/memory"
	"sports-edge-lab/internal/storage/migrations"
)

func main() {
	// Parse flags
	wsEndpoint := flag.String("ws-endpoint", "", "Market feed WebSocket endpoint")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse connection string")
	games := flag.String("games", "", "Comma-separated game IDs to subscribe to (empty = all)")
	batchSize := flag.Int("batch-size", 100, "Quotes per bulk insert")
	flushInterval := flag.Duration("flush-interval", 5*time.Second, "Maximum time a partial batch waits")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of ClickHouse")
	metricsAddr := flag.String("metrics-addr", ":9090", "Prometheus metrics HTTP address (empty to disable)")
	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[ingest] ", log.LstdFlags|log.Lshortfile)

	// Validate flags
	if *wsEndpoint == "" {
		logger.Fatal("No feed endpoint specified. Use --ws-endpoint")
	}
	if !*useMemory && *clickhouseDSN == "" {
		logger.Fatal("No storage specified. Use --clickhouse-dsn or --use-memory")
	}

	// Start metrics server if enabled
	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", observability.Handler())
			mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("ok"))
			})
			logger.Printf("Starting metrics server on %s", *metricsAddr)
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil && err != http.ErrServerClosed {
				logger.Printf("Metrics server error: %v", err)
			}
		}()
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, shutting down...", sig)
		cancel()
	}()

	// Create the quote store
	var quoteStore storage.QuoteTimeseriesStore
	if *useMemory {
		quoteStore = memory.NewQuoteTimeseriesStore()
	} else {
		conn, err := migrations.RunClickhouseMigrations(ctx, *clickhouseDSN)
		if err != nil {
			logger.Fatalf("ClickHouse setup failed: %v", err)
		}
		defer conn.Close()
		quoteStore = chstore.NewQuoteTimeseriesStore(conn)
	}

	// Connect to the feed
	client, err := feed.NewWSClient(ctx, *wsEndpoint, nil)
	if err != nil {
		logger.Fatalf("Feed connection failed: %v", err)
	}
	defer client.Close()

	filter := feed.QuoteFilter{GameIDs: splitGames(*games)}
	quotes, err := client.SubscribeQuotes(ctx, filter)
	if err != nil {
		logger.Fatalf("Subscribe failed: %v", err)
	}
	logger.Printf("Subscribed to quotes (games: %s)", gamesLabel(filter.GameIDs))

	if err := runIngest(ctx, logger, quoteStore, quotes, *batchSize, *flushInterval); err != nil {
		logger.Fatalf("Ingest failed: %v", err)
	}
	logger.Println("Ingest stopped")
}

// runIngest batches incoming quotes and bulk-inserts them. Duplicate
// batches (replayed points) are dropped, not fatal.
func runIngest(ctx context.Context, logger *log.Logger, store storage.QuoteTimeseriesStore, quotes <-chan domain.MarketQuotePoint, batchSize int, flushInterval time.Duration) error {
	batch := make([]*domain.MarketQuotePoint, 0, batchSize)
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := store.InsertBulk(ctx, batch); err != nil {
			if errors.Is(err, storage.ErrDuplicateKey) {
				logger.Printf("Dropped %d replayed quotes", len(batch))
			} else {
				return fmt.Errorf("insert batch: %w", err)
			}
		}
		batch = batch[:0]
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			// Final flush runs on a fresh context; the run context is gone
			flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			ctx = flushCtx
			return flush()
		case <-ticker.C:
			if err := flush(); err != nil {
				return err
			}
		case q, ok := <-quotes:
			if !ok {
				return flush()
			}
			point := q
			batch = append(batch, &point)
			if len(batch) >= batchSize {
				if err := flush(); err != nil {
					return err
				}
			}
		}
	}
}

func splitGames(s string) []string {
	if s == "" {
		return nil
	}
	var ids []string
	for _, part := range strings.Split(s, ",") {
		if id := strings.TrimSpace(part); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func gamesLabel(ids []string) string {
	if len(ids) == 0 {
		return "all"
	}
	return strings.Join(ids, ", ")
}
