package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/telvora/telvora/internal/api"
	"github.com/telvora/telvora/internal/cache"
	"github.com/telvora/telvora/internal/classifier"
	"github.com/telvora/telvora/internal/config"
	"github.com/telvora/telvora/internal/engine"
	"github.com/telvora/telvora/internal/events"
	"github.com/telvora/telvora/internal/insights"
	"github.com/telvora/telvora/internal/simulator"
	"github.com/telvora/telvora/internal/store"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	var (
		configFile  = flag.String("config", "", "Configuration file path")
		showVersion = flag.Bool("version", false, "Show version information")
		showHelp    = flag.Bool("help", false, "Show help information")
	)
	flag.Parse()

	if *showHelp {
		printHelp()
		return
	}

	if *showVersion {
		fmt.Printf("telvora version %s\nCommit: %s\nBuilt: %s\n", version, commit, date)
		return
	}

	log.Printf("Starting Telvora inference service v%s (commit: %s, built: %s)", version, commit, date)

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	averages, err := classifier.LoadGlobalAverages(cfg.AveragesPath)
	if err != nil {
		log.Fatalf("Failed to load global averages: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	customers, products, closeStore, err := buildStores(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer closeStore(ctx)

	catalog := cache.NewCatalogCache(products, cfg.Cache)
	clf := classifier.NewHTTPClassifier(cfg.Classifier)

	var gen engine.InsightGenerator
	if cfg.Insights.APIKey != "" {
		gen = insights.NewService(cfg.Insights, insights.SystemClock())
	} else {
		log.Printf("No OpenAI API key configured, AI insights disabled")
	}

	bus := events.NewKafkaEventBus(cfg.Kafka)
	defer bus.Close()

	sim := simulator.New(clf, cfg.Simulator)
	service := engine.NewService(customers, catalog, clf, sim, gen, bus, averages, cfg.Engine)

	hub := api.NewHub(bus.Subscribe())
	gateway := api.NewGateway(cfg.API, service, hub)

	go func() {
		if err := gateway.Start(); err != nil {
			log.Printf("API gateway stopped: %v", err)
			cancel()
		}
	}()

	waitForShutdown(ctx, gateway)
}

// buildStores selects the configured storage driver and returns the
// customer and product stores plus a close function.
func buildStores(cfg *config.Config) (store.CustomerStore, store.ProductStore, func(context.Context), error) {
	switch cfg.Store.Driver {
	case "memory":
		mem := store.NewMemoryStore()
		return mem, mem, func(context.Context) {}, nil
	default:
		graph, err := store.NewNeo4jStore(cfg.Store)
		if err != nil {
			return nil, nil, nil, err
		}
		closeFn := func(ctx context.Context) {
			if err := graph.Close(ctx); err != nil {
				log.Printf("Error closing graph store: %v", err)
			}
		}
		return graph, graph, closeFn, nil
	}
}

func waitForShutdown(ctx context.Context, gateway *api.Gateway) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
		log.Println("Shutdown signal received, stopping services...")
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := gateway.Stop(shutdownCtx); err != nil {
		log.Printf("Error during gateway shutdown: %v", err)
	}

	log.Println("Telvora stopped")
}

func printHelp() {
	fmt.Printf(`Telvora - Customer Recommendation and Churn Inference Service

Usage:
  telvora [flags]

Flags:
  -config string
        Configuration file path (default "config/config.yaml")
  -version
        Show version information
  -help
        Show this help message

Examples:
  telvora                                    # Start with default config
  telvora -config config/production.yaml     # Start with production config
  telvora -version                           # Show version
`)
}
