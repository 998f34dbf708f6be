package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/perpstate/market-registry-go/api"
	"github.com/perpstate/market-registry-go/auth"
	"github.com/perpstate/market-registry-go/cmd/registryd/config"
	"github.com/perpstate/market-registry-go/events"
	"github.com/perpstate/market-registry-go/factory"
	"github.com/perpstate/market-registry-go/registry"
	"github.com/perpstate/market-registry-go/vault"
)

const shutdownTimeout = 5 * time.Second

func main() {
	// create the log handler
	rootLogHandler := slog.NewJSONHandler(os.Stdout, nil)
	close := func() {
		os.Exit(1)
	}

	rootLogger := slog.New(rootLogHandler)
	prometheusRegistry := prometheus.DefaultRegisterer
	cfg, err := loadConfig()
	if err != nil {
		rootLogger.Error("Failed to load configuration", "error", err)
		close()
	}

	// Create a context that cancels when the OS sends an interrupt (Ctrl+C) or termination signal.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		rootLogger.Error("Failed to dial RPC endpoint", "url", cfg.RPCURL, "error", err)
		close()
	}
	defer client.Close()

	notifier := events.NewNotifier(cfg.EventBufferSize)
	defer notifier.Close()

	factoryClient := factory.NewClient(cfg.FactoryAddress(), client)
	reg, err := registry.NewMarketRegistry(ctx, registry.Config{
		ClearingHouse:     cfg.ClearingHouseAddress(),
		Factory:           cfg.FactoryAddress(),
		QuoteToken:        cfg.QuoteTokenAddress(),
		MinCustodyBalance: cfg.MinCustodyBalanceTokens(),
		IsContract:        vault.NewCodeChecker(client),
		Balances:          vault.NewClient(client),
		Pools:             factoryClient,
		PoolState:         factoryClient,
		Authorizer:        auth.NewOwnerAuthorizer(cfg.OwnerAddress()),
		Notifier:          notifier,
		Logger:            rootLogger.With("component", "market-registry"),
		PrometheusReg:     prometheusRegistry,
	})
	if err != nil {
		rootLogger.Error("Failed to initialize market registry", "error", err)
		close()
	}

	rpcServer := rpc.NewServer()
	defer rpcServer.Stop()
	if err := api.Register(rpcServer, api.NewService(reg)); err != nil {
		rootLogger.Error("Failed to register RPC service", "error", err)
		close()
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", rpcServer)

	httpServer := &http.Server{Addr: cfg.ListenAddr, Handler: mux}
	go func() {
		rootLogger.Info("Serving registry API and metrics", "addr", cfg.ListenAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			rootLogger.Error("HTTP server failed", "error", err)
			stop()
		}
	}()

	poolAdded, unsubscribe := notifier.Subscribe()
	defer unsubscribe()

	for {
		select {
		case ev, ok := <-poolAdded:
			if !ok {
				return
			}
			rootLogger.Info("pool added",
				"base_token", ev.BaseToken.Hex(),
				"pool", ev.Pool.Hex(),
				"fee_tier", ev.FeeTier,
			)
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				rootLogger.Error("HTTP server shutdown failed", "error", err)
			}
			return
		}
	}
}

func loadConfig() (*config.RegistrydConfig, error) {
	configPath := flag.String("config", "config.yaml", "Path to the configuration file.")
	flag.Parse()
	log.Printf("Loading configuration from: %s", *configPath)
	return config.LoadConfig(*configPath)
}
