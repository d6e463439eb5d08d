// Package main runs the OmniRep HTTP API:
// - Reputation scoring and score history
// - GitHub linking, DIDs, verifiable credentials and ENS subnames
// - Live score feed over WebSocket
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
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"

	"omnirep/internal/api"
	"omnirep/internal/config"
	"omnirep/internal/credential"
	"omnirep/internal/ens"
	"omnirep/internal/ethereum"
	"omnirep/internal/feed"
	"omnirep/internal/github"
	"omnirep/internal/observability"
	"omnirep/internal/service"
	"omnirep/internal/storage"
	chstore "omnirep/internal/storage/clickhouse"
	"omnirep/internal/storage/memory"
	"omnirep/internal/storage/migrations"
	pgstore "omnirep/internal/storage/postgres"
)

const shutdownTimeout = 30 * time.Second

// allStores holds all storage implementations.
type allStores struct {
	reputationStore storage.ReputationStore
	historyStore    storage.ScoreHistoryStore
	githubStore     storage.GitHubConnectionStore
	credentialStore storage.CredentialStore
	subnameStore    storage.SubnameStore
}

func main() {
	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	if err := config.LoadEnvFile(".env"); err != nil {
		logger.Fatalf("Failed to load .env: %v", err)
	}

	cfg := config.Register(flag.CommandLine)
	migrate := flag.Bool("migrate", false, "Apply database migrations before serving")
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		logger.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *migrate, logger); err != nil {
		logger.Fatalf("Server error: %v", err)
	}
	logger.Println("Shutdown complete")
}

func run(ctx context.Context, cfg *config.Config, migrate bool, logger *log.Logger) error {
	stores, cleanup, err := createStores(ctx, cfg, migrate, logger)
	if err != nil {
		return fmt.Errorf("create stores: %w", err)
	}
	defer cleanup()

	wallets, closeChain, err := createWalletSource(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeChain()

	hub := feed.NewHub(nil, log.New(os.Stdout, "[feed] ", log.LstdFlags))
	defer hub.Close()

	rep := service.New(service.Options{
		ReputationStore: stores.reputationStore,
		HistoryStore:    stores.historyStore,
		GitHubStore:     stores.githubStore,
		Wallets:         wallets,
		Feed:            hub,
		StaleAfter:      cfg.StaleAfter,
		Logger:          log.New(os.Stdout, "[reputation] ", log.LstdFlags),
	})

	issuer, err := createIssuer(cfg, logger)
	if err != nil {
		return err
	}

	githubOpts := []github.ClientOption{github.WithToken(cfg.GitHubToken)}
	if cfg.GitHubBaseURL != "" {
		githubOpts = append(githubOpts, github.WithBaseURL(cfg.GitHubBaseURL))
	}
	if cfg.GitHubToken == "" {
		logger.Println("GITHUB_TOKEN not set, GitHub requests are unauthenticated")
	}

	storageMode := "postgres+clickhouse"
	if cfg.UseMemory {
		storageMode = "memory"
	}

	srv := api.New(api.Options{
		Reputation: rep,
		GitHub: github.NewConnector(github.ConnectorOptions{
			Fetcher: github.NewClient(githubOpts...),
			Store:   stores.githubStore,
			Logger:  log.New(os.Stdout, "[github] ", log.LstdFlags),
		}),
		Credentials: credential.NewService(credential.ServiceOptions{
			Issuer: issuer,
			Store:  stores.credentialStore,
			Logger: log.New(os.Stdout, "[credential] ", log.LstdFlags),
		}),
		Registrar: ens.NewRegistrar(ens.RegistrarOptions{
			Store:  stores.subnameStore,
			Parent: cfg.ENSParentDomain,
			Logger: log.New(os.Stdout, "[ens] ", log.LstdFlags),
		}),
		Feed:         hub,
		ServeMetrics: !cfg.SeparateMetricsServer(),
		StorageMode:  storageMode,
		Logger:       log.New(os.Stdout, "[api] ", log.LstdFlags),
	})

	servers := []*http.Server{{Addr: cfg.ListenAddr, Handler: srv.Handler()}}
	if cfg.SeparateMetricsServer() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", observability.Handler())
		servers = append(servers, &http.Server{Addr: cfg.MetricsAddr, Handler: mux})
	}

	errCh := make(chan error, len(servers))
	for _, s := range servers {
		go func() {
			logger.Printf("Starting HTTP server on %s", s.Addr)
			if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("listen %s: %w", s.Addr, err)
			}
		}()
	}

	select {
	case <-ctx.Done():
		logger.Println("Received shutdown signal, initiating graceful shutdown...")
	case err := <-errCh:
		return err
	}

	// Websocket connections are hijacked; close them before Shutdown waits.
	hub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	var shutdownErr error
	for _, s := range servers {
		if err := s.Shutdown(shutdownCtx); err != nil {
			shutdownErr = errors.Join(shutdownErr, fmt.Errorf("shutdown %s: %w", s.Addr, err))
		}
	}
	return shutdownErr
}

// createStores creates all required stores.
func createStores(ctx context.Context, cfg *config.Config, migrate bool, logger *log.Logger) (*allStores, func(), error) {
	if cfg.UseMemory {
		logger.Println("Using in-memory storage")
		stores := &allStores{
			reputationStore: memory.NewReputationStore(),
			historyStore:    memory.NewScoreHistoryStore(),
			githubStore:     memory.NewGitHubConnectionStore(),
			credentialStore: memory.NewCredentialStore(),
			subnameStore:    memory.NewSubnameStore(),
		}
		return stores, func() {}, nil
	}

	// PostgreSQL
	pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}

	// ClickHouse
	var chConn *chstore.Conn
	if migrate {
		applied, err := migrations.RunPostgresMigrations(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("postgres migrations: %w", err)
		}
		logger.Printf("Applied %d postgres migrations", len(applied))

		chConn, err = migrations.RunClickhouseMigrations(ctx, cfg.ClickhouseDSN)
		if err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("clickhouse migrations: %w", err)
		}
	} else {
		chConn, err = chstore.NewConn(ctx, cfg.ClickhouseDSN)
		if err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("connect to clickhouse: %w", err)
		}
	}

	stores := &allStores{
		// PostgreSQL stores (current state)
		reputationStore: pgstore.NewReputationStore(pool),
		githubStore:     pgstore.NewGitHubConnectionStore(pool),
		credentialStore: pgstore.NewCredentialStore(pool),
		subnameStore:    pgstore.NewSubnameStore(pool),

		// ClickHouse stores (history)
		historyStore: chstore.NewScoreHistoryStore(chConn),
	}

	cleanup := func() {
		chConn.Close()
		pool.Close()
	}
	return stores, cleanup, nil
}

// createWalletSource builds on-chain analytics from whichever sources are
// configured. With none, the service scores the demo wallet profile.
func createWalletSource(ctx context.Context, cfg *config.Config, logger *log.Logger) (service.WalletSource, func(), error) {
	opts := ethereum.AnalyticsOptions{
		Logger: log.New(os.Stdout, "[ethereum] ", log.LstdFlags),
	}
	closeFn := func() {}

	if cfg.EthRPCEndpoint != "" {
		client, err := ethclient.DialContext(ctx, cfg.EthRPCEndpoint)
		if err != nil {
			return nil, nil, fmt.Errorf("dial ethereum rpc: %w", err)
		}
		opts.Chain = client
		closeFn = client.Close
	}
	if cfg.EtherscanAPIKey != "" {
		var esOpts []ethereum.EtherscanOption
		if cfg.EtherscanBaseURL != "" {
			esOpts = append(esOpts, ethereum.WithEtherscanURL(cfg.EtherscanBaseURL))
		}
		opts.History = ethereum.NewEtherscanClient(cfg.EtherscanAPIKey, esOpts...)
	}
	if cfg.AlchemyAPIKey != "" {
		var alOpts []ethereum.AlchemyOption
		if cfg.AlchemyBaseURL != "" {
			alOpts = append(alOpts, ethereum.WithAlchemyURL(cfg.AlchemyBaseURL))
		}
		opts.NFTs = ethereum.NewAlchemyClient(cfg.AlchemyAPIKey, alOpts...)
	}

	if opts.Chain == nil && opts.History == nil && opts.NFTs == nil {
		logger.Println("No wallet data source configured, scoring with demo wallet metrics")
		return service.MockWallets{}, closeFn, nil
	}
	return ethereum.NewAnalytics(opts), closeFn, nil
}

func createIssuer(cfg *config.Config, logger *log.Logger) (*credential.Issuer, error) {
	seed, err := cfg.IssuerSeed()
	if err != nil {
		return nil, err
	}
	if seed == nil {
		logger.Println("ISSUER_KEY not set, generating an ephemeral signing key")
		return credential.GenerateIssuer(cfg.IssuerName)
	}
	return credential.NewIssuer(seed, cfg.IssuerName)
}
