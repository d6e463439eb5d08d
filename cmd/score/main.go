// Package main scores one wallet and prints the result, without storage.
//
// Usage:
//
//	score [flags] <address>
//	score --mock --format summary 0x742d35Cc6634C0532925a3b844Bc454e4438f44e
//	score --mock --grade 0x742d35Cc6634C0532925a3b844Bc454e4438f44e
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"

	"omnirep/internal/config"
	"omnirep/internal/domain"
	"omnirep/internal/ethereum"
	"omnirep/internal/github"
	"omnirep/internal/reporting"
	"omnirep/internal/reputation"
	"omnirep/internal/service"
)

const fetchTimeout = 30 * time.Second

func main() {
	if err := config.LoadEnvFile(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cfg := config.Register(flag.CommandLine)
	mock := flag.Bool("mock", false, "Use demo wallet and GitHub data instead of live sources")
	format := flag.String("format", reporting.FormatSummary, "Output format: summary or json")
	githubUser := flag.String("github", "", "GitHub username to include in the score")
	signalsPath := flag.String("signals", "", "Path to a JSON file with social/identity/activity/security signals")
	grade := flag.Bool("grade", false, "Print the graded on-chain/off-chain analysis instead of the component score")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <address>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	address, err := service.NormalizeAddress(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	signals, err := loadSignals(*signalsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading signals: %v\n", err)
		os.Exit(1)
	}

	wallet, err := walletMetrics(ctx, cfg, address, *mock)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error fetching wallet metrics: %v\n", err)
		os.Exit(1)
	}

	if *githubUser != "" || *mock {
		activity, err := githubActivity(ctx, cfg, *githubUser, *mock)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error fetching GitHub activity: %v\n", err)
			os.Exit(1)
		}
		signals.GitHub = &activity
	}

	var out string
	if *grade {
		in := reputation.AnalysisInput{Wallet: wallet}
		if signals.GitHub != nil {
			in.GitHubScore = reputation.AnalysisGitHubScore(*signals.GitHub)
			in.Links = &domain.SocialLinks{GitHub: *githubUser}
		}
		a := reputation.Analyze(in, reputation.DefaultAnalysisWeights, time.Now())
		out, err = reporting.RenderAnalysis(*format, address, a)
	} else {
		data := reputation.Default().Generate(wallet, signals, time.Now())
		out, err = reporting.Render(*format, address, data)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(out)
}

func loadSignals(path string) (domain.Signals, error) {
	var sig domain.Signals
	if path == "" {
		return sig, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return sig, err
	}
	if err := json.Unmarshal(raw, &sig); err != nil {
		return sig, fmt.Errorf("parse %s: %w", path, err)
	}
	return sig, nil
}

func walletMetrics(ctx context.Context, cfg *config.Config, address string, mock bool) (domain.WalletMetrics, error) {
	if mock {
		return ethereum.MockWalletMetrics(address), nil
	}

	opts := ethereum.AnalyticsOptions{}
	if cfg.EthRPCEndpoint != "" {
		client, err := ethclient.DialContext(ctx, cfg.EthRPCEndpoint)
		if err != nil {
			return domain.WalletMetrics{}, fmt.Errorf("dial ethereum rpc: %w", err)
		}
		defer client.Close()
		opts.Chain = client
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

	return ethereum.NewAnalytics(opts).WalletMetrics(ctx, address)
}

func githubActivity(ctx context.Context, cfg *config.Config, username string, mock bool) (domain.GitHubActivity, error) {
	if mock {
		return github.MockActivity, nil
	}
	name, err := github.NormalizeUsername(username)
	if err != nil {
		return domain.GitHubActivity{}, err
	}

	opts := []github.ClientOption{github.WithToken(cfg.GitHubToken)}
	if cfg.GitHubBaseURL != "" {
		opts = append(opts, github.WithBaseURL(cfg.GitHubBaseURL))
	}
	return github.NewClient(opts...).Activity(ctx, name, time.Now())
}
