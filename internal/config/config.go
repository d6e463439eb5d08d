// Package config loads service configuration from flags, the environment
// and an optional .env file. Flags default to their environment variables.
package config

import (
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Defaults.
const (
	DefaultListenAddr   = ":8080"
	DefaultMetricsAddr  = ":9090"
	DefaultStaleAfter   = 30 * time.Minute
	DefaultParentDomain = "omnirep.eth"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config holds every runtime setting.
type Config struct {
	ListenAddr  string
	MetricsAddr string // empty serves /metrics on ListenAddr

	EthRPCEndpoint   string
	EtherscanAPIKey  string
	EtherscanBaseURL string
	AlchemyAPIKey    string
	AlchemyBaseURL   string
	GitHubToken      string
	GitHubBaseURL    string

	PostgresDSN   string
	ClickhouseDSN string
	UseMemory     bool

	StaleAfter      time.Duration
	IssuerName      string
	IssuerKeyHex    string // hex Ed25519 seed; empty generates an ephemeral key
	ENSParentDomain string

	envErrs []error
}

// LoadEnvFile loads path into the environment without overriding variables
// that are already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Register binds the configuration flags on fs and returns the Config they fill.
func Register(fs *flag.FlagSet) *Config {
	c := &Config{}

	fs.StringVar(&c.ListenAddr, "listen-addr", envString("LISTEN_ADDR", DefaultListenAddr), "HTTP API listen address")
	fs.StringVar(&c.MetricsAddr, "metrics-addr", envString("METRICS_ADDR", DefaultMetricsAddr), "Prometheus metrics HTTP address (empty = serve on listen-addr)")

	fs.StringVar(&c.EthRPCEndpoint, "eth-rpc-endpoint", os.Getenv("ETH_RPC_ENDPOINT"), "Ethereum JSON-RPC endpoint")
	fs.StringVar(&c.EtherscanAPIKey, "etherscan-api-key", os.Getenv("ETHERSCAN_API_KEY"), "Etherscan API key")
	fs.StringVar(&c.EtherscanBaseURL, "etherscan-base-url", os.Getenv("ETHERSCAN_BASE_URL"), "Etherscan API base URL override")
	fs.StringVar(&c.AlchemyAPIKey, "alchemy-api-key", os.Getenv("ALCHEMY_API_KEY"), "Alchemy API key for NFT counts")
	fs.StringVar(&c.AlchemyBaseURL, "alchemy-base-url", os.Getenv("ALCHEMY_BASE_URL"), "Alchemy NFT API base URL override")
	fs.StringVar(&c.GitHubToken, "github-token", os.Getenv("GITHUB_TOKEN"), "GitHub API token")
	fs.StringVar(&c.GitHubBaseURL, "github-base-url", os.Getenv("GITHUB_BASE_URL"), "GitHub API base URL override")

	fs.StringVar(&c.PostgresDSN, "postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	fs.StringVar(&c.ClickhouseDSN, "clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	fs.BoolVar(&c.UseMemory, "use-memory", c.envBool("USE_MEMORY", false), "Use in-memory storage instead of PostgreSQL/ClickHouse")

	fs.DurationVar(&c.StaleAfter, "stale-after", c.envDuration("REPUTATION_STALE_AFTER", DefaultStaleAfter), "Recompute stored scores older than this")
	fs.StringVar(&c.IssuerName, "issuer-name", os.Getenv("ISSUER_NAME"), "Credential issuer display name")
	fs.StringVar(&c.IssuerKeyHex, "issuer-key", os.Getenv("ISSUER_KEY"), "Hex-encoded Ed25519 seed for credential signing")
	fs.StringVar(&c.ENSParentDomain, "ens-parent-domain", envString("ENS_PARENT_DOMAIN", DefaultParentDomain), "Parent ENS domain for subnames")

	return c
}

// Load parses args into a new Config and validates it.
func Load(name string, args []string) (*Config, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	c := Register(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the configuration is usable.
func (c *Config) Validate() error {
	if len(c.envErrs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(c.envErrs...))
	}
	if c.ListenAddr == "" {
		return fmt.Errorf("%w: --listen-addr is required", ErrInvalid)
	}
	if !c.UseMemory && (c.PostgresDSN == "" || c.ClickhouseDSN == "") {
		return fmt.Errorf("%w: --postgres-dsn and --clickhouse-dsn are required (use --use-memory for in-memory storage)", ErrInvalid)
	}
	if c.StaleAfter <= 0 {
		return fmt.Errorf("%w: --stale-after must be positive, got %s", ErrInvalid, c.StaleAfter)
	}
	if _, err := c.IssuerSeed(); err != nil {
		return err
	}
	return nil
}

// IssuerSeed decodes IssuerKeyHex. It returns nil when no key is configured.
func (c *Config) IssuerSeed() ([]byte, error) {
	if c.IssuerKeyHex == "" {
		return nil, nil
	}
	seed, err := hex.DecodeString(strings.TrimPrefix(c.IssuerKeyHex, "0x"))
	if err != nil || len(seed) != 32 {
		return nil, fmt.Errorf("%w: --issuer-key must be 32 hex-encoded bytes", ErrInvalid)
	}
	return seed, nil
}

// SeparateMetricsServer reports whether metrics are served on their own address.
func (c *Config) SeparateMetricsServer() bool {
	return c.MetricsAddr != "" && c.MetricsAddr != c.ListenAddr
}

func envString(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func (c *Config) envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		c.envErrs = append(c.envErrs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return b
}

func (c *Config) envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		c.envErrs = append(c.envErrs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return d
}
