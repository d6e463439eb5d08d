package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnv = []string{
	"LISTEN_ADDR", "METRICS_ADDR", "ETH_RPC_ENDPOINT", "ETHERSCAN_API_KEY", "ETHERSCAN_BASE_URL",
	"ALCHEMY_API_KEY", "ALCHEMY_BASE_URL", "GITHUB_TOKEN", "GITHUB_BASE_URL", "POSTGRES_DSN", "CLICKHOUSE_DSN", "USE_MEMORY",
	"REPUTATION_STALE_AFTER", "ISSUER_NAME", "ISSUER_KEY", "ENS_PARENT_DOMAIN",
}

// clearEnv unsets every config variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configEnv {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	c, err := Load("test", []string{"--use-memory"})
	require.NoError(t, err)

	assert.Equal(t, DefaultListenAddr, c.ListenAddr)
	assert.Equal(t, DefaultMetricsAddr, c.MetricsAddr)
	assert.Equal(t, DefaultStaleAfter, c.StaleAfter)
	assert.Equal(t, DefaultParentDomain, c.ENSParentDomain)
	assert.True(t, c.UseMemory)
	assert.True(t, c.SeparateMetricsServer())

	seed, err := c.IssuerSeed()
	require.NoError(t, err)
	assert.Nil(t, seed)
}

func TestLoad_EnvDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("LISTEN_ADDR", ":7000")
	t.Setenv("METRICS_ADDR", "")
	t.Setenv("POSTGRES_DSN", "postgres://localhost/omnirep")
	t.Setenv("CLICKHOUSE_DSN", "clickhouse://localhost:9000/omnirep")
	t.Setenv("REPUTATION_STALE_AFTER", "5m")
	t.Setenv("GITHUB_TOKEN", "ghp_test")
	t.Setenv("ALCHEMY_API_KEY", "alchemy_test")

	c, err := Load("test", nil)
	require.NoError(t, err)

	assert.Equal(t, ":7000", c.ListenAddr)
	assert.False(t, c.SeparateMetricsServer())
	assert.Equal(t, 5*time.Minute, c.StaleAfter)
	assert.Equal(t, "ghp_test", c.GitHubToken)
	assert.Equal(t, "alchemy_test", c.AlchemyAPIKey)
	assert.False(t, c.UseMemory)
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("REPUTATION_STALE_AFTER", "5m")

	c, err := Load("test", []string{"--use-memory", "--stale-after=1h", "--ens-parent-domain=example.eth"})
	require.NoError(t, err)

	assert.Equal(t, time.Hour, c.StaleAfter)
	assert.Equal(t, "example.eth", c.ENSParentDomain)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		args []string
	}{
		{"missing dsns", nil, nil},
		{"missing clickhouse", map[string]string{"POSTGRES_DSN": "postgres://x"}, nil},
		{"bad env duration", map[string]string{"REPUTATION_STALE_AFTER": "soon"}, []string{"--use-memory"}},
		{"bad env bool", map[string]string{"USE_MEMORY": "maybe"}, nil},
		{"non-positive staleness", nil, []string{"--use-memory", "--stale-after=0s"}},
		{"short issuer key", nil, []string{"--use-memory", "--issuer-key=abcd"}},
		{"non-hex issuer key", nil, []string{"--use-memory", "--issuer-key=zz"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load("test", tt.args)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestIssuerSeed(t *testing.T) {
	c := &Config{IssuerKeyHex: "0x" + "01020304050607080910111213141516171819202122232425262728293031ff"}

	seed, err := c.IssuerSeed()
	require.NoError(t, err)
	assert.Len(t, seed, 32)
	assert.Equal(t, byte(0xff), seed[31])
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("GITHUB_TOKEN", "from-env")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("ISSUER_NAME=Test Issuer\nGITHUB_TOKEN=from-file\n"), 0o600))

	require.NoError(t, LoadEnvFile(path))
	assert.Equal(t, "Test Issuer", os.Getenv("ISSUER_NAME"))
	assert.Equal(t, "from-env", os.Getenv("GITHUB_TOKEN"), "existing variables are not overridden")
}

func TestLoadEnvFile_Missing(t *testing.T) {
	assert.NoError(t, LoadEnvFile(filepath.Join(t.TempDir(), "nope.env")))
}

func TestRegister_CustomFlagSet(t *testing.T) {
	clearEnv(t)
	fs := flag.NewFlagSet("score", flag.ContinueOnError)
	mock := fs.Bool("mock", false, "")
	c := Register(fs)

	require.NoError(t, fs.Parse([]string{"--mock", "--use-memory"}))
	assert.True(t, *mock)
	assert.NoError(t, c.Validate())
}
