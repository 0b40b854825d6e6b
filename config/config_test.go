package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeYaml(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seedfarm.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestGet_Defaults(t *testing.T) {
	c, err := Get("")
	require.NoError(t, err)
	assert.Equal(t, DefaultFarmAddr, c.Contracts.Farm)
	assert.Equal(t, DefaultTokenAddr, c.Contracts.Token)
	assert.Equal(t, c.Contracts.Token, c.Contracts.Pair)
	assert.Equal(t, 5*time.Second, c.PollInterval)
	assert.Zero(t, c.CallTimeout)
	assert.False(t, c.APRStalePrice)
}

func TestGet_Yaml(t *testing.T) {
	path := writeYaml(t, `
rpc_url: https://rpc.example.org
chain_id: 56
contracts:
  farm: "0x0000000000000000000000000000000000000001"
wallet:
  keystore_dir: /tmp/keys
session:
  redis_addr: localhost:6379
  redis_db: 2
poll_interval: 10
call_timeout: 3s
apr_stale_price: true
web:
  domains: [farm.example.org]
logger:
  format: json
  log_dir: ./logs
`)
	c, err := Get(path)
	require.NoError(t, err)

	assert.Equal(t, "https://rpc.example.org", c.RPCURL)
	assert.Equal(t, int64(56), c.ChainID)
	assert.Equal(t, "0x0000000000000000000000000000000000000001", c.Contracts.Farm)
	assert.Equal(t, DefaultTokenAddr, c.Contracts.Token, "unset keys keep defaults")
	assert.Equal(t, "/tmp/keys", c.Wallet.KeystoreDir)
	assert.Equal(t, DefaultPassEnv, c.Wallet.PassphraseEnv)
	assert.Equal(t, "localhost:6379", c.Session.RedisAddr)
	assert.Equal(t, 2, c.Session.RedisDB)
	assert.Equal(t, 10*time.Second, c.PollInterval)
	assert.Equal(t, 3*time.Second, c.CallTimeout)
	assert.True(t, c.APRStalePrice)
	assert.Equal(t, []string{"farm.example.org"}, c.Web.Domains)
	assert.Equal(t, DefaultWebAddr, c.Web.Addr)
	assert.Equal(t, "json", c.Logger.Format)
	assert.Equal(t, "info", c.Logger.Level)
	assert.Equal(t, "./logs", c.Logger.ToLogOption().LogDir)
}

func TestGet_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad address", "contracts:\n  token: nope\n"},
		{"bad interval", "poll_interval: soon\n"},
		{"zero interval", "poll_interval: 0s\n"},
		{"negative timeout", "call_timeout: -1s\n"},
		{"not yaml", "rpc_url: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Get(writeYaml(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestSave_RoundTrip(t *testing.T) {
	c := Default()
	c.RPCURL = "https://bsc.example.org"
	c.CallTimeout = 7 * time.Second
	c.Web.Domains = []string{"a.example.org"}

	path := filepath.Join(t.TempDir(), "out.yaml")
	require.NoError(t, Save(path, c))

	loaded, err := Get(path)
	require.NoError(t, err)
	assert.Equal(t, c, loaded)
}
