package setup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vadiminshakov/seedfarm/config"
)

func TestAnswersConfig(t *testing.T) {
	a := defaultAnswers()
	a.chainID = "56"
	a.walletKind = walletKey
	a.keyEnv = "FARM_KEY"
	a.storeKind = storeRedis
	a.redisAddr = "redis:6379"
	a.pollInterval = "12s"
	a.stalePrice = true
	a.domains = " farm.example.org, ,www.farm.example.org"

	cfg, err := a.config()
	require.NoError(t, err)
	assert.Equal(t, int64(56), cfg.ChainID)
	assert.Equal(t, "FARM_KEY", cfg.Wallet.PrivateKeyEnv)
	assert.Empty(t, cfg.Wallet.KeystoreDir)
	assert.Equal(t, "redis:6379", cfg.Session.RedisAddr)
	assert.Equal(t, 12*time.Second, cfg.PollInterval)
	assert.True(t, cfg.APRStalePrice)
	assert.Equal(t, []string{"farm.example.org", "www.farm.example.org"}, cfg.Web.Domains)
	assert.Equal(t, config.DefaultFarmAddr, cfg.Contracts.Farm)
}

func TestAnswersConfig_Invalid(t *testing.T) {
	a := defaultAnswers()
	a.farm = "0x123"
	_, err := a.config()
	assert.Error(t, err)

	a = defaultAnswers()
	a.pollInterval = "often"
	_, err = a.config()
	assert.Error(t, err)
}

func TestValidators(t *testing.T) {
	assert.NoError(t, validateAddress(config.DefaultTokenAddr))
	assert.Error(t, validateAddress("not-an-address"))
	assert.NoError(t, validateChainID("0"))
	assert.Error(t, validateChainID("-1"))
	assert.NoError(t, validateInterval("5s"))
	assert.Error(t, validateInterval("0s"))
	assert.Error(t, notEmpty("x")("  "))
}
