package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vadiminshakov/seedfarm/pkg/logger"
	"gopkg.in/yaml.v3"
)

const (
	DefaultRPCURL       = "http://127.0.0.1:8545"
	DefaultTokenAddr    = "0x23D50a056c5Dd62073600e1daDcE73D454Cfd391"
	DefaultPairAddr     = "0x23D50a056c5Dd62073600e1daDcE73D454Cfd391"
	DefaultFarmAddr     = "0x9C09E8307dB9D20B836Cb2bBF84D3BD503D61ee5"
	DefaultPollInterval = 5 * time.Second
	DefaultSessionDir   = "./wal/session"
	DefaultWebAddr      = ":8080"
	DefaultCertCacheDir = "./certs"
	DefaultPassEnv      = "SEEDFARM_PASSPHRASE"
	DefaultKeyEnv       = "SEEDFARM_PRIVATE_KEY"
)

type Contracts struct {
	Token string `yaml:"token"`
	Farm  string `yaml:"farm"`
	Pair  string `yaml:"pair"`
}

type Wallet struct {
	KeystoreDir   string `yaml:"keystore_dir,omitempty"`
	PassphraseEnv string `yaml:"passphrase_env,omitempty"`
	PrivateKeyEnv string `yaml:"private_key_env,omitempty"`
}

type Session struct {
	Dir       string `yaml:"dir,omitempty"`
	RedisAddr string `yaml:"redis_addr,omitempty"`
	RedisDB   int    `yaml:"redis_db,omitempty"`
}

type Web struct {
	Addr         string   `yaml:"addr,omitempty"`
	Domains      []string `yaml:"domains,omitempty"`
	CertCacheDir string   `yaml:"cert_cache_dir,omitempty"`
}

type Log struct {
	Format   string `yaml:"format,omitempty"`
	LogDir   string `yaml:"log_dir,omitempty"`
	Level    string `yaml:"level,omitempty"`
	Compress bool   `yaml:"compress,omitempty"`
}

func (l Log) ToLogOption() logger.LogOption {
	return logger.LogOption{
		Format:   l.Format,
		LogDir:   l.LogDir,
		Level:    l.Level,
		Compress: l.Compress,
	}
}

// Config is the validated application configuration.
type Config struct {
	RPCURL        string
	ChainID       int64
	Contracts     Contracts
	Wallet        Wallet
	Session       Session
	PollInterval  time.Duration
	CallTimeout   time.Duration
	APRStalePrice bool
	Web           Web
	Logger        Log
}

// ConfigTmp mirrors the yaml file; durations are kept as strings so
// "5s" and plain integers (seconds) both parse.
type ConfigTmp struct {
	RPCURL        string    `yaml:"rpc_url"`
	ChainID       int64     `yaml:"chain_id,omitempty"`
	Contracts     Contracts `yaml:"contracts"`
	Wallet        Wallet    `yaml:"wallet"`
	Session       Session   `yaml:"session"`
	PollInterval  string    `yaml:"poll_interval"`
	CallTimeout   string    `yaml:"call_timeout,omitempty"`
	APRStalePrice bool      `yaml:"apr_stale_price,omitempty"`
	Web           Web       `yaml:"web"`
	Logger        Log       `yaml:"logger"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		RPCURL: DefaultRPCURL,
		Contracts: Contracts{
			Token: DefaultTokenAddr,
			Farm:  DefaultFarmAddr,
			Pair:  DefaultPairAddr,
		},
		Wallet: Wallet{
			PassphraseEnv: DefaultPassEnv,
			PrivateKeyEnv: DefaultKeyEnv,
		},
		Session:      Session{Dir: DefaultSessionDir},
		PollInterval: DefaultPollInterval,
		Web: Web{
			Addr:         DefaultWebAddr,
			CertCacheDir: DefaultCertCacheDir,
		},
		Logger: Log{Format: "console", Level: "info"},
	}
}

// Get loads path, or returns defaults when path is empty.
func Get(path string) (Config, error) {
	if path == "" {
		c := Default()
		return c, c.Validate()
	}
	return getYaml(path)
}

func getYaml(path string) (Config, error) {
	var tmp ConfigTmp

	f, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := yaml.Unmarshal(f, &tmp); err != nil {
		return Config{}, fmt.Errorf("failed to parse yaml config %s: %w", path, err)
	}

	c := Default()
	if tmp.RPCURL != "" {
		c.RPCURL = tmp.RPCURL
	}
	c.ChainID = tmp.ChainID
	if tmp.Contracts.Token != "" {
		c.Contracts.Token = tmp.Contracts.Token
	}
	if tmp.Contracts.Farm != "" {
		c.Contracts.Farm = tmp.Contracts.Farm
	}
	if tmp.Contracts.Pair != "" {
		c.Contracts.Pair = tmp.Contracts.Pair
	}

	c.Wallet.KeystoreDir = tmp.Wallet.KeystoreDir
	if tmp.Wallet.PassphraseEnv != "" {
		c.Wallet.PassphraseEnv = tmp.Wallet.PassphraseEnv
	}
	if tmp.Wallet.PrivateKeyEnv != "" {
		c.Wallet.PrivateKeyEnv = tmp.Wallet.PrivateKeyEnv
	}

	if tmp.Session.Dir != "" {
		c.Session.Dir = tmp.Session.Dir
	}
	c.Session.RedisAddr = tmp.Session.RedisAddr
	c.Session.RedisDB = tmp.Session.RedisDB

	if tmp.PollInterval != "" {
		c.PollInterval, err = parseDuration(tmp.PollInterval)
		if err != nil {
			return Config{}, fmt.Errorf("incorrect 'poll_interval' param in yaml config (correct format is 5s), error: %w", err)
		}
	}
	if tmp.CallTimeout != "" {
		c.CallTimeout, err = parseDuration(tmp.CallTimeout)
		if err != nil {
			return Config{}, fmt.Errorf("incorrect 'call_timeout' param in yaml config (correct format is 10s), error: %w", err)
		}
	}
	c.APRStalePrice = tmp.APRStalePrice

	if tmp.Web.Addr != "" {
		c.Web.Addr = tmp.Web.Addr
	}
	c.Web.Domains = tmp.Web.Domains
	if tmp.Web.CertCacheDir != "" {
		c.Web.CertCacheDir = tmp.Web.CertCacheDir
	}

	if tmp.Logger.Format != "" {
		c.Logger.Format = tmp.Logger.Format
	}
	if tmp.Logger.Level != "" {
		c.Logger.Level = tmp.Logger.Level
	}
	c.Logger.LogDir = tmp.Logger.LogDir
	c.Logger.Compress = tmp.Logger.Compress

	return c, c.Validate()
}

func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}
	var secs int64
	if _, err := fmt.Sscanf(s, "%d", &secs); err != nil || fmt.Sprint(secs) != s {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return time.Duration(secs) * time.Second, nil
}

// Validate checks addresses and intervals.
func (c Config) Validate() error {
	if strings.TrimSpace(c.RPCURL) == "" {
		return fmt.Errorf("'rpc_url' must not be empty")
	}
	for name, addr := range map[string]string{
		"contracts.token": c.Contracts.Token,
		"contracts.farm":  c.Contracts.Farm,
		"contracts.pair":  c.Contracts.Pair,
	} {
		if !common.IsHexAddress(addr) {
			return fmt.Errorf("incorrect '%s' param in yaml config: %q is not a hex address", name, addr)
		}
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("'poll_interval' must be positive, got %s", c.PollInterval)
	}
	if c.CallTimeout < 0 {
		return fmt.Errorf("'call_timeout' must not be negative, got %s", c.CallTimeout)
	}
	if c.ChainID < 0 {
		return fmt.Errorf("'chain_id' must not be negative, got %d", c.ChainID)
	}
	return nil
}

// Save writes c as yaml to path.
func Save(path string, c Config) error {
	out := ConfigTmp{
		RPCURL:        c.RPCURL,
		ChainID:       c.ChainID,
		Contracts:     c.Contracts,
		Wallet:        c.Wallet,
		Session:       c.Session,
		PollInterval:  c.PollInterval.String(),
		APRStalePrice: c.APRStalePrice,
		Web:           c.Web,
		Logger:        c.Logger,
	}
	if c.CallTimeout > 0 {
		out.CallTimeout = c.CallTimeout.String()
	}

	data, err := yaml.Marshal(out)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
