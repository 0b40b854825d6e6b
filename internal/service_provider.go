package internal

import (
	"context"
	"math/big"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/vadiminshakov/seedfarm/config"
	"github.com/vadiminshakov/seedfarm/internal/domain"
	"github.com/vadiminshakov/seedfarm/internal/session"
	"github.com/vadiminshakov/seedfarm/internal/wallet"
)

const redisNamespace = "seedfarm"

// sessionBackend is a session flag store plus whatever must be released with it.
type sessionBackend interface {
	session.Store
	Close() error
}

// newWalletProvider picks the wallet from config: a keystore directory wins
// over a raw key. A nil provider means no wallet is installed.
func newWalletProvider(conf config.Config, chainID *big.Int, logger *zap.Logger) (wallet.Provider, error) {
	switch {
	case conf.Wallet.KeystoreDir != "":
		logger.Info("using keystore wallet", zap.String("dir", conf.Wallet.KeystoreDir))
		return wallet.NewKeystoreProvider(conf.Wallet.KeystoreDir, chainID, envPassphrase(conf.Wallet.PassphraseEnv)), nil
	case conf.Wallet.PrivateKeyEnv != "" && os.Getenv(conf.Wallet.PrivateKeyEnv) != "":
		logger.Info("using private key wallet", zap.String("env", conf.Wallet.PrivateKeyEnv))
		p, err := wallet.NewKeyProvider(os.Getenv(conf.Wallet.PrivateKeyEnv), chainID)
		if err != nil {
			return nil, errors.Wrap(err, "failed to load private key")
		}
		return p, nil
	default:
		logger.Warn("no wallet configured, connect will fail")
		return nil, nil
	}
}

// envPassphrase reads the keystore passphrase from env at unlock time, so a
// declined prompt (empty variable) surfaces as a rejection.
func envPassphrase(name string) wallet.PassphraseFunc {
	if name == "" {
		return nil
	}
	return func(context.Context) (string, error) {
		v, ok := os.LookupEnv(name)
		if !ok || strings.TrimSpace(v) == "" {
			return "", domain.ErrUserRejected
		}
		return v, nil
	}
}

// newSessionStore uses Redis when an address is configured, the WAL otherwise.
func newSessionStore(ctx context.Context, conf config.Config, logger *zap.Logger) (sessionBackend, error) {
	if conf.Session.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: conf.Session.RedisAddr, DB: conf.Session.RedisDB})
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return nil, errors.Wrapf(err, "failed to reach redis at %s", conf.Session.RedisAddr)
		}
		logger.Info("session flag stored in redis", zap.String("addr", conf.Session.RedisAddr))
		return &redisBackend{RedisStore: session.NewRedisStore(rdb, redisNamespace), rdb: rdb}, nil
	}

	store, err := session.NewWALStore(conf.Session.Dir)
	if err != nil {
		return nil, err
	}
	logger.Info("session flag stored in wal", zap.String("dir", conf.Session.Dir))
	return store, nil
}

type redisBackend struct {
	*session.RedisStore
	rdb *redis.Client
}

func (b *redisBackend) Close() error {
	return b.rdb.Close()
}
