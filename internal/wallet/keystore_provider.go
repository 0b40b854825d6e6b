package wallet

import (
	"context"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/vadiminshakov/seedfarm/internal/domain"
)

// PassphraseFunc supplies the keystore passphrase. An empty passphrase with
// a nil error means the user declined.
type PassphraseFunc func(ctx context.Context) (string, error)

// KeystoreProvider grants access to accounts of an encrypted go-ethereum
// keystore directory by unlocking them with a passphrase.
type KeystoreProvider struct {
	ks         *keystore.KeyStore
	passphrase PassphraseFunc
	chainID    *big.Int

	mu      sync.Mutex
	granted []accounts.Account
}

// NewKeystoreProvider opens the keystore at dir.
func NewKeystoreProvider(dir string, chainID *big.Int, passphrase PassphraseFunc) *KeystoreProvider {
	return newKeystoreProvider(keystore.NewKeyStore(dir, keystore.StandardScryptN, keystore.StandardScryptP), chainID, passphrase)
}

func newKeystoreProvider(ks *keystore.KeyStore, chainID *big.Int, passphrase PassphraseFunc) *KeystoreProvider {
	return &KeystoreProvider{ks: ks, passphrase: passphrase, chainID: chainID}
}

// RequestPermissions always asks for the passphrase again and re-unlocks.
// A declined or failed request keeps accounts granted earlier.
func (p *KeystoreProvider) RequestPermissions(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.grant(ctx)
}

// Accounts returns unlocked accounts, asking for the passphrase if none are.
func (p *KeystoreProvider) Accounts(ctx context.Context) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.granted) == 0 {
		if err := p.grant(ctx); err != nil {
			return nil, err
		}
	}

	out := make([]string, 0, len(p.granted))
	for _, a := range p.granted {
		out = append(out, a.Address.Hex())
	}
	return out, nil
}

// grant replaces the granted set only on success.
func (p *KeystoreProvider) grant(ctx context.Context) error {
	all := p.ks.Accounts()
	if len(all) == 0 {
		return errors.Wrap(domain.ErrWalletUnavailable, "keystore has no accounts")
	}
	if p.passphrase == nil {
		return errors.Wrap(domain.ErrWalletUnavailable, "no passphrase source")
	}

	pass, err := p.passphrase(ctx)
	if err != nil {
		return errors.Wrap(err, "read passphrase")
	}
	if pass == "" {
		return domain.ErrUserRejected
	}

	granted := make([]accounts.Account, 0, len(all))
	for _, a := range all {
		if err := p.ks.Unlock(a, pass); err != nil {
			continue
		}
		granted = append(granted, a)
	}
	if len(granted) == 0 {
		return errors.Wrap(domain.ErrPermissionDenied, "passphrase unlocks no account")
	}

	p.granted = granted
	return nil
}

func (p *KeystoreProvider) TransactOpts(ctx context.Context, account string) (*bind.TransactOpts, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, a := range p.granted {
		if strings.EqualFold(a.Address.Hex(), common.HexToAddress(account).Hex()) {
			opts, err := bind.NewKeyStoreTransactorWithChainID(p.ks, a, p.chainID)
			if err != nil {
				return nil, errors.Wrap(err, "create keystore transactor")
			}
			opts.Context = ctx
			return opts, nil
		}
	}
	return nil, errors.Wrapf(domain.ErrPermissionDenied, "account %s is not unlocked", account)
}
