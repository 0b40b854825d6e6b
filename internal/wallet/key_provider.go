package wallet

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"github.com/vadiminshakov/seedfarm/internal/domain"
)

// KeyProvider serves a single account derived from a raw private key.
// Access is implicitly granted.
type KeyProvider struct {
	key     *ecdsa.PrivateKey
	address string
	chainID *big.Int
}

// NewKeyProvider parses a hex private key, with or without 0x prefix.
func NewKeyProvider(privateKeyHex string, chainID *big.Int) (*KeyProvider, error) {
	key := strings.TrimSpace(privateKeyHex)
	if len(key) >= 2 && (key[:2] == "0x" || key[:2] == "0X") {
		key = key[2:]
	}

	privateKey, err := crypto.HexToECDSA(key)
	if err != nil {
		return nil, errors.Wrap(err, "parse private key")
	}

	pub, ok := privateKey.Public().(*ecdsa.PublicKey)
	if !ok {
		return nil, errors.New("error casting public key to ECDSA")
	}

	return &KeyProvider{
		key:     privateKey,
		address: crypto.PubkeyToAddress(*pub).Hex(),
		chainID: chainID,
	}, nil
}

func (p *KeyProvider) RequestPermissions(context.Context) error { return nil }

func (p *KeyProvider) Accounts(context.Context) ([]string, error) {
	return []string{p.address}, nil
}

func (p *KeyProvider) TransactOpts(ctx context.Context, account string) (*bind.TransactOpts, error) {
	if !strings.EqualFold(account, p.address) {
		return nil, errors.Wrapf(domain.ErrPermissionDenied, "account %s is not managed by this key", account)
	}
	opts, err := bind.NewKeyedTransactorWithChainID(p.key, p.chainID)
	if err != nil {
		return nil, errors.Wrap(err, "create keyed transactor")
	}
	opts.Context = ctx
	return opts, nil
}
