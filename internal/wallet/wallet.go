// Package wallet implements the wallet provider boundary: granting access to
// accounts and producing signing contexts bound to one of them.
package wallet

import (
	"context"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
)

// Provider is what the session manager and the transaction controller need
// from a wallet.
type Provider interface {
	// RequestPermissions asks the wallet to (re)grant access to its accounts.
	RequestPermissions(ctx context.Context) error
	// Accounts lists the accounts the caller may use, granting access first if needed.
	Accounts(ctx context.Context) ([]string, error)
	// TransactOpts returns a signer bound to account.
	TransactOpts(ctx context.Context, account string) (*bind.TransactOpts, error)
}
