package domain

import "github.com/pkg/errors"

var (
	// ErrWalletUnavailable no wallet provider is configured.
	ErrWalletUnavailable = errors.New("wallet unavailable")
	// ErrPermissionDenied the wallet refused access to its accounts.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrUserRejected the user declined the wallet interaction.
	ErrUserRejected = errors.New("user rejected request")
	// ErrNotConnected an action was attempted without an active account.
	ErrNotConnected = errors.New("please connect your wallet")
	// ErrInvalidAmount the stake input is not a non-negative decimal number.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrLedgerRead a contract read failed or reverted.
	ErrLedgerRead = errors.New("ledger read failure")
	// ErrSubmission a transaction could not be submitted.
	ErrSubmission = errors.New("submission failure")
)

// categorized tags an underlying error with a taxonomy sentinel while keeping
// the cause reachable through errors.Is/As.
type categorized struct {
	kind  error
	op    string
	cause error
}

func (e *categorized) Error() string {
	if e.cause == nil {
		return e.kind.Error() + ": " + e.op
	}
	return e.kind.Error() + ": " + e.op + ": " + e.cause.Error()
}

func (e *categorized) Unwrap() []error {
	if e.cause == nil {
		return []error{e.kind}
	}
	return []error{e.kind, e.cause}
}

// LedgerReadError tags err as ErrLedgerRead for the named contract call.
func LedgerReadError(call string, err error) error {
	return &categorized{kind: ErrLedgerRead, op: call, cause: err}
}

// SubmissionError tags err as ErrSubmission for the named transaction.
func SubmissionError(method string, err error) error {
	return &categorized{kind: ErrSubmission, op: method, cause: err}
}
