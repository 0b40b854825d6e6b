package domain

import (
	"math/big"
	"time"
)

// SubmissionStatus is the lifecycle of a transaction as far as this system tracks it.
type SubmissionStatus string

// StatusSubmitted is the only state: the ledger accepted the signed transaction.
const StatusSubmitted SubmissionStatus = "submitted"

// Submission describes a transaction handed to the ledger.
type Submission struct {
	ID          string           `json:"id"`
	Action      Action           `json:"action"`
	Account     string           `json:"account"`
	TxHash      string           `json:"tx_hash"`
	Amount      *big.Int         `json:"amount,omitempty"`
	Status      SubmissionStatus `json:"status"`
	SubmittedAt time.Time        `json:"submitted_at"`
}
