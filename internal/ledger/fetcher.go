package ledger

import (
	"context"
	"encoding/json"
)

// Transfer is a single token transfer as reported by the ledger.
type Transfer struct {
	Quant         json.Number // raw integer quantity
	TokenDecimals json.Number
	TransactionID string
}

// Fetcher defines the interface for looking up recent transfers.
type Fetcher interface {
	RecentTransfers(ctx context.Context) ([]Transfer, error)
	Name() string
}
