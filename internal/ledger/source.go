// Package ledger supplies the amount and transaction id for a post, preferring
// a live ledger lookup and falling back to synthetic data.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"

	"TransferCast/internal/model"

	"github.com/shopspring/decimal"
)

// ErrNoQualifying is returned when no transfer is a whole amount within range.
var ErrNoQualifying = errors.New("no qualifying transfer")

const hexDigits = "abcdef0123456789"

// Source returns transaction records within [MinAmount, MaxAmount].
type Source struct {
	Fetcher   Fetcher // may be nil, in which case every record is synthetic
	MinAmount int64
	MaxAmount int64
	rnd       *rand.Rand
}

// NewSource creates a Source.
func NewSource(fetcher Fetcher, minAmount, maxAmount int64, rnd *rand.Rand) *Source {
	return &Source{Fetcher: fetcher, MinAmount: minAmount, MaxAmount: maxAmount, rnd: rnd}
}

// Next returns a live record when the ledger has a qualifying transfer and a
// synthetic one otherwise. It never fails.
func (s *Source) Next(ctx context.Context) model.TransactionRecord {
	rec, err := s.live(ctx)
	if err != nil {
		log.Printf("[WARN] ledger lookup: %v, using synthetic transaction", err)
		return s.Synthetic()
	}
	return rec
}

func (s *Source) live(ctx context.Context) (model.TransactionRecord, error) {
	if s.Fetcher == nil {
		return model.TransactionRecord{}, errors.New("no fetcher configured")
	}
	transfers, err := s.Fetcher.RecentTransfers(ctx)
	if err != nil {
		return model.TransactionRecord{}, fmt.Errorf("%s: %w", s.Fetcher.Name(), err)
	}
	return Qualify(transfers, s.MinAmount, s.MaxAmount)
}

// Qualify picks the first transfer whose normalized amount is a whole number
// within [minAmount, maxAmount]. Malformed entries are skipped.
func Qualify(transfers []Transfer, minAmount, maxAmount int64) (model.TransactionRecord, error) {
	lo, hi := decimal.NewFromInt(minAmount), decimal.NewFromInt(maxAmount)
	for _, t := range transfers {
		amount, err := Normalize(t)
		if err != nil || t.TransactionID == "" {
			continue
		}
		if !amount.IsInteger() || amount.LessThan(lo) || amount.GreaterThan(hi) {
			continue
		}
		return model.TransactionRecord{
			Amount: amount.IntPart(),
			ID:     t.TransactionID,
			Origin: model.OriginLive,
		}, nil
	}
	return model.TransactionRecord{}, ErrNoQualifying
}

// Normalize divides the raw quantity by 10^decimals.
func Normalize(t Transfer) (decimal.Decimal, error) {
	quant, err := decimal.NewFromString(t.Quant.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("quant %q: %w", t.Quant, err)
	}
	decimals, err := t.TokenDecimals.Int64()
	if err != nil || decimals < 0 || decimals > 36 {
		return decimal.Zero, fmt.Errorf("token decimals %q invalid", t.TokenDecimals)
	}
	return quant.Shift(-int32(decimals)), nil
}

// Synthetic returns a uniform amount in range paired with a random 64-char hex id.
func (s *Source) Synthetic() model.TransactionRecord {
	amount := s.MinAmount + s.rnd.Int64N(s.MaxAmount-s.MinAmount+1)
	id := make([]byte, 64)
	for i := range id {
		id[i] = hexDigits[s.rnd.IntN(len(hexDigits))]
	}
	return model.TransactionRecord{
		Amount: amount,
		ID:     string(id),
		Origin: model.OriginSynthetic,
	}
}
