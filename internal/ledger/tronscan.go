package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// TronscanFetcher implements Fetcher using the Tronscan TRC20 transfers API.
type TronscanFetcher struct {
	Endpoint        string
	ContractAddress string
	Limit           int
	Client          *http.Client
}

// NewTronscanFetcher creates a fetcher with a fixed timeout and optional proxy support.
func NewTronscanFetcher(endpoint, contractAddress string, limit int, timeout time.Duration, proxyURL string) *TronscanFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &TronscanFetcher{
		Endpoint:        endpoint,
		ContractAddress: contractAddress,
		Limit:           limit,
		Client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

func (f *TronscanFetcher) Name() string { return "tronscan" }

// tronscanResponse is the expected JSON shape from the transfers endpoint.
type tronscanResponse struct {
	TokenTransfers []struct {
		Quant     json.Number `json:"quant"`
		TokenInfo struct {
			TokenDecimal json.Number `json:"tokenDecimal"`
		} `json:"tokenInfo"`
		TransactionID string `json:"transaction_id"`
	} `json:"token_transfers"`
}

// RecentTransfers returns the latest transfers for the configured contract, newest first.
func (f *TronscanFetcher) RecentTransfers(ctx context.Context) ([]Transfer, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(f.Limit))
	q.Set("start", "0")
	q.Set("sort", "-timestamp")
	q.Set("contract_address", f.ContractAddress)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.Endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch transfers: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fetch transfers: status %d, body: %s", resp.StatusCode, string(body))
	}

	var result tronscanResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode transfers: %w", err)
	}
	transfers := make([]Transfer, len(result.TokenTransfers))
	for i, tt := range result.TokenTransfers {
		transfers[i] = Transfer{
			Quant:         tt.Quant,
			TokenDecimals: tt.TokenInfo.TokenDecimal,
			TransactionID: tt.TransactionID,
		}
	}
	return transfers, nil
}
