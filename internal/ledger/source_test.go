package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"TransferCast/internal/model"
)

var hexID = regexp.MustCompile(`^[a-f0-9]{64}$`)

// MockFetcher is a mock implementation of the Fetcher interface
type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) RecentTransfers(ctx context.Context) ([]Transfer, error) {
	args := m.Called(ctx)
	transfers, _ := args.Get(0).([]Transfer)
	return transfers, args.Error(1)
}

func (m *MockFetcher) Name() string { return "mock" }

func transfer(quant string, decimals string, id string) Transfer {
	return Transfer{Quant: json.Number(quant), TokenDecimals: json.Number(decimals), TransactionID: id}
}

func TestQualify(t *testing.T) {
	transfers := []Transfer{
		transfer("1234500000", "6", "fraction"),
		transfer("50000000", "6", "too-small"),
		transfer("2000000000", "6", "too-big"),
		transfer("garbage", "6", "bad-quant"),
		transfer("700000000", "x", "bad-decimals"),
		transfer("700000000", "6", ""),
		transfer("700000000", "6", "first-match"),
		transfer("800000000", "6", "second-match"),
	}
	rec, err := Qualify(transfers, 200, 1500)
	require.NoError(t, err)
	assert.Equal(t, int64(700), rec.Amount)
	assert.Equal(t, "first-match", rec.ID)
	assert.Equal(t, model.OriginLive, rec.Origin)
}

func TestQualify_Boundaries(t *testing.T) {
	rec, err := Qualify([]Transfer{transfer("200", "0", "lo")}, 200, 1500)
	require.NoError(t, err)
	assert.Equal(t, int64(200), rec.Amount)

	rec, err = Qualify([]Transfer{transfer("1500000000000000000000", "18", "hi")}, 200, 1500)
	require.NoError(t, err)
	assert.Equal(t, int64(1500), rec.Amount)

	_, err = Qualify([]Transfer{transfer("1500000001", "6", "just-over")}, 200, 1500)
	assert.ErrorIs(t, err, ErrNoQualifying)
}

func TestSource_NoQualifyingFallsBackToSynthetic(t *testing.T) {
	f := new(MockFetcher)
	f.On("RecentTransfers", mock.Anything).Return([]Transfer{transfer("1", "6", "dust")}, nil)

	src := NewSource(f, 200, 1500, rand.New(rand.NewPCG(9, 9)))
	rec := src.Next(context.Background())

	assert.Equal(t, model.OriginSynthetic, rec.Origin)
	assert.GreaterOrEqual(t, rec.Amount, int64(200))
	assert.LessOrEqual(t, rec.Amount, int64(1500))
	assert.Regexp(t, hexID, rec.ID)
	f.AssertExpectations(t)
}

func TestSource_FetchErrorFallsBackToSynthetic(t *testing.T) {
	f := new(MockFetcher)
	f.On("RecentTransfers", mock.Anything).Return(nil, errors.New("connection refused"))

	rec := NewSource(f, 200, 1500, rand.New(rand.NewPCG(1, 2))).Next(context.Background())
	assert.Equal(t, model.OriginSynthetic, rec.Origin)
	assert.Regexp(t, hexID, rec.ID)
}

func TestSource_NilFetcher(t *testing.T) {
	rec := NewSource(nil, 200, 1500, rand.New(rand.NewPCG(1, 2))).Next(context.Background())
	assert.Equal(t, model.OriginSynthetic, rec.Origin)
}

func TestSource_SyntheticRange(t *testing.T) {
	src := NewSource(nil, 200, 1500, rand.New(rand.NewPCG(5, 6)))
	seenMin, seenMax := false, false
	for i := 0; i < 20000; i++ {
		rec := src.Synthetic()
		require.GreaterOrEqual(t, rec.Amount, int64(200))
		require.LessOrEqual(t, rec.Amount, int64(1500))
		require.Regexp(t, hexID, rec.ID)
		seenMin = seenMin || rec.Amount == 200
		seenMax = seenMax || rec.Amount == 1500
	}
	assert.True(t, seenMin && seenMax, "both range ends should be reachable")
}

func TestTronscanFetcher_RecentTransfers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "100", r.URL.Query().Get("limit"))
		assert.Equal(t, "0", r.URL.Query().Get("start"))
		assert.Equal(t, "-timestamp", r.URL.Query().Get("sort"))
		assert.Equal(t, "TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t", r.URL.Query().Get("contract_address"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"token_transfers":[
			{"quant":"999999","tokenInfo":{"tokenDecimal":6},"transaction_id":"aa"},
			{"quant":"350000000","tokenInfo":{"tokenDecimal":6},"transaction_id":"bb"}
		]}`))
	}))
	defer server.Close()

	f := NewTronscanFetcher(server.URL, "TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t", 100, 5*time.Second, "")
	transfers, err := f.RecentTransfers(context.Background())
	require.NoError(t, err)
	require.Len(t, transfers, 2)
	assert.Equal(t, "bb", transfers[1].TransactionID)

	rec := NewSource(f, 200, 1500, rand.New(rand.NewPCG(1, 1))).Next(context.Background())
	assert.Equal(t, model.TransactionRecord{Amount: 350, ID: "bb", Origin: model.OriginLive}, rec)
}

func TestTronscanFetcher_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	f := NewTronscanFetcher(server.URL, "c", 100, 5*time.Second, "")
	transfers, err := f.RecentTransfers(context.Background())
	assert.Error(t, err)
	assert.Nil(t, transfers)
	assert.Contains(t, err.Error(), "status 429")
}

func TestTronscanFetcher_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("invalid json"))
	}))
	defer server.Close()

	f := NewTronscanFetcher(server.URL, "c", 100, 5*time.Second, "")
	_, err := f.RecentTransfers(context.Background())
	assert.Error(t, err)

	rec := NewSource(f, 200, 1500, rand.New(rand.NewPCG(2, 2))).Next(context.Background())
	assert.Equal(t, model.OriginSynthetic, rec.Origin)
}

func TestTronscanFetcher_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	f := NewTronscanFetcher(server.URL, "c", 100, 20*time.Millisecond, "")
	_, err := f.RecentTransfers(context.Background())
	assert.Error(t, err)
}
