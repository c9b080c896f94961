package prices

import (
	"context"
	"errors"
	"testing"

	"github.com/aristath/pricesync/internal/domain"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockApplier struct {
	mock.Mock
}

func (m *mockApplier) ApplyPrices(results []domain.BatchResult) (int, int, error) {
	args := m.Called(results)
	return args.Int(0), args.Int(1), args.Error(2)
}

type stubCacheReader struct {
	entries []domain.PriceCacheEntry
}

func (s stubCacheReader) Read(tickers []string) ([]domain.PriceCacheEntry, error) {
	return s.entries, nil
}

func TestService_FetchKeyedMissingKey(t *testing.T) {
	f := newRefresherFixture()
	f.keyed.key = ""
	applier := new(mockApplier)
	service := NewService(f.refresher, stubCacheReader{}, applier, zerolog.Nop())

	summary, err := service.FetchKeyed(context.Background(), []string{"AAPL"})

	assert.True(t, errors.Is(err, domain.ErrMissingAPIKey))
	assert.Nil(t, summary)
	assert.False(t, service.HasAPIKey())
	applier.AssertNotCalled(t, "ApplyPrices", mock.Anything)
}

func TestService_FetchKeyedAppliesResults(t *testing.T) {
	f := newRefresherFixture()
	f.keyed.quotes["AAPL"] = usdQuote("190.00", "188.00")
	applier := new(mockApplier)
	applier.On("ApplyPrices", mock.MatchedBy(func(results []domain.BatchResult) bool {
		return len(results) == 1 && results[0].Ticker == "AAPL"
	})).Return(1, 0, nil)
	service := NewService(f.refresher, stubCacheReader{}, applier, zerolog.Nop())

	summary, err := service.FetchKeyed(context.Background(), []string{"AAPL", "EUNL.DE"})
	require.NoError(t, err)

	assert.Len(t, summary.Prices, 1)
	assert.LessOrEqual(t, summary.UpdatedCount, 1)
	assert.Equal(t, 1, summary.UpdatedCount)
	assert.Equal(t, 0, summary.SkippedCount)
	applier.AssertExpectations(t)
}

func TestService_FetchUsesFallback(t *testing.T) {
	f := newRefresherFixture()
	f.keyed.key = ""
	f.fallback.quotes["AAPL"] = domain.QuoteDetail{Quote: usdQuote("108", "100")}
	applier := new(mockApplier)
	applier.On("ApplyPrices", mock.Anything).Return(0, 1, nil)
	service := NewService(f.refresher, stubCacheReader{}, applier, zerolog.Nop())

	summary, err := service.Fetch(context.Background(), []string{"AAPL"})
	require.NoError(t, err)

	assert.Len(t, summary.Prices, 1)
	assert.Equal(t, 1, summary.SkippedCount)
	assert.Empty(t, f.keyed.requests)
}

func TestService_ApplierErrorStillReturnsPrices(t *testing.T) {
	f := newRefresherFixture()
	f.fallback.quotes["AAPL"] = domain.QuoteDetail{Quote: usdQuote("108", "100")}
	applier := new(mockApplier)
	applier.On("ApplyPrices", mock.Anything).Return(0, 0, errors.New("db closed"))
	service := NewService(f.refresher, stubCacheReader{}, applier, zerolog.Nop())

	summary, err := service.Fetch(context.Background(), []string{"AAPL"})
	require.NoError(t, err)
	assert.Len(t, summary.Prices, 1)
	assert.Equal(t, 0, summary.UpdatedCount)
}

func TestService_NoResultsSkipsApplier(t *testing.T) {
	f := newRefresherFixture()
	applier := new(mockApplier)
	service := NewService(f.refresher, stubCacheReader{}, applier, zerolog.Nop())

	summary, err := service.Fetch(context.Background(), []string{"NOPE"})
	require.NoError(t, err)

	assert.NotNil(t, summary.Prices)
	assert.Empty(t, summary.Prices)
	applier.AssertNotCalled(t, "ApplyPrices", mock.Anything)
}

func TestService_RefreshChoosesPath(t *testing.T) {
	f := newRefresherFixture()
	f.keyed.quotes["AAPL"] = usdQuote("108", "100")
	service := NewService(f.refresher, stubCacheReader{}, nil, zerolog.Nop())

	_, err := service.Refresh(context.Background(), []string{"AAPL"})
	require.NoError(t, err)
	assert.Len(t, f.keyed.requests, 1)
	assert.Empty(t, f.fallback.calls)

	f.keyed.key = ""
	_, err = service.Refresh(context.Background(), []string{"AAPL"})
	require.NoError(t, err)
	assert.Len(t, f.keyed.requests, 1)
	assert.Equal(t, []string{"AAPL"}, f.fallback.calls)
}

func TestService_GetCached(t *testing.T) {
	f := newRefresherFixture()
	reader := stubCacheReader{entries: []domain.PriceCacheEntry{{Ticker: "AAPL", Price: decimal.NewFromInt(1)}}}
	service := NewService(f.refresher, reader, nil, zerolog.Nop())

	entries, err := service.GetCached([]string{"AAPL"})
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
