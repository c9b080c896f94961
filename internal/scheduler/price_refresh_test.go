package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/aristath/pricesync/internal/domain"
	"github.com/aristath/pricesync/internal/events"
	"github.com/aristath/pricesync/internal/modules/prices"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockTickerSource struct {
	mock.Mock
}

func (m *mockTickerSource) Tickers() ([]string, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type mockPriceRefresher struct {
	mock.Mock
}

func (m *mockPriceRefresher) Refresh(ctx context.Context, tickers []string) (*prices.RefreshSummary, error) {
	args := m.Called(ctx, tickers)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*prices.RefreshSummary), args.Error(1)
}

func newPriceRefreshJob() (*PriceRefreshJob, *mockTickerSource, *mockPriceRefresher) {
	tickers := new(mockTickerSource)
	refresher := new(mockPriceRefresher)
	job := NewPriceRefreshJob(context.Background(), tickers, refresher)
	job.SetLogger(zerolog.Nop())
	return job, tickers, refresher
}

func TestPriceRefreshJob_Name(t *testing.T) {
	job, _, _ := newPriceRefreshJob()
	assert.Equal(t, "price_refresh", job.Name())
}

func TestPriceRefreshJob_RefreshesHeldTickers(t *testing.T) {
	job, tickers, refresher := newPriceRefreshJob()
	tickers.On("Tickers").Return([]string{"AAPL", "EUNL.DE"}, nil)
	refresher.On("Refresh", mock.Anything, []string{"AAPL", "EUNL.DE"}).Return(&prices.RefreshSummary{
		Prices:       []domain.BatchResult{{Ticker: "AAPL"}, {Ticker: "EUNL.DE"}},
		UpdatedCount: 2,
	}, nil)

	assert.NoError(t, job.Run())
	refresher.AssertExpectations(t)
}

func TestPriceRefreshJob_NoPositions(t *testing.T) {
	job, tickers, refresher := newPriceRefreshJob()
	tickers.On("Tickers").Return([]string{}, nil)

	assert.NoError(t, job.Run())
	refresher.AssertNotCalled(t, "Refresh", mock.Anything, mock.Anything)
}

func TestPriceRefreshJob_TickerSourceFails(t *testing.T) {
	job, tickers, _ := newPriceRefreshJob()
	tickers.On("Tickers").Return(nil, errors.New("db closed"))

	err := job.Run()
	assert.ErrorContains(t, err, "db closed")
}

func TestPriceRefreshJob_MissingKeyIsAnError(t *testing.T) {
	job, tickers, refresher := newPriceRefreshJob()
	tickers.On("Tickers").Return([]string{"AAPL"}, nil)
	refresher.On("Refresh", mock.Anything, mock.Anything).Return(nil, domain.ErrMissingAPIKey)

	err := job.Run()
	assert.True(t, errors.Is(err, domain.ErrMissingAPIKey))
}

func TestPriceRefreshJob_InterruptedRunReportsError(t *testing.T) {
	job, tickers, refresher := newPriceRefreshJob()
	tickers.On("Tickers").Return([]string{"AAPL"}, nil)
	refresher.On("Refresh", mock.Anything, mock.Anything).Return(&prices.RefreshSummary{}, context.Canceled)

	err := job.Run()
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestPriceRefreshJob_PublishesFailures(t *testing.T) {
	job, tickers, _ := newPriceRefreshJob()
	tickers.On("Tickers").Return(nil, errors.New("db closed"))

	bus := events.NewBus(zerolog.Nop())
	job.SetErrorReporter(events.NewManager(bus, zerolog.Nop()))

	var got *events.ErrorEventData
	bus.Subscribe(events.ErrorOccurred, func(event *events.Event) {
		got = event.Data.(*events.ErrorEventData)
	})

	require.Error(t, job.Run())
	require.NotNil(t, got)
	assert.Contains(t, got.Error, "db closed")
	assert.Equal(t, "price_refresh", got.Context["job"])
}
