package fx

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aristath/pricesync/internal/domain"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockRateProvider struct {
	mock.Mock
}

func (m *mockRateProvider) ExchangeRate(ctx context.Context, pair string) (decimal.Decimal, error) {
	args := m.Called(ctx, pair)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestConverter(provider domain.ExchangeRateProvider) (*Converter, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	c := NewConverter(provider, time.Hour, DefaultFallbackRate, zerolog.Nop())
	c.SetClock(clock.Now)
	return c, clock
}

func usd(price string) domain.Quote {
	return domain.Quote{Ticker: "AAPL", Price: decimal.RequireFromString(price), Currency: domain.CurrencyUSD}
}

func TestEURPrice_EURPassesThrough(t *testing.T) {
	provider := new(mockRateProvider)
	c, _ := newTestConverter(provider)

	price := c.EURPrice(context.Background(), domain.Quote{Price: decimal.NewFromInt(50), Currency: domain.CurrencyEUR})

	assert.True(t, price.Equal(decimal.NewFromInt(50)))
	provider.AssertNotCalled(t, "ExchangeRate", mock.Anything, mock.Anything)
}

func TestEURPrice_OtherCurrencyPassesThrough(t *testing.T) {
	provider := new(mockRateProvider)
	c, _ := newTestConverter(provider)

	price := c.EURPrice(context.Background(), domain.Quote{Price: decimal.NewFromInt(250), Currency: "HKD"})

	assert.True(t, price.Equal(decimal.NewFromInt(250)))
	provider.AssertNotCalled(t, "ExchangeRate", mock.Anything, mock.Anything)
}

func TestEURPrice_USDUsesFetchedRate(t *testing.T) {
	provider := new(mockRateProvider)
	provider.On("ExchangeRate", mock.Anything, Pair).Return(decimal.RequireFromString("1.25"), nil).Once()
	c, _ := newTestConverter(provider)

	price := c.EURPrice(context.Background(), usd("190"))

	assert.True(t, price.Equal(decimal.NewFromInt(152)))
	provider.AssertExpectations(t)
}

func TestEURPrice_SingleRequestWithinWindow(t *testing.T) {
	provider := new(mockRateProvider)
	provider.On("ExchangeRate", mock.Anything, Pair).Return(decimal.RequireFromString("1.25"), nil).Once()
	c, clock := newTestConverter(provider)

	first := c.EURPrice(context.Background(), usd("190"))
	clock.Advance(59 * time.Minute)
	second := c.EURPrice(context.Background(), usd("190"))

	assert.True(t, first.Equal(second))
	provider.AssertNumberOfCalls(t, "ExchangeRate", 1)
}

func TestEURPrice_RefetchesAfterWindow(t *testing.T) {
	provider := new(mockRateProvider)
	provider.On("ExchangeRate", mock.Anything, Pair).Return(decimal.RequireFromString("1.25"), nil).Once()
	provider.On("ExchangeRate", mock.Anything, Pair).Return(decimal.RequireFromString("1.00"), nil).Once()
	c, clock := newTestConverter(provider)

	c.EURPrice(context.Background(), usd("100"))
	clock.Advance(61 * time.Minute)
	price := c.EURPrice(context.Background(), usd("100"))

	assert.True(t, price.Equal(decimal.NewFromInt(100)))
	provider.AssertNumberOfCalls(t, "ExchangeRate", 2)
}

func TestEURPrice_FallbackWhenNeverFetched(t *testing.T) {
	provider := new(mockRateProvider)
	provider.On("ExchangeRate", mock.Anything, Pair).Return(decimal.Zero, errors.New("boom"))
	c, _ := newTestConverter(provider)

	price := c.EURPrice(context.Background(), usd("108"))

	assert.True(t, price.Equal(decimal.NewFromInt(100)))
	assert.False(t, c.State().known())
}

func TestEURPrice_LastKnownRateOnFailure(t *testing.T) {
	provider := new(mockRateProvider)
	provider.On("ExchangeRate", mock.Anything, Pair).Return(decimal.RequireFromString("1.25"), nil).Once()
	provider.On("ExchangeRate", mock.Anything, Pair).Return(decimal.Zero, errors.New("provider down"))
	c, clock := newTestConverter(provider)

	c.EURPrice(context.Background(), usd("125"))
	clock.Advance(2 * time.Hour)
	price := c.EURPrice(context.Background(), usd("125"))

	assert.True(t, price.Equal(decimal.NewFromInt(100)))
}

func TestEURPrice_NilProviderUsesFallback(t *testing.T) {
	c := NewConverter(nil, 0, decimal.Zero, zerolog.Nop())

	price := c.EURPrice(context.Background(), usd("216"))

	assert.True(t, price.Equal(decimal.NewFromInt(200)))
}

func TestRate_ConcurrentCallersShareOneRequest(t *testing.T) {
	release := make(chan time.Time)
	provider := new(mockRateProvider)
	provider.On("ExchangeRate", mock.Anything, Pair).
		WaitUntil(release).
		Return(decimal.RequireFromString("1.10"), nil)
	c, _ := newTestConverter(provider)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Rate(context.Background())
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	provider.AssertNumberOfCalls(t, "ExchangeRate", 1)
}

func TestStaticEUR(t *testing.T) {
	rate := decimal.RequireFromString("1.08")

	assert.True(t, StaticEUR(usd("108"), rate).Equal(decimal.NewFromInt(100)))
	assert.True(t, StaticEUR(domain.Quote{Price: decimal.NewFromInt(5), Currency: "EUR"}, rate).Equal(decimal.NewFromInt(5)))
	assert.True(t, StaticEUR(usd("108"), decimal.Zero).Equal(decimal.NewFromInt(108)))
}
