// Package symbols translates exchange-qualified tickers into provider symbols and
// resolves German security codes (WKN) through a static directory.
package symbols

import "strings"

// Mapping is the provider-side form of a ticker.
type Mapping struct {
	Symbol   string `json:"symbol"`
	Exchange string `json:"exchange,omitempty"`
	IsCrypto bool   `json:"is_crypto,omitempty"`
}

// RequestSymbol returns the symbol as sent to the keyed provider ("SYMBOL" or "SYMBOL:EXCHANGE").
func (m Mapping) RequestSymbol() string {
	if m.Exchange == "" {
		return m.Symbol
	}
	return m.Symbol + ":" + m.Exchange
}

// DefaultOverrides holds tickers whose provider symbol cannot be derived from the suffix rules.
// European ETF listings are priced through their US-listed equivalent; crypto ETPs through the
// underlying pair.
var DefaultOverrides = map[string]Mapping{
	"AMZ.F":   {Symbol: "AMZN"},
	"APC.F":   {Symbol: "AAPL"},
	"MSF.F":   {Symbol: "MSFT"},
	"NVD.F":   {Symbol: "NVDA"},
	"TL0.F":   {Symbol: "TSLA"},
	"ABEA.F":  {Symbol: "GOOGL"},
	"FB2A.F":  {Symbol: "META"},
	"EUNL.DE": {Symbol: "VT"},
	"VGWL.DE": {Symbol: "VT"},
	"VWCE.DE": {Symbol: "VT"},
	"SXR8.DE": {Symbol: "VOO"},
	"BTCE.DE": {Symbol: "BTC/USD", IsCrypto: true},
	"VBTC.DE": {Symbol: "BTC/USD", IsCrypto: true},
	"ZETH.DE": {Symbol: "ETH/USD", IsCrypto: true},
}

// suffixRule strips an exchange suffix and optionally names the provider exchange.
type suffixRule struct {
	suffix   string
	exchange string
}

// Order matters: the first matching suffix wins.
var suffixRules = []suffixRule{
	{suffix: ".F"},
	{suffix: ".DE"},
	{suffix: ".HK", exchange: "HKEX"},
	{suffix: ".V", exchange: "TSXV"},
}

// Mapper maps tickers to provider symbols. It is safe for concurrent use; the
// override table is never mutated after construction.
type Mapper struct {
	overrides map[string]Mapping
}

// NewMapper creates a mapper over the given override table. A nil table uses DefaultOverrides.
func NewMapper(overrides map[string]Mapping) *Mapper {
	if overrides == nil {
		overrides = DefaultOverrides
	}
	normalized := make(map[string]Mapping, len(overrides))
	for ticker, m := range overrides {
		normalized[strings.ToUpper(strings.TrimSpace(ticker))] = m
	}
	return &Mapper{overrides: normalized}
}

// Map returns the best-effort provider mapping for a ticker. It never fails;
// an unknown ticker is returned unchanged.
func (m *Mapper) Map(ticker string) Mapping {
	key := strings.ToUpper(strings.TrimSpace(ticker))

	if mapping, ok := m.overrides[key]; ok {
		return mapping
	}

	for _, rule := range suffixRules {
		if base, ok := strings.CutSuffix(key, rule.suffix); ok && base != "" {
			return Mapping{Symbol: base, Exchange: rule.exchange}
		}
	}

	return Mapping{Symbol: key}
}

// Overrides returns a copy of the override table.
func (m *Mapper) Overrides() map[string]Mapping {
	out := make(map[string]Mapping, len(m.overrides))
	for k, v := range m.overrides {
		out[k] = v
	}
	return out
}
