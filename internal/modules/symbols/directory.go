package symbols

import (
	"strings"

	"github.com/aristath/pricesync/internal/domain"
)

// Entry is what the directory knows about a WKN.
type Entry struct {
	Ticker          string                 `json:"ticker"`
	Name            string                 `json:"name"`
	InstrumentClass domain.InstrumentClass `json:"instrument_class"`
}

// DefaultDirectory maps well-known WKNs to their canonical ticker.
var DefaultDirectory = map[string]Entry{
	// US equities
	"865985": {Ticker: "AAPL", Name: "Apple Inc.", InstrumentClass: domain.ClassStock},
	"906866": {Ticker: "AMZN", Name: "Amazon.com Inc.", InstrumentClass: domain.ClassStock},
	"870747": {Ticker: "MSFT", Name: "Microsoft Corp.", InstrumentClass: domain.ClassStock},
	"918422": {Ticker: "NVDA", Name: "NVIDIA Corp.", InstrumentClass: domain.ClassStock},
	"A1CX3T": {Ticker: "TSLA", Name: "Tesla Inc.", InstrumentClass: domain.ClassStock},
	"A14Y6F": {Ticker: "GOOGL", Name: "Alphabet Inc. Class A", InstrumentClass: domain.ClassStock},
	"A1JWVX": {Ticker: "META", Name: "Meta Platforms Inc.", InstrumentClass: domain.ClassStock},

	// German equities
	"716460": {Ticker: "SAP.DE", Name: "SAP SE", InstrumentClass: domain.ClassStock},
	"723610": {Ticker: "SIE.DE", Name: "Siemens AG", InstrumentClass: domain.ClassStock},
	"840400": {Ticker: "ALV.DE", Name: "Allianz SE", InstrumentClass: domain.ClassStock},
	"A1EWWW": {Ticker: "ADS.DE", Name: "adidas AG", InstrumentClass: domain.ClassStock},

	// Asia
	"A0M4W9": {Ticker: "1211.HK", Name: "BYD Co. Ltd.", InstrumentClass: domain.ClassStock},

	// ETFs
	"A0RPWH": {Ticker: "EUNL.DE", Name: "iShares Core MSCI World UCITS ETF", InstrumentClass: domain.ClassETF},
	"A1JX52": {Ticker: "VGWL.DE", Name: "Vanguard FTSE All-World UCITS ETF (Dist)", InstrumentClass: domain.ClassETF},
	"A2PKXG": {Ticker: "VWCE.DE", Name: "Vanguard FTSE All-World UCITS ETF (Acc)", InstrumentClass: domain.ClassETF},
	"A0YEDG": {Ticker: "SXR8.DE", Name: "iShares Core S&P 500 UCITS ETF", InstrumentClass: domain.ClassETF},

	// Crypto ETPs
	"A27Z30": {Ticker: "BTCE.DE", Name: "BTCetc Physical Bitcoin", InstrumentClass: domain.ClassCrypto},
}

// Directory is a read-only, case-insensitive WKN lookup table.
type Directory struct {
	entries map[string]Entry
}

// NewDirectory creates a directory over the given entries. A nil map uses DefaultDirectory.
func NewDirectory(entries map[string]Entry) *Directory {
	if entries == nil {
		entries = DefaultDirectory
	}
	normalized := make(map[string]Entry, len(entries))
	for code, e := range entries {
		normalized[NormalizeCode(code)] = e
	}
	return &Directory{entries: normalized}
}

// Lookup returns the entry for a WKN. The code is upper-cased before lookup.
func (d *Directory) Lookup(code string) (Entry, bool) {
	e, ok := d.entries[NormalizeCode(code)]
	return e, ok
}

// Len returns the number of known codes.
func (d *Directory) Len() int {
	return len(d.entries)
}

// NormalizeCode trims and upper-cases a security code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
