package symbols

import "strings"

var suffixExchanges = []struct {
	suffix   string
	exchange string
}{
	{".DE", "XETRA"},
	{".F", "FRA"},
	{".HK", "HKEX"},
	{".V", "TSXV"},
	{".SW", "SIX"},
	{".AS", "AMS"},
	{".PA", "PAR"},
	{".L", "LSE"},
}

// ExchangeForTicker derives a display exchange from the ticker suffix.
// Bare tickers are US listings.
func ExchangeForTicker(ticker string) string {
	upper := strings.ToUpper(ticker)
	for _, s := range suffixExchanges {
		if strings.HasSuffix(upper, s.suffix) {
			return s.exchange
		}
	}
	if strings.Contains(upper, ".") {
		return upper[strings.LastIndex(upper, ".")+1:]
	}
	return "US"
}

// IsGermanListing reports whether a ticker trades on Xetra or Frankfurt.
func IsGermanListing(ticker string) bool {
	upper := strings.ToUpper(ticker)
	return strings.HasSuffix(upper, ".DE") || strings.HasSuffix(upper, ".F")
}
