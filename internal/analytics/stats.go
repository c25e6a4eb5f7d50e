package analytics

// Default aggregation bounds. Configurable per store; these match the
// documented defaults.
const (
	DefaultStatsWindowDays = 30
	DefaultTopLimit        = 20
)

// Stats summarizes click activity for a single short code.
type Stats struct {
	TotalClicks  int64           `json:"totalClicks"`
	DailyClicks  []DailyCount    `json:"dailyClicks"`
	TopReferrers []ReferrerCount `json:"topReferrers"`
	TopCountries []CountryCount  `json:"topCountries"`
}

// DailyCount is the number of clicks on one UTC calendar date.
type DailyCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// ReferrerCount is the number of clicks from one referrer.
type ReferrerCount struct {
	Referrer string `json:"referrer"`
	Count    int64  `json:"count"`
}

// CountryCount is the number of clicks from one country.
type CountryCount struct {
	Country string `json:"country"`
	Count   int64  `json:"count"`
}
