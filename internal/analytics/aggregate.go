package analytics

import (
	"sort"
	"time"
)

const dateLayout = "2006-01-02"

// Aggregate computes all stat facets for a set of click events in a single
// pass: total count, daily buckets for the trailing windowDays keyed by UTC
// calendar date (ascending), and referrer/country breakdowns sorted by count
// descending and capped at topLimit. Empty referrers are normalized to
// "direct"; events without a resolved country are excluded from the country
// breakdown.
func Aggregate(events []ClickEvent, now time.Time, windowDays, topLimit int) *Stats {
	cutoff := now.UTC().AddDate(0, 0, -(windowDays - 1)).Truncate(24 * time.Hour)

	daily := make(map[string]int64)
	referrers := make(map[string]int64)
	countries := make(map[string]int64)

	stats := &Stats{}

	for i := range events {
		e := &events[i]
		stats.TotalClicks++

		ts := e.Timestamp.UTC()
		if !ts.Before(cutoff) {
			daily[ts.Format(dateLayout)]++
		}

		referrer := e.Referrer
		if referrer == "" {
			referrer = DirectReferrer
		}

		referrers[referrer]++

		if e.Country != "" {
			countries[e.Country]++
		}
	}

	stats.DailyClicks = make([]DailyCount, 0, len(daily))
	for date, count := range daily {
		stats.DailyClicks = append(stats.DailyClicks, DailyCount{Date: date, Count: count})
	}

	sort.Slice(stats.DailyClicks, func(i, j int) bool {
		return stats.DailyClicks[i].Date < stats.DailyClicks[j].Date
	})

	stats.TopReferrers = topReferrers(referrers, topLimit)
	stats.TopCountries = topCountries(countries, topLimit)

	return stats
}

func topReferrers(counts map[string]int64, limit int) []ReferrerCount {
	out := make([]ReferrerCount, 0, len(counts))
	for referrer, count := range counts {
		out = append(out, ReferrerCount{Referrer: referrer, Count: count})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}

		return out[i].Referrer < out[j].Referrer
	})

	if len(out) > limit {
		out = out[:limit]
	}

	return out
}

func topCountries(counts map[string]int64, limit int) []CountryCount {
	out := make([]CountryCount, 0, len(counts))
	for country, count := range counts {
		out = append(out, CountryCount{Country: country, Count: count})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}

		return out[i].Country < out[j].Country
	})

	if len(out) > limit {
		out = out[:limit]
	}

	return out
}
