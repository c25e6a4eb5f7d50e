package analytics

import "time"

// TopicLinkClicked is the queue topic carrying click events from the
// redirect path to the workers.
const TopicLinkClicked = "link.clicked"

// DirectReferrer is the normalized referrer for clicks that arrive without
// one.
const DirectReferrer = "direct"

// ClickEvent records a single successful redirect. Events are immutable and
// append-only; delivery is at-least-once, so rare duplicate counts are
// tolerated in the aggregates.
type ClickEvent struct {
	ShortCode string    `json:"shortCode"`
	Timestamp time.Time `json:"timestamp"`
	Referrer  string    `json:"referrer"`
	ClientIP  string    `json:"clientIp,omitempty"`
	Country   string    `json:"country,omitempty"`
	UserAgent string    `json:"userAgent,omitempty"`
}
