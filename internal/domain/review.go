package domain

import (
	"time"

	"github.com/google/uuid"
)

// Review is the sole persistent entity. Sentiment and Reply are written by
// background tasks after the row exists, so a freshly created review may be
// read back with both nil.
type Review struct {
	ID        int64
	SessionID uuid.UUID
	Location  string
	Rating    int
	Text      string
	Date      time.Time
	Topic     *string
	Sentiment *string
	Reply     *string
	CreatedAt time.Time
}

// ReviewCreate is an incoming review before the store assigns id/created_at.
type ReviewCreate struct {
	SessionID uuid.UUID
	Location  string
	Rating    int
	Text      string
	Date      time.Time
	Topic     *string
}

// TopicAll is the sentinel meaning "no topic filter".
const TopicAll = "all"

// ReviewFilter holds the optional, conjunctive list filters.
type ReviewFilter struct {
	Location  *string
	Sentiment *string
	Topic     *string // TopicAll (or nil) disables the topic filter
	Text      *string // case-insensitive substring match
}

type ReviewPage struct {
	Items      []Review
	Total      int
	Page       int
	PageSize   int
	TotalPages int
}

// Analysis is a sentiment judgment, either model-produced or the rating
// heuristic fallback.
type Analysis struct {
	Sentiment string
	Reasoning string
}

// ReplySuggestion is a generated reply, either model-produced or the rating
// template fallback.
type ReplySuggestion struct {
	Reply     string
	Reasoning string
}

// Distribution is one (label, count) bucket of an analytics breakdown.
type Distribution struct {
	Label string
	Count int
}
