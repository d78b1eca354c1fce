package app

import (
	"sort"

	"github.com/Aadit-17/RevEase/internal/domain"
)

// unknownBucket collects reviews whose sentiment or topic is still absent.
const unknownBucket = "unknown"

// aggregate counts occurrences per distinct sentiment and topic. Raw counts
// only; each distribution sums to the session's review count. Buckets are
// ordered count-descending, label-ascending, so output is deterministic.
func aggregate(reviews []domain.Review) (sentiment, topic []domain.Distribution) {
	sentimentCounts := map[string]int{}
	topicCounts := map[string]int{}
	for _, rv := range reviews {
		sentimentCounts[labelOrUnknown(rv.Sentiment)]++
		topicCounts[labelOrUnknown(rv.Topic)]++
	}
	return toDistribution(sentimentCounts), toDistribution(topicCounts)
}

func labelOrUnknown(p *string) string {
	if p == nil || *p == "" {
		return unknownBucket
	}
	return *p
}

func toDistribution(counts map[string]int) []domain.Distribution {
	out := make([]domain.Distribution, 0, len(counts))
	for label, count := range counts {
		out = append(out, domain.Distribution{Label: label, Count: count})
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Count != out[b].Count {
			return out[a].Count > out[b].Count
		}
		return out[a].Label < out[b].Label
	})
	return out
}
