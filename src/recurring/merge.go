package recurring

import (
	"sort"
	"strings"

	"snapshot-server/src/models"
)

// MergeResult carries the merged stream list plus per-source input
// counts (after the direction filter, before dedup).
type MergeResult struct {
	Streams     []models.RecurringStream
	PlaidCount  int
	CustomCount int
}

// Merge combines aggregator-reported streams with locally detected
// ones. External streams come first in input order, so when both
// sources describe the same stream the external one wins the dedup.
// direction filters both sources symmetrically; empty means all.
func Merge(external, custom []models.RecurringStream, direction string) MergeResult {
	external = filterDirection(external, direction)
	custom = filterDirection(custom, direction)

	result := MergeResult{
		PlaidCount:  len(external),
		CustomCount: len(custom),
	}

	seen := make(map[string]struct{})
	for _, stream := range append(append([]models.RecurringStream{}, external...), custom...) {
		keys := dedupKeys(stream)
		duplicate := false
		for _, key := range keys {
			if _, ok := seen[key]; ok {
				duplicate = true
				break
			}
		}
		if duplicate {
			continue
		}
		for _, key := range keys {
			seen[key] = struct{}{}
		}
		result.Streams = append(result.Streams, stream)
	}

	sort.SliceStable(result.Streams, func(i, j int) bool {
		return result.Streams[i].AvgAmount.Abs().GreaterThan(result.Streams[j].AvgAmount.Abs())
	})

	return result
}

// dedupKeys lists every identity a stream answers to. Externally
// reported streams register both their stream id and the
// description/amount fallback, so a locally detected duplicate of an
// external stream collides and is dropped.
func dedupKeys(stream models.RecurringStream) []string {
	fallback := strings.ToLower(stream.Description) + "-" + stream.AvgAmount.Abs().StringFixed(2)
	if stream.StreamID != nil && *stream.StreamID != "" {
		return []string{*stream.StreamID, fallback}
	}
	return []string{fallback}
}

func filterDirection(streams []models.RecurringStream, direction string) []models.RecurringStream {
	if direction == "" {
		return streams
	}
	filtered := make([]models.RecurringStream, 0, len(streams))
	for _, stream := range streams {
		if stream.Direction == direction {
			filtered = append(filtered, stream)
		}
	}
	return filtered
}
