package feed

import (
	"sort"

	"camerpulse-feed/internal/domain"
)

// AssemblePage sorts scored candidates and slices one page at the given
// offset. Order: score descending, ties by CreatedAt descending, remaining
// ties keep fetch order. HasNextPage is true iff candidates remain beyond
// the slice. Pure; pagination state lives in the caller's cursor.
func AssemblePage(candidates []domain.FeedItem, pageSize, offset int) domain.FeedPage {
	sorted := make([]domain.FeedItem, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	if offset < 0 {
		offset = 0
	}
	if offset > len(sorted) {
		offset = len(sorted)
	}
	end := offset + pageSize
	if end > len(sorted) {
		end = len(sorted)
	}

	return domain.FeedPage{
		Items:       sorted[offset:end],
		HasNextPage: end < len(sorted),
	}
}
