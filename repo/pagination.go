// Package repo implements the cache-aside data access layer for forum
// content. Reads consult the key-value cache before the document store;
// every mutation writes the store first and then invalidates the cached
// entry, so the read path is the only place that repopulates the cache.
package repo

const (
	defaultPage  = 1
	defaultLimit = 10
)

// Pagination describes one page of a filtered listing.
type Pagination struct {
	Page       int64 `json:"page"`
	Limit      int64 `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
}

func newPagination(page, limit, total int64) Pagination {
	totalPages := total / limit
	if total%limit != 0 {
		totalPages++
	}
	return Pagination{Page: page, Limit: limit, Total: total, TotalPages: totalPages}
}

// normalizePage clamps page/limit to sane values and returns the skip
// offset for the store query.
func normalizePage(page, limit int64) (int64, int64, int64) {
	if page < 1 {
		page = defaultPage
	}
	if limit < 1 {
		limit = defaultLimit
	}
	return page, limit, (page - 1) * limit
}
