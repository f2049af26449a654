package util

const (
	DefaultPageSize = 50
	MaxPageSize     = 100
)

// Calculate turns a 1-based page and a page size into offset and limit.
// Out-of-range sizes fall back to DefaultPageSize.
func Calculate(page, size int) (offset, limit int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > MaxPageSize {
		size = DefaultPageSize
	}
	offset = (page - 1) * size
	return offset, size
}
