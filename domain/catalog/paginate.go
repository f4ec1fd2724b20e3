package catalog

// PageCount returns the number of pages a collection of count records
// occupies at the given page size; at least 1 so an empty view still has a
// valid page to sit on.
func PageCount(count, pageSize int) int {
	if pageSize <= 0 {
		return 1
	}
	pages := (count + pageSize - 1) / pageSize
	if pages < 1 {
		pages = 1
	}
	return pages
}

// ClampPage forces page into [1, PageCount(count, pageSize)]. Out-of-range
// pages are clamped rather than rejected: a view that shrank must never
// strand the user on a page that no longer exists.
func ClampPage(page, count, pageSize int) int {
	if page < 1 {
		return 1
	}
	if max := PageCount(count, pageSize); page > max {
		return max
	}
	return page
}

// Slice returns the visible page of a collection. page is clamped first, so
// the result has length min(pageSize, max(0, len(c)-(page-1)*pageSize)) and
// the call never panics for out-of-range input.
func Slice(c Collection, page, pageSize int) Collection {
	if pageSize <= 0 {
		return Collection{}
	}
	page = ClampPage(page, len(c), pageSize)
	start := (page - 1) * pageSize
	if start >= len(c) {
		return Collection{}
	}
	end := start + pageSize
	if end > len(c) {
		end = len(c)
	}
	return c[start:end]
}
