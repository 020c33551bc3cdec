// Package paging implements the minimal pagination arithmetic spec §8's
// round-trip property names: setPage/offset and setTotalCount/pageCount.
// It intentionally stops there — spec §1 keeps query integration and a
// fluent paging/query-builder surface out of scope.
package paging

// Manager tracks a page/limit cursor and derives an offset and a total
// page count from it, mirroring how the pack's cdata.PagingParams is used
// by callers (page + limit in, skip/take out) without vendoring that
// type's full filter/sort surface.
type Manager struct {
	page       int
	limit      int
	totalCount int
}

// NewManager builds a Manager with limit items per page. A non-positive
// limit disables paging: offset is always 0, and PageCount always
// reports 1 regardless of total count.
func NewManager(limit int) *Manager {
	return &Manager{page: 1, limit: limit}
}

// SetPage moves the cursor to page p, clamping below to page 1.
func (m *Manager) SetPage(p int) *Manager {
	if p < 1 {
		p = 1
	}
	m.page = p
	return m
}

// Page returns the current page number.
func (m *Manager) Page() int { return m.page }

// Offset returns the zero-based row offset for the current page.
func (m *Manager) Offset() int {
	if m.limit <= 0 {
		return 0
	}
	return (m.page - 1) * m.limit
}

// Limit returns the configured page size.
func (m *Manager) Limit() int { return m.limit }

// SetTotalCount records the full row count a COUNT(*) query returned.
func (m *Manager) SetTotalCount(total int) *Manager {
	if total < 0 {
		total = 0
	}
	m.totalCount = total
	return m
}

// PageCount returns ceil(totalCount/limit), or 1 when limit is
// non-positive.
func (m *Manager) PageCount() int {
	if m.limit <= 0 {
		return 1
	}
	count := m.totalCount / m.limit
	if m.totalCount%m.limit != 0 {
		count++
	}
	return count
}
