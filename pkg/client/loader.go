package client

import "context"

// Fetcher loads one page of a listing.
type Fetcher[T any] func(ctx context.Context, page int) (*Page[T], error)

// PageLoader accumulates the pages of a listing the way a "load more" view does.
// It is not safe for concurrent use.
type PageLoader[T any] struct {
	fetch Fetcher[T]
	items []T
	page  int
	total int64
	more  bool
}

// NewPageLoader creates a loader; nothing is fetched until Load is called.
func NewPageLoader[T any](fetch Fetcher[T]) *PageLoader[T] {
	return &PageLoader[T]{fetch: fetch, more: true}
}

// Load fetches page. With reset the accumulated items are replaced (e.g. when
// switching to another profile); otherwise the page is appended.
// A failed fetch leaves the loader untouched.
func (l *PageLoader[T]) Load(ctx context.Context, page int, reset bool) error {
	p, err := l.fetch(ctx, page)
	if err != nil {
		return err
	}

	if reset {
		l.items = append([]T(nil), p.Items...)
		l.more = true
	} else {
		l.items = append(l.items, p.Items...)
	}
	l.page = page
	l.total = p.Total

	if int64(len(l.items)) >= p.Total || p.Pages <= 1 {
		l.more = false
	}
	return nil
}

// Reset loads the first page, discarding everything loaded so far.
func (l *PageLoader[T]) Reset(ctx context.Context) error {
	return l.Load(ctx, 1, true)
}

// Next loads the page after the last one loaded. It is a no-op once More is false.
func (l *PageLoader[T]) Next(ctx context.Context) error {
	if !l.more {
		return nil
	}
	return l.Load(ctx, l.page+1, false)
}

// Items returns a copy of everything loaded so far.
func (l *PageLoader[T]) Items() []T {
	return append([]T(nil), l.items...)
}

// More reports whether another page may be loaded.
func (l *PageLoader[T]) More() bool { return l.more }

// Total is the collection size reported by the last fetch.
func (l *PageLoader[T]) Total() int64 { return l.total }

// Page is the last page loaded (0 before the first load).
func (l *PageLoader[T]) Page() int { return l.page }
