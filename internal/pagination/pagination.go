// Package pagination implements fixed-size offset paging over gorm queries.
package pagination

import (
	"math"
	"strconv"

	"gorm.io/gorm"
)

// DefaultPageSize is the number of records returned per page.
const DefaultPageSize = 5

// Page is one slice of a paginated collection.
type Page[T any] struct {
	Items      []T
	TotalItems int64
	TotalPages int
	Current    int
	Size       int
}

// ParsePage converts a raw page parameter to a page number.
// Missing, non-numeric and non-positive values all mean page 1.
func ParsePage(raw string) int {
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// Offset returns the number of records preceding page.
// It saturates at math.MaxInt instead of overflowing.
func Offset(page, size int) int {
	if page < 1 {
		page = 1
	}
	if size > 0 && page-1 > math.MaxInt/size {
		return math.MaxInt
	}
	return (page - 1) * size
}

// TotalPages returns ceil(total / size).
func TotalPages(total int64, size int) int {
	if size <= 0 {
		size = 1
	}
	return int((total + int64(size) - 1) / int64(size))
}

// NewPage creates a new Page.
func NewPage[T any](items []T, totalItems int64, page, size int) *Page[T] {
	if size <= 0 {
		size = DefaultPageSize
	}
	if items == nil {
		items = []T{}
	}
	return &Page[T]{
		Items:      items,
		TotalItems: totalItems,
		TotalPages: TotalPages(totalItems, size),
		Current:    page,
		Size:       size,
	}
}

// Paginate counts the records matched by query and fetches one page of them.
// The scopes (ordering, preloads) only apply to the fetch, never to the count.
func Paginate[T any](query *gorm.DB, page, size int, scopes ...func(*gorm.DB) *gorm.DB) (*Page[T], error) {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = DefaultPageSize
	}

	base := query.Session(&gorm.Session{})

	var totalItems int64
	if err := base.Model(new(T)).Count(&totalItems).Error; err != nil {
		return nil, err
	}

	// No table can hold that many rows, and gorm drops a negative offset.
	if page-1 > math.MaxInt/size {
		return NewPage([]T{}, totalItems, page, size), nil
	}

	results := make([]T, 0, size)
	if err := base.Model(new(T)).Scopes(scopes...).Offset(Offset(page, size)).Limit(size).Find(&results).Error; err != nil {
		return nil, err
	}

	return NewPage(results, totalItems, page, size), nil
}
