package response

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPagination(t *testing.T) {
	p := NewPagination(2, 2, 5)
	assert.Equal(t, &Pagination{Page: 2, PageSize: 2, TotalPages: 3, TotalItems: 5, HasMore: true, From: 3, To: 4}, p)

	last := NewPagination(3, 2, 5)
	assert.False(t, last.HasMore)
	assert.Equal(t, 5, last.From)
	assert.Equal(t, 5, last.To)
}

func TestNewPaginationNormalizes(t *testing.T) {
	p := NewPagination(0, 0, 3)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, DefaultPageSize, p.PageSize)

	assert.Equal(t, MaxPageSize, NewPagination(1, 1000, 3).PageSize)
}

func TestSlice(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e"}
	assert.Equal(t, []string{"c", "d"}, Slice(items, NewPagination(2, 2, len(items))))
	assert.Equal(t, []string{"e"}, Slice(items, NewPagination(3, 2, len(items))))
	assert.Empty(t, Slice(items, NewPagination(9, 2, len(items))))
	assert.Empty(t, Slice([]string{}, NewPagination(1, 2, 0)))
}
