package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginationNormalize(t *testing.T) {
	tests := []struct {
		in   PaginationRequest
		want PaginationRequest
	}{
		{PaginationRequest{}, PaginationRequest{Page: 1, Limit: DefaultPageSize}},
		{PaginationRequest{Page: -3, Limit: 500}, PaginationRequest{Page: 1, Limit: MaxPageSize}},
		{PaginationRequest{Page: 4, Limit: 10}, PaginationRequest{Page: 4, Limit: 10}},
		{PaginationRequest{Page: math.MaxInt, Limit: 10}, PaginationRequest{Page: MaxPage, Limit: 10}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.in.Normalize())
	}
}

func TestPaginationOffsetNeverOverflows(t *testing.T) {
	p := PaginationRequest{Page: math.MaxInt, Limit: MaxPageSize}.Normalize()

	assert.Positive(t, p.Offset())
	assert.Positive(t, p.Page*p.Limit)
	assert.Equal(t, (MaxPage-1)*MaxPageSize, p.Offset())
}
