package domain

import "math"

const (
	DefaultPageSize = 6
	MaxPageSize     = 100
	// MaxPage keeps Page*Limit well inside int32.
	MaxPage = math.MaxInt32 / MaxPageSize
)

type (
	PaginationRequest struct {
		Page  int
		Limit int
	}

	PaginatedResponse[T any] struct {
		Count    int64   `json:"count"`
		Next     *string `json:"next"`
		Previous *string `json:"previous"`
		Results  []T     `json:"results"`
	}
)

// Normalize clamps page to [1, MaxPage] and limit to [1, MaxPageSize], falling back
// to DefaultPageSize when limit is unset.
func (p PaginationRequest) Normalize() PaginationRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Page > MaxPage {
		p.Page = MaxPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageSize
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	return p
}

func (p PaginationRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}
