package utils // package utils provides small helpers shared across handlers and services

import "math"

// PageRequest carries the normalized page/limit pair parsed from query
// parameters.  Skip is the offset passed to the store.
type PageRequest struct {
	Page  int
	Limit int
}

// Skip returns the number of documents to skip for this page.
func (p PageRequest) Skip() int64 { return int64((p.Page - 1) * p.Limit) }

// NormalizePage clamps page and limit to sane values.  Page defaults to
// 1, limit to 10, and limit is capped at 100 to bound result sizes.
func NormalizePage(page, limit int) PageRequest {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	return PageRequest{Page: page, Limit: limit}
}

// Pagination is the envelope returned by every list/search endpoint.
type Pagination struct {
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	TotalItems  int64 `json:"totalItems"`
	TotalPages  int   `json:"totalPages"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}

// NewPagination computes the envelope from a page request and the total
// matching document count: totalPages = ceil(totalItems/limit),
// hasNextPage = page < totalPages, hasPrevPage = page > 1.
func NewPagination(req PageRequest, totalItems int64) Pagination {
	totalPages := int(math.Ceil(float64(totalItems) / float64(req.Limit)))
	return Pagination{
		Page:        req.Page,
		Limit:       req.Limit,
		TotalItems:  totalItems,
		TotalPages:  totalPages,
		HasNextPage: req.Page < totalPages,
		HasPrevPage: req.Page > 1,
	}
}
