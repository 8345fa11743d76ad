package helpers

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/skillspad/api/internal/app/models/dto"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	DefaultPage     = 1 // Default page is 1-based
)

// NormalizePage clamps a 1-based page and a page size to their allowed ranges
func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = DefaultPage
	}
	if limit <= 0 {
		limit = DefaultPageSize
	} else if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return page, limit
}

// CalculateSkipLimit converts a 1-based page into the skip and limit of a
// document query.
func CalculateSkipLimit(page, limit int) (skip int64, size int64) {
	page, limit = NormalizePage(page, limit)
	return int64((page - 1) * limit), int64(limit)
}

// NewPaginationInfo creates a standard PaginationInfo DTO.
// page should be the 1-based page number.
func NewPaginationInfo(totalItems int64, page, size int) dto.PaginationInfo {
	page, size = NormalizePage(page, size)

	totalPages := 0
	if totalItems > 0 {
		totalPages = int(math.Ceil(float64(totalItems) / float64(size)))
	}

	return dto.PaginationInfo{
		CurrentPage: page,
		TotalPages:  totalPages,
		PageSize:    size,
		TotalItems:  totalItems,
	}
}

// ParsePaginationParams extracts page and limit query parameters. Invalid
// values fall back to the defaults; oversized limits are capped.
func ParsePaginationParams(c *gin.Context) (page, limit int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		page = DefaultPage
	}
	limit, err = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(DefaultPageSize)))
	if err != nil {
		limit = DefaultPageSize
	}
	return NormalizePage(page, limit)
}
