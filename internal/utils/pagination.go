package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/teamtask/internal/constants"
)

// PaginationParams holds the pagination parameters
type PaginationParams struct {
	Page     int
	PageSize int
	Offset   int
}

// PaginationMeta represents the pagination metadata in list responses
type PaginationMeta struct {
	Page      int   `json:"page"`
	PageSize  int   `json:"pageSize"`
	PageCount int   `json:"pageCount"`
	Total     int64 `json:"total"`
}

// GetPaginationParams extracts and validates pagination[page] and
// pagination[pageSize] from the request
func GetPaginationParams(c *gin.Context) PaginationParams {
	return NewPaginationParams(
		c.Query("pagination[page]"),
		c.Query("pagination[pageSize]"),
	)
}

// NewPaginationParams clamps raw page values into a usable window.
func NewPaginationParams(rawPage, rawPageSize string) PaginationParams {
	page, err := strconv.Atoi(rawPage)
	if err != nil || page < constants.MinPageSize {
		page = constants.MinPageSize
	}
	pageSize, err := strconv.Atoi(rawPageSize)
	if err != nil || pageSize < constants.MinPageSize {
		pageSize = constants.DefaultPageSize
	}
	if pageSize > constants.MaxPageSize {
		pageSize = constants.MaxPageSize
	}

	return PaginationParams{
		Page:     page,
		PageSize: pageSize,
		Offset:   (page - 1) * pageSize,
	}
}

// NewPaginationMeta builds response metadata for a page of total results.
func NewPaginationMeta(params PaginationParams, total int64) PaginationMeta {
	pageCount := int(total) / params.PageSize
	if int(total)%params.PageSize > 0 {
		pageCount++
	}

	return PaginationMeta{
		Page:      params.Page,
		PageSize:  params.PageSize,
		PageCount: pageCount,
		Total:     total,
	}
}
