package helpers

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yigit/unicampus/internal/app/models/dto"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	DefaultPage     = 1 // pages are 1-based
)

// Page is a validated, 1-based page request
type Page struct {
	Number int
	Size   int
}

// Offset returns the row offset for the page
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// NewPage clamps page and size into the accepted range
func NewPage(page, size int) Page {
	if size <= 0 || size > MaxPageSize {
		size = DefaultPageSize
	}
	if page < 1 {
		page = DefaultPage
	}
	return Page{Number: page, Size: size}
}

// ParsePaginationParams extracts and validates pagination parameters from the request
func ParsePaginationParams(c *gin.Context) Page {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		page = DefaultPage
	}

	size, err := strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(DefaultPageSize)))
	if err != nil {
		size = DefaultPageSize
	}

	return NewPage(page, size)
}

// NewPaginationInfo creates a standard PaginationInfo DTO.
func NewPaginationInfo(totalItems int64, page Page) dto.PaginationInfo {
	totalPages := 0
	if totalItems > 0 {
		totalPages = int(math.Ceil(float64(totalItems) / float64(page.Size)))
	} else if page.Number == 1 {
		// An empty first page still counts as one page
		totalPages = 1
	}

	currentPage := page.Number
	if totalPages > 0 && currentPage > totalPages {
		currentPage = totalPages
	}

	return dto.PaginationInfo{
		CurrentPage: currentPage,
		TotalPages:  totalPages,
		PageSize:    page.Size,
		TotalItems:  totalItems,
	}
}
