package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/hr-task-review-api/internal/constants"
)

// PageRequest is the page a list endpoint was asked for.
type PageRequest struct {
	Page     int
	PageSize int
}

// Offset is the number of rows to skip.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// TotalPages is how many pages of PageSize cover total rows.
func (p PageRequest) TotalPages(total int64) int {
	if p.PageSize <= 0 {
		return 0
	}
	pages := int(total) / p.PageSize
	if int(total)%p.PageSize > 0 {
		pages++
	}
	return pages
}

// GetPageRequest reads page and limit (or page_size) from the query string.
// Out-of-range values fall back to the defaults rather than failing.
func GetPageRequest(c *gin.Context) PageRequest {
	page := queryInt(c, constants.MinPageSize, "page")
	size := queryInt(c, constants.DefaultPageSize, "limit", "page_size")

	if page < constants.MinPageSize {
		page = constants.MinPageSize
	}
	if size < constants.MinPageSize || size > constants.MaxPageSize {
		size = constants.DefaultPageSize
	}

	return PageRequest{Page: page, PageSize: size}
}

func queryInt(c *gin.Context, fallback int, keys ...string) int {
	for _, key := range keys {
		raw, ok := c.GetQuery(key)
		if !ok {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return fallback
		}
		return v
	}
	return fallback
}
