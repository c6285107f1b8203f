package httpresp

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

type ListResponse[T any] struct {
	Data  []T `json:"data"`
	Total int `json:"total"`
}

type PagedResponse[T any] struct {
	Data  []T   `json:"data"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

type Page struct {
	Page  int
	Limit int
}

func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

// PageFrom reads ?page and ?limit. Missing values take defaults; a limit
// above the maximum is clamped. Malformed values answer 400.
func PageFrom(c *gin.Context) (Page, bool) {
	p := Page{Page: 1, Limit: defaultLimit}

	if raw := c.Query("page"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			httperr.BadRequest(c, "invalid_page", "Invalid page.")
			return p, false
		}
		p.Page = v
	}

	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			httperr.BadRequest(c, "invalid_limit", "Invalid limit.")
			return p, false
		}
		p.Limit = min(v, maxLimit)
	}

	return p, true
}

// List writes data with its length. A nil slice is written as [].
func List[T any](c *gin.Context, data []T) {
	if data == nil {
		data = []T{}
	}
	c.JSON(http.StatusOK, ListResponse[T]{
		Data:  data,
		Total: len(data),
	})
}

func Paged[T any](c *gin.Context, data []T, p Page, total int64) {
	if data == nil {
		data = []T{}
	}
	c.JSON(http.StatusOK, PagedResponse[T]{
		Data:  data,
		Page:  p.Page,
		Limit: p.Limit,
		Total: total,
	})
}
