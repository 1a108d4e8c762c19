package api

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/library-api/internal/apperr"
	"github.com/library-api/internal/config"
)

// pageable is the requested window of a list
type pageable struct {
	Page int
	Size int
}

// sanitize clamps the window to the configured limits
func (p *pageable) sanitize(cfg *config.ServerConfig) {
	if p.Size <= 0 {
		p.Size = cfg.DefaultPageSize
	}
	if p.Size > cfg.MaxPageSize {
		p.Size = cfg.MaxPageSize
	}
	if p.Page < 1 {
		p.Page = 1
	}
}

// page is the paginated response envelope
type page[T any] struct {
	Count    int     `json:"count"`
	Page     int     `json:"page"`
	PageSize int     `json:"page_size"`
	LastPage int     `json:"last_page"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// parsePageable reads page and page_size; a non-numeric value is a bad request
func parsePageable(c *gin.Context, cfg *config.ServerConfig) (pageable, error) {
	var p pageable
	for _, f := range []struct {
		name string
		dst  *int
	}{{"page", &p.Page}, {"page_size", &p.Size}} {
		raw := c.Query(f.name)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return p, apperr.InvalidField(f.name, "a valid integer is required")
		}
		*f.dst = v
	}
	p.sanitize(cfg)
	return p, nil
}

// paginate slices items to the requested page. Asking past the last page is not found.
func paginate[S any, T any](c *gin.Context, links linkBuilder, p pageable, items []S, render func(S) T) (*page[T], error) {
	total := len(items)
	lastPage := 0
	if total > 0 {
		lastPage = (total + p.Size - 1) / p.Size
	}
	if (total > 0 && p.Page > lastPage) || (total == 0 && p.Page > 1) {
		return nil, apperr.NotFound("page")
	}

	from := (p.Page - 1) * p.Size
	to := min(from+p.Size, total)

	out := &page[T]{
		Count:    total,
		Page:     p.Page,
		PageSize: p.Size,
		LastPage: lastPage,
		Results:  make([]T, 0, to-from),
	}
	for _, item := range items[from:to] {
		out.Results = append(out.Results, render(item))
	}

	if p.Page < lastPage {
		next := links.page(c, p.Page+1, p.Size)
		out.Next = &next
	}
	if p.Page > 1 {
		prev := links.page(c, p.Page-1, p.Size)
		out.Previous = &prev
	}
	return out, nil
}
