package api

import (
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/library-api/internal/config"
)

// linkBuilder renders absolute resource URLs for one request
type linkBuilder struct {
	base string
}

// newLinkBuilder uses the configured base URL, falling back to the request's scheme and host
func newLinkBuilder(c *gin.Context, cfg *config.Config) linkBuilder {
	if cfg.Server.BaseURL != "" {
		return linkBuilder{base: cfg.Server.BaseURL}
	}

	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return linkBuilder{base: scheme + "://" + c.Request.Host}
}

func (l linkBuilder) collection(name string) string {
	return l.base + "/api/" + name
}

func (l linkBuilder) resource(collection, slug string) string {
	return l.base + "/api/" + collection + "/" + url.PathEscape(slug)
}

func (l linkBuilder) article(slug string) string { return l.resource("articles", slug) }
func (l linkBuilder) tag(slug string) string     { return l.resource("tags", slug) }
func (l linkBuilder) author(slug string) string  { return l.resource("authors", slug) }

// page links to another page of the current list, keeping other query parameters
func (l linkBuilder) page(c *gin.Context, page, size int) string {
	q := c.Request.URL.Query()
	q.Set("page", strconv.Itoa(page))
	q.Set("page_size", strconv.Itoa(size))
	return l.base + c.Request.URL.Path + "?" + q.Encode()
}
