package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/library-api/internal/config"
	"github.com/library-api/internal/models"
	"github.com/library-api/internal/publication"
	"github.com/library-api/internal/service"
)

// ArticleHandler handles article endpoints
type ArticleHandler struct {
	services *service.Services
	cfg      *config.Config
	log      zerolog.Logger
}

// NewArticleHandler creates a new ArticleHandler
func NewArticleHandler(services *service.Services, cfg *config.Config, log zerolog.Logger) *ArticleHandler {
	return &ArticleHandler{
		services: services,
		cfg:      cfg,
		log:      log.With().Str("handler", "article").Logger(),
	}
}

// List handles GET /api/articles
func (h *ArticleHandler) List(c *gin.Context) {
	h.list(c, publication.All())
}

// ListByTag handles GET /api/tags/:id/articles
func (h *ArticleHandler) ListByTag(c *gin.Context) {
	tag, err := h.services.Tags.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.list(c, publication.ByTag(tag.ID))
}

// ListByAuthor handles GET /api/authors/:id/articles
func (h *ArticleHandler) ListByAuthor(c *gin.Context) {
	author, err := h.services.Authors.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.list(c, publication.ByAuthor(author.ID))
}

func (h *ArticleHandler) list(c *gin.Context, scope publication.Scope) {
	p, err := parsePageable(c, &h.cfg.Server)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	articles, err := h.services.Articles.List(c.Request.Context(), scope)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	links := newLinkBuilder(c, h.cfg)
	body, err := paginate(c, links, p, articles, links.renderArticle)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, body)
}

// Get handles GET /api/articles/:id
func (h *ArticleHandler) Get(c *gin.Context) {
	article, err := h.services.Articles.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, newLinkBuilder(c, h.cfg).renderArticle(article))
}

// Create handles POST /api/articles
func (h *ArticleHandler) Create(c *gin.Context) {
	if err := h.services.Articles.AuthorizeCreate(callerFrom(c)); err != nil {
		respondError(c, h.log, err)
		return
	}

	var in models.ArticleInput
	if err := bindJSON(c, &in); err != nil {
		respondError(c, h.log, err)
		return
	}

	article, err := h.services.Articles.Create(c.Request.Context(), callerFrom(c), &in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	view := newLinkBuilder(c, h.cfg).renderArticle(article)
	c.Header("Location", view.URL)
	c.JSON(http.StatusCreated, view)
}

// Replace handles PUT /api/articles/:id
func (h *ArticleHandler) Replace(c *gin.Context) {
	if err := h.services.Articles.AuthorizeWrite(c.Request.Context(), callerFrom(c), c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}

	var in models.ArticleInput
	if err := bindJSON(c, &in); err != nil {
		respondError(c, h.log, err)
		return
	}
	h.update(c, in.Patch())
}

// Patch handles PATCH /api/articles/:id
func (h *ArticleHandler) Patch(c *gin.Context) {
	if err := h.services.Articles.AuthorizeWrite(c.Request.Context(), callerFrom(c), c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}

	var patch models.ArticlePatch
	if err := bindJSON(c, &patch); err != nil {
		respondError(c, h.log, err)
		return
	}
	h.update(c, &patch)
}

func (h *ArticleHandler) update(c *gin.Context, patch *models.ArticlePatch) {
	article, err := h.services.Articles.Update(c.Request.Context(), callerFrom(c), c.Param("id"), patch)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, newLinkBuilder(c, h.cfg).renderArticle(article))
}

// Delete handles DELETE /api/articles/:id
func (h *ArticleHandler) Delete(c *gin.Context) {
	if err := h.services.Articles.Delete(c.Request.Context(), callerFrom(c), c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
