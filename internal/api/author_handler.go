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

// AuthorHandler handles author endpoints
type AuthorHandler struct {
	services *service.Services
	cfg      *config.Config
	log      zerolog.Logger
}

// NewAuthorHandler creates a new AuthorHandler
func NewAuthorHandler(services *service.Services, cfg *config.Config, log zerolog.Logger) *AuthorHandler {
	return &AuthorHandler{
		services: services,
		cfg:      cfg,
		log:      log.With().Str("handler", "author").Logger(),
	}
}

// List handles GET /api/authors
func (h *AuthorHandler) List(c *gin.Context) {
	p, err := parsePageable(c, &h.cfg.Server)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	authors, err := h.services.Authors.List(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	links := newLinkBuilder(c, h.cfg)
	body, err := paginate(c, links, p, authors, links.renderAuthor)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, body)
}

// Get handles GET /api/authors/:id; only visible articles are linked
func (h *AuthorHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	author, err := h.services.Authors.Get(ctx, c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	articles, err := h.services.Articles.List(ctx, publication.ByAuthor(author.ID))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	links := newLinkBuilder(c, h.cfg)
	c.JSON(http.StatusOK, authorDetailView{
		authorView: links.renderAuthor(author),
		Articles:   links.articleLinks(articles),
	})
}

// Register handles POST /api/authors and POST /api/register
func (h *AuthorHandler) Register(c *gin.Context) {
	if err := h.services.Authors.AuthorizeRegister(callerFrom(c)); err != nil {
		respondError(c, h.log, err)
		return
	}

	var in models.RegisterInput
	if err := bindJSON(c, &in); err != nil {
		respondError(c, h.log, err)
		return
	}

	author, err := h.services.Authors.Register(c.Request.Context(), callerFrom(c), &in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	view := newLinkBuilder(c, h.cfg).renderAuthor(author)
	c.Header("Location", view.URL)
	c.JSON(http.StatusCreated, view)
}

// Replace handles PUT /api/authors/:id
func (h *AuthorHandler) Replace(c *gin.Context) {
	if err := h.services.Authors.AuthorizeWrite(c.Request.Context(), callerFrom(c), c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}

	var in models.RegisterInput
	if err := bindJSON(c, &in); err != nil {
		respondError(c, h.log, err)
		return
	}
	h.update(c, in.Patch())
}

// Patch handles PATCH /api/authors/:id
func (h *AuthorHandler) Patch(c *gin.Context) {
	if err := h.services.Authors.AuthorizeWrite(c.Request.Context(), callerFrom(c), c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}

	var patch models.AuthorPatch
	if err := bindJSON(c, &patch); err != nil {
		respondError(c, h.log, err)
		return
	}
	h.update(c, &patch)
}

func (h *AuthorHandler) update(c *gin.Context, patch *models.AuthorPatch) {
	author, err := h.services.Authors.Update(c.Request.Context(), callerFrom(c), c.Param("id"), patch)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, newLinkBuilder(c, h.cfg).renderAuthor(author))
}

// Delete handles DELETE /api/authors/:id
func (h *AuthorHandler) Delete(c *gin.Context) {
	if err := h.services.Authors.Delete(c.Request.Context(), callerFrom(c), c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
