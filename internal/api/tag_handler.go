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

// TagHandler handles tag endpoints
type TagHandler struct {
	services *service.Services
	cfg      *config.Config
	log      zerolog.Logger
}

// NewTagHandler creates a new TagHandler
func NewTagHandler(services *service.Services, cfg *config.Config, log zerolog.Logger) *TagHandler {
	return &TagHandler{
		services: services,
		cfg:      cfg,
		log:      log.With().Str("handler", "tag").Logger(),
	}
}

// List handles GET /api/tags
func (h *TagHandler) List(c *gin.Context) {
	p, err := parsePageable(c, &h.cfg.Server)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	tags, err := h.services.Tags.List(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	links := newLinkBuilder(c, h.cfg)
	body, err := paginate(c, links, p, tags, links.renderTag)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, body)
}

// Get handles GET /api/tags/:id; only visible articles are linked
func (h *TagHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	tag, err := h.services.Tags.Get(ctx, c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	articles, err := h.services.Articles.List(ctx, publication.ByTag(tag.ID))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	links := newLinkBuilder(c, h.cfg)
	c.JSON(http.StatusOK, tagDetailView{
		tagView:  links.renderTag(tag),
		Articles: links.articleLinks(articles),
	})
}

// Create handles POST /api/tags
func (h *TagHandler) Create(c *gin.Context) {
	if err := h.services.Tags.AuthorizeWrite(callerFrom(c)); err != nil {
		respondError(c, h.log, err)
		return
	}

	var in models.TagInput
	if err := bindJSON(c, &in); err != nil {
		respondError(c, h.log, err)
		return
	}

	tag, err := h.services.Tags.Create(c.Request.Context(), callerFrom(c), &in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	view := newLinkBuilder(c, h.cfg).renderTag(tag)
	c.Header("Location", view.URL)
	c.JSON(http.StatusCreated, view)
}

// Update handles PUT and PATCH /api/tags/:id
func (h *TagHandler) Update(c *gin.Context) {
	if err := h.services.Tags.AuthorizeWrite(callerFrom(c)); err != nil {
		respondError(c, h.log, err)
		return
	}

	var in models.TagInput
	if err := bindJSON(c, &in); err != nil {
		respondError(c, h.log, err)
		return
	}

	tag, err := h.services.Tags.Update(c.Request.Context(), callerFrom(c), c.Param("id"), &in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, newLinkBuilder(c, h.cfg).renderTag(tag))
}

// Delete handles DELETE /api/tags/:id
func (h *TagHandler) Delete(c *gin.Context) {
	if err := h.services.Tags.Delete(c.Request.Context(), callerFrom(c), c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
