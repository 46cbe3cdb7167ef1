package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wikimasters/wikimasters/internal/model"
	"github.com/wikimasters/wikimasters/internal/service"
	"github.com/wikimasters/wikimasters/internal/utils"
)

// TagHandler handles tag-related HTTP requests
type TagHandler struct {
	tagService *service.TagService
	logger     *zap.Logger
}

// NewTagHandler creates a new tag handler
func NewTagHandler(tagService *service.TagService, logger *zap.Logger) *TagHandler {
	return &TagHandler{
		tagService: tagService,
		logger:     logger,
	}
}

// List handles retrieving all tags
// GET /api/v1/tags
func (h *TagHandler) List(c *gin.Context) {
	tags, err := h.tagService.GetAllTags(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to get tags", zap.Error(err))
		utils.SendErrorResponse(c, http.StatusInternalServerError, "Failed to fetch tags")
		return
	}

	utils.SendDataResponse(c, http.StatusOK, tags)
}

// Create handles creating a new tag
// POST /api/v1/tags
func (h *TagHandler) Create(c *gin.Context) {
	var request model.TagCreate
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.SendErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	tag, err := h.tagService.CreateTag(c.Request.Context(), request.Name)
	if err != nil {
		if errors.Is(err, service.ErrTagExists) || errors.Is(err, service.ErrTagInvalid) {
			utils.SendErrorResponse(c, http.StatusBadRequest, err.Error())
			return
		}

		h.logger.Error("Failed to create tag", zap.Error(err))
		utils.SendErrorResponse(c, http.StatusInternalServerError, "Failed to create tag")
		return
	}

	utils.SendDataResponse(c, http.StatusCreated, tag)
}
