package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wikimasters/wikimasters/internal/middleware"
	"github.com/wikimasters/wikimasters/internal/model"
	"github.com/wikimasters/wikimasters/internal/service"
	"github.com/wikimasters/wikimasters/internal/utils"
)

// ArticleHandler handles article-related HTTP requests
type ArticleHandler struct {
	articleService  *service.ArticleService
	pageviewService *service.PageviewService
	logger          *zap.Logger
}

// NewArticleHandler creates a new article handler
func NewArticleHandler(
	articleService *service.ArticleService,
	pageviewService *service.PageviewService,
	logger *zap.Logger,
) *ArticleHandler {
	return &ArticleHandler{
		articleService:  articleService,
		pageviewService: pageviewService,
		logger:          logger,
	}
}

// List handles the cached article listing
// GET /api/v1/articles
func (h *ArticleHandler) List(c *gin.Context) {
	articles, err := h.articleService.GetArticles(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to get articles", zap.Error(err))
		utils.SendErrorResponse(c, http.StatusInternalServerError, "Failed to fetch articles")
		return
	}

	utils.SendDataResponse(c, http.StatusOK, articles)
}

// Get handles a single article read and counts the view. The increment is
// best-effort: a store failure is logged and the article is served anyway,
// with the last known count when one can still be read.
// GET /api/v1/articles/:id
func (h *ArticleHandler) Get(c *gin.Context) {
	id := c.Param("id")

	article := h.articleService.GetArticleByID(c.Request.Context(), id)
	if article == nil {
		utils.SendErrorResponse(c, http.StatusNotFound, "Article not found")
		return
	}

	views, err := h.pageviewService.Increment(c.Request.Context(), id)
	if err != nil {
		h.logger.Warn("Pageview increment skipped", zap.String("id", id), zap.Error(err))
		// Serve the last known count instead of zero when reads still work
		if last, lerr := h.pageviewService.Count(c.Request.Context(), id); lerr == nil {
			views = last
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      article,
		"pageviews": views,
	})
}

// Create handles creating a new article
// POST /api/v1/articles
func (h *ArticleHandler) Create(c *gin.Context) {
	var request model.ArticleCreate
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.SendErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	userID, exists := c.Get(middleware.UserIDKey)
	if !exists {
		utils.SendErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	result := h.articleService.Create(c.Request.Context(), userID.(string), &request)
	c.JSON(statusForMutation(result, http.StatusCreated), result)
}

// Update handles updating an owned article
// PUT /api/v1/articles/:id
func (h *ArticleHandler) Update(c *gin.Context) {
	var request model.ArticleUpdate
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.SendErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	userID, exists := c.Get(middleware.UserIDKey)
	if !exists {
		utils.SendErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	result := h.articleService.Update(c.Request.Context(), userID.(string), c.Param("id"), &request)
	c.JSON(statusForMutation(result, http.StatusOK), result)
}

// Delete handles deleting an owned article
// DELETE /api/v1/articles/:id
func (h *ArticleHandler) Delete(c *gin.Context) {
	userID, exists := c.Get(middleware.UserIDKey)
	if !exists {
		utils.SendErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	result := h.articleService.Delete(c.Request.Context(), userID.(string), c.Param("id"))
	c.JSON(statusForMutation(result, http.StatusOK), result)
}

// statusForMutation maps a mutation result onto an HTTP status while
// keeping the result body shape itself unchanged. "Article not found"
// covers both missing and not-owner, on purpose.
func statusForMutation(result *model.MutationResult, successStatus int) int {
	switch {
	case result.Success:
		return successStatus
	case result.Error == "Article not found":
		return http.StatusNotFound
	case strings.HasPrefix(result.Error, "Invalid payload"):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
