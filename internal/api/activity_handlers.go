package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"explorer/backend/internal/models"
	"explorer/backend/internal/provider"
)

// SearchRequest represents a search payload
type SearchRequest struct {
	Query string `json:"query" binding:"required"`
}

// ImageRequest represents an image-generation payload
type ImageRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

// SearchQuery calls the search provider and records the result
func (h *Handler) SearchQuery(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid request body"})
		return
	}

	user := currentUser(c)

	result, err := h.search.Search(c.Request.Context(), req.Query)
	if err != nil {
		h.providerError(c, "Search failed", err)
		return
	}

	entry, err := h.history.Create(user.ID, models.HistorySearch, req.Query, result, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to save history"})
		return
	}
	h.publishActivity(c, user, entry)

	c.JSON(http.StatusOK, gin.H{"result": result})
}

// GenerateImage calls the image provider and records the result
func (h *Handler) GenerateImage(c *gin.Context) {
	var req ImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid request body"})
		return
	}

	user := currentUser(c)

	imageURL, err := h.image.Generate(c.Request.Context(), req.Prompt)
	if err != nil {
		h.providerError(c, "Image generation failed", err)
		return
	}

	entry, err := h.history.Create(user.ID, models.HistoryImage, req.Prompt, imageURL, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to save history"})
		return
	}
	h.publishActivity(c, user, entry)

	c.JSON(http.StatusOK, gin.H{"image_url": imageURL})
}

// providerError surfaces an outbound provider failure. No history row
// exists at this point.
func (h *Handler) providerError(c *gin.Context, prefix string, err error) {
	log.Printf("%s: %v", prefix, err)
	if errors.Is(err, provider.ErrNotConfigured) {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": prefix + ": provider API key is not configured"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"detail": prefix + ": " + err.Error()})
}

func (h *Handler) publishActivity(c *gin.Context, user *models.User, entry *models.History) {
	if h.hub == nil {
		return
	}
	requestID := c.GetString(contextRequestIDKey)
	h.hub.PublishActivity(requestID, user.Username, entry)
}
