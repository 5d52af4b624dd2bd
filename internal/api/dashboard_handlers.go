package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"explorer/backend/internal/store"
)

// HistoryUpdateRequest carries optional fields for a partial update.
// Absent fields are left unchanged.
type HistoryUpdateRequest struct {
	Query    *string `json:"query"`
	Result   *string `json:"result"`
	Metadata *string `json:"meta_data"`
}

// ListOwnHistory returns the caller's history, optionally filtered
func (h *Handler) ListOwnHistory(c *gin.Context) {
	user := currentUser(c)

	filter := store.HistoryFilter{
		Type:    c.Query("type"),
		Keyword: c.Query("keyword"),
	}
	if v := c.Query("date_start"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid date_start"})
			return
		}
		filter.DateStart = &t
	}
	if v := c.Query("date_end"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid date_end"})
			return
		}
		filter.DateEnd = &t
	}

	entries, err := h.history.ListForUser(user.ID, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, entries)
}

// UpdateOwnHistory updates fields of one of the caller's history rows
func (h *Handler) UpdateOwnHistory(c *gin.Context) {
	user := currentUser(c)

	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid id"})
		return
	}

	var req HistoryUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid request body"})
		return
	}

	entry, err := h.history.UpdateForUser(id, user.ID, store.HistoryUpdate{
		Query:    req.Query,
		Result:   req.Result,
		Metadata: req.Metadata,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Entry not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, entry)
}

// DeleteOwnHistory deletes one of the caller's history rows
func (h *Handler) DeleteOwnHistory(c *gin.Context) {
	user := currentUser(c)

	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid id"})
		return
	}

	if err := h.history.DeleteForUser(id, user.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Entry not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"detail": "Entry deleted"})
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	return uint(id), err
}

// parseDate accepts RFC 3339 timestamps and plain dates.
func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}
