package api

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"explorer/backend/internal/auth"
	"explorer/backend/internal/models"
	"explorer/backend/internal/store"
)

// UserUpdateRequest carries optional fields for a partial user update.
type UserUpdateRequest struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
}

// RoleChangeRequest carries the new role for a user
type RoleChangeRequest struct {
	Role string `json:"role" binding:"required"`
}

// ListUsers returns all users with pagination and an optional role filter
func (h *Handler) ListUsers(c *gin.Context) {
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if skip < 0 {
		skip = 0
	}
	if limit < 1 || limit > 1000 {
		limit = 100
	}

	roleFilter := c.Query("role_filter")
	if roleFilter != "" && !models.ValidRole(roleFilter) {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid role filter"})
		return
	}

	users, err := h.users.List(roleFilter, skip, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, users)
}

// GetUser returns a single user by id
func (h *Handler) GetUser(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid id"})
		return
	}

	user, err := h.users.FindByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "User not found"})
		return
	}

	c.JSON(http.StatusOK, user)
}

// CreateUser creates a user on behalf of an administrator
func (h *Handler) CreateUser(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid request body"})
		return
	}

	if req.Role == "" {
		req.Role = models.RoleUser
	}
	if !models.ValidRole(req.Role) {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid role"})
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to hash password"})
		return
	}

	user, err := h.users.Create(req.Username, hashed, req.Role)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateUsername) {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "Username already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	log.Printf("Admin %s created new user: %s", currentUser(c).Username, user.Username)
	c.JSON(http.StatusOK, user)
}

// UpdateUser applies the non-nil fields of the payload to a user
func (h *Handler) UpdateUser(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid id"})
		return
	}

	var req UserUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid request body"})
		return
	}

	admin := currentUser(c)

	if req.Role != nil {
		if !models.ValidRole(*req.Role) {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid role"})
			return
		}
		// Lockout protection applies to the role field here too
		if id == admin.ID {
			c.JSON(http.StatusForbidden, gin.H{"detail": "Cannot change your own role"})
			return
		}
	}

	if req.Username != nil {
		if err := h.users.UpdateUsername(id, *req.Username); err != nil {
			h.userUpdateError(c, err)
			return
		}
	}
	if req.Role != nil {
		if err := h.users.UpdateRole(id, *req.Role); err != nil {
			h.userUpdateError(c, err)
			return
		}
	}
	if req.Password != nil {
		hashed, err := auth.HashPassword(*req.Password)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to hash password"})
			return
		}
		if err := h.users.UpdatePassword(id, hashed); err != nil {
			h.userUpdateError(c, err)
			return
		}
	}

	user, err := h.users.FindByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "User not found"})
		return
	}

	log.Printf("Admin %s updated user: %s", admin.Username, user.Username)
	c.JSON(http.StatusOK, user)
}

func (h *Handler) userUpdateError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": "User not found"})
	case errors.Is(err, store.ErrDuplicateUsername):
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Username already exists"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
	}
}

// DeleteUser removes a user and all their history
func (h *Handler) DeleteUser(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid id"})
		return
	}

	admin := currentUser(c)
	if id == admin.ID {
		c.JSON(http.StatusForbidden, gin.H{"detail": "Cannot delete your own account"})
		return
	}

	user, err := h.users.FindByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "User not found"})
		return
	}

	if err := h.users.DeleteWithHistory(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	log.Printf("Admin %s deleted user: %s", admin.Username, user.Username)
	c.JSON(http.StatusOK, gin.H{"detail": fmt.Sprintf("User %s deleted successfully", user.Username)})
}

// ChangeUserRole changes a user's role
func (h *Handler) ChangeUserRole(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid id"})
		return
	}

	var req RoleChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil || !models.ValidRole(req.Role) {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid role. Must be 'user' or 'admin'"})
		return
	}

	admin := currentUser(c)
	if id == admin.ID {
		c.JSON(http.StatusForbidden, gin.H{"detail": "Cannot change your own role"})
		return
	}

	user, err := h.users.FindByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "User not found"})
		return
	}

	oldRole := user.Role
	if err := h.users.UpdateRole(id, req.Role); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	log.Printf("Admin %s changed user %s role from %s to %s", admin.Username, user.Username, oldRole, req.Role)
	c.JSON(http.StatusOK, gin.H{
		"detail": fmt.Sprintf("User %s role changed from %s to %s", user.Username, oldRole, req.Role),
	})
}

// GetUserHistory returns a user's recent history for admin inspection
func (h *Handler) GetUserHistory(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid id"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit < 1 || limit > 200 {
		limit = 50
	}

	user, err := h.users.FindByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "User not found"})
		return
	}

	entries, err := h.history.ListRecentForUser(id, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"role":     user.Role,
		},
		"history":     entries,
		"total_count": len(entries),
	})
}

// GetStats returns aggregate system statistics
func (h *Handler) GetStats(c *gin.Context) {
	totalUsers, err := h.users.CountAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	adminUsers, err := h.users.CountByRole(models.RoleAdmin)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	totalSearches, err := h.history.CountByType(models.HistorySearch)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	totalImages, err := h.history.CountByType(models.HistoryImage)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	weekAgo := time.Now().UTC().Add(-7 * 24 * time.Hour)
	recentActivities, err := h.history.CountSince(weekAgo)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	mostActive, err := h.users.MostActive(5)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users": gin.H{
			"total":   totalUsers,
			"admin":   adminUsers,
			"regular": totalUsers - adminUsers,
		},
		"activities": gin.H{
			"total":       totalSearches + totalImages,
			"searches":    totalSearches,
			"images":      totalImages,
			"recent_week": recentActivities,
		},
		"most_active_users": mostActive,
	})
}
