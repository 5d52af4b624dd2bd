package store

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"explorer/backend/internal/models"
)

// HistoryStore provides access to activity history records.
type HistoryStore struct {
	db *gorm.DB
}

// NewHistoryStore creates a new history store
func NewHistoryStore(db *gorm.DB) *HistoryStore {
	return &HistoryStore{db: db}
}

// HistoryFilter narrows a user's history listing. Zero values mean
// "no restriction".
type HistoryFilter struct {
	Type      string
	Keyword   string
	DateStart *time.Time
	DateEnd   *time.Time
}

// HistoryUpdate carries the mutable fields of a history row. Nil
// fields are left unchanged.
type HistoryUpdate struct {
	Query    *string
	Result   *string
	Metadata *string
}

// Create inserts a history row for a completed request.
func (s *HistoryStore) Create(userID uint, historyType, query, result string, metadata *string) (*models.History, error) {
	entry := models.History{
		UserID:   userID,
		Type:     historyType,
		Query:    query,
		Result:   result,
		Metadata: metadata,
	}
	if err := s.db.Create(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// ListForUser returns a user's history, newest first.
func (s *HistoryStore) ListForUser(userID uint, filter HistoryFilter) ([]models.History, error) {
	query := s.db.Where("user_id = ?", userID)

	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Keyword != "" {
		pattern := "%" + filter.Keyword + "%"
		query = query.Where("query LIKE ? OR result LIKE ?", pattern, pattern)
	}
	if filter.DateStart != nil {
		query = query.Where("created_at >= ?", *filter.DateStart)
	}
	if filter.DateEnd != nil {
		query = query.Where("created_at <= ?", *filter.DateEnd)
	}

	var entries []models.History
	if err := query.Order("created_at DESC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// ListRecentForUser returns a user's newest history rows, capped at limit.
func (s *HistoryStore) ListRecentForUser(userID uint, limit int) ([]models.History, error) {
	var entries []models.History
	err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// GetForUser returns a single history row owned by the given user.
func (s *HistoryStore) GetForUser(id, userID uint) (*models.History, error) {
	var entry models.History
	err := s.db.Where("id = ? AND user_id = ?", id, userID).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// UpdateForUser applies the non-nil fields of upd to a row owned by
// the given user.
func (s *HistoryStore) UpdateForUser(id, userID uint, upd HistoryUpdate) (*models.History, error) {
	entry, err := s.GetForUser(id, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if upd.Query != nil {
		updates["query"] = *upd.Query
	}
	if upd.Result != nil {
		updates["result"] = *upd.Result
	}
	if upd.Metadata != nil {
		updates["metadata"] = *upd.Metadata
	}
	if len(updates) > 0 {
		if err := s.db.Model(entry).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.GetForUser(id, userID)
}

// DeleteForUser removes a row owned by the given user.
func (s *HistoryStore) DeleteForUser(id, userID uint) error {
	entry, err := s.GetForUser(id, userID)
	if err != nil {
		return err
	}
	return s.db.Delete(entry).Error
}

// DeleteAllForUser removes every history row owned by the given user.
func (s *HistoryStore) DeleteAllForUser(userID uint) error {
	return s.db.Where("user_id = ?", userID).Delete(&models.History{}).Error
}

// CountByType returns the number of history rows of the given type.
func (s *HistoryStore) CountByType(historyType string) (int64, error) {
	var count int64
	err := s.db.Model(&models.History{}).Where("type = ?", historyType).Count(&count).Error
	return count, err
}

// CountSince returns the number of history rows created at or after t.
func (s *HistoryStore) CountSince(t time.Time) (int64, error) {
	var count int64
	err := s.db.Model(&models.History{}).Where("created_at >= ?", t).Count(&count).Error
	return count, err
}
