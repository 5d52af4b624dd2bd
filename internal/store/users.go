package store

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"explorer/backend/internal/models"
)

// ErrDuplicateUsername is returned when a create or rename collides
// with an existing username.
var ErrDuplicateUsername = errors.New("username already exists")

// ErrNotFound is returned when a referenced row does not exist.
var ErrNotFound = errors.New("record not found")

// UserStore provides access to user records.
type UserStore struct {
	db *gorm.DB
}

// NewUserStore creates a new user store
func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

// FindByUsername returns the user with the given username.
func (s *UserStore) FindByUsername(username string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindByID returns the user with the given id.
func (s *UserStore) FindByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// Create inserts a new user. The password must already be hashed.
func (s *UserStore) Create(username, passwordHash, role string) (*models.User, error) {
	var count int64
	if err := s.db.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrDuplicateUsername
	}

	user := models.User{
		Username:     username,
		PasswordHash: passwordHash,
		Role:         role,
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &user, nil
}

// List returns users, optionally filtered by role, with pagination.
func (s *UserStore) List(roleFilter string, offset, limit int) ([]models.User, error) {
	query := s.db.Model(&models.User{})
	if roleFilter != "" {
		query = query.Where("role = ?", roleFilter)
	}

	var users []models.User
	if err := query.Order("id").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateUsername renames a user, rejecting collisions with other users.
func (s *UserStore) UpdateUsername(id uint, newUsername string) error {
	user, err := s.FindByID(id)
	if err != nil {
		return err
	}

	var count int64
	if err := s.db.Model(&models.User{}).
		Where("username = ? AND id <> ?", newUsername, id).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicateUsername
	}

	return s.db.Model(user).Update("username", newUsername).Error
}

// UpdatePassword replaces a user's password hash.
func (s *UserStore) UpdatePassword(id uint, passwordHash string) error {
	user, err := s.FindByID(id)
	if err != nil {
		return err
	}
	return s.db.Model(user).Update("password_hash", passwordHash).Error
}

// UpdateRole changes a user's role.
func (s *UserStore) UpdateRole(id uint, role string) error {
	user, err := s.FindByID(id)
	if err != nil {
		return err
	}
	return s.db.Model(user).Update("role", role).Error
}

// DeleteWithHistory removes a user and all their history rows in one
// transaction, so a crash cannot leave orphaned history behind.
func (s *UserStore) DeleteWithHistory(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.History{}).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
}

// CountAll returns the total number of users.
func (s *UserStore) CountAll() (int64, error) {
	var count int64
	err := s.db.Model(&models.User{}).Count(&count).Error
	return count, err
}

// CountByRole returns the number of users with the given role.
func (s *UserStore) CountByRole(role string) (int64, error) {
	var count int64
	err := s.db.Model(&models.User{}).Where("role = ?", role).Count(&count).Error
	return count, err
}

// ActiveUser is one row of the most-active ranking.
type ActiveUser struct {
	Username      string `json:"username"`
	ActivityCount int64  `json:"activity_count"`
}

// MostActive returns the top n users by history row count.
func (s *UserStore) MostActive(n int) ([]ActiveUser, error) {
	var ranking []ActiveUser
	err := s.db.Model(&models.User{}).
		Select("users.username, count(history.id) as activity_count").
		Joins("JOIN history ON history.user_id = users.id").
		Group("users.id, users.username").
		Order("count(history.id) DESC").
		Limit(n).
		Scan(&ranking).Error
	if err != nil {
		return nil, err
	}
	return ranking, nil
}
