package models

import (
	"time"
)

const (
	HistorySearch = "search"
	HistoryImage  = "image"
)

// History records one completed search or image-generation request.
type History struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Type      string    `gorm:"not null;type:varchar(20);index" json:"type"`
	Query     string    `gorm:"not null;type:text" json:"query"`
	Result    string    `gorm:"type:text" json:"result"`
	Metadata  *string   `gorm:"type:text" json:"meta_data,omitempty"`
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}

func (History) TableName() string {
	return "history"
}
