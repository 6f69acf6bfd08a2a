package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Session records one login event. It is the sole revocation anchor for
// refresh tokens: the Valid flag only ever moves from true to false, and an
// invalidated session can never mint another access token. Rows are flipped
// invalid rather than deleted so the history survives until maintenance
// purges them.
type Session struct {
	ID        string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID    string `gorm:"type:uuid;not null;index" json:"user"`
	User      *User  `gorm:"foreignKey:UserID" json:"-"`
	UserAgent string `json:"userAgent"`
	Valid     bool   `gorm:"not null;default:true" json:"valid"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (s *Session) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
