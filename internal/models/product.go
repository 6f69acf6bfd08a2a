package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product is a user-authored product review. ProductID is the external
// product reference the review is attached to; UserID is the review owner.
type Product struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"_id"`
	ProductID   string `gorm:"uniqueIndex;not null" json:"productId"`
	UserID      string `gorm:"type:uuid;not null;index" json:"user"`
	User        *User  `gorm:"foreignKey:UserID" json:"-"`
	Title       string `gorm:"not null" json:"title"`
	Description string `gorm:"not null" json:"description"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.ProductID == "" {
		p.ProductID = "product_" + uuid.NewString()
	}
	return nil
}
