package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product is a catalog item belonging to a category and created by a user
type Product struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
	Name              string     `gorm:"size:50;not null" json:"name"`
	Description       string     `json:"description"`
	Price             float64    `gorm:"not null;default:0" json:"price"`
	Stock             int        `gorm:"not null;default:0" json:"stock"`
	LowStockThreshold int        `gorm:"not null;default:0" json:"low_stock_threshold"`
	ImageURL          string     `gorm:"size:255" json:"image_url"`
	CategoryID        uuid.UUID  `gorm:"type:uuid;index;not null" json:"category_id"`
	Category          *Category  `gorm:"foreignKey:CategoryID;references:ID" json:"category,omitempty"`
	CreatedBy         *uuid.UUID `gorm:"type:uuid;index" json:"created_by"`
	Creator           *User      `gorm:"foreignKey:CreatedBy;references:ID" json:"creator,omitempty"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
