package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User model
type User struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	Email          string     `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Username       string     `gorm:"size:50;not null;uniqueIndex" json:"username"`
	FullName       string     `gorm:"size:255" json:"full_name"`
	HashedPassword []byte     `gorm:"not null" json:"-"`
	IsActive       bool       `gorm:"default:true;not null" json:"is_active"`
	RoleID         *uuid.UUID `gorm:"type:uuid;index" json:"role_id"`
	Role           Role       `gorm:"foreignKey:RoleID;references:ID" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
