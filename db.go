package main

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"prodapi/models"
	"prodapi/pkg/session"
)

var db *gorm.DB

func initDB(cfg *Config, logger *zap.Logger) error {
	if cfg.Postgres.DSN == "" {
		return errors.New("DB_DSN is not set; this service requires a Postgres DSN")
	}
	var err error
	db, err = gorm.Open(postgres.Open(cfg.Postgres.DSN), &gorm.Config{})
	if err != nil {
		return err
	}
	// Roles first so the users FK can be applied safely.
	if cfg.Postgres.AutoMigrate {
		if err := db.AutoMigrate(&models.Role{}); err != nil {
			logger.Warn("migration warning (roles)", zap.Error(err))
		}
		// Migrate models individually so a failure on one doesn't block others
		if err := db.AutoMigrate(&models.User{}); err != nil {
			logger.Warn("migration warning (users)", zap.Error(err))
		}
		if err := db.AutoMigrate(&models.Category{}); err != nil {
			logger.Warn("migration warning (categories)", zap.Error(err))
		}
		if err := db.AutoMigrate(&models.Product{}); err != nil {
			logger.Warn("migration warning (products)", zap.Error(err))
		}
	}
	seedDB(logger)
	return nil
}

// seedDB ensures the master roles and the bootstrap admin account exist.
func seedDB(logger *zap.Logger) {
	roles := []models.Role{
		{Name: "admin", Description: "full access"},
		{Name: "user", Description: "regular user"},
	}
	for _, r := range roles {
		var cnt int64
		db.Model(&models.Role{}).Where("name = ?", r.Name).Count(&cnt)
		if cnt == 0 {
			db.Create(&r)
		}
	}

	var count int64
	db.Model(&models.User{}).Where("username = ?", "admin").Count(&count)
	if count == 0 {
		var role models.Role
		if err := db.Where("name = ?", "admin").First(&role).Error; err != nil {
			logger.Warn("failed to find admin role", zap.Error(err))
			return
		}
		hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
		rid := role.ID
		admin := models.User{
			Username:       "admin",
			Email:          "admin@example.com",
			FullName:       "Administrator",
			HashedPassword: hashedPassword,
			IsActive:       true,
			RoleID:         &rid,
		}
		if err := db.Create(&admin).Error; err != nil {
			logger.Warn("failed to seed admin user", zap.Error(err))
			return
		}
		logger.Info("seeded admin user", zap.String("username", "admin"))
	}
}

// gormUserSource adapts the gorm store to the lookup the session core needs.
type gormUserSource struct {
	db *gorm.DB
}

func (s *gormUserSource) ByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, session.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// gorm does not translate every driver error; fall back to text match
	s := err.Error()
	return strings.Contains(s, "duplicate key") ||
		strings.Contains(s, "unique constraint") ||
		strings.Contains(s, "already exists")
}
