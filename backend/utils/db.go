package utils

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"courseplan/backend/config"
	"courseplan/backend/models"
)

func InitDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	if err := EnsurePrimaryAdmin(db, cfg.AdminPassword); err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Course{},
		&models.Topic{},
		&models.SubTopic{},
		&models.Material{},
		&models.Progress{},
		&models.Quiz{},
		&models.Question{},
		&models.Answer{},
		&models.QuizAttempt{},
		&models.Comment{},
		&models.Announcement{},
	)
}

// EnsurePrimaryAdmin seeds the reserved admin account on first run.
func EnsurePrimaryAdmin(db *gorm.DB, password string) error {
	var count int64
	if err := db.Model(&models.User{}).
		Where("username = ?", models.PrimaryAdminUsername).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := models.User{
		Username:     models.PrimaryAdminUsername,
		PasswordHash: string(hash),
		IsAdmin:      true,
	}
	return db.Create(&admin).Error
}
