package utils

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/shiv90154/Lms-sub002/backend/config"
	"github.com/shiv90154/Lms-sub002/backend/models"
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

	return db, nil
}

// Migrate keeps the schema in sync. The test suite reuses it against sqlite.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.LoginHistory{},
		&models.MockTest{},
		&models.TestSection{},
		&models.TestQuestion{},
		&models.TestAttempt{},
		&models.Course{},
		&models.Lesson{},
		&models.CourseEnrollment{},
		&models.Book{},
		&models.StudyMaterial{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.MaterialPurchase{},
		&models.CurrentAffair{},
		&models.BlogPost{},
		&models.BlogComment{},
		&models.EnrollmentLead{},
	)
}
