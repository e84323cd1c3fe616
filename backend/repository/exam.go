package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/shiv90154/Lms-sub002/backend/models"
)

// GormTestRepo and GormAttemptRepo satisfy the exam service's repository
// interfaces over the application database.
type GormTestRepo struct {
	DB *gorm.DB
}

func NewTestRepo(db *gorm.DB) *GormTestRepo {
	return &GormTestRepo{DB: db}
}

func (r *GormTestRepo) GetWithQuestions(testID uint) (*models.MockTest, error) {
	var test models.MockTest
	err := r.DB.
		Preload("Sections", func(db *gorm.DB) *gorm.DB {
			return db.Order("test_sections.sequence_order")
		}).
		Preload("Sections.Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("test_questions.sequence_order")
		}).
		First(&test, testID).Error
	if err != nil {
		return nil, err
	}
	return &test, nil
}

type GormAttemptRepo struct {
	DB *gorm.DB
}

func NewAttemptRepo(db *gorm.DB) *GormAttemptRepo {
	return &GormAttemptRepo{DB: db}
}

func (r *GormAttemptRepo) Create(attempt *models.TestAttempt) error {
	return r.DB.Create(attempt).Error
}

func (r *GormAttemptRepo) GetByID(id uint) (*models.TestAttempt, error) {
	var attempt models.TestAttempt
	if err := r.DB.First(&attempt, id).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *GormAttemptRepo) GetIncomplete(userID, testID uint) (*models.TestAttempt, error) {
	var attempt models.TestAttempt
	err := r.DB.
		Where("user_id = ? AND mock_test_id = ? AND is_completed = ?", userID, testID, false).
		First(&attempt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *GormAttemptRepo) CompletedForTest(testID uint) ([]models.TestAttempt, error) {
	var attempts []models.TestAttempt
	err := r.DB.
		Where("mock_test_id = ? AND is_completed = ?", testID, true).
		Find(&attempts).Error
	return attempts, err
}

func (r *GormAttemptRepo) Save(attempt *models.TestAttempt) error {
	return r.DB.Save(attempt).Error
}

// SaveAll persists a ranking pass in one transaction so a half-written
// ranking never becomes visible.
func (r *GormAttemptRepo) SaveAll(attempts []models.TestAttempt) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		for i := range attempts {
			if err := tx.Model(&attempts[i]).
				Updates(map[string]interface{}{
					"rank":           attempts[i].Rank,
					"total_attempts": attempts[i].TotalAttempts,
				}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
