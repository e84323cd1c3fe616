package models

import "gorm.io/gorm"

type Course struct {
	gorm.Model
	Title         string `gorm:"not null"`
	ShortDesc     string
	Description   string
	Category      string
	Difficulty    string // beginner, intermediate, advanced
	Price         float64
	DiscountPrice float64
	ThumbnailURL  string
	IsPublished   bool `gorm:"default:false"`
	Lessons       []Lesson
}

type Lesson struct {
	gorm.Model
	CourseID      uint
	Title         string
	Description   string
	VideoURL      string
	Duration      int // minutes
	SequenceOrder int
	IsFreePreview bool `gorm:"default:false"`
}

type CourseEnrollment struct {
	gorm.Model
	UserID           uint `gorm:"index:idx_enrollment_user_course"`
	CourseID         uint `gorm:"index:idx_enrollment_user_course"`
	LessonsCompleted int
	LastLessonID     uint
	CompletionRate   float64
}
