package models

import "gorm.io/gorm"

// EnrollmentLead is a prospect captured from the public enquiry form.
type EnrollmentLead struct {
	gorm.Model
	Name     string `gorm:"not null"`
	Email    string
	Phone    string `gorm:"not null"`
	CourseID uint   // course of interest, optional
	Message  string
	Status   string `gorm:"default:new"` // new, contacted, closed
}
