package models

import (
	"time"

	"gorm.io/gorm"
)

type CurrentAffair struct {
	gorm.Model
	Title       string `gorm:"not null"`
	Content     string
	Category    string // national, international, sports, economy...
	PublishedOn time.Time
	Source      string
}

type BlogPost struct {
	gorm.Model
	Title       string `gorm:"not null"`
	Slug        string `gorm:"unique;not null"`
	Content     string
	Excerpt     string
	Tags        string // comma-separated
	CoverURL    string
	AuthorID    uint
	IsPublished bool `gorm:"default:false"`
	PublishedAt *time.Time
}

type BlogComment struct {
	gorm.Model
	BlogPostID uint
	UserID     uint
	UserName   string
	Text       string
}
