package models

import "gorm.io/gorm"

type Announcement struct {
	gorm.Model
	Title    string `gorm:"size:200;not null"`
	Content  string `gorm:"not null"`
	IsActive bool   `gorm:"default:true;not null"`
}
