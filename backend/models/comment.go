package models

import "gorm.io/gorm"

// Comment belongs to a user and a sub-topic. ParentID links a reply to
// its parent for one level of threading.
type Comment struct {
	gorm.Model
	UserID     uint      `gorm:"not null;index"`
	SubTopicID uint      `gorm:"not null;index"`
	Content    string    `gorm:"not null"`
	ParentID   *uint     `gorm:"index"`
	Replies    []Comment `gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE"`
}
