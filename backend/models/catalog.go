package models

import (
	"time"

	"gorm.io/gorm"
)

type Course struct {
	gorm.Model
	Name   string  `gorm:"size:100;unique;not null"`
	Topics []Topic `gorm:"constraint:OnDelete:CASCADE"`
}

type Topic struct {
	gorm.Model
	Name      string     `gorm:"size:100;not null;uniqueIndex:idx_topics_course_name"`
	CourseID  uint       `gorm:"not null;uniqueIndex:idx_topics_course_name"`
	SubTopics []SubTopic `gorm:"constraint:OnDelete:CASCADE"`
}

type SubTopic struct {
	gorm.Model
	Name      string `gorm:"size:200;not null;uniqueIndex:idx_sub_topics_topic_name"`
	TopicID   uint   `gorm:"not null;uniqueIndex:idx_sub_topics_topic_name"`
	VideoLink string
	Notes     string
	Materials []Material `gorm:"constraint:OnDelete:CASCADE"`
	Quiz      *Quiz      `gorm:"constraint:OnDelete:CASCADE"`
	Comments  []Comment  `gorm:"constraint:OnDelete:CASCADE"`
}

// Material references a file in the upload store. StoredName is the
// generated on-disk name, OriginalName what the user sees.
type Material struct {
	gorm.Model
	SubTopicID   uint   `gorm:"not null;index"`
	StoredName   string `gorm:"size:256;not null"`
	OriginalName string `gorm:"size:256;not null"`
}

// Progress marks a sub-topic as completed by a user. Presence of the
// row is the "done" signal; the pair is unique.
type Progress struct {
	gorm.Model
	UserID      uint `gorm:"not null;uniqueIndex:idx_progress_user_sub_topic"`
	SubTopicID  uint `gorm:"not null;uniqueIndex:idx_progress_user_sub_topic"`
	CompletedAt time.Time
}
