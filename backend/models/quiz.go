package models

import "gorm.io/gorm"

type Quiz struct {
	gorm.Model
	SubTopicID uint       `gorm:"not null;uniqueIndex"`
	Title      string     `gorm:"size:200;not null"`
	Questions  []Question `gorm:"constraint:OnDelete:CASCADE"`
}

type Question struct {
	gorm.Model
	QuizID  uint     `gorm:"not null;index"`
	Text    string   `gorm:"not null"`
	Answers []Answer `gorm:"constraint:OnDelete:CASCADE"`
}

type Answer struct {
	gorm.Model
	QuestionID uint   `gorm:"not null;index"`
	Text       string `gorm:"not null"`
	IsCorrect  bool   `gorm:"default:false;not null"`
}

// QuizAttempt stores the latest score for a (user, quiz) pair.
// Re-submission overwrites.
type QuizAttempt struct {
	gorm.Model
	UserID uint `gorm:"not null;uniqueIndex:idx_attempts_user_quiz"`
	QuizID uint `gorm:"not null;uniqueIndex:idx_attempts_user_quiz"`
	Score  int  `gorm:"not null"`
}
