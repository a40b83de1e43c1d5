package controllers

import (
	"errors"
	"os"

	"gorm.io/gorm"

	"courseplan/backend/models"
	"courseplan/backend/storage"
)

var (
	errUnknownKind    = errors.New("unknown delete type")
	errForbidden      = errors.New("forbidden")
	errProtectedAdmin = errors.New("primary admin cannot be deleted")
)

// The delete helpers below implement the transitive cascades of the
// schema explicitly, so behavior does not depend on database-level
// foreign key enforcement. All of them run inside the caller's
// transaction and hard-delete rows.

func deleteCourse(tx *gorm.DB, store *storage.Store, id uint) error {
	var course models.Course
	if err := tx.First(&course, id).Error; err != nil {
		return err
	}

	var topics []models.Topic
	if err := tx.Where("course_id = ?", id).Find(&topics).Error; err != nil {
		return err
	}
	for _, topic := range topics {
		if err := deleteTopic(tx, store, topic.ID); err != nil {
			return err
		}
	}

	return tx.Unscoped().Delete(&course).Error
}

func deleteTopic(tx *gorm.DB, store *storage.Store, id uint) error {
	var topic models.Topic
	if err := tx.First(&topic, id).Error; err != nil {
		return err
	}

	var subTopics []models.SubTopic
	if err := tx.Where("topic_id = ?", id).Find(&subTopics).Error; err != nil {
		return err
	}
	for _, st := range subTopics {
		if err := deleteSubTopic(tx, store, st.ID); err != nil {
			return err
		}
	}

	return tx.Unscoped().Delete(&topic).Error
}

func deleteSubTopic(tx *gorm.DB, store *storage.Store, id uint) error {
	var subTopic models.SubTopic
	if err := tx.First(&subTopic, id).Error; err != nil {
		return err
	}

	var materials []models.Material
	if err := tx.Where("sub_topic_id = ?", id).Find(&materials).Error; err != nil {
		return err
	}
	for _, m := range materials {
		if err := deleteMaterial(tx, store, m.ID); err != nil {
			return err
		}
	}

	var quiz models.Quiz
	if err := tx.Where("sub_topic_id = ?", id).First(&quiz).Error; err == nil {
		if err := deleteQuiz(tx, quiz.ID); err != nil {
			return err
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if err := tx.Unscoped().Where("sub_topic_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
		return err
	}
	if err := tx.Unscoped().Where("sub_topic_id = ?", id).Delete(&models.Progress{}).Error; err != nil {
		return err
	}

	return tx.Unscoped().Delete(&subTopic).Error
}

// deleteMaterial removes the row and the backing file. A storage
// failure rolls the row delete back; a file that is already gone does
// not.
func deleteMaterial(tx *gorm.DB, store *storage.Store, id uint) error {
	var material models.Material
	if err := tx.First(&material, id).Error; err != nil {
		return err
	}
	if err := tx.Unscoped().Delete(&material).Error; err != nil {
		return err
	}
	if err := store.Remove(material.StoredName); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func deleteQuiz(tx *gorm.DB, id uint) error {
	var quiz models.Quiz
	if err := tx.First(&quiz, id).Error; err != nil {
		return err
	}

	var questions []models.Question
	if err := tx.Where("quiz_id = ?", id).Find(&questions).Error; err != nil {
		return err
	}
	for _, q := range questions {
		if err := tx.Unscoped().Where("question_id = ?", q.ID).Delete(&models.Answer{}).Error; err != nil {
			return err
		}
	}
	if err := tx.Unscoped().Where("quiz_id = ?", id).Delete(&models.Question{}).Error; err != nil {
		return err
	}
	if err := tx.Unscoped().Where("quiz_id = ?", id).Delete(&models.QuizAttempt{}).Error; err != nil {
		return err
	}

	return tx.Unscoped().Delete(&quiz).Error
}

func deleteAnnouncement(tx *gorm.DB, id uint) error {
	var announcement models.Announcement
	if err := tx.First(&announcement, id).Error; err != nil {
		return err
	}
	return tx.Unscoped().Delete(&announcement).Error
}

// deleteComment removes a comment and its replies.
func deleteComment(tx *gorm.DB, id uint) error {
	if err := tx.Unscoped().Where("parent_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
		return err
	}
	return tx.Unscoped().Delete(&models.Comment{}, id).Error
}

func deleteUser(tx *gorm.DB, id uint) error {
	var user models.User
	if err := tx.First(&user, id).Error; err != nil {
		return err
	}
	if user.IsPrimaryAdmin() {
		return errProtectedAdmin
	}

	var comments []models.Comment
	if err := tx.Where("user_id = ?", id).Find(&comments).Error; err != nil {
		return err
	}
	for _, cm := range comments {
		if err := deleteComment(tx, cm.ID); err != nil {
			return err
		}
	}

	if err := tx.Unscoped().Where("user_id = ?", id).Delete(&models.Progress{}).Error; err != nil {
		return err
	}
	if err := tx.Unscoped().Where("user_id = ?", id).Delete(&models.QuizAttempt{}).Error; err != nil {
		return err
	}

	return tx.Unscoped().Delete(&user).Error
}
