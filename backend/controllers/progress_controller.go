package controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"courseplan/backend/config"
	"courseplan/backend/middleware"
	"courseplan/backend/models"
	"courseplan/backend/utils"
)

type ProgressController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewProgressController(db *gorm.DB, cfg *config.Config) *ProgressController {
	return &ProgressController{DB: db, Cfg: cfg}
}

// MarkCompleted toggles the caller's completion mark for a sub-topic.
// Repeated toggles strictly alternate between marked and removed.
func (pc *ProgressController) MarkCompleted(c *fiber.Ctx) error {
	sess := middleware.SessionFromCtx(c)

	var input struct {
		SubTopicID uint `json:"subtopic_id" form:"subtopic_id"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse request body")
	}

	var subTopic models.SubTopic
	if err := pc.DB.First(&subTopic, input.SubTopicID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Sub-topic not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	var progress models.Progress
	err := pc.DB.Where("user_id = ? AND sub_topic_id = ?", sess.UserID, subTopic.ID).First(&progress).Error
	if err == nil {
		if err := pc.DB.Unscoped().Delete(&progress).Error; err != nil {
			return utils.InternalServerError(c, "Could not update progress")
		}
		return c.JSON(fiber.Map{"status": "removed"})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.InternalServerError(c, "Could not query database")
	}

	progress = models.Progress{
		UserID:      sess.UserID,
		SubTopicID:  subTopic.ID,
		CompletedAt: time.Now(),
	}
	if err := pc.DB.Create(&progress).Error; err != nil {
		// A concurrent identical request may have inserted the row
		// first; the unique constraint resolves the race.
		var count int64
		pc.DB.Model(&models.Progress{}).
			Where("user_id = ? AND sub_topic_id = ?", sess.UserID, subTopic.ID).
			Count(&count)
		if count > 0 {
			return c.JSON(fiber.Map{"status": "marked"})
		}
		return utils.InternalServerError(c, "Could not update progress")
	}

	return c.JSON(fiber.Map{"status": "marked"})
}

// completionPercentage is the floor of completed*100/total for a
// topic's sub-topics, 0 for an empty topic.
func completionPercentage(db *gorm.DB, userID, topicID uint) int {
	var total int64
	db.Model(&models.SubTopic{}).Where("topic_id = ?", topicID).Count(&total)
	if total == 0 {
		return 0
	}

	var completed int64
	db.Model(&models.Progress{}).
		Joins("JOIN sub_topics ON sub_topics.id = progresses.sub_topic_id").
		Where("progresses.user_id = ? AND sub_topics.topic_id = ?", userID, topicID).
		Count(&completed)

	return int(completed * 100 / total)
}
