package controllers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"courseplan/backend/config"
	"courseplan/backend/middleware"
	"courseplan/backend/models"
	"courseplan/backend/utils"
)

type CommentController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewCommentController(db *gorm.DB, cfg *config.Config) *CommentController {
	return &CommentController{DB: db, Cfg: cfg}
}

// AddComment posts a comment on a sub-topic, optionally as a reply to
// a top-level comment on the same sub-topic.
func (cc *CommentController) AddComment(c *fiber.Ctx) error {
	sess := middleware.SessionFromCtx(c)

	var input struct {
		SubTopicID uint   `json:"subtopic_id" form:"subtopic_id"`
		Content    string `json:"content" form:"content"`
		ParentID   *uint  `json:"parent_id" form:"parent_id"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse request body")
	}

	content := strings.TrimSpace(input.Content)
	if content == "" {
		return utils.BadRequest(c, "Comment cannot be blank")
	}

	var subTopic models.SubTopic
	if err := cc.DB.First(&subTopic, input.SubTopicID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Sub-topic not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if input.ParentID != nil {
		var parent models.Comment
		if err := cc.DB.First(&parent, *input.ParentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NotFound(c, "Parent comment not found")
			}
			return utils.InternalServerError(c, "Could not query database")
		}
		if parent.SubTopicID != subTopic.ID {
			return utils.BadRequest(c, "Parent comment belongs to another sub-topic")
		}
	}

	comment := models.Comment{
		UserID:     sess.UserID,
		SubTopicID: subTopic.ID,
		Content:    content,
		ParentID:   input.ParentID,
	}
	if err := cc.DB.Create(&comment).Error; err != nil {
		return utils.InternalServerError(c, "Could not create comment")
	}

	return c.JSON(fiber.Map{
		"message": "Comment added",
		"comment": comment,
	})
}

// DeleteComment removes a comment and its replies. Only the owner or
// an admin may delete.
func (cc *CommentController) DeleteComment(c *fiber.Ctx) error {
	sess := middleware.SessionFromCtx(c)

	var input struct {
		CommentID uint `json:"comment_id" form:"comment_id"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse request body")
	}

	var comment models.Comment
	if err := cc.DB.First(&comment, input.CommentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Comment not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if comment.UserID != sess.UserID && !sess.IsAdmin {
		return utils.Forbidden(c, "You cannot delete someone else's comment")
	}

	err := cc.DB.Transaction(func(tx *gorm.DB) error {
		return deleteComment(tx, comment.ID)
	})
	if err != nil {
		return utils.InternalServerError(c, "Could not delete comment")
	}

	return c.JSON(fiber.Map{"message": "Comment deleted"})
}
