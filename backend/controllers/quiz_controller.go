package controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"courseplan/backend/config"
	"courseplan/backend/middleware"
	"courseplan/backend/models"
	"courseplan/backend/utils"
)

type QuizController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewQuizController(db *gorm.DB, cfg *config.Config) *QuizController {
	return &QuizController{DB: db, Cfg: cfg}
}

// SubmitQuiz scores the caller's selections against the stored correct
// answers. The latest attempt per (user, quiz) wins.
func (qc *QuizController) SubmitQuiz(c *fiber.Ctx) error {
	sess := middleware.SessionFromCtx(c)

	type selectionInput struct {
		QuestionID uint `json:"question_id"`
		AnswerID   uint `json:"answer_id"`
	}
	var input struct {
		QuizID     uint             `json:"quiz_id"`
		Selections []selectionInput `json:"selections"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse request body")
	}

	var quiz models.Quiz
	if err := qc.DB.Preload("Questions.Answers").First(&quiz, input.QuizID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Quiz not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if len(quiz.Questions) == 0 {
		return utils.BadRequest(c, "This quiz has no questions")
	}

	selected := make(map[uint]uint, len(input.Selections))
	for _, s := range input.Selections {
		selected[s.QuestionID] = s.AnswerID
	}

	correct := 0
	for _, question := range quiz.Questions {
		answerID, ok := selected[question.ID]
		if !ok {
			continue
		}
		for _, answer := range question.Answers {
			if answer.ID == answerID && answer.IsCorrect {
				correct++
				break
			}
		}
	}

	score := correct * 100 / len(quiz.Questions)

	// Upsert on the (user, quiz) pair so concurrent first submissions
	// cannot race, and a failed insert never reads as a saved attempt.
	attempt := models.QuizAttempt{UserID: sess.UserID, QuizID: quiz.ID, Score: score}
	err := qc.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "quiz_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"score":      score,
			"updated_at": time.Now(),
		}),
	}).Create(&attempt).Error
	if err != nil {
		return utils.InternalServerError(c, "Could not save attempt")
	}

	return c.JSON(fiber.Map{
		"score":   score,
		"correct": correct,
		"total":   len(quiz.Questions),
	})
}

// DeleteQuizAttempt removes the caller's stored attempt so the quiz
// can be retaken.
func (qc *QuizController) DeleteQuizAttempt(c *fiber.Ctx) error {
	sess := middleware.SessionFromCtx(c)

	var input struct {
		QuizID uint `json:"quiz_id" form:"quiz_id"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse request body")
	}

	result := qc.DB.Unscoped().
		Where("user_id = ? AND quiz_id = ?", sess.UserID, input.QuizID).
		Delete(&models.QuizAttempt{})
	if result.Error != nil {
		return utils.InternalServerError(c, "Could not delete attempt")
	}
	if result.RowsAffected == 0 {
		return utils.NotFound(c, "No attempt to delete")
	}

	return c.JSON(fiber.Map{"message": "Attempt deleted"})
}
