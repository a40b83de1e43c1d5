package controllers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"courseplan/backend/models"
	"courseplan/backend/utils"
)

type quizQuestionInput struct {
	Text         string   `json:"text"`
	Answers      []string `json:"answers"`
	CorrectIndex int      `json:"correct_index"`
}

type addQuizInput struct {
	Action     string              `json:"action"`
	SubTopicID uint                `json:"subtopic_id"`
	Title      string              `json:"title"`
	Questions  []quizQuestionInput `json:"questions"`
}

// addQuiz creates a quiz with its questions and answers atomically.
// Blank questions and answers are skipped; every kept question must
// point its correct index at a non-blank answer.
func (ac *AdminController) addQuiz(c *fiber.Ctx) error {
	var input addQuizInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse request body")
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return utils.BadRequest(c, "Quiz title cannot be blank")
	}

	var subTopic models.SubTopic
	if err := ac.DB.First(&subTopic, input.SubTopicID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Sub-topic not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	var existing int64
	ac.DB.Model(&models.Quiz{}).Where("sub_topic_id = ?", subTopic.ID).Count(&existing)
	if existing > 0 {
		return utils.BadRequest(c, "This sub-topic already has a quiz")
	}

	type preparedQuestion struct {
		text    string
		answers []models.Answer
	}
	var prepared []preparedQuestion
	for _, q := range input.Questions {
		text := strings.TrimSpace(q.Text)
		if text == "" {
			continue
		}

		var answers []models.Answer
		correctSeen := false
		for i, a := range q.Answers {
			answerText := strings.TrimSpace(a)
			if answerText == "" {
				continue
			}
			correct := i == q.CorrectIndex
			if correct {
				correctSeen = true
			}
			answers = append(answers, models.Answer{Text: answerText, IsCorrect: correct})
		}

		if len(answers) > 0 && !correctSeen {
			return utils.BadRequest(c, "Every question needs a valid correct answer")
		}

		prepared = append(prepared, preparedQuestion{text: text, answers: answers})
	}

	if len(prepared) == 0 {
		return utils.BadRequest(c, "A quiz needs at least one question")
	}

	var quiz models.Quiz
	err := ac.DB.Transaction(func(tx *gorm.DB) error {
		quiz = models.Quiz{SubTopicID: subTopic.ID, Title: title}
		if err := tx.Create(&quiz).Error; err != nil {
			return err
		}
		for _, pq := range prepared {
			question := models.Question{QuizID: quiz.ID, Text: pq.text}
			if err := tx.Create(&question).Error; err != nil {
				return err
			}
			for _, answer := range pq.answers {
				answer.QuestionID = question.ID
				if err := tx.Create(&answer).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return utils.InternalServerError(c, "Could not create quiz")
	}

	return c.JSON(fiber.Map{
		"message": "Quiz added",
		"quiz": fiber.Map{
			"id":          quiz.ID,
			"title":       quiz.Title,
			"subtopic_id": quiz.SubTopicID,
			"questions":   len(prepared),
		},
	})
}
