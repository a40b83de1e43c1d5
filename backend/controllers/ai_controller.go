package controllers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"courseplan/backend/ai"
	"courseplan/backend/config"
)

type AIController struct {
	Cfg    *config.Config
	Client *ai.Client
}

func NewAIController(cfg *config.Config) *AIController {
	return &AIController{
		Cfg:    cfg,
		Client: ai.NewClient(cfg.AIAPIKey, cfg.AIBaseURL, cfg.AIModel),
	}
}

// AskAI proxies a question to the external completion API. Failures
// come back as structured {error} responses, never as a crash.
func (ac *AIController) AskAI(c *fiber.Ctx) error {
	var input struct {
		Question string `json:"question"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	question := strings.TrimSpace(input.Question)
	if question == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Question cannot be blank",
		})
	}

	answer, err := ac.Client.Ask(c.Context(), question)
	if err != nil {
		if errors.Is(err, ai.ErrMissingKey) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "AI service is not configured",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{"answer": answer})
}
