package controllers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"courseplan/backend/config"
	"courseplan/backend/middleware"
	"courseplan/backend/models"
	"courseplan/backend/utils"
)

type ProfileController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewProfileController(db *gorm.DB, cfg *config.Config) *ProfileController {
	return &ProfileController{DB: db, Cfg: cfg}
}

func (pc *ProfileController) GetProfile(c *fiber.Ctx) error {
	sess := middleware.SessionFromCtx(c)

	var user models.User
	if err := pc.DB.First(&user, sess.UserID).Error; err != nil {
		return utils.NotFound(c, "User not found")
	}

	return c.JSON(fiber.Map{
		"id":             user.ID,
		"username":       user.Username,
		"is_admin":       user.IsAdmin,
		"expire_date":    user.ExpireDate,
		"remaining_days": user.RemainingDays(time.Now()),
	})
}

// ChangePassword updates the caller's password after verifying the
// current one.
func (pc *ProfileController) ChangePassword(c *fiber.Ctx) error {
	sess := middleware.SessionFromCtx(c)

	var input struct {
		CurrentPassword string `json:"current_password" form:"current_password"`
		NewPassword     string `json:"new_password" form:"new_password"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse request body")
	}

	newPassword := strings.TrimSpace(input.NewPassword)
	if len(newPassword) < 6 {
		return utils.BadRequest(c, "New password must be at least 6 characters")
	}

	var user models.User
	if err := pc.DB.First(&user, sess.UserID).Error; err != nil {
		return utils.NotFound(c, "User not found")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.CurrentPassword)); err != nil {
		return utils.Unauthorized(c, "Current password is wrong")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return utils.InternalServerError(c, "Could not hash password")
	}

	if err := pc.DB.Model(&user).Update("password_hash", string(hash)).Error; err != nil {
		return utils.InternalServerError(c, "Could not update password")
	}

	return c.JSON(fiber.Map{"message": "Password changed"})
}
