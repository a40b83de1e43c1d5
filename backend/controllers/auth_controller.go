package controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"courseplan/backend/config"
	"courseplan/backend/models"
	"courseplan/backend/utils"
)

type AuthController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewAuthController(db *gorm.DB, cfg *config.Config) *AuthController {
	return &AuthController{DB: db, Cfg: cfg}
}

// LoginPage is the landing route. Guards redirect here with a warning
// query parameter, which is echoed back so clients can surface it.
func (ac *AuthController) LoginPage(c *fiber.Ctx) error {
	resp := fiber.Map{
		"message": "Please log in",
	}
	if warning := c.Query("warning"); warning != "" {
		resp["warning"] = warning
	}
	return c.JSON(resp)
}

// Login verifies credentials and establishes a session. Unknown users
// and wrong passwords get the same generic message.
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var input struct {
		Username string `json:"username" form:"username"`
		Password string `json:"password" form:"password"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse request body")
	}

	var user models.User
	if err := ac.DB.Where("username = ?", input.Username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.Unauthorized(c, "Invalid username or password")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return utils.Unauthorized(c, "Invalid username or password")
	}

	if user.AccessExpired(time.Now()) {
		return utils.Forbidden(c, "Your access has expired")
	}

	token, err := utils.GenerateJWTToken(&user, ac.Cfg)
	if err != nil {
		return utils.InternalServerError(c, "Could not generate token")
	}

	c.Cookie(&fiber.Cookie{
		Name:     utils.SessionCookie,
		Value:    token,
		Expires:  time.Now().Add(72 * time.Hour),
		HTTPOnly: true,
	})

	redirect := "/panel"
	if user.IsAdmin {
		redirect = "/admin"
	}

	return c.JSON(fiber.Map{
		"token":    token,
		"redirect": redirect,
		"user": fiber.Map{
			"id":       user.ID,
			"username": user.Username,
			"is_admin": user.IsAdmin,
		},
	})
}

// Logout clears the session cookie unconditionally.
func (ac *AuthController) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     utils.SessionCookie,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
	})
	return c.Redirect("/", fiber.StatusFound)
}
