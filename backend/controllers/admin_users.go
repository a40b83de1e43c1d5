package controllers

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"courseplan/backend/middleware"
	"courseplan/backend/models"
	"courseplan/backend/utils"
)

// maxAccessDays caps the access duration at roughly 100 years.
const maxAccessDays = 36500

var errBadAccessDays = errors.New("access duration must be a whole number of days between 1 and 36500")

// parseAccessDays validates an access-duration field. An empty string
// means permanent access and yields a nil expiration.
func parseAccessDays(value string, now time.Time) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return nil, errBadAccessDays
		}
	}
	days, err := strconv.Atoi(value)
	if err != nil || days < 1 || days > maxAccessDays {
		return nil, errBadAccessDays
	}
	expire := now.AddDate(0, 0, days)
	return &expire, nil
}

func (ac *AdminController) addUser(c *fiber.Ctx) error {
	sess := middleware.SessionFromCtx(c)
	if !sess.IsPrimaryAdmin() {
		return utils.Forbidden(c, "Only the primary admin can manage users")
	}

	username := strings.TrimSpace(c.FormValue("new_username"))
	password := strings.TrimSpace(c.FormValue("new_password"))
	if username == "" || password == "" {
		return utils.BadRequest(c, "Username and password cannot be blank")
	}

	var count int64
	ac.DB.Model(&models.User{}).Where("username = ?", username).Count(&count)
	if count > 0 {
		return utils.BadRequest(c, "This username is already taken")
	}

	expireDate, err := parseAccessDays(c.FormValue("access_days"), time.Now())
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return utils.InternalServerError(c, "Could not hash password")
	}

	user := models.User{
		Username:     username,
		PasswordHash: string(hash),
		IsAdmin:      false,
		ExpireDate:   expireDate,
	}
	if err := ac.DB.Create(&user).Error; err != nil {
		return utils.InternalServerError(c, "Could not create user")
	}

	return c.JSON(fiber.Map{
		"message": "User added",
		"user": fiber.Map{
			"id":          user.ID,
			"username":    user.Username,
			"expire_date": user.ExpireDate,
		},
	})
}

func (ac *AdminController) GetUser(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid user id")
	}

	var user models.User
	if err := ac.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "User not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	return c.JSON(fiber.Map{
		"user": fiber.Map{
			"id":             user.ID,
			"username":       user.Username,
			"is_admin":       user.IsAdmin,
			"expire_date":    user.ExpireDate,
			"remaining_days": user.RemainingDays(time.Now()),
		},
	})
}

// EditUser lets the primary admin extend access or reset a password.
func (ac *AdminController) EditUser(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid user id")
	}

	var input struct {
		AccessDays  string `json:"access_days" form:"access_days"`
		NewPassword string `json:"new_password" form:"new_password"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse request body")
	}

	var user models.User
	if err := ac.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "User not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if strings.TrimSpace(input.AccessDays) != "" {
		expireDate, err := parseAccessDays(input.AccessDays, time.Now())
		if err != nil {
			return utils.BadRequest(c, err.Error())
		}
		user.ExpireDate = expireDate
	}

	if password := strings.TrimSpace(input.NewPassword); password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return utils.InternalServerError(c, "Could not hash password")
		}
		user.PasswordHash = string(hash)
	}

	if err := ac.DB.Save(&user).Error; err != nil {
		return utils.InternalServerError(c, "Could not update user")
	}

	return c.JSON(fiber.Map{
		"message": "User updated",
		"user": fiber.Map{
			"id":          user.ID,
			"username":    user.Username,
			"expire_date": user.ExpireDate,
		},
	})
}
