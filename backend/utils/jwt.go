package utils

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"

	"courseplan/backend/config"
	"courseplan/backend/models"
)

// SessionCookie is the cookie carrying the signed session token.
// The Authorization header takes precedence when both are present.
const SessionCookie = "session"

// Session is the identity bound to a request.
type Session struct {
	UserID   uint
	Username string
	IsAdmin  bool
}

func (s *Session) IsPrimaryAdmin() bool {
	return s.Username == models.PrimaryAdminUsername
}

func GenerateJWTToken(user *models.User, cfg *config.Config) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"is_admin": user.IsAdmin,
		"exp":      time.Now().Add(time.Hour * 72).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWTSecret))
}

func ExtractSession(c *fiber.Ctx, cfg *config.Config) (*Session, error) {
	tokenString := c.Get("Authorization")
	if tokenString == "" {
		tokenString = c.Cookies(SessionCookie)
	}
	if tokenString == "" {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Missing authorization token")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid token claims")
	}

	userIDFloat, ok := claims["user_id"].(float64)
	if !ok {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid user ID in token")
	}
	username, _ := claims["username"].(string)
	isAdmin, _ := claims["is_admin"].(bool)

	return &Session{
		UserID:   uint(userIDFloat),
		Username: username,
		IsAdmin:  isAdmin,
	}, nil
}
