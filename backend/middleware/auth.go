package middleware

import (
	"github.com/gofiber/fiber/v2"

	"courseplan/backend/config"
	"courseplan/backend/utils"
)

// SessionKey is the locals key under which AuthRequired stores the
// request's session.
const SessionKey = "session"

// SessionFromCtx returns the session stored by AuthRequired.
func SessionFromCtx(c *fiber.Ctx) *utils.Session {
	sess, _ := c.Locals(SessionKey).(*utils.Session)
	return sess
}

// AuthRequired redirects to the login route when no valid session is
// bound to the request.
func AuthRequired(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := utils.ExtractSession(c, cfg)
		if err != nil {
			return c.Redirect("/", fiber.StatusFound)
		}
		c.Locals(SessionKey, sess)
		return c.Next()
	}
}

// AdminRequired redirects non-admin sessions to the login route with a
// warning. It must run after AuthRequired.
func AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess := SessionFromCtx(c)
		if sess == nil || !sess.IsAdmin {
			return c.Redirect("/?warning=admin_required", fiber.StatusFound)
		}
		return c.Next()
	}
}

// PrimaryAdminRequired gates user management to the reserved admin
// account. It must run after AuthRequired.
func PrimaryAdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess := SessionFromCtx(c)
		if sess == nil || !sess.IsPrimaryAdmin() {
			return c.Redirect("/?warning=admin_required", fiber.StatusFound)
		}
		return c.Next()
	}
}
