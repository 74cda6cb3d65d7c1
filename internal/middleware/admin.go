package middleware

import (
	"context"

	"github.com/ebetcoin/backend/pkg/logger"
	"github.com/gofiber/fiber/v2"
)

const (
	AdminKey   = "is_admin"
	AdminIDKey = "admin_id"
)

type AdminChecker interface {
	IsAdmin(ctx context.Context, userID int64) (bool, error)
}

type BanChecker interface {
	IsUserBanned(ctx context.Context, userID int64) (bool, error)
}

// AdminAuth middleware checks if the authenticated user is an admin
func AdminAuth(admins AdminChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := GetUserID(c)
		if userID == 0 {
			return unauthorized(c, "unauthorized")
		}

		isAdmin, err := admins.IsAdmin(c.UserContext(), userID)
		if err != nil {
			logger.Error(c.UserContext()).Err(err).Int64("user_id", userID).Msg("failed to check admin status")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "failed to check admin status",
			})
		}

		if !isAdmin {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"success": false,
				"message": "access denied",
			})
		}

		c.Locals(AdminKey, true)
		c.Locals(AdminIDKey, userID)

		return c.Next()
	}
}

// BanCheck rejects requests from suspended accounts. Lookup failures let the
// request through.
func BanCheck(bans BanChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := GetUserID(c)
		if userID == 0 {
			return c.Next()
		}

		banned, err := bans.IsUserBanned(c.UserContext(), userID)
		if err != nil {
			logger.Warn(c.UserContext()).Err(err).Int64("user_id", userID).Msg("failed to check ban status")
			return c.Next()
		}
		if banned {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"success": false,
				"message": "account suspended",
			})
		}
		return c.Next()
	}
}

// GetAdminID returns the admin user ID from context
func GetAdminID(c *fiber.Ctx) int64 {
	adminID, ok := c.Locals(AdminIDKey).(int64)
	if !ok {
		return 0
	}
	return adminID
}

// IsAdmin checks if the current user is an admin
func IsAdmin(c *fiber.Ctx) bool {
	isAdmin, ok := c.Locals(AdminKey).(bool)
	return ok && isAdmin
}
