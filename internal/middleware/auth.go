// Package middleware provides HTTP middleware for the fiber app, including
// cookie-based session authentication and the staff gate.
package middleware

import (
	"log"

	"wagmi/internal/models"
	"wagmi/internal/repositories"
	"wagmi/internal/services/token"
	"wagmi/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// AccessCookie is the cookie carrying the access token.
const AccessCookie = "access"

// RefreshCookie is the cookie carrying the refresh token.
const RefreshCookie = "refresh"

// AuthMiddleware validates the access cookie and resolves the caller's
// identity. Expired, malformed and badly signed tokens all produce the same
// 401 so the response cannot be used as a validity oracle.
type AuthMiddleware struct {
	tokens token.Service
	users  repositories.UserRepository
}

func NewAuthMiddleware(tokens token.Service, users repositories.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{
		tokens: tokens,
		users:  users,
	}
}

func (m *AuthMiddleware) Handler(c *fiber.Ctx) error {
	raw := c.Cookies(AccessCookie)
	if raw == "" {
		return utils.Unauthorized(c, "invalid or expired token")
	}

	claims, err := m.tokens.ValidateAccess(raw)
	if err != nil {
		log.Printf("access token rejected: %v", err)
		return utils.Unauthorized(c, "invalid or expired token")
	}

	// The subject must still exist; a deleted account keeps its signed
	// token until expiry otherwise.
	if _, err := m.users.GetByID(claims.UserID); err != nil {
		log.Printf("user %d from access token not found", claims.UserID)
		return utils.Unauthorized(c, "invalid or expired token")
	}

	c.Locals("claims", claims)
	c.Locals("userID", claims.UserID)

	return c.Next()
}

// StaffOnly requires admin claims; it must run after the auth handler.
func StaffOnly(c *fiber.Ctx) error {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok {
		return utils.Unauthorized(c, "invalid or expired token")
	}
	if !claims.IsAdmin {
		return utils.Forbidden(c, "admin access denied")
	}
	return c.Next()
}
