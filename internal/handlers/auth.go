package handlers

import (
	"errors"
	"log"
	"time"

	"wagmi/internal/config"
	domainerrors "wagmi/internal/errors"
	"wagmi/internal/middleware"
	"wagmi/internal/models"
	"wagmi/internal/services/auth"
	"wagmi/internal/utils"
	"wagmi/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService auth.Service
	cfg         *config.Config
}

func NewAuthHandler(authService auth.Service, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cfg:         cfg,
	}
}

// Signup registers a new account and opens a session.
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var input struct {
		Username     string `json:"username"`
		Email        string `json:"email"`
		Password     string `json:"password"`
		Name         string `json:"name"`
		ReferralCode string `json:"referralCode"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}

	v := validation.New()
	v.Required("username", input.Username)
	v.Required("email", input.Email)
	v.Required("password", input.Password)
	if input.Email != "" {
		v.Email("email", input.Email)
	}
	if input.Password != "" {
		v.MinLength("password", input.Password, 8)
	}
	if !v.Valid() {
		return utils.BadRequest(c, v.Message())
	}

	user, access, refresh, err := h.authService.Register(auth.RegisterInput{
		Username:     input.Username,
		Email:        input.Email,
		Password:     input.Password,
		Name:         input.Name,
		ReferralCode: input.ReferralCode,
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrDuplicateUser) {
			return utils.BadRequest(c, "User already exists")
		}
		log.Printf("signup failed for %q: %v", input.Username, err)
		return utils.InternalError(c, "Signup failed")
	}

	h.setAuthCookies(c, access, refresh)

	return utils.Created(c, fiber.Map{
		"message": "Signup successful",
		"user":    user.Summary(),
	})
}

// Login authenticates by username or email and opens a fresh session.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}

	identifier := input.Username
	if identifier == "" {
		identifier = input.Email
	}
	if identifier == "" || input.Password == "" {
		return utils.BadRequest(c, "Username and password are required")
	}

	user, access, refresh, err := h.authService.Login(identifier, input.Password)
	if err != nil {
		if errors.Is(err, domainerrors.ErrInvalidCredentials) {
			return utils.Unauthorized(c, "Invalid credentials")
		}
		log.Printf("login failed for %q: %v", identifier, err)
		return utils.InternalError(c, "Authentication failed")
	}

	h.setAuthCookies(c, access, refresh)

	return utils.Success(c, fiber.Map{
		"message": "Login successful",
		"user":    user.Summary(),
	})
}

// AdminLogin authenticates a staff account.
func (h *AuthHandler) AdminLogin(c *fiber.Ctx) error {
	var input struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}
	if input.Username == "" || input.Password == "" {
		return utils.BadRequest(c, "Username and password are required")
	}

	user, access, refresh, err := h.authService.AdminLogin(input.Username, input.Password)
	if err != nil {
		switch {
		case errors.Is(err, domainerrors.ErrNotStaff), errors.Is(err, domainerrors.ErrInvalidCredentials):
			// Same response for both so probing cannot tell a wrong
			// password from a non-staff account.
			return utils.Forbidden(c, "Admin access denied")
		}
		log.Printf("admin login failed for %q: %v", input.Username, err)
		return utils.InternalError(c, "Authentication failed")
	}

	h.setAuthCookies(c, access, refresh)

	return utils.Success(c, fiber.Map{
		"message": "Admin login successful",
		"user":    user.Summary(),
	})
}

// CurrentUser returns the authenticated caller's summary.
func (h *AuthHandler) CurrentUser(c *fiber.Ctx) error {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok {
		return utils.Unauthorized(c, "invalid or expired token")
	}

	user, err := h.authService.CurrentUser(claims.UserID)
	if err != nil {
		return utils.Unauthorized(c, "invalid or expired token")
	}

	return utils.Success(c, user.Summary())
}

// Logout clears the session cookies. Outstanding tokens are not invalidated
// server-side; they lapse at their natural expiry.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.clearAuthCookies(c)
	return utils.Success(c, fiber.Map{"message": "Logout successful"})
}

// RefreshToken rotates the refresh cookie into a fresh token pair.
func (h *AuthHandler) RefreshToken(c *fiber.Ctx) error {
	raw := c.Cookies(middleware.RefreshCookie)
	if raw == "" {
		return utils.Unauthorized(c, "Refresh token not provided")
	}

	access, refresh, err := h.authService.Refresh(raw)
	if err != nil {
		log.Printf("token refresh failed: %v", err)
		return utils.Unauthorized(c, "Invalid or expired refresh token")
	}

	h.setAuthCookies(c, access, refresh)

	return utils.Success(c, fiber.Map{
		"access":  access,
		"refresh": refresh,
	})
}

// Cookie attributes follow the cross-origin contract: the frontend lives on
// another origin, so SameSite=None + Secure, and HTTPOnly keeps page scripts
// away from the tokens.

func (h *AuthHandler) setAuthCookies(c *fiber.Ctx, accessToken, refreshToken string) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.AccessCookie,
		Value:    accessToken,
		HTTPOnly: true,
		Secure:   true,
		SameSite: "None",
		Path:     "/",
		MaxAge:   int(h.cfg.AccessTTL.Seconds()),
	})
	c.Cookie(&fiber.Cookie{
		Name:     middleware.RefreshCookie,
		Value:    refreshToken,
		HTTPOnly: true,
		Secure:   true,
		SameSite: "None",
		Path:     "/",
		MaxAge:   int(h.cfg.RefreshTTL.Seconds()),
	})
}

func (h *AuthHandler) clearAuthCookies(c *fiber.Ctx) {
	for _, name := range []string{middleware.AccessCookie, middleware.RefreshCookie} {
		c.Cookie(&fiber.Cookie{
			Name:     name,
			Value:    "",
			Expires:  time.Now().Add(-time.Hour),
			HTTPOnly: true,
			Secure:   true,
			SameSite: "None",
			Path:     "/",
		})
	}
}
