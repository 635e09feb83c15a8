package handlers

import (
	"errors"
	"log"

	domainerrors "wagmi/internal/errors"
	"wagmi/internal/models"
	"wagmi/internal/repositories"
	"wagmi/internal/services/referral"
	"wagmi/internal/services/wallet"
	"wagmi/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type ReferralHandler struct {
	referrals referral.Service
	wallets   wallet.Service
	users     repositories.UserRepository
}

func NewReferralHandler(referrals referral.Service, wallets wallet.Service, users repositories.UserRepository) *ReferralHandler {
	return &ReferralHandler{
		referrals: referrals,
		wallets:   wallets,
		users:     users,
	}
}

// MyReferral returns the caller's referral dashboard: code, coin balance and
// how many referrals have been redeemed.
func (h *ReferralHandler) MyReferral(c *fiber.Ctx) error {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok {
		return utils.Unauthorized(c, "invalid or expired token")
	}

	profile, err := h.users.GetProfileByUserID(claims.UserID)
	if err != nil {
		log.Printf("failed to load profile for user %d: %v", claims.UserID, err)
		return utils.InternalError(c, "Failed to load referral info")
	}

	w, err := h.wallets.GetWallet(c.Context(), claims.UserID)
	if err != nil {
		log.Printf("failed to load wallet for user %d: %v", claims.UserID, err)
		return utils.InternalError(c, "Failed to load referral info")
	}

	total, err := h.referrals.CountRedeemed(c.Context(), claims.UserID)
	if err != nil {
		log.Printf("failed to count referrals for user %d: %v", claims.UserID, err)
		return utils.InternalError(c, "Failed to load referral info")
	}

	return utils.Success(c, fiber.Map{
		"username":        claims.Username,
		"referral_code":   profile.ReferralCode,
		"coins":           w.Coins,
		"total_referrals": total,
	})
}

// GenerateReferral returns the caller's outstanding invitation code,
// creating one if none exists. Repeated calls return the same code until it
// is redeemed.
func (h *ReferralHandler) GenerateReferral(c *fiber.Ctx) error {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok {
		return utils.Unauthorized(c, "invalid or expired token")
	}

	ref, created, err := h.referrals.GetOrCreate(c.Context(), claims.UserID)
	if err != nil {
		log.Printf("failed to generate referral for user %d: %v", claims.UserID, err)
		return utils.InternalError(c, "Failed to generate referral code")
	}

	body := fiber.Map{
		"code":         ref.Code,
		"whatsapp_url": h.referrals.ShareURL(ref.Code),
	}
	if created {
		return utils.Created(c, body)
	}
	return utils.Success(c, body)
}

// UseReferral redeems a referral code on behalf of the caller.
func (h *ReferralHandler) UseReferral(c *fiber.Ctx) error {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok {
		return utils.Unauthorized(c, "invalid or expired token")
	}

	var input struct {
		Code string `json:"code"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}
	if input.Code == "" {
		return utils.BadRequest(c, "Referral code is required")
	}

	_, err := h.referrals.Redeem(c.Context(), input.Code, claims.UserID)
	if err != nil {
		var domainErr *domainerrors.DomainError
		if errors.As(err, &domainErr) {
			return utils.BadRequest(c, domainErr.Message)
		}
		log.Printf("referral redemption failed for user %d: %v", claims.UserID, err)
		return utils.InternalError(c, "Failed to redeem referral code")
	}

	return utils.Success(c, fiber.Map{"message": "Referral code redeemed"})
}
