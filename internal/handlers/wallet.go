package handlers

import (
	"errors"
	"log"

	domainerrors "wagmi/internal/errors"
	"wagmi/internal/models"
	"wagmi/internal/services/wallet"
	"wagmi/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type WalletHandler struct {
	wallets wallet.Service
}

func NewWalletHandler(wallets wallet.Service) *WalletHandler {
	return &WalletHandler{wallets: wallets}
}

// MyWallet returns the caller's balances, creating the wallet on first
// access.
func (h *WalletHandler) MyWallet(c *fiber.Ctx) error {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok {
		return utils.Unauthorized(c, "invalid or expired token")
	}

	w, err := h.wallets.GetWallet(c.Context(), claims.UserID)
	if err != nil {
		log.Printf("failed to load wallet for user %d: %v", claims.UserID, err)
		return utils.InternalError(c, "Failed to load wallet")
	}

	return utils.Success(c, fiber.Map{
		"coins":  w.Coins,
		"points": w.Points,
	})
}

// AdminCredit applies a staff balance adjustment to any user's wallet,
// recorded in the ledger under the admin_adjust reason.
func (h *WalletHandler) AdminCredit(c *fiber.Ctx) error {
	var input struct {
		UserID uint `json:"user_id"`
		Coins  int  `json:"coins"`
		Points int  `json:"points"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}
	if input.UserID == 0 {
		return utils.BadRequest(c, "user_id is required")
	}

	err := h.wallets.Credit(c.Context(), input.UserID, input.Coins, input.Points, models.ReasonAdminAdjust, nil)
	if err != nil {
		var domainErr *domainerrors.DomainError
		if errors.As(err, &domainErr) {
			return utils.BadRequest(c, domainErr.Message)
		}
		log.Printf("admin credit failed for user %d: %v", input.UserID, err)
		return utils.InternalError(c, "Failed to credit wallet")
	}

	return utils.Success(c, fiber.Map{"message": "Wallet credited"})
}
