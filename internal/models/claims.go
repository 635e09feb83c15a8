package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// UserClaims is the claim set embedded in both access and refresh tokens.
// RotationID is set only on refresh tokens; it identifies the lineage link
// consumed on rotation.
type UserClaims struct {
	jwt.RegisteredClaims
	UserID     uint   `json:"user_id"`
	Username   string `json:"username"`
	IsAdmin    bool   `json:"is_admin"`
	RotationID string `json:"rotation_id,omitempty"`
}
