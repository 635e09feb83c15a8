// Package token mints and validates the access/refresh token pair. Refresh
// tokens carry a rotation id persisted as a lineage row; rotating consumes
// the row exactly once, so a replayed refresh token fails with
// ErrAlreadyRotated instead of minting a second session.
package token

import (
	"errors"
	"log"
	"strconv"
	"time"

	"wagmi/internal/models"
	"wagmi/internal/repositories"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "wagmi-api"

type Service interface {
	Issue(user *models.User) (accessToken, refreshToken string, err error)
	ValidateAccess(raw string) (*models.UserClaims, error)
	Rotate(raw string) (accessToken, refreshToken string, err error)
}

type service struct {
	repo       repositories.TokenRepository
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration

	// now is swappable in tests to drive tokens across their expiry.
	now func() time.Time
}

func NewService(repo repositories.TokenRepository, secret string, accessTTL, refreshTTL time.Duration) Service {
	if repo == nil {
		panic("token repository is required")
	}
	if secret == "" {
		panic("signing secret is required")
	}
	return &service{
		repo:       repo,
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

func (s *service) Issue(user *models.User) (string, string, error) {
	return s.issue(user.ID, user.Username, user.IsStaff)
}

func (s *service) issue(userID uint, username string, isAdmin bool) (string, string, error) {
	now := s.now()

	accessClaims := models.UserClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
			Subject:   strconv.FormatUint(uint64(userID), 10),
		},
		UserID:   userID,
		Username: username,
		IsAdmin:  isAdmin,
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).SignedString(s.secret)
	if err != nil {
		return "", "", err
	}

	rotationID := uuid.NewString()
	refreshClaims := models.UserClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.refreshTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
			Subject:   strconv.FormatUint(uint64(userID), 10),
		},
		UserID:     userID,
		Username:   username,
		IsAdmin:    isAdmin,
		RotationID: rotationID,
	}
	refreshToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).SignedString(s.secret)
	if err != nil {
		return "", "", err
	}

	err = s.repo.Save(&models.RefreshToken{
		UserID:     userID,
		RotationID: rotationID,
		ExpiresAt:  now.Add(s.refreshTTL),
	})
	if err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

func (s *service) ValidateAccess(raw string) (*models.UserClaims, error) {
	claims, err := s.parse(raw)
	if err != nil {
		return nil, err
	}
	// A refresh token presented as an access token is rejected outright.
	if claims.RotationID != "" {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}

func (s *service) Rotate(raw string) (string, string, error) {
	claims, err := s.parse(raw)
	if err != nil {
		return "", "", err
	}
	if claims.RotationID == "" {
		return "", "", ErrTokenMalformed
	}

	now := s.now()
	rotationID := uuid.NewString()
	next := &models.RefreshToken{
		UserID:     claims.UserID,
		RotationID: rotationID,
		ExpiresAt:  now.Add(s.refreshTTL),
	}
	if err := s.repo.Rotate(claims.RotationID, next); err != nil {
		switch err {
		case repositories.ErrAlreadyRotated:
			log.Printf("refresh token replay detected for user %d", claims.UserID)
			return "", "", ErrAlreadyRotated
		case repositories.ErrLineageNotFound:
			return "", "", ErrLineageNotFound
		}
		return "", "", err
	}

	return s.mintFromClaims(claims, rotationID)
}

// mintFromClaims issues a new pair for an already-verified identity. The
// successor lineage row was inserted by the rotation CAS, so no Save here.
func (s *service) mintFromClaims(claims *models.UserClaims, rotationID string) (string, string, error) {
	now := s.now()

	accessClaims := models.UserClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
			Subject:   claims.Subject,
		},
		UserID:   claims.UserID,
		Username: claims.Username,
		IsAdmin:  claims.IsAdmin,
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).SignedString(s.secret)
	if err != nil {
		return "", "", err
	}

	refreshClaims := models.UserClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.refreshTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
			Subject:   claims.Subject,
		},
		UserID:     claims.UserID,
		Username:   claims.Username,
		IsAdmin:    claims.IsAdmin,
		RotationID: rotationID,
	}
	refreshToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).SignedString(s.secret)
	if err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

func (s *service) parse(raw string) (*models.UserClaims, error) {
	parsed, err := jwt.ParseWithClaims(raw, &models.UserClaims{},
		func(t *jwt.Token) (interface{}, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrSignatureInvalid
		}
		return nil, ErrTokenMalformed
	}

	claims, ok := parsed.Claims.(*models.UserClaims)
	if !ok || !parsed.Valid {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}
