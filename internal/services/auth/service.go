// Package auth orchestrates signup, login and session refresh by composing
// the credential store, the token service and the referral ledger.
package auth

import (
	"context"
	"log"
	"strings"

	domainerrors "wagmi/internal/errors"
	"wagmi/internal/models"
	"wagmi/internal/repositories"
	"wagmi/internal/services/referral"
	"wagmi/internal/services/token"

	"golang.org/x/crypto/bcrypt"
)

const codeRetries = 5

type RegisterInput struct {
	Username     string
	Email        string
	Password     string
	Name         string
	ReferralCode string
}

type Service interface {
	Register(in RegisterInput) (*models.User, string, string, error)
	// Login accepts a username or an email as identifier.
	Login(identifier, password string) (*models.User, string, string, error)
	AdminLogin(username, password string) (*models.User, string, string, error)
	CurrentUser(userID uint) (*models.User, error)
	Refresh(refreshToken string) (string, string, error)
}

// MetricsCollector records authentication activity. A no-op implementation
// is used when metrics are disabled.
type MetricsCollector interface {
	RecordSignup()
	RecordLogin(kind string)
	RecordRotation(status string)
}

type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordSignup()                {}
func (NoopMetricsCollector) RecordLogin(kind string)      {}
func (NoopMetricsCollector) RecordRotation(status string) {}

type service struct {
	users     repositories.UserRepository
	tokens    token.Service
	referrals referral.Service
	metrics   MetricsCollector
}

func NewService(users repositories.UserRepository, tokens token.Service, referrals referral.Service, metrics MetricsCollector) Service {
	if users == nil {
		panic("user repository is required")
	}
	if tokens == nil {
		panic("token service is required")
	}
	if metrics == nil {
		metrics = NoopMetricsCollector{}
	}
	return &service{
		users:     users,
		tokens:    tokens,
		referrals: referrals,
		metrics:   metrics,
	}
}

func (s *service) Register(in RegisterInput) (*models.User, string, string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", "", err
	}

	user := &models.User{
		Username: in.Username,
		Email:    in.Email,
		Password: string(hashed),
		Name:     in.Name,
	}

	created := false
	for attempt := 0; attempt < codeRetries; attempt++ {
		profile := &models.Profile{ReferralCode: referral.GenerateCode()}
		err = s.users.CreateWithProfile(user, profile)
		if err == nil {
			created = true
			break
		}
		if err == repositories.ErrDuplicateReferralCode {
			log.Printf("profile referral code collision for %q, retrying", in.Username)
			continue
		}
		if err == repositories.ErrDuplicateUser {
			return nil, "", "", domainerrors.ErrDuplicateUser
		}
		return nil, "", "", err
	}
	if !created {
		return nil, "", "", err
	}

	access, refresh, err := s.issueAndStore(user)
	if err != nil {
		return nil, "", "", err
	}
	s.metrics.RecordSignup()

	// A referral code supplied at signup is redeemed on the new user's
	// behalf; a bad code is logged but never fails the signup.
	if in.ReferralCode != "" && s.referrals != nil {
		if _, err := s.referrals.Redeem(context.Background(), in.ReferralCode, user.ID); err != nil {
			log.Printf("signup referral code %q not redeemed for user %d: %v", in.ReferralCode, user.ID, err)
		}
	}

	return user, access, refresh, nil
}

func (s *service) Login(identifier, password string) (*models.User, string, string, error) {
	user, err := s.getByIdentifier(identifier)
	if err != nil {
		log.Printf("login failed: no user for identifier %q", identifier)
		return nil, "", "", domainerrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		log.Printf("login failed: bad password for user %d", user.ID)
		return nil, "", "", domainerrors.ErrInvalidCredentials
	}

	access, refresh, err := s.issueAndStore(user)
	if err != nil {
		return nil, "", "", err
	}
	s.metrics.RecordLogin("user")

	return user, access, refresh, nil
}

func (s *service) AdminLogin(username, password string) (*models.User, string, string, error) {
	user, err := s.users.GetByUsername(username)
	if err != nil {
		return nil, "", "", domainerrors.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", "", domainerrors.ErrInvalidCredentials
	}
	if !user.IsStaff {
		log.Printf("admin login denied for non-staff user %d", user.ID)
		return nil, "", "", domainerrors.ErrNotStaff
	}

	access, refresh, err := s.issueAndStore(user)
	if err != nil {
		return nil, "", "", err
	}
	s.metrics.RecordLogin("admin")

	return user, access, refresh, nil
}

func (s *service) CurrentUser(userID uint) (*models.User, error) {
	user, err := s.users.GetByID(userID)
	if err != nil {
		return nil, domainerrors.ErrUnauthenticated
	}
	return user, nil
}

func (s *service) Refresh(refreshToken string) (string, string, error) {
	access, refresh, err := s.tokens.Rotate(refreshToken)
	if err != nil {
		s.metrics.RecordRotation("rejected")
		return "", "", err
	}
	s.metrics.RecordRotation("success")
	return access, refresh, nil
}

// issueAndStore mints a fresh pair and overwrites the latest-known tokens on
// the profile.
func (s *service) issueAndStore(user *models.User) (string, string, error) {
	access, refresh, err := s.tokens.Issue(user)
	if err != nil {
		return "", "", err
	}
	if err := s.users.UpdateProfileTokens(user.ID, access, refresh); err != nil {
		log.Printf("failed to store latest tokens for user %d: %v", user.ID, err)
	}
	return access, refresh, nil
}

func (s *service) getByIdentifier(identifier string) (*models.User, error) {
	if strings.Contains(identifier, "@") {
		return s.users.GetByEmail(identifier)
	}
	return s.users.GetByUsername(identifier)
}
