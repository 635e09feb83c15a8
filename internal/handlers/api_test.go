package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"wagmi/internal/config"
	"wagmi/internal/middleware"
	"wagmi/internal/models"
	"wagmi/internal/repositories"
	"wagmi/internal/services/auth"
	"wagmi/internal/services/referral"
	"wagmi/internal/services/token"
	"wagmi/internal/services/wallet"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// In-memory stores standing in for Postgres, preserving the same uniqueness
// and compare-and-swap semantics.

type memStore struct {
	mu     sync.Mutex
	nextID uint

	users    map[uint]*models.User
	profiles map[uint]*models.Profile

	tokenRows map[string]*models.RefreshToken

	nextRefID uint
	referrals map[uint]*models.Referral
	wallets   map[uint]*models.Wallet
	ledger    []*models.CoinTransaction
}

func newMemStore() *memStore {
	return &memStore{
		nextID:    1,
		users:     make(map[uint]*models.User),
		profiles:  make(map[uint]*models.Profile),
		tokenRows: make(map[string]*models.RefreshToken),
		nextRefID: 1,
		referrals: make(map[uint]*models.Referral),
		wallets:   make(map[uint]*models.Wallet),
	}
}

// UserRepository

func (m *memStore) CreateWithProfile(user *models.User, profile *models.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == user.Username || u.Email == user.Email {
			return repositories.ErrDuplicateUser
		}
	}
	for _, p := range m.profiles {
		if p.ReferralCode == profile.ReferralCode {
			return repositories.ErrDuplicateReferralCode
		}
	}
	user.ID = m.nextID
	m.nextID++
	m.users[user.ID] = user
	profile.UserID = user.ID
	m.profiles[user.ID] = profile
	return nil
}

func (m *memStore) GetByID(id uint) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	return u, nil
}

func (m *memStore) GetByUsername(username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (m *memStore) GetByEmail(email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (m *memStore) GetProfileByUserID(userID uint) (*models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[userID]
	if !ok {
		return nil, repositories.ErrProfileNotFound
	}
	return p, nil
}

func (m *memStore) UpdateProfileTokens(userID uint, accessToken, refreshToken string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[userID]
	if !ok {
		return repositories.ErrProfileNotFound
	}
	p.AccessToken = accessToken
	p.RefreshToken = refreshToken
	return nil
}

// TokenRepository

type memTokenRepo struct{ *memStore }

func (m memTokenRepo) Save(rt *models.RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokenRows[rt.RotationID] = rt
	return nil
}

func (m memTokenRepo) Rotate(oldRotationID string, next *models.RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.tokenRows[oldRotationID]
	if !ok {
		return repositories.ErrLineageNotFound
	}
	if row.Rotated {
		return repositories.ErrAlreadyRotated
	}
	row.Rotated = true
	m.tokenRows[next.RotationID] = next
	return nil
}

func (m memTokenRepo) DeleteExpired(before time.Time) (int64, error) {
	return 0, nil
}

// ReferralRepository

type memReferralRepo struct{ *memStore }

func (m memReferralRepo) GetOutstandingByReferrer(referrerID uint) (*models.Referral, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ref := range m.referrals {
		if ref.ReferrerID == referrerID && !ref.IsUsed {
			copied := *ref
			return &copied, nil
		}
	}
	return nil, repositories.ErrReferralNotFound
}

func (m memReferralRepo) GetByCode(code string) (*models.Referral, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ref := range m.referrals {
		if ref.Code == code {
			copied := *ref
			return &copied, nil
		}
	}
	return nil, repositories.ErrReferralNotFound
}

func (m memReferralRepo) Create(ref *models.Referral) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.referrals {
		if existing.ReferrerID == ref.ReferrerID && !existing.IsUsed {
			return repositories.ErrOutstandingExists
		}
		if existing.Code == ref.Code {
			return repositories.ErrDuplicateCode
		}
	}
	ref.ID = m.nextRefID
	m.nextRefID++
	copied := *ref
	m.referrals[ref.ID] = &copied
	return nil
}

func (m memReferralRepo) MarkUsed(id, refereeID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ref, ok := m.referrals[id]
	if !ok {
		return repositories.ErrReferralNotFound
	}
	if ref.IsUsed {
		return repositories.ErrReferralAlreadyUsed
	}
	ref.IsUsed = true
	ref.RefereeID = &refereeID
	return nil
}

func (m memReferralRepo) CountRedeemedByReferrer(referrerID uint) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, ref := range m.referrals {
		if ref.ReferrerID == referrerID && ref.IsUsed {
			count++
		}
	}
	return count, nil
}

func (m memReferralRepo) ExecuteInTransaction(fn func(repositories.ReferralRepository, repositories.WalletRepository) error) error {
	return fn(m, memWalletRepo{m.memStore})
}

// WalletRepository

type memWalletRepo struct{ *memStore }

func (m memWalletRepo) GetByUserID(userID uint) (*models.Wallet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.wallets[userID]
	if !ok {
		return nil, repositories.ErrWalletNotFound
	}
	copied := *w
	return &copied, nil
}

func (m memWalletRepo) GetOrCreate(userID uint) (*models.Wallet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if w, ok := m.wallets[userID]; ok {
		copied := *w
		return &copied, nil
	}
	w := &models.Wallet{UserID: userID}
	m.wallets[userID] = w
	copied := *w
	return &copied, nil
}

func (m memWalletRepo) Credit(userID uint, coins, points int, reason string, referralID *uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.wallets[userID]
	if !ok {
		w = &models.Wallet{UserID: userID}
		m.wallets[userID] = w
	}
	w.Coins += coins
	w.Points += points
	m.ledger = append(m.ledger, &models.CoinTransaction{
		UserID:     userID,
		Coins:      coins,
		Points:     points,
		Reason:     reason,
		ReferralID: referralID,
	})
	return nil
}

func (m memWalletRepo) InvalidateCached(userIDs ...uint) {}

// newTestApp wires the full route surface over the in-memory store, matching
// the production dependency graph.
func newTestApp(store *memStore) *fiber.App {
	cfg := &config.Config{
		JWTSecret:      "test-secret",
		AccessTTL:      15 * time.Minute,
		RefreshTTL:     7 * 24 * time.Hour,
		ReferralReward: 10,
		ShareBaseURL:   "http://localhost:3001/login",
	}

	tokenService := token.NewService(memTokenRepo{store}, cfg.JWTSecret, cfg.AccessTTL, cfg.RefreshTTL)
	referralService := referral.NewService(memReferralRepo{store}, cfg.ReferralReward, cfg.ShareBaseURL, nil)
	walletService := wallet.NewService(memWalletRepo{store}, nil)
	authService := auth.NewService(store, tokenService, referralService, nil)

	authHandler := NewAuthHandler(authService, cfg)
	referralHandler := NewReferralHandler(referralService, walletService, store)
	walletHandler := NewWalletHandler(walletService)
	authMiddleware := middleware.NewAuthMiddleware(tokenService, store)

	app := fiber.New()
	api := app.Group("/api")
	api.Get("/wake-up", WakeUp)
	api.Post("/signup", authHandler.Signup)
	api.Post("/login", authHandler.Login)
	api.Post("/admin-login", authHandler.AdminLogin)
	api.Post("/logout", authHandler.Logout)
	api.Post("/token/refresh", authHandler.RefreshToken)

	authed := api.Group("", authMiddleware.Handler)
	authed.Get("/me", authHandler.CurrentUser)
	authed.Get("/my-referral", referralHandler.MyReferral)
	authed.Post("/generate-referral", referralHandler.GenerateReferral)
	authed.Post("/use-referral", referralHandler.UseReferral)
	authed.Get("/my-wallet", walletHandler.MyWallet)

	admin := authed.Group("/admin", middleware.StaffOnly)
	admin.Post("/wallet-credit", walletHandler.AdminCredit)

	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any, cookies []*http.Cookie) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var parsed map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &parsed))
	}
	return resp, parsed
}

func sessionCookies(resp *http.Response) []*http.Cookie {
	var out []*http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == middleware.AccessCookie || c.Name == middleware.RefreshCookie {
			out = append(out, c)
		}
	}
	return out
}

func signup(t *testing.T, app *fiber.App, username, email, referralCode string) []*http.Cookie {
	t.Helper()
	resp, _ := doJSON(t, app, http.MethodPost, "/api/signup", fiber.Map{
		"username":     username,
		"email":        email,
		"password":     "s3cret-pass",
		"referralCode": referralCode,
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return sessionCookies(resp)
}

func TestSignupFlow(t *testing.T) {
	app := newTestApp(newMemStore())

	resp, body := doJSON(t, app, http.MethodPost, "/api/signup", fiber.Map{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "s3cret-pass",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	user, ok := body["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "alice", user["username"])
	assert.NotContains(t, user, "password")

	// Both session cookies are set and HTTPOnly.
	cookies := sessionCookies(resp)
	require.Len(t, cookies, 2)
	for _, c := range cookies {
		assert.True(t, c.HttpOnly)
		assert.NotEmpty(t, c.Value)
	}

	// Duplicate signup rejected.
	resp, body = doJSON(t, app, http.MethodPost, "/api/signup", fiber.Map{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "s3cret-pass",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "User already exists", body["error"])
}

func TestSignupValidation(t *testing.T) {
	app := newTestApp(newMemStore())

	tests := []struct {
		name string
		body fiber.Map
	}{
		{name: "missing username", body: fiber.Map{"email": "a@b.com", "password": "s3cret-pass"}},
		{name: "bad email", body: fiber.Map{"username": "a", "email": "nope", "password": "s3cret-pass"}},
		{name: "short password", body: fiber.Map{"username": "a", "email": "a@b.com", "password": "short"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := doJSON(t, app, http.MethodPost, "/api/signup", tt.body, nil)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestLoginAndMe(t *testing.T) {
	app := newTestApp(newMemStore())
	signup(t, app, "alice", "alice@example.com", "")

	// Without a cookie the session endpoints are closed.
	resp, _ := doJSON(t, app, http.MethodGet, "/api/me", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPost, "/api/login", fiber.Map{
		"username": "alice",
		"password": "s3cret-pass",
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cookies := sessionCookies(resp)

	resp, body := doJSON(t, app, http.MethodGet, "/api/me", nil, cookies)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "alice", body["username"])

	// Wrong password yields the generic 401.
	resp, body = doJSON(t, app, http.MethodPost, "/api/login", fiber.Map{
		"username": "alice",
		"password": "wrong-pass",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid credentials", body["error"])
}

func TestReferralFlow(t *testing.T) {
	app := newTestApp(newMemStore())
	aliceCookies := signup(t, app, "alice", "alice@example.com", "")

	// First generate creates, second returns the same code.
	resp, body := doJSON(t, app, http.MethodPost, "/api/generate-referral", nil, aliceCookies)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	code, ok := body["code"].(string)
	require.True(t, ok)
	assert.Contains(t, body["whatsapp_url"], "https://wa.me/")

	resp, body = doJSON(t, app, http.MethodPost, "/api/generate-referral", nil, aliceCookies)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, code, body["code"])

	// Bob signs up with the code; both wallets are credited.
	bobCookies := signup(t, app, "bob", "bob@example.com", code)

	_, body = doJSON(t, app, http.MethodGet, "/api/my-wallet", nil, bobCookies)
	assert.Equal(t, float64(10), body["coins"])

	_, body = doJSON(t, app, http.MethodGet, "/api/my-wallet", nil, aliceCookies)
	assert.Equal(t, float64(10), body["coins"])

	// The dashboard reflects the redemption.
	_, body = doJSON(t, app, http.MethodGet, "/api/my-referral", nil, aliceCookies)
	assert.Equal(t, float64(1), body["total_referrals"])

	// A third user cannot reuse the burned code.
	carolCookies := signup(t, app, "carol", "carol@example.com", "")
	resp, body = doJSON(t, app, http.MethodPost, "/api/use-referral", fiber.Map{"code": code}, carolCookies)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "referral code already used", body["error"])

	_, body = doJSON(t, app, http.MethodGet, "/api/my-wallet", nil, carolCookies)
	assert.Equal(t, float64(0), body["coins"])
}

func TestUseReferral_SelfRejected(t *testing.T) {
	app := newTestApp(newMemStore())
	cookies := signup(t, app, "alice", "alice@example.com", "")

	_, body := doJSON(t, app, http.MethodPost, "/api/generate-referral", nil, cookies)
	code := body["code"].(string)

	resp, body := doJSON(t, app, http.MethodPost, "/api/use-referral", fiber.Map{"code": code}, cookies)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "cannot redeem your own referral code", body["error"])
}

func TestRefreshRotation(t *testing.T) {
	app := newTestApp(newMemStore())
	cookies := signup(t, app, "alice", "alice@example.com", "")

	var refreshCookie *http.Cookie
	for _, c := range cookies {
		if c.Name == middleware.RefreshCookie {
			refreshCookie = c
		}
	}
	require.NotNil(t, refreshCookie)

	resp, body := doJSON(t, app, http.MethodPost, "/api/token/refresh", nil, []*http.Cookie{refreshCookie})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, body["access"])
	assert.NotEqual(t, refreshCookie.Value, body["refresh"])

	// Replaying the consumed refresh token is rejected.
	resp, _ = doJSON(t, app, http.MethodPost, "/api/token/refresh", nil, []*http.Cookie{refreshCookie})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Missing cookie entirely.
	resp, _ = doJSON(t, app, http.MethodPost, "/api/token/refresh", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLogoutClearsCookies(t *testing.T) {
	app := newTestApp(newMemStore())
	cookies := signup(t, app, "alice", "alice@example.com", "")

	resp, _ := doJSON(t, app, http.MethodPost, "/api/logout", nil, cookies)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	for _, c := range sessionCookies(resp) {
		assert.Empty(t, c.Value)
	}
}

func TestAdminWalletCredit(t *testing.T) {
	store := newMemStore()
	app := newTestApp(store)
	aliceCookies := signup(t, app, "alice", "alice@example.com", "")
	signup(t, app, "bob", "bob@example.com", "")

	// Non-staff callers are rejected by the staff gate.
	resp, _ := doJSON(t, app, http.MethodPost, "/api/admin/wallet-credit", fiber.Map{
		"user_id": 2, "coins": 25,
	}, aliceCookies)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	store.mu.Lock()
	store.users[1].IsStaff = true
	store.mu.Unlock()

	resp, _ = doJSON(t, app, http.MethodPost, "/api/admin-login", fiber.Map{
		"username": "alice",
		"password": "s3cret-pass",
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	staffCookies := sessionCookies(resp)

	resp, _ = doJSON(t, app, http.MethodPost, "/api/admin/wallet-credit", fiber.Map{
		"user_id": 2, "coins": 25,
	}, staffCookies)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, body := doJSON(t, app, http.MethodGet, "/api/my-wallet", nil, sessionCookiesFor(t, app, "bob"))
	assert.Equal(t, float64(25), body["coins"])

	// Invalid amounts surface as 400s.
	resp, body = doJSON(t, app, http.MethodPost, "/api/admin/wallet-credit", fiber.Map{
		"user_id": 2, "coins": -5,
	}, staffCookies)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid amount", body["error"])
}

func sessionCookiesFor(t *testing.T, app *fiber.App, username string) []*http.Cookie {
	t.Helper()
	resp, _ := doJSON(t, app, http.MethodPost, "/api/login", fiber.Map{
		"username": username,
		"password": "s3cret-pass",
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return sessionCookies(resp)
}

func TestWakeUp(t *testing.T) {
	app := newTestApp(newMemStore())

	resp, body := doJSON(t, app, http.MethodGet, "/api/wake-up", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "backend awake", body["status"])
}
