package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ebetcoin/backend/internal/config"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var auth = config.AuthConfig{JWTSecret: "secret", Issuer: "ebetcoin"}

func TestParseToken(t *testing.T) {
	valid, err := NewToken(auth, 42, "ada", time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(valid, auth)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "ada", claims.Username)

	expired, err := NewToken(auth, 42, "", -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken(expired, auth)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	otherIssuer, err := NewToken(config.AuthConfig{JWTSecret: "secret", Issuer: "elsewhere"}, 42, "", time.Hour)
	require.NoError(t, err)
	_, err = ParseToken(otherIssuer, auth)
	assert.ErrorIs(t, err, jwt.ErrTokenInvalidIssuer)

	wrongKey, err := NewToken(config.AuthConfig{JWTSecret: "other", Issuer: "ebetcoin"}, 42, "", time.Hour)
	require.NoError(t, err)
	_, err = ParseToken(wrongKey, auth)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)

	noUser, err := NewToken(auth, 0, "", time.Hour)
	require.NoError(t, err)
	_, err = ParseToken(noUser, auth)
	assert.Error(t, err)
}

func TestParseToken_RejectsNone(t *testing.T) {
	tok := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    auth.Issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	raw, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ParseToken(raw, auth)
	assert.Error(t, err)
}

type staticAdmins map[int64]bool

func (s staticAdmins) IsAdmin(_ context.Context, userID int64) (bool, error) {
	return s[userID], nil
}

func newApp() *fiber.App {
	app := fiber.New()
	app.Use(RequestLogger())
	app.Get("/me", JWTAuth(auth), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"user_id": GetUserID(c)})
	})
	app.Get("/admin", JWTAuth(auth), AdminAuth(staticAdmins{7: true}), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"admin_id": GetAdminID(c), "admin": IsAdmin(c)})
	})
	return app
}

func request(t *testing.T, app *fiber.App, path string, userID int64, requestID string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if userID != 0 {
		tok, err := NewToken(auth, userID, "", time.Hour)
		require.NoError(t, err)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+tok)
	}
	if requestID != "" {
		req.Header.Set(RequestIDHeader, requestID)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestJWTAuth(t *testing.T) {
	app := newApp()

	assert.Equal(t, http.StatusUnauthorized, request(t, app, "/me", 0, "").StatusCode)
	assert.Equal(t, http.StatusOK, request(t, app, "/me", 5, "").StatusCode)
}

func TestAdminAuth(t *testing.T) {
	app := newApp()

	assert.Equal(t, http.StatusUnauthorized, request(t, app, "/admin", 0, "").StatusCode)
	assert.Equal(t, http.StatusForbidden, request(t, app, "/admin", 5, "").StatusCode)
	assert.Equal(t, http.StatusOK, request(t, app, "/admin", 7, "").StatusCode)
}

func TestRequestLogger_RequestID(t *testing.T) {
	app := newApp()

	resp := request(t, app, "/me", 5, "abc-123")
	assert.Equal(t, "abc-123", resp.Header.Get(RequestIDHeader))

	resp = request(t, app, "/me", 5, "")
	assert.NotEmpty(t, resp.Header.Get(RequestIDHeader))

	// unknown routes go through the error handler and still get an id
	resp = request(t, app, "/missing", 0, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(RequestIDHeader))
}

type banList map[int64]bool

func (b banList) IsUserBanned(_ context.Context, userID int64) (bool, error) {
	if userID == 500 {
		return false, errors.New("db down")
	}
	return b[userID], nil
}

func TestBanCheck(t *testing.T) {
	app := fiber.New()
	app.Post("/deposits", JWTAuth(auth), BanCheck(banList{3: true}), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusCreated)
	})

	post := func(userID int64) int {
		tok, err := NewToken(auth, userID, "", time.Hour)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPost, "/deposits", nil)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+tok)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		return resp.StatusCode
	}

	assert.Equal(t, http.StatusForbidden, post(3))
	assert.Equal(t, http.StatusCreated, post(4))
	// lookup failures do not lock users out
	assert.Equal(t, http.StatusCreated, post(500))
}
