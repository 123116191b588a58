package middleware_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"rewards/internal/config"
	"rewards/internal/domain/model"
	"rewards/internal/middleware"
	"rewards/internal/repository"
	auth "rewards/internal/usecase/auth_usecase"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// =====================
// レスポンス確認用
// =====================

type mwErrorResponse struct {
	Error string `json:"error"`
}

type mwOKResponse struct {
	UserID       int64  `json:"user_id"`
	Role         string `json:"role"`
	TokenVersion int    `json:"token_version"`
}

// =====================
// UserRepository モック
// =====================

type MockUserRepoForMiddleware struct {
	mock.Mock
}

func (m *MockUserRepoForMiddleware) Create(ctx context.Context, user *model.User) error {
	panic("not used in middleware tests")
}

func (m *MockUserRepoForMiddleware) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	panic("not used in middleware tests")
}

func (m *MockUserRepoForMiddleware) FindByID(ctx context.Context, id int64) (*model.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *MockUserRepoForMiddleware) Update(ctx context.Context, user *model.User) error {
	panic("not used in middleware tests")
}

func (m *MockUserRepoForMiddleware) ListByEmployer(ctx context.Context, sponsorID int64) ([]model.User, error) {
	panic("not used in middleware tests")
}

func (m *MockUserRepoForMiddleware) Delete(ctx context.Context, userID int64) error {
	panic("not used in middleware tests")
}

var _ repository.UserRepository = (*MockUserRepoForMiddleware)(nil)

// =====================
// helper
// =====================

func testConfig(secret string) config.Config {
	var cfg config.Config
	cfg.Auth.JWTSecret = secret
	return cfg
}

func mustMakeJWT(t *testing.T, secret string, sub int64, role string, tv int, exp int64, signingMethod jwt.SigningMethod) string {
	t.Helper()

	claims := jwt.MapClaims{
		"sub":  strconv.FormatInt(sub, 10),
		"role": role,
		"tv":   tv,
		"iat":  1,
		"exp":  exp,
	}

	s, err := jwt.NewWithClaims(signingMethod, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

// subは文字列のみ受け付ける
func mustMakeNumericSubJWT(t *testing.T, secret string) string {
	t.Helper()
	claims := jwt.MapClaims{"sub": 1, "role": "DRIVER", "tv": 0, "exp": farFuture}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func runRequest(t *testing.T, e *echo.Echo, method string, path string, authHeader string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeMWError(t *testing.T, rec *httptest.ResponseRecorder) mwErrorResponse {
	t.Helper()
	var r mwErrorResponse
	_ = json.NewDecoder(rec.Body).Decode(&r)
	return r
}

func echoContext(c echo.Context) error {
	userID, _ := c.Get(middleware.CtxUserIDKey).(int64)
	role, _ := c.Get(middleware.CtxUserRoleKey).(string)
	tv, _ := c.Get(middleware.CtxTokenVersionKey).(int)
	return c.JSON(http.StatusOK, mwOKResponse{UserID: userID, Role: role, TokenVersion: tv})
}

const farFuture = 9999999999

// =====================
// AuthJWT
// =====================

func TestMiddleware_AuthJWT_Unauthorized(t *testing.T) {
	cfg := testConfig("test-secret")

	cases := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"bad scheme", "Token abc.def.ghi"},
		{"empty token", "Bearer "},
		{"bad signature", "Bearer " + mustMakeJWT(t, "wrong-secret", 1, "DRIVER", 0, farFuture, jwt.SigningMethodHS256)},
		{"wrong alg", "Bearer " + mustMakeJWT(t, "test-secret", 1, "DRIVER", 0, farFuture, jwt.SigningMethodHS512)},
		{"numeric sub", "Bearer " + mustMakeNumericSubJWT(t, "test-secret")},
		{"expired", "Bearer " + mustMakeJWT(t, "test-secret", 1, "DRIVER", 0, time.Now().Add(-time.Hour).Unix(), jwt.SigningMethodHS256)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			e.GET("/protected", echoContext, middleware.AuthJWT(cfg))

			rec := runRequest(t, e, http.MethodGet, "/protected", tc.header)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "unauthorized", decodeMWError(t, rec).Error)
		})
	}
}

// 正常：ctxに値が入る
func TestMiddleware_AuthJWT_Success_SetsContext(t *testing.T) {
	e := echo.New()
	cfg := testConfig("test-secret")

	raw := mustMakeJWT(t, "test-secret", 123, "DRIVER", 7, farFuture, jwt.SigningMethodHS256)
	e.GET("/protected", echoContext, middleware.AuthJWT(cfg))

	rec := runRequest(t, e, http.MethodGet, "/protected", "Bearer "+raw)
	require.Equal(t, http.StatusOK, rec.Code)

	var body mwOKResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, int64(123), body.UserID)
	assert.Equal(t, "DRIVER", body.Role)
	assert.Equal(t, 7, body.TokenVersion)
}

// 発行側と検証側のclaimsが噛み合うこと
func TestMiddleware_AuthJWT_AcceptsIssuedToken(t *testing.T) {
	e := echo.New()
	cfg := testConfig("test-secret")
	cfg.Auth.AccessTTL = time.Minute

	raw, _, err := auth.NewJWTIssuer(cfg).Issue(42, model.RoleStoreManager, 3, time.Now())
	require.NoError(t, err)

	e.GET("/protected", echoContext, middleware.AuthJWT(cfg))
	rec := runRequest(t, e, http.MethodGet, "/protected", "Bearer "+raw)
	require.Equal(t, http.StatusOK, rec.Code)

	var body mwOKResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, int64(42), body.UserID)
	assert.Equal(t, "STORE_MANAGER", body.Role)
	assert.Equal(t, 3, body.TokenVersion)
}

// =====================
// TokenVersionGuard
// =====================

func TestMiddleware_TokenVersionGuard_Unauthorized_MissingContext(t *testing.T) {
	e := echo.New()
	userRepo := new(MockUserRepoForMiddleware)

	e.GET("/protected", echoContext, middleware.TokenVersionGuard(userRepo))

	rec := runRequest(t, e, http.MethodGet, "/protected", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	userRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestMiddleware_TokenVersionGuard_Unauthorized_TokenVersionMismatch(t *testing.T) {
	e := echo.New()
	cfg := testConfig("test-secret")
	userRepo := new(MockUserRepoForMiddleware)

	raw := mustMakeJWT(t, "test-secret", 1, "DRIVER", 0, farFuture, jwt.SigningMethodHS256)
	userRepo.On("FindByID", mock.Anything, int64(1)).Return(&model.User{ID: 1, Role: model.RoleDriver, TokenVersion: 1}, nil)

	e.GET("/protected", echoContext, middleware.AuthJWT(cfg), middleware.TokenVersionGuard(userRepo))

	rec := runRequest(t, e, http.MethodGet, "/protected", "Bearer "+raw)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	userRepo.AssertExpectations(t)
}

// 削除済みユーザー => 401
func TestMiddleware_TokenVersionGuard_Unauthorized_DeletedUser(t *testing.T) {
	e := echo.New()
	cfg := testConfig("test-secret")
	userRepo := new(MockUserRepoForMiddleware)

	raw := mustMakeJWT(t, "test-secret", 1, "DRIVER", 0, farFuture, jwt.SigningMethodHS256)
	userRepo.On("FindByID", mock.Anything, int64(1)).Return(nil, repository.ErrNotFound)

	e.GET("/protected", echoContext, middleware.AuthJWT(cfg), middleware.TokenVersionGuard(userRepo))

	rec := runRequest(t, e, http.MethodGet, "/protected", "Bearer "+raw)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// tv一致 => 200、ロールはDBの値
func TestMiddleware_TokenVersionGuard_Success_RoleFromDB(t *testing.T) {
	e := echo.New()
	cfg := testConfig("test-secret")
	userRepo := new(MockUserRepoForMiddleware)

	raw := mustMakeJWT(t, "test-secret", 1, "ADMIN", 5, farFuture, jwt.SigningMethodHS256)
	userRepo.On("FindByID", mock.Anything, int64(1)).Return(&model.User{ID: 1, Role: model.RoleDriver, TokenVersion: 5}, nil)

	e.GET("/protected", echoContext, middleware.AuthJWT(cfg), middleware.TokenVersionGuard(userRepo))

	rec := runRequest(t, e, http.MethodGet, "/protected", "Bearer "+raw)
	require.Equal(t, http.StatusOK, rec.Code)

	var body mwOKResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "DRIVER", body.Role)
}

// =====================
// RoleGuard
// =====================

func TestMiddleware_RoleGuard(t *testing.T) {
	cases := []struct {
		name string
		role string
		want int
	}{
		{"admin allowed", "ADMIN", http.StatusOK},
		{"manager allowed", "STORE_MANAGER", http.StatusOK},
		{"driver forbidden", "DRIVER", http.StatusForbidden},
		{"missing role", "", http.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			setRole := func(next echo.HandlerFunc) echo.HandlerFunc {
				return func(c echo.Context) error {
					if tc.role != "" {
						c.Set(middleware.CtxUserRoleKey, tc.role)
					}
					return next(c)
				}
			}
			e.GET("/managers", echoContext, setRole, middleware.RoleGuard(model.RoleAdmin, model.RoleStoreManager))

			rec := runRequest(t, e, http.MethodGet, "/managers", "")
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestMiddleware_AdminRoleGuard_ManagerForbidden(t *testing.T) {
	e := echo.New()
	setRole := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(middleware.CtxUserRoleKey, "STORE_MANAGER")
			return next(c)
		}
	}
	e.GET("/admin", echoContext, setRole, middleware.AdminRoleGuard())

	rec := runRequest(t, e, http.MethodGet, "/admin", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "access denied", decodeMWError(t, rec).Error)
}
