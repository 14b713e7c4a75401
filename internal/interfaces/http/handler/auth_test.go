package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appidentity "github.com/govindji/backoffice/internal/application/identity"
	"github.com/govindji/backoffice/internal/domain/identity"
	"github.com/govindji/backoffice/internal/domain/shared"
	"github.com/govindji/backoffice/internal/infrastructure/auth"
	"github.com/govindji/backoffice/internal/infrastructure/config"
	"github.com/govindji/backoffice/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// testJWTConfig returns a default JWT config for tests
func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:                 "test-secret-key-32-characters-long",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "test-issuer",
		MaxRefreshCount:        10,
	}
}

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, tenantID uuid.UUID, username string) (*identity.User, error) {
	args := m.Called(ctx, tenantID, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]identity.User, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByRole(ctx context.Context, tenantID uuid.UUID, role identity.Role, filter shared.Filter) ([]identity.User, error) {
	args := m.Called(ctx, tenantID, role, filter)
	return args.Get(0).([]identity.User), args.Error(1)
}

func (m *MockUserRepository) Save(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockUserRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) ExistsByUsername(ctx context.Context, tenantID uuid.UUID, username string) (bool, error) {
	args := m.Called(ctx, tenantID, username)
	return args.Bool(0), args.Error(1)
}

func setupAuthRouter(handler *AuthHandler, jwtService *auth.JWTService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	// Auth routes (no JWT required for login/refresh)
	authGroup := r.Group("/api/v1/auth")
	{
		authGroup.POST("/login", handler.Login)
		authGroup.POST("/refresh", handler.RefreshToken)
	}

	// Protected auth routes (JWT required)
	protectedGroup := r.Group("/api/v1/auth")
	protectedGroup.Use(middleware.JWTAuthMiddleware(jwtService))
	{
		protectedGroup.POST("/logout", handler.Logout)
		protectedGroup.GET("/me", handler.GetCurrentUser)
		protectedGroup.PUT("/password", handler.ChangePassword)
	}

	return r
}

func createTestUserForHandler(tenantID uuid.UUID) *identity.User {
	user, _ := identity.NewActiveUser(tenantID, "testuser", "Password123", identity.RoleClerk)
	return user
}

func createAuthServiceForHandler(userRepo *MockUserRepository, jwtService *auth.JWTService) *appidentity.AuthService {
	return appidentity.NewAuthService(
		userRepo,
		jwtService,
		auth.NewInMemoryTokenBlacklist(),
		appidentity.DefaultAuthServiceConfig(),
		zap.NewNop(),
	)
}

// loginForTest performs a login and returns the parsed token map.
func loginForTest(t *testing.T, router *gin.Engine, tenantID uuid.UUID) map[string]interface{} {
	t.Helper()

	reqBody := LoginRequest{
		Username: "testuser",
		Password: "Password123",
	}
	body, _ := json.Marshal(reqBody)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Tenant-ID", tenantID.String())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	data := response["data"].(map[string]interface{})
	return data["token"].(map[string]interface{})
}

func TestAuthHandler_Login_Success(t *testing.T) {
	tenantID := uuid.New()
	userRepo := new(MockUserRepository)

	user := createTestUserForHandler(tenantID)

	userRepo.On("FindByUsername", mock.Anything, tenantID, "testuser").Return(user, nil)
	userRepo.On("Save", mock.Anything, user).Return(nil)

	jwtService := auth.NewJWTService(testJWTConfig())
	authService := createAuthServiceForHandler(userRepo, jwtService)
	handler := NewAuthHandler(authService)
	router := setupAuthRouter(handler, jwtService)

	reqBody := LoginRequest{
		Username: "testuser",
		Password: "Password123",
	}
	body, _ := json.Marshal(reqBody)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Tenant-ID", tenantID.String())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.True(t, response["success"].(bool))
	data := response["data"].(map[string]interface{})
	token := data["token"].(map[string]interface{})
	assert.NotEmpty(t, token["access_token"])
	assert.NotEmpty(t, token["refresh_token"])
	assert.Equal(t, "Bearer", token["token_type"])

	userData := data["user"].(map[string]interface{})
	assert.Equal(t, "testuser", userData["username"])
	assert.Equal(t, "clerk", userData["role"])
}

func TestAuthHandler_Login_InvalidRequestBody(t *testing.T) {
	jwtService := auth.NewJWTService(testJWTConfig())
	userRepo := new(MockUserRepository)
	authService := createAuthServiceForHandler(userRepo, jwtService)
	handler := NewAuthHandler(authService)
	router := setupAuthRouter(handler, jwtService)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader([]byte("invalid json")))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_Login_WrongPassword(t *testing.T) {
	tenantID := uuid.New()
	userRepo := new(MockUserRepository)

	user := createTestUserForHandler(tenantID)

	userRepo.On("FindByUsername", mock.Anything, tenantID, "testuser").Return(user, nil)
	userRepo.On("Save", mock.Anything, user).Return(nil)

	jwtService := auth.NewJWTService(testJWTConfig())
	authService := createAuthServiceForHandler(userRepo, jwtService)
	handler := NewAuthHandler(authService)
	router := setupAuthRouter(handler, jwtService)

	reqBody := LoginRequest{
		Username: "testuser",
		Password: "WrongPassword1",
	}
	body, _ := json.Marshal(reqBody)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Tenant-ID", tenantID.String())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_RefreshToken_Success(t *testing.T) {
	tenantID := uuid.New()
	userRepo := new(MockUserRepository)

	user := createTestUserForHandler(tenantID)

	userRepo.On("FindByUsername", mock.Anything, tenantID, "testuser").Return(user, nil)
	userRepo.On("Save", mock.Anything, user).Return(nil)
	userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)

	jwtService := auth.NewJWTService(testJWTConfig())
	authService := createAuthServiceForHandler(userRepo, jwtService)
	handler := NewAuthHandler(authService)
	router := setupAuthRouter(handler, jwtService)

	token := loginForTest(t, router, tenantID)
	refreshToken := token["refresh_token"].(string)

	refreshBody, _ := json.Marshal(RefreshTokenRequest{RefreshToken: refreshToken})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", bytes.NewReader(refreshBody))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.True(t, response["success"].(bool))
	data := response["data"].(map[string]interface{})
	newToken := data["token"].(map[string]interface{})
	assert.NotEmpty(t, newToken["access_token"])
	assert.NotEmpty(t, newToken["refresh_token"])
	assert.NotEqual(t, refreshToken, newToken["refresh_token"], "refresh token should rotate")
}

func TestAuthHandler_Logout_Success(t *testing.T) {
	tenantID := uuid.New()
	userRepo := new(MockUserRepository)

	user := createTestUserForHandler(tenantID)

	userRepo.On("FindByUsername", mock.Anything, tenantID, "testuser").Return(user, nil)
	userRepo.On("Save", mock.Anything, user).Return(nil)

	jwtService := auth.NewJWTService(testJWTConfig())
	authService := createAuthServiceForHandler(userRepo, jwtService)
	handler := NewAuthHandler(authService)
	router := setupAuthRouter(handler, jwtService)

	token := loginForTest(t, router, tenantID)
	accessToken := token["access_token"].(string)
	refreshToken := token["refresh_token"].(string)

	logoutBody, _ := json.Marshal(LogoutRequest{RefreshToken: refreshToken})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", bytes.NewReader(logoutBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.True(t, response["success"].(bool))
	data := response["data"].(map[string]interface{})
	assert.Equal(t, "Logged out successfully", data["message"])
}

func TestAuthHandler_Logout_Unauthorized(t *testing.T) {
	jwtService := auth.NewJWTService(testJWTConfig())
	userRepo := new(MockUserRepository)
	authService := createAuthServiceForHandler(userRepo, jwtService)
	handler := NewAuthHandler(authService)
	router := setupAuthRouter(handler, jwtService)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_GetCurrentUser_Success(t *testing.T) {
	tenantID := uuid.New()
	userRepo := new(MockUserRepository)

	user := createTestUserForHandler(tenantID)

	userRepo.On("FindByUsername", mock.Anything, tenantID, "testuser").Return(user, nil)
	userRepo.On("Save", mock.Anything, user).Return(nil)
	userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)

	jwtService := auth.NewJWTService(testJWTConfig())
	authService := createAuthServiceForHandler(userRepo, jwtService)
	handler := NewAuthHandler(authService)
	router := setupAuthRouter(handler, jwtService)

	token := loginForTest(t, router, tenantID)
	accessToken := token["access_token"].(string)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.True(t, response["success"].(bool))
	data := response["data"].(map[string]interface{})
	userData := data["user"].(map[string]interface{})
	assert.Equal(t, "testuser", userData["username"])
	assert.Equal(t, tenantID.String(), userData["tenant_id"])
}

func TestAuthHandler_ChangePassword_Success(t *testing.T) {
	tenantID := uuid.New()
	userRepo := new(MockUserRepository)

	user := createTestUserForHandler(tenantID)

	userRepo.On("FindByUsername", mock.Anything, tenantID, "testuser").Return(user, nil)
	userRepo.On("Save", mock.Anything, mock.Anything).Return(nil)
	userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)

	jwtService := auth.NewJWTService(testJWTConfig())
	authService := createAuthServiceForHandler(userRepo, jwtService)
	handler := NewAuthHandler(authService)
	router := setupAuthRouter(handler, jwtService)

	token := loginForTest(t, router, tenantID)
	accessToken := token["access_token"].(string)

	changeReq := ChangePasswordRequest{
		OldPassword: "Password123",
		NewPassword: "NewPassword456",
	}
	changeBody, _ := json.Marshal(changeReq)
	req := httptest.NewRequest(http.MethodPut, "/api/v1/auth/password", bytes.NewReader(changeBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.True(t, response["success"].(bool))
}
