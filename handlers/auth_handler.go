package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/omerfarooq187/hostel-management/models"
	"github.com/omerfarooq187/hostel-management/services"
	"github.com/omerfarooq187/hostel-management/store"
)

type AuthHandler struct {
	store     store.Store
	mailer    services.Mailer
	jwtSecret string
}

func NewAuthHandler(s store.Store, mailer services.Mailer, jwtSecret string) *AuthHandler {
	return &AuthHandler{store: s, mailer: mailer, jwtSecret: jwtSecret}
}

func (h *AuthHandler) signJWT(sub uint, email, role string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":   sub,
		"email": email,
		"role":  role,
		"exp":   time.Now().Add(ttl).Unix(),
		"iat":   time.Now().Unix(),
	}
	tk := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tk.SignedString([]byte(h.jwtSecret))
}

type SignupReq struct {
	Name     string `json:"name" validate:"required,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// POST /api/auth/signup
func (h *AuthHandler) Signup(c echo.Context) error {
	var req SignupReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{"error": "INVALID_PAYLOAD"})
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()

	existing, err := h.store.Users().ByEmail(ctx, req.Email)
	if err != nil {
		return httpError(err)
	}
	if existing != nil {
		return echo.NewHTTPError(http.StatusConflict, map[string]any{"error": "EMAIL_EXISTS"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return httpError(err)
	}

	user := &models.User{
		Name:          req.Name,
		Email:         req.Email,
		Password:      string(hash),
		Role:          models.RoleStudent,
		Active:        true,  // admin control
		EmailVerified: false, // email control
	}
	if err := h.store.Users().Create(ctx, user); err != nil {
		return httpError(err)
	}

	token := uuid.NewString()
	vt := &models.EmailVerificationToken{
		Token:     token,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}
	if err := h.store.Tokens().Create(ctx, vt); err != nil {
		return httpError(err)
	}

	// async; a failed mail never rolls the account back
	h.mailer.SendVerificationEmail(user.Email, token)

	return c.JSON(http.StatusCreated, map[string]any{
		"message": "Account created. Please verify your email",
	})
}

// POST /api/auth/login
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{"error": "INVALID_PAYLOAD"})
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()

	user, err := h.store.Users().ByEmail(ctx, req.Email)
	if err != nil {
		return httpError(err)
	}
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, map[string]any{"error": "INVALID_CREDENTIALS"})
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, map[string]any{"error": "INVALID_CREDENTIALS"})
	}
	if !user.Active {
		return echo.NewHTTPError(http.StatusUnauthorized, map[string]any{"error": "ACCOUNT_DISABLED"})
	}

	token, err := h.signJWT(user.ID, user.Email, user.Role, 7*24*time.Hour)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]any{"error": "TOKEN_GEN_FAILED"})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"token": token,
		"user": map[string]any{
			"id":    user.ID,
			"name":  user.Name,
			"email": user.Email,
			"role":  user.Role,
		},
	})
}

// GET /api/auth/verify-email?token=...
func (h *AuthHandler) VerifyEmail(c echo.Context) error {
	token := strings.TrimSpace(c.QueryParam("token"))
	if token == "" {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{"error": "MISSING_TOKEN"})
	}

	ctx := c.Request().Context()

	vt, err := h.store.Tokens().ByToken(ctx, token)
	if err != nil {
		return httpError(err)
	}
	if vt == nil {
		return echo.NewHTTPError(http.StatusNotFound, map[string]any{"error": "INVALID_TOKEN"})
	}
	if time.Now().After(vt.ExpiresAt) {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{"error": "TOKEN_EXPIRED"})
	}

	user, err := h.store.Users().ByID(ctx, vt.UserID)
	if err != nil {
		return httpError(err)
	}
	user.EmailVerified = true
	if err := h.store.Users().Update(ctx, user); err != nil {
		return httpError(err)
	}
	_ = h.store.Tokens().Delete(ctx, vt.ID)

	return c.JSON(http.StatusOK, map[string]any{"message": "Email verified"})
}
