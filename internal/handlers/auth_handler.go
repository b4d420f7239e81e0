package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"ascend/internal/middleware"
	"ascend/internal/models"
	"ascend/internal/services"
)

type AuthHandler struct {
	userService  services.UserService
	authService  services.AuthService
	resetService services.PasswordResetService
}

func NewAuthHandler(userService services.UserService, authService services.AuthService, resetService services.PasswordResetService) *AuthHandler {
	return &AuthHandler{
		userService:  userService,
		authService:  authService,
		resetService: resetService,
	}
}

// @Summary      Log in
// @Description  Authenticates a user and returns an access token
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        login  body      models.LoginRequest  true  "Credentials"
// @Success      200    {object}  map[string]interface{}
// @Failure      401    {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	user, err := h.userService.GetByEmail(req.Email)
	if err != nil {
		log.Printf("[auth][login] lookup failed for %q: %v", req.Email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "An error occurred"})
		return
	}
	if user == nil || !h.authService.CheckPassword(user.PasswordHash, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
		return
	}

	token, err := middleware.GenerateToken(user.ID)
	if err != nil {
		log.Printf("[auth][login] sign token failed for user %s: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": user.Response()})
}

// @Summary      Register
// @Description  Creates an account and returns an access token
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        register  body      models.RegisterRequest  true  "New account"
// @Success      200       {object}  map[string]interface{}
// @Failure      400       {object}  map[string]string
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	user, err := h.userService.Register(&req)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "User with this email already exists"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	token, err := middleware.GenerateToken(user.ID)
	if err != nil {
		log.Printf("[auth][register] sign token failed for user %s: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": user.Response()})
}

// @Summary      Validate token
// @Description  Returns the user behind a bearer token
// @Tags         Auth
// @Produce      json
// @Success      200  {object}  models.UserResponse
// @Failure      401  {object}  map[string]string
// @Router       /auth/validate [post]
func (h *AuthHandler) Validate(c *gin.Context) {
	authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
	if authHeader == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Missing authorization header"})
		return
	}
	tokenStr := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))

	userID, err := middleware.ParseToken(tokenStr)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid token"})
		return
	}
	user, err := h.userService.GetByID(userID)
	if err != nil || user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid token"})
		return
	}
	c.JSON(http.StatusOK, user.Response())
}

// @Summary      Request password reset
// @Description  Sends a reset code if the account exists; response is the same either way
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request  body      models.ForgotPasswordRequest  true  "Account email"
// @Success      200      {object}  map[string]string
// @Failure      500      {object}  map[string]string
// @Router       /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req models.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	if err := h.resetService.RequestReset(req.Email); err != nil {
		// Delivery and storage failures surface as a generic retry hint;
		// nothing here may reveal whether the account exists.
		log.Printf("[auth][forgot-password] request failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "An error occurred while processing your request"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "If an account with that email exists, a password reset code has been sent"})
}

// @Summary      Verify reset code
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request  body      models.VerifyResetCodeRequest  true  "Reset code"
// @Success      200      {object}  map[string]string
// @Failure      400      {object}  map[string]string
// @Router       /auth/verify-reset-code [post]
func (h *AuthHandler) VerifyResetCode(c *gin.Context) {
	var req models.VerifyResetCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	valid, err := h.resetService.VerifyCode(req.Code)
	if err != nil {
		log.Printf("[auth][verify-reset-code] verification failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "An error occurred while verifying the code"})
		return
	}
	if !valid {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid or expired reset code"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Code is valid"})
}

// @Summary      Reset password
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request  body      models.ResetPasswordRequest  true  "Reset code and new password"
// @Success      200      {object}  map[string]string
// @Failure      400      {object}  map[string]string
// @Router       /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req models.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	if len(req.NewPassword) < 6 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Password must be at least 6 characters long"})
		return
	}

	ok, err := h.resetService.ResetPassword(req.Code, req.NewPassword)
	if err != nil {
		log.Printf("[auth][reset-password] reset failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "An error occurred while resetting your password"})
		return
	}
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid or expired reset code"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password has been reset successfully"})
}
