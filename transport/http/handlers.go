package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/campuslink/warden/core"
	"github.com/campuslink/warden/service"
)

// AuthHandlers contains HTTP handlers for auth endpoints.
type AuthHandlers struct {
	authService *service.AuthService
}

// NewAuthHandlers creates new auth handlers.
func NewAuthHandlers(authService *service.AuthService) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
	}
}

func userPayload(u *core.User) gin.H {
	return gin.H{
		"id":          u.ID,
		"identifier":  u.Identifier,
		"displayName": u.DisplayName,
		"role":        u.Role,
	}
}

// Signup handles the registration request.
func (h *AuthHandlers) Signup(c *gin.Context) {
	var req struct {
		Identifier  string `json:"identifier" binding:"required"`
		Password    string `json:"password" binding:"required"`
		DisplayName string `json:"displayName" binding:"required"`
		Contact     string `json:"contact"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	res, err := h.authService.Signup(c.Request.Context(), service.SignupInput{
		Identifier:  req.Identifier,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		Contact:     req.Contact,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	if res.Token != "" {
		c.JSON(http.StatusCreated, gin.H{
			"ok":    true,
			"user":  userPayload(res.User),
			"token": res.Token,
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ok": true})
}

// Login handles the credential-check request. When the second factor is
// enabled the response carries only the opaque session token, never the code.
func (h *AuthHandlers) Login(c *gin.Context) {
	var req struct {
		Identifier string `json:"identifier" binding:"required"`
		Password   string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	res, err := h.authService.Login(c.Request.Context(), req.Identifier, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}

	if res.OTPRequired {
		c.JSON(http.StatusOK, gin.H{
			"otpRequired":  true,
			"sessionToken": res.SessionToken,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":  userPayload(res.User),
		"token": res.Token,
	})
}

// VerifyOTP handles code verification.
func (h *AuthHandlers) VerifyOTP(c *gin.Context) {
	var req struct {
		SessionToken string `json:"sessionToken" binding:"required"`
		Code         string `json:"code" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	res, err := h.authService.VerifyOTC(c.Request.Context(), req.SessionToken, req.Code)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":  userPayload(res.User),
		"token": res.Token,
	})
}

// ResendOTP handles reissue of a challenge for a pending session.
func (h *AuthHandlers) ResendOTP(c *gin.Context) {
	var req struct {
		SessionToken string `json:"sessionToken" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	token, err := h.authService.ResendOTC(c.Request.Context(), req.SessionToken)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"sessionToken": token})
}

// Me returns the identity behind the bearer token. The auth middleware has
// already resolved the user into the request context.
func (h *AuthHandlers) Me(c *gin.Context) {
	value, exists := c.Get(contextUserKey)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}
	user := value.(*core.User)

	c.JSON(http.StatusOK, userPayload(user))
}

// Healthz reports liveness.
func (h *AuthHandlers) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// writeError maps core errors to statuses. Mapping is by error identity,
// never by message text. Persistence and other unclassified failures are a
// generic 500; internals never leak to the client.
func (h *AuthHandlers) writeError(c *gin.Context, err error) {
	var rl *core.RateLimitError
	if errors.As(err, &rl) {
		c.Header("Retry-After", strconv.Itoa(rl.RetryAfterMinutes()*60))
		c.JSON(http.StatusTooManyRequests, gin.H{
			"message":           "too many attempts",
			"retryAfterMinutes": rl.RetryAfterMinutes(),
		})
		return
	}

	switch {
	case errors.Is(err, core.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
	case errors.Is(err, core.ErrDuplicateIdentifier):
		c.JSON(http.StatusBadRequest, gin.H{"error": "duplicate_identifier"})
	case errors.Is(err, core.ErrInvalidCredentials):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_credentials"})
	case errors.Is(err, core.ErrInvalidSession):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_session"})
	case errors.Is(err, core.ErrAlreadyUsed):
		c.JSON(http.StatusBadRequest, gin.H{"error": "already_used"})
	case errors.Is(err, core.ErrExpired):
		c.JSON(http.StatusBadRequest, gin.H{"error": "expired"})
	case errors.Is(err, core.ErrInvalidCode):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_code"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
	}
}
