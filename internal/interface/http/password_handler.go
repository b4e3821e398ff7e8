package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/userhub/accounts-api/internal/application"
	"github.com/userhub/accounts-api/pkg/response"
	"github.com/userhub/accounts-api/pkg/validation"
)

// PasswordHandler exposes the three reset-protocol endpoints:
// forgot (issue code), verify-reset-code (code -> signed token), reset
// (token -> new credential).
type PasswordHandler struct {
	Svc    *application.ResetService
	Logger *logrus.Logger
}

func NewPasswordHandler(svc *application.ResetService, logger *logrus.Logger) *PasswordHandler {
	return &PasswordHandler{Svc: svc, Logger: logger}
}

func clientIP(c *gin.Context) string {
	if ip := c.GetString("real_ip"); ip != "" {
		return ip
	}
	return c.ClientIP()
}

type forgotRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type verifyResetCodeRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required"`
}

type resetRequest struct {
	Email              string `json:"email"`
	NewPassword        string `json:"newPassword"`
	ConfirmNewPassword string `json:"confirmNewPassword"`
	ResetToken         string `json:"resetToken"`
}

// Forgot POST /api/v1/password/forgot {email}
// Responds with the same generic success for registered and unregistered
// emails. Delivery failure is a 500: the code was committed but never
// reached the mailbox.
func (h *PasswordHandler) Forgot(c *gin.Context) {
	var req forgotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	if err := h.Svc.IssueCode(c.Request.Context(), req.Email); err != nil {
		if errors.Is(err, application.ErrDeliveryFailed) {
			response.Fail(c, http.StatusInternalServerError, "Failed to send reset email.", nil)
			return
		}
		if h.Logger != nil {
			h.Logger.WithError(err).WithField("ip", clientIP(c)).Error("reset code issuance failed")
		}
		response.Fail(c, http.StatusInternalServerError, "Something went wrong.", nil)
		return
	}

	response.Success[any](c, http.StatusOK, nil, "If that email is registered, a reset code has been sent.", nil)
}

// VerifyResetCode POST /api/v1/password/verify-reset-code {email, code}
// One undifferentiated failure message for every failed check.
func (h *PasswordHandler) VerifyResetCode(c *gin.Context) {
	var req verifyResetCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	token, err := h.Svc.VerifyCode(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid or expired reset code.", nil)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"resetToken": token}, "Reset code verified.", nil)
}

// Reset POST /api/v1/password/reset {email, newPassword, confirmNewPassword, resetToken}
// Validation failures get distinct messages in a fixed order; the account
// vanishing between verify and reset is the only 404.
func (h *PasswordHandler) Reset(c *gin.Context) {
	var req resetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	err := h.Svc.FinalizeReset(c.Request.Context(), req.Email, req.NewPassword, req.ConfirmNewPassword, req.ResetToken)
	if err != nil {
		switch {
		case errors.Is(err, application.ErrMissingFields):
			response.Fail(c, http.StatusBadRequest, "Missing required fields.", nil)
		case errors.Is(err, application.ErrPasswordMismatch):
			response.Fail(c, http.StatusBadRequest, "Passwords do not match.", nil)
		case errors.Is(err, application.ErrWeakPassword):
			response.Fail(c, http.StatusBadRequest, "Password must be at least 8 characters with a digit, an uppercase and a lowercase letter.", nil)
		case errors.Is(err, application.ErrTokenExpired):
			response.Fail(c, http.StatusBadRequest, "Reset token has expired.", nil)
		case errors.Is(err, application.ErrInvalidToken):
			response.Fail(c, http.StatusBadRequest, "Invalid reset token.", nil)
		case errors.Is(err, application.ErrUserNotFound):
			response.Fail(c, http.StatusNotFound, "User not found.", nil)
		default:
			if h.Logger != nil {
				h.Logger.WithError(err).Error("password reset failed")
			}
			response.Fail(c, http.StatusInternalServerError, "Something went wrong.", nil)
		}
		return
	}

	response.Success[any](c, http.StatusOK, nil, "Password has been reset successfully.", nil)
}
