package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/clinicahealth/clinica-backend/internal/application"
	"github.com/clinicahealth/clinica-backend/internal/interface/middleware"
	"github.com/clinicahealth/clinica-backend/pkg/apperr"
	"github.com/clinicahealth/clinica-backend/pkg/helpers"
	"github.com/clinicahealth/clinica-backend/pkg/response"
	"github.com/clinicahealth/clinica-backend/pkg/validation"
)

type AuthHandler struct {
	Svc      *application.AuthService
	Patients *application.PatientService
	Logger   *logrus.Logger
	Cookies  *helpers.CookieManager
}

func NewAuthHandler(svc *application.AuthService, patients *application.PatientService, logger *logrus.Logger, cookieDomain string, cookieSecure bool) *AuthHandler {
	return &AuthHandler{Svc: svc, Patients: patients, Logger: logger, Cookies: helpers.NewCookie(cookieDomain, cookieSecure)}
}

// fail writes a categorized error envelope; uncategorized errors become a
// logged 500.
func (h *AuthHandler) fail(c *gin.Context, err error) {
	if ae, ok := apperr.From(err); ok {
		response.Error(c, ae.Status, ae.Message, nil)
		return
	}
	if h.Logger != nil {
		h.Logger.WithError(err).Error("unexpected error")
	}
	response.Error(c, http.StatusInternalServerError, "internal error", nil)
}

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
}

// Register POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	res, patient, err := h.Svc.Register(c.Request.Context(), application.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	if h.Patients != nil {
		h.Patients.IndexPatient(c.Request.Context(), patient, res.Email)
	}
	response.Success(c, http.StatusOK, gin.H{
		"token": res.Token,
		"email": res.Email,
	}, "Sign Up successfully!, please verify your email")
}

type verifyRequest struct {
	OTP int `json:"otp" binding:"required,otp"`
}

// Verify POST /api/auth/verify, action token in the `token` header.
func (h *AuthHandler) Verify(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	res, err := h.Svc.VerifyAccount(c.Request.Context(), c.GetHeader("token"), req.OTP)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.Cookies.SetRefresh(c, res.RefreshToken)
	response.Success(c, http.StatusOK, gin.H{
		"access_token": res.AccessToken,
		"role":         res.Role,
		"id":           res.ID,
	}, "Account verified successfully")
}

type emailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResendOTP POST /api/auth/resend-otp
func (h *AuthHandler) ResendOTP(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	res, err := h.Svc.ResendOTP(c.Request.Context(), req.Email)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"token": res.Token,
		"email": res.Email,
		"id":    res.ID,
	}, "Otp resend successfully")
}

type signInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	FCMToken string `json:"fcm_token"`
}

// SignIn POST /api/auth/sign-in
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	res, err := h.Svc.SignIn(c.Request.Context(), req.Email, req.Password, req.FCMToken)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.Cookies.SetRefresh(c, res.RefreshToken)
	response.Success(c, http.StatusOK, gin.H{
		"access_token": res.AccessToken,
		"role":         res.Role,
		"id":           res.ID,
	}, "Sign In successfully!")
}

// Refresh POST /api/auth/refresh, refresh token from the cookie.
func (h *AuthHandler) Refresh(c *gin.Context) {
	refresh := h.Cookies.GetRefresh(c)
	if refresh == "" {
		response.Error(c, http.StatusUnauthorized, "missing refresh token", nil)
		return
	}
	res, err := h.Svc.Refresh(c.Request.Context(), refresh)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"access_token": res.AccessToken,
		"role":         res.Role,
		"id":           res.ID,
	}, "Access token successfully")
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,pwd"`
}

// ChangePassword POST /api/auth/change-password (Bearer access token).
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	claims, ok := middleware.Claims(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Svc.ChangePassword(c.Request.Context(), claims, req.OldPassword, req.NewPassword); err != nil {
		h.fail(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "Password changed successfully")
}

// ForgetPassword POST /api/auth/forget-password
func (h *AuthHandler) ForgetPassword(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	res, err := h.Svc.ForgetPassword(c.Request.Context(), req.Email)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"token": res.Token}, "Please check your email")
}

type resetPasswordRequest struct {
	NewPassword string `json:"new_password" binding:"required,pwd"`
}

// ResetPassword POST /api/auth/reset-password, action token in the
// `token` header.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	res, err := h.Svc.ResetPassword(c.Request.Context(), c.GetHeader("token"), req.NewPassword)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.Cookies.SetRefresh(c, res.RefreshToken)
	response.Success(c, http.StatusOK, gin.H{
		"access_token": res.AccessToken,
		"role":         res.Role,
		"id":           res.ID,
	}, "Password reset successfully!")
}
