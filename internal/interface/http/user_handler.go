package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/userhub/accounts-api/config"
	"github.com/userhub/accounts-api/internal/application"
	"github.com/userhub/accounts-api/internal/domain/entity"
	"github.com/userhub/accounts-api/pkg/helpers"
	"github.com/userhub/accounts-api/pkg/mailer"
	tpl "github.com/userhub/accounts-api/pkg/mailer/templates"
	"github.com/userhub/accounts-api/pkg/response"
	"github.com/userhub/accounts-api/pkg/validation"
)

const birthdateLayout = "2006-01-02"

type UserHandler struct {
	Svc     *application.AccountService
	Logger  *logrus.Logger
	Cfg     *config.Config
	Pub     *helpers.RabbitPublisher
	Cookies *helpers.CookieManager
}

func NewUserHandler(svc *application.AccountService, logger *logrus.Logger, cfg *config.Config, pub *helpers.RabbitPublisher) *UserHandler {
	return &UserHandler{
		Svc:     svc,
		Logger:  logger,
		Cfg:     cfg,
		Pub:     pub,
		Cookies: helpers.NewCookieManager(cfg.CookieDomain, cfg.CookieSecure),
	}
}

type signupRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,strongpwd"`
	Name      string `json:"name"`
	Birthdate string `json:"birthdate" binding:"omitempty,datetime=2006-01-02"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type updateProfileRequest struct {
	Name      string `json:"name"`
	Birthdate string `json:"birthdate" binding:"omitempty,datetime=2006-01-02"`
	AvatarURL string `json:"avatar_url"`
}

// Signup POST /api/v1/signup
func (h *UserHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	in := application.SignupInput{Email: req.Email, Password: req.Password, Name: req.Name}
	if req.Birthdate != "" {
		bd, err := time.Parse(birthdateLayout, req.Birthdate)
		if err != nil {
			response.Fail(c, http.StatusBadRequest, "invalid payload", map[string]string{"birthdate": "must match the format 2006-01-02"})
			return
		}
		in.Birthdate = &bd
	}

	u, err := h.Svc.Signup(c.Request.Context(), in)
	if err != nil {
		switch err {
		case application.ErrEmailTaken:
			response.Fail(c, http.StatusBadRequest, "User already exists", nil)
		case application.ErrWeakPassword:
			response.Fail(c, http.StatusBadRequest, "Password must be at least 8 characters with a digit, an uppercase and a lowercase letter.", nil)
		default:
			response.Fail(c, http.StatusInternalServerError, "failed to create account", nil)
		}
		return
	}

	h.enqueueEmail(c, u.Email, tpl.Welcome, tpl.EmailData{
		Name:    u.Name,
		Email:   u.Email,
		AppName: h.Cfg.AppName,
	})

	response.Success(c, http.StatusOK, gin.H{"user_id": u.ID, "email": u.Email}, "Signup successful", nil)
}

// Login POST /api/v1/login
func (h *UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	res, pair, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		// Unknown email and bad password are indistinguishable here.
		response.Fail(c, http.StatusUnauthorized, "Invalid credentials", nil)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)

	h.enqueueEmail(c, res.Email, tpl.LoginNotification, tpl.EmailData{
		Name:      res.Name,
		Email:     res.Email,
		AppName:   h.Cfg.AppName,
		IP:        clientIP(c),
		UserAgent: c.GetHeader("User-Agent"),
		Time:      time.Now().UTC().Format("02 January 2006, 15:04"),
	})

	response.Success(c, http.StatusOK, res, "Login successful", map[string]any{
		"access_expires_at":  pair.AccessTokenExpiry,
		"refresh_expires_at": pair.RefreshTokenExpiry,
	})
}

// Refresh POST /api/v1/refresh
func (h *UserHandler) Refresh(c *gin.Context) {
	refresh, err := c.Cookie("refresh_token")
	if err != nil || refresh == "" {
		response.Fail(c, http.StatusUnauthorized, "missing refresh token", nil)
		return
	}
	pair, _, err := h.Svc.Refresh(c.Request.Context(), refresh)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, "invalid refresh token", nil)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success[any](c, http.StatusOK, map[string]any{"refreshed": true}, "token refreshed", map[string]any{
		"access_expires_at":  pair.AccessTokenExpiry,
		"refresh_expires_at": pair.RefreshTokenExpiry,
	})
}

// Logout POST /api/v1/logout
func (h *UserHandler) Logout(c *gin.Context) {
	h.Svc.Logout(c.Request.Context(), c.GetString("userID"))
	h.Cookies.Clear(c)
	response.Success[any](c, http.StatusOK, map[string]any{"logged_out": true}, "logged out", nil)
}

// GetProfile GET /api/v1/profile
func (h *UserHandler) GetProfile(c *gin.Context) {
	uid := c.GetString("userID")
	u, err := h.Svc.GetProfile(c.Request.Context(), uid)
	if err != nil {
		response.Fail(c, http.StatusNotFound, "User not found", nil)
		return
	}
	response.Success(c, http.StatusOK, profilePayload(u), "profile", nil)
}

// UpdateProfile PUT /api/v1/profile
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	uid := c.GetString("userID")
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	in := application.UpdateProfileInput{Name: req.Name, AvatarURL: req.AvatarURL}
	if req.Birthdate != "" {
		bd, err := time.Parse(birthdateLayout, req.Birthdate)
		if err != nil {
			response.Fail(c, http.StatusBadRequest, "invalid payload", map[string]string{"birthdate": "must match the format 2006-01-02"})
			return
		}
		in.Birthdate = &bd
	}
	u, err := h.Svc.UpdateProfile(c.Request.Context(), uid, in)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "failed to update profile", err.Error())
		return
	}
	response.Success(c, http.StatusOK, profilePayload(u), "profile updated", nil)
}

// UploadAvatar POST /api/v1/profile/avatar (multipart form, field "avatar")
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	uid := c.GetString("userID")
	file, err := c.FormFile("avatar")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "avatar file is required", nil)
		return
	}
	f, err := file.Open()
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "cannot read avatar file", nil)
		return
	}
	defer func() { _ = f.Close() }()

	url, err := h.Svc.UploadAvatar(c.Request.Context(), uid, f, file.Filename, file.Header.Get("Content-Type"))
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, "avatar upload failed", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"avatar_url": url}, "avatar uploaded", nil)
}

// Search GET /api/v1/users/search?q=...&size=10
func (h *UserHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		response.Fail(c, http.StatusBadRequest, "q is required", nil)
		return
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	hits, err := h.Svc.SearchUsers(c.Request.Context(), q, size)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, "search failed", nil)
		return
	}
	response.Success(c, http.StatusOK, hits, "search results", map[string]any{"count": len(hits)})
}

// enqueueEmail publishes a best-effort notification job; failures are logged
// and never affect the request outcome.
func (h *UserHandler) enqueueEmail(c *gin.Context, to, template string, data tpl.EmailData) {
	if h.Pub == nil || h.Cfg == nil || !h.Cfg.MailSendEnabled {
		return
	}
	job := mailer.EmailJob{To: to, Template: template, Data: tpl.ToMap(data)}
	if err := h.Pub.PublishJSON(c.Request.Context(), job); err != nil && h.Logger != nil {
		h.Logger.WithError(err).WithField("template", template).Warn("failed to enqueue email job")
	}
}

func profilePayload(u *entity.User) gin.H {
	var birthdate string
	if u.Birthdate != nil {
		birthdate = u.Birthdate.Format(birthdateLayout)
	}
	return gin.H{
		"id":         u.ID,
		"email":      u.Email,
		"name":       u.Name,
		"birthdate":  birthdate,
		"avatar_url": u.AvatarURL,
		"created_at": u.CreatedAt,
		"updated_at": u.UpdatedAt,
	}
}
