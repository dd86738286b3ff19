package auth

import (
	"errors"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"gorm.io/gorm"

	"github.com/barterskills/barterskills-server-go/internal/features/user"
	"github.com/barterskills/barterskills-server-go/pkg/email"
	"github.com/barterskills/barterskills-server-go/pkg/mediastore"
	"github.com/barterskills/barterskills-server-go/pkg/response"
)

// Handler processes authentication HTTP requests.
type Handler struct {
	db     *gorm.DB
	logger *slog.Logger
	media  *mediastore.Client
	email  *email.Client
	oauth  *oauth2.Config
	tokens TokenConfig
}

// NewHandler constructs an auth handler instance.
func NewHandler(db *gorm.DB, logger *slog.Logger, media *mediastore.Client, emailClient *email.Client, oauth *oauth2.Config, tokens TokenConfig) *Handler {
	return &Handler{
		db:     db,
		logger: logger,
		media:  media,
		email:  emailClient,
		oauth:  oauth,
		tokens: tokens,
	}
}

// Register creates a new account. Avatar and cover image arrive as multipart
// files and are stored before the account row is created.
func (h *Handler) Register(c *gin.Context) {
	var req struct {
		FullName string `form:"fullName" binding:"required"`
		Username string `form:"username" binding:"required"`
		Email    string `form:"email" binding:"required"`
		Password string `form:"password" binding:"required"`
	}
	if err := c.ShouldBind(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid registration payload", err)
		return
	}

	input := RegisterInput{
		FullName: req.FullName,
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	}

	if avatar, err := c.FormFile("avatar"); err == nil {
		uploaded, err := h.uploadImage(c, avatar, "avatars")
		if err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to upload avatar", err)
			return
		}
		input.AvatarURL = uploaded.URL
		input.AvatarID = uploaded.PublicID
	}

	if cover, err := c.FormFile("coverImage"); err == nil {
		uploaded, err := h.uploadImage(c, cover, "covers")
		if err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to upload cover image", err)
			return
		}
		input.CoverImageURL = uploaded.URL
		input.CoverImageID = uploaded.PublicID
	}

	result, err := Register(h.db.WithContext(c.Request.Context()), input, h.tokens)
	if err != nil {
		h.respondError(c, err, "failed to register")
		return
	}

	go func() {
		if err := h.email.SendWelcome(result.User.Email, result.User.FullName); err != nil {
			h.logger.Warn("welcome email failed",
				slog.String("email", result.User.Email),
				slog.String("error", err.Error()),
			)
		}
	}()

	response.Created(c, result, "User registered successfully.")
}

// Login authenticates by email or username.
func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Username string `json:"username"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid login payload", err)
		return
	}

	identifier := req.Email
	if identifier == "" {
		identifier = req.Username
	}

	result, err := Login(h.db.WithContext(c.Request.Context()), LoginInput{
		Identifier: identifier,
		Password:   req.Password,
	}, h.tokens)
	if err != nil {
		h.respondError(c, err, "failed to login")
		return
	}

	response.Success(c, http.StatusOK, result, "Logged in successfully.", nil)
}

// GoogleLogin exchanges an OAuth authorization code for a session.
func (h *Handler) GoogleLogin(c *gin.Context) {
	var req struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid google login payload", err)
		return
	}

	profile, err := FetchGoogleProfile(c.Request.Context(), h.oauth, req.Code)
	if err != nil {
		h.respondError(c, err, "google authentication failed")
		return
	}

	result, err := LoginWithGoogle(h.db.WithContext(c.Request.Context()), profile, h.tokens)
	if err != nil {
		h.respondError(c, err, "failed to login with google")
		return
	}

	response.Success(c, http.StatusOK, result, "Logged in successfully.", nil)
}

// Logout invalidates the current session's refresh token.
func (h *Handler) Logout(c *gin.Context) {
	token := ExtractToken(c.GetHeader("Authorization"))
	if token == "" {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "No token provided", nil)
		return
	}

	if err := Logout(h.db.WithContext(c.Request.Context()), token, h.tokens); err != nil {
		h.respondError(c, err, "failed to logout")
		return
	}

	response.Success(c, http.StatusOK, true, "Logged out.", nil)
}

// Refresh rotates the token pair.
func (h *Handler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refreshToken" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid refresh payload", err)
		return
	}

	pair, err := RefreshAccessToken(h.db.WithContext(c.Request.Context()), req.RefreshToken, h.tokens)
	if err != nil {
		h.respondError(c, err, "failed to refresh token")
		return
	}

	response.Success(c, http.StatusOK, pair, "", nil)
}

func (h *Handler) uploadImage(c *gin.Context, file *multipart.FileHeader, folder string) (*mediastore.UploadResult, error) {
	tempPath := filepath.Join(os.TempDir(), uuid.NewString()+filepath.Ext(file.Filename))
	if err := c.SaveUploadedFile(file, tempPath); err != nil {
		return nil, err
	}
	defer os.Remove(tempPath)

	return h.media.UploadFile(c.Request.Context(), tempPath, folder, mediastore.ResourceImage)
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	status := http.StatusInternalServerError
	message := fallback

	switch {
	case errors.Is(err, ErrMissingFields):
		status = http.StatusBadRequest
		message = "Required fields are missing."
	case errors.Is(err, ErrInvalidEmail):
		status = http.StatusBadRequest
		message = "Invalid email address."
	case errors.Is(err, ErrWeakPassword):
		status = http.StatusBadRequest
		message = "Password must be at least 8 characters."
	case errors.Is(err, ErrInvalidCredentials):
		status = http.StatusUnauthorized
		message = "Invalid credentials."
	case errors.Is(err, ErrInvalidToken):
		status = http.StatusUnauthorized
		message = "Invalid or expired token."
	case errors.Is(err, ErrGoogleAuthFailed):
		status = http.StatusUnauthorized
		message = "Google authentication failed."
	case errors.Is(err, user.ErrEmailTaken):
		status = http.StatusConflict
		message = "Email is already registered."
	case errors.Is(err, user.ErrUsernameTaken):
		status = http.StatusConflict
		message = "Username is already taken."
	case errors.Is(err, user.ErrInvalidUsername):
		status = http.StatusBadRequest
		message = "Invalid username format."
	case errors.Is(err, user.ErrUserNotFound):
		status = http.StatusNotFound
		message = "User not found."
	}

	response.ErrorWithLog(h.logger, c, status, message, err)
}
