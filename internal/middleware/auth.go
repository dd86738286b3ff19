package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/barterskills/barterskills-server-go/internal/utils/jwt"
	"github.com/barterskills/barterskills-server-go/pkg/response"
)

// User is the authenticated viewer loaded into request context. It is a
// projection of the users table limited to what request handling needs.
type User struct {
	ID               uuid.UUID  `gorm:"column:id;primaryKey"`
	Username         string     `gorm:"column:username"`
	Email            string     `gorm:"column:email"`
	FullName         string     `gorm:"column:full_name"`
	Credits          int        `gorm:"column:credits"`
	IsPremium        bool       `gorm:"column:is_premium"`
	PremiumExpiresAt *time.Time `gorm:"column:premium_expires_at"`
	CreatedAt        time.Time  `gorm:"column:created_at"`
	UpdatedAt        time.Time  `gorm:"column:updated_at"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

// PremiumActive reports whether the user's premium window covers the given time.
func (u *User) PremiumActive(now time.Time) bool {
	return u.IsPremium && u.PremiumExpiresAt != nil && u.PremiumExpiresAt.After(now)
}

// AuthMiddleware holds dependencies for authentication middleware.
type AuthMiddleware struct {
	db        *gorm.DB
	jwtSecret string
	logger    *slog.Logger
}

// NewAuthMiddleware creates a new auth middleware instance.
func NewAuthMiddleware(db *gorm.DB, jwtSecret string, logger *slog.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		db:        db,
		jwtSecret: jwtSecret,
		logger:    logger,
	}
}

// RequireAuth validates the bearer token and loads the user into context,
// rejecting the request when either step fails.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := m.ensureAuthenticated(c); !ok {
			return
		}
		c.Next()
	}
}

// AttachUser loads the user into context when a valid bearer token is present,
// but never rejects the request. Handlers that serve both anonymous and
// signed-in viewers use this.
func (m *AuthMiddleware) AttachUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.Next()
			return
		}

		claims, err := jwt.VerifyToken(token, m.jwtSecret)
		if err != nil || claims.UserID == uuid.Nil {
			c.Next()
			return
		}

		var usr User
		if err := m.db.WithContext(c.Request.Context()).
			First(&usr, "id = ?", claims.UserID).Error; err != nil {
			c.Next()
			return
		}

		c.Set("user", &usr)
		c.Set("userId", usr.ID)
		c.Next()
	}
}

// GetUserFromContext retrieves the authenticated user from the Gin context.
func GetUserFromContext(c *gin.Context) (*User, bool) {
	userVal, exists := c.Get("user")
	if !exists {
		return nil, false
	}

	if usr, ok := userVal.(*User); ok && usr != nil {
		return usr, true
	}

	return nil, false
}

func (m *AuthMiddleware) ensureAuthenticated(c *gin.Context) (*User, bool) {
	if usr, ok := GetUserFromContext(c); ok {
		return usr, true
	}

	token := bearerToken(c)
	if token == "" {
		response.ErrorWithLog(m.logger, c, http.StatusUnauthorized, "No token provided", nil)
		c.Abort()
		return nil, false
	}

	claims, err := jwt.VerifyToken(token, m.jwtSecret)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrExpiredToken):
			response.ErrorWithLog(m.logger, c, http.StatusUnauthorized, "Token expired", err)
		default:
			response.ErrorWithLog(m.logger, c, http.StatusUnauthorized, "Invalid token", err)
		}
		c.Abort()
		return nil, false
	}

	if claims.UserID == uuid.Nil {
		response.ErrorWithLog(m.logger, c, http.StatusUnauthorized, "Invalid token payload", nil)
		c.Abort()
		return nil, false
	}

	var usr User
	if err := m.db.WithContext(c.Request.Context()).
		First(&usr, "id = ?", claims.UserID).Error; err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			response.ErrorWithLog(m.logger, c, http.StatusUnauthorized, "User not found", err)
		default:
			response.ErrorWithLog(m.logger, c, http.StatusInternalServerError, "Internal Server Error", err)
		}
		c.Abort()
		return nil, false
	}

	c.Set("user", &usr)
	c.Set("userId", usr.ID)
	return &usr, true
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
}
