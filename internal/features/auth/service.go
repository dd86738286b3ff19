package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"regexp"
	"strings"
	"time"

	"golang.org/x/oauth2"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
	"gorm.io/gorm"

	"github.com/barterskills/barterskills-server-go/internal/features/user"
	"github.com/barterskills/barterskills-server-go/internal/utils/jwt"
)

// RegisterInput carries a new account's details.
type RegisterInput struct {
	FullName      string
	Username      string
	Email         string
	Password      string
	AvatarURL     string
	AvatarID      string
	CoverImageURL string
	CoverImageID  string
}

// LoginInput identifies an account by email or username.
type LoginInput struct {
	Identifier string
	Password   string
}

// AuthResponse is the login/register payload.
type AuthResponse struct {
	User         *user.User `json:"user"`
	AccessToken  string     `json:"accessToken"`
	RefreshToken string     `json:"refreshToken"`
}

// TokenConfig holds signing secrets and lifetimes for issued tokens.
type TokenConfig struct {
	JWTSecret          string
	JWTRefreshSecret   string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
}

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Register creates a new account and issues a token pair.
func Register(db *gorm.DB, input RegisterInput, cfg TokenConfig) (*AuthResponse, error) {
	if input.FullName == "" || input.Username == "" || input.Email == "" || input.Password == "" {
		return nil, ErrMissingFields
	}

	if !emailRegex.MatchString(input.Email) {
		return nil, ErrInvalidEmail
	}

	if len(input.Password) < 8 {
		return nil, ErrWeakPassword
	}

	newUser, err := user.Create(db, user.CreateInput{
		FullName:      input.FullName,
		Username:      input.Username,
		Email:         input.Email,
		Password:      input.Password,
		AvatarURL:     input.AvatarURL,
		AvatarID:      input.AvatarID,
		CoverImageURL: input.CoverImageURL,
		CoverImageID:  input.CoverImageID,
	})
	if err != nil {
		return nil, err
	}

	return issueTokens(db, newUser, cfg)
}

// Login authenticates by email or username and issues a token pair.
func Login(db *gorm.DB, input LoginInput, cfg TokenConfig) (*AuthResponse, error) {
	if input.Identifier == "" || input.Password == "" {
		return nil, ErrMissingFields
	}

	usr, err := findByIdentifier(db, input.Identifier)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if !usr.ComparePassword(input.Password) {
		return nil, ErrInvalidCredentials
	}

	return issueTokens(db, usr, cfg)
}

// GoogleProfile is the identity returned by Google's userinfo endpoint.
type GoogleProfile struct {
	ID      string
	Email   string
	Name    string
	Picture string
}

// FetchGoogleProfile resolves an OAuth authorization code into a Google profile.
func FetchGoogleProfile(ctx context.Context, oauthCfg *oauth2.Config, code string) (*GoogleProfile, error) {
	token, err := oauthCfg.Exchange(ctx, code)
	if err != nil {
		return nil, ErrGoogleAuthFailed
	}

	svc, err := oauth2api.NewService(ctx, option.WithTokenSource(oauthCfg.TokenSource(ctx, token)))
	if err != nil {
		return nil, ErrGoogleAuthFailed
	}

	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil || info.Email == "" {
		return nil, ErrGoogleAuthFailed
	}

	return &GoogleProfile{
		ID:      info.Id,
		Email:   info.Email,
		Name:    info.Name,
		Picture: info.Picture,
	}, nil
}

// LoginWithGoogle finds or creates the account matching a Google profile and
// issues a token pair. New accounts get a random password and a username
// derived from the email.
func LoginWithGoogle(db *gorm.DB, profile *GoogleProfile, cfg TokenConfig) (*AuthResponse, error) {
	usr, err := user.GetByEmail(db, profile.Email)
	if err == nil {
		return issueTokens(db, usr, cfg)
	}

	randomPassword := make([]byte, 24)
	if _, err := rand.Read(randomPassword); err != nil {
		return nil, err
	}

	username := usernameFromEmail(profile.Email)
	googleID := profile.ID

	newUser, err := user.Create(db, user.CreateInput{
		FullName:  profile.Name,
		Username:  username,
		Email:     profile.Email,
		Password:  hex.EncodeToString(randomPassword),
		AvatarURL: profile.Picture,
		GoogleID:  &googleID,
	})
	if err != nil {
		return nil, err
	}

	return issueTokens(db, newUser, cfg)
}

// Logout clears the refresh token for the bearer of the given access token.
// Expired tokens are still accepted so a stale session can sign out.
func Logout(db *gorm.DB, accessToken string, cfg TokenConfig) error {
	claims, err := jwt.VerifyToken(accessToken, cfg.JWTSecret)
	if err != nil {
		claims, err = jwt.DecodeWithoutVerify(accessToken)
		if err != nil {
			return ErrInvalidToken
		}
	}

	return user.SetRefreshToken(db, claims.UserID, nil)
}

// RefreshAccessToken rotates the token pair using a stored refresh token.
func RefreshAccessToken(db *gorm.DB, refreshToken string, cfg TokenConfig) (*jwt.TokenPair, error) {
	claims, err := jwt.VerifyToken(refreshToken, cfg.JWTRefreshSecret)
	if err != nil {
		return nil, ErrInvalidToken
	}

	usr, err := user.Get(db, claims.UserID)
	if err != nil {
		return nil, err
	}

	if usr.RefreshToken == nil || *usr.RefreshToken != refreshToken {
		return nil, ErrInvalidToken
	}

	pair, err := jwt.GenerateTokenPair(usr.ID, cfg.JWTSecret, cfg.JWTRefreshSecret, cfg.AccessTokenExpiry, cfg.RefreshTokenExpiry)
	if err != nil {
		return nil, err
	}

	if err := user.SetRefreshToken(db, usr.ID, &pair.RefreshToken); err != nil {
		return nil, err
	}

	return pair, nil
}

// ExtractToken extracts the bearer token from an Authorization header.
func ExtractToken(authHeader string) string {
	if authHeader == "" {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
}

func issueTokens(db *gorm.DB, usr user.User, cfg TokenConfig) (*AuthResponse, error) {
	pair, err := jwt.GenerateTokenPair(usr.ID, cfg.JWTSecret, cfg.JWTRefreshSecret, cfg.AccessTokenExpiry, cfg.RefreshTokenExpiry)
	if err != nil {
		return nil, err
	}

	if err := user.SetRefreshToken(db, usr.ID, &pair.RefreshToken); err != nil {
		return nil, err
	}

	usr.RefreshToken = &pair.RefreshToken

	return &AuthResponse{
		User:         &usr,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}

func findByIdentifier(db *gorm.DB, identifier string) (user.User, error) {
	if emailRegex.MatchString(identifier) {
		return user.GetByEmail(db, identifier)
	}
	return user.GetByUsername(db, identifier)
}

func usernameFromEmail(email string) string {
	local := strings.SplitN(strings.ToLower(email), "@", 2)[0]
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '.':
			return r
		default:
			return -1
		}
	}, local)

	if cleaned == "" {
		cleaned = "user"
	}

	// Suffix keeps generated usernames unique enough without a lookup loop.
	suffix := make([]byte, 3)
	_, _ = rand.Read(suffix)
	return cleaned + hex.EncodeToString(suffix)
}
