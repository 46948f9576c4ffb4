package services

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"

	"github.com/ArowuTest/sequence-draw-backend/internal/config"
	"github.com/ArowuTest/sequence-draw-backend/internal/models"
	"github.com/ArowuTest/sequence-draw-backend/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

// RoleAdmin is the role carried by operator tokens
const RoleAdmin = "admin"

var _ AuthService = (*AuthServiceImpl)(nil)

// AuthServiceImpl checks operator credentials and issues tokens
type AuthServiceImpl struct {
	username     string
	passwordHash []byte
	tokens       *jwt.TokenService
}

// NewAuthService creates an AuthServiceImpl for one operator account.
// A configured bcrypt hash is used as is; otherwise the plain password is
// hashed once here.
func NewAuthService(admin config.AdminConfig, tokens *jwt.TokenService) (*AuthServiceImpl, error) {
	hash := []byte(admin.PasswordHash)
	if len(hash) == 0 {
		var err error
		hash, err = bcrypt.GenerateFromPassword([]byte(admin.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash admin password: %w", err)
		}
	} else if _, err := bcrypt.Cost(hash); err != nil {
		return nil, fmt.Errorf("admin password hash is not a bcrypt hash: %w", err)
	}
	return &AuthServiceImpl{
		username:     admin.Username,
		passwordHash: hash,
		tokens:       tokens,
	}, nil
}

// Login handles operator login
func (s *AuthServiceImpl) Login(ctx context.Context, req models.LoginRequest) (models.LoginResponse, error) {
	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(s.username)) == 1
	// bcrypt runs even for an unknown username.
	passErr := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(req.Password))
	if !userOK || passErr != nil {
		slog.Warn("Operator login failed", "username", req.Username)
		return models.LoginResponse{}, ErrInvalidCredentials
	}

	token, _, err := s.tokens.Generate(s.username, RoleAdmin)
	if err != nil {
		slog.Error("Failed to issue operator token", "error", err)
		return models.LoginResponse{}, err
	}
	slog.Info("Operator logged in", "username", s.username)
	return models.LoginResponse{
		Token:     token,
		ExpiresIn: int(s.tokens.TTL().Seconds()),
	}, nil
}
