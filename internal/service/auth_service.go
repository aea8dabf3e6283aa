package service

import (
	"bytes"
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"citypulse/api/internal/config"
	"citypulse/api/internal/ids"
	"citypulse/api/internal/media/sniffer"
	"citypulse/api/internal/models"
	"citypulse/api/internal/repository"
	"citypulse/api/internal/security"
	"citypulse/api/internal/storage"
)

// AuthService owns the session lifecycle: registration, login, refresh
// rotation and logout. A user holds at most one valid refresh token; every
// login or refresh overwrites it.
type AuthService struct {
	users UserStore
	store MediaStore
	cfg   *config.AppConfig
	log   zerolog.Logger
}

func NewAuthService(users UserStore, store MediaStore, cfg *config.AppConfig, log zerolog.Logger) *AuthService {
	return &AuthService{
		users: users,
		store: store,
		cfg:   cfg,
		log:   log,
	}
}

type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Phone     string
	Avatar    []byte
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (models.User, error) {
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))
	if input.Email == "" {
		return models.User{}, invalidField("email", "required")
	}
	if len(input.Password) < 8 {
		return models.User{}, invalidField("password", "must be at least 8 characters")
	}
	if input.FirstName == "" {
		return models.User{}, invalidField("firstName", "required")
	}

	if _, err := s.users.FindByEmail(ctx, input.Email); err == nil {
		return models.User{}, ErrDuplicateEmail
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return models.User{}, err
	}

	passwordHash, err := security.HashPassword(input.Password)
	if err != nil {
		return models.User{}, err
	}

	userID := ids.New()

	// The avatar goes to the object store before the user row is written.
	// If the upload fails, no user record exists to orphan.
	var avatarURL *string
	var avatarKey string
	if len(input.Avatar) > 0 {
		if int64(len(input.Avatar)) > s.cfg.Upload.MaxFileBytes {
			return models.User{}, invalidField("avatar", "exceeds size limit")
		}
		detected, err := sniffer.DetectHead(head(input.Avatar))
		if err != nil || detected.Type == sniffer.TypeMP4 {
			return models.User{}, invalidField("avatar", "must be an image")
		}
		avatarKey = storage.ObjectKey(userID, string(detected.Type))
		url, err := s.store.Put(ctx, s.store.AvatarBucket(), avatarKey, bytes.NewReader(input.Avatar), int64(len(input.Avatar)), detected.MIME)
		if err != nil {
			return models.User{}, fmt.Errorf("upload avatar: %w", err)
		}
		avatarURL = &url
	}

	user := models.User{
		ID:           userID,
		Email:        input.Email,
		PasswordHash: passwordHash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Phone:        input.Phone,
		AvatarURL:    avatarURL,
		Role:         models.UserRoleCitizen,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if avatarKey != "" {
			if rmErr := s.store.Remove(ctx, s.store.AvatarBucket(), avatarKey); rmErr != nil {
				s.log.Warn().Err(rmErr).Str("object_key", avatarKey).Msg("orphan avatar cleanup failed")
			}
		}
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}

	return user, nil
}

type AuthResult struct {
	AccessToken  string
	RefreshToken string
	User         models.User
}

func (s *AuthService) Login(ctx context.Context, email string, password string) (AuthResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, err
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return AuthResult{}, ErrInvalidCredentials
	}

	accessToken, refreshToken, err := s.issueTokenPair(user)
	if err != nil {
		return AuthResult{}, err
	}

	// Single refresh-token slot per user: this write invalidates whatever
	// token a previous session was holding.
	if err := s.users.SetRefreshTokenHash(ctx, user.ID, security.HashRefreshToken(refreshToken)); err != nil {
		return AuthResult{}, err
	}

	return AuthResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
	}, nil
}

// Refresh exchanges a valid refresh token for a new pair, rotating the stored
// slot. A superseded token fails the stored-hash comparison, and two
// concurrent calls with the same token can only rotate once.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (AuthResult, error) {
	claims, err := security.ParseRefreshToken(refreshToken, s.cfg.Security.JWTRefreshSecret)
	if err != nil {
		return AuthResult{}, ErrInvalidToken
	}

	user, err := s.users.GetByID(ctx, claims.Subject)
	if err != nil {
		return AuthResult{}, ErrInvalidToken
	}

	presentedHash := security.HashRefreshToken(refreshToken)
	if len(user.RefreshTokenHash) == 0 ||
		subtle.ConstantTimeCompare(presentedHash, user.RefreshTokenHash) != 1 {
		return AuthResult{}, ErrInvalidToken
	}

	accessToken, newRefreshToken, err := s.issueTokenPair(user)
	if err != nil {
		return AuthResult{}, err
	}

	if err := s.users.RotateRefreshTokenHash(ctx, user.ID, presentedHash, security.HashRefreshToken(newRefreshToken)); err != nil {
		if errors.Is(err, repository.ErrStaleToken) {
			return AuthResult{}, ErrInvalidToken
		}
		return AuthResult{}, err
	}

	return AuthResult{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
		User:         user,
	}, nil
}

func (s *AuthService) CurrentUser(ctx context.Context, userID string) (models.User, error) {
	return s.users.GetByID(ctx, userID)
}

// Logout revokes the active refresh token server-side. Outstanding access
// tokens stay valid until they expire.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	return s.users.ClearRefreshToken(ctx, userID)
}

func (s *AuthService) issueTokenPair(user models.User) (string, string, error) {
	accessToken, err := security.NewAccessToken(
		s.cfg.Security.JWTAccessSecret,
		user.ID,
		string(user.Role),
		s.cfg.Security.JWTAccessTTL,
	)
	if err != nil {
		return "", "", err
	}

	refreshToken, err := security.NewRefreshToken(
		s.cfg.Security.JWTRefreshSecret,
		user.ID,
		s.cfg.Security.JWTRefreshTTL,
	)
	if err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

func head(data []byte) []byte {
	if len(data) > 512 {
		return data[:512]
	}
	return data
}
