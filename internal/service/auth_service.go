package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/velobay/velobay-backend/internal/model"
	"github.com/velobay/velobay-backend/internal/repository"
	"github.com/velobay/velobay-backend/internal/security"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type TokenPair struct {
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	User         *model.User `json:"user"`
}

// CleanupResult reports what the token retention sweep removed.
type CleanupResult struct {
	ExpiredTokensCleaned int64 `json:"expiredTokensCleaned"`
	RevokedTokensCleaned int64 `json:"revokedTokensCleaned"`
	TotalCleaned         int64 `json:"totalCleaned"`
}

type AuthService interface {
	Register(ctx context.Context, email, password, displayName string) (*TokenPair, error)
	Login(ctx context.Context, email, password string) (*TokenPair, error)
	Refresh(ctx context.Context, rawToken string) (*TokenPair, error)
	Logout(ctx context.Context, userID uint64) error
	IssueRefreshToken(ctx context.Context, userID uint64) (string, error)
	CleanupExpiredTokens(ctx context.Context, expiredRetentionDays, revokedRetentionDays int) (CleanupResult, error)
}

type authService struct {
	db         *gorm.DB
	users      repository.UserRepository
	tokens     repository.RefreshTokenRepository
	manager    *security.TokenManager
	refreshTTL time.Duration
}

func NewAuthService(db *gorm.DB, users repository.UserRepository, tokens repository.RefreshTokenRepository,
	manager *security.TokenManager, refreshTTL time.Duration) AuthService {
	return &authService{
		db:         db,
		users:      users,
		tokens:     tokens,
		manager:    manager,
		refreshTTL: refreshTTL,
	}
}

func (s *authService) Register(ctx context.Context, email, password, displayName string) (*TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	displayName = strings.TrimSpace(displayName)
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: invalid email", ErrValidation)
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", ErrValidation)
	}
	if displayName == "" {
		return nil, fmt.Errorf("%w: display name is required", ErrValidation)
	}
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("%w: email already registered", ErrConflict)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		Email:        email,
		PasswordHash: string(hash),
		DisplayName:  displayName,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: email already registered", ErrConflict)
		}
		return nil, err
	}
	return s.issuePair(ctx, user)
}

func (s *authService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: invalid credentials", ErrForbidden)
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, fmt.Errorf("%w: invalid credentials", ErrForbidden)
	}
	return s.issuePair(ctx, user)
}

// Refresh rotates the session: the presented token must still be active, and
// it is revoked together with any other active token before a fresh pair is
// issued.
func (s *authService) Refresh(ctx context.Context, rawToken string) (*TokenPair, error) {
	if rawToken == "" {
		return nil, fmt.Errorf("%w: refresh token is required", ErrValidation)
	}
	hash := security.HashRefreshToken(rawToken)
	stored, err := s.tokens.FindByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: invalid refresh token", ErrForbidden)
		}
		return nil, err
	}
	now := time.Now()
	if stored.IsRevoked() || stored.IsExpired(now) {
		return nil, fmt.Errorf("%w: refresh token expired or revoked", ErrForbidden)
	}
	user, err := s.users.FindByID(ctx, stored.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user not found", ErrNotFound)
		}
		return nil, err
	}
	return s.issuePair(ctx, user)
}

func (s *authService) Logout(ctx context.Context, userID uint64) error {
	_, err := s.tokens.RevokeAllActiveByUser(ctx, userID)
	return err
}

// IssueRefreshToken revokes every active token for the user and creates one
// new token, all in one transaction, keeping a single active session per
// user. The raw token is returned once and never stored.
func (s *authService) IssueRefreshToken(ctx context.Context, userID uint64) (string, error) {
	raw := uuid.New().String()
	row := &model.RefreshToken{
		UserID:    userID,
		TokenHash: security.HashRefreshToken(raw),
		ExpiresAt: time.Now().Add(s.refreshTTL),
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tokens := s.tokens.WithTx(tx)
		if _, err := tokens.RevokeAllActiveByUser(ctx, userID); err != nil {
			return err
		}
		return tokens.Create(ctx, row)
	})
	if err != nil {
		return "", err
	}
	return raw, nil
}

// CleanupExpiredTokens hard-deletes rows past their retention grace period:
// expired tokens older than expiredRetentionDays past expiry, revoked tokens
// older than revokedRetentionDays past revocation.
func (s *authService) CleanupExpiredTokens(ctx context.Context, expiredRetentionDays, revokedRetentionDays int) (CleanupResult, error) {
	var res CleanupResult
	now := time.Now()

	expiredCutoff := now.AddDate(0, 0, -expiredRetentionDays)
	n, err := s.tokens.DeleteExpiredBefore(ctx, expiredCutoff)
	if err != nil {
		return res, err
	}
	res.ExpiredTokensCleaned = n

	revokedCutoff := now.AddDate(0, 0, -revokedRetentionDays)
	n, err = s.tokens.DeleteRevokedBefore(ctx, revokedCutoff)
	if err != nil {
		return res, err
	}
	res.RevokedTokensCleaned = n

	res.TotalCleaned = res.ExpiredTokensCleaned + res.RevokedTokensCleaned
	return res, nil
}

func (s *authService) issuePair(ctx context.Context, user *model.User) (*TokenPair, error) {
	access, err := s.manager.GenerateAccessToken(user.ID)
	if err != nil {
		return nil, err
	}
	refresh, err := s.IssueRefreshToken(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh, User: user}, nil
}
