package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"tutorconnect/internal/apperr"
	"tutorconnect/internal/auth"
	"tutorconnect/internal/db"
	"tutorconnect/internal/logger"
	"tutorconnect/internal/metrics"
	"tutorconnect/internal/validate"
	"tutorconnect/internal/wallet"
)

var (
	ErrEmailExists        = apperr.Conflict("User already exists")
	ErrInvalidCredentials = apperr.Unauthorized("Invalid email or password")
	ErrInvalidRefresh     = apperr.Unauthorized("Invalid or expired refresh token")
	ErrAccountSuspended   = apperr.Forbidden("Account is suspended")
)

// WalletCreator opens the wallet every new account starts with.
type WalletCreator interface {
	CreateWallet(ctx context.Context, q db.Executor, userID int) (*wallet.Wallet, error)
}

type Service struct {
	db        db.DB
	repo      Repository
	wallets   WalletCreator
	revoker   auth.Revoker
	jwtSecret string
}

func NewService(database db.DB, repo Repository, wallets WalletCreator, revoker auth.Revoker, jwtSecret string) *Service {
	return &Service{
		db:        database,
		repo:      repo,
		wallets:   wallets,
		revoker:   revoker,
		jwtSecret: jwtSecret,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates the account, its role profile and an empty wallet as one
// unit and returns the new user's ID.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (int, error) {
	req.Email = normalizeEmail(req.Email)
	req.FullName = strings.TrimSpace(req.FullName)
	if err := validate.Struct(req); err != nil {
		return 0, err
	}

	exists, err := s.repo.EmailExists(ctx, s.db, req.Email)
	if err != nil {
		return 0, err
	}
	if exists {
		return 0, ErrEmailExists
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return 0, err
	}

	profile := profileFor(req)
	var userID int
	err = db.WithTx(ctx, s.db, func(q db.Executor) error {
		u, err := s.repo.Create(ctx, q, req.Email, passwordHash, profile.Role(), profile.InitialStatus())
		if err != nil {
			return err
		}
		if err := profile.create(ctx, s.repo, q, u.ID); err != nil {
			return err
		}
		if _, err := s.wallets.CreateWallet(ctx, q, u.ID); err != nil {
			return err
		}
		userID = u.ID
		return nil
	})
	if err != nil {
		if db.IsUniqueViolation(err) {
			return 0, ErrEmailExists
		}
		return 0, err
	}

	metrics.RecordRegistration(string(profile.Role()))
	logger.Info("user registered", "user_id", userID, "role", profile.Role())
	return userID, nil
}

func (s *Service) issue(u *User, withRefresh bool) (*LoginResponse, error) {
	id := auth.Identity{UserID: u.ID, Email: u.Email, Role: string(u.Role), Status: string(u.Status)}

	if !withRefresh {
		access, err := auth.GenerateAccessToken(id, s.jwtSecret)
		if err != nil {
			return nil, err
		}
		return &LoginResponse{AccessToken: access, User: *u}, nil
	}

	access, refresh, err := auth.GenerateTokens(id, s.jwtSecret, s.jwtSecret)
	if err != nil {
		return nil, err
	}
	return &LoginResponse{AccessToken: access, RefreshToken: refresh, User: *u}, nil
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	req.Email = normalizeEmail(req.Email)
	if err := validate.Struct(req); err != nil {
		return nil, err
	}

	u, err := s.repo.FindByEmail(ctx, s.db, req.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.CheckPassword(u.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}
	if u.Status == StatusSuspended {
		return nil, ErrAccountSuspended
	}

	return s.issue(u, true)
}

// Refresh issues a new access token reflecting the user's current role and
// status.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*LoginResponse, error) {
	claims, err := auth.ParseRefreshToken(refreshToken, s.jwtSecret)
	if err != nil {
		return nil, ErrInvalidRefresh
	}

	u, err := s.repo.FindByID(ctx, s.db, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidRefresh
		}
		return nil, err
	}
	if u.Status == StatusSuspended {
		return nil, ErrAccountSuspended
	}

	return s.issue(u, false)
}

// SignOut denylists the session's access token until it would have expired.
func (s *Service) SignOut(ctx context.Context, session auth.Session) error {
	if err := s.revoker.Revoke(ctx, session.TokenID, time.Until(session.ExpiresAt)); err != nil {
		return err
	}
	logger.Info("user signed out", "user_id", session.UserID)
	return nil
}

func (s *Service) Me(ctx context.Context, userID int) (*Me, error) {
	u, err := s.repo.FindByID(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}

	me := &Me{User: *u}
	switch u.Role {
	case RoleStudent:
		if me.StudentProfile, err = s.repo.StudentByUserID(ctx, s.db, userID); err != nil {
			return nil, err
		}
	case RoleTutor:
		if me.TutorProfile, err = s.repo.TutorByUserID(ctx, s.db, userID); err != nil {
			return nil, err
		}
	}
	return me, nil
}
