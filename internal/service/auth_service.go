package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"b2b-quote/internal/auth"
	"b2b-quote/internal/cache"
	"b2b-quote/internal/config"
	"b2b-quote/internal/model"
	"b2b-quote/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// authService implements AuthService.
type authService struct {
	users    repository.UserRepository
	denylist cache.TokenDenylist
	cfg      config.AuthConfig
	logger   zerolog.Logger
	now      func() time.Time
}

// NewAuthService creates a new auth service. A nil denylist disables logout revocation.
func NewAuthService(users repository.UserRepository, denylist cache.TokenDenylist, cfg config.AuthConfig, logger zerolog.Logger) AuthService {
	return &authService{
		users:    users,
		denylist: denylist,
		cfg:      cfg,
		logger:   logger.With().Str("service", "auth").Logger(),
		now:      time.Now,
	}
}

// Register creates an account.
func (s *authService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	if req.Role == model.RoleSupplier && strings.TrimSpace(req.SupplierID) == "" {
		return nil, model.Validation("supplierId is required for supplier accounts")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		ID:           uuid.New(),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		Name:         strings.TrimSpace(req.Name),
		Company:      strings.TrimSpace(req.Company),
		Phone:        req.Phone,
		Role:         req.Role,
		CreatedAt:    s.now().UTC(),
	}
	if req.Role == model.RoleSupplier {
		user.SupplierID = strings.TrimSpace(req.SupplierID)
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID.String()).Str("role", string(user.Role)).Msg("user registered")
	return user, nil
}

// Login checks credentials and issues a signed token.
func (s *authService) Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		s.logger.Warn().Str("email", req.Email).Msg("login failed")
		return nil, model.ErrInvalidCredentials
	}

	token, claims, err := auth.MintToken(s.cfg, s.now(), user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID.String()).Msg("user logged in")
	return &model.LoginResponse{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
		User:      *user,
	}, nil
}

// Authenticate verifies a bearer token and returns its principal.
func (s *authService) Authenticate(ctx context.Context, token string) (*model.Principal, error) {
	claims, err := auth.ParseToken(s.cfg, token)
	if err != nil {
		s.logger.Debug().Err(err).Msg("token rejected")
		return nil, model.ErrUnauthorised.WithMessage("Invalid or expired token")
	}

	if s.denylist != nil {
		revoked, err := s.denylist.IsTokenRevoked(ctx, claims.ID)
		if err != nil {
			// Fail closed: a token cannot be trusted while its revocation state is unknown.
			return nil, model.ErrStoreUnavailable.Wrap(err)
		}
		if revoked {
			return nil, model.ErrUnauthorised.WithMessage("Token has been revoked")
		}
	}

	return claims.Principal(), nil
}

// Profile returns the account of the caller.
func (s *authService) Profile(ctx context.Context, p *model.Principal) (*model.User, error) {
	user, err := s.users.GetByID(ctx, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, model.ErrUserNotFound
	}
	return user, nil
}

// Logout revokes the caller's token until it would have expired anyway.
func (s *authService) Logout(ctx context.Context, p *model.Principal) error {
	if s.denylist == nil {
		return nil
	}
	ttl := p.ExpiresAt.Sub(s.now())
	if err := s.denylist.RevokeToken(ctx, p.TokenID, ttl); err != nil {
		return model.ErrStoreUnavailable.Wrap(err)
	}
	s.logger.Info().Str("user_id", p.UserID.String()).Msg("token revoked")
	return nil
}
