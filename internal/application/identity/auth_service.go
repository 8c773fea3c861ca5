package identity

import (
	"context"
	"errors"

	"github.com/dms/backend/internal/domain/identity"
	"github.com/dms/backend/internal/domain/shared"
	"github.com/dms/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// AuthService handles login, token refresh and logout
type AuthService struct {
	users     identity.UserRepository
	jwt       *auth.JWTService
	blacklist auth.TokenBlacklist
	logger    *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(users identity.UserRepository, jwt *auth.JWTService, blacklist auth.TokenBlacklist, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{users: users, jwt: jwt, blacklist: blacklist, logger: logger}
}

// Login authenticates a user and returns a token pair. Unknown usernames and
// wrong passwords produce the same error so accounts cannot be enumerated.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	user, err := s.users.FindByUsername(ctx, req.Username)
	if err != nil {
		s.logger.Warn("login failed, unknown user", zap.String("username", req.Username))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password")
	}

	if !user.CheckPassword(req.Password) {
		s.logger.Warn("login failed, wrong password", zap.String("username", req.Username))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password")
	}

	if !user.IsActive {
		s.logger.Warn("login attempt for inactive account", zap.String("username", req.Username))
		return nil, shared.NewDomainError("ACCOUNT_INACTIVE", "Account is disabled")
	}

	pair, err := s.jwt.GenerateTokenPair(auth.GenerateTokenInput{
		UserID:    user.ID,
		Username:  user.Username,
		Superuser: user.IsSuperuser,
	})
	if err != nil {
		s.logger.Error("failed to generate token pair", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication tokens")
	}

	s.logger.Info("user logged in",
		zap.String("username", user.Username),
		zap.String("user_id", user.ID.String()))

	return &LoginResult{
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
		TokenType:             pair.TokenType,
		User:                  ToUserResponse(user),
	}, nil
}

// RefreshToken rotates a token pair. Username and superuser status are
// re-read from the user record so stale claims do not survive a refresh.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*RefreshResult, error) {
	claims, err := s.jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, refreshError(err)
	}

	if revoked, err := s.isRevoked(ctx, claims); err != nil {
		return nil, err
	} else if revoked {
		return nil, shared.NewDomainError("TOKEN_INVALID", "Refresh token has been revoked")
	}

	userID, err := claims.GetUserUUID()
	if err != nil {
		return nil, shared.NewDomainError("TOKEN_INVALID", "Invalid refresh token")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil || !user.IsActive {
		return nil, shared.NewDomainError("TOKEN_INVALID", "Invalid refresh token")
	}

	pair, err := s.jwt.RefreshTokenPair(refreshToken, user.Username, user.IsSuperuser)
	if err != nil {
		return nil, refreshError(err)
	}

	return &RefreshResult{
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
		TokenType:             pair.TokenType,
	}, nil
}

// Logout revokes the presented access token for its remaining lifetime
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	ttl := claims.GetRemainingTTL()
	if ttl <= 0 {
		return nil
	}
	if err := s.blacklist.AddToBlacklist(ctx, claims.ID, ttl); err != nil {
		s.logger.Error("failed to blacklist token", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to log out")
	}
	s.logger.Info("user logged out", zap.String("user_id", claims.UserID))
	return nil
}

// GetCurrentUser returns the account behind the viewer
func (s *AuthService) GetCurrentUser(ctx context.Context, viewer shared.Viewer) (*UserResponse, error) {
	user, err := s.users.FindByID(ctx, viewer.UserID)
	if err != nil {
		return nil, err
	}
	return ToUserResponse(user), nil
}

// ChangePassword verifies the old password, sets the new one and revokes
// every token issued before the change.
func (s *AuthService) ChangePassword(ctx context.Context, viewer shared.Viewer, req ChangePasswordRequest) error {
	user, err := s.users.FindByID(ctx, viewer.UserID)
	if err != nil {
		return err
	}
	if !user.CheckPassword(req.OldPassword) {
		return shared.NewDomainError("INVALID_CREDENTIALS", "Old password is incorrect")
	}
	if err := user.SetPassword(req.NewPassword); err != nil {
		return err
	}
	if err := s.users.Save(ctx, user); err != nil {
		return err
	}
	if err := s.blacklist.AddUserTokensToBlacklist(ctx, user.ID.String(), s.jwt.GetRefreshTokenExpiration()); err != nil {
		s.logger.Error("failed to revoke tokens after password change", zap.Error(err))
	}
	return nil
}

func (s *AuthService) isRevoked(ctx context.Context, claims *auth.Claims) (bool, error) {
	blacklisted, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
	if err != nil {
		s.logger.Error("failed to check token blacklist", zap.Error(err))
		return false, shared.NewDomainError("INTERNAL_ERROR", "Failed to validate token")
	}
	if blacklisted {
		return true, nil
	}
	invalidated, err := s.blacklist.IsUserTokenInvalidated(ctx, claims.UserID, claims.GetIssuedAtTime())
	if err != nil {
		s.logger.Error("failed to check token invalidation", zap.Error(err))
		return false, shared.NewDomainError("INTERNAL_ERROR", "Failed to validate token")
	}
	return invalidated, nil
}

func refreshError(err error) error {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return shared.NewDomainError("TOKEN_EXPIRED", "Refresh token has expired")
	case errors.Is(err, auth.ErrMaxRefreshExceeded):
		return shared.NewDomainError("TOKEN_EXPIRED", "Session has expired, please log in again")
	default:
		return shared.NewDomainError("TOKEN_INVALID", "Invalid refresh token")
	}
}
