package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/store-management/internal/user"
)

type UserLookup interface {
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	GetByIDUncached(ctx context.Context, id int64) (*user.User, error)
}

type UserCreator interface {
	CreateUser(ctx context.Context, dto user.CreateUserDTO) (user.Response, error)
}

// Service authenticates users and turns sessions into access tokens.
type Service struct {
	users   UserLookup
	creator UserCreator
	tokens  *JWTTokenGenerator
	logger  *slog.Logger
}

func NewService(users UserLookup, creator UserCreator, tokens *JWTTokenGenerator, logger *slog.Logger) *Service {
	return &Service{
		users:   users,
		creator: creator,
		tokens:  tokens,
		logger:  logger,
	}
}

// Register creates an unverified account with the USER role.
func (s *Service) Register(ctx context.Context, dto RegisterDTO) (user.Response, error) {
	return s.creator.CreateUser(ctx, user.CreateUserDTO{
		Email:    dto.Email,
		Password: dto.Password,
		Role:     string(user.RoleUser),
	})
}

func (s *Service) Login(ctx context.Context, dto LoginDTO) (LoginResponse, error) {
	if dto.Email == "" {
		return LoginResponse{Message: MsgEmailEmpty}, nil
	}
	if dto.Password == "" {
		return LoginResponse{Message: MsgPasswordEmpty}, nil
	}

	u, err := s.users.GetByEmail(ctx, dto.Email)
	if err != nil {
		return LoginResponse{}, fmt.Errorf("failed to look up user: %w", err)
	}
	if u == nil {
		return LoginResponse{Message: MsgUserNotFound}, nil
	}
	if !user.VerifyPassword(u.PasswordHash, dto.Password) {
		s.logger.Warn("login rejected: wrong password", "user_id", u.ID)
		return LoginResponse{Message: MsgWrongPassword}, nil
	}
	if !u.IsVerified {
		return LoginResponse{Message: MsgUserNotVerified}, nil
	}

	s.logger.Info("user logged in", "user_id", u.ID)
	return LoginResponse{Success: true, Message: MsgUserLoggedIn, Session: NewSession(u)}, nil
}

func (s *Service) IssueToken(session *Session) (AuthTokens, error) {
	if s.tokens == nil {
		return AuthTokens{}, errors.New("token generator is not configured")
	}
	return s.tokens.GenerateAccessToken(session)
}

// Authenticate turns an access token back into a session, reloading the
// user so that deletions and role changes take effect immediately.
func (s *Service) Authenticate(ctx context.Context, token string) (*Session, error) {
	if s.tokens == nil {
		return nil, ErrInvalidToken
	}
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return nil, err
	}

	u, err := s.users.GetByIDUncached(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if u == nil {
		return nil, ErrInvalidToken
	}
	if !u.IsVerified {
		return nil, ErrUserNotVerified
	}

	session := NewSession(u)
	if claims.IssuedAt != nil {
		session.IssuedAt = claims.IssuedAt.Time
	}
	return session, nil
}
