package user

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	errors "github.com/frahmantamala/store-management/internal"
	"github.com/frahmantamala/store-management/internal/core/common/validation"
	"github.com/frahmantamala/store-management/internal/core/events"
)

const (
	MinPasswordLength = 8
	// MaxPasswordLength is the most bytes bcrypt will hash.
	MaxPasswordLength = 72
)

var emailPattern = regexp.MustCompile(`^[\w.-]+@([\w-]+\.)+[\w-]{2,4}$`)

type Service struct {
	repo       RepositoryAPI
	bcryptCost int
	events     *events.EventBus
	logger     *slog.Logger
}

func NewService(repo RepositoryAPI, bcryptCost int, bus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		bcryptCost: bcryptCost,
		events:     bus,
		logger:     logger,
	}
}

// ValidateCredentials checks an email/password pair and returns the message
// of the first failed rule, or "" when both are acceptable.
func ValidateCredentials(email, password string) string {
	v := validation.NewValidator()
	v.Field("email").Required(email, MsgEmailEmpty, errors.ErrCodeInvalidEmail)
	v.Field("password").Required(password, MsgPasswordEmpty, errors.ErrCodeInvalidPassword)
	v.Field("email").Matches(email, emailPattern, MsgEmailInvalid, errors.ErrCodeInvalidEmail)
	v.Field("password").MinLength(password, MinPasswordLength, MsgPasswordTooShort, errors.ErrCodeInvalidPassword)
	v.Field("password").MaxLength(password, MaxPasswordLength, MsgPasswordTooLong, errors.ErrCodeInvalidPassword)
	if err := v.Validate(); err != nil {
		return err.Message
	}
	return ""
}

func (s *Service) CreateUser(ctx context.Context, dto CreateUserDTO) (Response, error) {
	if msg := ValidateCredentials(dto.Email, dto.Password); msg != "" {
		return fail(msg), nil
	}

	role := RoleUser
	if dto.Role != "" {
		parsed, valid := ParseRole(dto.Role)
		if !valid {
			return fail(MsgInvalidRole), nil
		}
		role = parsed
	}

	existing, err := s.repo.GetByEmail(ctx, dto.Email)
	if err != nil {
		return Response{}, fmt.Errorf("failed to look up user: %w", err)
	}
	if existing != nil {
		return fail(MsgUserExists), nil
	}

	hash, err := HashPassword(dto.Password, s.bcryptCost)
	if err != nil {
		return Response{}, fmt.Errorf("failed to hash password: %w", err)
	}

	created, err := s.repo.Create(ctx, New(dto.Email, hash, role))
	if err != nil {
		return Response{}, fmt.Errorf("failed to create user: %w", err)
	}
	if created == nil {
		return Response{}, fmt.Errorf("user %s missing after insert", dto.Email)
	}

	s.logger.Info("user created", "user_id", created.ID, "role", created.Role)
	s.events.Publish(ctx, events.NewUserCreatedEvent(created.Email, string(created.Role)))
	return ok(MsgUserCreated), nil
}

// EditUser replaces email, password and role of u. The verified flag is kept.
func (s *Service) EditUser(ctx context.Context, u *User, dto EditUserDTO) (Response, error) {
	if msg := ValidateCredentials(dto.Email, dto.Password); msg != "" {
		return fail(msg), nil
	}

	current, err := s.repo.GetByID(ctx, u.ID)
	if err != nil {
		return Response{}, fmt.Errorf("failed to look up user: %w", err)
	}
	if current == nil {
		return fail(MsgUserNotFound), nil
	}

	role := current.Role
	if dto.Role != "" {
		parsed, valid := ParseRole(dto.Role)
		if !valid {
			return fail(MsgInvalidRole), nil
		}
		role = parsed
	}

	other, err := s.repo.GetByEmail(ctx, dto.Email)
	if err != nil {
		return Response{}, fmt.Errorf("failed to look up user: %w", err)
	}
	if other != nil && other.ID != current.ID {
		return fail(MsgUserExists), nil
	}

	hash, err := HashPassword(dto.Password, s.bcryptCost)
	if err != nil {
		return Response{}, fmt.Errorf("failed to hash password: %w", err)
	}

	candidate := current.Clone()
	candidate.Email = dto.Email
	candidate.PasswordHash = hash
	candidate.Role = role

	if err := s.repo.Update(ctx, candidate); err != nil {
		return Response{}, fmt.Errorf("failed to update user: %w", err)
	}

	s.logger.Info("user edited", "user_id", candidate.ID)
	return ok(MsgUserEdited), nil
}

func (s *Service) DeleteUser(ctx context.Context, u *User) (Response, error) {
	current, err := s.repo.GetByID(ctx, u.ID)
	if err != nil {
		return Response{}, fmt.Errorf("failed to look up user: %w", err)
	}
	if current == nil {
		return fail(MsgUserNotFound), nil
	}

	if err := s.repo.Delete(ctx, current); err != nil {
		return Response{}, fmt.Errorf("failed to delete user: %w", err)
	}

	s.logger.Info("user deleted", "user_id", current.ID)
	s.events.Publish(ctx, events.NewUserDeletedEvent(current.ID, current.Email))
	return ok(MsgUserDeleted), nil
}

func (s *Service) VerifyUser(ctx context.Context, u *User) (Response, error) {
	current, err := s.repo.GetByID(ctx, u.ID)
	if err != nil {
		return Response{}, fmt.Errorf("failed to look up user: %w", err)
	}
	if current == nil {
		return fail(MsgUserNotFound), nil
	}

	verified := current.Clone()
	verified.IsVerified = true
	if err := s.repo.Update(ctx, verified); err != nil {
		return Response{}, fmt.Errorf("failed to verify user: %w", err)
	}

	s.events.Publish(ctx, events.NewUserVerifiedEvent(verified.ID, verified.Email))
	return ok(MsgUserVerified), nil
}

func (s *Service) GetUser(ctx context.Context, email string) (*User, error) {
	return s.repo.GetByEmail(ctx, email)
}

func (s *Service) GetUserByID(ctx context.Context, id int64) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetAllUsers(ctx context.Context) ([]*User, error) {
	return s.repo.GetAll(ctx)
}

// SearchUsers matches text as a case-insensitive substring of the email.
func (s *Service) SearchUsers(ctx context.Context, text string) ([]*User, error) {
	users, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(text)
	matched := make([]*User, 0, len(users))
	for _, u := range users {
		if strings.Contains(strings.ToLower(u.Email), needle) {
			matched = append(matched, u)
		}
	}
	return matched, nil
}
