package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"blogfolio/internal/model"
	"blogfolio/internal/pkg/jwtutil"
	"blogfolio/internal/repository"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrEmailExists       = errors.New("email already registered")
	ErrInvalidCredential = errors.New("invalid email or password")
	ErrUserNotFound      = errors.New("user not found")
)

const defaultFullName = "New User"

// AuditPublisher hands audit events to the queue; the worker persists them.
type AuditPublisher interface {
	Publish(ctx context.Context, event model.AuditEvent) error
}

type AuthService struct {
	userRepo  *repository.UserRepository
	tokens    jwtutil.Config
	publisher AuditPublisher
	logger    *zap.Logger
}

type RegisterInput struct {
	Email    string
	Password string
	FullName string
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      *model.User
}

func NewAuthService(userRepo *repository.UserRepository, tokens jwtutil.Config, publisher AuditPublisher, logger *zap.Logger) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		tokens:    tokens,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	password := input.Password
	fullName := strings.TrimSpace(input.FullName)

	if email == "" || len(password) < 6 {
		return nil, ErrInvalidInput
	}
	if fullName == "" {
		fullName = defaultFullName
	}

	existing, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password failed: %w", err)
	}

	user := &model.User{
		Email:        email,
		PasswordHash: string(hash),
		FullName:     fullName,
	}
	if err := s.userRepo.Create(user); err != nil {
		// Two concurrent registrations can both pass the pre-check; the
		// unique index on email settles it.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailExists
		}
		return nil, err
	}

	s.audit(ctx, model.AuditEvent{
		Action: model.AuditUserRegistered,
		UserID: user.ID,
		Email:  user.Email,
	})

	return s.issueToken(user)
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	password := input.Password
	if email == "" || password == "" {
		return nil, ErrInvalidInput
	}

	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		s.audit(ctx, model.AuditEvent{
			Action: model.AuditLoginFailed,
			Email:  email,
			Detail: "unknown email",
		})
		return nil, ErrInvalidCredential
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		// Record the failed attempt; the account is never locked out.
		s.audit(ctx, model.AuditEvent{
			Action: model.AuditLoginFailed,
			UserID: user.ID,
			Email:  email,
			Detail: "password mismatch",
		})
		return nil, ErrInvalidCredential
	}

	return s.issueToken(user)
}

func (s *AuthService) GetUserByID(id string) (*model.User, error) {
	if id == "" {
		return nil, ErrInvalidInput
	}
	return s.userRepo.GetByID(id)
}

func (s *AuthService) issueToken(user *model.User) (*AuthResult, error) {
	token, expiresAt, err := jwtutil.Generate(s.tokens, user.ID, user.Email, user.FullName)
	if err != nil {
		return nil, fmt.Errorf("sign token failed: %w", err)
	}
	return &AuthResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

func (s *AuthService) audit(ctx context.Context, event model.AuditEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil && s.logger != nil {
		s.logger.Warn("publish audit event failed",
			zap.String("action", event.Action),
			zap.Error(err),
		)
	}
}
