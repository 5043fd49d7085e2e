package operator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tair/mediops/internal/schema"
	"github.com/tair/mediops/pkg/auth"
	"github.com/tair/mediops/pkg/logger"
)

// Session is an issued operator session
type Session struct {
	Token     string
	ExpiresAt time.Time
	Operator  schema.Operator
}

// Service authenticates operators and resolves sessions
type Service struct {
	repo   Repository
	tokens *auth.TokenManager
}

// NewService creates a new operator service
func NewService(repo Repository, tokens *auth.TokenManager) *Service {
	return &Service{repo: repo, tokens: tokens}
}

// TTL returns the lifetime of issued sessions
func (s *Service) TTL() time.Duration {
	return s.tokens.TTL()
}

// Login verifies credentials and issues a session token
func (s *Service) Login(ctx context.Context, username, password string) (*Session, error) {
	op, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !op.IsActive {
		return nil, ErrInactive
	}

	if !auth.CheckPassword(op.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.GenerateToken(op.ID, op.Username, op.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	logger.Info(ctx).Str("username", op.Username).Msg("Operator logged in")
	return &Session{Token: token, ExpiresAt: expiresAt, Operator: op.Public()}, nil
}

// Authenticate resolves a session token to the operator it was issued to
func (s *Service) Authenticate(ctx context.Context, token string) (schema.Operator, error) {
	if token == "" {
		return schema.Operator{}, ErrUnauthenticated
	}

	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return schema.Operator{}, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	op, err := s.repo.FindByID(ctx, claims.OperatorID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return schema.Operator{}, ErrUnauthenticated
		}
		return schema.Operator{}, err
	}
	if !op.IsActive {
		return schema.Operator{}, ErrInactive
	}
	return op.Public(), nil
}

// EnsureOperator creates the bootstrap operator when it does not exist yet
func (s *Service) EnsureOperator(ctx context.Context, username, password string) error {
	_, err := s.repo.FindByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrNotFound) {
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	op := &Operator{
		Username:     username,
		PasswordHash: hash,
		Role:         RoleAdmin,
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, op); err != nil {
		return err
	}

	logger.Info(ctx).Str("username", username).Msg("Created bootstrap operator")
	return nil
}

type operatorKey struct{}

// ContextWithOperator stores the authenticated operator in ctx
func ContextWithOperator(ctx context.Context, op schema.Operator) context.Context {
	return context.WithValue(ctx, operatorKey{}, op)
}

// FromContext returns the authenticated operator stored in ctx
func FromContext(ctx context.Context) (schema.Operator, bool) {
	op, ok := ctx.Value(operatorKey{}).(schema.Operator)
	return op, ok
}
