package operator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/mediops/pkg/auth"
)

func newService(t *testing.T) (*Service, *MemoryRepository) {
	t.Helper()
	repo := NewMemoryRepository()
	svc := NewService(repo, auth.NewTokenManager("test-secret", time.Hour))
	require.NoError(t, svc.EnsureOperator(context.Background(), "admin", "s3cret"))
	return svc, repo
}

func TestLoginAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	session, err := svc.Login(ctx, "admin", "s3cret")
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, "admin", session.Operator.Username)
	assert.Equal(t, RoleAdmin, session.Operator.Role)

	op, err := svc.Authenticate(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.Operator, op)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	_, err := svc.Login(ctx, "admin", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody", "s3cret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginRejectsInactiveOperator(t *testing.T) {
	ctx := context.Background()
	svc, repo := newService(t)

	hash, err := auth.HashPassword("pw")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, &Operator{Username: "former", PasswordHash: hash, Role: RolePharmacist}))

	_, err = svc.Login(ctx, "former", "pw")
	assert.ErrorIs(t, err, ErrInactive)
}

func TestAuthenticateRejectsGarbage(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Authenticate(context.Background(), "")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = svc.Authenticate(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestEnsureOperatorIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, repo := newService(t)

	require.NoError(t, svc.EnsureOperator(ctx, "admin", "other"))

	_, err := svc.Login(ctx, "admin", "s3cret")
	assert.NoError(t, err)
	assert.Len(t, repo.byID, 1)
}

func TestContextWithOperator(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	ctx := ContextWithOperator(context.Background(), Demo)
	op, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "demo_user", op.Username)
}
