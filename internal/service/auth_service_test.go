package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/crata-labs/crata-api/internal/models"
	appErrors "github.com/crata-labs/crata-api/pkg/errors"
)

type mockUserRepo struct {
	user          *models.User
	findErr       error
	lastLoginID   string
	lastLoginErr  error
	lastLoginSets int
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.user, nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.user, nil
}

func (m *mockUserRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	m.lastLoginSets++
	m.lastLoginID = id
	return m.lastLoginErr
}

func testAuthConfig() AuthConfig {
	return AuthConfig{
		AccessTokenSecret: "test-secret",
		AccessTokenExpiry: time.Hour,
		Issuer:            "crata-api-test",
	}
}

func activeUser(t *testing.T, password string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &models.User{
		ID:           "u-1",
		Email:        "admin@example.com",
		PasswordHash: string(hash),
		Name:         "Admin",
		Role:         models.RoleAdmin,
		Active:       true,
	}
}

func TestLoginSuccess(t *testing.T) {
	repo := &mockUserRepo{user: activeUser(t, "s3cret")}
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	resp, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "admin@example.com",
		Password: "s3cret",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "u-1", resp.User.ID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), resp.ExpiresAt, 5*time.Second)
	assert.Equal(t, "u-1", repo.lastLoginID)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.Equal(t, "crata-api-test", claims.Issuer)
}

func TestLoginInvalidPayload(t *testing.T) {
	svc := NewAuthService(&mockUserRepo{}, nil, nil, testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "not-an-email"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc := NewAuthService(&mockUserRepo{findErr: sql.ErrNoRows}, nil, nil, testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLoginWrongPassword(t *testing.T) {
	repo := &mockUserRepo{user: activeUser(t, "s3cret")}
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "admin@example.com",
		Password: "wrong",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
	assert.Zero(t, repo.lastLoginSets)
}

func TestLoginInactiveAccount(t *testing.T) {
	user := activeUser(t, "s3cret")
	user.Active = false
	svc := NewAuthService(&mockUserRepo{user: user}, nil, nil, testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "admin@example.com",
		Password: "s3cret",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestLoginSurvivesLastLoginFailure(t *testing.T) {
	repo := &mockUserRepo{user: activeUser(t, "s3cret"), lastLoginErr: sql.ErrConnDone}
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	resp, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "admin@example.com",
		Password: "s3cret",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc := NewAuthService(&mockUserRepo{}, nil, nil, testAuthConfig())

	_, err := svc.ValidateToken("not.a.token")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	issuing := NewAuthService(&mockUserRepo{user: activeUser(t, "s3cret")}, nil, nil, testAuthConfig())
	resp, err := issuing.Login(context.Background(), models.LoginRequest{
		Email:    "admin@example.com",
		Password: "s3cret",
	})
	require.NoError(t, err)

	other := testAuthConfig()
	other.AccessTokenSecret = "different"
	verifying := NewAuthService(&mockUserRepo{}, nil, nil, other)

	_, err = verifying.ValidateToken(resp.AccessToken)
	require.Error(t, err)
}
