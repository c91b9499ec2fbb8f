package httpapi

import (
	"context"
	"strconv"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dukaan/backend/internal/domain"
	"dukaan/backend/internal/service"
)

type authenticatorStub struct {
	user *domain.User
	err  error
}

func (s authenticatorStub) Authenticate(_ context.Context, _ string, _ string) (*domain.User, error) {
	return s.user, s.err
}

func (s authenticatorStub) SessionActor(_ context.Context, userID int64) (domain.Actor, error) {
	if s.err != nil {
		return domain.Actor{}, s.err
	}
	if s.user == nil || s.user.ID != userID {
		return domain.Actor{}, service.ErrUnauthorized
	}
	if !s.user.IsActive {
		return domain.Actor{}, service.ErrInactiveAccount
	}
	return domain.Actor{UserID: s.user.ID, Username: s.user.Username, Role: s.user.Role, BranchID: s.user.BranchID}, nil
}

func TestAuthManagerLoginIssuesParsableToken(t *testing.T) {
	branchID := int64(3)
	user := &domain.User{ID: 42, Username: "ayesha", Role: domain.RoleCashier, BranchID: &branchID}
	auth := NewAuthManager(testSecret, time.Hour, authenticatorStub{user: user})

	resp, err := auth.Login(context.Background(), domain.LoginRequest{Username: "ayesha", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, int64(42), resp.UserID)
	assert.Equal(t, domain.RoleCashier, resp.Role)
	assert.Equal(t, &branchID, resp.BranchID)

	actor, err := auth.ParseToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, domain.Actor{UserID: 42, Username: "ayesha", Role: domain.RoleCashier, BranchID: &branchID}, actor)
}

func TestAuthManagerLoginPassesThroughCredentialErrors(t *testing.T) {
	auth := NewAuthManager(testSecret, time.Hour, authenticatorStub{err: service.ErrInvalidCredentials})

	_, err := auth.Login(context.Background(), domain.LoginRequest{Username: "x", Password: "y"})
	require.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestParseTokenRejectsBadTokens(t *testing.T) {
	auth := NewAuthManager(testSecret, time.Hour, authenticatorStub{})
	now := time.Now().UTC()

	signed := func(secret string, method jwtlib.SigningMethod, claims accessClaims) string {
		token, err := jwtlib.NewWithClaims(method, claims).SignedString([]byte(secret))
		require.NoError(t, err)
		return token
	}
	valid := func() accessClaims {
		return accessClaims{
			RegisteredClaims: jwtlib.RegisteredClaims{
				Subject:   strconv.Itoa(7),
				Issuer:    tokenIssuer,
				IssuedAt:  jwtlib.NewNumericDate(now),
				ExpiresAt: jwtlib.NewNumericDate(now.Add(time.Hour)),
			},
			Username: "manager",
			Role:     domain.RoleManager,
		}
	}

	expired := valid()
	expired.ExpiresAt = jwtlib.NewNumericDate(now.Add(-time.Minute))
	wrongIssuer := valid()
	wrongIssuer.Issuer = "someone-else"
	badSubject := valid()
	badSubject.Subject = "abc"
	badRole := valid()
	badRole.Role = domain.Role("owner")

	cases := map[string]string{
		"garbage":      "not-a-token",
		"wrong secret": signed("another-secret-key-that-is-long-enough", jwtlib.SigningMethodHS256, valid()),
		"wrong method": signed(testSecret, jwtlib.SigningMethodHS512, valid()),
		"expired":      signed(testSecret, jwtlib.SigningMethodHS256, expired),
		"wrong issuer": signed(testSecret, jwtlib.SigningMethodHS256, wrongIssuer),
		"bad subject":  signed(testSecret, jwtlib.SigningMethodHS256, badSubject),
		"unknown role": signed(testSecret, jwtlib.SigningMethodHS256, badRole),
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := auth.ParseToken(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}

	actor, err := auth.ParseToken(signed(testSecret, jwtlib.SigningMethodHS256, valid()))
	require.NoError(t, err)
	assert.Equal(t, int64(7), actor.UserID)
	assert.Nil(t, actor.BranchID)
}

func TestNewAuthManagerDefaultsTTL(t *testing.T) {
	auth := NewAuthManager(testSecret, 0, authenticatorStub{})
	assert.Equal(t, 8*time.Hour, auth.tokenTTL)
}

func TestSessionUsesStoredUserOverClaims(t *testing.T) {
	branchID := int64(3)
	user := &domain.User{ID: 42, Username: "ayesha", Role: domain.RoleCashier, BranchID: &branchID, IsActive: true}
	issuer := NewAuthManager(testSecret, time.Hour, authenticatorStub{user: user})
	resp, err := issuer.Login(context.Background(), domain.LoginRequest{Username: "ayesha", Password: "secret1"})
	require.NoError(t, err)

	promoted := *user
	promoted.Role = domain.RoleManager
	actor, err := NewAuthManager(testSecret, time.Hour, authenticatorStub{user: &promoted}).Session(context.Background(), resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleManager, actor.Role)

	disabled := *user
	disabled.IsActive = false
	_, err = NewAuthManager(testSecret, time.Hour, authenticatorStub{user: &disabled}).Session(context.Background(), resp.AccessToken)
	require.ErrorIs(t, err, service.ErrInactiveAccount)

	_, err = issuer.Session(context.Background(), "not-a-token")
	require.ErrorIs(t, err, ErrInvalidToken)
}
