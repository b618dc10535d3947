package auth

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clientdesk/internal/model"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret")
	user := &model.User{ID: 7, Email: "m@example.com", Role: model.RoleSuperManager}

	access, err := svc.GenerateAccessToken(user)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(access)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, model.RoleSuperManager, claims.Role)
	assert.Empty(t, claims.ID)

	tokenID, refresh, err := svc.GenerateRefreshToken(user)
	require.NoError(t, err)
	extracted, err := svc.ExtractTokenID(refresh)
	require.NoError(t, err)
	assert.Equal(t, tokenID, extracted)

	_, err = svc.ExtractTokenID(access)
	assert.Error(t, err, "access tokens carry no token id")
}

func TestJWTService_RejectsForeignTokens(t *testing.T) {
	svc := NewJWTService("test-secret")
	other := NewJWTService("other-secret")

	token, err := other.GenerateAccessToken(&model.User{ID: 1, Role: model.RoleAdmin})
	require.NoError(t, err)
	_, err = svc.ValidateToken(token)
	assert.Error(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: 1}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.ValidateToken(unsigned)
	assert.Error(t, err)

	_, err = svc.ValidateToken("not-a-token")
	assert.Error(t, err)
}
