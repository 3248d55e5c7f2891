package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "crmbridge/internal/errors"
)

func TestJWTService_IssueAndVerify(t *testing.T) {
	svc := NewJWTService("test-secret", 0)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	token, issued, err := svc.Issue(42)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.NotEmpty(t, issued.ID)
	assert.Equal(t, fixed.Add(24*time.Hour).Unix(), issued.ExpiresAt.Unix())
	assert.Equal(t, fixed.Unix(), issued.IssuedAt.Unix())
	assert.Equal(t, uint(42), issued.UserID)
}

func TestJWTService_Verify(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)
	token, issued, err := svc.Issue(7)
	require.NoError(t, err)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, issued.ID, claims.ID)

	_, other, err := svc.Issue(7)
	require.NoError(t, err)
	assert.NotEqual(t, issued.ID, other.ID, "every token gets its own id")
}

func TestJWTService_VerifyErrors(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)

	expiredSvc := NewJWTService("test-secret", time.Hour)
	expiredSvc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, _, err := expiredSvc.Issue(1)
	require.NoError(t, err)

	foreign, _, err := NewJWTService("other-secret", time.Hour).Issue(1)
	require.NoError(t, err)

	noneAlg, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, &Claims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	noUser, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	tests := []struct {
		name        string
		token       string
		expectedErr error
	}{
		{name: "empty", token: "", expectedErr: apperrors.ErrTokenMissing},
		{name: "expired", token: expired, expectedErr: apperrors.ErrTokenExpired},
		{name: "garbage", token: "not-a-jwt", expectedErr: apperrors.ErrTokenMalformed},
		{name: "wrong secret", token: foreign, expectedErr: apperrors.ErrTokenMalformed},
		{name: "alg none", token: noneAlg, expectedErr: apperrors.ErrTokenMalformed},
		{name: "other hmac algorithm", token: hs512, expectedErr: apperrors.ErrTokenMalformed},
		{name: "missing user id", token: noUser, expectedErr: apperrors.ErrTokenMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := svc.Verify(tt.token)
			assert.Nil(t, claims)
			assert.ErrorIs(t, err, tt.expectedErr)
		})
	}
}
