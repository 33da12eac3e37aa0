package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lalith-99/campuslink/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssuer_RoundTrip(t *testing.T) {
	issuer := NewIssuer("secret", time.Hour)
	studentID := uuid.New()

	token, issued, err := issuer.Issue(studentID, "ada@campus.edu")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, studentID, got.StudentID)
	assert.Equal(t, "ada@campus.edu", got.Email)
	assert.Equal(t, issued.TokenID, got.TokenID)
	assert.True(t, issued.ExpiresAt.Equal(got.ExpiresAt))
}

func TestIssuer_UniqueTokenIDs(t *testing.T) {
	issuer := NewIssuer("secret", time.Hour)
	id := uuid.New()

	_, a, err := issuer.Issue(id, "a@campus.edu")
	require.NoError(t, err)
	_, b, err := issuer.Issue(id, "a@campus.edu")
	require.NoError(t, err)
	assert.NotEqual(t, a.TokenID, b.TokenID)
}

func TestIssuer_RejectsWrongSecret(t *testing.T) {
	token, _, err := NewIssuer("secret", time.Hour).Issue(uuid.New(), "a@campus.edu")
	require.NoError(t, err)

	_, err = NewIssuer("other", time.Hour).Parse(token)
	assert.Error(t, err)
}

func TestIssuer_RejectsExpired(t *testing.T) {
	issuer := NewIssuer("secret", time.Minute)
	issuer.now = func() time.Time { return time.Now().Add(-time.Hour) }
	token, _, err := issuer.Issue(uuid.New(), "a@campus.edu")
	require.NoError(t, err)

	_, err = NewIssuer("secret", time.Minute).Parse(token)
	assert.Error(t, err)
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)

	ok, err := CheckPassword(hash, "hunter22")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = CheckPassword(hash, "hunter23")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = CheckPassword("not-a-hash", "x")
	assert.Error(t, err)
}

func TestError_Kinds(t *testing.T) {
	tests := []struct {
		code string
		kind error
	}{
		{CodeWeakPassword, apperr.ErrValidation},
		{CodeInvalidCollegeID, apperr.ErrValidation},
		{CodeEmailAlreadyInUse, apperr.ErrConflict},
		{CodeInvalidCredential, apperr.ErrUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := Error(tt.code)
			assert.True(t, errors.Is(err, tt.kind))
			assert.Equal(t, tt.code, err.Code)
		})
	}
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "Incorrect email or password. Please try again.", Message(CodeWrongPassword, ""))
	assert.Equal(t, "fallback", Message("auth/something-else", "fallback"))
}
