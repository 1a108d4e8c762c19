package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/library-api/internal/models"
)

func TestPasswordPolicy_Validate(t *testing.T) {
	policy := PasswordPolicy{MinLength: 8}

	tests := []struct {
		name     string
		password string
		userName string
		email    string
		wantMsgs []string
	}{
		{name: "strong", password: "woeiuhtg9823y", userName: "new_author", email: "new_author@ex.com"},
		{name: "too short", password: "a1b2c3", userName: "x", email: "x@ex.com", wantMsgs: []string{"too short"}},
		{name: "common", password: "password", userName: "author", email: "author@ex.com", wantMsgs: []string{"too common"}},
		{name: "common ignores case", password: "PassWord123", userName: "zz", email: "zz@ex.com", wantMsgs: []string{"too common"}},
		{name: "numeric", password: "90817263541", userName: "x", email: "x@ex.com", wantMsgs: []string{"entirely numeric"}},
		{name: "contains user name", password: "alice-rocks-2024", userName: "Alice", email: "a@ex.com", wantMsgs: []string{"user name"}},
		{name: "contains email local part", password: "xx-writer99-xx", userName: "bob", email: "writer99@ex.com", wantMsgs: []string{"email address"}},
		{name: "too long", password: strings.Repeat("ab9", 30), userName: "x", email: "x@ex.com", wantMsgs: []string{"too long"}},
		{name: "short numeric common", password: "1234", userName: "x", email: "x@ex.com", wantMsgs: []string{"too short", "entirely numeric"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := policy.Validate(tt.password, tt.userName, tt.email)
			require.Len(t, got, len(tt.wantMsgs), "messages: %v", got)
			for i, want := range tt.wantMsgs {
				assert.Contains(t, got[i], want)
			}
		})
	}
}

func TestPasswordHasher(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	hash, err := h.Hash("woeiuhtg9823y")
	require.NoError(t, err)
	assert.NotEqual(t, "woeiuhtg9823y", hash)

	assert.True(t, h.Compare(hash, "woeiuhtg9823y"))
	assert.False(t, h.Compare(hash, "wrong-password"))
	assert.False(t, h.Compare("not-a-hash", "woeiuhtg9823y"))
}

func TestNewPasswordHasher_InvalidCost(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewPasswordHasher(0).cost)
	assert.Equal(t, bcrypt.DefaultCost, NewPasswordHasher(99).cost)
}

func TestTokenIssuer_RoundTrip(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	issuer := NewTokenIssuer("secret", time.Hour, func() time.Time { return now })

	token, expires, err := issuer.Issue(&models.Author{ID: 42, UserName: "alice"})
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), expires)

	id, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

func TestTokenIssuer_Rejects(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := now
	issuer := NewTokenIssuer("secret", time.Hour, func() time.Time { return clock })

	token, _, err := issuer.Issue(&models.Author{ID: 42, UserName: "alice"})
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		other := NewTokenIssuer("other-secret", time.Hour, func() time.Time { return now })
		_, err := other.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := issuer.Parse("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("unsigned", func(t *testing.T) {
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "42", "iss": "library-api"}).
			SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = issuer.Parse(unsigned)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		clock = now.Add(2 * time.Hour)
		defer func() { clock = now }()
		_, err := issuer.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
