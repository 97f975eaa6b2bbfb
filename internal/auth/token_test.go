package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gifstore/internal/access"
	"gifstore/internal/config"
)

func newIssuer(t *testing.T) *TokenIssuer {
	t.Helper()
	ti, err := NewTokenIssuer(config.AuthConfig{Key: "secret", Issuer: "gifstore", Audience: "gifstore", DurationHours: 1})
	require.NoError(t, err)
	return ti
}

func TestIssueAndParse(t *testing.T) {
	ti := newIssuer(t)
	id := access.Identity{ID: "u-1", Email: "jane@example.com", Fullname: "Jane"}

	raw, exp, err := ti.Issue(id)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	got, err := ti.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, id, *got)
}

func TestParse_Rejects(t *testing.T) {
	ti := newIssuer(t)
	raw, _, err := ti.Issue(access.Identity{ID: "u-1"})
	require.NoError(t, err)

	t.Run("garbage", func(t *testing.T) {
		_, err := ti.Parse("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong key", func(t *testing.T) {
		other, err := NewTokenIssuer(config.AuthConfig{Key: "other", Issuer: "gifstore", Audience: "gifstore", DurationHours: 1})
		require.NoError(t, err)
		_, err = other.Parse(raw)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong audience", func(t *testing.T) {
		other, err := NewTokenIssuer(config.AuthConfig{Key: "secret", Issuer: "gifstore", Audience: "elsewhere", DurationHours: 1})
		require.NoError(t, err)
		_, err = other.Parse(raw)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		late := newIssuer(t)
		late.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err := late.Parse(raw)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("none algorithm", func(t *testing.T) {
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
			"sub": "u-1",
			"exp": time.Now().Add(time.Hour).Unix(),
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = ti.Parse(unsigned)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("missing subject", func(t *testing.T) {
		noSub, _, err := ti.Issue(access.Identity{})
		require.NoError(t, err)
		_, err = ti.Parse(noSub)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestNewTokenIssuer_RequiresKey(t *testing.T) {
	_, err := NewTokenIssuer(config.AuthConfig{})
	assert.Error(t, err)
}
