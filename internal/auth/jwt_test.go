package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/rogerio-castellano/stock-ledger/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSession() models.Session {
	return models.Session{
		Token: "remote-token",
		User:  models.User{ID: "7", Name: "Ada", Email: "ada@example.com", Role: models.RoleAdmin},
	}
}

func TestTokenIssuer(t *testing.T) {
	t.Run("Success - round trip", func(t *testing.T) {
		issuer := NewTokenIssuer("secret", "stock-ledger", time.Hour)

		token, expires, err := issuer.Issue(testSession())
		require.NoError(t, err)

		claims, err := issuer.Parse(token)
		require.NoError(t, err)
		assert.Equal(t, "7", claims.Subject)
		assert.Equal(t, "remote-token", claims.RemoteToken)
		assert.True(t, claims.IsAdmin())
		assert.NotEmpty(t, claims.ID)
		assert.WithinDuration(t, expires, claims.ExpiresAt.Time, time.Second)
	})

	t.Run("Fail - wrong secret", func(t *testing.T) {
		token, _, err := NewTokenIssuer("secret", "stock-ledger", time.Hour).Issue(testSession())
		require.NoError(t, err)

		_, err = NewTokenIssuer("other", "stock-ledger", time.Hour).Parse(token)

		assert.True(t, errors.Is(err, ErrInvalidToken))
	})

	t.Run("Fail - expired", func(t *testing.T) {
		issuer := NewTokenIssuer("secret", "stock-ledger", time.Minute)
		issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		token, _, err := issuer.Issue(testSession())
		require.NoError(t, err)
		issuer.now = time.Now

		_, err = issuer.Parse(token)

		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Fail - foreign issuer", func(t *testing.T) {
		token, _, err := NewTokenIssuer("secret", "someone-else", time.Hour).Issue(testSession())
		require.NoError(t, err)

		_, err = NewTokenIssuer("secret", "stock-ledger", time.Hour).Parse(token)

		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
