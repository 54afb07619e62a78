package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrentUsername(t *testing.T) {
	t.Run("should return username stored in context", func(t *testing.T) {
		ctx := WithUser(context.Background(), User{Username: "an"})

		username, err := CurrentUsername(ctx)

		require.NoError(t, err)
		assert.Equal(t, "an", username)
	})

	t.Run("should fail without user", func(t *testing.T) {
		_, err := CurrentUsername(context.Background())

		assert.ErrorIs(t, err, ErrNoUser)
	})

	t.Run("should treat empty username as missing", func(t *testing.T) {
		_, err := CurrentUser(WithUser(context.Background(), User{}))

		assert.ErrorIs(t, err, ErrNoUser)
	})
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "an", Normalize("  an \t"))
	assert.Equal(t, "", Normalize("   "))
}
