package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskweave/taskweave/engine/core"
)

func TestID_String(t *testing.T) {
	t.Run("Should return string representation of ID", func(t *testing.T) {
		id := core.ID("test-id-123")
		assert.Equal(t, "test-id-123", id.String())
	})
}

func TestID_IsZero(t *testing.T) {
	t.Run("Should return true for zero-value ID", func(t *testing.T) {
		var zeroID core.ID
		assert.True(t, zeroID.IsZero())
	})
	t.Run("Should return false for non-zero ID", func(t *testing.T) {
		id := core.MustNewID()
		assert.False(t, id.IsZero())
	})
}

func TestNewID(t *testing.T) {
	t.Run("Should generate a new unique ID", func(t *testing.T) {
		id1, err := core.NewID()
		require.NoError(t, err)
		assert.False(t, id1.IsZero())
		id2, err := core.NewID()
		require.NoError(t, err)
		assert.NotEqual(t, id1, id2, "IDs should be unique")
	})
	t.Run("Should generate a parseable ID", func(t *testing.T) {
		id, err := core.NewID()
		require.NoError(t, err)
		parsed, err := core.ParseID(id.String())
		require.NoError(t, err)
		assert.Equal(t, id, parsed)
	})
}

func TestParseID(t *testing.T) {
	t.Run("Should reject empty string", func(t *testing.T) {
		_, err := core.ParseID("")
		assert.Error(t, err)
	})
	t.Run("Should reject malformed ID", func(t *testing.T) {
		_, err := core.ParseID("not-a-uuid")
		assert.Error(t, err)
	})
}
