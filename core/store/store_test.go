package store_test

import (
	"errors"
	"testing"

	"catalog-sync/core/store"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	for _, k := range store.Kinds {
		got, err := store.ParseKind(string(k))
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}

	_, err := store.ParseKind("tractor")
	assert.True(t, errors.Is(err, store.ErrUnknownKind))
}

func TestNew(t *testing.T) {
	for _, k := range store.Kinds {
		e, err := store.New(k)
		require.NoError(t, err)
		assert.Equal(t, k, e.Kind())
		assert.Equal(t, uuid.Nil, e.LocalID())

		id := uuid.New()
		e.SetLocalID(id)
		assert.Equal(t, id, e.LocalID())
	}

	_, err := store.New("tractor")
	assert.Error(t, err)
}
