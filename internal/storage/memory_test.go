package storage

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemStore_PutURLDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemStore()

	data := []byte("payload")
	require.NoError(t, m.Put(ctx, "list/spot/a.jpg", bytes.NewReader(data), int64(len(data)), "image/jpeg"))

	url, err := m.PublicURL(ctx, "list/spot/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, "mem://list/spot/a.jpg", url)

	got, ok := m.Object("list/spot/a.jpg")
	require.True(t, ok)
	assert.Equal(t, data, got)

	require.NoError(t, m.Delete(ctx, "list/spot/a.jpg", "missing-key"))
	assert.Equal(t, 0, m.Len())

	_, err = m.PublicURL(ctx, "list/spot/a.jpg")
	assert.Error(t, err)
}

func TestMemStore_SizeMismatch(t *testing.T) {
	m := NewMemStore()
	err := m.Put(context.Background(), "k", bytes.NewReader([]byte("abc")), 99, "image/png")
	assert.Error(t, err)
}
