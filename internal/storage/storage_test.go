package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicURL(t *testing.T) {
	cases := []struct {
		pattern, key, want string
	}{
		{"https://cdn.flatfly.cz/%s", "listings/1/a.jpg", "https://cdn.flatfly.cz/listings/1/a.jpg"},
		{"https://cdn.flatfly.cz/", "/avatars/2/b.png", "https://cdn.flatfly.cz/avatars/2/b.png"},
		{"https://cdn.flatfly.cz", "articles/my photo.jpg", "https://cdn.flatfly.cz/articles/my%20photo.jpg"},
		{"https://cdn.flatfly.cz/%s", "", ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, PublicURL(c.pattern, c.key), c.key)
	}
}

func TestMemoryStore(t *testing.T) {
	m := NewMemory("https://cdn.test/%s")
	ctx := context.Background()

	require.NoError(t, m.Put(ctx, "listings/1/x.jpg", []byte("data"), "image/jpeg"))
	obj, ok := m.Get("listings/1/x.jpg")
	require.True(t, ok)
	assert.Equal(t, "image/jpeg", obj.ContentType)
	assert.Equal(t, []byte("data"), obj.Body)
	assert.Equal(t, "https://cdn.test/listings/1/x.jpg", m.URL("listings/1/x.jpg"))

	require.NoError(t, m.Delete(ctx, "listings/1/x.jpg"))
	_, ok = m.Get("listings/1/x.jpg")
	assert.False(t, ok)
	assert.Empty(t, m.Keys())
}
