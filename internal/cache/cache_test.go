package cache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestCache(t *testing.T, ttl time.Duration) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "cache.db"), ttl)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestCachePutGet(t *testing.T) {
	c := openTestCache(t, time.Hour)

	_, ok := c.Get("text", "code")
	assert.False(t, ok)

	c.Put("text", "code", []byte(`{"concepts":[]}`))

	payload, ok := c.Get("text", "code")
	require.True(t, ok)
	assert.Equal(t, `{"concepts":[]}`, string(payload))

	// A different text/code pair is a different key.
	_, ok = c.Get("text", "other code")
	assert.False(t, ok)
}

func TestCachePutReplaces(t *testing.T) {
	c := openTestCache(t, time.Hour)

	c.Put("t", "c", []byte("one"))
	c.Put("t", "c", []byte("two"))

	payload, ok := c.Get("t", "c")
	require.True(t, ok)
	assert.Equal(t, "two", string(payload))
}

func TestCacheTTLExpiry(t *testing.T) {
	c := openTestCache(t, time.Hour)

	c.Put("t", "c", []byte("payload"))

	// Move the clock past the TTL; the entry becomes a miss and is purged.
	c.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	_, ok := c.Get("t", "c")
	assert.False(t, ok)

	stats, err := c.Stats()
	require.NoError(t, err)
	assert.Zero(t, stats.TotalEntries)
}

func TestCacheZeroTTLNeverExpires(t *testing.T) {
	c := openTestCache(t, 0)

	c.Put("t", "c", []byte("payload"))
	c.now = func() time.Time { return time.Now().Add(1000 * time.Hour) }

	_, ok := c.Get("t", "c")
	assert.True(t, ok)
}

func TestCacheClearAndStats(t *testing.T) {
	c := openTestCache(t, time.Hour)

	c.Put("a", "1", []byte("x"))
	c.Put("b", "2", []byte("y"))

	stats, err := c.Stats()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalEntries)
	assert.Equal(t, 2, stats.ValidEntries)
	assert.Zero(t, stats.ExpiredEntries)

	require.NoError(t, c.Clear())
	stats, err = c.Stats()
	require.NoError(t, err)
	assert.Zero(t, stats.TotalEntries)
}

func TestCacheInMemory(t *testing.T) {
	c, err := Open(":memory:", time.Hour)
	require.NoError(t, err)
	defer c.Close()

	c.Put("t", "c", []byte("payload"))
	_, ok := c.Get("t", "c")
	assert.True(t, ok)
}

func TestCacheKeyIncorporatesBothParts(t *testing.T) {
	assert.NotEqual(t, key("ab", "c"), key("a", "bc"))
	assert.Equal(t, key("a", "b"), key("a", "b"))
}
