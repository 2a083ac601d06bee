package cache

import (
	"fmt"
	"testing"
	"time"

	"jobsearch-engine/internal/domain"
	"jobsearch-engine/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jobsNamed(titles ...string) []domain.Job {
	out := make([]domain.Job, 0, len(titles))
	for _, t := range titles {
		out = append(out, domain.Job{ID: "id-" + t, Title: t, Company: "Acme"})
	}
	return out
}

func newClock(start time.Time) (*time.Time, func() time.Time) {
	cur := start
	return &cur, func() time.Time { return cur }
}

func TestGetMissAndHit(t *testing.T) {
	c := New(storage.NewMemory(), time.Hour, 10)

	_, ok := c.Get("nope")
	assert.False(t, ok)

	c.Put("golang|austin||", jobsNamed("Backend Engineer"))
	got, ok := c.Get("golang|austin||")
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "Backend Engineer", got[0].Title)
}

func TestTTLBoundary(t *testing.T) {
	c := New(storage.NewMemory(), 24*time.Hour, 10)
	clock, now := newClock(time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC))
	c.now = now

	c.Put("k", jobsNamed("A"))

	*clock = clock.Add(24*time.Hour - time.Second)
	_, ok := c.Get("k")
	assert.True(t, ok, "one second before expiry must still hit")

	*clock = clock.Add(time.Second)
	_, ok = c.Get("k")
	assert.False(t, ok, "exactly at the TTL the entry is expired")

	// lazy expiry removed it; still gone at later reads
	_, ok = c.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Stats().Entries)
}

func TestEvictsOldestBeyondBound(t *testing.T) {
	c := New(storage.NewMemory(), time.Hour, 3)
	clock, now := newClock(time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC))
	c.now = now

	for i := 1; i <= 4; i++ {
		c.Put(fmt.Sprintf("k%d", i), jobsNamed("A"))
		*clock = clock.Add(time.Minute)
	}

	_, ok := c.Get("k1")
	assert.False(t, ok, "oldest entry must be evicted")
	for i := 2; i <= 4; i++ {
		_, ok := c.Get(fmt.Sprintf("k%d", i))
		assert.True(t, ok, "k%d should survive", i)
	}
	assert.Equal(t, 3, c.Stats().Entries)
}

func TestPutRefreshesStoredAt(t *testing.T) {
	c := New(storage.NewMemory(), time.Hour, 2)
	clock, now := newClock(time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC))
	c.now = now

	c.Put("old", jobsNamed("A"))
	*clock = clock.Add(time.Minute)
	c.Put("mid", jobsNamed("B"))
	*clock = clock.Add(time.Minute)

	// re-put makes "old" the newest entry
	c.Put("old", jobsNamed("A2"))
	*clock = clock.Add(time.Minute)
	c.Put("new", jobsNamed("C"))

	_, ok := c.Get("mid")
	assert.False(t, ok, "mid is now the oldest and should be evicted")
	got, ok := c.Get("old")
	require.True(t, ok)
	assert.Equal(t, "A2", got[0].Title)
}

func TestRestoreFromKV(t *testing.T) {
	kv := storage.NewMemory()

	first := New(kv, time.Hour, 10)
	first.Put("persisted", jobsNamed("Engineer", "Analyst"))

	second := New(kv, time.Hour, 10)
	got, ok := second.Get("persisted")
	require.True(t, ok)
	assert.Len(t, got, 2)
	assert.Equal(t, 1, second.Stats().Entries)
}

func TestClear(t *testing.T) {
	kv := storage.NewMemory()
	c := New(kv, time.Hour, 10)
	c.Put("a", jobsNamed("A"))
	c.Put("b", jobsNamed("B"))

	c.Clear()
	assert.Equal(t, 0, c.Stats().Entries)

	// the KV side is wiped too, so a restart stays empty
	again := New(kv, time.Hour, 10)
	assert.Equal(t, 0, again.Stats().Entries)
}

func TestCallersCannotMutateCachedJobs(t *testing.T) {
	c := New(storage.NewMemory(), time.Hour, 10)

	stored := jobsNamed("Backend Engineer")
	c.Put("k", stored)

	// mutating the slice handed to Put must not reach the cache
	stored[0].Title = "Mangled"
	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "Backend Engineer", got[0].Title)

	// nor does mutating what Get handed out
	got[0].Title = "Mangled"
	again, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "Backend Engineer", again[0].Title)
}

func TestStatsCountsBytes(t *testing.T) {
	c := New(storage.NewMemory(), time.Hour, 10)
	c.Put("a", jobsNamed("A"))

	st := c.Stats()
	assert.Equal(t, 1, st.Entries)
	assert.Greater(t, st.ApproxBytes, int64(0))
}
