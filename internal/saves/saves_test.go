// ABOUTME: Tests for saved-link dedupe and the notes file side effect
// ABOUTME: Covers idempotent adds, exact-match removal, and ordering

package saves

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dayboard/dayboard/internal/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(t *testing.T, notesPath string) *Service {
	t.Helper()
	store := storage.NewCacheAdapter(t.TempDir(), "saves", testLogger())
	s := New(store, notesPath, testLogger())
	s.now = func() time.Time { return time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC) }
	return s
}

func TestAdd_DuplicateURLIsNoOp(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, "")

	dup := s.Add(ctx, SavedItem{URL: "https://x.com/a", Title: "A"})
	assert.False(t, dup)

	dup = s.Add(ctx, SavedItem{URL: "https://x.com/a", Title: "A again"})
	assert.True(t, dup, "second save of the same url must report duplicate")

	items := s.List(ctx)
	require.Len(t, items, 1)
	assert.Equal(t, "A", items[0].Title, "duplicate save must not replace the original")
}

func TestAdd_URLIdentityIsCaseSensitive(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, "")

	assert.False(t, s.Add(ctx, SavedItem{URL: "https://x.com/A", Title: "upper"}))
	assert.False(t, s.Add(ctx, SavedItem{URL: "https://x.com/a", Title: "lower"}))

	assert.Len(t, s.List(ctx), 2)
}

func TestAdd_AssignsIDAndTimestamp(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, "")

	s.Add(ctx, SavedItem{URL: "https://x.com/a", Title: "A"})

	items := s.List(ctx)
	require.Len(t, items, 1)
	assert.NotEmpty(t, items[0].ID)
	assert.Equal(t, "2026-01-10T12:00:00Z", items[0].SavedAt)
}

func TestList_PreservesInsertionOrder(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, "")

	for _, url := range []string{"https://a", "https://b", "https://c"} {
		s.Add(ctx, SavedItem{URL: url, Title: url})
	}

	items := s.List(ctx)
	require.Len(t, items, 3)
	assert.Equal(t, "https://a", items[0].URL)
	assert.Equal(t, "https://b", items[1].URL)
	assert.Equal(t, "https://c", items[2].URL)
}

func TestRemove_ExactMatchOnly(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, "")

	s.Add(ctx, SavedItem{URL: "https://x.com/a", Title: "A"})
	s.Add(ctx, SavedItem{URL: "https://x.com/ab", Title: "AB"})

	assert.False(t, s.Remove(ctx, "https://x.com/"), "prefix must not match")
	assert.True(t, s.Remove(ctx, "https://x.com/a"))

	items := s.List(ctx)
	require.Len(t, items, 1)
	assert.Equal(t, "https://x.com/ab", items[0].URL)
}

func TestNotesFileSideEffects(t *testing.T) {
	ctx := context.Background()
	notesPath := filepath.Join(t.TempDir(), "links.md")
	s := newTestService(t, notesPath)

	s.Add(ctx, SavedItem{URL: "https://x.com/a", Title: "Article A"})
	s.Add(ctx, SavedItem{URL: "https://x.com/b", Title: "Article B"})
	s.Flush()

	data, err := os.ReadFile(notesPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[Article A](https://x.com/a)")
	assert.Contains(t, string(data), "[Article B](https://x.com/b)")

	s.Remove(ctx, "https://x.com/a")
	s.Flush()

	data, err = os.ReadFile(notesPath)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "https://x.com/a")
	assert.Contains(t, string(data), "https://x.com/b")
}

func TestNotesFileFailureIsInvisible(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, "/proc/not/writable/links.md")

	// The add itself must succeed even though the notes write cannot
	dup := s.Add(ctx, SavedItem{URL: "https://x.com/a", Title: "A"})
	s.Flush()

	assert.False(t, dup)
	assert.Len(t, s.List(ctx), 1)
}
