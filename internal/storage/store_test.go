package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/tubecrier/tubecrier/internal/core/errors"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "tubecrier.db"))
	require.NoError(t, err)

	t.Cleanup(func() { _ = s.Close() })

	return s
}

func TestChannelState(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.LastVideoID(ctx, "UCnew")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	require.NoError(t, s.SetLastVideoID(ctx, "UCnew", "vid1"))

	got, err := s.LastVideoID(ctx, "UCnew")
	require.NoError(t, err)
	assert.Equal(t, "vid1", got)

	// Upsert replaces.
	require.NoError(t, s.SetLastVideoID(ctx, "UCnew", "vid2"))

	got, err = s.LastVideoID(ctx, "UCnew")
	require.NoError(t, err)
	assert.Equal(t, "vid2", got)
}

func TestAnnouncementsAndRecentMessages(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

	records := []Announcement{
		{VideoID: "v1", Platform: "mastodon", Message: "first post", Accepted: true, Attempts: 1, PostedAt: base},
		{VideoID: "v1", Platform: "discord", Message: "discord post", Accepted: true, Attempts: 2, PostedAt: base.Add(time.Minute)},
		{VideoID: "v2", Platform: "mastodon", Message: "second post", Accepted: true, Attempts: 1, PostedAt: base.Add(2 * time.Minute)},
		{VideoID: "v2", Platform: "mastodon", Message: "rejected draft", Accepted: false, Attempts: 3, PostedAt: base.Add(3 * time.Minute)},
	}

	for _, a := range records {
		require.NoError(t, s.RecordAnnouncement(ctx, a))
	}

	msgs, err := s.RecentMessages(ctx, "mastodon", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"second post", "first post"}, msgs)

	all, err := s.RecentMessages(ctx, "", 10)
	require.NoError(t, err)
	assert.Len(t, all, 3, "rejected drafts are excluded")

	limited, err := s.RecentMessages(ctx, "", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"second post"}, limited)
}

func TestPing(t *testing.T) {
	s := openTestStore(t)
	assert.NoError(t, s.Ping(context.Background()))
}
