package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/SteamVC/realtime/internal/models"
	"github.com/SteamVC/realtime/internal/repo"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "chat.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func seed(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.EnsureChannel(ctx, "general", true))
	require.NoError(t, s.EnsureChannel(ctx, "staff", false))
	require.NoError(t, s.AddMember(ctx, "staff", "alice"))
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open(" ")
	require.Error(t, err)
}

func TestListMessages_AccessCheck(t *testing.T) {
	r := require.New(t)
	s := openTempStore(t)
	seed(t, s)
	ctx := context.Background()

	msgs, err := s.ListMessages(ctx, "bob", "general", models.Page{})
	r.NoError(err)
	r.Empty(msgs)

	_, err = s.ListMessages(ctx, "bob", "staff", models.Page{})
	r.ErrorIs(err, repo.ErrForbidden)

	_, err = s.ListMessages(ctx, "alice", "staff", models.Page{})
	r.NoError(err)

	_, err = s.ListMessages(ctx, "alice", "missing", models.Page{})
	r.ErrorIs(err, repo.ErrNotFound)
}

func TestCreateAndPageMessages(t *testing.T) {
	r := require.New(t)
	s := openTempStore(t)
	seed(t, s)
	ctx := context.Background()

	var ids []string
	for _, body := range []string{"one", "two", "three"} {
		m, err := s.CreateMessage(ctx, "bob", "general", models.NewMessage{Content: body})
		r.NoError(err)
		r.Equal("bob", m.AuthorId)
		r.False(m.CreatedAt.IsZero())
		ids = append(ids, m.MessageId)
	}

	page, err := s.ListMessages(ctx, "bob", "general", models.Page{Limit: 2})
	r.NoError(err)
	r.Len(page, 2)
	r.Equal("two", page[0].Content)
	r.Equal("three", page[1].Content)

	older, err := s.ListMessages(ctx, "bob", "general", models.Page{Before: ids[1], Limit: 10})
	r.NoError(err)
	r.Len(older, 1)
	r.Equal(ids[0], older[0].MessageId)

	_, err = s.CreateMessage(ctx, "bob", "staff", models.NewMessage{Content: "x"})
	r.ErrorIs(err, repo.ErrForbidden)
}

func TestEditDeleteRequireAuthor(t *testing.T) {
	r := require.New(t)
	s := openTempStore(t)
	seed(t, s)
	ctx := context.Background()

	m, err := s.CreateMessage(ctx, "bob", "general", models.NewMessage{Content: "draft"})
	r.NoError(err)

	_, err = s.UpdateMessage(ctx, "carol", m.MessageId, "hijack")
	r.ErrorIs(err, repo.ErrForbidden)

	edited, err := s.UpdateMessage(ctx, "bob", m.MessageId, "final")
	r.NoError(err)
	r.Equal("final", edited.Content)
	r.NotNil(edited.EditedAt)

	got, err := s.GetMessage(ctx, "carol", m.MessageId)
	r.NoError(err)
	r.Equal("final", got.Content)
	r.NotNil(got.EditedAt)

	pinned, err := s.PinMessage(ctx, "carol", m.MessageId)
	r.NoError(err)
	r.True(pinned.IsPinned)
	unpinned, err := s.UnpinMessage(ctx, "carol", m.MessageId)
	r.NoError(err)
	r.False(unpinned.IsPinned)

	deleted, err := s.DeleteMessage(ctx, "bob", m.MessageId)
	r.NoError(err)
	r.Equal("general", deleted.ChannelId)

	_, err = s.GetMessage(ctx, "bob", m.MessageId)
	r.ErrorIs(err, repo.ErrNotFound)
}

func TestReactions(t *testing.T) {
	r := require.New(t)
	s := openTempStore(t)
	seed(t, s)
	ctx := context.Background()

	m, err := s.CreateMessage(ctx, "bob", "general", models.NewMessage{Content: "hi"})
	r.NoError(err)

	first, err := s.AddReaction(ctx, "alice", m.MessageId, "👍")
	r.NoError(err)
	again, err := s.AddReaction(ctx, "alice", m.MessageId, "👍")
	r.NoError(err)
	r.Equal(first.ReactionId, again.ReactionId)

	r.NoError(s.RemoveReaction(ctx, "alice", m.MessageId, "👍"))
	r.ErrorIs(s.RemoveReaction(ctx, "alice", m.MessageId, "👍"), repo.ErrNotFound)

	_, err = s.AddReaction(ctx, "alice", "missing", "👍")
	r.ErrorIs(err, repo.ErrNotFound)
}

func TestMentionsAreStoredOncePerUser(t *testing.T) {
	r := require.New(t)
	s := openTempStore(t)
	seed(t, s)
	ctx := context.Background()

	m, err := s.CreateMessage(ctx, "bob", "general", models.NewMessage{
		Content:        "@alice @carol @alice",
		MentionUserIds: []string{"alice", "carol", "alice"},
	})
	r.NoError(err)

	mentions, err := s.MentionsForMessage(ctx, m.MessageId)
	r.NoError(err)
	r.Len(mentions, 2)
	r.Equal("alice", mentions[0].UserId)
	r.Equal("general", mentions[0].ChannelId)
	r.Equal("bob", mentions[0].AuthorId)
	r.Equal(m.Content, mentions[0].Content)

	forAlice, err := s.MentionsForUser(ctx, "alice", 10)
	r.NoError(err)
	r.Len(forAlice, 1)
	r.Equal(m.MessageId, forAlice[0].MessageId)

	none, err := s.MentionsForUser(ctx, "dave", 10)
	r.NoError(err)
	r.Empty(none)
}

func TestMentionsInPrivateChannelRequireAccess(t *testing.T) {
	r := require.New(t)
	s := openTempStore(t)
	seed(t, s)
	ctx := context.Background()
	require.NoError(t, s.AddMember(ctx, "staff", "bob"))

	m, err := s.CreateMessage(ctx, "alice", "staff", models.NewMessage{
		Content:        "@bob @mallory secret",
		MentionUserIds: []string{"bob", "mallory"},
	})
	r.NoError(err)

	mentions, err := s.MentionsForMessage(ctx, m.MessageId)
	r.NoError(err)
	r.Len(mentions, 1)
	r.Equal("bob", mentions[0].UserId)

	leaked, err := s.MentionsForUser(ctx, "mallory", 10)
	r.NoError(err)
	r.Empty(leaked)
}

func TestReadStateOnlyMovesForward(t *testing.T) {
	r := require.New(t)
	s := openTempStore(t)
	seed(t, s)
	ctx := context.Background()

	last, err := s.LastRead(ctx, "bob", "general")
	r.NoError(err)
	r.Empty(last)

	r.NoError(s.MarkRead(ctx, "bob", "general", "01B"))
	r.NoError(s.MarkRead(ctx, "bob", "general", "01A"))

	last, err = s.LastRead(ctx, "bob", "general")
	r.NoError(err)
	r.Equal("01B", last)
}
