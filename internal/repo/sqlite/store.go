// Package sqlite is a SQLite implementation of the message, reaction,
// read-state and mention contracts. A channel is readable by its members,
// or by anyone when it is public.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	_ "modernc.org/sqlite"

	"github.com/SteamVC/realtime/internal/idgen"
	"github.com/SteamVC/realtime/internal/models"
	"github.com/SteamVC/realtime/internal/repo"
)

//go:embed schema.sql
var schema string

// Store provides SQLite-backed persistence for chat state.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

func toMillis(v time.Time) int64 { return v.UTC().UnixMilli() }

func fromMillis(v int64) time.Time { return time.UnixMilli(v).UTC() }

// Open opens the database at path and applies the schema.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// EnsureChannel creates the channel if it does not exist.
func (s *Store) EnsureChannel(ctx context.Context, channelID string, public bool) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO channels (channel_id, is_public, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(channel_id) DO UPDATE SET is_public = excluded.is_public`,
		channelID, public, toMillis(s.now()))
	if err != nil {
		return fmt.Errorf("ensure channel %s: %w", channelID, err)
	}
	return nil
}

// AddMember grants userID access to a private channel.
func (s *Store) AddMember(ctx context.Context, channelID, userID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO channel_members (channel_id, user_id) VALUES (?, ?)`,
		channelID, userID)
	if err != nil {
		return fmt.Errorf("add member %s to %s: %w", userID, channelID, err)
	}
	return nil
}

// checkAccess returns ErrNotFound for an unknown channel and ErrForbidden
// when userID may not read it.
func (s *Store) checkAccess(ctx context.Context, userID, channelID string) error {
	var public, member bool
	err := s.db.QueryRowContext(ctx,
		`SELECT c.is_public,
		        EXISTS(SELECT 1 FROM channel_members m WHERE m.channel_id = c.channel_id AND m.user_id = ?)
		 FROM channels c WHERE c.channel_id = ?`,
		userID, channelID).Scan(&public, &member)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("channel %s: %w", channelID, repo.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("check access %s: %w", channelID, err)
	}
	if !public && !member {
		return fmt.Errorf("channel %s: %w", channelID, repo.ErrForbidden)
	}
	return nil
}

const messageColumns = `message_id, channel_id, author_id, content, is_pinned, created_at, edited_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMessage(row rowScanner) (models.Message, error) {
	var (
		m       models.Message
		created int64
		edited  sql.NullInt64
	)
	if err := row.Scan(&m.MessageId, &m.ChannelId, &m.AuthorId, &m.Content, &m.IsPinned, &created, &edited); err != nil {
		return models.Message{}, err
	}
	m.CreatedAt = fromMillis(created)
	if edited.Valid {
		t := fromMillis(edited.Int64)
		m.EditedAt = &t
	}
	return m, nil
}

// ListMessages returns up to page.Limit messages older than page.Before, in
// chronological order.
func (s *Store) ListMessages(ctx context.Context, userID, channelID string, page models.Page) ([]models.Message, error) {
	if err := s.checkAccess(ctx, userID, channelID); err != nil {
		return nil, err
	}
	if page.Limit <= 0 {
		return []models.Message{}, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+messageColumns+` FROM (
		   SELECT * FROM messages
		   WHERE channel_id = ? AND (? = '' OR message_id < ?)
		   ORDER BY message_id DESC LIMIT ?
		 ) ORDER BY message_id`,
		channelID, page.Before, page.Before, page.Limit)
	if err != nil {
		return nil, fmt.Errorf("list messages %s: %w", channelID, err)
	}
	defer rows.Close()

	out := []models.Message{}
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// CreateMessage stores the message and its mention records in one
// transaction. Mentions of users without access to the channel are dropped.
func (s *Store) CreateMessage(ctx context.Context, userID, channelID string, in models.NewMessage) (models.Message, error) {
	if err := s.checkAccess(ctx, userID, channelID); err != nil {
		return models.Message{}, err
	}
	now := s.now().UTC().Truncate(time.Millisecond)
	m := models.Message{
		MessageId: idgen.NewMessageID(),
		ChannelId: channelID,
		AuthorId:  userID,
		Content:   in.Content,
		CreatedAt: now,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Message{}, fmt.Errorf("begin create message: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO messages (message_id, channel_id, author_id, content, is_pinned, created_at) VALUES (?, ?, ?, ?, 0, ?)`,
		m.MessageId, m.ChannelId, m.AuthorId, m.Content, toMillis(now)); err != nil {
		return models.Message{}, fmt.Errorf("insert message: %w", err)
	}
	// Users who cannot read the channel are not recorded as mentioned.
	mentioned := lo.Uniq(lo.Compact(in.MentionUserIds))
	for _, uid := range mentioned {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO mentions (mention_id, message_id, user_id, created_at)
			 SELECT ?, ?, ?, ? FROM channels c
			 WHERE c.channel_id = ?
			   AND (c.is_public = 1
			        OR EXISTS(SELECT 1 FROM channel_members cm WHERE cm.channel_id = c.channel_id AND cm.user_id = ?))`,
			uuid.NewString(), m.MessageId, uid, toMillis(now), channelID, uid); err != nil {
			return models.Message{}, fmt.Errorf("insert mention: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return models.Message{}, fmt.Errorf("commit create message: %w", err)
	}
	return m, nil
}

func (s *Store) loadMessage(ctx context.Context, messageID string) (models.Message, error) {
	m, err := scanMessage(s.db.QueryRowContext(ctx,
		`SELECT `+messageColumns+` FROM messages WHERE message_id = ?`, messageID))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, fmt.Errorf("message %s: %w", messageID, repo.ErrNotFound)
	}
	if err != nil {
		return models.Message{}, fmt.Errorf("load message %s: %w", messageID, err)
	}
	return m, nil
}

// GetMessage loads a message the user can read.
func (s *Store) GetMessage(ctx context.Context, userID, messageID string) (models.Message, error) {
	m, err := s.loadMessage(ctx, messageID)
	if err != nil {
		return models.Message{}, err
	}
	if err := s.checkAccess(ctx, userID, m.ChannelId); err != nil {
		return models.Message{}, err
	}
	return m, nil
}

// authored loads a message the caller wrote.
func (s *Store) authored(ctx context.Context, userID, messageID string) (models.Message, error) {
	m, err := s.GetMessage(ctx, userID, messageID)
	if err != nil {
		return models.Message{}, err
	}
	if m.AuthorId != userID {
		return models.Message{}, fmt.Errorf("message %s: %w", messageID, repo.ErrForbidden)
	}
	return m, nil
}

// UpdateMessage replaces the content. Only the author may edit.
func (s *Store) UpdateMessage(ctx context.Context, userID, messageID, content string) (models.Message, error) {
	m, err := s.authored(ctx, userID, messageID)
	if err != nil {
		return models.Message{}, err
	}
	edited := s.now().UTC().Truncate(time.Millisecond)
	if _, err := s.db.ExecContext(ctx,
		`UPDATE messages SET content = ?, edited_at = ? WHERE message_id = ?`,
		content, toMillis(edited), messageID); err != nil {
		return models.Message{}, fmt.Errorf("update message %s: %w", messageID, err)
	}
	m.Content = content
	m.EditedAt = &edited
	return m, nil
}

// DeleteMessage removes a message. Only the author may delete.
func (s *Store) DeleteMessage(ctx context.Context, userID, messageID string) (models.Message, error) {
	m, err := s.authored(ctx, userID, messageID)
	if err != nil {
		return models.Message{}, err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE message_id = ?`, messageID); err != nil {
		return models.Message{}, fmt.Errorf("delete message %s: %w", messageID, err)
	}
	return m, nil
}

// PinMessage marks the message pinned.
func (s *Store) PinMessage(ctx context.Context, userID, messageID string) (models.Message, error) {
	return s.setPinned(ctx, userID, messageID, true)
}

// UnpinMessage clears the pinned flag.
func (s *Store) UnpinMessage(ctx context.Context, userID, messageID string) (models.Message, error) {
	return s.setPinned(ctx, userID, messageID, false)
}

func (s *Store) setPinned(ctx context.Context, userID, messageID string, pinned bool) (models.Message, error) {
	m, err := s.GetMessage(ctx, userID, messageID)
	if err != nil {
		return models.Message{}, err
	}
	if _, err := s.db.ExecContext(ctx,
		`UPDATE messages SET is_pinned = ? WHERE message_id = ?`, pinned, messageID); err != nil {
		return models.Message{}, fmt.Errorf("pin message %s: %w", messageID, err)
	}
	m.IsPinned = pinned
	return m, nil
}

// AddReaction is idempotent: repeating it returns the existing reaction.
func (s *Store) AddReaction(ctx context.Context, userID, messageID, emoji string) (models.Reaction, error) {
	if _, err := s.GetMessage(ctx, userID, messageID); err != nil {
		return models.Reaction{}, err
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO reactions (reaction_id, message_id, user_id, emoji, created_at) VALUES (?, ?, ?, ?, ?)`,
		uuid.NewString(), messageID, userID, emoji, toMillis(s.now())); err != nil {
		return models.Reaction{}, fmt.Errorf("add reaction: %w", err)
	}
	var (
		r       models.Reaction
		created int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT reaction_id, message_id, user_id, emoji, created_at FROM reactions
		 WHERE message_id = ? AND user_id = ? AND emoji = ?`,
		messageID, userID, emoji).Scan(&r.ReactionId, &r.MessageId, &r.UserId, &r.Emoji, &created)
	if err != nil {
		return models.Reaction{}, fmt.Errorf("load reaction: %w", err)
	}
	r.CreatedAt = fromMillis(created)
	return r, nil
}

// RemoveReaction deletes the user's reaction, ErrNotFound when absent.
func (s *Store) RemoveReaction(ctx context.Context, userID, messageID, emoji string) error {
	if _, err := s.GetMessage(ctx, userID, messageID); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM reactions WHERE message_id = ? AND user_id = ? AND emoji = ?`,
		messageID, userID, emoji)
	if err != nil {
		return fmt.Errorf("remove reaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("reaction %s on %s: %w", emoji, messageID, repo.ErrNotFound)
	}
	return nil
}

// MarkRead never moves the read marker backwards.
func (s *Store) MarkRead(ctx context.Context, userID, channelID, messageID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO read_states (user_id, channel_id, last_message_id, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(user_id, channel_id) DO UPDATE SET
		   last_message_id = excluded.last_message_id,
		   updated_at = excluded.updated_at
		 WHERE excluded.last_message_id > read_states.last_message_id`,
		userID, channelID, messageID, toMillis(s.now()))
	if err != nil {
		return fmt.Errorf("mark read %s: %w", channelID, err)
	}
	return nil
}

// LastRead returns the last read message id, or "" when none.
func (s *Store) LastRead(ctx context.Context, userID, channelID string) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT last_message_id FROM read_states WHERE user_id = ? AND channel_id = ?`,
		userID, channelID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("last read %s: %w", channelID, err)
	}
	return id, nil
}

const mentionQuery = `SELECT n.mention_id, n.message_id, m.channel_id, n.user_id, m.author_id, m.content, n.created_at
	FROM mentions n JOIN messages m ON m.message_id = n.message_id`

func (s *Store) queryMentions(ctx context.Context, query string, args ...any) ([]models.Mention, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query mentions: %w", err)
	}
	defer rows.Close()

	out := []models.Mention{}
	for rows.Next() {
		var (
			mn      models.Mention
			created int64
		)
		if err := rows.Scan(&mn.MentionId, &mn.MessageId, &mn.ChannelId, &mn.UserId, &mn.AuthorId, &mn.Content, &created); err != nil {
			return nil, err
		}
		mn.CreatedAt = fromMillis(created)
		out = append(out, mn)
	}
	return out, rows.Err()
}

// MentionsForMessage lists the mentions of one message by user id.
func (s *Store) MentionsForMessage(ctx context.Context, messageID string) ([]models.Mention, error) {
	return s.queryMentions(ctx, mentionQuery+` WHERE n.message_id = ? ORDER BY n.user_id`, messageID)
}

// MentionsForUser returns the newest mentions of userID first.
func (s *Store) MentionsForUser(ctx context.Context, userID string, limit int) ([]models.Mention, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.queryMentions(ctx, mentionQuery+` WHERE n.user_id = ? ORDER BY n.created_at DESC, n.mention_id DESC LIMIT ?`, userID, limit)
}

var (
	_ repo.MessageRepo   = (*Store)(nil)
	_ repo.ReactionRepo  = (*Store)(nil)
	_ repo.ReadStateRepo = (*Store)(nil)
	_ repo.MentionRepo   = (*Store)(nil)
)
