package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"vibecircles.web/internal/model"
)

var (
	ErrMessageNotFound = errors.New("message not found")
)

// pgForeignKeyViolation SQLSTATE 23503
const pgForeignKeyViolation = "23503"

const messageColumns = `m.id, m.sender_id, m.receiver_id, m.content, m.is_read, m.created_at`

const messageWithSenderQuery = `
	SELECT ` + messageColumns + `,
	       u.username, COALESCE(p.full_name, ''), COALESCE(p.avatar_url, '')
	FROM messages m
	JOIN users u ON m.sender_id = u.id
	LEFT JOIN profiles p ON p.user_id = u.id
`

// MessageRepository message persistence on Postgres
type MessageRepository struct {
	db *pgxpool.Pool
}

// NewMessageRepository creates the message repository
func NewMessageRepository(db *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create inserts msg and fills in ID and CreatedAt.
// A missing sender or receiver surfaces as ErrUserNotFound.
func (r *MessageRepository) Create(ctx context.Context, msg *model.Message) error {
	query := `
		INSERT INTO messages (sender_id, receiver_id, content, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query,
		msg.SenderID,
		msg.ReceiverID,
		msg.Content,
		msg.IsRead,
		msg.CreatedAt,
	).Scan(&msg.ID, &msg.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

// GetByID returns the bare message row
func (r *MessageRepository) GetByID(ctx context.Context, id int64) (*model.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages m WHERE m.id = $1`

	msg := &model.Message{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&msg.ID,
		&msg.SenderID,
		&msg.ReceiverID,
		&msg.Content,
		&msg.IsRead,
		&msg.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	return msg, nil
}

// GetWithSender returns the message joined with its sender's identity
func (r *MessageRepository) GetWithSender(ctx context.Context, id int64) (*model.MessageWithSender, error) {
	rows, err := r.db.Query(ctx, messageWithSenderQuery+` WHERE m.id = $1`, id)
	if err != nil {
		return nil, err
	}
	msgs, err := scanMessagesWithSender(rows)
	if err != nil {
		return nil, err
	}
	if len(msgs) == 0 {
		return nil, ErrMessageNotFound
	}
	return msgs[0], nil
}

// ListConversations returns one summary per partner userID has exchanged
// messages with, most recently active first. The latest message (higher id on
// equal timestamps) is the preview. Partners whose account is gone are skipped.
func (r *MessageRepository) ListConversations(ctx context.Context, userID int64) ([]*model.ConversationSummary, error) {
	query := `
		WITH pm AS (
			SELECT CASE WHEN m.sender_id = $1 THEN m.receiver_id ELSE m.sender_id END AS partner_id,
			       m.id, m.content, m.created_at,
			       (m.receiver_id = $1 AND NOT m.is_read) AS unread
			FROM messages m
			WHERE (m.sender_id = $1 OR m.receiver_id = $1)
			  AND m.sender_id <> m.receiver_id
		),
		last AS (
			SELECT DISTINCT ON (partner_id) partner_id, content, created_at
			FROM pm
			ORDER BY partner_id, created_at DESC, id DESC
		),
		counts AS (
			SELECT partner_id, COUNT(*) FILTER (WHERE unread) AS unread_count
			FROM pm
			GROUP BY partner_id
		)
		SELECT last.partner_id, u.username, COALESCE(p.full_name, ''), COALESCE(p.avatar_url, ''),
		       last.content, last.created_at, counts.unread_count
		FROM last
		JOIN counts ON counts.partner_id = last.partner_id
		JOIN users u ON u.id = last.partner_id
		LEFT JOIN profiles p ON p.user_id = u.id
		ORDER BY last.created_at DESC, last.partner_id ASC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	convs := []*model.ConversationSummary{}
	for rows.Next() {
		c := &model.ConversationSummary{}
		if err := rows.Scan(
			&c.ID,
			&c.Username,
			&c.FullName,
			&c.AvatarURL,
			&c.LastMessage,
			&c.LastMessageTime,
			&c.UnreadCount,
		); err != nil {
			return nil, err
		}
		convs = append(convs, c)
	}
	return convs, rows.Err()
}

// ListThread returns the messages between the two users in chronological order
func (r *MessageRepository) ListThread(ctx context.Context, userID, otherUserID int64) ([]*model.MessageWithSender, error) {
	query := messageWithSenderQuery + `
		WHERE (m.sender_id = $1 AND m.receiver_id = $2)
		   OR (m.sender_id = $2 AND m.receiver_id = $1)
		ORDER BY m.created_at ASC, m.id ASC
	`
	rows, err := r.db.Query(ctx, query, userID, otherUserID)
	if err != nil {
		return nil, err
	}
	return scanMessagesWithSender(rows)
}

// MarkRead flips is_read on unread messages senderID sent to receiverID.
// upToID > 0 limits the update to messages with id <= upToID.
func (r *MessageRepository) MarkRead(ctx context.Context, receiverID, senderID, upToID int64) (int64, error) {
	query := `
		UPDATE messages SET is_read = TRUE
		WHERE sender_id = $1 AND receiver_id = $2 AND is_read = FALSE
		  AND ($3::bigint = 0 OR id <= $3::bigint)
	`
	result, err := r.db.Exec(ctx, query, senderID, receiverID, upToID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

// CountUnread counts unread messages addressed to receiverID
func (r *MessageRepository) CountUnread(ctx context.Context, receiverID int64) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM messages WHERE receiver_id = $1 AND is_read = FALSE`
	err := r.db.QueryRow(ctx, query, receiverID).Scan(&count)
	return count, err
}

// DeleteBySender hard-deletes the message only when senderID sent it
func (r *MessageRepository) DeleteBySender(ctx context.Context, id, senderID int64) error {
	query := `DELETE FROM messages WHERE id = $1 AND sender_id = $2`
	result, err := r.db.Exec(ctx, query, id, senderID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrMessageNotFound
	}
	return nil
}

func scanMessagesWithSender(rows pgx.Rows) ([]*model.MessageWithSender, error) {
	defer rows.Close()

	var msgs []*model.MessageWithSender
	for rows.Next() {
		m := &model.MessageWithSender{}
		if err := rows.Scan(
			&m.ID,
			&m.SenderID,
			&m.ReceiverID,
			&m.Content,
			&m.IsRead,
			&m.CreatedAt,
			&m.Username,
			&m.FullName,
			&m.AvatarURL,
		); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}
