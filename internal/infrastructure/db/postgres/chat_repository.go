package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/autodealer/showroom/internal/core/domain"
)

const (
	conversationColumns = `id, room_id, user_id, admin_id, last_message, last_message_at, created_at`
	messageColumns      = `id, conversation_id, sender_id, content, is_read, created_at`
)

// ChatRepository implements ports.ChatRepository.
type ChatRepository struct {
	db DB
}

func NewChatRepository(db DB) *ChatRepository {
	return &ChatRepository{db: db}
}

func scanConversation(row pgx.Row) (*domain.Conversation, error) {
	c := &domain.Conversation{}
	if err := row.Scan(&c.ID, &c.RoomID, &c.UserID, &c.AdminID, &c.LastMessage, &c.LastMessageAt, &c.CreatedAt); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *ChatRepository) CreateConversation(ctx context.Context, c *domain.Conversation) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO chat_conversations (`+conversationColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		c.ID, c.RoomID, c.UserID, c.AdminID, c.LastMessage, c.LastMessageAt, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert conversation: %w", err)
	}
	return nil
}

func (r *ChatRepository) FindConversation(ctx context.Context, id string) (*domain.Conversation, error) {
	return r.findConversation(ctx, `SELECT `+conversationColumns+` FROM chat_conversations WHERE id = $1`, id)
}

func (r *ChatRepository) FindConversationByRoomAndUser(ctx context.Context, roomID, userID string) (*domain.Conversation, error) {
	return r.findConversation(ctx,
		`SELECT `+conversationColumns+` FROM chat_conversations WHERE room_id = $1 AND user_id = $2`, roomID, userID)
}

func (r *ChatRepository) findConversation(ctx context.Context, sql string, args ...any) (*domain.Conversation, error) {
	c, err := scanConversation(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrConversationNotFound
		}
		return nil, fmt.Errorf("find conversation: %w", err)
	}
	return c, nil
}

func (r *ChatRepository) ListConversations(ctx context.Context, participantID string) ([]*domain.Conversation, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+conversationColumns+` FROM chat_conversations
		 WHERE user_id = $1 OR admin_id = $1
		 ORDER BY COALESCE(last_message_at, created_at) DESC`, participantID)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.Conversation, 0)
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate conversations: %w", err)
	}
	return out, nil
}

// ListMessages returns up to limit messages older than before, oldest first.
func (r *ChatRepository) ListMessages(ctx context.Context, conversationID string, before *time.Time, limit int) ([]*domain.Message, error) {
	var w filter
	w.add("conversation_id = $%d", conversationID)
	if before != nil {
		w.add("created_at < $%d", *before)
	}
	page, args := w.page(1, limit)
	rows, err := r.db.Query(ctx,
		`SELECT `+messageColumns+` FROM chat_messages`+w.where()+` ORDER BY created_at DESC`+page, args...)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.Message, 0)
	for rows.Next() {
		m := &domain.Message{}
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Content, &m.IsRead, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (r *ChatRepository) AddMessage(ctx context.Context, m *domain.Message) error {
	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`INSERT INTO chat_messages (`+messageColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
			m.ID, m.ConversationID, m.SenderID, m.Content, m.IsRead, m.CreatedAt); err != nil {
			return fmt.Errorf("insert message: %w", err)
		}
		tag, err := tx.Exec(ctx,
			`UPDATE chat_conversations SET last_message = $1, last_message_at = $2 WHERE id = $3`,
			m.Content, m.CreatedAt, m.ConversationID)
		if err != nil {
			return fmt.Errorf("update conversation summary: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrConversationNotFound
		}
		return nil
	})
}

func (r *ChatRepository) MarkRead(ctx context.Context, conversationID, readerID string) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE chat_messages SET is_read = TRUE WHERE conversation_id = $1 AND sender_id <> $2 AND NOT is_read`,
		conversationID, readerID)
	if err != nil {
		return 0, fmt.Errorf("mark messages read: %w", err)
	}
	return tag.RowsAffected(), nil
}
