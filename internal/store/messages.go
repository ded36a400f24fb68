package store

import (
	"context"
	"fmt"

	"github.com/erazemk/najdeno/internal/dbx"
	"github.com/erazemk/najdeno/internal/model"
)

// CreateMessage records a message from one user to another about an item.
func CreateMessage(ctx context.Context, q dbx.DBTX, senderID, receiverID, itemID int64, body string) (*model.Message, error) {
	result, err := q.ExecContext(ctx,
		`INSERT INTO messages (sender_id, receiver_id, item_id, body) VALUES (?, ?, ?, ?)`,
		senderID, receiverID, itemID, body,
	)
	if err != nil {
		return nil, fmt.Errorf("creating message: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting message id: %w", err)
	}

	m := &model.Message{}
	err = q.QueryRowContext(ctx,
		`SELECT id, sender_id, receiver_id, item_id, body, sent_at FROM messages WHERE id = ?`, id,
	).Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.ItemID, &m.Body, &m.SentAt)
	if err != nil {
		return nil, fmt.Errorf("getting message: %w", err)
	}
	return m, nil
}

// ListMessagesForReceiver returns a user's received messages with sender and
// item names joined in, newest first.
func ListMessagesForReceiver(ctx context.Context, q dbx.DBTX, userID int64) ([]model.Message, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT m.id, m.sender_id, m.receiver_id, m.item_id, m.body, m.sent_at,
		        u.name AS sender_name, i.name AS item_name
		 FROM messages m
		 JOIN users u ON u.id = m.sender_id
		 JOIN items i ON i.id = m.item_id
		 WHERE m.receiver_id = ?
		 ORDER BY m.sent_at DESC, m.id DESC`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	defer rows.Close()

	var messages []model.Message
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.ItemID, &m.Body, &m.SentAt,
			&m.SenderName, &m.ItemName); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// CountMessagesForItem returns how many messages reference an item.
func CountMessagesForItem(ctx context.Context, q dbx.DBTX, itemID int64) (int64, error) {
	var count int64
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM messages WHERE item_id = ?`, itemID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting messages for item: %w", err)
	}
	return count, nil
}

// DeleteMessagesForItem deletes all messages referencing an item.
func DeleteMessagesForItem(ctx context.Context, q dbx.DBTX, itemID int64) error {
	_, err := q.ExecContext(ctx, `DELETE FROM messages WHERE item_id = ?`, itemID)
	if err != nil {
		return fmt.Errorf("deleting messages for item: %w", err)
	}
	return nil
}

// DeleteMessagesForUser deletes all messages a user sent or received.
func DeleteMessagesForUser(ctx context.Context, q dbx.DBTX, userID int64) error {
	_, err := q.ExecContext(ctx,
		`DELETE FROM messages WHERE sender_id = ? OR receiver_id = ?`, userID, userID,
	)
	if err != nil {
		return fmt.Errorf("deleting messages for user: %w", err)
	}
	return nil
}
