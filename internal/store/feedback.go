package store

import (
	"context"
	"fmt"

	"github.com/erazemk/najdeno/internal/dbx"
	"github.com/erazemk/najdeno/internal/model"
)

// CreateFeedback records a user's feedback about the service.
func CreateFeedback(ctx context.Context, q dbx.DBTX, userID int64, body string) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO feedback (user_id, body) VALUES (?, ?)`,
		userID, body,
	)
	if err != nil {
		return fmt.Errorf("creating feedback: %w", err)
	}
	return nil
}

// ListFeedback returns all feedback with user names joined in, newest first.
func ListFeedback(ctx context.Context, q dbx.DBTX) ([]model.Feedback, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT f.id, f.user_id, f.body, f.submitted_at, u.name AS user_name
		 FROM feedback f
		 JOIN users u ON u.id = f.user_id
		 ORDER BY f.submitted_at DESC, f.id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing feedback: %w", err)
	}
	defer rows.Close()

	var feedback []model.Feedback
	for rows.Next() {
		var f model.Feedback
		if err := rows.Scan(&f.ID, &f.UserID, &f.Body, &f.SubmittedAt, &f.UserName); err != nil {
			return nil, fmt.Errorf("scanning feedback: %w", err)
		}
		feedback = append(feedback, f)
	}
	return feedback, rows.Err()
}

// DeleteFeedbackForUser deletes all feedback a user submitted.
func DeleteFeedbackForUser(ctx context.Context, q dbx.DBTX, userID int64) error {
	_, err := q.ExecContext(ctx, `DELETE FROM feedback WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("deleting feedback for user: %w", err)
	}
	return nil
}
