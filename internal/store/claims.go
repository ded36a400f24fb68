package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/erazemk/najdeno/internal/dbx"
	"github.com/erazemk/najdeno/internal/model"
)

// CreateClaim inserts a claim for an item, snapshotting the claimant's name
// and email. claimed_at is bound from Go rather than CURRENT_TIMESTAMP so
// that cutoff comparisons in DeleteClaimsOlderThan use a single consistent
// encoding.
func CreateClaim(ctx context.Context, q dbx.DBTX, itemID int64, claimant model.Identity) (*model.Claim, error) {
	result, err := q.ExecContext(ctx,
		`INSERT INTO claims (item_id, claimed_by, claimant_name, claimant_email, claimed_at)
		 VALUES (?, ?, ?, ?, ?)`,
		itemID, claimant.UserID, claimant.Name, claimant.Email, time.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("creating claim: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting claim id: %w", err)
	}

	return GetClaim(ctx, q, id)
}

// GetClaim returns a claim by ID, or nil if it does not exist.
func GetClaim(ctx context.Context, q dbx.DBTX, id int64) (*model.Claim, error) {
	c := &model.Claim{}
	err := q.QueryRowContext(ctx,
		`SELECT id, item_id, claimed_by, claimant_name, claimant_email, claimed_at
		 FROM claims WHERE id = ?`, id,
	).Scan(&c.ID, &c.ItemID, &c.ClaimedBy, &c.ClaimantName, &c.ClaimantEmail, &c.ClaimedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting claim: %w", err)
	}
	return c, nil
}

// GetClaimByItemAndClaimant returns the claimant's live claim on an item, or
// nil if they hold none.
func GetClaimByItemAndClaimant(ctx context.Context, q dbx.DBTX, itemID, claimedBy int64) (*model.Claim, error) {
	c := &model.Claim{}
	err := q.QueryRowContext(ctx,
		`SELECT id, item_id, claimed_by, claimant_name, claimant_email, claimed_at
		 FROM claims WHERE item_id = ? AND claimed_by = ?`, itemID, claimedBy,
	).Scan(&c.ID, &c.ItemID, &c.ClaimedBy, &c.ClaimantName, &c.ClaimantEmail, &c.ClaimedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting claim by item and claimant: %w", err)
	}
	return c, nil
}

// ListClaimsForItem returns the live claims on an item.
func ListClaimsForItem(ctx context.Context, q dbx.DBTX, itemID int64) ([]model.Claim, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, item_id, claimed_by, claimant_name, claimant_email, claimed_at
		 FROM claims WHERE item_id = ? ORDER BY claimed_at DESC, id DESC`, itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing claims for item: %w", err)
	}
	defer rows.Close()

	var claims []model.Claim
	for rows.Next() {
		var c model.Claim
		if err := rows.Scan(&c.ID, &c.ItemID, &c.ClaimedBy, &c.ClaimantName, &c.ClaimantEmail, &c.ClaimedAt); err != nil {
			return nil, fmt.Errorf("scanning claim: %w", err)
		}
		claims = append(claims, c)
	}
	return claims, rows.Err()
}

// ListClaimsByClaimant returns a user's claims with item details joined in,
// newest first.
func ListClaimsByClaimant(ctx context.Context, q dbx.DBTX, userID int64) ([]model.Claim, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT c.id, c.item_id, c.claimed_by, c.claimant_name, c.claimant_email, c.claimed_at,
		        i.name, i.description, i.location
		 FROM claims c
		 JOIN items i ON i.id = c.item_id
		 WHERE c.claimed_by = ?
		 ORDER BY c.claimed_at DESC, c.id DESC`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing claims by claimant: %w", err)
	}
	defer rows.Close()

	return scanJoinedClaims(rows)
}

// ListClaims returns every claim with item details joined in, newest first.
func ListClaims(ctx context.Context, q dbx.DBTX) ([]model.Claim, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT c.id, c.item_id, c.claimed_by, c.claimant_name, c.claimant_email, c.claimed_at,
		        i.name, i.description, i.location
		 FROM claims c
		 JOIN items i ON i.id = c.item_id
		 ORDER BY c.claimed_at DESC, c.id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing claims: %w", err)
	}
	defer rows.Close()

	return scanJoinedClaims(rows)
}

func scanJoinedClaims(rows *sql.Rows) ([]model.Claim, error) {
	var claims []model.Claim
	for rows.Next() {
		var c model.Claim
		var description, location sql.NullString
		if err := rows.Scan(&c.ID, &c.ItemID, &c.ClaimedBy, &c.ClaimantName, &c.ClaimantEmail, &c.ClaimedAt,
			&c.ItemName, &description, &location); err != nil {
			return nil, fmt.Errorf("scanning claim: %w", err)
		}
		c.ItemDescription = description.String
		c.ItemLocation = location.String
		claims = append(claims, c)
	}
	return claims, rows.Err()
}

// DeleteClaim deletes a claim row.
func DeleteClaim(ctx context.Context, q dbx.DBTX, id int64) error {
	_, err := q.ExecContext(ctx, `DELETE FROM claims WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting claim: %w", err)
	}
	return nil
}

// DeleteClaimsForItem deletes all claims referencing an item.
func DeleteClaimsForItem(ctx context.Context, q dbx.DBTX, itemID int64) error {
	_, err := q.ExecContext(ctx, `DELETE FROM claims WHERE item_id = ?`, itemID)
	if err != nil {
		return fmt.Errorf("deleting claims for item: %w", err)
	}
	return nil
}

// DeleteClaimsByClaimant deletes all claims held by a user.
func DeleteClaimsByClaimant(ctx context.Context, q dbx.DBTX, userID int64) error {
	_, err := q.ExecContext(ctx, `DELETE FROM claims WHERE claimed_by = ?`, userID)
	if err != nil {
		return fmt.Errorf("deleting claims by claimant: %w", err)
	}
	return nil
}

// DeleteClaimsOlderThan deletes every claim whose claimed_at is before the
// cutoff and returns how many were removed.
func DeleteClaimsOlderThan(ctx context.Context, q dbx.DBTX, cutoff time.Time) (int64, error) {
	result, err := q.ExecContext(ctx,
		`DELETE FROM claims WHERE claimed_at < ?`, cutoff.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("deleting old claims: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("deleting old claims: %w", err)
	}
	return n, nil
}
