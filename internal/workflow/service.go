// Package workflow implements the item lifecycle and claim-arbitration
// rules: how items move between available and claimed, how claims are
// created and revoked, and the periodic reconciliation that keeps item
// status consistent with claim state.
package workflow

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/erazemk/najdeno/internal/dbx"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

// DefaultRetention is how long an unresolved claim stays live before the
// reconciler expires it.
const DefaultRetention = 7 * 24 * time.Hour

// Service composes the stores into request-shaped operations. Admin-only
// operations check the acting identity's role before touching any store.
type Service struct {
	DB *sql.DB

	// Retention overrides DefaultRetention when positive.
	Retention time.Duration
}

func (s *Service) retention() time.Duration {
	if s.Retention > 0 {
		return s.Retention
	}
	return DefaultRetention
}

func requireUser(actor model.Identity) error {
	if actor.IsZero() {
		return ErrUnauthorized
	}
	return nil
}

func requireAdmin(actor model.Identity) error {
	if actor.IsZero() {
		return ErrUnauthorized
	}
	if !actor.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

// CreateItem registers a new item for the acting user. New items are
// available.
func (s *Service) CreateItem(ctx context.Context, actor model.Identity, name, description, location string) (*model.Item, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	return store.CreateItem(ctx, s.DB, name, description, location, actor.UserID)
}

// GetItem returns an item by ID.
func (s *Service) GetItem(ctx context.Context, actor model.Identity, itemID int64) (*model.Item, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	item, err := store.GetItem(ctx, s.DB, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrItemNotFound
	}
	return item, nil
}

// ListItems returns items newest first, optionally filtered by search text
// and status.
func (s *Service) ListItems(ctx context.Context, actor model.Identity, search, status string) ([]model.Item, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	return store.ListItems(ctx, s.DB, search, status)
}

// ClaimItem places the acting user's claim on an item. The guard checks and
// both writes run in one transaction so concurrent claimers cannot both pass
// the availability guard: the item flip is conditional on the status still
// being available, and the claim insert only happens once the flip succeeds.
//
// Failure precedence: ErrItemNotFound, then ErrDuplicateClaim (the caller
// already holds the live claim), then ErrAlreadyClaimed (someone else does).
func (s *Service) ClaimItem(ctx context.Context, actor model.Identity, itemID int64) (*model.Claim, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}

	var claim *model.Claim
	err := dbx.WithTx(ctx, s.DB, func(ctx context.Context, tx dbx.DBTX) error {
		item, err := store.GetItem(ctx, tx, itemID)
		if err != nil {
			return err
		}
		if item == nil {
			return ErrItemNotFound
		}

		existing, err := store.GetClaimByItemAndClaimant(ctx, tx, itemID, actor.UserID)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrDuplicateClaim
		}

		flipped, err := store.MarkItemClaimed(ctx, tx, itemID)
		if err != nil {
			return err
		}
		if !flipped {
			return ErrAlreadyClaimed
		}

		claim, err = store.CreateClaim(ctx, tx, itemID, actor)
		return err
	})
	if err != nil {
		return nil, err
	}
	return claim, nil
}

// RevokeClaim deletes a claim and resets the owning item to available
// (admin only). The reset is unconditional: under the one-live-claim
// invariant the revoked claim is the item's only claim, and any violation of
// that invariant is repaired by the next reconciliation pass anyway.
func (s *Service) RevokeClaim(ctx context.Context, actor model.Identity, claimID int64) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}

	return dbx.WithTx(ctx, s.DB, func(ctx context.Context, tx dbx.DBTX) error {
		claim, err := store.GetClaim(ctx, tx, claimID)
		if err != nil {
			return err
		}
		if claim == nil {
			return ErrClaimNotFound
		}

		if err := store.DeleteClaim(ctx, tx, claimID); err != nil {
			return err
		}
		return store.SetItemStatus(ctx, tx, claim.ItemID, model.ItemStatusAvailable)
	})
}

// DeleteItem removes an item and everything referencing it (admin only).
// Dependents go first so an interrupted cascade never leaves a claim or
// message pointing at a missing item.
func (s *Service) DeleteItem(ctx context.Context, actor model.Identity, itemID int64) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}

	item, err := store.GetItem(ctx, s.DB, itemID)
	if err != nil {
		return err
	}
	if item == nil {
		return ErrItemNotFound
	}

	if err := store.DeleteClaimsForItem(ctx, s.DB, itemID); err != nil {
		return err
	}
	if err := store.DeleteMessagesForItem(ctx, s.DB, itemID); err != nil {
		return err
	}
	return store.DeleteItem(ctx, s.DB, itemID)
}

// DeleteUser removes a user and everything they own (admin only): their
// claims, their messages, their feedback, the items they registered (each
// with the item cascade), then the user record. Items that lose their claim
// in the process are released right away rather than waiting for the next
// reconciliation pass.
func (s *Service) DeleteUser(ctx context.Context, actor model.Identity, userID int64) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}

	if err := store.DeleteClaimsByClaimant(ctx, s.DB, userID); err != nil {
		return err
	}
	if err := store.DeleteMessagesForUser(ctx, s.DB, userID); err != nil {
		return err
	}
	if err := store.DeleteFeedbackForUser(ctx, s.DB, userID); err != nil {
		return err
	}

	items, err := store.ListItemsByCreator(ctx, s.DB, userID)
	if err != nil {
		return err
	}
	for _, item := range items {
		if err := store.DeleteClaimsForItem(ctx, s.DB, item.ID); err != nil {
			return err
		}
		if err := store.DeleteMessagesForItem(ctx, s.DB, item.ID); err != nil {
			return err
		}
		if err := store.DeleteItem(ctx, s.DB, item.ID); err != nil {
			return err
		}
	}

	if err := store.DeleteUser(ctx, s.DB, userID); err != nil {
		return err
	}

	// Deleting the user's claims may have left items claimed with no live
	// claim; restore the invariant now instead of waiting for the reconciler.
	_, err = store.ReleaseItemsWithoutClaims(ctx, s.DB)
	return err
}

// ReconcileResult reports what a reconciliation pass changed.
type ReconcileResult struct {
	ClaimsDeleted int64 `json:"claims_deleted"`
	ItemsUpdated  int64 `json:"items_updated"`
}

// Reconcile runs one expiry reconciliation pass: delete every claim older
// than the retention window, then flip every claimed item with no remaining
// live claim back to available. The second step re-derives status store-wide,
// so it also heals inconsistency introduced elsewhere (partial failures,
// manual edits). Both steps are idempotent; a pass may be interrupted between
// them without corrupting anything.
func (s *Service) Reconcile(ctx context.Context) (ReconcileResult, error) {
	var res ReconcileResult

	cutoff := time.Now().Add(-s.retention())
	deleted, err := store.DeleteClaimsOlderThan(ctx, s.DB, cutoff)
	if err != nil {
		return res, fmt.Errorf("expiring claims: %w", err)
	}
	res.ClaimsDeleted = deleted

	updated, err := store.ReleaseItemsWithoutClaims(ctx, s.DB)
	if err != nil {
		return res, fmt.Errorf("releasing items: %w", err)
	}
	res.ItemsUpdated = updated

	return res, nil
}
