package workflow

import "errors"

// Typed failures returned by the workflow operations. Handlers translate
// these into the external contract with errors.Is; everything else is a
// transient store failure.
var (
	// ErrUnauthorized means no authenticated identity was supplied.
	ErrUnauthorized = errors.New("not authenticated")

	// ErrForbidden means the caller's role does not permit the operation.
	ErrForbidden = errors.New("admin access required")

	// ErrItemNotFound means the referenced item does not exist.
	ErrItemNotFound = errors.New("item not found")

	// ErrClaimNotFound means the referenced claim does not exist.
	ErrClaimNotFound = errors.New("claim not found")

	// ErrAlreadyClaimed means another user holds the live claim on the item.
	ErrAlreadyClaimed = errors.New("item already claimed")

	// ErrDuplicateClaim means the caller already holds the live claim on the
	// item. Kept distinct from ErrAlreadyClaimed so a claimant is told "you
	// already claimed this" rather than "someone else did".
	ErrDuplicateClaim = errors.New("you have already claimed this item")

	// ErrUserNotFound means the referenced user does not exist.
	ErrUserNotFound = errors.New("user not found")
)
