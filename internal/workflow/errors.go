package workflow

import "errors"

var (
	// ErrNotAuthorized is returned when the acting role may not perform the
	// decision at the entity's current status, including failed readiness checks.
	ErrNotAuthorized = errors.New("role is not authorized to act on this status")

	// ErrInvalidTransition is returned when no next status is mapped for the
	// (role, status) pair, e.g. acting on an already-final entity.
	ErrInvalidTransition = errors.New("no transition defined for this role and status")

	// ErrSequenceExhausted is returned when the risk number generator has used
	// all suffixes (00-99) for an org/year prefix.
	ErrSequenceExhausted = errors.New("risk number sequence exhausted for prefix")

	// ErrLookupFailure marks a failed role/org resolution. The resolver never
	// propagates it; an unresolvable user degrades to an unclassified context.
	ErrLookupFailure = errors.New("role or organization lookup failed")
)
