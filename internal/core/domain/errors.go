package domain

import "errors"

// Sentinel errors shared across the core. Services wrap these with context via
// fmt.Errorf("…: %w", err); transports match them with errors.Is.
var (
	ErrShipmentNotFound = errors.New("shipment not found")
	ErrRouteNotFound    = errors.New("route not found")
	ErrSegmentNotFound  = errors.New("segment not found")

	// ErrInvalidTransition covers any lifecycle operation attempted from a
	// state that forbids it. Never retried.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInvalidInput covers non-positive distances/costs/consumptions and
	// missing coordinates. Never retried.
	ErrInvalidInput = errors.New("invalid input")

	// ErrCapacityUnavailable means no truck fits the cargo, or the named
	// truck does not fit or is not available.
	ErrCapacityUnavailable = errors.New("truck capacity unavailable")

	// ErrUpstreamUnavailable means a collaborator call failed or timed out
	// after retries. The only error class eligible for retry by callers.
	ErrUpstreamUnavailable = errors.New("upstream service unavailable")

	// ErrAggregateLocked means another lifecycle operation holds the
	// per-shipment lock; callers may retry after a short delay.
	ErrAggregateLocked = errors.New("shipment aggregate is locked")

	ErrDuplicateShipment = errors.New("shipment already exists")
	ErrForbidden         = errors.New("access forbidden")
)

// Authentication errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
)
