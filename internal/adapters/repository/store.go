// Package repository persists trained model bundles and tracks which
// bundle is active. A bundle is saved and loaded as one atomic artifact so
// a crash mid-write can never leave a model without its matching
// preprocessing state.
package repository

import "context"

// BundleState is the lifecycle state of a bundle. Transitions:
// Trained -> Active -> Retired; re-activating a Retired bundle is allowed
// but must be explicit.
type BundleState string

// Bundle lifecycle states.
const (
	StateTrained BundleState = "trained"
	StateActive  BundleState = "active"
	StateRetired BundleState = "retired"
)

// BundleInfo is a listing row for a stored bundle.
type BundleInfo struct {
	ID            string      `json:"id"`
	AlgorithmName string      `json:"algorithm_name"`
	State         BundleState `json:"state"`
	CreatedAt     string      `json:"created_at"`
}

// Store provides atomic access to trained model bundles.
type Store interface {
	// Save persists a bundle as one atomic unit. A failed save never
	// leaves a partially written artifact behind.
	Save(ctx context.Context, b *Bundle) error

	// Load reconstructs a bundle by identity, including its classifier.
	// Returns ErrNotFound for unknown ids.
	Load(ctx context.Context, id string) (*Bundle, error)

	// Activate marks the bundle active, retiring any previously active
	// bundle. Concurrent readers observe either the old or the new
	// active bundle, never a partially swapped state.
	Activate(ctx context.Context, id string) (*Bundle, error)

	// Active returns the currently active bundle, or ErrNoActiveBundle.
	Active(ctx context.Context) (*Bundle, error)

	// Retire explicitly retires a bundle without activating another.
	Retire(ctx context.Context, id string) error

	// List returns info for every stored bundle.
	List(ctx context.Context) ([]BundleInfo, error)
}
