package audit

import "context"

// Store persists the append-only audit log. Implementations must assign Seq,
// PrevHash, and EntryHash atomically so the chain stays consistent under
// concurrent appends.
type Store interface {
	// Append persists one event and fills in its chain fields.
	Append(ctx context.Context, event *Event) error

	// List returns events matching the filter in append order.
	List(ctx context.Context, filter Filter) ([]*Event, error)

	// Last returns the most recent entry, or nil when the log is empty.
	Last(ctx context.Context) (*Event, error)
}
