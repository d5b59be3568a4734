// Package store persists locals, local types, users, and conversation
// messages in SQLite.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// LocalType is one of the fixed categories a local can belong to.
type LocalType struct {
	ID               int64
	UUID             string
	Name             string
	Description      string
	ShortDescription string
	Icon             string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Local is an event or place a customer has registered: a named area
// with coordinates and a search radius that grounds conversations.
type Local struct {
	ID                  int64
	UUID                string
	CustomerID          int64
	LocalTypeID         int64
	Name                string
	Description         string
	Coordinates         string // "lat,lng"
	LocationSearchQuery string
	RadiusMeters        int
	CreatedAt           time.Time
	UpdatedAt           time.Time

	// LocalType is populated by lookups that join the type row.
	LocalType *LocalType
}

// MessageBy values for MessageRecord.
const (
	MessageByUser      = "user"
	MessageByAssistant = "assistant"
)

// MessageRecord is one persisted conversation turn tied to a local.
// Records are append-only.
type MessageRecord struct {
	ID         int64
	UUID       string
	MessageBy  string
	UserID     int64
	CustomerID int64
	LocalID    int64
	Message    string
	Prompt     string
	Summary    string
	Metadata   json.RawMessage
	CreatedAt  time.Time
}

// User is an authenticated account mapped from the auth provider's
// subject identifier.
type User struct {
	ID                 int64
	UUID               string
	Subject            string
	Email              string
	CustomerID         int64
	OnboardingComplete bool
	CreatedAt          time.Time
}

// LocalFilter narrows and pages a locals listing.
type LocalFilter struct {
	LocalTypeID int64  // 0 means all types
	Search      string // substring match on name
	Page        int    // 1-based, defaults to 1
	Limit       int    // defaults to 20
}

// LocalParams carries the writable attributes of a local.
type LocalParams struct {
	CustomerID          int64
	LocalTypeID         int64
	Name                string
	Description         string
	Coordinates         string
	LocationSearchQuery string
	RadiusMeters        int
}

// Store is the persistence contract the rest of the service depends on.
type Store interface {
	LocalTypes(ctx context.Context) ([]LocalType, error)
	LocalTypeByUUID(ctx context.Context, uuid string) (*LocalType, error)

	CreateLocal(ctx context.Context, params LocalParams) (*Local, error)
	LocalByUUID(ctx context.Context, uuid string) (*Local, error)
	Locals(ctx context.Context, filter LocalFilter) ([]Local, int, error)
	UpdateLocal(ctx context.Context, uuid string, params LocalParams) (*Local, error)
	DeleteLocal(ctx context.Context, uuid string) error

	SaveMessage(ctx context.Context, rec MessageRecord) (*MessageRecord, error)
	MessagesForLocal(ctx context.Context, localUUID string, limit int) ([]MessageRecord, error)
	PurgeMessagesBefore(ctx context.Context, cutoff time.Time) (int64, error)

	EnsureUser(ctx context.Context, subject, email string) (*User, error)
	MarkUserOnboarded(ctx context.Context, userID int64) error

	Close() error
}
