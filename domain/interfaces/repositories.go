package interfaces

import (
	"context"
	"time"

	"github.com/skyblockz/sbz-giveaway/domain/entities"
	"github.com/skyblockz/sbz-giveaway/domain/events"
)

// DrawingRepository defines the interface for drawing data access
type DrawingRepository interface {
	// NextID returns max(id)+1, or 0 when no drawing exists. It serializes
	// concurrent callers until the surrounding transaction ends.
	NextID(ctx context.Context) (int64, error)

	// Create inserts a new drawing using drawing.ID as its identity
	Create(ctx context.Context, drawing *entities.Drawing) error

	// GetByID returns nil, nil when the drawing does not exist
	GetByID(ctx context.Context, id int64) (*entities.Drawing, error)

	// GetByIDForUpdate locks the row for the remainder of the transaction
	GetByIDForUpdate(ctx context.Context, id int64) (*entities.Drawing, error)

	// GetByMessageID looks a drawing up by its announcement message
	GetByMessageID(ctx context.Context, messageID int64) (*entities.Drawing, error)

	// SetMessage records the announcement message reference
	SetMessage(ctx context.Context, id, channelID, messageID int64) error

	// AddParticipant appends the member if absent, reporting whether it was added
	AddParticipant(ctx context.Context, id, memberID int64) (bool, error)

	// RemoveParticipant removes the member, reporting whether it was present
	RemoveParticipant(ctx context.Context, id, memberID int64) (bool, error)

	// SetWinnersIfUnrolled writes winners only while winners IS NULL.
	// Returns false when another resolver got there first.
	SetWinnersIfUnrolled(ctx context.Context, id int64, winners []int64, outcome entities.DrawingOutcome, at time.Time) (bool, error)

	// OverwriteWinners unconditionally replaces winners and outcome
	OverwriteWinners(ctx context.Context, id int64, winners []int64, outcome entities.DrawingOutcome, at time.Time) error

	// GetDue returns drawings with no winners whose deadline is at or before now
	GetDue(ctx context.Context, now time.Time) ([]*entities.Drawing, error)

	// ListOpen returns every drawing still accepting participants in this guild
	ListOpen(ctx context.Context) ([]*entities.Drawing, error)
}

// GateRepository defines the interface for gate data access
type GateRepository interface {
	// Create fails with entities.ErrGateExists when the message is already gated
	Create(ctx context.Context, gate *entities.Gate) error
	GetByMessageID(ctx context.Context, messageID int64) (*entities.Gate, error)
	UpdateRequirements(ctx context.Context, messageID int64, requirements []int64) error
	Delete(ctx context.Context, messageID int64) (bool, error)

	// List returns the gates of the repository's guild, or every gate when unscoped
	List(ctx context.Context) ([]*entities.Gate, error)

	// ListExpiringBetween returns gates whose expiry lies in [from, to]
	ListExpiringBetween(ctx context.Context, from, to time.Time) ([]*entities.Gate, error)
	ListIndefinite(ctx context.Context) ([]*entities.Gate, error)

	// DeleteExpired removes every gate with expires_at < now and returns their ids
	DeleteExpired(ctx context.Context, now time.Time) ([]int64, error)
}

// GateTemplateRepository defines the interface for gate template data access
type GateTemplateRepository interface {
	// Create fails with entities.ErrTemplateExists on duplicate keys
	Create(ctx context.Context, key string, roles []int64) error
	Delete(ctx context.Context, key string) (bool, error)
	List(ctx context.Context) ([]*entities.GateTemplate, error)
	GetByKey(ctx context.Context, key string) (*entities.GateTemplate, error)
	GetByAlias(ctx context.Context, alias string) (*entities.GateTemplate, error)

	// AddAlias fails with entities.ErrAliasTaken when the alias is in use
	AddAlias(ctx context.Context, key, alias string) error
	RemoveAlias(ctx context.Context, alias string) (bool, error)
	AddRole(ctx context.Context, key string, roleID int64) (bool, error)
	RemoveRole(ctx context.Context, key string, roleID int64) (bool, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event) error
}

// TransactionalEventPublisher buffers events until the surrounding transaction commits
type TransactionalEventPublisher interface {
	EventPublisher
	Flush(ctx context.Context) error
	Discard()
}
