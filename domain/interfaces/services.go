package interfaces

import (
	"context"
	"time"

	"github.com/skyblockz/sbz-giveaway/domain/entities"
)

// RosterResult is the outcome of a roster mutation
type RosterResult string

const (
	RosterQualified  RosterResult = "qualified"
	RosterRejected   RosterResult = "rejected"
	RosterRemoved    RosterResult = "removed"
	RosterNotPresent RosterResult = "not_present"
)

// RosterChange describes what a roster operation did
type RosterChange struct {
	Result  RosterResult
	Changed bool // false for idempotent repeats
	Drawing *entities.Drawing
}

// RosterService maintains the participant list of open drawings
type RosterService interface {
	// Add applies the eligibility predicate and appends the member once.
	// Fails with entities.ErrRosterLocked after the drawing was rolled.
	Add(ctx context.Context, drawingID, memberID int64, held []int64) (*RosterChange, error)

	// Remove drops the member. Fails with entities.ErrRosterLocked after the drawing was rolled.
	Remove(ctx context.Context, drawingID, memberID int64) (*RosterChange, error)

	// ForceAdd is Add on an operator's behalf, without a reaction
	ForceAdd(ctx context.Context, drawingID, memberID int64, held []int64) (*RosterChange, error)
}

// CreateDrawingParams collects the host's answers for a new drawing
type CreateDrawingParams struct {
	GuildID      int64
	ChannelID    int64
	HostID       int64
	PrizeName    string
	ImageURL     *string
	WinnerCount  int
	Length       time.Duration
	Requirements []int64
	CreatedAt    time.Time // defaults to now
}

// Resolution is the result of rolling a drawing
type Resolution struct {
	Drawing *entities.Drawing
	Result  entities.RollResult
}

// DrawingService drives the drawing state machine
type DrawingService interface {
	Create(ctx context.Context, params CreateDrawingParams) (*entities.Drawing, error)
	AttachMessage(ctx context.Context, drawingID, channelID, messageID int64) error
	Get(ctx context.Context, drawingID int64) (*entities.Drawing, error)
	FindByMessageID(ctx context.Context, messageID int64) (*entities.Drawing, error)
	ListDue(ctx context.Context, now time.Time) ([]*entities.Drawing, error)
	ListOpen(ctx context.Context) ([]*entities.Drawing, error)

	// Resolve rolls a due drawing exactly once. A drawing that is already
	// rolled yields entities.ErrAlreadyResolved.
	Resolve(ctx context.Context, drawingID int64, now time.Time) (*Resolution, error)

	// Reroll selects new winners regardless of the current state
	Reroll(ctx context.Context, drawingID int64, now time.Time) (*Resolution, error)

	// Cancel ends an open drawing without winners
	Cancel(ctx context.Context, drawingID int64, now time.Time) (*entities.Drawing, error)
}

// CreateGateParams describes a new gate
type CreateGateParams struct {
	GuildID   int64
	ChannelID int64
	MessageID int64
	Tokens    []string // role ids or template keys/aliases
	ExpiresAt *time.Time
}

// SweepReport summarizes one reconciliation pass over a gated message
type SweepReport struct {
	GateMessageID int64
	Scanned       int
	Evicted       int
	Notified      int
	Failed        int
}

// GateService owns gate lifecycle and reconciliation
type GateService interface {
	Create(ctx context.Context, params CreateGateParams) (*entities.Gate, error)
	Modify(ctx context.Context, messageID int64, tokens []string) (*entities.Gate, error)
	Delete(ctx context.Context, messageID int64) error
	Get(ctx context.Context, messageID int64) (*entities.Gate, error)
	List(ctx context.Context) ([]*entities.Gate, error)
	ListNearExpiry(ctx context.Context, now time.Time, lookahead time.Duration) ([]*entities.Gate, error)
	ListIndefinite(ctx context.Context) ([]*entities.Gate, error)
	PurgeExpired(ctx context.Context, now time.Time) (int, error)

	// Sweep evicts every human reactor that fails the gate's requirements
	Sweep(ctx context.Context, gate *entities.Gate) (*SweepReport, error)

	// EvaluateReaction applies the same rule to a single fresh reaction
	EvaluateReaction(ctx context.Context, gate *entities.Gate, memberID int64, emoji string) (evicted bool, err error)
}

// TemplateService manages gate templates and expands requirement tokens
type TemplateService interface {
	Create(ctx context.Context, key string, roles []int64) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) ([]*entities.GateTemplate, error)
	AddAlias(ctx context.Context, key, alias string) error
	RemoveAlias(ctx context.Context, alias string) error
	AddRole(ctx context.Context, key string, roleID int64) error
	RemoveRole(ctx context.Context, key string, roleID int64) error

	// Resolve finds a template by primary key first, then by alias
	Resolve(ctx context.Context, token string) (*entities.GateTemplate, error)

	// ExpandRequirements replaces template tokens by their role ids in place
	ExpandRequirements(ctx context.Context, tokens []string) ([]int64, error)
}

// NoticeTracker remembers which members were already told about an eviction
type NoticeTracker interface {
	// FirstNotice records (gate, member) and reports whether it was new
	FirstNotice(gateMessageID, memberID int64) bool
	ForgetGate(gateMessageID int64)
	Reset()
}
