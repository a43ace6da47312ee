package entities

import (
	"slices"
	"time"
)

// DrawingOutcome is the persisted result of rolling a drawing
type DrawingOutcome string

const (
	OutcomeWinners                  DrawingOutcome = "winners"
	OutcomeNoParticipants           DrawingOutcome = "no_participants"
	OutcomeInsufficientParticipants DrawingOutcome = "insufficient_participants"
	OutcomeCanceled                 DrawingOutcome = "canceled"
)

// DrawingState is the lifecycle position of a drawing
type DrawingState string

const (
	DrawingStateOpen                   DrawingState = "open"
	DrawingStateResolving              DrawingState = "resolving" // never persisted
	DrawingStateResolved               DrawingState = "resolved"
	DrawingStateCanceledNoParticipants DrawingState = "canceled_no_participants"
	DrawingStateCanceledInsufficient   DrawingState = "canceled_insufficient"
	DrawingStateCanceled               DrawingState = "canceled"
)

// NoWinnerSentinel is stored as winners when a drawing was rolled but nobody won.
// It keeps "rolled, nobody won" distinguishable from "never rolled" (NULL).
var NoWinnerSentinel = []int64{0}

// Drawing represents a single timed giveaway
type Drawing struct {
	ID           int64           `db:"id"`
	GuildID      int64           `db:"guild_id"`
	ChannelID    int64           `db:"channel_id"`
	MessageID    *int64          `db:"message_id"` // NULL until the announcement is posted
	HostID       int64           `db:"host_id"`
	PrizeName    string          `db:"prize_name"`
	ImageURL     *string         `db:"image_url"`
	WinnerCount  int             `db:"winner_count"`
	LengthSecs   int64           `db:"length_seconds"`
	Requirements []int64         `db:"requirements"` // empty means open to everyone
	Participants []int64         `db:"participants"` // join order, no duplicates
	Winners      []int64         `db:"winners"`      // NULL until rolled
	Outcome      *DrawingOutcome `db:"outcome"`
	CreatedAt    time.Time       `db:"created_at"`
	ResolvedAt   *time.Time      `db:"resolved_at"`
}

// Length returns the configured duration of the drawing
func (d *Drawing) Length() time.Duration {
	return time.Duration(d.LengthSecs) * time.Second
}

// Deadline is the instant after which the drawing is due
func (d *Drawing) Deadline() time.Time {
	return d.CreatedAt.Add(d.Length())
}

// IsRolled reports whether winners have been written
func (d *Drawing) IsRolled() bool {
	return d.Winners != nil
}

// IsDue reports whether the scheduler should resolve the drawing at now
func (d *Drawing) IsDue(now time.Time) bool {
	return !d.IsRolled() && !now.Before(d.Deadline())
}

// State derives the lifecycle state from the persisted columns
func (d *Drawing) State() DrawingState {
	if !d.IsRolled() {
		return DrawingStateOpen
	}
	if d.Outcome == nil {
		return DrawingStateResolved
	}
	switch *d.Outcome {
	case OutcomeNoParticipants:
		return DrawingStateCanceledNoParticipants
	case OutcomeInsufficientParticipants:
		return DrawingStateCanceledInsufficient
	case OutcomeCanceled:
		return DrawingStateCanceled
	default:
		return DrawingStateResolved
	}
}

// IsTerminal reports whether the drawing has left the open state
func (d *Drawing) IsTerminal() bool {
	return d.State() != DrawingStateOpen
}

// HasParticipant reports whether the member is on the roster
func (d *Drawing) HasParticipant(memberID int64) bool {
	return slices.Contains(d.Participants, memberID)
}

// EffectiveWinners returns the winners with the no-winner sentinel stripped
func (d *Drawing) EffectiveWinners() []int64 {
	if d.Outcome != nil && *d.Outcome != OutcomeWinners {
		return nil
	}
	return d.Winners
}

// IsOpenToAll reports whether the drawing has no role requirements
func (d *Drawing) IsOpenToAll() bool {
	return len(d.Requirements) == 0
}

// SetMessage sets the announcement message reference
func (d *Drawing) SetMessage(channelID, messageID int64) {
	d.ChannelID = channelID
	d.MessageID = &messageID
}

// HasMessage returns true if the announcement has been posted
func (d *Drawing) HasMessage() bool {
	return d.MessageID != nil && d.ChannelID != 0
}

// Roll records a roll result on the in-memory copy
func (d *Drawing) Roll(winners []int64, outcome DrawingOutcome, at time.Time) {
	d.Winners = winners
	d.Outcome = &outcome
	d.ResolvedAt = &at
}

// RollResult is the tagged outcome of selecting winners for a drawing
type RollResult struct {
	Outcome DrawingOutcome
	Winners []int64 // empty unless Outcome is OutcomeWinners
}

// PersistedWinners returns the value stored in the winners column
func (r RollResult) PersistedWinners() []int64 {
	if r.Outcome != OutcomeWinners || len(r.Winners) == 0 {
		return slices.Clone(NoWinnerSentinel)
	}
	return r.Winners
}
