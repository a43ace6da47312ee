package entities

import "time"

// Gate is a standing role requirement on the reactions of one message
type Gate struct {
	MessageID    int64      `db:"message_id"`
	GuildID      int64      `db:"guild_id"`
	ChannelID    int64      `db:"channel_id"`
	ExpiresAt    *time.Time `db:"expires_at"` // NULL means indefinite
	Requirements []int64    `db:"requirements"`
	CreatedAt    time.Time  `db:"created_at"`
}

// IsIndefinite reports whether the gate never expires
func (g *Gate) IsIndefinite() bool {
	return g.ExpiresAt == nil
}

// IsExpired reports whether the gate is past its expiry at now
func (g *Gate) IsExpired(now time.Time) bool {
	return g.ExpiresAt != nil && now.After(*g.ExpiresAt)
}

// IsNearExpiry reports whether now falls inside the lookahead window before expiry
func (g *Gate) IsNearExpiry(now time.Time, lookahead time.Duration) bool {
	if g.ExpiresAt == nil || g.IsExpired(now) {
		return false
	}
	return !now.Add(lookahead).Before(*g.ExpiresAt)
}

// Admits applies the eligibility predicate to a member's roles
func (g *Gate) Admits(held []int64) bool {
	return Qualifies(held, g.Requirements)
}
