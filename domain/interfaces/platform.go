package interfaces

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when a mention, id or name matches nothing
	ErrNotFound = errors.New("not found")
	// ErrAmbiguous is returned when a name matches more than one object
	ErrAmbiguous = errors.New("ambiguous match")
)

// Reactor is one user who reacted to a message
type Reactor struct {
	UserID int64
	Bot    bool
}

// Reaction groups the users behind one emoji on a message
type Reaction struct {
	Emoji string
	Users []Reactor
}

// ReactionPlatform is the part of the chat platform the lifecycle engine needs
type ReactionPlatform interface {
	// MemberRoles returns the role ids currently held by the member
	MemberRoles(ctx context.Context, guildID, memberID int64) ([]int64, error)

	// ListReactions enumerates every emoji on the message together with its users
	ListReactions(ctx context.Context, channelID, messageID int64) ([]Reaction, error)

	RemoveReaction(ctx context.Context, channelID, messageID int64, emoji string, memberID int64) error
	DirectMessage(ctx context.Context, memberID int64, content string) error
}

// ChatPlatform adds the lookups used by the operator commands
type ChatPlatform interface {
	ReactionPlatform

	// MessageExists reports whether the message can be fetched from the channel
	MessageExists(ctx context.Context, channelID, messageID int64) (bool, error)
	AddReaction(ctx context.Context, channelID, messageID int64, emoji string) error

	// Resolve* accept a mention, a raw id or a name and fail with
	// ErrNotFound or ErrAmbiguous
	ResolveChannel(ctx context.Context, guildID int64, query string) (int64, error)
	ResolveMember(ctx context.Context, guildID int64, query string) (int64, error)
	ResolveRole(ctx context.Context, guildID int64, query string) (int64, error)
}
