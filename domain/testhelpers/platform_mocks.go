package testhelpers

import (
	"context"
	"fmt"
	"sync"

	"github.com/skyblockz/sbz-giveaway/domain/interfaces"

	"github.com/stretchr/testify/mock"
)

// MockChatPlatform is a mock implementation of ChatPlatform
type MockChatPlatform struct {
	mock.Mock
}

func (m *MockChatPlatform) MemberRoles(ctx context.Context, guildID, memberID int64) ([]int64, error) {
	args := m.Called(ctx, guildID, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockChatPlatform) ListReactions(ctx context.Context, channelID, messageID int64) ([]interfaces.Reaction, error) {
	args := m.Called(ctx, channelID, messageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]interfaces.Reaction), args.Error(1)
}

func (m *MockChatPlatform) RemoveReaction(ctx context.Context, channelID, messageID int64, emoji string, memberID int64) error {
	args := m.Called(ctx, channelID, messageID, emoji, memberID)
	return args.Error(0)
}

func (m *MockChatPlatform) DirectMessage(ctx context.Context, memberID int64, content string) error {
	args := m.Called(ctx, memberID, content)
	return args.Error(0)
}

func (m *MockChatPlatform) MessageExists(ctx context.Context, channelID, messageID int64) (bool, error) {
	args := m.Called(ctx, channelID, messageID)
	return args.Bool(0), args.Error(1)
}

func (m *MockChatPlatform) AddReaction(ctx context.Context, channelID, messageID int64, emoji string) error {
	args := m.Called(ctx, channelID, messageID, emoji)
	return args.Error(0)
}

func (m *MockChatPlatform) ResolveChannel(ctx context.Context, guildID int64, query string) (int64, error) {
	args := m.Called(ctx, guildID, query)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockChatPlatform) ResolveMember(ctx context.Context, guildID int64, query string) (int64, error) {
	args := m.Called(ctx, guildID, query)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockChatPlatform) ResolveRole(ctx context.Context, guildID int64, query string) (int64, error) {
	args := m.Called(ctx, guildID, query)
	return args.Get(0).(int64), args.Error(1)
}

// FakeNoticeTracker is an in-memory NoticeTracker for tests
type FakeNoticeTracker struct {
	mu   sync.Mutex
	seen map[string]bool
}

// NewFakeNoticeTracker creates an empty tracker
func NewFakeNoticeTracker() *FakeNoticeTracker {
	return &FakeNoticeTracker{seen: make(map[string]bool)}
}

func (f *FakeNoticeTracker) FirstNotice(gateMessageID, memberID int64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := fmt.Sprintf("%d:%d", gateMessageID, memberID)
	if f.seen[key] {
		return false
	}
	f.seen[key] = true
	return true
}

func (f *FakeNoticeTracker) ForgetGate(gateMessageID int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	prefix := fmt.Sprintf("%d:", gateMessageID)
	for key := range f.seen {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			delete(f.seen, key)
		}
	}
}

func (f *FakeNoticeTracker) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen = make(map[string]bool)
}

// Count returns how many (gate, member) pairs are recorded
func (f *FakeNoticeTracker) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.seen)
}
