package application

import (
	"fmt"
	"strings"

	"github.com/patrickmn/go-cache"
)

// NoticeCache remembers which (gate, member) pairs were already sent an
// eviction notice. It is process-local; losing it only repeats a notice.
type NoticeCache struct {
	entries *cache.Cache
}

// NewNoticeCache creates an empty cache. Entries live until Reset or ForgetGate.
func NewNoticeCache() *NoticeCache {
	return &NoticeCache{
		entries: cache.New(cache.NoExpiration, 0),
	}
}

func noticeKey(gateMessageID, memberID int64) string {
	return fmt.Sprintf("%d:%d", gateMessageID, memberID)
}

// FirstNotice records the pair and reports whether it was not yet present
func (c *NoticeCache) FirstNotice(gateMessageID, memberID int64) bool {
	return c.entries.Add(noticeKey(gateMessageID, memberID), struct{}{}, cache.NoExpiration) == nil
}

// ForgetGate drops every entry of one gate
func (c *NoticeCache) ForgetGate(gateMessageID int64) {
	prefix := fmt.Sprintf("%d:", gateMessageID)
	for key := range c.entries.Items() {
		if strings.HasPrefix(key, prefix) {
			c.entries.Delete(key)
		}
	}
}

// Reset empties the cache
func (c *NoticeCache) Reset() {
	c.entries.Flush()
}

// Len returns the number of remembered pairs
func (c *NoticeCache) Len() int {
	return c.entries.ItemCount()
}
