package common

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// FormatDiscordTimestamp formats a time as a Discord timestamp that displays in user's local timezone
// Format types: "t" = short time, "T" = long time, "d" = short date, "D" = long date,
// "f" = short date/time, "F" = long date/time, "R" = relative time
func FormatDiscordTimestamp(t time.Time, format string) string {
	return fmt.Sprintf("<t:%d:%s>", t.Unix(), format)
}

// FormatDeadline renders an absolute Discord timestamp followed by a relative hint,
// e.g. "<t:1700000000:F> (3 hours from now)"
func FormatDeadline(deadline, now time.Time) string {
	return fmt.Sprintf("%s (%s)", FormatDiscordTimestamp(deadline, "F"), humanize.RelTime(deadline, now, "ago", "from now"))
}

// FormatCount renders n with thousand separators
func FormatCount(n int) string {
	return humanize.Comma(int64(n))
}

// MentionUsers renders user mentions separated by spaces
func MentionUsers(ids []int64) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, "<@"+strconv.FormatInt(id, 10)+">")
	}
	return strings.Join(parts, " ")
}

// MentionRoles renders role mentions separated by spaces; empty means "no requirement"
func MentionRoles(ids []int64) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, "<@&"+strconv.FormatInt(id, 10)+">")
	}
	return strings.Join(parts, " ")
}

// Truncate cuts s to at most max runes, marking the cut with an ellipsis
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
