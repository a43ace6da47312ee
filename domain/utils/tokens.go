package utils

import (
	"strconv"
	"strings"
)

// SplitTokens splits a requirement list on commas and whitespace
func SplitTokens(raw string) []string {
	return strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
}

// ParseSnowflake accepts a raw id or a user, role or channel mention
func ParseSnowflake(token string) (int64, bool) {
	t := strings.TrimSpace(token)
	if strings.HasPrefix(t, "<") && strings.HasSuffix(t, ">") {
		t = strings.TrimSuffix(strings.TrimPrefix(t, "<"), ">")
		t = strings.TrimLeft(t, "@&!#")
	}
	if t == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(t, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// FormatIDs renders ids as a comma separated list of mentions using the given prefix,
// e.g. "<@&" for roles or "<@" for users
func FormatIDs(ids []int64, prefix string) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, prefix+strconv.FormatInt(id, 10)+">")
	}
	return strings.Join(parts, ", ")
}
