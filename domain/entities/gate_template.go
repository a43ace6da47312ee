package entities

import "slices"

// GateTemplate is a named shorthand for a set of role ids.
// Gates copy the roles at creation time and keep no reference to the template.
type GateTemplate struct {
	Key     string   `db:"key"`
	Roles   []int64  `db:"roles"`
	Aliases []string `db:"aliases"`
}

// HasRole reports whether the role is part of the template
func (t *GateTemplate) HasRole(roleID int64) bool {
	return slices.Contains(t.Roles, roleID)
}

// Matches reports whether the token names this template by key or alias
func (t *GateTemplate) Matches(token string) bool {
	return t.Key == token || slices.Contains(t.Aliases, token)
}
