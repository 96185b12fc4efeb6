// Package search derives the visible user and group lists from the full
// lists, the persistent filter settings and a transient query string.
package search

import (
	"strconv"
	"strings"

	"github.com/aklyachkin/usrgrp/internal/filterconf"
	"github.com/aklyachkin/usrgrp/internal/sysacct"
)

// Accounts with ids at or above this bound are regular (non-system).
const regularIDMin = 1000

// VisibleUsers filters users by the persistent settings. When active is true
// and the query is non-empty it then narrows by case-insensitive substring
// over login name, full name, home, shell, UID and primary GID (numeric
// fields in decimal form). Source order is preserved.
func VisibleUsers(all []sysacct.User, st filterconf.Settings, query string, active bool) []sysacct.User {
	out := make([]sysacct.User, 0, len(all))
	for _, u := range all {
		if !userPassesFilters(u, st) {
			continue
		}
		out = append(out, u)
	}
	q := strings.ToLower(query)
	if !active || q == "" {
		return out
	}
	matched := out[:0:0]
	for _, u := range out {
		if userMatches(u, q) {
			matched = append(matched, u)
		}
	}
	return matched
}

// VisibleGroups is the group-side counterpart: filter by the group selector,
// then match name, GID or any member name.
func VisibleGroups(all []sysacct.Group, st filterconf.Settings, query string, active bool) []sysacct.Group {
	out := make([]sysacct.Group, 0, len(all))
	for _, g := range all {
		switch st.Groups {
		case filterconf.FilterRegular:
			if g.GID < regularIDMin {
				continue
			}
		case filterconf.FilterSystem:
			if g.GID >= regularIDMin {
				continue
			}
		}
		out = append(out, g)
	}
	q := strings.ToLower(query)
	if !active || q == "" {
		return out
	}
	matched := out[:0:0]
	for _, g := range out {
		if groupMatches(g, q) {
			matched = append(matched, g)
		}
	}
	return matched
}

func userPassesFilters(u sysacct.User, st filterconf.Settings) bool {
	switch st.Users {
	case filterconf.FilterRegular:
		if u.UID < regularIDMin {
			return false
		}
	case filterconf.FilterSystem:
		if u.UID >= regularIDMin {
			return false
		}
	}
	c := st.Chips
	if c.Inactive && !InactiveShell(u.Shell) {
		return false
	}
	if c.NoHome && !u.HomeMissing {
		return false
	}
	if c.Locked && !u.Locked {
		return false
	}
	if c.NoPassword && !u.NoPassword {
		return false
	}
	if c.Expired && !u.Expired {
		return false
	}
	return true
}

func userMatches(u sysacct.User, q string) bool {
	return strings.Contains(strings.ToLower(u.Name), q) ||
		strings.Contains(strings.ToLower(u.Gecos), q) ||
		strings.Contains(strings.ToLower(u.Home), q) ||
		strings.Contains(strings.ToLower(u.Shell), q) ||
		strings.Contains(strconv.Itoa(u.UID), q) ||
		strings.Contains(strconv.Itoa(u.GID), q)
}

func groupMatches(g sysacct.Group, q string) bool {
	if strings.Contains(strings.ToLower(g.Name), q) ||
		strings.Contains(strconv.Itoa(g.GID), q) {
		return true
	}
	for _, m := range g.Members {
		if strings.Contains(strings.ToLower(m), q) {
			return true
		}
	}
	return false
}

// InactiveShell reports whether a login shell denies interactive login.
func InactiveShell(shell string) bool {
	return strings.HasSuffix(shell, "nologin") || strings.HasSuffix(shell, "/false")
}
