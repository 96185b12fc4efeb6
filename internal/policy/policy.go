// Package policy holds the guardrails shared by the console and the CLI:
// which accounts may be deleted and which groups are off-limits.
package policy

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Default UID window inside which user deletion is permitted. System accounts
// and shared high-range accounts stay untouchable.
const (
	DefaultDeleteUIDMin = 1000
	DefaultDeleteUIDMax = 1999
)

// SystemIDBound separates system accounts from regular ones.
const SystemIDBound = 1000

// DeleteUIDRange returns the inclusive UID window in which deletion is
// allowed. USRGRP_DELETE_UID_RANGE ("min-max") overrides the default.
func DeleteUIDRange() (int, int) {
	v := os.Getenv("USRGRP_DELETE_UID_RANGE")
	parts := strings.SplitN(v, "-", 2)
	if len(parts) != 2 {
		return DefaultDeleteUIDMin, DefaultDeleteUIDMax
	}
	lo, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	hi, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil || lo > hi {
		return DefaultDeleteUIDMin, DefaultDeleteUIDMax
	}
	return lo, hi
}

// UserDeleteAllowed reports whether the UID falls in the deletable window.
func UserDeleteAllowed(uid int) bool {
	lo, hi := DeleteUIDRange()
	return uid >= lo && uid <= hi
}

// UserDeleteDenial is the message shown when deletion is refused.
func UserDeleteDenial(uid int) string {
	lo, hi := DeleteUIDRange()
	return fmt.Sprintf("Deletion of UID %d is not allowed (permitted range %d-%d)", uid, lo, hi)
}

// SystemGroup reports whether a group is a system group, which may be neither
// renamed nor deleted.
func SystemGroup(gid int) bool {
	return gid < SystemIDBound
}

// AdminGroup returns the group new administrator accounts are added to.
// USRGRP_ADMIN_GROUP overrides the default.
func AdminGroup() string {
	if g := os.Getenv("USRGRP_ADMIN_GROUP"); g != "" {
		return g
	}
	return "wheel"
}
