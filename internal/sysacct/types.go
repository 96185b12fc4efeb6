// Package sysacct reads the system account database: /etc/passwd, /etc/group,
// /etc/shadow (best effort) and /etc/shells.
package sysacct

// User is one account from the passwd database, annotated with shadow and
// home-directory state when available.
type User struct {
	Name  string
	UID   int
	GID   int // primary group
	Gecos string
	Home  string
	Shell string

	// Best-effort annotations; false when the shadow database is unreadable.
	Locked      bool
	NoPassword  bool
	Expired     bool
	HomeMissing bool
}

// Group is one entry from the group database.
type Group struct {
	Name    string
	GID     int
	Members []string
}

// HasMember reports whether name appears in the supplementary member list.
func (g Group) HasMember(name string) bool {
	for _, m := range g.Members {
		if m == name {
			return true
		}
	}
	return false
}
