package sysacct

import (
	"os"
	"sort"
	"time"
)

// Source lists users and groups from account database files. Paths are
// overridable so listings can be pointed at copies or fixtures.
type Source struct {
	PasswdPath string
	GroupPath  string
	ShadowPath string
	ShellsPath string

	// Now is used for password-expiry evaluation; defaults to time.Now.
	Now func() time.Time
}

// NewSource returns a Source reading the standard /etc paths.
func NewSource() *Source {
	return &Source{
		PasswdPath: "/etc/passwd",
		GroupPath:  "/etc/group",
		ShadowPath: "/etc/shadow",
		ShellsPath: "/etc/shells",
	}
}

// ListUsers reads the passwd database sorted by UID, annotated with shadow
// state and home-directory existence. The shadow database is typically only
// readable by root; annotations stay false when it cannot be read.
func (s *Source) ListUsers() ([]User, error) {
	f, err := os.Open(s.PasswdPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	users, err := ParsePasswd(f)
	if err != nil {
		return nil, err
	}

	if sf, err := os.Open(s.ShadowPath); err == nil {
		info, perr := ParseShadow(sf, s.now())
		sf.Close()
		if perr == nil {
			for i := range users {
				if si, ok := info[users[i].Name]; ok {
					users[i].Locked = si.Locked
					users[i].NoPassword = si.NoPassword
					users[i].Expired = si.Expired
				}
			}
		}
	}
	for i := range users {
		if users[i].Home == "" {
			users[i].HomeMissing = true
			continue
		}
		if _, err := os.Stat(users[i].Home); err != nil {
			users[i].HomeMissing = true
		}
	}

	sort.SliceStable(users, func(i, j int) bool { return users[i].UID < users[j].UID })
	return users, nil
}

// ListGroups reads the group database sorted by GID.
func (s *Source) ListGroups() ([]Group, error) {
	f, err := os.Open(s.GroupPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	groups, err := ParseGroups(f)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].GID < groups[j].GID })
	return groups, nil
}

// ListShells reads the valid login shells.
func (s *Source) ListShells() ([]string, error) {
	f, err := os.Open(s.ShellsPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseShells(f)
}

func (s *Source) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
