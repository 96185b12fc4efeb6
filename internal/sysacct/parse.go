package sysacct

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// ParsePasswd reads passwd-format lines (name:passwd:uid:gid:gecos:home:shell).
// Comment and blank lines are skipped; malformed lines are ignored rather than
// failing the whole listing. Unparseable numeric ids default to 0.
func ParsePasswd(r io.Reader) ([]User, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, err
	}
	var users []User
	for _, line := range lines {
		trim := strings.TrimSpace(line)
		if trim == "" || strings.HasPrefix(trim, "#") {
			continue
		}
		parts := strings.Split(line, ":")
		if len(parts) < 7 {
			continue
		}
		users = append(users, User{
			Name:  parts[0],
			UID:   atoiOrZero(parts[2]),
			GID:   atoiOrZero(parts[3]),
			Gecos: parts[4],
			Home:  parts[5],
			Shell: parts[6],
		})
	}
	return users, nil
}

// ParseGroups reads group-format lines (name:passwd:gid:member,member,...).
func ParseGroups(r io.Reader) ([]Group, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, err
	}
	var groups []Group
	for _, line := range lines {
		trim := strings.TrimSpace(line)
		if trim == "" || strings.HasPrefix(trim, "#") {
			continue
		}
		parts := strings.Split(line, ":")
		if len(parts) < 3 {
			continue
		}
		g := Group{
			Name: parts[0],
			GID:  atoiOrZero(parts[2]),
		}
		if len(parts) >= 4 && parts[3] != "" {
			for _, m := range strings.Split(parts[3], ",") {
				if m != "" {
					g.Members = append(g.Members, m)
				}
			}
		}
		groups = append(groups, g)
	}
	return groups, nil
}

// ParseShells reads /etc/shells, skipping comments and blank lines.
func ParseShells(r io.Reader) ([]string, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, err
	}
	var shells []string
	for _, line := range lines {
		trim := strings.TrimSpace(line)
		if trim == "" || strings.HasPrefix(trim, "#") {
			continue
		}
		shells = append(shells, trim)
	}
	return shells, nil
}

func readLines(r io.Reader) ([]string, error) {
	s := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	s.Buffer(buf, 1024*1024)
	var lines []string
	for s.Scan() {
		lines = append(lines, s.Text())
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
