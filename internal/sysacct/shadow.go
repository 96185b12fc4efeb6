package sysacct

import (
	"io"
	"strconv"
	"strings"
	"time"
)

// ShadowInfo is the password state derived from one shadow entry.
type ShadowInfo struct {
	Locked     bool
	NoPassword bool
	Expired    bool
}

// ParseShadow reads shadow-format lines and derives per-user password state.
// now is used to evaluate account expiry (field 8, days since the epoch).
func ParseShadow(r io.Reader, now time.Time) (map[string]ShadowInfo, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, err
	}
	today := int(now.Unix() / 86400)
	out := make(map[string]ShadowInfo)
	for _, line := range lines {
		trim := strings.TrimSpace(line)
		if trim == "" || strings.HasPrefix(trim, "#") {
			continue
		}
		parts := strings.Split(line, ":")
		if len(parts) < 2 {
			continue
		}
		for len(parts) < 9 {
			parts = append(parts, "")
		}
		hash := parts[1]
		info := ShadowInfo{
			Locked:     strings.HasPrefix(hash, "!") || hash == "*",
			NoPassword: hash == "",
		}
		// lastchange == 0 means the password must be changed at next login
		// (the effect of chage -d 0).
		if parts[2] == "0" {
			info.Expired = true
		}
		if expire, err := strconv.Atoi(parts[7]); err == nil && expire > 0 && expire <= today {
			info.Expired = true
		}
		out[parts[0]] = info
	}
	return out, nil
}
