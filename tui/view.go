package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/aklyachkin/usrgrp/internal/filterconf"
	"github.com/aklyachkin/usrgrp/internal/search"
	"github.com/aklyachkin/usrgrp/internal/sysacct"
)

var outerStyle = lipgloss.NewStyle().Padding(1, 2)

func (m appModel) View() string {
	var b strings.Builder

	title := StyleTitle.Render("usrgrp") + "  " +
		StyleSubtitle.Render(fmt.Sprintf("%d users, %d groups", len(m.users), len(m.groups)))
	b.WriteString(headerLine(title, m.width, m.now))
	b.WriteString("\n\n")
	b.WriteString(m.tabBar())
	b.WriteString("\n")
	if fl := m.filterLine(); fl != "" {
		b.WriteString(fl)
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if m.modal != nil {
		b.WriteString(m.modalView())
	} else if m.activeTab == tabUsers {
		b.WriteString(m.usersView())
	} else {
		b.WriteString(m.groupsView())
	}
	b.WriteString("\n")

	if m.inputMode == modeSearchUsers || m.inputMode == modeSearchGroups {
		b.WriteString(m.search.View())
		b.WriteString("\n")
	}
	b.WriteString(m.footer())

	return outerStyle.Render(b.String())
}

func (m appModel) tabBar() string {
	users := StyleTab.Render("Users")
	groups := StyleTab.Render("Groups")
	if m.activeTab == tabUsers {
		users = StyleTabActive.Render("Users")
	} else {
		groups = StyleTabActive.Render("Groups")
	}
	return users + " " + groups
}

// filterLine summarizes the active filters and committed search query.
func (m appModel) filterLine() string {
	var parts []string
	sel := m.settings.Users
	query := m.userQuery
	if m.activeTab == tabGroups {
		sel = m.settings.Groups
		query = m.groupQuery
	}
	if sel != filterconf.FilterNone {
		parts = append(parts, "show: "+sel)
	}
	if m.activeTab == tabUsers {
		c := m.settings.Chips
		for _, chip := range []struct {
			on   bool
			name string
		}{
			{c.Inactive, "inactive-shell"},
			{c.NoHome, "no-home"},
			{c.Locked, "locked"},
			{c.NoPassword, "no-password"},
			{c.Expired, "expired"},
		} {
			if chip.on {
				parts = append(parts, chip.name)
			}
		}
	}
	if query != "" {
		parts = append(parts, "search: "+query)
	}
	if len(parts) == 0 {
		return ""
	}
	return StyleWarning.Render("⚑ " + strings.Join(parts, " · "))
}

func (m appModel) usersView() string {
	table := m.userTable()
	pane := m.memberOfPane()
	return lipgloss.JoinHorizontal(lipgloss.Top, table, "  ", pane)
}

func (m appModel) userTable() string {
	var b strings.Builder
	b.WriteString(StyleSubtitle.Render(fmt.Sprintf("%-6s %-16s %-22s %-20s %-18s %s",
		"UID", "NAME", "FULL NAME", "HOME", "SHELL", "FLAGS")))
	b.WriteString("\n")
	start := windowStart(m.selUser, len(m.users), m.rowsPerPage)
	for i := start; i < len(m.users) && i < start+m.rowsPerPage; i++ {
		u := m.users[i]
		row := fmt.Sprintf("%-6d %-16s %-22s %-20s %-18s %s",
			u.UID, truncate(u.Name, 16), truncate(u.Gecos, 22),
			truncate(u.Home, 20), truncate(u.Shell, 18), userFlags(u))
		if i == m.selUser && m.usersFocus == focusList {
			row = StyleSelected.Render(row)
		}
		b.WriteString(row)
		b.WriteString("\n")
	}
	if len(m.users) == 0 {
		b.WriteString(StyleDim.Render("  no users match"))
		b.WriteString("\n")
	}
	return b.String()
}

// userFlags is the compact per-row state column: locked, no password, expired,
// missing home, non-login shell.
func userFlags(u sysacct.User) string {
	var f []byte
	if u.Locked {
		f = append(f, 'L')
	}
	if u.NoPassword {
		f = append(f, 'P')
	}
	if u.Expired {
		f = append(f, 'E')
	}
	if u.HomeMissing {
		f = append(f, 'H')
	}
	if search.InactiveShell(u.Shell) {
		f = append(f, '!')
	}
	return string(f)
}

func (m appModel) memberOfPane() string {
	var b strings.Builder
	heading := "MEMBER OF"
	if m.usersFocus == focusMemberOf {
		heading = "MEMBER OF ◀"
	}
	b.WriteString(StyleSubtitle.Render(heading))
	b.WriteString("\n")
	groups := m.memberOfGroups()
	u := m.selectedUser()
	start := windowStart(m.selMember, len(groups), m.rowsPerPage)
	for i := start; i < len(groups) && i < start+m.rowsPerPage; i++ {
		g := groups[i]
		label := fmt.Sprintf("%-18s %d", truncate(g.Name, 18), g.GID)
		if u != nil && g.GID == u.GID {
			label += " *"
		}
		if i == m.selMember && m.usersFocus == focusMemberOf {
			label = StyleSelected.Render(label)
		}
		b.WriteString(label)
		b.WriteString("\n")
	}
	if len(groups) == 0 {
		b.WriteString(StyleDim.Render("  none"))
		b.WriteString("\n")
	}
	return b.String()
}

func (m appModel) groupsView() string {
	var b strings.Builder
	b.WriteString(StyleSubtitle.Render(fmt.Sprintf("%-6s %-20s %s", "GID", "NAME", "MEMBERS")))
	b.WriteString("\n")
	start := windowStart(m.selGroup, len(m.groups), m.rowsPerPage)
	for i := start; i < len(m.groups) && i < start+m.rowsPerPage; i++ {
		g := m.groups[i]
		row := fmt.Sprintf("%-6d %-20s %s",
			g.GID, truncate(g.Name, 20), truncate(strings.Join(g.Members, ", "), 50))
		if i == m.selGroup {
			row = StyleSelected.Render(row)
		}
		b.WriteString(row)
		b.WriteString("\n")
	}
	if len(m.groups) == 0 {
		b.WriteString(StyleDim.Render("  no groups match"))
		b.WriteString("\n")
	}
	return b.String()
}

func (m appModel) footer() string {
	if m.showKeybinds {
		return StyleHelp.Render(
			"enter actions · tab switch tab · shift+tab member pane · / search · f filter\n" +
				"n new · delete remove · ? help · K hide keys · q quit")
	}
	return StyleHelp.Render("? help · K keys · q quit")
}

// windowStart positions the visible window so the cursor stays in view.
func windowStart(sel, total, rows int) int {
	if total <= rows {
		return 0
	}
	start := sel - rows + 1
	if start < 0 {
		start = 0
	}
	if start > total-rows {
		start = total - rows
	}
	return start
}

// truncate shortens s to max runes, never splitting a multibyte rune.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 1 {
		return string(r[:max])
	}
	return string(r[:max-1]) + "…"
}
