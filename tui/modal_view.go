package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aklyachkin/usrgrp/internal/keymap"
	"github.com/aklyachkin/usrgrp/internal/policy"
)

func (m appModel) modalView() string {
	md := m.modal
	switch md.kind {
	case modalInfo:
		body := md.message + "\n\n" + StyleDim.Render("enter to dismiss")
		return StyleModal.Render(body)

	case modalHelp:
		return StyleModal.Render(m.helpBody())

	case modalSudoPrompt:
		var b strings.Builder
		b.WriteString(StyleTitle.Render("Authentication required"))
		b.WriteString("\n")
		if md.errMsg != "" {
			b.WriteString(StyleError.Render(md.errMsg))
			b.WriteString("\n")
		}
		if md.pending != nil {
			b.WriteString(StyleSubtitle.Render(md.pending.describe()))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(md.input.View())
		b.WriteString("\n\n")
		b.WriteString(StyleDim.Render("enter submit · esc cancel"))
		return StyleModal.Render(b.String())

	case modalFilterMenu:
		return StyleModal.Render(m.filterMenuBody())

	case modalUserActions:
		return renderMenu("User: "+m.selectedUserName(), []string{"Modify", "Delete"}, md.menuSel)

	case modalUserModify:
		return renderMenu("Modify "+m.selectedUserName(),
			[]string{"Add to groups", "Remove from groups", "Change details", "Password"}, md.menuSel)

	case modalUserDetails:
		return renderMenu("Details of "+m.selectedUserName(),
			[]string{"Username", "Full name", "Login shell"}, md.menuSel)

	case modalPasswordMenu:
		return renderMenu("Password of "+m.selectedUserName(),
			[]string{"Change password", "Force change at next login"}, md.menuSel)

	case modalUserGroupsAdd:
		var names []string
		if u := m.selectedUser(); u != nil {
			for _, g := range m.groupsToJoin(*u) {
				names = append(names, fmt.Sprintf("%-18s %d", truncate(g.Name, 18), g.GID))
			}
		}
		return renderPicker("Add "+m.selectedUserName()+" to groups", names, &md.pick)

	case modalUserGroupsRemove:
		var names []string
		if u := m.selectedUser(); u != nil {
			for _, g := range m.groupsOfUser(*u) {
				label := fmt.Sprintf("%-18s %d", truncate(g.Name, 18), g.GID)
				if g.GID == u.GID {
					label += " (primary)"
				}
				names = append(names, label)
			}
		}
		return renderPicker("Remove "+m.selectedUserName()+" from groups", names, &md.pick)

	case modalShellPicker:
		return renderPicker("Login shell for "+m.selectedUserName(), md.shells, &md.pick)

	case modalTextInput:
		title := "New username"
		if md.field == fieldFullname {
			title = "Full name"
		}
		return renderInput(title+" for "+m.selectedUserName(), md.input.View(), "")

	case modalUserDelete:
		extra := checkbox("also remove home directory", md.deleteHome)
		return renderConfirm("Delete user "+m.selectedUserName()+"?", md.menuSel, extra)

	case modalChangePassword:
		var b strings.Builder
		b.WriteString(StyleTitle.Render("Change password of " + m.selectedUserName()))
		b.WriteString("\n\n")
		b.WriteString(formRow(md.menuSel == pwRowPassword, md.password.View()))
		b.WriteString(formRow(md.menuSel == pwRowConfirm, md.confirm.View()))
		b.WriteString(formRow(md.menuSel == pwRowMustChange, checkbox("must change at next login", md.mustChange)))
		b.WriteString(formRow(md.menuSel == pwRowSubmit, "[ apply ]"))
		if md.errMsg != "" {
			b.WriteString("\n")
			b.WriteString(StyleError.Render(md.errMsg))
		}
		return StyleModal.Render(b.String())

	case modalUserCreate:
		var b strings.Builder
		b.WriteString(StyleTitle.Render("New user"))
		b.WriteString("\n\n")
		b.WriteString(formRow(md.menuSel == cuRowName, md.input.View()))
		b.WriteString(formRow(md.menuSel == cuRowPassword, md.password.View()))
		b.WriteString(formRow(md.menuSel == cuRowConfirm, md.confirm.View()))
		b.WriteString(formRow(md.menuSel == cuRowCreateHome, checkbox("create home directory", md.createHome)))
		b.WriteString(formRow(md.menuSel == cuRowAdmin, checkbox("add to "+policy.AdminGroup()+" group", md.addToAdmin)))
		b.WriteString(formRow(md.menuSel == cuRowSubmit, "[ create ]"))
		if md.errMsg != "" {
			b.WriteString("\n")
			b.WriteString(StyleError.Render(md.errMsg))
		}
		return StyleModal.Render(b.String())

	case modalGroupActions:
		return renderMenu("Group: "+m.targetGroupName(),
			[]string{"Create group", "Delete group", "Modify group"}, md.menuSel)

	case modalGroupModify:
		return renderMenu("Modify "+m.targetGroupName(),
			[]string{"Add members", "Remove members", "Rename"}, md.menuSel)

	case modalGroupCreate:
		return renderInput("New group", md.input.View(), "")

	case modalGroupRename:
		return renderInput("Rename group "+m.targetGroupName(), md.input.View(), "")

	case modalGroupDelete:
		return renderConfirm("Delete group "+m.targetGroupName()+"?", md.menuSel, "")

	case modalGroupAddMembers:
		var names []string
		if g := m.targetGroup(); g != nil {
			for _, u := range m.membersToAdd(*g) {
				names = append(names, fmt.Sprintf("%-18s %d", truncate(u.Name, 18), u.UID))
			}
		}
		return renderPicker("Add members to "+m.targetGroupName(), names, &md.pick)

	case modalGroupRemoveMembers:
		var names []string
		if g := m.targetGroup(); g != nil {
			names = g.Members
		}
		return renderPicker("Remove members from "+m.targetGroupName(), names, &md.pick)
	}
	return ""
}

func (m appModel) selectedUserName() string {
	if u := m.selectedUser(); u != nil {
		return u.Name
	}
	return "?"
}

func (m appModel) targetGroupName() string {
	if g := m.targetGroup(); g != nil {
		return g.Name
	}
	return "?"
}

func renderMenu(title string, items []string, sel int) string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n\n")
	for i, it := range items {
		if i == sel {
			b.WriteString(StyleSelected.Render("▸ " + it))
		} else {
			b.WriteString("  " + it)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("enter select · backspace back · esc close"))
	return StyleModal.Render(b.String())
}

func renderPicker(title string, items []string, p *picker) string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n\n")
	end := p.offset + pickerWindow
	if end > len(items) {
		end = len(items)
	}
	for i := p.offset; i < end; i++ {
		mark := "[ ]"
		if _, ok := p.multi[i]; ok {
			mark = StyleMarker.Render("[x]")
		}
		line := mark + " " + items[i]
		if i == p.selected {
			line = StyleSelected.Render("▸ ") + line
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	if len(items) == 0 {
		b.WriteString(StyleDim.Render("  nothing to pick"))
		b.WriteString("\n")
	}
	if len(items) > pickerWindow {
		b.WriteString(StyleDim.Render(fmt.Sprintf("  %d/%d", p.selected+1, len(items))))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("space mark · enter apply · backspace back"))
	return StyleModal.Render(b.String())
}

func renderConfirm(question string, sel int, extra string) string {
	var b strings.Builder
	b.WriteString(StyleWarning.Render(question))
	b.WriteString("\n\n")
	yes, no := "  Yes  ", "  No  "
	if sel == 0 {
		yes = StyleSelected.Render("▸ Yes ◂")
	} else {
		no = StyleSelected.Render("▸ No ◂")
	}
	b.WriteString(yes + "   " + no)
	b.WriteString("\n")
	if extra != "" {
		b.WriteString("\n")
		b.WriteString(extra)
		b.WriteString("\n")
		b.WriteString(StyleDim.Render("space toggles"))
		b.WriteString("\n")
	}
	return StyleModal.Render(b.String())
}

func renderInput(title, inputView, hint string) string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n\n")
	b.WriteString(inputView)
	b.WriteString("\n\n")
	if hint == "" {
		hint = "enter apply · esc cancel"
	}
	b.WriteString(StyleDim.Render(hint))
	return StyleModal.Render(b.String())
}

func formRow(focused bool, content string) string {
	if focused {
		return StyleSelected.Render("▸") + " " + content + "\n"
	}
	return "  " + content + "\n"
}

func checkbox(label string, on bool) string {
	if on {
		return StyleMarker.Render("[x]") + " " + label
	}
	return "[ ] " + label
}

func (m appModel) filterMenuBody() string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render("Filters"))
	b.WriteString("\n\n")

	sel := m.settings.Users
	if m.activeTab == tabGroups {
		sel = m.settings.Groups
	}
	radio := func(label, value string) string {
		if sel == value {
			return StyleMarker.Render("(•)") + " " + label
		}
		return "( ) " + label
	}
	rows := []string{
		radio("all accounts", ""),
		radio("regular only", "regular"),
		radio("system only", "system"),
	}
	if m.activeTab == tabUsers {
		c := m.settings.Chips
		rows = append(rows,
			checkbox("inactive login shell", c.Inactive),
			checkbox("home directory missing", c.NoHome),
			checkbox("account locked", c.Locked),
			checkbox("no password set", c.NoPassword),
			checkbox("password expired", c.Expired),
		)
	}
	for i, r := range rows {
		if i == m.modal.menuSel {
			b.WriteString(StyleSelected.Render("▸ ") + r)
		} else {
			b.WriteString("  " + r)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("enter/space apply · esc close"))
	return b.String()
}

// helpWindow is the number of help lines shown at once.
const helpWindow = 14

func (m appModel) helpBody() string {
	actions := []keymap.Action{
		keymap.ActionConfirm, keymap.ActionSwitchTab, keymap.ActionToggleFocus,
		keymap.ActionMoveUp, keymap.ActionMoveDown,
		keymap.ActionPageBack, keymap.ActionPageForward,
		keymap.ActionPageUp, keymap.ActionPageDown,
		keymap.ActionStartSearch, keymap.ActionOpenFilter,
		keymap.ActionNewUser, keymap.ActionDelete,
		keymap.ActionToggleKeybinds, keymap.ActionOpenHelp, keymap.ActionQuit,
	}
	var lines []string
	for _, a := range actions {
		keys := m.keys.KeysFor(a)
		sort.Strings(keys)
		lines = append(lines, fmt.Sprintf("%-18s %s", strings.Join(keys, ", "), a.String()))
	}

	scroll := m.modal.helpScroll
	if max := len(lines) - helpWindow; scroll > max {
		scroll = max
	}
	if scroll < 0 {
		scroll = 0
	}
	end := scroll + helpWindow
	if end > len(lines) {
		end = len(lines)
	}

	var b strings.Builder
	b.WriteString(StyleTitle.Render("Key bindings"))
	b.WriteString("\n\n")
	for _, l := range lines[scroll:end] {
		b.WriteString(l)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("j/k scroll · enter close"))
	return b.String()
}
