package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/aklyachkin/usrgrp/internal/policy"
	"github.com/aklyachkin/usrgrp/internal/sysacct"
)

// User-side modal flows: the actions menu opened with Enter on a user row and
// everything reachable from it.

func (m appModel) openUserActions() appModel {
	if m.selectedUser() == nil {
		return m
	}
	return m.openModal(&modal{kind: modalUserActions})
}

func (m appModel) updateUserActions(msg tea.KeyMsg) appModel {
	const total = 2 // modify, delete
	switch msg.String() {
	case "up", "k":
		m.modal.menuSel = menuMove(m.modal.menuSel, -1, total)
	case "down", "j":
		m.modal.menuSel = menuMove(m.modal.menuSel, 1, total)
	case "backspace":
		return m.closeModal()
	case "enter":
		switch m.modal.menuSel {
		case 0:
			return m.openModal(&modal{kind: modalUserModify})
		case 1:
			return m.openUserDelete()
		}
	}
	return m
}

// openUserDelete gates deletion on the permitted UID window before any
// confirmation is shown.
func (m appModel) openUserDelete() appModel {
	u := m.selectedUser()
	if u == nil {
		return m.closeModal()
	}
	if !policy.UserDeleteAllowed(u.UID) {
		return m.showInfo(policy.UserDeleteDenial(u.UID))
	}
	// Confirmation starts on No.
	return m.openModal(&modal{kind: modalUserDelete, menuSel: 1, allowed: true})
}

func (m appModel) updateUserDelete(msg tea.KeyMsg) (appModel, tea.Cmd) {
	u := m.selectedUser()
	if u == nil {
		return m.closeModal(), nil
	}
	switch msg.String() {
	case "left", "h", "right", "l", "tab":
		m.modal.menuSel = 1 - m.modal.menuSel
	case " ":
		m.modal.deleteHome = !m.modal.deleteHome
	case "backspace":
		return m.openModal(&modal{kind: modalUserActions, menuSel: 1}), nil
	case "enter":
		if m.modal.menuSel != 0 || !m.modal.allowed {
			return m.closeModal(), nil
		}
		return m.perform(deleteUser{name: u.Name, removeHome: m.modal.deleteHome}), nil
	}
	return m, nil
}

func (m appModel) updateUserModify(msg tea.KeyMsg) appModel {
	const total = 4 // add to groups, remove from groups, change details, password
	switch msg.String() {
	case "up", "k":
		m.modal.menuSel = menuMove(m.modal.menuSel, -1, total)
	case "down", "j":
		m.modal.menuSel = menuMove(m.modal.menuSel, 1, total)
	case "backspace":
		return m.openModal(&modal{kind: modalUserActions})
	case "enter":
		u := m.selectedUser()
		if u == nil {
			return m.closeModal()
		}
		switch m.modal.menuSel {
		case 0:
			if len(m.groupsToJoin(*u)) == 0 {
				return m.showInfo("No groups left to add " + u.Name + " to")
			}
			return m.openModal(&modal{kind: modalUserGroupsAdd, pick: newPicker()})
		case 1:
			if len(m.groupsOfUser(*u)) == 0 {
				return m.showInfo(u.Name + " is not a member of any group")
			}
			return m.openModal(&modal{kind: modalUserGroupsRemove, pick: newPicker()})
		case 2:
			return m.openModal(&modal{kind: modalUserDetails})
		case 3:
			return m.openModal(&modal{kind: modalPasswordMenu})
		}
	}
	return m
}

// groupsToJoin lists the groups the user is not yet a member of.
func (m appModel) groupsToJoin(u sysacct.User) []sysacct.Group {
	var out []sysacct.Group
	for _, g := range m.groupsAll {
		if g.GID == u.GID || g.HasMember(u.Name) {
			continue
		}
		out = append(out, g)
	}
	return out
}

// groupsOfUser lists the groups the user belongs to, primary group included.
func (m appModel) groupsOfUser(u sysacct.User) []sysacct.Group {
	var out []sysacct.Group
	for _, g := range m.groupsAll {
		if g.GID == u.GID || g.HasMember(u.Name) {
			out = append(out, g)
		}
	}
	return out
}

func (m appModel) updateUserGroupsAdd(msg tea.KeyMsg) (appModel, tea.Cmd) {
	u := m.selectedUser()
	if u == nil {
		return m.closeModal(), nil
	}
	candidates := m.groupsToJoin(*u)
	switch msg.String() {
	case "up", "k":
		m.modal.pick.moveUp()
	case "down", "j":
		m.modal.pick.moveDown(len(candidates))
	case "pgup":
		m.modal.pick.pageUp()
	case "pgdown":
		m.modal.pick.pageDown(len(candidates))
	case " ":
		m.modal.pick.toggle()
	case "backspace":
		return m.openModal(&modal{kind: modalUserModify}), nil
	case "enter":
		if len(candidates) == 0 {
			return m.closeModal(), nil
		}
		var names []string
		for _, i := range m.modal.pick.chosen() {
			if i < len(candidates) {
				names = append(names, candidates[i].Name)
			}
		}
		return m.perform(addToGroups{user: u.Name, groups: names}), nil
	}
	return m, nil
}

func (m appModel) updateUserGroupsRemove(msg tea.KeyMsg) (appModel, tea.Cmd) {
	u := m.selectedUser()
	if u == nil {
		return m.closeModal(), nil
	}
	candidates := m.groupsOfUser(*u)
	switch msg.String() {
	case "up", "k":
		m.modal.pick.moveUp()
	case "down", "j":
		m.modal.pick.moveDown(len(candidates))
	case "pgup":
		m.modal.pick.pageUp()
	case "pgdown":
		m.modal.pick.pageDown(len(candidates))
	case " ":
		m.modal.pick.toggle()
	case "backspace":
		return m.openModal(&modal{kind: modalUserModify, menuSel: 1}), nil
	case "enter":
		if len(candidates) == 0 {
			return m.closeModal(), nil
		}
		var names []string
		primaryOnly := false
		for _, i := range m.modal.pick.chosen() {
			if i >= len(candidates) {
				continue
			}
			if candidates[i].GID == u.GID {
				primaryOnly = len(m.modal.pick.chosen()) == 1
				continue // the primary group cannot be left
			}
			names = append(names, candidates[i].Name)
		}
		if len(names) == 0 {
			if primaryOnly {
				return m.showInfo("Cannot remove " + u.Name + " from their primary group"), nil
			}
			return m.closeModal(), nil
		}
		return m.perform(removeFromGroups{user: u.Name, groups: names}), nil
	}
	return m, nil
}

func (m appModel) updateUserDetails(msg tea.KeyMsg) appModel {
	const total = 3 // username, full name, shell
	switch msg.String() {
	case "up", "k":
		m.modal.menuSel = menuMove(m.modal.menuSel, -1, total)
	case "down", "j":
		m.modal.menuSel = menuMove(m.modal.menuSel, 1, total)
	case "backspace":
		return m.openModal(&modal{kind: modalUserModify, menuSel: 2})
	case "enter":
		u := m.selectedUser()
		if u == nil {
			return m.closeModal()
		}
		switch m.modal.menuSel {
		case 0:
			return m.openModal(&modal{
				kind: modalTextInput, field: fieldUsername,
				input: newTextInput("new username", u.Name),
			})
		case 1:
			return m.openModal(&modal{
				kind: modalTextInput, field: fieldFullname,
				input: newTextInput("full name", u.Gecos),
			})
		case 2:
			shells, err := m.source.ListShells()
			if err != nil || len(shells) == 0 {
				return m.showInfo("No login shells available")
			}
			return m.openModal(&modal{kind: modalShellPicker, pick: newPicker(), shells: shells})
		}
	}
	return m
}

func (m appModel) updateShellPicker(msg tea.KeyMsg) (appModel, tea.Cmd) {
	u := m.selectedUser()
	if u == nil {
		return m.closeModal(), nil
	}
	shells := m.modal.shells
	switch msg.String() {
	case "up", "k":
		m.modal.pick.moveUp()
	case "down", "j":
		m.modal.pick.moveDown(len(shells))
	case "pgup":
		m.modal.pick.pageUp()
	case "pgdown":
		m.modal.pick.pageDown(len(shells))
	case "backspace":
		return m.openModal(&modal{kind: modalUserDetails, menuSel: 2}), nil
	case "enter":
		if len(shells) == 0 {
			return m.closeModal(), nil
		}
		return m.perform(changeShell{user: u.Name, shell: shells[m.modal.pick.selected]}), nil
	}
	return m, nil
}

func (m appModel) updateTextInput(msg tea.KeyMsg) (appModel, tea.Cmd) {
	u := m.selectedUser()
	if u == nil {
		return m.closeModal(), nil
	}
	switch msg.String() {
	case "enter":
		value := m.modal.input.Value()
		switch m.modal.field {
		case fieldUsername:
			if value == "" {
				return m.showInfo("Username cannot be empty"), nil
			}
			if value == u.Name {
				return m.closeModal(), nil
			}
			return m.perform(changeUsername{oldName: u.Name, newName: value}), nil
		case fieldFullname:
			return m.perform(changeFullname{user: u.Name, fullname: value}), nil
		}
	case "backspace":
		if m.modal.input.Value() == "" {
			sel := 0
			if m.modal.field == fieldFullname {
				sel = 1
			}
			return m.openModal(&modal{kind: modalUserDetails, menuSel: sel}), nil
		}
	}
	var cmd tea.Cmd
	m.modal.input, cmd = m.modal.input.Update(msg)
	return m, cmd
}

func (m appModel) updatePasswordMenu(msg tea.KeyMsg) (appModel, tea.Cmd) {
	const total = 2 // change, force change at next login
	switch msg.String() {
	case "up", "k":
		m.modal.menuSel = menuMove(m.modal.menuSel, -1, total)
	case "down", "j":
		m.modal.menuSel = menuMove(m.modal.menuSel, 1, total)
	case "backspace":
		return m.openModal(&modal{kind: modalUserModify, menuSel: 3}), nil
	case "enter":
		u := m.selectedUser()
		if u == nil {
			return m.closeModal(), nil
		}
		switch m.modal.menuSel {
		case 0:
			md := &modal{
				kind:     modalChangePassword,
				password: newSecretInput("new password"),
				confirm:  newSecretInput("repeat password"),
			}
			md.confirm.Blur()
			return m.openModal(md), nil
		case 1:
			return m.perform(resetPassword{user: u.Name}), nil
		}
	}
	return m, nil
}

// Change-password form rows: password, confirmation, must-change toggle,
// submit.
const (
	pwRowPassword = iota
	pwRowConfirm
	pwRowMustChange
	pwRowSubmit
	pwRowCount
)

func (m appModel) updateChangePassword(msg tea.KeyMsg) (appModel, tea.Cmd) {
	u := m.selectedUser()
	if u == nil {
		return m.closeModal(), nil
	}
	md := m.modal
	switch msg.String() {
	case "up", "shift+tab":
		if md.menuSel > 0 {
			md.menuSel--
		}
		m.focusPasswordRow()
		return m, nil
	case "down", "tab":
		if md.menuSel < pwRowCount-1 {
			md.menuSel++
		}
		m.focusPasswordRow()
		return m, nil
	case " ":
		if md.menuSel == pwRowMustChange {
			md.mustChange = !md.mustChange
			return m, nil
		}
	case "backspace":
		onEmptyInput := (md.menuSel == pwRowPassword && md.password.Value() == "") ||
			(md.menuSel == pwRowConfirm && md.confirm.Value() == "")
		if md.menuSel >= pwRowMustChange || onEmptyInput {
			return m.openModal(&modal{kind: modalPasswordMenu}), nil
		}
	case "enter":
		if md.menuSel < pwRowSubmit {
			md.menuSel++
			m.focusPasswordRow()
			return m, nil
		}
		if md.password.Value() == "" {
			md.errMsg = "Password cannot be empty"
			return m, nil
		}
		if md.password.Value() != md.confirm.Value() {
			md.errMsg = "Passwords do not match"
			return m, nil
		}
		return m.perform(setPassword{
			user:       u.Name,
			password:   md.password.Value(),
			mustChange: md.mustChange,
		}), nil
	}
	var cmd tea.Cmd
	switch md.menuSel {
	case pwRowPassword:
		md.password, cmd = md.password.Update(msg)
	case pwRowConfirm:
		md.confirm, cmd = md.confirm.Update(msg)
	}
	return m, cmd
}

func (m appModel) focusPasswordRow() {
	md := m.modal
	md.password.Blur()
	md.confirm.Blur()
	switch md.menuSel {
	case pwRowPassword:
		md.password.Focus()
	case pwRowConfirm:
		md.confirm.Focus()
	}
}

// Create-user form rows: login name, password, confirmation, create-home and
// administrator toggles, submit.
const (
	cuRowName = iota
	cuRowPassword
	cuRowConfirm
	cuRowCreateHome
	cuRowAdmin
	cuRowSubmit
	cuRowCount
)

func (m appModel) openUserCreate() appModel {
	md := &modal{
		kind:       modalUserCreate,
		input:      newTextInput("login name", ""),
		password:   newSecretInput("password (optional)"),
		confirm:    newSecretInput("repeat password"),
		createHome: true,
	}
	md.password.Blur()
	md.confirm.Blur()
	return m.openModal(md)
}

func (m appModel) updateUserCreate(msg tea.KeyMsg) (appModel, tea.Cmd) {
	md := m.modal
	switch msg.String() {
	case "up", "shift+tab":
		if md.menuSel > 0 {
			md.menuSel--
		}
		m.focusCreateRow()
		return m, nil
	case "down", "tab":
		if md.menuSel < cuRowCount-1 {
			md.menuSel++
		}
		m.focusCreateRow()
		return m, nil
	case " ":
		switch md.menuSel {
		case cuRowCreateHome:
			md.createHome = !md.createHome
			return m, nil
		case cuRowAdmin:
			md.addToAdmin = !md.addToAdmin
			return m, nil
		}
	case "enter":
		if md.menuSel < cuRowSubmit {
			md.menuSel++
			m.focusCreateRow()
			return m, nil
		}
		name := md.input.Value()
		if name == "" {
			md.errMsg = "Login name cannot be empty"
			return m, nil
		}
		if md.password.Value() != md.confirm.Value() {
			md.errMsg = "Passwords do not match"
			return m, nil
		}
		return m.perform(createUser{
			name:       name,
			password:   md.password.Value(),
			createHome: md.createHome,
			addToAdmin: md.addToAdmin,
		}), nil
	}
	var cmd tea.Cmd
	switch md.menuSel {
	case cuRowName:
		md.input, cmd = md.input.Update(msg)
	case cuRowPassword:
		md.password, cmd = md.password.Update(msg)
	case cuRowConfirm:
		md.confirm, cmd = md.confirm.Update(msg)
	}
	return m, cmd
}

func (m appModel) focusCreateRow() {
	md := m.modal
	md.input.Blur()
	md.password.Blur()
	md.confirm.Blur()
	switch md.menuSel {
	case cuRowName:
		md.input.Focus()
	case cuRowPassword:
		md.password.Focus()
	case cuRowConfirm:
		md.confirm.Focus()
	}
}
