package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/aklyachkin/usrgrp/internal/policy"
	"github.com/aklyachkin/usrgrp/internal/sysacct"
)

// Group-side modal flows. The actions menu remembers the target group by GID
// so submenus keep acting on the row that was selected when it opened.

func (m appModel) openGroupActions() appModel {
	gid := -1
	if g := m.selectedGroup(); g != nil {
		gid = g.GID
	}
	return m.openModal(&modal{kind: modalGroupActions, targetGID: gid})
}

// targetGroup resolves the group a modal is acting on.
func (m appModel) targetGroup() *sysacct.Group {
	if m.modal == nil || m.modal.targetGID < 0 {
		return m.selectedGroup()
	}
	for i := range m.groupsAll {
		if m.groupsAll[i].GID == m.modal.targetGID {
			return &m.groupsAll[i]
		}
	}
	return nil
}

func (m appModel) updateGroupActions(msg tea.KeyMsg) appModel {
	const total = 3 // create, delete, modify
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
			return m.openModal(&modal{
				kind: modalGroupCreate, targetGID: m.modal.targetGID,
				input: newTextInput("group name", ""),
			})
		case 1:
			return m.openGroupDelete()
		case 2:
			g := m.targetGroup()
			if g == nil {
				return m.closeModal()
			}
			return m.openModal(&modal{kind: modalGroupModify, targetGID: g.GID})
		}
	}
	return m
}

func (m appModel) updateGroupCreate(msg tea.KeyMsg) (appModel, tea.Cmd) {
	switch msg.String() {
	case "enter":
		name := m.modal.input.Value()
		if name == "" {
			return m.showInfo("Group name cannot be empty"), nil
		}
		return m.perform(createGroup{name: name}), nil
	case "backspace":
		if m.modal.input.Value() == "" {
			return m.openModal(&modal{kind: modalGroupActions, targetGID: m.modal.targetGID}), nil
		}
	}
	var cmd tea.Cmd
	m.modal.input, cmd = m.modal.input.Update(msg)
	return m, cmd
}

// openGroupDelete refuses system groups before showing any confirmation.
func (m appModel) openGroupDelete() appModel {
	g := m.targetGroup()
	if g == nil {
		return m.closeModal()
	}
	if policy.SystemGroup(g.GID) {
		return m.showInfo("System groups cannot be deleted")
	}
	return m.openModal(&modal{kind: modalGroupDelete, menuSel: 1, allowed: true, targetGID: g.GID})
}

func (m appModel) updateGroupDelete(msg tea.KeyMsg) (appModel, tea.Cmd) {
	g := m.targetGroup()
	if g == nil {
		return m.closeModal(), nil
	}
	switch msg.String() {
	case "left", "h", "right", "l", "tab":
		m.modal.menuSel = 1 - m.modal.menuSel
	case "backspace":
		return m.openModal(&modal{kind: modalGroupActions, menuSel: 1, targetGID: m.modal.targetGID}), nil
	case "enter":
		if m.modal.menuSel != 0 || !m.modal.allowed {
			return m.closeModal(), nil
		}
		return m.perform(deleteGroup{name: g.Name}), nil
	}
	return m, nil
}

func (m appModel) updateGroupModify(msg tea.KeyMsg) appModel {
	const total = 3 // add members, remove members, rename
	switch msg.String() {
	case "up", "k":
		m.modal.menuSel = menuMove(m.modal.menuSel, -1, total)
	case "down", "j":
		m.modal.menuSel = menuMove(m.modal.menuSel, 1, total)
	case "backspace":
		return m.openModal(&modal{kind: modalGroupActions, menuSel: 2, targetGID: m.modal.targetGID})
	case "enter":
		g := m.targetGroup()
		if g == nil {
			return m.closeModal()
		}
		switch m.modal.menuSel {
		case 0:
			if len(m.membersToAdd(*g)) == 0 {
				return m.showInfo("All users are already members of " + g.Name)
			}
			return m.openModal(&modal{kind: modalGroupAddMembers, pick: newPicker(), targetGID: g.GID})
		case 1:
			if len(g.Members) == 0 {
				return m.showInfo("Group " + g.Name + " has no secondary members")
			}
			return m.openModal(&modal{kind: modalGroupRemoveMembers, pick: newPicker(), targetGID: g.GID})
		case 2:
			if policy.SystemGroup(g.GID) {
				return m.showInfo("System groups cannot be renamed")
			}
			return m.openModal(&modal{
				kind: modalGroupRename, targetGID: g.GID,
				input: newTextInput("new group name", g.Name),
			})
		}
	}
	return m
}

// membersToAdd lists users that are neither secondary members nor carry the
// group as their primary group.
func (m appModel) membersToAdd(g sysacct.Group) []sysacct.User {
	var out []sysacct.User
	for _, u := range m.usersAll {
		if u.GID == g.GID || g.HasMember(u.Name) {
			continue
		}
		out = append(out, u)
	}
	return out
}

func (m appModel) updateGroupAddMembers(msg tea.KeyMsg) (appModel, tea.Cmd) {
	g := m.targetGroup()
	if g == nil {
		return m.closeModal(), nil
	}
	candidates := m.membersToAdd(*g)
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
		return m.openModal(&modal{kind: modalGroupModify, targetGID: g.GID}), nil
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
		return m.perform(addMembers{group: g.Name, users: names}), nil
	}
	return m, nil
}

func (m appModel) updateGroupRemoveMembers(msg tea.KeyMsg) (appModel, tea.Cmd) {
	g := m.targetGroup()
	if g == nil {
		return m.closeModal(), nil
	}
	candidates := g.Members
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
		return m.openModal(&modal{kind: modalGroupModify, menuSel: 1, targetGID: g.GID}), nil
	case "enter":
		if len(candidates) == 0 {
			return m.closeModal(), nil
		}
		var names []string
		for _, i := range m.modal.pick.chosen() {
			if i < len(candidates) {
				names = append(names, candidates[i])
			}
		}
		return m.perform(removeMembers{group: g.Name, users: names}), nil
	}
	return m, nil
}

func (m appModel) updateGroupRename(msg tea.KeyMsg) (appModel, tea.Cmd) {
	g := m.targetGroup()
	if g == nil {
		return m.closeModal(), nil
	}
	switch msg.String() {
	case "enter":
		name := m.modal.input.Value()
		if name == "" {
			return m.showInfo("Group name cannot be empty"), nil
		}
		if name == g.Name {
			return m.closeModal(), nil
		}
		return m.perform(renameGroup{oldName: g.Name, newName: name}), nil
	case "backspace":
		if m.modal.input.Value() == "" {
			return m.openModal(&modal{kind: modalGroupModify, menuSel: 2, targetGID: g.GID}), nil
		}
	}
	var cmd tea.Cmd
	m.modal.input, cmd = m.modal.input.Update(msg)
	return m, cmd
}
