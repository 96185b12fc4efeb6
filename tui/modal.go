package tui

import (
	"sort"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/aklyachkin/usrgrp/internal/filterconf"
)

type modalKind int

const (
	modalUserActions modalKind = iota
	modalUserModify
	modalUserGroupsAdd
	modalUserGroupsRemove
	modalUserDetails
	modalShellPicker
	modalTextInput
	modalUserDelete
	modalPasswordMenu
	modalChangePassword
	modalUserCreate
	modalGroupActions
	modalGroupCreate
	modalGroupDelete
	modalGroupModify
	modalGroupAddMembers
	modalGroupRemoveMembers
	modalGroupRename
	modalFilterMenu
	modalSudoPrompt
	modalInfo
	modalHelp
)

// textField names which user attribute a text-input modal edits.
type textField int

const (
	fieldUsername textField = iota
	fieldFullname
)

// pageStep is how far PageUp/PageDown move inside pickers and menus.
const pageStep = 10

// pickerWindow is the number of candidate rows shown at once.
const pickerWindow = 10

// picker is the cursor state of a scrolling candidate list. Movement clamps
// at both ends; multi holds the indices toggled for multi-selection.
type picker struct {
	selected int
	offset   int
	multi    map[int]struct{}
}

func newPicker() picker {
	return picker{multi: make(map[int]struct{})}
}

func (p *picker) moveUp() {
	if p.selected > 0 {
		p.selected--
	}
	p.snap()
}

func (p *picker) moveDown(total int) {
	if p.selected+1 < total {
		p.selected++
	}
	p.snap()
}

func (p *picker) pageUp() {
	p.selected -= pageStep
	if p.selected < 0 {
		p.selected = 0
	}
	p.snap()
}

func (p *picker) pageDown(total int) {
	p.selected += pageStep
	if p.selected >= total {
		p.selected = total - 1
	}
	if p.selected < 0 {
		p.selected = 0
	}
	p.snap()
}

// snap keeps the selection inside the visible window.
func (p *picker) snap() {
	if p.selected < p.offset {
		p.offset = p.selected
	}
	if p.selected >= p.offset+pickerWindow {
		p.offset = p.selected - pickerWindow + 1
	}
	if p.offset < 0 {
		p.offset = 0
	}
}

func (p *picker) toggle() {
	if _, ok := p.multi[p.selected]; ok {
		delete(p.multi, p.selected)
		return
	}
	p.multi[p.selected] = struct{}{}
}

// chosen returns the toggled indices in list order, or just the cursor row
// when nothing was toggled.
func (p *picker) chosen() []int {
	if len(p.multi) == 0 {
		return []int{p.selected}
	}
	out := make([]int, 0, len(p.multi))
	for i := range p.multi {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// modal is the state of the active overlay. kind selects which fields are
// meaningful; only one modal is open at a time and Backspace steps back to the
// parent menu where one exists.
type modal struct {
	kind    modalKind
	menuSel int
	pick    picker
	shells  []string

	field    textField
	input    textinput.Model
	password textinput.Model
	confirm  textinput.Model

	createHome bool
	addToAdmin bool
	deleteHome bool
	mustChange bool

	allowed   bool
	targetGID int

	pending pendingAction
	errMsg  string
	message string

	helpScroll int
}

func newTextInput(placeholder, value string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.SetValue(value)
	ti.CharLimit = 128
	ti.Focus()
	return ti
}

func newSecretInput(placeholder string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '*'
	ti.CharLimit = 128
	ti.Focus()
	return ti
}

// openModal switches the session into modal input mode.
func (m appModel) openModal(md *modal) appModel {
	m.modal = md
	m.inputMode = modeModal
	return m
}

// closeModal dismisses the entire overlay with no side effects.
func (m appModel) closeModal() appModel {
	m.modal = nil
	m.inputMode = modeNormal
	return m
}

// showInfo replaces the overlay with a terminal acknowledgment.
func (m appModel) showInfo(message string) appModel {
	return m.openModal(&modal{kind: modalInfo, message: message})
}

// menuMove moves a wrapping menu cursor.
func menuMove(sel, delta, total int) int {
	if total == 0 {
		return 0
	}
	sel = (sel + delta) % total
	if sel < 0 {
		sel += total
	}
	return sel
}

func (m appModel) updateModal(msg tea.KeyMsg) (appModel, tea.Cmd) {
	if msg.String() == "esc" {
		return m.closeModal(), nil
	}
	switch m.modal.kind {
	case modalInfo:
		if msg.String() == "enter" {
			return m.closeModal(), nil
		}
		return m, nil
	case modalHelp:
		return m.updateHelp(msg), nil
	case modalSudoPrompt:
		return m.updateSudoPrompt(msg)
	case modalFilterMenu:
		return m.updateFilterMenu(msg), nil
	case modalUserActions:
		return m.updateUserActions(msg), nil
	case modalUserModify:
		return m.updateUserModify(msg), nil
	case modalUserGroupsAdd:
		return m.updateUserGroupsAdd(msg)
	case modalUserGroupsRemove:
		return m.updateUserGroupsRemove(msg)
	case modalUserDetails:
		return m.updateUserDetails(msg), nil
	case modalShellPicker:
		return m.updateShellPicker(msg)
	case modalTextInput:
		return m.updateTextInput(msg)
	case modalUserDelete:
		return m.updateUserDelete(msg)
	case modalPasswordMenu:
		return m.updatePasswordMenu(msg)
	case modalChangePassword:
		return m.updateChangePassword(msg)
	case modalUserCreate:
		return m.updateUserCreate(msg)
	case modalGroupActions:
		return m.updateGroupActions(msg), nil
	case modalGroupCreate:
		return m.updateGroupCreate(msg)
	case modalGroupDelete:
		return m.updateGroupDelete(msg)
	case modalGroupModify:
		return m.updateGroupModify(msg), nil
	case modalGroupAddMembers:
		return m.updateGroupAddMembers(msg)
	case modalGroupRemoveMembers:
		return m.updateGroupRemoveMembers(msg)
	case modalGroupRename:
		return m.updateGroupRename(msg)
	}
	return m, nil
}

func (m appModel) updateHelp(msg tea.KeyMsg) appModel {
	switch msg.String() {
	case "up", "k":
		if m.modal.helpScroll > 0 {
			m.modal.helpScroll--
		}
	case "down", "j":
		m.modal.helpScroll++
	case "enter", "?", "q":
		return m.closeModal()
	}
	return m
}

// updateSudoPrompt collects a credential and retries the parked action with it.
func (m appModel) updateSudoPrompt(msg tea.KeyMsg) (appModel, tea.Cmd) {
	switch msg.String() {
	case "enter":
		pending := m.modal.pending
		credential := m.modal.input.Value()
		m = m.closeModal()
		return m.performWith(pending, credential), nil
	case "backspace":
		if m.modal.input.Value() == "" {
			return m.closeModal(), nil
		}
	}
	var cmd tea.Cmd
	m.modal.input, cmd = m.modal.input.Update(msg)
	return m, cmd
}

// filterMenuRows returns the row count of the filter menu for the active tab:
// three selector rows, plus the five user-condition chips on the users tab.
func (m appModel) filterMenuRows() int {
	if m.activeTab == tabUsers {
		return 8
	}
	return 3
}

func (m appModel) updateFilterMenu(msg tea.KeyMsg) appModel {
	total := m.filterMenuRows()
	switch msg.String() {
	case "up", "k":
		m.modal.menuSel = menuMove(m.modal.menuSel, -1, total)
	case "down", "j":
		m.modal.menuSel = menuMove(m.modal.menuSel, 1, total)
	case " ", "enter":
		m = m.applyFilterRow(m.modal.menuSel, msg.String() == "enter")
	case "backspace":
		return m.closeModal()
	}
	return m
}

// applyFilterRow applies a filter-menu row. Selector rows set the top-level
// selector and close on enter; chip rows toggle in place. Every change is
// persisted and the visible lists re-derived immediately.
func (m appModel) applyFilterRow(row int, isEnter bool) appModel {
	selectors := [3]string{filterconf.FilterNone, filterconf.FilterRegular, filterconf.FilterSystem}
	if row < 3 {
		if m.activeTab == tabUsers {
			m.settings.Users = selectors[row]
		} else {
			m.settings.Groups = selectors[row]
		}
	} else {
		switch row {
		case 3:
			m.settings.Chips.Inactive = !m.settings.Chips.Inactive
		case 4:
			m.settings.Chips.NoHome = !m.settings.Chips.NoHome
		case 5:
			m.settings.Chips.Locked = !m.settings.Chips.Locked
		case 6:
			m.settings.Chips.NoPassword = !m.settings.Chips.NoPassword
		case 7:
			m.settings.Chips.Expired = !m.settings.Chips.Expired
		}
	}
	if err := filterconf.Save(m.settingsPath, m.settings); err != nil {
		m.log.WithError(err).Warn("saving filter settings")
	}
	m = m.applyFiltersAndSearch()
	if row < 3 && isEnter {
		return m.closeModal()
	}
	return m
}
