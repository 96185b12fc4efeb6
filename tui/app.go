// Package tui implements the interactive terminal console for usrgrp.
package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/aklyachkin/usrgrp/internal/filterconf"
	"github.com/aklyachkin/usrgrp/internal/keymap"
	"github.com/aklyachkin/usrgrp/internal/logger"
	"github.com/aklyachkin/usrgrp/internal/privcmd"
	"github.com/aklyachkin/usrgrp/internal/search"
	"github.com/aklyachkin/usrgrp/internal/sysacct"
)

type tab int

const (
	tabUsers tab = iota
	tabGroups
)

// paneFocus selects between the main list and the member-of side pane on the
// users tab.
type paneFocus int

const (
	focusList paneFocus = iota
	focusMemberOf
)

type inputMode int

const (
	modeNormal inputMode = iota
	modeSearchUsers
	modeSearchGroups
	modeModal
)

// tickMsg drives the header clock.
type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// appModel is the top-level Bubble Tea model: two tabbed lists, a transient
// search line and at most one modal overlay.
type appModel struct {
	width       int
	height      int
	rowsPerPage int

	usersAll  []sysacct.User
	groupsAll []sysacct.Group
	users     []sysacct.User // visible after filters + search
	groups    []sysacct.Group

	activeTab  tab
	usersFocus paneFocus
	selUser    int
	selGroup   int
	selMember  int

	inputMode  inputMode
	search     textinput.Model
	userQuery  string
	groupQuery string

	settings     filterconf.Settings
	settingsPath string
	keys         *keymap.Keymap
	modal        *modal

	sudoPassword string
	showKeybinds bool
	now          time.Time

	source    recordSource
	newWriter writerFactory
	log       *logrus.Logger
}

func newAppModel(source recordSource, newWriter writerFactory, keys *keymap.Keymap,
	settings filterconf.Settings, settingsPath string, log *logrus.Logger) appModel {

	m := appModel{
		rowsPerPage:  20,
		search:       textinput.New(),
		settings:     settings,
		settingsPath: settingsPath,
		keys:         keys,
		now:          time.Now(),
		source:       source,
		newWriter:    newWriter,
		log:          log,
	}
	m.search.Placeholder = "search"
	m.search.Prompt = "/"
	m.search.CharLimit = 64

	var err error
	if m.usersAll, err = source.ListUsers(); err != nil {
		log.WithError(err).Warn("listing users")
	}
	if m.groupsAll, err = source.ListGroups(); err != nil {
		log.WithError(err).Warn("listing groups")
	}
	return m.applyFiltersAndSearch()
}

func (m appModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tickCmd())
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.rowsPerPage = listRows(msg.Height)
		return m, nil

	case tickMsg:
		m.now = time.Time(msg)
		return m, tickCmd()

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.inputMode {
		case modeNormal:
			return m.updateNormal(msg)
		case modeSearchUsers, modeSearchGroups:
			return m.updateSearch(msg)
		case modeModal:
			return m.updateModal(msg)
		}
	}
	return m, nil
}

// listRows derives how many list rows fit: the header, tab bar, column
// headings, search line and footer take a fixed band.
func listRows(height int) int {
	rows := height - 10
	if rows < 3 {
		return 3
	}
	return rows
}

func (m appModel) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	action, ok := m.keys.Resolve(msg.String())
	if !ok {
		return m, nil
	}
	switch action {
	case keymap.ActionQuit:
		return m, tea.Quit

	case keymap.ActionOpenFilter:
		return m.openModal(&modal{kind: modalFilterMenu, targetGID: -1}), nil

	case keymap.ActionOpenHelp:
		return m.openModal(&modal{kind: modalHelp, targetGID: -1}), nil

	case keymap.ActionToggleKeybinds:
		m.showKeybinds = !m.showKeybinds
		return m, nil

	case keymap.ActionStartSearch:
		return m.startSearch(), nil

	case keymap.ActionNewUser:
		if m.activeTab == tabUsers {
			return m.openUserCreate(), nil
		}
		return m.openModal(&modal{
			kind: modalGroupCreate, targetGID: -1,
			input: newTextInput("group name", ""),
		}), nil

	case keymap.ActionDelete:
		if m.activeTab == tabUsers {
			return m.openUserDelete(), nil
		}
		return m.openGroupDelete(), nil

	case keymap.ActionSwitchTab:
		if m.activeTab == tabUsers {
			m.activeTab = tabGroups
		} else {
			m.activeTab = tabUsers
		}
		m.usersFocus = focusList
		return m, nil

	case keymap.ActionToggleFocus:
		if m.activeTab == tabUsers {
			if m.usersFocus == focusList {
				m.usersFocus = focusMemberOf
			} else {
				m.usersFocus = focusList
			}
			m.selMember = 0
		}
		return m, nil

	case keymap.ActionConfirm:
		return m.confirmSelection(), nil

	case keymap.ActionMoveUp:
		return m.moveSelection(-1), nil
	case keymap.ActionMoveDown:
		return m.moveSelection(1), nil

	case keymap.ActionPageBack, keymap.ActionPageUp:
		return m.pageSelection(-m.rowsPerPage), nil
	case keymap.ActionPageForward, keymap.ActionPageDown:
		return m.pageSelection(m.rowsPerPage), nil
	}
	return m, nil
}

// confirmSelection opens the actions menu for the row under the cursor; on an
// empty list it does nothing.
func (m appModel) confirmSelection() appModel {
	if m.activeTab == tabUsers {
		if m.usersFocus == focusMemberOf {
			groups := m.memberOfGroups()
			if m.selMember >= len(groups) {
				return m
			}
			return m.openModal(&modal{kind: modalGroupActions, targetGID: groups[m.selMember].GID})
		}
		return m.openUserActions()
	}
	if m.selectedGroup() == nil {
		return m
	}
	return m.openGroupActions()
}

// moveSelection moves the active cursor by one row, wrapping at the ends.
func (m appModel) moveSelection(delta int) appModel {
	switch {
	case m.activeTab == tabUsers && m.usersFocus == focusMemberOf:
		m.selMember = menuMove(m.selMember, delta, len(m.memberOfGroups()))
	case m.activeTab == tabUsers:
		m.selUser = menuMove(m.selUser, delta, len(m.users))
		m.selMember = 0
	default:
		m.selGroup = menuMove(m.selGroup, delta, len(m.groups))
	}
	return m
}

// pageSelection moves the active cursor by a page, clamping at the ends.
func (m appModel) pageSelection(delta int) appModel {
	clamp := func(sel, total int) int {
		sel += delta
		if sel >= total {
			sel = total - 1
		}
		if sel < 0 {
			sel = 0
		}
		return sel
	}
	switch {
	case m.activeTab == tabUsers && m.usersFocus == focusMemberOf:
		m.selMember = clamp(m.selMember, len(m.memberOfGroups()))
	case m.activeTab == tabUsers:
		m.selUser = clamp(m.selUser, len(m.users))
		m.selMember = 0
	default:
		m.selGroup = clamp(m.selGroup, len(m.groups))
	}
	return m
}

// startSearch clears the active tab's query and hands input to the search line.
func (m appModel) startSearch() appModel {
	m.search.SetValue("")
	m.search.Focus()
	if m.activeTab == tabUsers {
		m.inputMode = modeSearchUsers
		m.userQuery = ""
		m.usersFocus = focusList
	} else {
		m.inputMode = modeSearchGroups
		m.groupQuery = ""
	}
	return m.applyFiltersAndSearch()
}

// updateSearch routes keystrokes into the search line, re-deriving the list on
// every change. Enter keeps the result and returns to normal mode; Esc
// abandons the query.
func (m appModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.search.Blur()
		m.inputMode = modeNormal
		return m, nil
	case "esc":
		m.search.SetValue("")
		m.search.Blur()
		m = m.setActiveQuery("")
		m.inputMode = modeNormal
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m = m.setActiveQuery(m.search.Value())
	return m, cmd
}

func (m appModel) setActiveQuery(q string) appModel {
	if m.inputMode == modeSearchUsers {
		m.userQuery = q
	} else {
		m.groupQuery = q
	}
	return m.applyFiltersAndSearch()
}

// applyFiltersAndSearch re-derives both visible lists and resets the cursors.
// A query narrows a list only while the search line targets that kind;
// re-deriving in any other mode drops the stale query, so a committed search
// never survives a refresh or a filter change.
func (m appModel) applyFiltersAndSearch() appModel {
	if m.inputMode != modeSearchUsers {
		m.userQuery = ""
	}
	if m.inputMode != modeSearchGroups {
		m.groupQuery = ""
	}
	m.users = search.VisibleUsers(m.usersAll, m.settings, m.userQuery, m.inputMode == modeSearchUsers)
	m.groups = search.VisibleGroups(m.groupsAll, m.settings, m.groupQuery, m.inputMode == modeSearchGroups)
	m.selUser = 0
	m.selGroup = 0
	m.selMember = 0
	return m
}

func (m appModel) selectedUser() *sysacct.User {
	if m.selUser < 0 || m.selUser >= len(m.users) {
		return nil
	}
	u := m.users[m.selUser]
	return &u
}

func (m appModel) selectedGroup() *sysacct.Group {
	if m.selGroup < 0 || m.selGroup >= len(m.groups) {
		return nil
	}
	g := m.groups[m.selGroup]
	return &g
}

// memberOfGroups lists the groups the selected user belongs to, for the side
// pane.
func (m appModel) memberOfGroups() []sysacct.Group {
	u := m.selectedUser()
	if u == nil {
		return nil
	}
	return m.groupsOfUser(*u)
}

// LaunchTUI starts the interactive console and blocks until the user quits.
func LaunchTUI() error {
	log := logger.New()

	settingsPath := filterconf.DefaultPath()
	settings, err := filterconf.Load(settingsPath)
	if err != nil {
		log.WithError(err).Warn("loading filter settings")
	}
	keys := keymap.LoadOrInit(keymap.DefaultPath())

	newWriter := func(credential string) accountWriter { return privcmd.New(credential) }
	m := newAppModel(sysacct.NewSource(), newWriter, keys, settings, settingsPath, log)

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}
