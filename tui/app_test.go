package tui

import (
	"fmt"
	"path/filepath"
	"testing"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aklyachkin/usrgrp/internal/filterconf"
	"github.com/aklyachkin/usrgrp/internal/keymap"
	"github.com/aklyachkin/usrgrp/internal/logger"
	"github.com/aklyachkin/usrgrp/internal/privcmd"
	"github.com/aklyachkin/usrgrp/internal/sysacct"
)

// fakeSource serves fixture listings and counts reads so tests can assert that
// successful actions trigger a re-list.
type fakeSource struct {
	users  []sysacct.User
	groups []sysacct.Group
	shells []string

	userReads  int
	groupReads int
}

func (s *fakeSource) ListUsers() ([]sysacct.User, error) {
	s.userReads++
	return append([]sysacct.User(nil), s.users...), nil
}

func (s *fakeSource) ListGroups() ([]sysacct.Group, error) {
	s.groupReads++
	return append([]sysacct.Group(nil), s.groups...), nil
}

func (s *fakeSource) ListShells() ([]string, error) {
	return append([]string(nil), s.shells...), nil
}

// recorder is the shared state behind fake writers. When password is set,
// writers built with a different credential fail with ErrAuthRequired, like
// sudo validation would.
type recorder struct {
	password string
	calls    []string
	attempts int
}

func (r *recorder) factory(credential string) accountWriter {
	return &fakeWriter{rec: r, credential: credential}
}

type fakeWriter struct {
	rec        *recorder
	credential string
}

func (w *fakeWriter) do(format string, args ...interface{}) error {
	w.rec.attempts++
	if w.rec.password != "" && w.credential != w.rec.password {
		return fmt.Errorf("%w: sorry, try again", privcmd.ErrAuthRequired)
	}
	w.rec.calls = append(w.rec.calls, fmt.Sprintf(format, args...))
	return nil
}

func (w *fakeWriter) AddUserToGroup(user, group string) error {
	return w.do("gpasswd -a %s %s", user, group)
}
func (w *fakeWriter) RemoveUserFromGroup(user, group string) error {
	return w.do("gpasswd -d %s %s", user, group)
}
func (w *fakeWriter) CreateGroup(name string) error { return w.do("groupadd %s", name) }
func (w *fakeWriter) DeleteGroup(name string) error { return w.do("groupdel %s", name) }
func (w *fakeWriter) RenameGroup(o, n string) error { return w.do("groupmod -n %s %s", n, o) }
func (w *fakeWriter) ChangeShell(u, s string) error { return w.do("usermod -s %s %s", s, u) }
func (w *fakeWriter) ExpirePassword(u string) error { return w.do("chage -d 0 %s", u) }
func (w *fakeWriter) ChangeFullname(u, f string) error {
	return w.do("usermod -c %q %s", f, u)
}
func (w *fakeWriter) ChangeUsername(o, n string) error {
	return w.do("usermod -l %s %s", n, o)
}
func (w *fakeWriter) CreateUser(name string, createHome bool) error {
	return w.do("useradd %s home=%t", name, createHome)
}
func (w *fakeWriter) DeleteUser(name string, removeHome bool) error {
	return w.do("userdel %s home=%t", name, removeHome)
}
func (w *fakeWriter) SetPassword(user, password string) error {
	return w.do("chpasswd %s", user)
}

func fixtureUsers() []sysacct.User {
	return []sysacct.User{
		{Name: "root", UID: 0, GID: 0, Home: "/root", Shell: "/bin/bash"},
		{Name: "daemon", UID: 1, GID: 1, Home: "/", Shell: "/usr/sbin/nologin"},
		{Name: "alice", UID: 1000, GID: 1000, Gecos: "Alice", Home: "/home/alice", Shell: "/bin/bash"},
		{Name: "bob", UID: 1001, GID: 1001, Gecos: "Bob", Home: "/home/bob", Shell: "/bin/zsh"},
	}
}

func fixtureGroups() []sysacct.Group {
	return []sysacct.Group{
		{Name: "root", GID: 0},
		{Name: "wheel", GID: 998, Members: []string{"alice"}},
		{Name: "alice", GID: 1000},
		{Name: "bob", GID: 1001},
		{Name: "dev", GID: 1002, Members: []string{"alice"}},
	}
}

func newTestModel(t *testing.T) (appModel, *fakeSource, *recorder) {
	t.Helper()
	src := &fakeSource{
		users:  fixtureUsers(),
		groups: fixtureGroups(),
		shells: []string{"/bin/bash", "/bin/zsh", "/usr/sbin/nologin"},
	}
	rec := &recorder{}
	m := newAppModel(src, rec.factory, keymap.Defaults(), filterconf.Settings{},
		filepath.Join(t.TempDir(), "filters.yaml"), logger.Discard())
	return m, src, rec
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "pgup":
		return tea.KeyMsg{Type: tea.KeyPgUp}
	case "pgdown":
		return tea.KeyMsg{Type: tea.KeyPgDown}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "delete":
		return tea.KeyMsg{Type: tea.KeyDelete}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m appModel, keys ...string) appModel {
	for _, k := range keys {
		next, _ := m.Update(key(k))
		m = next.(appModel)
	}
	return m
}

func typeString(m appModel, s string) appModel {
	for _, r := range s {
		m = press(m, string(r))
	}
	return m
}

func visibleUserNames(m appModel) []string {
	var names []string
	for _, u := range m.users {
		names = append(names, u.Name)
	}
	return names
}

func TestInitialListingShowsEverything(t *testing.T) {
	m, _, _ := newTestModel(t)
	assert.Equal(t, []string{"root", "daemon", "alice", "bob"}, visibleUserNames(m))
	assert.Len(t, m.groups, 5)
	assert.Equal(t, 0, m.selUser)
}

func TestSearchNarrowsLiveAndResetsCursor(t *testing.T) {
	m, _, _ := newTestModel(t)
	m = press(m, "j", "j") // move cursor off the top
	require.Equal(t, 2, m.selUser)

	m = press(m, "/")
	m = typeString(m, "bo")
	assert.Equal(t, []string{"bob"}, visibleUserNames(m))
	assert.Equal(t, 0, m.selUser)

	// Enter keeps the narrowed list and returns to normal mode.
	m = press(m, "enter")
	assert.Equal(t, modeNormal, m.inputMode)
	assert.Equal(t, []string{"bob"}, visibleUserNames(m))
}

func TestSearchEscAbandonsQuery(t *testing.T) {
	m, _, _ := newTestModel(t)
	m = press(m, "/")
	m = typeString(m, "alice")
	require.Equal(t, []string{"alice"}, visibleUserNames(m))

	m = press(m, "esc")
	assert.Equal(t, modeNormal, m.inputMode)
	assert.Equal(t, []string{"root", "daemon", "alice", "bob"}, visibleUserNames(m))
}

func TestSearchMatchesNumericIDs(t *testing.T) {
	m, _, _ := newTestModel(t)
	m = press(m, "/")
	m = typeString(m, "1001")
	assert.Equal(t, []string{"bob"}, visibleUserNames(m))
}

func TestSearchNarrowsOnlyTheTargetedKind(t *testing.T) {
	m, _, _ := newTestModel(t)
	m = press(m, "tab", "/")
	m = typeString(m, "dev")

	require.Len(t, m.groups, 1)
	assert.Equal(t, "dev", m.groups[0].Name)
	// the group query never touches the user list
	assert.Equal(t, []string{"root", "daemon", "alice", "bob"}, visibleUserNames(m))
}

func TestNewSearchDropsTheOtherTabsQuery(t *testing.T) {
	m, _, _ := newTestModel(t)
	m = press(m, "/")
	m = typeString(m, "bob")
	m = press(m, "enter")
	require.Equal(t, []string{"bob"}, visibleUserNames(m))

	// starting a group search re-derives; the committed user query is gone
	m = press(m, "tab", "/")
	assert.Empty(t, m.userQuery)
	assert.Equal(t, []string{"root", "daemon", "alice", "bob"}, visibleUserNames(m))
}

func TestMutationRefreshDropsCommittedSearch(t *testing.T) {
	m, _, rec := newTestModel(t)
	m = press(m, "/")
	m = typeString(m, "alice")
	m = press(m, "enter")
	require.Equal(t, []string{"alice"}, visibleUserNames(m))

	// alice -> modify -> add to groups -> first candidate (root)
	m = press(m, "enter", "enter", "enter", "enter")
	require.Equal(t, []string{"gpasswd -a alice root"}, rec.calls)
	require.NotNil(t, m.modal)
	require.Equal(t, modalInfo, m.modal.kind)

	// the refresh shows the full listing again
	assert.Empty(t, m.userQuery)
	assert.Equal(t, []string{"root", "daemon", "alice", "bob"}, visibleUserNames(m))
}

func TestFilterChangeDropsCommittedSearch(t *testing.T) {
	m, _, _ := newTestModel(t)
	m = press(m, "/")
	m = typeString(m, "alice")
	m = press(m, "enter")
	require.Equal(t, []string{"alice"}, visibleUserNames(m))

	m = press(m, "f", "j", "enter") // regular accounts only
	assert.Empty(t, m.userQuery)
	assert.Equal(t, []string{"alice", "bob"}, visibleUserNames(m))
}

func TestTabSwitchResetsPaneFocus(t *testing.T) {
	m, _, _ := newTestModel(t)
	m = press(m, "shift+tab")
	require.Equal(t, focusMemberOf, m.usersFocus)
	m = press(m, "tab")
	assert.Equal(t, tabGroups, m.activeTab)
	m = press(m, "tab")
	assert.Equal(t, focusList, m.usersFocus)
}

func TestSelectionWrapsOnMove(t *testing.T) {
	m, _, _ := newTestModel(t)
	m = press(m, "k")
	assert.Equal(t, 3, m.selUser)
	m = press(m, "j")
	assert.Equal(t, 0, m.selUser)
}

func TestPageMovementClampsAtEnds(t *testing.T) {
	m, _, _ := newTestModel(t)
	m = press(m, "pgdown")
	assert.Equal(t, len(m.users)-1, m.selUser)
	m = press(m, "pgdown")
	assert.Equal(t, len(m.users)-1, m.selUser)
	m = press(m, "pgup")
	assert.Equal(t, 0, m.selUser)
}

func TestMemberOfPaneNavigation(t *testing.T) {
	m, _, _ := newTestModel(t)
	m = press(m, "j", "j") // alice
	require.Equal(t, "alice", m.selectedUser().Name)

	// alice: primary group alice(1000), wheel(998), dev(1002)
	groups := m.memberOfGroups()
	require.Len(t, groups, 3)

	m = press(m, "shift+tab", "j")
	assert.Equal(t, 1, m.selMember)

	// Enter on a member-of row opens the group actions menu for that group.
	m = press(m, "enter")
	require.NotNil(t, m.modal)
	assert.Equal(t, modalGroupActions, m.modal.kind)
	assert.Equal(t, groups[1].GID, m.modal.targetGID)
}

func TestFilterMenuSelectorPersistsAndApplies(t *testing.T) {
	m, _, _ := newTestModel(t)
	m = press(m, "f", "j", "j", "enter") // third row: system only
	assert.Nil(t, m.modal)
	assert.Equal(t, filterconf.FilterSystem, m.settings.Users)
	assert.Equal(t, []string{"root", "daemon"}, visibleUserNames(m))

	saved, err := filterconf.Load(m.settingsPath)
	require.NoError(t, err)
	assert.Equal(t, filterconf.FilterSystem, saved.Users)
}

func TestFilterMenuChipToggleStaysOpen(t *testing.T) {
	m, _, _ := newTestModel(t)
	m = press(m, "f", "j", "j", "j", " ") // fourth row: inactive shell chip
	require.NotNil(t, m.modal)
	assert.Equal(t, modalFilterMenu, m.modal.kind)
	assert.True(t, m.settings.Chips.Inactive)
	assert.Equal(t, []string{"daemon"}, visibleUserNames(m))

	m = press(m, " ")
	assert.False(t, m.settings.Chips.Inactive)
	assert.Equal(t, []string{"root", "daemon", "alice", "bob"}, visibleUserNames(m))
}

func TestGroupFilterMenuHasNoChips(t *testing.T) {
	m, _, _ := newTestModel(t)
	m = press(m, "tab", "f")
	require.NotNil(t, m.modal)
	assert.Equal(t, 3, m.filterMenuRows())

	m = press(m, "j", "enter") // regular only
	require.Nil(t, m.modal)
	var names []string
	for _, g := range m.groups {
		names = append(names, g.Name)
	}
	assert.Equal(t, []string{"alice", "bob", "dev"}, names)
}

func TestWindowSizeRecomputesRows(t *testing.T) {
	m, _, _ := newTestModel(t)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 24})
	m = next.(appModel)
	assert.Equal(t, 14, m.rowsPerPage)

	next, _ = m.Update(tea.WindowSizeMsg{Width: 40, Height: 8})
	m = next.(appModel)
	assert.Equal(t, 3, m.rowsPerPage)
}

func TestTruncateKeepsRunesWhole(t *testing.T) {
	assert.Equal(t, "héllo", truncate("héllo", 5))
	assert.Equal(t, "héll…", truncate("héllo wörld", 5))
	assert.True(t, utf8.ValidString(truncate("ßßßßßß", 4)))
	assert.Equal(t, "ß", truncate("ßß", 1))
}

func TestViewRendersWithoutPanic(t *testing.T) {
	m, _, _ := newTestModel(t)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = next.(appModel)
	assert.Contains(t, m.View(), "alice")

	m = press(m, "tab")
	assert.Contains(t, m.View(), "wheel")

	m = press(m, "enter") // group actions modal
	assert.Contains(t, m.View(), "Create group")
}
