package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aklyachkin/usrgrp/internal/policy"
)

func TestEscCancelsModalWithoutSideEffects(t *testing.T) {
	m, _, rec := newTestModel(t)
	m = press(m, "enter") // user actions
	require.NotNil(t, m.modal)
	m = press(m, "enter") // modify menu
	require.Equal(t, modalUserModify, m.modal.kind)

	m = press(m, "esc")
	assert.Nil(t, m.modal)
	assert.Equal(t, modeNormal, m.inputMode)
	assert.Zero(t, rec.attempts)
	assert.Empty(t, rec.calls)
}

func TestBackspaceStepsBackToParentMenu(t *testing.T) {
	m, _, _ := newTestModel(t)
	m = press(m, "enter", "enter") // actions -> modify
	require.Equal(t, modalUserModify, m.modal.kind)

	m = press(m, "backspace")
	require.NotNil(t, m.modal)
	assert.Equal(t, modalUserActions, m.modal.kind)

	m = press(m, "backspace")
	assert.Nil(t, m.modal)
}

func TestPickerClampsAtBothEnds(t *testing.T) {
	p := newPicker()
	p.moveUp()
	assert.Equal(t, 0, p.selected)

	p.moveDown(3)
	p.moveDown(3)
	p.moveDown(3) // already on the last row
	assert.Equal(t, 2, p.selected)

	p.pageDown(3)
	assert.Equal(t, 2, p.selected)
	p.pageUp()
	assert.Equal(t, 0, p.selected)
}

func TestPickerWindowFollowsCursor(t *testing.T) {
	p := newPicker()
	p.pageDown(30)
	assert.Equal(t, 10, p.selected)
	assert.Equal(t, 1, p.offset)
	p.pageDown(30)
	p.pageDown(30)
	assert.Equal(t, 29, p.selected)
	assert.Equal(t, 20, p.offset)
	p.pageUp()
	p.pageUp()
	p.pageUp()
	assert.Equal(t, 0, p.selected)
	assert.Equal(t, 0, p.offset)
}

func TestDeleteDeniedOutsideAllowedRange(t *testing.T) {
	m, _, rec := newTestModel(t)
	require.Equal(t, "root", m.selectedUser().Name)

	m = press(m, "delete")
	require.NotNil(t, m.modal)
	assert.Equal(t, modalInfo, m.modal.kind)
	assert.Contains(t, m.modal.message, "not allowed")
	assert.Zero(t, rec.attempts)
}

func TestDeleteRangeEnvOverride(t *testing.T) {
	t.Setenv("USRGRP_DELETE_UID_RANGE", "500-600")
	assert.True(t, policy.UserDeleteAllowed(550))
	assert.False(t, policy.UserDeleteAllowed(1001))

	t.Setenv("USRGRP_DELETE_UID_RANGE", "garbage")
	assert.True(t, policy.UserDeleteAllowed(1001))
	assert.False(t, policy.UserDeleteAllowed(999))
}

func TestDeleteConfirmDefaultsToNo(t *testing.T) {
	m, _, rec := newTestModel(t)
	m = press(m, "j", "j", "j") // bob
	require.Equal(t, "bob", m.selectedUser().Name)

	m = press(m, "delete")
	require.Equal(t, modalUserDelete, m.modal.kind)
	assert.Equal(t, 1, m.modal.menuSel)

	m = press(m, "enter") // confirms No
	assert.Nil(t, m.modal)
	assert.Empty(t, rec.calls)
}

func TestDeleteUserWithHomeRemoval(t *testing.T) {
	m, src, rec := newTestModel(t)
	m = press(m, "j", "j", "j") // bob
	m = press(m, "delete", " ", "left", "enter")

	require.Equal(t, []string{"userdel bob home=true"}, rec.calls)
	require.NotNil(t, m.modal)
	assert.Equal(t, modalInfo, m.modal.kind)
	// both listings were re-read after the mutation
	assert.Equal(t, 2, src.userReads)
	assert.Equal(t, 2, src.groupReads)
	assert.Equal(t, 0, m.selUser)
}

func TestCredentialEscalationAndRetry(t *testing.T) {
	m, _, rec := newTestModel(t)
	rec.password = "secret"

	// bob -> modify -> add to groups -> first candidate (root)
	m = press(m, "j", "j", "j", "enter", "enter", "enter", "enter")
	require.NotNil(t, m.modal)
	require.Equal(t, modalSudoPrompt, m.modal.kind)
	// first ask shows no error text
	assert.Empty(t, m.modal.errMsg)
	assert.Equal(t, 1, rec.attempts)
	assert.Empty(t, rec.calls)

	// a wrong password re-prompts with the verbatim failure
	m = typeString(m, "bad")
	m = press(m, "enter")
	require.Equal(t, modalSudoPrompt, m.modal.kind)
	assert.Contains(t, m.modal.errMsg, "try again")
	assert.Equal(t, 2, rec.attempts)
	assert.Empty(t, rec.calls)

	// the correct password applies the original action unchanged
	m = typeString(m, "secret")
	m = press(m, "enter")
	require.Equal(t, modalInfo, m.modal.kind)
	assert.Equal(t, []string{"gpasswd -a bob root"}, rec.calls)
	assert.Equal(t, "secret", m.sudoPassword)
}

func TestCachedCredentialIsReused(t *testing.T) {
	m, _, rec := newTestModel(t)
	rec.password = "secret"
	m.sudoPassword = "secret"

	m = press(m, "j", "j", "j", "enter", "enter", "enter", "enter")
	require.NotNil(t, m.modal)
	assert.Equal(t, modalInfo, m.modal.kind)
	assert.Equal(t, []string{"gpasswd -a bob root"}, rec.calls)
}

func TestSudoPromptEscAbandonsAction(t *testing.T) {
	m, _, rec := newTestModel(t)
	rec.password = "secret"
	m = press(m, "j", "j", "j", "enter", "enter", "enter", "enter")
	require.Equal(t, modalSudoPrompt, m.modal.kind)

	m = press(m, "esc")
	assert.Nil(t, m.modal)
	assert.Empty(t, rec.calls)
	assert.Empty(t, m.sudoPassword)
}

func TestMultiSelectAddsAllMarkedGroups(t *testing.T) {
	m, _, rec := newTestModel(t)
	// bob -> modify -> add to groups; mark root and wheel
	m = press(m, "j", "j", "j", "enter", "enter", "enter")
	require.Equal(t, modalUserGroupsAdd, m.modal.kind)

	m = press(m, " ", "j", " ", "enter")
	assert.Equal(t, []string{"gpasswd -a bob root", "gpasswd -a bob wheel"}, rec.calls)
}

func TestPrimaryGroupRemovalRefused(t *testing.T) {
	m, _, rec := newTestModel(t)
	// bob's only group is his primary group
	m = press(m, "j", "j", "j", "enter", "enter", "j", "enter")
	require.Equal(t, modalUserGroupsRemove, m.modal.kind)

	m = press(m, "enter")
	require.Equal(t, modalInfo, m.modal.kind)
	assert.Contains(t, m.modal.message, "primary group")
	assert.Empty(t, rec.calls)
}

func TestRemoveFromSecondaryGroup(t *testing.T) {
	m, _, rec := newTestModel(t)
	// alice -> modify -> remove from groups; first candidate is wheel
	m = press(m, "j", "j", "enter", "enter", "j", "enter", "enter")
	assert.Equal(t, []string{"gpasswd -d alice wheel"}, rec.calls)
}

func TestChangeShellThroughPicker(t *testing.T) {
	m, _, rec := newTestModel(t)
	// bob -> modify -> change details -> login shell -> /bin/zsh
	m = press(m, "j", "j", "j", "enter", "enter", "j", "j", "enter", "j", "j", "enter", "j", "enter")
	assert.Equal(t, []string{"usermod -s /bin/zsh bob"}, rec.calls)
}

func TestChangeUsernamePrefilled(t *testing.T) {
	m, _, rec := newTestModel(t)
	m = press(m, "j", "j", "j", "enter", "enter", "j", "j", "enter", "enter")
	require.Equal(t, modalTextInput, m.modal.kind)
	assert.Equal(t, "bob", m.modal.input.Value())

	m = typeString(m, "2")
	m = press(m, "enter")
	assert.Equal(t, []string{"usermod -l bob2 bob"}, rec.calls)
}

func TestEmptyUsernameRejected(t *testing.T) {
	m, _, rec := newTestModel(t)
	m = press(m, "j", "j", "j", "enter", "enter", "j", "j", "enter", "enter")
	require.Equal(t, modalTextInput, m.modal.kind)

	m = press(m, "backspace", "backspace", "backspace")
	require.Empty(t, m.modal.input.Value())
	// one more backspace on the empty input steps back instead
	m = press(m, "backspace")
	assert.Equal(t, modalUserDetails, m.modal.kind)
	assert.Empty(t, rec.calls)
}

func TestClearingFullnameIsAllowed(t *testing.T) {
	m, _, rec := newTestModel(t)
	m = press(m, "j", "j", "j", "enter", "enter", "j", "j", "enter", "j", "enter")
	require.Equal(t, modalTextInput, m.modal.kind)
	require.Equal(t, "Bob", m.modal.input.Value())

	m = press(m, "backspace", "backspace", "backspace", "enter")
	assert.Equal(t, []string{`usermod -c "" bob`}, rec.calls)
}

func TestChangePasswordFlow(t *testing.T) {
	m, _, rec := newTestModel(t)
	// bob -> modify -> password -> change
	m = press(m, "j", "j", "j", "enter", "enter", "j", "j", "j", "enter", "enter")
	require.Equal(t, modalChangePassword, m.modal.kind)

	m = typeString(m, "hunter2")
	m = press(m, "down")
	m = typeString(m, "hunter2")
	m = press(m, "down", " ", "down", "enter")
	assert.Equal(t, []string{"chpasswd bob", "chage -d 0 bob"}, rec.calls)
}

func TestChangePasswordMismatchKeepsModalOpen(t *testing.T) {
	m, _, rec := newTestModel(t)
	m = press(m, "j", "j", "j", "enter", "enter", "j", "j", "j", "enter", "enter")
	m = typeString(m, "one")
	m = press(m, "down")
	m = typeString(m, "two")
	m = press(m, "down", "down", "enter")

	require.Equal(t, modalChangePassword, m.modal.kind)
	assert.Equal(t, "Passwords do not match", m.modal.errMsg)
	assert.Empty(t, rec.calls)
}

func TestForcePasswordChange(t *testing.T) {
	m, _, rec := newTestModel(t)
	m = press(m, "j", "j", "j", "enter", "enter", "j", "j", "j", "enter", "j", "enter")
	assert.Equal(t, []string{"chage -d 0 bob"}, rec.calls)
}

func TestCreateUserWithAdminGroup(t *testing.T) {
	m, _, rec := newTestModel(t)
	m = press(m, "n")
	require.Equal(t, modalUserCreate, m.modal.kind)
	assert.True(t, m.modal.createHome)

	m = typeString(m, "carol")
	m = press(m, "down")
	m = typeString(m, "pw")
	m = press(m, "down")
	m = typeString(m, "pw")
	m = press(m, "down", "down", " ", "down", "enter")

	assert.Equal(t, []string{
		"useradd carol home=true",
		"chpasswd carol",
		"gpasswd -a carol wheel",
	}, rec.calls)
}

func TestCreateUserWithoutPasswordSkipsChpasswd(t *testing.T) {
	m, _, rec := newTestModel(t)
	m = press(m, "n")
	m = typeString(m, "dave")
	m = press(m, "down", "down", "down", " ", "down", "down", "enter") // home off

	assert.Equal(t, []string{"useradd dave home=false"}, rec.calls)
}

func TestCreateUserEmptyNameRejected(t *testing.T) {
	m, _, rec := newTestModel(t)
	m = press(m, "n", "down", "down", "down", "down", "down", "enter")
	require.Equal(t, modalUserCreate, m.modal.kind)
	assert.Equal(t, "Login name cannot be empty", m.modal.errMsg)
	assert.Empty(t, rec.calls)
}

func TestCreateGroupFromGroupsTab(t *testing.T) {
	m, _, rec := newTestModel(t)
	m = press(m, "tab", "n")
	require.Equal(t, modalGroupCreate, m.modal.kind)

	m = typeString(m, "staff")
	m = press(m, "enter")
	assert.Equal(t, []string{"groupadd staff"}, rec.calls)
}

func TestSystemGroupDeleteDenied(t *testing.T) {
	m, _, rec := newTestModel(t)
	m = press(m, "tab", "j") // wheel (998)
	require.Equal(t, "wheel", m.selectedGroup().Name)

	m = press(m, "delete")
	require.Equal(t, modalInfo, m.modal.kind)
	assert.Contains(t, m.modal.message, "System groups")
	assert.Empty(t, rec.calls)
}

func TestSystemGroupRenameDenied(t *testing.T) {
	m, _, rec := newTestModel(t)
	m = press(m, "tab", "j", "enter", "j", "j", "enter", "j", "j", "enter")
	require.Equal(t, modalInfo, m.modal.kind)
	assert.Contains(t, m.modal.message, "renamed")
	assert.Empty(t, rec.calls)
}

func TestDeleteRegularGroup(t *testing.T) {
	m, _, rec := newTestModel(t)
	m = press(m, "tab", "k") // wrap to dev (1002)
	require.Equal(t, "dev", m.selectedGroup().Name)

	m = press(m, "delete")
	require.Equal(t, modalGroupDelete, m.modal.kind)
	assert.Equal(t, 1, m.modal.menuSel)

	m = press(m, "left", "enter")
	assert.Equal(t, []string{"groupdel dev"}, rec.calls)
}

func TestRenameRegularGroup(t *testing.T) {
	m, _, rec := newTestModel(t)
	m = press(m, "tab", "k", "enter", "j", "j", "enter", "j", "j", "enter")
	require.Equal(t, modalGroupRename, m.modal.kind)
	require.Equal(t, "dev", m.modal.input.Value())

	m = typeString(m, "s")
	m = press(m, "enter")
	assert.Equal(t, []string{"groupmod -n devs dev"}, rec.calls)
}

func TestGroupAddMembersMultiSelect(t *testing.T) {
	m, _, rec := newTestModel(t)
	m = press(m, "tab", "k", "enter", "j", "j", "enter", "enter")
	require.Equal(t, modalGroupAddMembers, m.modal.kind)

	// candidates for dev: root, daemon, bob (alice is already a member)
	m = press(m, " ", "j", " ", "enter")
	assert.Equal(t, []string{"gpasswd -a root dev", "gpasswd -a daemon dev"}, rec.calls)
}

func TestGroupRemoveMember(t *testing.T) {
	m, _, rec := newTestModel(t)
	m = press(m, "tab", "k", "enter", "j", "j", "enter", "j", "enter", "enter")
	assert.Equal(t, []string{"gpasswd -d alice dev"}, rec.calls)
}

func TestGroupModifyRemembersTargetFromMemberPane(t *testing.T) {
	m, _, rec := newTestModel(t)
	// alice's member-of pane: wheel, alice, dev; pick dev (row 2)
	m = press(m, "j", "j", "shift+tab", "j", "j", "enter")
	require.Equal(t, modalGroupActions, m.modal.kind)
	require.Equal(t, 1002, m.modal.targetGID)

	// modify -> remove members acts on dev although the groups-tab cursor
	// still points elsewhere
	m = press(m, "j", "j", "enter", "j", "enter", "enter")
	assert.Equal(t, []string{"gpasswd -d alice dev"}, rec.calls)
}
