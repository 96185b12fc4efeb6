package tui

import (
	"fmt"
	"strings"

	"github.com/aklyachkin/usrgrp/internal/policy"
)

// refreshScope names which listings an applied action invalidates.
type refreshScope int

const (
	refreshNone refreshScope = iota
	refreshUsers
	refreshGroups
	refreshBoth
)

// pendingAction is a fully-described mutation awaiting application. Values are
// built at confirmation time and never modified afterwards, so a failed
// attempt can be retried verbatim once credentials are corrected.
type pendingAction interface {
	apply(w accountWriter) error
	describe() string
	success() string
	scope() refreshScope
}

type addToGroups struct {
	user   string
	groups []string
}

func (a addToGroups) apply(w accountWriter) error {
	for _, g := range a.groups {
		if err := w.AddUserToGroup(a.user, g); err != nil {
			return err
		}
	}
	return nil
}

func (a addToGroups) describe() string {
	return fmt.Sprintf("add %s to %s", a.user, strings.Join(a.groups, ", "))
}

func (a addToGroups) success() string {
	if len(a.groups) == 1 {
		return fmt.Sprintf("Added %s to group %s", a.user, a.groups[0])
	}
	return fmt.Sprintf("Added %s to %d groups", a.user, len(a.groups))
}

func (a addToGroups) scope() refreshScope { return refreshGroups }

type removeFromGroups struct {
	user   string
	groups []string
}

func (a removeFromGroups) apply(w accountWriter) error {
	for _, g := range a.groups {
		if err := w.RemoveUserFromGroup(a.user, g); err != nil {
			return err
		}
	}
	return nil
}

func (a removeFromGroups) describe() string {
	return fmt.Sprintf("remove %s from %s", a.user, strings.Join(a.groups, ", "))
}

func (a removeFromGroups) success() string {
	if len(a.groups) == 1 {
		return fmt.Sprintf("Removed %s from group %s", a.user, a.groups[0])
	}
	return fmt.Sprintf("Removed %s from %d groups", a.user, len(a.groups))
}

func (a removeFromGroups) scope() refreshScope { return refreshGroups }

type addMembers struct {
	group string
	users []string
}

func (a addMembers) apply(w accountWriter) error {
	for _, u := range a.users {
		if err := w.AddUserToGroup(u, a.group); err != nil {
			return err
		}
	}
	return nil
}

func (a addMembers) describe() string {
	return fmt.Sprintf("add members %s to %s", strings.Join(a.users, ", "), a.group)
}

func (a addMembers) success() string {
	if len(a.users) == 1 {
		return fmt.Sprintf("Added %s to group %s", a.users[0], a.group)
	}
	return fmt.Sprintf("Added %d members to group %s", len(a.users), a.group)
}

func (a addMembers) scope() refreshScope { return refreshGroups }

type removeMembers struct {
	group string
	users []string
}

func (a removeMembers) apply(w accountWriter) error {
	for _, u := range a.users {
		if err := w.RemoveUserFromGroup(u, a.group); err != nil {
			return err
		}
	}
	return nil
}

func (a removeMembers) describe() string {
	return fmt.Sprintf("remove members %s from %s", strings.Join(a.users, ", "), a.group)
}

func (a removeMembers) success() string {
	if len(a.users) == 1 {
		return fmt.Sprintf("Removed %s from group %s", a.users[0], a.group)
	}
	return fmt.Sprintf("Removed %d members from group %s", len(a.users), a.group)
}

func (a removeMembers) scope() refreshScope { return refreshGroups }

type createGroup struct {
	name string
}

func (a createGroup) apply(w accountWriter) error { return w.CreateGroup(a.name) }
func (a createGroup) describe() string            { return "create group " + a.name }
func (a createGroup) success() string             { return fmt.Sprintf("Group %s created", a.name) }
func (a createGroup) scope() refreshScope         { return refreshGroups }

type deleteGroup struct {
	name string
}

func (a deleteGroup) apply(w accountWriter) error { return w.DeleteGroup(a.name) }
func (a deleteGroup) describe() string            { return "delete group " + a.name }
func (a deleteGroup) success() string             { return fmt.Sprintf("Group %s deleted", a.name) }
func (a deleteGroup) scope() refreshScope         { return refreshGroups }

type renameGroup struct {
	oldName string
	newName string
}

func (a renameGroup) apply(w accountWriter) error { return w.RenameGroup(a.oldName, a.newName) }
func (a renameGroup) describe() string {
	return fmt.Sprintf("rename group %s to %s", a.oldName, a.newName)
}
func (a renameGroup) success() string {
	return fmt.Sprintf("Group %s renamed to %s", a.oldName, a.newName)
}
func (a renameGroup) scope() refreshScope { return refreshGroups }

type createUser struct {
	name       string
	password   string
	createHome bool
	addToAdmin bool
}

func (a createUser) apply(w accountWriter) error {
	if err := w.CreateUser(a.name, a.createHome); err != nil {
		return err
	}
	if a.password != "" {
		if err := w.SetPassword(a.name, a.password); err != nil {
			return err
		}
	}
	if a.addToAdmin {
		if err := w.AddUserToGroup(a.name, policy.AdminGroup()); err != nil {
			return err
		}
	}
	return nil
}

func (a createUser) describe() string    { return "create user " + a.name }
func (a createUser) success() string     { return fmt.Sprintf("User %s created", a.name) }
func (a createUser) scope() refreshScope { return refreshBoth }

type deleteUser struct {
	name       string
	removeHome bool
}

func (a deleteUser) apply(w accountWriter) error { return w.DeleteUser(a.name, a.removeHome) }
func (a deleteUser) describe() string            { return "delete user " + a.name }
func (a deleteUser) success() string             { return fmt.Sprintf("User %s deleted", a.name) }
func (a deleteUser) scope() refreshScope         { return refreshBoth }

type changeShell struct {
	user  string
	shell string
}

func (a changeShell) apply(w accountWriter) error { return w.ChangeShell(a.user, a.shell) }
func (a changeShell) describe() string {
	return fmt.Sprintf("change shell of %s to %s", a.user, a.shell)
}
func (a changeShell) success() string {
	return fmt.Sprintf("Shell of %s changed to %s", a.user, a.shell)
}
func (a changeShell) scope() refreshScope { return refreshUsers }

type changeFullname struct {
	user     string
	fullname string
}

func (a changeFullname) apply(w accountWriter) error { return w.ChangeFullname(a.user, a.fullname) }
func (a changeFullname) describe() string            { return "change full name of " + a.user }
func (a changeFullname) success() string {
	return fmt.Sprintf("Full name of %s updated", a.user)
}
func (a changeFullname) scope() refreshScope { return refreshUsers }

type changeUsername struct {
	oldName string
	newName string
}

func (a changeUsername) apply(w accountWriter) error {
	return w.ChangeUsername(a.oldName, a.newName)
}
func (a changeUsername) describe() string {
	return fmt.Sprintf("rename user %s to %s", a.oldName, a.newName)
}
func (a changeUsername) success() string {
	return fmt.Sprintf("User %s renamed to %s", a.oldName, a.newName)
}
func (a changeUsername) scope() refreshScope { return refreshBoth }

type setPassword struct {
	user       string
	password   string
	mustChange bool
}

func (a setPassword) apply(w accountWriter) error {
	if err := w.SetPassword(a.user, a.password); err != nil {
		return err
	}
	if a.mustChange {
		return w.ExpirePassword(a.user)
	}
	return nil
}

func (a setPassword) describe() string    { return "change password of " + a.user }
func (a setPassword) success() string     { return fmt.Sprintf("Password of %s changed", a.user) }
func (a setPassword) scope() refreshScope { return refreshUsers }

// resetPassword expires the current password so the next login forces a change.
type resetPassword struct {
	user string
}

func (a resetPassword) apply(w accountWriter) error { return w.ExpirePassword(a.user) }
func (a resetPassword) describe() string            { return "expire password of " + a.user }
func (a resetPassword) success() string {
	return fmt.Sprintf("Password of %s expired; change forced at next login", a.user)
}
func (a resetPassword) scope() refreshScope { return refreshUsers }
