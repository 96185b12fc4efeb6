package tui

import (
	"errors"

	"github.com/aklyachkin/usrgrp/internal/privcmd"
	"github.com/aklyachkin/usrgrp/internal/sysacct"
)

// recordSource lists the account databases. *sysacct.Source is the production
// implementation; tests substitute fixtures.
type recordSource interface {
	ListUsers() ([]sysacct.User, error)
	ListGroups() ([]sysacct.Group, error)
	ListShells() ([]string, error)
}

// accountWriter applies privileged account mutations. *privcmd.Runner is the
// production implementation.
type accountWriter interface {
	AddUserToGroup(user, group string) error
	RemoveUserFromGroup(user, group string) error
	CreateGroup(name string) error
	DeleteGroup(name string) error
	RenameGroup(oldName, newName string) error
	CreateUser(name string, createHome bool) error
	DeleteUser(name string, removeHome bool) error
	ChangeShell(user, shell string) error
	ChangeFullname(user, fullname string) error
	ChangeUsername(oldName, newName string) error
	SetPassword(user, password string) error
	ExpirePassword(user string) error
}

// writerFactory builds an accountWriter holding the given sudo credential.
type writerFactory func(credential string) accountWriter

// perform applies a pending action with the cached credential (possibly none).
func (m appModel) perform(p pendingAction) appModel {
	return m.performWith(p, m.sudoPassword)
}

// performWith applies a pending action with an explicit credential. On failure
// the untouched action is parked in a password prompt so the user can supply
// or correct the credential and retry; on success the credential is cached,
// the affected lists are re-read and an acknowledgment is shown.
func (m appModel) performWith(p pendingAction, credential string) appModel {
	if err := p.apply(m.newWriter(credential)); err != nil {
		m.log.WithField("action", p.describe()).Warn(err)
		msg := err.Error()
		if errors.Is(err, privcmd.ErrAuthRequired) && credential == "" {
			// First ask is not a failure; show a bare prompt.
			msg = ""
		}
		m.modal = &modal{kind: modalSudoPrompt, pending: p, errMsg: msg, input: newSecretInput("sudo password")}
		m.inputMode = modeModal
		return m
	}
	m.sudoPassword = credential
	m.log.WithField("action", p.describe()).Info("applied")
	m = m.reload(p.scope())
	m = m.applyFiltersAndSearch()
	m.modal = &modal{kind: modalInfo, message: p.success()}
	m.inputMode = modeModal
	return m
}

// reload re-reads the affected account databases in full. Read failures leave
// the previous listing in place.
func (m appModel) reload(s refreshScope) appModel {
	if s == refreshUsers || s == refreshBoth {
		if users, err := m.source.ListUsers(); err == nil {
			m.usersAll = users
		} else {
			m.log.WithError(err).Warn("re-listing users")
		}
	}
	if s == refreshGroups || s == refreshBoth {
		if groups, err := m.source.ListGroups(); err == nil {
			m.groupsAll = groups
		} else {
			m.log.WithError(err).Warn("re-listing groups")
		}
	}
	return m
}
