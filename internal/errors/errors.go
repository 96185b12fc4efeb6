// Package errors maps low-level failures from the account utilities to
// friendly user-facing messages.
package errors

import (
	goerrors "errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/aklyachkin/usrgrp/internal/privcmd"
)

// Handle maps sentinel errors to friendly messages and returns a formatted
// error that Cobra will print before exiting with code 1.
func Handle(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case goerrors.Is(err, privcmd.ErrAuthRequired):
		return fmt.Errorf("authentication failed: sudo rejected the password, or your account may not run the account utilities")
	case goerrors.Is(err, exec.ErrNotFound):
		return fmt.Errorf("a required system utility is missing, install the shadow-utils package (%v)", err)
	case isPermissionError(err):
		return fmt.Errorf("permission denied: this operation needs root or sudo access")
	default:
		return err
	}
}

func isPermissionError(err error) bool {
	if os.IsPermission(err) {
		return true
	}
	return strings.Contains(err.Error(), "Permission denied")
}
