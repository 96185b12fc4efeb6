// Package privcmd invokes the standard account-management utilities
// (gpasswd, usermod, groupadd, ...) with sudo when not running as root.
package privcmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// ErrAuthRequired signals that the operation needs sudo credentials: either
// none were supplied, or the supplied password was rejected.
var ErrAuthRequired = errors.New("authentication required")

// Runner executes privileged account mutations. A zero password is valid only
// when the process runs as root; otherwise every call fails with
// ErrAuthRequired until a password is provided.
type Runner struct {
	password string
	timeout  time.Duration

	// uid is overridable in tests.
	uid func() int
}

// New returns a Runner holding the given sudo password ("" for none).
func New(password string) *Runner {
	return &Runner{
		password: password,
		timeout:  15 * time.Second,
		uid:      os.Getuid,
	}
}

func (r *Runner) AddUserToGroup(user, group string) error {
	return r.run("gpasswd", "-a", user, group)
}

func (r *Runner) RemoveUserFromGroup(user, group string) error {
	return r.run("gpasswd", "-d", user, group)
}

func (r *Runner) CreateGroup(name string) error {
	return r.run("groupadd", name)
}

func (r *Runner) DeleteGroup(name string) error {
	return r.run("groupdel", name)
}

func (r *Runner) RenameGroup(oldName, newName string) error {
	return r.run("groupmod", "-n", newName, oldName)
}

func (r *Runner) CreateUser(name string, createHome bool) error {
	args := []string{}
	if createHome {
		args = append(args, "-m")
	}
	args = append(args, name)
	return r.run("useradd", args...)
}

func (r *Runner) DeleteUser(name string, removeHome bool) error {
	args := []string{}
	if removeHome {
		args = append(args, "-r")
	}
	args = append(args, name)
	return r.run("userdel", args...)
}

func (r *Runner) ChangeShell(user, shell string) error {
	return r.run("usermod", "-s", shell, user)
}

func (r *Runner) ChangeFullname(user, fullname string) error {
	return r.run("usermod", "-c", fullname, user)
}

func (r *Runner) ChangeUsername(oldName, newName string) error {
	return r.run("usermod", "-l", newName, oldName)
}

// SetPassword feeds "user:password" to chpasswd on stdin. The sudo password
// never shares a stream with the chpasswd input: credentials are validated
// first via sudo -v, then chpasswd runs under sudo -n.
func (r *Runner) SetPassword(user, password string) error {
	line := []byte(user + ":" + password + "\n")
	if r.uid() == 0 {
		return r.execute(line, "chpasswd")
	}
	if err := r.validateSudo(); err != nil {
		return err
	}
	return r.execute(line, "sudo", "-n", "chpasswd")
}

// ExpirePassword forces a password change at next login.
func (r *Runner) ExpirePassword(user string) error {
	return r.run("chage", "-d", "0", user)
}

// run executes a single utility, escalating through sudo when needed.
func (r *Runner) run(name string, args ...string) error {
	if r.uid() == 0 {
		return r.execute(nil, name, args...)
	}
	if err := r.validateSudo(); err != nil {
		return err
	}
	sudoArgs := append([]string{"-n", name}, args...)
	return r.execute(nil, "sudo", sudoArgs...)
}

// validateSudo refreshes the sudo timestamp with the held password, keeping
// credential input separate from the command that follows.
func (r *Runner) validateSudo() error {
	if r.password == "" {
		return ErrAuthRequired
	}
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	cmd := exec.CommandContext(ctx, "sudo", "-S", "-p", "", "-v")
	cmd.Stdin = strings.NewReader(r.password + "\n")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return fmt.Errorf("%w: %s", ErrAuthRequired, msg)
	}
	return nil
}

func (r *Runner) execute(stdin []byte, name string, args ...string) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	cmd := exec.CommandContext(ctx, name, args...)
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return fmt.Errorf("%s: %w", name, err)
		}
		return fmt.Errorf("%s failed: %s", name, msg)
	}
	return nil
}
