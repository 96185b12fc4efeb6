package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/aklyachkin/usrgrp/internal/privcmd"
)

// printJSON writes v as indented JSON, the shared --output json path.
func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// withWriter runs a privileged operation, first without credentials (covers
// root and cached sudo timestamps), then once more after prompting for the
// sudo password if authentication was required.
func withWriter(fn func(r *privcmd.Runner) error) error {
	err := fn(privcmd.New(""))
	if !errors.Is(err, privcmd.ErrAuthRequired) {
		return err
	}
	password, err := readPassword("[sudo] password: ")
	if err != nil {
		return err
	}
	return fn(privcmd.New(password))
}

// readPassword prompts on stderr and reads without echo.
func readPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(b), nil
}

// readNewPassword prompts twice and refuses mismatched or empty input.
func readNewPassword() (string, error) {
	first, err := readPassword("New password: ")
	if err != nil {
		return "", err
	}
	if first == "" {
		return "", errors.New("password cannot be empty")
	}
	second, err := readPassword("Repeat password: ")
	if err != nil {
		return "", err
	}
	if first != second {
		return "", errors.New("passwords do not match")
	}
	return first, nil
}
