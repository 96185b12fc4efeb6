// Package upgrade replaces the running binary with the latest released one.
package upgrade

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

const releaseURL = "https://api.github.com/repos/aklyachkin/usrgrp/releases/latest"

type release struct {
	TagName string  `json:"tag_name"`
	Assets  []asset `json:"assets"`
}

type asset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
}

// Run checks the latest release and, when it is newer than currentVersion,
// swaps the binary in place with an atomic rename.
func Run(currentVersion string) error {
	execPath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("determining executable path: %w", err)
	}
	binaryPath, err := filepath.EvalSymlinks(execPath)
	if err != nil {
		return fmt.Errorf("resolving executable path: %w", err)
	}

	fmt.Fprintln(os.Stderr, "Checking for updates...")
	rel, err := latestRelease()
	if err != nil {
		return fmt.Errorf("checking for updates: %w", err)
	}
	latest := strings.TrimPrefix(rel.TagName, "v")
	if compareVersions(latest, currentVersion) <= 0 {
		fmt.Printf("Already up to date (v%s)\n", currentVersion)
		return nil
	}

	url, err := rel.downloadURL()
	if err != nil {
		return err
	}
	fmt.Printf("Upgrading from %s to %s...\n", currentVersion, latest)
	if err := replaceBinary(binaryPath, url); err != nil {
		return err
	}
	fmt.Printf("Updated usrgrp to v%s\n", latest)
	return nil
}

func latestRelease() (*release, error) {
	req, err := http.NewRequest("GET", releaseURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GitHub API returned status %d", resp.StatusCode)
	}
	var rel release
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return nil, fmt.Errorf("parsing release info: %w", err)
	}
	return &rel, nil
}

// downloadURL finds the asset built for this OS/arch.
func (r *release) downloadURL() (string, error) {
	want := fmt.Sprintf("usrgrp-%s-%s", runtime.GOOS, runtime.GOARCH)
	for _, a := range r.Assets {
		if a.Name == want {
			return a.BrowserDownloadURL, nil
		}
	}
	return "", fmt.Errorf("no release asset for %s/%s (expected %s)", runtime.GOOS, runtime.GOARCH, want)
}

// replaceBinary downloads url next to the current binary, so the final rename
// stays on one filesystem, then swaps it in.
func replaceBinary(binaryPath, url string) error {
	tmp, err := os.CreateTemp(filepath.Dir(binaryPath), ".usrgrp-upgrade-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	fmt.Fprintln(os.Stderr, "Downloading...")
	resp, err := http.Get(url) //nolint:gosec
	if err != nil {
		tmp.Close()
		return fmt.Errorf("downloading update: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		tmp.Close()
		return fmt.Errorf("download failed with status %d", resp.StatusCode)
	}
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("writing update: %w", err)
	}
	tmp.Close()

	if err := os.Chmod(tmpPath, 0755); err != nil {
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmpPath, binaryPath); err != nil {
		return fmt.Errorf("replacing binary (try: sudo usrgrp --upgrade): %w", err)
	}
	return nil
}

// compareVersions compares two semver strings without the "v" prefix.
// Returns -1 if a < b, 0 if equal, 1 if a > b.
func compareVersions(a, b string) int {
	ap := parseSemver(a)
	bp := parseSemver(b)
	for i := 0; i < 3; i++ {
		if ap[i] < bp[i] {
			return -1
		}
		if ap[i] > bp[i] {
			return 1
		}
	}
	return 0
}

// parseSemver splits a version into [major, minor, patch]; missing or
// non-numeric segments default to 0.
func parseSemver(v string) [3]int {
	var parts [3]int
	for i, s := range strings.SplitN(v, ".", 3) {
		n, _ := strconv.Atoi(s)
		parts[i] = n
	}
	return parts
}
