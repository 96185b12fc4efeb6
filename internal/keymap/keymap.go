// Package keymap maps raw key presses to semantic actions. Bindings are
// configurable through a YAML file; unknown keys resolve to nothing.
package keymap

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Action is a semantic input action used by normal-mode navigation.
type Action int

const (
	ActionNone Action = iota
	ActionQuit
	ActionOpenFilter
	ActionOpenHelp
	ActionStartSearch
	ActionNewUser
	ActionDelete
	ActionSwitchTab
	ActionToggleFocus
	ActionConfirm
	ActionMoveUp
	ActionMoveDown
	ActionPageBack
	ActionPageForward
	ActionPageUp
	ActionPageDown
	ActionToggleKeybinds
)

var actionNames = map[Action]string{
	ActionQuit:           "quit",
	ActionOpenFilter:     "open-filter",
	ActionOpenHelp:       "open-help",
	ActionStartSearch:    "start-search",
	ActionNewUser:        "new-user",
	ActionDelete:         "delete-selection",
	ActionSwitchTab:      "switch-tab",
	ActionToggleFocus:    "toggle-focus",
	ActionConfirm:        "confirm",
	ActionMoveUp:         "move-up",
	ActionMoveDown:       "move-down",
	ActionPageBack:       "page-back",
	ActionPageForward:    "page-forward",
	ActionPageUp:         "page-up",
	ActionPageDown:       "page-down",
	ActionToggleKeybinds: "toggle-keybinds",
}

// String returns the configuration name of the action.
func (a Action) String() string {
	if n, ok := actionNames[a]; ok {
		return n
	}
	return "none"
}

// Keymap resolves Bubble Tea key strings (e.g. "q", "shift+tab", "pgdown")
// to actions.
type Keymap struct {
	bindings map[string]Action
}

// Defaults returns the built-in bindings: arrows plus hjkl navigation,
// tab/shift+tab, and the single-letter action keys.
func Defaults() *Keymap {
	b := map[string]Action{
		"q":         ActionQuit,
		"f":         ActionOpenFilter,
		"?":         ActionOpenHelp,
		"/":         ActionStartSearch,
		"n":         ActionNewUser,
		"delete":    ActionDelete,
		"tab":       ActionSwitchTab,
		"shift+tab": ActionToggleFocus,
		"enter":     ActionConfirm,
		"up":        ActionMoveUp,
		"k":         ActionMoveUp,
		"down":      ActionMoveDown,
		"j":         ActionMoveDown,
		"left":      ActionPageBack,
		"h":         ActionPageBack,
		"right":     ActionPageForward,
		"l":         ActionPageForward,
		"pgup":      ActionPageUp,
		"pgdown":    ActionPageDown,
		"K":         ActionToggleKeybinds,
	}
	return &Keymap{bindings: b}
}

// Resolve maps a key string to its action. The second return is false when
// the key is unbound.
func (k *Keymap) Resolve(key string) (Action, bool) {
	a, ok := k.bindings[key]
	return a, ok
}

// Bindings returns a copy of the binding table, for rendering help.
func (k *Keymap) Bindings() map[string]Action {
	out := make(map[string]Action, len(k.bindings))
	for key, a := range k.bindings {
		out[key] = a
	}
	return out
}

// KeysFor lists the keys bound to an action, for help and footer rendering.
func (k *Keymap) KeysFor(a Action) []string {
	var keys []string
	for key, act := range k.bindings {
		if act == a {
			keys = append(keys, key)
		}
	}
	return keys
}

// DefaultPath returns the keybindings file location next to the filter
// settings.
func DefaultPath() string {
	root := os.Getenv("XDG_CONFIG_HOME")
	if root == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "keybinds.yaml"
		}
		root = filepath.Join(home, ".config")
	}
	return filepath.Join(root, "usrgrp", "keybinds.yaml")
}

// fileFormat is the on-disk shape: action name to list of key strings.
type fileFormat map[string][]string

// Load reads bindings from path, starting from defaults and overriding the
// actions the file names. Unknown action names are ignored so newer files
// stay loadable by older binaries.
func Load(path string) (*Keymap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading keybinds: %w", err)
	}
	var ff fileFormat
	if err := yaml.Unmarshal(data, &ff); err != nil {
		return nil, fmt.Errorf("parsing keybinds: %w", err)
	}

	km := Defaults()
	byName := make(map[string]Action, len(actionNames))
	for a, n := range actionNames {
		byName[n] = a
	}
	for name, keys := range ff {
		action, ok := byName[name]
		if !ok {
			continue
		}
		// Drop previous bindings for this action, then bind the listed keys.
		for key, a := range km.bindings {
			if a == action {
				delete(km.bindings, key)
			}
		}
		for _, key := range keys {
			km.bindings[key] = action
		}
	}
	return km, nil
}

// Save writes the current bindings grouped by action.
func (k *Keymap) Save(path string) error {
	ff := make(fileFormat)
	for key, a := range k.bindings {
		name := a.String()
		ff[name] = append(ff[name], key)
	}
	data, err := yaml.Marshal(ff)
	if err != nil {
		return fmt.Errorf("marshalling keybinds: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing keybinds: %w", err)
	}
	return nil
}

// LoadOrInit loads bindings from path, writing the defaults there on first
// run. Any load error falls back to defaults so the UI always starts.
func LoadOrInit(path string) *Keymap {
	if _, err := os.Stat(path); err == nil {
		if km, err := Load(path); err == nil {
			return km
		}
		return Defaults()
	}
	km := Defaults()
	_ = km.Save(path)
	return km
}
