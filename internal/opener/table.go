package opener

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed openers.toml
var openersTOML []byte

const urlPlaceholder = "{url}"

// CommandDefinition describes how to invoke one opener.
type CommandDefinition struct {
	Description string   `toml:"description"`
	Platforms   []string `toml:"platforms"`
	// Exec overrides the binary; the table key is used when empty.
	Exec string   `toml:"exec,omitempty"`
	Args []string `toml:"args"`
}

type tableFile struct {
	Commands  map[string]CommandDefinition `toml:"commands"`
	Platforms map[string]string            `toml:"platforms"`
}

// Table maps opener names to invocations.
type Table struct {
	commands  map[string]CommandDefinition
	platforms map[string]string
}

// NewTable parses the built-in table and merges a user table from
// ~/.config/mailcal/openers.toml when one exists.
func NewTable() (*Table, error) {
	t, err := parseTable(openersTOML)
	if err != nil {
		return nil, fmt.Errorf("parsing openers.toml: %w", err)
	}
	if home, err := os.UserHomeDir(); err == nil {
		t.mergeFile(filepath.Join(home, ".config", "mailcal", "openers.toml"))
	}
	return t, nil
}

func parseTable(data []byte) (*Table, error) {
	var f tableFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	t := &Table{
		commands:  f.Commands,
		platforms: f.Platforms,
	}
	if t.commands == nil {
		t.commands = map[string]CommandDefinition{}
	}
	if t.platforms == nil {
		t.platforms = map[string]string{}
	}
	return t, nil
}

// mergeFile overlays entries from path. A missing or broken file is ignored.
func (t *Table) mergeFile(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	user, err := parseTable(data)
	if err != nil {
		return
	}
	for name, def := range user.commands {
		t.commands[name] = def
	}
	for goos, name := range user.platforms {
		t.platforms[goos] = name
	}
}

// DefaultFor is the opener name for goos.
func (t *Table) DefaultFor(goos string) string {
	if name, ok := t.platforms[goos]; ok {
		return name
	}
	if name, ok := t.platforms["fallback"]; ok {
		return name
	}
	return "xdg-open"
}

// Resolve returns the binary and argv for opening link with name on goos.
func (t *Table) Resolve(name, goos, link string) (string, []string, error) {
	def, ok := t.commands[name]
	if !ok {
		return name, []string{link}, nil
	}
	if len(def.Platforms) > 0 && !slices.Contains(def.Platforms, goos) {
		return "", nil, fmt.Errorf("%s not supported on %s", name, goos)
	}

	bin := def.Exec
	if bin == "" {
		bin = name
	}

	args := make([]string, 0, len(def.Args)+1)
	substituted := false
	for _, a := range def.Args {
		if strings.Contains(a, urlPlaceholder) {
			a = strings.ReplaceAll(a, urlPlaceholder, link)
			substituted = true
		}
		args = append(args, a)
	}
	if !substituted {
		args = append(args, link)
	}
	return bin, args, nil
}
