// Package opener hands event pages and meeting links to the desktop.
package opener

import (
	"errors"
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
	"strings"

	"github.com/pders01/mailcal/internal/config"
	"github.com/pders01/mailcal/internal/debuglog"
)

var ErrNoLink = errors.New("no link to open")

// Starter starts a prepared command without waiting for it.
type Starter func(cmd *exec.Cmd) error

type Launcher struct {
	command string
	goos    string
	table   *Table
	start   Starter
}

// Option tweaks a Launcher.
type Option func(*Launcher)

// WithStarter replaces how commands are started.
func WithStarter(s Starter) Option {
	return func(l *Launcher) { l.start = s }
}

// WithGOOS pretends to run on goos.
func WithGOOS(goos string) Option {
	return func(l *Launcher) { l.goos = goos }
}

func NewLauncher(cfg config.OpenerConfig, opts ...Option) *Launcher {
	table, err := NewTable()
	if err != nil {
		debuglog.Warnf("opener table unavailable: %v", err)
		table = &Table{commands: map[string]CommandDefinition{}, platforms: map[string]string{}}
	}

	l := &Launcher{
		command: strings.TrimSpace(cfg.Command),
		goos:    runtime.GOOS,
		table:   table,
		start:   startDetached,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.command == "" {
		l.command = l.table.DefaultFor(l.goos)
	}
	return l
}

// Command is the opener that will be used.
func (l *Launcher) Command() string { return l.command }

// Open launches link. Only http and https links are accepted.
func (l *Launcher) Open(link string) error {
	link = strings.TrimSpace(link)
	if link == "" {
		return ErrNoLink
	}
	u, err := url.Parse(link)
	if err != nil {
		return fmt.Errorf("invalid link: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("refusing to open %q link", u.Scheme)
	}

	bin, args, err := l.table.Resolve(l.command, l.goos, link)
	if err != nil {
		return err
	}

	debuglog.WithFields(debuglog.Fields{"opener": bin}).Debugf("opening %s", link)
	if err := l.start(exec.Command(bin, args...)); err != nil {
		return fmt.Errorf("failed to start %s: %w", bin, err)
	}
	return nil
}

func startDetached(cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() {
		_ = cmd.Wait()
	}()
	return nil
}
