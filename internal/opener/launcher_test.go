package opener

import (
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/mailcal/internal/config"
)

type recorder struct {
	args [][]string
	err  error
}

func (r *recorder) start(cmd *exec.Cmd) error {
	r.args = append(r.args, cmd.Args)
	return r.err
}

func TestEmbeddedTableParses(t *testing.T) {
	table, err := parseTable(openersTOML)
	require.NoError(t, err)

	assert.Equal(t, "open", table.DefaultFor("darwin"))
	assert.Equal(t, "xdg-open", table.DefaultFor("linux"))
	assert.Equal(t, "start", table.DefaultFor("windows"))
	assert.Equal(t, "xdg-open", table.DefaultFor("plan9"))
}

func TestResolve(t *testing.T) {
	table, err := parseTable(openersTOML)
	require.NoError(t, err)

	tests := []struct {
		name     string
		command  string
		goos     string
		wantBin  string
		wantArgs []string
		wantErr  bool
	}{
		{"xdg-open", "xdg-open", "linux", "xdg-open", []string{"https://x.test"}, false},
		{"windows start", "start", "windows", "cmd", []string{"/c", "start", "", "https://x.test"}, false},
		{"firefox tab", "firefox", "darwin", "firefox", []string{"--new-tab", "https://x.test"}, false},
		{"unknown command", "my-browser", "linux", "my-browser", []string{"https://x.test"}, false},
		{"wrong platform", "open", "linux", "", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bin, args, err := table.Resolve(tt.command, tt.goos, "https://x.test")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantBin, bin)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestResolveAppendsLinkWithoutPlaceholder(t *testing.T) {
	table, err := parseTable([]byte(`
[commands.w3m]
args = ["-N"]
`))
	require.NoError(t, err)

	bin, args, err := table.Resolve("w3m", "linux", "https://x.test")
	require.NoError(t, err)
	assert.Equal(t, "w3m", bin)
	assert.Equal(t, []string{"-N", "https://x.test"}, args)
}

func TestLauncherOpen(t *testing.T) {
	rec := &recorder{}
	l := NewLauncher(config.OpenerConfig{Command: "xdg-open"}, WithGOOS("linux"), WithStarter(rec.start))

	require.NoError(t, l.Open(" https://calendar.example.com/event?eid=1 "))
	require.Len(t, rec.args, 1)
	assert.Equal(t, []string{"xdg-open", "https://calendar.example.com/event?eid=1"}, rec.args[0])
}

func TestLauncherDefaultsFromTable(t *testing.T) {
	l := NewLauncher(config.OpenerConfig{}, WithGOOS("windows"), WithStarter((&recorder{}).start))
	assert.Equal(t, "start", l.Command())
}

func TestLauncherRejects(t *testing.T) {
	rec := &recorder{}
	l := NewLauncher(config.OpenerConfig{Command: "xdg-open"}, WithGOOS("linux"), WithStarter(rec.start))

	assert.ErrorIs(t, l.Open(""), ErrNoLink)
	assert.Error(t, l.Open("file:///etc/passwd"))
	assert.Error(t, l.Open("javascript:alert(1)"))
	assert.Empty(t, rec.args)
}

func TestLauncherStartFailure(t *testing.T) {
	rec := &recorder{err: errors.New("boom")}
	l := NewLauncher(config.OpenerConfig{Command: "xdg-open"}, WithGOOS("linux"), WithStarter(rec.start))

	err := l.Open("https://x.test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to start xdg-open")
}
