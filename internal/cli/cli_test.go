package cli

import (
	"bytes"
	"context"
	"encoding/base64"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/aretw0/waypoint/internal/logging"
	"github.com/aretw0/waypoint/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettings_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	v, err := NewViper("")
	require.NoError(t, err)
	s, err := LoadSettings(v)
	require.NoError(t, err)

	assert.Equal(t, "routes.yaml", s.Routes)
	assert.Equal(t, 8080, s.HTTP.Port)
	assert.Equal(t, 5*time.Second, s.HTTP.ShutdownTimeout)
	assert.Equal(t, 24*time.Hour, s.Redis.SessionTTL)
	assert.Empty(t, s.Redis.Addr)
}

func TestSettings_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "waypoint.yaml")
	require.NoError(t, os.WriteFile(file, []byte("routes: app.yaml\nhttp:\n  port: 9000\nredis:\n  addr: localhost:6379\nhistory:\n  redact_params: [token, password]\n"), 0o644))
	t.Setenv("WAYPOINT_HTTP_PORT", "9100")
	t.Setenv("WAYPOINT_LOG_LEVEL", "debug")
	t.Setenv("WAYPOINT_REDIS_SESSION_TTL", "10m")

	v, err := NewViper(file)
	require.NoError(t, err)
	s, err := LoadSettings(v)
	require.NoError(t, err)

	assert.Equal(t, "app.yaml", s.Routes)
	assert.Equal(t, 9100, s.HTTP.Port, "env overrides the file")
	assert.Equal(t, "localhost:6379", s.Redis.Addr)
	assert.Equal(t, 10*time.Minute, s.Redis.SessionTTL)
	assert.Equal(t, []string{"token", "password"}, s.History.RedactParams)

	logger, err := s.Logger()
	require.NoError(t, err)
	assert.True(t, logger.Enabled(context.Background(), -4))
}

func TestSettings_MissingExplicitFile(t *testing.T) {
	_, err := NewViper(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestSettings_HostMiddleware(t *testing.T) {
	mws, err := Settings{}.HostMiddleware()
	require.NoError(t, err)
	assert.Empty(t, mws)

	key := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{7}, 32))
	mws, err = Settings{History: HistorySettings{RedactParams: []string{"token"}, EncryptionKey: key}}.HostMiddleware()
	require.NoError(t, err)
	assert.Len(t, mws, 2)

	_, err = Settings{History: HistorySettings{EncryptionKey: "c2hvcnQ="}}.HostMiddleware()
	assert.ErrorContains(t, err, "history.encryption_key")

	_, err = Settings{History: HistorySettings{RedactParams: []string{"("}}}.HostMiddleware()
	assert.ErrorContains(t, err, "history.redact_params")
}

func TestSettings_BadLogLevel(t *testing.T) {
	_, err := Settings{LogLevel: "loud"}.Logger()
	assert.Error(t, err)
}

func guards(t *testing.T) config.GuardSet {
	t.Helper()
	set, err := config.ParseGuardSet([]string{"admin=redirect:/login"})
	require.NoError(t, err)
	return set
}

func TestExecute_Headless(t *testing.T) {
	var out bytes.Buffer
	err := Execute(context.Background(), RunOptions{
		RoutesPath:  "testdata/routes.yaml",
		Guards:      guards(t),
		InitialPath: "/inbox",
		Headless:    true,
	}, Script([]string{"go /admin", "back", "go /missing", "state"}), &out)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "redirected /admin -> /login", lines[0])
	assert.Equal(t, "at /inbox (home)", lines[1])
	assert.Equal(t, "committed /missing (home)", lines[2])
	assert.True(t, strings.HasSuffix(lines[3], " /inbox (home)"), lines[3])
	assert.True(t, strings.HasPrefix(lines[4], "* "), "the last entry is current")
	assert.True(t, strings.HasSuffix(lines[4], " /missing (home)"), lines[4])
}

func TestExecute_Errors(t *testing.T) {
	err := Execute(context.Background(), RunOptions{RoutesPath: "testdata/missing.yaml", Headless: true}, Script(nil), &bytes.Buffer{})
	assert.Error(t, err)

	err = Execute(context.Background(), RunOptions{RoutesPath: "testdata/routes.yaml", Headless: true}, Script(nil), &bytes.Buffer{})
	assert.ErrorContains(t, err, "unknown guard 'admin'")
}

func TestExecute_Banner(t *testing.T) {
	var out bytes.Buffer
	err := Execute(context.Background(), RunOptions{
		RoutesPath: "testdata/routes.yaml",
		Guards:     guards(t),
	}, Script([]string{"quit"}), &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "|___/|_|")
	assert.Contains(t, out.String(), "Bye!")
	assert.Contains(t, out.String(), ">>> Finished at '/'.")
}

// promptWriter closes prompted the first time the runner asks for input.
type promptWriter struct {
	mu       sync.Mutex
	buf      bytes.Buffer
	once     sync.Once
	prompted chan struct{}
}

func (w *promptWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if strings.HasSuffix(string(p), "> ") {
		w.once.Do(func() { close(w.prompted) })
	}
	return w.buf.Write(p)
}

func (w *promptWriter) String() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.String()
}

func TestExecute_CancelWhileWaitingForInput(t *testing.T) {
	in, feed := io.Pipe()
	defer feed.Close()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	out := &promptWriter{prompted: make(chan struct{})}
	opts := RunOptions{RoutesPath: "testdata/routes.yaml", Guards: guards(t)}

	done := make(chan error, 1)
	go func() { done <- Execute(ctx, opts, in, out) }()
	<-out.prompted
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Execute did not return after cancellation")
	}
	assert.NotContains(t, out.String(), "Finished")
}

func TestNotifySignals_RemembersSignal(t *testing.T) {
	sc := notifySignals(context.Background())
	defer sc.cancel()

	require.NoError(t, syscall.Kill(os.Getpid(), syscall.SIGINT))

	select {
	case <-sc.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("signal did not cancel the context")
	}
	assert.Equal(t, os.Interrupt, sc.received())
}

func TestReportExit(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sig      os.Signal
		headless bool
		want     string
	}{
		{"Finished", nil, nil, false, ">>> Finished at '/inbox'.\n"},
		{"Interrupted", context.Canceled, os.Interrupt, false, "[CTRL+C]\n>>> Interrupted at '/inbox'.\n"},
		{"Terminated", context.Canceled, syscall.SIGTERM, false, ">>> Stopped by terminated at '/inbox'.\n"},
		{"Cancelled without signal", context.Canceled, nil, false, ""},
		{"Headless", nil, nil, true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			reportExit(&out, "/inbox", tt.err, tt.sig, tt.headless)
			assert.Equal(t, tt.want, out.String())
		})
	}
}

func TestWatchRoutes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "routes.yaml")
	require.NoError(t, os.WriteFile(path, []byte("routes:\n  - path: /\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var reloads []int
	done := make(chan struct{})
	go func() {
		defer close(done)
		WatchRoutes(ctx, path, nil, 10*time.Millisecond, logging.NewNop(), func(cfg *config.Config) {
			mu.Lock()
			defer mu.Unlock()
			reloads = append(reloads, len(cfg.Routes))
		})
	}()

	count := func() int {
		mu.Lock()
		defer mu.Unlock()
		return len(reloads)
	}

	time.Sleep(30 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("routes: [\n"), 0o644))
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, count(), "invalid edits are skipped")

	require.NoError(t, os.WriteFile(path, []byte("routes:\n  - path: /\n  - path: /inbox\n"), 0o644))
	assert.Eventually(t, func() bool { return count() == 1 }, time.Second, 10*time.Millisecond)

	mu.Lock()
	assert.Equal(t, []int{2}, reloads)
	mu.Unlock()

	cancel()
	<-done
}
