package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/notes/pkg/adapters/inbox"
	"github.com/aretw0/notes/pkg/core"
)

type fakeBackend struct {
	mu    sync.Mutex
	notes []map[string]any
	paths []string
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.paths = append(b.paths, r.Method+" "+r.URL.Path)

	switch r.URL.Path {
	case "/api/notes":
		out := b.notes
		if out == nil {
			out = []map[string]any{}
		}
		_ = json.NewEncoder(w).Encode(out)
	case "/api/add":
		var req map[string]string
		_ = json.Unmarshal(body, &req)
		b.notes = append(b.notes, map[string]any{"id": len(b.notes) + 1, "note": req["note"]})
		w.WriteHeader(http.StatusCreated)
	case "/api/delete":
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error": "Note not found"}`))
	case "/api/health":
		_, _ = w.Write([]byte(`{"status": "healthy"}`))
	default:
		http.NotFound(w, r)
	}
}

func (b *fakeBackend) Paths() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.paths...)
}

func (b *fakeBackend) Notes() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	texts := make([]string, 0, len(b.notes))
	for _, n := range b.notes {
		texts = append(texts, n["note"].(string))
	}
	return texts
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	return runContext(context.Background(), t, stdin, args...)
}

func runContext(ctx context.Context, t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	listJSON, addJSON = false, false
	configPath, baseURL, timeout = "", "", 0
	tailInterval = 5 * time.Second
	inboxPattern, inboxBackfill = inbox.DefaultPattern, false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(ctx)
	return out.String(), err
}

func setup(t *testing.T) (*fakeBackend, []string) {
	t.Helper()
	b := &fakeBackend{}
	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)

	cfgFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("timeout: 2s\n"), 0644))

	return b, []string{"--config", cfgFile, "--url", srv.URL + "/api"}
}

func TestCLI_AddThenList(t *testing.T) {
	b, global := setup(t)

	out, err := run(t, "", append([]string{"add", "buy milk"}, global...)...)
	require.NoError(t, err)
	assert.Equal(t, "1\tbuy milk\n", out)

	out, err = run(t, "", append([]string{"list", "--json"}, global...)...)
	require.NoError(t, err)

	var list core.NoteList
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	assert.Equal(t, []string{"buy milk"}, list.Texts())

	assert.Equal(t, []string{"POST /api/add", "GET /api/notes", "GET /api/notes"}, b.paths)
}

func TestCLI_AddFromStdin(t *testing.T) {
	b, global := setup(t)

	_, err := run(t, "from stdin\n", append([]string{"add"}, global...)...)
	require.NoError(t, err)
	assert.Equal(t, "from stdin", b.notes[0]["note"])
}

func TestCLI_DeleteNotFound(t *testing.T) {
	_, global := setup(t)

	_, err := run(t, "", append([]string{"delete", "9"}, global...)...)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.Equal(t, 5, exitCode(err))

	_, err = run(t, "", append([]string{"delete", "nine"}, global...)...)
	assert.Error(t, err)
}

func TestCLI_Health(t *testing.T) {
	_, global := setup(t)

	out, err := run(t, "", append([]string{"health"}, global...)...)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "healthy ("))
}

func TestCLI_Tail(t *testing.T) {
	b, global := setup(t)
	b.notes = []map[string]any{{"id": 1, "note": "a"}, {"id": 2, "note": "b"}}

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	out, err := runContext(ctx, t, "", append([]string{"tail", "--interval", "50ms"}, global...)...)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.NotEmpty(t, lines)
	assert.True(t, strings.HasPrefix(lines[0], "REFRESH notes=2 "), "unexpected line %q", lines[0])
	assert.Contains(t, b.Paths(), "GET /api/notes")
}

func TestCLI_Tail_RejectsNonPositiveInterval(t *testing.T) {
	_, global := setup(t)

	_, err := run(t, "", append([]string{"tail", "--interval", "0s"}, global...)...)
	assert.Error(t, err)
}

func TestCLI_Inbox(t *testing.T) {
	b, global := setup(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("from backfill\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "skip.md"), []byte("not matched"), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		_, err := runContext(ctx, t, "", append([]string{"inbox", dir, "--backfill"}, global...)...)
		errCh <- err
	}()

	require.Eventually(t, func() bool {
		return slices.Contains(b.Notes(), "from backfill")
	}, 2*time.Second, 20*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("from watcher"), 0644))
	require.Eventually(t, func() bool {
		return slices.Contains(b.Notes(), "from watcher")
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("inbox did not return after cancel")
	}

	assert.Contains(t, b.Paths(), "POST /api/add")
	assert.NotContains(t, b.Notes(), "not matched")
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, exitCode(nil))
	assert.Equal(t, 3, exitCode(core.TransportError("list", errors.New("refused"))))
	assert.Equal(t, 4, exitCode(core.DecodeError("list", errors.New("bad json"))))
	assert.Equal(t, 5, exitCode(&core.ServerError{Op: "add", StatusCode: 500}))
	assert.Equal(t, 1, exitCode(errors.New("other")))
}

func TestCLI_Version(t *testing.T) {
	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "notes version ")
}
