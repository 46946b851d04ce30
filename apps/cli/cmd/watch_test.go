package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/abdul-hamid-achik/hitget/packages/core/config"
	"github.com/abdul-hamid-achik/hitget/packages/http"
	"github.com/abdul-hamid-achik/hitget/packages/output"
	"github.com/abdul-hamid-achik/hitget/packages/url"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lockedBuffer is written by the debounce goroutine while the test reads it
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type countingTransport struct {
	mu    sync.Mutex
	calls int32
	hosts []string
}

func (c *countingTransport) RoundTrip(ctx context.Context, u *url.URL, request []byte) ([]byte, error) {
	c.mu.Lock()
	c.hosts = append(c.hosts, u.Host)
	c.mu.Unlock()
	atomic.AddInt32(&c.calls, 1)
	return []byte("HTTP/1.1 200 OK\nContent-Type: text/plain\n\nok"), nil
}

func (c *countingTransport) count() int {
	return int(atomic.LoadInt32(&c.calls))
}

type watchHarness struct {
	out       *lockedBuffer
	transport *countingTransport
	cancel    context.CancelFunc
	done      chan error
}

func startWatch(t *testing.T, path string, verbose bool) *watchHarness {
	t.Helper()

	h := &watchHarness{
		out:       &lockedBuffer{},
		transport: &countingTransport{},
		done:      make(chan error, 1),
	}

	cfg := config.DefaultConfig()
	cfg.Verbose = config.BoolPtr(verbose)
	formatter := output.NewConsoleFormatter(output.WithWriter(h.out), output.WithNoColor(true))
	client := http.NewClient(http.WithTransport(h.transport))

	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	go func() {
		h.done <- watchURLList(ctx, h.out, formatter, client, cfg, path)
	}()

	t.Cleanup(func() {
		cancel()
		select {
		case <-h.done:
		case <-time.After(5 * time.Second):
			t.Error("watch did not stop after cancel")
		}
	})

	require.Eventually(t, func() bool {
		return strings.Contains(h.out.String(), "for changes...")
	}, 5*time.Second, 10*time.Millisecond, "watch never started")
	return h
}

func TestWatchURLList_RefetchesOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "urls.txt")
	require.NoError(t, os.WriteFile(path, []byte("http://first.test/\n"), 0644))

	h := startWatch(t, path, false)
	assert.Equal(t, 1, h.transport.count())

	require.NoError(t, os.WriteFile(path, []byte("# updated\nhttp://second.test/\nhttp://third.test/\n"), 0644))

	require.Eventually(t, func() bool {
		return h.transport.count() == 3
	}, 5*time.Second, 20*time.Millisecond)

	h.transport.mu.Lock()
	assert.Equal(t, []string{"first.test", "second.test", "third.test"}, h.transport.hosts)
	h.transport.mu.Unlock()

	require.Eventually(t, func() bool {
		return strings.Contains(h.out.String(), "Re-fetching 2 URLs")
	}, 5*time.Second, 20*time.Millisecond)
}

func TestWatchURLList_DebouncesRapidWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "urls.txt")
	require.NoError(t, os.WriteFile(path, []byte("http://first.test/\n"), 0644))

	h := startWatch(t, path, false)

	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(path, []byte("http://again.test/\n"), 0644))
	}

	require.Eventually(t, func() bool {
		return h.transport.count() == 2
	}, 5*time.Second, 20*time.Millisecond)

	time.Sleep(2 * WatchDebounceDelay)
	assert.Equal(t, 2, h.transport.count())
	assert.Equal(t, 1, strings.Count(h.out.String(), "File changed"))
}

func TestWatchURLList_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "urls.txt")
	require.NoError(t, os.WriteFile(path, []byte("http://first.test/\n"), 0644))

	h := startWatch(t, path, false)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("http://other.test/\n"), 0644))

	time.Sleep(3 * WatchDebounceDelay)
	assert.Equal(t, 1, h.transport.count())
	assert.NotContains(t, h.out.String(), "File changed")
}

func TestWatchURLList_StopsOnCancel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "urls.txt")
	require.NoError(t, os.WriteFile(path, []byte("http://first.test/\n"), 0644))

	h := startWatch(t, path, false)
	h.cancel()

	select {
	case err := <-h.done:
		assert.NoError(t, err)
		h.done <- err
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}

func TestWatchURLList_VerboseBanner(t *testing.T) {
	path := filepath.Join(t.TempDir(), "urls.txt")
	require.NoError(t, os.WriteFile(path, []byte("http://first.test/\n"), 0644))

	h := startWatch(t, path, true)
	assert.True(t, strings.HasPrefix(h.out.String(), "hitget "+version+"\n"), h.out.String())
}

func TestWatchURLList_MissingFile(t *testing.T) {
	client := http.NewClient(http.WithTransport(&countingTransport{}))
	formatter := output.NewConsoleFormatter(output.WithWriter(&bytes.Buffer{}), output.WithNoColor(true))

	err := watchURLList(context.Background(), &bytes.Buffer{}, formatter, client,
		config.DefaultConfig(), filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot read")
}
