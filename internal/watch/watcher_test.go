package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type collector struct {
	mu    sync.Mutex
	calls [][]string
	ch    chan struct{}
}

func newCollector() *collector {
	return &collector{ch: make(chan struct{}, 16)}
}

func (c *collector) onChange(_ context.Context, changed []string) {
	c.mu.Lock()
	c.calls = append(c.calls, changed)
	c.mu.Unlock()
	c.ch <- struct{}{}
}

func (c *collector) wait(t *testing.T) {
	t.Helper()
	select {
	case <-c.ch:
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestNew_Validation(t *testing.T) {
	_, err := New(nil, 0, func(context.Context, []string) {})
	assert.Error(t, err)
	_, err = New([]string{""}, 0, func(context.Context, []string) {})
	assert.Error(t, err)
	_, err = New([]string{"a.json"}, 0, nil)
	assert.Error(t, err)

	w, err := New([]string{"a.json", "b.map"}, 0, func(context.Context, []string) {})
	require.NoError(t, err)
	assert.Equal(t, DefaultDebounce, w.debounceDur)
	assert.Len(t, w.dirs, 1)
}

func TestWatcher_DebouncesBurstIntoOneTrigger(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "world.json")
	writeFile(t, input, "{}")

	c := newCollector()
	w, err := New([]string{input}, 50*time.Millisecond, c.onChange)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	for i := 0; i < 5; i++ {
		writeFile(t, input, `{"n":`+string(rune('0'+i))+`}`)
	}
	c.wait(t)

	c.mu.Lock()
	defer c.mu.Unlock()
	require.Len(t, c.calls, 1)
	abs, _ := filepath.Abs(input)
	assert.Equal(t, []string{abs}, c.calls[0])
	assert.GreaterOrEqual(t, w.Stats().Events, 1)
}

func TestWatcher_IgnoresUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "world.json")
	writeFile(t, input, "{}")

	c := newCollector()
	w, err := New([]string{input}, 20*time.Millisecond, c.onChange)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))

	writeFile(t, filepath.Join(dir, "notes.txt"), "hello")
	time.Sleep(200 * time.Millisecond)
	w.Stop()

	assert.Zero(t, w.Stats().Events)
	assert.Zero(t, w.Stats().Triggers)
}

func TestWatcher_StopsOnContextCancel(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "world.map")
	writeFile(t, input, "x")

	ctx, cancel := context.WithCancel(context.Background())
	w, err := New([]string{input}, 0, func(context.Context, []string) {})
	require.NoError(t, err)
	require.NoError(t, w.Start(ctx))
	cancel()

	select {
	case <-w.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("event loop did not exit")
	}
	w.Stop()
}

func TestSettled_WaitsForQuietWindow(t *testing.T) {
	w := &Watcher{pending: map[string]time.Time{}, debounceDur: time.Second}
	now := time.Now()
	w.pending["/a"] = now.Add(-2 * time.Second)
	w.pending["/b"] = now.Add(-100 * time.Millisecond)

	assert.Nil(t, w.settled(now))
	assert.Equal(t, []string{"/a", "/b"}, w.settled(now.Add(time.Second)))
	assert.Empty(t, w.pending)
	assert.Nil(t, w.settled(now.Add(time.Hour)))
}
