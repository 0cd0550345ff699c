package watcher_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/plx-project/plx/internal/model"
	"github.com/plx-project/plx/internal/watcher"
	"github.com/plx-project/plx/internal/work"
	"github.com/stretchr/testify/require"
)

func TestWatcher(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	main := filepath.Join(dir, "main.c")
	other := filepath.Join(dir, "other.c")
	require.NoError(t, os.WriteFile(main, []byte("int main;"), 0o644))

	w := watcher.New(main, 50*time.Millisecond)
	require.Equal(t, work.KindFileWatch, w.Kind())

	events := make(chan model.Event, 8)
	ctx, cancel := context.WithCancel(t.Context())
	t.Cleanup(cancel)
	done := make(chan bool, 1)
	go func() {
		done <- w.Run(ctx, work.NewSink(events))
	}()

	// fsnotify needs the watch in place before the first write counts
	deadline := time.Now().Add(5 * time.Second)
	for saved := false; !saved; {
		require.True(t, time.Now().Before(deadline), "no FileSaved event")
		require.NoError(t, os.WriteFile(main, []byte("int main(void) { return 0; }"), 0o644))
		select {
		case ev := <-events:
			require.Equal(t, model.FileSaved{Path: main}, ev)
			saved = true
		case <-time.After(200 * time.Millisecond):
		}
	}

	t.Run("burst is debounced", func(t *testing.T) {
		for range 5 {
			require.NoError(t, os.WriteFile(main, []byte("int main(void) { return 1; }"), 0o644))
			time.Sleep(5 * time.Millisecond)
		}
		select {
		case ev := <-events:
			require.Equal(t, model.FileSaved{Path: main}, ev)
		case <-time.After(2 * time.Second):
			t.Fatal("no FileSaved after a burst of writes")
		}
		select {
		case ev := <-events:
			t.Fatalf("unexpected event %s", ev)
		case <-time.After(200 * time.Millisecond):
		}
	})

	t.Run("other files are ignored", func(t *testing.T) {
		require.NoError(t, os.WriteFile(other, []byte("x"), 0o644))
		select {
		case ev := <-events:
			t.Fatalf("unexpected event %s", ev)
		case <-time.After(200 * time.Millisecond):
		}
	})

	t.Run("rename over the file", func(t *testing.T) {
		tmp := filepath.Join(dir, ".main.c.swp")
		require.NoError(t, os.WriteFile(tmp, []byte("int main(void) { return 2; }"), 0o644))
		require.NoError(t, os.Rename(tmp, main))
		select {
		case ev := <-events:
			require.Equal(t, model.FileSaved{Path: main}, ev)
		case <-time.After(2 * time.Second):
			t.Fatal("no FileSaved after rename")
		}
	})

	cancel()
	select {
	case ok := <-done:
		require.True(t, ok)
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatcher_Fail(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "missing", "main.c")
	events := make(chan model.Event, 1)
	ok := watcher.New(path, 0).Run(t.Context(), work.NewSink(events))
	require.False(t, ok)
	failed := (<-events).(model.WatcherFailed)
	require.Equal(t, path, failed.Path)
	require.NotEmpty(t, failed.Err)
}
