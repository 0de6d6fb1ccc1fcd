package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type mockNotifier struct {
	eventPath chan string
}

func (n *mockNotifier) WatcherItemDidChange(path string) {
	n.eventPath <- path
}

func (n *mockNotifier) WatcherDidError(err error) {
}

func TestFileChanged(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "dyndns.conf")
	require.NoError(t, os.WriteFile(filePath, []byte("api_key=a\n"), 0600))

	w, err := NewFile()
	require.NoError(t, err)
	require.NoError(t, w.Add(filePath))

	n := &mockNotifier{eventPath: make(chan string, 8)}
	done := make(chan struct{})
	go func() {
		w.Start(n)
		close(done)
	}()

	f, err := os.OpenFile(filePath, os.O_WRONLY|os.O_APPEND, 0600)
	require.NoError(t, err)
	_, err = f.WriteString("api_key=b\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	select {
	case path := <-n.eventPath:
		require.Equal(t, filePath, path)
	case <-time.After(5 * time.Second):
		t.Fatal("no change notification")
	}

	w.Shutdown()
	w.Shutdown()
	<-done
}
