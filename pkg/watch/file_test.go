package watch

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewFileSource(t *testing.T) {
	tmpDir := t.TempDir()

	config := DefaultFileSourceConfig()
	config.Path = tmpDir

	fs, err := NewFileSource(config, nil)
	if err != nil {
		t.Fatalf("NewFileSource() error = %v", err)
	}
	if fs.watcher == nil {
		t.Error("fs.watcher is nil")
	}
	if fs.debounce == nil {
		t.Error("fs.debounce is nil")
	}

	_ = fs.Close()
}

func TestNewFileSourceEmptyPath(t *testing.T) {
	_, err := NewFileSource(&FileSourceConfig{}, nil)
	if err == nil {
		t.Fatal("NewFileSource() with empty path error = nil, want error")
	}
}

func TestFileSourceNotifiesOnWrite(t *testing.T) {
	tmpDir := t.TempDir()
	tmpFile := filepath.Join(tmpDir, "model.yaml")
	if err := os.WriteFile(tmpFile, []byte("name: a\n"), 0644); err != nil {
		t.Fatal(err)
	}

	config := DefaultFileSourceConfig()
	config.Path = tmpFile
	config.DebounceInterval = 50 * time.Millisecond

	fs, err := NewFileSource(config, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = fs.Close() }()

	var notified atomic.Int32
	notifiedCh := make(chan struct{}, 10)
	cancel := fs.Subscribe(func() {
		notified.Add(1)
		notifiedCh <- struct{}{}
	})
	defer cancel()

	if err := fs.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	// Several writes in quick succession debounce to one notification.
	for range 3 {
		if err := os.WriteFile(tmpFile, []byte("name: b\n"), 0644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case <-notifiedCh:
	case <-time.After(3 * time.Second):
		t.Fatal("no notification after file write")
	}

	time.Sleep(200 * time.Millisecond)
	if got := notified.Load(); got != 1 {
		t.Errorf("notifications = %d, want 1 (debounced)", got)
	}
	if fs.Count() == 0 {
		t.Error("Count() = 0 after notification")
	}
}

func TestFileSourceExtensionFilter(t *testing.T) {
	tmpDir := t.TempDir()

	config := DefaultFileSourceConfig()
	config.Path = tmpDir
	config.Extensions = []string{".yaml"}
	config.DebounceInterval = 30 * time.Millisecond

	fs, err := NewFileSource(config, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = fs.Close() }()

	var notified atomic.Int32
	cancel := fs.Subscribe(func() { notified.Add(1) })
	defer cancel()

	if err := fs.Start(); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(filepath.Join(tmpDir, "ignored.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	time.Sleep(300 * time.Millisecond)
	if got := notified.Load(); got != 0 {
		t.Errorf("notifications = %d for filtered extension, want 0", got)
	}
}

func TestFileSourceStartTwice(t *testing.T) {
	tmpDir := t.TempDir()
	config := DefaultFileSourceConfig()
	config.Path = tmpDir

	fs, err := NewFileSource(config, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = fs.Close() }()

	if err := fs.Start(); err != nil {
		t.Fatalf("first Start() error = %v", err)
	}
	if err := fs.Start(); err == nil {
		t.Error("second Start() error = nil, want error")
	}
}
