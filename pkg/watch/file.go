package watch

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// FileSourceConfig contains configuration for a FileSource.
type FileSourceConfig struct {
	// Path is the file or directory to watch.
	Path string

	// DebounceInterval is the quiet period after file events before
	// subscribers are notified (default: 100ms).
	DebounceInterval time.Duration

	// Extensions restricts notifications to files with one of these
	// extensions (e.g. ".yaml"). Empty means all files.
	Extensions []string

	// SkipHidden controls whether hidden files and directories are ignored.
	SkipHidden bool
}

// DefaultFileSourceConfig returns the default FileSource configuration.
func DefaultFileSourceConfig() *FileSourceConfig {
	return &FileSourceConfig{
		DebounceInterval: 100 * time.Millisecond,
		SkipHidden:       true,
	}
}

// FileSource is a change Source backed by file system notifications.
// It lets validation handlers re-run when a file-backed data model changes
// on disk. Events are debounced so an editor writing a file several times
// in quick succession produces a single notification.
type FileSource struct {
	watcher  *fsnotify.Watcher
	config   *FileSourceConfig
	logger   *slog.Logger
	debounce *Debouncer
	signal   *Signal

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewFileSource creates a FileSource watching the configured path.
// Call Start to begin delivering notifications and Close to release the
// underlying watcher.
func NewFileSource(config *FileSourceConfig, logger *slog.Logger) (*FileSource, error) {
	if config == nil {
		config = DefaultFileSourceConfig()
	}
	if config.Path == "" {
		return nil, fmt.Errorf("watch: file source path cannot be empty")
	}
	if config.DebounceInterval <= 0 {
		config.DebounceInterval = 100 * time.Millisecond
	}
	if logger == nil {
		logger = slog.Default().With("component", "watch.file")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: failed to create fsnotify watcher: %w", err)
	}

	return &FileSource{
		watcher:  watcher,
		config:   config,
		logger:   logger,
		debounce: NewDebouncer(config.DebounceInterval),
		signal:   NewSignal(),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Subscribe implements Source.
func (fs *FileSource) Subscribe(fn func()) (cancel func()) {
	return fs.signal.Subscribe(fn)
}

// Count returns the number of debounced notifications delivered so far.
func (fs *FileSource) Count() uint64 {
	return fs.signal.Count()
}

// Start begins watching and delivering notifications in a background
// goroutine. It returns an error if the source is already running or the
// path cannot be watched.
func (fs *FileSource) Start() error {
	fs.mu.Lock()
	if fs.running {
		fs.mu.Unlock()
		return fmt.Errorf("watch: file source already running")
	}
	fs.running = true
	fs.mu.Unlock()

	if err := fs.addPath(fs.config.Path); err != nil {
		fs.mu.Lock()
		fs.running = false
		fs.mu.Unlock()
		return fmt.Errorf("watch: failed to watch path: %w", err)
	}

	fs.logger.Info("file source started",
		"path", fs.config.Path,
		"debounce_ms", fs.config.DebounceInterval.Milliseconds(),
	)

	go fs.loop()
	return nil
}

func (fs *FileSource) loop() {
	defer close(fs.doneCh)

	for {
		select {
		case <-fs.stopCh:
			return

		case event, ok := <-fs.watcher.Events:
			if !ok {
				return
			}
			if !fs.shouldProcessEvent(event) {
				continue
			}
			fs.logger.Debug("file event detected",
				"path", event.Name,
				"op", event.Op.String(),
			)
			fs.debounce.Trigger(func() {
				fs.signal.Notify()
			})

		case err, ok := <-fs.watcher.Errors:
			if !ok {
				return
			}
			fs.logger.Error("file source error", "error", err)
			// Keep watching despite errors.
		}
	}
}

// Close stops the source and releases the underlying watcher.
func (fs *FileSource) Close() error {
	fs.mu.Lock()
	if !fs.running {
		fs.mu.Unlock()
		return fs.watcher.Close()
	}
	fs.running = false
	fs.mu.Unlock()

	close(fs.stopCh)
	<-fs.doneCh
	fs.debounce.Stop()

	if err := fs.watcher.Close(); err != nil {
		return fmt.Errorf("watch: failed to close watcher: %w", err)
	}
	return nil
}

func (fs *FileSource) addPath(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fs.watcher.Add(path)
	}

	return filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fs.config.SkipHidden && strings.HasPrefix(filepath.Base(p), ".") && p != path {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() {
			if err := fs.watcher.Add(p); err != nil {
				return fmt.Errorf("failed to watch directory %q: %w", p, err)
			}
			fs.logger.Debug("watching directory", "path", p)
		}
		return nil
	})
}

func (fs *FileSource) shouldProcessEvent(event fsnotify.Event) bool {
	if event.Op&fsnotify.Chmod == fsnotify.Chmod {
		return false
	}
	if fs.config.SkipHidden && strings.HasPrefix(filepath.Base(event.Name), ".") {
		return false
	}
	if len(fs.config.Extensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(event.Name))
	for _, valid := range fs.config.Extensions {
		if ext == strings.ToLower(valid) {
			return true
		}
	}
	return false
}
