package monitoring

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ArtifactWatcher reports changes to artifact files that are already loaded.
// It never reloads them: the process keeps serving the artifacts it started with.
type ArtifactWatcher struct {
	watcher *fsnotify.Watcher
	files   map[string]string
	logger  *zap.Logger
	metrics *Metrics
	wg      sync.WaitGroup
}

// WatchArtifacts watches the given files, keyed by artifact name.
func WatchArtifacts(artifacts map[string]string, logger *zap.Logger, metrics *Metrics) (*ArtifactWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	w := &ArtifactWatcher{
		watcher: watcher,
		files:   make(map[string]string, len(artifacts)),
		logger:  logger,
		metrics: metrics,
	}

	// watch directories: replacing a file via rename drops a watch on the file itself
	dirs := make(map[string]bool)
	for name, path := range artifacts {
		abs, err := filepath.Abs(path)
		if err != nil {
			watcher.Close()
			return nil, fmt.Errorf("resolve %s: %w", path, err)
		}
		w.files[abs] = name
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	w.wg.Add(1)
	go w.run()
	return w, nil
}

func (w *ArtifactWatcher) run() {
	defer w.wg.Done()
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("artifact watcher error", zap.Error(err))
		}
	}
}

func (w *ArtifactWatcher) handle(event fsnotify.Event) {
	if event.Op == fsnotify.Chmod {
		return
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return
	}
	name, ok := w.files[abs]
	if !ok {
		return
	}
	w.metrics.ArtifactChanged(name, event.Op.String())
	w.logger.Warn("artifact changed on disk; restart to load it",
		zap.String("artifact", name),
		zap.String("path", abs),
		zap.String("op", event.Op.String()),
	)
}

// Close stops watching and waits for the event loop to exit.
func (w *ArtifactWatcher) Close() error {
	err := w.watcher.Close()
	w.wg.Wait()
	return err
}
