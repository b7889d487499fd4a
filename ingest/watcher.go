package ingest

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"inquest/internal"
	"inquest/models"
)

// Writes often arrive as bursts of events for the same file; only the last
// one within this window triggers an ingest.
const watchDebounce = 500 * time.Millisecond

// Watcher ingests files dropped into a directory into one collection.
type Watcher struct {
	ingestor   *Ingestor
	collection *models.Collection
	logger     *zap.SugaredLogger

	mu     sync.Mutex
	timers map[string]*time.Timer
}

func NewWatcher(ingestor *Ingestor, collection *models.Collection) (*Watcher, error) {
	logger, err := internal.NewLogger("watch")
	if err != nil {
		return nil, err
	}

	return &Watcher{
		ingestor:   ingestor,
		collection: collection,
		logger:     logger,
		timers:     make(map[string]*time.Timer),
	}, nil
}

// Run watches dir until the underlying watcher closes.
func (w *Watcher) Run(dir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return err
	}

	w.logger.Infow("watching directory", "dir", dir, "collection", w.collection.ID)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !supportedExtension(strings.ToLower(filepath.Ext(event.Name))) {
				continue
			}
			w.schedule(event.Name)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Errorw("watch error", "error", err)
		}
	}
}

func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.timers[path]; ok {
		timer.Reset(watchDebounce)
		return
	}

	w.timers[path] = time.AfterFunc(watchDebounce, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()

		if _, err := w.ingestor.IngestFile(w.collection, path, models.Metadata{}); err != nil {
			w.logger.Errorw("failed to ingest file", "path", path, "error", err)
		}
	})
}
