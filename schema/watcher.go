package schema

import (
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/teranos/provgraph/errors"
	"github.com/teranos/provgraph/logger"
)

// Watcher reloads a DirProvider when files in its directory change.
type Watcher struct {
	provider       *DirProvider
	watcher        *fsnotify.Watcher
	logger         *zap.SugaredLogger
	mu             sync.Mutex
	debounceTimer  *time.Timer
	debouncePeriod time.Duration
	onReload       func(error)
	done           chan struct{}
}

// NewWatcher watches the provider's directory. onReload, when set, receives
// the result of each reload.
func NewWatcher(provider *DirProvider, onReload func(error)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "create fsnotify watcher")
	}
	if err := fw.Add(provider.Dir()); err != nil {
		fw.Close()
		return nil, errors.Wrapf(err, "watch schema dir %s", provider.Dir())
	}
	return &Watcher{
		provider:       provider,
		watcher:        fw,
		logger:         provider.logger.With(logger.FieldComponent, "schema-watcher"),
		debouncePeriod: 250 * time.Millisecond,
		onReload:       onReload,
		done:           make(chan struct{}),
	}, nil
}

// Start begins watching in a goroutine.
func (w *Watcher) Start() {
	go w.watchLoop()
}

func (w *Watcher) watchLoop() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !isSchemaFile(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			w.logger.Debugw("Schema change detected",
				logger.FieldFile, event.Name,
				"op", event.Op.String())
			w.scheduleReload()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warnw("Schema watcher error", logger.FieldError, err)
		}
	}
}

func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.debouncePeriod, func() {
		err := w.provider.Reload()
		if err != nil {
			w.logger.Errorw("Schema reload failed", logger.FieldError, err)
		}
		if w.onReload != nil {
			w.onReload(err)
		}
	})
}

// Stop closes the underlying watcher and waits for the loop to exit.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.mu.Unlock()
	err := w.watcher.Close()
	<-w.done
	return err
}
