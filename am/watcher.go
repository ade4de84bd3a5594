package am

import (
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/teranos/provgraph/errors"
	"github.com/teranos/provgraph/logger"
)

// ConfigWatcher reloads am.toml after it changes on disk and hands the new
// Config to every OnReload subscriber. Changes settle for a short period
// first, since one save raises several events.
type ConfigWatcher struct {
	path   string
	fs     *fsnotify.Watcher
	settle time.Duration

	mu         sync.Mutex
	subs       []ReloadCallback
	quietUntil time.Time

	quit    chan struct{}
	done    chan struct{}
	started atomic.Bool
}

// ReloadCallback receives the config after a successful reload
type ReloadCallback func(*Config) error

// active is the watcher SetValue consults so its own writes are not reloaded.
var active atomic.Pointer[ConfigWatcher]

// NewConfigWatcher watches the directory of configPath; editors that save by
// rename would otherwise drop a watch on the file itself.
func NewConfigWatcher(configPath string) (*ConfigWatcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}
	if err := fw.Add(filepath.Dir(configPath)); err != nil {
		fw.Close()
		return nil, errors.Wrapf(err, "failed to watch config directory of %s", configPath)
	}
	return &ConfigWatcher{
		path:   filepath.Clean(configPath),
		fs:     fw,
		settle: 500 * time.Millisecond,
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}, nil
}

// OnReload subscribes fn to reloads
func (cw *ConfigWatcher) OnReload(fn ReloadCallback) {
	cw.mu.Lock()
	cw.subs = append(cw.subs, fn)
	cw.mu.Unlock()
}

// MarkOwnWrite suppresses events for one settle period.
func (cw *ConfigWatcher) MarkOwnWrite() {
	cw.mu.Lock()
	cw.quietUntil = time.Now().Add(cw.settle)
	cw.mu.Unlock()
}

func (cw *ConfigWatcher) quiet() bool {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	return time.Now().Before(cw.quietUntil)
}

// Start runs the watch loop and makes cw the active watcher.
func (cw *ConfigWatcher) Start() {
	if !cw.started.CompareAndSwap(false, true) {
		return
	}
	active.Store(cw)
	go cw.loop()
}

func (cw *ConfigWatcher) loop() {
	defer close(cw.done)

	var pending <-chan time.Time
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-cw.quit:
			return
		case ev, ok := <-cw.fs.Events:
			if !ok {
				return
			}
			if !cw.relevant(ev) {
				continue
			}
			if cw.quiet() {
				logger.Debugw("Config watcher ignoring own write", logger.FieldFile, ev.Name)
				continue
			}
			logger.Debugw("Config file changed", logger.FieldFile, ev.Name, "op", ev.Op.String())
			if timer == nil {
				timer = time.NewTimer(cw.settle)
			} else {
				timer.Reset(cw.settle)
			}
			pending = timer.C
		case <-pending:
			pending = nil
			cw.reload()
		case err, ok := <-cw.fs.Errors:
			if !ok {
				return
			}
			logger.Warnw("Config watcher error", logger.FieldError, err)
		}
	}
}

func (cw *ConfigWatcher) relevant(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != cw.path {
		return false
	}
	return ev.Op&(fsnotify.Write|fsnotify.Create) != 0
}

func (cw *ConfigWatcher) reload() {
	Reset()
	cfg, err := Load()
	if err != nil {
		logger.Errorw("Config reload failed", logger.FieldFile, cw.path, logger.FieldError, err)
		return
	}
	logger.Infow("Config reloaded",
		logger.FieldFile, cw.path,
		"max_radius", cfg.Explore.MaxRadius,
		"default_strategy", cfg.Explore.DefaultStrategy)

	cw.mu.Lock()
	subs := append([]ReloadCallback(nil), cw.subs...)
	cw.mu.Unlock()
	for _, fn := range subs {
		if err := fn(cfg); err != nil {
			logger.Warnw("Config reload subscriber failed", logger.FieldError, err)
		}
	}
}

// Stop ends the loop, waits for it and releases the fsnotify handle.
func (cw *ConfigWatcher) Stop() error {
	active.CompareAndSwap(cw, nil)
	if cw.started.Load() {
		select {
		case <-cw.quit:
		default:
			close(cw.quit)
		}
		<-cw.done
	}
	return cw.fs.Close()
}

// markActiveWrite tells the running watcher, if any, that SetValue is about
// to rewrite the config file.
func markActiveWrite() {
	if cw := active.Load(); cw != nil {
		cw.MarkOwnWrite()
	}
}
