package am

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigWatcherReloads(t *testing.T) {
	_, project := isolate(t)
	path := filepath.Join(project, ConfigFileName)
	writeFile(t, path, "[explore]\nmax_radius = 2\n")

	cw, err := NewConfigWatcher(path)
	require.NoError(t, err)
	cw.settle = 10 * time.Millisecond

	reloaded := make(chan *Config, 4)
	cw.OnReload(func(cfg *Config) error {
		reloaded <- cfg
		return nil
	})
	cw.Start()
	defer cw.Stop()

	writeFile(t, filepath.Join(project, "notes.txt"), "ignored")
	writeFile(t, path, "[explore]\nmax_radius = 4\n")

	select {
	case cfg := <-reloaded:
		assert.Equal(t, 4, cfg.Explore.MaxRadius)
	case <-time.After(5 * time.Second):
		t.Fatal("config was not reloaded")
	}
}

func TestQuietWindow(t *testing.T) {
	cw := &ConfigWatcher{settle: time.Hour}
	assert.False(t, cw.quiet())
	cw.MarkOwnWrite()
	assert.True(t, cw.quiet())
	assert.True(t, cw.quiet(), "window covers every event of one save")

	cw.settle = 0
	cw.MarkOwnWrite()
	assert.False(t, cw.quiet())
}

func TestStartSetsActiveWatcher(t *testing.T) {
	cw, err := NewConfigWatcher(filepath.Join(t.TempDir(), ConfigFileName))
	require.NoError(t, err)
	cw.settle = time.Hour

	cw.Start()
	assert.Same(t, cw, active.Load())
	markActiveWrite()
	assert.True(t, cw.quiet())

	require.NoError(t, cw.Stop())
	assert.Nil(t, active.Load())
}

func TestStopWithoutStart(t *testing.T) {
	cw, err := NewConfigWatcher(filepath.Join(t.TempDir(), ConfigFileName))
	require.NoError(t, err)
	assert.NoError(t, cw.Stop())
}
