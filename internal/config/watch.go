package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Editors often write a file in several steps; only the last event of a burst is applied.
const watchDebounce = 200 * time.Millisecond

// Watch calls onChange with the reloaded configuration every time the file at path changes.
// An edit that leaves the file invalid is logged and skipped. Only settings that are read on
// every use, like the log level, take effect without a restart.
func Watch(path string, onChange func(*AppConfig)) error {
	v := newViper(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("v.ReadInConfig -> %w", err)
	}

	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	v.OnConfigChange(func(e fsnotify.Event) {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(watchDebounce, func() {
			conf, err := Load(path)
			if err != nil {
				zap.L().Warn("ignoring config change", zap.String("file", e.Name), zap.Error(err))
				return
			}
			zap.L().Info("config reloaded", zap.String("file", e.Name))
			onChange(conf)
		})
	})
	v.WatchConfig()

	return nil
}
