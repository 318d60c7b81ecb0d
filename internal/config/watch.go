// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// RecordScheduler - 定时录制任务调度工具

package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const debounce = 250 * time.Millisecond

// Watcher reloads the config file on change and reports what changed.
type Watcher struct {
	path   string
	logger zerolog.Logger

	mu  sync.Mutex
	cfg *Config
}

// NewWatcher starts from the already loaded cfg.
func NewWatcher(path string, cfg *Config, logger zerolog.Logger) *Watcher {
	return &Watcher{path: path, cfg: cfg, logger: logger}
}

// Current returns the last loaded config.
func (w *Watcher) Current() *Config {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cfg
}

// Reload reads the file and returns the changed categories. The current
// config is kept when the file does not parse.
func (w *Watcher) Reload() ([]Change, error) {
	next, err := Load(w.path)
	if err != nil {
		return nil, err
	}
	w.mu.Lock()
	old := w.cfg
	w.cfg = next
	w.mu.Unlock()
	return Diff(old, next), nil
}

// Watch blocks until ctx is done, calling fn for every change. The
// directory is watched so editors that replace the file are handled.
func (w *Watcher) Watch(ctx context.Context, fn func(Change)) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		return err
	}
	name := filepath.Clean(w.path)

	var timer *time.Timer
	fire := make(chan struct{}, 1)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != name || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn().Err(err).Msg("config watcher error")
		case <-fire:
			changes, err := w.Reload()
			if err != nil {
				w.logger.Error().Err(err).Str("path", w.path).Msg("config reload failed, keeping previous")
				continue
			}
			for _, c := range changes {
				fn(c)
			}
		}
	}
}
