// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// RecordScheduler - 定时录制任务调度工具

package logger

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config 日志配置
type Config struct {
	Level   string
	Output  io.Writer
	Service string
}

var (
	mu   sync.RWMutex
	base = zerolog.New(os.Stderr).With().Timestamp().Logger()
)

// Configure replaces the base logger. Safe to call more than once (config reload).
func Configure(cfg Config) {
	SetLevel(cfg.Level)
	zerolog.TimeFieldFormat = time.RFC3339

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	service := cfg.Service
	if service == "" {
		service = "recordscheduler"
	}

	mu.Lock()
	base = zerolog.New(out).With().Timestamp().Str("service", service).Logger()
	mu.Unlock()
}

// SetLevel sets the global level; unknown or empty values fall back to info.
func SetLevel(level string) {
	lvl := zerolog.InfoLevel
	if level != "" {
		if parsed, err := zerolog.ParseLevel(level); err == nil {
			lvl = parsed
		}
	}
	zerolog.SetGlobalLevel(lvl)
}

// New returns a child logger tagged with the component name.
func New(component string) zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base.With().Str("component", component).Logger()
}
