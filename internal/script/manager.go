// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// RecordScheduler - 定时录制任务调度工具

package script

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/renameio/v2"
	"github.com/rs/zerolog"

	"github.com/ZSC714725/recordscheduler/internal/shell"
	"github.com/ZSC714725/recordscheduler/internal/task"
)

const (
	tasksDir     = "tasks"
	failedDir    = "failed"
	completedDir = "completed"
	scriptMode   = 0o755
)

// Config for the script manager
type Config struct {
	DataRoot  string
	Extension string
	Logger    zerolog.Logger
}

// Manager owns the script files, the only persisted form of a task.
type Manager struct {
	dir    string
	ext    string
	logger zerolog.Logger
}

// New creates a Manager rooted at <DataRoot>/tasks.
func New(cfg Config) *Manager {
	ext := strings.TrimPrefix(cfg.Extension, ".")
	if ext == "" {
		ext = "sh"
	}
	return &Manager{
		dir:    filepath.Join(cfg.DataRoot, tasksDir),
		ext:    ext,
		logger: cfg.Logger,
	}
}

// Dir is the directory holding live scripts.
func (m *Manager) Dir() string { return m.dir }

// FailedDir is where cancelled scripts end up.
func (m *Manager) FailedDir() string { return filepath.Join(m.dir, failedDir) }

// CompletedDir is where scripts move themselves after running.
func (m *Manager) CompletedDir() string { return filepath.Join(m.dir, completedDir) }

func (m *Manager) fileName(id string) string { return id + "." + m.ext }

// Path returns the script path of a task id.
func (m *Manager) Path(id string) string {
	return filepath.Join(m.dir, m.fileName(id))
}

// Render returns the script text for t.
func (m *Manager) Render(t task.Task, removeAfterCompletion bool) (string, error) {
	def, err := json.Marshal(t.Outer())
	if err != nil {
		return "", fmt.Errorf("encode task %s: %w", t.ID, err)
	}

	var buf bytes.Buffer
	err = scriptTemplate.Execute(&buf, scriptData{
		Name:                  shell.SingleLine(t.Name),
		ID:                    t.ID,
		File:                  m.fileName(t.ID),
		Definition:            shell.Quote(string(def)),
		Inner:                 shell.Quote(shell.SingleLine(t.Inner)),
		Command:               t.Command,
		RemoveAfterCompletion: removeAfterCompletion,
		JobIDName:             ExportJobID,
		DefinitionName:        ExportDefinition,
		InnerName:             ExportInnerDefinition,
	})
	if err != nil {
		return "", fmt.Errorf("render script %s: %w", t.ID, err)
	}
	return buf.String(), nil
}

// Write renders and stores the script of t.
func (m *Manager) Write(t task.Task, removeAfterCompletion bool) error {
	text, err := m.Render(t, removeAfterCompletion)
	if err != nil {
		return err
	}
	return m.WriteRaw(t.ID, text)
}

// WriteRaw stores text as the script of id, replacing it atomically.
func (m *Manager) WriteRaw(id, text string) error {
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return fmt.Errorf("create script dir: %w", err)
	}

	path := m.Path(id)
	pending, err := renameio.NewPendingFile(path, renameio.WithPermissions(scriptMode))
	if err != nil {
		return fmt.Errorf("create pending script %s: %w", path, err)
	}
	defer func() {
		if err := pending.Cleanup(); err != nil {
			m.logger.Debug().Err(err).Str("path", path).Msg("cleanup pending script")
		}
	}()

	if _, err := pending.WriteString(text); err != nil {
		return fmt.Errorf("write script %s: %w", path, err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("replace script %s: %w", path, err)
	}

	// umask may have stripped the execute bits
	if err := os.Chmod(path, scriptMode); err != nil {
		return fmt.Errorf("chmod script %s: %w", path, err)
	}

	m.logger.Debug().Str("task_id", id).Str("path", path).Msg("script written")
	return nil
}

// Read returns the script text of id.
func (m *Manager) Read(id string) (string, error) {
	data, err := os.ReadFile(m.Path(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: script for %s", task.ErrNotFound, id)
		}
		return "", err
	}
	return string(data), nil
}

// ExtractExport returns the value of "export <name>=" in the script of id.
func (m *Manager) ExtractExport(id, name string) (string, error) {
	text, err := m.Read(id)
	if err != nil {
		return "", err
	}
	value, ok := FindExport(text, name)
	if !ok {
		return "", task.Parsef("script "+id, "export %s not found", name)
	}
	return value, nil
}

// FindExport scans text for "export <name>=" and returns the value decoded
// as sh would read it, so hand-edited double-quoted values work too.
func FindExport(text, name string) (string, bool) {
	prefix := "export " + name + "="
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, prefix) {
			return shell.Unquote(line[len(prefix):]), true
		}
	}
	return "", false
}

// MoveToFailed moves the script of id into the failed directory,
// replacing an older file of the same name. Missing scripts are ignored.
func (m *Manager) MoveToFailed(id string) error {
	src := m.Path(id)
	if _, err := os.Stat(src); errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	if err := os.MkdirAll(m.FailedDir(), 0o755); err != nil {
		return fmt.Errorf("create failed dir: %w", err)
	}

	dst := filepath.Join(m.FailedDir(), m.fileName(id))
	if err := os.Remove(dst); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove stale %s: %w", dst, err)
	}
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("move script to failed: %w", err)
	}

	m.logger.Info().Str("task_id", id).Str("path", dst).Msg("script moved to failed")
	return nil
}

// Remove deletes the script of id if present.
func (m *Manager) Remove(id string) error {
	err := os.Remove(m.Path(id))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
