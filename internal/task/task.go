// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// RecordScheduler - 定时录制任务调度工具

package task

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Task is a command line to run once at StartTime.
// Inner carries the serialized domain object the task was built from.
type Task struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Command   string    `json:"command"`
	StartTime time.Time `json:"start_time"`
	Inner     string    `json:"inner,omitempty"`
}

// New creates a task with a fresh id.
func New(name, command string, start time.Time, inner string) Task {
	return Task{
		ID:        uuid.NewString(),
		Name:      name,
		Command:   command,
		StartTime: start,
		Inner:     inner,
	}
}

// Outer returns a copy without the inner payload.
func (t Task) Outer() Task {
	t.Inner = ""
	return t
}

// Validate checks the fields needed to render and submit a script.
func (t Task) Validate() error {
	if _, err := uuid.Parse(t.ID); err != nil {
		return fmt.Errorf("%w: id %q: %v", ErrInvalidTask, t.ID, err)
	}
	if strings.TrimSpace(t.Command) == "" {
		return fmt.Errorf("%w: empty command", ErrInvalidTask)
	}
	if strings.ContainsAny(t.Command, "\n\r") {
		return fmt.Errorf("%w: command spans multiple lines", ErrInvalidTask)
	}
	if t.StartTime.IsZero() {
		return fmt.Errorf("%w: missing start time", ErrInvalidTask)
	}
	return nil
}
