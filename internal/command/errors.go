// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// RecordScheduler - 定时录制任务调度工具

package command

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingDependency = errors.New("missing dependency")
	ErrExternalProcess   = errors.New("external process failed")
)

// ProcessError is returned when a wrapped command exits non-zero.
// Stderr is kept verbatim.
type ProcessError struct {
	Command  string
	ExitCode int
	Stderr   string
}

func (e *ProcessError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		return fmt.Sprintf("%s: exit code %d", e.Command, e.ExitCode)
	}
	return fmt.Sprintf("%s: exit code %d: %s", e.Command, e.ExitCode, msg)
}

func (e *ProcessError) Is(target error) bool {
	return target == ErrExternalProcess
}
