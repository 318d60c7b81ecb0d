// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// RecordScheduler - 定时录制任务调度工具

package task

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound    = errors.New("task not found")
	ErrParse       = errors.New("parse failure")
	ErrInvalidTask = errors.New("invalid task")
	// ErrLost marks a queued job whose script is gone.
	ErrLost = errors.New("task script lost")
)

// ParseError reports unexpected command output or corrupt script content.
type ParseError struct {
	Op     string
	Detail string
	Err    error
}

func (e *ParseError) Error() string {
	msg := e.Op + ": " + e.Detail
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Is(target error) bool { return target == ErrParse }

func (e *ParseError) Unwrap() error { return e.Err }

// Parsef builds a ParseError.
func Parsef(op, format string, args ...any) error {
	return &ParseError{Op: op, Detail: fmt.Sprintf(format, args...)}
}
