// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// RecordScheduler - 定时录制任务调度工具
//
// Package queue adapts the at(1) family (at, atq, atrm). None of them offer
// structured output, so everything here is parsing of literal CLI text.

package queue

import (
	"errors"

	"github.com/ZSC714725/recordscheduler/internal/task"
)

// ErrTaskIDNotFound marks a job whose text carries no TASK_ID line, which
// usually means it was submitted by someone else.
var ErrTaskIDNotFound = errors.New("task id not found")

// JobTask pairs a queue job number with the task it runs.
type JobTask struct {
	JobID int       `json:"job_id"`
	Task  task.Task `json:"task"`
}
