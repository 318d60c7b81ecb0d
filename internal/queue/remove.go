// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// RecordScheduler - 定时录制任务调度工具

package queue

import (
	"context"
	"fmt"
	"strconv"

	"github.com/ZSC714725/recordscheduler/internal/command"
)

// Remover wraps atrm.
type Remover struct {
	cmd *command.Command
}

// NewRemover creates a Remover
func NewRemover(cmd *command.Command) *Remover {
	return &Remover{cmd: cmd}
}

// Remove deletes jobID from the queue.
func (r *Remover) Remove(ctx context.Context, jobID int) error {
	res, err := r.cmd.Run(ctx, strconv.Itoa(jobID))
	if err != nil {
		return fmt.Errorf("%s %d: %w", r.cmd.Name(), jobID, err)
	}
	return r.cmd.Check(res)
}
