// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// RecordScheduler - 定时录制任务调度工具

package queue

import (
	"bufio"
	"context"
	"fmt"
	"iter"
	"regexp"
	"strconv"
	"strings"

	"github.com/ZSC714725/recordscheduler/internal/command"
)

var reListLine = regexp.MustCompile(`^(\d+)\s+`)

// Lister wraps atq.
type Lister struct {
	cmd *command.Command
}

// NewLister creates a Lister
func NewLister(cmd *command.Command) *Lister {
	return &Lister{cmd: cmd}
}

// Jobs runs atq and returns the job numbers of the current snapshot.
func (l *Lister) Jobs(ctx context.Context) (iter.Seq[int], error) {
	res, err := l.cmd.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", l.cmd.Name(), err)
	}
	if err := l.cmd.Check(res); err != nil {
		return nil, err
	}
	return ParseList(res.Stdout), nil
}

// ParseList yields the leading job number of every line; other lines are skipped.
func ParseList(output string) iter.Seq[int] {
	return func(yield func(int) bool) {
		scanner := bufio.NewScanner(strings.NewReader(output))
		for scanner.Scan() {
			line := scanner.Text()
			if strings.TrimSpace(line) == "" {
				continue
			}
			m := reListLine.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			n, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			if !yield(n) {
				return
			}
		}
	}
}
