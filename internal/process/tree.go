// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// RecordScheduler - 定时录制任务调度工具

package process

import (
	gopsutilprocess "github.com/shirou/gopsutil/v3/process"
)

// killTree kills every descendant of pid, deepest first. Children that moved
// into their own process group are not reached by killGroup.
func killTree(pid int) {
	proc, err := gopsutilprocess.NewProcess(int32(pid))
	if err != nil {
		return
	}
	for _, child := range descendants(proc) {
		_ = child.Kill()
	}
}

func descendants(proc *gopsutilprocess.Process) []*gopsutilprocess.Process {
	children, err := proc.Children()
	if err != nil {
		return nil
	}
	var out []*gopsutilprocess.Process
	for _, c := range children {
		out = append(out, descendants(c)...)
		out = append(out, c)
	}
	return out
}
