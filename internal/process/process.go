// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// RecordScheduler - 定时录制任务调度工具
//
// Package process runs short-lived external commands with a hard timeout.

package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// DefaultTimeout applies when Run is called with a non-positive timeout.
const DefaultTimeout = 10 * time.Second

// TimeoutMessage replaces stderr of a process that was killed on timeout.
const TimeoutMessage = "process timed out and was killed"

// Result of a finished process
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	TimedOut bool
}

// Runner runs a binary and waits for it.
type Runner interface {
	Run(ctx context.Context, binary string, args []string, timeout time.Duration) (Result, error)
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context, binary string, args []string, timeout time.Duration) (Result, error)

func (f RunnerFunc) Run(ctx context.Context, binary string, args []string, timeout time.Duration) (Result, error) {
	return f(ctx, binary, args, timeout)
}

// Default is the exec based Runner.
var Default Runner = RunnerFunc(Run)

// Run starts binary with args and blocks until it exits or the timeout hits.
// A process that outlives the timeout (or ctx) is killed together with its
// children and reported with ExitCode -1 and TimeoutMessage as stderr.
// Errors are only returned when the process could not be started.
func Run(ctx context.Context, binary string, args []string, timeout time.Duration) (Result, error) {
	if len(binary) == 0 {
		return Result{}, fmt.Errorf("no valid binary given")
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.Command(binary, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second
	setGroup(cmd)

	if err := cmd.Start(); err != nil {
		return Result{}, err
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var cause error
	select {
	case err := <-done:
		return exitResult(stdout.String(), stderr.String(), err)
	case <-timer.C:
	case <-ctx.Done():
		cause = ctx.Err()
	}

	killTree(cmd.Process.Pid)
	killGroup(cmd)
	<-done

	return Result{
		Stdout:   stdout.String(),
		Stderr:   TimeoutMessage,
		ExitCode: -1,
		TimedOut: true,
	}, cause
}

func exitResult(stdout, stderr string, err error) (Result, error) {
	res := Result{Stdout: stdout, Stderr: stderr}
	if err == nil {
		return res, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}
	return res, err
}
