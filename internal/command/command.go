// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// RecordScheduler - 定时录制任务调度工具

package command

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/ZSC714725/recordscheduler/internal/metrics"
	"github.com/ZSC714725/recordscheduler/internal/process"
)

// Command is an external program that was found on the host.
type Command struct {
	name    string
	binary  string
	shell   string
	timeout time.Duration
	runner  process.Runner
}

// Option configures a Command
type Option func(*options)

type options struct {
	lookPath func(string) (string, error)
	runner   process.Runner
	shell    string
	timeout  time.Duration
}

// WithLookPath replaces the presence probe (exec.LookPath by default).
func WithLookPath(fn func(string) (string, error)) Option {
	return func(o *options) { o.lookPath = fn }
}

// WithRunner replaces the process runner.
func WithRunner(r process.Runner) Option {
	return func(o *options) { o.runner = r }
}

// WithShell sets the shell used by RunShell.
func WithShell(shell string) Option {
	return func(o *options) { o.shell = shell }
}

// WithTimeout sets the per invocation timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// New resolves name and fails with ErrMissingDependency when it is not
// installed, so a misconfigured host is reported at startup.
func New(name string, opts ...Option) (*Command, error) {
	o := options{
		lookPath: exec.LookPath,
		runner:   process.Default,
		shell:    "/bin/sh",
		timeout:  process.DefaultTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}

	binary, err := o.lookPath(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMissingDependency, name, err)
	}

	return &Command{
		name:    name,
		binary:  binary,
		shell:   o.shell,
		timeout: o.timeout,
		runner:  o.runner,
	}, nil
}

// Name is the configured command name.
func (c *Command) Name() string { return c.name }

// Binary is the resolved path.
func (c *Command) Binary() string { return c.binary }

// Run executes the command with args.
func (c *Command) Run(ctx context.Context, args ...string) (process.Result, error) {
	return c.runner.Run(ctx, c.binary, args, c.timeout)
}

// RunShell executes raw through the shell. Needed when raw is a pipeline.
func (c *Command) RunShell(ctx context.Context, raw string) (process.Result, error) {
	return c.runner.Run(ctx, c.shell, []string{"-c", raw}, c.timeout)
}

// Check converts a non-zero exit into a *ProcessError.
func (c *Command) Check(res process.Result) error {
	switch {
	case res.TimedOut:
		metrics.CommandsTotal.WithLabelValues(c.name, metrics.OutcomeTimeout).Inc()
	case res.ExitCode == 0:
		metrics.CommandsTotal.WithLabelValues(c.name, metrics.OutcomeOK).Inc()
		return nil
	default:
		metrics.CommandsTotal.WithLabelValues(c.name, metrics.OutcomeFailed).Inc()
	}
	return &ProcessError{Command: c.name, ExitCode: res.ExitCode, Stderr: res.Stderr}
}
