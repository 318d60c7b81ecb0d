// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// RecordScheduler - 定时录制任务调度工具
//
// Package scheduler is the only entry point other components use to
// schedule, list and cancel tasks. It keeps no state of its own: the at
// queue and the script files are re-read on every call.

package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ZSC714725/recordscheduler/internal/command"
	"github.com/ZSC714725/recordscheduler/internal/metrics"
	"github.com/ZSC714725/recordscheduler/internal/process"
	"github.com/ZSC714725/recordscheduler/internal/queue"
	"github.com/ZSC714725/recordscheduler/internal/script"
	"github.com/ZSC714725/recordscheduler/internal/task"
)

// Config for the scheduler
type Config struct {
	DataRoot              string
	ScriptExtension       string
	AtBinary              string
	AtqBinary             string
	AtrmBinary            string
	Shell                 string
	Timeout               time.Duration
	RemoveAfterCompletion bool
	Location              *time.Location
	Logger                zerolog.Logger

	// LookPath and Runner replace exec.LookPath and process.Run.
	LookPath func(string) (string, error)
	Runner   process.Runner
}

// Scheduler composes the at, atq and atrm wrappers with the script manager.
type Scheduler struct {
	submitter             *queue.Submitter
	lister                *queue.Lister
	remover               *queue.Remover
	scripts               *script.Manager
	removeAfterCompletion bool
	logger                zerolog.Logger
}

// New probes for at, atq and atrm and fails with command.ErrMissingDependency
// if any of them is missing.
func New(cfg Config) (*Scheduler, error) {
	opts := []command.Option{command.WithTimeout(cfg.Timeout)}
	if cfg.Shell != "" {
		opts = append(opts, command.WithShell(cfg.Shell))
	}
	if cfg.LookPath != nil {
		opts = append(opts, command.WithLookPath(cfg.LookPath))
	}
	if cfg.Runner != nil {
		opts = append(opts, command.WithRunner(cfg.Runner))
	}

	at, err := command.New(orDefault(cfg.AtBinary, "at"), opts...)
	if err != nil {
		return nil, err
	}
	atq, err := command.New(orDefault(cfg.AtqBinary, "atq"), opts...)
	if err != nil {
		return nil, err
	}
	atrm, err := command.New(orDefault(cfg.AtrmBinary, "atrm"), opts...)
	if err != nil {
		return nil, err
	}

	scripts := script.New(script.Config{
		DataRoot:  cfg.DataRoot,
		Extension: cfg.ScriptExtension,
		Logger:    cfg.Logger,
	})

	return &Scheduler{
		submitter:             queue.NewSubmitter(at, scripts, cfg.Location, cfg.Logger),
		lister:                queue.NewLister(atq),
		remover:               queue.NewRemover(atrm),
		scripts:               scripts,
		removeAfterCompletion: cfg.RemoveAfterCompletion,
		logger:                cfg.Logger,
	}, nil
}

// Scripts exposes the script manager.
func (s *Scheduler) Scripts() *script.Manager { return s.scripts }

// ScheduleTask writes the script of t and submits it. If at rejects the
// job the script is removed again.
func (s *Scheduler) ScheduleTask(ctx context.Context, t task.Task) (int, error) {
	if err := t.Validate(); err != nil {
		return 0, err
	}
	if err := s.scripts.Write(t, s.removeAfterCompletion); err != nil {
		return 0, err
	}

	jobID, err := s.submitter.Schedule(ctx, t)
	metrics.TasksScheduledTotal.WithLabelValues(metrics.Outcome(err)).Inc()
	if err != nil {
		if rmErr := s.scripts.Remove(t.ID); rmErr != nil {
			s.logger.Error().Err(rmErr).Str("task_id", t.ID).Msg("remove script of rejected task")
		}
		return 0, err
	}
	return jobID, nil
}

// each calls fn for every queued job that belongs to a task until fn
// returns false. Jobs without a task id are not ours and are skipped.
// Per-job failures are handed to fn together with whatever was recovered
// of the job, usually its number and task id.
func (s *Scheduler) each(ctx context.Context, fn func(queue.JobTask, error) bool) error {
	jobs, err := s.lister.Jobs(ctx)
	if err != nil {
		return err
	}
	for jobID := range jobs {
		if err := ctx.Err(); err != nil {
			return err
		}
		jt, err := s.submitter.TaskDetails(ctx, jobID)
		if errors.Is(err, queue.ErrTaskIDNotFound) {
			metrics.ForeignJobsSkippedTotal.Inc()
			s.logger.Debug().Int("job_id", jobID).Msg("skipping foreign job")
			continue
		}
		if err != nil {
			err = fmt.Errorf("job %d: %w", jobID, err)
		}
		if !fn(jt, err) {
			return nil
		}
	}
	return nil
}

// Jobs returns every live task with its current job number. Jobs whose
// script is gone are left out; any other failure aborts the listing.
func (s *Scheduler) Jobs(ctx context.Context) ([]queue.JobTask, error) {
	var (
		out    []queue.JobTask
		jobErr error
	)
	err := s.each(ctx, func(jt queue.JobTask, err error) bool {
		if errors.Is(err, task.ErrLost) {
			metrics.LostScriptsTotal.Inc()
			s.logger.Warn().Err(err).Int("job_id", jt.JobID).Str("task_id", jt.Task.ID).Msg("skipping job with lost script")
			return true
		}
		if err != nil {
			jobErr = err
			return false
		}
		out = append(out, jt)
		return true
	})
	if err == nil {
		err = jobErr
	}
	if err != nil {
		return nil, err
	}
	metrics.QueuedTasks.Set(float64(len(out)))
	return out, nil
}

// FetchScheduledTasks returns every live task.
func (s *Scheduler) FetchScheduledTasks(ctx context.Context) ([]task.Task, error) {
	jobs, err := s.Jobs(ctx)
	if err != nil {
		return nil, err
	}
	tasks := make([]task.Task, 0, len(jobs))
	for _, jt := range jobs {
		tasks = append(tasks, jt.Task)
	}
	return tasks, nil
}

// resolve finds the job currently running task id. Jobs that cannot be
// inspected do not stop the search. The second return value is the
// inspection error of the matching job, if its script is lost or corrupt.
func (s *Scheduler) resolve(ctx context.Context, id string) (queue.JobTask, error, error) {
	var (
		found     queue.JobTask
		detailErr error
		ok        bool
	)
	err := s.each(ctx, func(jt queue.JobTask, err error) bool {
		if jt.Task.ID == id {
			found, detailErr, ok = jt, err, true
			return false
		}
		if err != nil {
			s.logger.Debug().Err(err).Str("task_id", id).Msg("skipping unreadable job while resolving")
		}
		return true
	})
	if err != nil {
		return queue.JobTask{}, nil, err
	}
	if !ok {
		return queue.JobTask{}, nil, fmt.Errorf("%w: %s", task.ErrNotFound, id)
	}
	return found, detailErr, nil
}

// CancelTask removes the job of id from the queue and moves its script
// to the failed directory. Jobs with a lost or corrupt script can be
// cancelled too.
func (s *Scheduler) CancelTask(ctx context.Context, id string) error {
	jt, detailErr, err := s.resolve(ctx, id)
	if err != nil {
		return err
	}
	if err := s.remover.Remove(ctx, jt.JobID); err != nil {
		return err
	}
	if err := s.scripts.MoveToFailed(id); err != nil {
		return err
	}
	metrics.TasksCancelledTotal.Inc()
	s.logger.Info().Str("task_id", id).Int("job_id", jt.JobID).AnErr("detail", detailErr).Msg("task cancelled")
	return nil
}

// GetTaskDefinition returns the script text of a live task. A corrupt
// script is still returned so it can be repaired.
func (s *Scheduler) GetTaskDefinition(ctx context.Context, id string) (string, error) {
	_, detailErr, err := s.resolve(ctx, id)
	if err != nil {
		return "", err
	}
	if errors.Is(detailErr, task.ErrLost) {
		return "", detailErr
	}
	return s.scripts.Read(id)
}

// UpdateTaskDefinition replaces the script text of a live task, restoring
// it if it was lost. The job is not resubmitted: at only holds the script
// path, which is read when the job fires. The new text must keep the task
// id export.
func (s *Scheduler) UpdateTaskDefinition(ctx context.Context, id, text string) error {
	if _, _, err := s.resolve(ctx, id); err != nil {
		return err
	}
	if v, ok := script.FindExport(text, script.ExportJobID); !ok || v != id {
		return task.Parsef("update "+id, "definition must keep export %s=%s", script.ExportJobID, id)
	}
	if err := s.scripts.WriteRaw(id, text); err != nil {
		return err
	}
	s.logger.Info().Str("task_id", id).Msg("task definition updated")
	return nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
