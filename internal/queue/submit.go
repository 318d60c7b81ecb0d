// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// RecordScheduler - 定时录制任务调度工具

package queue

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ZSC714725/recordscheduler/internal/command"
	"github.com/ZSC714725/recordscheduler/internal/script"
	"github.com/ZSC714725/recordscheduler/internal/shell"
	"github.com/ZSC714725/recordscheduler/internal/task"
)

// TimeFormat is the absolute time accepted by at: HH:mm MM/dd/yyyy.
const TimeFormat = "15:04 01/02/2006"

// TaskIDVar is the variable carrying the task id in the submitted job text.
const TaskIDVar = "TASK_ID"

var (
	reJob    = regexp.MustCompile(`job (\d+) at `)
	reTaskID = regexp.MustCompile(`(?m)^\s*(?:export\s+)?` + TaskIDVar + `=['"]?([^'"\s;]+)`)
)

// Submitter wraps at: submission and job inspection (at -c).
type Submitter struct {
	cmd      *command.Command
	scripts  *script.Manager
	location *time.Location
	logger   zerolog.Logger
}

// NewSubmitter creates a Submitter. A nil location means time.Local.
func NewSubmitter(cmd *command.Command, scripts *script.Manager, location *time.Location, logger zerolog.Logger) *Submitter {
	if location == nil {
		location = time.Local
	}
	return &Submitter{cmd: cmd, scripts: scripts, location: location, logger: logger}
}

// Stanza is the job text piped into at for t. The task id only travels
// inside this text, never through the environment of the submitting process.
func (s *Submitter) Stanza(t task.Task) string {
	return fmt.Sprintf("export %s=%s; sh %s", TaskIDVar, t.ID, shell.Quote(s.scripts.Path(t.ID)))
}

// Schedule submits the script of t and returns the job number at assigned.
func (s *Submitter) Schedule(ctx context.Context, t task.Task) (int, error) {
	when := t.StartTime.In(s.location).Format(TimeFormat)
	raw := fmt.Sprintf("echo %s | %s %s", shell.Quote(s.Stanza(t)), shell.Quote(s.cmd.Binary()), when)

	res, err := s.cmd.RunShell(ctx, raw)
	if err != nil {
		return 0, fmt.Errorf("submit task %s: %w", t.ID, err)
	}
	if err := s.cmd.Check(res); err != nil {
		return 0, err
	}

	jobID, ok := ParseSubmitOutput(res.Stdout, res.Stderr)
	if !ok {
		return 0, task.Parsef(s.cmd.Name(), "no job id in output: stdout=%q stderr=%q", res.Stdout, res.Stderr)
	}

	s.logger.Info().
		Str("task_id", t.ID).
		Int("job_id", jobID).
		Str("at", when).
		Msg("task submitted")
	return jobID, nil
}

// ParseSubmitOutput looks for "job <N> at " in stderr, then stdout, and
// finally accepts stdout holding nothing but a number.
func ParseSubmitOutput(stdout, stderr string) (int, bool) {
	for _, text := range []string{stderr, stdout} {
		scanner := bufio.NewScanner(strings.NewReader(text))
		for scanner.Scan() {
			m := reJob.FindStringSubmatch(scanner.Text())
			if m == nil {
				continue
			}
			if n, err := strconv.Atoi(m[1]); err == nil {
				return n, true
			}
		}
	}
	if n, err := strconv.Atoi(strings.TrimSpace(stdout)); err == nil {
		return n, true
	}
	return 0, false
}

// FindTaskID returns the TASK_ID assignment in job text.
func FindTaskID(text string) (string, bool) {
	m := reTaskID.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// TaskDetails reads the job text of jobID to recover the task id, then
// rebuilds the task from the persisted script. When the script is missing
// or corrupt the returned JobTask still carries the job number and task id.
func (s *Submitter) TaskDetails(ctx context.Context, jobID int) (JobTask, error) {
	op := fmt.Sprintf("%s -c %d", s.cmd.Name(), jobID)

	res, err := s.cmd.Run(ctx, "-c", strconv.Itoa(jobID))
	if err != nil {
		return JobTask{}, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.cmd.Check(res); err != nil {
		return JobTask{}, err
	}
	if strings.TrimSpace(res.Stdout) == "" {
		return JobTask{}, task.Parsef(op, "empty job text")
	}

	raw, ok := FindTaskID(res.Stdout)
	if !ok {
		return JobTask{}, &task.ParseError{Op: op, Detail: "no " + TaskIDVar + " line", Err: ErrTaskIDNotFound}
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return JobTask{}, &task.ParseError{Op: op, Detail: fmt.Sprintf("invalid task id %q", raw), Err: err}
	}

	t, err := s.readTask(id.String())
	if err != nil {
		// the id is known even when the script is not readable
		return JobTask{JobID: jobID, Task: task.Task{ID: id.String()}}, err
	}
	return JobTask{JobID: jobID, Task: t}, nil
}

func (s *Submitter) readTask(id string) (task.Task, error) {
	op := "script " + id

	def, err := s.extract(id, script.ExportDefinition)
	if err != nil {
		return task.Task{}, err
	}
	inner, err := s.extract(id, script.ExportInnerDefinition)
	if err != nil {
		return task.Task{}, err
	}
	if strings.TrimSpace(inner) == "" {
		return task.Task{}, task.Parsef(op, "empty %s", script.ExportInnerDefinition)
	}

	var t *task.Task
	if err := json.Unmarshal([]byte(def), &t); err != nil {
		return task.Task{}, &task.ParseError{Op: op, Detail: "decode " + script.ExportDefinition, Err: err}
	}
	if t == nil {
		return task.Task{}, task.Parsef(op, "%s is null", script.ExportDefinition)
	}
	if t.ID != id {
		return task.Task{}, task.Parsef(op, "definition belongs to task %q", t.ID)
	}

	t.Inner = inner
	return *t, nil
}

// extract reads one export of the script of id. A missing script is
// reported as lost, not as an unknown task: the job is still queued.
func (s *Submitter) extract(id, name string) (string, error) {
	v, err := s.scripts.ExtractExport(id, name)
	if errors.Is(err, task.ErrNotFound) {
		return "", &task.ParseError{Op: "script " + id, Detail: "script missing", Err: task.ErrLost}
	}
	return v, err
}
