package queue

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZSC714725/recordscheduler/internal/command"
	"github.com/ZSC714725/recordscheduler/internal/process"
	"github.com/ZSC714725/recordscheduler/internal/script"
	"github.com/ZSC714725/recordscheduler/internal/task"
)

const taskID = "3c9a4f6e-1b2d-4e5f-8a7b-9c0d1e2f3a4b"

func sampleTask() task.Task {
	return task.Task{
		ID:        taskID,
		Name:      "Tatort",
		Command:   "ffmpeg -i http://tv/das-erste -t 5400 -c:v copy -c:a copy -f mp4 /rec/tatort.mp4",
		StartTime: time.Date(2026, 10, 25, 20, 15, 0, 0, time.UTC),
		Inner:     `{"id":"rec-1","name":"Tatort"}`,
	}
}

func atJobText(id, path string) string {
	return "#!/bin/sh\n" +
		"# atrun uid=1000 gid=1000\n" +
		"# mail recorder 0\n" +
		"umask 22\n" +
		"HOME=/home/recorder; export HOME\n" +
		"PATH=/usr/local/bin:/usr/bin:/bin; export PATH\n" +
		"cd /home/recorder || {\n" +
		"\t echo 'Execution directory inaccessible' >&2\n" +
		"\t exit 1\n" +
		"}\n" +
		"export TASK_ID=" + id + "; sh '" + path + "'\n"
}

func TestParseSubmitOutput(t *testing.T) {
	tests := []struct {
		name   string
		stdout string
		stderr string
		want   int
		ok     bool
	}{
		{"stderr diagnostic", "", "warning: commands will be executed using /bin/sh\njob 7 at Sun Oct 25 20:15:00 2026\n", 7, true},
		{"stdout diagnostic", "job 1234 at Sun Oct 25 20:15:00 2026\n", "", 1234, true},
		{"bare number", " 42\n", "", 42, true},
		{"nothing", "", "warning: commands will be executed using /bin/sh\n", 0, false},
		{"garbage", "ok\n", "", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseSubmitOutput(tt.stdout, tt.stderr)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScheduleBuildsPipeline(t *testing.T) {
	runner := reply(process.Result{Stderr: "warning: commands will be executed using /bin/sh\njob 7 at Sun Oct 25 20:15:00 2026\n"})
	scripts := script.New(script.Config{DataRoot: "/data"})
	s := NewSubmitter(newCommand(t, "at", runner), scripts, time.UTC, zerolog.Nop())

	jobID, err := s.Schedule(context.Background(), sampleTask())
	require.NoError(t, err)
	assert.Equal(t, 7, jobID)

	require.Len(t, runner.calls, 1)
	call := runner.calls[0]
	assert.Equal(t, "/bin/sh", call.binary)
	require.Len(t, call.args, 2)
	assert.Equal(t, "-c", call.args[0])
	assert.Equal(t,
		`echo 'export TASK_ID=`+taskID+`; sh '\''/data/tasks/`+taskID+`.sh'\''' | '/usr/bin/at' 20:15 10/25/2026`,
		call.args[1])
}

func TestScheduleUsesLocation(t *testing.T) {
	runner := reply(process.Result{Stderr: "job 3 at Sun Oct 25 21:15:00 2026\n"})
	loc := time.FixedZone("CET", 3600)
	s := NewSubmitter(newCommand(t, "at", runner), script.New(script.Config{DataRoot: "/data"}), loc, zerolog.Nop())

	_, err := s.Schedule(context.Background(), sampleTask())
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(runner.calls[0].args[1], " 21:15 10/25/2026"))
}

func TestScheduleNonZeroExit(t *testing.T) {
	runner := reply(process.Result{ExitCode: 1, Stderr: "Garbled time\n"})
	s := NewSubmitter(newCommand(t, "at", runner), script.New(script.Config{DataRoot: "/data"}), time.UTC, zerolog.Nop())

	_, err := s.Schedule(context.Background(), sampleTask())
	require.Error(t, err)
	assert.ErrorIs(t, err, command.ErrExternalProcess)

	var perr *command.ProcessError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "Garbled time\n", perr.Stderr)
}

func TestScheduleUnparseable(t *testing.T) {
	runner := reply(process.Result{Stdout: "queued\n"})
	s := NewSubmitter(newCommand(t, "at", runner), script.New(script.Config{DataRoot: "/data"}), time.UTC, zerolog.Nop())

	_, err := s.Schedule(context.Background(), sampleTask())
	assert.ErrorIs(t, err, task.ErrParse)
	assert.Contains(t, err.Error(), "queued")
}

func TestFindTaskID(t *testing.T) {
	id, ok := FindTaskID(atJobText(taskID, "/data/tasks/x.sh"))
	require.True(t, ok)
	assert.Equal(t, taskID, id)

	id, ok = FindTaskID("TASK_ID=" + taskID + "; export TASK_ID\n")
	require.True(t, ok)
	assert.Equal(t, taskID, id)

	_, ok = FindTaskID("export TASK_JOB_ID=" + taskID + "\n")
	assert.False(t, ok)
}

func detailsFixture(t *testing.T, jobText string) (*Submitter, *script.Manager, *fakeRunner) {
	t.Helper()
	scripts := script.New(script.Config{DataRoot: t.TempDir(), Logger: zerolog.Nop()})
	runner := reply(process.Result{Stdout: jobText})
	return NewSubmitter(newCommand(t, "at", runner), scripts, time.UTC, zerolog.Nop()), scripts, runner
}

func TestTaskDetails(t *testing.T) {
	tk := sampleTask()
	scripts := script.New(script.Config{DataRoot: t.TempDir(), Logger: zerolog.Nop()})
	require.NoError(t, scripts.Write(tk, false))

	runner := reply(process.Result{Stdout: atJobText(tk.ID, scripts.Path(tk.ID))})
	s := NewSubmitter(newCommand(t, "at", runner), scripts, time.UTC, zerolog.Nop())

	jt, err := s.TaskDetails(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, 7, jt.JobID)
	assert.Equal(t, tk.ID, jt.Task.ID)
	assert.Equal(t, tk.Name, jt.Task.Name)
	assert.Equal(t, tk.Command, jt.Task.Command)
	assert.True(t, tk.StartTime.Equal(jt.Task.StartTime))
	assert.Equal(t, tk.Inner, jt.Task.Inner)

	assert.Equal(t, []string{"-c", "7"}, runner.calls[0].args)
}

func TestTaskDetailsNoTaskID(t *testing.T) {
	s, _, _ := detailsFixture(t, "#!/bin/sh\numask 22\n/usr/bin/backup.sh\n")

	_, err := s.TaskDetails(context.Background(), 4)
	require.Error(t, err)
	assert.ErrorIs(t, err, task.ErrParse)
	assert.ErrorIs(t, err, ErrTaskIDNotFound)
	assert.Contains(t, err.Error(), "task id not found")
}

func TestTaskDetailsEmptyOutput(t *testing.T) {
	s, _, _ := detailsFixture(t, "  \n")

	_, err := s.TaskDetails(context.Background(), 4)
	assert.ErrorIs(t, err, task.ErrParse)
}

func TestTaskDetailsInvalidID(t *testing.T) {
	s, _, _ := detailsFixture(t, "export TASK_ID=not-a-uuid; sh '/data/tasks/x.sh'\n")

	_, err := s.TaskDetails(context.Background(), 4)
	assert.ErrorIs(t, err, task.ErrParse)
}

func TestTaskDetailsNonZeroExit(t *testing.T) {
	scripts := script.New(script.Config{DataRoot: t.TempDir()})
	runner := reply(process.Result{ExitCode: 1, Stderr: "Cannot find jobid 4\n"})
	s := NewSubmitter(newCommand(t, "at", runner), scripts, time.UTC, zerolog.Nop())

	_, err := s.TaskDetails(context.Background(), 4)
	assert.ErrorIs(t, err, command.ErrExternalProcess)
}

func TestTaskDetailsMissingScript(t *testing.T) {
	s, _, _ := detailsFixture(t, atJobText(taskID, "/gone.sh"))

	jt, err := s.TaskDetails(context.Background(), 4)
	assert.ErrorIs(t, err, task.ErrParse)
	assert.ErrorIs(t, err, task.ErrLost)
	assert.NotErrorIs(t, err, task.ErrNotFound)
	assert.Equal(t, 4, jt.JobID)
	assert.Equal(t, taskID, jt.Task.ID)
}

func TestTaskDetailsCorruptScript(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty inner", "export TASK_JOB_ID=" + taskID + "\nexport TASK_DEFINITION='{\"id\":\"" + taskID + "\"}'\nexport TASK_INNER_DEFINITION=''\n"},
		{"null definition", "export TASK_JOB_ID=" + taskID + "\nexport TASK_DEFINITION=null\nexport TASK_INNER_DEFINITION='{}'\n"},
		{"bad json", "export TASK_JOB_ID=" + taskID + "\nexport TASK_DEFINITION='{\"id\":'\nexport TASK_INNER_DEFINITION='{}'\n"},
		{"foreign definition", "export TASK_JOB_ID=" + taskID + "\nexport TASK_DEFINITION='{\"id\":\"other\"}'\nexport TASK_INNER_DEFINITION='{}'\n"},
		{"no inner", "export TASK_JOB_ID=" + taskID + "\nexport TASK_DEFINITION='{\"id\":\"" + taskID + "\"}'\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, scripts, _ := detailsFixture(t, atJobText(taskID, "/x.sh"))
			require.NoError(t, scripts.WriteRaw(taskID, tt.text))

			jt, err := s.TaskDetails(context.Background(), 4)
			assert.ErrorIs(t, err, task.ErrParse)
			assert.NotErrorIs(t, err, task.ErrLost)
			assert.Equal(t, taskID, jt.Task.ID)
		})
	}
}

func TestStanzaKeepsEnvironmentClean(t *testing.T) {
	scripts := script.New(script.Config{DataRoot: "/data"})
	s := NewSubmitter(newCommand(t, "at", reply(process.Result{})), scripts, time.UTC, zerolog.Nop())

	_, ok := os.LookupEnv(TaskIDVar)
	assert.False(t, ok)
	assert.Equal(t, "export TASK_ID="+taskID+"; sh '/data/tasks/"+taskID+".sh'", s.Stanza(sampleTask()))
}
