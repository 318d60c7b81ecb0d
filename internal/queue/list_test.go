package queue

import (
	"context"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZSC714725/recordscheduler/internal/command"
	"github.com/ZSC714725/recordscheduler/internal/process"
)

func TestParseList(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   []int
	}{
		{"atq", "7\tSun Oct 25 20:15:00 2026 a recorder\n12\tMon Oct 26 06:00:00 2026 a recorder\n", []int{7, 12}},
		{"spaces", "3 2026-10-25 20:15 a recorder\n", []int{3}},
		{"non numeric", "abc 2023-10-01 12:00 a\n", nil},
		{"blank lines", "\n\n5\tSun Oct 25 20:15:00 2026 = recorder\n\n", []int{5}},
		{"id without fields", "9\n", nil},
		{"empty", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, slices.Collect(ParseList(tt.output)))
		})
	}
}

func TestParseListStopsEarly(t *testing.T) {
	var got []int
	for id := range ParseList("1 a\n2 b\n3 c\n") {
		got = append(got, id)
		if id == 2 {
			break
		}
	}
	assert.Equal(t, []int{1, 2}, got)
}

func TestJobs(t *testing.T) {
	runner := reply(process.Result{Stdout: "7\tSun Oct 25 20:15:00 2026 a recorder\n"})
	l := NewLister(newCommand(t, "atq", runner))

	jobs, err := l.Jobs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{7}, slices.Collect(jobs))
	assert.Empty(t, runner.calls[0].args)
	assert.Equal(t, "/usr/bin/atq", runner.calls[0].binary)
}

func TestJobsNonZeroExit(t *testing.T) {
	l := NewLister(newCommand(t, "atq", reply(process.Result{ExitCode: 1, Stderr: "Cannot open /var/spool/cron/atjobs\n"})))

	_, err := l.Jobs(context.Background())
	require.Error(t, err)

	var perr *command.ProcessError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "Cannot open /var/spool/cron/atjobs\n", perr.Stderr)
}
