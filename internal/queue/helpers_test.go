package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ZSC714725/recordscheduler/internal/command"
	"github.com/ZSC714725/recordscheduler/internal/process"
)

type invocation struct {
	binary string
	args   []string
}

type fakeRunner struct {
	calls  []invocation
	result func(binary string, args []string) process.Result
}

func (f *fakeRunner) Run(_ context.Context, binary string, args []string, _ time.Duration) (process.Result, error) {
	f.calls = append(f.calls, invocation{binary: binary, args: args})
	return f.result(binary, args), nil
}

func reply(res process.Result) *fakeRunner {
	return &fakeRunner{result: func(string, []string) process.Result { return res }}
}

func newCommand(t *testing.T, name string, r process.Runner) *command.Command {
	t.Helper()
	c, err := command.New(name,
		command.WithLookPath(func(n string) (string, error) { return "/usr/bin/" + n, nil }),
		command.WithRunner(r),
	)
	require.NoError(t, err)
	return c
}
