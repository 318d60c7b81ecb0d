package queue

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZSC714725/recordscheduler/internal/command"
	"github.com/ZSC714725/recordscheduler/internal/process"
)

func TestRemove(t *testing.T) {
	runner := reply(process.Result{})
	r := NewRemover(newCommand(t, "atrm", runner))

	require.NoError(t, r.Remove(context.Background(), 12))
	assert.Equal(t, []string{"12"}, runner.calls[0].args)
}

func TestRemoveNonZeroExit(t *testing.T) {
	r := NewRemover(newCommand(t, "atrm", reply(process.Result{ExitCode: 1, Stderr: "Cannot find jobid 12\n"})))

	err := r.Remove(context.Background(), 12)
	assert.ErrorIs(t, err, command.ErrExternalProcess)
	assert.Contains(t, err.Error(), "Cannot find jobid 12")
}
