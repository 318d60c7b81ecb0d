package scheduler

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ZSC714725/recordscheduler/internal/process"
	"github.com/ZSC714725/recordscheduler/internal/shell"
)

const atHeader = "#!/bin/sh\n" +
	"# atrun uid=1000 gid=1000\n" +
	"umask 22\n" +
	"PATH=/usr/bin:/bin; export PATH\n" +
	"cd /home/recorder || {\n" +
	"\t echo 'Execution directory inaccessible' >&2\n" +
	"\t exit 1\n" +
	"}\n"

// fakeAt emulates atd: jobs submitted through the shell pipeline are kept
// in memory and served back by at -c, atq and atrm.
type fakeAt struct {
	mu      sync.Mutex
	next    int
	jobs    map[int]string
	calls   []string
	failAt  string
	removed []int
}

func newFakeAt() *fakeAt {
	return &fakeAt{next: 1, jobs: map[int]string{}}
}

func (f *fakeAt) lookPath(name string) (string, error) {
	return "/usr/bin/" + name, nil
}

// add queues a job that was not submitted by the scheduler.
func (f *fakeAt) add(text string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.next
	f.next++
	f.jobs[id] = text
	return id
}

func (f *fakeAt) Run(_ context.Context, binary string, args []string, _ time.Duration) (process.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, filepath.Base(binary)+" "+strings.Join(args, " "))

	switch filepath.Base(binary) {
	case "sh":
		if f.failAt != "" {
			return process.Result{ExitCode: 1, Stderr: f.failAt}, nil
		}
		raw := args[1]
		pipe := strings.LastIndex(raw, " | ")
		stanza := shell.Unquote(strings.TrimPrefix(raw[:pipe], "echo "))
		id := f.next
		f.next++
		f.jobs[id] = atHeader + stanza + "\n"
		return process.Result{Stderr: fmt.Sprintf("warning: commands will be executed using /bin/sh\njob %d at Sun Oct 25 20:15:00 2026\n", id)}, nil
	case "at":
		id, _ := strconv.Atoi(args[1])
		text, ok := f.jobs[id]
		if !ok {
			return process.Result{ExitCode: 1, Stderr: fmt.Sprintf("Cannot find jobid %d\n", id)}, nil
		}
		return process.Result{Stdout: text}, nil
	case "atq":
		ids := make([]int, 0, len(f.jobs))
		for id := range f.jobs {
			ids = append(ids, id)
		}
		sort.Ints(ids)
		var b strings.Builder
		for _, id := range ids {
			fmt.Fprintf(&b, "%d\tSun Oct 25 20:15:00 2026 a recorder\n", id)
		}
		return process.Result{Stdout: b.String()}, nil
	case "atrm":
		id, _ := strconv.Atoi(args[0])
		if _, ok := f.jobs[id]; !ok {
			return process.Result{ExitCode: 1, Stderr: fmt.Sprintf("Cannot find jobid %d\n", id)}, nil
		}
		delete(f.jobs, id)
		f.removed = append(f.removed, id)
		return process.Result{}, nil
	}
	return process.Result{}, fmt.Errorf("unexpected binary %s", binary)
}
