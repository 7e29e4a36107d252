// Package shell owns background shell execution and shell-environment
// snapshot capture: the state a Bash tool call needs once it outlives
// a single request/response round-trip.
package shell

import (
	"bytes"
	"context"
	"os/exec"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kadirpekel/cocode/internal/reminder"
)

// Store tracks long-running shell commands started in the background so
// a TaskOutput-style tool can poll them for completion, and reports
// unnotified completions to the reminder system.
type Store struct {
	mu     sync.Mutex
	shells map[string]*backgroundShell
}

type backgroundShell struct {
	mu         sync.Mutex
	command    string
	done       bool
	notified   bool
	output     string
	err        error
	finishedAt time.Time
	cancel     context.CancelFunc
}

func NewStore() *Store {
	return &Store{shells: make(map[string]*backgroundShell)}
}

// Start launches command in workDir and returns an id TaskOutput/Poll
// can use to retrieve its result once it finishes.
func (s *Store) Start(workDir, command string, timeout time.Duration) string {
	id := "shell_" + uuid.NewString()
	cmdCtx, cancel := context.WithTimeout(context.Background(), timeout)
	bs := &backgroundShell{command: command, cancel: cancel}

	s.mu.Lock()
	s.shells[id] = bs
	s.mu.Unlock()

	go func() {
		cmd := exec.CommandContext(cmdCtx, "sh", "-c", command)
		cmd.Dir = workDir
		var out bytes.Buffer
		cmd.Stdout = &out
		cmd.Stderr = &out
		runErr := cmd.Run()

		bs.mu.Lock()
		bs.done = true
		bs.output = out.String()
		bs.err = runErr
		bs.finishedAt = time.Now()
		bs.mu.Unlock()
	}()

	return id
}

// Poll reports whether id has finished and, if so, its combined output
// and error.
func (s *Store) Poll(id string) (done bool, output string, err error, found bool) {
	s.mu.Lock()
	bs, ok := s.shells[id]
	s.mu.Unlock()
	if !ok {
		return false, "", nil, false
	}
	bs.mu.Lock()
	defer bs.mu.Unlock()
	if bs.done {
		bs.notified = true
	}
	return bs.done, bs.output, bs.err, true
}

func (s *Store) Stop(id string) bool {
	s.mu.Lock()
	bs, ok := s.shells[id]
	s.mu.Unlock()
	if !ok {
		return false
	}
	bs.cancel()
	return true
}

// Tasks reports every background shell that has finished, in the shape
// internal/reminder's background-task generator expects. Shells already
// surfaced via Poll, MarkNotified or MarkAllNotified are included with
// Notified set; the generator skips those. Tasks itself marks nothing.
func (s *Store) Tasks() []reminder.BackgroundTask {
	s.mu.Lock()
	defer s.mu.Unlock()

	var tasks []reminder.BackgroundTask
	for id, bs := range s.shells {
		bs.mu.Lock()
		if bs.done {
			status := "completed"
			summary := bs.command
			if bs.err != nil {
				status = "failed"
				summary = bs.err.Error()
			}
			tasks = append(tasks, reminder.BackgroundTask{
				ID:         id,
				Kind:       "shell",
				Status:     status,
				Summary:    summary,
				Notified:   bs.notified,
				FinishedAt: bs.finishedAt,
			})
		}
		bs.mu.Unlock()
	}
	return tasks
}

// MarkNotified records that id's completion has been surfaced to the
// model, so a later Tasks call reports it with Notified set.
func (s *Store) MarkNotified(id string) {
	s.mu.Lock()
	bs, ok := s.shells[id]
	s.mu.Unlock()
	if !ok {
		return
	}
	bs.mu.Lock()
	bs.notified = true
	bs.mu.Unlock()
}

// MarkAllNotified marks every currently-finished shell as notified. The
// driver calls this after a background-task reminder has actually been
// spliced into a turn, so the next turn's Tasks call doesn't re-report
// the same completions.
func (s *Store) MarkAllNotified() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, bs := range s.shells {
		bs.mu.Lock()
		if bs.done {
			bs.notified = true
		}
		bs.mu.Unlock()
	}
}
