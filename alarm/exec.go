package alarm

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"sync"
)

// DefaultCommand returns the audio command for the current platform.
func DefaultCommand() string {
	switch runtime.GOOS {
	case "darwin":
		return "afplay"
	case "windows":
		return ""
	default:
		return "paplay"
	}
}

// ExecPlayer plays sound files through an external audio command such as
// afplay, paplay or "aplay -q". Looping restarts the command each time it
// exits.
type ExecPlayer struct {
	command string
	args    []string
}

// NewExecPlayer creates a player from a command line. The sound file is
// appended as the last argument.
func NewExecPlayer(commandLine string) *ExecPlayer {
	fields := strings.Fields(commandLine)
	if len(fields) == 0 {
		return &ExecPlayer{}
	}
	return &ExecPlayer{command: fields[0], args: fields[1:]}
}

// Load resolves the command and sound file. Nothing plays until Play.
func (p *ExecPlayer) Load(ctx context.Context, resource string, loop bool) (Sound, error) {
	if p.command == "" {
		return nil, fmt.Errorf("no audio command configured")
	}
	if _, err := os.Stat(resource); err != nil {
		return nil, fmt.Errorf("sound file: %w", err)
	}
	path, err := exec.LookPath(p.command)
	if err != nil {
		return nil, fmt.Errorf("audio command %q: %w", p.command, err)
	}

	args := append(append([]string{}, p.args...), resource)
	return &execSound{
		path: path,
		args: args,
		loop: loop,
		done: make(chan struct{}),
	}, nil
}

type execSound struct {
	path string
	args []string
	loop bool

	mu       sync.Mutex
	started  bool
	cancel   context.CancelFunc
	done     chan struct{}
	doneOnce sync.Once
}

func (s *execSound) Play(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil
	}

	// Playback outlives the call that started it
	runCtx, cancel := context.WithCancel(context.Background())
	cmd := exec.CommandContext(runCtx, s.path, s.args...)
	if err := cmd.Start(); err != nil {
		cancel()
		return fmt.Errorf("start %s: %w", s.path, err)
	}

	s.started = true
	s.cancel = cancel
	go s.run(runCtx, cmd)
	return nil
}

func (s *execSound) run(ctx context.Context, cmd *exec.Cmd) {
	defer s.finish()
	for {
		err := cmd.Wait()
		if ctx.Err() != nil || !s.loop || err != nil {
			return
		}
		cmd = exec.CommandContext(ctx, s.path, s.args...)
		if err := cmd.Start(); err != nil {
			return
		}
	}
}

// Stop kills the running command and waits for it to exit.
func (s *execSound) Stop(ctx context.Context) error {
	s.mu.Lock()
	started, cancel := s.started, s.cancel
	s.mu.Unlock()

	if !started {
		return nil
	}
	cancel()

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *execSound) Unload(ctx context.Context) error {
	if err := s.Stop(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		s.finish()
	}
	return nil
}

func (s *execSound) Done() <-chan struct{} {
	return s.done
}

func (s *execSound) finish() {
	s.doneOnce.Do(func() { close(s.done) })
}
