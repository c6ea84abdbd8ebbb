package sound

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/oshokin/alarm-clock/internal/logger"
)

// restartDelay spaces out consecutive runs of the sound command.
const restartDelay = 250 * time.Millisecond

var (
	// ErrUnsupportedOS indicates no default sound command is known for the current OS.
	ErrUnsupportedOS = errors.New("unsupported operating system")
	// ErrEmptyCommand is returned when the configured command has no program.
	ErrEmptyCommand = errors.New("sound command is empty")
)

// Player loops a sound command while an alert is active.
//
// Play restarts the loop from the beginning; Stop kills the running command.
// Neither waits for the command, so both are safe to call under a lock.
type Player struct {
	// command is the program and arguments run on every loop iteration.
	command []string

	// mu protects cancel and done.
	mu sync.Mutex
	// cancel stops the current loop, nil while silent.
	cancel context.CancelFunc
	// done is closed when the current loop exits.
	done chan struct{}
}

// New creates a player for the given command line.
func New(command []string) (*Player, error) {
	if len(command) == 0 || command[0] == "" {
		return nil, ErrEmptyCommand
	}

	return &Player{
		command: command,
	}, nil
}

// DefaultCommand picks a command that plays file with tools shipped by the OS:
// - Linux:   `paplay FILE`
// - macOS:   `afplay FILE`
// - Windows: a PowerShell SoundPlayer playing FILE synchronously
// An empty file selects a stock system sound.
func DefaultCommand(file string) ([]string, error) {
	osName := strings.ToLower(runtime.GOOS)

	switch {
	case strings.Contains(osName, "linux"):
		if file == "" {
			file = "/usr/share/sounds/freedesktop/stereo/alarm-clock-elapsed.oga"
		}

		return []string{"paplay", file}, nil
	case strings.Contains(osName, "darwin"):
		if file == "" {
			file = "/System/Library/Sounds/Glass.aiff"
		}

		return []string{"afplay", file}, nil
	case strings.Contains(osName, "windows"):
		if file == "" {
			file = `C:\Windows\Media\Alarm01.wav`
		}

		script := fmt.Sprintf("(New-Object Media.SoundPlayer '%s').PlaySync()", strings.ReplaceAll(file, "'", "''"))

		return []string{"powershell.exe", "-NoProfile", "-Command", script}, nil
	default:
		return nil, fmt.Errorf("no default sound command for %s: %w", runtime.GOOS, ErrUnsupportedOS)
	}
}

// Play starts the sound loop, restarting it if it is already running.
// An error means the command could not be started at all.
func (p *Player) Play(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()

	// The loop outlives the request that raised the alert.
	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	cmd := p.newCommand(loopCtx)
	if err := cmd.Start(); err != nil {
		cancel()

		return fmt.Errorf("start sound command %q: %w", p.command[0], err)
	}

	done := make(chan struct{})
	p.cancel, p.done = cancel, done

	go p.loop(loopCtx, cmd, done)

	return nil
}

// Stop kills the running command. It is a no-op while silent.
func (p *Player) Stop(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()

	return nil
}

// Done returns a channel closed once the current loop has exited.
// While silent it returns an already closed channel.
func (p *Player) Done() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.done == nil {
		closed := make(chan struct{})
		close(closed)

		return closed
	}

	return p.done
}

func (p *Player) stopLocked() {
	if p.cancel == nil {
		return
	}

	p.cancel()
	p.cancel = nil
}

func (p *Player) newCommand(ctx context.Context) *exec.Cmd {
	//nolint:gosec // The command comes from the operator's configuration.
	return exec.CommandContext(ctx, p.command[0], p.command[1:]...)
}

// loop reruns the command each time it finishes until ctx is canceled.
func (p *Player) loop(ctx context.Context, cmd *exec.Cmd, done chan struct{}) {
	defer close(done)

	ctx = logger.WithName(ctx, "sound")

	for {
		err := cmd.Wait()
		if ctx.Err() != nil {
			return
		}

		if err != nil {
			logger.ErrorKV(ctx, "Sound command failed, alert continues silently", "error", err)

			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(restartDelay):
		}

		cmd = p.newCommand(ctx)
		if err := cmd.Start(); err != nil {
			logger.ErrorKV(ctx, "Failed to restart sound command", "error", err)

			return
		}
	}
}
