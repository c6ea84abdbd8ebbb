package server

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/mitchellh/go-ps"
)

// daemonBaseName is the executable name of the daemon without extension.
const daemonBaseName = "alarm-clockd"

// ErrAlreadyRunning indicates another daemon already owns the alarm list.
var ErrAlreadyRunning = errors.New("alarm daemon is already running")

// ensureSingleInstance refuses to start when another process with the
// daemon's executable name is running, so only one process mutates the list.
func ensureSingleInstance() error {
	processList, err := ps.Processes()
	if err != nil {
		return fmt.Errorf("list processes: %w", err)
	}

	if pid, found := findOtherInstance(processList, daemonExecutable(), os.Getpid()); found {
		return fmt.Errorf("%w: pid %d", ErrAlreadyRunning, pid)
	}

	return nil
}

// findOtherInstance returns the pid of a process named executable other than self.
func findOtherInstance(processList []ps.Process, executable string, self int) (int, bool) {
	for _, process := range processList {
		if process.Pid() == self {
			continue
		}

		if process.Executable() != executable {
			continue
		}

		return process.Pid(), true
	}

	return 0, false
}

// daemonExecutable returns the daemon's executable name on this platform.
func daemonExecutable() string {
	if strings.Contains(strings.ToLower(runtime.GOOS), "windows") {
		return daemonBaseName + ".exe"
	}

	return daemonBaseName
}
