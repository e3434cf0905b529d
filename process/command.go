package process

import (
	"io"
	"time"
)

// DefaultGracePeriod is the SIGTERM to SIGKILL delay when Command leaves it unset.
const DefaultGracePeriod = 5 * time.Second

// Command configures a subprocess.
type Command struct {
	// Binary is the executable path or a name resolved via PATH.
	Binary string
	// Args are the command-line arguments.
	Args []string
	// Dir is the working directory. Empty means the current directory.
	Dir string
	// Env holds extra KEY=value pairs appended to the parent environment.
	Env []string
	// Stdin is fed to the process when non-nil.
	Stdin io.Reader
	// GracePeriod is the delay between SIGTERM and SIGKILL.
	GracePeriod time.Duration
}
