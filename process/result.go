package process

import "time"

// Result describes a finished subprocess.
type Result struct {
	// Stdout is the captured standard output. Streams leave it empty.
	Stdout []byte
	// Stderr holds captured standard error. Streams keep only the tail.
	Stderr []byte
	// ExitCode is -1 when the process was killed by a signal.
	ExitCode int
	// Duration is the wall time from start to exit.
	Duration time.Duration
}
