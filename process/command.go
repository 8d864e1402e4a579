package process

import (
	"io"
	"time"
)

// Command configures a subprocess to execute.
type Command struct {
	// Binary is the executable path or name (resolved via PATH). A relative
	// path containing a separator is resolved against Dir.
	Binary string
	// Args are the command-line arguments, passed verbatim.
	Args []string
	// Dir is the working directory. If empty, uses the current directory.
	Dir string
	// Env is additional environment variables (key=value). Merged with os.Environ.
	Env []string
	// Stdin provides input to the process. May be nil.
	Stdin io.Reader
	// Stdout and Stderr additionally receive the process output as it is
	// produced. The output is captured in Result either way.
	Stdout io.Writer
	Stderr io.Writer
	// GracePeriod is how long to wait after SIGTERM before SIGKILL.
	// Defaults to 10 seconds if zero.
	GracePeriod time.Duration
}

// Name returns the base name of the executable, used in errors and logs.
func (c Command) Name() string {
	for i := len(c.Binary) - 1; i >= 0; i-- {
		if c.Binary[i] == '/' {
			return c.Binary[i+1:]
		}
	}
	return c.Binary
}
