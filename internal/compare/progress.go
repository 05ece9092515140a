package compare

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// ProgressCallback receives coarse progress updates while a comparison runs.
type ProgressCallback interface {
	// OnStart is called once with the total number of steps.
	OnStart(total int)

	// OnStep is called after each completed step with a short description.
	OnStep(current, total int, step string)

	// OnComplete is called when the comparison finished successfully.
	OnComplete()

	// OnError is called once if the comparison fails.
	OnError(step string, err error)
}

// NoOpProgress implements ProgressCallback and does nothing. Useful as the
// default when no progress reporting is wanted.
type NoOpProgress struct{}

func (NoOpProgress) OnStart(total int)                      {}
func (NoOpProgress) OnStep(current, total int, step string) {}
func (NoOpProgress) OnComplete()                            {}
func (NoOpProgress) OnError(step string, err error)         {}

// ConsoleProgress prints one line per step to the given writer.
type ConsoleProgress struct {
	writer io.Writer
	prefix string
	mu     sync.Mutex
	start  time.Time
}

// NewConsoleProgress creates a console progress reporter. A nil writer
// defaults to stderr.
func NewConsoleProgress(writer io.Writer, prefix string) *ConsoleProgress {
	if writer == nil {
		writer = os.Stderr
	}
	return &ConsoleProgress{writer: writer, prefix: prefix}
}

func (c *ConsoleProgress) OnStart(total int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.start = time.Now()
	_, _ = fmt.Fprintf(c.writer, "%s0/%d\n", c.prefix, total)
}

func (c *ConsoleProgress) OnStep(current, total int, step string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = fmt.Fprintf(c.writer, "%s%d/%d %s\n", c.prefix, current, total, step)
}

func (c *ConsoleProgress) OnComplete() {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = fmt.Fprintf(c.writer, "%scompleted in %v\n", c.prefix, time.Since(c.start).Round(time.Millisecond))
}

func (c *ConsoleProgress) OnError(step string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = fmt.Fprintf(c.writer, "%sfailed at %s: %v\n", c.prefix, step, err)
}
