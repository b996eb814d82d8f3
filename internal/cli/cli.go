package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/habitlog/internal/db"
)

// Context is shared by every habitctl command.
type Context struct {
	DatabasePath string
	Out          io.Writer
	Now          func() time.Time
}

// Open initializes the global database connection used by the commands.
func (c *Context) Open() error {
	if err := db.Init(c.DatabasePath); err != nil {
		return fmt.Errorf("open database %s: %w", c.DatabasePath, err)
	}
	return nil
}

func (c *Context) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}
