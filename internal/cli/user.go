package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/habitlog/internal/db"
)

type InitUserCmd struct {
	Username string `help:"Login name." default:"admin"`
	Password string `help:"Login password." env:"SUPER_ROOT_PASSWORD" required:""`
}

func (c *InitUserCmd) Run(ctx *Context) error {
	if strings.TrimSpace(c.Password) == "" {
		return errors.New("password must not be empty")
	}
	if err := ctx.Open(); err != nil {
		return err
	}
	created, err := db.EnsureUser(context.Background(), db.DB, c.Username, c.Password)
	if err != nil {
		return err
	}
	if created {
		fmt.Fprintf(ctx.Out, "created user %s\n", strings.TrimSpace(c.Username))
	} else {
		fmt.Fprintf(ctx.Out, "user %s already exists, password unchanged\n", strings.TrimSpace(c.Username))
	}
	return nil
}
