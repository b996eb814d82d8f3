package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/habitlog/internal/db"
	"github.com/habitlog/internal/seed"
)

type SeedCmd struct {
	Days  int    `help:"Days of history to generate." default:"60"`
	Seed  uint64 `help:"Random seed, the same seed yields the same history." default:"42"`
	Reset bool   `help:"Delete existing habits and actions first."`
}

func (c *SeedCmd) Run(ctx *Context) error {
	if err := ctx.Open(); err != nil {
		return err
	}

	result, err := seed.Run(context.Background(), db.DB, seed.Options{
		Days:  c.Days,
		Now:   ctx.now(),
		Seed:  c.Seed,
		Reset: c.Reset,
	})
	if errors.Is(err, seed.ErrAlreadySeeded) {
		return fmt.Errorf("%w, pass --reset to replace them", err)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(ctx.Out, "seeded %d habits with %d actions\n", result.Habits, result.Actions)
	return nil
}
