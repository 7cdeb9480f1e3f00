package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	"github.com/phrazzld/scry-trainer/internal/platform/sqlstore"
)

// migrate handles the migrate command. Without a subcommand it applies
// every pending migration.
func (a *application) migrate(ctx context.Context, args []string, out io.Writer) error {
	sub := "up"
	if len(args) > 0 {
		sub = args[0]
	}
	if len(args) > 1 {
		return usagef("migrate: unexpected argument %q", args[1])
	}

	m, err := sqlstore.NewMigrator(a.db, a.config.Database.Driver, a.logger)
	if err != nil {
		return err
	}

	a.logger.Info("executing migrations", slog.String("command", sub))

	switch sub {
	case "up":
		if err := m.Up(ctx); err != nil {
			return err
		}
		fmt.Fprintln(out, "migrations applied")
		return nil

	case "down":
		if err := m.Down(ctx); err != nil {
			return err
		}
		fmt.Fprintln(out, "rolled back one migration")
		return nil

	case "status":
		statuses, err := m.Status(ctx)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "VERSION\tSTATE\tNAME")
		for _, s := range statuses {
			state := "pending"
			if s.Applied {
				state = "applied"
			}
			fmt.Fprintf(w, "%d\t%s\t%s\n", s.Version, state, s.Name)
		}
		return w.Flush()

	default:
		return usagef("migrate: unknown subcommand %q", sub)
	}
}
