// Package main implements the scry command line tool, which manages decks of
// flashcards and runs spaced repetition reviews against a SQL database.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-trainer/internal/config"
	"github.com/phrazzld/scry-trainer/internal/platform/logger"
	"github.com/phrazzld/scry-trainer/internal/redact"
	"github.com/spf13/pflag"
)

const usage = `usage: scry [global flags] <command> [args]

commands:
  migrate [up|down|status]
  deck create <name> [--description text]
  deck list [--limit n] [--sort field]
  deck update <deck-id> [--name text] [--description text]
  deck delete <deck-id>
  card add <deck-id> --front text --back text [--tags a,b]
  card list <deck-id> [--limit n] [--sort field]
  card show <card-id>
  card update <card-id> [--front text] [--back text] [--tags a,b]
  card delete <card-id>
  due [--limit n]
  review <card-id> <rating> [--duration 5s]
  preview <card-id>
  postpone <card-id> <days>
  reschedule <deck-id>
  history [<card-id>] [--limit n]

global flags:
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one command and returns the process exit code. Command output
// goes to stdout; logs and errors go to stderr.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	flags := pflag.NewFlagSet("scry", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.SetInterspersed(false)
	flags.Usage = func() {
		fmt.Fprint(stderr, usage)
		flags.PrintDefaults()
	}
	config.RegisterFlags(flags)

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}
	if flags.NArg() == 0 {
		flags.Usage()
		return 2
	}

	configFile, _ := flags.GetString("config")
	cfg, err := config.LoadWithOptions(config.LoadOptions{ConfigFile: configFile, Flags: flags})
	if err != nil {
		fmt.Fprintf(stderr, "error: %s\n", redact.Error(err))
		return 1
	}

	log, err := logger.Setup(cfg.Log, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "error: failed to set up logger: %v\n", err)
		return 1
	}

	app, err := newApplication(ctx, cfg, log)
	if err != nil {
		fmt.Fprintf(stderr, "error: %s\n", redact.Error(err))
		return 1
	}
	defer app.close()

	ctx = logger.WithRequestID(logger.WithLogger(ctx, log), uuid.NewString())
	if err := app.dispatch(ctx, flags.Args(), stdout); err != nil {
		var uerr usageError
		if errors.As(err, &uerr) {
			fmt.Fprintf(stderr, "error: %s\n\n", uerr.msg)
			flags.Usage()
			return 2
		}
		fmt.Fprintf(stderr, "error: %s\n", redact.Error(err))
		return 1
	}
	return 0
}

// usageError reports a malformed command line.
type usageError struct {
	msg string
}

func (e usageError) Error() string {
	return e.msg
}

func usagef(format string, args ...any) error {
	return usageError{msg: fmt.Sprintf(format, args...)}
}
