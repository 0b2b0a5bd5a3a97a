// Command nlparse parses expense sentences offline, without a database.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/spf13/cobra"

	"github.com/FACorreiaa/smart-expense-tracker/internal/domain/expense/service"
)

const defaultTimezone = "Asia/Kuala_Lumpur"

type rootOptions struct {
	now     string
	tz      string
	json    bool
	verbose bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "nlparse",
		Short: "Parse natural language expenses",
		Long: `nlparse turns sentences such as "rm 12 grab today" into structured expenses
using the same parser as the API.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.now, "now", "", "reference instant as RFC 3339 (default: current time)")
	cmd.PersistentFlags().StringVar(&opts.tz, "tz", defaultTimezone, "IANA timezone for relative dates")
	cmd.PersistentFlags().BoolVar(&opts.json, "json", false, "print JSON instead of text")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log parser decisions to stderr")

	cmd.AddCommand(parseCmd(opts))
	cmd.AddCommand(batchCmd(opts))

	return cmd
}

// newService builds a service that only parses; it has no repository.
func (o *rootOptions) newService(cmd *cobra.Command, workers int) (*service.ExpenseService, error) {
	loc, err := time.LoadLocation(o.tz)
	if err != nil {
		return nil, fmt.Errorf("invalid --tz %q: %w", o.tz, err)
	}

	clock := func() time.Time { return time.Now().In(loc) }
	if o.now != "" {
		fixed, err := time.Parse(time.RFC3339, o.now)
		if err != nil {
			return nil, fmt.Errorf("invalid --now %q: %w", o.now, err)
		}
		fixed = fixed.In(loc)
		clock = func() time.Time { return fixed }
	}

	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	return service.NewExpenseService(nil, logger, service.WithClock(clock), service.WithWorkers(workers)), nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
