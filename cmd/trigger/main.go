// Command trigger publishes a scheduled task trigger for the worker.
//
// Usage:
//
//	trigger [-date YYYY-MM-DD | -reference RFC3339] [-dry-run] <generate_services|process_payroll>
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cleanops/config"
	"cleanops/internal/domain/constants"
	"cleanops/internal/domain/service"
	logs "cleanops/internal/infra/log"
	"cleanops/internal/infra/pubsub"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	_ "time/tzdata"
)

type triggerFlags struct {
	date      string
	reference string
	dryRun    bool
}

func main() {
	var flags triggerFlags
	fs := flag.NewFlagSet("trigger", flag.ExitOnError)
	fs.StringVar(&flags.date, "date", "", "Business date to run as (YYYY-MM-DD, business time zone)")
	fs.StringVar(&flags.reference, "reference", "", "Exact reference time to run as (RFC3339)")
	fs.BoolVar(&flags.dryRun, "dry-run", false, "Print the trigger event instead of publishing it")
	fs.Usage = printUsage(fs)
	_ = fs.Parse(os.Args[1:])

	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, fs.Arg(0), &flags); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, task string, flags *triggerFlags) error {
	cfg, err := config.New()
	if err != nil {
		return err
	}

	event, err := buildEvent(cfg, task, flags, time.Now())
	if err != nil {
		return err
	}

	if flags.dryRun {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")

		return errors.WithStack(encoder.Encode(event))
	}

	logger, err := logs.New(logs.Params{Config: cfg})
	if err != nil {
		return err
	}

	publisher, err := pubsub.NewPublisherFromConfig(ctx, cfg.PubSub, logger)
	if err != nil {
		return err
	}
	defer publisher.Close()

	if err := publisher.PublishTriggerEvent(ctx, event); err != nil {
		return errors.Wrapf(err, "publish %s", task)
	}

	fmt.Printf("Published %s (request_id=%s)\n", event.Task, event.RequestID)

	return nil
}

func buildEvent(cfg *config.Config, task string, flags *triggerFlags, now time.Time) (*service.TriggerEvent, error) {
	if task != constants.TaskGenerateServices && task != constants.TaskProcessPayroll {
		return nil, errors.Errorf("unknown task %q", task)
	}
	if flags.date != "" && flags.reference != "" {
		return nil, errors.New("-date and -reference are mutually exclusive")
	}

	event := &service.TriggerEvent{
		RequestID:    uuid.New().String(),
		Task:         task,
		ScheduleTime: now,
	}

	switch {
	case flags.date != "":
		loc, err := cfg.Schedule.Location()
		if err != nil {
			return nil, err
		}
		date, err := time.ParseInLocation(time.DateOnly, flags.date, loc)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid -date %q", flags.date)
		}
		event.ReferenceTime = &date

	case flags.reference != "":
		reference, err := time.Parse(time.RFC3339, flags.reference)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid -reference %q", flags.reference)
		}
		event.ReferenceTime = &reference
	}

	return event, nil
}

func printUsage(fs *flag.FlagSet) func() {
	return func() {
		fmt.Fprintf(fs.Output(), "Usage: trigger [flags] <%s|%s>\n\nFlags:\n",
			constants.TaskGenerateServices, constants.TaskProcessPayroll)
		fs.PrintDefaults()
	}
}
