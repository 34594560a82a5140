package commands

import (
	"context"
	"fmt"

	"github.com/hay-kot/stride/internal/core/activity"
	"github.com/hay-kot/stride/internal/core/validate"
	"github.com/hay-kot/stride/internal/printer"
	"github.com/urfave/cli/v3"
)

// RecordCmd records a single run or ride from flags.
type RecordCmd struct {
	flags *Flags
	kind  activity.Kind

	location string
	distance string
	duration string
	extra    string
}

// NewRunCmd creates the run command.
func NewRunCmd(flags *Flags) *RecordCmd {
	return &RecordCmd{flags: flags, kind: activity.KindRun}
}

// NewRideCmd creates the ride command.
func NewRideCmd(flags *Flags) *RecordCmd {
	return &RecordCmd{flags: flags, kind: activity.KindRide}
}

// Register adds the command to the application
func (cmd *RecordCmd) Register(app *cli.Command) *cli.Command {
	extraName, extraUsage := "cadence", "cadence in steps per minute"
	usage, example := "Record a run", "stride run --at 51.5,-0.12 --distance 5 --duration 25 --cadence 180"
	if cmd.kind == activity.KindRide {
		extraName, extraUsage = "elevation", "elevation gain in meters"
		usage, example = "Record a ride", "stride ride --at 51.5,-0.12 --distance 20 --duration 60 --elevation 150"
	}

	app.Commands = append(app.Commands, &cli.Command{
		Name:      string(cmd.kind),
		Usage:     usage,
		UsageText: example,
		Description: `Validates the values, records the activity and saves the log.

Numbers are read the way a form field is: blank is zero and anything that
is not a number is rejected.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "at",
				Usage:       "location as lat,lng",
				Required:    true,
				Destination: &cmd.location,
			},
			&cli.StringFlag{
				Name:        "distance",
				Aliases:     []string{"d"},
				Usage:       "distance in kilometers",
				Destination: &cmd.distance,
			},
			&cli.StringFlag{
				Name:        "duration",
				Aliases:     []string{"t"},
				Usage:       "duration in minutes",
				Destination: &cmd.duration,
			},
			&cli.StringFlag{
				Name:        extraName,
				Usage:       extraUsage,
				Destination: &cmd.extra,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *RecordCmd) run(ctx context.Context, c *cli.Command) error {
	loc, err := parseLocation(cmd.location)
	if err != nil {
		return err
	}

	a, err := createActivity(ctx, cmd.flags, cmd.kind, loc,
		validate.ParseNumber(cmd.distance),
		validate.ParseNumber(cmd.duration),
		validate.ParseNumber(cmd.extra),
	)
	if err != nil {
		if a.Label != "" {
			// Built and kept in memory, but the write failed.
			printer.Ctx(ctx).Errorf("%s was not saved", a.Label)
		}
		return err
	}

	printer.Ctx(ctx).Success(fmt.Sprintf("%s recorded", a.Label), fmt.Sprintf("id %d", a.ID))
	return nil
}

// createActivity dispatches to the service constructor for kind.
func createActivity(ctx context.Context, flags *Flags, kind activity.Kind, loc activity.Location, distance, duration, extra float64) (activity.Activity, error) {
	var (
		a   activity.Activity
		err error
	)

	switch kind {
	case activity.KindRun:
		a, err = flags.Service.CreateRun(ctx, loc, distance, duration, extra)
	case activity.KindRide:
		a, err = flags.Service.CreateRide(ctx, loc, distance, duration, extra)
	default:
		return activity.Activity{}, fmt.Errorf("unknown activity type %q", kind)
	}
	if err != nil {
		return a, fmt.Errorf("record %s: %w", kind, err)
	}
	return a, nil
}
