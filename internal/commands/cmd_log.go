package commands

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/hay-kot/stride/internal/core/activity"
	"github.com/hay-kot/stride/internal/core/validate"
	"github.com/hay-kot/stride/internal/printer"
	"github.com/hay-kot/stride/internal/styles"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

// LogCmd records an activity through an interactive form.
type LogCmd struct {
	flags *Flags
}

// NewLogCmd creates a new log command
func NewLogCmd(flags *Flags) *LogCmd {
	return &LogCmd{flags: flags}
}

// Register adds the log command to the application
func (cmd *LogCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "log",
		Usage:       "Record an activity interactively",
		UsageText:   "stride log",
		Description: "Prompts for the activity type, location and numbers, then records it like 'stride run' or 'stride ride'.",
		Action:      cmd.run,
	})

	return app
}

// logForm holds the raw values bound to the form fields.
type logForm struct {
	kind     activity.Kind
	location string
	distance string
	duration string
	extra    string
}

func (cmd *LogCmd) run(ctx context.Context, c *cli.Command) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("stride log needs a terminal; use 'stride run' or 'stride ride' instead")
	}

	values := logForm{kind: activity.KindRun}

	kindForm := huh.NewForm(huh.NewGroup(
		huh.NewSelect[activity.Kind]().
			Title("Type").
			Options(
				huh.NewOption("Running", activity.KindRun),
				huh.NewOption("Cycling", activity.KindRide),
			).
			Value(&values.kind),
	)).WithTheme(styles.FormTheme())

	if err := kindForm.Run(); err != nil {
		return formErr(ctx, err)
	}

	extraTitle := "Cadence (steps/min)"
	if values.kind == activity.KindRide {
		extraTitle = "Elevation gain (m)"
	}

	detailForm := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Location").
			Placeholder("lat,lng").
			Value(&values.location).
			Validate(func(s string) error {
				_, err := parseLocation(s)
				return err
			}),
		huh.NewInput().
			Title("Distance (km)").
			Value(&values.distance).
			Validate(numeric),
		huh.NewInput().
			Title("Duration (min)").
			Value(&values.duration).
			Validate(numeric),
		huh.NewInput().
			Title(extraTitle).
			Value(&values.extra).
			Validate(numeric),
	)).WithTheme(styles.FormTheme())

	if err := detailForm.Run(); err != nil {
		return formErr(ctx, err)
	}

	loc, err := parseLocation(values.location)
	if err != nil {
		return err
	}

	a, err := createActivity(ctx, cmd.flags, values.kind, loc,
		validate.ParseNumber(values.distance),
		validate.ParseNumber(values.duration),
		validate.ParseNumber(values.extra),
	)
	if err != nil {
		return err
	}

	printer.Ctx(ctx).Success(fmt.Sprintf("%s recorded", a.Label), fmt.Sprintf("id %d", a.ID))
	return nil
}

// numeric flags text that will not parse. Range checks are left to the
// configured validation mode.
func numeric(s string) error {
	if math.IsNaN(validate.ParseNumber(s)) {
		return errors.New("not a number")
	}
	return nil
}

func formErr(ctx context.Context, err error) error {
	if errors.Is(err, huh.ErrUserAborted) {
		printer.Ctx(ctx).Infof("Cancelled")
		return nil
	}
	return fmt.Errorf("run form: %w", err)
}
