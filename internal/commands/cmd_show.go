package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/hay-kot/stride/internal/core/activity"
	"github.com/hay-kot/stride/internal/printer"
	"github.com/hay-kot/stride/internal/styles"
	"github.com/urfave/cli/v3"
)

type ShowCmd struct {
	flags *Flags
}

// NewShowCmd creates a new show command
func NewShowCmd(flags *Flags) *ShowCmd {
	return &ShowCmd{flags: flags}
}

// Register adds the show command to the application
func (cmd *ShowCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "show",
		Usage:       "Show one activity",
		UsageText:   "stride show <id>",
		Description: "Prints every field of the activity with the given id.",
		Action:      cmd.run,
	})

	return app
}

func (cmd *ShowCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	if c.Args().Len() != 1 {
		return fmt.Errorf("activity id required\n\nUsage: stride show <id>")
	}

	id, err := strconv.Atoi(c.Args().First())
	if err != nil {
		return fmt.Errorf("invalid activity id %q", c.Args().First())
	}

	a, err := cmd.flags.Service.FindActivity(id)
	if errors.Is(err, activity.ErrNotFound) {
		p.Infof("No activity with id %d", id)
		return nil
	}
	if err != nil {
		return err
	}

	_, _ = fmt.Fprint(c.Root().Writer, renderDetail(a))
	return nil
}

func renderDetail(a activity.Activity) string {
	title := styles.RunStyle
	if a.Kind == activity.KindRide {
		title = styles.RideStyle
	}

	metric, metricUnit := a.Metric()
	detail, detailUnit := a.Detail()

	rows := [][2]string{
		{"id", strconv.Itoa(a.ID)},
		{"recorded", a.CreatedAt.Format("2006-01-02 15:04")},
		{"location", a.Location.String()},
		{"distance", fmt.Sprintf("%g km", a.DistanceKm)},
		{"duration", fmt.Sprintf("%g min", a.DurationMin)},
	}
	if a.Kind == activity.KindRun {
		rows = append(rows, [2]string{"pace", fmt.Sprintf("%.2f %s", metric, metricUnit)}, [2]string{"cadence", fmt.Sprintf("%g %s", detail, detailUnit)})
	} else {
		rows = append(rows, [2]string{"speed", fmt.Sprintf("%.2f %s", metric, metricUnit)}, [2]string{"elevation", fmt.Sprintf("%g %s", detail, detailUnit)})
	}

	var b strings.Builder
	b.WriteString(title.Render(a.Label) + "\n")
	for _, row := range rows {
		b.WriteString(styles.LabelStyle.Render(row[0]) + styles.ValueStyle.Render(row[1]) + "\n")
	}
	return b.String()
}
