package commands

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/hay-kot/stride/internal/core/activity"
	"github.com/hay-kot/stride/internal/printer"
	"github.com/hay-kot/stride/internal/tracker"
	"github.com/urfave/cli/v3"
)

type LsCmd struct {
	flags  *Flags
	near   string
	within float64
}

// NewLsCmd creates a new ls command
func NewLsCmd(flags *Flags) *LsCmd {
	return &LsCmd{flags: flags}
}

// Register adds the ls command to the application
func (cmd *LsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "ls",
		Usage:       "List recorded activities",
		UsageText:   "stride ls [--near lat,lng [--within km]]",
		Description: "Displays every activity in the order it was recorded.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "near",
				Usage:       "only show activities near lat,lng",
				Destination: &cmd.near,
			},
			&cli.FloatFlag{
				Name:        "within",
				Usage:       "radius in kilometers used with --near",
				Value:       5,
				Destination: &cmd.within,
			},
		},
		Action: cmd.Run,
	})

	return app
}

// Run lists activities. It is also the default action when no command is given.
func (cmd *LsCmd) Run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	if res := cmd.flags.LoadResult; res.Status == tracker.LoadDegraded {
		p.Warnf("Stored activities could not be loaded (%v); run 'stride doctor'", res.Err)
	}

	activities := cmd.flags.Service.ListActivities()
	if cmd.near != "" {
		loc, err := parseLocation(cmd.near)
		if err != nil {
			return err
		}
		activities = cmd.flags.Service.Near(loc, cmd.within)
	}

	if len(activities) == 0 {
		p.Infof("No activities found")
		return nil
	}

	return writeTable(c.Root().Writer, activities)
}

func writeTable(out io.Writer, activities []activity.Activity) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tACTIVITY\tDISTANCE\tDURATION\tMETRIC\tDETAIL\tLOCATION")

	for _, a := range activities {
		metric, metricUnit := a.Metric()
		detail, detailUnit := a.Detail()
		_, _ = fmt.Fprintf(w, "%d\t%s\t%g km\t%g min\t%.1f %s\t%g %s\t%s\n",
			a.ID, a.Label, a.DistanceKm, a.DurationMin, metric, metricUnit, detail, detailUnit, a.Location)
	}

	return w.Flush()
}
