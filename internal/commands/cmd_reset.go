package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/hay-kot/stride/internal/printer"
	"github.com/hay-kot/stride/internal/styles"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

type ResetCmd struct {
	flags *Flags
	yes   bool
}

func NewResetCmd(flags *Flags) *ResetCmd {
	return &ResetCmd{flags: flags}
}

func (cmd *ResetCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "reset",
		Usage:       "Delete every recorded activity",
		UsageText:   "stride reset [--yes]",
		Description: "Clears the activity log and the issued id list. Asks for confirmation unless --yes is given.",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "yes",
				Aliases:     []string{"y"},
				Usage:       "skip the confirmation prompt",
				Destination: &cmd.yes,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *ResetCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)
	count := len(cmd.flags.Service.ListActivities())

	if !cmd.yes {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return fmt.Errorf("refusing to reset without a terminal; pass --yes")
		}

		confirmed := false
		err := huh.NewForm(huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete %d activities?", count)).
				Affirmative("Delete").
				Negative("Keep").
				Value(&confirmed),
		)).WithTheme(styles.FormTheme()).Run()
		if err != nil {
			return formErr(ctx, err)
		}
		if !confirmed {
			p.Infof("Nothing deleted")
			return nil
		}
	}

	if err := cmd.flags.Service.Reset(ctx); err != nil {
		return fmt.Errorf("reset: %w", err)
	}

	p.Successf("Deleted %d activities", count)
	return nil
}
