package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/hay-kot/criterio"
	"github.com/hay-kot/stride/internal/core/activity"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

const (
	// StatusCreated indicates the activity was recorded.
	StatusCreated = "created"
	// StatusFailed indicates the activity was rejected or could not be saved.
	StatusFailed = "failed"
	// StatusSkipped indicates the activity was not attempted due to failure threshold.
	StatusSkipped = "skipped"

	// maxFailures is the number of failures before stopping import processing.
	maxFailures = 3
)

// ImportInput is the JSON input schema for bulk activity import.
type ImportInput struct {
	Activities []ImportActivity `json:"activities"`
}

// ImportActivity defines a single activity to record. Cadence is read for
// runs and elevation for rides.
type ImportActivity struct {
	Type      string   `json:"type"`
	Lat       *float64 `json:"lat"`
	Lng       *float64 `json:"lng"`
	Distance  float64  `json:"distance"`
	Duration  float64  `json:"duration"`
	Cadence   float64  `json:"cadence,omitempty"`
	Elevation float64  `json:"elevation,omitempty"`
}

// Validate checks the shape of the input. Numeric ranges are left to the
// configured validation mode.
func (in ImportInput) Validate() error {
	if len(in.Activities) == 0 {
		return criterio.NewFieldErrors("activities", fmt.Errorf("array is empty"))
	}

	var errs criterio.FieldErrorsBuilder
	for i, a := range in.Activities {
		field := fmt.Sprintf("activities[%d]", i)

		if _, err := activity.ParseKind(a.Type); err != nil {
			errs = errs.Append(field+".type", fmt.Errorf("must be run or ride, got %q", a.Type))
		}
		if a.Lat == nil || a.Lng == nil {
			errs = errs.Append(field, errors.New("lat and lng are required"))
		}
	}

	return errs.ToError()
}

// ImportResult is the output for a single import attempt.
type ImportResult struct {
	Index  int    `json:"index"`
	Type   string `json:"type"`
	ID     *int   `json:"id,omitempty"`
	Label  string `json:"label,omitempty"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// ImportOutput is the JSON output schema.
type ImportOutput struct {
	Results []ImportResult `json:"results"`
}

type ImportCmd struct {
	flags *Flags
	file  string
	stdin io.Reader
}

func NewImportCmd(flags *Flags) *ImportCmd {
	return &ImportCmd{flags: flags, stdin: os.Stdin}
}

func (cmd *ImportCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "import",
		Usage: "Record multiple activities from JSON input",
		UsageText: `stride import [options]

Read from stdin:
  echo '{"activities":[{"type":"run","lat":51.5,"lng":-0.12,"distance":5,"duration":25,"cadence":180}]}' | stride import

Read from file:
  stride import -f activities.json`,
		Description: `Records each activity in the input in order, exactly as 'stride run' and
'stride ride' would.

Processing stops after 3 failures. Activities not attempted are marked as skipped.

Input JSON schema:
  {
    "activities": [
      {
        "type": "run | ride",
        "lat": 51.5,
        "lng": -0.12,
        "distance": 5,
        "duration": 25,
        "cadence": 180,
        "elevation": 0
      }
    ]
  }

Output is JSON with a result for each activity.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "file",
				Aliases:     []string{"f"},
				Usage:       "path to JSON file (reads from stdin if not provided)",
				Destination: &cmd.file,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ImportCmd) run(ctx context.Context, c *cli.Command) error {
	input, err := cmd.readInput()
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	if err := input.Validate(); err != nil {
		return fmt.Errorf("invalid input: %w", err)
	}

	output := ImportOutput{Results: make([]ImportResult, 0, len(input.Activities))}

	failures := 0
	for i, in := range input.Activities {
		if failures >= maxFailures {
			for j := i; j < len(input.Activities); j++ {
				output.Results = append(output.Results, ImportResult{
					Index:  j,
					Type:   input.Activities[j].Type,
					Status: StatusSkipped,
				})
			}
			break
		}

		result := cmd.record(ctx, i, in)
		output.Results = append(output.Results, result)
		if result.Status == StatusFailed {
			failures++
		}
	}

	enc := json.NewEncoder(c.Root().Writer)
	enc.SetIndent("", "  ")
	if err := enc.Encode(output); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	if failures > 0 {
		return cli.Exit("", 1)
	}
	return nil
}

func (cmd *ImportCmd) readInput() (ImportInput, error) {
	var reader io.Reader

	if cmd.file != "" {
		f, err := os.Open(cmd.file)
		if err != nil {
			return ImportInput{}, fmt.Errorf("open file: %w", err)
		}
		defer func() { _ = f.Close() }()
		reader = f
	} else {
		if f, ok := cmd.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			return ImportInput{}, fmt.Errorf("no input provided (stdin is a terminal); use -f flag or pipe JSON input")
		}
		reader = cmd.stdin
	}

	var input ImportInput
	if err := json.NewDecoder(reader).Decode(&input); err != nil {
		return ImportInput{}, fmt.Errorf("decode JSON: %w", err)
	}

	return input, nil
}

func (cmd *ImportCmd) record(ctx context.Context, index int, in ImportActivity) ImportResult {
	result := ImportResult{Index: index, Type: in.Type, Status: StatusFailed}

	kind, err := activity.ParseKind(in.Type)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	loc, err := activity.NewLocation(*in.Lat, *in.Lng)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	extra := in.Cadence
	if kind == activity.KindRide {
		extra = in.Elevation
	}

	a, err := createActivity(ctx, cmd.flags, kind, loc, in.Distance, in.Duration, extra)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	result.ID = &a.ID
	result.Label = a.Label
	result.Status = StatusCreated
	return result
}
