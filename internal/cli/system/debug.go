package system

import (
	"encoding/json"
	"fmt"

	"github.com/julianstephens/habitual/internal/cli"
)

type DebugCmd struct {
	DBPath       *DebugDBPathCmd       `cmd:"" help:"Show database path."`
	DumpHabits   *DebugDumpHabitsCmd   `cmd:"" help:"Dump decoded habits as JSON."`
	DumpPlanner  *DebugDumpPlannerCmd  `cmd:"" help:"Dump a day's decoded planner tasks as JSON."`
	DumpSettings *DebugDumpSettingsCmd `cmd:"" help:"Dump settings as JSON."`
}

type DebugDBPathCmd struct{}

func (cmd *DebugDBPathCmd) Run(ctx *cli.Context) error {
	return printJSON(ctx, map[string]string{
		"path": ctx.Store.GetConfigPath(),
	})
}

type DebugDumpHabitsCmd struct {
	ID string `arg:"" optional:"" help:"Only dump the habit with this ID."`
}

func (cmd *DebugDumpHabitsCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireLogin(); err != nil {
		return err
	}
	if cmd.ID != "" {
		habit, err := ctx.API.GetHabit(ctx.Context(), cmd.ID)
		if err != nil {
			return fmt.Errorf("failed to get habit: %w", err)
		}
		return printJSON(ctx, habit)
	}
	habits, err := ctx.FetchHabits(ctx.Context())
	if err != nil {
		return fmt.Errorf("failed to get habits: %w", err)
	}
	return printJSON(ctx, habits)
}

type DebugDumpPlannerCmd struct {
	Date string `arg:"" help:"Date of the planner to dump (YYYY-MM-DD or 'today')." default:"today"`
}

func (cmd *DebugDumpPlannerCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireLogin(); err != nil {
		return err
	}
	day, err := ctx.ParseDay(cmd.Date)
	if err != nil {
		return err
	}
	tasks, err := ctx.FetchPlanner(ctx.Context(), day)
	if err != nil {
		return fmt.Errorf("failed to get planner: %w", err)
	}
	return printJSON(ctx, tasks)
}

type DebugDumpSettingsCmd struct{}

func (cmd *DebugDumpSettingsCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	return printJSON(ctx, settings)
}

func printJSON(ctx *cli.Context, v interface{}) error {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	ctx.Println(string(jsonBytes))
	return nil
}
