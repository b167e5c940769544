package stats

import (
	"path/filepath"

	"github.com/julianstephens/habitual/internal/analytics"
	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/report"
)

type ReportCmd struct {
	Out  string `short:"o" help:"Output PDF path. Defaults to report_YYYY-MM-DD.pdf in the current directory." type:"path"`
	Date string `short:"d" help:"Planner day to include (YYYY-MM-DD, today, yesterday)." default:"today"`
}

func (c *ReportCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireLogin(); err != nil {
		return err
	}

	day, err := ctx.ParseDay(c.Date)
	if err != nil {
		return err
	}

	habits, err := ctx.FetchHabits(ctx.Context())
	if err != nil {
		return err
	}
	tasks, err := ctx.FetchPlanner(ctx.Context(), day)
	if err != nil {
		return err
	}

	in := report.Input{
		Snapshot: analytics.Dashboard(habits, ctx.Now()),
		Habits:   habits,
		Tasks:    tasks,
	}
	if user, err := ctx.API.CurrentUser(ctx.Context()); err != nil {
		logger.Warn("Report without account details", "error", err)
	} else {
		in.User = user
	}

	path := c.Out
	if path == "" {
		path = report.DefaultFilename(in.Snapshot)
	}
	if filepath.Ext(path) == "" {
		path += ".pdf"
	}

	abs, err := report.WriteFile(path, in)
	if err != nil {
		return err
	}
	ctx.Printf("Report written to %s\n", abs)
	return nil
}
