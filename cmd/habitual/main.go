package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/habitual/internal/api"
	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/cli/auth"
	"github.com/julianstephens/habitual/internal/cli/habits"
	"github.com/julianstephens/habitual/internal/cli/settings"
	"github.com/julianstephens/habitual/internal/cli/stats"
	"github.com/julianstephens/habitual/internal/cli/system"
	"github.com/julianstephens/habitual/internal/cli/tasks"
	"github.com/julianstephens/habitual/internal/constants"
	apperrors "github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/keyring"
	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/storage"
	"github.com/julianstephens/habitual/internal/storage/sqlite"
	"github.com/julianstephens/habitual/internal/utils"
)

type App struct {
	Version kong.VersionFlag
	Config  string `help:"Path to the local settings database." type:"path" default:"~/.config/habitual/habitual.db"`
	Server  string `help:"Service URL, overriding the stored api-url setting." env:"HABITUAL_API_URL"`
	Debug   bool   `help:"Mirror logs to stderr." env:"HABITUAL_DEBUG"`

	Init   system.InitCmd   `cmd:"" help:"Initialize habitual storage."`
	Doctor system.DoctorCmd `cmd:"" help:"Run health checks and diagnostics."`
	Tui    system.TuiCmd    `cmd:"" help:"Launch the interactive TUI." default:"1"`

	Login  auth.LoginCmd  `cmd:"" help:"Log in to the habit service."`
	Signup auth.SignupCmd `cmd:"" help:"Create an account on the habit service."`
	Logout auth.LogoutCmd `cmd:"" help:"Log out and forget the stored token."`
	Whoami auth.WhoamiCmd `cmd:"" help:"Show the logged in user."`

	Habit    habits.HabitCmd      `cmd:"" help:"Manage habits and today's completions."`
	Task     tasks.TaskCmd        `cmd:"" help:"Manage planner tasks."`
	Planner  tasks.PlannerCmd     `cmd:"" help:"Show the planner for a day."`
	Stats    stats.StatsCmd       `cmd:"" help:"Show completion statistics."`
	Report   stats.ReportCmd      `cmd:"" help:"Write a PDF statistics report."`
	DebugCmd system.DebugCmd      `cmd:"" name:"debug" help:"Debug commands for troubleshooting."`
	Settings settings.SettingsCmd `cmd:"" name:"settings" help:"Manage client settings."`
}

var CLI App

func options() []kong.Option {
	return []kong.Option{
		kong.Name(constants.AppName),
		kong.Description("Habit and daily planner companion for the terminal"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	}
}

func main() {
	kctx := kong.Parse(&CLI, options()...)

	if err := logger.Init(logger.Config{Debug: CLI.Debug, ConfigDir: filepath.Dir(CLI.Config)}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: file logging disabled: %v\n", err)
	}

	command := strings.Fields(kctx.Command())[0]
	store := sqlite.NewStore(CLI.Config)
	cfg, err := openStore(store, command)
	if err != nil {
		apperrors.Fatal(err)
	}

	apiURL := cfg.APIURL
	if CLI.Server != "" {
		apiURL = CLI.Server
	}
	loc, err := utils.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Warn("Unknown timezone, using local time", "timezone", cfg.Timezone, "error", err)
		loc = time.Local
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appCtx := &cli.Context{
		Store: store,
		API: api.New(apiURL,
			api.WithTokenStore(keyring.TokenStore{}),
			api.WithRetryMax(cfg.RetryMax),
			api.WithTimeout(time.Duration(cfg.RequestTimeoutSec)*time.Second),
		),
		Location: loc,
		Ctx:      ctx,
	}
	logger.Debug("Starting", "command", kctx.Command(), "api", apiURL, "config", CLI.Config)

	err = kctx.Run(appCtx)
	if closeErr := store.Close(); closeErr != nil {
		logger.Warn("Failed to close store", "error", closeErr)
	}
	if err != nil {
		stop()
		apperrors.Fatal(err)
	}
}

// openStore loads the settings database and returns the client settings.
// init and doctor open the store themselves; every other command creates
// it on first use.
func openStore(store storage.Provider, command string) (models.Settings, error) {
	defaults := models.DefaultSettings()
	if command == "init" {
		return defaults, nil
	}

	err := store.Load()
	if errors.Is(err, storage.ErrNotInitialized) && command != "doctor" {
		logger.Info("Creating settings database", "path", store.GetConfigPath())
		err = store.Init()
	}
	if err != nil {
		if command == "doctor" {
			return defaults, nil
		}
		return defaults, err
	}

	cfg, err := store.GetSettings()
	if err != nil {
		return defaults, fmt.Errorf("failed to read settings: %w", err)
	}
	models.ApplyDefaultSettings(&cfg)
	return cfg, nil
}
