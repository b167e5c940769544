package settings

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/utils"
)

type SettingsCmd struct {
	List bool `help:"List current settings."`

	APIURL   *string `name:"api-url" help:"Base URL of the habit service (without /api)."`
	Timezone *string `help:"IANA timezone used for 'today' (or Local)."`
	RetryMax *int    `name:"retry-max" help:"Maximum retries for failed requests."`
	Timeout  *int    `help:"Per-request timeout in seconds."`
}

func (c *SettingsCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	if c.List {
		ctx.Println("Current Settings:")
		ctx.Printf("  API URL:         %s\n", settings.APIURL)
		ctx.Printf("  Timezone:        %s\n", settings.Timezone)
		ctx.Printf("  Retry Max:       %d\n", settings.RetryMax)
		ctx.Printf("  Request Timeout: %ds\n", settings.RequestTimeoutSec)
		return nil
	}

	updated := false
	if c.APIURL != nil {
		u, err := url.Parse(strings.TrimSpace(*c.APIURL))
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("invalid API URL %q (want http(s)://host)", *c.APIURL)
		}
		settings.APIURL = strings.TrimRight(strings.TrimSuffix(strings.TrimRight(u.String(), "/"), "/api"), "/")
		updated = true
	}
	if c.Timezone != nil {
		if !utils.ValidateTimezone(*c.Timezone) {
			return fmt.Errorf("invalid timezone: %s", *c.Timezone)
		}
		settings.Timezone = *c.Timezone
		updated = true
	}
	if c.RetryMax != nil {
		if *c.RetryMax < 0 || *c.RetryMax > 10 {
			return fmt.Errorf("retry max must be between 0 and 10")
		}
		settings.RetryMax = *c.RetryMax
		updated = true
	}
	if c.Timeout != nil {
		if *c.Timeout < 1 || *c.Timeout > 300 {
			return fmt.Errorf("timeout must be between 1 and 300 seconds")
		}
		settings.RequestTimeoutSec = *c.Timeout
		updated = true
	}

	if updated {
		if err := ctx.Store.SaveSettings(settings); err != nil {
			return fmt.Errorf("failed to save settings: %w", err)
		}
		ctx.Println("Settings updated successfully.")
	} else {
		ctx.Println("No changes specified. Use --list to view settings or flags to update them.")
	}

	return nil
}
