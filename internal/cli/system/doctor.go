package system

import (
	"fmt"
	"net/url"
	"time"

	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/keyring"
	"github.com/julianstephens/habitual/internal/storage"
	"github.com/julianstephens/habitual/internal/utils"
)

// StaleSyncAfter is how old the last habit fetch may be before doctor warns.
const StaleSyncAfter = 24 * time.Hour

type DoctorCmd struct{}

type doctor struct {
	ctx      *cli.Context
	hasError bool
}

func (d *doctor) check(name string, err error) bool {
	return d.checkDetail(name, "", err)
}

// checkDetail is check with an extra line shown under a passing result.
func (d *doctor) checkDetail(name, detail string, err error) bool {
	if err != nil {
		d.ctx.Printf("❌ %s: FAIL\n", name)
		d.ctx.Printf("   Error: %v\n", err)
		d.hasError = true
		return false
	}
	d.ok(name, detail)
	return true
}

func (d *doctor) warn(name, detail string, err error) {
	if err != nil {
		d.ctx.Printf("⚠ %s: WARNING\n", name)
		d.ctx.Printf("   %v\n", err)
		return
	}
	d.ok(name, detail)
}

func (d *doctor) ok(name, detail string) {
	d.ctx.Printf("✓ %s: OK\n", name)
	if detail != "" {
		d.ctx.Printf("   %s\n", detail)
	}
}

func (d *doctor) skip(name, reason string) {
	d.ctx.Printf("⊘ %s: SKIPPED (%s)\n", name, reason)
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	d := &doctor{ctx: ctx}

	dbReachable := d.check("Database reachable", checkDBReachable(ctx))
	if dbReachable {
		d.check("Schema version", checkSchemaVersion(ctx))
		d.check("Migrations complete", checkMigrationsComplete(ctx))
		d.check("Settings", checkSettings(ctx))
	} else {
		for _, name := range []string{"Schema version", "Migrations complete", "Settings"} {
			d.skip(name, "database not reachable")
		}
	}

	d.check("Clock/timezone", checkClockTimezone(ctx))
	d.warn("OS keyring", "", checkKeyring())

	loggedIn := ctx.API.HasToken()
	if loggedIn {
		d.check("Logged in", nil)
		detail, err := checkService(ctx)
		d.checkDetail("Service reachable", detail, err)
	} else {
		d.warn("Logged in", "", fmt.Errorf("no token stored, run 'habitual login'"))
		d.skip("Service reachable", "not logged in")
	}

	if dbReachable {
		detail, err := checkLastSync(ctx)
		d.warn("Last sync", detail, err)
	} else {
		d.skip("Last sync", "database not reachable")
	}

	ctx.Println()
	if d.hasError {
		ctx.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	ctx.Println("All diagnostics passed!")
	return nil
}

func checkDBReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	if _, err := ctx.Store.GetSettings(); err != nil {
		return fmt.Errorf("failed to query database: %w", err)
	}
	return nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	status, err := ctx.Store.SchemaStatus()
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}
	if status.Current > status.Latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", status.Current, status.Latest)
	}
	return nil
}

func checkMigrationsComplete(ctx *cli.Context) error {
	status, err := ctx.Store.SchemaStatus()
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}
	if !status.UpToDate() {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d", status.Current, status.Latest)
	}
	return nil
}

func checkSettings(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	if !utils.ValidateTimezone(settings.Timezone) {
		return fmt.Errorf("invalid timezone setting: %q", settings.Timezone)
	}
	u, err := url.Parse(settings.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid API URL setting: %q", settings.APIURL)
	}
	if settings.RequestTimeoutSec <= 0 {
		return fmt.Errorf("request timeout must be positive, got %d", settings.RequestTimeoutSec)
	}
	return nil
}

func checkClockTimezone(ctx *cli.Context) error {
	now := ctx.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	return nil
}

func checkKeyring() error {
	if !keyring.IsAvailable() {
		return fmt.Errorf("%w, the login token will not survive this session", keyring.ErrKeyringUnavailable)
	}
	return nil
}

func checkService(ctx *cli.Context) (string, error) {
	user, err := ctx.API.CurrentUser(ctx.Context())
	if err != nil {
		return "", fmt.Errorf("%s: %w", ctx.API.BaseURL(), err)
	}
	return fmt.Sprintf("Signed in as %s <%s>", user.Name, user.Email), nil
}

func checkLastSync(ctx *cli.Context) (string, error) {
	rec, ok, err := ctx.Store.LastSync(storage.ResourceHabits)
	if err != nil {
		return "", fmt.Errorf("failed to read sync log: %w", err)
	}
	if !ok {
		return "", fmt.Errorf("habits have never been fetched")
	}
	age := ctx.Now().Sub(rec.FetchedAt)
	if age > StaleSyncAfter {
		return "", fmt.Errorf("habits last fetched %s ago", age.Round(time.Minute))
	}
	return fmt.Sprintf("%d habits fetched at %s", rec.ItemCount, rec.FetchedAt.In(ctx.Now().Location()).Format("2006-01-02 15:04")), nil
}
