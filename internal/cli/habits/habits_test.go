package habits

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/storage"
	"github.com/julianstephens/habitual/internal/storage/sqlite"
	"github.com/julianstephens/habitual/internal/testutil"
)

var testNow = time.Date(2026, 10, 16, 10, 0, 0, 0, time.UTC)

func setupTestEnv(t *testing.T) (*cli.Context, *testutil.Server, *bytes.Buffer) {
	t.Helper()
	srv := testutil.NewServer(t)
	srv.Now = func() time.Time { return testNow }

	store := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	})

	var out bytes.Buffer
	ctx := &cli.Context{
		Store:    store,
		API:      srv.LoggedInClient(),
		Clock:    func() time.Time { return testNow },
		Location: time.UTC,
		Out:      &out,
	}
	return ctx, srv, &out
}

func intPtr(n int) *int { return &n }

func TestHabitAddCmd(t *testing.T) {
	ctx, srv, out := setupTestEnv(t)

	cmd := &HabitAddCmd{Name: "Read", Frequency: "daily", TimeOfDay: "evening", Goal: "monthly", Target: 20}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("habit add failed: %v", err)
	}

	habits := srv.Habits()
	if len(habits) != 1 {
		t.Fatalf("expected 1 habit on the server, got %d", len(habits))
	}
	h := habits[0]
	if h.Name != "Read" || h.TimeOfDay != models.TimeEvening {
		t.Errorf("unexpected habit: %+v", h)
	}
	if h.GoalTarget == nil || *h.GoalTarget != 20 {
		t.Errorf("expected goal target 20, got %v", h.GoalTarget)
	}
	want := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	if h.GoalDate == nil || !h.GoalDate.Equal(want) {
		t.Errorf("expected goal date %v, got %v", want, h.GoalDate)
	}
	if !strings.Contains(out.String(), "Added habit: Read") {
		t.Errorf("unexpected output: %q", out.String())
	}
}

func TestHabitAddCmd_Invalid(t *testing.T) {
	tests := []struct {
		name string
		cmd  HabitAddCmd
		want string
	}{
		{"empty name", HabitAddCmd{Name: "  ", Frequency: "daily", TimeOfDay: "anytime", Goal: "none"}, "name is required"},
		{"bad frequency", HabitAddCmd{Name: "Run", Frequency: "hourly", TimeOfDay: "anytime", Goal: "none"}, "Invalid frequency"},
		{"goal without target", HabitAddCmd{Name: "Run", Frequency: "daily", TimeOfDay: "anytime", Goal: "yearly"}, "Goal target is required"},
		{"custom goal without date", HabitAddCmd{Name: "Run", Frequency: "daily", TimeOfDay: "anytime", Goal: "custom", Target: 5}, "target date"},
		{"custom goal in the past", HabitAddCmd{Name: "Run", Frequency: "daily", TimeOfDay: "anytime", Goal: "custom", Target: 5, GoalDate: "2026-10-01"}, "in the past"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, srv, _ := setupTestEnv(t)
			err := tt.cmd.Run(ctx)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
			if len(srv.Habits()) != 0 {
				t.Error("invalid habit should not reach the service")
			}
		})
	}
}

func TestHabitListCmd(t *testing.T) {
	ctx, srv, out := setupTestEnv(t)
	srv.AddHabit(models.Habit{
		Name:          "Walk",
		CurrentStreak: 3,
		CompletionHistory: []models.CompletionEntry{
			{Date: time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC), Completed: true},
		},
	})
	srv.AddHabit(models.Habit{Name: "Stretch"})

	if err := (&HabitListCmd{Sort: "name"}).Run(ctx); err != nil {
		t.Fatalf("habit list failed: %v", err)
	}

	got := out.String()
	stretch := strings.Index(got, "[ ] Stretch")
	walk := strings.Index(got, "[x] Walk")
	if stretch < 0 || walk < 0 {
		t.Fatalf("missing habit lines in output: %q", got)
	}
	if stretch > walk {
		t.Error("expected habits sorted by name")
	}
	if !strings.Contains(got, "1/2 completed today (50%)") {
		t.Errorf("missing today summary: %q", got)
	}

	rec, ok, err := ctx.Store.LastSync(storage.ResourceHabits)
	if err != nil || !ok {
		t.Fatalf("expected sync record, ok=%v err=%v", ok, err)
	}
	if rec.ItemCount != 2 {
		t.Errorf("expected 2 synced habits, got %d", rec.ItemCount)
	}
}

func TestHabitListCmd_Empty(t *testing.T) {
	ctx, _, out := setupTestEnv(t)
	if err := (&HabitListCmd{}).Run(ctx); err != nil {
		t.Fatalf("habit list failed: %v", err)
	}
	if !strings.Contains(out.String(), "No habits found") {
		t.Errorf("unexpected output: %q", out.String())
	}
}

func TestHabitToggleCmd(t *testing.T) {
	ctx, srv, out := setupTestEnv(t)
	srv.AddHabit(models.Habit{Name: "Meditate", CurrentStreak: 2, LongestStreak: 2})

	if err := (&HabitToggleCmd{Habit: "meditate"}).Run(ctx); err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	if !strings.Contains(out.String(), "✓ Meditate done for today (streak 3)") {
		t.Errorf("unexpected output: %q", out.String())
	}

	out.Reset()
	if err := (&HabitToggleCmd{Habit: "meditate"}).Run(ctx); err != nil {
		t.Fatalf("second toggle failed: %v", err)
	}
	if !strings.Contains(out.String(), "○ Meditate marked not done (streak 2)") {
		t.Errorf("unexpected output: %q", out.String())
	}
}

func TestHabitToggleCmd_Unknown(t *testing.T) {
	ctx, srv, _ := setupTestEnv(t)
	srv.AddHabit(models.Habit{Name: "Meditate"})

	err := (&HabitToggleCmd{Habit: "juggle"}).Run(ctx)
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestHabitShowCmd(t *testing.T) {
	ctx, srv, out := setupTestEnv(t)
	h := srv.AddHabit(models.Habit{
		Name:        "Write",
		Frequency:   models.FrequencyDaily,
		TimeOfDay:   models.TimeMorning,
		GoalType:    models.GoalCompletion,
		GoalTarget:  intPtr(10),
		Completions: 5,
		CompletionHistory: []models.CompletionEntry{
			{Date: time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC), Completed: true},
			{Date: time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC), Completed: true},
		},
	})

	if err := (&HabitShowCmd{Habit: h.ID, Days: 3}).Run(ctx); err != nil {
		t.Fatalf("habit show failed: %v", err)
	}

	got := out.String()
	for _, want := range []string{
		"Write [" + h.ID + "]",
		"Done today:     true",
		"Goal:           completion, 5/10 (50%)",
		"Daily:          100%",
		"Oct 14 ·■■ today",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestHabitEditCmd(t *testing.T) {
	ctx, srv, _ := setupTestEnv(t)
	h := srv.AddHabit(models.Habit{Name: "Swim", Frequency: models.FrequencyWeekly, GoalType: models.GoalNone})

	name := "Swim laps"
	goal := "streak"
	target := 7
	cmd := &HabitEditCmd{Habit: h.ID, Name: &name, Goal: &goal, Target: &target}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("habit edit failed: %v", err)
	}

	got := srv.Habits()[0]
	if got.Name != "Swim laps" || got.GoalType != models.GoalStreak {
		t.Errorf("unexpected habit after edit: %+v", got)
	}
	if got.GoalTarget == nil || *got.GoalTarget != 7 {
		t.Errorf("expected target 7, got %v", got.GoalTarget)
	}
	if got.Frequency != models.FrequencyWeekly {
		t.Errorf("frequency should be preserved, got %q", got.Frequency)
	}
}

func TestHabitDeleteCmd(t *testing.T) {
	ctx, srv, out := setupTestEnv(t)
	srv.AddHabit(models.Habit{Name: "Floss"})

	if err := (&HabitDeleteCmd{Habit: "Floss", Yes: true}).Run(ctx); err != nil {
		t.Fatalf("habit delete failed: %v", err)
	}
	if len(srv.Habits()) != 0 {
		t.Error("habit should be deleted on the server")
	}
	if !strings.Contains(out.String(), "Deleted habit: Floss") {
		t.Errorf("unexpected output: %q", out.String())
	}
}

func TestHabitCommandsRequireLogin(t *testing.T) {
	ctx, srv, _ := setupTestEnv(t)
	ctx.API = srv.Client()

	if err := (&HabitListCmd{}).Run(ctx); err == nil {
		t.Error("expected error without a token")
	}
	if len(srv.Requests()) != 0 {
		t.Error("no request should be sent without a token")
	}
}
