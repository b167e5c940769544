package tasks

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/testutil"
)

var testNow = time.Date(2026, 10, 16, 10, 0, 0, 0, time.UTC)

func setupTestEnv(t *testing.T) (*cli.Context, *testutil.Server, *bytes.Buffer) {
	t.Helper()
	srv := testutil.NewServer(t)
	srv.Now = func() time.Time { return testNow }

	var out bytes.Buffer
	ctx := &cli.Context{
		API:      srv.LoggedInClient(),
		Clock:    func() time.Time { return testNow },
		Location: time.UTC,
		Out:      &out,
	}
	return ctx, srv, &out
}

func intPtr(n int) *int { return &n }

func TestTaskAddCmd(t *testing.T) {
	ctx, srv, out := setupTestEnv(t)

	cmd := &TaskAddCmd{
		Title:    "Pushups",
		Type:     "count",
		Quantity: 30,
		Priority: "high",
		Duration: 10,
		Tags:     []string{"fitness"},
		Remind:   "08:30",
		Repeat:   "weekly",
		Interval: 1,
		Weekdays: "mon,wed",
	}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("task add failed: %v", err)
	}

	tasks := srv.Tasks()
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task on the server, got %d", len(tasks))
	}
	task := tasks[0]
	if task.Date != "2026-10-16" {
		t.Errorf("expected today's date, got %q", task.Date)
	}
	if task.Quantity == nil || *task.Quantity != 30 {
		t.Errorf("expected quantity 30, got %v", task.Quantity)
	}
	if task.Reminder == nil || task.Reminder.ReminderTime == nil {
		t.Fatal("expected reminder")
	}
	if want := time.Date(2026, 10, 16, 8, 30, 0, 0, time.UTC); !task.Reminder.ReminderTime.Equal(want) {
		t.Errorf("expected reminder at %v, got %v", want, task.Reminder.ReminderTime)
	}
	if !task.IsRecurring || task.RepeatPattern == nil {
		t.Fatal("expected a repeat pattern")
	}
	if got := task.RepeatPattern.DaysOfWeek; len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Errorf("expected days [1 3], got %v", got)
	}
	if !strings.Contains(out.String(), "Added task: Pushups on 2026-10-16") {
		t.Errorf("unexpected output: %q", out.String())
	}
}

func TestTaskAddCmd_Invalid(t *testing.T) {
	tests := []struct {
		name string
		cmd  TaskAddCmd
		want string
	}{
		{"count without quantity", TaskAddCmd{Title: "Laps", Type: "count", Priority: "medium"}, "positive quantity"},
		{"value without value", TaskAddCmd{Title: "Weigh in", Type: "value", Priority: "medium"}, "need a value"},
		{"bad priority", TaskAddCmd{Title: "Call", Type: "binary", Priority: "urgent"}, "Invalid priority"},
		{"bad reminder", TaskAddCmd{Title: "Call", Type: "binary", Priority: "low", Remind: "8am"}, "invalid reminder time"},
		{"weekdays on daily repeat", TaskAddCmd{Title: "Call", Type: "binary", Priority: "low", Repeat: "daily", Interval: 1, Weekdays: "mon"}, "weekly recurrence"},
		{"zero interval", TaskAddCmd{Title: "Call", Type: "binary", Priority: "low", Repeat: "monthly", Interval: 0}, "at least 1"},
		{"bad date", TaskAddCmd{Title: "Call", Type: "binary", Priority: "low", Date: "16/10/2026"}, "invalid date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, srv, _ := setupTestEnv(t)
			err := tt.cmd.Run(ctx)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
			if len(srv.Tasks()) != 0 {
				t.Error("invalid task should not reach the service")
			}
		})
	}
}

func TestTaskToggleCmd(t *testing.T) {
	ctx, srv, out := setupTestEnv(t)
	srv.AddTask(models.Task{Title: "Stretch", Date: "2026-10-16", Type: models.TaskTypeBinary})

	if err := (&TaskToggleCmd{Task: "stretch"}).Run(ctx); err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	if !srv.Tasks()[0].Completed {
		t.Error("task should be completed on the server")
	}
	if !strings.Contains(out.String(), "✓ Stretch completed") {
		t.Errorf("unexpected output: %q", out.String())
	}

	out.Reset()
	if err := (&TaskToggleCmd{Task: "stretch"}).Run(ctx); err != nil {
		t.Fatalf("second toggle failed: %v", err)
	}
	if !strings.Contains(out.String(), "○ Stretch reopened") {
		t.Errorf("unexpected output: %q", out.String())
	}
}

func TestTaskToggleCmd_OtherDay(t *testing.T) {
	ctx, srv, _ := setupTestEnv(t)
	srv.AddTask(models.Task{Title: "Groceries", Date: "2026-10-17", Type: models.TaskTypeBinary})

	err := (&TaskToggleCmd{Task: "Groceries"}).Run(ctx)
	if err == nil || !strings.Contains(err.Error(), "not found on 2026-10-16") {
		t.Fatalf("expected not found error for today, got %v", err)
	}

	if err := (&TaskToggleCmd{Task: "Groceries", Date: "tomorrow"}).Run(ctx); err != nil {
		t.Fatalf("toggle with date failed: %v", err)
	}
	if !srv.Tasks()[0].Completed {
		t.Error("task should be completed")
	}
}

func TestTaskEditCmd(t *testing.T) {
	ctx, srv, _ := setupTestEnv(t)
	task := srv.AddTask(models.Task{Title: "Draft", Date: "2026-10-16", Type: models.TaskTypeBinary, Priority: models.PriorityLow})

	priority := "high"
	cmd := &TaskEditCmd{Task: task.ID, MoveTo: "2026-10-20", Priority: &priority, Tags: []string{"work"}}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("task edit failed: %v", err)
	}

	got := srv.Tasks()[0]
	if got.Date != "2026-10-20" || got.Priority != models.PriorityHigh {
		t.Errorf("unexpected task after edit: %+v", got)
	}
	if len(got.Tags) != 1 || got.Tags[0] != "work" {
		t.Errorf("expected tags [work], got %v", got.Tags)
	}
}

func TestTaskEditCmd_ChangeType(t *testing.T) {
	ctx, srv, _ := setupTestEnv(t)
	task := srv.AddTask(models.Task{Title: "Water", Date: "2026-10-16", Type: models.TaskTypeCount, Quantity: intPtr(8)})

	typ := "value"
	if err := (&TaskEditCmd{Task: task.ID, Type: &typ}).Run(ctx); err == nil {
		t.Fatal("switching to a value task without a value should fail")
	}

	value := 2.5
	if err := (&TaskEditCmd{Task: task.ID, Type: &typ, Value: &value}).Run(ctx); err != nil {
		t.Fatalf("task edit failed: %v", err)
	}
	got := srv.Tasks()[0]
	if got.Quantity != nil || got.Value == nil || *got.Value != 2.5 {
		t.Errorf("unexpected task after type change: %+v", got)
	}
}

func TestTaskDeleteCmd(t *testing.T) {
	ctx, srv, out := setupTestEnv(t)
	srv.AddTask(models.Task{Title: "Old", Date: "2026-10-16", Type: models.TaskTypeBinary})

	if err := (&TaskDeleteCmd{Task: "Old", Yes: true}).Run(ctx); err != nil {
		t.Fatalf("task delete failed: %v", err)
	}
	if len(srv.Tasks()) != 0 {
		t.Error("task should be deleted")
	}
	if !strings.Contains(out.String(), "Deleted task: Old") {
		t.Errorf("unexpected output: %q", out.String())
	}
}

func TestTaskAmbiguousTitle(t *testing.T) {
	ctx, srv, _ := setupTestEnv(t)
	srv.AddTask(models.Task{Title: "Call", Date: "2026-10-16", Type: models.TaskTypeBinary})
	srv.AddTask(models.Task{Title: "call", Date: "2026-10-16", Type: models.TaskTypeBinary})

	err := (&TaskDeleteCmd{Task: "Call", Yes: true}).Run(ctx)
	if err == nil || !strings.Contains(err.Error(), "ambiguous") {
		t.Fatalf("expected ambiguity error, got %v", err)
	}
	if len(srv.Tasks()) != 2 {
		t.Error("nothing should be deleted")
	}
}
