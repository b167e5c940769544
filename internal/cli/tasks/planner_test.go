package tasks

import (
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/habitual/internal/models"
)

func TestPlannerCmd(t *testing.T) {
	ctx, srv, out := setupTestEnv(t)
	srv.AddTask(models.Task{Title: "Inbox zero", Date: "2026-10-16", Type: models.TaskTypeBinary, Priority: models.PriorityLow, Completed: true})
	srv.AddTask(models.Task{Title: "Report", Date: "2026-10-16", Type: models.TaskTypeBinary, Priority: models.PriorityHigh})
	srv.AddTask(models.Task{Title: "Laundry", Date: "2026-10-16", Type: models.TaskTypeBinary})
	srv.AddTask(models.Task{Title: "Tomorrow only", Date: "2026-10-17", Type: models.TaskTypeBinary})

	if err := (&PlannerCmd{Date: "today"}).Run(ctx); err != nil {
		t.Fatalf("planner failed: %v", err)
	}

	got := out.String()
	if !strings.Contains(got, "Planner for Friday, Oct 16 2026") {
		t.Errorf("missing header: %q", got)
	}
	if strings.Contains(got, "Tomorrow only") {
		t.Error("planner should only list the selected day")
	}
	report := strings.Index(got, "Report")
	laundry := strings.Index(got, "Laundry")
	inbox := strings.Index(got, "Inbox zero")
	if !(report < laundry && laundry < inbox) {
		t.Errorf("expected open tasks by priority before completed ones:\n%s", got)
	}
	if !strings.Contains(got, "1/3 done (33%), pending: 1 high, 1 medium") {
		t.Errorf("missing progress line: %q", got)
	}
}

func TestPlannerCmd_Empty(t *testing.T) {
	ctx, _, out := setupTestEnv(t)
	if err := (&PlannerCmd{Date: "2026-12-25"}).Run(ctx); err != nil {
		t.Fatalf("planner failed: %v", err)
	}
	if !strings.Contains(out.String(), "No tasks planned") {
		t.Errorf("unexpected output: %q", out.String())
	}
}

func TestPlannerCmd_DuplicateWarning(t *testing.T) {
	ctx, srv, out := setupTestEnv(t)
	srv.AddTask(models.Task{Title: "Gym", Date: "2026-10-16", Type: models.TaskTypeBinary})
	srv.AddTask(models.Task{Title: "gym", Date: "2026-10-16", Type: models.TaskTypeBinary})

	if err := (&PlannerCmd{}).Run(ctx); err != nil {
		t.Fatalf("planner failed: %v", err)
	}
	if !strings.Contains(out.String(), `⚠ Duplicate task "gym" on 2026-10-16`) {
		t.Errorf("expected duplicate warning: %q", out.String())
	}
}

func TestFormatTask(t *testing.T) {
	remind := time.Date(2026, 10, 16, 13, 30, 0, 0, time.UTC)
	value := 5.5
	tests := []struct {
		name string
		task models.Task
		want []string
	}{
		{
			name: "binary defaults",
			task: models.Task{ID: "t1", Title: "Read"},
			want: []string{"[ ] medium Read", "[t1]"},
		},
		{
			name: "count done",
			task: models.Task{ID: "t2", Title: "Laps", Type: models.TaskTypeCount, Quantity: intPtr(20), Completed: true, Priority: models.PriorityHigh},
			want: []string{"[x] high   Laps (x20)"},
		},
		{
			name: "value with extras",
			task: models.Task{
				ID: "t3", Title: "Run", Type: models.TaskTypeValue, Value: &value,
				Duration: intPtr(45), Tags: []string{"fitness", "outdoor"},
				Reminder:    &models.Reminder{Enabled: true, ReminderTime: &remind},
				IsRecurring: true, RepeatPattern: &models.RepeatPattern{Frequency: models.RepeatDaily, Interval: 2},
			},
			want: []string{"Run (5.5)", "45m", "⏰ 09:30", "every 2 days", "#fitness #outdoor"},
		},
	}

	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("timezone data unavailable: %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatTask(tt.task, ny)
			for _, want := range tt.want {
				if !strings.Contains(got, want) {
					t.Errorf("FormatTask() = %q, missing %q", got, want)
				}
			}
		})
	}
}
