// Package report renders completion statistics as a printable PDF.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-pdf/fpdf"

	"github.com/julianstephens/habitual/internal/analytics"
	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/models"
)

// Input is everything a report shows. Tasks may be empty when the planner
// was not fetched.
type Input struct {
	Snapshot analytics.Snapshot
	Habits   []models.Habit
	Tasks    []models.Task
	User     models.User
}

// Build lays out the report. Check the returned document's Err before output.
func Build(in Input) *fpdf.Fpdf {
	now := in.Snapshot.GeneratedAt
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Habitual report "+now.Format(constants.DateFormat), true)
	pdf.SetCreator(constants.AppName+" "+constants.Version, true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, tr(fmt.Sprintf("Habit Report: %s", now.Format(constants.DateFormat))))
	pdf.Ln(8)
	if in.User.Name != "" {
		pdf.SetFont("Arial", "", 11)
		pdf.Cell(0, 8, tr(fmt.Sprintf("%s <%s>", in.User.Name, in.User.Email)))
		pdf.Ln(8)
	}
	pdf.Ln(4)

	heading(pdf, "Completion Rates")
	rates := in.Snapshot.Rates
	rows := [][2]string{
		{"Today", fmt.Sprintf("%d%%", rates.Daily)},
		{"This week", fmt.Sprintf("%d%%", rates.Weekly)},
		{"This month", fmt.Sprintf("%d%%", rates.Monthly)},
		{"This year", fmt.Sprintf("%d%%", rates.Yearly)},
		{"Best", fmt.Sprintf("%d%%", in.Snapshot.Best)},
		{"Average", fmt.Sprintf("%d%%", in.Snapshot.Average)},
	}
	table(pdf, tr, rows)

	heading(pdf, "Summary")
	sum := in.Snapshot.Summary
	table(pdf, tr, [][2]string{
		{"Habits", fmt.Sprintf("%d", sum.TotalHabits)},
		{"Completed today", fmt.Sprintf("%d (%d%%)", sum.CompletedToday, sum.CompletionRateToday)},
		{"Longest current streak", fmt.Sprintf("%d days", sum.MaxStreak)},
		{"Average streak", fmt.Sprintf("%d days", sum.AvgStreak)},
		{"Active streaks", fmt.Sprintf("%d", sum.ActiveStreaks)},
		{"Total completions", fmt.Sprintf("%d", sum.TotalCompletions)},
		{"Habits with goals", fmt.Sprintf("%d", sum.HabitsWithGoals)},
	})

	if len(in.Habits) > 0 {
		heading(pdf, "Habits")
		habits := append([]models.Habit(nil), in.Habits...)
		sort.SliceStable(habits, func(i, j int) bool { return habits[i].CurrentStreak > habits[j].CurrentStreak })

		pdf.SetFont("Arial", "", 11)
		for _, h := range habits {
			mark := "[ ]"
			if analytics.IsCompletedToday(h, now) {
				mark = "[x]"
			}
			line := fmt.Sprintf("%s %s  -  streak %d, %d completions", mark, h.Name, h.CurrentStreak, h.Completions)
			pdf.Cell(0, 7, tr(line))
			pdf.Ln(6)
		}
		pdf.Ln(4)
	}

	if len(in.Snapshot.Goals) > 0 {
		heading(pdf, "Goals")
		pdf.SetFont("Arial", "", 11)
		for _, g := range in.Snapshot.Goals {
			pdf.Cell(0, 7, tr(fmt.Sprintf("%s (%s): %d%% of %d", g.Name, g.GoalType, g.Progress, g.Target)))
			pdf.Ln(6)
			if g.TargetDate != nil {
				pdf.SetFont("Arial", "I", 10)
				pdf.Cell(0, 6, tr("    "+deadlineText(g)))
				pdf.Ln(6)
				pdf.SetFont("Arial", "", 11)
			}
		}
		pdf.Ln(4)
	}

	if len(in.Tasks) > 0 {
		stats := analytics.TaskProgress(in.Tasks)
		heading(pdf, fmt.Sprintf("Planner: %d/%d tasks done (%d%%)", stats.Completed, stats.Total, stats.Rate))
		pdf.SetFont("Arial", "", 11)
		for _, t := range in.Tasks {
			mark := "[ ]"
			if t.Completed {
				mark = "[x]"
			}
			pdf.MultiCell(0, 7, tr(fmt.Sprintf("%s %s (%s)", mark, t.Title, t.Priority)), "", "", false)
		}
	}

	return pdf
}

// Write renders the report to w.
func Write(w io.Writer, in Input) error {
	pdf := Build(in)
	if err := pdf.Error(); err != nil {
		return fmt.Errorf("build report: %w", err)
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// WriteFile renders the report to path and returns its absolute form.
func WriteFile(path string, in Input) (string, error) {
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create report: %w", err)
	}
	if err := Write(f, in); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path, nil
	}
	return abs, nil
}

// DefaultFilename is report_YYYY-MM-DD.pdf for the snapshot's day.
func DefaultFilename(snap analytics.Snapshot) string {
	return fmt.Sprintf("report_%s.pdf", snap.GeneratedAt.Format(constants.DateFormat))
}

func deadlineText(g analytics.GoalStatus) string {
	date := g.TargetDate.Format(constants.DateFormat)
	if g.Expired {
		return fmt.Sprintf("due %s, expired", date)
	}
	return fmt.Sprintf("due %s, %d days left", date, g.DaysLeft)
}

func heading(pdf *fpdf.Fpdf, text string) {
	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 10, text)
	pdf.Ln(9)
}

func table(pdf *fpdf.Fpdf, tr func(string) string, rows [][2]string) {
	pdf.SetFont("Arial", "", 11)
	for _, row := range rows {
		pdf.CellFormat(60, 7, tr(row[0]), "", 0, "L", false, 0, "")
		pdf.CellFormat(40, 7, tr(row[1]), "", 1, "R", false, 0, "")
	}
	pdf.Ln(4)
}
