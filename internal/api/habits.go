package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/julianstephens/habitual/internal/models"
)

// GetAllHabits fetches every habit with its completion history.
func (c *Client) GetAllHabits(ctx context.Context) ([]models.Habit, error) {
	var body json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/habits", nil, &body); err != nil {
		return nil, fmt.Errorf("get habits: %w", err)
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(unwrap(body, "habits"), &raws); err != nil {
		return nil, fmt.Errorf("decode habits: %w", err)
	}
	return decodeHabits(raws), nil
}

func (c *Client) GetHabit(ctx context.Context, id string) (models.Habit, error) {
	var body json.RawMessage
	if err := c.do(ctx, http.MethodGet, habitPath(id), nil, &body); err != nil {
		return models.Habit{}, fmt.Errorf("get habit %s: %w", id, err)
	}
	return decodeHabit(body)
}

func (c *Client) CreateHabit(ctx context.Context, h models.Habit) (models.Habit, error) {
	var body json.RawMessage
	if err := c.do(ctx, http.MethodPost, "/habits", newHabitPayload(h), &body); err != nil {
		return models.Habit{}, fmt.Errorf("create habit: %w", err)
	}
	return decodeHabit(body)
}

func (c *Client) UpdateHabit(ctx context.Context, id string, h models.Habit) (models.Habit, error) {
	var body json.RawMessage
	if err := c.do(ctx, http.MethodPut, habitPath(id), newHabitPayload(h), &body); err != nil {
		return models.Habit{}, fmt.Errorf("update habit %s: %w", id, err)
	}
	return decodeHabit(body)
}

func (c *Client) DeleteHabit(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, habitPath(id), nil, nil); err != nil {
		return fmt.Errorf("delete habit %s: %w", id, err)
	}
	return nil
}

// ToggleHabitCompletion flips today's completion for the habit. The
// service decides what "today" is and recomputes streaks.
func (c *Client) ToggleHabitCompletion(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodPatch, habitPath(id)+"/toggle-completion", nil, nil); err != nil {
		return fmt.Errorf("toggle habit %s: %w", id, err)
	}
	return nil
}

func habitPath(id string) string {
	return "/habits/" + url.PathEscape(id)
}

func decodeHabit(body json.RawMessage) (models.Habit, error) {
	if len(body) == 0 {
		return models.Habit{}, nil
	}
	var w wireHabit
	if err := json.Unmarshal(unwrap(body, "habit"), &w); err != nil {
		return models.Habit{}, fmt.Errorf("decode habit: %w", err)
	}
	return w.toModel(), nil
}
