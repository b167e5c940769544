package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/models"
)

// GetDailyPlanner fetches the tasks scheduled on the given calendar day.
// Only the date part of day is used, in day's own location.
func (c *Client) GetDailyPlanner(ctx context.Context, day time.Time) ([]models.Task, error) {
	date := day.Format(constants.DateFormat)
	var body json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/daily-planner/"+date, nil, &body); err != nil {
		return nil, fmt.Errorf("get planner for %s: %w", date, err)
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(unwrap(body, "tasks"), &raws); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}
	return decodeTasks(raws), nil
}

func (c *Client) CreateTask(ctx context.Context, t models.Task) (models.Task, error) {
	t.ID = ""
	var body json.RawMessage
	if err := c.do(ctx, http.MethodPost, "/tasks", t, &body); err != nil {
		return models.Task{}, fmt.Errorf("create task: %w", err)
	}
	return decodeTask(body)
}

func (c *Client) UpdateTask(ctx context.Context, id string, t models.Task) (models.Task, error) {
	t.ID = ""
	var body json.RawMessage
	if err := c.do(ctx, http.MethodPut, taskPath(id), t, &body); err != nil {
		return models.Task{}, fmt.Errorf("update task %s: %w", id, err)
	}
	return decodeTask(body)
}

func (c *Client) ToggleTaskCompletion(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodPatch, taskPath(id)+"/toggle-completion", nil, nil); err != nil {
		return fmt.Errorf("toggle task %s: %w", id, err)
	}
	return nil
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, taskPath(id), nil, nil); err != nil {
		return fmt.Errorf("delete task %s: %w", id, err)
	}
	return nil
}

func taskPath(id string) string {
	return "/tasks/" + url.PathEscape(id)
}

func decodeTask(body json.RawMessage) (models.Task, error) {
	if len(body) == 0 {
		return models.Task{}, nil
	}
	var w wireTask
	if err := json.Unmarshal(unwrap(body, "task"), &w); err != nil {
		return models.Task{}, fmt.Errorf("decode task: %w", err)
	}
	return w.toModel(), nil
}
