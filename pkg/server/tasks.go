package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"fable/pkg/tasks"
)

type taskReq struct {
	Action    string `json:"action"`
	SessionID string `json:"sessionId"`
	TaskID    string `json:"taskId,omitempty"`
}

// POST /api/cli/tasks
func (s *Server) handlePostTask(c echo.Context) error {
	var req taskReq
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	if err := required("action", req.Action); err != nil {
		return err
	}

	var (
		task tasks.Task
		err  error
	)
	switch req.Action {
	case "start":
		if err := required("sessionId", req.SessionID); err != nil {
			return err
		}
		task, err = s.Tasks.Start(req.SessionID)
	case "heartbeat":
		if err := required("taskId", req.TaskID); err != nil {
			return err
		}
		task, err = s.Tasks.Heartbeat(req.TaskID)
	case "complete":
		if err := required("taskId", req.TaskID); err != nil {
			return err
		}
		task, err = s.Tasks.Finish(req.TaskID, tasks.StatusCompleted)
	case "fail":
		if err := required("taskId", req.TaskID); err != nil {
			return err
		}
		task, err = s.Tasks.Finish(req.TaskID, tasks.StatusFailed)
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "unknown action: "+req.Action)
	}

	if err != nil {
		var conflict *tasks.ConflictError
		switch {
		case errors.As(err, &conflict):
			return c.JSON(http.StatusConflict, map[string]any{
				"error":    "session already has a running task",
				"existing": conflict.Existing,
			})
		case errors.Is(err, tasks.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "task not found")
		case errors.Is(err, tasks.ErrNotRunning):
			return echo.NewHTTPError(http.StatusConflict, "task is not running")
		}
		return err
	}
	return c.JSON(http.StatusOK, task)
}

// GET /api/cli/tasks
func (s *Server) handleListTasks(c echo.Context) error {
	return c.JSON(http.StatusOK, s.Tasks.List(c.QueryParam("sessionId")))
}
