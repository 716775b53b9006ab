package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/weekmatrix/weekmatrix/internal/domain"
	"github.com/weekmatrix/weekmatrix/internal/server/middleware"
	"github.com/weekmatrix/weekmatrix/internal/session"
	"github.com/weekmatrix/weekmatrix/internal/taskimport"
)

type ListTasksOutput struct {
	Body []domain.Task
}

type CreateTaskInput struct {
	Body struct {
		Title      string `json:"title" minLength:"1" maxLength:"100" doc:"Task title"`
		TimePeriod string `json:"timePeriod,omitempty" doc:"Tracking period: daily, weekly, monthly, yearly"`
	}
}

type CreateTaskOutput struct {
	Body domain.Task
}

type UpdateTaskInput struct {
	ID   string `path:"id" doc:"Task ID"`
	Body struct {
		Title      *string `json:"title,omitempty" maxLength:"100" doc:"Task title"`
		TimePeriod *string `json:"timePeriod,omitempty" doc:"Tracking period"`
	}
}

type DeleteTaskInput struct {
	ID string `path:"id" doc:"Task ID"`
}

type SetTaskStateInput struct {
	ID   string `path:"id" doc:"Task ID"`
	Body struct {
		State string `json:"state" minLength:"1" doc:"Target state: active or completed"`
	}
}

type ToggleDayInput struct {
	ID   string `path:"id" doc:"Task ID"`
	Day  string `path:"day" doc:"Weekday: Mon..Sun"`
	Body struct {
		Value *bool `json:"value,omitempty" doc:"Explicit flag value; omitted means toggle"`
	}
}

type ImportTasksInput struct {
	RawBody []byte `contentType:"application/json"`
}

type ImportTasksOutput struct {
	Body struct {
		Imported int           `json:"imported"`
		Tasks    []domain.Task `json:"tasks"`
	}
}

// controllerFor resolves the authenticated user's session controller.
func controllerFor(ctx context.Context, sessions TaskSessions) (*session.Controller, error) {
	uid, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("not signed in")
	}

	c, err := sessions.Controller(ctx, uid)
	if err != nil {
		return nil, mapSessionError(err)
	}
	return c, nil
}

// mapSessionError translates controller precondition and mutation failures
// into HTTP problem responses.
func mapSessionError(err error) error {
	switch {
	case errors.Is(err, domain.ErrNotSignedIn):
		return huma.Error401Unauthorized(domain.ErrNotSignedIn.Error())
	case errors.Is(err, domain.ErrLoading):
		return huma.Error503ServiceUnavailable(domain.ErrLoading.Error())
	case errors.Is(err, domain.ErrTitleRequired):
		return huma.Error422UnprocessableEntity(domain.ErrTitleRequired.Error())
	case errors.Is(err, domain.ErrInvalidDay):
		return huma.Error422UnprocessableEntity(domain.ErrInvalidDay.Error())
	default:
		return huma.Error500InternalServerError("task operation failed", err)
	}
}

func RegisterTaskRoutes(api huma.API, sessions TaskSessions) {
	huma.Register(api, huma.Operation{
		OperationID: "list-tasks",
		Method:      http.MethodGet,
		Path:        "/tasks",
		Summary:     "List the current user's tasks",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, _ *struct{}) (*ListTasksOutput, error) {
		c, err := controllerFor(ctx, sessions)
		if err != nil {
			return nil, err
		}

		return &ListTasksOutput{Body: c.Tasks()}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "create-task",
		Method:      http.MethodPost,
		Path:        "/tasks",
		Summary:     "Create a new task",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *CreateTaskInput) (*CreateTaskOutput, error) {
		c, err := controllerFor(ctx, sessions)
		if err != nil {
			return nil, err
		}

		t, err := c.AddTask(input.Body.Title, domain.TimePeriod(input.Body.TimePeriod))
		if err != nil {
			return nil, mapSessionError(err)
		}

		return &CreateTaskOutput{Body: t}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-task",
		Method:      http.MethodPut,
		Path:        "/tasks/{id}",
		Summary:     "Update a task's title or period",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *UpdateTaskInput) (*struct{}, error) {
		c, err := controllerFor(ctx, sessions)
		if err != nil {
			return nil, err
		}

		upd := session.TaskUpdate{Title: input.Body.Title}
		if input.Body.TimePeriod != nil {
			period := domain.TimePeriod(*input.Body.TimePeriod)
			upd.TimePeriod = &period
		}

		if err := c.UpdateTask(input.ID, upd); err != nil {
			return nil, mapSessionError(err)
		}

		return nil, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-task",
		Method:      http.MethodDelete,
		Path:        "/tasks/{id}",
		Summary:     "Delete a task",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *DeleteTaskInput) (*struct{}, error) {
		c, err := controllerFor(ctx, sessions)
		if err != nil {
			return nil, err
		}

		if err := c.DeleteTask(input.ID); err != nil {
			return nil, mapSessionError(err)
		}

		return nil, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "set-task-state",
		Method:      http.MethodPatch,
		Path:        "/tasks/{id}/state",
		Summary:     "Set a task's active/completed state",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *SetTaskStateInput) (*struct{}, error) {
		c, err := controllerFor(ctx, sessions)
		if err != nil {
			return nil, err
		}

		if err := c.SetTaskState(input.ID, domain.TaskState(input.Body.State)); err != nil {
			return nil, mapSessionError(err)
		}

		return nil, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "toggle-task-day",
		Method:      http.MethodPost,
		Path:        "/tasks/{id}/days/{day}",
		Summary:     "Toggle or set one weekday flag",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *ToggleDayInput) (*struct{}, error) {
		c, err := controllerFor(ctx, sessions)
		if err != nil {
			return nil, err
		}

		day := domain.Weekday(input.Day)
		if input.Body.Value != nil {
			err = c.SetDay(input.ID, day, *input.Body.Value)
		} else {
			err = c.ToggleDay(input.ID, day)
		}
		if err != nil {
			return nil, mapSessionError(err)
		}

		return nil, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "load-demo-tasks",
		Method:      http.MethodPost,
		Path:        "/tasks/demo",
		Summary:     "Load the demo task fixture into an empty list",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, _ *struct{}) (*ListTasksOutput, error) {
		c, err := controllerFor(ctx, sessions)
		if err != nil {
			return nil, err
		}

		if err := c.LoadDemoData(); err != nil {
			return nil, mapSessionError(err)
		}

		return &ListTasksOutput{Body: c.Tasks()}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "reset-tasks",
		Method:      http.MethodPost,
		Path:        "/tasks/reset",
		Summary:     "Delete all tasks and clear durable storage",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, _ *struct{}) (*struct{}, error) {
		c, err := controllerFor(ctx, sessions)
		if err != nil {
			return nil, err
		}

		if err := c.ResetAll(ctx); err != nil {
			return nil, mapSessionError(err)
		}

		return nil, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "import-tasks",
		Method:      http.MethodPost,
		Path:        "/tasks/import",
		Summary:     "Bulk-import tasks from a JSON payload",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *ImportTasksInput) (*ImportTasksOutput, error) {
		c, err := controllerFor(ctx, sessions)
		if err != nil {
			return nil, err
		}

		imp, err := taskimport.Parse(input.RawBody)
		if err != nil {
			return nil, huma.Error422UnprocessableEntity(err.Error())
		}

		tasks := taskimport.Build(imp)
		if err := c.ImportTasks(tasks); err != nil {
			return nil, mapSessionError(err)
		}

		out := &ImportTasksOutput{}
		out.Body.Imported = len(tasks)
		out.Body.Tasks = tasks
		return out, nil
	})
}
