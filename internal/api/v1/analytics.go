package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/weekmatrix/weekmatrix/internal/analytics"
)

type WeekAnalyticsOutput struct {
	Body struct {
		WeeklyProgress int                     `json:"weeklyProgress"`
		ByDay          []analytics.DayProgress `json:"byDay"`
		WeekDates      []string                `json:"weekDates"`
	}
}

func RegisterAnalyticsRoutes(api huma.API, sessions TaskSessions) {
	huma.Register(api, huma.Operation{
		OperationID: "week-analytics",
		Method:      http.MethodGet,
		Path:        "/analytics/week",
		Summary:     "Weekly completion progress for the current user",
		Tags:        []string{"Analytics"},
	}, func(ctx context.Context, _ *struct{}) (*WeekAnalyticsOutput, error) {
		c, err := controllerFor(ctx, sessions)
		if err != nil {
			return nil, err
		}

		tasks := c.Tasks()
		dates := analytics.WeekDates(time.Now())

		out := &WeekAnalyticsOutput{}
		out.Body.WeeklyProgress = analytics.WeeklyProgress(tasks)
		out.Body.ByDay = analytics.ProgressByDay(tasks)
		out.Body.WeekDates = make([]string, 0, len(dates))
		for _, d := range dates {
			out.Body.WeekDates = append(out.Body.WeekDates, d.Format("2006-01-02"))
		}
		return out, nil
	})
}
