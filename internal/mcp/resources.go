package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/meltforce/lifttrack/internal/models"
)

func (h *handlers) exerciseCatalog(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(models.Exercises)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (h *handlers) todaysWorkout(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uid := UserIDFromContext(ctx)
	date := today()

	byExercise := map[string][]models.InstanceWithSets{}
	for _, exercise := range models.Exercises {
		instances, err := h.ds.TodaysInstances(ctx, uid, exercise, date)
		if err != nil {
			h.log.Warn("todays_workout: instance query failed", "exercise", exercise, "error", err)
			continue
		}
		if len(instances) > 0 {
			byExercise[exercise] = instances
		}
	}

	data, err := json.Marshal(map[string]any{
		"date":      date,
		"exercises": byExercise,
	})
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
