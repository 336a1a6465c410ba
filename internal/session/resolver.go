package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/meltforce/lifttrack/internal/models"
	"github.com/meltforce/lifttrack/internal/storage"
)

// ResolveTemplate picks the prior sets that pre-populate a new session.
// Same-day data wins: if the caller already holds instances created today,
// the one with the highest instance number is the template, regardless of any
// prior-day history. Otherwise the store is asked for the most recent prior
// session. A nil result with nil error means "no template": the session seeds
// with empty rows instead.
//
// Selection is deterministic: instance numbers are unique per (workout,
// exercise) and there is at most one workout per day.
func ResolveTemplate(ctx context.Context, gw Gateway, userID int, exercise, date string, today []models.InstanceWithSets) (*models.InstanceWithSets, error) {
	if len(today) > 0 {
		best := today[0]
		for _, inst := range today[1:] {
			if inst.Instance > best.Instance {
				best = inst
			}
		}
		return &best, nil
	}

	last, err := gw.LastInstanceForExercise(ctx, userID, exercise, date)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolving template: %w", err)
	}
	return last, nil
}
