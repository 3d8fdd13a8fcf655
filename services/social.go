package services

import (
	"context"
	"os"

	"taskmarket/models"
)

// InteractionChecker confirms a claimed interaction against the social
// platform. Real integrations live behind this interface; the default
// implementation simulates confirmation.
type InteractionChecker interface {
	InteractionConfirmed(ctx context.Context, task *models.Task, work *models.TaskWork) (bool, error)
}

// StubInteractionChecker always answers Confirmed. It stands in until the
// per-platform API clients land.
type StubInteractionChecker struct {
	Confirmed bool
}

func (s StubInteractionChecker) InteractionConfirmed(ctx context.Context, task *models.Task, work *models.TaskWork) (bool, error) {
	return s.Confirmed, nil
}

// DefaultInteractionChecker returns the checker used by the HTTP layer.
// SOCIAL_CHECK_MODE=deny makes the stub refuse everything, which is handy
// in staging.
func DefaultInteractionChecker() InteractionChecker {
	if os.Getenv("SOCIAL_CHECK_MODE") == "deny" {
		return StubInteractionChecker{Confirmed: false}
	}
	return StubInteractionChecker{Confirmed: true}
}
