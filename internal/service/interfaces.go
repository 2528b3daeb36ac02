package service

import (
	"context"
	"time"

	"github.com/mkuznetsova/dobrobot/internal/domain"
	"github.com/mkuznetsova/dobrobot/internal/generation"
)

// OrganizationService manages per-user NGO profiles.
type OrganizationService interface {
	// Get returns the active profile or (nil, nil) when the user has none.
	Get(ctx context.Context, userID int64) (*domain.Organization, error)
	// CreateOrUpdate validates the profile, substitutes placeholders for
	// blank optional fields and upserts the user's single active row.
	CreateOrUpdate(ctx context.Context, org *domain.Organization) (*domain.Organization, error)
	// Delete soft-deletes the profile. Returns false when there was none.
	Delete(ctx context.Context, userID int64) (bool, error)
	Exists(ctx context.Context, userID int64) (bool, error)
}

// PlanService manages content plans and their publication schedules.
type PlanService interface {
	// SaveGeneratedPlan persists the generated plan text together with the
	// publication schedule extracted from it, atomically.
	SaveGeneratedPlan(ctx context.Context, userID int64, pc generation.PlanPromptContext, generated string) (*domain.ContentPlan, error)
	GetByID(ctx context.Context, planID string, userID int64) (*domain.ContentPlan, error)
	ListForUser(ctx context.Context, userID int64, activeOnly bool) ([]*domain.ContentPlan, error)
	// SetActive toggles reminder delivery for the plan.
	SetActive(ctx context.Context, planID string, userID int64, active bool) (bool, error)
	MarkPublished(ctx context.Context, itemID string) (bool, error)
}

// NotificationService delivers due publication reminders.
type NotificationService interface {
	// CheckAndSend finds items due within the lookahead window, sends a
	// reminder for each and marks them notified. A failure on one item
	// never blocks the others. Returns the number of reminders sent.
	CheckAndSend(ctx context.Context, now time.Time) (int, error)
}
