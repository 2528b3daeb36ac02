package repository

import (
	"context"
	"time"

	"github.com/mkuznetsova/dobrobot/internal/domain"
)

// OrganizationRepo persists per-user NGO profiles.
type OrganizationRepo interface {
	// GetByUserID returns the active profile or ErrNotFound.
	GetByUserID(ctx context.Context, userID int64) (*domain.Organization, error)
	Create(ctx context.Context, o *domain.Organization) error
	// Update mutates the active row; ErrNotFound if the user has none.
	Update(ctx context.Context, o *domain.Organization) error
	// SoftDelete flips is_active off. Returns false when no active row
	// existed, making repeated deletes idempotent.
	SoftDelete(ctx context.Context, userID int64) (bool, error)
	Exists(ctx context.Context, userID int64) (bool, error)
}

// ContentPlanRepo persists content plans and their scheduled items.
type ContentPlanRepo interface {
	CreatePlan(ctx context.Context, p *domain.ContentPlan) error
	// BulkCreateItems inserts all items for a plan. Run it inside a
	// UnitOfWork when all-or-nothing semantics are required.
	BulkCreateItems(ctx context.Context, planID string, items []*domain.ContentPlanItem) error
	// GetByID is ownership-checked: a plan belonging to another user is
	// reported as ErrNotFound. Items are attached ordered by publication date.
	GetByID(ctx context.Context, planID string, userID int64) (*domain.ContentPlan, error)
	// GetPlanByID loads a plan without the ownership check and without
	// items. Used where the caller operates across users.
	GetPlanByID(ctx context.Context, planID string) (*domain.ContentPlan, error)
	// ListForUser returns plans newest-first, without items.
	ListForUser(ctx context.Context, userID int64, activeOnly bool) ([]*domain.ContentPlan, error)
	ListItems(ctx context.Context, planID string) ([]*domain.ContentPlanItem, error)
	GetItemByID(ctx context.Context, itemID string) (*domain.ContentPlanItem, error)
	// SetActive toggles the plan flag. Returns false when the plan does not
	// exist or belongs to another user.
	SetActive(ctx context.Context, planID string, userID int64, active bool) (bool, error)
	UpdateItemStatus(ctx context.Context, itemID string, status domain.PublicationStatus) (bool, error)
	// MarkItemNotified sets notification_sent exactly once. Calling it again
	// for an already-notified item is a no-op that still reports success.
	MarkItemNotified(ctx context.Context, itemID string) (bool, error)
	// ListPendingNotifications returns items of active plans with
	// status=scheduled, notification not yet sent, and publication date
	// inside [now, now+lookahead], ordered by publication date ascending.
	ListPendingNotifications(ctx context.Context, now time.Time, lookahead time.Duration) ([]*domain.ContentPlanItem, error)
}
