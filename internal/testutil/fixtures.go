package testutil

import (
	"time"

	"github.com/google/uuid"
	"github.com/mkuznetsova/dobrobot/internal/domain"
)

// Organization options
type OrgOption func(*domain.Organization)

func WithOrgName(name string) OrgOption {
	return func(o *domain.Organization) {
		o.Name = name
	}
}

func WithOrgInactive() OrgOption {
	return func(o *domain.Organization) {
		o.IsActive = false
	}
}

// NewTestOrganization builds a valid active organization for the given user.
func NewTestOrganization(userID int64, opts ...OrgOption) *domain.Organization {
	now := time.Now().UTC()
	o := &domain.Organization{
		ID:          uuid.New().String(),
		UserID:      userID,
		Name:        "Добрые руки",
		Description: "Помощь детям",
		Activities:  "Сборы, волонтёрство",
		Contact:     "info@dobro.ru",
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Plan options
type PlanOption func(*domain.ContentPlan)

func WithPlanInactive() PlanOption {
	return func(p *domain.ContentPlan) {
		p.IsActive = false
	}
}

func WithPlanCreatedAt(t time.Time) PlanOption {
	return func(p *domain.ContentPlan) {
		p.CreatedAt = t
		p.UpdatedAt = t
	}
}

// NewTestPlan builds an active content plan for the given user.
func NewTestPlan(userID int64, opts ...PlanOption) *domain.ContentPlan {
	now := time.Now().UTC()
	p := &domain.ContentPlan{
		ID:        uuid.New().String(),
		UserID:    userID,
		PlanName:  "План на неделю",
		Period:    "Неделя",
		Frequency: "каждый день",
		Topics:    "волонтёрство",
		Details:   "",
		PlanData:  map[string]any{},
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Item options
type ItemOption func(*domain.ContentPlanItem)

func WithPublicationDate(t time.Time) ItemOption {
	return func(i *domain.ContentPlanItem) {
		i.PublicationDate = t
	}
}

func WithItemStatus(s domain.PublicationStatus) ItemOption {
	return func(i *domain.ContentPlanItem) {
		i.Status = s
	}
}

func WithNotificationSent() ItemOption {
	return func(i *domain.ContentPlanItem) {
		i.NotificationSent = true
		at := time.Now().UTC()
		i.NotificationSentAt = &at
	}
}

// NewTestItem builds a scheduled, not-yet-notified plan item.
func NewTestItem(planID string, opts ...ItemOption) *domain.ContentPlanItem {
	now := time.Now().UTC()
	i := &domain.ContentPlanItem{
		ID:              uuid.New().String(),
		ContentPlanID:   planID,
		PublicationDate: now.Add(24 * time.Hour),
		ContentTitle:    "Сбор вещей",
		ContentText:     "Запланированная публикация: Сбор вещей",
		Status:          domain.StatusScheduled,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}
