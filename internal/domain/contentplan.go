package domain

import "time"

// ContentPlan is the aggregate root for a user's publication schedule.
// Items are owned exclusively by their plan and are deleted with it.
type ContentPlan struct {
	ID        string
	UserID    int64
	PlanName  string
	Period    string
	Frequency string
	Topics    string
	Details   string
	// PlanData holds auxiliary metadata (raw generated text, dialog answers)
	// serialized as JSON.
	PlanData  map[string]any
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time

	// Items is populated on aggregate reads, ordered by publication date.
	Items []*ContentPlanItem
}

// ContentPlanItem is a single scheduled publication inside a plan.
type ContentPlanItem struct {
	ID                 string
	ContentPlanID      string
	PublicationDate    time.Time
	ContentTitle       string
	ContentText        string
	Status             PublicationStatus
	NotificationSent   bool
	NotificationSentAt *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
