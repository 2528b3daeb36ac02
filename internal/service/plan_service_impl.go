package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mkuznetsova/dobrobot/internal/db"
	"github.com/mkuznetsova/dobrobot/internal/domain"
	"github.com/mkuznetsova/dobrobot/internal/generation"
	"github.com/mkuznetsova/dobrobot/internal/repository"
)

type planService struct {
	plans repository.ContentPlanRepo
	uow   db.UnitOfWork
	now   func() time.Time
}

func NewPlanService(plans repository.ContentPlanRepo, uow db.UnitOfWork) PlanService {
	return &planService{plans: plans, uow: uow, now: func() time.Time { return time.Now().UTC() }}
}

func (s *planService) SaveGeneratedPlan(ctx context.Context, userID int64, pc generation.PlanPromptContext, generated string) (*domain.ContentPlan, error) {
	now := s.now()
	plan := &domain.ContentPlan{
		ID:        uuid.New().String(),
		UserID:    userID,
		PlanName:  planName(pc, now),
		Period:    pc.Period,
		Frequency: pc.Frequency,
		Topics:    pc.Topics,
		Details:   pc.Details,
		PlanData:  map[string]any{"generated_text": generated},
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	for _, sched := range ParseSchedule(generated, now) {
		plan.Items = append(plan.Items, &domain.ContentPlanItem{
			ID:              uuid.New().String(),
			ContentPlanID:   plan.ID,
			PublicationDate: sched.Date,
			ContentTitle:    sched.Title,
			Status:          domain.StatusScheduled,
			CreatedAt:       now,
			UpdatedAt:       now,
		})
	}

	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txPlans := repository.NewSQLiteContentPlanRepo(tx)
		if err := txPlans.CreatePlan(ctx, plan); err != nil {
			return err
		}
		return txPlans.BulkCreateItems(ctx, plan.ID, plan.Items)
	})
	if err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *planService) GetByID(ctx context.Context, planID string, userID int64) (*domain.ContentPlan, error) {
	return s.plans.GetByID(ctx, planID, userID)
}

func (s *planService) ListForUser(ctx context.Context, userID int64, activeOnly bool) ([]*domain.ContentPlan, error) {
	return s.plans.ListForUser(ctx, userID, activeOnly)
}

func (s *planService) SetActive(ctx context.Context, planID string, userID int64, active bool) (bool, error) {
	return s.plans.SetActive(ctx, planID, userID, active)
}

func (s *planService) MarkPublished(ctx context.Context, itemID string) (bool, error) {
	return s.plans.UpdateItemStatus(ctx, itemID, domain.StatusPublished)
}

func planName(pc generation.PlanPromptContext, now time.Time) string {
	name := "Контент-план"
	if pc.Period != "" {
		name += " на " + pc.Period
	}
	return name + " от " + now.Format("02.01.2006")
}
