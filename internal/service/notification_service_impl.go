package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mkuznetsova/dobrobot/internal/gateway"
	"github.com/mkuznetsova/dobrobot/internal/repository"
)

// Sender is the outbound messaging side consumed by reminders.
type Sender interface {
	Send(ctx context.Context, msg gateway.Message) error
}

type notificationService struct {
	plans     repository.ContentPlanRepo
	sender    Sender
	lookahead time.Duration
	logger    *slog.Logger
}

func NewNotificationService(plans repository.ContentPlanRepo, sender Sender, lookahead time.Duration, logger *slog.Logger) NotificationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &notificationService{plans: plans, sender: sender, lookahead: lookahead, logger: logger}
}

// CheckAndSend delivers reminders for items due within the lookahead
// window. The plan is re-read per item so a plan deactivated between the
// query and delivery is skipped. An item is marked notified only after its
// reminder went out, and failures on one item never block the rest.
func (s *notificationService) CheckAndSend(ctx context.Context, now time.Time) (int, error) {
	items, err := s.plans.ListPendingNotifications(ctx, now, s.lookahead)
	if err != nil {
		return 0, fmt.Errorf("listing pending notifications: %w", err)
	}

	sent := 0
	for _, item := range items {
		plan, err := s.plans.GetPlanByID(ctx, item.ContentPlanID)
		if err != nil {
			s.logger.Error("loading plan for reminder failed",
				"item_id", item.ID, "plan_id", item.ContentPlanID, "error", err)
			continue
		}
		if !plan.IsActive {
			continue
		}

		msg := gateway.Message{
			ChatID: plan.UserID,
			Text: fmt.Sprintf("🔔 Напоминание: сегодня в %s запланирована публикация\n\n«%s»",
				item.PublicationDate.Format("15:04"), item.ContentTitle),
		}
		if err := s.sender.Send(ctx, msg); err != nil {
			s.logger.Error("sending reminder failed",
				"item_id", item.ID, "user_id", plan.UserID, "error", err)
			continue
		}

		if _, err := s.plans.MarkItemNotified(ctx, item.ID); err != nil {
			s.logger.Error("marking item notified failed", "item_id", item.ID, "error", err)
			continue
		}
		sent++
	}
	return sent, nil
}
