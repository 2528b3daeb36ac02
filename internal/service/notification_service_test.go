package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkuznetsova/dobrobot/internal/domain"
	"github.com/mkuznetsova/dobrobot/internal/gateway"
	"github.com/mkuznetsova/dobrobot/internal/repository"
	"github.com/mkuznetsova/dobrobot/internal/testutil"
)

type recordingSender struct {
	sent    []gateway.Message
	failFor map[int64]error // keyed by chat id
}

func (s *recordingSender) Send(_ context.Context, msg gateway.Message) error {
	if err := s.failFor[msg.ChatID]; err != nil {
		return err
	}
	s.sent = append(s.sent, msg)
	return nil
}

type notifyFixture struct {
	svc    NotificationService
	repo   repository.ContentPlanRepo
	sender *recordingSender
	now    time.Time
}

func newNotifyFixture(t *testing.T) *notifyFixture {
	t.Helper()
	database := testutil.NewTestDB(t)
	repo := repository.NewSQLiteContentPlanRepo(database)
	sender := &recordingSender{failFor: map[int64]error{}}
	return &notifyFixture{
		svc:    NewNotificationService(repo, sender, time.Hour, slog.New(slog.NewTextHandler(io.Discard, nil))),
		repo:   repo,
		sender: sender,
		now:    time.Now().UTC(),
	}
}

// seedPlanWithItem stores an active plan holding one item due in 30 minutes.
func (f *notifyFixture) seedPlanWithItem(t *testing.T, userID int64) (planID, itemID string) {
	t.Helper()
	ctx := context.Background()
	plan := testutil.NewTestPlan(userID)
	require.NoError(t, f.repo.CreatePlan(ctx, plan))
	item := testutil.NewTestItem(plan.ID, testutil.WithPublicationDate(f.now.Add(30*time.Minute)))
	require.NoError(t, f.repo.BulkCreateItems(ctx, plan.ID, []*domain.ContentPlanItem{item}))
	return plan.ID, item.ID
}

func TestCheckAndSend_DeliversAndMarksExactlyOnce(t *testing.T) {
	f := newNotifyFixture(t)
	_, itemID := f.seedPlanWithItem(t, 42)
	ctx := context.Background()

	sent, err := f.svc.CheckAndSend(ctx, f.now)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	require.Len(t, f.sender.sent, 1)
	assert.Equal(t, int64(42), f.sender.sent[0].ChatID)
	assert.Contains(t, f.sender.sent[0].Text, "Сбор вещей")
	assert.Contains(t, f.sender.sent[0].Text, "Напоминание")

	item, err := f.repo.GetItemByID(ctx, itemID)
	require.NoError(t, err)
	assert.True(t, item.NotificationSent)
	require.NotNil(t, item.NotificationSentAt)

	// a second sweep finds nothing to do
	sent, err = f.svc.CheckAndSend(ctx, f.now)
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
	assert.Len(t, f.sender.sent, 1)
}

func TestCheckAndSend_SkipsDeactivatedPlan(t *testing.T) {
	f := newNotifyFixture(t)
	planID, itemID := f.seedPlanWithItem(t, 42)
	ctx := context.Background()

	ok, err := f.repo.SetActive(ctx, planID, 42, false)
	require.NoError(t, err)
	require.True(t, ok)

	sent, err := f.svc.CheckAndSend(ctx, f.now)
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
	assert.Empty(t, f.sender.sent)

	item, err := f.repo.GetItemByID(ctx, itemID)
	require.NoError(t, err)
	assert.False(t, item.NotificationSent)
}

func TestCheckAndSend_SendFailureLeavesItemPending(t *testing.T) {
	f := newNotifyFixture(t)
	_, itemID := f.seedPlanWithItem(t, 42)
	f.sender.failFor[42] = errors.New("network down")
	ctx := context.Background()

	sent, err := f.svc.CheckAndSend(ctx, f.now)
	require.NoError(t, err)
	assert.Equal(t, 0, sent)

	item, err := f.repo.GetItemByID(ctx, itemID)
	require.NoError(t, err)
	assert.False(t, item.NotificationSent)

	// delivery recovers on the next sweep
	delete(f.sender.failFor, 42)
	sent, err = f.svc.CheckAndSend(ctx, f.now)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
}

func TestCheckAndSend_FailureIsolatedPerItem(t *testing.T) {
	f := newNotifyFixture(t)
	f.seedPlanWithItem(t, 1)
	f.seedPlanWithItem(t, 2)
	f.sender.failFor[1] = errors.New("blocked by user")
	ctx := context.Background()

	sent, err := f.svc.CheckAndSend(ctx, f.now)

	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	require.Len(t, f.sender.sent, 1)
	assert.Equal(t, int64(2), f.sender.sent[0].ChatID)
}

func TestCheckAndSend_RespectsLookaheadWindow(t *testing.T) {
	f := newNotifyFixture(t)
	ctx := context.Background()

	plan := testutil.NewTestPlan(42)
	require.NoError(t, f.repo.CreatePlan(ctx, plan))
	tooFar := testutil.NewTestItem(plan.ID, testutil.WithPublicationDate(f.now.Add(3*time.Hour)))
	past := testutil.NewTestItem(plan.ID, testutil.WithPublicationDate(f.now.Add(-time.Minute)))
	require.NoError(t, f.repo.BulkCreateItems(ctx, plan.ID, []*domain.ContentPlanItem{tooFar, past}))

	sent, err := f.svc.CheckAndSend(ctx, f.now)

	require.NoError(t, err)
	assert.Equal(t, 0, sent)
}
