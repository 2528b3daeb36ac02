package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkuznetsova/dobrobot/internal/domain"
	"github.com/mkuznetsova/dobrobot/internal/repository"
	"github.com/mkuznetsova/dobrobot/internal/testutil"
)

func newOrgService(t *testing.T) OrganizationService {
	t.Helper()
	database := testutil.NewTestDB(t)
	return NewOrganizationService(repository.NewSQLiteOrganizationRepo(database))
}

func TestOrganizationService_CreateFillsPlaceholders(t *testing.T) {
	svc := newOrgService(t)
	ctx := context.Background()

	saved, err := svc.CreateOrUpdate(ctx, &domain.Organization{
		UserID: 42,
		Name:   "Добрые руки",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, domain.Placeholder, saved.Description)
	assert.Equal(t, domain.Placeholder, saved.Activities)
	assert.Equal(t, domain.Placeholder, saved.Contact)

	got, err := svc.Get(ctx, 42)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Добрые руки", got.Name)
	assert.Equal(t, domain.Placeholder, got.Description)
}

func TestOrganizationService_GetReturnsNilWhenAbsent(t *testing.T) {
	svc := newOrgService(t)

	got, err := svc.Get(context.Background(), 42)

	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestOrganizationService_ValidationRejected(t *testing.T) {
	svc := newOrgService(t)
	ctx := context.Background()

	_, err := svc.CreateOrUpdate(ctx, &domain.Organization{UserID: 42})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.CreateOrUpdate(ctx, &domain.Organization{
		UserID: 42,
		Name:   strings.Repeat("и", domain.MaxNameLen+1),
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	exists, err := svc.Exists(ctx, 42)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestOrganizationService_UpdateKeepsIdentity(t *testing.T) {
	svc := newOrgService(t)
	ctx := context.Background()

	first, err := svc.CreateOrUpdate(ctx, &domain.Organization{UserID: 42, Name: "Добрые руки"})
	require.NoError(t, err)

	second, err := svc.CreateOrUpdate(ctx, &domain.Organization{
		UserID:      42,
		Name:        "Добрые руки",
		Description: "Помощь детям",
	})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	// stored timestamps are second-precision
	assert.WithinDuration(t, first.CreatedAt, second.CreatedAt, time.Second)
	assert.Equal(t, "Помощь детям", second.Description)
}

func TestOrganizationService_DeleteIdempotent(t *testing.T) {
	svc := newOrgService(t)
	ctx := context.Background()

	_, err := svc.CreateOrUpdate(ctx, &domain.Organization{UserID: 42, Name: "Добрые руки"})
	require.NoError(t, err)

	deleted, err := svc.Delete(ctx, 42)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = svc.Delete(ctx, 42)
	require.NoError(t, err)
	assert.False(t, deleted)

	got, err := svc.Get(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, got)
}
