package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/mkuznetsova/dobrobot/internal/domain"
	"github.com/mkuznetsova/dobrobot/internal/repository"
)

type organizationService struct {
	orgs repository.OrganizationRepo
}

func NewOrganizationService(orgs repository.OrganizationRepo) OrganizationService {
	return &organizationService{orgs: orgs}
}

func (s *organizationService) Get(ctx context.Context, userID int64) (*domain.Organization, error) {
	org, err := s.orgs.GetByUserID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return org, nil
}

func (s *organizationService) CreateOrUpdate(ctx context.Context, org *domain.Organization) (*domain.Organization, error) {
	if err := org.Validate(); err != nil {
		return nil, err
	}
	org.FillDefaults()

	now := time.Now().UTC()
	existing, err := s.orgs.GetByUserID(ctx, org.UserID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		org.ID = uuid.New().String()
		org.IsActive = true
		org.CreatedAt = now
		org.UpdatedAt = now
		if err := s.orgs.Create(ctx, org); err != nil {
			return nil, err
		}
		return org, nil
	case err != nil:
		return nil, err
	default:
		org.ID = existing.ID
		org.IsActive = true
		org.CreatedAt = existing.CreatedAt
		org.UpdatedAt = now
		if err := s.orgs.Update(ctx, org); err != nil {
			return nil, err
		}
		return org, nil
	}
}

func (s *organizationService) Delete(ctx context.Context, userID int64) (bool, error) {
	return s.orgs.SoftDelete(ctx, userID)
}

func (s *organizationService) Exists(ctx context.Context, userID int64) (bool, error) {
	return s.orgs.Exists(ctx, userID)
}
