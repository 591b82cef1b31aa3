package services

import (
	"context"

	"github.com/DanielPopoola/eway-recurring/internal/application"
	"github.com/DanielPopoola/eway-recurring/internal/domain"
)

type QueryService struct {
	contributions application.ContributionRepository
	recurs        application.RecurRepository
	accessCodes   application.AccessCodeRepository
}

func NewQueryService(
	contributions application.ContributionRepository,
	recurs application.RecurRepository,
	accessCodes application.AccessCodeRepository,
) *QueryService {
	return &QueryService{
		contributions: contributions,
		recurs:        recurs,
		accessCodes:   accessCodes,
	}
}

func (s *QueryService) GetContribution(ctx context.Context, id int64) (*domain.Contribution, error) {
	return s.contributions.FindByID(ctx, id)
}

// GetContributionByAccessCode resolves the contribution a hosted page transaction was
// created for.
func (s *QueryService) GetContributionByAccessCode(ctx context.Context, accessCode string) (*domain.Contribution, error) {
	record, err := s.accessCodes.FindByAccessCode(ctx, accessCode)
	if err != nil {
		return nil, err
	}
	return s.contributions.FindByID(ctx, record.ContributionID)
}

func (s *QueryService) GetSubscription(ctx context.Context, processorID int64, token string) (*domain.ContributionRecur, error) {
	return s.recurs.FindByProcessorToken(ctx, processorID, token)
}
