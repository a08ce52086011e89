package usecase

import (
	"context"

	"go.uber.org/zap"

	"github.com/xavierca1/agency-funnel/internal/entity"
)

type CreateLeadUseCase struct {
	Repo   entity.LeadRepository
	Logger *zap.Logger
}

func NewCreateLeadUseCase(repo entity.LeadRepository, logger *zap.Logger) *CreateLeadUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CreateLeadUseCase{Repo: repo, Logger: logger}
}

// Execute validates the contact form and stores a new lead with status
// "No Answered".
func (uc *CreateLeadUseCase) Execute(ctx context.Context, input CreateLeadInput) (*entity.Lead, error) {
	if errs := ValidateCreateLeadInput(input); len(errs) > 0 {
		return nil, newValidationError(joinValidationErrors(errs))
	}

	lead, err := entity.NewLead(input.Name, input.Company, input.Website, input.Mobile, entity.Service(input.Service), input.Email)
	if err != nil {
		return nil, newValidationError(err.Error())
	}

	if err := uc.Repo.Create(ctx, lead); err != nil {
		err = storageError("create lead", "lead", lead.ID, err)
		uc.Logger.Error("lead not stored", zap.String("email", lead.Email), zap.Error(err))
		return nil, err
	}

	uc.Logger.Info("lead captured", zap.String("lead_id", lead.ID), zap.String("service", string(lead.Service)))
	return lead, nil
}
