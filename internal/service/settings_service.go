package service

import (
	"context"

	"invoicer/internal/model"
	"invoicer/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// UpdateSettingsRequest carries the editable company profile fields. Nil
// pointers leave the stored value untouched.
type UpdateSettingsRequest struct {
	Name        *string `json:"name,omitempty"`
	LogoURL     *string `json:"logo_url,omitempty"`
	Address     *string `json:"address,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	Email       *string `json:"email,omitempty"`
	Website     *string `json:"website,omitempty"`
	BankDetails *string `json:"bank_details,omitempty"`
	FooterNote  *string `json:"footer_note,omitempty"`
}

// SettingsService maintains the singleton company profile used on rendered
// invoices and emails.
type SettingsService interface {
	Get(ctx context.Context) (*model.CompanySettings, error)
	Update(ctx context.Context, req UpdateSettingsRequest, userID string) (*model.CompanySettings, error)
}

type settingsService struct {
	repo       repository.SettingsRepository
	operations OperationsService
	logger     zerolog.Logger
}

func NewSettingsService(repo repository.SettingsRepository, operations OperationsService, logger zerolog.Logger) SettingsService {
	return &settingsService{
		repo:       repo,
		operations: operations,
		logger:     logger.With().Str("component", "settings_service").Logger(),
	}
}

// Get returns the stored settings, falling back to sensible defaults when
// nothing has been saved yet.
func (s *settingsService) Get(ctx context.Context) (*model.CompanySettings, error) {
	settings, err := s.repo.Get(ctx)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		return &model.CompanySettings{
			ID:    model.SettingsDocID,
			Name:  "Invoicer",
			Email: "info@invoicer.local",
		}, nil
	}
	return settings, nil
}

func (s *settingsService) Update(ctx context.Context, req UpdateSettingsRequest, userID string) (*model.CompanySettings, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, badRequest("Invalid user id")
	}

	current, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	var changed []string
	apply := func(field string, dst *string, src *string) {
		if src != nil {
			*dst = *src
			changed = append(changed, field)
		}
	}
	apply("name", &current.Name, req.Name)
	apply("logoUrl", &current.LogoURL, req.LogoURL)
	apply("address", &current.Address, req.Address)
	apply("phone", &current.Phone, req.Phone)
	apply("email", &current.Email, req.Email)
	apply("website", &current.Website, req.Website)
	apply("bankDetails", &current.BankDetails, req.BankDetails)
	apply("footerNote", &current.FooterNote, req.FooterNote)

	current.UpdatedBy = &uid
	if err := s.repo.Upsert(ctx, current); err != nil {
		return nil, err
	}

	s.operations.Record(ctx, OperationInput{
		Action:     model.ActionSettingsUpdate,
		EntityType: model.EntitySettings,
		EntityID:   model.SettingsDocID,
		UserID:     &uid,
		Metadata:   map[string]interface{}{"fields": changed},
	})

	return current, nil
}
