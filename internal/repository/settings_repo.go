package repository

import (
	"context"
	"errors"

	"invoicer/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettingsRepository stores the singleton company settings row.
type SettingsRepository interface {
	Get(ctx context.Context) (*model.CompanySettings, error)
	Upsert(ctx context.Context, settings *model.CompanySettings) error
}

type settingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

// Get returns the stored settings, or nil when none have been saved yet.
func (r *settingsRepository) Get(ctx context.Context) (*model.CompanySettings, error) {
	var settings model.CompanySettings
	err := GetDB(ctx, r.db).First(&settings, "id = ?", model.SettingsDocID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *settingsRepository) Upsert(ctx context.Context, settings *model.CompanySettings) error {
	settings.ID = model.SettingsDocID
	return GetDB(ctx, r.db).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(settings).Error
}
