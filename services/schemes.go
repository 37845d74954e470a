package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/lo"
	"gorm.io/gorm"

	"agriportal-go/models"
	"agriportal-go/utils"
)

// Schemes is the scheme catalog.
type Schemes struct {
	db *gorm.DB
}

func NewSchemes(db *gorm.DB) *Schemes {
	return &Schemes{db: db}
}

// List returns active schemes, newest first. The crop filter is applied
// after loading because crop lists are stored as JSON text.
func (s *Schemes) List(ctx context.Context, filter models.SchemeFilter) ([]models.Scheme, error) {
	q := s.db.WithContext(ctx).Where("is_active = ?", true)
	if filter.Issuer != "" {
		q = q.Where("issuer = ?", filter.Issuer)
	}

	var schemes []models.Scheme
	if err := q.Order("created_at DESC").Find(&schemes).Error; err != nil {
		return nil, fmt.Errorf("list schemes: %w", err)
	}

	if filter.CropType != "" {
		schemes = lo.Filter(schemes, func(sc models.Scheme, _ int) bool {
			return sc.SupportsCrop(filter.CropType)
		})
	}
	return schemes, nil
}

func (s *Schemes) Get(ctx context.Context, id string) (*models.Scheme, error) {
	var scheme models.Scheme
	if err := s.db.WithContext(ctx).First(&scheme, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get scheme %s: %w", id, err)
	}
	return &scheme, nil
}

func (s *Schemes) Create(ctx context.Context, req models.SchemeRequest) (*models.Scheme, error) {
	if req.EndDate.Before(req.StartDate) {
		return nil, ErrInvalidSchemeWindow
	}

	scheme := models.Scheme{
		Title:             utils.SanitizeString(req.Title),
		Description:       utils.SanitizeString(req.Description),
		Issuer:            req.Issuer,
		Eligibility:       utils.SanitizeList(req.Eligibility),
		RequiredDocuments: utils.SanitizeList(req.RequiredDocuments),
		CropTypes:         utils.SanitizeList(req.CropTypes),
		StartDate:         req.StartDate,
		EndDate:           req.EndDate,
		IsActive:          req.IsActive == nil || *req.IsActive,
	}
	if err := s.db.WithContext(ctx).Create(&scheme).Error; err != nil {
		return nil, fmt.Errorf("create scheme: %w", err)
	}
	return &scheme, nil
}

// Update merges the supplied fields into the stored scheme.
func (s *Schemes) Update(ctx context.Context, id string, patch models.SchemePatch) (*models.Scheme, error) {
	scheme, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		scheme.Title = utils.SanitizeString(*patch.Title)
	}
	if patch.Description != nil {
		scheme.Description = utils.SanitizeString(*patch.Description)
	}
	if patch.Issuer != nil {
		scheme.Issuer = *patch.Issuer
	}
	if patch.Eligibility != nil {
		scheme.Eligibility = utils.SanitizeList(*patch.Eligibility)
	}
	if patch.RequiredDocuments != nil {
		scheme.RequiredDocuments = utils.SanitizeList(*patch.RequiredDocuments)
	}
	if patch.CropTypes != nil {
		scheme.CropTypes = utils.SanitizeList(*patch.CropTypes)
	}
	if patch.StartDate != nil {
		scheme.StartDate = *patch.StartDate
	}
	if patch.EndDate != nil {
		scheme.EndDate = *patch.EndDate
	}
	if patch.IsActive != nil {
		scheme.IsActive = *patch.IsActive
	}

	if scheme.EndDate.Before(scheme.StartDate) {
		return nil, ErrInvalidSchemeWindow
	}
	if err := s.db.WithContext(ctx).Save(scheme).Error; err != nil {
		return nil, fmt.Errorf("update scheme %s: %w", id, err)
	}
	return scheme, nil
}

// Delete removes the scheme permanently.
func (s *Schemes) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&models.Scheme{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("delete scheme %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
