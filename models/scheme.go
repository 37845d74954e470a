package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

// Issuer is the level of government that owns a scheme.
type Issuer string

const (
	IssuerCentral Issuer = "central"
	IssuerState   Issuer = "state"
)

type Scheme struct {
	ID                string    `json:"id" gorm:"primaryKey;size:36"`
	Title             string    `json:"title" gorm:"not null"`
	Description       string    `json:"description" gorm:"not null"`
	Issuer            Issuer    `json:"issuer" gorm:"not null;index"`
	Eligibility       []string  `json:"eligibility" gorm:"serializer:json"`
	RequiredDocuments []string  `json:"requiredDocuments" gorm:"serializer:json"`
	CropTypes         []string  `json:"cropTypes" gorm:"serializer:json"`
	StartDate         time.Time `json:"startDate" gorm:"not null"`
	EndDate           time.Time `json:"endDate" gorm:"not null"`
	IsActive          bool      `json:"isActive" gorm:"not null;index"`
	CreatedAt         time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

func (s *Scheme) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// SupportsCrop reports whether crop appears in the scheme's crop list.
func (s *Scheme) SupportsCrop(crop string) bool {
	return lo.Contains(s.CropTypes, crop)
}

type SchemeRequest struct {
	Title             string    `json:"title" validate:"required,min=3"`
	Description       string    `json:"description" validate:"required"`
	Issuer            Issuer    `json:"issuer" validate:"required,oneof=central state"`
	Eligibility       []string  `json:"eligibility" validate:"dive,required"`
	RequiredDocuments []string  `json:"requiredDocuments" validate:"dive,required"`
	CropTypes         []string  `json:"cropTypes" validate:"dive,required"`
	StartDate         time.Time `json:"startDate" validate:"required"`
	EndDate           time.Time `json:"endDate" validate:"required,gtefield=StartDate"`
	IsActive          *bool     `json:"isActive"`
}

// SchemePatch carries the fields supplied to a partial update; nil means
// "leave unchanged".
type SchemePatch struct {
	Title             *string    `json:"title" validate:"omitempty,min=3"`
	Description       *string    `json:"description" validate:"omitempty,min=1"`
	Issuer            *Issuer    `json:"issuer" validate:"omitempty,oneof=central state"`
	Eligibility       *[]string  `json:"eligibility"`
	RequiredDocuments *[]string  `json:"requiredDocuments"`
	CropTypes         *[]string  `json:"cropTypes"`
	StartDate         *time.Time `json:"startDate"`
	EndDate           *time.Time `json:"endDate"`
	IsActive          *bool      `json:"isActive"`
}

// SchemeFilter narrows the public catalog listing.
type SchemeFilter struct {
	Issuer   Issuer
	CropType string
}
