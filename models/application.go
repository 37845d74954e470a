package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ApplicationStatus string

const (
	StatusSubmitted   ApplicationStatus = "submitted"
	StatusUnderReview ApplicationStatus = "under-review"
	StatusApproved    ApplicationStatus = "approved"
	StatusRejected    ApplicationStatus = "rejected"
)

func (s ApplicationStatus) Valid() bool {
	switch s {
	case StatusSubmitted, StatusUnderReview, StatusApproved, StatusRejected:
		return true
	default:
		return false
	}
}

// Reviewable reports whether an administrator may set this status. The
// initial status is only ever assigned on submission.
func (s ApplicationStatus) Reviewable() bool {
	return s.Valid() && s != StatusSubmitted
}

// Pending reports whether the application still awaits a final decision.
func (s ApplicationStatus) Pending() bool {
	return s == StatusSubmitted || s == StatusUnderReview
}

// FormSnapshot is a point-in-time copy of the farmer's details taken when the
// application is submitted. Later profile edits never touch it.
type FormSnapshot struct {
	Name        string   `json:"name"`
	Phone       string   `json:"phone"`
	Village     string   `json:"village"`
	District    string   `json:"district"`
	State       string   `json:"state"`
	Crops       []string `json:"crops"`
	BankAccount string   `json:"bankAccount"`
	IFSCCode    string   `json:"ifscCode"`
}

type Application struct {
	ID          string                           `json:"id" gorm:"primaryKey;size:36"`
	FarmerID    string                           `json:"farmerId" gorm:"size:36;not null;uniqueIndex:idx_application_farmer_scheme"`
	SchemeID    string                           `json:"schemeId" gorm:"size:36;not null;uniqueIndex:idx_application_farmer_scheme;index"`
	FormData    datatypes.JSONType[FormSnapshot] `json:"formData"`
	Documents   []string                         `json:"documents" gorm:"serializer:json"`
	Status      ApplicationStatus                `json:"status" gorm:"not null;default:submitted;index"`
	Remarks     string                           `json:"remarks,omitempty"`
	ReviewedBy  string                           `json:"reviewedBy,omitempty" gorm:"size:36"`
	SubmittedAt time.Time                        `json:"submittedAt" gorm:"not null"`
	CreatedAt   time.Time                        `json:"createdAt" gorm:"index"`
	UpdatedAt   time.Time                        `json:"updatedAt"`
}

func (a *Application) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// Snapshot returns the form data captured at submission.
func (a *Application) Snapshot() FormSnapshot {
	return a.FormData.Data()
}

type ApplicationRequest struct {
	SchemeID  string       `json:"schemeId" validate:"required"`
	FormData  FormSnapshot `json:"formData"`
	Documents []string     `json:"documents" validate:"dive,required"`
}

type ApplicationReviewRequest struct {
	Status  ApplicationStatus `json:"status" validate:"required,oneof=under-review approved rejected"`
	Remarks *string           `json:"remarks" validate:"omitempty,max=1000"`
}

// ApplicationView is an application enriched with display names of the rows
// it references. Missing rows resolve to UnknownLabel.
type ApplicationView struct {
	Application
	FarmerName  string `json:"farmerName,omitempty"`
	SchemeTitle string `json:"schemeTitle"`
}

const UnknownLabel = "Unknown"

type DashboardStats struct {
	TotalFarmers         int64 `json:"totalFarmers"`
	TotalSchemes         int64 `json:"totalSchemes"`
	TotalApplications    int64 `json:"totalApplications"`
	ApprovedApplications int64 `json:"approvedApplications"`
	RejectedApplications int64 `json:"rejectedApplications"`
	PendingApplications  int64 `json:"pendingApplications"`
}
