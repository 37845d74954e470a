// Package services holds the portal's domain operations on top of gorm:
// accounts, the scheme catalog and the application workflow.
package services

import "errors"

var (
	ErrNotFound             = errors.New("record not found")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrPhoneTaken           = errors.New("farmer already registered with this phone number")
	ErrDuplicateApplication = errors.New("you have already applied for this scheme")
	ErrSchemeNotFound       = errors.New("scheme not found")
	ErrInvalidStatus        = errors.New("status must be one of under-review, approved, rejected")
	ErrInvalidSchemeWindow  = errors.New("scheme end date must not be before start date")
)
