package models

import (
	"time"
)

type AuditLog struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	ActorID    string    `json:"actorId" gorm:"size:36;index"`
	ActorRole  Role      `json:"actorRole"`
	Action     string    `json:"action" gorm:"not null"`
	Resource   string    `json:"resource" gorm:"not null"`
	ResourceID string    `json:"resourceId"`
	Details    string    `json:"details"`
	IPAddress  string    `json:"ipAddress"`
	UserAgent  string    `json:"userAgent"`
	CreatedAt  time.Time `json:"createdAt" gorm:"index"`
}
