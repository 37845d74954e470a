package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Farmer struct {
	ID       string   `json:"id" gorm:"primaryKey;size:36"`
	Name     string   `json:"name" gorm:"not null"`
	Phone    string   `json:"phone" gorm:"uniqueIndex;not null"`
	Password string   `json:"-" gorm:"not null"`
	Village  string   `json:"village" gorm:"not null"`
	District string   `json:"district" gorm:"not null"`
	State    string   `json:"state" gorm:"not null"`
	Crops    []string `json:"crops" gorm:"serializer:json"`
	// BankAccount is stored encrypted; see utils.EncryptSensitiveData.
	BankAccount string    `json:"bankAccount" gorm:"not null"`
	IFSCCode    string    `json:"ifscCode" gorm:"not null"`
	Role        Role      `json:"role" gorm:"not null;default:farmer"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (f *Farmer) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	f.Role = RoleFarmer
	return nil
}

type FarmerRegisterRequest struct {
	Name        string   `json:"name" validate:"required,min=2"`
	Phone       string   `json:"phone" validate:"required,phone"`
	Password    string   `json:"password" validate:"required,min=6"`
	Village     string   `json:"village" validate:"required"`
	District    string   `json:"district" validate:"required"`
	State       string   `json:"state" validate:"required"`
	Crops       []string `json:"crops" validate:"required,min=1,dive,required"`
	BankAccount string   `json:"bankAccount" validate:"required,numeric,min=9,max=18"`
	IFSCCode    string   `json:"ifscCode" validate:"required,ifsc"`
}

type FarmerLoginRequest struct {
	Phone    string `json:"phone" validate:"required"`
	Password string `json:"password" validate:"required"`
}
