package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"gorm.io/gorm"

	"agriportal-go/models"
	"agriportal-go/utils"
)

// dummyHash is compared against when no account matches, so unknown and
// known identifiers cost the same bcrypt work.
var dummyHash = sync.OnceValue(func() string {
	hash, _ := utils.HashPassword("agriportal-unknown-account")
	return hash
})

// Accounts is the credential store for administrators and farmers.
type Accounts struct {
	db           *gorm.DB
	log          *slog.Logger
	seedUsername string
	seedPassword string
}

func NewAccounts(db *gorm.DB, log *slog.Logger, seedUsername, seedPassword string) *Accounts {
	return &Accounts{
		db:           db,
		log:          log,
		seedUsername: seedUsername,
		seedPassword: seedPassword,
	}
}

// AuthenticateAdmin checks an administrator's credentials. The first login
// as the seed username with the seed password creates that administrator
// when no record exists yet.
func (s *Accounts) AuthenticateAdmin(ctx context.Context, username, password string) (*models.Admin, error) {
	var admin models.Admin
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&admin).Error
	switch {
	case err == nil:
	case errors.Is(err, gorm.ErrRecordNotFound):
		if username != s.seedUsername || password != s.seedPassword {
			utils.ComparePassword(password, dummyHash())
			return nil, ErrInvalidCredentials
		}
		seeded, err := s.bootstrapAdmin(ctx)
		if err != nil {
			return nil, err
		}
		admin = *seeded
	default:
		return nil, fmt.Errorf("find admin %s: %w", username, err)
	}

	if !utils.ComparePassword(password, admin.Password) {
		return nil, ErrInvalidCredentials
	}
	return &admin, nil
}

func (s *Accounts) bootstrapAdmin(ctx context.Context) (*models.Admin, error) {
	hashed, err := utils.HashPassword(s.seedPassword)
	if err != nil {
		return nil, fmt.Errorf("hash seed password: %w", err)
	}

	admin := models.Admin{Username: s.seedUsername, Password: hashed}
	err = s.db.WithContext(ctx).Create(&admin).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// A concurrent login created it first.
		var existing models.Admin
		if err := s.db.WithContext(ctx).Where("username = ?", s.seedUsername).First(&existing).Error; err != nil {
			return nil, fmt.Errorf("reload seed admin: %w", err)
		}
		return &existing, nil
	}
	if err != nil {
		return nil, fmt.Errorf("create seed admin: %w", err)
	}

	s.log.Info("seed administrator created", "username", admin.Username, "id", admin.ID)
	return &admin, nil
}

func (s *Accounts) AuthenticateFarmer(ctx context.Context, phone, password string) (*models.Farmer, error) {
	var farmer models.Farmer
	if err := s.db.WithContext(ctx).Where("phone = ?", phone).First(&farmer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.ComparePassword(password, dummyHash())
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find farmer: %w", err)
	}
	if !utils.ComparePassword(password, farmer.Password) {
		return nil, ErrInvalidCredentials
	}
	return &farmer, nil
}

// RegisterFarmer creates a farmer account. The phone number is the login
// identifier and must not be registered already.
func (s *Accounts) RegisterFarmer(ctx context.Context, req models.FarmerRegisterRequest) (*models.Farmer, error) {
	phone := utils.SanitizeString(req.Phone)

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Farmer{}).Where("phone = ?", phone).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check phone: %w", err)
	}
	if count > 0 {
		return nil, ErrPhoneTaken
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	account, err := utils.EncryptSensitiveData(utils.SanitizeString(req.BankAccount))
	if err != nil {
		return nil, fmt.Errorf("encrypt bank account: %w", err)
	}

	farmer := models.Farmer{
		Name:        utils.SanitizeString(req.Name),
		Phone:       phone,
		Password:    hashed,
		Village:     utils.SanitizeString(req.Village),
		District:    utils.SanitizeString(req.District),
		State:       utils.SanitizeString(req.State),
		Crops:       utils.SanitizeList(req.Crops),
		BankAccount: account,
		IFSCCode:    utils.SanitizeString(req.IFSCCode),
	}
	if err := s.db.WithContext(ctx).Create(&farmer).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrPhoneTaken
		}
		return nil, fmt.Errorf("create farmer: %w", err)
	}
	return &farmer, nil
}

func (s *Accounts) GetAdmin(ctx context.Context, id string) (*models.Admin, error) {
	var admin models.Admin
	if err := s.db.WithContext(ctx).First(&admin, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &admin, nil
}

// GetFarmer loads a farmer with the bank account decrypted.
func (s *Accounts) GetFarmer(ctx context.Context, id string) (*models.Farmer, error) {
	var farmer models.Farmer
	if err := s.db.WithContext(ctx).First(&farmer, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	account, err := utils.DecryptSensitiveData(farmer.BankAccount)
	if err != nil {
		return nil, fmt.Errorf("decrypt bank account: %w", err)
	}
	farmer.BankAccount = account
	return &farmer, nil
}
