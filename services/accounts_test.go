package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"agriportal-go/logger"
	"agriportal-go/models"
	"agriportal-go/utils"
)

func TestAuthenticateAdminSeed(t *testing.T) {
	db := setupTestDB(t)
	accounts := NewAccounts(db, logger.Discard(), "admin", "admin123")
	ctx := context.Background()

	if _, err := accounts.AuthenticateAdmin(ctx, "admin", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials before seeding, got %v", err)
	}
	var count int64
	db.Model(&models.Admin{}).Count(&count)
	if count != 0 {
		t.Fatalf("wrong password must not create the seed admin, found %d", count)
	}

	admin, err := accounts.AuthenticateAdmin(ctx, "admin", "admin123")
	if err != nil {
		t.Fatalf("seed login: %v", err)
	}
	if admin.Role != models.RoleAdmin || admin.ID == "" {
		t.Errorf("unexpected seed admin %+v", admin)
	}
	if admin.Password == "admin123" {
		t.Error("seed password must be stored hashed")
	}

	again, err := accounts.AuthenticateAdmin(ctx, "admin", "admin123")
	if err != nil {
		t.Fatalf("second login: %v", err)
	}
	if again.ID != admin.ID {
		t.Errorf("expected the same admin record, got %s and %s", admin.ID, again.ID)
	}
	db.Model(&models.Admin{}).Count(&count)
	if count != 1 {
		t.Errorf("expected exactly one admin, found %d", count)
	}

	if _, err := accounts.AuthenticateAdmin(ctx, "admin", "nope"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected invalid credentials, got %v", err)
	}
	if _, err := accounts.AuthenticateAdmin(ctx, "someone", "admin123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected invalid credentials for unknown user, got %v", err)
	}
}

func TestRegisterAndAuthenticateFarmer(t *testing.T) {
	db := setupTestDB(t)
	accounts := NewAccounts(db, logger.Discard(), "admin", "admin123")
	ctx := context.Background()

	farmer := registerFarmer(t, accounts, "Ramesh", "9876543210")
	if farmer.Role != models.RoleFarmer {
		t.Errorf("expected farmer role, got %s", farmer.Role)
	}
	if farmer.BankAccount == "123456789012" {
		t.Error("bank account must be stored encrypted")
	}

	got, err := accounts.AuthenticateFarmer(ctx, "9876543210", "secret1")
	if err != nil {
		t.Fatalf("AuthenticateFarmer: %v", err)
	}
	if got.ID != farmer.ID {
		t.Errorf("expected %s, got %s", farmer.ID, got.ID)
	}

	if _, err := accounts.AuthenticateFarmer(ctx, "9876543210", "bad"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected invalid credentials, got %v", err)
	}
	if _, err := accounts.AuthenticateFarmer(ctx, "1111111111", "secret1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected invalid credentials for unknown phone, got %v", err)
	}

	loaded, err := accounts.GetFarmer(ctx, farmer.ID)
	if err != nil {
		t.Fatalf("GetFarmer: %v", err)
	}
	if loaded.BankAccount != "123456789012" {
		t.Errorf("expected decrypted account, got %q", loaded.BankAccount)
	}
	if len(loaded.Crops) != 2 || loaded.Crops[0] != "Rice" {
		t.Errorf("crops not persisted: %v", loaded.Crops)
	}

	if _, err := accounts.GetFarmer(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRegisterFarmerDuplicatePhone(t *testing.T) {
	db := setupTestDB(t)
	accounts := NewAccounts(db, logger.Discard(), "admin", "admin123")

	registerFarmer(t, accounts, "Ramesh", "9876543210")

	_, err := accounts.RegisterFarmer(context.Background(), models.FarmerRegisterRequest{
		Name:        "Suresh",
		Phone:       "9876543210",
		Password:    "secret2",
		Village:     "Khed",
		District:    "Pune",
		State:       "Maharashtra",
		Crops:       []string{"Cotton"},
		BankAccount: "999988887777",
		IFSCCode:    "HDFC0000001",
	})
	if !errors.Is(err, ErrPhoneTaken) {
		t.Fatalf("expected ErrPhoneTaken, got %v", err)
	}

	var count int64
	db.Model(&models.Farmer{}).Count(&count)
	if count != 1 {
		t.Errorf("expected one farmer, found %d", count)
	}
}

func TestAuthenticateAdminConcurrentSeedLogins(t *testing.T) {
	db := setupTestDB(t)
	accounts := NewAccounts(db, logger.Discard(), "admin", "admin123")

	const attempts = 8
	ids := make(chan string, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			admin, err := accounts.AuthenticateAdmin(context.Background(), "admin", "admin123")
			if err != nil {
				t.Errorf("AuthenticateAdmin: %v", err)
				return
			}
			ids <- admin.ID
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[string]bool{}
	for id := range ids {
		seen[id] = true
	}
	if len(seen) != 1 {
		t.Errorf("expected every login to resolve to one admin, got %v", seen)
	}
	var count int64
	db.Model(&models.Admin{}).Count(&count)
	if count != 1 {
		t.Errorf("expected exactly one admin row, found %d", count)
	}
}

func TestBootstrapAdminReloadsExisting(t *testing.T) {
	db := setupTestDB(t)
	accounts := NewAccounts(db, logger.Discard(), "admin", "admin123")
	ctx := context.Background()

	first, err := accounts.bootstrapAdmin(ctx)
	if err != nil {
		t.Fatalf("first bootstrap: %v", err)
	}
	// A second bootstrap hits the unique username index and must return
	// the record created by the first.
	second, err := accounts.bootstrapAdmin(ctx)
	if err != nil {
		t.Fatalf("second bootstrap: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("expected reloaded admin %s, got %s", first.ID, second.ID)
	}
}

func TestUnknownAccountsRunPasswordComparison(t *testing.T) {
	db := setupTestDB(t)
	accounts := NewAccounts(db, logger.Discard(), "admin", "admin123")
	ctx := context.Background()

	hash := dummyHash()
	if !utils.ComparePassword("agriportal-unknown-account", hash) {
		t.Fatalf("dummy hash must be a bcrypt hash, got %q", hash)
	}
	if hash != dummyHash() {
		t.Error("dummy hash must be computed once")
	}

	if _, err := accounts.AuthenticateFarmer(ctx, "1111111111", "agriportal-unknown-account"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown phone must be rejected even with the dummy password, got %v", err)
	}
	if _, err := accounts.AuthenticateAdmin(ctx, "ghost", "agriportal-unknown-account"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown admin must be rejected even with the dummy password, got %v", err)
	}
}
