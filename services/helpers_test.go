package services

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"agriportal-go/database"
	"agriportal-go/events"
	"agriportal-go/models"
	"agriportal-go/utils"
)

const testEncryptionKey = "0123456789abcdef0123456789abcdef"

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	if err := utils.InitializeEncryption(testEncryptionKey); err != nil {
		t.Fatalf("InitializeEncryption: %v", err)
	}
	db, err := database.Initialize("sqlite", filepath.Join(t.TempDir(), "portal.db"), logger.Silent)
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	t.Cleanup(func() { database.Close(db) })
	return db
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

func registerFarmer(t *testing.T, accounts *Accounts, name, phone string) *models.Farmer {
	t.Helper()
	f, err := accounts.RegisterFarmer(context.Background(), models.FarmerRegisterRequest{
		Name:        name,
		Phone:       phone,
		Password:    "secret1",
		Village:     "Khed",
		District:    "Pune",
		State:       "Maharashtra",
		Crops:       []string{"Rice", "Wheat"},
		BankAccount: "123456789012",
		IFSCCode:    "SBIN0001234",
	})
	if err != nil {
		t.Fatalf("RegisterFarmer: %v", err)
	}
	return f
}

func createScheme(t *testing.T, schemes *Schemes, title string, issuer models.Issuer, crops ...string) *models.Scheme {
	t.Helper()
	start := time.Now().Add(-24 * time.Hour)
	sc, err := schemes.Create(context.Background(), models.SchemeRequest{
		Title:       title,
		Description: title + " description",
		Issuer:      issuer,
		CropTypes:   crops,
		StartDate:   start,
		EndDate:     start.Add(90 * 24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("Create scheme: %v", err)
	}
	return sc
}
