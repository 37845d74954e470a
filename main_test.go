package main

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	gormlogger "gorm.io/gorm/logger"

	"agriportal-go/database"
	"agriportal-go/logger"
)

type failingCloser struct{ closed bool }

func (f *failingCloser) Close() error {
	f.closed = true
	return errors.New("kafka: flush timed out")
}

func TestReleaseLogsPublisherCloseFailure(t *testing.T) {
	db, err := database.Initialize("sqlite", filepath.Join(t.TempDir(), "portal.db"), gormlogger.Silent)
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	var buf bytes.Buffer
	publisher := &failingCloser{}
	release(logger.NewWithWriter("production", &buf), publisher, db)

	if !publisher.closed {
		t.Error("expected publisher to be closed")
	}
	if !strings.Contains(buf.String(), "close event publisher") || !strings.Contains(buf.String(), "flush timed out") {
		t.Errorf("expected publisher failure to be logged, got %s", buf.String())
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("DB: %v", err)
	}
	if err := sqlDB.Ping(); err == nil {
		t.Error("expected database pool to be closed")
	}
}
