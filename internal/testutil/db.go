// Package testutil holds helpers shared by package tests.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"alfredoptarigan/screenly/internal/config"
	"alfredoptarigan/screenly/internal/models"
)

// NewDB opens a migrated SQLite database in a per-test directory.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "screenly.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:         logger.Discard,
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, config.Migrate(db))
	return db
}

// SeedApplication stores a job for role and a submitted application for it.
func SeedApplication(t *testing.T, db *gorm.DB, role string, mutate ...func(*models.Application)) *models.Application {
	t.Helper()

	job := &models.Job{Title: role + " Position", Role: role, IsActive: true}
	require.NoError(t, db.WithContext(context.Background()).Create(job).Error)

	app := &models.Application{
		Name:       "Ada Lovelace",
		Email:      "ada@example.com",
		JobID:      job.ID,
		JobRole:    role,
		CVFilename: "ada.pdf",
		CVFileRef:  "uploads/ada.pdf",
		CVText:     "Ada Lovelace\nMathematician\nLondon",
		Status:     models.ApplicationSubmitted,
	}
	for _, m := range mutate {
		m(app)
	}
	require.NoError(t, db.Create(app).Error)
	return app
}

func Ptr[T any](v T) *T {
	return &v
}
