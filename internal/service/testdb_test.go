package service

import (
	"strings"
	"testing"
	"time"

	"github.com/dropforge/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB opens a per-test in-memory database and points the package-global
// connection at it, so the transactional service paths run against it too.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Collection{},
		&models.BatchListing{},
		&models.Collectible{},
		&models.ChipLink{},
		&models.Order{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	return db
}

func seedCollection(t *testing.T, db *gorm.DB) *models.Collection {
	t.Helper()

	collection := &models.Collection{
		Slug:       "midnight-drops",
		ArtistName: "Ana Reyes",
		Title:      "Midnight Drops",
		IsActive:   true,
	}
	if err := db.Create(collection).Error; err != nil {
		t.Fatalf("create collection failed: %v", err)
	}
	return collection
}

func seedCollectible(t *testing.T, db *gorm.DB, collectible *models.Collectible) *models.Collectible {
	t.Helper()

	if collectible.Title == "" {
		collectible.Title = "Drop #1"
	}
	if collectible.Currency == "" {
		collectible.Currency = "USD"
	}
	if collectible.QuantityType == "" {
		collectible.QuantityType = "open"
	}
	collectible.IsActive = true
	if err := db.Create(collectible).Error; err != nil {
		t.Fatalf("create collectible failed: %v", err)
	}
	return collectible
}

func timePtr(t time.Time) *time.Time {
	return &t
}
