package storage

import (
	"os"
	"testing"
	"time"

	"depth_go/internal/domain"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *Storage {
	dbName := "test.db"
	db, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	if err := db.AutoMigrate(&domain.SymbolInfo{}, &domain.AppConfig{}); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}

	t.Cleanup(func() {
		os.Remove(dbName)
	})

	return &Storage{db: db}
}

func TestUpsertAndGetSymbol(t *testing.T) {
	s := setupTestDB(t)

	info := &domain.SymbolInfo{
		Symbol:    "BTCUSDT",
		BaseAsset: "BTC",
		LastVenue: "bitget",
		UpdatedAt: time.Now(),
	}

	if err := s.UpsertSymbol(info); err != nil {
		t.Fatalf("UpsertSymbol failed: %v", err)
	}

	fetched, err := s.GetSymbol("BTCUSDT")
	if err != nil {
		t.Fatalf("GetSymbol failed: %v", err)
	}
	if fetched == nil {
		t.Fatal("fetched symbol is nil")
	}
	if fetched.Symbol != "BTCUSDT" {
		t.Errorf("expected symbol BTCUSDT, got %s", fetched.Symbol)
	}
	if fetched.BaseAsset != "BTC" {
		t.Errorf("expected base asset BTC, got %s", fetched.BaseAsset)
	}
	if fetched.LastVenue != "bitget" {
		t.Errorf("expected last venue bitget, got %s", fetched.LastVenue)
	}
}

func TestLastVenueSurvivesUpdate(t *testing.T) {
	s := setupTestDB(t)
	s.UpsertSymbol(&domain.SymbolInfo{Symbol: "BTC-PERPETUAL", BaseAsset: "BTC", LastVenue: "deribit"})

	info, _ := s.GetSymbol("BTC-PERPETUAL")
	info.IsFavorite = true
	if err := s.UpsertSymbol(info); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	fetched, _ := s.GetSymbol("BTC-PERPETUAL")
	if fetched.LastVenue != "deribit" {
		t.Errorf("last venue lost on update: %s", fetched.LastVenue)
	}
	if !fetched.IsFavorite {
		t.Error("favorite flag lost on update")
	}
}

func TestUpdateSymbol(t *testing.T) {
	s := setupTestDB(t)
	info := &domain.SymbolInfo{Symbol: "ETHUSDT", BaseAsset: "ETC"}
	s.UpsertSymbol(info)

	info.BaseAsset = "ETH"
	if err := s.UpsertSymbol(info); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	fetched, _ := s.GetSymbol("ETHUSDT")
	if fetched.BaseAsset != "ETH" {
		t.Errorf("expected base asset 'ETH', got '%s'", fetched.BaseAsset)
	}
}

func TestDeleteSymbol(t *testing.T) {
	s := setupTestDB(t)
	s.UpsertSymbol(&domain.SymbolInfo{Symbol: "DELUSDT", BaseAsset: "DEL"})

	if err := s.DeleteSymbol("DELUSDT"); err != nil {
		t.Fatalf("DeleteSymbol failed: %v", err)
	}

	fetched, err := s.GetSymbol("DELUSDT")
	if err != nil {
		t.Fatalf("GetSymbol after delete failed: %v", err)
	}
	if fetched != nil {
		t.Error("expected symbol to be deleted, but found record")
	}
}

func TestToggleFavorite(t *testing.T) {
	s := setupTestDB(t)
	s.UpsertSymbol(&domain.SymbolInfo{Symbol: "FAVUSDT", IsFavorite: false})

	isFav, err := s.ToggleFavorite("FAVUSDT")
	if err != nil {
		t.Fatalf("ToggleFavorite failed: %v", err)
	}
	if !isFav {
		t.Error("expected IsFavorite to be true")
	}

	isFav, _ = s.ToggleFavorite("FAVUSDT")
	if isFav {
		t.Error("expected IsFavorite to be false")
	}
}

func TestGetSymbolNotFound(t *testing.T) {
	s := setupTestDB(t)

	fetched, err := s.GetSymbol("MISSING")
	if err != nil {
		t.Fatalf("GetSymbol failed: %v", err)
	}
	if fetched != nil {
		t.Error("expected nil for missing symbol")
	}
}

func TestConfigRoundTrip(t *testing.T) {
	s := setupTestDB(t)

	if err := s.SaveConfig("last_venue", "deribit"); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}
	if err := s.SaveConfig("last_symbol", "BTC-PERPETUAL"); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}
	if err := s.SaveConfig("last_venue", "gateio"); err != nil {
		t.Fatalf("SaveConfig overwrite failed: %v", err)
	}

	m, err := s.LoadConfigMap()
	if err != nil {
		t.Fatalf("LoadConfigMap failed: %v", err)
	}
	if m["last_venue"] != "gateio" {
		t.Errorf("expected last_venue gateio, got %s", m["last_venue"])
	}
	if m["last_symbol"] != "BTC-PERPETUAL" {
		t.Errorf("expected last_symbol BTC-PERPETUAL, got %s", m["last_symbol"])
	}
}
