package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"depth_go/internal/domain"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Storage persists watchlist symbols and user preferences
type Storage struct {
	db *gorm.DB
}

// NewStorage creates a SQLite storage instance at the default OS path
func NewStorage() (*Storage, error) {
	dbPath, err := getDBPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve DB path: %w", err)
	}
	return NewStorageWithPath(dbPath)
}

// NewStorageWithPath creates a SQLite storage instance at an explicit path
func NewStorageWithPath(dbPath string) (*Storage, error) {
	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create DB directory: %w", err)
	}

	// Connect to SQLite (Pure Go)
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto Migration
	if err := db.AutoMigrate(&domain.SymbolInfo{}, &domain.AppConfig{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Storage{db: db}, nil
}

// getDBPath resolves the database file path based on OS
func getDBPath() (string, error) {
	var configDir string
	var err error

	if runtime.GOOS == "windows" {
		configDir = os.Getenv("LOCALAPPDATA")
		if configDir == "" {
			configDir, err = os.UserConfigDir()
		}
	} else {
		configDir, err = os.UserConfigDir()
	}

	if err != nil {
		return "", err
	}

	return filepath.Join(configDir, "DepthGo", "data", "depthgo.db"), nil
}

// ======================================================================================
// Symbol Operations
// ======================================================================================

// UpsertSymbol creates or updates symbol metadata
func (s *Storage) UpsertSymbol(info *domain.SymbolInfo) error {
	return s.db.Save(info).Error
}

// GetSymbol retrieves symbol metadata
func (s *Storage) GetSymbol(symbol string) (*domain.SymbolInfo, error) {
	var info domain.SymbolInfo
	err := s.db.First(&info, "symbol = ?", symbol).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil // Not found is not an error
	}
	return &info, err
}

// GetAllSymbols retrieves the full watchlist
func (s *Storage) GetAllSymbols() ([]domain.SymbolInfo, error) {
	var infos []domain.SymbolInfo
	err := s.db.Find(&infos).Error
	return infos, err
}

// ToggleFavorite toggles the favorite status of a symbol
func (s *Storage) ToggleFavorite(symbol string) (bool, error) {
	var info domain.SymbolInfo
	if err := s.db.First(&info, "symbol = ?", symbol).Error; err != nil {
		return false, err
	}

	info.IsFavorite = !info.IsFavorite
	err := s.db.Save(&info).Error
	return info.IsFavorite, err
}

// DeleteSymbol removes a symbol from the watchlist
func (s *Storage) DeleteSymbol(symbol string) error {
	return s.db.Where("symbol = ?", symbol).Delete(&domain.SymbolInfo{}).Error
}

// ======================================================================================
// Config Operations
// ======================================================================================

// SaveConfig saves a user configuration value
func (s *Storage) SaveConfig(key, value string) error {
	config := domain.AppConfig{
		Key:   key,
		Value: value,
	}
	return s.db.Save(&config).Error
}

// LoadConfigMap loads all user configurations as a map
func (s *Storage) LoadConfigMap() (map[string]string, error) {
	var configs []domain.AppConfig
	if err := s.db.Find(&configs).Error; err != nil {
		return nil, err
	}

	result := make(map[string]string)
	for _, cfg := range configs {
		result[cfg.Key] = cfg.Value
	}
	return result, nil
}
