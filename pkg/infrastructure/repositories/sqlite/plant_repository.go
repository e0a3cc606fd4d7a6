package sqlite

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/vsinha/pluanalyzer/pkg/domain/entities"
	"github.com/vsinha/pluanalyzer/pkg/domain/repositories"
	"github.com/vsinha/pluanalyzer/pkg/infrastructure/repositories/kv"
)

// StoredValueModel is one key/value row in the local store
type StoredValueModel struct {
	Name      string `gorm:"primaryKey;size:128"`
	Value     []byte `gorm:"not null"`
	UpdatedAt time.Time
}

// TableName specifies the table name for GORM
func (StoredValueModel) TableName() string {
	return "stored_values"
}

// PlantRepository persists plant data in a SQLite key/value table
type PlantRepository struct {
	db *gorm.DB
}

// Verify interface compliance
var _ repositories.PlantRepository = (*PlantRepository)(nil)

// Open connects to the SQLite file at path and migrates the schema
func Open(path string) (*PlantRepository, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database %s: %w", path, err)
	}
	return NewPlantRepository(db)
}

// NewPlantRepository wraps an existing connection and migrates the schema
func NewPlantRepository(db *gorm.DB) (*PlantRepository, error) {
	if err := db.AutoMigrate(&StoredValueModel{}); err != nil {
		return nil, fmt.Errorf("failed to migrate stored values: %w", err)
	}
	return &PlantRepository{db: db}, nil
}

// Save writes both plant values in one transaction
func (r *PlantRepository) Save(ctx context.Context, snapshot entities.PlantSnapshot) error {
	values, err := kv.Encode(snapshot)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	rows := make([]StoredValueModel, 0, len(values))
	for _, key := range kv.Keys() {
		rows = append(rows, StoredValueModel{Name: key, Value: values[key], UpdatedAt: now})
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).Create(&rows).Error
	})
	if err != nil {
		return fmt.Errorf("failed to save plant data: %w", err)
	}
	return nil
}

// Load returns the stored plant data or ErrPlantDataNotFound
func (r *PlantRepository) Load(ctx context.Context) (*entities.PlantSnapshot, error) {
	var rows []StoredValueModel
	if err := r.db.WithContext(ctx).Where("name IN ?", kv.Keys()).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load plant data: %w", err)
	}

	values := make(map[string][]byte, len(rows))
	for _, row := range rows {
		values[row.Name] = row.Value
	}
	return kv.Decode(values[repositories.PlantDataKey], values[repositories.PlantMetadataKey])
}

// Clear removes the stored plant data
func (r *PlantRepository) Clear(ctx context.Context) error {
	err := r.db.WithContext(ctx).Where("name IN ?", kv.Keys()).Delete(&StoredValueModel{}).Error
	if err != nil {
		return fmt.Errorf("failed to clear plant data: %w", err)
	}
	return nil
}

// Close releases the underlying connection
func (r *PlantRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
