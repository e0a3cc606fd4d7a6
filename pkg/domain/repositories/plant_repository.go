package repositories

import (
	"context"
	"errors"

	"github.com/vsinha/pluanalyzer/pkg/domain/entities"
)

// Storage keys shared by every plant data backend
const (
	PlantDataKey     = "plu_analyzer_plant_data"
	PlantMetadataKey = "plu_analyzer_plant_metadata"
)

// ErrPlantDataNotFound is returned by Load when no plant data has been stored
var ErrPlantDataNotFound = errors.New("plant data not found")

// PlantRepository persists the plant master between sessions
type PlantRepository interface {
	Save(ctx context.Context, snapshot entities.PlantSnapshot) error
	Load(ctx context.Context) (*entities.PlantSnapshot, error)
	Clear(ctx context.Context) error
}
