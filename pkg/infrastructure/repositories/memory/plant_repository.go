package memory

import (
	"context"
	"sync"

	"github.com/vsinha/pluanalyzer/pkg/domain/entities"
	"github.com/vsinha/pluanalyzer/pkg/domain/repositories"
	"github.com/vsinha/pluanalyzer/pkg/infrastructure/repositories/kv"
)

// PlantRepository provides in-memory plant data storage
type PlantRepository struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewPlantRepository creates a new in-memory plant repository
func NewPlantRepository() *PlantRepository {
	return &PlantRepository{values: make(map[string][]byte)}
}

// Verify interface compliance
var _ repositories.PlantRepository = (*PlantRepository)(nil)

// Save replaces the stored plant data
func (r *PlantRepository) Save(_ context.Context, snapshot entities.PlantSnapshot) error {
	values, err := kv.Encode(snapshot)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for k, v := range values {
		r.values[k] = v
	}
	return nil
}

// Load returns the stored plant data or ErrPlantDataNotFound
func (r *PlantRepository) Load(_ context.Context) (*entities.PlantSnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return kv.Decode(r.values[repositories.PlantDataKey], r.values[repositories.PlantMetadataKey])
}

// Clear removes the stored plant data
func (r *PlantRepository) Clear(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, k := range kv.Keys() {
		delete(r.values, k)
	}
	return nil
}
